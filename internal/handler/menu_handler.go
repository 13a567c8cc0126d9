package handler

import (
	"net/http"
	"strconv"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// /menu の公開API＋管理APIのHTTP。
type MenuHandler struct {
	uc *usecase.MenuUsecase
}

// DI
func NewMenuHandler(uc *usecase.MenuUsecase) *MenuHandler {
	return &MenuHandler{uc: uc}
}

// 公開カタログのルートを登録
func (h *MenuHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/menu/categories", h.listCategories)
	e.GET("/menu/items", h.listItems)
}

// 管理ルート（提供可否の切替）を登録
func (h *MenuHandler) RegisterAdminRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/admin/menu")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.AdminRoleGuard())

	g.PATCH("/items/:id/availability", h.setAvailability)
}

func (h *MenuHandler) listCategories(c echo.Context) error {
	out, err := h.uc.ListCategories(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *MenuHandler) listItems(c echo.Context) error {
	in := usecase.ListMenuItemsInput{}

	if v := c.QueryParam("category_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid category_id"})
		}
		in.CategoryID = &id
	}
	if c.QueryParam("include_unavailable") == "true" {
		in.IncludeUnavailable = true
	}

	out, err := h.uc.ListItems(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

type SetAvailabilityRequest struct {
	Available bool `json:"available"`
}

func (h *MenuHandler) setAvailability(c echo.Context) error {
	staffID, ok := getStaffIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req SetAvailabilityRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.SetAvailability(c.Request().Context(), staffID, itemID, req.Available); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// middlewareが入れたstaff_idを取り出す
func getStaffIDFromContext(c echo.Context) (int64, bool) {
	v := c.Get(middleware.CtxStaffIDKey)
	id, ok := v.(int64)
	if !ok || id <= 0 {
		return 0, false
	}
	return id, true
}
