package usecase

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
)

// MenuUsecase はカタログの読み取りと、提供可否の管理操作。
type MenuUsecase struct {
	menuRepo  repo.MenuItemRepository
	auditRepo repo.AuditLogRepository
}

// DI
func NewMenuUsecase(menuRepo repo.MenuItemRepository, auditRepo repo.AuditLogRepository) *MenuUsecase {
	return &MenuUsecase{menuRepo: menuRepo, auditRepo: auditRepo}
}

type MenuItemResponse struct {
	ID          int64           `json:"id"`
	CategoryID  int64           `json:"category_id"`
	Name        string          `json:"name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Popular     bool            `json:"popular"`
	IsAvailable bool            `json:"is_available"`
}

type ListMenuItemsInput struct {
	CategoryID         *int64
	IncludeUnavailable bool
}

func (u *MenuUsecase) ListCategories(ctx context.Context) ([]model.MenuCategory, error) {
	cats, err := u.menuRepo.ListCategories(ctx)
	if err != nil {
		return []model.MenuCategory{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return cats, nil
}

func (u *MenuUsecase) ListItems(ctx context.Context, in ListMenuItemsInput) ([]MenuItemResponse, error) {
	if in.CategoryID != nil && *in.CategoryID <= 0 {
		return []MenuItemResponse{}, NewHTTPError(http.StatusBadRequest, "invalid category_id")
	}

	items, err := u.menuRepo.List(ctx, repo.MenuItemListQuery{
		CategoryID:    in.CategoryID,
		AvailableOnly: !in.IncludeUnavailable,
	})
	if err != nil {
		return []MenuItemResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	resp := make([]MenuItemResponse, 0, len(items))
	for _, it := range items {
		resp = append(resp, MenuItemResponse{
			ID:          it.ID,
			CategoryID:  it.CategoryID,
			Name:        it.Name,
			UnitPrice:   model.Cents(it.UnitPriceCents),
			Popular:     it.Popular,
			IsAvailable: it.IsAvailable,
		})
	}
	return resp, nil
}

// SetAvailability は品切れ（86）の切り替え。管理操作なので監査ログを残す。
func (u *MenuUsecase) SetAvailability(ctx context.Context, actorStaffID int64, menuItemID int64, available bool) error {
	if actorStaffID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if menuItemID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	before, err := u.menuRepo.FindByID(ctx, menuItemID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "menu item not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.menuRepo.SetAvailability(ctx, menuItemID, available); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "menu item not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorStaffID: actorStaffID,
		Action:       model.AuditActionSetAvailability,
		ResourceType: model.AuditResourceMenuItem,
		ResourceID:   menuItemID,
		Before:       strconv.FormatBool(before.IsAvailable),
		After:        strconv.FormatBool(available),
		CreatedAt:    time.Now(),
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return nil
}
