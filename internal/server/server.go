package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// New はミドルウェア込みのechoを作る。ルートは各handlerが登録する。
func New() *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	//リクエストログとpanic回復
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	return e
}

func Start(e *echo.Echo, addr string) error {
	return e.Start(addr)
}
