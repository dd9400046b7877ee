package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/laundry_service/internal/handlers"
	authmw "github.com/Skotchmaster/laundry_service/pkg/middleware/auth"
)

type Deps struct {
	DB        *gorm.DB
	JWTSecret []byte

	AuthHandler    *handlers.AuthHTTP
	VoucherHandler *handlers.VoucherHTTP
	OrderHandler   *handlers.OrderHTTP
	SearchHandler  *handlers.SearchHTTP
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", d.ready)

	mw := authmw.New(d.JWTSecret)
	v1 := e.Group("/api/v1")

	v1.POST("/login", d.AuthHandler.Login)
	v1.POST("/logout", d.AuthHandler.Logout)
	v1.GET("/prices", d.OrderHandler.Prices)
	v1.GET("/vouchers", d.VoucherHandler.ListActive)
	v1.GET("/vouchers/code/:code", d.VoucherHandler.GetByCode)

	user := v1.Group("", mw.RequireAuth)
	user.POST("/quote", d.OrderHandler.Quote)
	user.POST("/vouchers/claim", d.VoucherHandler.Claim)
	user.GET("/me/vouchers", d.VoucherHandler.MyClaims)
	user.GET("/me/vouchers/available", d.VoucherHandler.AvailableClaims)
	user.POST("/me/vouchers/:id/validate", d.VoucherHandler.ValidateClaim)
	user.GET("/me/stats", d.OrderHandler.MyStats)
	user.POST("/orders", d.OrderHandler.Create)
	user.GET("/orders", d.OrderHandler.ListMine)
	user.GET("/orders/:id", d.OrderHandler.Get)

	admin := v1.Group("/admin", mw.RequireAdmin)
	admin.GET("/orders", d.OrderHandler.AdminList)
	admin.GET("/orders/search", d.SearchHandler.SearchOrders)
	admin.PATCH("/orders/:id/status", d.OrderHandler.UpdateStatus)
	admin.PATCH("/orders/:id/payment-status", d.OrderHandler.UpdatePaymentStatus)
	admin.DELETE("/orders/:id", d.OrderHandler.Delete)
	admin.GET("/stats", d.OrderHandler.AdminStats)
	admin.GET("/vouchers", d.VoucherHandler.AdminList)
	admin.POST("/vouchers", d.VoucherHandler.Create)
	admin.PATCH("/vouchers/:id", d.VoucherHandler.Patch)
	admin.POST("/claims/:id/use", d.VoucherHandler.MarkUsed)
}

// ready reports whether the database answers.
func (d *Deps) ready(c echo.Context) error {
	if d.DB == nil {
		return c.NoContent(http.StatusOK)
	}
	sqlDB, err := d.DB.DB()
	if err != nil {
		return c.NoContent(http.StatusServiceUnavailable)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return c.NoContent(http.StatusServiceUnavailable)
	}
	return c.NoContent(http.StatusOK)
}
