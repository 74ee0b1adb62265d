// Package router wires HTTP routes to handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/smartpg/booking-server/internal/config"
	"github.com/smartpg/booking-server/internal/handler"
	"github.com/smartpg/booking-server/internal/middleware"
	"github.com/smartpg/booking-server/internal/model"
)

// Deps collects everything the route table needs.  main builds one of
// these after constructing repositories and handlers.
type Deps struct {
	Cfg      config.Config
	Redis    *redis.Client // nil disables cache and rate limiting
	Auth     *handler.AuthHandler
	Listings *handler.ListingHandler
	Bookings *handler.BookingHandler
	Payments *handler.PaymentHandler
	Admin    *handler.AdminHandler
}

// Register wires the full route table onto e.
//
// Route groups:
//   - public: health, browse, auth — no token required
//   - tenant: booking lifecycle and payments (TENANT or ADMIN)
//   - owner:  listing management (OWNER or ADMIN)
//   - admin:  moderation and dashboard (ADMIN only)
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)

	// Uploaded listing photos are served straight off disk.
	e.Static("/uploads", d.Cfg.UploadDir)

	v1 := e.Group("/v1")

	// Public browse, fronted by the Redis response cache.
	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), d.Redis)
	v1.GET("/listings", d.Listings.Browse, cacheMW)
	v1.GET("/listings/:id", d.Listings.Get, cacheMW)

	auth := v1.Group("/auth")
	auth.POST("/register", d.Auth.Register)
	auth.POST("/login", d.Auth.Login)
	auth.POST("/refresh", d.Auth.Refresh)
	auth.POST("/logout", d.Auth.Logout)

	jwtMW := middleware.JWTAuth(d.Cfg.JWTSecret)
	v1.GET("/me", d.Auth.Me, jwtMW)

	// Tenant surface.  Booking creation additionally sits behind the
	// token-bucket limiter so a runaway client cannot drain inventory.
	tenant := v1.Group("", jwtMW, middleware.RequireRole(model.RoleTenant, model.RoleAdmin))
	limitMW := middleware.NewTokenBucket(config.LoadRateLimitConfig(), d.Redis)
	tenant.POST("/bookings", d.Bookings.Create, limitMW)
	tenant.GET("/bookings/my", d.Bookings.Mine)
	tenant.PUT("/bookings/:id/cancel", d.Bookings.Cancel)
	tenant.GET("/bookings/:id/invoice", d.Bookings.Invoice)
	tenant.GET("/bookings/:id/payments", d.Bookings.PaymentHistory)
	tenant.POST("/payments/create-order", d.Payments.CreateOrder)
	tenant.POST("/payments/verify", d.Payments.Verify)

	// Owner surface.
	owner := v1.Group("", jwtMW, middleware.RequireRole(model.RoleOwner, model.RoleAdmin))
	owner.POST("/listings", d.Listings.Create)
	owner.PUT("/listings/:id", d.Listings.Update)
	owner.DELETE("/listings/:id", d.Listings.Delete)
	owner.GET("/my/listings", d.Listings.Mine)
	owner.POST("/listings/:id/photos", d.Listings.UploadPhoto)
	owner.GET("/listings/:id/bookings", d.Listings.ListingBookings)

	// Admin surface.
	admin := v1.Group("/admin", jwtMW, middleware.RequireRole(model.RoleAdmin))
	admin.GET("/dashboard", d.Admin.Dashboard)
	admin.GET("/users", d.Admin.ListUsers)
	admin.PUT("/users/:id/block", d.Admin.SetUserBlocked)
	admin.DELETE("/users/:id", d.Admin.DeleteUser)
	admin.DELETE("/listings/:id", d.Admin.DeleteListing)
	admin.GET("/bookings", d.Admin.ListBookings)
}
