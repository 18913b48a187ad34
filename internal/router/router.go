// Package router wires HTTP routes to handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/avestan/hotel-booking-api/internal/config"
	"github.com/avestan/hotel-booking-api/internal/handler"
	"github.com/avestan/hotel-booking-api/internal/middleware"
	"github.com/avestan/hotel-booking-api/internal/repository"
)

// Deps collects everything route registration needs.
type Deps struct {
	Cfg      config.Config
	Redis    *redis.Client
	Users    *repository.UserRepo
	Tokens   *repository.TokenRepo
	Auth     *handler.AuthHandler
	Rooms    *handler.RoomHandler
	Bookings *handler.BookingHandler
}

// Register sets up all application routes.
//
//	/auth      registration, login, token and password flows
//	/rooms     public reads, admin writes
//	/bookings  authenticated booking operations
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)

	protect := middleware.Protect(d.Cfg.JWTSecret, d.Users, d.Tokens)
	adminOnly := middleware.AdminOnly(d.Users)

	auth := e.Group("/auth")
	auth.POST("/register", d.Auth.Register)
	auth.POST("/login", d.Auth.Login)
	auth.POST("/refresh", d.Auth.Refresh)
	auth.POST("/forgot-password", d.Auth.ForgotPassword,
		middleware.RateLimitByIP(config.LoadRateLimitConfig(), d.Redis))
	auth.POST("/reset-password/:token", d.Auth.ResetPassword)
	auth.POST("/register-admin", d.Auth.RegisterAdmin, protect, adminOnly)
	auth.POST("/logout", d.Auth.Logout, protect)
	auth.GET("/me", d.Auth.Me, protect)
	auth.GET("/users", d.Auth.ListUsers, protect, adminOnly)

	rooms := e.Group("/rooms")
	roomCache := middleware.CacheResponse(config.LoadCacheConfig(), d.Redis)
	rooms.GET("", d.Rooms.List, roomCache)
	rooms.GET("/:id", d.Rooms.Get, roomCache)
	rooms.POST("", d.Rooms.Create, protect, adminOnly)
	rooms.PUT("/:id", d.Rooms.Update, protect, adminOnly)
	rooms.DELETE("/:id", d.Rooms.Delete, protect, adminOnly)

	bookings := e.Group("/bookings", protect)
	bookings.GET("", d.Bookings.ListAll, adminOnly)
	bookings.GET("/my-bookings", d.Bookings.ListMine)
	bookings.POST("", d.Bookings.Create)
	bookings.PUT("/:id/cancel", d.Bookings.Cancel)
}
