package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/avestan/hotel-booking-api/internal/config"
	"github.com/avestan/hotel-booking-api/internal/database"
	"github.com/avestan/hotel-booking-api/internal/handler"
	"github.com/avestan/hotel-booking-api/internal/queue"
	"github.com/avestan/hotel-booking-api/internal/repository"
	"github.com/avestan/hotel-booking-api/internal/router"
	"github.com/avestan/hotel-booking-api/internal/service"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and response cache disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	rooms := repository.NewRoomRepo(db)
	bookings := repository.NewBookingRepo(db)

	// Periodic purge of expired blacklist rows stands in for a TTL index.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go tokens.StartCleanup(ctx, time.Hour)

	// Background workers for outbound mail and booking notifications.
	go queue.StartConsumer(queue.PasswordResetMailQueue, queue.HandlePasswordResetMail)
	go queue.StartConsumer(queue.BookingConfirmedQueue, queue.HandleBookingConfirmed)

	e := echo.New()
	e.Use(echomw.Logger(), echomw.Recover())

	router.Register(e, router.Deps{
		Cfg:      cfg,
		Redis:    rdb,
		Users:    users,
		Tokens:   tokens,
		Auth:     handler.NewAuthHandler(cfg, users, tokens, service.NewCaptchaVerifier(cfg.RecaptchaSecret)),
		Rooms:    handler.NewRoomHandler(rooms),
		Bookings: handler.NewBookingHandler(rooms, bookings),
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
