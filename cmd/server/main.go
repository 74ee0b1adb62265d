package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/smartpg/booking-server/internal/blob"
	"github.com/smartpg/booking-server/internal/config"
	"github.com/smartpg/booking-server/internal/database"
	"github.com/smartpg/booking-server/internal/handler"
	"github.com/smartpg/booking-server/internal/mailer"
	"github.com/smartpg/booking-server/internal/payment"
	"github.com/smartpg/booking-server/internal/queue"
	"github.com/smartpg/booking-server/internal/repository"
	"github.com/smartpg/booking-server/internal/router"
	"github.com/smartpg/booking-server/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env wins
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient() // nil disables cache + rate limiting
	if rdb == nil {
		log.Println("redis unavailable: response cache and rate limiting disabled")
	}

	// Repositories.
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	listings := repository.NewListingRepo(db)
	bookings := repository.NewBookingRepo(db)
	payments := repository.NewPaymentRepo(db)

	// Core services.
	reconciler := service.NewReconciler(listings, bookings, payments)
	gateway := payment.NewMockGateway()
	dispatcher := mailer.NewDispatcher(&mailer.SMTPTransport{
		Host: cfg.SMTPHost, Port: cfg.SMTPPort,
		User: cfg.SMTPUser, Pass: cfg.SMTPPass, From: cfg.SMTPFrom,
	})
	blobs := blob.NewDiskStore(cfg.UploadDir, cfg.PublicBaseURL)

	// Background consumer: appends booking events to logs/booking.log.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking-consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	router.Register(e, router.Deps{
		Cfg:      cfg,
		Redis:    rdb,
		Auth:     handler.NewAuthHandler(cfg, users, tokens),
		Listings: handler.NewListingHandler(listings, bookings, blobs),
		Bookings: handler.NewBookingHandler(reconciler, bookings, listings, users, payments, dispatcher),
		Payments: handler.NewPaymentHandler(gateway, reconciler, bookings, payments),
		Admin:    handler.NewAdminHandler(users, tokens, listings, bookings),
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
