package main // Entry point package

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/transitbook/bus-reservation/internal/config"
	"github.com/transitbook/bus-reservation/internal/database"
	"github.com/transitbook/bus-reservation/internal/handler"
	"github.com/transitbook/bus-reservation/internal/mail"
	"github.com/transitbook/bus-reservation/internal/middleware"
	"github.com/transitbook/bus-reservation/internal/queue"
	"github.com/transitbook/bus-reservation/internal/repository"
	"github.com/transitbook/bus-reservation/internal/reservation"
	"github.com/transitbook/bus-reservation/internal/router"
	queue_publisher "github.com/transitbook/bus-reservation/internal/service"
	"github.com/transitbook/bus-reservation/internal/ws"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.Bootstrap(ctx, db); err != nil {
		log.Fatalf("database: %v", err)
	}
	if cfg.SeedDemo {
		if err := database.SeedDemo(ctx, db); err != nil {
			log.Fatalf("database: seed: %v", err)
		}
	}

	// The hold registry is what serializes concurrent hold attempts;
	// without Redis the coordinator cannot run safely.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Fatal("redis: connection failed; the hold registry requires redis")
	}

	tripRepo := repository.NewTripRepo(db)
	seatRepo := repository.NewSeatRepo(db)
	holdRepo := repository.NewHoldRepo(rdb, cfg.HoldTTL)

	hub := ws.NewHub()
	var pub reservation.Publisher = hub
	if cfg.Backplane {
		bp := ws.NewBackplane(rdb, hub, ws.DefaultChannel)
		go bp.Run(ctx)
		pub = bp
	}

	coord := reservation.NewCoordinator(seatRepo, tripRepo, holdRepo, pub, queue_publisher.Notifier{})

	sweeper := reservation.NewSweeper(seatRepo, holdRepo, pub, cfg.SweepInterval)
	go sweeper.Run(ctx)

	smtp := config.LoadSMTPConfig()
	mailer := mail.NewMailer(smtp.Host, smtp.Port, smtp.Username, smtp.Password, smtp.From)
	go func() {
		if err := queue.NewConsumer(mailer).Run(); err != nil {
			log.Printf("booking-consumer: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	router.RegisterRoutes(e, router.Handlers{
		Trips: handler.NewTripHandler(tripRepo, seatRepo),
		Seats: handler.NewSeatHandler(coord),
		WS:    handler.NewWSHandler(hub),
	}, cfg, limiter)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, hold ttl=%s)", addr, cfg.Env, cfg.HoldTTL)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
