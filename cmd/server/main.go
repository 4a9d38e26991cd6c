package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ticketing-core/internal/config"
	"github.com/iliyamo/ticketing-core/internal/database"
	"github.com/iliyamo/ticketing-core/internal/handler"
	"github.com/iliyamo/ticketing-core/internal/kv"
	"github.com/iliyamo/ticketing-core/internal/lock"
	"github.com/iliyamo/ticketing-core/internal/queue"
	"github.com/iliyamo/ticketing-core/internal/repository"
	"github.com/iliyamo/ticketing-core/internal/reservation"
	"github.com/iliyamo/ticketing-core/internal/router"
	"github.com/iliyamo/ticketing-core/internal/ticketing"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("info: .env not found; using defaults/env")
	}

	cfg := config.Load()
	queueCfg := config.LoadQueueConfig()
	lockCfg := config.LoadLockConfig()
	rateCfg := config.LoadRateLimitConfig()
	cacheCfg := config.LoadCacheConfig()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("warning: redis unavailable at startup; queue, locking, rate limit and cache will degrade")
	}

	store := kv.New(rdb)
	locks := lock.NewManager(store, lockCfg.SeatLockTimeout)
	queueEngine := queue.NewEngine(rdb, queueCfg)

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	venues := repository.NewVenueRepo(db)
	events := repository.NewEventRepo(db)
	schedules := repository.NewScheduleRepo(db)
	grades := repository.NewSeatGradeRepo(db)
	tickets := repository.NewTicketRepo(db)
	bookings := repository.NewBookingRepo(db)

	reservationEngine := reservation.NewEngine(db, events, schedules, venues, grades, tickets, bookings, locks, queueEngine, rdb)
	reservationEngine.SetSeatMapTTL(cacheCfg.SeatMapTTL)

	authHandler := handler.NewAuthHandler(cfg, users, tokens)
	ownerHandler := handler.NewOwnerHandler(venues, events, schedules, grades, bookings)
	publicHandler := handler.NewPublicHandler(events, venues, schedules, grades)
	queueHandler := handler.NewQueueHandler(queueEngine, events)
	reservationHandler := handler.NewReservationHandler(reservationEngine, bookings)

	e := echo.New()
	e.HTTPErrorHandler = ticketing.HTTPErrorHandler

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterQueue(e, queueHandler, cfg.JWTSecret)
	router.RegisterReservation(e, reservationHandler, cfg.JWTSecret)
	router.RegisterOwner(e, ownerHandler, cfg.JWTSecret)
	router.RegisterPublic(e, publicHandler, ownerHandler, rateCfg, cacheCfg, rdb)

	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	go reportAdmissionStats(queueEngine, 30*time.Second)

	addr := ":" + cfg.Port
	go func() {
		log.Printf("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}

// reportAdmissionStats logs the admissions/sec rate every interval, a
// lock-free read off the queue engine's running counter.
func reportAdmissionStats(qe *queue.Engine, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	last := qe.AdmittedCount()
	for range ticker.C {
		cur := qe.AdmittedCount()
		rate := float64(cur-last) / interval.Seconds()
		log.Printf("stats: admissions_total=%d admissions_per_sec=%.2f", cur, rate)
		last = cur
	}
}
