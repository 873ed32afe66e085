package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/court-booking/internal/config"
	"github.com/iliyamo/court-booking/internal/database"
	"github.com/iliyamo/court-booking/internal/handler"
	"github.com/iliyamo/court-booking/internal/jobs"
	"github.com/iliyamo/court-booking/internal/metrics"
	"github.com/iliyamo/court-booking/internal/middleware"
	"github.com/iliyamo/court-booking/internal/queue"
	"github.com/iliyamo/court-booking/internal/repository"
	"github.com/iliyamo/court-booking/internal/router"
	"github.com/iliyamo/court-booking/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	log := logrus.New()
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("load config")
	}
	configureLogger(log, cfg)

	db, err := database.Open(cfg.DB.User, cfg.DB.Pass, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name)
	if err != nil {
		log.WithError(err).Fatal("connect database")
	}
	defer db.Close()
	if cfg.MigrateOnStart {
		if err := database.EnsureSchema(context.Background(), db); err != nil {
			log.WithError(err).Fatal("ensure schema")
		}
	}

	settings, err := bookingSettings(cfg.Booking)
	if err != nil {
		log.WithError(err).Fatal("booking settings")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	bookings := repository.NewBookingRepo(db)
	courts := repository.NewCourtRepo(db)
	perms := repository.NewPermissionRepo(db, log)

	svc := service.NewBookingService(service.Deps{
		Store:   bookings,
		Courts:  courts,
		Events:  queue.NewPublisher(cfg.RabbitMQURL, log),
		Metrics: m,
		Log:     log,
	}, settings)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	consumer := &queue.Consumer{URL: cfg.RabbitMQURL, LogDir: cfg.LogDir, Log: log}
	go consumer.Run(ctx)

	sched, err := jobs.NewScheduler(bookings, settings.Policy.Location, m, log)
	if err != nil {
		log.WithError(err).Fatal("create scheduler")
	}
	sched.Start()
	defer func() { _ = sched.Shutdown() }()

	rdb := config.NewRedisClient(cfg.Redis, log)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewRequestValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.Logger())
	e.Use(middleware.RequestMetrics(m))

	router.RegisterRoutes(e, db, reg)
	router.RegisterBookings(e, router.BookingRoutes{
		Handler:   handler.NewBookingHandler(svc, perms, log),
		Perms:     perms,
		JWTSecret: cfg.JWTSecret,
		RateLimit: middleware.NewTokenBucket(cfg.RateLimit, rdb),
		Cache:     middleware.NewRedisCache(cfg.Cache, rdb),
	})

	go func() {
		addr := ":" + cfg.Port
		log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
	if rdb != nil {
		_ = rdb.Close()
	}
}

func configureLogger(log *logrus.Logger, cfg config.Config) {
	if cfg.Env != "dev" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	lvl, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("unknown log level, using info")
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
}

func bookingSettings(b config.BookingConfig) (service.Settings, error) {
	loc, err := b.Location()
	if err != nil {
		return service.Settings{}, err
	}
	return service.Settings{
		Policy: service.Policy{
			OpenHour:       b.OpenHour,
			CloseHour:      b.CloseHour,
			MinLead:        b.MinLead,
			MaxAdvanceDays: b.MaxAdvanceDays,
			Location:       loc,
		},
		Pricer: service.Pricer{
			BaseRate: b.BaseRate,
			Tiers:    b.PriceTiers,
		},
		SlotMinutes:   b.SlotMinutes,
		CancelMinLead: b.CancelMinLead,
	}, nil
}
