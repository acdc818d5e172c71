package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/clinic-api/internal/config"
	"github.com/jwalitptl/clinic-api/internal/email"
	"github.com/jwalitptl/clinic-api/internal/gateway/stripe"
	bookingHandler "github.com/jwalitptl/clinic-api/internal/handler/booking"
	catalogHandler "github.com/jwalitptl/clinic-api/internal/handler/catalog"
	"github.com/jwalitptl/clinic-api/internal/handler/health"
	paymentHandler "github.com/jwalitptl/clinic-api/internal/handler/payment"
	"github.com/jwalitptl/clinic-api/internal/handler/prometheus"
	userHandler "github.com/jwalitptl/clinic-api/internal/handler/user"
	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/repository/store"
	"github.com/jwalitptl/clinic-api/internal/router"
	"github.com/jwalitptl/clinic-api/internal/service/authority"
	"github.com/jwalitptl/clinic-api/internal/service/availability"
	"github.com/jwalitptl/clinic-api/internal/service/booking"
	"github.com/jwalitptl/clinic-api/internal/service/catalog"
	"github.com/jwalitptl/clinic-api/internal/service/event"
	"github.com/jwalitptl/clinic-api/internal/service/identity"
	"github.com/jwalitptl/clinic-api/internal/service/notification"
	"github.com/jwalitptl/clinic-api/internal/service/payment"
	"github.com/jwalitptl/clinic-api/internal/service/user"
	"github.com/jwalitptl/clinic-api/pkg/auth"
	"github.com/jwalitptl/clinic-api/pkg/logger"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
)

const metricsNamespace = "clinic"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger(nil).Fatal(err, "failed to load configuration")
	}

	log := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Logging.Level),
		TimeFormat: time.RFC3339,
		JSON:       cfg.Logging.JSON,
	})
	log.SetGlobal()

	ctx := context.Background()

	repos, closeStore, err := store.Open(ctx, cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to open store", "driver", cfg.Database.Driver)
	}
	defer closeStore()

	if cfg.Database.Driver == "memory" {
		if err := catalog.Seed(ctx, repos.Services, catalog.DefaultServices()); err != nil {
			log.Fatal(err, "failed to seed catalog")
		}
	}

	registry := prom.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(metricsNamespace, registry)

	jwt, err := auth.NewJWT(cfg.JWT.Secret, cfg.JWT.Expiry())
	if err != nil {
		log.Fatal(err, "failed to create token signer")
	}

	notifier, closeNotifier, err := newNotifier(cfg, log)
	if err != nil {
		log.Fatal(err, "failed to create notifier")
	}
	defer closeNotifier()

	if cfg.Stripe.SecretKey == "" {
		log.Warn("stripe secret key is not set; payment intents will fail")
	}
	gateway := stripe.New(cfg.Stripe.SecretKey, nil)

	// Services
	events := event.NewEventService(repos.Outbox)
	tokens := identity.NewService(jwt)
	authoritySvc := authority.NewService(repos.Users, events, log)
	catalogSvc := catalog.NewService(repos.Services, repos.Doctors, events, log, cfg.Catalog.CacheTTL)
	bookingSvc := booking.NewService(repos.Services, repos.Bookings, notifier, events, m, log, cfg.Notification.Timeout)
	availabilitySvc := availability.NewService(repos.Services, repos.Bookings)
	paymentSvc := payment.NewService(repos.Bookings, gateway, events, m, log, cfg.Stripe.Currency)
	userSvc := user.NewService(repos.Users, tokens, log)

	authMW := middleware.NewAuthMiddleware(tokens, authoritySvc)

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.CORS.AllowedOrigins

	routerConfig := router.RouterConfig{
		RequestTimeout: cfg.Server.RequestTimeout,
		CORSConfig:     corsConfig,
		Compress:       true,
	}
	if cfg.Environment == "development" {
		routerConfig.Mode = gin.DebugMode
	}
	if cfg.RateLimit.Enabled {
		routerConfig.RateLimit = &middleware.RateLimiterConfig{
			Rate:  rate.Limit(cfg.RateLimit.RequestsPerSecond),
			Burst: cfg.RateLimit.Burst,
		}
	}

	r := router.NewRouter(router.Handlers{
		Catalog: catalogHandler.NewHandler(catalogSvc, authMW),
		Booking: bookingHandler.NewHandler(bookingSvc, availabilitySvc, authMW),
		Payment: paymentHandler.NewHandler(paymentSvc, authMW),
		User:    userHandler.NewHandler(userSvc, authoritySvc, authMW),
		Health:  health.NewHandler(repos.Health),
		Metrics: prometheus.New(registry, metricsNamespace),
	}, routerConfig)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("starting server", "port", cfg.Server.Port, "store", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err, "failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(err, "server forced to shutdown")
	}
	bookingSvc.Wait()

	log.Info("server exited properly")
}

// newNotifier sends confirmations inline or through the task queue.
func newNotifier(cfg *config.Config, log *logger.Logger) (notification.Notifier, func(), error) {
	if cfg.Notification.Queue {
		opt, err := asynq.ParseRedisURI(cfg.Redis.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid redis url: %w", err)
		}
		client := asynq.NewClient(opt)
		return notification.NewQueueNotifier(client, notification.QueueName), func() { _ = client.Close() }, nil
	}

	sender, err := email.NewSender(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return notification.NewEmailNotifier(sender), func() {}, nil
}
