package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"

	apphandler "github.com/rakesh-tirumalaparapu/zipp/internal/application/handler"
	"github.com/rakesh-tirumalaparapu/zipp/internal/application/jobs"
	appmetrics "github.com/rakesh-tirumalaparapu/zipp/internal/application/metrics"
	appservice "github.com/rakesh-tirumalaparapu/zipp/internal/application/service"
	dochandler "github.com/rakesh-tirumalaparapu/zipp/internal/document/handler"
	docmetrics "github.com/rakesh-tirumalaparapu/zipp/internal/document/metrics"
	docservice "github.com/rakesh-tirumalaparapu/zipp/internal/document/service"
	"github.com/rakesh-tirumalaparapu/zipp/internal/events"
	jwttoken "github.com/rakesh-tirumalaparapu/zipp/internal/jwt_token"
	"github.com/rakesh-tirumalaparapu/zipp/internal/notification/cache"
	notifhandler "github.com/rakesh-tirumalaparapu/zipp/internal/notification/handler"
	notifmetrics "github.com/rakesh-tirumalaparapu/zipp/internal/notification/metrics"
	notifservice "github.com/rakesh-tirumalaparapu/zipp/internal/notification/service"
	"github.com/rakesh-tirumalaparapu/zipp/internal/platform/config"
	"github.com/rakesh-tirumalaparapu/zipp/internal/platform/httpserver"
	"github.com/rakesh-tirumalaparapu/zipp/internal/platform/kafka"
	"github.com/rakesh-tirumalaparapu/zipp/internal/platform/logger"
	"github.com/rakesh-tirumalaparapu/zipp/internal/platform/metrics"
	redisclient "github.com/rakesh-tirumalaparapu/zipp/internal/platform/redis"
	userhandler "github.com/rakesh-tirumalaparapu/zipp/internal/user/handler"
	userservice "github.com/rakesh-tirumalaparapu/zipp/internal/user/service"
	"github.com/rakesh-tirumalaparapu/zipp/pkg/platform/audit/publisher"
	"github.com/rakesh-tirumalaparapu/zipp/pkg/platform/httputil"
)

const (
	auditBuffer     = 512
	shutdownTimeout = 10 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("loanflow: %v", err)
	}
}

func run(ctx context.Context) error {
	cfg := config.FromEnv()
	logger := logger.New(cfg.LogLevel)

	st, err := openStores(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("open stores: %w", err)
	}
	defer st.Close()

	redis, err := redisclient.New(ctx, cfg.Redis, logger)
	if err != nil {
		return err
	}
	if redis != nil {
		defer redis.Close()
	}

	producer, err := kafka.NewProducer(ctx, cfg.Kafka, logger)
	if err != nil {
		return err
	}

	auditPublisher := publisher.NewPublisher(st.audit,
		publisher.WithAsyncBuffer(auditBuffer),
		publisher.WithLogger(logger),
	)

	platformMetrics := metrics.New()
	applicationMetrics := appmetrics.New()
	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer)
	jwtValidator := jwttoken.NewJWTServiceAdapter(jwtService)

	userService := userservice.New(st.users, jwtService,
		userservice.WithLogger(logger),
		userservice.WithAuditPublisher(auditPublisher),
		userservice.WithMetrics(platformMetrics),
		userservice.WithTokenTTL(cfg.TokenTTL),
	)
	if cfg.SeedStaff {
		created, err := userService.SeedStaff(ctx, userservice.DefaultStaff)
		if err != nil {
			return fmt.Errorf("seed staff: %w", err)
		}
		logger.Info("staff accounts seeded", "created", created)
	}

	notifOpts := []notifservice.Option{
		notifservice.WithLogger(logger),
		notifservice.WithAuditPublisher(auditPublisher),
		notifservice.WithMetrics(notifmetrics.New()),
	}
	if redis != nil {
		notifOpts = append(notifOpts, notifservice.WithUnreadCache(
			cache.NewRedisUnreadCache(redis, cache.WithTTL(cfg.Redis.UnreadTTL)),
		))
	}
	notificationService := notifservice.New(st.notifications, st.users, notifOpts...)

	docOpts := []docservice.Option{
		docservice.WithLogger(logger),
		docservice.WithAuditPublisher(auditPublisher),
		docservice.WithMetrics(docmetrics.New()),
	}
	appOpts := []appservice.Option{
		appservice.WithLogger(logger),
		appservice.WithAuditPublisher(auditPublisher),
		appservice.WithMetrics(applicationMetrics),
	}
	if producer != nil {
		eventPublisher := events.NewPublisher(producer, logger)
		docOpts = append(docOpts, docservice.WithEventPublisher(eventPublisher))
		appOpts = append(appOpts, appservice.WithEventPublisher(eventPublisher))
	}
	documentService := docservice.New(st.documents, st.applications, st.tx, docOpts...)
	appOpts = append(appOpts, appservice.WithDocuments(documentService))
	applicationService := appservice.New(st.applications, st.comments, st.users, notificationService, st.tx, appOpts...)

	scheduler := jobs.NewScheduler(st.applications, applicationMetrics, cfg.Jobs.StatusGaugeSchedule, logger)
	if err := scheduler.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", healthHandler(st, redis))
	userhandler.New(userService, logger, platformMetrics).Register(r)
	notifhandler.New(notificationService, logger, platformMetrics, jwtValidator).Register(r)
	dochandler.New(documentService, logger, platformMetrics, jwtValidator, cfg.Document.MaxBytes).Register(r)
	apphandler.New(applicationService, logger, platformMetrics, jwtValidator).Register(r)

	srv := httpserver.New(cfg.Addr, r)
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting loanflow", "addr", cfg.Addr)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	<-scheduler.Stop().Done()
	if producer != nil {
		if err := producer.Close(shutdownCtx); err != nil {
			logger.Warn("kafka producer close failed", "error", err)
		}
	}
	auditPublisher.Close()
	return nil
}

type pinger interface {
	Ping(ctx context.Context) error
}

// healthHandler reports unhealthy when the database or redis cannot be reached.
func healthHandler(db pinger, redis *goredis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := map[string]string{"status": "ok", "database": "ok"}
		code := http.StatusOK
		if err := db.Ping(ctx); err != nil {
			status["database"] = "unavailable"
			status["status"] = "degraded"
			code = http.StatusServiceUnavailable
		}
		if redis != nil {
			status["redis"] = "ok"
			if err := redis.Ping(ctx).Err(); err != nil {
				status["redis"] = "unavailable"
				status["status"] = "degraded"
				code = http.StatusServiceUnavailable
			}
		}
		httputil.WriteJSON(w, code, status)
	}
}
