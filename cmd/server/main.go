package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"aidtrack/internal/alert"
	"aidtrack/internal/alert/detector"
	alerthandler "aidtrack/internal/alert/handler"
	alertservice "aidtrack/internal/alert/service"
	"aidtrack/internal/audit"
	audithandler "aidtrack/internal/audit/handler"
	"aidtrack/internal/delivery"
	deliveryhandler "aidtrack/internal/delivery/handler"
	deliveryservice "aidtrack/internal/delivery/service"
	"aidtrack/internal/platform/config"
	"aidtrack/internal/platform/httpserver"
	"aidtrack/internal/platform/logger"
	"aidtrack/internal/platform/metrics"
	"aidtrack/internal/platform/postgres"
	"aidtrack/internal/platform/redis"
	"aidtrack/internal/platform/token"
	"aidtrack/internal/receipt"
	receipthandler "aidtrack/internal/receipt/handler"
	"aidtrack/internal/receipt/render"
	receiptservice "aidtrack/internal/receipt/service"
	"aidtrack/internal/registry"
	registryhandler "aidtrack/internal/registry/handler"
	httptransport "aidtrack/internal/transport/http"
)

const shutdownTimeout = 10 * time.Second

// main wires dependencies and runs the server plus the audit fan-out worker.
// Business logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Error("postgres unavailable", "error", err.Error())
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	}

	redisClient, err := redis.New(cfg.Redis())
	if err != nil {
		log.Error("redis unavailable", "error", err.Error())
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Stores fall back to in-memory when Postgres is not configured, which
	// keeps local development dependency-free.
	var (
		auditStore    audit.Store
		deliveryStore delivery.Store
		alertStore    alert.Store
		registryStore registry.Store
		receiptStore  receipt.Store
	)
	if db != nil {
		auditStore = audit.NewPostgres(db)
		deliveryStore = delivery.NewPostgres(db)
		alertStore = alert.NewPostgres(db)
		registryStore = registry.NewPostgres(db)
		receiptStore = receipt.NewPostgres(db)
	} else {
		log.Warn("postgres not configured, using in-memory stores")
		auditStore = audit.NewInMemoryStore()
		deliveryStore = delivery.NewInMemoryStore()
		alertStore = alert.NewInMemoryStore()
		registryStore = registry.NewInMemoryStore()
		receiptStore = receipt.NewInMemoryStore()
	}

	var documents render.DocumentStore
	if redisClient != nil {
		documents = render.NewRedisDocumentStore(redisClient)
	} else {
		fsStore, err := render.NewFSDocumentStore(cfg.DocumentDir)
		if err != nil {
			log.Error("document directory unavailable", "error", err.Error())
			os.Exit(1)
		}
		documents = fsStore
	}

	var recorderOpts []audit.RecorderOption
	var worker *audit.Worker
	if cfg.KafkaBrokers != "" {
		sink, err := audit.NewKafkaSink(cfg.KafkaBrokers, cfg.AuditTopic, log)
		if err != nil {
			log.Error("kafka unavailable", "error", err.Error())
			os.Exit(1)
		}
		defer sink.Close()

		events := make(chan audit.Record, 256)
		recorderOpts = append(recorderOpts, audit.WithFanOut(events))
		worker = audit.NewWorker(sink, events, log)
	}
	recorder := audit.NewRecorder(auditStore, log, m, recorderOpts...)

	det := detector.New(deliveryStore, alertStore, log, m, cfg.CooldownDays)
	receiptSvc := receiptservice.New(receiptStore, deliveryStore, registryStore, render.NewTextRenderer(), documents, recorder, log, m)
	deliverySvc := deliveryservice.New(deliveryStore, registryStore, det, receiptSvc, recorder, db, log, m)
	alertSvc := alertservice.New(alertStore, recorder, log, m)

	tokens := token.NewService(cfg.JWTSigningKey, cfg.TokenIssuer)

	var health []httptransport.HealthCheck
	if db != nil {
		health = append(health, httptransport.HealthCheck{Name: "postgres", Check: db.PingContext})
	}
	if redisClient != nil {
		health = append(health, httptransport.HealthCheck{Name: "redis", Check: redisClient.Health})
	}

	router := httptransport.NewRouter(httptransport.Config{
		Logger:    log,
		Metrics:   m,
		Validator: tokens,
		Handlers: []httptransport.Registrar{
			deliveryhandler.New(deliverySvc, log),
			alerthandler.New(alertSvc, log),
			receipthandler.New(receiptSvc, log),
			audithandler.New(recorder, log),
			registryhandler.New(registryStore, log),
		},
		Health: health,
	})

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting aidtrack", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if worker != nil {
		g.Go(func() error {
			return worker.Run(gctx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server exited", "error", err.Error())
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
