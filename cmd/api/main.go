package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"districtops/internal/bidscore"
	"districtops/internal/config"
	"districtops/internal/database"
	"districtops/internal/database/migration"
	"districtops/internal/flags"
	handlers "districtops/internal/http/handler"
	"districtops/internal/http/middleware"
	"districtops/internal/logger"
	"districtops/internal/metrics"
	"districtops/internal/otel"
	"districtops/internal/readiness"
	"districtops/internal/repository"
	"districtops/internal/repository/memory"
	"districtops/internal/repository/postgres"
	"districtops/internal/review"
	"districtops/internal/service"
	"districtops/internal/storage"
)

const day = 24 * time.Hour

func main() {
	if err := run(); err != nil {
		slog.Default().Error("startup_failed", "error", err.Error())
		os.Exit(1)
	}
}

func run() error {
	// Configuration from environment variables (.env auto-loaded if present)
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}
	log := logger.New(os.Stdout, loc, logger.ParseLevel(cfg.LogLevel))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, logger.Component(log, "tracing"))
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	db, store, docs, err := openBackends(ctx, cfg, log)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	mt, err := metrics.New(reg)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}
	httpMetrics, err := metrics.NewHTTP(reg)
	if err != nil {
		return fmt.Errorf("register http metrics: %w", err)
	}

	svcs, err := buildServices(cfg, store, docs, mt)
	if err != nil {
		return err
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(middleware.RequestMetrics(httpMetrics))

	app.Get(middleware.MetricsPath, adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))
	handlers.RegisterRoutes(app, db, svcs, handlers.Calendar{
		Now:          func() time.Time { return time.Now().In(loc) },
		CutoverMonth: time.Month(cfg.Policy.SchoolYearCutoverMonth),
	})

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(sctx); err != nil {
			log.Error("http_shutdown_failed", "error", err.Error())
		}
	}()

	log.Info("http_listen", "addr", ":"+cfg.Port, "store_backend", cfg.StoreBackend)
	if err := app.Listen(":" + cfg.Port); err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	return nil
}

// openBackends selects postgres+MinIO or the in-process stores. db is nil
// for the memory backend.
func openBackends(ctx context.Context, cfg *config.AppConfig, log *slog.Logger) (*sql.DB, repository.Store, storage.Storage, error) {
	if cfg.StoreBackend == "memory" {
		log.Warn("store_backend_memory", "reason", "data is lost on restart")
		return nil, memory.New(), storage.NewMemory(), nil
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		_ = db.Close()
		return nil, nil, nil, fmt.Errorf("migrate database: %w", err)
	}

	docs, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		_ = db.Close()
		return nil, nil, nil, fmt.Errorf("initialize object storage: %w", err)
	}
	return db, postgres.NewStore(db), docs, nil
}

func buildServices(cfg *config.AppConfig, store repository.Store, docs storage.Storage, mt *metrics.Metrics) (handlers.Services, error) {
	p := cfg.Policy

	scorer, err := bidscore.NewScorer(p.BidWeights)
	if err != nil {
		return handlers.Services{}, fmt.Errorf("bid scorer: %w", err)
	}
	evaluator, err := readiness.NewEvaluator(p.ReadinessWeights, p.RequiredStateReportType)
	if err != nil {
		return handlers.Services{}, fmt.Errorf("readiness evaluator: %w", err)
	}

	machine := review.NewMachine(store,
		review.WithMaxAttempts(p.ReviewMaxAttempts),
		review.WithMetrics(mt),
	)
	presign := time.Duration(cfg.MinIO.PresignExpirySec) * time.Second
	contracts := service.NewContractService(store.Contracts(), service.NewStaticRegionalStats(cfg.Regional),
		time.Duration(p.ContractExpiringDays)*day, time.Duration(p.InsuranceExpiringDays)*day)

	return handlers.Services{
		Registrations: service.NewRegistrationService(store.Registrations(), docs, flags.NewDetector(p.MultiRegistrationThreshold), mt, presign),
		Reviews:       service.NewReviewService(machine, store.Reports()),
		Audit:         service.NewAuditService(store),
		Contracts:     contracts,
		Invoices:      service.NewInvoiceService(store.Invoices(), machine, mt, p.BatchConcurrency, p.ReviewMaxAttempts),
		Bids:          service.NewBidService(store.Bids(), scorer, p.ReferenceRatePerRoute),
		Compliance:    service.NewComplianceService(store.Compliance(), evaluator),
	}, nil
}
