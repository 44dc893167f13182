package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"

	"crosspay/internal/auth"
	"crosspay/internal/clients"
	"crosspay/internal/compliance"
	"crosspay/internal/currency"
	"crosspay/internal/payment"
	"crosspay/internal/platform/cache"
	"crosspay/internal/platform/config"
	"crosspay/internal/platform/httpserver"
	"crosspay/internal/platform/logger"
	"crosspay/internal/platform/metrics"
	platformredis "crosspay/internal/platform/redis"
	"crosspay/internal/ratelimit"
	"crosspay/internal/tax"
	httptransport "crosspay/internal/transport/http"
	"crosspay/pkg/platform/audit"
	"crosspay/pkg/platform/audit/publisher"
	auditmemory "crosspay/pkg/platform/audit/store/memory"
	auditpostgres "crosspay/pkg/platform/audit/store/postgres"
	"crosspay/pkg/platform/audit/worker"
)

const auditBufferCapacity = 1024

// main wires the dependency graph and owns process lifecycle. Business
// logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	// Cache backend: Redis when configured, in-process otherwise.
	var cacheStore cache.Store = cache.NewMemoryStore()
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		cacheStore = cache.NewRedisStore(redisClient, "crosspay")
		log.Info("using redis cache", "url", cfg.Redis.URL)
	}

	rateLoader := cache.NewLoader(cacheStore, config.RateCacheTTL)
	vatLoader := cache.NewLoader(cacheStore, config.VATValidationTTL)
	kycLoader := cache.NewLoader(cacheStore, config.KYCResultTTL)
	sanctionsLoader := cache.NewLoader(cacheStore, config.SanctionsResultTTL)

	// Persistence: Postgres when a DSN is configured, in-memory otherwise.
	var (
		db           *sql.DB
		pool         *pgxpool.Pool
		pgAudit      *auditpostgres.Store
		invoiceStore tax.InvoiceStore        = tax.NewMemoryInvoiceStore()
		consentStore compliance.ConsentStore = compliance.NewInMemoryConsentStore()
		recordStore  payment.RecordStore     = payment.NewInMemoryRecordStore()
		auditStore   audit.Store             = auditmemory.New()
	)
	if cfg.PostgresDSN != "" {
		db, err = sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return err
		}

		pool, err = pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer pool.Close()

		invoiceStore = tax.NewPostgresInvoiceStore(db)
		consentStore = compliance.NewPostgresConsentStore(db)
		recordStore = payment.NewPostgresRecordStore(pool)
		pgAudit = auditpostgres.New(db)
		auditStore = pgAudit
		log.Info("using postgres persistence")
	}

	// Audit pipeline: recorder -> ring buffer -> worker -> store.
	buffer := audit.NewRingBuffer(auditBufferCapacity)
	recorder := audit.NewRecorder(buffer, audit.WithLogger(log))
	auditWorker := worker.New(auditStore, buffer,
		worker.WithLogger(log),
		worker.WithMetrics(m))
	go func() {
		if err := auditWorker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("audit worker stopped", "error", err)
		}
	}()

	// Outbox publisher only makes sense with the postgres audit store.
	if len(cfg.KafkaBrokers) > 0 && pgAudit != nil {
		kafka, err := publisher.NewKafka(cfg.KafkaBrokers, cfg.AuditTopic, pgAudit,
			publisher.WithLogger(log))
		if err != nil {
			return err
		}
		defer kafka.Close()
		go func() {
			if err := kafka.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("audit publisher stopped", "error", err)
			}
		}()
		log.Info("publishing audit events", "topic", cfg.AuditTopic)
	}

	// External collaborators.
	rateSource := clients.NewHTTPRateSource(cfg.RateSourceURL, cfg.RateProvider)
	vatRegistry := clients.NewVIESClient(cfg.VATRegistryURL)
	gateway := clients.NewHTTPGateway(cfg.GatewayURL)

	// Domain services.
	converter := currency.New(rateSource, rateLoader, currency.WithLogger(log))

	refStore := tax.NewMemoryReferenceStore()
	tax.SeedReferenceData(refStore)
	vatValidator := tax.NewVATValidator(vatRegistry, vatLoader, tax.WithVATLogger(log))
	taxEngine := tax.NewEngine(refStore, vatValidator, tax.WithEngineLogger(log))
	invoicer := tax.NewInvoicer(invoiceStore, log)

	directory := compliance.NewInMemoryDirectory()
	monitor := compliance.NewMonitor(directory, consentStore, kycLoader, sanctionsLoader, recorder,
		compliance.WithMonitorLogger(log),
		compliance.WithMonitorMetrics(m))
	reporter := compliance.NewReporter(auditStore, log)

	orchestrator := payment.New(converter, taxEngine, monitor, gateway, recordStore, recorder,
		cfg.SettlementCurrency,
		payment.WithLogger(log),
		payment.WithMetrics(m))

	// Report API auth.
	tokens := auth.NewTokenService(cfg.JWTSigningKey, "crosspay", time.Hour)
	var reportClients []auth.Client
	if cfg.ReportClientSecret != "" {
		client, err := auth.NewClient(cfg.ReportClientID, cfg.ReportClientSecret, []string{"compliance:read"})
		if err != nil {
			return err
		}
		reportClients = append(reportClients, client)
	} else {
		log.Warn("REPORT_CLIENT_SECRET not set, report API has no usable client")
	}
	issuer := &auth.Issuer{
		Authenticator: auth.NewAuthenticator(reportClients...),
		TokenService:  tokens,
	}

	limits := ratelimit.NewMiddleware(ratelimit.NewLimiter(), log)

	var healthChecks []httptransport.HealthCheck
	if db != nil {
		healthChecks = append(healthChecks, httptransport.HealthCheck{Name: "postgres", Check: db.PingContext})
	}
	if redisClient != nil {
		healthChecks = append(healthChecks, httptransport.HealthCheck{Name: "redis", Check: redisClient.Health})
	}

	handler := httptransport.New(orchestrator, taxEngine, invoicer, monitor, reporter,
		issuer, tokens, limits, m, log, healthChecks...)
	srv := httpserver.New(cfg.Addr, handler.Router())

	serverErr := make(chan error, 1)
	go func() {
		log.Info("starting crosspay", "addr", cfg.Addr, "settlement_currency", cfg.SettlementCurrency)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
