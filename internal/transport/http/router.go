// Package httptransport is the thin HTTP layer. Handlers decode, call a
// domain service, and encode; business logic stays out of this package.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"crosspay/internal/platform/metrics"
	"crosspay/internal/platform/middleware"
	"crosspay/internal/ratelimit"
)

// HealthCheck reports the readiness of a named dependency.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Handler aggregates the domain services behind the API.
type Handler struct {
	payments  PaymentService
	taxEngine TaxService
	invoicer  InvoiceService
	monitor   ComplianceService
	reporter  ReportService
	tokens    TokenIssuer
	validator middleware.JWTValidator
	limits    *ratelimit.Middleware
	metrics   *metrics.Metrics
	logger    *slog.Logger
	checks    []HealthCheck
}

// New creates the HTTP handler set.
func New(
	payments PaymentService,
	taxEngine TaxService,
	invoicer InvoiceService,
	monitor ComplianceService,
	reporter ReportService,
	tokens TokenIssuer,
	validator middleware.JWTValidator,
	limits *ratelimit.Middleware,
	m *metrics.Metrics,
	logger *slog.Logger,
	checks ...HealthCheck,
) *Handler {
	return &Handler{
		payments:  payments,
		taxEngine: taxEngine,
		invoicer:  invoicer,
		monitor:   monitor,
		reporter:  reporter,
		tokens:    tokens,
		validator: validator,
		limits:    limits,
		metrics:   m,
		logger:    logger,
		checks:    checks,
	}
}

// limit applies the class rate limit when a limiter is configured.
func (h *Handler) limit(class ratelimit.EndpointClass) func(http.Handler) http.Handler {
	if h.limits == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return h.limits.Limit(class)
}

// Router wires all endpoints.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(h.logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(h.logger))
	r.Use(middleware.Latency(h.metrics))

	r.Get("/healthz", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))
		r.Use(middleware.ContentTypeJSON)

		r.With(h.limit(ratelimit.ClassAuth)).
			Post("/auth/token", h.handleToken)

		r.Group(func(r chi.Router) {
			r.Use(h.limit(ratelimit.ClassPayments))
			r.Post("/payments", h.handleProcessPayment)
			r.Post("/payments/regional", h.handleProcessRegionalPayment)
			r.Post("/payments/batch", h.handleProcessBatch)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.limit(ratelimit.ClassChecks))
			r.Post("/tax/calculate", h.handleCalculateTax)
			r.Post("/tax/invoices", h.handleGenerateInvoice)
			r.Post("/compliance/kyc", h.handleKYC)
			r.Post("/compliance/sanctions", h.handleSanctions)
			r.Post("/compliance/gdpr", h.handleGDPR)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(h.validator, h.logger))
			r.Use(h.limit(ratelimit.ClassReports))
			r.Get("/compliance/reports", h.handleReport)
		})
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	body := map[string]string{"status": "ok"}
	status := http.StatusOK
	for _, c := range h.checks {
		if err := c.Check(ctx); err != nil {
			body[c.Name] = err.Error()
			body["status"] = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		body[c.Name] = "ok"
	}
	writeJSON(w, status, body)
}
