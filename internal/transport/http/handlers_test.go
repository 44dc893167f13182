package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"crosspay/internal/compliance"
	"crosspay/internal/payment"
	"crosspay/internal/platform/middleware"
	"crosspay/internal/tax"
	dErrors "crosspay/pkg/domain-errors"
)

type stubPayments struct {
	processFn  func(ctx context.Context, in payment.Input) (payment.Result, error)
	regionalFn func(ctx context.Context, in payment.RegionalInput) (payment.Result, error)
	batchFn    func(ctx context.Context, inputs []payment.Input) []payment.Result
}

func (s stubPayments) ProcessInternationalPayment(ctx context.Context, in payment.Input) (payment.Result, error) {
	return s.processFn(ctx, in)
}

func (s stubPayments) ProcessRegionalPayment(ctx context.Context, in payment.RegionalInput) (payment.Result, error) {
	return s.regionalFn(ctx, in)
}

func (s stubPayments) ProcessBatch(ctx context.Context, inputs []payment.Input) []payment.Result {
	return s.batchFn(ctx, inputs)
}

type stubTax struct {
	calculateFn func(ctx context.Context, in tax.Input) (tax.Result, error)
}

func (s stubTax) CalculateTax(ctx context.Context, in tax.Input) (tax.Result, error) {
	return s.calculateFn(ctx, in)
}

type stubInvoicer struct {
	generateFn func(ctx context.Context, invoice tax.Invoice) (string, error)
}

func (s stubInvoicer) GenerateTaxInvoice(ctx context.Context, invoice tax.Invoice) (string, error) {
	return s.generateFn(ctx, invoice)
}

type stubCompliance struct {
	kycFn       func(ctx context.Context, in compliance.KYCInput) (compliance.KYCResult, error)
	sanctionsFn func(ctx context.Context, in compliance.SanctionsInput) (compliance.SanctionsResult, error)
	gdprFn      func(ctx context.Context, in compliance.GDPRInput) (compliance.GDPRResult, error)
}

func (s stubCompliance) PerformKYCCheck(ctx context.Context, in compliance.KYCInput) (compliance.KYCResult, error) {
	return s.kycFn(ctx, in)
}

func (s stubCompliance) CheckSanctionsList(ctx context.Context, in compliance.SanctionsInput) (compliance.SanctionsResult, error) {
	return s.sanctionsFn(ctx, in)
}

func (s stubCompliance) ValidateGDPRCompliance(ctx context.Context, in compliance.GDPRInput) (compliance.GDPRResult, error) {
	return s.gdprFn(ctx, in)
}

type stubReporter struct {
	generateFn func(ctx context.Context, reportType, jurisdiction string, periodStart, periodEnd time.Time) (compliance.Report, error)
}

func (s stubReporter) GenerateComplianceReport(ctx context.Context, reportType, jurisdiction string, periodStart, periodEnd time.Time) (compliance.Report, error) {
	return s.generateFn(ctx, reportType, jurisdiction, periodStart, periodEnd)
}

type stubIssuer struct {
	authenticateFn func(clientID, clientSecret string) ([]string, error)
	issueFn        func(subject string, roles []string) (string, error)
}

func (s stubIssuer) Authenticate(clientID, clientSecret string) ([]string, error) {
	return s.authenticateFn(clientID, clientSecret)
}

func (s stubIssuer) Issue(subject string, roles []string) (string, error) {
	return s.issueFn(subject, roles)
}

type stubValidator struct {
	claims *middleware.JWTClaims
	err    error
}

func (s stubValidator) ValidateToken(string) (*middleware.JWTClaims, error) {
	return s.claims, s.err
}

type HandlerSuite struct {
	suite.Suite
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) newHandler() *Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &Handler{logger: logger}
}

func jsonBody(s *HandlerSuite, v any) io.Reader {
	data, err := json.Marshal(v)
	require.NoError(s.T(), err)
	return bytes.NewReader(data)
}

func (s *HandlerSuite) TestProcessPayment() {
	h := s.newHandler()
	h.payments = stubPayments{
		processFn: func(_ context.Context, in payment.Input) (payment.Result, error) {
			s.Equal(int64(10000), in.Amount)
			s.Equal("USD", in.Currency)
			return payment.Result{TransactionID: "tx-1", Success: true, State: payment.StatePersisted}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/payments", jsonBody(s, payment.Input{
		Amount:          10000,
		Currency:        "USD",
		CustomerID:      "cust-1",
		CustomerCountry: "DE",
	}))
	w := httptest.NewRecorder()
	h.handleProcessPayment(w, req)

	s.Equal(http.StatusCreated, w.Code)
	var resp payment.Result
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("tx-1", resp.TransactionID)
	s.True(resp.Success)
}

func (s *HandlerSuite) TestProcessPaymentMalformedBody() {
	h := s.newHandler()

	req := httptest.NewRequest(http.MethodPost, "/payments", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	h.handleProcessPayment(w, req)

	s.Equal(http.StatusBadRequest, w.Code)
	var resp errorEnvelope
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal(string(dErrors.CodeValidation), resp.Error)
}

func (s *HandlerSuite) TestProcessPaymentBlockedMapsTo403() {
	h := s.newHandler()
	h.payments = stubPayments{
		processFn: func(context.Context, payment.Input) (payment.Result, error) {
			return payment.Result{State: payment.StateBlocked},
				dErrors.New(dErrors.CodeComplianceBlocked, "sanctions match")
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/payments", jsonBody(s, payment.Input{Amount: 1}))
	w := httptest.NewRecorder()
	h.handleProcessPayment(w, req)

	s.Equal(http.StatusForbidden, w.Code)
	var resp errorEnvelope
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal(string(dErrors.CodeComplianceBlocked), resp.Error)
	s.Equal("sanctions match", resp.Message)
}

func (s *HandlerSuite) TestProcessRegionalPayment() {
	h := s.newHandler()
	h.payments = stubPayments{
		regionalFn: func(_ context.Context, in payment.RegionalInput) (payment.Result, error) {
			s.Equal("sepa_debit", in.Method)
			return payment.Result{TransactionID: "tx-2", Success: true, Method: "sepa_debit"}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/payments/regional", jsonBody(s, payment.RegionalInput{
		Input:     payment.Input{Amount: 5000, Currency: "EUR", CustomerID: "cust-1", CustomerCountry: "DE"},
		Method:    "sepa_debit",
		MandateID: "mandate-1",
	}))
	w := httptest.NewRecorder()
	h.handleProcessRegionalPayment(w, req)

	s.Equal(http.StatusCreated, w.Code)
}

func (s *HandlerSuite) TestProcessBatch() {
	h := s.newHandler()
	h.payments = stubPayments{
		batchFn: func(_ context.Context, inputs []payment.Input) []payment.Result {
			results := make([]payment.Result, len(inputs))
			for i := range inputs {
				results[i] = payment.Result{Success: true}
			}
			return results
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/payments/batch", jsonBody(s, batchRequest{
		Payments: []payment.Input{{Amount: 1}, {Amount: 2}, {Amount: 3}},
	}))
	w := httptest.NewRecorder()
	h.handleProcessBatch(w, req)

	s.Equal(http.StatusOK, w.Code)
	var resp batchResponse
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	s.Len(resp.Results, 3)
}

func (s *HandlerSuite) TestProcessBatchEmptyRejected() {
	h := s.newHandler()

	req := httptest.NewRequest(http.MethodPost, "/payments/batch", jsonBody(s, batchRequest{}))
	w := httptest.NewRecorder()
	h.handleProcessBatch(w, req)

	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerSuite) TestProcessBatchOverLimitRejected() {
	h := s.newHandler()

	inputs := make([]payment.Input, maxBatchSize+1)
	req := httptest.NewRequest(http.MethodPost, "/payments/batch", jsonBody(s, batchRequest{Payments: inputs}))
	w := httptest.NewRecorder()
	h.handleProcessBatch(w, req)

	s.Equal(http.StatusBadRequest, w.Code)
	var resp errorEnvelope
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	s.Contains(resp.Message, "exceeds limit")
}

func (s *HandlerSuite) TestCalculateTax() {
	h := s.newHandler()
	h.taxEngine = stubTax{
		calculateFn: func(_ context.Context, in tax.Input) (tax.Result, error) {
			s.Equal("DE", in.CustomerCountry)
			return tax.Result{TaxAmount: 1900, TaxRate: 0.19, Jurisdiction: "DE"}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/tax/calculate", jsonBody(s, tax.Input{
		Amount:          10000,
		CustomerCountry: "DE",
		CustomerType:    tax.CustomerIndividual,
		ProductCategory: "standard",
	}))
	w := httptest.NewRecorder()
	h.handleCalculateTax(w, req)

	s.Equal(http.StatusOK, w.Code)
	var resp tax.Result
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal(int64(1900), resp.TaxAmount)
}

func (s *HandlerSuite) TestCalculateTaxServiceErrorPassesThrough() {
	h := s.newHandler()
	h.taxEngine = stubTax{
		calculateFn: func(context.Context, tax.Input) (tax.Result, error) {
			return tax.Result{}, dErrors.New(dErrors.CodeValidation, "amount must be positive")
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/tax/calculate", jsonBody(s, tax.Input{Amount: -1}))
	w := httptest.NewRecorder()
	h.handleCalculateTax(w, req)

	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerSuite) TestGenerateInvoice() {
	h := s.newHandler()
	h.invoicer = stubInvoicer{
		generateFn: func(_ context.Context, invoice tax.Invoice) (string, error) {
			s.Equal("DE", invoice.CustomerCountry)
			return "INV-2026-DE-000001", nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/tax/invoices", jsonBody(s, tax.Invoice{
		CustomerName:    "Example GmbH",
		CustomerCountry: "DE",
		Currency:        "EUR",
		TaxAmount:       1900,
		TaxRate:         0.19,
		TotalAmount:     11900,
		LineItems:       []tax.InvoiceLineItem{{Description: "subscription", Quantity: 1, Amount: 10000}},
	}))
	w := httptest.NewRecorder()
	h.handleGenerateInvoice(w, req)

	s.Equal(http.StatusCreated, w.Code)
	var resp invoiceResponse
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("INV-2026-DE-000001", resp.InvoiceNumber)
}

func (s *HandlerSuite) TestKYC() {
	h := s.newHandler()
	h.monitor = stubCompliance{
		kycFn: func(_ context.Context, in compliance.KYCInput) (compliance.KYCResult, error) {
			s.Equal("cust-1", in.CustomerID)
			return compliance.KYCResult{Passed: true, RiskScore: 10}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/compliance/kyc", jsonBody(s, compliance.KYCInput{
		CustomerID: "cust-1",
		Country:    "DE",
		Amount:     10000,
	}))
	w := httptest.NewRecorder()
	h.handleKYC(w, req)

	s.Equal(http.StatusOK, w.Code)
	var resp compliance.KYCResult
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	s.True(resp.Passed)
}

func (s *HandlerSuite) TestSanctions() {
	h := s.newHandler()
	h.monitor = stubCompliance{
		sanctionsFn: func(_ context.Context, in compliance.SanctionsInput) (compliance.SanctionsResult, error) {
			return compliance.SanctionsResult{Match: true, RiskScore: 100, MatchedOn: "country"}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/compliance/sanctions", jsonBody(s, compliance.SanctionsInput{
		CustomerID:   "cust-1",
		CustomerName: "Anyone",
		Country:      "IR",
	}))
	w := httptest.NewRecorder()
	h.handleSanctions(w, req)

	s.Equal(http.StatusOK, w.Code)
	var resp compliance.SanctionsResult
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	s.True(resp.Match)
}

func (s *HandlerSuite) TestGDPR() {
	h := s.newHandler()
	h.monitor = stubCompliance{
		gdprFn: func(_ context.Context, in compliance.GDPRInput) (compliance.GDPRResult, error) {
			return compliance.GDPRResult{Compliant: false, Issues: []string{"no affirmative consent on record for purpose \"marketing\""}}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/compliance/gdpr", jsonBody(s, compliance.GDPRInput{
		CustomerID:            "cust-1",
		DataProcessingPurpose: "marketing",
	}))
	w := httptest.NewRecorder()
	h.handleGDPR(w, req)

	s.Equal(http.StatusOK, w.Code)
	var resp compliance.GDPRResult
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	s.False(resp.Compliant)
	s.Len(resp.Issues, 1)
}

func (s *HandlerSuite) TestReportRejectsBadPeriod() {
	h := s.newHandler()

	req := httptest.NewRequest(http.MethodGet, "/compliance/reports?report_type=kyc_summary&period_start=yesterday", nil)
	w := httptest.NewRecorder()
	h.handleReport(w, req)

	s.Equal(http.StatusBadRequest, w.Code)
	var resp errorEnvelope
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	s.Contains(resp.Message, "period_start")
}

func (s *HandlerSuite) TestReport() {
	h := s.newHandler()
	h.reporter = stubReporter{
		generateFn: func(_ context.Context, reportType, jurisdiction string, periodStart, periodEnd time.Time) (compliance.Report, error) {
			s.Equal("kyc_summary", reportType)
			s.Equal("DE", jurisdiction)
			s.Equal(2026, periodStart.Year())
			return compliance.Report{ArtifactID: "artifact-1", ReportType: reportType, TotalEvents: 7}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet,
		"/compliance/reports?report_type=kyc_summary&jurisdiction=DE&period_start=2026-01-01T00:00:00Z&period_end=2026-02-01T00:00:00Z", nil)
	w := httptest.NewRecorder()
	h.handleReport(w, req)

	s.Equal(http.StatusOK, w.Code)
	var resp compliance.Report
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("artifact-1", resp.ArtifactID)
	s.Equal(7, resp.TotalEvents)
}

func (s *HandlerSuite) TestToken() {
	h := s.newHandler()
	h.tokens = stubIssuer{
		authenticateFn: func(clientID, clientSecret string) ([]string, error) {
			s.Equal("reporting-client", clientID)
			s.Equal("s3cret", clientSecret)
			return []string{"compliance:read"}, nil
		},
		issueFn: func(subject string, roles []string) (string, error) {
			s.Equal("reporting-client", subject)
			s.Equal([]string{"compliance:read"}, roles)
			return "signed.jwt.token", nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/auth/token", jsonBody(s, tokenRequest{
		ClientID:     "reporting-client",
		ClientSecret: "s3cret",
	}))
	w := httptest.NewRecorder()
	h.handleToken(w, req)

	s.Equal(http.StatusOK, w.Code)
	var resp tokenResponse
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("signed.jwt.token", resp.AccessToken)
	s.Equal("Bearer", resp.TokenType)
}

func (s *HandlerSuite) TestTokenBadCredentials() {
	h := s.newHandler()
	h.tokens = stubIssuer{
		authenticateFn: func(string, string) ([]string, error) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid client credentials")
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/auth/token", jsonBody(s, tokenRequest{
		ClientID:     "reporting-client",
		ClientSecret: "wrong",
	}))
	w := httptest.NewRecorder()
	h.handleToken(w, req)

	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *HandlerSuite) TestTokenMissingFields() {
	h := s.newHandler()

	req := httptest.NewRequest(http.MethodPost, "/auth/token", jsonBody(s, tokenRequest{ClientID: "only-id"}))
	w := httptest.NewRecorder()
	h.handleToken(w, req)

	s.Equal(http.StatusBadRequest, w.Code)
}

// Router-level tests exercise middleware wiring, in particular the auth
// guard on the reports endpoint.

func TestRouterReportsRequireAuth(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(nil, nil, nil, nil,
		stubReporter{generateFn: func(context.Context, string, string, time.Time, time.Time) (compliance.Report, error) {
			return compliance.Report{ArtifactID: "artifact-1"}, nil
		}},
		nil,
		stubValidator{claims: &middleware.JWTClaims{Subject: "reporting-client"}},
		nil, nil, logger)
	srv := httptest.NewServer(h.Router())
	defer srv.Close()

	url := srv.URL + "/compliance/reports?report_type=kyc_summary&period_start=2026-01-01T00:00:00Z&period_end=2026-02-01T00:00:00Z"

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer any")
	authed, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer authed.Body.Close()
	assert.Equal(t, http.StatusOK, authed.StatusCode)
}

func TestRouterRejectsInvalidToken(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(nil, nil, nil, nil, nil, nil,
		stubValidator{err: dErrors.New(dErrors.CodeUnauthorized, "token has expired")},
		nil, nil, logger)
	srv := httptest.NewServer(h.Router())
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/compliance/reports", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer expired")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouterHealth(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(nil, nil, nil, nil, nil, nil, nil, nil, nil, logger)
	srv := httptest.NewServer(h.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestRouterHealthAggregatesChecks(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(nil, nil, nil, nil, nil, nil, nil, nil, nil, logger,
		HealthCheck{Name: "postgres", Check: func(context.Context) error { return nil }},
		HealthCheck{Name: "redis", Check: func(context.Context) error { return errors.New("connection refused") }},
	)
	srv := httptest.NewServer(h.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "ok", body["postgres"])
	assert.Equal(t, "connection refused", body["redis"])
}
