package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVIESClientParsesValidResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "checkVat", r.Header.Get("SOAPAction"))
		w.Header().Set("Content-Type", "text/xml")
		_, _ = w.Write([]byte(`<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <checkVatResponse xmlns="urn:ec.europa.eu:taxud:vies:services:checkVat:types">
      <countryCode>DE</countryCode>
      <vatNumber>123456789</vatNumber>
      <valid>true</valid>
      <name>ACME GmbH</name>
    </checkVatResponse>
  </soap:Body>
</soap:Envelope>`))
	}))
	defer server.Close()

	client := NewVIESClient(server.URL)
	result, err := client.Validate(context.Background(), "DE", "123456789")
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, "ACME GmbH", result.CompanyName)
}

func TestVIESClientParsesInvalidNumber(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <checkVatResponse><valid>false</valid><name></name></checkVatResponse>
  </soap:Body>
</soap:Envelope>`))
	}))
	defer server.Close()

	client := NewVIESClient(server.URL)
	result, err := client.Validate(context.Background(), "DE", "000000000")
	require.NoError(t, err)
	assert.False(t, result.Valid)
}

func TestVIESClientClassifiesTransientFault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <soap:Fault><faultcode>soap:Server</faultcode><faultstring>MS_UNAVAILABLE</faultstring></soap:Fault>
  </soap:Body>
</soap:Envelope>`))
	}))
	defer server.Close()

	client := NewVIESClient(server.URL)
	_, err := client.Validate(context.Background(), "FR", "12345678901")
	require.Error(t, err)
	assert.Equal(t, ErrorOutage, CategoryOf(err))
	assert.True(t, IsRetryable(err))
}

func TestVIESClientClassifiesServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewVIESClient(server.URL)
	_, err := client.Validate(context.Background(), "IT", "12345678901")
	require.Error(t, err)
	assert.True(t, IsRetryable(err))
}

func TestRateSourceParsesQuote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "USD", r.URL.Query().Get("from"))
		assert.Equal(t, "EUR", r.URL.Query().Get("to"))
		_, _ = w.Write([]byte(`{"rate": 0.92, "as_of": "2026-03-01T12:00:00Z"}`))
	}))
	defer server.Close()

	source := NewHTTPRateSource(server.URL, "fixer")
	quote, err := source.GetRate(context.Background(), "USD", "EUR")
	require.NoError(t, err)
	assert.Equal(t, 0.92, quote.Rate)
	assert.Equal(t, "fixer", quote.Provider)
	assert.False(t, quote.AsOf.IsZero())
}

func TestRateSourceUnsupportedPairIsNotRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	source := NewHTTPRateSource(server.URL, "fixer")
	_, err := source.GetRate(context.Background(), "USD", "XYZ")
	require.Error(t, err)
	assert.Equal(t, ErrorRejected, CategoryOf(err))
	assert.False(t, IsRetryable(err))
}

func TestRateSourceRejectsNonPositiveRate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"rate": 0}`))
	}))
	defer server.Close()

	source := NewHTTPRateSource(server.URL, "fixer")
	_, err := source.GetRate(context.Background(), "USD", "EUR")
	require.Error(t, err)
	assert.Equal(t, ErrorBadData, CategoryOf(err))
}

func TestGatewayCapture(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/captures", r.URL.Path)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"gateway_transaction_id": "gw-123", "status": "captured"}`))
	}))
	defer server.Close()

	gw := NewHTTPGateway(server.URL)
	result, err := gw.Capture(context.Background(), CaptureRequest{
		Amount:   11900,
		Currency: "EUR",
	})
	require.NoError(t, err)
	assert.Equal(t, "gw-123", result.GatewayTransactionID)
	assert.Equal(t, "captured", result.Status)
}

func TestGatewayDeclineIsDefinitive(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"reason": "insufficient_funds"}`))
	}))
	defer server.Close()

	gw := NewHTTPGateway(server.URL)
	_, err := gw.Capture(context.Background(), CaptureRequest{Amount: 100, Currency: "EUR"})
	require.Error(t, err)
	assert.Equal(t, ErrorRejected, CategoryOf(err))
	assert.False(t, IsRetryable(err))
	assert.Contains(t, err.Error(), "insufficient_funds")
}
