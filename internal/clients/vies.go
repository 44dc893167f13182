package clients

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// VATValidator is the narrow interface the tax engine depends on.
type VATValidator interface {
	Validate(ctx context.Context, countryCode, vatNumber string) (VATRegistryResult, error)
}

// VATRegistryResult is the registry's answer for one VAT number.
type VATRegistryResult struct {
	Valid       bool
	CompanyName string
}

// VIESClient validates EU VAT numbers against the VIES SOAP service.
// The response is parsed structurally; the registry's envelope layout is
// a published contract, so string matching would be fragile the wrong way
// around.
type VIESClient struct {
	baseURL string
	http    *http.Client
}

// NewVIESClient builds a client for the registry at baseURL.
func NewVIESClient(baseURL string) *VIESClient {
	return &VIESClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

const viesTarget = "vies"

type viesEnvelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		Response viesResponse `xml:"checkVatResponse"`
		Fault    *soapFault   `xml:"Fault"`
	} `xml:"Body"`
}

type viesResponse struct {
	CountryCode string `xml:"countryCode"`
	VATNumber   string `xml:"vatNumber"`
	Valid       bool   `xml:"valid"`
	Name        string `xml:"name"`
}

type soapFault struct {
	Code   string `xml:"faultcode"`
	Reason string `xml:"faultstring"`
}

const viesRequestTemplate = `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns:urn="urn:ec.europa.eu:taxud:vies:services:checkVat:types">
  <soapenv:Body>
    <urn:checkVat>
      <urn:countryCode>%s</urn:countryCode>
      <urn:vatNumber>%s</urn:vatNumber>
    </urn:checkVat>
  </soapenv:Body>
</soapenv:Envelope>`

// Validate performs one registry lookup. Callers wrap it with the retry
// policy and circuit breaker; this method only classifies failures.
func (c *VIESClient) Validate(ctx context.Context, countryCode, vatNumber string) (VATRegistryResult, error) {
	body := fmt.Sprintf(viesRequestTemplate, countryCode, vatNumber)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewBufferString(body))
	if err != nil {
		return VATRegistryResult{}, NewClientError(ErrorInternal, viesTarget, "build request", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", "checkVat")

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return VATRegistryResult{}, NewClientError(ErrorTimeout, viesTarget, "registry timed out", err)
		}
		return VATRegistryResult{}, NewClientError(ErrorOutage, viesTarget, "registry unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return VATRegistryResult{}, NewClientError(ErrorRateLimited, viesTarget, "registry throttling", nil)
	}
	if resp.StatusCode >= 500 {
		return VATRegistryResult{}, NewClientError(ErrorOutage, viesTarget,
			fmt.Sprintf("registry returned %d", resp.StatusCode), nil)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return VATRegistryResult{}, NewClientError(ErrorBadData, viesTarget, "read response", err)
	}

	var envelope viesEnvelope
	if err := xml.Unmarshal(raw, &envelope); err != nil {
		return VATRegistryResult{}, NewClientError(ErrorBadData, viesTarget, "malformed SOAP envelope", err)
	}

	if fault := envelope.Body.Fault; fault != nil {
		// VIES signals transient overload through well-known fault strings.
		switch fault.Reason {
		case "MS_UNAVAILABLE", "SERVICE_UNAVAILABLE", "TIMEOUT":
			return VATRegistryResult{}, NewClientError(ErrorOutage, viesTarget, fault.Reason, nil)
		default:
			return VATRegistryResult{}, NewClientError(ErrorRejected, viesTarget, fault.Reason, nil)
		}
	}

	return VATRegistryResult{
		Valid:       envelope.Body.Response.Valid,
		CompanyName: envelope.Body.Response.Name,
	}, nil
}
