package payments

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext is the slice of the main test context payment steps need.
type TestContext interface {
	POST(path string, body interface{}) error
	LastStatus() int
	GetResponseField(field string) (interface{}, error)
}

// RegisterSteps registers payment pipeline step definitions.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &paymentSteps{tc: tc}

	ctx.Step(`^I submit a payment of (\d+) "([^"]*)" for customer "([^"]*)" in "([^"]*)"$`, steps.submitPayment)
	ctx.Step(`^I submit a "([^"]*)" payment of (\d+) "([^"]*)" for customer "([^"]*)" in "([^"]*)" with mandate "([^"]*)"$`, steps.submitRegionalPayment)

	ctx.Step(`^the payment should succeed$`, steps.paymentShouldSucceed)
	ctx.Step(`^the payment should be blocked$`, steps.paymentShouldBeBlocked)
	ctx.Step(`^the payment should settle in "([^"]*)"$`, steps.paymentShouldSettleIn)
	ctx.Step(`^the payment should be flagged for manual review$`, steps.paymentShouldBeFlagged)
}

type paymentSteps struct {
	tc TestContext
}

func (s *paymentSteps) submitPayment(ctx context.Context, amount int, currency, customerID, country string) error {
	return s.tc.POST("/payments", map[string]interface{}{
		"amount":           amount,
		"currency":         currency,
		"customer_id":      customerID,
		"customer_name":    "E2E Customer",
		"customer_country": country,
		"customer_type":    "individual",
	})
}

func (s *paymentSteps) submitRegionalPayment(ctx context.Context, method string, amount int, currency, customerID, country, mandate string) error {
	return s.tc.POST("/payments/regional", map[string]interface{}{
		"amount":           amount,
		"currency":         currency,
		"customer_id":      customerID,
		"customer_name":    "E2E Customer",
		"customer_country": country,
		"customer_type":    "individual",
		"method":           method,
		"mandate_id":       mandate,
	})
}

func (s *paymentSteps) paymentShouldSucceed(ctx context.Context) error {
	if s.tc.LastStatus() != 201 {
		return fmt.Errorf("expected status 201, got %d", s.tc.LastStatus())
	}
	success, err := s.tc.GetResponseField("success")
	if err != nil {
		return err
	}
	if success != true {
		return fmt.Errorf("expected success=true, got %v", success)
	}
	return nil
}

func (s *paymentSteps) paymentShouldBeBlocked(ctx context.Context) error {
	if s.tc.LastStatus() != 403 {
		return fmt.Errorf("expected status 403, got %d", s.tc.LastStatus())
	}
	return nil
}

func (s *paymentSteps) paymentShouldSettleIn(ctx context.Context, currency string) error {
	value, err := s.tc.GetResponseField("settlement_currency")
	if err != nil {
		return err
	}
	if value != currency {
		return fmt.Errorf("expected settlement currency %q, got %v", currency, value)
	}
	return nil
}

func (s *paymentSteps) paymentShouldBeFlagged(ctx context.Context) error {
	value, err := s.tc.GetResponseField("requires_manual_review")
	if err != nil {
		return err
	}
	if value != true {
		return fmt.Errorf("expected requires_manual_review=true, got %v", value)
	}
	return nil
}
