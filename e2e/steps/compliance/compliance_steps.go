package compliance

import (
	"context"
	"fmt"
	"net/url"
	"os"

	"github.com/cucumber/godog"
)

// TestContext is the slice of the main test context compliance steps need.
type TestContext interface {
	POST(path string, body interface{}) error
	GET(path string, headers map[string]string) error
	LastStatus() int
	GetResponseField(field string) (interface{}, error)
	SetAccessToken(token string)
}

// RegisterSteps registers compliance check and reporting steps.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &complianceSteps{tc: tc}

	ctx.Step(`^I run a KYC check for customer "([^"]*)" in "([^"]*)" with amount (\d+)$`, steps.runKYC)
	ctx.Step(`^I screen customer "([^"]*)" named "([^"]*)" from "([^"]*)"$`, steps.screenSanctions)
	ctx.Step(`^I am authenticated as the reporting client$`, steps.authenticateReportingClient)
	ctx.Step(`^I request a "([^"]*)" report for "([^"]*)" from "([^"]*)" to "([^"]*)"$`, steps.requestReport)

	ctx.Step(`^the check should pass$`, steps.checkShouldPass)
	ctx.Step(`^the screening should match$`, steps.screeningShouldMatch)
	ctx.Step(`^the screening should not match$`, steps.screeningShouldNotMatch)
}

type complianceSteps struct {
	tc TestContext
}

func (s *complianceSteps) runKYC(ctx context.Context, customerID, country string, amount int) error {
	return s.tc.POST("/compliance/kyc", map[string]interface{}{
		"customer_id": customerID,
		"country":     country,
		"amount":      amount,
	})
}

func (s *complianceSteps) screenSanctions(ctx context.Context, customerID, name, country string) error {
	return s.tc.POST("/compliance/sanctions", map[string]interface{}{
		"customer_id":   customerID,
		"customer_name": name,
		"country":       country,
	})
}

func (s *complianceSteps) authenticateReportingClient(ctx context.Context) error {
	clientID := os.Getenv("E2E_REPORT_CLIENT_ID")
	if clientID == "" {
		clientID = "reporting-client"
	}
	clientSecret := os.Getenv("E2E_REPORT_CLIENT_SECRET")
	if clientSecret == "" {
		return godog.ErrPending
	}

	if err := s.tc.POST("/auth/token", map[string]string{
		"client_id":     clientID,
		"client_secret": clientSecret,
	}); err != nil {
		return err
	}
	if s.tc.LastStatus() != 200 {
		return fmt.Errorf("token request failed with status %d", s.tc.LastStatus())
	}

	token, err := s.tc.GetResponseField("access_token")
	if err != nil {
		return err
	}
	s.tc.SetAccessToken(fmt.Sprintf("%v", token))
	return nil
}

func (s *complianceSteps) requestReport(ctx context.Context, reportType, jurisdiction, from, to string) error {
	query := url.Values{
		"report_type":  {reportType},
		"jurisdiction": {jurisdiction},
		"period_start": {from},
		"period_end":   {to},
	}
	return s.tc.GET("/compliance/reports?"+query.Encode(), nil)
}

func (s *complianceSteps) checkShouldPass(ctx context.Context) error {
	passed, err := s.tc.GetResponseField("passed")
	if err != nil {
		return err
	}
	if passed != true {
		return fmt.Errorf("expected passed=true, got %v", passed)
	}
	return nil
}

func (s *complianceSteps) screeningShouldMatch(ctx context.Context) error {
	match, err := s.tc.GetResponseField("match")
	if err != nil {
		return err
	}
	if match != true {
		return fmt.Errorf("expected match=true, got %v", match)
	}
	return nil
}

func (s *complianceSteps) screeningShouldNotMatch(ctx context.Context) error {
	match, err := s.tc.GetResponseField("match")
	if err != nil {
		return err
	}
	if match != false {
		return fmt.Errorf("expected match=false, got %v", match)
	}
	return nil
}
