package e2e

import (
	"github.com/cucumber/godog"

	"crosspay/e2e/steps/common"
	"crosspay/e2e/steps/compliance"
	"crosspay/e2e/steps/payments"
)

// RegisterSteps registers all step definitions from the modular packages.
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Generic request and assertion steps.
	common.RegisterSteps(ctx, tc)

	// Payment pipeline steps.
	payments.RegisterSteps(ctx, tc)

	// Compliance check and reporting steps.
	compliance.RegisterSteps(ctx, tc)
}
