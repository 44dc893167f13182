package httptransport

import (
	"encoding/json"
	"net/http"
	"time"

	"crosspay/internal/compliance"
	"crosspay/internal/platform/middleware"
	dErrors "crosspay/pkg/domain-errors"
)

func (h *Handler) handleKYC(w http.ResponseWriter, r *http.Request) {
	var in compliance.KYCInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}

	result, err := h.monitor.PerformKYCCheck(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleSanctions(w http.ResponseWriter, r *http.Request) {
	var in compliance.SanctionsInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}

	result, err := h.monitor.CheckSanctionsList(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleGDPR(w http.ResponseWriter, r *http.Request) {
	var in compliance.GDPRInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}

	result, err := h.monitor.ValidateGDPRCompliance(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	periodStart, err := time.Parse(time.RFC3339, q.Get("period_start"))
	if err != nil {
		writeError(w, dErrors.New(dErrors.CodeValidation, "period_start must be RFC 3339"))
		return
	}
	periodEnd, err := time.Parse(time.RFC3339, q.Get("period_end"))
	if err != nil {
		writeError(w, dErrors.New(dErrors.CodeValidation, "period_end must be RFC 3339"))
		return
	}

	report, err := h.reporter.GenerateComplianceReport(r.Context(),
		q.Get("report_type"), q.Get("jurisdiction"), periodStart, periodEnd)
	if err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info("compliance report generated",
		"artifact_id", report.ArtifactID,
		"report_type", report.ReportType,
		"requested_by", middleware.GetSubject(r.Context()))
	writeJSON(w, http.StatusOK, report)
}
