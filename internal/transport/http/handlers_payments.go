package httptransport

import (
	"encoding/json"
	"net/http"

	"crosspay/internal/payment"
	dErrors "crosspay/pkg/domain-errors"
)

// maxBatchSize bounds one batch request so a single call cannot occupy
// the worker pool indefinitely.
const maxBatchSize = 100

func (h *Handler) handleProcessPayment(w http.ResponseWriter, r *http.Request) {
	var in payment.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}

	result, err := h.payments.ProcessInternationalPayment(r.Context(), in)
	if err != nil {
		h.logger.Warn("payment rejected",
			"transaction_id", result.TransactionID,
			"state", result.State,
			"error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *Handler) handleProcessRegionalPayment(w http.ResponseWriter, r *http.Request) {
	var in payment.RegionalInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}

	result, err := h.payments.ProcessRegionalPayment(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

type batchRequest struct {
	Payments []payment.Input `json:"payments"`
}

type batchResponse struct {
	Results []payment.Result `json:"results"`
}

func (h *Handler) handleProcessBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}
	if len(req.Payments) == 0 {
		writeError(w, dErrors.New(dErrors.CodeValidation, "batch requires at least one payment"))
		return
	}
	if len(req.Payments) > maxBatchSize {
		writeError(w, dErrors.Newf(dErrors.CodeValidation, "batch size %d exceeds limit of %d", len(req.Payments), maxBatchSize))
		return
	}

	results := h.payments.ProcessBatch(r.Context(), req.Payments)
	writeJSON(w, http.StatusOK, batchResponse{Results: results})
}
