package httptransport

import (
	"encoding/json"
	"net/http"

	"crosspay/internal/tax"
	dErrors "crosspay/pkg/domain-errors"
)

func (h *Handler) handleCalculateTax(w http.ResponseWriter, r *http.Request) {
	var in tax.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}

	result, err := h.taxEngine.CalculateTax(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type invoiceResponse struct {
	InvoiceNumber string `json:"invoice_number"`
}

func (h *Handler) handleGenerateInvoice(w http.ResponseWriter, r *http.Request) {
	var invoice tax.Invoice
	if err := json.NewDecoder(r.Body).Decode(&invoice); err != nil {
		writeError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}

	number, err := h.invoicer.GenerateTaxInvoice(r.Context(), invoice)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, invoiceResponse{InvoiceNumber: number})
}
