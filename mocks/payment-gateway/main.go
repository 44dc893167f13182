// Mock payment gateway for local development. Captures succeed unless
// the customer_ref is "decline-me", which returns a 402 so the decline
// path can be exercised end to end.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync/atomic"
)

type captureRequest struct {
	Amount           int64             `json:"amount"`
	Currency         string            `json:"currency"`
	CustomerRef      string            `json:"customer_ref"`
	PaymentMethodRef string            `json:"payment_method_ref"`
	Metadata         map[string]string `json:"metadata,omitempty"`
}

var captureSeq atomic.Int64

func handleCapture(w http.ResponseWriter, r *http.Request) {
	var req captureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"reason":"malformed request"}`, http.StatusBadRequest)
		return
	}
	if req.Amount <= 0 {
		http.Error(w, `{"reason":"amount must be positive"}`, http.StatusUnprocessableEntity)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if req.CustomerRef == "decline-me" {
		w.WriteHeader(http.StatusPaymentRequired)
		_ = json.NewEncoder(w).Encode(map[string]string{"reason": "insufficient funds"})
		return
	}

	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"gateway_transaction_id": fmt.Sprintf("gw_%08d", captureSeq.Add(1)),
		"status":                 "captured",
	})
}

func main() {
	addr := ":9103"
	if v := os.Getenv("ADDR"); v != "" {
		addr = v
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /captures", handleCapture)

	log.Printf("mock payment gateway listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, mux))
}
