// Mock exchange-rate provider for local development. Serves fixed
// cross rates with a little jitter so cached and fresh responses are
// distinguishable.
package main

import (
	"encoding/json"
	"log"
	"math/rand"
	"net/http"
	"os"
	"time"
)

var eurRates = map[string]float64{
	"EUR": 1.0,
	"USD": 1.0870,
	"GBP": 0.8430,
	"CHF": 0.9380,
	"AUD": 1.6520,
	"CAD": 1.4710,
	"JPY": 163.20,
	"SEK": 11.320,
	"NOK": 11.710,
	"DKK": 7.4590,
	"PLN": 4.3080,
}

func handleRates(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")

	fromRate, okFrom := eurRates[from]
	toRate, okTo := eurRates[to]
	if !okFrom || !okTo {
		http.Error(w, `{"error":"unknown currency pair"}`, http.StatusNotFound)
		return
	}

	// Cross rate through EUR, nudged by up to 10 bps.
	rate := toRate / fromRate
	rate *= 1 + (rand.Float64()-0.5)*0.002

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"rate":  rate,
		"as_of": time.Now().UTC(),
	})
}

func main() {
	addr := ":9101"
	if v := os.Getenv("ADDR"); v != "" {
		addr = v
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /rates", handleRates)

	log.Printf("mock rate source listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, mux))
}
