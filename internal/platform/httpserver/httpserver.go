package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server with defaults sized for the payment API.
// The write timeout leaves headroom for a capture round trip plus the
// retry budget of the external clients.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
