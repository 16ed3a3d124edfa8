// Package httpserver builds the process's HTTP server.
package httpserver

import (
	"net/http"
	"time"
)

// New returns an http.Server for the API. Write and idle timeouts stay
// generous because receipt documents are served whole from the handler; the
// header timeout is what guards against slowloris clients.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
