// Package httpserver builds the API's http.Server. The per-request timeout
// lives in the middleware chain; only connection-level limits belong here.
package httpserver

import (
	"net/http"
	"time"
)

// Requests are small JSON documents behind the session gate, so tight
// header limits are safe.
const (
	readHeaderTimeout = 5 * time.Second
	idleTimeout       = 2 * time.Minute
)

// New builds the server for the given address and router.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}
}
