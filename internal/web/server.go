// Package web serves a read-only JSON view of the decision records next to
// the gateway runtime. It never mutates records.
package web

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/hpungsan/warden/internal/config"
	"github.com/hpungsan/warden/internal/logger"
)

const shutdownTimeout = 5 * time.Second

// NewServer creates the admin HTTP server bound to addr.
func NewServer(db *sql.DB, cfg *config.Config, version, addr string) *http.Server {
	h := &Handlers{db: db, cfg: cfg, version: version}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", h.HandleHealth)
	mux.HandleFunc("GET /records", h.HandleList)
	mux.HandleFunc("GET /records/{card_id}", h.HandleDetail)
	mux.HandleFunc("GET /records/{card_id}/roles", h.HandleRoles)
	mux.HandleFunc("GET /members/{user_id}/record", h.HandleLookup)

	return &http.Server{
		Addr:              addr,
		Handler:           securityHeaders(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// securityHeaders adds security-related HTTP headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'none'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// Serve runs srv until ctx ends, then shuts it down gracefully.
func Serve(ctx context.Context, srv *http.Server, log *logger.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.Info("admin server listening", "addr", srv.Addr)
	if strings.HasPrefix(srv.Addr, ":") || strings.Contains(srv.Addr, "0.0.0.0") || strings.Contains(srv.Addr, "[::]") {
		log.Warn("admin server is bound to all interfaces; records are readable from the network", "addr", srv.Addr)
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
