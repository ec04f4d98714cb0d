// Package metrics exposes the Prometheus metrics of the cloudplaya client.
// All metrics are defined in their respective packages (client, session,
// pagination) via promauto to keep the packages free of import cycles.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Registry is the default Prometheus registry used by the client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Mux returns a handler serving /metrics and /health.
func Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", healthHandler)
	return mux
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

// Serve serves Mux on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, logger zerolog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("Serving metrics")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - cloudplaya_requests_total{operation, status} (Counter): Calls by operation and HTTP status
//     (status "transport_error" when no response arrived)
//   - cloudplaya_request_duration_seconds{operation} (Histogram): Call duration by operation
//   - cloudplaya_errors_total{kind} (Counter): Errors by kind (remote, transport, payload)
//
// Pagination Metrics (pkg/pagination):
//   - cloudplaya_pages_fetched_total (Counter): Result pages fetched by iterators
//   - cloudplaya_items_yielded_total (Counter): Items handed to iterator consumers
//
// Session Metrics (pkg/session):
//   - cloudplaya_logins_total{result} (Counter): Login attempts by result
//   - cloudplaya_session_store_ops_total{backend, operation, result} (Counter):
//     Session store loads and saves by backend (file, redis)
//
// Example Prometheus Queries:
//
//   # Remote rejection rate
//   rate(cloudplaya_errors_total{kind="remote"}[5m])
//
//   # P95 searchLibrary latency
//   histogram_quantile(0.95, rate(cloudplaya_request_duration_seconds_bucket{operation="searchLibrary"}[5m]))
//
//   # Average items per page
//   rate(cloudplaya_items_yielded_total[5m]) / rate(cloudplaya_pages_fetched_total[5m])
