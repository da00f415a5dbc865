package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"golang.org/x/time/rate"

	apierrors "fipulse/internal/errors"
	"fipulse/internal/infrastructure"
)

// RequestLogger logs one structured line per request with the trace ID from
// the chi request-id middleware.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			ctx := r.Context()
			if reqID := middleware.GetReqID(ctx); reqID != "" {
				ctx = infrastructure.WithTraceID(ctx, reqID)
			} else {
				ctx = infrastructure.EnsureTraceID(ctx)
			}
			r = r.WithContext(ctx)

			next.ServeHTTP(ww, r)

			logger.InfoContext(ctx, "request completed",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("duration", time.Since(start)))
		})
	}
}

// RateLimit applies a shared token-bucket limiter to the API.
func RateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(rate.Limit(rps), burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				render.Render(w, r, apierrors.NewErrorResponse(
					apierrors.New(http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests")))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
