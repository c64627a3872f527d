package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"flightline/pkg/logger"
)

type contextKey string

// RequestIDKey carries the per-request id through the context; Recovery and
// downstream handlers read it back for correlated log lines.
const RequestIDKey contextKey = "request_id"

// statusRecorder remembers the first status code written so the completion
// log line can report it. Later WriteHeader calls are dropped.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (sr *statusRecorder) WriteHeader(statusCode int) {
	if !sr.written {
		sr.statusCode = statusCode
		sr.written = true
		sr.ResponseWriter.WriteHeader(statusCode)
	}
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if !sr.written {
		sr.WriteHeader(http.StatusOK)
	}
	return sr.ResponseWriter.Write(b)
}

// RequestLogging tags each request with a random id and logs a start and
// completion line around the handler.
func RequestLogging(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := newRequestID()

			r = r.WithContext(context.WithValue(r.Context(), RequestIDKey, requestID))
			recorder := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			log.Info("HTTP request started",
				"request_id", requestID,
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
			)

			next.ServeHTTP(recorder, r)

			log.Info("HTTP request completed",
				"request_id", requestID,
				"method", r.Method,
				"path", r.URL.Path,
				"status", recorder.statusCode,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

func newRequestID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}
