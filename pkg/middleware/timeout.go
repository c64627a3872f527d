package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// deadlineWriter blocks the wrapped handler from writing once the request
// deadline has fired, so the timeout response is the only one the client sees.
type deadlineWriter struct {
	http.ResponseWriter
	mu         sync.Mutex
	expired    bool
	written    bool
	statusCode int
}

func (dw *deadlineWriter) WriteHeader(code int) {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	if dw.expired || dw.written {
		return
	}

	dw.statusCode = code
	dw.written = true
	dw.ResponseWriter.WriteHeader(code)
}

func (dw *deadlineWriter) Write(b []byte) (int, error) {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	if dw.expired {
		return 0, http.ErrHandlerTimeout
	}

	if !dw.written {
		dw.statusCode = http.StatusOK
		dw.written = true
	}

	return dw.ResponseWriter.Write(b)
}

func (dw *deadlineWriter) expire() {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	dw.expired = true
}

// RequestTimeout bounds the whole handler call. The context deadline is also
// propagated so store calls further down give up at the same time.
func RequestTimeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			r = r.WithContext(ctx)
			dw := &deadlineWriter{ResponseWriter: w}

			done := make(chan struct{})
			go func() {
				next.ServeHTTP(dw, r)
				close(done)
			}()

			select {
			case <-done:
				return
			case <-ctx.Done():
				dw.expire()
				dw.mu.Lock()
				if !dw.written {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusServiceUnavailable)
					_, _ = w.Write([]byte(`{"error":"Request timeout"}`))
					dw.written = true
				}
				dw.mu.Unlock()
			}
		})
	}
}
