package middleware

import (
	"mime"
	"net/http"

	"flightline/pkg/logger"
)

// ContentTypeValidation rejects body-carrying requests that do not declare
// application/json. GET and DELETE pass through untouched.
func ContentTypeValidation(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if methodCarriesBody(r.Method) {
				mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
				if err != nil || mediaType != "application/json" {
					rejectContentType(w, log, r, mediaType)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func methodCarriesBody(method string) bool {
	return method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch
}

func rejectContentType(w http.ResponseWriter, log *logger.Logger, r *http.Request, mediaType string) {
	log.Warn("Invalid Content-Type header",
		"request_id", requestIDFromContext(r),
		"content_type", mediaType,
		"path", r.URL.Path,
		"method", r.Method,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnsupportedMediaType)
	_, _ = w.Write([]byte(`{"error":"Content-Type must be application/json"}`))
}
