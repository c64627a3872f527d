package http

import (
	"net/http"
	"strconv"
	"time"

	"flightline/pkg/config"
	apperrors "flightline/pkg/errors"
)

func ExtractLimitOffset(r *http.Request) (int, int64, error) {
	query := r.URL.Query()

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	var offset int64 = 0
	if s := query.Get("offset"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid offset parameter: " + s)
		}
		offset = int64(v)
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	return limit, offset, nil
}

// ExtractTimeParam parses an optional RFC3339 query parameter. Returns nil
// when the parameter is absent.
func ExtractTimeParam(r *http.Request, name string) (*time.Time, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid " + name + " parameter, must be RFC3339")
	}
	return &parsed, nil
}

// RequesterID identifies the caller. The session layer in front of these
// services resolves authentication and forwards the user id in a header.
func RequesterID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}

// IsAdmin reports whether the caller carries the administrative flag set by
// the session layer.
func IsAdmin(r *http.Request) bool {
	return r.Header.Get("X-Admin") == "true"
}
