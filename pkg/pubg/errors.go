package pubg

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Error kinds. An *APIError matches exactly one of these with errors.Is.
var (
	// ErrUnauthorized is returned for HTTP 401: missing or invalid API key.
	ErrUnauthorized = errors.New("unauthorized: missing or invalid API key")
	// ErrOldTelemetry is returned for HTTP 403: the requested data is too old
	// or its format is no longer served.
	ErrOldTelemetry = errors.New("telemetry format or version rejected")
	// ErrNotFound is returned for HTTP 404.
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidContentType is returned for HTTP 415: bad Accept header.
	ErrInvalidContentType = errors.New("invalid content type")
	// ErrRateLimit is returned for HTTP 429.
	ErrRateLimit = errors.New("rate limit exceeded")
	// ErrAPI is returned for every other non-200 status.
	ErrAPI = errors.New("API error")
)

// Errors raised locally, before or instead of a network round trip.
var (
	ErrTelemetryURL        = errors.New("telemetry URL host is not allowed")
	ErrConnection          = errors.New("connection failed")
	ErrDecode              = errors.New("failed to decode response")
	ErrIndexOutOfRange     = errors.New("index out of range")
	ErrNotCollection       = errors.New("payload data is not a collection")
	ErrUnknownResourceType = errors.New("unknown resource type")
	ErrNoTelemetryAsset    = errors.New("match has no telemetry asset")
	ErrConfigRequired      = errors.New("config is required")
	ErrAPIKeyRequired      = errors.New("API key is required")
)

// statusKinds maps the statuses the API documents to their error kind.
var statusKinds = map[int]error{
	http.StatusUnauthorized:         ErrUnauthorized,
	http.StatusForbidden:            ErrOldTelemetry,
	http.StatusNotFound:             ErrNotFound,
	http.StatusUnsupportedMediaType: ErrInvalidContentType,
	http.StatusTooManyRequests:      ErrRateLimit,
}

// Rate limit response headers.
const (
	HeaderRateLimitLimit     = "X-Ratelimit-Limit"
	HeaderRateLimitRemaining = "X-Ratelimit-Remaining"
	HeaderRateLimitReset     = "X-Ratelimit-Reset"
)

// APIError is a non-200 response. It carries the response headers so callers
// can decide on retries themselves.
type APIError struct {
	StatusCode int         `json:"status_code"`
	Kind       error       `json:"-"`
	Headers    http.Header `json:"headers,omitempty"`
	Body       []byte      `json:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s (status: %d)", e.Kind, e.StatusCode)
}

// Unwrap exposes the error kind to errors.Is.
func (e *APIError) Unwrap() error {
	return e.Kind
}

// RateLimit describes the rate limit window reported by the API.
type RateLimit struct {
	Limit     int
	Remaining int
	Reset     time.Time
}

// RateLimit parses the X-Ratelimit-* headers. ok is false when the response
// did not carry them.
func (e *APIError) RateLimit() (RateLimit, bool) {
	return ParseRateLimit(e.Headers)
}

// ParseRateLimit reads the X-Ratelimit-* headers from h.
func ParseRateLimit(h http.Header) (RateLimit, bool) {
	if h == nil || h.Get(HeaderRateLimitLimit) == "" {
		return RateLimit{}, false
	}

	var limit RateLimit

	limit.Limit, _ = strconv.Atoi(h.Get(HeaderRateLimitLimit))
	limit.Remaining, _ = strconv.Atoi(h.Get(HeaderRateLimitRemaining))

	reset, err := strconv.ParseInt(h.Get(HeaderRateLimitReset), 10, 64)
	if err == nil {
		limit.Reset = time.Unix(reset, 0)
	}

	return limit, true
}

// KindForStatus returns the error kind for an HTTP status, or nil for 200.
func KindForStatus(status int) error {
	if status == http.StatusOK {
		return nil
	}

	if kind, ok := statusKinds[status]; ok {
		return kind
	}

	return ErrAPI
}

// ErrorForStatus builds the *APIError for a non-200 response. It returns nil
// for 200.
func ErrorForStatus(status int, headers http.Header, body []byte) error {
	kind := KindForStatus(status)
	if kind == nil {
		return nil
	}

	return &APIError{
		StatusCode: status,
		Kind:       kind,
		Headers:    headers.Clone(),
		Body:       body,
	}
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnauthorized checks if the error is an unauthorized error.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsRateLimited checks if the error is a rate limit error.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimit)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}

	return 0
}
