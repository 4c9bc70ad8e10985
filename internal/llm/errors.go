package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error kinds returned by Client.Generate. Wrapped errors keep the underlying cause.
var (
	// ErrMissingCredential means no API key is configured. Checked before any network call.
	ErrMissingCredential = errors.New("gemini API key is not configured")
	// ErrNetwork covers DNS, connect and reset failures.
	ErrNetwork = errors.New("network error calling model API")
	// ErrTimeout means the attempt exceeded the request timeout.
	ErrTimeout = errors.New("model API request timed out")
	// ErrInvalidResponse means the model answered with an unusable envelope.
	ErrInvalidResponse = errors.New("invalid response from model API")
)

// UpstreamError is a non-2xx answer from the model API.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("model API error (%d): %s", e.StatusCode, e.Body)
}

// Class tells the retry loop what to do with an error.
type Class int

const (
	// Terminal errors propagate on first occurrence.
	Terminal Class = iota
	// Retriable errors are transient upstream failures worth another attempt.
	Retriable
)

func (c Class) String() string {
	if c == Retriable {
		return "retriable"
	}
	return "terminal"
}

var retriableStatus = map[int]bool{
	http.StatusInternalServerError: true,
	http.StatusTooManyRequests:     true,
	http.StatusServiceUnavailable:  true,
}

// Classify maps an error to Retriable or Terminal. Only upstream errors with
// status 500/429/503, or whose body reports the model as overloaded, are retriable.
func Classify(err error) Class {
	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		return Terminal
	}
	if retriableStatus[upstream.StatusCode] || strings.Contains(strings.ToLower(upstream.Body), "overloaded") {
		return Retriable
	}
	return Terminal
}

// outcome is the metrics label for an attempt result.
func outcome(err error) string {
	var upstream *UpstreamError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &upstream):
		return "upstream_error"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrNetwork):
		return "network_error"
	case errors.Is(err, ErrInvalidResponse):
		return "invalid_response"
	default:
		return "error"
	}
}
