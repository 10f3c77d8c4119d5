package remote

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/dell/dpais-chat-reference-app-sub000/internal/infrastructure/resilience"
)

// SearchError is a non-2xx response from the remote search backend. Status
// and body are preserved for diagnostics; the orchestrator logs and degrades
// rather than retrying here.
type SearchError struct {
	Operation  string
	StatusCode int
	Status     string
	Body       string
}

func (e *SearchError) Error() string {
	if e == nil {
		return "remote search error"
	}
	if strings.TrimSpace(e.Body) == "" {
		return fmt.Sprintf("remote %s status: %s", e.Operation, e.Status)
	}
	return fmt.Sprintf("remote %s status: %s: %s", e.Operation, e.Status, strings.TrimSpace(e.Body))
}

// IsSearchError reports whether err carries a SearchError.
func IsSearchError(err error) bool {
	var searchErr *SearchError
	return errors.As(err, &searchErr)
}

func classifyRemoteError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}

	var searchErr *SearchError
	if errors.As(err, &searchErr) {
		switch searchErr.StatusCode {
		case http.StatusRequestTimeout,
			http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
		default:
			return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}

	return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
}
