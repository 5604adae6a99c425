package metadata

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"stockstudio/internal/domain"
)

// Error is a categorized provider failure. Status is the upstream HTTP status
// when the provider responded at all, 0 otherwise.
type Error struct {
	Kind    domain.ErrorKind
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newStatusError(status int, message string) *Error {
	kind := domain.KindNetworkFailure
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = domain.KindAuthFailure
	case status == http.StatusTooManyRequests:
		kind = domain.KindRateLimited
	case status >= 400 && status < 500:
		kind = domain.KindMalformedRequest
	}
	return &Error{Kind: kind, Status: status, Message: message}
}

func emptyResponseError(message string) *Error {
	return &Error{Kind: domain.KindEmptyResponse, Message: message}
}

// Classify maps any generation failure onto a stored error detail. Typed
// provider errors keep their category; everything else is matched against
// the message the way upstream SDKs word their failures, falling back to a
// transient network failure.
func Classify(err error) domain.ErrorDetail {
	var perr *Error
	if errors.As(err, &perr) {
		return domain.NewErrorDetail(perr.Kind, perr.Message)
	}
	msg := err.Error()
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "quota") || strings.Contains(lower, "rate") || strings.Contains(lower, "limit"):
		return domain.NewErrorDetail(domain.KindRateLimited, msg)
	case strings.Contains(lower, "api key") || strings.Contains(lower, "credential") ||
		strings.Contains(lower, "unauthorized") || strings.Contains(lower, "permission"):
		return domain.NewErrorDetail(domain.KindAuthFailure, msg)
	default:
		return domain.NewErrorDetail(domain.KindNetworkFailure, msg)
	}
}
