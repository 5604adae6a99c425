package domain

import (
	"strings"
	"unicode/utf8"
)

// ErrorKind is the coarse failure category attached to an errored work item.
type ErrorKind string

const (
	KindAuthFailure      ErrorKind = "auth_failure"
	KindRateLimited      ErrorKind = "rate_limited"
	KindMalformedRequest ErrorKind = "malformed_request"
	KindNetworkFailure   ErrorKind = "network_failure"
	KindEmptyResponse    ErrorKind = "empty_response"
)

// maxErrorMessageLen bounds the stored message so raw provider errors stay
// displayable in a status column.
const maxErrorMessageLen = 160

// ErrorDetail is the per-item failure record: a category plus a short
// human-readable message.
type ErrorDetail struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// NewErrorDetail builds an ErrorDetail, truncating the message for display.
// The cut lands on a rune boundary so multi-byte provider messages stay
// valid UTF-8.
func NewErrorDetail(kind ErrorKind, message string) ErrorDetail {
	message = strings.TrimSpace(message)
	if len(message) > maxErrorMessageLen {
		cut := maxErrorMessageLen - 3
		for cut > 0 && !utf8.RuneStart(message[cut]) {
			cut--
		}
		message = message[:cut] + "..."
	}
	return ErrorDetail{Kind: kind, Message: message}
}
