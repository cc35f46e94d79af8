package resilience

import (
	"errors"
	"net"
	"strings"
	"syscall"
)

// TransientError marks an error as safe to retry, carrying the HTTP
// status that produced it when one exists. The API clients wrap
// retryable status responses in it so the retry loop does not have to
// know each backend's status conventions.
type TransientError struct {
	Err        error
	StatusCode int
}

func (e *TransientError) Error() string {
	return e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// NewTransientError wraps err as transient. statusCode may be zero for
// non-HTTP failures.
func NewTransientError(err error, statusCode int) *TransientError {
	return &TransientError{Err: err, StatusCode: statusCode}
}

// IsTransient reports whether err is worth retrying: an explicit
// TransientError anywhere in the chain, a network timeout, or a
// connection-level failure from the HTTP transport.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var te *TransientError
	if errors.As(err, &te) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	// Some transport failures reach us flattened into the message by
	// net/http or the SDK; match the ones the model and search
	// backends actually produce.
	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{
		"connection reset by peer",
		"i/o timeout",
		"tls handshake timeout",
		"no such host",
		"server closed idle connection",
	} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}

	return false
}

// IsTransientHTTPStatus reports whether a status from the model or
// search API warrants a retry. 529 is the Anthropic overloaded status.
func IsTransientHTTPStatus(statusCode int) bool {
	switch statusCode {
	case 429, 500, 502, 503, 504, 529:
		return true
	}
	return false
}
