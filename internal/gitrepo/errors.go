package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
)

// ErrInvalidAuth indicates an incomplete or unknown auth configuration.
var ErrInvalidAuth = errors.New("invalid repository auth")

// AuthError reports rejected or missing credentials.
type AuthError struct {
	Op, URL string
	Err     error
}

func (e *AuthError) Error() string { return fmt.Sprintf("%s auth error for %s: %v", e.Op, e.URL, e.Err) }
func (e *AuthError) Unwrap() error { return e.Err }

// NotFoundError reports a missing repository or branch.
type NotFoundError struct {
	Op, URL string
	Err     error
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s not found %s: %v", e.Op, e.URL, e.Err) }
func (e *NotFoundError) Unwrap() error { return e.Err }

// UnsupportedProtocolError reports a URL scheme go-git cannot speak.
type UnsupportedProtocolError struct {
	Op, URL string
	Err     error
}

func (e *UnsupportedProtocolError) Error() string {
	return fmt.Sprintf("%s unsupported protocol %s: %v", e.Op, e.URL, e.Err)
}
func (e *UnsupportedProtocolError) Unwrap() error { return e.Err }

// NetworkTimeoutError reports a transfer that did not finish in time.
type NetworkTimeoutError struct {
	Op, URL string
	Err     error
}

func (e *NetworkTimeoutError) Error() string {
	return fmt.Sprintf("%s timed out for %s: %v", e.Op, e.URL, e.Err)
}
func (e *NetworkTimeoutError) Unwrap() error { return e.Err }

// classify wraps go-git failures into the typed errors above. Errors
// that match none of them are wrapped with the operation and URL.
func classify(op, url string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	l := strings.ToLower(err.Error())
	switch {
	case errors.Is(err, transport.ErrAuthenticationRequired),
		errors.Is(err, transport.ErrAuthorizationFailed),
		errors.Is(err, transport.ErrInvalidAuthMethod),
		errors.Is(err, ErrInvalidAuth),
		strings.Contains(l, "authentication"),
		strings.Contains(l, "auth fail"),
		strings.Contains(l, "invalid username or password"):
		return &AuthError{Op: op, URL: url, Err: err}
	case errors.Is(err, transport.ErrRepositoryNotFound),
		strings.Contains(l, "not found"),
		strings.Contains(l, "couldn't find remote ref"),
		strings.Contains(l, "repository does not exist"):
		return &NotFoundError{Op: op, URL: url, Err: err}
	case strings.Contains(l, "unsupported scheme"),
		strings.Contains(l, "unsupported protocol"),
		strings.Contains(l, "protocol not supported"):
		return &UnsupportedProtocolError{Op: op, URL: url, Err: err}
	case errors.Is(err, context.DeadlineExceeded),
		strings.Contains(l, "timeout"),
		strings.Contains(l, "timed out"):
		return &NetworkTimeoutError{Op: op, URL: url, Err: err}
	}
	return fmt.Errorf("%s %s: %w", op, url, err)
}

// IsAccessError reports whether err is one of the typed repository
// access errors.
func IsAccessError(err error) bool {
	var (
		authErr     *AuthError
		notFoundErr *NotFoundError
		protoErr    *UnsupportedProtocolError
		timeoutErr  *NetworkTimeoutError
	)
	return errors.As(err, &authErr) || errors.As(err, &notFoundErr) ||
		errors.As(err, &protoErr) || errors.As(err, &timeoutErr)
}
