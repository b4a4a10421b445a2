package providers

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	ErrUnknownProvider   = errors.New("unknown provider")
	ErrTimeout           = errors.New("provider call timed out")
	ErrIncompleteProfile = errors.New("provider returned an incomplete profile")
	ErrMissingToken      = errors.New("provider returned no token")
)

// StatusError is a non-2xx answer from a provider API.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// ProviderError is any failure talking to an identity provider.
type ProviderError struct {
	Provider Name
	Op       string
	Cause    error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %s: %v", e.Provider, e.Op, e.Cause)
}

func (e *ProviderError) Unwrap() error { return e.Cause }

// Wrap returns err as a *ProviderError, classifying deadline errors as
// ErrTimeout. nil stays nil and existing ProviderErrors are kept.
func Wrap(provider Name, op string, err error) error {
	if err == nil {
		return nil
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return err
	}
	if isTimeout(err) && !errors.Is(err, ErrTimeout) {
		err = fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return &ProviderError{Provider: provider, Op: op, Cause: err}
}

// IsTimeout reports whether err is a provider timeout.
func IsTimeout(err error) bool { return errors.Is(err, ErrTimeout) }

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
