package channel

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownProvider is returned when no factory is registered for a channel name.
	ErrUnknownProvider = errors.New("unknown channel provider")
	// ErrInvalidConfig is returned when a channel config fails validation.
	ErrInvalidConfig = errors.New("invalid channel config")
)

// TransportError reports a failed outbound call to a channel provider:
// a network error, a timeout, or a non-2xx response.
type TransportError struct {
	Provider   string
	StatusCode int
	// Status is the provider's status text, including a body excerpt when available.
	Status string
	Err    error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("channel %s: transport error: %s", e.Provider, e.Status)
	}
	return fmt.Sprintf("channel %s: transport error: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransportError reports whether err wraps a *TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
