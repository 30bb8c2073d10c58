package ai

import (
	"errors"
	"fmt"
)

var (
	ErrNoProvider      = errors.New("no AI provider selected")
	ErrUnknownProvider = errors.New("unknown AI provider")
	ErrMissingKey      = errors.New("API key is required for this provider")
	ErrMissingEndpoint = errors.New("endpoint is required for this provider")
	ErrMissingModel    = errors.New("model is required for this provider")
	ErrEmptyResponse   = errors.New("empty response")
)

// Kind classifies dispatch failures for the UI: configuration problems send
// the user back to the settings form, the others are shown inline.
type Kind int

const (
	KindConfig Kind = iota + 1
	KindTransport
	KindShape
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindTransport:
		return "transport"
	case KindShape:
		return "shape"
	}
	return "unknown"
}

// DispatchError is returned by every Dispatcher.
type DispatchError struct {
	Kind     Kind
	Provider string // display label
	Status   int
	Body     string // at most maxErrorBody runes of the response
	Err      error
}

func (e *DispatchError) Error() string {
	switch e.Kind {
	case KindTransport:
		if e.Status != 0 {
			return fmt.Sprintf("%s API %d: %s", e.Provider, e.Status, e.Body)
		}
		return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
	case KindShape:
		return "Empty response from " + e.Provider
	}
	if e.Provider == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *DispatchError) Unwrap() error { return e.Err }

// IsConfig reports whether err is a configuration failure.
func IsConfig(err error) bool {
	var de *DispatchError
	return errors.As(err, &de) && de.Kind == KindConfig
}

func configError(label string, err error) *DispatchError {
	return &DispatchError{Kind: KindConfig, Provider: label, Err: err}
}
