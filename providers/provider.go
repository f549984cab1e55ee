// Package providers translates the uniform generate call into each vendor's
// HTTP protocol and parses the vendor response back into plain text.
package providers

import (
	"context"
	"errors"
	"fmt"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Request is one stateless generation call. Format is carried through but
// does not change what is sent to the vendor.
type Request struct {
	Prompt      string
	Model       string
	Temperature float64
	Format      Format
}

// Provider is implemented once per vendor.
type Provider interface {
	// Name returns the canonical provider id, e.g. "openai".
	Name() string

	// Generate performs a single round trip. Transport, status and decoding
	// failures are logged and reported as ok == false; they never surface
	// as errors. A response without text is also ok == false but not logged.
	Generate(ctx context.Context, req Request) (text string, ok bool)
}

var (
	// ErrConfiguration is returned at construction when a required setting
	// cannot be resolved.
	ErrConfiguration = errors.New("configuration error")

	ErrUnknownProvider = errors.New("unknown provider")
)

// APIError is a vendor error status (>= 400) with the vendor's message.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (%d): %s", e.Provider, e.StatusCode, e.Message)
}
