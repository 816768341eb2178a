package mcp

import (
	"strings"
)

// Supported transports
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// normalizeTransport maps an empty value to stdio and rejects unknown kinds
func normalizeTransport(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", TransportStdio:
		return TransportStdio, nil
	case TransportHTTP:
		return TransportHTTP, nil
	default:
		return "", NewTransportError("unsupported transport type", kind, nil)
	}
}

// TransportError represents transport-specific errors
type TransportError struct {
	Message   string
	Transport string
	Cause     error
}

// NewTransportError creates a new TransportError
func NewTransportError(message, transport string, cause error) *TransportError {
	return &TransportError{
		Message:   message,
		Transport: transport,
		Cause:     cause,
	}
}

// Error implements the error interface
func (e *TransportError) Error() string {
	if e.Cause != nil {
		return e.Message + " (" + e.Transport + "): " + e.Cause.Error()
	}
	return e.Message + " (" + e.Transport + ")"
}

// Unwrap returns the underlying cause error
func (e *TransportError) Unwrap() error {
	return e.Cause
}
