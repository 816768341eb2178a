package mcp

import (
	"time"
)

// ServerConfig defines how the MCP server presents itself and listens
type ServerConfig struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Transport string `json:"transport"`      // stdio, http
	Addr      string `json:"addr,omitempty"` // for http
}

// ServerStatus represents the current status of the MCP server
type ServerStatus struct {
	Name      string
	State     State
	Error     error
	StartedAt time.Time
	Transport string
	Tools     []string
}

// State represents the current state of the MCP server
type State int

const (
	StateStarting State = iota
	StateRunning
	StateError
	StateStopped
)

// String returns the string representation of a State
func (s State) String() string {
	switch s {
	case StateStarting:
		return "Starting"
	case StateRunning:
		return "Running"
	case StateError:
		return "Error"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}
