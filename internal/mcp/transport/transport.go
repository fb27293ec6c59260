// Package transport provides the wire layer for the MCP server: a
// newline-delimited stdio transport for local agent hosts and an HTTP
// transport with Server-Sent Events for remote ones, plus a manager
// that picks between them at startup.
package transport

import (
	"context"
	"time"
)

// Transport is the interface shared by all MCP transport mechanisms
type Transport interface {
	// Start initializes the transport
	Start(ctx context.Context) error

	// ReadMessage reads the next raw message from the transport
	ReadMessage() ([]byte, error)

	// WriteMessage sends a raw message via the transport
	WriteMessage(message []byte) error

	// WriteJSONMessage marshals obj and sends it as a message
	WriteJSONMessage(obj interface{}) error

	// Close closes the transport and cleans up resources
	Close() error

	// IsClosed returns whether the transport is closed
	IsClosed() bool

	// GetType returns the transport type identifier
	GetType() string
}

// TransportType represents the type of transport
type TransportType string

const (
	TransportStdio   TransportType = "stdio"
	TransportHTTPSSE TransportType = "http-sse"
)

// ClientInfo describes a connected MCP client as seen by the manager
type ClientInfo struct {
	ID            string            `json:"id"`
	TransportType string            `json:"transport_type"`
	ConnectedAt   time.Time         `json:"connected_at"`
	LastActivity  time.Time         `json:"last_activity"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}
