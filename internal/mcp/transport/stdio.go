package transport

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

const (
	// Patient records with full lab panels can exceed bufio's default
	// 64KB token limit, so the scanner gets a larger ceiling.
	stdioInitialBuffer = 64 * 1024
	stdioMaxBuffer     = 1024 * 1024
)

// StdioTransport implements MCP communication over stdin/stdout using
// newline-delimited JSON-RPC messages.
type StdioTransport struct {
	logger  *logrus.Logger
	reader  *bufio.Scanner
	writer  io.Writer
	mu      sync.RWMutex
	writeMu sync.Mutex
	closed  bool
}

// NewStdioTransport creates a stdio transport bound to the process
// stdin/stdout, the usual arrangement for locally spawned MCP servers.
func NewStdioTransport(logger *logrus.Logger) *StdioTransport {
	return newStdioTransport(logger, os.Stdin, os.Stdout)
}

func newStdioTransport(logger *logrus.Logger, r io.Reader, w io.Writer) *StdioTransport {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, stdioInitialBuffer), stdioMaxBuffer)
	return &StdioTransport{
		logger: logger,
		reader: scanner,
		writer: w,
	}
}

// Start initializes the stdio transport
func (s *StdioTransport) Start(ctx context.Context) error {
	if s.IsClosed() {
		return fmt.Errorf("transport is closed")
	}

	s.logger.Info("Starting stdio transport for MCP communication")
	return nil
}

// ReadMessage reads one newline-delimited JSON-RPC message from stdin.
// It returns io.EOF when the peer closes the stream.
func (s *StdioTransport) ReadMessage() ([]byte, error) {
	if s.IsClosed() {
		return nil, fmt.Errorf("transport is closed")
	}

	// Scan blocks without holding the transport lock so Close stays
	// callable from another goroutine.
	if !s.reader.Scan() {
		if err := s.reader.Err(); err != nil {
			s.logger.WithError(err).Error("Failed to read from stdin")
			return nil, fmt.Errorf("failed to read message: %w", err)
		}
		return nil, io.EOF
	}

	message := s.reader.Bytes()
	s.logger.WithField("message_length", len(message)).Debug("Received message via stdio")

	return message, nil
}

// WriteMessage writes a JSON-RPC message to stdout followed by a newline
func (s *StdioTransport) WriteMessage(message []byte) error {
	if s.IsClosed() {
		return fmt.Errorf("transport is closed")
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if _, err := s.writer.Write(message); err != nil {
		s.logger.WithError(err).Error("Failed to write message to stdout")
		return fmt.Errorf("failed to write message: %w", err)
	}
	if _, err := s.writer.Write([]byte("\n")); err != nil {
		s.logger.WithError(err).Error("Failed to write newline to stdout")
		return fmt.Errorf("failed to write newline: %w", err)
	}

	s.logger.WithField("message_length", len(message)).Debug("Sent message via stdio")
	return nil
}

// WriteJSONMessage writes a JSON object as a message
func (s *StdioTransport) WriteJSONMessage(obj interface{}) error {
	data, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return s.WriteMessage(data)
}

// Close closes the stdio transport
func (s *StdioTransport) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	s.logger.Info("Stdio transport closed")
	return nil
}

// IsClosed returns whether the transport is closed
func (s *StdioTransport) IsClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// GetType returns the transport type
func (s *StdioTransport) GetType() string {
	return string(TransportStdio)
}
