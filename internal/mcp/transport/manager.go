package transport

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pcos-cds-mcp-server/internal/domain"
)

// Manager handles transport selection, creation, and lifecycle. Selection
// checks command line flags, then the MCP_TRANSPORT environment variable,
// then configuration, and falls back to stdio.
type Manager struct {
	logger    *logrus.Logger
	config    *domain.MCPConfig
	transport Transport
	clients   map[string]*ClientInfo
	clientsMu sync.RWMutex
	mu        sync.RWMutex
}

// NewManager creates a new transport manager
func NewManager(logger *logrus.Logger, config *domain.MCPConfig) *Manager {
	return &Manager{
		logger:  logger,
		config:  config,
		clients: make(map[string]*ClientInfo),
	}
}

// AutoDetectTransport determines which transport this process should run
func (m *Manager) AutoDetectTransport() (TransportType, error) {
	m.logger.Debug("Auto-detecting MCP transport type")

	if transportType, source, ok := m.detectRequestedTransport(); ok {
		m.logger.WithFields(logrus.Fields{
			"transport_type": string(transportType),
			"source":         source,
		}).Info("Detected MCP transport")
		return transportType, nil
	}

	if isTerminal() {
		m.logger.Info("Detected terminal environment, defaulting to stdio transport")
		return TransportStdio, nil
	}

	m.logger.Info("No specific transport requested, defaulting to stdio")
	return TransportStdio, nil
}

func (m *Manager) detectRequestedTransport() (TransportType, string, bool) {
	for _, arg := range os.Args[1:] {
		switch arg {
		case "--stdio", "-stdio":
			return TransportStdio, "command line argument", true
		case "--http", "-http":
			return TransportHTTPSSE, "command line argument", true
		}
	}

	if requested := os.Getenv("MCP_TRANSPORT"); requested != "" {
		if transportType, ok := parseTransportType(requested); ok {
			return transportType, "MCP_TRANSPORT environment variable", true
		}
		m.logger.WithField("transport_type", requested).Warn("Unknown transport type in MCP_TRANSPORT")
	}

	if m.config != nil && m.config.TransportType != "" {
		if transportType, ok := parseTransportType(m.config.TransportType); ok {
			return transportType, "configuration", true
		}
		m.logger.WithField("transport_type", m.config.TransportType).Warn("Unknown transport type in configuration")
	}

	return "", "", false
}

func parseTransportType(value string) (TransportType, bool) {
	switch value {
	case "stdio":
		return TransportStdio, true
	case "http", "http-sse":
		return TransportHTTPSSE, true
	default:
		return "", false
	}
}

// CreateTransport creates a transport instance of the given type
func (m *Manager) CreateTransport(transportType TransportType) (Transport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch transportType {
	case TransportStdio:
		m.logger.Info("Creating stdio transport")
		return NewStdioTransport(m.logger), nil

	case TransportHTTPSSE:
		host := "localhost"
		port := 8080

		if m.config != nil {
			if m.config.HTTPHost != "" {
				host = m.config.HTTPHost
			}
			if m.config.HTTPPort > 0 {
				port = m.config.HTTPPort
			}
		}
		if envHost := os.Getenv("MCP_HTTP_HOST"); envHost != "" {
			host = envHost
		}
		if envPort := os.Getenv("MCP_HTTP_PORT"); envPort != "" {
			if p, err := strconv.Atoi(envPort); err == nil {
				port = p
			}
		}

		m.logger.WithFields(logrus.Fields{
			"host": host,
			"port": port,
		}).Info("Creating HTTP SSE transport")

		return NewHTTPSSETransport(m.logger, host, port), nil

	default:
		return nil, fmt.Errorf("unsupported transport type: %s", transportType)
	}
}

// StartTransport auto-detects, creates, and starts the transport
func (m *Manager) StartTransport(ctx context.Context) (Transport, error) {
	transportType, err := m.AutoDetectTransport()
	if err != nil {
		return nil, fmt.Errorf("failed to detect transport: %w", err)
	}

	transport, err := m.CreateTransport(transportType)
	if err != nil {
		return nil, fmt.Errorf("failed to create transport: %w", err)
	}

	if err := transport.Start(ctx); err != nil {
		transport.Close()
		return nil, fmt.Errorf("failed to start transport: %w", err)
	}

	m.mu.Lock()
	m.transport = transport
	m.mu.Unlock()

	m.logger.WithField("transport_type", transport.GetType()).Info("Transport started successfully")

	return transport, nil
}

// RegisterClient records a new MCP client connection
func (m *Manager) RegisterClient(clientID string, transportType string, metadata map[string]string) {
	m.clientsMu.Lock()
	defer m.clientsMu.Unlock()

	now := time.Now()
	m.clients[clientID] = &ClientInfo{
		ID:            clientID,
		TransportType: transportType,
		ConnectedAt:   now,
		LastActivity:  now,
		Metadata:      metadata,
	}

	m.logger.WithFields(logrus.Fields{
		"client_id":      clientID,
		"transport_type": transportType,
	}).Info("MCP client registered")
}

// UnregisterClient removes a client registration
func (m *Manager) UnregisterClient(clientID string) {
	m.clientsMu.Lock()
	defer m.clientsMu.Unlock()

	if client, exists := m.clients[clientID]; exists {
		delete(m.clients, clientID)
		m.logger.WithFields(logrus.Fields{
			"client_id":      clientID,
			"transport_type": client.TransportType,
			"duration":       time.Since(client.ConnectedAt).String(),
		}).Info("MCP client unregistered")
	}
}

// UpdateClientActivity stamps the last activity time for a client
func (m *Manager) UpdateClientActivity(clientID string) {
	m.clientsMu.Lock()
	defer m.clientsMu.Unlock()

	if client, exists := m.clients[clientID]; exists {
		client.LastActivity = time.Now()
	}
}

// GetClients returns a snapshot of all registered clients
func (m *Manager) GetClients() []ClientInfo {
	m.clientsMu.RLock()
	defer m.clientsMu.RUnlock()

	clients := make([]ClientInfo, 0, len(m.clients))
	for _, client := range m.clients {
		clients = append(clients, *client)
	}
	return clients
}

// GetActiveTransport returns the currently active transport
func (m *Manager) GetActiveTransport() Transport {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.transport
}

// Shutdown closes the active transport and clears client registrations
func (m *Manager) Shutdown(ctx context.Context) error {
	m.logger.Info("Shutting down transport manager")

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.transport != nil {
		if err := m.transport.Close(); err != nil {
			m.logger.WithError(err).Error("Error closing transport")
			return err
		}
		m.transport = nil
	}

	m.clientsMu.Lock()
	m.clients = make(map[string]*ClientInfo)
	m.clientsMu.Unlock()

	m.logger.Info("Transport manager shutdown complete")
	return nil
}

// isTerminal reports whether stdin is a character device rather than a
// pipe or file, which suggests an interactive launch.
func isTerminal() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}
