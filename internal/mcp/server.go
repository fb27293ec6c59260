// Package mcp provides the MCP server implementation. The server runs
// standalone: agent assessments happen in process, history persists to
// SQLite, and responses cache in memory.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/pcos-cds-mcp-server/internal/agent"
	"github.com/pcos-cds-mcp-server/internal/cache"
	"github.com/pcos-cds-mcp-server/internal/config"
	"github.com/pcos-cds-mcp-server/internal/domain"
	"github.com/pcos-cds-mcp-server/internal/history"
	"github.com/pcos-cds-mcp-server/internal/mcp/protocol"
	"github.com/pcos-cds-mcp-server/internal/mcp/tools"
	"github.com/pcos-cds-mcp-server/internal/mcp/transport"
	"github.com/pcos-cds-mcp-server/internal/service"
)

const (
	serverName    = "pcos-cds-mcp-server"
	serverVersion = "1.0.0"
)

// Server exposes the clinical decision support toolkit over MCP. On stdio
// the SDK frames the session; over HTTP the server drives its own
// JSON-RPC loop against the protocol core.
type Server struct {
	config          *config.LiteConfig
	logger          *logrus.Logger
	mcpServer       *mcp.Server
	transportMgr    *transport.Manager
	activeTransport transport.Transport
	core            *protocol.ProtocolCore
	router          *protocol.MessageRouter
	toolRegistry    *tools.ToolRegistry
	agents          *agent.Registry
	assessments     *service.AssessmentService
	historyStore    history.Store
	responses       *cache.MemoryCache
}

// ServerOption is a functional option for Server.
type ServerOption func(*Server) error

// WithHistoryStore sets a custom assessment history store.
func WithHistoryStore(store history.Store) ServerOption {
	return func(s *Server) error {
		s.historyStore = store
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.logger = logger
		return nil
	}
}

// NewServer creates a new MCP server instance. It requires no external
// services; history lives in SQLite under the configured data directory.
func NewServer(cfg *config.LiteConfig, opts ...ServerOption) (*Server, error) {
	server := &Server{
		config: cfg,
		logger: logrus.New(),
	}

	if cfg.LogFormat == "text" {
		server.logger.SetFormatter(&logrus.TextFormatter{})
	} else {
		server.logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, _ := logrus.ParseLevel(cfg.LogLevel)
	server.logger.SetLevel(level)

	for _, opt := range opts {
		if err := opt(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if err := cfg.EnsureDataDir(); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	memCache, err := cache.NewMemoryCache(cfg.CacheMaxItems, cfg.CacheTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory cache: %w", err)
	}
	server.responses = memCache

	if server.historyStore == nil {
		store, err := history.NewSQLiteStore(cfg.HistoryDBPath())
		if err != nil {
			return nil, fmt.Errorf("failed to create history store: %w", err)
		}
		server.historyStore = store
	}

	// Assemble the care pathway
	agents := agent.NewRegistry(server.logger, cfg.CDS)
	if err := agents.RegisterAll(); err != nil {
		return nil, fmt.Errorf("failed to register agents: %w", err)
	}
	server.agents = agents
	server.assessments = service.NewAssessmentService(server.logger, agents, server.historyStore)

	mcpConfig := &domain.MCPConfig{
		ServerName:    serverName,
		ServerVersion: serverVersion,
		TransportType: cfg.Transport,
		HTTPPort:      cfg.HTTPPort,
	}
	server.transportMgr = transport.NewManager(server.logger, mcpConfig)

	// Wire the JSON-RPC core used by the HTTP serve loop
	server.router = protocol.NewMessageRouter(server.logger, protocol.ServerInfo{
		Name:    serverName,
		Version: serverVersion,
	})
	server.core = protocol.NewProtocolCore(server.logger)
	for _, method := range server.router.GetSupportedMethods() {
		server.core.RegisterHandler(method, server.router)
	}

	// Register tools with the internal registry
	toolRegistry := tools.NewToolRegistry(server.logger, server.router, server.assessments, agents, memCache)
	if err := toolRegistry.RegisterAllTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}
	if err := registerHistoryTools(toolRegistry, server.logger, server.assessments, server.historyStore, cfg.ExportDir()); err != nil {
		return nil, fmt.Errorf("failed to register history tools: %w", err)
	}
	if err := toolRegistry.ValidateAllTools(); err != nil {
		return nil, fmt.Errorf("tool validation failed: %w", err)
	}
	server.toolRegistry = toolRegistry

	// Mirror the registry onto the SDK server for stdio sessions
	server.mcpServer = mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: serverVersion,
	}, nil)
	if err := server.registerMCPTools(server.mcpServer, toolRegistry); err != nil {
		return nil, fmt.Errorf("failed to register MCP tools: %w", err)
	}

	server.logger.Info("MCP server initialized successfully")
	return server, nil
}

// registerMCPTools registers every internal tool with the MCP SDK.
func (s *Server) registerMCPTools(mcpServer *mcp.Server, toolRegistry *tools.ToolRegistry) error {
	s.logger.Info("Registering tools with MCP SDK...")

	toolsInfo := toolRegistry.GetRegisteredToolsInfo()

	for _, toolInfo := range toolsInfo {
		schema, err := sdkInputSchema(toolInfo.InputSchema)
		if err != nil {
			return fmt.Errorf("tool %s: %w", toolInfo.Name, err)
		}
		toolDef := &mcp.Tool{
			Name:        toolInfo.Name,
			Description: toolInfo.Description,
			InputSchema: schema,
		}

		handler := NewMCPToolHandler(toolRegistry, toolInfo.Name, s.logger)
		mcpServer.AddTool(toolDef, handler)

		s.logger.WithField("tool_name", toolInfo.Name).Debug("Registered MCP tool")
	}

	s.logger.WithField("tool_count", len(toolsInfo)).Info("Successfully registered all tools")
	return nil
}

// sdkInputSchema converts a tool's advertised input schema into the SDK's
// schema type. A tool without a schema accepts any object, which is the
// SDK's documented representation for unconstrained input.
func sdkInputSchema(schema map[string]interface{}) (*jsonschema.Schema, error) {
	if schema == nil {
		return &jsonschema.Schema{Type: "object"}, nil
	}
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("marshaling input schema: %w", err)
	}
	var converted jsonschema.Schema
	if err := json.Unmarshal(data, &converted); err != nil {
		return nil, fmt.Errorf("parsing input schema: %w", err)
	}
	return &converted, nil
}

// Start starts the MCP server and blocks until the session ends or the
// context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting PCOS CDS MCP server...")

	activeTransport, err := s.transportMgr.StartTransport(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transport: %w", err)
	}
	s.activeTransport = activeTransport
	s.logger.WithField("transport_type", activeTransport.GetType()).Info("Transport initialized")

	switch activeTransport.GetType() {
	case string(transport.TransportHTTPSSE):
		httpTransport, ok := activeTransport.(*transport.HTTPSSETransport)
		if !ok {
			return fmt.Errorf("http-sse transport has unexpected type %T", activeTransport)
		}
		return s.serveHTTP(ctx, httpTransport)

	default:
		// The SDK owns message framing on stdio
		if err := s.mcpServer.Run(ctx, SDKTransport(activeTransport, s.logger)); err != nil {
			s.activeTransport.Close()
			return fmt.Errorf("MCP server failed: %w", err)
		}
		return nil
	}
}

// serveHTTP drives the JSON-RPC core for HTTP clients: each posted
// message is attributed to its client session, processed, and answered on
// that client's SSE stream.
func (s *Server) serveHTTP(ctx context.Context, httpTransport *transport.HTTPSSETransport) error {
	s.logger.Info("Serving MCP over HTTP SSE")

	for {
		clientID, payload, err := httpTransport.NextMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				s.logger.Info("HTTP serve loop stopped")
				return nil
			}
			return fmt.Errorf("failed to read next message: %w", err)
		}

		if !s.core.HasSession(clientID) {
			if err := s.core.InitializeClient(clientID, map[string]interface{}{}); err != nil {
				s.logger.WithError(err).WithField("client_id", clientID).Warn("Failed to initialize client session")
			}
			s.transportMgr.RegisterClient(clientID, httpTransport.GetType(), nil)
		}
		s.transportMgr.UpdateClientActivity(clientID)

		response, err := s.core.ProcessMessage(ctx, clientID, payload)
		if err != nil {
			s.logger.WithError(err).WithField("client_id", clientID).Error("Failed to process message")
			continue
		}
		if response == nil {
			continue
		}

		if err := httpTransport.WriteMessageTo(clientID, response); err != nil {
			s.logger.WithError(err).WithField("client_id", clientID).Warn("Failed to deliver response")
		}
	}
}

// Close cleans up server resources.
func (s *Server) Close() error {
	if s.historyStore != nil {
		if err := s.historyStore.Close(); err != nil {
			s.logger.WithError(err).Error("Failed to close history store")
		}
	}
	if s.activeTransport != nil {
		s.activeTransport.Close()
	}
	return nil
}

// GetHistoryStore returns the assessment history store for external access.
func (s *Server) GetHistoryStore() history.Store {
	return s.historyStore
}

// GetCache returns the response cache for external access.
func (s *Server) GetCache() *cache.MemoryCache {
	return s.responses
}
