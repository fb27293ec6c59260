package transport

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pcos-cds-mcp-server/internal/domain"
)

func TestStdioTransportReadWrite(t *testing.T) {
	logger, _ := test.NewNullLogger()

	input := strings.NewReader("{\"jsonrpc\":\"2.0\",\"method\":\"ping\",\"id\":1}\n{\"jsonrpc\":\"2.0\",\"method\":\"tools/list\",\"id\":2}\n")
	var output bytes.Buffer
	transport := newStdioTransport(logger, input, &output)

	require.NoError(t, transport.Start(context.Background()))
	assert.Equal(t, "stdio", transport.GetType())
	assert.False(t, transport.IsClosed())

	first, err := transport.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","method":"ping","id":1}`, string(first))

	second, err := transport.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","method":"tools/list","id":2}`, string(second))

	// Stream exhausted
	_, err = transport.ReadMessage()
	assert.Equal(t, io.EOF, err)

	// Messages go out newline delimited
	require.NoError(t, transport.WriteMessage([]byte(`{"jsonrpc":"2.0","result":{},"id":1}`)))
	require.NoError(t, transport.WriteJSONMessage(map[string]interface{}{"jsonrpc": "2.0", "id": 2}))

	lines := strings.Split(strings.TrimRight(output.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.JSONEq(t, `{"jsonrpc":"2.0","result":{},"id":1}`, lines[0])
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":2}`, lines[1])
}

func TestStdioTransportLargeMessage(t *testing.T) {
	logger, _ := test.NewNullLogger()

	// Larger than bufio's default 64KB token limit
	payload := `{"data":"` + strings.Repeat("a", 100*1024) + `"}`
	transport := newStdioTransport(logger, strings.NewReader(payload+"\n"), &bytes.Buffer{})

	message, err := transport.ReadMessage()
	require.NoError(t, err)
	assert.Len(t, message, len(payload))
}

func TestStdioTransportClosed(t *testing.T) {
	logger, _ := test.NewNullLogger()
	transport := newStdioTransport(logger, strings.NewReader(""), &bytes.Buffer{})

	require.NoError(t, transport.Close())
	assert.True(t, transport.IsClosed())

	// Close is idempotent
	require.NoError(t, transport.Close())

	_, err := transport.ReadMessage()
	assert.Error(t, err)
	assert.Error(t, transport.WriteMessage([]byte("{}")))
	assert.Error(t, transport.Start(context.Background()))
}

func TestManagerDetectTransport(t *testing.T) {
	logger, _ := test.NewNullLogger()

	t.Run("from environment", func(t *testing.T) {
		t.Setenv("MCP_TRANSPORT", "http")
		manager := NewManager(logger, nil)

		transportType, err := manager.AutoDetectTransport()
		require.NoError(t, err)
		assert.Equal(t, TransportHTTPSSE, transportType)
	})

	t.Run("from configuration", func(t *testing.T) {
		t.Setenv("MCP_TRANSPORT", "")
		manager := NewManager(logger, &domain.MCPConfig{TransportType: "http-sse"})

		transportType, err := manager.AutoDetectTransport()
		require.NoError(t, err)
		assert.Equal(t, TransportHTTPSSE, transportType)
	})

	t.Run("defaults to stdio", func(t *testing.T) {
		t.Setenv("MCP_TRANSPORT", "")
		manager := NewManager(logger, nil)

		transportType, err := manager.AutoDetectTransport()
		require.NoError(t, err)
		assert.Equal(t, TransportStdio, transportType)
	})

	t.Run("unknown values fall through", func(t *testing.T) {
		t.Setenv("MCP_TRANSPORT", "carrier-pigeon")
		manager := NewManager(logger, &domain.MCPConfig{TransportType: "smoke-signal"})

		transportType, err := manager.AutoDetectTransport()
		require.NoError(t, err)
		assert.Equal(t, TransportStdio, transportType)
	})
}

func TestParseTransportType(t *testing.T) {
	cases := []struct {
		value string
		want  TransportType
		ok    bool
	}{
		{"stdio", TransportStdio, true},
		{"http", TransportHTTPSSE, true},
		{"http-sse", TransportHTTPSSE, true},
		{"websocket", "", false},
		{"", "", false},
	}

	for _, tc := range cases {
		got, ok := parseTransportType(tc.value)
		assert.Equal(t, tc.ok, ok, "value %q", tc.value)
		assert.Equal(t, tc.want, got, "value %q", tc.value)
	}
}

func TestManagerCreateTransport(t *testing.T) {
	logger, _ := test.NewNullLogger()
	manager := NewManager(logger, &domain.MCPConfig{HTTPHost: "127.0.0.1", HTTPPort: 9191})

	stdio, err := manager.CreateTransport(TransportStdio)
	require.NoError(t, err)
	assert.Equal(t, "stdio", stdio.GetType())

	httpSSE, err := manager.CreateTransport(TransportHTTPSSE)
	require.NoError(t, err)
	assert.Equal(t, "http-sse", httpSSE.GetType())
	concrete, ok := httpSSE.(*HTTPSSETransport)
	require.True(t, ok)
	assert.Equal(t, "127.0.0.1", concrete.host)
	assert.Equal(t, 9191, concrete.port)

	_, err = manager.CreateTransport(TransportType("telepathy"))
	assert.Error(t, err)
}

func TestManagerClientRegistry(t *testing.T) {
	logger, _ := test.NewNullLogger()
	manager := NewManager(logger, nil)

	manager.RegisterClient("client-1", "http-sse", map[string]string{"agent": "inspector"})
	manager.RegisterClient("client-2", "stdio", nil)

	clients := manager.GetClients()
	assert.Len(t, clients, 2)

	manager.UpdateClientActivity("client-1")
	manager.UnregisterClient("client-2")

	clients = manager.GetClients()
	require.Len(t, clients, 1)
	assert.Equal(t, "client-1", clients[0].ID)
	assert.Equal(t, "http-sse", clients[0].TransportType)

	require.NoError(t, manager.Shutdown(context.Background()))
	assert.Empty(t, manager.GetClients())
}

func TestHTTPSSETransportMessageFlow(t *testing.T) {
	logger, _ := test.NewNullLogger()
	transport := NewHTTPSSETransport(logger, "localhost", 0)

	assert.Equal(t, "http-sse", transport.GetType())
	assert.Equal(t, 0, transport.GetConnectedClients())

	// Post a request through the gin handler without a running server
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/mcp/message?client_id=client-1", strings.NewReader(`{"jsonrpc":"2.0","method":"ping","id":1}`))
	req.Header.Set("Content-Type", "application/json")
	transport.router.ServeHTTP(w, req)
	assert.Equal(t, 200, w.Code)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	clientID, data, err := transport.NextMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "client-1", clientID)
	assert.JSONEq(t, `{"jsonrpc":"2.0","method":"ping","id":1}`, string(data))

	// Responses go to the posting client's SSE queue
	client := &SSEClient{ID: "client-1", Messages: make(chan []byte, 1), Done: make(chan struct{})}
	transport.clientsMu.Lock()
	transport.clients["client-1"] = client
	transport.clientsMu.Unlock()

	require.NoError(t, transport.WriteMessageTo("client-1", []byte(`{"jsonrpc":"2.0","result":{},"id":1}`)))
	select {
	case queued := <-client.Messages:
		assert.JSONEq(t, `{"jsonrpc":"2.0","result":{},"id":1}`, string(queued))
	default:
		t.Fatal("expected message on client queue")
	}

	assert.Error(t, transport.WriteMessageTo("missing-client", []byte("{}")))
}

func TestHTTPSSETransportRejectsBadRequests(t *testing.T) {
	logger, _ := test.NewNullLogger()
	transport := NewHTTPSSETransport(logger, "localhost", 0)

	// Missing client_id
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/mcp/message", strings.NewReader(`{"jsonrpc":"2.0"}`))
	req.Header.Set("Content-Type", "application/json")
	transport.router.ServeHTTP(w, req)
	assert.Equal(t, 400, w.Code)

	// Malformed JSON
	w = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/mcp/message?client_id=client-1", strings.NewReader("not json"))
	req.Header.Set("Content-Type", "application/json")
	transport.router.ServeHTTP(w, req)
	assert.Equal(t, 400, w.Code)
}

func TestHTTPSSETransportNextMessageCancellation(t *testing.T) {
	logger, _ := test.NewNullLogger()
	transport := NewHTTPSSETransport(logger, "localhost", 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := transport.NextMessage(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHTTPSSETransportHealthEndpoint(t *testing.T) {
	logger, _ := test.NewNullLogger()
	transport := NewHTTPSSETransport(logger, "localhost", 0)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health", nil)
	transport.router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
	assert.Contains(t, w.Body.String(), "http-sse")
}
