package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/pcos-cds-mcp-server/internal/mcp/protocol"
	"github.com/pcos-cds-mcp-server/internal/mcp/tools"
	"github.com/pcos-cds-mcp-server/internal/mcp/transport"
)

// NewMCPToolHandler bridges an SDK tool call to the internal tool
// registry, so SDK-framed sessions and the HTTP serve loop execute tools
// through the same handlers.
func NewMCPToolHandler(toolRegistry *tools.ToolRegistry, toolName string, logger *logrus.Logger) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		logger.WithField("tool", toolName).Debug("Handling SDK tool call")

		var args map[string]interface{}
		if raw, ok := req.Params.Arguments.(json.RawMessage); ok && len(raw) > 0 {
			if err := json.Unmarshal(raw, &args); err != nil {
				return errorResult(fmt.Sprintf("invalid tool arguments: %v", err)), nil
			}
		}

		toolReq := &protocol.JSONRPC2Request{
			JSONRPC: "2.0",
			Method:  toolName,
			Params:  args,
		}

		response := toolRegistry.ExecuteTool(ctx, toolReq)
		if response.Error != nil {
			logger.WithFields(logrus.Fields{
				"tool": toolName,
				"code": response.Error.Code,
			}).Warn("Tool execution failed")

			message := response.Error.Message
			if data, ok := response.Error.Data.(string); ok && data != "" {
				message = fmt.Sprintf("%s: %s", message, data)
			}
			return errorResult(message), nil
		}

		payload, err := json.MarshalIndent(response.Result, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to serialize tool result: %w", err)
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(payload)}},
		}, nil
	}
}

// errorResult wraps a failure message in a tool result. Tool failures are
// reported in-band so the client model can read and react to them; Go
// errors are reserved for protocol-level faults.
func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: message}},
		IsError: true,
	}
}

// SDKTransport maps the active custom transport onto the SDK transport
// that frames the session. Only stdio has a native SDK counterpart; the
// HTTP transport runs its own serve loop and never reaches the SDK.
func SDKTransport(t transport.Transport, logger *logrus.Logger) mcp.Transport {
	switch t.GetType() {
	case string(transport.TransportStdio):
		return &mcp.StdioTransport{}
	default:
		logger.WithField("transport_type", t.GetType()).Warn("No SDK transport for type, falling back to stdio")
		return &mcp.StdioTransport{}
	}
}
