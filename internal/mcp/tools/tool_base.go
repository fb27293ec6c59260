// Package tools implements the MCP tool surface of the clinical decision
// support server. One parameterized tool wraps each specialist agent, and
// a small set of history tools manages stored assessments.
package tools

import (
	"encoding/json"
	"fmt"

	"github.com/pcos-cds-mcp-server/internal/mcp/protocol"
)

// ParseParams converts generic request parameters into a typed struct.
// Every tool handler needs the same marshal/unmarshal round trip, so it
// lives here once.
//
// Usage:
//
//	var params MyParams
//	if err := ParseParams(req.Params, &params); err != nil {
//	    return invalidParamsError("Invalid parameters", err.Error())
//	}
func ParseParams(params interface{}, target interface{}) error {
	if params == nil {
		return fmt.Errorf("missing required parameters")
	}

	paramsBytes, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to marshal parameters: %w", err)
	}

	if err := json.Unmarshal(paramsBytes, target); err != nil {
		return fmt.Errorf("failed to parse parameters: %w", err)
	}

	return nil
}

// Error response helpers to reduce boilerplate
func invalidParamsError(msg string, data ...string) *protocol.JSONRPC2Response {
	resp := &protocol.JSONRPC2Response{
		Error: &protocol.RPCError{
			Code:    protocol.InvalidParams,
			Message: msg,
		},
	}
	if len(data) > 0 && data[0] != "" {
		resp.Error.Data = data[0]
	}
	return resp
}

func internalError(msg string, data string) *protocol.JSONRPC2Response {
	return &protocol.JSONRPC2Response{
		Error: &protocol.RPCError{
			Code:    protocol.InternalError,
			Message: msg,
			Data:    data,
		},
	}
}
