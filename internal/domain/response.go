package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// AgentResponse is the uniform envelope returned by every agent invocation.
// It is constructed once per invocation and never mutated afterwards.
// NextSteps carries opaque successor-agent identifiers for an external
// orchestrator; nothing in this module consumes them.
type AgentResponse struct {
	Success   bool           `json:"success"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
	NextSteps []string       `json:"next_steps,omitempty"`
}

// NewSuccessResponse creates a success envelope with a payload and the
// successor-agent identifiers to suggest to the caller.
func NewSuccessResponse(message string, data map[string]any, nextSteps []string) *AgentResponse {
	return &AgentResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		NextSteps: nextSteps,
	}
}

// NewMissingDataResponse creates the failure envelope for a record that
// lacks required fields. The message names the fields; the payload repeats
// them under "missing_fields" for programmatic callers.
func NewMissingDataResponse(topic string, missing []string) *AgentResponse {
	var message string
	if topic == "" {
		message = fmt.Sprintf("Missing required data: %s", strings.Join(missing, ", "))
	} else {
		message = fmt.Sprintf("Missing required data for %s: %s", topic, strings.Join(missing, ", "))
	}
	return &AgentResponse{
		Success: false,
		Message: message,
		Data:    map[string]any{"missing_fields": missing},
	}
}

// NewFaultResponse converts an unexpected evaluation error into the failure
// envelope. The error text is embedded in the message; no structured code
// distinguishes fault kinds at this layer.
func NewFaultResponse(action string, err error) *AgentResponse {
	return &AgentResponse{
		Success: false,
		Message: fmt.Sprintf("Error %s: %v", action, err),
	}
}

// JSON serializes the response with two-space indentation for transport and
// logging.
func (r *AgentResponse) JSON() (string, error) {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serializing agent response: %w", err)
	}
	return string(b), nil
}
