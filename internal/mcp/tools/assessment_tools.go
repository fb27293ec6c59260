package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pcos-cds-mcp-server/internal/cache"
	"github.com/pcos-cds-mcp-server/internal/domain"
	"github.com/pcos-cds-mcp-server/internal/mcp/protocol"
	"github.com/pcos-cds-mcp-server/internal/service"
)

// AgentTool exposes one care-pathway agent as an MCP tool. All seven
// assessment tools share this implementation; they differ only in the
// agent they dispatch to and the metadata they advertise.
type AgentTool struct {
	logger       *logrus.Logger
	assessments  *service.AssessmentService
	responses    cache.ResponseCache
	name         string
	agentID      string
	description  string
	requiredData []string
}

// AgentToolParams defines the parameter shape shared by assessment tools
type AgentToolParams struct {
	PatientData map[string]interface{} `json:"patient_data"`
}

// NewAgentTool creates an MCP tool backed by the agent registered under
// agentID. A nil responses cache disables replay of repeated assessments.
func NewAgentTool(logger *logrus.Logger, assessments *service.AssessmentService, responses cache.ResponseCache,
	name, agentID, description string, requiredData []string) *AgentTool {
	return &AgentTool{
		logger:       logger,
		assessments:  assessments,
		responses:    responses,
		name:         name,
		agentID:      agentID,
		description:  description,
		requiredData: requiredData,
	}
}

// GetToolInfo returns the tool metadata advertised via tools/list
func (t *AgentTool) GetToolInfo() protocol.ToolInfo {
	description := t.description
	if len(t.requiredData) > 0 {
		description = fmt.Sprintf("%s Expects record fields: %s.", description, strings.Join(t.requiredData, ", "))
	}

	return protocol.ToolInfo{
		Name:        t.name,
		Description: description,
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"patient_data": map[string]interface{}{
					"type":        "object",
					"description": "Patient record as a JSON object. Unknown fields are preserved and passed through to the agent.",
				},
			},
			"required": []string{"patient_data"},
		},
	}
}

// ValidateParams validates the input parameters
func (t *AgentTool) ValidateParams(params interface{}) error {
	var p AgentToolParams
	if err := ParseParams(params, &p); err != nil {
		return err
	}
	if p.PatientData == nil {
		return fmt.Errorf("patient_data is required")
	}
	return nil
}

// HandleTool runs the agent against the supplied patient record. Repeated
// calls with an identical record replay the cached assessment.
func (t *AgentTool) HandleTool(ctx context.Context, req *protocol.JSONRPC2Request) *protocol.JSONRPC2Response {
	var params AgentToolParams
	if err := ParseParams(req.Params, &params); err != nil {
		return invalidParamsError("Invalid parameters", err.Error())
	}
	if err := t.ValidateParams(req.Params); err != nil {
		return invalidParamsError(err.Error())
	}

	record := domain.PatientRecord(params.PatientData)

	if cached, ok := t.lookupCached(ctx, record); ok {
		return &protocol.JSONRPC2Response{
			Result: map[string]interface{}{"assessment": cached},
		}
	}

	result, err := t.assessments.Assess(ctx, &service.AssessParams{
		AgentID: t.agentID,
		Record:  record,
	})
	if err != nil {
		t.logger.WithError(err).WithField("agent_id", t.agentID).Error("Assessment failed")
		return internalError("Assessment failed", err.Error())
	}

	t.storeCached(ctx, record, result)

	return &protocol.JSONRPC2Response{
		Result: map[string]interface{}{"assessment": result},
	}
}

// lookupCached replays an identical earlier assessment. The replay keeps
// the original assessment id so callers can correlate it with history.
func (t *AgentTool) lookupCached(ctx context.Context, record domain.PatientRecord) (*service.AssessResult, bool) {
	if t.responses == nil {
		return nil, false
	}

	key := cache.ResponseKey(t.agentID, record)
	payload, found, err := t.responses.Get(ctx, key)
	if err != nil || !found {
		return nil, false
	}

	var result service.AssessResult
	if err := json.Unmarshal(payload, &result); err != nil {
		t.logger.WithError(err).Warn("Discarding undecodable cached assessment")
		_ = t.responses.Delete(ctx, key)
		return nil, false
	}

	t.logger.WithFields(logrus.Fields{
		"agent_id":  t.agentID,
		"cache_key": key,
	}).Debug("Replaying cached assessment")

	return &result, true
}

// storeCached caches a completed assessment under the record's digest.
// The zero TTL defers to the cache's configured default.
func (t *AgentTool) storeCached(ctx context.Context, record domain.PatientRecord, result *service.AssessResult) {
	if t.responses == nil || result == nil {
		return
	}

	payload, err := json.Marshal(result)
	if err != nil {
		t.logger.WithError(err).Warn("Failed to serialize assessment for caching")
		return
	}

	key := cache.ResponseKey(t.agentID, record)
	if err := t.responses.Set(ctx, key, payload, 0); err != nil {
		t.logger.WithError(err).Debug("Failed to cache assessment response")
	}
}
