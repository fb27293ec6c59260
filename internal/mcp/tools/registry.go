package tools

import (
	"context"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/pcos-cds-mcp-server/internal/agent"
	"github.com/pcos-cds-mcp-server/internal/cache"
	"github.com/pcos-cds-mcp-server/internal/mcp/protocol"
	"github.com/pcos-cds-mcp-server/internal/service"
)

// Tool is the contract every MCP tool satisfies
type Tool = protocol.ToolHandler

// agentToolBinding ties an MCP tool name to the care-pathway agent that
// serves it.
type agentToolBinding struct {
	toolName string
	agentID  string
}

// agentToolBindings lists the assessment tools in care-pathway order.
// Descriptions and required fields come from the agent registry at
// registration time so tool metadata cannot drift from agent behavior.
var agentToolBindings = []agentToolBinding{
	{toolName: "patient_intake", agentID: agent.StepPatientIntake},
	{toolName: "process_lab_report", agentID: agent.StepProcessLabReport},
	{toolName: "classify_phenotype", agentID: agent.StepIdentifyPhenotype},
	{toolName: "analyze_root_causes", agentID: agent.StepRootCauseAnalysis},
	{toolName: "recommend_labs", agentID: agent.StepRecommendLabs},
	{toolName: "plan_nutrition", agentID: agent.StepNutritionPlan},
	{toolName: "review_gynecology", agentID: agent.StepGynecologyReview},
}

// ToolRegistry manages registration and dispatch of all MCP tools
type ToolRegistry struct {
	logger      *logrus.Logger
	router      *protocol.MessageRouter
	assessments *service.AssessmentService
	agents      *agent.Registry
	responses   cache.ResponseCache
}

// NewToolRegistry creates a new tool registry. The responses cache may be
// nil, which disables assessment replay.
func NewToolRegistry(logger *logrus.Logger, router *protocol.MessageRouter, assessments *service.AssessmentService,
	agents *agent.Registry, responses cache.ResponseCache) *ToolRegistry {
	return &ToolRegistry{
		logger:      logger,
		router:      router,
		assessments: assessments,
		agents:      agents,
		responses:   responses,
	}
}

// RegisterAllTools registers one MCP tool per care-pathway agent
func (tr *ToolRegistry) RegisterAllTools() error {
	tr.logger.Info("Registering assessment tools")

	for _, binding := range agentToolBindings {
		registered, ok := tr.agents.Get(binding.agentID)
		if !ok {
			return fmt.Errorf("tool %s references unregistered agent %s", binding.toolName, binding.agentID)
		}

		info := agent.Describe(binding.agentID, registered)
		tool := NewAgentTool(tr.logger, tr.assessments, tr.responses,
			binding.toolName, binding.agentID, info.Description, info.RequiredData)

		if err := tr.RegisterTool(tool); err != nil {
			return err
		}
	}

	tr.logger.WithField("tool_count", len(agentToolBindings)).Info("Successfully registered assessment tools")
	return nil
}

// RegisterTool registers a single tool under the name it advertises
func (tr *ToolRegistry) RegisterTool(tool Tool) error {
	info := tool.GetToolInfo()
	if info.Name == "" {
		return fmt.Errorf("tool has no name")
	}
	if _, exists := tr.router.GetToolHandler(info.Name); exists {
		return fmt.Errorf("tool %s is already registered", info.Name)
	}

	tr.router.RegisterToolHandler(info.Name, tool)
	tr.logger.WithField("tool", info.Name).Debug("Registered tool")
	return nil
}

// ExecuteTool dispatches a request whose method names a registered tool.
// The transport bridge uses this to route SDK tool calls through the same
// handlers that serve tools/call.
func (tr *ToolRegistry) ExecuteTool(ctx context.Context, req *protocol.JSONRPC2Request) *protocol.JSONRPC2Response {
	handler, exists := tr.router.GetToolHandler(req.Method)
	if !exists {
		return &protocol.JSONRPC2Response{
			JSONRPC: "2.0",
			Error: &protocol.RPCError{
				Code:    protocol.MethodNotFound,
				Message: fmt.Sprintf("Tool '%s' not found", req.Method),
			},
			ID: req.ID,
		}
	}

	response := handler.HandleTool(ctx, req)
	if response == nil {
		return &protocol.JSONRPC2Response{
			JSONRPC: "2.0",
			Error: &protocol.RPCError{
				Code:    protocol.InternalError,
				Message: fmt.Sprintf("Tool '%s' returned no response", req.Method),
			},
			ID: req.ID,
		}
	}

	response.JSONRPC = "2.0"
	response.ID = req.ID
	return response
}

// GetRegisteredToolsInfo returns metadata for all registered tools sorted
// by name.
func (tr *ToolRegistry) GetRegisteredToolsInfo() []protocol.ToolInfo {
	toolHandlers := tr.router.GetToolHandlers()
	toolsInfo := make([]protocol.ToolInfo, 0, len(toolHandlers))

	for _, handler := range toolHandlers {
		toolsInfo = append(toolsInfo, handler.GetToolInfo())
	}
	sort.Slice(toolsInfo, func(i, j int) bool {
		return toolsInfo[i].Name < toolsInfo[j].Name
	})

	return toolsInfo
}

// ValidateAllTools checks that every registered tool advertises complete
// metadata.
func (tr *ToolRegistry) ValidateAllTools() error {
	tr.logger.Info("Validating all registered tools")

	for name, handler := range tr.router.GetToolHandlers() {
		info := handler.GetToolInfo()
		if info.Name == "" {
			return fmt.Errorf("tool registered as %s has no name", name)
		}
		if info.Name != name {
			return fmt.Errorf("tool registered as %s advertises name %s", name, info.Name)
		}
		if info.Description == "" {
			tr.logger.WithField("tool", name).Warn("Tool missing description")
		}
		if info.InputSchema == nil {
			tr.logger.WithField("tool", name).Warn("Tool missing input schema")
		}
	}

	tr.logger.Info("Tool validation completed")
	return nil
}
