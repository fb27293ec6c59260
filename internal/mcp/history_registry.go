// Package mcp provides the MCP server implementation.
// This file contains shared history tool registration logic.
package mcp

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/pcos-cds-mcp-server/internal/history"
	"github.com/pcos-cds-mcp-server/internal/mcp/tools"
	"github.com/pcos-cds-mcp-server/internal/service"
)

// registerHistoryTools registers the assessment-history MCP tools.
func registerHistoryTools(registry *tools.ToolRegistry, logger *logrus.Logger, assessments *service.AssessmentService,
	store history.Store, exportDir string) error {
	historyTools := []tools.Tool{
		tools.NewGetAssessmentHistoryTool(logger, assessments),
		tools.NewExportAssessmentHistoryTool(logger, store, exportDir),
		tools.NewImportAssessmentHistoryTool(logger, store),
	}

	for _, tool := range historyTools {
		if err := registry.RegisterTool(tool); err != nil {
			return fmt.Errorf("failed to register %s: %w", tool.GetToolInfo().Name, err)
		}
		logger.WithField("tool_name", tool.GetToolInfo().Name).Debug("Registered history tool")
	}

	return nil
}
