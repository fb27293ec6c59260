package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pcos-cds-mcp-server/internal/history"
	"github.com/pcos-cds-mcp-server/internal/mcp/protocol"
	"github.com/pcos-cds-mcp-server/internal/service"
)

// =============================================================================
// Get Assessment History Tool
// =============================================================================

// GetAssessmentHistoryTool implements the get_assessment_history MCP tool
type GetAssessmentHistoryTool struct {
	logger      *logrus.Logger
	assessments *service.AssessmentService
}

// GetAssessmentHistoryParams defines parameters for get_assessment_history
type GetAssessmentHistoryParams struct {
	PatientID string `json:"patient_id,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	Offset    int    `json:"offset,omitempty"`
}

// NewGetAssessmentHistoryTool creates a new get_assessment_history tool
func NewGetAssessmentHistoryTool(logger *logrus.Logger, assessments *service.AssessmentService) *GetAssessmentHistoryTool {
	return &GetAssessmentHistoryTool{
		logger:      logger,
		assessments: assessments,
	}
}

// GetToolInfo returns the tool information for get_assessment_history
func (t *GetAssessmentHistoryTool) GetToolInfo() protocol.ToolInfo {
	return protocol.ToolInfo{
		Name:        "get_assessment_history",
		Description: "List recorded assessment runs, newest first. Optionally filtered to one patient.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"patient_id": map[string]interface{}{
					"type":        "string",
					"description": "Restrict results to this patient (optional)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of entries to return (default 50)",
				},
				"offset": map[string]interface{}{
					"type":        "integer",
					"description": "Number of entries to skip (default 0)",
				},
			},
		},
	}
}

// ValidateParams validates the input parameters
func (t *GetAssessmentHistoryTool) ValidateParams(params interface{}) error {
	return nil // No required parameters
}

// HandleTool handles the get_assessment_history tool request
func (t *GetAssessmentHistoryTool) HandleTool(ctx context.Context, req *protocol.JSONRPC2Request) *protocol.JSONRPC2Response {
	var params GetAssessmentHistoryParams
	_ = ParseParams(req.Params, &params)

	result, err := t.assessments.History(ctx, &service.HistoryParams{
		PatientID: params.PatientID,
		Limit:     params.Limit,
		Offset:    params.Offset,
	})
	if err != nil {
		t.logger.WithError(err).Error("Failed to list assessment history")
		return internalError("Failed to list assessment history", err.Error())
	}

	return &protocol.JSONRPC2Response{
		Result: map[string]interface{}{"assessment_history": result},
	}
}

// =============================================================================
// Export Assessment History Tool
// =============================================================================

// ExportAssessmentHistoryTool implements the export_assessment_history MCP tool
type ExportAssessmentHistoryTool struct {
	logger    *logrus.Logger
	store     history.Store
	exportDir string
}

// ExportAssessmentHistoryResult defines the result of export_assessment_history
type ExportAssessmentHistoryResult struct {
	Success  bool   `json:"success"`
	FilePath string `json:"file_path"`
	Count    int64  `json:"count"`
	Message  string `json:"message"`
}

// NewExportAssessmentHistoryTool creates a new export_assessment_history tool
func NewExportAssessmentHistoryTool(logger *logrus.Logger, store history.Store, exportDir string) *ExportAssessmentHistoryTool {
	return &ExportAssessmentHistoryTool{
		logger:    logger,
		store:     store,
		exportDir: exportDir,
	}
}

// GetToolInfo returns the tool information for export_assessment_history
func (t *ExportAssessmentHistoryTool) GetToolInfo() protocol.ToolInfo {
	return protocol.ToolInfo{
		Name:        "export_assessment_history",
		Description: "Export all recorded assessments to a JSON file for backup.",
		InputSchema: map[string]interface{}{
			"type":       "object",
			"properties": map[string]interface{}{},
		},
	}
}

// ValidateParams validates the input parameters
func (t *ExportAssessmentHistoryTool) ValidateParams(params interface{}) error {
	return nil // No required parameters
}

// HandleTool handles the export_assessment_history tool request
func (t *ExportAssessmentHistoryTool) HandleTool(ctx context.Context, req *protocol.JSONRPC2Request) *protocol.JSONRPC2Response {
	if err := os.MkdirAll(t.exportDir, 0755); err != nil {
		return internalError("Failed to create export directory", err.Error())
	}

	filename := fmt.Sprintf("assessments_export_%s.json", time.Now().Format("20060102_150405"))
	filePath := filepath.Join(t.exportDir, filename)

	file, err := os.Create(filePath)
	if err != nil {
		return internalError("Failed to create export file", err.Error())
	}
	defer file.Close()

	if err := t.store.ExportJSON(ctx, file); err != nil {
		t.logger.WithError(err).Error("Failed to export assessment history")
		return internalError("Failed to export assessment history", err.Error())
	}

	count, _ := t.store.Count(ctx)
	return &protocol.JSONRPC2Response{
		Result: map[string]interface{}{
			"export": ExportAssessmentHistoryResult{
				Success: true, FilePath: filePath, Count: count,
				Message: fmt.Sprintf("Exported %d assessments to %s", count, filePath),
			},
		},
	}
}

// =============================================================================
// Import Assessment History Tool
// =============================================================================

// ImportAssessmentHistoryTool implements the import_assessment_history MCP tool
type ImportAssessmentHistoryTool struct {
	logger *logrus.Logger
	store  history.Store
}

// ImportAssessmentHistoryParams defines parameters for import_assessment_history
type ImportAssessmentHistoryParams struct {
	FilePath string `json:"file_path"`
}

// ImportAssessmentHistoryResult defines the result of import_assessment_history
type ImportAssessmentHistoryResult struct {
	Success  bool   `json:"success"`
	Imported int    `json:"imported"`
	Skipped  int    `json:"skipped"`
	Message  string `json:"message"`
}

// NewImportAssessmentHistoryTool creates a new import_assessment_history tool
func NewImportAssessmentHistoryTool(logger *logrus.Logger, store history.Store) *ImportAssessmentHistoryTool {
	return &ImportAssessmentHistoryTool{
		logger: logger,
		store:  store,
	}
}

// GetToolInfo returns the tool information for import_assessment_history
func (t *ImportAssessmentHistoryTool) GetToolInfo() protocol.ToolInfo {
	return protocol.ToolInfo{
		Name:        "import_assessment_history",
		Description: "Import assessments from a JSON backup file. Skips duplicates.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"file_path": map[string]interface{}{
					"type":        "string",
					"description": "Path to the JSON file to import",
				},
			},
			"required": []string{"file_path"},
		},
	}
}

// ValidateParams validates the input parameters
func (t *ImportAssessmentHistoryTool) ValidateParams(params interface{}) error {
	var p ImportAssessmentHistoryParams
	if err := ParseParams(params, &p); err != nil {
		return err
	}
	if p.FilePath == "" {
		return fmt.Errorf("file_path is required")
	}
	return nil
}

// HandleTool handles the import_assessment_history tool request
func (t *ImportAssessmentHistoryTool) HandleTool(ctx context.Context, req *protocol.JSONRPC2Request) *protocol.JSONRPC2Response {
	var params ImportAssessmentHistoryParams
	if err := ParseParams(req.Params, &params); err != nil {
		return invalidParamsError("Invalid parameters", err.Error())
	}
	if err := t.ValidateParams(req.Params); err != nil {
		return invalidParamsError(err.Error())
	}

	file, err := os.Open(params.FilePath)
	if err != nil {
		return invalidParamsError("Failed to open file", err.Error())
	}
	defer file.Close()

	imported, skipped, err := t.store.ImportJSON(ctx, file)
	if err != nil {
		t.logger.WithError(err).Error("Failed to import assessment history")
		return internalError("Failed to import assessment history", err.Error())
	}

	return &protocol.JSONRPC2Response{
		Result: map[string]interface{}{
			"import": ImportAssessmentHistoryResult{
				Success: true, Imported: imported, Skipped: skipped,
				Message: fmt.Sprintf("Imported %d assessments, skipped %d duplicates", imported, skipped),
			},
		},
	}
}
