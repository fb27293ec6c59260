package tools

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pcos-cds-mcp-server/internal/agent"
	"github.com/pcos-cds-mcp-server/internal/cache"
	"github.com/pcos-cds-mcp-server/internal/domain"
	"github.com/pcos-cds-mcp-server/internal/history"
	"github.com/pcos-cds-mcp-server/internal/mcp/protocol"
	"github.com/pcos-cds-mcp-server/internal/service"
)

// createTestHistoryStore creates a temporary SQLite history store that is
// removed when the test finishes.
func createTestHistoryStore(t *testing.T) *history.SQLiteStore {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "history-tools-test-*")
	require.NoError(t, err)

	store, err := history.NewSQLiteStore(filepath.Join(tmpDir, "history.db"))
	require.NoError(t, err)

	t.Cleanup(func() {
		store.Close()
		os.RemoveAll(tmpDir)
	})

	return store
}

// newTestAssessmentService wires the full care pathway registry onto the
// given history store.
func newTestAssessmentService(t *testing.T, logger *logrus.Logger, store history.Store) *service.AssessmentService {
	t.Helper()

	agents := agent.NewRegistry(logger, domain.DefaultCDSConfig())
	require.NoError(t, agents.RegisterAll())
	return service.NewAssessmentService(logger, agents, store)
}

// phenotypeARecord satisfies all three Rotterdam criteria.
func phenotypeARecord() map[string]interface{} {
	return map[string]interface{}{
		"patient_id":                   "patient-001",
		"menstrual_cycle_regularity":   "oligomenorrhea",
		"clinical_hyperandrogenism":    true,
		"biochemical_hyperandrogenism": false,
		"ultrasound_results":           map[string]interface{}{"pcos_morphology": true},
	}
}

// =============================================================================
// Agent Tool Tests
// =============================================================================

func TestAgentTool_HandleTool_Success(t *testing.T) {
	logger, _ := test.NewNullLogger()
	store := createTestHistoryStore(t)
	assessments := newTestAssessmentService(t, logger, store)
	tool := NewAgentTool(logger, assessments, nil, "classify_phenotype", agent.StepIdentifyPhenotype,
		"Identifies the PCOS phenotype.", []string{"menstrual_cycle_regularity"})

	req := &protocol.JSONRPC2Request{
		JSONRPC: "2.0",
		Method:  "classify_phenotype",
		Params:  map[string]interface{}{"patient_data": phenotypeARecord()},
		ID:      1,
	}

	// Act
	response := tool.HandleTool(context.Background(), req)

	// Assert
	assert.Nil(t, response.Error)
	resultMap := response.Result.(map[string]interface{})
	assessment := resultMap["assessment"].(*service.AssessResult)
	assert.Equal(t, agent.StepIdentifyPhenotype, assessment.AgentID)
	assert.Equal(t, "patient-001", assessment.PatientID)
	assert.Equal(t, "A", assessment.Phenotype)
	assert.True(t, assessment.Recorded)
	require.NotNil(t, assessment.Response)
	assert.True(t, assessment.Response.Success)
}

func TestAgentTool_HandleTool_MissingRecordFields(t *testing.T) {
	logger, _ := test.NewNullLogger()
	store := createTestHistoryStore(t)
	assessments := newTestAssessmentService(t, logger, store)
	tool := NewAgentTool(logger, assessments, nil, "classify_phenotype", agent.StepIdentifyPhenotype,
		"Identifies the PCOS phenotype.", nil)

	req := &protocol.JSONRPC2Request{
		JSONRPC: "2.0",
		Method:  "classify_phenotype",
		Params:  map[string]interface{}{"patient_data": map[string]interface{}{}},
		ID:      1,
	}

	// Act
	response := tool.HandleTool(context.Background(), req)

	// Assert: an incomplete record is a failed assessment, not a protocol error
	assert.Nil(t, response.Error)
	resultMap := response.Result.(map[string]interface{})
	assessment := resultMap["assessment"].(*service.AssessResult)
	require.NotNil(t, assessment.Response)
	assert.False(t, assessment.Response.Success)
	assert.Contains(t, assessment.Response.Message, "Missing required data")
	assert.True(t, assessment.Recorded)
}

func TestAgentTool_HandleTool_InvalidParams(t *testing.T) {
	logger, _ := test.NewNullLogger()
	store := createTestHistoryStore(t)
	assessments := newTestAssessmentService(t, logger, store)
	tool := NewAgentTool(logger, assessments, nil, "patient_intake", agent.StepPatientIntake,
		"Collects intake data.", nil)

	tests := []struct {
		name   string
		params interface{}
	}{
		{"nil params", nil},
		{"missing patient_data", map[string]interface{}{}},
		{"null patient_data", map[string]interface{}{"patient_data": nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &protocol.JSONRPC2Request{
				JSONRPC: "2.0",
				Method:  "patient_intake",
				Params:  tt.params,
				ID:      1,
			}

			response := tool.HandleTool(context.Background(), req)

			require.NotNil(t, response.Error)
			assert.Equal(t, protocol.InvalidParams, response.Error.Code)
		})
	}
}

func TestAgentTool_HandleTool_CachedReplay(t *testing.T) {
	logger, _ := test.NewNullLogger()
	store := createTestHistoryStore(t)
	assessments := newTestAssessmentService(t, logger, store)

	responses, err := cache.NewMemoryCache(16, time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { responses.Close() })

	tool := NewAgentTool(logger, assessments, responses, "classify_phenotype", agent.StepIdentifyPhenotype,
		"Identifies the PCOS phenotype.", nil)

	call := func() *service.AssessResult {
		req := &protocol.JSONRPC2Request{
			JSONRPC: "2.0",
			Method:  "classify_phenotype",
			Params:  map[string]interface{}{"patient_data": phenotypeARecord()},
			ID:      1,
		}
		response := tool.HandleTool(context.Background(), req)
		require.Nil(t, response.Error)
		resultMap := response.Result.(map[string]interface{})
		return resultMap["assessment"].(*service.AssessResult)
	}

	first := call()
	second := call()

	// The replay keeps the original assessment id and does not record a
	// second history entry.
	assert.Equal(t, first.AssessmentID, second.AssessmentID)
	assert.Equal(t, first.Phenotype, second.Phenotype)

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestAgentTool_HandleTool_DistinctRecordsNotReplayed(t *testing.T) {
	logger, _ := test.NewNullLogger()
	store := createTestHistoryStore(t)
	assessments := newTestAssessmentService(t, logger, store)

	responses, err := cache.NewMemoryCache(16, time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { responses.Close() })

	tool := NewAgentTool(logger, assessments, responses, "classify_phenotype", agent.StepIdentifyPhenotype,
		"Identifies the PCOS phenotype.", nil)

	call := func(patientID string) *service.AssessResult {
		record := phenotypeARecord()
		record["patient_id"] = patientID
		req := &protocol.JSONRPC2Request{
			JSONRPC: "2.0",
			Method:  "classify_phenotype",
			Params:  map[string]interface{}{"patient_data": record},
			ID:      1,
		}
		response := tool.HandleTool(context.Background(), req)
		require.Nil(t, response.Error)
		resultMap := response.Result.(map[string]interface{})
		return resultMap["assessment"].(*service.AssessResult)
	}

	first := call("patient-001")
	second := call("patient-002")

	assert.NotEqual(t, first.AssessmentID, second.AssessmentID)

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestAgentTool_GetToolInfo(t *testing.T) {
	logger, _ := test.NewNullLogger()
	tool := NewAgentTool(logger, nil, nil, "plan_nutrition", agent.StepNutritionPlan,
		"Builds a personalized nutrition plan.", []string{"symptoms", "lab_results"})

	info := tool.GetToolInfo()

	assert.Equal(t, "plan_nutrition", info.Name)
	assert.Contains(t, info.Description, "Builds a personalized nutrition plan.")
	assert.Contains(t, info.Description, "symptoms, lab_results")
	require.NotNil(t, info.InputSchema)
	assert.Equal(t, []string{"patient_data"}, info.InputSchema["required"])
}

func TestAgentTool_ValidateParams(t *testing.T) {
	logger, _ := test.NewNullLogger()
	tool := NewAgentTool(logger, nil, nil, "patient_intake", agent.StepPatientIntake,
		"Collects intake data.", nil)

	err := tool.ValidateParams(map[string]interface{}{
		"patient_data": map[string]interface{}{"patient_id": "patient-001"},
	})
	assert.NoError(t, err)

	err = tool.ValidateParams(map[string]interface{}{})
	assert.ErrorContains(t, err, "patient_data is required")

	err = tool.ValidateParams(nil)
	assert.Error(t, err)
}
