package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pcos-cds-mcp-server/internal/config"
	"github.com/pcos-cds-mcp-server/internal/history"
	"github.com/pcos-cds-mcp-server/internal/mcp/protocol"
)

func testLiteConfig(t *testing.T) *config.LiteConfig {
	t.Helper()
	cfg := config.DefaultLiteConfig()
	cfg.DataDir = t.TempDir()
	cfg.LogLevel = "error"
	return cfg
}

func TestNewServer(t *testing.T) {
	server, err := NewServer(testLiteConfig(t))
	require.NoError(t, err)
	defer server.Close()

	assert.NotNil(t, server.mcpServer)
	assert.NotNil(t, server.core)
	assert.NotNil(t, server.router)
	assert.NotNil(t, server.toolRegistry)
	assert.NotNil(t, server.agents)
	assert.NotNil(t, server.assessments)
	assert.NotNil(t, server.GetHistoryStore())
	assert.NotNil(t, server.GetCache())

	// Seven assessment tools plus three history tools
	toolsInfo := server.toolRegistry.GetRegisteredToolsInfo()
	require.Len(t, toolsInfo, 10)

	names := make([]string, 0, len(toolsInfo))
	for _, info := range toolsInfo {
		names = append(names, info.Name)
	}
	expected := []string{
		"patient_intake", "process_lab_report", "classify_phenotype",
		"analyze_root_causes", "recommend_labs", "plan_nutrition", "review_gynecology",
		"get_assessment_history", "export_assessment_history", "import_assessment_history",
	}
	for _, name := range expected {
		assert.Contains(t, names, name)
	}

	_, ok := server.router.GetToolHandler("patient_intake")
	assert.True(t, ok)
}

func TestNewServerWithOptions(t *testing.T) {
	cfg := testLiteConfig(t)

	store, err := history.NewSQLiteStore(cfg.HistoryDBPath())
	require.NoError(t, err)

	logger, hook := test.NewNullLogger()
	server, err := NewServer(cfg, WithLogger(logger), WithHistoryStore(store))
	require.NoError(t, err)
	defer server.Close()

	assert.Same(t, store, server.GetHistoryStore())
	assert.Same(t, logger, server.logger)
	assert.NotEmpty(t, hook.Entries)
}

func TestNewServerRejectsBadCacheConfig(t *testing.T) {
	cfg := testLiteConfig(t)
	cfg.CacheMaxItems = 0

	_, err := NewServer(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "memory cache")
}

// TestServerToolCallRoundTrip drives a tools/call end to end through the
// protocol core, tool registry, agent registry, and history store.
func TestServerToolCallRoundTrip(t *testing.T) {
	server, err := NewServer(testLiteConfig(t))
	require.NoError(t, err)
	defer server.Close()

	ctx := context.Background()
	clientID := "test-client"
	require.NoError(t, server.core.InitializeClient(clientID, map[string]interface{}{}))

	// tools/list advertises all ten tools
	listReq, _ := json.Marshal(protocol.JSONRPC2Request{
		JSONRPC: "2.0",
		Method:  "tools/list",
		ID:      1,
	})
	respData, err := server.core.ProcessMessage(ctx, clientID, listReq)
	require.NoError(t, err)

	var listResp protocol.JSONRPC2Response
	require.NoError(t, json.Unmarshal(respData, &listResp))
	require.Nil(t, listResp.Error)
	listResult := listResp.Result.(map[string]interface{})
	assert.Len(t, listResult["tools"], 10)

	// Identical calls replay the cached assessment instead of recording twice
	callAssessment := func(id int) map[string]interface{} {
		callReq, _ := json.Marshal(protocol.JSONRPC2Request{
			JSONRPC: "2.0",
			Method:  "tools/call",
			Params: map[string]interface{}{
				"name": "patient_intake",
				"arguments": map[string]interface{}{
					"patient_data": map[string]interface{}{
						"patient_id": "patient-001",
						"age":        31,
					},
				},
			},
			ID: id,
		})
		data, err := server.core.ProcessMessage(ctx, clientID, callReq)
		require.NoError(t, err)

		var resp protocol.JSONRPC2Response
		require.NoError(t, json.Unmarshal(data, &resp))
		require.Nil(t, resp.Error)

		result := resp.Result.(map[string]interface{})
		assessment, ok := result["assessment"].(map[string]interface{})
		require.True(t, ok, "expected assessment envelope, got %v", result)
		return assessment
	}

	first := callAssessment(2)
	assert.Equal(t, "patient_intake", first["agent_id"])
	assert.Equal(t, "patient-001", first["patient_id"])

	second := callAssessment(3)
	assert.Equal(t, first["assessment_id"], second["assessment_id"])

	count, err := server.GetHistoryStore().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestServerCloseIsIdempotent(t *testing.T) {
	server, err := NewServer(testLiteConfig(t))
	require.NoError(t, err)

	require.NoError(t, server.Close())
	require.NoError(t, server.Close())
}
