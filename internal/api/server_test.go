package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pcos-cds-mcp-server/internal/agent"
	"github.com/pcos-cds-mcp-server/internal/cache"
	"github.com/pcos-cds-mcp-server/internal/domain"
	"github.com/pcos-cds-mcp-server/internal/history"
	"github.com/pcos-cds-mcp-server/internal/service"
)

// testConfigManager satisfies domain.ConfigManager with a fixed config.
type testConfigManager struct {
	config *domain.Config
}

func (m *testConfigManager) GetConfig() *domain.Config                 { return m.config }
func (m *testConfigManager) GetServerConfig() *domain.ServerConfig     { return &m.config.Server }
func (m *testConfigManager) GetDatabaseConfig() *domain.DatabaseConfig { return &m.config.Database }
func (m *testConfigManager) GetCacheConfig() *domain.CacheConfig       { return &m.config.Cache }
func (m *testConfigManager) GetCDSConfig() *domain.CDSConfig           { return &m.config.CDS }
func (m *testConfigManager) Reload() error                             { return nil }
func (m *testConfigManager) Validate() error                           { return nil }
func (m *testConfigManager) GetDatabaseConnectionString() string       { return "" }
func (m *testConfigManager) GetRedisConnectionString() string          { return "" }
func (m *testConfigManager) IsProduction() bool                        { return false }
func (m *testConfigManager) IsDevelopment() bool                       { return true }

type serverOptions struct {
	withHistory bool
	withCache   bool
}

func newTestServer(t *testing.T, opts serverOptions) *Server {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)

	registry := agent.NewRegistry(logger, domain.DefaultCDSConfig())
	require.NoError(t, registry.RegisterAll())

	var store history.Store
	if opts.withHistory {
		tmpDir, err := os.MkdirTemp("", "api-test-*")
		require.NoError(t, err)
		store, err = history.NewSQLiteStore(filepath.Join(tmpDir, "history.db"))
		require.NoError(t, err)
		t.Cleanup(func() {
			store.Close()
			os.RemoveAll(tmpDir)
		})
	}

	var responses cache.ResponseCache
	if opts.withCache {
		memory, err := cache.NewMemoryCache(100, time.Minute)
		require.NoError(t, err)
		responses = memory
	}

	assessments := service.NewAssessmentService(logger, registry, store)

	cfgManager := &testConfigManager{
		config: &domain.Config{
			Server: domain.ServerConfig{
				Host: "127.0.0.1",
				Port: 8080,
			},
			Logging: domain.LoggingConfig{Level: "error"},
			CDS:     domain.DefaultCDSConfig(),
		},
	}

	return NewServer(cfgManager, logger, registry, assessments, nil, responses)
}

func processBody(t *testing.T, patientData map[string]any) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(map[string]any{"patient_data": patientData})
	require.NoError(t, err)
	return bytes.NewBuffer(body)
}

// phenotypeARecord satisfies all three Rotterdam criteria.
func phenotypeARecord() map[string]any {
	return map[string]any{
		"patient_id":                   "patient-001",
		"menstrual_cycle_regularity":   "oligomenorrhea",
		"clinical_hyperandrogenism":    true,
		"biochemical_hyperandrogenism": false,
		"ultrasound_results":           map[string]any{"pcos_morphology": true},
	}
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, float64(7), resp["agents"])
}

func TestListAgents(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/agents", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Agents []agent.Info `json:"agents"`
		Count  int          `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 7, resp.Count)
	require.Len(t, resp.Agents, 7)
	assert.Equal(t, agent.StepPatientIntake, resp.Agents[0].ID)
	assert.Equal(t, agent.StepGynecologyReview, resp.Agents[6].ID)
}

func TestGetAgent(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/agents/identify_phenotype", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var info agent.Info
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, "identify_phenotype", info.ID)
	assert.Contains(t, info.RequiredData, "menstrual_cycle_regularity")
}

func TestGetAgent_Unknown(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/agents/telepathy", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "unknown agent: telepathy")
}

func TestProcessAgent(t *testing.T) {
	s := newTestServer(t, serverOptions{withHistory: true})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/agents/identify_phenotype/process", processBody(t, phenotypeARecord()))
	req.Header.Set("Content-Type", "application/json")
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))

	var result service.AssessResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Response.Success)
	assert.Equal(t, "Phenotype identification complete: A", result.Response.Message)
	assert.Equal(t, "patient-001", result.PatientID)
	assert.Equal(t, "A", result.Phenotype)
	assert.True(t, result.Recorded)
}

func TestProcessAgent_MissingData(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/agents/identify_phenotype/process",
		processBody(t, map[string]any{"patient_id": "patient-001"}))
	req.Header.Set("Content-Type", "application/json")
	s.router.ServeHTTP(w, req)

	// Incomplete records fail inside the envelope, not at the HTTP layer
	assert.Equal(t, http.StatusOK, w.Code)

	var result service.AssessResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.False(t, result.Response.Success)
	assert.Contains(t, result.Response.Message, "Missing required data")
}

func TestProcessAgent_Unknown(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/agents/telepathy/process", processBody(t, phenotypeARecord()))
	req.Header.Set("Content-Type", "application/json")
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProcessAgent_InvalidBody(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/agents/identify_phenotype/process",
		bytes.NewBufferString(`{"metadata": {}}`))
	req.Header.Set("Content-Type", "application/json")
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid request body")
}

func TestClassifyPhenotypeEndpoint(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/phenotype/classify", processBody(t, phenotypeARecord()))
	req.Header.Set("Content-Type", "application/json")
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"phenotype"`)
}

func TestProcessAgent_CacheReplay(t *testing.T) {
	s := newTestServer(t, serverOptions{withHistory: true, withCache: true})

	send := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/phenotype/classify", processBody(t, phenotypeARecord()))
		req.Header.Set("Content-Type", "application/json")
		s.router.ServeHTTP(w, req)
		return w
	}

	first := send()
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := send()
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	// The replayed response did not record a second history entry
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/assessments", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	var page service.HistoryResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, int64(1), page.Total)
}

func TestLabReportEndpoint(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	body, err := json.Marshal(map[string]any{
		"patient_id": "patient-001",
		"lab_results": []map[string]any{
			{"test_name": "Testosterone_Total", "value": 85, "unit": "ng/dL", "reference_range": "15-70"},
			{"test_name": "Fasting_Glucose", "value": "92", "unit": "mg/dL", "reference_range": "70-100"},
		},
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/lab-reports", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		PatientID        string                `json:"patient_id"`
		Processed        []map[string]any      `json:"processed_results"`
		Summary          service.ReportSummary `json:"summary"`
		Missing          []string              `json:"missing_required_labs"`
		PersistedResults int                   `json:"persisted_results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "patient-001", resp.PatientID)
	require.Len(t, resp.Processed, 2)
	assert.Equal(t, 2, resp.Summary.TotalTests)
	assert.Equal(t, 1, resp.Summary.AbnormalResults)
	assert.NotEmpty(t, resp.Missing)
	// No repository wired in this configuration
	assert.Equal(t, 0, resp.PersistedResults)
}

func TestLabReportEndpoint_InvalidBody(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/lab-reports",
		bytes.NewBufferString(`{"patient_id": "patient-001"}`))
	req.Header.Set("Content-Type", "application/json")
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListLabResults_NotConfigured(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/patients/patient-001/lab-results", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "lab result storage is not configured")
}

func TestListAssessments(t *testing.T) {
	s := newTestServer(t, serverOptions{withHistory: true})

	run := func(record map[string]any) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/phenotype/classify", processBody(t, record))
		req.Header.Set("Content-Type", "application/json")
		s.router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	}

	run(phenotypeARecord())
	other := phenotypeARecord()
	other["patient_id"] = "patient-002"
	run(other)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/assessments", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	var page service.HistoryResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, int64(2), page.Total)
	assert.Len(t, page.Assessments, 2)
	assert.Equal(t, 50, page.Limit)

	// Patient filter
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/assessments?patient_id=patient-002", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Len(t, page.Assessments, 1)
	assert.Equal(t, "patient-002", page.Assessments[0].PatientID)
}

func TestListAssessments_NotConfigured(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/assessments", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestPreviousLabsFromStored(t *testing.T) {
	stored := []*domain.PatientLabResult{
		{TestName: "dheas", CollectedAt: time.Date(2025, 5, 20, 8, 0, 0, 0, time.UTC)},
		{TestName: "testosterone_total", CollectedAt: time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC)},
		{TestName: "fasting_glucose", CollectedAt: time.Date(2024, 11, 2, 8, 0, 0, 0, time.UTC)},
	}

	previous := previousLabsFromStored(stored)
	require.Len(t, previous, 2)

	first, ok := previous[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "2025-05-20", first["date"])
	tests, ok := first["tests"].([]any)
	require.True(t, ok)
	assert.Len(t, tests, 2)

	second, ok := previous[1].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "2024-11-02", second["date"])
}
