package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pcos-cds-mcp-server/internal/agent"
	"github.com/pcos-cds-mcp-server/internal/cache"
	"github.com/pcos-cds-mcp-server/internal/domain"
	"github.com/pcos-cds-mcp-server/internal/middleware"
	"github.com/pcos-cds-mcp-server/internal/repository"
	"github.com/pcos-cds-mcp-server/internal/service"
)

// storedLabsLimit caps how many persisted results feed the previous-labs
// enrichment for one request.
const storedLabsLimit = 200

// Server represents the HTTP server
type Server struct {
	configManager domain.ConfigManager
	logger        *logrus.Logger
	registry      *agent.Registry
	assessments   *service.AssessmentService
	reports       *service.LabReportProcessor
	labResults    *repository.LabResultRepository
	responses     cache.ResponseCache
	router        *gin.Engine
	server        *http.Server
}

// NewServer creates a new HTTP server instance. labResults and responses
// may be nil: lab-result endpoints then report the storage as unavailable
// and response caching is skipped.
func NewServer(
	configManager domain.ConfigManager,
	logger *logrus.Logger,
	registry *agent.Registry,
	assessments *service.AssessmentService,
	labResults *repository.LabResultRepository,
	responses cache.ResponseCache,
) *Server {
	cfg := configManager.GetConfig()

	// Set Gin mode based on environment
	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.AuditLogger())
	router.Use(corsMiddleware())
	if cfg.Server.RateLimitRPS > 0 {
		router.Use(middleware.RateLimit(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst))
	}

	server := &Server{
		configManager: configManager,
		logger:        logger,
		registry:      registry,
		assessments:   assessments,
		reports:       service.NewLabReportProcessor(logger),
		labResults:    labResults,
		responses:     responses,
		router:        router,
	}

	// Setup routes
	server.setupRoutes()

	return server
}

// Start starts the HTTP server and blocks until the context is cancelled
func (s *Server) Start(ctx context.Context) error {
	cfg := s.configManager.GetServerConfig()
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	// Start server in a goroutine
	go func() {
		s.logger.WithField("addr", addr).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic(fmt.Sprintf("Failed to start server: %v", err))
		}
	}()

	// Wait for context cancellation
	<-ctx.Done()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(shutdownCtx)
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	// Health check endpoint
	s.router.GET("/health", s.handleHealth)

	// API v1 routes
	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/agents", s.handleListAgents)
		v1.GET("/agents/:name", s.handleGetAgent)
		v1.POST("/agents/:name/process", s.handleProcessAgent)
		v1.POST("/phenotype/classify", s.handleClassifyPhenotype)
		v1.POST("/root-causes/analyze", s.handleAnalyzeRootCauses)
		v1.POST("/lab-reports", s.handleLabReport)
		v1.GET("/patients/:id/lab-results", s.handleListLabResults)
		v1.GET("/assessments", s.handleListAssessments)
	}
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now(),
		"version":   "1.0.0",
		"agents":    s.registry.Count(),
	})
}

// handleListAgents lists the registered care pathway agents
func (s *Server) handleListAgents(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"agents": s.registry.Infos(),
		"count":  s.registry.Count(),
	})
}

// handleGetAgent returns the discovery record for one agent
func (s *Server) handleGetAgent(c *gin.Context) {
	id := c.Param("name")

	a, ok := s.registry.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("unknown agent: %s", id)})
		return
	}

	c.JSON(http.StatusOK, agent.Describe(id, a))
}

// handleProcessAgent runs the named agent on the submitted patient record
func (s *Server) handleProcessAgent(c *gin.Context) {
	agentID := c.Param("name")

	if _, ok := s.registry.Get(agentID); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("unknown agent: %s", agentID)})
		return
	}

	s.processRecord(c, agentID)
}

// handleClassifyPhenotype runs the phenotype agent directly
func (s *Server) handleClassifyPhenotype(c *gin.Context) {
	s.processRecord(c, agent.StepIdentifyPhenotype)
}

// handleAnalyzeRootCauses runs the root cause agent directly
func (s *Server) handleAnalyzeRootCauses(c *gin.Context) {
	s.processRecord(c, agent.StepRootCauseAnalysis)
}

// processRecord binds the request, consults the response cache and runs
// the agent through the assessment service. Cache hits replay the earlier
// response verbatim without recording a new history entry.
func (s *Server) processRecord(c *gin.Context, agentID string) {
	var req domain.ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid request body: %v", err)})
		return
	}

	record := domain.PatientRecord(req.PatientData)
	if agentID == agent.StepRecommendLabs {
		s.enrichPreviousLabs(c.Request.Context(), record)
	}

	key := cache.ResponseKey(agentID, record)
	if s.responses != nil {
		if payload, found, err := s.responses.Get(c.Request.Context(), key); err == nil && found {
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
			return
		}
	}

	result, err := s.assessments.Assess(c.Request.Context(), &service.AssessParams{
		AgentID: agentID,
		Record:  record,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":          err.Error(),
			"correlation_id": c.GetString("correlation_id"),
		})
		return
	}

	if s.responses != nil {
		if payload, err := json.Marshal(result); err == nil {
			if err := s.responses.Set(c.Request.Context(), key, payload, 0); err != nil {
				s.logger.WithError(err).Warn("Failed to cache agent response")
			}
		}
	}

	c.Header("X-Cache", "MISS")
	c.JSON(http.StatusOK, result)
}

// handleLabReport processes an uploaded lab report and persists the
// interpreted entries when storage is configured
func (s *Server) handleLabReport(c *gin.Context) {
	var req domain.LabReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid request body: %v", err)})
		return
	}

	report := s.reports.Process(c.Request.Context(), rawLabEntries(req.LabResults))

	persisted := 0
	if s.labResults != nil {
		entries := report.PatientResults(req.PatientID)
		if err := s.labResults.SaveReport(c.Request.Context(), entries); err != nil {
			s.logger.WithError(err).Warn("Failed to persist lab report, returning unsaved results")
		} else {
			persisted = len(entries)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"patient_id":            req.PatientID,
		"processed_results":     report.ProcessedPayloads(),
		"summary":               report.Summary,
		"missing_required_labs": report.MissingCoreLabs,
		"persisted_results":     persisted,
	})
}

// handleListLabResults returns a patient's stored lab results
func (s *Server) handleListLabResults(c *gin.Context) {
	if s.labResults == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "lab result storage is not configured"})
		return
	}

	patientID := c.Param("id")
	limit := queryInt(c, "limit", 50)
	if limit <= 0 || limit > storedLabsLimit {
		limit = 50
	}
	offset := queryInt(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	results, err := s.labResults.ListByPatient(c.Request.Context(), patientID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":          err.Error(),
			"correlation_id": c.GetString("correlation_id"),
		})
		return
	}
	if results == nil {
		results = []*domain.PatientLabResult{}
	}

	c.JSON(http.StatusOK, gin.H{
		"patient_id":  patientID,
		"lab_results": results,
		"count":       len(results),
	})
}

// handleListAssessments returns a page of the assessment history
func (s *Server) handleListAssessments(c *gin.Context) {
	result, err := s.assessments.History(c.Request.Context(), &service.HistoryParams{
		PatientID: c.Query("patient_id"),
		Limit:     queryInt(c, "limit", 0),
		Offset:    queryInt(c, "offset", 0),
	})
	if err != nil {
		if errors.Is(err, service.ErrHistoryNotConfigured) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":          err.Error(),
			"correlation_id": c.GetString("correlation_id"),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// enrichPreviousLabs fills previous_labs from stored results when the
// caller omits it, so the recent-evaluation check sees lab panels that
// earlier uploads persisted. Records that already carry the field are
// left untouched, as are patients with nothing stored.
func (s *Server) enrichPreviousLabs(ctx context.Context, record domain.PatientRecord) {
	if s.labResults == nil || record.Has("previous_labs") {
		return
	}
	patientID := record.String("patient_id")
	if patientID == "" {
		return
	}

	stored, err := s.labResults.ListByPatient(ctx, patientID, storedLabsLimit, 0)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to load stored lab results for enrichment")
		return
	}
	if len(stored) == 0 {
		return
	}

	record["previous_labs"] = previousLabsFromStored(stored)
}

// previousLabsFromStored reshapes persisted lab results into the
// previous-labs form the recommender evaluates: one entry per collection
// date, newest first, each listing its test names.
func previousLabsFromStored(stored []*domain.PatientLabResult) []any {
	byDate := make(map[string][]any)
	order := make([]string, 0)
	for _, result := range stored {
		date := result.CollectedAt.Format("2006-01-02")
		if _, ok := byDate[date]; !ok {
			order = append(order, date)
		}
		byDate[date] = append(byDate[date], map[string]any{"name": result.TestName})
	}

	previous := make([]any, 0, len(order))
	for _, date := range order {
		previous = append(previous, map[string]any{
			"date":  date,
			"tests": byDate[date],
		})
	}
	return previous
}

// rawLabEntries converts typed upload entries to the untyped form the
// report processor evaluates, the same shape records carry in-line.
func rawLabEntries(labs []domain.LabResult) []any {
	raw := make([]any, 0, len(labs))
	for _, lab := range labs {
		entry := map[string]any{
			"test_name":       lab.TestName,
			"value":           lab.Value,
			"unit":            lab.Unit,
			"reference_range": lab.ReferenceRange,
		}
		if lab.Date != "" {
			entry["date"] = lab.Date
		}
		raw = append(raw, entry)
	}
	return raw
}

// queryInt parses an integer query parameter, falling back on absence or
// malformed input
func queryInt(c *gin.Context, name string, fallback int) int {
	if v := c.Query(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// corsMiddleware adds CORS headers to responses
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, X-API-Key")
		c.Header("Access-Control-Expose-Headers", "Content-Length")
		c.Header("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
