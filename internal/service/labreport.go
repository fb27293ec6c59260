package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pcos-cds-mcp-server/internal/domain"
	"github.com/pcos-cds-mcp-server/internal/knowledge"
)

// LabReportProcessor validates uploaded lab results, classifies each
// value against its reference range and summarizes the findings.
type LabReportProcessor struct {
	logger *logrus.Logger
	parser *domain.LabValueParser
}

// NewLabReportProcessor creates a lab report processor.
func NewLabReportProcessor(logger *logrus.Logger) *LabReportProcessor {
	return &LabReportProcessor{
		logger: logger,
		parser: domain.NewLabValueParser(),
	}
}

// Process evaluates every uploaded entry. Entries with missing fields or
// unparseable values become error entries rather than failing the whole
// report.
func (s *LabReportProcessor) Process(ctx context.Context, rawLabs []any) *Report {
	s.logger.WithField("result_count", len(rawLabs)).Debug("Processing uploaded lab results")

	processed := make([]ProcessedLab, 0, len(rawLabs))
	for _, raw := range rawLabs {
		entry, ok := raw.(map[string]any)
		if !ok {
			processed = append(processed, ProcessedLab{
				Status:  domain.LabStatusError,
				Message: "Incomplete lab data",
			})
			continue
		}
		processed = append(processed, s.processSingle(entry))
	}

	report := &Report{
		Processed:       processed,
		Summary:         summarize(processed),
		MissingCoreLabs: s.missingCoreLabs(processed),
	}

	s.logger.WithFields(logrus.Fields{
		"total_tests":      report.Summary.TotalTests,
		"abnormal_results": report.Summary.AbnormalResults,
		"missing_core":     len(report.MissingCoreLabs),
	}).Info("Completed lab report processing")

	return report
}

func (s *LabReportProcessor) processSingle(raw map[string]any) ProcessedLab {
	name := s.parser.NormalizeTestName(stringValue(raw["test_name"]))

	for _, key := range []string{"test_name", "value", "unit", "reference_range"} {
		if _, ok := raw[key]; !ok {
			return ProcessedLab{
				Status:   domain.LabStatusError,
				TestName: name,
				Message:  "Incomplete lab data",
			}
		}
	}

	value, err := s.parser.ParseValue(raw["value"])
	if err != nil {
		return invalidLabEntry(name, err)
	}
	rr, err := s.parser.ParseReferenceRange(stringValue(raw["reference_range"]))
	if err != nil {
		return invalidLabEntry(name, err)
	}

	status := rr.Classify(value)

	timestamp, ok := raw["date"].(string)
	if !ok {
		timestamp = time.Now().Format(time.RFC3339)
	}

	return ProcessedLab{
		Status:         status,
		TestName:       name,
		Value:          value,
		Unit:           stringValue(raw["unit"]),
		ReferenceRange: stringValue(raw["reference_range"]),
		PCOSRelated:    knowledge.IsCommonPCOSLab(name),
		Interpretation: knowledge.InterpretLabResult(name, status),
		Timestamp:      timestamp,
	}
}

// missingCoreLabs lists the routine PCOS tests absent from the upload,
// in catalogue order.
func (s *LabReportProcessor) missingCoreLabs(processed []ProcessedLab) []string {
	uploaded := make(map[string]struct{}, len(processed))
	for _, entry := range processed {
		uploaded[entry.TestName] = struct{}{}
	}

	missing := []string{}
	for _, name := range knowledge.CommonPCOSLabs() {
		if _, ok := uploaded[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

func summarize(processed []ProcessedLab) ReportSummary {
	summary := ReportSummary{TotalTests: len(processed)}

	for _, entry := range processed {
		if entry.PCOSRelated {
			summary.PCOSRelatedTests++
		}
		abnormal := (entry.Status == domain.LabStatusHigh || entry.Status == domain.LabStatusLow) && entry.PCOSRelated
		if !abnormal {
			continue
		}
		summary.AbnormalResults++
		if strings.HasPrefix(strings.ToLower(entry.Interpretation), "elevated") {
			summary.CriticalAbnormal++
		}
	}

	summary.NeedsAttention = summary.AbnormalResults > 0
	return summary
}

func invalidLabEntry(name string, err error) ProcessedLab {
	return ProcessedLab{
		Status:   domain.LabStatusError,
		TestName: name,
		Message:  fmt.Sprintf("Invalid lab data format: %v", err),
	}
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

// ProcessedLab is the evaluation of one uploaded lab value. Error
// entries carry only the status, test name and message.
type ProcessedLab struct {
	Status         domain.LabStatus
	TestName       string
	Value          float64
	Unit           string
	ReferenceRange string
	PCOSRelated    bool
	Interpretation string
	Timestamp      string
	Message        string
}

// Payload returns the wire form of the entry; error entries omit the
// measurement fields.
func (p ProcessedLab) Payload() map[string]any {
	if p.Status == domain.LabStatusError {
		return map[string]any{
			"status":    p.Status,
			"test_name": p.TestName,
			"message":   p.Message,
		}
	}
	return map[string]any{
		"status":          p.Status,
		"test_name":       p.TestName,
		"value":           p.Value,
		"unit":            p.Unit,
		"reference_range": p.ReferenceRange,
		"is_pcos_related": p.PCOSRelated,
		"interpretation":  p.Interpretation,
		"timestamp":       p.Timestamp,
	}
}

// Report is the outcome of processing one lab upload.
type Report struct {
	Processed       []ProcessedLab
	Summary         ReportSummary
	MissingCoreLabs []string
}

// ProcessedPayloads returns the wire form of every processed entry.
func (r *Report) ProcessedPayloads() []map[string]any {
	payloads := make([]map[string]any, 0, len(r.Processed))
	for _, entry := range r.Processed {
		payloads = append(payloads, entry.Payload())
	}
	return payloads
}

// PatientResults converts the successfully evaluated entries to their
// persistent form for the named patient. Error entries are skipped.
func (r *Report) PatientResults(patientID string) []*domain.PatientLabResult {
	results := make([]*domain.PatientLabResult, 0, len(r.Processed))
	for _, entry := range r.Processed {
		if entry.Status == domain.LabStatusError {
			continue
		}
		results = append(results, &domain.PatientLabResult{
			PatientID:      patientID,
			TestName:       entry.TestName,
			Value:          entry.Value,
			Unit:           entry.Unit,
			ReferenceRange: entry.ReferenceRange,
			Status:         entry.Status,
			PCOSRelated:    entry.PCOSRelated,
			CollectedAt:    parseCollectionTime(entry.Timestamp),
		})
	}
	return results
}

// parseCollectionTime accepts the two timestamp forms entries carry,
// the RFC3339 processing stamp and a plain upload date. Anything else
// falls back to the current time.
func parseCollectionTime(stamp string) time.Time {
	if t, err := time.Parse(time.RFC3339, stamp); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", stamp); err == nil {
		return t
	}
	return time.Now()
}

// ReportSummary aggregates a processed upload. Abnormal counts only
// consider PCOS-related tests; critical entries are those whose
// interpretation flags an elevation.
type ReportSummary struct {
	TotalTests       int  `json:"total_tests"`
	AbnormalResults  int  `json:"abnormal_results"`
	CriticalAbnormal int  `json:"critical_abnormal"`
	PCOSRelatedTests int  `json:"pcos_related_tests"`
	NeedsAttention   bool `json:"needs_attention"`
}
