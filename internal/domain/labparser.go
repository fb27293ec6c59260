package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ReferenceRange is a parsed "low-high" lab reference interval.
type ReferenceRange struct {
	Low  float64
	High float64
}

// LabValueParser normalizes raw lab entries: test names to canonical form,
// values to float64, reference ranges to numeric bounds. Raw uploads carry
// values as JSON numbers or numeric strings, so both are accepted.
type LabValueParser struct {
	rangePattern *regexp.Regexp
}

// NewLabValueParser creates a lab value parser.
func NewLabValueParser() *LabValueParser {
	// "3.5-19.4", "70 - 100", optional surrounding whitespace
	rangePattern := regexp.MustCompile(`^\s*(\d+(?:\.\d+)?)\s*-\s*(\d+(?:\.\d+)?)\s*$`)

	return &LabValueParser{
		rangePattern: rangePattern,
	}
}

// NormalizeTestName lowercases and trims a test name for comparison against
// the lab catalogues.
func (p *LabValueParser) NormalizeTestName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ParseValue converts a raw lab value to float64. Numeric JSON types pass
// through; numeric strings are parsed.
func (p *LabValueParser) ParseValue(raw any) (float64, error) {
	if f, ok := asFloat(raw); ok {
		return f, nil
	}
	if s, ok := raw.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, fmt.Errorf("could not convert string to float: '%s'", s)
		}
		return f, nil
	}
	return 0, fmt.Errorf("unsupported value type %T", raw)
}

// ParseReferenceRange parses a "low-high" interval string.
func (p *LabValueParser) ParseReferenceRange(raw string) (ReferenceRange, error) {
	matches := p.rangePattern.FindStringSubmatch(raw)
	if len(matches) != 3 {
		return ReferenceRange{}, fmt.Errorf("invalid reference range format: '%s'", raw)
	}

	low, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return ReferenceRange{}, fmt.Errorf("invalid reference range low bound: %w", err)
	}
	high, err := strconv.ParseFloat(matches[2], 64)
	if err != nil {
		return ReferenceRange{}, fmt.Errorf("invalid reference range high bound: %w", err)
	}

	return ReferenceRange{Low: low, High: high}, nil
}

// Classify places a value on the reference interval.
func (rr ReferenceRange) Classify(value float64) LabStatus {
	if value < rr.Low {
		return LabStatusLow
	}
	if value > rr.High {
		return LabStatusHigh
	}
	return LabStatusNormal
}
