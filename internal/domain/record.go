package domain

import (
	"strings"
)

// PatientRecord is a structured clinical record: named fields mapped to
// values decoded from JSON. No schema is enforced beyond presence of the
// keys an operation requires; accessors tolerate absent or oddly shaped
// fields and report absence instead of panicking.
type PatientRecord map[string]any

// LabResult is a single measured lab value inside a record's lab_results
// list. Value is left untyped because uploads arrive as raw JSON; numeric
// interpretation happens at evaluation time.
type LabResult struct {
	TestName       string `json:"test_name"`
	Value          any    `json:"value"`
	Unit           string `json:"unit"`
	ReferenceRange string `json:"reference_range"`
	Date           string `json:"date,omitempty"`
}

// Has reports whether the record contains the named top-level field.
// Presence is key membership only; a present-but-empty value still counts.
func (r PatientRecord) Has(field string) bool {
	_, ok := r[field]
	return ok
}

// MissingFields returns the required fields absent from the record, in the
// order given.
func (r PatientRecord) MissingFields(required []string) []string {
	var missing []string
	for _, field := range required {
		if !r.Has(field) {
			missing = append(missing, field)
		}
	}
	return missing
}

// String returns the named field as a string, or "" when absent or not a
// string.
func (r PatientRecord) String(field string) string {
	s, _ := r[field].(string)
	return s
}

// Bool returns the truthiness of the named field. Absent fields, false,
// zero, empty strings and empty collections are all false.
func (r PatientRecord) Bool(field string) bool {
	return Truthy(r[field])
}

// Float returns the named field as a float64. Integers widen; anything
// non-numeric reports ok=false.
func (r PatientRecord) Float(field string) (float64, bool) {
	return asFloat(r[field])
}

// Section returns the named field as a nested mapping, or nil when absent
// or not a mapping.
func (r PatientRecord) Section(field string) map[string]any {
	m, _ := r[field].(map[string]any)
	return m
}

// SectionBool returns the truthiness of section[key].
func (r PatientRecord) SectionBool(section, key string) bool {
	return Truthy(r.Section(section)[key])
}

// SectionFloat returns section[key] as a float64. Integers widen; anything
// non-numeric reports ok=false.
func (r PatientRecord) SectionFloat(section, key string) (float64, bool) {
	return asFloat(r.Section(section)[key])
}

// StringList returns the named field as a list of strings. Accepts both
// []string and JSON-decoded []any; non-string items are skipped.
func (r PatientRecord) StringList(field string) []string {
	return toStringList(r[field])
}

// Symptoms returns the reported symptom identifiers. The field is usually a
// list; a flag-map form is also accepted, in which case the keys are
// returned.
func (r PatientRecord) Symptoms() []string {
	switch v := r["symptoms"].(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		return keys
	default:
		return toStringList(v)
	}
}

// HasSymptom reports whether the named symptom appears in the record's
// symptom list (or among the keys of a flag-map form).
func (r PatientRecord) HasSymptom(name string) bool {
	switch v := r["symptoms"].(type) {
	case map[string]any:
		_, ok := v[name]
		return ok
	default:
		return containsString(toStringList(v), name)
	}
}

// SymptomFlag reports whether the named symptom is affirmatively flagged:
// a truthy value in flag-map form, or plain membership in list form.
func (r PatientRecord) SymptomFlag(name string) bool {
	switch v := r["symptoms"].(type) {
	case map[string]any:
		return Truthy(v[name])
	default:
		return containsString(toStringList(v), name)
	}
}

// LabResults returns the record's lab_results entries. Entries that are not
// mappings are skipped.
func (r PatientRecord) LabResults() []LabResult {
	items, ok := r["lab_results"].([]any)
	if !ok {
		return nil
	}
	results := make([]LabResult, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		lr := LabResult{
			TestName:       stringField(m, "test_name"),
			Value:          m["value"],
			Unit:           stringField(m, "unit"),
			ReferenceRange: stringField(m, "reference_range"),
			Date:           stringField(m, "date"),
		}
		results = append(results, lr)
	}
	return results
}

// HasLabTest reports whether a lab result with the given test name exists,
// compared case-insensitively.
func (r PatientRecord) HasLabTest(name string) bool {
	for _, lab := range r.LabResults() {
		if strings.EqualFold(lab.TestName, name) {
			return true
		}
	}
	return false
}

// HistoryConditions returns medical_history.conditions as a string list.
func (r PatientRecord) HistoryConditions() []string {
	return toStringList(r.Section("medical_history")["conditions"])
}

// HasCondition reports whether the named condition appears in the medical
// history.
func (r PatientRecord) HasCondition(name string) bool {
	return containsString(r.HistoryConditions(), name)
}

// LifestyleFactors returns the lifestyle_factors mapping, or nil.
func (r PatientRecord) LifestyleFactors() map[string]any {
	return r.Section("lifestyle_factors")
}

// HasLifestyleFactor reports whether the key is present in the
// lifestyle_factors mapping. Key membership only; the value is not
// inspected.
func (r PatientRecord) HasLifestyleFactor(name string) bool {
	_, ok := r.LifestyleFactors()[name]
	return ok
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func toStringList(v any) []string {
	switch items := v.(type) {
	case []string:
		return items
	case []any:
		out := make([]string, 0, len(items))
		for _, item := range items {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func containsString(list []string, target string) bool {
	for _, s := range list {
		if s == target {
			return true
		}
	}
	return false
}

// Truthy mirrors loosely-typed JSON truthiness: nil, false, zero, empty
// string and empty collections are false, everything else true.
func Truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case float64:
		return val != 0
	case int:
		return val != 0
	case int64:
		return val != 0
	case []any:
		return len(val) > 0
	case []string:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	default:
		return true
	}
}

func asFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case int32:
		return float64(val), true
	default:
		return 0, false
	}
}
