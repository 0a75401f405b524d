package entities

import "strings"

// Severity grades how urgent a condition is
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityModerate Severity = "moderate"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// ParseSeverity maps free text onto a Severity, defaulting to moderate
func ParseSeverity(s string) Severity {
	switch Severity(strings.ToLower(strings.TrimSpace(s))) {
	case SeverityLow:
		return SeverityLow
	case SeverityHigh:
		return SeverityHigh
	case SeverityCritical:
		return SeverityCritical
	default:
		return SeverityModerate
	}
}

// ClampConfidence keeps a confidence score within 0..100
func ClampConfidence(c int) int {
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}

// Diagnosis is one potential condition suggested for a symptom description
type Diagnosis struct {
	Condition               string                     `json:"condition"`
	Confidence              int                        `json:"confidence"`
	Severity                Severity                   `json:"severity"`
	Description             string                     `json:"description"`
	ImmediateActions        []string                   `json:"immediate_actions"`
	WhenToSeekHelp          string                     `json:"when_to_seek_help"`
	MedicineRecommendations *MedicineRecommendationSet `json:"medicine_recommendations,omitempty"`
}

// Normalize enforces the confidence range and the severity vocabulary
func (d *Diagnosis) Normalize() {
	d.Condition = strings.TrimSpace(d.Condition)
	d.Confidence = ClampConfidence(d.Confidence)
	d.Severity = ParseSeverity(string(d.Severity))
	if d.ImmediateActions == nil {
		d.ImmediateActions = []string{}
	}
}

// SymptomCorrections records how the model interpreted misspelled input
type SymptomCorrections struct {
	Original        string   `json:"original"`
	Corrected       string   `json:"corrected"`
	Interpretations []string `json:"interpretations"`
}

// AnalysisResult is the outcome of a symptom analysis
type AnalysisResult struct {
	AnalysisMethod     string              `json:"analysis_method"`
	Provider           string              `json:"provider,omitempty"`
	CorrectedSymptoms  string              `json:"corrected_symptoms,omitempty"`
	SymptomCorrections *SymptomCorrections `json:"symptom_corrections,omitempty"`
	PotentialDiagnoses []Diagnosis         `json:"potential_diagnoses"`
	Recommendations    []string            `json:"recommendations"`
	Warnings           []string            `json:"warnings"`
	RawResponse        string              `json:"raw_response,omitempty"`
	Message            string              `json:"message,omitempty"`
}

// HasDiagnoses reports whether the result carries at least one diagnosis
func (r *AnalysisResult) HasDiagnoses() bool {
	return r != nil && len(r.PotentialDiagnoses) > 0
}

// Normalize normalizes every diagnosis and replaces nil lists
func (r *AnalysisResult) Normalize() {
	if r.PotentialDiagnoses == nil {
		r.PotentialDiagnoses = []Diagnosis{}
	}
	for i := range r.PotentialDiagnoses {
		r.PotentialDiagnoses[i].Normalize()
	}
	if r.Recommendations == nil {
		r.Recommendations = []string{}
	}
	if r.Warnings == nil {
		r.Warnings = []string{}
	}
}

// NoAnalysisAvailable is returned when every AI provider failed
func NoAnalysisAvailable() *AnalysisResult {
	return &AnalysisResult{
		AnalysisMethod:     "AI Analysis Unavailable",
		PotentialDiagnoses: []Diagnosis{},
		Recommendations:    []string{"Please consult a healthcare professional for an accurate diagnosis"},
		Warnings:           []string{},
		Message:            "AI analysis services are currently unavailable. This system uses only AI APIs and external medical databases, no hardcoded diagnosis data is used.",
	}
}
