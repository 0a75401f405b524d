// Package llm holds the prompts and response normalizers shared by the
// language-model clients.
package llm

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/zatekoja/medassist/internal/domain/entities"
	"github.com/zatekoja/medassist/pkg/jsonextract"
)

// Mode selects what happens when model output has no usable JSON
type Mode int

const (
	// Strict returns an error so the caller can try another provider
	Strict Mode = iota
	// Lenient returns a synthetic result carrying the raw text
	Lenient
)

// ErrNoStructuredOutput is returned in Strict mode for unparseable output
var ErrNoStructuredOutput = errors.New("model output contained no structured analysis")

// confidence accepts 85, 85.4, "85", "85%" and 0.85
type confidence int

func (c *confidence) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(strings.Trim(string(b), `"`))
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	if s == "" || s == "null" {
		*c = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*c = 0
		return nil
	}
	if f > 0 && f < 1 {
		f *= 100
	}
	*c = confidence(math.Round(f))
	return nil
}

// text accepts a string or a list of strings
type text string

func (t *text) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = text(strings.TrimSpace(s))
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*t = text(strings.Join(list, "; "))
		return nil
	}
	*t = ""
	return nil
}

// textList accepts a list of strings or a single string
type textList []string

func (l *textList) UnmarshalJSON(b []byte) error {
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*l = list
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil && strings.TrimSpace(s) != "" {
		*l = []string{strings.TrimSpace(s)}
		return nil
	}
	*l = []string{}
	return nil
}

func (l textList) values() []string {
	if l == nil {
		return []string{}
	}
	return []string(l)
}

type diagnosisWire struct {
	Condition        text       `json:"condition"`
	Confidence       confidence `json:"confidence"`
	Severity         text       `json:"severity"`
	Description      text       `json:"description"`
	ImmediateActions textList   `json:"immediate_actions"`
	WhenToSeekHelp   text       `json:"when_to_seek_help"`
}

type analysisWire struct {
	AnalysisMethod     text          `json:"analysis_method"`
	CorrectedSymptoms  text          `json:"corrected_symptoms"`
	SymptomCorrections *struct {
		Original        text     `json:"original"`
		Corrected       text     `json:"corrected"`
		Interpretations textList `json:"interpretations"`
	} `json:"symptom_corrections"`
	PotentialDiagnoses []diagnosisWire `json:"potential_diagnoses"`
	Recommendations    textList        `json:"recommendations"`
	Warnings           textList        `json:"warnings"`
}

// ParseAnalysis turns model output into an AnalysisResult. defaultMethod
// labels results whose JSON does not name an analysis method.
func ParseAnalysis(output, defaultMethod string, mode Mode) (*entities.AnalysisResult, error) {
	var wire analysisWire
	if err := jsonextract.Decode(output, &wire); err != nil {
		if mode == Lenient && strings.TrimSpace(output) != "" {
			return syntheticAnalysis(output, defaultMethod), nil
		}
		return nil, errors.Join(ErrNoStructuredOutput, err)
	}

	result := &entities.AnalysisResult{
		AnalysisMethod:    string(wire.AnalysisMethod),
		CorrectedSymptoms: string(wire.CorrectedSymptoms),
		Recommendations:   wire.Recommendations.values(),
		Warnings:          wire.Warnings.values(),
	}
	if result.AnalysisMethod == "" {
		result.AnalysisMethod = defaultMethod
	}
	if sc := wire.SymptomCorrections; sc != nil {
		result.SymptomCorrections = &entities.SymptomCorrections{
			Original:        string(sc.Original),
			Corrected:       string(sc.Corrected),
			Interpretations: sc.Interpretations.values(),
		}
	}
	for _, d := range wire.PotentialDiagnoses {
		if strings.TrimSpace(string(d.Condition)) == "" {
			continue
		}
		result.PotentialDiagnoses = append(result.PotentialDiagnoses, entities.Diagnosis{
			Condition:        string(d.Condition),
			Confidence:       int(d.Confidence),
			Severity:         entities.Severity(d.Severity),
			Description:      string(d.Description),
			ImmediateActions: d.ImmediateActions.values(),
			WhenToSeekHelp:   string(d.WhenToSeekHelp),
		})
	}
	result.Normalize()
	return result, nil
}

func syntheticAnalysis(output, defaultMethod string) *entities.AnalysisResult {
	result := &entities.AnalysisResult{
		AnalysisMethod: defaultMethod + " (Text Parsed)",
		RawResponse:    output,
		PotentialDiagnoses: []entities.Diagnosis{{
			Condition:        "AI Analysis Available",
			Confidence:       70,
			Severity:         entities.SeverityModerate,
			Description:      "The AI provided an analysis but the response format needs adjustment",
			ImmediateActions: []string{"Review AI response", "Consult healthcare provider"},
			WhenToSeekHelp:   "If symptoms persist or worsen",
		}},
		Recommendations: []string{"AI analysis completed", "Review detailed response"},
		Warnings:        []string{"This is AI-generated information", "Always consult healthcare professionals"},
	}
	result.Normalize()
	return result
}

type imageConditionWire struct {
	Condition             text       `json:"condition"`
	Confidence            confidence `json:"confidence"`
	Severity              text       `json:"severity"`
	Description           text       `json:"description"`
	DifferentialDiagnosis textList   `json:"differential_diagnosis"`
}

type imageMedicineWire struct {
	Name     text     `json:"name"`
	Purpose  text     `json:"purpose"`
	Dosage   text     `json:"dosage"`
	Warnings textList `json:"warnings"`
}

type imageAnalysisWire struct {
	AnalysisMethod     text `json:"analysis_method"`
	UserQueryAddressed text `json:"user_query_addressed"`
	ImageAnalysis      *struct {
		VisualFindings      textList             `json:"visual_findings"`
		PotentialConditions []imageConditionWire `json:"potential_conditions"`
		RecommendedTests    textList             `json:"recommended_tests"`
		ImmediateActions    textList             `json:"immediate_actions"`
		WhenToSeekHelp      text                 `json:"when_to_seek_help"`
	} `json:"image_analysis"`
	MedicineRecommendations *struct {
		OTCMedicines          []imageMedicineWire `json:"otc_medicines"`
		PrescriptionMedicines []imageMedicineWire `json:"prescription_medicines"`
		NaturalRemedies       []imageMedicineWire `json:"natural_remedies"`
		Contraindications     textList            `json:"contraindications"`
	} `json:"medicine_recommendations"`
	SafetyAlerts    textList `json:"safety_alerts"`
	Recommendations textList `json:"recommendations"`
	Warnings        textList `json:"warnings"`
}

// ParseImageAnalysis turns vision model output into a successful
// ImageAnalysisResult. Output without JSON yields a synthetic result.
func ParseImageAnalysis(output string) *entities.ImageAnalysisResult {
	var wire imageAnalysisWire
	if err := jsonextract.Decode(output, &wire); err != nil {
		return syntheticImageAnalysis(output)
	}

	result := &entities.ImageAnalysisResult{
		Success:            true,
		AnalysisMethod:     string(wire.AnalysisMethod),
		UserQueryAddressed: string(wire.UserQueryAddressed),
		SafetyAlerts:       wire.SafetyAlerts.values(),
		Recommendations:    wire.Recommendations.values(),
		Warnings:           wire.Warnings.values(),
	}
	if result.AnalysisMethod == "" {
		result.AnalysisMethod = "Claude Vision Medical Analysis"
	}

	if ia := wire.ImageAnalysis; ia != nil {
		findings := &entities.ImageFindings{
			VisualFindings:      ia.VisualFindings.values(),
			PotentialConditions: []entities.ImageCondition{},
			RecommendedTests:    ia.RecommendedTests.values(),
			ImmediateActions:    ia.ImmediateActions.values(),
			WhenToSeekHelp:      string(ia.WhenToSeekHelp),
		}
		for _, c := range ia.PotentialConditions {
			if strings.TrimSpace(string(c.Condition)) == "" {
				continue
			}
			findings.PotentialConditions = append(findings.PotentialConditions, entities.ImageCondition{
				Condition:             string(c.Condition),
				Confidence:            entities.ClampConfidence(int(c.Confidence)),
				Severity:              entities.ParseSeverity(string(c.Severity)),
				Description:           string(c.Description),
				DifferentialDiagnosis: c.DifferentialDiagnosis.values(),
			})
		}
		result.ImageAnalysis = findings
	}

	if mr := wire.MedicineRecommendations; mr != nil {
		result.MedicineRecommendations = &entities.ImageMedicineRecommendations{
			OTCMedicines:          imageMedicines(mr.OTCMedicines),
			PrescriptionMedicines: imageMedicines(mr.PrescriptionMedicines),
			NaturalRemedies:       imageMedicines(mr.NaturalRemedies),
			Contraindications:     mr.Contraindications.values(),
		}
	}

	return result
}

func imageMedicines(in []imageMedicineWire) []entities.ImageMedicine {
	out := make([]entities.ImageMedicine, 0, len(in))
	for _, m := range in {
		if string(m.Name) == "" {
			continue
		}
		out = append(out, entities.ImageMedicine{
			Name:     string(m.Name),
			Purpose:  string(m.Purpose),
			Dosage:   string(m.Dosage),
			Warnings: m.Warnings.values(),
		})
	}
	return out
}

func syntheticImageAnalysis(output string) *entities.ImageAnalysisResult {
	return &entities.ImageAnalysisResult{
		Success:            true,
		AnalysisMethod:     "Claude Vision Analysis (Text Parsed)",
		UserQueryAddressed: "Analysis provided but response format needs adjustment",
		ImageAnalysis: &entities.ImageFindings{
			VisualFindings: []string{"Image analyzed successfully"},
			PotentialConditions: []entities.ImageCondition{{
				Condition:        "Image Analysis Available",
				Confidence:       70,
				Severity:         entities.SeverityModerate,
				Description:      "Claude Vision provided analysis but response format needs adjustment",
				ImmediateActions: []string{"Review AI analysis", "Consult healthcare provider"},
				WhenToSeekHelp:   "If symptoms persist or worsen",
			}},
			RecommendedTests: []string{"Consult healthcare professional"},
			ImmediateActions: []string{"Review detailed analysis"},
			WhenToSeekHelp:   "Based on AI analysis",
		},
		SafetyAlerts:    []string{"This is AI-generated information"},
		Recommendations: []string{"Review AI analysis", "Consult healthcare professional"},
		Warnings:        []string{"Always consult healthcare professionals for accurate diagnosis"},
		RawResponse:     output,
	}
}
