package entities

// ImagePayload is an image ready for a vision model
type ImagePayload struct {
	Data      []byte
	MediaType string
}

// ImageCondition is a condition suggested from an image
type ImageCondition struct {
	Condition             string   `json:"condition"`
	Confidence            int      `json:"confidence"`
	Severity              Severity `json:"severity"`
	Description           string   `json:"description"`
	DifferentialDiagnosis []string `json:"differential_diagnosis,omitempty"`
	ImmediateActions      []string `json:"immediate_actions,omitempty"`
	WhenToSeekHelp        string   `json:"when_to_seek_help,omitempty"`
}

// ImageFindings holds the visual part of an image analysis
type ImageFindings struct {
	VisualFindings      []string         `json:"visual_findings"`
	PotentialConditions []ImageCondition `json:"potential_conditions"`
	RecommendedTests    []string         `json:"recommended_tests"`
	ImmediateActions    []string         `json:"immediate_actions"`
	WhenToSeekHelp      string           `json:"when_to_seek_help"`
}

// ImageMedicine is a medicine suggested by the vision model
type ImageMedicine struct {
	Name     string   `json:"name"`
	Purpose  string   `json:"purpose,omitempty"`
	Dosage   string   `json:"dosage,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// ImageMedicineRecommendations groups medicines suggested from an image
type ImageMedicineRecommendations struct {
	OTCMedicines          []ImageMedicine `json:"otc_medicines"`
	PrescriptionMedicines []ImageMedicine `json:"prescription_medicines"`
	NaturalRemedies       []ImageMedicine `json:"natural_remedies"`
	Contraindications     []string        `json:"contraindications"`
}

// ImageAnalysisResult is the outcome of the image pipeline. Failures use
// the same shape with Success false, Error set and generic Recommendations.
type ImageAnalysisResult struct {
	Success                 bool                          `json:"success"`
	Error                   string                        `json:"error,omitempty"`
	AnalysisMethod          string                        `json:"analysis_method,omitempty"`
	UserQueryAddressed      string                        `json:"user_query_addressed,omitempty"`
	ImageAnalysis           *ImageFindings                `json:"image_analysis,omitempty"`
	MedicineRecommendations *ImageMedicineRecommendations `json:"medicine_recommendations,omitempty"`
	SafetyAlerts            []string                      `json:"safety_alerts,omitempty"`
	Recommendations         []string                      `json:"recommendations"`
	Warnings                []string                      `json:"warnings,omitempty"`
	RawResponse             string                        `json:"raw_response,omitempty"`
}

// ImageAnalysisFailure builds an unsuccessful result
func ImageAnalysisFailure(message string, recommendations ...string) *ImageAnalysisResult {
	if recommendations == nil {
		recommendations = []string{}
	}
	return &ImageAnalysisResult{
		Success:         false,
		Error:           message,
		Recommendations: recommendations,
	}
}
