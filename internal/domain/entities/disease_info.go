package entities

// HealthIndicator is a WHO GHO indicator related to a condition
type HealthIndicator struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	Region        string `json:"region"`
	Year          string `json:"year,omitempty"`
	Value         string `json:"value,omitempty"`
	Effectiveness string `json:"effectiveness"`
	Source        string `json:"source"`
}

// DiseaseInfo is the informational summary served for a disease name
type DiseaseInfo struct {
	DiseaseName       string            `json:"disease_name"`
	Description       string            `json:"description"`
	Symptoms          []string          `json:"symptoms"`
	Causes            []string          `json:"causes"`
	Treatments        []string          `json:"treatments"`
	Prevention        []string          `json:"prevention"`
	IsCommonCondition bool              `json:"is_common_condition"`
	HealthIndicators  []HealthIndicator `json:"health_indicators"`
	Disclaimer        string            `json:"disclaimer"`
}
