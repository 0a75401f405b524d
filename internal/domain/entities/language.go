package entities

// DefaultLanguage is used whenever detection fails
const DefaultLanguage = "en"

// Language is an ISO-639-1 code with its display name
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}
