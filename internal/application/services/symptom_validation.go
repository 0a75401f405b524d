package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	apperrors "github.com/zatekoja/medassist/pkg/errors"
)

const minSymptomsLength = 3

// ValidateSymptoms trims a symptom description and checks its length.
// maxLength <= 0 disables the upper bound.
func ValidateSymptoms(symptoms string, maxLength int) (string, error) {
	trimmed := strings.TrimSpace(symptoms)
	if trimmed == "" {
		return "", apperrors.NewValidationError("Please enter your symptoms")
	}
	if utf8.RuneCountInString(trimmed) < minSymptomsLength {
		return "", apperrors.NewValidationError("Please provide more detailed symptoms")
	}
	if maxLength > 0 && utf8.RuneCountInString(trimmed) > maxLength {
		return "", apperrors.NewValidationError(fmt.Sprintf("Please keep your symptom description under %d characters", maxLength))
	}
	return trimmed, nil
}
