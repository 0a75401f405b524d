package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/zatekoja/medassist/internal/adapters/knowledge"
	"github.com/zatekoja/medassist/internal/domain/entities"
)

const promptHistoryLimit = 5

// ChatPromptBuilder renders the doctor persona prompt for one chat turn
type ChatPromptBuilder struct {
	languages *knowledge.LanguageTable
}

// NewChatPromptBuilder creates a new prompt builder
func NewChatPromptBuilder(languages *knowledge.LanguageTable) *ChatPromptBuilder {
	return &ChatPromptBuilder{languages: languages}
}

// Build renders the prompt. history holds the turns before the current
// message, already trimmed to promptHistoryLimit by the caller.
func (b *ChatPromptBuilder) Build(message string, history []entities.ChatMessage, patientContext map[string]any, language string) string {
	profile := b.languages.Profile(language)
	code := strings.ToUpper(profile.Code)

	var sb strings.Builder
	fmt.Fprintf(&sb, "You are a multilingual medical AI assistant. The patient is communicating in %s (%s).\n\n", profile.Name, code)
	sb.WriteString(profile.Instruction)
	sb.WriteString("\n\n")

	fmt.Fprintf(&sb, "ABSOLUTE LANGUAGE RULE: You MUST respond in %s only.\n", profile.Name)
	sb.WriteString("- DO NOT respond in any other language\n")
	fmt.Fprintf(&sb, "- ONLY respond in %s\n", profile.Name)
	if profile.RegisterRule != "" {
		fmt.Fprintf(&sb, "- %s\n", profile.RegisterRule)
	}
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "Patient Language: %s (%s)\n", profile.Name, code)
	if len(patientContext) > 0 {
		if encoded, err := json.Marshal(patientContext); err == nil {
			fmt.Fprintf(&sb, "Patient Context: %s\n", encoded)
		}
	}
	sb.WriteString("\n")

	if len(history) > 0 {
		sb.WriteString("Previous conversation:\n")
		for _, msg := range history {
			speaker := "Doctor"
			if msg.Role == entities.RoleUser {
				speaker = "Patient"
			}
			fmt.Fprintf(&sb, "%s: %s\n", speaker, msg.Message)
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "Current patient message: %s\n\n", message)
	fmt.Fprintf(&sb, "FINAL COMMAND: RESPOND IN %s ONLY. IF YOU RESPOND IN ANY OTHER LANGUAGE, YOU ARE FAILING THE TASK.", strings.ToUpper(profile.Name))
	if profile.RegisterRule != "" {
		sb.WriteString(" FOLLOW THE REGISTER RULE ABOVE.")
	}
	return sb.String()
}
