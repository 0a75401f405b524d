package services_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zatekoja/medassist/internal/adapters/knowledge"
	"github.com/zatekoja/medassist/internal/application/services"
	"github.com/zatekoja/medassist/internal/domain/entities"
)

func TestChatPromptBuilder_Build(t *testing.T) {
	builder := services.NewChatPromptBuilder(knowledge.MustLoad().Languages)

	t.Run("renders history in order with speaker labels", func(t *testing.T) {
		history := []entities.ChatMessage{
			{Role: entities.RoleUser, Message: "turn-0"},
			{Role: entities.RoleDoctor, Message: "turn-1"},
			{Role: entities.RoleUser, Message: "turn-2"},
		}

		prompt := builder.Build("what now?", history, nil, "en")

		assert.Contains(t, prompt, "Previous conversation:\nPatient: turn-0\nDoctor: turn-1\nPatient: turn-2\n")
		assert.Contains(t, prompt, "Patient Language: English (EN)")
		assert.True(t, strings.HasSuffix(prompt, "RESPOND IN ENGLISH ONLY. IF YOU RESPOND IN ANY OTHER LANGUAGE, YOU ARE FAILING THE TASK."))
	})

	t.Run("no history omits the section", func(t *testing.T) {
		prompt := builder.Build("hello", nil, nil, "en")
		assert.NotContains(t, prompt, "Previous conversation:")
	})

	t.Run("Hindi carries the register rule", func(t *testing.T) {
		prompt := builder.Build("mujhe sir dard hai", nil, nil, "hi")

		assert.Contains(t, prompt, "Hinglish")
		assert.Contains(t, prompt, "ABSOLUTE LANGUAGE RULE: You MUST respond in Hindi only.")
		assert.True(t, strings.HasSuffix(prompt, "FOLLOW THE REGISTER RULE ABOVE."))
		assert.NotContains(t, prompt, "Previous conversation:")
	})

	t.Run("patient context is included as JSON", func(t *testing.T) {
		prompt := builder.Build("hello", nil, map[string]any{"age": 42}, "fr")
		assert.Contains(t, prompt, `Patient Context: {"age":42}`)
		assert.Contains(t, prompt, "(FR)")
	})

	t.Run("unknown language uses its code", func(t *testing.T) {
		prompt := builder.Build("hallo", nil, nil, "nl")
		assert.Contains(t, prompt, "You MUST respond in NL only.")
	})
}
