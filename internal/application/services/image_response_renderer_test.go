package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zatekoja/medassist/internal/adapters/knowledge"
	"github.com/zatekoja/medassist/internal/application/services"
	"github.com/zatekoja/medassist/internal/domain/entities"
)

func TestImageResponseRenderer_Render(t *testing.T) {
	k := knowledge.MustLoad()
	renderer := services.NewImageResponseRenderer(k.ImageTemplates)

	result := &entities.ImageAnalysisResult{
		Success: true,
		ImageAnalysis: &entities.ImageFindings{
			VisualFindings: []string{"Swelling around the ankle"},
			PotentialConditions: []entities.ImageCondition{
				{Condition: "Sprain", Confidence: 65, Severity: entities.SeverityModerate, Description: "Ligament injury"},
				{Confidence: 10, Severity: entities.SeverityLow},
			},
			ImmediateActions: []string{"Numbness in the foot"},
		},
		Recommendations: []string{"Ice the area"},
	}

	t.Run("english", func(t *testing.T) {
		reply := renderer.Render(result, "en")

		assert.Equal(t, "Based on my analysis of your image, here's what I found:\n\n"+
			"Visual findings:\n• Swelling around the ankle\n\n"+
			"Potential conditions identified:\n"+
			"• Sprain (Confidence: 65%, Severity: moderate)\n  Ligament injury\n"+
			"• Unknown (Confidence: 10%, Severity: low)\n\n"+
			"Recommendations:\n• Ice the area\n\n"+
			"⚠️ URGENT: Please seek immediate medical attention if you experience:\n• Numbness in the foot\n\n"+
			"Please consult a healthcare professional for proper diagnosis and treatment.", reply)
	})

	t.Run("uses the template of the language", func(t *testing.T) {
		es := k.ImageTemplates.For("es")
		reply := renderer.Render(result, "es")
		assert.Contains(t, reply, es.Findings)
		assert.Contains(t, reply, es.Consult)
	})

	t.Run("unsupported language uses English", func(t *testing.T) {
		assert.Equal(t, renderer.Render(result, "en"), renderer.Render(result, "sw"))
	})

	t.Run("missing findings give the fallback reply", func(t *testing.T) {
		assert.Equal(t, k.ImageTemplates.For("es").Fallback,
			renderer.Render(entities.ImageAnalysisFailure("boom"), "es"))
		assert.Equal(t, k.ImageTemplates.For("en").Fallback, renderer.Render(nil, "en"))
	})
}
