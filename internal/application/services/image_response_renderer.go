package services

import (
	"fmt"
	"strings"

	"github.com/zatekoja/medassist/internal/adapters/knowledge"
	"github.com/zatekoja/medassist/internal/domain/entities"
)

// ImageResponseRenderer turns an image analysis into a chat reply in the
// patient's language
type ImageResponseRenderer struct {
	templates *knowledge.ImageTemplates
}

// NewImageResponseRenderer creates a new renderer
func NewImageResponseRenderer(templates *knowledge.ImageTemplates) *ImageResponseRenderer {
	return &ImageResponseRenderer{templates: templates}
}

// Render formats the findings, conditions, recommendations and urgent
// actions. Results without findings get the "need more information" reply.
func (r *ImageResponseRenderer) Render(result *entities.ImageAnalysisResult, language string) string {
	tpl := r.templates.For(language)
	if result == nil || result.ImageAnalysis == nil {
		return tpl.Fallback
	}
	analysis := result.ImageAnalysis

	var sb strings.Builder
	sb.WriteString(tpl.IntroFor(result.UserQueryAddressed))
	sb.WriteString("\n\n")

	writeBullets(&sb, tpl.Findings, analysis.VisualFindings)

	if len(analysis.PotentialConditions) > 0 {
		sb.WriteString(tpl.Conditions + "\n")
		for _, c := range analysis.PotentialConditions {
			name := c.Condition
			if name == "" {
				name = "Unknown"
			}
			fmt.Fprintf(&sb, "• %s (Confidence: %d%%, Severity: %s)\n", name, c.Confidence, c.Severity)
			if c.Description != "" {
				fmt.Fprintf(&sb, "  %s\n", c.Description)
			}
		}
		sb.WriteString("\n")
	}

	writeBullets(&sb, tpl.Recommendations, result.Recommendations)
	writeBullets(&sb, tpl.Urgent, analysis.ImmediateActions)

	sb.WriteString(tpl.Consult)
	return sb.String()
}

func writeBullets(sb *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(heading + "\n")
	for _, item := range items {
		sb.WriteString("• " + item + "\n")
	}
	sb.WriteString("\n")
}
