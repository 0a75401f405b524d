package llm

import (
	"fmt"
	"strings"
)

// SymptomSystemPrompt instructs the model to correct informal input and
// answer with the analysis JSON contract.
const SymptomSystemPrompt = `You are a helpful medical AI assistant. The patient describes symptoms in their own words, and the text may contain spelling mistakes, grammar errors or incorrect medical terms.

Your task:
1. Identify and correct misspelled or medically incorrect symptoms.
2. Interpret the message even when the grammar is wrong or informal.
3. Show the corrected and understood symptoms clearly.
4. When a symptom is unclear, suggest similar known symptoms.
5. Give likely diagnoses with confidence levels (0-100), immediate actions and guidance on when to seek help.
6. Always prioritize patient safety and consider the most serious conditions first.

Example:
- Original input: "I'm feling dizzzy and hevvy hed with stomack ack"
- Corrected symptoms: "feeling dizzy, heavy head, stomach ache"

IMPORTANT: Respond ONLY with valid JSON in exactly this structure:
{
  "analysis_method": "Claude AI Medical Analysis",
  "corrected_symptoms": "corrected and understood symptoms",
  "symptom_corrections": {
    "original": "original input",
    "corrected": "corrected symptoms",
    "interpretations": ["interpretation1", "interpretation2"]
  },
  "potential_diagnoses": [
    {
      "condition": "diagnosis_name",
      "confidence": 85,
      "severity": "low|moderate|high|critical",
      "description": "detailed_description",
      "immediate_actions": ["action1", "action2"],
      "when_to_seek_help": "specific guidance on when to see a doctor"
    }
  ],
  "recommendations": ["general_recommendation1"],
  "warnings": ["warning1"]
}`

// StructuredOutputSystemPrompt is the system message for providers that only
// receive the analysis contract in the user turn.
const StructuredOutputSystemPrompt = "You are a medical AI assistant. Provide accurate, helpful medical information in JSON format only."

// SymptomUserPrompt wraps the patient's text for the symptom analysis call
func SymptomUserPrompt(symptoms string) string {
	return fmt.Sprintf(`Please analyze these symptoms and provide a medical assessment.

Original Symptoms: %s

First correct any spelling mistakes, grammar errors or informal language, then analyze the corrected symptoms. Focus on the most likely diagnoses, appropriate confidence levels, safety-focused immediate actions and clear guidance on when to seek medical help.

Remember: respond ONLY with valid JSON, no additional text.`, symptoms)
}

// StructuredSymptomPrompt embeds the analysis contract in a single user turn
func StructuredSymptomPrompt(symptoms, method string) string {
	return fmt.Sprintf(`Analyze these symptoms and provide a medical diagnosis in JSON format.
Symptoms: %s

Respond with JSON only, using this structure:
{
  "analysis_method": %q,
  "potential_diagnoses": [
    {
      "condition": "diagnosis_name",
      "confidence": 85,
      "severity": "moderate",
      "description": "description",
      "immediate_actions": ["action1", "action2"],
      "when_to_seek_help": "when to seek help"
    }
  ]
}`, symptoms, method)
}

// FreeTextSymptomPrompt is used for plain text-generation models
func FreeTextSymptomPrompt(symptoms string) string {
	return "Analyze these symptoms: " + symptoms
}

// ImageSystemPrompt instructs the vision model to answer with the image
// analysis JSON contract.
const ImageSystemPrompt = `You are a highly skilled medical AI assistant with expertise in analyzing medical images. Analyze the uploaded image carefully, directly address the user's question, identify potential conditions or abnormalities, give evidence-based insights and suggest next steps. Be thorough but cautious, consider multiple diagnoses with confidence levels, say when immediate attention is needed, recommend diagnostic tests and possible treatments, and always advise consulting healthcare professionals.

RESPONSE FORMAT (JSON only):
{
  "analysis_method": "Claude Vision Medical Analysis",
  "user_query_addressed": "Brief summary of how you addressed their specific question",
  "image_analysis": {
    "visual_findings": ["finding1", "finding2"],
    "potential_conditions": [
      {
        "condition": "condition_name",
        "confidence": 85,
        "severity": "low|moderate|high|critical",
        "description": "detailed_description",
        "differential_diagnosis": ["alternative1", "alternative2"]
      }
    ],
    "recommended_tests": ["test1"],
    "immediate_actions": ["action1"],
    "when_to_seek_help": "specific guidance"
  },
  "medicine_recommendations": {
    "otc_medicines": [
      {"name": "medicine_name", "purpose": "what it treats", "dosage": "recommended_dosage", "warnings": ["warning1"]}
    ],
    "prescription_medicines": [],
    "natural_remedies": [],
    "contraindications": ["contraindication1"]
  },
  "safety_alerts": ["alert1"],
  "recommendations": ["recommendation1"],
  "warnings": ["warning1"]
}

Remember: respond ONLY with valid JSON, no additional text.`

// ImageUserPrompt asks for an analysis, quoting the user's question if any
func ImageUserPrompt(description string) string {
	var b strings.Builder
	b.WriteString("Please analyze this medical image and provide a comprehensive medical assessment")
	if q := strings.TrimSpace(description); q != "" {
		b.WriteString(" that directly addresses the user's specific question.\n\n")
		b.WriteString("USER'S QUESTION/CONCERN: ")
		b.WriteString(q)
		b.WriteString("\n\nFocus on directly answering the user's question, the visual findings, the most likely conditions with confidence levels, safety-focused recommendations, when to seek medical help and relevant medicines.")
	} else {
		b.WriteString(".\n\nNo specific question provided - please provide general analysis.\n\nFocus on the visual findings, the most likely conditions with confidence levels, safety-focused recommendations, when to seek medical help and relevant medicines.")
	}
	b.WriteString("\n\nRemember: respond ONLY with valid JSON, no additional text.")
	return b.String()
}
