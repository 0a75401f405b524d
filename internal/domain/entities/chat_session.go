package entities

import (
	"maps"
	"slices"
	"time"
)

// ChatRole identifies who wrote a history entry
type ChatRole string

const (
	RoleUser   ChatRole = "user"
	RoleDoctor ChatRole = "doctor"
)

// MessageKind tags history entries produced by the image flow
type MessageKind string

const (
	MessageKindText          MessageKind = "text"
	MessageKindImageUpload   MessageKind = "image_upload"
	MessageKindImageAnalysis MessageKind = "image_analysis"
)

// ChatMessage is one entry of a conversation history
type ChatMessage struct {
	Role      ChatRole    `json:"role"`
	Message   string      `json:"message"`
	Timestamp time.Time   `json:"timestamp"`
	Language  string      `json:"language"`
	Kind      MessageKind `json:"type,omitempty"`
}

// ImageRecord remembers an image analysed within a session
type ImageRecord struct {
	Timestamp   time.Time            `json:"timestamp"`
	Description string               `json:"description"`
	Analysis    *ImageAnalysisResult `json:"analysis"`
	Language    string               `json:"language"`
}

// ChatSession is the per-conversation state
type ChatSession struct {
	ID                   string         `json:"session_id"`
	ConversationHistory  []ChatMessage  `json:"conversation_history"`
	PatientContext       map[string]any `json:"patient_context"`
	StartTime            time.Time      `json:"start_time"`
	LastActive           time.Time      `json:"last_active"`
	DetectedLanguage     string         `json:"detected_language"`
	ImagesAnalyzed       []ImageRecord  `json:"images_analyzed"`
	SymptomsIdentified   []string       `json:"symptoms_identified"`
	RecommendationsGiven []string       `json:"recommendations_given"`
}

// NewChatSession starts an empty session in English
func NewChatSession(id string, now time.Time) *ChatSession {
	return &ChatSession{
		ID:                   id,
		ConversationHistory:  []ChatMessage{},
		PatientContext:       map[string]any{},
		StartTime:            now,
		LastActive:           now,
		DetectedLanguage:     "en",
		ImagesAnalyzed:       []ImageRecord{},
		SymptomsIdentified:   []string{},
		RecommendationsGiven: []string{},
	}
}

// Append adds an entry and marks the session active
func (s *ChatSession) Append(msg ChatMessage) {
	s.ConversationHistory = append(s.ConversationHistory, msg)
	if msg.Timestamp.After(s.LastActive) {
		s.LastActive = msg.Timestamp
	}
}

// Recent returns up to n of the latest history entries
func (s *ChatSession) Recent(n int) []ChatMessage {
	if n <= 0 || len(s.ConversationHistory) == 0 {
		return nil
	}
	start := max(len(s.ConversationHistory)-n, 0)
	return s.ConversationHistory[start:]
}

// Clone returns a copy whose slices and context map are not shared.
// Image analysis results are treated as immutable and stay shared.
func (s *ChatSession) Clone() *ChatSession {
	if s == nil {
		return nil
	}
	c := *s
	c.ConversationHistory = slices.Clone(s.ConversationHistory)
	c.PatientContext = maps.Clone(s.PatientContext)
	c.ImagesAnalyzed = slices.Clone(s.ImagesAnalyzed)
	c.SymptomsIdentified = slices.Clone(s.SymptomsIdentified)
	c.RecommendationsGiven = slices.Clone(s.RecommendationsGiven)
	return &c
}

// Info summarises the session
func (s *ChatSession) Info() *SessionInfo {
	return &SessionInfo{
		SessionID:            s.ID,
		StartTime:            s.StartTime,
		MessageCount:         len(s.ConversationHistory),
		ImagesAnalyzed:       len(s.ImagesAnalyzed),
		DetectedLanguage:     s.DetectedLanguage,
		SymptomsIdentified:   nonNilStrings(s.SymptomsIdentified),
		RecommendationsGiven: nonNilStrings(s.RecommendationsGiven),
	}
}

// SessionInfo is the public summary of a chat session
type SessionInfo struct {
	SessionID            string    `json:"session_id"`
	StartTime            time.Time `json:"start_time"`
	MessageCount         int       `json:"message_count"`
	ImagesAnalyzed       int       `json:"images_analyzed"`
	DetectedLanguage     string    `json:"detected_language"`
	SymptomsIdentified   []string  `json:"symptoms_identified"`
	RecommendationsGiven []string  `json:"recommendations_given"`
}

// ChatResponse is the reply to one chat turn
type ChatResponse struct {
	Success          bool         `json:"success"`
	Response         string       `json:"response"`
	SessionID        string       `json:"session_id,omitempty"`
	DetectedLanguage string       `json:"detected_language"`
	SessionInfo      *SessionInfo `json:"session_info,omitempty"`
	Error            string       `json:"error,omitempty"`
}

// ImageChatResponse is the reply to an image uploaded within a chat
type ImageChatResponse struct {
	Success          bool                 `json:"success"`
	ChatResponse     string               `json:"chat_response"`
	AnalysisResult   *ImageAnalysisResult `json:"analysis_result,omitempty"`
	DetectedLanguage string               `json:"detected_language"`
	SessionID        string               `json:"session_id,omitempty"`
	Error            string               `json:"error,omitempty"`
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
