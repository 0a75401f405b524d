package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zatekoja/medassist/internal/adapters/knowledge"
	"github.com/zatekoja/medassist/internal/domain/entities"
	"github.com/zatekoja/medassist/internal/domain/providers"
	"github.com/zatekoja/medassist/internal/domain/repositories"
	"github.com/zatekoja/medassist/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/medassist/pkg/errors"
	"github.com/zatekoja/medassist/pkg/imaging"
)

const (
	chatTechnicalApology   = "I apologize, but I'm experiencing technical difficulties. Please try again later or consult a healthcare professional."
	imageChatApology       = "I apologize, but I'm having trouble analyzing the image. Please try uploading a clearer image or describe your symptoms in text."
	chatGenerationFailed   = "AI response generation failed"
	imageUploadPlaceholder = "Medical image uploaded"
)

// ChatSessionService runs multilingual doctor conversations. Turns on the
// same session are serialized; different sessions proceed in parallel.
type ChatSessionService struct {
	repo      repositories.SessionRepository
	chat      providers.ChatCompleter
	detector  providers.LanguageDetector
	images    *ImageAnalysisService
	prompts   *ChatPromptBuilder
	renderer  *ImageResponseRenderer
	languages *knowledge.LanguageTable
	locks     *sessionLocks
	now       func() time.Time

	idMu   sync.Mutex
	lastID string
}

// NewChatSessionService creates a new chat session service. chat may be nil
// when no chat provider is configured; every turn then gets the apology.
func NewChatSessionService(
	repo repositories.SessionRepository,
	chat providers.ChatCompleter,
	detector providers.LanguageDetector,
	images *ImageAnalysisService,
	k *knowledge.Knowledge,
) *ChatSessionService {
	return &ChatSessionService{
		repo:      repo,
		chat:      chat,
		detector:  detector,
		images:    images,
		prompts:   NewChatPromptBuilder(k.Languages),
		renderer:  NewImageResponseRenderer(k.ImageTemplates),
		languages: k.Languages,
		locks:     newSessionLocks(),
		now:       time.Now,
	}
}

// WithClock replaces time.Now, for tests
func (s *ChatSessionService) WithClock(now func() time.Time) *ChatSessionService {
	s.now = now
	return s
}

// Chat handles one patient message. The returned error is only ever a
// validation error; every other failure is reported in the response.
func (s *ChatSessionService) Chat(ctx context.Context, message, sessionID string) (resp *entities.ChatResponse, err error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperrors.NewValidationError("Message is required")
	}
	if sessionID == "" {
		sessionID = s.newSessionID(ctx)
	}

	logger := observability.LoggerFromContext(ctx).With().Str("session_id", sessionID).Logger()
	ctx, span := observability.StartSpan(ctx, "ChatSessionService.Chat")
	defer span.End()

	unlock := s.locks.Lock(sessionID)
	defer unlock()

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("chat turn panicked")
			resp, err = chatFailure(sessionID, fmt.Errorf("panic: %v", r)), nil
		}
	}()

	session, loadErr := s.loadOrCreate(ctx, sessionID)
	if loadErr != nil {
		logger.Error().Err(loadErr).Msg("failed to load chat session")
		return chatFailure(sessionID, loadErr), nil
	}

	language := s.detectLanguage(message)
	session.DetectedLanguage = language
	history := append([]entities.ChatMessage(nil), session.Recent(promptHistoryLimit)...)
	session.Append(entities.ChatMessage{
		Role:      entities.RoleUser,
		Message:   message,
		Timestamp: s.now(),
		Language:  language,
		Kind:      entities.MessageKindText,
	})

	prompt := s.prompts.Build(message, history, session.PatientContext, language)
	reply, replyErr := s.complete(ctx, prompt)

	resp = &entities.ChatResponse{
		Success:          true,
		Response:         reply,
		SessionID:        sessionID,
		DetectedLanguage: language,
	}
	if replyErr != nil {
		logger.Warn().Err(replyErr).Str("language", language).Msg("chat provider failed, replying with apology")
		resp.Success = false
		resp.Response = s.languages.Apology(language)
		resp.Error = chatGenerationFailed
	}

	session.Append(entities.ChatMessage{
		Role:      entities.RoleDoctor,
		Message:   resp.Response,
		Timestamp: s.now(),
		Language:  language,
		Kind:      entities.MessageKindText,
	})

	if err := s.repo.Upsert(ctx, session); err != nil {
		logger.Error().Err(err).Msg("failed to store chat session")
		return chatFailure(sessionID, err), nil
	}
	resp.SessionInfo = session.Info()
	return resp, nil
}

func (s *ChatSessionService) complete(ctx context.Context, prompt string) (string, error) {
	if s.chat == nil {
		return "", errors.New("no chat provider configured")
	}
	reply, err := s.chat.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(reply) == "" {
		return "", errors.New("chat provider returned an empty reply")
	}
	return reply, nil
}

// AnalyzeImageInChat runs the image pipeline inside a conversation and
// replies in the language of the description. Invalid images are rejected
// before the session is touched.
func (s *ChatSessionService) AnalyzeImageInChat(ctx context.Context, data []byte, description, sessionID string) *entities.ImageChatResponse {
	decoded, err := s.images.Validate(data)
	if err != nil {
		message := apperrors.UserMessage(err, msgInvalidImage)
		return &entities.ImageChatResponse{
			Success:          false,
			ChatResponse:     message,
			AnalysisResult:   entities.ImageAnalysisFailure(message),
			DetectedLanguage: entities.DefaultLanguage,
			SessionID:        sessionID,
			Error:            message,
		}
	}
	return s.AnalyzeDecodedImageInChat(ctx, data, decoded, description, sessionID)
}

// AnalyzeDecodedImageInChat is AnalyzeImageInChat for an image that already
// passed ImageAnalysisService.Validate
func (s *ChatSessionService) AnalyzeDecodedImageInChat(ctx context.Context, data []byte, decoded *imaging.Decoded, description, sessionID string) (resp *entities.ImageChatResponse) {
	if sessionID == "" {
		sessionID = s.newSessionID(ctx)
	}

	logger := observability.LoggerFromContext(ctx).With().Str("session_id", sessionID).Logger()
	ctx, span := observability.StartSpan(ctx, "ChatSessionService.AnalyzeImageInChat")
	defer span.End()

	unlock := s.locks.Lock(sessionID)
	defer unlock()

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("image chat turn panicked")
			resp = imageChatFailure(sessionID, fmt.Errorf("panic: %v", r))
		}
	}()

	session, err := s.loadOrCreate(ctx, sessionID)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load chat session")
		return imageChatFailure(sessionID, err)
	}

	language := entities.DefaultLanguage
	if strings.TrimSpace(description) != "" {
		language = s.detectLanguage(description)
	}
	session.DetectedLanguage = language

	result := s.images.AnalyzeDecoded(ctx, data, decoded, description)
	session.ImagesAnalyzed = append(session.ImagesAnalyzed, entities.ImageRecord{
		Timestamp:   s.now(),
		Description: description,
		Analysis:    result,
		Language:    language,
	})

	rendered := s.renderer.Render(result, language)

	upload := imageUploadPlaceholder
	if strings.TrimSpace(description) != "" {
		upload = description
	}
	session.Append(entities.ChatMessage{
		Role:      entities.RoleUser,
		Message:   "[Image Upload] " + upload,
		Timestamp: s.now(),
		Language:  language,
		Kind:      entities.MessageKindImageUpload,
	})
	session.Append(entities.ChatMessage{
		Role:      entities.RoleDoctor,
		Message:   rendered,
		Timestamp: s.now(),
		Language:  language,
		Kind:      entities.MessageKindImageAnalysis,
	})

	if err := s.repo.Upsert(ctx, session); err != nil {
		logger.Error().Err(err).Msg("failed to store chat session")
		return imageChatFailure(sessionID, err)
	}

	return &entities.ImageChatResponse{
		Success:          result.Success,
		ChatResponse:     rendered,
		AnalysisResult:   result,
		DetectedLanguage: language,
		SessionID:        sessionID,
		Error:            result.Error,
	}
}

// SessionInfo summarises a session
func (s *ChatSessionService) SessionInfo(ctx context.Context, sessionID string) (*entities.SessionInfo, error) {
	session, err := s.repo.Get(ctx, sessionID)
	if errors.Is(err, repositories.ErrSessionNotFound) {
		return nil, apperrors.NewNotFoundError("Session not found")
	}
	if err != nil {
		return nil, apperrors.NewUnavailableError("Session store unavailable", err)
	}
	return session.Info(), nil
}

// ClearSession deletes a session, reporting whether it existed
func (s *ChatSessionService) ClearSession(ctx context.Context, sessionID string) (bool, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	deleted, err := s.repo.Delete(ctx, sessionID)
	if err != nil {
		return false, apperrors.NewUnavailableError("Session store unavailable", err)
	}
	return deleted, nil
}

// EvictExpired deletes every session idle past the store's TTL
func (s *ChatSessionService) EvictExpired(ctx context.Context) (int, error) {
	ids, err := s.repo.ListExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to list expired sessions: %w", err)
	}
	evicted := 0
	for _, id := range ids {
		unlock := s.locks.Lock(id)
		deleted, err := s.evictIfExpired(ctx, id)
		unlock()
		if err != nil {
			return evicted, fmt.Errorf("failed to evict session %s: %w", id, err)
		}
		if deleted {
			evicted++
		}
	}
	observability.RecordSessionsEvicted(evicted)
	return evicted, nil
}

// evictIfExpired must be called with the session lock held. A session that
// was recreated or touched after ListExpired reads back as live and is kept.
func (s *ChatSessionService) evictIfExpired(ctx context.Context, id string) (bool, error) {
	_, err := s.repo.Get(ctx, id)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repositories.ErrSessionNotFound) {
		return false, err
	}
	return s.repo.Delete(ctx, id)
}

// StartJanitor evicts expired sessions every interval until ctx is done
func (s *ChatSessionService) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	logger := observability.GetLogger()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				evicted, err := s.EvictExpired(ctx)
				if err != nil {
					logger.Warn().Err(err).Msg("session eviction failed")
					continue
				}
				if evicted > 0 {
					logger.Info().Int("evicted", evicted).Msg("evicted expired chat sessions")
				}
			}
		}
	}()
}

func (s *ChatSessionService) loadOrCreate(ctx context.Context, sessionID string) (*entities.ChatSession, error) {
	session, err := s.repo.Get(ctx, sessionID)
	if errors.Is(err, repositories.ErrSessionNotFound) {
		observability.LoggerFromContext(ctx).Info().Str("session_id", sessionID).Msg("new chat session started")
		return entities.NewChatSession(sessionID, s.now()), nil
	}
	return session, err
}

func (s *ChatSessionService) detectLanguage(text string) string {
	if s.detector == nil {
		return entities.DefaultLanguage
	}
	code, err := s.detector.Detect(text)
	if err != nil || code == "" {
		return entities.DefaultLanguage
	}
	return code
}

// newSessionID returns the current time in milliseconds, with a uuid suffix
// when that id was just handed out or already exists.
func (s *ChatSessionService) newSessionID(ctx context.Context) string {
	id := strconv.FormatInt(s.now().UnixMilli(), 10)

	s.idMu.Lock()
	taken := id == s.lastID
	s.lastID = id
	s.idMu.Unlock()

	if !taken {
		if _, err := s.repo.Get(ctx, id); err == nil {
			taken = true
		}
	}
	if taken {
		id = id + "-" + uuid.NewString()
	}
	return id
}

func chatFailure(sessionID string, err error) *entities.ChatResponse {
	return &entities.ChatResponse{
		Success:          false,
		Response:         chatTechnicalApology,
		SessionID:        sessionID,
		DetectedLanguage: entities.DefaultLanguage,
		Error:            err.Error(),
	}
}

func imageChatFailure(sessionID string, err error) *entities.ImageChatResponse {
	return &entities.ImageChatResponse{
		Success:          false,
		ChatResponse:     imageChatApology,
		DetectedLanguage: entities.DefaultLanguage,
		SessionID:        sessionID,
		Error:            "Failed to analyze image: " + err.Error(),
	}
}
