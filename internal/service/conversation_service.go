package service

import (
	"context"
	"strings"

	"jenny-assistant-be/internal/dto"
	"jenny-assistant-be/internal/pkg/logger"
	"jenny-assistant-be/pkg/assistant"
	"jenny-assistant-be/pkg/assistant/agent"
	"jenny-assistant-be/pkg/assistant/dispatcher"
	"jenny-assistant-be/pkg/store"
	"jenny-assistant-be/pkg/transcription"
)

const (
	voiceUnclearReply     = "I could not understand the audio. Could you type it instead?"
	imageUnsupportedReply = "Image messages are not yet supported. Please send text."

	voicePlaceholder = "[voice message]"
	imagePlaceholder = "[image message]"
)

type SessionStore interface {
	GetContext(ctx context.Context, userID string) (*store.Snapshot, error)
	AppendHistory(ctx context.Context, userID string, entry store.HistoryEntry) error
	UpdateIntent(ctx context.Context, userID, intent string) error
	Clear(ctx context.Context, userID string) error
	MemoryOnly() bool
}

type Dispatcher interface {
	Invoke(ctx context.Context, query string, req *agent.Request) (*dispatcher.Outcome, error)
}

type IConversationService interface {
	HandleMessage(ctx context.Context, msg *assistant.IncomingMessage) (*dto.AskResponse, error)
	GetSession(ctx context.Context, userId string) (*dto.SessionResponse, error)
	ClearSession(ctx context.Context, userId string) error
}

type conversationService struct {
	sessions    SessionStore
	dispatcher  Dispatcher
	transcriber transcription.Transcriber
	logger      logger.ILogger
}

func NewConversationService(sessions SessionStore, d Dispatcher, transcriber transcription.Transcriber, log logger.ILogger) IConversationService {
	if transcriber == nil {
		transcriber = transcription.Disabled{}
	}
	return &conversationService{
		sessions:    sessions,
		dispatcher:  d,
		transcriber: transcriber,
		logger:      log,
	}
}

// HandleMessage appends exactly one user turn and one assistant turn per
// message and moves last_intent once: through the dispatcher for text and
// transcribed voice, directly for the fixed voice and image replies.
func (s *conversationService) HandleMessage(ctx context.Context, msg *assistant.IncomingMessage) (*dto.AskResponse, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.sessions.GetContext(ctx, msg.UserID); err != nil {
		return nil, err
	}

	var (
		res *dto.AskResponse
		err error
	)
	switch msg.Kind() {
	case assistant.PayloadText:
		res, err = s.handleText(ctx, msg, msg.Text, nil)
	case assistant.PayloadVoice:
		res, err = s.handleVoice(ctx, msg)
	case assistant.PayloadImage:
		res, err = s.shortCircuit(ctx, msg.UserID, assistant.ImageAnalysis, imageUnsupportedReply,
			imagePlaceholder, map[string]interface{}{"image_url": msg.ImageURL})
	}
	if err != nil {
		return nil, err
	}

	if err := s.sessions.AppendHistory(ctx, msg.UserID, store.HistoryEntry{
		Role:    store.RoleAssistant,
		Content: res.Reply,
		Agent:   res.Agent,
	}); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *conversationService) handleText(ctx context.Context, msg *assistant.IncomingMessage, text string, meta map[string]interface{}) (*dto.AskResponse, error) {
	if err := s.sessions.AppendHistory(ctx, msg.UserID, store.HistoryEntry{
		Role:     store.RoleUser,
		Content:  text,
		Metadata: meta,
	}); err != nil {
		return nil, err
	}

	outcome, err := s.dispatcher.Invoke(ctx, text, &agent.Request{UserID: msg.UserID, Metadata: msg.Metadata})
	if err != nil {
		s.logger.Error("ConversationService", "Dispatch failed", map[string]interface{}{
			"user_id": msg.UserID,
			"error":   err.Error(),
		})
		return nil, err
	}
	return &dto.AskResponse{Agent: outcome.Agent, Reply: outcome.Reply, Response: outcome.Response}, nil
}

func (s *conversationService) handleVoice(ctx context.Context, msg *assistant.IncomingMessage) (*dto.AskResponse, error) {
	meta := map[string]interface{}{"voice_url": msg.VoiceURL}

	transcript, err := s.transcriber.Transcribe(ctx, msg.VoiceURL)
	if err != nil {
		// an unreadable recording gets the same answer as a silent one
		s.logger.Warn("ConversationService", "Transcription failed", map[string]interface{}{
			"user_id": msg.UserID,
			"error":   err.Error(),
		})
		transcript = ""
	}
	if strings.TrimSpace(transcript) == "" {
		return s.shortCircuit(ctx, msg.UserID, assistant.VoiceTranscription, voiceUnclearReply, voicePlaceholder, meta)
	}
	return s.handleText(ctx, msg, transcript, meta)
}

func (s *conversationService) shortCircuit(ctx context.Context, userId, agentName, reply, placeholder string, meta map[string]interface{}) (*dto.AskResponse, error) {
	if err := s.sessions.AppendHistory(ctx, userId, store.HistoryEntry{
		Role:     store.RoleUser,
		Content:  placeholder,
		Metadata: meta,
	}); err != nil {
		return nil, err
	}
	if err := s.sessions.UpdateIntent(ctx, userId, agentName); err != nil {
		return nil, err
	}
	return &dto.AskResponse{
		Agent:    agentName,
		Reply:    reply,
		Response: &agent.Result{Reply: reply, Data: meta},
	}, nil
}

func (s *conversationService) GetSession(ctx context.Context, userId string) (*dto.SessionResponse, error) {
	snap, err := s.sessions.GetContext(ctx, userId)
	if err != nil {
		return nil, err
	}

	history := make([]dto.HistoryEntryResponse, 0, len(snap.History))
	for _, h := range snap.History {
		history = append(history, dto.HistoryEntryResponse{
			Role:     h.Role,
			Content:  h.Content,
			Agent:    h.Agent,
			Metadata: h.Metadata,
		})
	}

	res := &dto.SessionResponse{
		UserId:     userId,
		History:    history,
		LastIntent: snap.LastIntent,
		Metadata:   snap.Metadata,
		UpdatedAt:  snap.UpdatedAt,
		MemoryOnly: s.sessions.MemoryOnly(),
	}
	if snap.PendingTask != nil {
		res.PendingTask = map[string]string{
			"title":   snap.PendingTask.Title,
			"details": snap.PendingTask.Details,
		}
	}
	return res, nil
}

func (s *conversationService) ClearSession(ctx context.Context, userId string) error {
	return s.sessions.Clear(ctx, userId)
}
