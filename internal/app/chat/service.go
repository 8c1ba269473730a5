package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/BillyGuo1996/The-Connector/internal/app/session"
	"github.com/BillyGuo1996/The-Connector/internal/domain"
	"github.com/BillyGuo1996/The-Connector/internal/observability"
)

// Fixed user-facing texts shown when the generation call fails. These
// synthetic messages live only in the in-memory log; they are never
// persisted, so the durable log stays accurate about what the service
// actually said.
const (
	apologyUnauthorized = "⚠️ Your API key might be missing or invalid."
	apologyGeneration   = "⚠️ Sorry — I had trouble reaching the AI. Please try again."
)

// Summarizer is the post-exchange summarization pipeline. Its result is
// discarded by the service; errors go to the operator log only.
type Summarizer interface {
	Summarize(ctx context.Context, conversationID domain.ConversationID, mode domain.Mode, history []*domain.Message) error
}

// Service coordinates an exchange: append the user message, persist it,
// call the generation client over the bounded context, persist the AI
// reply, and kick off summarization in the background.
type Service struct {
	llm        domain.GenerationClient
	messages   domain.MessageStore
	resolver   *session.Resolver
	summarizer Summarizer
	now        func() time.Time
	newID      func() string
}

func NewService(
	llm domain.GenerationClient,
	messages domain.MessageStore,
	resolver *session.Resolver,
	summarizer Summarizer,
) *Service {
	return &Service{
		llm:        llm,
		messages:   messages,
		resolver:   resolver,
		summarizer: summarizer,
		now:        time.Now,
		newID:      func() string { return uuid.NewString() },
	}
}

// Resolve returns the active conversation id for (userID, mode).
func (s *Service) Resolve(ctx context.Context, userID domain.UserID, mode domain.Mode) (domain.ConversationID, error) {
	return s.resolver.Resolve(ctx, userID, mode)
}

// LoadLog fetches the full ordered message log for the triple. The
// returned sequence is the rendering and context state.
func (s *Service) LoadLog(ctx context.Context, userID domain.UserID, mode domain.Mode, conversationID domain.ConversationID) ([]*domain.Message, error) {
	msgs, err := s.messages.ListMessages(userID, mode, conversationID)
	if err != nil {
		observability.LoggerFromContext(ctx).Error("failed to load message log",
			"conversation_id", conversationID,
			"error", err)
		return nil, fmt.Errorf("load log: %w", err)
	}
	return msgs, nil
}

type SendMessageInput struct {
	UserID         domain.UserID
	ConversationID domain.ConversationID
	Mode           domain.Mode
	Text           string

	// Log is the caller's current in-memory log; the updated log is
	// built on top of it.
	Log []*domain.Message
}

type SendMessageOutput struct {
	// Log is the final in-memory log, returned regardless of which
	// branch was taken.
	Log []*domain.Message

	UserMessage *domain.Message
	AIMessage   *domain.Message
}

// SendMessage runs one exchange. Empty or whitespace-only text, or a
// missing user id, is a silent no-op. Persistence failures on append
// are logged and tolerated: the in-memory log keeps the message either
// way. A generation failure appends a synthetic, non-persisted apology
// from the AI instead of surfacing an error.
func (s *Service) SendMessage(ctx context.Context, in SendMessageInput) SendMessageOutput {
	text := strings.TrimSpace(in.Text)
	if text == "" || in.UserID == "" {
		return SendMessageOutput{Log: in.Log}
	}

	log := observability.LoggerFromContext(ctx).With(
		"conversation_id", in.ConversationID,
		"user_id", in.UserID,
		"mode", in.Mode,
	)

	now := s.now()
	userMsg := &domain.Message{
		ID:             domain.MessageID(s.newID()),
		ConversationID: in.ConversationID,
		UserID:         in.UserID,
		Mode:           in.Mode,
		Role:           domain.RoleUser,
		Text:           text,
		CreatedAt:      now,
	}

	updated := make([]*domain.Message, 0, len(in.Log)+2)
	updated = append(updated, in.Log...)
	updated = append(updated, userMsg)

	// Optimistic append: the rendered log keeps the message even if the
	// write fails. No automatic retry.
	if err := s.messages.AppendMessage(userMsg); err != nil {
		log.Error("failed to persist user message, keeping it in memory", "error", err)
	}

	replyText, err := s.llm.GenerateReply(ctx, text, domain.ConversationContext{
		ConversationID: in.ConversationID,
		UserID:         in.UserID,
		Mode:           in.Mode,
		History:        updated,
	})
	if err != nil {
		log.Error("generation failed", "error", err)

		apology := &domain.Message{
			ID:             domain.MessageID(s.newID()),
			ConversationID: in.ConversationID,
			UserID:         in.UserID,
			Mode:           in.Mode,
			Role:           domain.RoleAI,
			Text:           apologyFor(err),
			CreatedAt:      s.now(),
		}
		updated = append(updated, apology)

		return SendMessageOutput{Log: updated, UserMessage: userMsg, AIMessage: apology}
	}

	aiMsg := &domain.Message{
		ID:             domain.MessageID(s.newID()),
		ConversationID: in.ConversationID,
		UserID:         in.UserID,
		Mode:           in.Mode,
		Role:           domain.RoleAI,
		Text:           replyText,
		CreatedAt:      s.now(),
	}
	updated = append(updated, aiMsg)

	if err := s.messages.AppendMessage(aiMsg); err != nil {
		log.Error("failed to persist ai message, keeping it in memory", "error", err)
	}

	s.dispatchSummarize(in.ConversationID, in.Mode, updated)

	return SendMessageOutput{Log: updated, UserMessage: userMsg, AIMessage: aiMsg}
}

// Reset deletes the active log and starts a fresh conversation for the
// same (user, mode). If the new conversation cannot be created, the old
// id stays in effect; the already-performed deletion is not undone.
func (s *Service) Reset(ctx context.Context, userID domain.UserID, mode domain.Mode, conversationID domain.ConversationID) (domain.ConversationID, error) {
	log := observability.LoggerFromContext(ctx).With(
		"conversation_id", conversationID,
		"user_id", userID,
		"mode", mode,
	)

	if err := s.messages.DeleteMessages(userID, mode, conversationID); err != nil {
		log.Error("failed to clear message log", "error", err)
		return "", fmt.Errorf("reset: %w", err)
	}

	conv, err := s.resolver.StartNew(ctx, userID, mode)
	if err != nil {
		return "", fmt.Errorf("reset: %w", err)
	}

	log.Info("conversation reset", "new_conversation_id", conv.ID)
	return conv.ID, nil
}

// dispatchSummarize runs the summarization pipeline as a detached
// background task over a snapshot of the log. Panics and errors are
// routed to the operator log, never to the user.
func (s *Service) dispatchSummarize(conversationID domain.ConversationID, mode domain.Mode, history []*domain.Message) {
	snapshot := make([]*domain.Message, len(history))
	copy(snapshot, history)

	go func() {
		log := observability.WithComponent("summary").With("conversation_id", conversationID)
		defer func() {
			if r := recover(); r != nil {
				log.Error("summarization panicked", "panic", r)
			}
		}()

		// Detached from the request context: the caller navigating away
		// must not cancel the summary write.
		if err := s.summarizer.Summarize(context.Background(), conversationID, mode, snapshot); err != nil {
			log.Error("summarization failed", "error", err)
		}
	}()
}

func apologyFor(err error) string {
	if errors.Is(err, domain.ErrUnauthorized) {
		return apologyUnauthorized
	}
	return apologyGeneration
}
