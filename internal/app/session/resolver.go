package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/BillyGuo1996/The-Connector/internal/domain"
	"github.com/BillyGuo1996/The-Connector/internal/observability"
)

type cacheKey struct {
	user domain.UserID
	mode domain.Mode
}

// Resolver decides which conversation a user's next message belongs to.
// The active conversation for (user, mode) is the most recently updated
// one; on genuine first use a fresh conversation is created. Resolved
// ids are cached per process, so repeated resolves within a session hit
// storage once.
type Resolver struct {
	conversations domain.ConversationStore
	now           func() time.Time
	newID         func() string

	mu     sync.Mutex
	active map[cacheKey]domain.ConversationID
}

func NewResolver(conversations domain.ConversationStore) *Resolver {
	return &Resolver{
		conversations: conversations,
		now:           time.Now,
		newID:         func() string { return uuid.NewString() },
		active:        make(map[cacheKey]domain.ConversationID),
	}
}

// Resolve returns the active conversation id for (userID, mode),
// creating a conversation if none exists. A storage failure surfaces as
// ErrStorageUnavailable and the caller must not proceed to a send.
func (r *Resolver) Resolve(ctx context.Context, userID domain.UserID, mode domain.Mode) (domain.ConversationID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := cacheKey{user: userID, mode: mode}
	if id, ok := r.active[key]; ok {
		return id, nil
	}

	log := observability.LoggerFromContext(ctx).With(
		"user_id", userID,
		"mode", mode,
	)

	conv, err := r.conversations.LatestConversation(userID, mode)
	switch {
	case err == nil:
		r.active[key] = conv.ID
		return conv.ID, nil
	case errors.Is(err, domain.ErrConversationNotFound):
		// first use for this (user, mode)
	default:
		log.Error("conversation lookup failed", "error", err)
		return "", fmt.Errorf("%w: resolve: %v", domain.ErrStorageUnavailable, err)
	}

	created, err := r.createLocked(ctx, userID, mode)
	if err != nil {
		return "", err
	}

	log.Info("conversation created", "conversation_id", created.ID)
	return created.ID, nil
}

// StartNew creates a fresh conversation for (userID, mode) and makes it
// the active one. Used by the reset flow; on failure the previously
// cached id stays in effect.
func (r *Resolver) StartNew(ctx context.Context, userID domain.UserID, mode domain.Mode) (*domain.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv, err := r.createLocked(ctx, userID, mode)
	if err != nil {
		observability.LoggerFromContext(ctx).Error("failed to start new conversation",
			"user_id", userID,
			"mode", mode,
			"error", err)
		return nil, err
	}
	return conv, nil
}

func (r *Resolver) createLocked(ctx context.Context, userID domain.UserID, mode domain.Mode) (*domain.Conversation, error) {
	now := r.now()
	conv := &domain.Conversation{
		ID:          domain.ConversationID(r.newID()),
		UserID:      userID,
		Mode:        mode,
		StartedAt:   now,
		LastUpdated: now,
		Summary:     "",
		Tags:        []string{},
	}

	if err := r.conversations.CreateConversation(conv); err != nil {
		return nil, fmt.Errorf("%w: create conversation: %v", domain.ErrStorageUnavailable, err)
	}

	r.active[cacheKey{user: userID, mode: mode}] = conv.ID
	return conv, nil
}
