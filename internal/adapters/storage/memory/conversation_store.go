package memory

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/BillyGuo1996/The-Connector/internal/domain"
)

// ConversationStore is a simple in-memory implementation of
// domain.ConversationStore. It is NOT persistent and is only suitable
// for development / local mode.
type ConversationStore struct {
	mu sync.RWMutex
	// insertion order, so LatestConversation ties resolve to the row
	// created last
	conversations []*domain.Conversation
	byID          map[domain.ConversationID]*domain.Conversation
}

func NewConversationStore() *ConversationStore {
	return &ConversationStore{
		byID: make(map[domain.ConversationID]*domain.Conversation),
	}
}

func (s *ConversationStore) CreateConversation(conv *domain.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[conv.ID]; exists {
		return errors.New("conversation already exists")
	}

	s.conversations = append(s.conversations, conv)
	s.byID[conv.ID] = conv
	return nil
}

func (s *ConversationStore) LatestConversation(userID domain.UserID, mode domain.Mode) (*domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *domain.Conversation
	for _, c := range s.conversations {
		if c.UserID != userID || c.Mode != mode {
			continue
		}
		if latest == nil || !c.LastUpdated.Before(latest.LastUpdated) {
			latest = c
		}
	}

	if latest == nil {
		return nil, domain.ErrConversationNotFound
	}

	cp := *latest
	return &cp, nil
}

func (s *ConversationStore) UpdateConversationSummary(id domain.ConversationID, summary string, tags []string, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("update summary: %w", domain.ErrConversationNotFound)
	}

	conv.Summary = summary
	conv.Tags = tags
	conv.LastUpdated = updatedAt
	return nil
}
