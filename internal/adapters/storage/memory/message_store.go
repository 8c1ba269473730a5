package memory

import (
	"sort"
	"sync"

	"github.com/BillyGuo1996/The-Connector/internal/domain"
)

// MessageStore is a simple in-memory implementation of
// domain.MessageStore.
type MessageStore struct {
	mu       sync.RWMutex
	messages map[domain.ConversationID][]*domain.Message
}

func NewMessageStore() *MessageStore {
	return &MessageStore{
		messages: make(map[domain.ConversationID][]*domain.Message),
	}
}

func (s *MessageStore) AppendMessage(msg *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages[msg.ConversationID] = append(s.messages[msg.ConversationID], msg)
	return nil
}

func (s *MessageStore) ListMessages(userID domain.UserID, mode domain.Mode, conversationID domain.ConversationID) ([]*domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Message
	for _, m := range s.messages[conversationID] {
		if m.UserID == userID && m.Mode == mode {
			out = append(out, m)
		}
	}

	// Stable, so insertion order breaks CreatedAt ties.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

func (s *MessageStore) DeleteMessages(userID domain.UserID, mode domain.Mode, conversationID domain.ConversationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var kept []*domain.Message
	for _, m := range s.messages[conversationID] {
		if m.UserID != userID || m.Mode != mode {
			kept = append(kept, m)
		}
	}

	if len(kept) == 0 {
		delete(s.messages, conversationID)
	} else {
		s.messages[conversationID] = kept
	}
	return nil
}
