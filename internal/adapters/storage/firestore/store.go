package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/BillyGuo1996/The-Connector/internal/domain"
)

// Store implements domain.ConversationStore and domain.MessageStore on
// top of two flat collections:
//
//	conversations(id, user_id, mode, started_at, last_updated, summary, tags)
//	memories(id, conversation_id, user_id, mode, role, text, created_at)
//
// The queries over (user_id, mode, last_updated) and
// (user_id, mode, conversation_id, created_at) need composite indexes.
type Store struct {
	client *firestore.Client
}

// NewStore creates a Firestore store for the given project
// (CONNECTOR_GCP_PROJECT).
func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client}, nil
}

func (s *Store) conversationsCol() *firestore.CollectionRef {
	return s.client.Collection("conversations")
}

func (s *Store) memoriesCol() *firestore.CollectionRef {
	return s.client.Collection("memories")
}

type conversationDoc struct {
	UserID      string    `firestore:"user_id"`
	Mode        string    `firestore:"mode"`
	StartedAt   time.Time `firestore:"started_at"`
	LastUpdated time.Time `firestore:"last_updated"`
	Summary     string    `firestore:"summary"`
	Tags        []string  `firestore:"tags"`
}

type messageDoc struct {
	ConversationID string    `firestore:"conversation_id"`
	UserID         string    `firestore:"user_id"`
	Mode           string    `firestore:"mode"`
	Role           string    `firestore:"role"`
	Text           string    `firestore:"text"`
	CreatedAt      time.Time `firestore:"created_at"`
}

// ─────────────────────────────────────────
// ConversationStore implementation
// ─────────────────────────────────────────

func (s *Store) CreateConversation(conv *domain.Conversation) error {
	ctx := context.Background()

	tags := conv.Tags
	if tags == nil {
		tags = []string{}
	}

	doc := conversationDoc{
		UserID:      string(conv.UserID),
		Mode:        string(conv.Mode),
		StartedAt:   conv.StartedAt,
		LastUpdated: conv.LastUpdated,
		Summary:     conv.Summary,
		Tags:        tags,
	}

	_, err := s.conversationsCol().Doc(string(conv.ID)).Create(ctx, doc)
	if err != nil {
		return fmt.Errorf("%w: firestore CreateConversation: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

func (s *Store) LatestConversation(userID domain.UserID, mode domain.Mode) (*domain.Conversation, error) {
	ctx := context.Background()

	q := s.conversationsCol().
		Where("user_id", "==", string(userID)).
		Where("mode", "==", string(mode)).
		OrderBy("last_updated", firestore.Desc).
		Limit(1)

	iter := q.Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, domain.ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: firestore LatestConversation: %v", domain.ErrStorageUnavailable, err)
	}

	var doc conversationDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("%w: decode conversationDoc: %v", domain.ErrStorageUnavailable, err)
	}

	return &domain.Conversation{
		ID:          domain.ConversationID(snap.Ref.ID),
		UserID:      domain.UserID(doc.UserID),
		Mode:        domain.Mode(doc.Mode),
		StartedAt:   doc.StartedAt,
		LastUpdated: doc.LastUpdated,
		Summary:     doc.Summary,
		Tags:        doc.Tags,
	}, nil
}

func (s *Store) UpdateConversationSummary(id domain.ConversationID, summary string, tags []string, updatedAt time.Time) error {
	ctx := context.Background()

	if tags == nil {
		tags = []string{}
	}

	_, err := s.conversationsCol().Doc(string(id)).Update(ctx, []firestore.Update{
		{Path: "summary", Value: summary},
		{Path: "tags", Value: tags},
		{Path: "last_updated", Value: updatedAt},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("update summary: %w", domain.ErrConversationNotFound)
		}
		return fmt.Errorf("%w: firestore UpdateConversationSummary: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

// ─────────────────────────────────────────
// MessageStore implementation
// ─────────────────────────────────────────

func (s *Store) AppendMessage(msg *domain.Message) error {
	ctx := context.Background()

	doc := messageDoc{
		ConversationID: string(msg.ConversationID),
		UserID:         string(msg.UserID),
		Mode:           string(msg.Mode),
		Role:           string(msg.Role),
		Text:           msg.Text,
		CreatedAt:      msg.CreatedAt,
	}

	_, err := s.memoriesCol().Doc(string(msg.ID)).Set(ctx, doc)
	if err != nil {
		return fmt.Errorf("%w: firestore AppendMessage: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

func (s *Store) ListMessages(userID domain.UserID, mode domain.Mode, conversationID domain.ConversationID) ([]*domain.Message, error) {
	ctx := context.Background()

	q := s.memoriesCol().
		Where("user_id", "==", string(userID)).
		Where("mode", "==", string(mode)).
		Where("conversation_id", "==", string(conversationID)).
		OrderBy("created_at", firestore.Asc)

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []*domain.Message
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: firestore ListMessages: %v", domain.ErrStorageUnavailable, err)
		}

		var doc messageDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("%w: decode messageDoc: %v", domain.ErrStorageUnavailable, err)
		}

		out = append(out, &domain.Message{
			ID:             domain.MessageID(snap.Ref.ID),
			ConversationID: domain.ConversationID(doc.ConversationID),
			UserID:         domain.UserID(doc.UserID),
			Mode:           domain.Mode(doc.Mode),
			Role:           domain.Role(doc.Role),
			Text:           doc.Text,
			CreatedAt:      doc.CreatedAt,
		})
	}
	return out, nil
}

func (s *Store) DeleteMessages(userID domain.UserID, mode domain.Mode, conversationID domain.ConversationID) error {
	ctx := context.Background()

	q := s.memoriesCol().
		Where("user_id", "==", string(userID)).
		Where("mode", "==", string(mode)).
		Where("conversation_id", "==", string(conversationID))

	iter := q.Documents(ctx)
	defer iter.Stop()

	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: firestore DeleteMessages: %v", domain.ErrStorageUnavailable, err)
		}

		if _, err := snap.Ref.Delete(ctx); err != nil {
			return fmt.Errorf("%w: firestore DeleteMessages: %v", domain.ErrStorageUnavailable, err)
		}
	}
	return nil
}
