package domain

// Message is one entry in a conversation's timeline (user or AI).
// Messages are immutable once persisted; the log only grows, except
// for bulk deletion during a reset.
type Message struct {
	ID             MessageID
	ConversationID ConversationID
	UserID         UserID
	Mode           Mode
	Role           Role
	Text           string
	CreatedAt      Timestamp
}

// Conversation groups a user's messages for one mode. Summary and Tags
// are derived fields, written only by the summarization pipeline; they
// never gate the chat itself.
//
// A (UserID, Mode) pair may own many Conversation rows (one per reset);
// the one with the greatest LastUpdated is the active one.
type Conversation struct {
	ID          ConversationID
	UserID      UserID
	Mode        Mode
	StartedAt   Timestamp
	LastUpdated Timestamp
	Summary     string
	Tags        []string
}
