package domain

import "time"

type ConversationID string
type UserID string
type MessageID string

type Role string

const (
	RoleUser Role = "user"
	RoleAI   Role = "ai"
)

type Mode string

const (
	ModeSpark   Mode = "spark"   // Emotionally intelligent companion
	ModePathway Mode = "pathway" // Spiritual mentor rooted in Christian faith
)

// Modes lists every supported mode, in picker order.
func Modes() []Mode {
	return []Mode{ModeSpark, ModePathway}
}

// ParseMode maps free-form input to a known mode, defaulting to spark.
func ParseMode(s string) Mode {
	switch Mode(s) {
	case ModePathway:
		return ModePathway
	default:
		return ModeSpark
	}
}

type Timestamp = time.Time
