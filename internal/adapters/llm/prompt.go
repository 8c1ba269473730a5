package llm

import (
	"github.com/BillyGuo1996/The-Connector/internal/domain"
)

// contextWindow is the number of prior log entries sent per call. It is
// a fixed-size sliding window, independent of token count, chosen for
// bounded cost and latency over exactness.
const contextWindow = 6

const sparkPersona = `You are The Connector — an emotionally intelligent and compassionate AI companion. Provide helpful, gentle responses, and foster positive, thoughtful conversation.`

const pathwayPersona = `You are The Connector — a spiritual mentor rooted in Christian faith. Offer encouragement, scriptures, and godly wisdom. Pray with the user when needed.`

type modeProfile struct {
	Persona string
	Tone    string
}

var modeProfiles = map[domain.Mode]modeProfile{
	domain.ModeSpark:   {Persona: sparkPersona, Tone: "casual and warm"},
	domain.ModePathway: {Persona: pathwayPersona, Tone: "faithful and encouraging"},
}

// BuildSystemPrompt returns the system entry for a mode: its persona
// plus the desired tone. Unknown modes fall back to spark.
func BuildSystemPrompt(mode domain.Mode) string {
	p, ok := modeProfiles[mode]
	if !ok {
		p = modeProfiles[domain.ModeSpark]
	}
	return p.Persona + " Respond in a " + p.Tone + " tone."
}

// windowHistory truncates history to the last contextWindow entries.
// The system entry is never counted against the window.
func windowHistory(history []*domain.Message) []*domain.Message {
	if len(history) > contextWindow {
		return history[len(history)-contextWindow:]
	}
	return history
}
