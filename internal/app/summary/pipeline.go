package summary

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/BillyGuo1996/The-Connector/internal/domain"
)

// instructionPrompt is sent through the generation client after each
// successful exchange, with the whole updated log as history.
const instructionPrompt = "Summarize the user's conversation so far in 1-2 sentences.\n" +
	"Then list 3 tags that describe the key themes or concerns."

// Pipeline re-summarizes a conversation after each exchange. Summary
// and tags are advisory metadata: every failure here is reported to the
// caller for operator logging only, never to the user.
type Pipeline struct {
	llm           domain.GenerationClient
	conversations domain.ConversationStore
	now           func() time.Time
}

func NewPipeline(llm domain.GenerationClient, conversations domain.ConversationStore) *Pipeline {
	return &Pipeline{
		llm:           llm,
		conversations: conversations,
		now:           time.Now,
	}
}

// Summarize asks the generation client for a summary and tags over the
// full log and writes them onto the conversation record, bumping
// last_updated. Last write wins between concurrent runs for the same
// conversation.
func (p *Pipeline) Summarize(ctx context.Context, conversationID domain.ConversationID, mode domain.Mode, history []*domain.Message) error {
	reply, err := p.llm.GenerateReply(ctx, instructionPrompt, domain.ConversationContext{
		ConversationID: conversationID,
		Mode:           mode,
		History:        history,
	})
	if err != nil {
		return fmt.Errorf("summary generation: %w", err)
	}

	summaryText, tags := ParseReply(reply)

	if err := p.conversations.UpdateConversationSummary(conversationID, summaryText, tags, p.now()); err != nil {
		return fmt.Errorf("summary write: %w", err)
	}
	return nil
}

// ParseReply splits a summarization reply on its first newline: the
// first line is the summary (optional "Summary:" label stripped), the
// second a comma-separated tag list (optional "Tags:" label stripped,
// each tag trimmed). A reply with no tag line yields no tags; any shape
// degrades without error.
func ParseReply(reply string) (string, []string) {
	lines := strings.Split(strings.TrimSpace(reply), "\n")

	summaryText := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(lines[0]), "Summary:"))

	if len(lines) < 2 {
		return summaryText, nil
	}

	tagLine := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(lines[1]), "Tags:"))
	if tagLine == "" {
		return summaryText, nil
	}

	var tags []string
	for _, t := range strings.Split(tagLine, ",") {
		tags = append(tags, strings.TrimSpace(t))
	}
	return summaryText, tags
}
