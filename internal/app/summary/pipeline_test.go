package summary_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BillyGuo1996/The-Connector/internal/adapters/storage/memory"
	"github.com/BillyGuo1996/The-Connector/internal/app/summary"
	"github.com/BillyGuo1996/The-Connector/internal/domain"
)

type stubLLM struct {
	reply   string
	err     error
	lastCtx domain.ConversationContext
}

func (s *stubLLM) GenerateReply(ctx context.Context, userText string, convCtx domain.ConversationContext) (string, error) {
	s.lastCtx = convCtx
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func TestParseReply(t *testing.T) {
	tests := []struct {
		name        string
		reply       string
		wantSummary string
		wantTags    []string
	}{
		{
			name:        "labeled two lines",
			reply:       "Summary: The user is worried about work.\nTags: stress, work, sleep",
			wantSummary: "The user is worried about work.",
			wantTags:    []string{"stress", "work", "sleep"},
		},
		{
			name:        "unlabeled two lines",
			reply:       "A short catch-up about the week.\nfamily, gratitude, rest",
			wantSummary: "A short catch-up about the week.",
			wantTags:    []string{"family", "gratitude", "rest"},
		},
		{
			name:        "tags with uneven spacing",
			reply:       "Summary: Planning a move.\nTags:  moving ,finances,  new city ",
			wantSummary: "Planning a move.",
			wantTags:    []string{"moving", "finances", "new city"},
		},
		{
			name:        "single line, no tag line",
			reply:       "Summary: Just a greeting so far.",
			wantSummary: "Just a greeting so far.",
			wantTags:    nil,
		},
		{
			name:        "blank tag line",
			reply:       "A greeting.\n",
			wantSummary: "A greeting.",
			wantTags:    nil,
		},
		{
			name:        "extra lines beyond the tag line are ignored",
			reply:       "Summary: Two topics.\nTags: a, b, c\nAnything else the model added",
			wantSummary: "Two topics.",
			wantTags:    []string{"a", "b", "c"},
		},
		{
			name:        "empty reply",
			reply:       "",
			wantSummary: "",
			wantTags:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotSummary, gotTags := summary.ParseReply(tt.reply)
			assert.Equal(t, tt.wantSummary, gotSummary)
			assert.Equal(t, tt.wantTags, gotTags)
		})
	}
}

func TestSummarizeWritesConversationRecord(t *testing.T) {
	convStore := memory.NewConversationStore()
	conv := &domain.Conversation{
		ID:          "conv-1",
		UserID:      "user-1",
		Mode:        domain.ModeSpark,
		StartedAt:   time.Now(),
		LastUpdated: time.Now(),
	}
	require.NoError(t, convStore.CreateConversation(conv))

	llm := &stubLLM{reply: "Summary: Settling into a new job.\nTags: work, change, confidence"}
	p := summary.NewPipeline(llm, convStore)

	history := []*domain.Message{
		{ID: "m1", ConversationID: conv.ID, Role: domain.RoleUser, Text: "New job nerves"},
		{ID: "m2", ConversationID: conv.ID, Role: domain.RoleAI, Text: "Tell me more"},
	}

	err := p.Summarize(context.Background(), conv.ID, domain.ModeSpark, history)
	require.NoError(t, err)

	// The pipeline sees the entire log, not a windowed slice.
	assert.Len(t, llm.lastCtx.History, len(history))
	assert.Equal(t, domain.ModeSpark, llm.lastCtx.Mode)

	updated, err := convStore.LatestConversation("user-1", domain.ModeSpark)
	require.NoError(t, err)
	assert.Equal(t, "Settling into a new job.", updated.Summary)
	assert.Equal(t, []string{"work", "change", "confidence"}, updated.Tags)
	assert.True(t, updated.LastUpdated.After(conv.LastUpdated) || updated.LastUpdated.Equal(conv.LastUpdated))
}

func TestSummarizeReportsGenerationFailure(t *testing.T) {
	convStore := memory.NewConversationStore()
	llm := &stubLLM{err: domain.ErrGenerationFailed}
	p := summary.NewPipeline(llm, convStore)

	err := p.Summarize(context.Background(), "conv-1", domain.ModeSpark, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrGenerationFailed))
}

func TestSummarizeReportsWriteFailure(t *testing.T) {
	// No conversation row exists, so the write fails.
	convStore := memory.NewConversationStore()
	llm := &stubLLM{reply: "A summary.\none, two, three"}
	p := summary.NewPipeline(llm, convStore)

	err := p.Summarize(context.Background(), "missing", domain.ModeSpark, nil)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "summary write"))
}
