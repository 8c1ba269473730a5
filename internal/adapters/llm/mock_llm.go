package llm

import (
	"context"
	"fmt"

	"github.com/BillyGuo1996/The-Connector/internal/domain"
)

// MockClient is a canned domain.GenerationClient for local mode and tests.
type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) GenerateReply(ctx context.Context, userText string, convCtx domain.ConversationContext) (string, error) {
	return fmt.Sprintf("I hear you. You said %q. Tell me a little more about how that makes you feel.", userText), nil
}
