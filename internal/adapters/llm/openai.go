package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/BillyGuo1996/The-Connector/internal/domain"
)

// Request shape pinned to what the service accepts well for short chat
// exchanges; not configurable on purpose.
const (
	temperature = 0.7
	maxTokens   = 600
)

// OpenAIClient implements domain.GenerationClient against the OpenAI
// chat-completions endpoint.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient creates a client. baseURL is optional and mainly
// useful to point at a compatible proxy or a test server.
func NewOpenAIClient(apiKey, baseURL, model string) *OpenAIClient {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(opts...)
	return &OpenAIClient{client: &client, model: model}
}

// GenerateReply implements domain.GenerationClient.
//
// The wire messages are: one system entry carrying the mode persona,
// the last entries of the history window with roles mapped to the
// service's vocabulary (ai -> assistant), and the current user text
// last. A 401 maps to ErrUnauthorized; anything else that goes wrong,
// including an empty payload, maps to ErrGenerationFailed.
func (c *OpenAIClient) GenerateReply(
	ctx context.Context,
	userText string,
	convCtx domain.ConversationContext,
) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(BuildSystemPrompt(convCtx.Mode)),
	}

	for _, m := range windowHistory(convCtx.History) {
		switch m.Role {
		case domain.RoleAI:
			messages = append(messages, openai.AssistantMessage(m.Text))
		default:
			messages = append(messages, openai.UserMessage(m.Text))
		}
	}

	messages = append(messages, openai.UserMessage(userText))

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    messages,
		Temperature: openai.Float(temperature),
		MaxTokens:   openai.Int(maxTokens),
	})
	if err != nil {
		var apierr *openai.Error
		if errors.As(err, &apierr) && apierr.StatusCode == http.StatusUnauthorized {
			return "", fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
		}
		return "", fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no content choices returned", domain.ErrGenerationFailed)
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("%w: empty reply", domain.ErrGenerationFailed)
	}

	return text, nil
}
