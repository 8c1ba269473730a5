package httpadapter_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/BillyGuo1996/The-Connector/internal/adapters/http"
	"github.com/BillyGuo1996/The-Connector/internal/adapters/llm"
	"github.com/BillyGuo1996/The-Connector/internal/adapters/storage/memory"
	"github.com/BillyGuo1996/The-Connector/internal/app/chat"
	"github.com/BillyGuo1996/The-Connector/internal/app/session"
	"github.com/BillyGuo1996/The-Connector/internal/app/summary"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	llmClient := llm.NewMockClient()
	convStore := memory.NewConversationStore()
	msgStore := memory.NewMessageStore()
	resolver := session.NewResolver(convStore)
	pipeline := summary.NewPipeline(llmClient, convStore)
	svc := chat.NewService(llmClient, msgStore, resolver, pipeline)

	return httpadapter.NewServer(svc)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type conversationBody struct {
	ConversationID string `json:"conversation_id"`
	Mode           string `json:"mode"`
	Messages       []struct {
		Role string `json:"role"`
		Text string `json:"text"`
	} `json:"messages"`
}

func TestModesEndpoint(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodGet, "/modes", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"spark", "pathway"}, body["modes"])
}

func TestSendMessageRoundTrip(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/conversations/messages", map[string]string{
		"user_id": "user-1",
		"mode":    "spark",
		"text":    "Hello",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var body conversationBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.ConversationID)
	require.Len(t, body.Messages, 2)
	assert.Equal(t, "user", body.Messages[0].Role)
	assert.Equal(t, "Hello", body.Messages[0].Text)
	assert.Equal(t, "ai", body.Messages[1].Role)
	assert.NotEmpty(t, body.Messages[1].Text)

	// A second exchange lands in the same conversation, on top of the
	// persisted log.
	rec = doJSON(t, h, http.MethodPost, "/conversations/messages", map[string]string{
		"user_id": "user-1",
		"mode":    "spark",
		"text":    "Still there?",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var second conversationBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	assert.Equal(t, body.ConversationID, second.ConversationID)
	assert.Len(t, second.Messages, 4)
}

func TestSendMessageValidation(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/conversations/messages", map[string]string{
		"mode": "spark", "text": "Hello",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/conversations/messages", map[string]string{
		"user_id": "user-1", "mode": "spark", "text": "   ",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/conversations/messages", map[string]string{
		"user_id": "user-1", "mode": "spark", "text": strings.Repeat("x", 1001),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetConversationResolvesActive(t *testing.T) {
	h := newTestServer(t)

	first := doJSON(t, h, http.MethodGet, "/conversations?user_id=user-1&mode=pathway", nil)
	require.Equal(t, http.StatusOK, first.Code)

	var a conversationBody
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &a))
	assert.Equal(t, "pathway", a.Mode)
	assert.Empty(t, a.Messages)

	second := doJSON(t, h, http.MethodGet, "/conversations?user_id=user-1&mode=pathway", nil)
	var b conversationBody
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &b))
	assert.Equal(t, a.ConversationID, b.ConversationID)

	missing := doJSON(t, h, http.MethodGet, "/conversations?mode=pathway", nil)
	assert.Equal(t, http.StatusBadRequest, missing.Code)
}

func TestResetStartsNewConversation(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/conversations/messages", map[string]string{
		"user_id": "user-1", "mode": "spark", "text": "Hello",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var before conversationBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &before))

	reset := doJSON(t, h, http.MethodPost, "/conversations/reset", map[string]string{
		"user_id": "user-1", "mode": "spark",
	})
	require.Equal(t, http.StatusOK, reset.Code)

	var resetBody struct {
		ConversationID string `json:"conversation_id"`
	}
	require.NoError(t, json.Unmarshal(reset.Body.Bytes(), &resetBody))
	assert.NotEqual(t, before.ConversationID, resetBody.ConversationID)

	after := doJSON(t, h, http.MethodGet, "/conversations?user_id=user-1&mode=spark", nil)
	var afterBody conversationBody
	require.NoError(t, json.Unmarshal(after.Body.Bytes(), &afterBody))
	assert.Equal(t, resetBody.ConversationID, afterBody.ConversationID)
	assert.Empty(t, afterBody.Messages)
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodDelete, "/conversations/messages", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/conversations/messages", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
