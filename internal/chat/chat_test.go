package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studydeck/studydeck/internal/docs"
	"github.com/studydeck/studydeck/internal/llm"
	"github.com/studydeck/studydeck/internal/store"
)

func textResponse(s string) llm.MockResponse {
	return llm.MockResponse{Text: s}
}

func newAssistant(t *testing.T, responses ...llm.MockResponse) (*Assistant, *llm.MockProvider, store.KV) {
	t.Helper()
	mock := llm.NewMockProvider(responses...)
	kv := store.NewMemKV()
	clock := time.UnixMilli(1_700_000_000_000)
	return New(mock, kv, WithClock(func() time.Time { return clock })), mock, kv
}

var testDoc = docs.Document{DocID: "abcd1234", Title: "Networking", Content: "<p>TCP is reliable.</p>"}

func TestSendAsk(t *testing.T) {
	a, mock, _ := newAssistant(t, textResponse("TCP guarantees delivery."))
	ctx := context.Background()

	reply, err := a.Send(ctx, testDoc, "  What is TCP?  ", ModeAsk)
	require.NoError(t, err)
	assert.Equal(t, "What is TCP?", reply.User.Content)
	assert.Equal(t, RoleAssistant, reply.Assistant.Role)
	assert.Equal(t, "TCP guarantees delivery.", reply.Assistant.Content)
	assert.Nil(t, reply.Suggestion)
	assert.Equal(t, int64(1_700_000_000_000), reply.User.Timestamp)

	require.Len(t, mock.Calls, 1)
	prompt := mock.Calls[0].Messages[0].Content
	assert.Contains(t, prompt, "Title: Networking")
	assert.Contains(t, prompt, "ID: abcd1234")
	assert.Contains(t, prompt, "Content: TCP is reliable.")
	assert.Contains(t, prompt, "New question: What is TCP?")
	assert.Contains(t, prompt, "Mode: ASK")

	history, err := a.History(ctx, testDoc.DocID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, RoleUser, history[0].Role)
	assert.Equal(t, RoleAssistant, history[1].Role)
}

func TestSendAgentSuggestion(t *testing.T) {
	a, _, _ := newAssistant(t, textResponse(
		"Here you go.\n[AGENT_SUGGESTION]\n# Networking\n\nTCP is **reliable**.\n[/AGENT_SUGGESTION]\nI added a heading."))
	ctx := context.Background()

	reply, err := a.Send(ctx, testDoc, "add a heading", ModeAgent)
	require.NoError(t, err)
	require.NotNil(t, reply.Suggestion)
	assert.Equal(t, "# Networking\n\nTCP is **reliable**.", reply.Suggestion.Content)
	assert.Equal(t, testDoc.Content, reply.Suggestion.Original)
	assert.Equal(t, reply.Assistant.ID, reply.Suggestion.MessageID)
	assert.NotContains(t, reply.Assistant.Content, "AGENT_SUGGESTION")
	assert.True(t, reply.Assistant.IsAgentSuggestion)

	html, err := a.Accept(ctx, testDoc.DocID, *reply.Suggestion)
	require.NoError(t, err)
	assert.Contains(t, html, "<h1>Networking</h1>")
	assert.Contains(t, html, "<strong>reliable</strong>")

	history, err := a.History(ctx, testDoc.DocID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, AcceptedReply, history[2].Content)
}

func TestSendSuggestionOnlyReply(t *testing.T) {
	a, _, _ := newAssistant(t, textResponse("[AGENT_SUGGESTION]\n# Notes\n[/AGENT_SUGGESTION]"))

	reply, err := a.Send(context.Background(), testDoc, "rewrite it", ModeAgent)
	require.NoError(t, err)
	require.NotNil(t, reply.Suggestion)
	assert.Equal(t, "# Notes", reply.Suggestion.Content)
	assert.Equal(t, SuggestedReply, reply.Assistant.Content)
}

func TestSendAskIgnoresSuggestion(t *testing.T) {
	a, _, _ := newAssistant(t, textResponse("[AGENT_SUGGESTION]new[/AGENT_SUGGESTION]"))

	reply, err := a.Send(context.Background(), testDoc, "hi", ModeAsk)
	require.NoError(t, err)
	assert.Nil(t, reply.Suggestion)
	assert.Equal(t, FallbackReply, reply.Assistant.Content)
}

func TestSendProviderFailure(t *testing.T) {
	a, _, _ := newAssistant(t, llm.MockResponse{Err: errors.New("boom")})

	reply, err := a.Send(context.Background(), testDoc, "hello", ModeAsk)
	require.NoError(t, err)
	assert.Equal(t, ErrorReply, reply.Assistant.Content)
}

func TestSendEmptyReply(t *testing.T) {
	a, _, _ := newAssistant(t, textResponse("   "))

	reply, err := a.Send(context.Background(), testDoc, "hello", ModeAsk)
	require.NoError(t, err)
	assert.Equal(t, FallbackReply, reply.Assistant.Content)
}

func TestSendEmptyMessage(t *testing.T) {
	a, mock, _ := newAssistant(t)
	_, err := a.Send(context.Background(), testDoc, "   ", ModeAsk)
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Equal(t, 0, mock.CallCount())
}

func TestRejectAndClear(t *testing.T) {
	a, _, kv := newAssistant(t)
	ctx := context.Background()

	require.NoError(t, a.Reject(ctx, "doc"))
	history, err := a.History(ctx, "doc")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, RejectedReply, history[0].Content)

	require.NoError(t, a.Clear(ctx, "doc"))
	_, found, err := kv.Get(ctx, HistoryKey("doc"))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestHistoryCorrupt(t *testing.T) {
	a, _, kv := newAssistant(t)
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, HistoryKey("doc"), []byte("{not json")))

	history, err := a.History(ctx, "doc")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestBuildPromptWindowAndTruncation(t *testing.T) {
	var history []Message
	for i := 0; i < 8; i++ {
		history = append(history, Message{Role: RoleUser, Content: "msg" + string(rune('0'+i))})
	}
	long := strings.Repeat("x", 2500)

	prompt := BuildPrompt(testDoc, long, history, "q", ModeAgent)
	assert.NotContains(t, prompt, "msg2")
	assert.Contains(t, prompt, "User: msg3")
	assert.Contains(t, prompt, "User: msg7")
	assert.Contains(t, prompt, strings.Repeat("x", 2000)+"...")
	assert.NotContains(t, prompt, strings.Repeat("x", 2001))
	assert.Contains(t, prompt, "[AGENT_SUGGESTION]")

	short := BuildPrompt(testDoc, "short", nil, "q", ModeAsk)
	assert.Contains(t, short, "Content: short\n")
}

func TestParseSuggestion(t *testing.T) {
	tests := []struct {
		name       string
		in         string
		visible    string
		suggestion string
		ok         bool
	}{
		{"none", "plain reply", "plain reply", "", false},
		{"unterminated", "a [AGENT_SUGGESTION] b", "a [AGENT_SUGGESTION] b", "", false},
		{"block", "before [AGENT_SUGGESTION] new [/AGENT_SUGGESTION] after", "before  after", "new", true},
		{"only block", "[AGENT_SUGGESTION]x[/AGENT_SUGGESTION]", "", "x", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			visible, suggestion, ok := ParseSuggestion(tt.in)
			assert.Equal(t, tt.visible, visible)
			assert.Equal(t, tt.suggestion, suggestion)
			assert.Equal(t, tt.ok, ok)
		})
	}
}
