// Package chat implements the per-document AI assistant: it builds a
// prompt from the document and recent conversation, asks the LLM, and
// keeps the conversation in the key/value store.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/studydeck/studydeck/internal/docs"
	"github.com/studydeck/studydeck/internal/llm"
	"github.com/studydeck/studydeck/internal/store"
)

// HistoryPrefix prefixes the store key of a document's conversation.
const HistoryPrefix = "chat_history_"

const (
	contextChars   = 2000
	historyWindow  = 5
	replyMaxTokens = 2048
)

// Fixed assistant replies.
const (
	FallbackReply  = "Sorry, I can't answer that question right now."
	SuggestedReply = "Here is a suggested change to the document."
	ErrorReply     = "Something went wrong while processing your question. Please try again."
	AcceptedReply  = "Applied the suggested changes to the document."
	RejectedReply  = "Discarded the suggested changes. The document is unchanged."
)

var ErrEmptyMessage = errors.New("message is empty")

// Mode selects whether the assistant may propose document edits.
type Mode string

const (
	ModeAsk   Mode = "ask"
	ModeAgent Mode = "agent"
)

// Role is the sender of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one stored chat message. Timestamp is in milliseconds.
type Message struct {
	ID                string `json:"id"`
	Role              Role   `json:"role"`
	Content           string `json:"content"`
	Timestamp         int64  `json:"timestamp"`
	IsAgentSuggestion bool   `json:"isAgentSuggestion,omitempty"`
	SuggestedContent  string `json:"suggestedContent,omitempty"`
	OriginalContent   string `json:"originalContent,omitempty"`
}

// Suggestion is a pending agent edit awaiting accept or reject.
type Suggestion struct {
	MessageID string
	Content   string
	Original  string
}

// Reply is the outcome of Send.
type Reply struct {
	User       Message
	Assistant  Message
	Suggestion *Suggestion
}

// Assistant talks to the LLM on behalf of one user.
type Assistant struct {
	provider llm.Provider
	kv       store.KV
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures an Assistant.
type Option func(*Assistant)

// WithClock overrides the time source used for message timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *Assistant) { a.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Assistant) { a.logger = l }
}

// New creates an Assistant.
func New(provider llm.Provider, kv store.KV, opts ...Option) *Assistant {
	a := &Assistant{
		provider: provider,
		kv:       kv,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// HistoryKey returns the store key of a document's conversation.
func HistoryKey(docID string) string {
	return HistoryPrefix + docID
}

// History returns the stored conversation of a document, oldest first.
// A corrupt value reads as an empty conversation.
func (a *Assistant) History(ctx context.Context, docID string) ([]Message, error) {
	msgs, found, err := store.GetJSON[[]Message](ctx, a.kv, HistoryKey(docID))
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		a.logger.Warn("ignoring unreadable chat history", "doc_id", docID, "error", err)
		return []Message{}, nil
	}
	if !found || msgs == nil {
		return []Message{}, nil
	}
	return msgs, nil
}

// Clear deletes a document's conversation.
func (a *Assistant) Clear(ctx context.Context, docID string) error {
	if err := a.kv.Delete(ctx, HistoryKey(docID)); err != nil {
		return fmt.Errorf("clear chat history: %w", err)
	}
	return nil
}

// Send asks the assistant about doc. LLM failures never surface as errors:
// they become an apologetic assistant message. The returned error only
// reports an empty message or a storage failure.
func (a *Assistant) Send(ctx context.Context, doc docs.Document, text string, mode Mode) (Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Reply{}, ErrEmptyMessage
	}

	history, err := a.History(ctx, doc.DocID)
	if err != nil {
		return Reply{}, err
	}

	user := a.message(RoleUser, text)
	content := docs.PlainText(doc.Content)
	prompt := BuildPrompt(doc, content, history, text, mode)

	reply := Reply{User: user}
	assistant := a.ask(ctx, prompt, mode)
	switch {
	case assistant.Content != "":
	case assistant.IsAgentSuggestion:
		assistant.Content = SuggestedReply
	default:
		assistant.Content = FallbackReply
	}
	if assistant.IsAgentSuggestion {
		assistant.OriginalContent = doc.Content
		reply.Suggestion = &Suggestion{
			MessageID: assistant.ID,
			Content:   assistant.SuggestedContent,
			Original:  doc.Content,
		}
	}
	reply.Assistant = assistant

	if err := a.appendMessages(ctx, doc.DocID, user, assistant); err != nil {
		return reply, err
	}
	return reply, nil
}

func (a *Assistant) ask(ctx context.Context, prompt string, mode Mode) Message {
	ctx = llm.WithPurpose(ctx, "chat-"+string(mode))
	resp, err := a.provider.Generate(ctx, llm.Request{
		System:      systemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		MaxTokens:   replyMaxTokens,
		Temperature: 0.7,
	})
	if err != nil {
		a.logger.Warn("chat request failed", "mode", mode, "error", err)
		return a.message(RoleAssistant, ErrorReply)
	}

	msg := a.message(RoleAssistant, "")
	visible, suggestion, ok := ParseSuggestion(resp.Text)
	msg.Content = strings.TrimSpace(visible)
	if ok && mode == ModeAgent && suggestion != "" {
		msg.IsAgentSuggestion = true
		msg.SuggestedContent = suggestion
	}
	return msg
}

// Accept records that the suggestion was applied and returns the new
// document HTML.
func (a *Assistant) Accept(ctx context.Context, docID string, s Suggestion) (string, error) {
	html, err := SuggestionHTML(s.Content)
	if err != nil {
		return "", err
	}
	if err := a.appendMessages(ctx, docID, a.message(RoleAssistant, AcceptedReply)); err != nil {
		return "", err
	}
	return html, nil
}

// Reject records that the suggestion was discarded.
func (a *Assistant) Reject(ctx context.Context, docID string) error {
	return a.appendMessages(ctx, docID, a.message(RoleAssistant, RejectedReply))
}

func (a *Assistant) appendMessages(ctx context.Context, docID string, msgs ...Message) error {
	err := store.UpdateJSON(ctx, a.kv, HistoryKey(docID), func(history *[]Message) error {
		*history = append(*history, msgs...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save chat history: %w", err)
	}
	return nil
}

func (a *Assistant) message(role Role, content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: a.now().UnixMilli(),
	}
}
