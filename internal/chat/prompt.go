package chat

import (
	"fmt"
	"strings"

	"github.com/studydeck/studydeck/internal/docs"
)

const (
	suggestionOpen  = "[AGENT_SUGGESTION]"
	suggestionClose = "[/AGENT_SUGGESTION]"
)

const systemPrompt = `You are a study assistant embedded in a document editor.
Answer questions about the user's document clearly and concisely.`

// BuildPrompt renders the user turn sent to the LLM. content is the plain
// text of the document; only its first 2000 characters are included.
func BuildPrompt(doc docs.Document, content string, history []Message, question string, mode Mode) string {
	var b strings.Builder

	b.WriteString("Current document:\n")
	fmt.Fprintf(&b, "Title: %s\n", doc.Title)
	fmt.Fprintf(&b, "ID: %s\n", doc.DocID)
	fmt.Fprintf(&b, "Content: %s\n\n", truncate(content, contextChars))

	b.WriteString("Conversation so far:\n")
	start := max(len(history)-historyWindow, 0)
	for _, m := range history[start:] {
		speaker := "AI"
		if m.Role == RoleUser {
			speaker = "User"
		}
		fmt.Fprintf(&b, "%s: %s\n", speaker, m.Content)
	}

	fmt.Fprintf(&b, "\nNew question: %s\n\n", question)

	if mode == ModeAgent {
		b.WriteString("Mode: AGENT. You may propose changes to the document content.\n")
		b.WriteString("If the user asks for an edit, reply in this format:\n")
		b.WriteString(suggestionOpen + "\nThe proposed new content, in Markdown\n" + suggestionClose + "\n")
		b.WriteString("Then explain the reason for the change.")
	} else {
		b.WriteString("Mode: ASK. Only answer the question, do not propose document changes.")
	}
	return b.String()
}

// truncate cuts s to n runes, appending "..." when anything was dropped.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// ParseSuggestion extracts the first [AGENT_SUGGESTION] block from reply.
// visible is the reply with that block removed and trimmed. ok is false
// when reply has no complete block, in which case visible is reply
// unchanged.
func ParseSuggestion(reply string) (visible, suggestion string, ok bool) {
	open := strings.Index(reply, suggestionOpen)
	if open < 0 {
		return reply, "", false
	}
	rest := reply[open+len(suggestionOpen):]
	end := strings.Index(rest, suggestionClose)
	if end < 0 {
		return reply, "", false
	}
	suggestion = strings.TrimSpace(rest[:end])
	visible = strings.TrimSpace(reply[:open] + rest[end+len(suggestionClose):])
	return visible, suggestion, true
}

// SuggestionHTML renders a Markdown suggestion as document HTML.
func SuggestionHTML(markdown string) (string, error) {
	return docs.MarkdownToHTML(markdown)
}
