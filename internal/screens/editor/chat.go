package editor

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/studydeck/studydeck/internal/chat"
	"github.com/studydeck/studydeck/internal/ui/components"
)

type chatLoadedMsg struct {
	Messages []chat.Message
	Err      error
}

type chatReplyMsg struct {
	Reply chat.Reply
	Err   error
}

// chatPanel is the side panel state.
type chatPanel struct {
	messages []chat.Message
	input    components.TextInput
	mode     chat.Mode
	waiting  bool
	pending  *chat.Suggestion
}

func newChatPanel() chatPanel {
	in := components.NewTextInput("", "Ask about this document", false, 2000)
	in.Model.Blur()
	return chatPanel{input: in, mode: chat.ModeAsk}
}

func (s *EditorScreen) loadChat() tea.Cmd {
	if s.assistant == nil {
		return nil
	}
	id := s.doc.DocID
	return func() tea.Msg {
		msgs, err := s.assistant.History(context.Background(), id)
		return chatLoadedMsg{Messages: msgs, Err: err}
	}
}

func (s *EditorScreen) updateChat(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case chatLoadedMsg:
		if msg.Err != nil {
			s.status = "Could not load chat: " + msg.Err.Error()
			return nil
		}
		s.panel.messages = msg.Messages
	case chatReplyMsg:
		s.panel.waiting = false
		if msg.Err != nil && msg.Reply.User.ID == "" {
			s.status = msg.Err.Error()
			return nil
		}
		if msg.Err != nil {
			s.status = "Chat not saved: " + msg.Err.Error()
		}
		s.panel.messages = append(s.panel.messages, msg.Reply.User, msg.Reply.Assistant)
		s.panel.pending = msg.Reply.Suggestion
	}
	return nil
}

func (s *EditorScreen) handleChatKey(msg tea.KeyPressMsg) tea.Cmd {
	key := msg.String()
	if s.panel.pending != nil {
		switch key {
		case "y", "Y":
			return s.acceptSuggestion()
		case "n", "N":
			return s.rejectSuggestion()
		case "esc":
			return s.focusEditor(true)
		}
		return nil
	}

	switch key {
	case "esc":
		return s.focusEditor(true)
	case "ctrl+k":
		return s.focusEditor(false)
	case "tab":
		if s.panel.mode == chat.ModeAsk {
			s.panel.mode = chat.ModeAgent
		} else {
			s.panel.mode = chat.ModeAsk
		}
		return nil
	case "ctrl+l":
		if err := s.assistant.Clear(context.Background(), s.doc.DocID); err != nil {
			s.status = "Could not clear chat: " + err.Error()
			return nil
		}
		s.panel.messages = nil
		s.status = "Chat cleared"
		return nil
	case "enter":
		return s.send()
	}

	var cmd tea.Cmd
	s.panel.input, cmd = s.panel.input.Update(msg)
	return cmd
}

func (s *EditorScreen) send() tea.Cmd {
	if s.panel.waiting {
		return nil
	}
	text := s.panel.input.Value()
	if text == "" {
		s.status = chat.ErrEmptyMessage.Error()
		return nil
	}
	doc, err := s.currentDoc()
	if err != nil {
		s.status = err.Error()
		return nil
	}
	s.panel.input.Reset()
	s.panel.waiting = true
	s.status = ""
	mode := s.panel.mode
	return func() tea.Msg {
		reply, err := s.assistant.Send(context.Background(), doc, text, mode)
		return chatReplyMsg{Reply: reply, Err: err}
	}
}

// acceptSuggestion replaces the editor text with the suggested Markdown.
func (s *EditorScreen) acceptSuggestion() tea.Cmd {
	sug := *s.panel.pending
	s.panel.pending = nil
	if _, err := s.assistant.Accept(context.Background(), s.doc.DocID, sug); err != nil {
		s.status = "Could not apply edit: " + err.Error()
		return nil
	}
	s.panel.messages = append(s.panel.messages, chat.Message{Role: chat.RoleAssistant, Content: chat.AcceptedReply})
	s.area.SetValue(sug.Content)
	s.status = "Edit applied"
	return s.touch()
}

func (s *EditorScreen) rejectSuggestion() tea.Cmd {
	s.panel.pending = nil
	if err := s.assistant.Reject(context.Background(), s.doc.DocID); err != nil {
		s.status = "Could not record choice: " + err.Error()
		return nil
	}
	s.panel.messages = append(s.panel.messages, chat.Message{Role: chat.RoleAssistant, Content: chat.RejectedReply})
	return nil
}
