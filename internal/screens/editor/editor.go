// Package editor edits a shared document as Markdown, with autosave, password
// sharing and an AI chat side panel.
package editor

import (
	"context"
	"time"

	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"

	"github.com/studydeck/studydeck/internal/chat"
	"github.com/studydeck/studydeck/internal/docs"
	"github.com/studydeck/studydeck/internal/router"
	"github.com/studydeck/studydeck/internal/screen"
	"github.com/studydeck/studydeck/internal/ui/components"
	"github.com/studydeck/studydeck/internal/ui/layout"
)

// autosaveMsg fires when the debounce timer of generation Gen expires.
type autosaveMsg struct {
	Gen int
}

type savedMsg struct {
	Err error
}

type focus int

const (
	focusEditor focus = iota
	focusChat
)

// Options configures an EditorScreen.
type Options struct {
	AutosaveDelay time.Duration
	ShareBaseURL  string
	// IsNew saves the document to the store as soon as the editor opens.
	IsNew bool
	Now   func() time.Time
}

// EditorScreen implements screen.Screen for one unlocked document.
type EditorScreen struct {
	remote    docs.Remote
	library   *docs.Library
	assistant *chat.Assistant
	opts      Options

	doc      docs.Document
	area     textarea.Model
	autosave *docs.Autosave
	saving   bool

	focus    focus
	chatOpen bool
	panel    chatPanel

	share     *components.TextInput
	shareText string

	status string
}

var _ screen.Screen = (*EditorScreen)(nil)
var _ screen.KeyHintProvider = (*EditorScreen)(nil)
var _ screen.StatusProvider = (*EditorScreen)(nil)
var _ screen.InputCapturer = (*EditorScreen)(nil)

// New creates an editor for doc. A nil assistant disables the chat panel.
func New(remote docs.Remote, library *docs.Library, assistant *chat.Assistant, doc docs.Document, opts Options) *EditorScreen {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	area := textarea.New()
	area.Placeholder = "Start writing. Markdown is supported."
	area.ShowLineNumbers = false
	area.CharLimit = 0
	area.SetValue(docs.PlainText(doc.Content))
	area.Focus()

	return &EditorScreen{
		remote:    remote,
		library:   library,
		assistant: assistant,
		opts:      opts,
		doc:       doc,
		area:      area,
		autosave:  docs.NewAutosave(opts.AutosaveDelay),
		panel:     newChatPanel(),
	}
}

func (s *EditorScreen) Init() tea.Cmd {
	cmds := []tea.Cmd{s.loadChat()}
	if s.opts.IsNew {
		s.autosave.Touch()
		cmds = append(cmds, s.save())
	}
	return tea.Batch(cmds...)
}

func (s *EditorScreen) Title() string { return s.doc.Title }

// Status shows whether edits are saved.
func (s *EditorScreen) Status() string {
	switch {
	case s.saving:
		return "Saving..."
	case s.autosave.Dirty():
		return "Unsaved changes"
	case !s.autosave.LastSaved().IsZero():
		return "Saved " + s.autosave.LastSaved().Format("15:04:05")
	default:
		return s.doc.DocID
	}
}

// CapturingInput is always true: every key belongs to the editor or the
// chat input, and Esc saves before leaving.
func (s *EditorScreen) CapturingInput() bool { return true }

func (s *EditorScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.share != nil:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Share"},
			{Key: "Esc", Description: "Cancel"},
		}
	case s.focus == focusChat && s.panel.pending != nil:
		return []layout.KeyHint{
			{Key: "Y", Description: "Apply edit"},
			{Key: "N", Description: "Discard"},
		}
	case s.focus == focusChat:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Send"},
			{Key: "Tab", Description: "Ask/Agent"},
			{Key: "Ctrl+L", Description: "Clear chat"},
			{Key: "Ctrl+K", Description: "Editor"},
			{Key: "Esc", Description: "Close chat"},
		}
	default:
		return []layout.KeyHint{
			{Key: "Ctrl+S", Description: "Save"},
			{Key: "Ctrl+E", Description: "Share"},
			{Key: "Ctrl+K", Description: "AI chat"},
			{Key: "Esc", Description: "Save & close"},
		}
	}
}

func (s *EditorScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case autosaveMsg:
		if s.autosave.Due(msg.Gen) {
			return s, s.save()
		}
		return s, nil

	case savedMsg:
		s.saving = false
		if msg.Err != nil {
			s.autosave.Failed()
			s.status = "Saved on this device only: " + msg.Err.Error()
		}
		return s, nil

	case chatLoadedMsg, chatReplyMsg:
		return s, s.updateChat(msg)

	case tea.KeyPressMsg:
		if s.share != nil {
			return s.handleShareKey(msg)
		}
		if s.focus == focusChat {
			return s, s.handleChatKey(msg)
		}
		return s.handleEditorKey(msg)
	}
	return s, nil
}

func (s *EditorScreen) handleEditorKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if s.autosave.Dirty() {
			return s, tea.Sequence(s.save(), router.Pop)
		}
		return s, router.Pop
	case "ctrl+s":
		return s, s.save()
	case "ctrl+e":
		in := components.NewPasswordInput("Share password (empty for none)")
		s.share = &in
		s.shareText = ""
		return s, nil
	case "ctrl+k":
		return s, s.focusChat()
	}

	before := s.area.Value()
	var cmd tea.Cmd
	s.area, cmd = s.area.Update(msg)
	if s.area.Value() != before {
		s.status = ""
		return s, tea.Batch(cmd, s.touch())
	}
	return s, cmd
}

func (s *EditorScreen) handleShareKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.share = nil
		return s, nil
	case "enter":
		link := docs.ShareLink(s.opts.ShareBaseURL, s.doc.DocID)
		doc, text, err := docs.Share(s.doc, s.share.Model.Value(), link)
		s.share = nil
		if err != nil {
			s.status = "Could not share: " + err.Error()
			return s, nil
		}
		s.doc = doc
		s.shareText = text
		if doc.Protected() {
			s.status = "Share link ready, password required to open"
		} else {
			s.status = "Share link ready"
		}
		s.autosave.Touch()
		return s, s.save()
	}
	in, cmd := s.share.Update(msg)
	s.share = &in
	return s, cmd
}

// touch starts a new debounce generation.
func (s *EditorScreen) touch() tea.Cmd {
	gen := s.autosave.Touch()
	return tea.Tick(s.autosave.Delay, func(time.Time) tea.Msg {
		return autosaveMsg{Gen: gen}
	})
}

// currentDoc is the document with the editor text rendered to HTML.
func (s *EditorScreen) currentDoc() (docs.Document, error) {
	doc := s.doc
	html, err := docs.MarkdownToHTML(s.area.Value())
	if err != nil {
		return doc, err
	}
	doc.Content = html
	return doc, nil
}

// save stores the document on this device right away and in the shared
// store in the background.
func (s *EditorScreen) save() tea.Cmd {
	doc, err := s.currentDoc()
	if err != nil {
		s.status = err.Error()
		return nil
	}
	s.doc = doc
	s.autosave.Flush(s.opts.Now())
	if err := s.library.Put(context.Background(), doc); err != nil {
		s.autosave.Failed()
		s.status = "Could not save: " + err.Error()
		return nil
	}
	s.saving = true
	return func() tea.Msg {
		return savedMsg{Err: s.remote.Save(context.Background(), doc)}
	}
}

func (s *EditorScreen) focusChat() tea.Cmd {
	if s.assistant == nil {
		s.status = "AI chat is not configured"
		return nil
	}
	s.chatOpen = true
	s.focus = focusChat
	s.area.Blur()
	return s.panel.input.Model.Focus()
}

func (s *EditorScreen) focusEditor(closeChat bool) tea.Cmd {
	if closeChat {
		s.chatOpen = false
	}
	s.focus = focusEditor
	s.panel.input.Model.Blur()
	return s.area.Focus()
}
