// Package documents lists the locally remembered documents and opens them,
// asking for the share password when one is set.
package documents

import (
	"context"
	"errors"

	tea "charm.land/bubbletea/v2"

	"github.com/studydeck/studydeck/internal/docs"
	"github.com/studydeck/studydeck/internal/router"
	"github.com/studydeck/studydeck/internal/screen"
	"github.com/studydeck/studydeck/internal/ui/components"
	"github.com/studydeck/studydeck/internal/ui/layout"
)

// Open builds the editor for an unlocked document. isNew is set for a
// document that was just created.
type Open func(doc docs.Document, isNew bool) screen.Screen

type listLoadedMsg struct {
	Docs []docs.Document
	Err  error
}

type fetchedMsg struct {
	ID    string
	Doc   docs.Document
	Local bool
	Err   error
}

type prompt int

const (
	promptNone prompt = iota
	promptSearch
	promptTitle
	promptOpenID
	promptPassword
	promptRemove
)

// LibraryScreen implements screen.Screen for the document list.
type LibraryScreen struct {
	library *docs.Library
	remote  docs.Remote
	open    Open

	all      []docs.Document
	shown    []docs.Document
	selected int
	search   string

	prompt  prompt
	input   components.TextInput
	gate    *docs.Gate
	pending docs.Document

	status  string
	loading bool
	loaded  bool
	errMsg  string
}

var _ screen.Screen = (*LibraryScreen)(nil)
var _ screen.KeyHintProvider = (*LibraryScreen)(nil)
var _ screen.InputCapturer = (*LibraryScreen)(nil)
var _ router.Resumer = (*LibraryScreen)(nil)

// New creates the document list screen.
func New(library *docs.Library, remote docs.Remote, open Open) *LibraryScreen {
	return &LibraryScreen{library: library, remote: remote, open: open}
}

func (s *LibraryScreen) Init() tea.Cmd { return s.load() }

// Resume reloads the list after the editor closes.
func (s *LibraryScreen) Resume() tea.Cmd { return s.load() }

func (s *LibraryScreen) Title() string { return "Documents" }

func (s *LibraryScreen) CapturingInput() bool { return s.prompt != promptNone }

func (s *LibraryScreen) KeyHints() []layout.KeyHint {
	switch s.prompt {
	case promptNone:
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Open"},
			{Key: "N", Description: "New"},
			{Key: "O", Description: "Open by id"},
			{Key: "/", Description: "Search"},
			{Key: "D", Description: "Forget"},
			{Key: "Esc", Description: "Back"},
		}
	case promptRemove:
		return []layout.KeyHint{
			{Key: "Y", Description: "Forget"},
			{Key: "N", Description: "Cancel"},
		}
	default:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Confirm"},
			{Key: "Esc", Description: "Cancel"},
		}
	}
}

func (s *LibraryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case listLoadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.errMsg = ""
		s.all = msg.Docs
		s.applySearch()
		return s, nil

	case fetchedMsg:
		return s.handleFetched(msg)

	case tea.KeyPressMsg:
		if s.prompt != promptNone {
			return s.handlePromptKey(msg)
		}
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *LibraryScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	s.status = ""
	switch msg.String() {
	case "esc":
		return s, router.Pop
	case "up", "k":
		s.selected = max(s.selected-1, 0)
	case "down", "j":
		s.selected = min(s.selected+1, max(len(s.shown)-1, 0))
	case "enter":
		if s.selected < len(s.shown) && !s.loading {
			return s, s.fetch(s.shown[s.selected].DocID)
		}
	case "n", "N":
		s.openPrompt(promptTitle, components.NewTextInput("Title", "Untitled notes", false, 120))
	case "o", "O":
		s.openPrompt(promptOpenID, components.NewTextInput("Document id", "", false, 32))
	case "/":
		in := components.NewTextInput("Search", "title or id", false, 64)
		in.SetValue(s.search)
		s.openPrompt(promptSearch, in)
	case "d", "D":
		if s.selected < len(s.shown) {
			s.prompt = promptRemove
		}
	}
	return s, nil
}

func (s *LibraryScreen) openPrompt(p prompt, in components.TextInput) {
	s.prompt = p
	s.input = in
}

func (s *LibraryScreen) handlePromptKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.prompt == promptRemove {
		switch key {
		case "y", "Y":
			s.prompt = promptNone
			doc := s.shown[s.selected]
			if err := s.library.Remove(context.Background(), doc.DocID); err != nil {
				s.status = "Could not forget document: " + err.Error()
				return s, nil
			}
			s.status = "Removed " + doc.Title + " from this device"
			return s, s.load()
		case "n", "N", "esc":
			s.prompt = promptNone
		}
		return s, nil
	}

	switch key {
	case "esc":
		if s.prompt == promptSearch {
			s.search = ""
			s.applySearch()
		}
		s.prompt = promptNone
		s.gate = nil
		return s, nil
	case "enter":
		return s.submitPrompt()
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	if s.prompt == promptSearch {
		s.search = s.input.Value()
		s.applySearch()
	}
	return s, cmd
}

func (s *LibraryScreen) submitPrompt() (screen.Screen, tea.Cmd) {
	value := s.input.Value()
	switch s.prompt {
	case promptSearch:
		s.prompt = promptNone

	case promptTitle:
		doc, err := docs.NewDocument(value)
		if err != nil {
			s.status = err.Error()
			return s, nil
		}
		s.prompt = promptNone
		if err := s.library.Put(context.Background(), doc); err != nil {
			s.status = "Could not remember document: " + err.Error()
			return s, nil
		}
		return s, router.Push(s.open(doc, true))

	case promptOpenID:
		if value == "" {
			s.status = "Enter a document id"
			return s, nil
		}
		s.prompt = promptNone
		return s, s.fetch(value)

	case promptPassword:
		if err := s.gate.Unlock(s.input.Model.Value()); err != nil {
			s.status = err.Error()
			s.input.Reset()
			return s, nil
		}
		s.prompt = promptNone
		s.gate = nil
		return s, router.Push(s.open(s.pending, false))
	}
	return s, nil
}

// fetch loads a document from the store, falling back to the local copy
// when the store cannot be reached.
func (s *LibraryScreen) fetch(id string) tea.Cmd {
	s.loading = true
	s.status = "Opening..."
	return func() tea.Msg {
		ctx := context.Background()
		doc, err := s.remote.Fetch(ctx, id)
		if err == nil {
			return fetchedMsg{ID: id, Doc: doc}
		}
		local, lerr := s.library.Get(ctx, id)
		if lerr != nil {
			return fetchedMsg{ID: id, Err: err}
		}
		return fetchedMsg{ID: id, Doc: local, Local: true, Err: err}
	}
}

func (s *LibraryScreen) handleFetched(msg fetchedMsg) (screen.Screen, tea.Cmd) {
	s.loading = false
	s.status = ""
	if msg.Err != nil && !msg.Local {
		if errors.Is(msg.Err, docs.ErrNotFound) {
			s.status = "Document " + msg.ID + " was not found"
		} else {
			s.status = "Could not open document: " + msg.Err.Error()
		}
		return s, nil
	}
	if msg.Local {
		s.status = "Store unreachable, opened the copy on this device"
	}

	doc := msg.Doc
	if err := s.library.Put(context.Background(), doc); err != nil {
		s.status = "Could not remember document: " + err.Error()
	}
	s.pending = doc
	s.gate = docs.NewGate(doc)
	if !s.gate.Unlocked() {
		s.openPrompt(promptPassword, components.NewPasswordInput("Password for "+doc.Title))
		return s, nil
	}
	s.gate = nil
	return s, router.Push(s.open(doc, false))
}

func (s *LibraryScreen) load() tea.Cmd {
	return func() tea.Msg {
		list, err := s.library.List(context.Background())
		return listLoadedMsg{Docs: list, Err: err}
	}
}

// applySearch shows the newest documents first.
func (s *LibraryScreen) applySearch() {
	matched := docs.Search(s.all, s.search)
	s.shown = make([]docs.Document, 0, len(matched))
	for i := len(matched) - 1; i >= 0; i-- {
		s.shown = append(s.shown, matched[i])
	}
	s.selected = min(s.selected, max(len(s.shown)-1, 0))
}
