package editor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/studydeck/studydeck/internal/chat"
	"github.com/studydeck/studydeck/internal/docs"
	"github.com/studydeck/studydeck/internal/llm"
	"github.com/studydeck/studydeck/internal/store"
)

type fakeRemote struct {
	saved []docs.Document
	err   error
}

func (f *fakeRemote) Save(_ context.Context, d docs.Document) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, d)
	return nil
}

func (f *fakeRemote) Fetch(context.Context, string) (docs.Document, error) {
	return docs.Document{}, docs.ErrNotFound
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func ctrlKey(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Mod: tea.ModCtrl}
}

func typeText(s *EditorScreen, text string) {
	for _, r := range text {
		s.Update(keyPress(r))
	}
}

func textResponse(s string) llm.MockResponse {
	return llm.MockResponse{Text: s}
}

var testDoc = docs.Document{DocID: "abcd1234", Title: "Networking", Content: "<p>TCP</p>"}

type fixture struct {
	screen  *EditorScreen
	remote  *fakeRemote
	library *docs.Library
}

func newFixture(t *testing.T, assistant *chat.Assistant) fixture {
	t.Helper()
	remote := &fakeRemote{}
	lib := docs.NewLibrary(store.NewMemKV())
	s := New(remote, lib, assistant, testDoc, Options{
		AutosaveDelay: time.Second,
		ShareBaseURL:  "https://example.test/docs",
		Now:           func() time.Time { return time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC) },
	})
	return fixture{screen: s, remote: remote, library: lib}
}

func TestEditor_LoadsPlainText(t *testing.T) {
	f := newFixture(t, nil)
	if got := f.screen.area.Value(); got != "TCP" {
		t.Errorf("editor text = %q, want TCP", got)
	}
}

func TestEditor_AutosaveDebounce(t *testing.T) {
	f := newFixture(t, nil)
	s := f.screen

	_, cmd := s.Update(keyPress('!'))
	if cmd == nil || !s.autosave.Dirty() {
		t.Fatal("an edit must schedule an autosave")
	}
	s.Update(keyPress('?'))

	if _, cmd := s.Update(autosaveMsg{Gen: 1}); cmd != nil {
		t.Error("superseded timer must not save")
	}
	_, cmd = s.Update(autosaveMsg{Gen: 2})
	if cmd == nil {
		t.Fatal("latest timer must save")
	}
	if s.autosave.Dirty() {
		t.Error("save must clear the dirty flag")
	}

	local, err := f.library.Get(context.Background(), testDoc.DocID)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(local.Content, "<p>") || !strings.Contains(local.Content, "TCP") {
		t.Errorf("local content = %q", local.Content)
	}

	s.Update(cmd())
	if len(f.remote.saved) != 1 {
		t.Fatalf("remote saves = %d, want 1", len(f.remote.saved))
	}
	if s.Status() != "Saved 10:00:00" {
		t.Errorf("status = %q", s.Status())
	}
}

func TestEditor_CtrlSFlushes(t *testing.T) {
	f := newFixture(t, nil)
	s := f.screen
	typeText(s, " rocks")

	_, cmd := s.Update(ctrlKey('s'))
	if cmd == nil {
		t.Fatal("expected a save command")
	}
	s.Update(cmd())
	if len(f.remote.saved) != 1 {
		t.Errorf("remote saves = %d", len(f.remote.saved))
	}
	if _, cmd := s.Update(autosaveMsg{Gen: 6}); cmd != nil {
		t.Error("pending timer must be cancelled by a manual save")
	}
}

func TestEditor_RemoteFailureKeepsDirty(t *testing.T) {
	f := newFixture(t, nil)
	f.remote.err = errors.New("store down")
	s := f.screen
	typeText(s, "x")

	_, cmd := s.Update(ctrlKey('s'))
	s.Update(cmd())
	if !s.autosave.Dirty() {
		t.Error("failed save must leave edits dirty")
	}
	if !strings.Contains(s.status, "store down") {
		t.Errorf("status = %q", s.status)
	}
	if _, err := f.library.Get(context.Background(), testDoc.DocID); err != nil {
		t.Error("local copy must still be written")
	}
}

func TestEditor_ShareWithPassword(t *testing.T) {
	f := newFixture(t, nil)
	s := f.screen

	s.Update(ctrlKey('e'))
	if s.share == nil {
		t.Fatal("expected share prompt")
	}
	typeText(s, "pw1")
	_, cmd := s.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("sharing must save the document")
	}

	if !s.doc.Protected() || !docs.CheckPassword("pw1", s.doc.PasswordHash) {
		t.Error("document should carry the password hash")
	}
	if !strings.Contains(s.shareText, "https://example.test/docs?docId=abcd1234") ||
		!strings.Contains(s.shareText, "Password: pw1") {
		t.Errorf("share text = %q", s.shareText)
	}
	local, _ := f.library.Get(context.Background(), testDoc.DocID)
	if !local.Protected() {
		t.Error("saved copy should be protected")
	}
}

func TestEditor_ChatDisabledWithoutAssistant(t *testing.T) {
	f := newFixture(t, nil)
	f.screen.Update(ctrlKey('k'))
	if f.screen.chatOpen {
		t.Error("chat must stay closed")
	}
	if f.screen.status == "" {
		t.Error("expected a status message")
	}
}

func TestEditor_AgentSuggestionAccepted(t *testing.T) {
	mock := llm.NewMockProvider(textResponse("Rewritten. [AGENT_SUGGESTION]# TCP\n\nReliable transport.[/AGENT_SUGGESTION]"))
	a := chat.New(mock, store.NewMemKV())
	f := newFixture(t, a)
	s := f.screen
	s.Update(s.Init()())

	s.Update(ctrlKey('k'))
	if !s.chatOpen || s.focus != focusChat {
		t.Fatal("ctrl+k should open and focus the chat")
	}
	s.Update(specialKey(tea.KeyTab))
	if s.panel.mode != chat.ModeAgent {
		t.Fatalf("mode = %s, want agent", s.panel.mode)
	}

	typeText(s, "Tidy this up")
	_, cmd := s.Update(specialKey(tea.KeyEnter))
	if cmd == nil || !s.panel.waiting {
		t.Fatal("enter should send the message")
	}
	s.Update(cmd())
	if s.panel.pending == nil {
		t.Fatal("expected a pending suggestion")
	}
	if len(s.panel.messages) != 2 || s.panel.messages[1].Content != "Rewritten." {
		t.Errorf("messages = %+v", s.panel.messages)
	}

	_, cmd = s.Update(keyPress('y'))
	if cmd == nil {
		t.Error("applying an edit must schedule an autosave")
	}
	if got := s.area.Value(); got != "# TCP\n\nReliable transport." {
		t.Errorf("editor text = %q", got)
	}
	if !s.autosave.Dirty() {
		t.Error("applied edit must be unsaved")
	}

	history, _ := a.History(context.Background(), testDoc.DocID)
	if last := history[len(history)-1]; last.Content != chat.AcceptedReply {
		t.Errorf("last history message = %q", last.Content)
	}
}

func TestEditor_SuggestionRejected(t *testing.T) {
	mock := llm.NewMockProvider(textResponse("[AGENT_SUGGESTION]new[/AGENT_SUGGESTION]"))
	f := newFixture(t, chat.New(mock, store.NewMemKV()))
	s := f.screen

	s.Update(ctrlKey('k'))
	s.Update(specialKey(tea.KeyTab))
	typeText(s, "go")
	_, cmd := s.Update(specialKey(tea.KeyEnter))
	s.Update(cmd())

	s.Update(keyPress('n'))
	if s.panel.pending != nil {
		t.Error("suggestion should be dismissed")
	}
	if s.area.Value() != "TCP" {
		t.Errorf("editor text changed to %q", s.area.Value())
	}
}

func TestEditor_EmptyChatMessage(t *testing.T) {
	f := newFixture(t, chat.New(llm.NewMockProvider(), store.NewMemKV()))
	s := f.screen
	s.Update(ctrlKey('k'))

	_, cmd := s.Update(specialKey(tea.KeyEnter))
	if cmd != nil {
		t.Error("empty message must not be sent")
	}
	if s.status != chat.ErrEmptyMessage.Error() {
		t.Errorf("status = %q", s.status)
	}
}

func TestEditor_EscSavesDirty(t *testing.T) {
	f := newFixture(t, nil)
	s := f.screen

	if _, cmd := s.Update(specialKey(tea.KeyEscape)); cmd == nil {
		t.Fatal("esc should leave the editor")
	}
	typeText(s, "x")
	s.Update(specialKey(tea.KeyEscape))
	if s.autosave.Dirty() {
		t.Error("esc must save pending edits")
	}
}

func TestEditor_NewDocumentSavedOnOpen(t *testing.T) {
	remote := &fakeRemote{}
	lib := docs.NewLibrary(store.NewMemKV())
	s := New(remote, lib, nil, docs.Document{DocID: "new00001", Title: "Fresh"}, Options{IsNew: true})

	cmd := s.Init()
	if cmd == nil {
		t.Fatal("new document should be saved on open")
	}
	s.Update(cmd())
	if len(remote.saved) != 1 || remote.saved[0].Title != "Fresh" {
		t.Errorf("saved = %+v", remote.saved)
	}
}
