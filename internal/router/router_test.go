package router

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/studydeck/studydeck/internal/screen"
)

type stubScreen struct {
	title   string
	initRan bool
	resumed int
	got     []tea.Msg
}

func (s *stubScreen) Init() tea.Cmd {
	s.initRan = true
	return nil
}
func (s *stubScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	s.got = append(s.got, msg)
	return s, nil
}
func (s *stubScreen) View(int, int) string { return s.title }
func (s *stubScreen) Title() string        { return s.title }

type resumingScreen struct{ stubScreen }

func (s *resumingScreen) Resume() tea.Cmd {
	s.resumed++
	return nil
}

func TestPush(t *testing.T) {
	r := New(&stubScreen{title: "home"})

	s2 := &stubScreen{title: "study"}
	r.Update(PushScreenMsg{Screen: s2})

	if r.Depth() != 2 {
		t.Errorf("expected depth 2, got %d", r.Depth())
	}
	if r.Active().Title() != "study" {
		t.Errorf("expected active 'study', got %q", r.Active().Title())
	}
	if !s2.initRan {
		t.Error("expected Init() to run on pushed screen")
	}
}

func TestPopResumesScreenBelow(t *testing.T) {
	home := &resumingScreen{stubScreen{title: "home"}}
	r := New(home)
	r.Push(&stubScreen{title: "progress"})

	r.Update(PopScreenMsg{})

	if r.Depth() != 1 || r.Active().Title() != "home" {
		t.Fatalf("expected home at depth 1, got %q at %d", r.Active().Title(), r.Depth())
	}
	if home.resumed != 1 {
		t.Errorf("expected home to be resumed once, got %d", home.resumed)
	}
}

func TestPopNoopAtRoot(t *testing.T) {
	r := New(&stubScreen{title: "home"})
	r.Pop()
	if r.Depth() != 1 {
		t.Errorf("expected depth 1 after pop at root, got %d", r.Depth())
	}
}

func TestReplaceKeepsDepth(t *testing.T) {
	r := New(&stubScreen{title: "home"})
	r.Push(&stubScreen{title: "courses"})

	study := &stubScreen{title: "study"}
	r.Update(ReplaceScreenMsg{Screen: study})

	if r.Depth() != 2 {
		t.Errorf("expected depth 2, got %d", r.Depth())
	}
	if r.Active().Title() != "study" || !study.initRan {
		t.Errorf("expected initialized study screen on top")
	}

	r.Pop()
	if r.Active().Title() != "home" {
		t.Errorf("expected pop to return home, got %q", r.Active().Title())
	}
}

func TestUpdateForwardsToActiveOnly(t *testing.T) {
	bottom := &stubScreen{title: "home"}
	top := &stubScreen{title: "study"}
	r := New(bottom)
	r.Push(top)

	r.Update("hello")

	if len(top.got) != 1 || len(bottom.got) != 0 {
		t.Errorf("expected only the top screen to receive the message")
	}
}

func TestCommandHelpers(t *testing.T) {
	s := &stubScreen{title: "x"}
	if msg, ok := Push(s)().(PushScreenMsg); !ok || msg.Screen != s {
		t.Error("Push() should produce PushScreenMsg")
	}
	if msg, ok := Replace(s)().(ReplaceScreenMsg); !ok || msg.Screen != s {
		t.Error("Replace() should produce ReplaceScreenMsg")
	}
	if _, ok := Pop().(PopScreenMsg); !ok {
		t.Error("Pop() should produce PopScreenMsg")
	}
}
