package home

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/studydeck/studydeck/internal/catalog"
	"github.com/studydeck/studydeck/internal/docs"
	"github.com/studydeck/studydeck/internal/router"
	"github.com/studydeck/studydeck/internal/screens/courses"
	"github.com/studydeck/studydeck/internal/screens/documents"
	"github.com/studydeck/studydeck/internal/screens/progress"
	"github.com/studydeck/studydeck/internal/store"
	"github.com/studydeck/studydeck/internal/tracker"
)

type fakeSource struct{}

func (fakeSource) ListCourses(context.Context) ([]catalog.Course, error)    { return nil, nil }
func (fakeSource) LoadQuestions(context.Context, string) []catalog.Question { return nil }

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func newHome(t *testing.T) (*HomeScreen, *tracker.Tracker) {
	t.Helper()
	kv := store.NewMemKV()
	tr := tracker.New(kv)
	return New(Deps{
		Source:        fakeSource{},
		Tracker:       tr,
		Library:       docs.NewLibrary(kv),
		PracticeCount: 10,
	}), tr
}

// selectItem moves to item i and presses enter, returning the pushed screen.
func selectItem(t *testing.T, h *HomeScreen, i int) any {
	t.Helper()
	h.menu.Selected = i
	_, cmd := h.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatalf("item %d: expected a command", i)
	}
	msg := cmd()
	push, ok := msg.(router.PushScreenMsg)
	if !ok {
		return msg
	}
	return push.Screen
}

func TestHomeMenuOpensScreens(t *testing.T) {
	h, _ := newHome(t)

	for _, i := range []int{0, 1, 2} {
		if _, ok := selectItem(t, h, i).(*courses.PickerScreen); !ok {
			t.Errorf("item %d should open the course picker", i)
		}
	}
	if _, ok := selectItem(t, h, 3).(*progress.ProgressScreen); !ok {
		t.Error("Progress should open the progress screen")
	}
	if _, ok := selectItem(t, h, 4).(*documents.LibraryScreen); !ok {
		t.Error("Documents should open the document list")
	}
	if _, ok := selectItem(t, h, 5).(tea.QuitMsg); !ok {
		t.Error("Quit should quit")
	}
}

func TestHomeStats(t *testing.T) {
	h, tr := newHome(t)
	if !strings.Contains(h.View(100, 30), "No practice yet") {
		t.Error("expected empty summary")
	}

	if _, err := tr.AppendResult(context.Background(), "1", tracker.TestResult{CourseID: "1", Score: 80, TotalQuestions: 5}); err != nil {
		t.Fatal(err)
	}
	h.Update(h.Resume()())
	view := h.View(100, 30)
	if !strings.Contains(view, "1 tests") || !strings.Contains(view, "avg 80%") {
		t.Errorf("summary missing from view:\n%s", view)
	}
}
