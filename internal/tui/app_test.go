package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/jfoltran/growthgraph/internal/animation"
	"github.com/jfoltran/growthgraph/internal/funnel"
	"github.com/jfoltran/growthgraph/internal/graph"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	d := animation.NewDriver(animation.DefaultTiming(), graph.DefaultSize, zerolog.Nop())
	t.Cleanup(d.Close)
	m := NewModel(d, funnel.DefaultQuiz(), time.Second)
	return update(t, m, tea.WindowSizeMsg{Width: 100, Height: 60})
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelIntroEndsOnTimer(t *testing.T) {
	m := newTestModel(t)
	if m.stage != stageIntro {
		t.Fatalf("stage = %v, want intro", m.stage)
	}

	// A stale timer from an earlier intro is ignored.
	m = update(t, m, introDoneMsg{gen: m.introGen + 1})
	if m.stage != stageIntro {
		t.Fatalf("stale timer moved stage to %v", m.stage)
	}

	m = update(t, m, introDoneMsg{gen: m.introGen})
	if m.stage != stageQuiz {
		t.Fatalf("stage = %v, want quiz", m.stage)
	}
	if m.session == nil {
		t.Fatal("expected a quiz session")
	}
}

func TestModelSkipIntroWithKey(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, key("x"))
	if m.stage != stageQuiz {
		t.Errorf("stage = %v, want quiz", m.stage)
	}
}

func TestModelQuizNavigation(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, key("x"))

	m = update(t, m, key("down"))
	m = update(t, m, key("j"))
	if m.cursor != 2 {
		t.Fatalf("cursor = %d, want 2", m.cursor)
	}
	m = update(t, m, key("k"))
	m = update(t, m, key("enter"))

	q := funnel.DefaultQuiz()
	st := m.session.State()
	if st.Selected != q.Questions[0].Options[1] {
		t.Errorf("Selected = %q, want %q", st.Selected, q.Questions[0].Options[1])
	}

	m = update(t, m, key("right"))
	if got := m.session.State().Index; got != 1 {
		t.Fatalf("Index = %d, want 1", got)
	}
	if m.cursor != 0 {
		t.Errorf("cursor = %d on unanswered question, want 0", m.cursor)
	}

	// Going back restores the cursor to the recorded answer.
	m = update(t, m, key("b"))
	if m.cursor != 1 {
		t.Errorf("cursor = %d after back, want 1", m.cursor)
	}
}

func TestModelCursorBounds(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, key("x"))

	m = update(t, m, key("up"))
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want 0", m.cursor)
	}
	n := len(funnel.DefaultQuiz().Questions[0].Options)
	for i := 0; i < n+3; i++ {
		m = update(t, m, key("down"))
	}
	if m.cursor != n-1 {
		t.Errorf("cursor = %d, want %d", m.cursor, n-1)
	}
}

func TestModelFinish(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, key("x"))

	for i := 0; i < funnel.DefaultQuiz().Len(); i++ {
		m = update(t, m, key(" "))
		m = update(t, m, key("n"))
	}
	if m.stage != stageDone {
		t.Fatalf("stage = %v, want done", m.stage)
	}
	if m.outcome.Route != funnel.RouteDashboard {
		t.Errorf("Route = %q, want %q", m.outcome.Route, funnel.RouteDashboard)
	}
	if v := m.View(); !strings.Contains(v, funnel.RouteDashboard) {
		t.Error("summary view does not mention the dashboard route")
	}

	_, cmd := m.Update(key("enter"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestModelBackReplaysIntro(t *testing.T) {
	m := newTestModel(t)
	for i := 0; i < 30; i++ {
		m.driver.Step()
	}
	m = update(t, m, key("x"))
	gen := m.introGen

	m = update(t, m, key("left"))
	if m.stage != stageIntro {
		t.Fatalf("stage = %v, want intro", m.stage)
	}
	if m.introGen != gen+1 {
		t.Errorf("introGen = %d, want %d", m.introGen, gen+1)
	}
	if m.driver.Progress() != 0 {
		t.Errorf("driver progress = %d, want 0 after replay", m.driver.Progress())
	}
}

func TestModelQuit(t *testing.T) {
	m := newTestModel(t)
	for _, k := range []string{"q", "ctrl+c"} {
		_, cmd := m.Update(key(k))
		if cmd == nil {
			t.Fatalf("%s: expected quit command", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s: expected tea.QuitMsg", k)
		}
	}
}

func TestModelSnapshot(t *testing.T) {
	m := newTestModel(t)
	snap := m.driver.Snapshot()
	snap.Progress = 55
	snap.Visible = true
	snap.Scene = graph.Render(55, graph.DefaultSize)

	next, cmd := m.Update(snapshotMsg(snap))
	m = next.(Model)
	if m.snapshot.Progress != 55 {
		t.Errorf("Progress = %d, want 55", m.snapshot.Progress)
	}
	if cmd == nil {
		t.Error("expected a command waiting for the next snapshot")
	}
	if v := m.View(); !strings.Contains(v, "55%") {
		t.Error("intro view does not show progress")
	}
}

func TestModelViewBeforeResize(t *testing.T) {
	d := animation.NewDriver(animation.DefaultTiming(), graph.DefaultSize, zerolog.Nop())
	defer d.Close()
	m := NewModel(d, funnel.DefaultQuiz(), time.Second)
	if v := m.View(); v != "Initializing..." {
		t.Errorf("View = %q", v)
	}
}
