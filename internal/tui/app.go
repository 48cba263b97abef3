package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jfoltran/growthgraph/internal/animation"
	"github.com/jfoltran/growthgraph/internal/funnel"
	"github.com/jfoltran/growthgraph/internal/tui/components"
)

type stage int

const (
	stageIntro stage = iota
	stageQuiz
	stageDone
)

// snapshotMsg carries a new animation snapshot into the Bubble Tea update loop.
type snapshotMsg animation.Snapshot

// introDoneMsg fires when an intro has been shown for its full duration.
// gen ties it to the intro that scheduled it so replays are not cut short.
type introDoneMsg struct{ gen int }

// Model is the main Bubble Tea model: the animated intro followed by the
// onboarding quiz.
type Model struct {
	driver   *animation.Driver
	sub      chan animation.Snapshot
	snapshot animation.Snapshot

	quiz          funnel.Quiz
	session       *funnel.Session
	cursor        int
	outcome       funnel.Outcome
	introDuration time.Duration
	introGen      int

	stage  stage
	width  int
	height int
	ready  bool
}

// NewModel creates a model subscribed to driver.
func NewModel(driver *animation.Driver, quiz funnel.Quiz, introDuration time.Duration) Model {
	return Model{
		driver:        driver,
		sub:           driver.Subscribe(),
		snapshot:      driver.Snapshot(),
		quiz:          quiz,
		introDuration: introDuration,
	}
}

// Init starts listening for snapshots and schedules the end of the intro.
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForSnapshot(m.sub), introTimer(m.introDuration, m.introGen))
}

func waitForSnapshot(sub chan animation.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-sub
		if !ok {
			return nil
		}
		return snapshotMsg(snap)
	}
}

func introTimer(d time.Duration, gen int) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return introDoneMsg{gen: gen}
	})
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.driver.Unsubscribe(m.sub)
			return m, tea.Quit
		}
		return m.handleKey(msg.String())

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case snapshotMsg:
		m.snapshot = animation.Snapshot(msg)
		return m, waitForSnapshot(m.sub)

	case introDoneMsg:
		if m.stage == stageIntro && msg.gen == m.introGen {
			m.startQuiz()
		}
	}

	return m, nil
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	switch m.stage {
	case stageIntro:
		m.startQuiz()

	case stageQuiz:
		st := m.session.State()
		switch key {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(st.Question.Options)-1 {
				m.cursor++
			}
		case "enter", " ", "space":
			_ = m.session.Select(st.Question.Options[m.cursor])
		case "right", "n":
			out, err := m.session.Next()
			if err != nil {
				return m, nil
			}
			if out.Finished {
				m.outcome = out
				m.stage = stageDone
				return m, nil
			}
			m.syncCursor()
		case "left", "b":
			out, err := m.session.Back()
			if err != nil {
				return m, nil
			}
			if out.Route == funnel.RouteHome {
				return m, m.replayIntro()
			}
			m.syncCursor()
		}

	case stageDone:
		if key == "enter" {
			m.driver.Unsubscribe(m.sub)
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *Model) startQuiz() {
	m.session = funnel.NewSession(m.quiz)
	m.stage = stageQuiz
	m.syncCursor()
}

// syncCursor puts the cursor on the recorded answer, or the first option.
func (m *Model) syncCursor() {
	st := m.session.State()
	m.cursor = 0
	for i, opt := range st.Question.Options {
		if opt == st.Selected {
			m.cursor = i
		}
	}
}

func (m *Model) replayIntro() tea.Cmd {
	m.session = nil
	m.stage = stageIntro
	m.introGen++
	m.driver.Reset()
	return introTimer(m.introDuration, m.introGen)
}

// View renders the current stage.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	w := m.width
	var sections []string

	sections = append(sections, titleStyle.Width(w).Render(" growthgraph"))

	switch m.stage {
	case stageIntro:
		snap := m.snapshot
		sections = append(sections,
			boxStyle.Width(w-2).Render(components.RenderHeader(snap, w-4)),
			boxStyle.Width(w-2).Render(components.RenderProgress(snap, w-4)),
		)
		cols := w - 4
		if m.height > 0 {
			// Leave room for the other sections; rows are cols/2.
			if maxCols := (m.height - 16) * 2; maxCols > 0 && cols > maxCols {
				cols = maxCols
			}
		}
		if snap.Visible {
			graph := lipgloss.PlaceHorizontal(w-4, lipgloss.Center, components.RenderGraph(snap.Scene, cols))
			sections = append(sections, graphBoxStyle.Width(w-2).Render(graph))
		}
		sections = append(sections,
			boxStyle.Width(w-2).Render(components.RenderLogs(m.driver.Logs(), 3)),
			helpStyle.Render("  any key: skip intro  q: quit"),
		)

	case stageQuiz:
		st := m.session.State()
		sections = append(sections,
			boxStyle.Width(w-2).Render(components.RenderQuestion(st, m.cursor, w-4)),
		)
		next := "next"
		if st.IsLast {
			next = "finish"
		}
		sections = append(sections, helpStyle.Render(fmt.Sprintf(
			"  ↑/↓: move  enter: select  →: %s  ←: back  q: quit", next)))

	case stageDone:
		sections = append(sections,
			boxStyle.Width(w-2).Render(components.RenderSummary(m.quiz, m.session.Answers(), m.outcome.Route)),
			helpStyle.Render("  enter/q: quit"),
		)
	}

	return strings.Join(sections, "\n")
}

// Run starts the TUI in fullscreen mode.
func Run(driver *animation.Driver, quiz funnel.Quiz, introDuration time.Duration) error {
	model := NewModel(driver, quiz, introDuration)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
