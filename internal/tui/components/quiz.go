package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jfoltran/growthgraph/internal/funnel"
)

var (
	quizStepStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	quizSentenceStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF"))
	quizCursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#38BDF8"))
	quizChosenStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0EA5E9"))
	quizOptionStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#CBD5E1"))
	quizRouteStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#10B981"))
)

// RenderQuestion renders the current question with its options. cursor is
// the highlighted option index.
func RenderQuestion(st funnel.State, cursor, width int) string {
	var b strings.Builder

	b.WriteString(quizStepStyle.Render(fmt.Sprintf("  Question %d of %d", st.Index+1, st.Total)))
	b.WriteString("\n\n")
	b.WriteString(quizSentenceStyle.Width(width - 2).Render("  " + st.Question.Sentence))
	b.WriteString("\n\n")

	for i, opt := range st.Question.Options {
		pointer := "  "
		if i == cursor {
			pointer = quizCursorStyle.Render("> ")
		}
		mark := "( )"
		style := quizOptionStyle
		if opt == st.Selected {
			mark = "(•)"
			style = quizChosenStyle
		}
		b.WriteString(fmt.Sprintf("  %s%s %s", pointer, mark, style.Render(opt)))
		if i < len(st.Question.Options)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// RenderSummary renders the recorded answers and the route the funnel hands
// off to.
func RenderSummary(q funnel.Quiz, answers []string, route string) string {
	var b strings.Builder
	b.WriteString(quizSentenceStyle.Render("  All set!"))
	b.WriteString("\n\n")
	for i, question := range q.Questions {
		answer := "-"
		if i < len(answers) && answers[i] != "" {
			answer = answers[i]
		}
		b.WriteString(quizStepStyle.Render(fmt.Sprintf("  %d. %s", i+1, question.Sentence)))
		b.WriteString("\n")
		b.WriteString("     " + quizChosenStyle.Render(answer))
		b.WriteString("\n")
	}
	b.WriteString("\n  Continue to " + quizRouteStyle.Render(route))
	return b.String()
}
