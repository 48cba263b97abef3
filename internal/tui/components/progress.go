package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"

	"github.com/jfoltran/growthgraph/internal/animation"
	"github.com/jfoltran/growthgraph/internal/graph"
)

// RenderProgress renders the intro progress bar.
func RenderProgress(snap animation.Snapshot, width int) string {
	barWidth := width - 24
	if barWidth < 10 {
		barWidth = 10
	}

	bar := progress.New(
		progress.WithSolidFill(graph.ColorAccent),
		progress.WithoutPercentage(),
		progress.WithWidth(barWidth),
	)

	visible := graph.VisibleBars(snap.Progress)
	return fmt.Sprintf("  Progress: %s %3d%% %s (%d/%d bars)",
		bar.ViewAs(float64(snap.Progress)/100), snap.Progress,
		barSparkline(visible), visible, graph.BarCount)
}

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// barSparkline draws one glyph per chart bar, scaled by its height. Bars not
// yet revealed show as dots.
func barSparkline(visible int) string {
	var b strings.Builder
	for i, h := range graph.BarHeights() {
		if i >= visible {
			b.WriteRune('·')
			continue
		}
		idx := int(h/100*float64(len(sparkRunes)-1) + 0.5)
		idx = max(0, min(idx, len(sparkRunes)-1))
		b.WriteRune(sparkRunes[idx])
	}
	return b.String()
}
