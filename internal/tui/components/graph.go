package components

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/jfoltran/growthgraph/pkg/geom"
	"github.com/jfoltran/growthgraph/internal/graph"
)

// Terminal cells are roughly twice as tall as they are wide.
const cellAspect = 2.0

var canvasBg = colorful.Color{R: 0x1F / 255.0, G: 0x29 / 255.0, B: 0x37 / 255.0}

type cell struct {
	glyph rune
	color string
	layer int
}

// Layers, lowest first. A cell keeps the highest layer that covers it.
const (
	layerTrack = iota + 1
	layerArc
	layerBar
	layerLine
	layerArrow
)

// RenderGraph draws s on a character grid cols wide. The row count follows
// from the cell aspect so the ring stays round.
func RenderGraph(s graph.Scene, cols int) string {
	if cols < 8 {
		cols = 8
	}
	rows := int(math.Round(float64(cols) / cellAspect))
	if rows < 4 {
		rows = 4
	}

	grid := make([][]cell, rows)
	for r := range grid {
		grid[r] = make([]cell, cols)
	}

	cw := s.ViewBox / float64(cols)
	ch := s.ViewBox / float64(rows)
	tol := math.Max(cw, ch) / 2

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			p := geom.Pt((float64(c)+0.5)*cw, (float64(r)+0.5)*ch)
			grid[r][c] = shade(s, p, tol)
		}
	}

	if a := s.Arrowhead(); a != nil && a.Opacity > 0 {
		tip := a.Transformed()[0]
		c := int(tip.X / cw)
		r := int(tip.Y / ch)
		if r >= 0 && r < rows && c >= 0 && c < cols {
			grid[r][c] = cell{glyph: arrowGlyph(a.Angle), color: blend(a.Fill, a.Opacity), layer: layerArrow}
		}
	}

	var b strings.Builder
	for r, line := range grid {
		for _, cl := range line {
			if cl.layer == 0 {
				b.WriteByte(' ')
				continue
			}
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(cl.color)).Render(string(cl.glyph)))
		}
		if r < rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func shade(s graph.Scene, p geom.Point, tol float64) cell {
	if l := s.TrendLine(); l != nil && nearPolyline(l.Points, p, l.StrokeWidth/2+tol/2) {
		return cell{glyph: '•', color: l.Stroke, layer: layerLine}
	}

	if p.Dist(s.Center) <= s.ClipRadius {
		for _, bar := range s.Bars() {
			if bar.Opacity <= 0 || bar.ScaleY <= 0 {
				continue
			}
			h := bar.Height * bar.ScaleY
			bottom := bar.Y + bar.Height
			if p.X >= bar.X && p.X <= bar.X+bar.Width && p.Y >= bottom-h && p.Y <= bottom {
				return cell{glyph: '█', color: blend(bar.Fill, bar.Opacity), layer: layerBar}
			}
		}
	}

	if arc := s.ProgressArc(); arc != nil && onArc(*arc, p, tol) {
		return cell{glyph: '●', color: blend(arc.Stroke, arc.Opacity), layer: layerArc}
	}
	if arc := s.Track(); arc != nil && onArc(*arc, p, tol) {
		return cell{glyph: '·', color: blend(arc.Stroke, math.Max(arc.Opacity, 0.5)), layer: layerTrack}
	}
	return cell{}
}

func onArc(a graph.Arc, p geom.Point, tol float64) bool {
	if math.Abs(p.Dist(a.Center)-a.Radius) > a.StrokeWidth/2+tol/2 {
		return false
	}
	theta := geom.Angle(a.Center, p)
	for _, sp := range a.Spans() {
		for k := -1.0; k <= 2; k++ {
			t := theta + 2*math.Pi*k
			if t >= sp.Start && t <= sp.End {
				return true
			}
		}
	}
	return false
}

func nearPolyline(pts []geom.Point, p geom.Point, d float64) bool {
	for i := 1; i < len(pts); i++ {
		if segmentDist(pts[i-1], pts[i], p) <= d {
			return true
		}
	}
	return false
}

func segmentDist(a, b, p geom.Point) float64 {
	ab := b.Sub(a)
	l2 := ab.X*ab.X + ab.Y*ab.Y
	if l2 == 0 {
		return p.Dist(a)
	}
	t := ((p.X-a.X)*ab.X + (p.Y-a.Y)*ab.Y) / l2
	t = math.Max(0, math.Min(1, t))
	return p.Dist(a.Add(ab.Mul(t)))
}

// arrowGlyph maps a y-down angle in radians to one of eight arrows.
func arrowGlyph(angle float64) rune {
	glyphs := []rune{'→', '↘', '↓', '↙', '←', '↖', '↑', '↗'}
	i := int(math.Round(angle/(math.Pi/4))) % 8
	if i < 0 {
		i += 8
	}
	return glyphs[i]
}

// blend fades a palette color toward the canvas background by opacity.
func blend(hex string, opacity float64) string {
	c, err := colorful.Hex(hex)
	if err != nil {
		return hex
	}
	return canvasBg.BlendRgb(c, math.Max(0, math.Min(1, opacity))).Hex()
}
