// Package graph computes the animated growth-graph icon: a progress ring, a
// bar chart revealed in five steps, a trend line over the visible bars and an
// arrowhead at the line's end. Render is pure; callers drive progress.
package graph

import (
	"errors"
	"fmt"
	"math"

	"github.com/jfoltran/growthgraph/pkg/geom"
)

const (
	// DefaultSize is the canvas edge used when a caller passes no size.
	DefaultSize = 300.0

	// MaxSize bounds the canvas edge. Raster output allocates size² pixels.
	MaxSize = 4096.0

	// BarCount is the number of bars in the chart.
	BarCount = 5

	StrokeWidth     = 12.0
	barGap          = 4.0
	barInset        = 14.0
	barBaseline     = 10.0
	clipInset       = 20.0
	lineSpan        = 35.0
	lineBow         = 15.0
	lineLeadIn      = 15.0
	lineWidth       = 14.0
	arrowLength     = 30.0
	arrowWidth      = 20.0
	arrowNudge      = 25.0
	arrowStroke     = 4.0
	trackOpacity    = 0.2
	centerFraction  = 0.6
	viewBoxFraction = 1.2
)

// Palette.
const (
	ColorInk    = "#1e293b"
	ColorAccent = "#0ea5e9"
	Transparent = "transparent"
)

var barHeights = [BarCount]float64{60, 75, 45, 65, 85}

var (
	ErrProgressRange = errors.New("progress must be within [0, 100]")
	ErrSize          = errors.New("size must be within (0, 4096]")
)

// BarHeights returns the fixed bar heights as percentages of the chart height.
func BarHeights() []float64 {
	out := make([]float64, BarCount)
	copy(out, barHeights[:])
	return out
}

// Validate reports whether progress and size satisfy Render's precondition.
func Validate(progress int, size float64) error {
	var errs []error
	if progress < 0 || progress > 100 {
		errs = append(errs, fmt.Errorf("%w: got %d", ErrProgressRange, progress))
	}
	if !(size > 0 && size <= MaxSize) {
		errs = append(errs, fmt.Errorf("%w: got %v", ErrSize, size))
	}
	return errors.Join(errs...)
}

// VisibleBars returns ceil(progress/100 * BarCount) for progress clamped to
// [0, 100].
func VisibleBars(progress int) int {
	progress = clamp(progress)
	return (progress*BarCount + 99) / 100
}

// Render builds the scene for the given progress and canvas size.
// Out-of-range progress is clamped; a non-positive size uses DefaultSize and
// an oversized one is capped at MaxSize.
func Render(progress int, size float64) Scene {
	progress = clamp(progress)
	switch {
	case !(size > 0) || math.IsInf(size, 0):
		size = DefaultSize
	case size > MaxSize:
		size = MaxSize
	}

	l := newLayout(size)
	frac := float64(progress) / 100
	visible := VisibleBars(progress)
	circ := 2 * math.Pi * l.radius

	scene := Scene{
		Progress:    progress,
		Size:        size,
		ViewBox:     size * viewBoxFraction,
		Center:      l.center,
		Radius:      l.radius,
		StrokeWidth: StrokeWidth,
		ClipRadius:  l.radius - clipInset,
		Shapes:      make([]Shape, 0, 4+BarCount),
	}

	scene.Shapes = append(scene.Shapes,
		Shape{Kind: KindArc, Arc: &Arc{
			Center:      l.center,
			Radius:      l.radius,
			StrokeWidth: StrokeWidth,
			Sweep:       1,
			Stroke:      ColorInk,
			Opacity:     trackOpacity,
		}},
		Shape{Kind: KindArc, Arc: &Arc{
			Center:      l.center,
			Radius:      l.radius,
			StrokeWidth: StrokeWidth,
			Sweep:       frac,
			Rotation:    -90,
			DashArray:   []float64{frac * circ, circ},
			DashOffset:  circ * 0.25,
			Stroke:      ColorInk,
			Opacity:     1,
		}},
	)

	for i, h := range barHeights {
		origin := l.barOrigin(i, h)
		shown := i < visible
		r := &Rect{
			Index:     i,
			X:         origin.X,
			Y:         origin.Y,
			Width:     l.drawnBarWidth,
			Height:    h / 100 * l.chartHeight,
			HeightPct: h,
			Visible:   shown,
			Fill:      Transparent,
		}
		if shown {
			r.Opacity = 1
			r.ScaleY = 1
			r.Fill = ColorInk
		}
		scene.Shapes = append(scene.Shapes, Shape{Kind: KindRect, Rect: r})
	}

	if progress == 0 {
		return scene
	}

	points := make([]geom.Point, visible)
	for i := range points {
		points[i] = l.linePoint(i)
	}
	scene.Shapes = append(scene.Shapes, Shape{Kind: KindPolyline, Polyline: &Polyline{
		Points:      points,
		StrokeWidth: lineWidth,
		Stroke:      ColorAccent,
	}})

	tip := points[len(points)-1]
	angle := 0.0
	if len(points) > 1 {
		angle = geom.Angle(points[len(points)-2], tip)
	}
	cos, sin := math.Cos(angle), math.Sin(angle)
	scene.Shapes = append(scene.Shapes, Shape{Kind: KindPolygon, Polygon: &Polygon{
		Points: []geom.Point{
			tip,
			{X: tip.X - arrowLength*cos + arrowWidth*sin, Y: tip.Y - arrowLength*sin - arrowWidth*cos},
			{X: tip.X - arrowLength*cos - arrowWidth*sin, Y: tip.Y - arrowLength*sin + arrowWidth*cos},
		},
		Angle:       angle,
		Translate:   geom.Pt(arrowNudge*cos, arrowNudge*sin),
		Scale:       frac,
		Opacity:     frac,
		Fill:        ColorAccent,
		StrokeWidth: arrowStroke,
	}})

	return scene
}

// layout holds the size-derived measurements shared by every shape.
type layout struct {
	center        geom.Point
	radius        float64
	barWidth      float64
	drawnBarWidth float64
	chartHeight   float64
}

func newLayout(size float64) layout {
	r := size/2 - StrokeWidth/2
	bw := (2*r - 2*barInset) / BarCount
	return layout{
		center:        geom.Pt(size*centerFraction, size*centerFraction),
		radius:        r,
		barWidth:      bw,
		drawnBarWidth: bw - barGap,
		chartHeight:   2*r - clipInset,
	}
}

func (l layout) barOrigin(i int, heightPct float64) geom.Point {
	x := l.center.X - l.radius + barInset + float64(i)*l.barWidth
	y := l.center.Y + l.radius - barBaseline - heightPct/100*l.chartHeight
	return geom.Pt(x, y)
}

func (l layout) linePoint(i int) geom.Point {
	bar := l.barOrigin(i, barHeights[i])
	pf := float64(i) / float64(BarCount-1)
	x := bar.X + l.drawnBarWidth/2 + pf*lineSpan
	if i == 0 {
		x -= lineLeadIn
	}
	y := bar.Y - math.Sin(pf*math.Pi)*lineBow
	return geom.Pt(x, y)
}

func clamp(progress int) int {
	switch {
	case progress < 0:
		return 0
	case progress > 100:
		return 100
	}
	return progress
}
