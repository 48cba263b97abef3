package graph

import (
	"math"

	"github.com/jfoltran/growthgraph/pkg/geom"
)

// Kind tags the payload carried by a Shape.
type Kind string

const (
	KindArc      Kind = "arc"
	KindRect     Kind = "rect"
	KindPolyline Kind = "polyline"
	KindPolygon  Kind = "polygon"
)

// Shape is one drawing primitive of a Scene. Exactly one payload is set,
// matching Kind.
type Shape struct {
	Kind     Kind      `json:"kind"`
	Arc      *Arc      `json:"arc,omitempty"`
	Rect     *Rect     `json:"rect,omitempty"`
	Polyline *Polyline `json:"polyline,omitempty"`
	Polygon  *Polygon  `json:"polygon,omitempty"`
}

// Arc is a stroked circle. When DashArray is set only the dashed portions are
// painted, following SVG stroke-dasharray/stroke-dashoffset rules along a
// path that starts at the 3 o'clock position and turns clockwise, after
// rotating the whole circle by Rotation degrees about Center.
type Arc struct {
	Center      geom.Point `json:"center"`
	Radius      float64    `json:"radius"`
	StrokeWidth float64    `json:"stroke_width"`
	Sweep       float64    `json:"sweep"`
	Rotation    float64    `json:"rotation"`
	DashArray   []float64  `json:"dash_array,omitempty"`
	DashOffset  float64    `json:"dash_offset,omitempty"`
	Stroke      string     `json:"stroke"`
	Opacity     float64    `json:"opacity"`
}

// Span is an angular interval in radians, screen orientation (clockwise
// positive, 0 at 3 o'clock).
type Span struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Circumference returns 2πr.
func (a Arc) Circumference() float64 {
	return 2 * math.Pi * a.Radius
}

// Spans returns the painted angular intervals of the arc.
func (a Arc) Spans() []Span {
	start := a.Rotation * math.Pi / 180
	if a.Radius <= 0 {
		return nil
	}
	circ := a.Circumference()

	pattern := append([]float64(nil), a.DashArray...)
	if len(pattern)%2 == 1 {
		pattern = append(pattern, pattern...)
	}
	var period float64
	for _, v := range pattern {
		period += v
	}
	if len(pattern) == 0 || period <= 0 {
		return []Span{{Start: start, End: start + 2*math.Pi}}
	}

	// Locate the pattern segment the path starts in.
	pos := math.Mod(a.DashOffset, period)
	if pos < 0 {
		pos += period
	}
	k := 0
	for pos >= pattern[k] {
		pos -= pattern[k]
		k = (k + 1) % len(pattern)
	}

	var spans []Span
	s := 0.0
	for s < circ {
		rem := pattern[k] - pos
		end := math.Min(s+rem, circ)
		if k%2 == 0 && end > s {
			spans = append(spans, Span{
				Start: start + s/a.Radius,
				End:   start + end/a.Radius,
			})
		}
		s += rem
		pos = 0
		k = (k + 1) % len(pattern)
	}
	return spans
}

// Rect is one bar of the chart.
type Rect struct {
	Index     int     `json:"index"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	HeightPct float64 `json:"height_pct"`
	Visible   bool    `json:"visible"`
	Opacity   float64 `json:"opacity"`
	ScaleY    float64 `json:"scale_y"`
	Fill      string  `json:"fill"`
}

// Polyline is the trend line through the visible bar tops.
type Polyline struct {
	Points      []geom.Point `json:"points"`
	StrokeWidth float64      `json:"stroke_width"`
	Stroke      string       `json:"stroke"`
}

// Polygon is the filled arrowhead. Points are in local coordinates; the
// painted shape is Translate + Scale*p for each point.
type Polygon struct {
	Points      []geom.Point `json:"points"`
	Angle       float64      `json:"angle"`
	Translate   geom.Point   `json:"translate"`
	Scale       float64      `json:"scale"`
	Opacity     float64      `json:"opacity"`
	Fill        string       `json:"fill"`
	StrokeWidth float64      `json:"stroke_width"`
}

// Transformed returns the points after applying Scale and Translate.
func (p Polygon) Transformed() []geom.Point {
	out := make([]geom.Point, len(p.Points))
	for i, pt := range p.Points {
		out[i] = p.Translate.Add(pt.Mul(p.Scale))
	}
	return out
}

// Scene is the complete drawing for one progress value.
type Scene struct {
	Progress    int        `json:"progress"`
	Size        float64    `json:"size"`
	ViewBox     float64    `json:"view_box"`
	Center      geom.Point `json:"center"`
	Radius      float64    `json:"radius"`
	StrokeWidth float64    `json:"stroke_width"`
	ClipRadius  float64    `json:"clip_radius"`
	Shapes      []Shape    `json:"shapes"`
}

// Track returns the background ring.
func (s Scene) Track() *Arc {
	if len(s.Shapes) > 0 {
		return s.Shapes[0].Arc
	}
	return nil
}

// ProgressArc returns the animated ring.
func (s Scene) ProgressArc() *Arc {
	if len(s.Shapes) > 1 {
		return s.Shapes[1].Arc
	}
	return nil
}

// Bars returns every bar, visible or not, in index order.
func (s Scene) Bars() []Rect {
	var out []Rect
	for _, sh := range s.Shapes {
		if sh.Kind == KindRect && sh.Rect != nil {
			out = append(out, *sh.Rect)
		}
	}
	return out
}

// VisibleCount returns how many bars are painted.
func (s Scene) VisibleCount() int {
	n := 0
	for _, b := range s.Bars() {
		if b.Visible {
			n++
		}
	}
	return n
}

// TrendLine returns the polyline, or nil when progress is zero.
func (s Scene) TrendLine() *Polyline {
	for _, sh := range s.Shapes {
		if sh.Kind == KindPolyline {
			return sh.Polyline
		}
	}
	return nil
}

// Arrowhead returns the arrow polygon, or nil when progress is zero.
func (s Scene) Arrowhead() *Polygon {
	for _, sh := range s.Shapes {
		if sh.Kind == KindPolygon {
			return sh.Polygon
		}
	}
	return nil
}
