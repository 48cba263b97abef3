package graph

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

const eps = 1e-9

func TestVisibleBars_Monotone(t *testing.T) {
	prev := 0
	for p := 0; p <= 100; p++ {
		n := VisibleBars(p)
		if n < 0 || n > BarCount {
			t.Fatalf("VisibleBars(%d) = %d, out of [0,%d]", p, n, BarCount)
		}
		if n < prev {
			t.Fatalf("VisibleBars(%d) = %d, decreased from %d", p, n, prev)
		}
		prev = n
	}
}

func TestVisibleBars_Steps(t *testing.T) {
	tests := []struct {
		progress int
		want     int
	}{
		{0, 0}, {1, 1}, {20, 1}, {21, 2}, {40, 2}, {41, 3},
		{60, 3}, {61, 4}, {80, 4}, {81, 5}, {100, 5},
		{-5, 0}, {250, 5},
	}
	for _, tt := range tests {
		if got := VisibleBars(tt.progress); got != tt.want {
			t.Errorf("VisibleBars(%d) = %d, want %d", tt.progress, got, tt.want)
		}
	}
}

func TestRender_ZeroProgress(t *testing.T) {
	s := Render(0, 300)
	if s.VisibleCount() != 0 {
		t.Errorf("visible bars = %d, want 0", s.VisibleCount())
	}
	if s.TrendLine() != nil {
		t.Error("trend line should be absent at progress 0")
	}
	if s.Arrowhead() != nil {
		t.Error("arrowhead should be absent at progress 0")
	}
	if len(s.Shapes) != 2+BarCount {
		t.Errorf("shape count = %d, want %d", len(s.Shapes), 2+BarCount)
	}
	for _, b := range s.Bars() {
		if b.Opacity != 0 || b.Fill != Transparent {
			t.Errorf("bar %d should be transparent, got opacity %v fill %q", b.Index, b.Opacity, b.Fill)
		}
	}
}

func TestRender_FullProgress(t *testing.T) {
	s := Render(100, 300)
	if s.VisibleCount() != BarCount {
		t.Errorf("visible bars = %d, want %d", s.VisibleCount(), BarCount)
	}
	line := s.TrendLine()
	if line == nil || len(line.Points) != BarCount {
		t.Fatalf("trend line = %+v, want %d points", line, BarCount)
	}
	arrow := s.Arrowhead()
	if arrow == nil {
		t.Fatal("arrowhead missing at progress 100")
	}
	if arrow.Opacity != 1 || arrow.Scale != 1 {
		t.Errorf("arrow opacity/scale = %v/%v, want 1/1", arrow.Opacity, arrow.Scale)
	}
	if arrow.Points[0] != line.Points[len(line.Points)-1] {
		t.Errorf("arrow tip %v != last line point %v", arrow.Points[0], line.Points[len(line.Points)-1])
	}
}

func TestRender_SingleBar(t *testing.T) {
	s := Render(20, 300)
	if s.VisibleCount() != 1 {
		t.Errorf("visible bars = %d, want 1", s.VisibleCount())
	}
	line := s.TrendLine()
	if line == nil || len(line.Points) != 1 {
		t.Fatalf("trend line = %+v, want 1 point", line)
	}
	arrow := s.Arrowhead()
	if arrow == nil {
		t.Fatal("arrowhead missing at progress 20")
	}
	if arrow.Angle != 0 {
		t.Errorf("single point arrow angle = %v, want 0", arrow.Angle)
	}
	if math.Abs(arrow.Scale-0.2) > eps || math.Abs(arrow.Opacity-0.2) > eps {
		t.Errorf("arrow scale/opacity = %v/%v, want 0.2", arrow.Scale, arrow.Opacity)
	}
}

func TestRender_ArrowAngleTwoBars(t *testing.T) {
	s := Render(40, 300)
	line := s.TrendLine()
	if line == nil || len(line.Points) != 2 {
		t.Fatalf("trend line = %+v, want 2 points", line)
	}
	a, b := line.Points[0], line.Points[1]
	want := math.Atan2(b.Y-a.Y, b.X-a.X)
	if got := s.Arrowhead().Angle; math.Abs(got-want) > eps {
		t.Errorf("arrow angle = %v, want %v", got, want)
	}
	tr := s.Arrowhead().Translate
	if math.Abs(tr.X-25*math.Cos(want)) > eps || math.Abs(tr.Y-25*math.Sin(want)) > eps {
		t.Errorf("arrow translate = %v", tr)
	}
}

func TestRender_SweepIndependentOfSize(t *testing.T) {
	for _, size := range []float64{50, 300, 1024} {
		for _, p := range []int{0, 13, 50, 99, 100} {
			arc := Render(p, size).ProgressArc()
			if arc == nil {
				t.Fatalf("progress arc missing (size %v)", size)
			}
			if math.Abs(arc.Sweep-float64(p)/100) > eps {
				t.Errorf("size %v progress %d: sweep = %v", size, p, arc.Sweep)
			}
			if math.Abs(arc.DashArray[0]/arc.Circumference()-float64(p)/100) > eps {
				t.Errorf("size %v progress %d: dash fraction = %v", size, p, arc.DashArray[0]/arc.Circumference())
			}
		}
	}
}

func TestRender_Deterministic(t *testing.T) {
	for p := 0; p <= 100; p += 7 {
		a, b := Render(p, 240), Render(p, 240)
		if !reflect.DeepEqual(a, b) {
			t.Fatalf("Render(%d, 240) not deterministic", p)
		}
	}
}

func TestRender_Geometry(t *testing.T) {
	s := Render(100, 300)
	if s.Center.X != 180 || s.Center.Y != 180 {
		t.Errorf("center = %v, want (180,180)", s.Center)
	}
	if s.Radius != 144 {
		t.Errorf("radius = %v, want 144", s.Radius)
	}
	if s.ClipRadius != 124 {
		t.Errorf("clip radius = %v, want 124", s.ClipRadius)
	}
	if s.ViewBox != 360 {
		t.Errorf("view box = %v, want 360", s.ViewBox)
	}

	// barWidth = (288-28)/5 = 52, chart height = 268.
	bars := s.Bars()
	first := bars[0]
	if math.Abs(first.X-50) > eps {
		t.Errorf("bar 0 x = %v, want 50", first.X)
	}
	if math.Abs(first.Width-48) > eps {
		t.Errorf("bar width = %v, want 48", first.Width)
	}
	if math.Abs(first.Height-0.6*268) > eps {
		t.Errorf("bar 0 height = %v, want %v", first.Height, 0.6*268)
	}
	if math.Abs(first.Y+first.Height-314) > eps {
		t.Errorf("bar 0 bottom = %v, want 314", first.Y+first.Height)
	}
	if math.Abs(bars[4].X-(50+4*52)) > eps {
		t.Errorf("bar 4 x = %v", bars[4].X)
	}

	pts := s.TrendLine().Points
	if want := 50 + 24 - 15.0; math.Abs(pts[0].X-want) > eps || math.Abs(pts[0].Y-first.Y) > eps {
		t.Errorf("line point 0 = %v, want (%v, %v)", pts[0], want, first.Y)
	}
	// Middle point carries the full bow.
	mid := bars[2]
	if want := mid.X + 24 + 17.5; math.Abs(pts[2].X-want) > eps {
		t.Errorf("line point 2 x = %v, want %v", pts[2].X, want)
	}
	if want := mid.Y - 15; math.Abs(pts[2].Y-want) > eps {
		t.Errorf("line point 2 y = %v, want %v", pts[2].Y, want)
	}
}

func TestRender_LineNeverPassesVisibleBars(t *testing.T) {
	for p := 0; p <= 100; p++ {
		s := Render(p, 300)
		n := 0
		if line := s.TrendLine(); line != nil {
			n = len(line.Points)
		}
		if n != s.VisibleCount() {
			t.Fatalf("progress %d: %d line points for %d visible bars", p, n, s.VisibleCount())
		}
	}
}

func TestRender_ClampsAndDefaults(t *testing.T) {
	if got := Render(-10, 300).Progress; got != 0 {
		t.Errorf("clamped progress = %d, want 0", got)
	}
	if got := Render(140, 300).Progress; got != 100 {
		t.Errorf("clamped progress = %d, want 100", got)
	}
	if got := Render(50, 1e12).Size; got != MaxSize {
		t.Errorf("Render(50, 1e12).Size = %v, want %v", got, MaxSize)
	}
	if got := Render(50, 0).Size; got != DefaultSize {
		t.Errorf("size = %v, want default %v", got, DefaultSize)
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(50, 300); err != nil {
		t.Errorf("Validate(50, 300) = %v", err)
	}
	if err := Validate(101, 300); !errors.Is(err, ErrProgressRange) {
		t.Errorf("Validate(101, 300) = %v, want ErrProgressRange", err)
	}
	err := Validate(-1, -3)
	if !errors.Is(err, ErrProgressRange) || !errors.Is(err, ErrSize) {
		t.Errorf("Validate(-1, -3) = %v, want both errors", err)
	}
	for _, size := range []float64{math.NaN(), math.Inf(1), MaxSize + 0.5, 60000, 1e12} {
		if err := Validate(10, size); !errors.Is(err, ErrSize) {
			t.Errorf("Validate(10, %v) = %v, want ErrSize", size, err)
		}
	}
	if err := Validate(10, MaxSize); err != nil {
		t.Errorf("Validate(10, MaxSize) = %v", err)
	}
}

func TestArcSpans(t *testing.T) {
	full := Render(0, 300).Track().Spans()
	if len(full) != 1 || math.Abs(full[0].End-full[0].Start-2*math.Pi) > eps {
		t.Errorf("track spans = %v, want one full turn", full)
	}

	if spans := Render(0, 300).ProgressArc().Spans(); len(spans) != 0 {
		t.Errorf("progress 0 spans = %v, want none", spans)
	}

	// With a quarter-turn offset a full dash paints from 12 o'clock for three
	// quarters of the circle.
	spans := Render(100, 300).ProgressArc().Spans()
	if len(spans) != 1 {
		t.Fatalf("progress 100 spans = %v, want 1", spans)
	}
	if math.Abs(spans[0].Start+math.Pi/2) > eps || math.Abs(spans[0].End-math.Pi) > eps {
		t.Errorf("progress 100 span = %+v, want [-π/2, π]", spans[0])
	}

	total := func(sp []Span) float64 {
		var sum float64
		for _, s := range sp {
			sum += s.End - s.Start
		}
		return sum
	}
	// Painted length never exceeds the dash length.
	for p := 1; p <= 100; p++ {
		arc := Render(p, 300).ProgressArc()
		if got, max := total(arc.Spans())*arc.Radius, arc.DashArray[0]; got > max+eps {
			t.Fatalf("progress %d: painted %v > dash %v", p, got, max)
		}
	}
}

func TestBarHeightsCopy(t *testing.T) {
	h := BarHeights()
	h[0] = 0
	if BarHeights()[0] != 60 {
		t.Error("BarHeights must return a copy")
	}
}
