package svg

import (
	"bytes"
	"encoding/xml"
	"errors"
	"strings"
	"testing"

	"github.com/jfoltran/growthgraph/internal/graph"
	"github.com/jfoltran/growthgraph/pkg/geom"
)

type element struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Kids    []element  `xml:",any"`
}

func (e element) attr(name string) string {
	for _, a := range e.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func (e element) walk(fn func(element)) {
	fn(e)
	for _, k := range e.Kids {
		k.walk(fn)
	}
}

func parse(t *testing.T, doc []byte) element {
	t.Helper()
	var root element
	if err := xml.Unmarshal(doc, &root); err != nil {
		t.Fatalf("invalid svg: %v\n%s", err, doc)
	}
	return root
}

func count(root element, local string) int {
	n := 0
	root.walk(func(e element) {
		if e.XMLName.Local == local {
			n++
		}
	})
	return n
}

func TestMarshal_Progress(t *testing.T) {
	tests := []struct {
		progress    int
		visible     int
		wantPath    bool
		wantPolygon bool
	}{
		{0, 0, false, false},
		{20, 1, true, true},
		{55, 3, true, true},
		{100, 5, true, true},
	}
	for _, tt := range tests {
		root := parse(t, Marshal(graph.Render(tt.progress, 300)))

		if got := count(root, "rect"); got != graph.BarCount {
			t.Errorf("progress %d: rect count = %d, want %d", tt.progress, got, graph.BarCount)
		}
		opaque := 0
		root.walk(func(e element) {
			if e.XMLName.Local == "rect" && strings.HasPrefix(e.attr("style"), "opacity:1;") {
				opaque++
			}
		})
		if opaque != tt.visible {
			t.Errorf("progress %d: opaque rects = %d, want %d", tt.progress, opaque, tt.visible)
		}
		if got := count(root, "path") == 1; got != tt.wantPath {
			t.Errorf("progress %d: path present = %v, want %v", tt.progress, got, tt.wantPath)
		}
		if got := count(root, "polygon") == 1; got != tt.wantPolygon {
			t.Errorf("progress %d: polygon present = %v, want %v", tt.progress, got, tt.wantPolygon)
		}
	}
}

func TestMarshal_RootAndRing(t *testing.T) {
	root := parse(t, Marshal(graph.Render(50, 300)))
	if root.XMLName.Local != "svg" {
		t.Fatalf("root = %s, want svg", root.XMLName.Local)
	}
	if got := root.attr("viewBox"); got != "0 0 360 360" {
		t.Errorf("viewBox = %q", got)
	}
	if got := root.attr("width"); got != "300" {
		t.Errorf("width = %q", got)
	}

	var rotated []element
	root.walk(func(e element) {
		if e.XMLName.Local == "circle" && e.attr("transform") != "" {
			rotated = append(rotated, e)
		}
	})
	if len(rotated) != 1 {
		t.Fatalf("rotated circles = %d, want 1", len(rotated))
	}
	if got := rotated[0].attr("transform"); got != "rotate(-90 180 180)" {
		t.Errorf("transform = %q", got)
	}
	if rotated[0].attr("stroke-dasharray") == "" || rotated[0].attr("stroke-dashoffset") == "" {
		t.Error("progress circle must carry dash attributes")
	}
}

func TestEncoder_ClipPrefixAndTransitions(t *testing.T) {
	var buf bytes.Buffer
	enc := Encoder{ClipPrefix: "intro-", Transitions: true}
	if err := enc.Encode(&buf, graph.Render(100, 200)); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `id="intro-circleClip"`) || !strings.Contains(out, "url(#intro-innerCircleClip)") {
		t.Errorf("clip ids not prefixed:\n%s", out)
	}
	if !strings.Contains(out, "transition:all") {
		t.Error("expected transitions in output")
	}
	parse(t, buf.Bytes())
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestEncode_WriteError(t *testing.T) {
	if err := Encode(failWriter{}, graph.Render(10, 100)); err == nil {
		t.Error("expected write error")
	}
}

func TestPathData(t *testing.T) {
	if got := PathData(nil); got != "" {
		t.Errorf("PathData(nil) = %q", got)
	}
	got := PathData([]geom.Point{geom.Pt(1, 2), geom.Pt(3.5, 4)})
	if got != "M1,2 L3.5,4" {
		t.Errorf("PathData = %q", got)
	}
}
