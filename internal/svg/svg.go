// Package svg serialises a graph.Scene as a standalone SVG document.
package svg

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/jfoltran/growthgraph/internal/graph"
	"github.com/jfoltran/growthgraph/pkg/geom"
)

// Encoder writes scenes as SVG.
type Encoder struct {
	// ClipPrefix namespaces the clipPath ids so several documents can be
	// inlined in one page.
	ClipPrefix string

	// Transitions adds CSS transitions so that a browser animates between
	// successive frames patched into the same element.
	Transitions bool
}

// Encode writes s to w using the default encoder.
func Encode(w io.Writer, s graph.Scene) error {
	return Encoder{}.Encode(w, s)
}

// Marshal returns the SVG document for s.
func Marshal(s graph.Scene) []byte {
	var buf bytes.Buffer
	Encoder{}.write(&buf, s)
	return buf.Bytes()
}

// Encode writes s to w.
func (e Encoder) Encode(w io.Writer, s graph.Scene) error {
	var buf bytes.Buffer
	e.write(&buf, s)
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

func (e Encoder) write(b *bytes.Buffer, s graph.Scene) {
	f := geom.FormatFloat
	outer := e.ClipPrefix + "circleClip"
	inner := e.ClipPrefix + "innerCircleClip"
	cx, cy := f(s.Center.X), f(s.Center.Y)

	fmt.Fprintf(b, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`,
		f(s.Size), f(s.Size), f(s.ViewBox), f(s.ViewBox))
	b.WriteString("\n<defs>")
	fmt.Fprintf(b, `<clipPath id="%s"><circle cx="%s" cy="%s" r="%s"/></clipPath>`, outer, cx, cy, f(s.Radius))
	fmt.Fprintf(b, `<clipPath id="%s"><circle cx="%s" cy="%s" r="%s"/></clipPath>`, inner, cx, cy, f(s.ClipRadius))
	b.WriteString("</defs>\n")

	if track := s.Track(); track != nil {
		e.writeArc(b, track, "1s")
	}
	if arc := s.ProgressArc(); arc != nil {
		e.writeArc(b, arc, "1s")
	}

	fmt.Fprintf(b, `<g clip-path="url(#%s)"><g clip-path="url(#%s)">`, outer, inner)
	b.WriteByte('\n')
	for _, r := range s.Bars() {
		scale := 0
		if r.Visible {
			scale = 1
		}
		fmt.Fprintf(b, `<rect x="%s" y="%s" width="%s" height="%s" fill="%s" style="opacity:%s;transform:scaleY(%d);transform-origin:bottom%s"/>`,
			f(r.X), f(r.Y), f(r.Width), f(r.Height), r.Fill, f(r.Opacity), scale, e.transition("0.3s"))
		b.WriteByte('\n')
	}
	b.WriteString("</g></g>\n")

	if line := s.TrendLine(); line != nil {
		fmt.Fprintf(b, `<path d="%s" fill="none" stroke="%s" stroke-width="%s" stroke-linecap="round" stroke-linejoin="round"%s/>`,
			PathData(line.Points), line.Stroke, f(line.StrokeWidth), e.styleAttr(""))
		b.WriteByte('\n')
	}

	if arrow := s.Arrowhead(); arrow != nil {
		pts := make([]string, len(arrow.Points))
		for i, p := range arrow.Points {
			pts[i] = f(p.X) + "," + f(p.Y)
		}
		fmt.Fprintf(b, `<polygon points="%s" fill="%s" stroke="%s" stroke-width="%s" style="opacity:%s;transform:translate(%spx, %spx) scale(%s)%s"/>`,
			strings.Join(pts, " "), arrow.Fill, arrow.Fill, f(arrow.StrokeWidth),
			f(arrow.Opacity), f(arrow.Translate.X), f(arrow.Translate.Y), f(arrow.Scale), e.transition("0.3s"))
		b.WriteByte('\n')
	}

	b.WriteString("</svg>\n")
}

func (e Encoder) writeArc(b *bytes.Buffer, a *graph.Arc, duration string) {
	f := geom.FormatFloat
	fmt.Fprintf(b, `<circle cx="%s" cy="%s" r="%s" fill="none" stroke="%s" stroke-width="%s"`,
		f(a.Center.X), f(a.Center.Y), f(a.Radius), a.Stroke, f(a.StrokeWidth))
	if a.Opacity != 1 {
		fmt.Fprintf(b, ` opacity="%s"`, f(a.Opacity))
	}
	if len(a.DashArray) > 0 {
		dash := make([]string, len(a.DashArray))
		for i, d := range a.DashArray {
			dash[i] = f(d)
		}
		fmt.Fprintf(b, ` stroke-dasharray="%s" stroke-dashoffset="%s"`, strings.Join(dash, " "), f(a.DashOffset))
	}
	if a.Rotation != 0 {
		fmt.Fprintf(b, ` transform="rotate(%s %s %s)"`, f(a.Rotation), f(a.Center.X), f(a.Center.Y))
	}
	if len(a.DashArray) > 0 {
		b.WriteString(e.styleAttr(duration))
	}
	b.WriteString("/>\n")
}

// transition returns a style fragment appended inside an existing style
// attribute.
func (e Encoder) transition(d string) string {
	if !e.Transitions {
		return ""
	}
	return ";transition:all " + d + " ease-in-out"
}

func (e Encoder) styleAttr(d string) string {
	if !e.Transitions {
		return ""
	}
	if d == "" {
		d = "0.3s"
	}
	return ` style="transition:all ` + d + ` ease-in-out"`
}

// PathData returns the "M x,y Lx,y …" path for a polyline, or "" for no
// points.
func PathData(pts []geom.Point) string {
	if len(pts) == 0 {
		return ""
	}
	parts := make([]string, len(pts))
	for i, p := range pts {
		parts[i] = geom.FormatFloat(p.X) + "," + geom.FormatFloat(p.Y)
	}
	return "M" + strings.Join(parts, " L")
}
