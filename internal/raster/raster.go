// Package raster paints a graph.Scene into a bitmap and encodes it as PNG.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/vector"

	"github.com/jfoltran/growthgraph/internal/graph"
	"github.com/jfoltran/growthgraph/pkg/geom"
)

// Options controls rasterization.
type Options struct {
	// Background is a hex color painted under the scene. Empty keeps the
	// canvas transparent.
	Background string
}

// Draw paints s onto a size×size canvas with a transparent background.
func Draw(s graph.Scene) (*image.RGBA, error) {
	return DrawWith(s, Options{})
}

// EncodePNG writes s as a PNG image.
func EncodePNG(w io.Writer, s graph.Scene, opts Options) error {
	img, err := DrawWith(s, opts)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// DrawWith paints s using opts.
func DrawWith(s graph.Scene, opts Options) (*image.RGBA, error) {
	if !(s.Size <= graph.MaxSize) {
		return nil, fmt.Errorf("rasterize: %w: got %v", graph.ErrSize, s.Size)
	}
	px := int(math.Round(s.Size))
	if px < 1 {
		px = 1
	}
	c := &canvas{
		img:   image.NewRGBA(image.Rect(0, 0, px, px)),
		scale: float64(px) / s.ViewBox,
	}

	if opts.Background != "" {
		bg, err := parseColor(opts.Background, 1)
		if err != nil {
			return nil, err
		}
		draw.Draw(c.img, c.img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	}

	if err := c.arc(s.Track()); err != nil {
		return nil, err
	}
	if err := c.arc(s.ProgressArc()); err != nil {
		return nil, err
	}
	if err := c.bars(s); err != nil {
		return nil, err
	}
	if err := c.line(s.TrendLine()); err != nil {
		return nil, err
	}
	if err := c.arrow(s.Arrowhead()); err != nil {
		return nil, err
	}
	return c.img, nil
}

type canvas struct {
	img   *image.RGBA
	scale float64
}

func (c *canvas) newMask() (*image.Alpha, *vector.Rasterizer) {
	b := c.img.Bounds()
	return image.NewAlpha(b), vector.NewRasterizer(b.Dx(), b.Dy())
}

// paint composites col through mask onto the canvas.
func (c *canvas) paint(mask *image.Alpha, col color.Color) {
	draw.DrawMask(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{}, mask, image.Point{}, draw.Over)
}

// path appends a closed polygon in user coordinates. When positive is set the
// winding is normalised so overlapping pieces accumulate instead of cancel.
func (c *canvas) path(z *vector.Rasterizer, pts []geom.Point, positive bool) {
	if len(pts) < 3 {
		return
	}
	if positive && geom.SignedArea(pts) < 0 {
		rev := make([]geom.Point, len(pts))
		for i, p := range pts {
			rev[len(pts)-1-i] = p
		}
		pts = rev
	}
	z.MoveTo(float32(pts[0].X*c.scale), float32(pts[0].Y*c.scale))
	for _, p := range pts[1:] {
		z.LineTo(float32(p.X*c.scale), float32(p.Y*c.scale))
	}
	z.ClosePath()
}

func (c *canvas) arc(a *graph.Arc) error {
	if a == nil || a.Opacity <= 0 {
		return nil
	}
	col, err := parseColor(a.Stroke, a.Opacity)
	if err != nil {
		return err
	}
	mask, z := c.newMask()
	outer := a.Radius + a.StrokeWidth/2
	inner := math.Max(a.Radius-a.StrokeWidth/2, 0)
	for _, sp := range a.Spans() {
		n := c.steps(outer, sp.End-sp.Start)
		ring := make([]geom.Point, 0, 2*(n+1))
		for i := 0; i <= n; i++ {
			ring = append(ring, geom.Polar(a.Center, outer, sp.Start+(sp.End-sp.Start)*float64(i)/float64(n)))
		}
		for i := n; i >= 0; i-- {
			ring = append(ring, geom.Polar(a.Center, inner, sp.Start+(sp.End-sp.Start)*float64(i)/float64(n)))
		}
		c.path(z, ring, false)
	}
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	c.paint(mask, col)
	return nil
}

func (c *canvas) bars(s graph.Scene) error {
	clip, z := c.newMask()
	c.path(z, c.circle(s.Center, s.ClipRadius), true)
	z.Draw(clip, clip.Bounds(), image.Opaque, image.Point{})

	for _, r := range s.Bars() {
		if !r.Visible || r.Opacity <= 0 || r.ScaleY <= 0 {
			continue
		}
		col, err := parseColor(r.Fill, r.Opacity)
		if err != nil {
			return err
		}
		// scaleY pivots on the bar's bottom edge.
		h := r.Height * r.ScaleY
		bottom := r.Y + r.Height
		mask, z := c.newMask()
		c.path(z, []geom.Point{
			geom.Pt(r.X, bottom-h),
			geom.Pt(r.X+r.Width, bottom-h),
			geom.Pt(r.X+r.Width, bottom),
			geom.Pt(r.X, bottom),
		}, true)
		z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
		for i := range mask.Pix {
			mask.Pix[i] = uint8(uint16(mask.Pix[i]) * uint16(clip.Pix[i]) / 255)
		}
		c.paint(mask, col)
	}
	return nil
}

func (c *canvas) line(l *graph.Polyline) error {
	// A lone moveto paints nothing, even with round caps.
	if l == nil || len(l.Points) < 2 {
		return nil
	}
	col, err := parseColor(l.Stroke, 1)
	if err != nil {
		return err
	}
	mask, z := c.newMask()
	c.stroke(z, l.Points, l.StrokeWidth, false)
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	c.paint(mask, col)
	return nil
}

func (c *canvas) arrow(p *graph.Polygon) error {
	if p == nil || p.Opacity <= 0 || p.Scale <= 0 {
		return nil
	}
	col, err := parseColor(p.Fill, p.Opacity)
	if err != nil {
		return err
	}
	pts := p.Transformed()
	mask, z := c.newMask()
	c.path(z, pts, true)
	c.stroke(z, pts, p.StrokeWidth*p.Scale, true)
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	c.paint(mask, col)
	return nil
}

// stroke appends a round-joined outline of width w along pts.
func (c *canvas) stroke(z *vector.Rasterizer, pts []geom.Point, w float64, closed bool) {
	half := w / 2
	n := len(pts)
	segs := n - 1
	if closed {
		segs = n
	}
	for i := 0; i < segs; i++ {
		a, b := pts[i], pts[(i+1)%n]
		d := b.Sub(a)
		length := math.Hypot(d.X, d.Y)
		if length == 0 {
			continue
		}
		nrm := geom.Pt(-d.Y/length*half, d.X/length*half)
		c.path(z, []geom.Point{a.Add(nrm), b.Add(nrm), b.Sub(nrm), a.Sub(nrm)}, true)
	}
	for _, p := range pts {
		c.path(z, c.circle(p, half), true)
	}
}

func (c *canvas) circle(center geom.Point, r float64) []geom.Point {
	n := c.steps(r, 2*math.Pi)
	pts := make([]geom.Point, n)
	for i := range pts {
		pts[i] = geom.Polar(center, r, 2*math.Pi*float64(i)/float64(n))
	}
	return pts
}

// steps picks a segment count keeping chords around two pixels long.
func (c *canvas) steps(r, sweep float64) int {
	n := int(math.Ceil(math.Abs(sweep) * r * c.scale / 2))
	if n < 8 {
		n = 8
	}
	return n
}

func parseColor(hex string, opacity float64) (color.Color, error) {
	if hex == graph.Transparent {
		return color.Transparent, nil
	}
	cf, err := colorful.Hex(hex)
	if err != nil {
		return nil, fmt.Errorf("parse color %q: %w", hex, err)
	}
	r, g, b := cf.RGB255()
	a := math.Max(0, math.Min(1, opacity))
	return color.NRGBA{R: r, G: g, B: b, A: uint8(math.Round(a * 255))}, nil
}
