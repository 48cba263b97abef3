package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jfoltran/growthgraph/internal/graph"
	"github.com/jfoltran/growthgraph/internal/raster"
	"github.com/jfoltran/growthgraph/internal/svg"
)

// Supported output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
)

// FrameResult holds the outcome of writing a single frame.
type FrameResult struct {
	Progress int
	Path     string
	Err      error
}

// Exporter renders animation frames in parallel and writes one file each.
type Exporter struct {
	logger zerolog.Logger

	workers    int
	format     string
	size       float64
	dir        string
	background string
}

// Options configures an Exporter.
type Options struct {
	Workers    int
	Format     string
	Size       float64
	Dir        string
	Background string
}

// New creates an Exporter. Unknown formats are rejected.
func New(opts Options, logger zerolog.Logger) (*Exporter, error) {
	switch opts.Format {
	case FormatSVG, FormatPNG, FormatJSON:
	default:
		return nil, fmt.Errorf("unsupported export format %q", opts.Format)
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if err := graph.Validate(0, opts.Size); err != nil {
		return nil, err
	}
	return &Exporter{
		logger:     logger.With().Str("component", "export").Logger(),
		workers:    opts.Workers,
		format:     opts.Format,
		size:       opts.Size,
		dir:        opts.Dir,
		background: opts.Background,
	}, nil
}

// Frames lists progress values from..to inclusive in increments of step.
func Frames(from, to, step int) ([]int, error) {
	if err := graph.Validate(from, 1); err != nil {
		return nil, fmt.Errorf("from: %w", err)
	}
	if err := graph.Validate(to, 1); err != nil {
		return nil, fmt.Errorf("to: %w", err)
	}
	if step < 1 {
		return nil, fmt.Errorf("step must be at least 1, got %d", step)
	}
	if from > to {
		return nil, fmt.Errorf("from (%d) is after to (%d)", from, to)
	}
	var out []int
	for p := from; p <= to; p += step {
		out = append(out, p)
	}
	return out, nil
}

// FileName returns the file name used for a frame.
func (e *Exporter) FileName(progress int) string {
	return fmt.Sprintf("frame_%03d.%s", progress, e.format)
}

// ExportAll writes every frame and returns one result per frame, sorted by
// progress. A failing frame does not stop the others.
func (e *Exporter) ExportAll(ctx context.Context, frames []int) []FrameResult {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		results := make([]FrameResult, len(frames))
		for i, p := range frames {
			results[i] = FrameResult{Progress: p, Err: fmt.Errorf("create output dir: %w", err)}
		}
		return results
	}

	work := make(chan int, len(frames))
	for _, p := range frames {
		work <- p
	}
	close(work)

	var (
		mu      sync.Mutex
		results []FrameResult
		wg      sync.WaitGroup
	)

	for i := 0; i < e.workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for p := range work {
				result := e.exportFrame(ctx, p, workerID)
				mu.Lock()
				results = append(results, result)
				mu.Unlock()
			}
		}(i)
	}

	wg.Wait()
	sort.Slice(results, func(i, j int) bool { return results[i].Progress < results[j].Progress })
	return results
}

func (e *Exporter) exportFrame(ctx context.Context, progress, workerID int) FrameResult {
	if err := ctx.Err(); err != nil {
		return FrameResult{Progress: progress, Err: err}
	}
	if err := graph.Validate(progress, e.size); err != nil {
		return FrameResult{Progress: progress, Err: err}
	}

	path := filepath.Join(e.dir, e.FileName(progress))
	scene := graph.Render(progress, e.size)

	f, err := os.Create(path)
	if err != nil {
		return FrameResult{Progress: progress, Err: fmt.Errorf("create %s: %w", path, err)}
	}
	defer f.Close()

	err = Encode(f, scene, e.format, e.background)
	if err == nil {
		err = f.Close()
	}
	if err != nil {
		return FrameResult{Progress: progress, Path: path, Err: fmt.Errorf("write frame %d: %w", progress, err)}
	}

	e.logger.Debug().Int("progress", progress).Int("worker", workerID).Str("path", path).Msg("frame written")
	return FrameResult{Progress: progress, Path: path}
}

// Encode writes scene to w in format. background only applies to PNG.
func Encode(w io.Writer, scene graph.Scene, format, background string) error {
	switch format {
	case FormatSVG:
		return svg.Encode(w, scene)
	case FormatPNG:
		return raster.EncodePNG(w, scene, raster.Options{Background: background})
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(scene)
	}
	return fmt.Errorf("unsupported export format %q", format)
}
