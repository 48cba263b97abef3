package animation

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfoltran/growthgraph/internal/graph"
)

// Timing controls the intro sequence.
type Timing struct {
	TickInterval time.Duration
	RevealDelay  time.Duration
	SlideDelay   time.Duration
}

// DefaultTiming matches the splash screen: fade in after 100ms, one progress
// step every 20ms, slide away after 5s.
func DefaultTiming() Timing {
	return Timing{
		TickInterval: 20 * time.Millisecond,
		RevealDelay:  100 * time.Millisecond,
		SlideDelay:   5 * time.Second,
	}
}

// Snapshot is the animation state at a point in time.
type Snapshot struct {
	Timestamp  time.Time   `json:"timestamp"`
	Progress   int         `json:"progress"`
	Visible    bool        `json:"visible"`
	Sliding    bool        `json:"sliding"`
	Done       bool        `json:"done"`
	ElapsedSec float64     `json:"elapsed_sec"`
	Scene      graph.Scene `json:"scene"`
}

// Phase names the stage of the intro for display.
func (s Snapshot) Phase() string {
	switch {
	case s.Sliding:
		return "sliding"
	case s.Progress >= 100:
		return "complete"
	case s.Visible:
		return "drawing"
	}
	return "pending"
}

// LogEntry represents a log line captured for the UI.
type LogEntry struct {
	Time      time.Time         `json:"time"`
	Level     string            `json:"level"`
	Component string            `json:"component,omitempty"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// Driver advances the graph progress on a fixed tick and fans snapshots out
// to subscribers. The renderer is called fresh for every snapshot.
type Driver struct {
	logger zerolog.Logger
	timing Timing
	size   float64

	mu        sync.RWMutex
	progress  int
	visible   bool
	sliding   bool
	startedAt time.Time

	restart chan struct{}

	subMu       sync.Mutex
	subscribers map[chan Snapshot]struct{}

	logMu  sync.Mutex
	logs   []LogEntry
	logCap int

	done      chan struct{}
	closeOnce sync.Once
}

// NewDriver creates a Driver rendering at the given canvas size.
func NewDriver(timing Timing, size float64, logger zerolog.Logger) *Driver {
	return &Driver{
		logger:      logger.With().Str("component", "animation").Logger(),
		timing:      timing,
		size:        size,
		restart:     make(chan struct{}, 1),
		subscribers: make(map[chan Snapshot]struct{}),
		logs:        make([]LogEntry, 0, 500),
		logCap:      500,
		done:        make(chan struct{}),
	}
}

// SetLogger replaces the driver's logger. Call it before Run.
func (d *Driver) SetLogger(logger zerolog.Logger) {
	d.logger = logger.With().Str("component", "animation").Logger()
}

// Size returns the canvas size scenes are rendered at.
func (d *Driver) Size() float64 {
	return d.size
}

// Run drives one intro sequence. It returns nil once progress has reached 100
// and the slide has fired, ctx.Err() when cancelled, or nil after Close.
// Reset re-arms all timers of a running sequence.
func (d *Driver) Run(ctx context.Context) error {
	d.mu.Lock()
	if d.startedAt.IsZero() {
		d.startedAt = time.Now()
	}
	d.mu.Unlock()

	var reveal, slide *time.Timer
	var ticker *time.Ticker
	arm := func() {
		stopTimers(reveal, slide, ticker)
		reveal = time.NewTimer(d.timing.RevealDelay)
		slide = time.NewTimer(d.timing.SlideDelay)
		ticker = time.NewTicker(d.timing.TickInterval)
	}
	arm()
	defer func() { stopTimers(reveal, slide, ticker) }()

	tickC := ticker.C
	revealC := reveal.C
	slideC := slide.C

	d.logger.Debug().Dur("tick", d.timing.TickInterval).Msg("animation started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-d.done:
			return nil
		case <-d.restart:
			arm()
			tickC, revealC, slideC = ticker.C, reveal.C, slide.C
			d.logger.Debug().Msg("animation restarted")
		case <-revealC:
			revealC = nil
			d.mu.Lock()
			d.visible = true
			d.mu.Unlock()
			d.publish()
		case <-tickC:
			if !d.Step() {
				ticker.Stop()
				tickC = nil
				d.logger.Info().Msg("graph complete")
				if slideC == nil {
					return nil
				}
			}
		case <-slideC:
			slideC = nil
			d.mu.Lock()
			d.sliding = true
			complete := d.progress >= 100
			d.mu.Unlock()
			d.publish()
			d.logger.Debug().Msg("intro sliding away")
			if complete {
				return nil
			}
		}
	}
}

func stopTimers(reveal, slide *time.Timer, ticker *time.Ticker) {
	if reveal != nil {
		reveal.Stop()
	}
	if slide != nil {
		slide.Stop()
	}
	if ticker != nil {
		ticker.Stop()
	}
}

// Step advances progress by one and publishes the new frame. It reports false
// once progress has saturated at 100.
func (d *Driver) Step() bool {
	d.mu.Lock()
	if d.progress >= 100 {
		d.mu.Unlock()
		return false
	}
	d.progress++
	d.mu.Unlock()
	d.publish()
	return true
}

// Reset rewinds the animation to its initial state. A running sequence
// restarts its timers.
func (d *Driver) Reset() {
	d.mu.Lock()
	d.progress = 0
	d.visible = false
	d.sliding = false
	d.startedAt = time.Now()
	d.mu.Unlock()

	select {
	case d.restart <- struct{}{}:
	default:
	}
	d.publish()
}

// Progress returns the current progress value.
func (d *Driver) Progress() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.progress
}

// Snapshot returns the current state with a freshly rendered scene.
func (d *Driver) Snapshot() Snapshot {
	d.mu.RLock()
	progress, visible, sliding, started := d.progress, d.visible, d.sliding, d.startedAt
	d.mu.RUnlock()

	now := time.Now()
	var elapsed float64
	if !started.IsZero() {
		elapsed = now.Sub(started).Seconds()
	}
	return Snapshot{
		Timestamp:  now,
		Progress:   progress,
		Visible:    visible,
		Sliding:    sliding,
		Done:       progress >= 100 && sliding,
		ElapsedSec: elapsed,
		Scene:      graph.Render(progress, d.size),
	}
}

// Subscribe returns a channel that receives a Snapshot on every change.
func (d *Driver) Subscribe() chan Snapshot {
	ch := make(chan Snapshot, 4)
	d.subMu.Lock()
	d.subscribers[ch] = struct{}{}
	d.subMu.Unlock()
	return ch
}

// Unsubscribe removes a subscription channel.
func (d *Driver) Unsubscribe(ch chan Snapshot) {
	d.subMu.Lock()
	delete(d.subscribers, ch)
	d.subMu.Unlock()
}

// Close stops a running sequence. It is safe to call more than once.
func (d *Driver) Close() {
	d.closeOnce.Do(func() { close(d.done) })
}

func (d *Driver) publish() {
	d.subMu.Lock()
	defer d.subMu.Unlock()
	if len(d.subscribers) == 0 {
		return
	}
	snap := d.Snapshot()
	for ch := range d.subscribers {
		select {
		case ch <- snap:
		default:
			// Subscriber too slow, skip.
		}
	}
}

// AddLog appends a log entry to the ring buffer.
func (d *Driver) AddLog(entry LogEntry) {
	d.logMu.Lock()
	defer d.logMu.Unlock()
	if len(d.logs) >= d.logCap {
		// Drop oldest quarter.
		n := d.logCap / 4
		copy(d.logs, d.logs[n:])
		d.logs = d.logs[:len(d.logs)-n]
	}
	d.logs = append(d.logs, entry)
}

// Logs returns a copy of recent log entries.
func (d *Driver) Logs() []LogEntry {
	d.logMu.Lock()
	defer d.logMu.Unlock()
	out := make([]LogEntry, len(d.logs))
	copy(out, d.logs)
	return out
}
