package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jfoltran/growthgraph/internal/animation"
	"github.com/jfoltran/growthgraph/internal/config"
	"github.com/jfoltran/growthgraph/internal/graph"
)

func TestApplyExplicitFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	f := cmd.Flags()
	f.Float64Var(&flagSize, "size", 300, "")
	f.StringVar(&flagLevel, "log-level", "info", "")
	f.StringVar(&flagFormat, "log-format", "console", "")

	if err := f.Parse([]string{"--size", "120", "--log-format", "json"}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	c := config.Defaults()
	c.Logging.Level = "debug"
	applyExplicitFlags(cmd, &c)

	if c.Render.Size != 120 {
		t.Errorf("Size = %v, want 120", c.Render.Size)
	}
	if c.Logging.Format != "json" {
		t.Errorf("Format = %q, want json", c.Logging.Format)
	}
	// Unset flags leave the loaded value alone.
	if c.Logging.Level != "debug" {
		t.Errorf("Level = %q, want debug", c.Logging.Level)
	}
}

func TestLoadQuizDefault(t *testing.T) {
	cfg = config.Defaults()
	q, err := loadQuiz()
	if err != nil {
		t.Fatalf("loadQuiz: %v", err)
	}
	if q.Len() != 3 {
		t.Errorf("questions = %d, want 3", q.Len())
	}
}

func TestLoadQuizFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quiz.yaml")
	data := `questions:
  - id: 1
    sentence: "Pick one"
    options: ["a", "b"]
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg = config.Defaults()
	cfg.Funnel.QuestionsFile = path

	q, err := loadQuiz()
	if err != nil {
		t.Fatalf("loadQuiz: %v", err)
	}
	if q.Len() != 1 || q.Questions[0].Sentence != "Pick one" {
		t.Errorf("quiz = %+v", q)
	}
}

func TestLoopIntroReplays(t *testing.T) {
	timing := animation.Timing{
		TickInterval: time.Millisecond,
		RevealDelay:  time.Millisecond,
		SlideDelay:   5 * time.Millisecond,
	}
	d := animation.NewDriver(timing, graph.DefaultSize, zerolog.Nop())
	defer d.Close()

	sub := d.Subscribe()
	defer d.Unsubscribe(sub)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- loopIntro(ctx, d, 5*time.Millisecond) }()

	// Wait for a completed intro followed by a rewind to zero.
	completed := false
	deadline := time.After(5 * time.Second)
	for {
		select {
		case snap := <-sub:
			if snap.Done {
				completed = true
			}
			if completed && snap.Progress == 0 {
				cancel()
				if err := <-errCh; err != nil && err != context.Canceled {
					t.Errorf("loopIntro: %v", err)
				}
				return
			}
		case <-deadline:
			cancel()
			t.Fatal("intro did not replay")
		}
	}
}

func TestCaptureLogsReachesDriver(t *testing.T) {
	saved := logger
	defer func() { logger = saved }()
	logger = zerolog.New(io.Discard).Level(zerolog.InfoLevel)

	timing := animation.Timing{
		TickInterval: time.Millisecond,
		RevealDelay:  time.Millisecond,
		SlideDelay:   time.Millisecond,
	}
	// Built from the startup logger, the way newDriver does it.
	d := animation.NewDriver(timing, graph.DefaultSize, logger)
	defer d.Close()

	var mirror bytes.Buffer
	captureLogs(d, &mirror)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var found bool
	for _, e := range d.Logs() {
		if e.Message == "graph complete" {
			found = true
			if e.Component != "animation" || e.Level != "info" {
				t.Errorf("entry = %+v, want component=animation level=info", e)
			}
		}
		if e.Level == "debug" {
			t.Errorf("debug entry %q passed an info-level logger", e.Message)
		}
	}
	if !found {
		t.Fatalf("driver logs = %+v, want a graph complete entry", d.Logs())
	}
	if !strings.Contains(mirror.String(), "graph complete") {
		t.Errorf("mirror = %q, want graph complete", mirror.String())
	}
}

func TestCaptureLogsWithoutMirror(t *testing.T) {
	saved := logger
	defer func() { logger = saved }()
	logger = zerolog.New(io.Discard)

	d := animation.NewDriver(animation.DefaultTiming(), graph.DefaultSize, zerolog.Nop())
	defer d.Close()

	l := captureLogs(d, nil)
	l.Warn().Str("component", "server").Msg("listening")

	logs := d.Logs()
	if len(logs) != 1 || logs[0].Component != "server" || logs[0].Level != "warn" {
		t.Errorf("logs = %+v", logs)
	}
}

func TestFetchStatus(t *testing.T) {
	d := animation.NewDriver(animation.DefaultTiming(), graph.DefaultSize, zerolog.Nop())
	defer d.Close()
	for i := 0; i < 60; i++ {
		d.Step()
	}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/status" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(d.Snapshot()) //nolint:errcheck
	}))
	defer ts.Close()

	client := &http.Client{Timeout: time.Second}
	snap, err := fetchStatus(client, ts.URL)
	if err != nil {
		t.Fatalf("fetchStatus: %v", err)
	}
	if snap.Progress != 60 {
		t.Errorf("Progress = %d, want 60", snap.Progress)
	}
	if snap.Scene.VisibleCount() != 3 {
		t.Errorf("visible = %d, want 3", snap.Scene.VisibleCount())
	}

	if _, err := fetchStatus(client, ts.URL+"/nope"); err == nil {
		t.Error("expected error for non-200 response")
	}
}
