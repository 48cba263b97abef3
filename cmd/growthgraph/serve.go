package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jfoltran/growthgraph/internal/animation"
	"github.com/jfoltran/growthgraph/internal/funnel"
	"github.com/jfoltran/growthgraph/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the intro page, render API and onboarding funnel",
	Long: `Serve starts the HTTP server. The intro animation loops on the server
and is pushed to browsers over a WebSocket; frames can also be fetched as
SVG, PNG or JSON, and the onboarding quiz is exposed as a small REST API.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = servePort
		}
		quiz, err := loadQuiz()
		if err != nil {
			return err
		}

		driver := newDriver()
		defer driver.Close()

		// Mirror logs into the driver so /api/v1/logs can show them.
		logger = captureLogs(driver, logOutput)

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		go func() {
			if err := loopIntro(ctx, driver, cfg.Animation.RestartDelay); err != nil && ctx.Err() == nil {
				logger.Err(err).Msg("animation loop stopped")
			}
		}()

		srv := server.New(driver, funnel.NewStore(quiz), &cfg, logger)
		logger.Info().Str("url", fmt.Sprintf("http://%s", cfg.Server.Addr())).Msg("intro page ready")
		return srv.Start(ctx, cfg.Server.Addr())
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 7654, "HTTP server port")
	rootCmd.AddCommand(serveCmd)
}

func newDriver() *animation.Driver {
	timing := animation.Timing{
		TickInterval: cfg.Animation.TickInterval,
		RevealDelay:  cfg.Animation.RevealDelay,
		SlideDelay:   cfg.Animation.SlideDelay,
	}
	return animation.NewDriver(timing, cfg.Render.Size, logger)
}

// captureLogs builds a logger that records into d's log buffer, teeing to
// mirror when it is non-nil, and hands it to d.
func captureLogs(d *animation.Driver, mirror io.Writer) zerolog.Logger {
	var w io.Writer = animation.NewLogWriter(d)
	if mirror != nil {
		w = zerolog.MultiLevelWriter(mirror, w)
	}
	l := zerolog.New(w).With().Timestamp().Logger().Level(logger.GetLevel())
	d.SetLogger(l)
	return l
}

// loopIntro replays the intro after restartDelay each time it completes.
func loopIntro(ctx context.Context, d *animation.Driver, restartDelay time.Duration) error {
	for {
		if err := d.Run(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(restartDelay):
		}
		d.Reset()
	}
}
