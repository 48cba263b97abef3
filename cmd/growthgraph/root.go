package main

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jfoltran/growthgraph/internal/config"
	"github.com/jfoltran/growthgraph/internal/funnel"
)

var (
	cfg       config.Config
	logger    zerolog.Logger
	logOutput io.Writer

	configPath string
	flagLevel  string
	flagFormat string
	flagSize   float64
)

var rootCmd = &cobra.Command{
	Use:   "growthgraph",
	Short: "Procedural progress-graph renderer",
	Long: `growthgraph draws the animated growth chart used on the landing page:
a progress ring around five bars with a trend line and arrowhead.
It renders single frames, exports whole animations, serves the intro
page with its onboarding quiz, and plays both in the terminal.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		applyExplicitFlags(cmd, &cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}

		switch cfg.Logging.Format {
		case "json":
			logOutput = os.Stdout
		default:
			logOutput = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		}
		logger = zerolog.New(logOutput).With().Timestamp().Logger()

		level, err := zerolog.ParseLevel(cfg.Logging.Level)
		if err != nil {
			level = zerolog.InfoLevel
		}
		logger = logger.Level(level)

		return nil
	},
}

func init() {
	f := rootCmd.PersistentFlags()

	f.StringVar(&configPath, "config", "", "Config file (default ~/.growthgraph/config.toml)")
	f.Float64Var(&flagSize, "size", 300, "Canvas size in pixels")

	// Logging flags.
	f.StringVar(&flagLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	f.StringVar(&flagFormat, "log-format", "console", "Log format (console, json)")
}

// applyExplicitFlags lets flags the user actually set win over the config
// file and environment.
func applyExplicitFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("size") {
		c.Render.Size = flagSize
	}
	if flags.Changed("log-level") {
		c.Logging.Level = flagLevel
	}
	if flags.Changed("log-format") {
		c.Logging.Format = flagFormat
	}
}

// loadQuiz returns the configured question file, or the built-in quiz.
func loadQuiz() (funnel.Quiz, error) {
	return funnel.LoadQuiz(cfg.Funnel.QuestionsFile)
}
