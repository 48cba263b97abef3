package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jfoltran/growthgraph/internal/funnel"
	"github.com/jfoltran/growthgraph/internal/server"
	"github.com/jfoltran/growthgraph/internal/tui"
)

var tuiAPIPort int

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Play the intro and onboarding quiz in the terminal",
	Long: `TUI starts a Bubble Tea program that draws the growth graph as it
animates, then walks through the onboarding questions.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		quiz, err := loadQuiz()
		if err != nil {
			return err
		}

		driver := newDriver()
		defer driver.Close()

		// Route logs into the TUI panel instead of stderr behind the alt screen.
		logger = captureLogs(driver, nil)

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		go func() {
			if err := loopIntro(ctx, driver, cfg.Animation.RestartDelay); err != nil && ctx.Err() == nil {
				logger.Err(err).Msg("animation loop stopped")
			}
		}()

		if tuiAPIPort > 0 {
			cfg.Server.Port = tuiAPIPort
			srv := server.New(driver, funnel.NewStore(quiz), &cfg, logger)
			srv.StartBackground(ctx, cfg.Server.Addr())
		}

		return tui.Run(driver, quiz, cfg.Animation.IntroDuration)
	},
}

func init() {
	tuiCmd.Flags().IntVar(&tuiAPIPort, "api-port", 0, "Also serve the HTTP API on this port (0 = disabled)")
	rootCmd.AddCommand(tuiCmd)
}
