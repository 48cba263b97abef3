package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jfoltran/growthgraph/internal/export"
)

var (
	exportFrom    int
	exportTo      int
	exportStep    int
	exportWorkers int
	exportFormat  string
	exportOutDir  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write animation frames to a directory",
	Long: `Export renders every progress value from --from to --to in steps of
--step and writes one file per frame, using parallel workers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := export.Options{
			Workers:    cfg.Export.Workers,
			Format:     cfg.Render.Format,
			Size:       cfg.Render.Size,
			Dir:        cfg.Export.OutDir,
			Background: cfg.Render.Background,
		}
		if cmd.Flags().Changed("workers") {
			opts.Workers = exportWorkers
		}
		if cmd.Flags().Changed("format") {
			opts.Format = exportFormat
		}
		if cmd.Flags().Changed("out-dir") {
			opts.Dir = exportOutDir
		}

		frames, err := export.Frames(exportFrom, exportTo, exportStep)
		if err != nil {
			return err
		}
		ex, err := export.New(opts, logger)
		if err != nil {
			return err
		}

		logger.Info().
			Int("frames", len(frames)).
			Int("workers", opts.Workers).
			Str("format", opts.Format).
			Str("dir", opts.Dir).
			Msg("exporting frames")

		var errs []error
		for _, r := range ex.ExportAll(cmd.Context(), frames) {
			if r.Err != nil {
				errs = append(errs, r.Err)
				continue
			}
			fmt.Println(r.Path)
		}
		if len(errs) > 0 {
			return fmt.Errorf("%d of %d frames failed: %w", len(errs), len(frames), errors.Join(errs...))
		}
		return nil
	},
}

func init() {
	f := exportCmd.Flags()
	f.IntVar(&exportFrom, "from", 0, "First progress value")
	f.IntVar(&exportTo, "to", 100, "Last progress value")
	f.IntVar(&exportStep, "step", 1, "Progress increment between frames")
	f.IntVar(&exportWorkers, "workers", 4, "Number of parallel render workers")
	f.StringVar(&exportFormat, "format", "svg", "Frame format (svg, png, json)")
	f.StringVar(&exportOutDir, "out-dir", "frames", "Output directory")
	rootCmd.AddCommand(exportCmd)
}
