package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/jfoltran/growthgraph/internal/animation"
)

var statusAPIAddr string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the intro animation state of a running server",
	Long:  `Status queries a running "growthgraph serve" and reports its phase and progress.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := &http.Client{Timeout: 5 * time.Second}
		snap, err := fetchStatus(client, statusAPIAddr)
		if err != nil {
			fmt.Println("No growthgraph server reachable. Is \"growthgraph serve\" running?")
			fmt.Printf("  (error: %v)\n", err)
			return nil
		}

		fmt.Printf("Phase:        %s\n", snap.Phase())
		fmt.Printf("Elapsed:      %.1fs\n", snap.ElapsedSec)
		fmt.Printf("Progress:     %d%%\n", snap.Progress)
		fmt.Printf("Bars:         %d/%d visible\n", snap.Scene.VisibleCount(), len(snap.Scene.Bars()))
		fmt.Printf("Size:         %g px\n", snap.Scene.Size)
		if a := snap.Scene.Arrowhead(); a != nil {
			fmt.Printf("Arrow:        %.1f° scale %.2f\n", a.Angle*180/math.Pi, a.Scale)
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().StringVar(&statusAPIAddr, "api-addr", "http://localhost:7654", "Address of growthgraph API")
	rootCmd.AddCommand(statusCmd)
}

func fetchStatus(client *http.Client, addr string) (*animation.Snapshot, error) {
	resp, err := client.Get(addr + "/api/v1/status")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var snap animation.Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
