package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ragdesk/pkg/metrics"
)

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show backend document and system counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.gateway.Health(cmd.Context()); err != nil {
				color.Red("backend unreachable: counts may be stale")
			}

			poller := metrics.NewPoller(metrics.PollerConfig{
				Source:    app.gateway,
				RateLimit: app.config.Poll.RateLimit,
			})
			snap := poller.FetchOnce(cmd.Context())
			printSnapshot(snap)
			return nil
		},
	}
}

func dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Continuously refresh backend metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			poller := metrics.NewPoller(metrics.PollerConfig{
				Source:    app.gateway,
				Interval:  secondsDuration(app.config.Poll.Interval),
				RateLimit: app.config.Poll.RateLimit,
				OnUpdate: func(snap metrics.Snapshot) {
					fmt.Print("\033[H\033[2J")
					color.Cyan("ragdesk dashboard - %s (Ctrl-C to stop)\n",
						snap.FetchedAt.Format("15:04:05"))
					printSnapshot(snap)
				},
			})
			poller.Run(ctx)
			return nil
		},
	}
}

func printSnapshot(snap metrics.Snapshot) {
	header := color.New(color.FgCyan, color.Bold).PrintfFunc()

	header("Documents\n")
	fmt.Printf("  documents: %d\n  chunks:    %d\n", snap.Stats.Documents, snap.Stats.Chunks)
	if snap.Stats.System != "" {
		fmt.Printf("  system:    %s\n", snap.Stats.System)
	}

	header("\nQuantum coherence\n")
	fmt.Printf("  coherence threshold: %.2f\n", snap.Quantum.CoherenceThreshold)

	header("\nSwarm\n")
	fmt.Printf("  agents: %d  consensus: %.2f  %s\n",
		snap.Swarm.TotalAgents, snap.Swarm.ConsensusThreshold, statusLabel(snap.Swarm.Status))
	for name, count := range snap.Swarm.SpecializationDistribution {
		fmt.Printf("    %-16s %d\n", name, count)
	}

	header("\nHolographic storage\n")
	fmt.Printf("  stored: %d  matrix: %.1f MB  compression: %.2fx  density: %s  %s\n",
		snap.Holographic.DocumentsStored, snap.Holographic.MatrixSizeMB,
		snap.Holographic.CompressionRatio, snap.Holographic.HologramDensity,
		statusLabel(snap.Holographic.Status))

	header("\nNeuromorphic memory\n")
	fmt.Printf("  weights: %d  associations: %d  decay: %.2f  window: %s  %s\n",
		snap.Neuromorphic.SynapticWeights, snap.Neuromorphic.Associations,
		snap.Neuromorphic.DecayRate, snap.Neuromorphic.PlasticityWindow,
		statusLabel(snap.Neuromorphic.Status))
}

func statusLabel(status string) string {
	switch status {
	case "", "active":
		return color.GreenString("online")
	default:
		return color.YellowString(status)
	}
}
