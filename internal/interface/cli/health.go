package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/minjae-ko/docchat/internal/core/status"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check whether the backend is reachable",
	RunE:  runHealth,
}

var healthWatch bool

func init() {
	rootCmd.AddCommand(healthCmd)

	healthCmd.Flags().BoolVar(&healthWatch, "watch", false, "Keep polling until interrupted")
}

func runHealth(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client := newClient(cfg)

	if !healthWatch {
		h, err := client.Health(context.Background())
		state := status.Classify(h, err)
		fmt.Printf("%s: %s\n", cfg.ServerURL, state)
		if state != status.Online {
			os.Exit(1)
		}
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	monitor := status.NewMonitor(client, cfg.PollInterval)
	for state := range monitor.Run(ctx) {
		fmt.Printf("%s: %s\n", cfg.ServerURL, state)
	}
	return nil
}
