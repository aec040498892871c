package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/minjae-ko/docchat/internal/core/api"
	"github.com/minjae-ko/docchat/internal/core/config"
)

var (
	serverURL   string
	storePath   string
	versionInfo string
)

// SetVersion sets the version information from build-time ldflags
func SetVersion(version, commit, date string) {
	versionInfo = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
	rootCmd.Version = versionInfo
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "docchat",
	Short: "Terminal client for a private document Q&A backend",
	Long: `docchat - chat with your documents from the terminal

A client for an on-premise RAG backend: upload documents, browse the
registry, and ask questions answered from the indexed content with
source citations. Chat history is kept locally.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default to TUI if no subcommand specified
		return tuiCmd.RunE(cmd, args)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Backend base URL (default "+config.DefaultServerURL+")")
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "", "Chat store path (default ~/.config/docchat/sessions.db)")
}

// loadConfig merges the config file with command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if serverURL != "" {
		cfg.ServerURL = serverURL
	}
	if storePath != "" {
		cfg.StorePath = storePath
	}
	return cfg, nil
}

func newClient(cfg *config.Config) *api.Client {
	return api.New(cfg.ServerURL, cfg.RequestTimeout)
}
