package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/minjae-ko/docchat/internal/core/store"
	"github.com/minjae-ko/docchat/internal/interface/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive chat and file browser",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.StorePath)
	if err != nil {
		return fmt.Errorf("failed to open chat store: %w", err)
	}
	defer st.Close()

	if loadErr := st.LoadErr(); loadErr != nil {
		fmt.Fprintf(os.Stderr, "warning: %v (starting with an empty chat list)\n", loadErr)
	}

	model := tui.New(cfg, newClient(cfg), st)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
