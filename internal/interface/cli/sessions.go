package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/minjae-ko/docchat/internal/core/export"
	"github.com/minjae-ko/docchat/internal/core/models"
	"github.com/minjae-ko/docchat/internal/core/store"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage locally stored chats",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored chats, newest first",
	RunE:  runSessionsList,
}

var sessionsExportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Export a chat transcript as markdown",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsExport,
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored chat",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsDelete,
}

var exportOut string

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsExportCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)

	sessionsExportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "Output path (default: stdout)")
}

func openStore() (*store.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	st, err := store.Open(cfg.StorePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open chat store: %w", err)
	}
	if loadErr := st.LoadErr(); loadErr != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", loadErr)
	}
	return st, nil
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	sessions := st.Sessions()
	if len(sessions) == 0 {
		fmt.Println("No chats stored yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tMESSAGES\tUPDATED")
	for _, sess := range sessions {
		marker := " "
		if sess.ID == st.ActiveID() {
			marker = "*"
		}
		fmt.Fprintf(w, "%s%s\t%s\t%d\t%s\n",
			marker, sess.ID, sess.Title, len(sess.Messages), humanize.Time(sess.UpdatedAt))
	}
	return w.Flush()
}

func runSessionsExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := store.Open(cfg.StorePath)
	if err != nil {
		return fmt.Errorf("failed to open chat store: %w", err)
	}
	defer st.Close()

	var target *models.Session
	for _, sess := range st.Sessions() {
		if sess.ID == args[0] {
			target = sess
			break
		}
	}
	if target == nil {
		return fmt.Errorf("no chat with id %q", args[0])
	}

	rendered, err := export.Render(cfg.ExportTemplate, target)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if exportOut == "" {
		fmt.Print(rendered)
		return nil
	}
	if err := os.WriteFile(exportOut, []byte(rendered), 0o644); err != nil {
		return err
	}
	fmt.Println("Saved", exportOut)
	return nil
}

func runSessionsDelete(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	found := false
	for _, sess := range st.Sessions() {
		if sess.ID == args[0] {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("no chat with id %q", args[0])
	}

	if err := st.DeleteSession(args[0]); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	fmt.Println("Deleted", args[0])
	return nil
}
