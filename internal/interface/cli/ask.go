package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/minjae-ko/docchat/internal/core/models"
	"github.com/minjae-ko/docchat/internal/core/store"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a single question against the indexed documents",
	Long: `Ask one question and print the answer with its source citations.

Examples:
  docchat ask "What is the refund policy?"
  docchat ask --save "Summarize the Q2 report"
  docchat ask --json "What changed in the handbook?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

var (
	askJSON bool
	askSave bool
)

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().BoolVar(&askJSON, "json", false, "Print the raw response as JSON")
	askCmd.Flags().BoolVar(&askSave, "save", false, "Record the exchange as a new chat")
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	question := strings.Join(args, " ")
	client := newClient(cfg)

	result, err := client.Query(context.Background(), question)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if askSave {
		if err := saveExchange(cfg.StorePath, question, result.Answer, result.Sources, result.HasAnswer); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not save chat: %v\n", err)
		}
	}

	if askJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Println(result.Answer)
	if !result.HasAnswer {
		fmt.Println("\n(no grounded answer found in the documents)")
	}
	if len(result.Sources) > 0 {
		fmt.Println("\nSources:")
		for _, src := range result.Sources {
			line := fmt.Sprintf("  - %s, page %d", src.Filename, src.Page)
			if src.Type == "table" {
				line += " [table]"
			}
			fmt.Println(line)
		}
	}
	return nil
}

func saveExchange(storePath, question, answer string, sources []models.Source, hasAnswer bool) error {
	st, err := store.Open(storePath)
	if err != nil {
		return err
	}
	defer st.Close()

	sess, err := st.CreateSession()
	if err != nil {
		return err
	}

	log := []models.Message{
		models.UserMessage(question),
		{Role: models.RoleAssistant, Content: answer, Sources: sources, HasAnswer: &hasAnswer},
	}
	return st.AppendExchange(sess.ID, log)
}
