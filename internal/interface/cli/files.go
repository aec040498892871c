package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/minjae-ko/docchat/internal/core/files"
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "Manage documents in the backend registry",
}

var filesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List uploaded documents",
	RunE:  runFilesList,
}

var filesUploadCmd = &cobra.Command{
	Use:   "upload <path>...",
	Short: "Upload and index documents",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFilesUpload,
}

var filesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a document and its index entries",
	Args:  cobra.ExactArgs(1),
	RunE:  runFilesDelete,
}

var filesDownloadCmd = &cobra.Command{
	Use:   "download <id>",
	Short: "Download a document's raw bytes",
	Args:  cobra.ExactArgs(1),
	RunE:  runFilesDownload,
}

var (
	filterType  string
	filterDate  string
	downloadOut string
)

func init() {
	rootCmd.AddCommand(filesCmd)
	filesCmd.AddCommand(filesListCmd)
	filesCmd.AddCommand(filesUploadCmd)
	filesCmd.AddCommand(filesDeleteCmd)
	filesCmd.AddCommand(filesDownloadCmd)

	filesListCmd.Flags().StringVar(&filterType, "type", "", "Only show documents of this type")
	filesListCmd.Flags().StringVar(&filterDate, "date", "", "Only show documents from this date (250830, 2025-08-30, yesterday...)")
	filesDownloadCmd.Flags().StringVarP(&downloadOut, "output", "o", "", "Output path (default: the document's filename)")
}

func runFilesList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	listing, stats, err := newClient(cfg).ListFiles(context.Background())
	if err != nil {
		return fmt.Errorf("failed to load file list: %w", err)
	}

	filter := files.Filter{DocType: filterType}
	if filterDate != "" {
		bucket, err := files.ParseDateBucket(filterDate, time.Now())
		if err != nil {
			return err
		}
		filter.Date = bucket
	}
	visible := filter.Apply(listing)

	if len(visible) == 0 {
		if filter.Active() {
			fmt.Println("No documents match the given filters.")
		} else {
			fmt.Println("No documents uploaded yet.")
		}
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tTYPE\tTITLE\tSIZE")
	for _, f := range visible {
		date := "-"
		if f.Date != "" {
			date = files.FormatDate(f.Date)
		}
		docType := f.DocType
		if docType == "" {
			docType = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			f.ID, date, docType, f.DisplayTitle(), humanize.Bytes(uint64(f.Size)))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if stats != nil {
		fmt.Printf("\n%d documents indexed", stats.TotalCount)
		for docType, count := range stats.ByDocType {
			fmt.Printf(" • %s: %d", docType, count)
		}
		fmt.Println()
	}
	return nil
}

func runFilesUpload(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client := newClient(cfg)

	for _, path := range args {
		result, err := client.Upload(context.Background(), path)
		if err != nil {
			return fmt.Errorf("upload %s: %w", filepath.Base(path), err)
		}
		fmt.Printf("Indexed %s (%d chunks)\n", result.Filename, result.ChunksCount)
	}
	return nil
}

func runFilesDelete(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := newClient(cfg).DeleteFile(context.Background(), args[0]); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	fmt.Println("Deleted", args[0])
	return nil
}

func runFilesDownload(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client := newClient(cfg)

	dest := downloadOut
	if dest == "" {
		// Resolve the filename from the registry so the download is not
		// saved under its opaque id.
		listing, _, err := client.ListFiles(context.Background())
		if err != nil {
			return fmt.Errorf("failed to load file list: %w", err)
		}
		for _, f := range listing {
			if f.ID == args[0] {
				dest = filepath.Base(f.Filename)
				break
			}
		}
		if dest == "" {
			dest = args[0]
		}
	}

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := client.Download(context.Background(), args[0], out); err != nil {
		_ = os.Remove(dest)
		return fmt.Errorf("download failed: %w", err)
	}
	fmt.Println("Saved", dest)
	return nil
}
