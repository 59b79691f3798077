package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var downloadOutput string

var downloadCmd = &cobra.Command{
	Use:   "download <id>",
	Short: "Download a generated document",
	Long: `Download a generated SRS document by id.

Examples:
  srsbot download 6f1c2a9e-...
  srsbot download 6f1c2a9e-... -o project.docx`,
	Args: cobra.ExactArgs(1),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().StringVarP(&downloadOutput, "output", "o", "", "output file (default SRS_<id>.docx)")
}

func runDownload(cmd *cobra.Command, args []string) error {
	id := args[0]
	path := downloadOutput
	if path == "" {
		path = documentFilename(id)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	out, err := createOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()

	n, err := apiClient.DownloadDocument(ctx, id, out)
	if err != nil {
		return fmt.Errorf("download %s: %w", id, err)
	}

	if path != "-" {
		fmt.Fprintln(cmd.OutOrStdout(), defaultTheme.successStyle().Render(fmt.Sprintf("✓ Saved %s (%d bytes)", path, n)))
	}
	return nil
}
