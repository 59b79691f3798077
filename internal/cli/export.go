package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export an HTML chat transcript through the server",
	Long: `Send an HTML chat transcript to the server's export endpoint and save the
returned attachment. Transcripts larger than 10 MB are rejected.

Examples:
  srsbot export chat.html
  srsbot export chat.html -o archive/chat_export.html`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "chat_export.html", "output file")
}

func runExport(cmd *cobra.Command, args []string) error {
	content, err := readInput(args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	out, err := createOutput(exportOutput)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := apiClient.ExportChat(ctx, string(content), out); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	if exportOutput != "-" {
		fmt.Fprintln(cmd.OutOrStdout(), defaultTheme.successStyle().Render("✓ Exported to "+exportOutput))
	}
	return nil
}
