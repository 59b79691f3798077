package cli

import (
	"fmt"

	"github.com/raphaelgruber/srsbot/internal/document"
	"github.com/spf13/cobra"
)

var renderOutput string

var renderCmd = &cobra.Command{
	Use:   "render <file>",
	Short: "Render SRS text into a .docx without a server",
	Long: `Render plain SRS text into a Word document using the same heading and
bullet rules as the server. Use "-" to read from stdin.

Examples:
  srsbot render srs.txt
  srsbot render srs.txt -o project.docx
  cat srs.txt | srsbot render - -o project.docx`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", document.Filename, "output file")
}

func runRender(cmd *cobra.Command, args []string) error {
	raw, err := readInput(args[0])
	if err != nil {
		return err
	}

	data, err := document.RenderBytes(string(raw))
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	out, err := createOutput(renderOutput)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", renderOutput, err)
	}

	if verbose {
		nodes := document.Parse(string(raw))
		fmt.Fprintf(cmd.ErrOrStderr(), "Rendered %d blocks\n", len(nodes))
	}
	if renderOutput != "-" {
		fmt.Fprintln(cmd.OutOrStdout(), defaultTheme.successStyle().Render("✓ Wrote "+renderOutput))
	}
	return nil
}
