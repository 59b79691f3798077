// Package cli provides the command-line interface for srsbot.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/raphaelgruber/srsbot/internal/client"
	"github.com/raphaelgruber/srsbot/internal/config"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose   bool
	serverURL string

	// Global config and API client
	cfg       config.Config
	apiClient *client.Client
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "srsbot",
	Short: "Turn a project conversation into an SRS document",
	Long: `srsbot talks to a running srsbot-server. Describe your project in a chat
session and ask for a document, summary or report at any point to receive a
Software Requirements Specification as a .docx file.

Offline commands (render) work without a server.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()

		url := cfg.ServerURL
		if serverURL != "" {
			url = serverURL
		}
		apiClient = client.New(url)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, defaultTheme.errorStyle().Render("Error: "+err.Error()))
	}
	return err
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "server base URL (default $SRSBOT_SERVER_URL or http://localhost:8484)")

	// Add subcommands
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(usageCmd)
}

// createOutput opens path for writing, or returns stdout for "-".
func createOutput(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	f, err := os.Create(path) // #nosec G304 - path is a user-supplied output file
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, nil
}

// readInput reads path, or stdin for "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path) // #nosec G304 - path is a user-supplied input file
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
