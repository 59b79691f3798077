package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/raphaelgruber/srsbot/internal/client"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	chatSession     string
	chatDownloadDir string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	Long: `Start an interactive conversation with the SRS assistant.

Each line you type is sent as one message. Ask for a document, report,
summary or SRS to have one generated from the conversation so far.
Type /quit or press Ctrl+D to leave.

Examples:
  srsbot chat
  srsbot chat --session my-project
  srsbot chat --download-dir ./docs`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatSession, "session", "s", "", "session id (default: a new random id)")
	chatCmd.Flags().StringVarP(&chatDownloadDir, "download-dir", "d", "", "save generated documents to this directory")
}

func runChat(cmd *cobra.Command, args []string) error {
	session := chatSession
	if session == "" {
		session = uuid.NewString()
	}

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	if interactive {
		fmt.Println(defaultTheme.hintStyle().Render(
			fmt.Sprintf("Session %s on %s. Type /quit to leave.", session, apiClient.BaseURL())))
	}

	r := &repl{
		client:      apiClient,
		session:     session,
		downloadDir: chatDownloadDir,
		out:         cmd.OutOrStdout(),
		prompt:      interactive,
	}
	return r.run(cmd.Context(), cmd.InOrStdin())
}

// repl reads messages line by line and prints the assistant's replies.
type repl struct {
	client      *client.Client
	session     string
	downloadDir string
	out         io.Writer
	prompt      bool
}

func (r *repl) run(ctx context.Context, in io.Reader) error {
	if ctx == nil {
		ctx = context.Background()
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		if r.prompt {
			fmt.Fprint(r.out, defaultTheme.userStyle().Render("you> "))
		}
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		}

		if err := r.send(ctx, line); err != nil {
			var apiErr *client.APIError
			if errors.As(err, &apiErr) {
				fmt.Fprintln(r.out, defaultTheme.errorStyle().Render(apiErr.Message))
				continue
			}
			return err
		}
	}
	return scanner.Err()
}

func (r *repl) send(ctx context.Context, message string) error {
	reply, err := r.client.Chat(ctx, r.session, message)
	if err != nil {
		return err
	}

	fmt.Fprintln(r.out, defaultTheme.assistantStyle().Render(plainLinks(reply.Response)))

	if reply.DocumentID == "" || r.downloadDir == "" {
		return nil
	}
	path, err := r.download(ctx, reply.DocumentID)
	if err != nil {
		fmt.Fprintln(r.out, defaultTheme.errorStyle().Render("Download failed: "+err.Error()))
		return nil
	}
	fmt.Fprintln(r.out, defaultTheme.successStyle().Render("✓ Saved "+path))
	return nil
}

func (r *repl) download(ctx context.Context, id string) (string, error) {
	if err := os.MkdirAll(r.downloadDir, 0755); err != nil {
		return "", fmt.Errorf("create download directory: %w", err)
	}
	path := filepath.Join(r.downloadDir, documentFilename(id))

	f, err := os.Create(path) // #nosec G304 - path is built from the download directory flag
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if _, err := r.client.DownloadDocument(ctx, id, f); err != nil {
		return "", err
	}
	return path, nil
}

// documentFilename names a downloaded document after its id.
func documentFilename(id string) string {
	return "SRS_" + id + ".docx"
}

var anchorRe = regexp.MustCompile(`<a href='([^']*)'[^>]*>[^<]*</a>`)

// plainLinks replaces HTML anchors in a reply with their target URL.
func plainLinks(s string) string {
	return anchorRe.ReplaceAllString(s, "$1")
}
