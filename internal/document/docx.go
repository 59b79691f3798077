package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/gomutex/godocx"
)

const (
	// Title is the level-0 heading that opens every generated document.
	Title = "Software Requirements Specification (SRS)"

	// Filename is the download name offered to browsers.
	Filename = "SRS_Document.docx"

	// ContentType is the MIME type of .docx files.
	ContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	// MaxHeadingLevel is the deepest heading style Word provides.
	MaxHeadingLevel = 9

	// bulletStyle is the style ID (not the display name) of Word's "List Bullet".
	bulletStyle = "ListBullet"
)

// ErrHeadingLevel is returned when a heading is nested deeper than MaxHeadingLevel.
var ErrHeadingLevel = errors.New("heading level out of range")

// Write builds a Word document from nodes, preceded by title, and writes it to w.
func Write(w io.Writer, title string, nodes []Node) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("new document: %w", err)
	}

	if _, err := doc.AddHeading(title, 0); err != nil {
		return fmt.Errorf("add title: %w", err)
	}

	for i, n := range nodes {
		switch n.Kind {
		case KindHeading:
			if n.Level < 1 || n.Level > MaxHeadingLevel {
				return fmt.Errorf("node %d %q: %w: %d", i, n.Text, ErrHeadingLevel, n.Level)
			}
			if _, err := doc.AddHeading(n.Text, uint(n.Level)); err != nil {
				return fmt.Errorf("add heading %d: %w", i, err)
			}
		case KindBullet:
			p := doc.AddParagraph(n.Text)
			p.Style(bulletStyle)
		default:
			doc.AddParagraph(n.Text)
		}
	}

	if err := doc.Write(w); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

// Render parses raw SRS text and writes the resulting document to w.
func Render(w io.Writer, raw string) error {
	return Write(w, Title, Parse(raw))
}

// RenderBytes renders raw SRS text into an in-memory .docx file.
// Nothing is returned unless the whole document was built.
func RenderBytes(raw string) ([]byte, error) {
	var buf bytes.Buffer
	if err := Render(&buf, raw); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
