// Package document turns synthesized SRS text into a structured Word document.
package document

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind classifies a line of synthesized text.
type Kind int

const (
	KindParagraph Kind = iota
	KindHeading
	KindBullet
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindHeading:
		return "heading"
	case KindBullet:
		return "bullet"
	default:
		return "paragraph"
	}
}

// Node is one structural element of a rendered document.
type Node struct {
	Kind  Kind
	Level int // Heading level; zero for bullets and paragraphs
	Text  string
}

// bulletIndent marks a list item.
const bulletIndent = "  "

// Parse classifies every non-blank line of raw, in order.
//
// A line is a heading when its first character is a digit or when it is
// entirely uppercase. A heading containing "." gets one level per
// "."-separated segment ("1.2.3 Foo" is level 3); otherwise uppercase
// headings are level 1 and the rest level 2. Other lines indented by at
// least two spaces are bullets, everything else is a paragraph.
//
// The rules are intentionally simple and must stay stable: previously
// generated documents are re-rendered from their raw text on every download.
func Parse(raw string) []Node {
	var nodes []Node
	for _, line := range strings.Split(raw, "\n") {
		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}
		nodes = append(nodes, classify(line, text))
	}
	return nodes
}

// classify decides the node for a non-blank line. Both checks run on the
// untrimmed line, so an indented "  1. Step" is a bullet, not a heading.
func classify(line, text string) Node {
	upper := isUpper(line)
	if startsWithDigit(line) || upper {
		return Node{Kind: KindHeading, Level: headingLevel(line, upper), Text: text}
	}
	if strings.HasPrefix(line, bulletIndent) {
		return Node{Kind: KindBullet, Text: text}
	}
	return Node{Kind: KindParagraph, Text: text}
}

func headingLevel(line string, upper bool) int {
	if strings.Contains(line, ".") {
		return strings.Count(line, ".") + 1
	}
	if upper {
		return 1
	}
	return 2
}

func startsWithDigit(line string) bool {
	r, _ := utf8.DecodeRuneInString(line)
	return r != utf8.RuneError && unicode.IsDigit(r)
}

// isUpper reports whether s has at least one cased letter and no lowercase
// or titlecase letters.
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		switch {
		case unicode.IsLower(r), unicode.IsTitle(r):
			return false
		case unicode.IsUpper(r):
			cased = true
		}
	}
	return cased
}
