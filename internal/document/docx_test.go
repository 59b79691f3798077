package document

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// documentXML extracts word/document.xml from a rendered .docx.
func documentXML(t *testing.T, data []byte) string {
	t.Helper()
	return zipPart(t, data, "word/document.xml")
}

// documentBody returns the <w:body> element of word/document.xml.
// The namespace attributes on <w:document> are written in no fixed order.
func documentBody(t *testing.T, data []byte) string {
	t.Helper()

	xml := documentXML(t, data)
	start := strings.Index(xml, "<w:body>")
	end := strings.Index(xml, "</w:body>")
	require.True(t, start >= 0 && end > start, "document.xml has no body")
	return xml[start : end+len("</w:body>")]
}

// zipPart extracts the named part from a rendered .docx.
func zipPart(t *testing.T, data []byte, name string) string {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err, "rendered document should be a zip archive")

	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()

		body, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(body)
	}
	t.Fatalf("%s missing from archive", name)
	return ""
}

func TestRenderBytes_ContainsAllText(t *testing.T) {
	raw := "1. Introduction\nBooking platform for clinics.\n\n1.2 Scope\n  - Risk A\nCONSTRAINTS\nBudget is fixed"

	data, err := RenderBytes(raw)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.Equal(t, []byte("PK"), data[:2])

	body := documentXML(t, data)
	for _, want := range []string{
		Title,
		"1. Introduction",
		"Booking platform for clinics.",
		"1.2 Scope",
		"Risk A",
		"CONSTRAINTS",
		"Budget is fixed",
	} {
		assert.Contains(t, body, want)
	}
}

func TestRenderBytes_EmptyContentStillHasTitle(t *testing.T) {
	data, err := RenderBytes("")
	require.NoError(t, err)
	assert.Contains(t, documentXML(t, data), Title)
}

func TestRenderBytes_HeadingTooDeep(t *testing.T) {
	data, err := RenderBytes("Intro\n1.2.3.4.5.6.7.8.9.10 Far too deep")
	assert.ErrorIs(t, err, ErrHeadingLevel)
	assert.Nil(t, data)
}

func TestWrite_MaxLevelAccepted(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, Title, []Node{{Kind: KindHeading, Level: MaxHeadingLevel, Text: "1.2.3.4.5.6.7.8.9"}})
	require.NoError(t, err)
	assert.Greater(t, buf.Len(), 0)
}

func TestRender_SameInputSameText(t *testing.T) {
	raw := "SCOPE\n  - one\n  - two\nClosing remarks"

	first, err := RenderBytes(raw)
	require.NoError(t, err)
	second, err := RenderBytes(raw)
	require.NoError(t, err)

	assert.Equal(t, documentBody(t, first), documentBody(t, second))
}

func TestRender_BulletStyleExists(t *testing.T) {
	data, err := RenderBytes("SCOPE\n  - Risk A")
	require.NoError(t, err)

	assert.Contains(t, documentXML(t, data), `<w:pStyle w:val="`+bulletStyle+`"`)
	assert.Contains(t, zipPart(t, data, "word/styles.xml"), `w:styleId="`+bulletStyle+`"`,
		"bullet paragraphs must reference a style defined in styles.xml")
}
