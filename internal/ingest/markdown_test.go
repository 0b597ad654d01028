package ingest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractMarkdownTextStripsFormatting(t *testing.T) {
	md := "# Heading\n\nSome **bold** and *italic* text.\n\n- item one\n- item two"
	out := ExtractMarkdownText(md)
	require.Contains(t, out, "Heading")
	require.Contains(t, out, "Some bold and italic text.")
	require.Contains(t, out, "item one")
	require.NotContains(t, out, "#")
	require.NotContains(t, out, "**")
}

func TestExtractMarkdownTextKeepsCodeBlocks(t *testing.T) {
	md := "Intro paragraph.\n\n```go\nfunc main() {}\n```\n\nClosing paragraph."
	out := ExtractMarkdownText(md)
	require.Contains(t, out, "func main() {}")
	require.NotContains(t, out, "```")
}

func TestExtractMarkdownTextJoinsBlocksWithBlankLines(t *testing.T) {
	md := "First paragraph.\n\nSecond paragraph."
	out := ExtractMarkdownText(md)
	require.Equal(t, "First paragraph.\n\nSecond paragraph.", out)
}

func TestExtractMarkdownTextEmpty(t *testing.T) {
	require.Empty(t, ExtractMarkdownText(""))
}
