package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitEmptyInput(t *testing.T) {
	s := New(100, 0)
	require.Nil(t, s.Split(""))
}

func TestSplitShortInputSingleChunk(t *testing.T) {
	s := New(100, 0)
	chunks := s.Split("hello world")
	require.Len(t, chunks, 1)
	require.Equal(t, "hello world", chunks[0].Text)
	require.Equal(t, 0, chunks[0].SourceOffset)
}

func TestSplitDeterministic(t *testing.T) {
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 100)
	s := New(200, 0)
	first := s.Split(text)
	second := s.Split(text)
	require.Equal(t, first, second)
}

func TestSplitRespectsMaxLen(t *testing.T) {
	text := strings.Repeat("Sentence one is here. Sentence two follows it.\n\n", 80)
	for _, overlap := range []int{0, 20} {
		s := New(150, overlap)
		for _, chunk := range s.Split(text) {
			require.LessOrEqual(t, len([]rune(chunk.Text)), 150)
		}
	}
}

func TestSplitReconstructsOriginal(t *testing.T) {
	text := strings.Repeat("Paragraph body with several words in it.\n\nAnother paragraph follows here. ", 50)
	s := New(180, 0)
	chunks := s.Split(text)
	require.Greater(t, len(chunks), 1)
	var sb strings.Builder
	for _, chunk := range chunks {
		sb.WriteString(chunk.Text)
	}
	require.Equal(t, text, sb.String())
}

func TestSplitOverlapRepeatsTail(t *testing.T) {
	text := strings.Repeat("alpha beta gamma delta epsilon zeta eta theta. ", 60)
	runes := []rune(text)
	s := New(120, 30)
	chunks := s.Split(text)
	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		body := []rune(chunk.Text)
		require.Equal(t, string(runes[chunk.SourceOffset:chunk.SourceOffset+len(body)]), chunk.Text)
	}
	// stripping each chunk's overlap prefix reconstructs the input
	var sb strings.Builder
	pos := 0
	for _, chunk := range chunks {
		body := []rune(chunk.Text)
		skip := pos - chunk.SourceOffset
		require.GreaterOrEqual(t, skip, 0)
		sb.WriteString(string(body[skip:]))
		pos = chunk.SourceOffset + len(body)
	}
	require.Equal(t, text, sb.String())
}

func TestSplitHardCutsUnbrokenRun(t *testing.T) {
	text := strings.Repeat("x", 2500)
	s := New(1000, 0)
	chunks := s.Split(text)
	require.Len(t, chunks, 3)
	var sb strings.Builder
	for _, chunk := range chunks {
		require.LessOrEqual(t, len([]rune(chunk.Text)), 1000)
		sb.WriteString(chunk.Text)
	}
	require.Equal(t, text, sb.String())
}

func TestNewClampsBadParams(t *testing.T) {
	s := New(0, -5)
	require.Equal(t, DefaultMaxLen, s.maxLen)
	require.Equal(t, 0, s.overlap)

	s = New(10, 50)
	require.Equal(t, 9, s.overlap)
}
