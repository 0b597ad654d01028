package chunker

import (
	"github.com/quizlearn/studyquiz/internal/model"
)

const (
	DefaultMaxLen  = 1000
	DefaultOverlap = 0
)

// Splitter cuts raw text into bounded chunks, preferring the largest natural
// boundary (paragraph, line, sentence, word) that still fits, and falling back
// to a hard rune cut. Splitting is deterministic: identical input and
// parameters always produce the identical chunk sequence.
//
// Chunks partition the input exactly: concatenating chunk texts, minus the
// overlap prefix repeated on every chunk after the first, reconstructs the
// original text byte for byte.
type Splitter struct {
	maxLen  int
	overlap int
}

func New(maxLen, overlap int) *Splitter {
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}
	if overlap < 0 {
		overlap = DefaultOverlap
	}
	if overlap >= maxLen {
		overlap = maxLen - 1
	}
	return &Splitter{maxLen: maxLen, overlap: overlap}
}

// Split returns the chunk sequence for text. Empty input yields nil.
func (s *Splitter) Split(text string) []model.Chunk {
	if text == "" {
		return nil
	}
	runes := []rune(text)
	// reserve room for the overlap so overlapped chunks still fit maxLen
	limit := s.maxLen - s.overlap
	if len(runes) <= s.maxLen {
		return []model.Chunk{{Text: text, SourceOffset: 0}}
	}
	segs := split(runes, limit, 0)
	chunks := make([]model.Chunk, 0, len(segs))
	pos := 0
	for i, seg := range segs {
		start := pos
		body := seg
		if i > 0 && s.overlap > 0 {
			ovl := s.overlap
			if ovl > start {
				ovl = start
			}
			merged := make([]rune, 0, ovl+len(seg))
			merged = append(merged, runes[start-ovl:start]...)
			merged = append(merged, seg...)
			body = merged
			start -= ovl
		}
		chunks = append(chunks, model.Chunk{Text: string(body), SourceOffset: start})
		pos += len(seg)
	}
	return chunks
}

// boundary levels, largest natural unit first
var levels = []func([]rune) [][]rune{
	splitParagraphs,
	splitLines,
	splitSentences,
	splitWords,
}

func split(runes []rune, limit, level int) [][]rune {
	if len(runes) <= limit {
		return [][]rune{runes}
	}
	if level >= len(levels) {
		return hardCut(runes, limit)
	}
	pieces := levels[level](runes)
	if len(pieces) <= 1 {
		return split(runes, limit, level+1)
	}
	var out [][]rune
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			out = append(out, cur)
			cur = nil
		}
	}
	for _, p := range pieces {
		if len(p) > limit {
			flush()
			out = append(out, split(p, limit, level+1)...)
			continue
		}
		if len(cur)+len(p) > limit {
			flush()
		}
		cur = append(cur, p...)
	}
	flush()
	return out
}

func hardCut(runes []rune, limit int) [][]rune {
	var out [][]rune
	for start := 0; start < len(runes); start += limit {
		end := start + limit
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, runes[start:end])
	}
	return out
}

// splitParagraphs cuts after every blank-line separator, keeping the
// separator attached to the preceding piece so concatenation is lossless.
func splitParagraphs(runes []rune) [][]rune {
	return splitAfter(runes, func(i int) int {
		if runes[i] != '\n' {
			return 0
		}
		j := i + 1
		for j < len(runes) && runes[j] == '\n' {
			j++
		}
		if j-i >= 2 {
			return j - i
		}
		return 0
	})
}

func splitLines(runes []rune) [][]rune {
	return splitAfter(runes, func(i int) int {
		if runes[i] == '\n' {
			return 1
		}
		return 0
	})
}

// splitSentences cuts after terminal punctuation followed by whitespace.
func splitSentences(runes []rune) [][]rune {
	return splitAfter(runes, func(i int) int {
		switch runes[i] {
		case '.', '!', '?':
		default:
			return 0
		}
		if i+1 < len(runes) && (runes[i+1] == ' ' || runes[i+1] == '\t') {
			return 2
		}
		return 0
	})
}

func splitWords(runes []rune) [][]rune {
	return splitAfter(runes, func(i int) int {
		if runes[i] == ' ' || runes[i] == '\t' {
			return 1
		}
		return 0
	})
}

// splitAfter cuts runes into pieces ending right after each boundary reported
// by match, which returns the boundary width starting at index i (0 = none).
func splitAfter(runes []rune, match func(i int) int) [][]rune {
	var out [][]rune
	start := 0
	i := 0
	for i < len(runes) {
		w := match(i)
		if w > 0 {
			out = append(out, runes[start:i+w])
			i += w
			start = i
			continue
		}
		i++
	}
	if start < len(runes) {
		out = append(out, runes[start:])
	}
	return out
}
