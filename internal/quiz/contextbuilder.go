package quiz

import (
	"context"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/quizlearn/studyquiz/internal/vectorindex"
)

const (
	defaultContextTopK     = 5
	defaultContextChunkCap = 500
	contextSeparator       = "... "
)

// ContextBuilder assembles the grounding context for feedback: it queries the
// vector index with the question, answer and topic, and joins the retrieved
// chunks into one bounded string.
//
// Retrieval failures degrade to an empty context rather than failing the
// caller; feedback then proceeds ungrounded.
type ContextBuilder struct {
	index    vectorindex.Index
	topK     int
	chunkCap int
}

func NewContextBuilder(index vectorindex.Index) *ContextBuilder {
	return &ContextBuilder{index: index, topK: defaultContextTopK, chunkCap: defaultContextChunkCap}
}

func (b *ContextBuilder) BuildContext(ctx context.Context, question, answer, topic string) string {
	query := strings.TrimSpace(question + " " + answer + " " + topic)
	chunks, err := b.index.Query(ctx, query, b.topK)
	if err != nil {
		logutil.GetLogger(ctx).Warn("context retrieval failed, proceeding ungrounded", zap.Error(err))
		return ""
	}
	parts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		text := strings.TrimSpace(chunk.Text)
		if runes := []rune(text); len(runes) > b.chunkCap {
			text = string(runes[:b.chunkCap])
		}
		if text == "" {
			continue
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, contextSeparator)
}
