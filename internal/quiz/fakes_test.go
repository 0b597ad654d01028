package quiz

import (
	"context"
	"errors"

	"github.com/quizlearn/studyquiz/internal/ai"
	"github.com/quizlearn/studyquiz/internal/model"
)

// stubGenerator replays canned responses in order; a nil entry yields an
// error. Chat answers from chatReply and records the history it was given.
type stubGenerator struct {
	responses []string
	calls     int
	prompts   []string

	chatReply string
	chatErr   error
	histories [][]ai.Message
}

var errStubExhausted = errors.New("stub generator exhausted")

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.calls >= len(s.responses) {
		return "", errStubExhausted
	}
	out := s.responses[s.calls]
	s.calls++
	if out == "" {
		return "", errors.New("stub generator failure")
	}
	return out, nil
}

func (s *stubGenerator) Chat(ctx context.Context, history []ai.Message) (string, error) {
	copied := make([]ai.Message, len(history))
	copy(copied, history)
	s.histories = append(s.histories, copied)
	if s.chatErr != nil {
		return "", s.chatErr
	}
	return s.chatReply, nil
}

// stubIndex returns fixed chunks and records queries.
type stubIndex struct {
	chunks   []model.Chunk
	queryErr error
	queries  []string

	upserts   [][]model.Chunk
	upsertErr error
	cleared   int
}

func (s *stubIndex) Upsert(ctx context.Context, chunks []model.Chunk) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.upserts = append(s.upserts, chunks)
	return nil
}

func (s *stubIndex) Query(ctx context.Context, text string, k int) ([]model.Chunk, error) {
	s.queries = append(s.queries, text)
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	if len(s.chunks) > k {
		return s.chunks[:k], nil
	}
	return s.chunks, nil
}

func (s *stubIndex) Clear(ctx context.Context) error {
	s.cleared++
	return nil
}
