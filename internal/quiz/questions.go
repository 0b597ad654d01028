package quiz

import (
	"context"
	"fmt"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/quizlearn/studyquiz/internal/ai"
	"github.com/quizlearn/studyquiz/internal/model"
	apperr "github.com/quizlearn/studyquiz/internal/pkg/errors"
)

// topicQuestionSeparator is the line format contract with the generator:
// every output line must read "topic ### question".
const topicQuestionSeparator = "###"

// QuestionGenerator turns a topic list into one question per topic with a
// single generator call.
type QuestionGenerator struct {
	gen ai.IGenerator
}

func NewQuestionGenerator(gen ai.IGenerator) *QuestionGenerator {
	return &QuestionGenerator{gen: gen}
}

// Generate returns questions in the order the generator produced them. The
// topic attached to each question is the topic text the generator echoed
// back, not the positional input topic: callers must match by content.
func (g *QuestionGenerator) Generate(ctx context.Context, topics []string) ([]model.Question, error) {
	if len(topics) == 0 {
		return nil, fmt.Errorf("%w: no topics to generate questions for", apperr.ErrInvalid)
	}
	prompt := fmt.Sprintf(`Give me one question for each of the following topics: %s.
Format each question as follows, making sure to separate the topic from the question with '%s', and put each question on its own line:
Topic %s Question
Each question should be answerable in a few words or a sentence at most.`,
		strings.Join(topics, ", "), topicQuestionSeparator, topicQuestionSeparator)

	out, err := g.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: generate questions: %w", apperr.ErrGeneration, err)
	}
	questions := g.parse(ctx, out)
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: no parsable question lines in generator output", apperr.ErrGeneration)
	}
	return questions, nil
}

func (g *QuestionGenerator) parse(ctx context.Context, out string) []model.Question {
	logger := logutil.GetLogger(ctx)
	var questions []model.Question
	var nextID int64 = 1
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		topic, question, found := strings.Cut(line, topicQuestionSeparator)
		if !found {
			logger.Warn("skipping malformed question line", zap.String("line", line))
			continue
		}
		topic = strings.TrimSpace(topic)
		question = strings.TrimSpace(question)
		if topic == "" || question == "" {
			logger.Warn("skipping question line with empty field", zap.String("line", line))
			continue
		}
		questions = append(questions, model.Question{ID: nextID, Text: question, Topic: topic})
		nextID++
	}
	return questions
}
