package quiz

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/quizlearn/studyquiz/internal/ai"
	apperr "github.com/quizlearn/studyquiz/internal/pkg/errors"
)

const defaultTopicInputLimit = 7000

// ordinal or bullet markers the generator tends to prepend ("1. ", "2) ", "- ")
var topicPrefixRe = regexp.MustCompile(`^(?:\d+[.)]|[-*•])\s*`)

// TopicExtractor asks the generator for a short list of quizzable topics
// covering the uploaded text.
type TopicExtractor struct {
	gen        ai.IGenerator
	inputLimit int
}

func NewTopicExtractor(gen ai.IGenerator) *TopicExtractor {
	return &TopicExtractor{gen: gen, inputLimit: defaultTopicInputLimit}
}

// Extract returns at most n topic phrases. The source text is truncated to
// the input limit before prompting so huge uploads stay within the model's
// context window.
func (e *TopicExtractor) Extract(ctx context.Context, text string, n int) ([]string, error) {
	if n <= 0 {
		n = 3
	}
	cropped := text
	if runes := []rune(cropped); len(runes) > e.inputLimit {
		cropped = string(runes[:e.inputLimit])
	}
	prompt := fmt.Sprintf(`Based on this text, generate a list of %d specific but overarching topics of 3-4 words that would be relevant to be quizzed on in relation to this text.
Return one topic per line with no extra commentary.

Text: %s`, n, cropped)
	out, err := e.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: extract topics: %w", apperr.ErrGeneration, err)
	}
	topics := parseTopicLines(out, n)
	if len(topics) == 0 {
		return nil, fmt.Errorf("%w: no usable topic lines in generator output", apperr.ErrGeneration)
	}
	return topics, nil
}

// parseTopicLines keeps non-blank lines, stripping enumeration markers and
// surrounding whitespace; at most max lines survive.
func parseTopicLines(out string, max int) []string {
	var topics []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		line = topicPrefixRe.ReplaceAllString(line, "")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		topics = append(topics, line)
		if len(topics) >= max {
			break
		}
	}
	return topics
}
