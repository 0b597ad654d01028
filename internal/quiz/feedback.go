package quiz

import (
	"context"
	"fmt"

	"github.com/quizlearn/studyquiz/internal/ai"
	apperr "github.com/quizlearn/studyquiz/internal/pkg/errors"
)

// FeedbackComposer builds the grounded feedback prompt and returns the
// generator's text unmodified. Callers surface a friendly fallback on
// failure; raw error text never enters the conversation history.
type FeedbackComposer struct {
	gen ai.IGenerator
}

func NewFeedbackComposer(gen ai.IGenerator) *FeedbackComposer {
	return &FeedbackComposer{gen: gen}
}

func (c *FeedbackComposer) Compose(ctx context.Context, question, answer, topic, grounding string) (string, error) {
	if topic == "" {
		topic = "Unknown"
	}
	prompt := fmt.Sprintf(`I answered the following question: %s. The question was about this topic: %s.
I wrote: %s
Here is some contextual information about the question and answer: %s
Please provide feedback on my response based on the contextual information, the question, and the topic.

If I wasn't sure or did not know the answer, please provide feedback on how I could have approached the question.
Be kind, supportive, and encouraging. Your role is to make sure that I want to try again in the future and keep on learning.
Please encourage me to keep learning and congratulate me on my effort regardless of my response.`,
		question, topic, answer, grounding)
	out, err := c.gen.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: compose feedback: %w", apperr.ErrGeneration, err)
	}
	return out, nil
}
