package quiz

import (
	"context"
	"fmt"
	"sync"

	"github.com/quizlearn/studyquiz/internal/ai"
	"github.com/quizlearn/studyquiz/internal/model"
	apperr "github.com/quizlearn/studyquiz/internal/pkg/errors"
)

// Session is the per-question conversation state machine:
//
//	Unanswered -> Answered -> FeedbackReady -> Discussing
//
// Transitions are the only mutation path and never move backwards; switching
// questions creates a fresh machine instead of rewinding this one. The mutex
// serializes concurrent HTTP requests touching the same record, so two
// in-flight generator calls can never interleave their turn appends.
type Session struct {
	mu       sync.Mutex
	question model.Question
	state    model.SessionState
	answer   string
	feedback string
	turns    []model.ConversationTurn
	score    int
	scored   bool

	contexts *ContextBuilder
	composer *FeedbackComposer
	gen      ai.IGenerator
}

func NewSession(question model.Question, contexts *ContextBuilder, composer *FeedbackComposer, gen ai.IGenerator) *Session {
	return &Session{
		question: question,
		state:    model.StateUnanswered,
		contexts: contexts,
		composer: composer,
		gen:      gen,
	}
}

// SubmitAnswer records the learner's answer. No external call is made. The
// answer may be revised until feedback has been generated.
func (s *Session) SubmitAnswer(answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case model.StateUnanswered, model.StateAnswered:
	default:
		return fmt.Errorf("%w: answer is locked once feedback exists", apperr.ErrConflict)
	}
	s.answer = answer
	s.state = model.StateAnswered
	return nil
}

// GenerateFeedback retrieves grounding context, asks the composer for
// feedback, and on success seeds the conversation with the question, the
// answer, and the feedback. On failure the session stays in Answered and the
// caller decides whether to retry.
func (s *Session) GenerateFeedback(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != model.StateAnswered {
		return "", fmt.Errorf("%w: feedback requires a submitted answer", apperr.ErrConflict)
	}
	grounding := s.contexts.BuildContext(ctx, s.question.Text, s.answer, s.question.Topic)
	feedback, err := s.composer.Compose(ctx, s.question.Text, s.answer, s.question.Topic, grounding)
	if err != nil {
		return "", err
	}
	s.feedback = feedback
	s.turns = []model.ConversationTurn{
		{Sender: model.SenderSystem, Message: "Question: " + s.question.Text},
		{Sender: model.SenderUser, Message: "Your initial answer: " + s.answer},
		{Sender: model.SenderAssistant, Message: feedback},
	}
	s.state = model.StateFeedbackReady
	return feedback, nil
}

// Chat appends the learner's follow-up turn, sends the whole accumulated
// history to the generator, and appends the reply. On generator failure the
// user turn is retained so nothing typed is lost, and the error tells the
// caller a retry is possible.
func (s *Session) Chat(ctx context.Context, message string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case model.StateFeedbackReady, model.StateDiscussing:
	default:
		return "", fmt.Errorf("%w: discussion starts after feedback", apperr.ErrConflict)
	}
	s.turns = append(s.turns, model.ConversationTurn{Sender: model.SenderUser, Message: message})
	s.state = model.StateDiscussing

	history := make([]ai.Message, 0, len(s.turns))
	for _, turn := range s.turns {
		history = append(history, ai.Message{Role: string(turn.Sender), Content: turn.Message})
	}
	reply, err := s.gen.Chat(ctx, history)
	if err != nil {
		return "", fmt.Errorf("%w: chat reply: %w", apperr.ErrGeneration, err)
	}
	s.turns = append(s.turns, model.ConversationTurn{Sender: model.SenderAssistant, Message: reply})
	return reply, nil
}

// SetScore records the learner's self-evaluation (0..2) once feedback exists.
func (s *Session) SetScore(score int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if score < 0 || score > 2 {
		return fmt.Errorf("%w: score must be 0, 1 or 2", apperr.ErrInvalid)
	}
	switch s.state {
	case model.StateFeedbackReady, model.StateDiscussing:
	default:
		return fmt.Errorf("%w: self-evaluation requires feedback", apperr.ErrConflict)
	}
	s.score = score
	s.scored = true
	return nil
}

func (s *Session) State() model.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Record returns a snapshot safe to serialize; the turn slice is copied so
// callers never observe an in-flight append.
func (s *Session) Record() model.SessionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	turns := make([]model.ConversationTurn, len(s.turns))
	copy(turns, s.turns)
	return model.SessionRecord{
		Question: s.question,
		State:    s.state,
		Answer:   s.answer,
		Feedback: s.feedback,
		Turns:    turns,
		Score:    s.score,
		Scored:   s.scored,
	}
}
