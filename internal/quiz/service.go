package quiz

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/quizlearn/studyquiz/internal/ai"
	"github.com/quizlearn/studyquiz/internal/model"
	apperr "github.com/quizlearn/studyquiz/internal/pkg/errors"
	"github.com/quizlearn/studyquiz/internal/vectorindex"
)

// Service owns one quiz lifecycle: topic extraction and editing, question
// generation, and the per-question conversation sessions. State lives in
// memory; Reset starts the next quiz from scratch.
type Service struct {
	extractor *TopicExtractor
	questions *QuestionGenerator
	contexts  *ContextBuilder
	composer  *FeedbackComposer
	gen       ai.IGenerator

	mu           sync.Mutex
	topics       []*model.Topic
	nextTopicID  int64
	topicsLocked bool
	quiz         []model.Question
	sessions     map[int64]*Session
	lastActivity time.Time
}

func NewService(gen ai.IGenerator, index vectorindex.Index) *Service {
	return &Service{
		extractor:    NewTopicExtractor(gen),
		questions:    NewQuestionGenerator(gen),
		contexts:     NewContextBuilder(index),
		composer:     NewFeedbackComposer(gen),
		gen:          gen,
		nextTopicID:  1,
		sessions:     make(map[int64]*Session),
		lastActivity: time.Now(),
	}
}

func (s *Service) touchLocked() {
	s.lastActivity = time.Now()
}

// ExtractTopics asks the generator for topics covering text and registers
// them unselected. Extracted topics are appended to whatever the learner
// already added by hand.
func (s *Service) ExtractTopics(ctx context.Context, text string, n int) ([]model.Topic, error) {
	s.mu.Lock()
	if s.topicsLocked {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: topics are locked after question generation", apperr.ErrConflict)
	}
	s.touchLocked()
	s.mu.Unlock()

	names, err := s.extractor.Extract(ctx, text, n)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.topicsLocked {
		return nil, fmt.Errorf("%w: topics are locked after question generation", apperr.ErrConflict)
	}
	out := make([]model.Topic, 0, len(names))
	for _, name := range names {
		t := s.registerTopicLocked(name, false)
		out = append(out, *t)
	}
	s.touchLocked()
	return out, nil
}

// AddTopic registers a learner-typed topic. Manual topics start selected
// since typing one is already an act of choosing it.
func (s *Service) AddTopic(name string) (model.Topic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.topicsLocked {
		return model.Topic{}, fmt.Errorf("%w: topics are locked after question generation", apperr.ErrConflict)
	}
	if name == "" {
		return model.Topic{}, fmt.Errorf("%w: topic name is required", apperr.ErrInvalid)
	}
	s.touchLocked()
	return *s.registerTopicLocked(name, true), nil
}

func (s *Service) registerTopicLocked(name string, selected bool) *model.Topic {
	t := &model.Topic{ID: s.nextTopicID, Name: name, Selected: selected}
	s.nextTopicID++
	s.topics = append(s.topics, t)
	return t
}

// UpdateTopic renames a topic, toggles its selection, or both.
func (s *Service) UpdateTopic(id int64, name *string, selected *bool) (model.Topic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.topicsLocked {
		return model.Topic{}, fmt.Errorf("%w: topics are locked after question generation", apperr.ErrConflict)
	}
	for _, t := range s.topics {
		if t.ID != id {
			continue
		}
		if name != nil {
			if *name == "" {
				return model.Topic{}, fmt.Errorf("%w: topic name is required", apperr.ErrInvalid)
			}
			t.Name = *name
		}
		if selected != nil {
			t.Selected = *selected
		}
		s.touchLocked()
		return *t, nil
	}
	return model.Topic{}, fmt.Errorf("%w: topic %d", apperr.ErrNotFound, id)
}

func (s *Service) Topics() []model.Topic {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Topic, 0, len(s.topics))
	for _, t := range s.topics {
		out = append(out, *t)
	}
	return out
}

// GenerateQuestions builds the quiz from the currently selected topics. It
// runs at most once per quiz; success locks the topic set and creates one
// conversation session per question.
func (s *Service) GenerateQuestions(ctx context.Context) ([]model.Question, error) {
	s.mu.Lock()
	if s.topicsLocked {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: questions were already generated", apperr.ErrConflict)
	}
	var selected []string
	for _, t := range s.topics {
		if t.Selected {
			selected = append(selected, t.Name)
		}
	}
	s.mu.Unlock()
	if len(selected) == 0 {
		return nil, fmt.Errorf("%w: no topics selected", apperr.ErrInvalid)
	}

	questions, err := s.questions.Generate(ctx, selected)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.topicsLocked {
		return nil, fmt.Errorf("%w: questions were already generated", apperr.ErrConflict)
	}
	s.topicsLocked = true
	s.quiz = questions
	for _, q := range questions {
		s.sessions[q.ID] = NewSession(q, s.contexts, s.composer, s.gen)
	}
	s.touchLocked()
	logutil.GetLogger(ctx).Info("quiz generated",
		zap.Int("topics", len(selected)), zap.Int("questions", len(questions)))
	return questions, nil
}

func (s *Service) Questions() []model.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Question, len(s.quiz))
	copy(out, s.quiz)
	return out
}

// Question returns the conversation snapshot for one question.
func (s *Service) Question(id int64) (model.SessionRecord, error) {
	sess, err := s.session(id)
	if err != nil {
		return model.SessionRecord{}, err
	}
	return sess.Record(), nil
}

func (s *Service) session(id int64) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.sessions[id]
	if sess == nil {
		return nil, fmt.Errorf("%w: question %d", apperr.ErrNotFound, id)
	}
	s.touchLocked()
	return sess, nil
}

func (s *Service) SubmitAnswer(id int64, answer string) (model.SessionRecord, error) {
	sess, err := s.session(id)
	if err != nil {
		return model.SessionRecord{}, err
	}
	if err := sess.SubmitAnswer(answer); err != nil {
		return model.SessionRecord{}, err
	}
	return sess.Record(), nil
}

func (s *Service) GenerateFeedback(ctx context.Context, id int64) (model.SessionRecord, error) {
	sess, err := s.session(id)
	if err != nil {
		return model.SessionRecord{}, err
	}
	if _, err := sess.GenerateFeedback(ctx); err != nil {
		return model.SessionRecord{}, err
	}
	return sess.Record(), nil
}

func (s *Service) Chat(ctx context.Context, id int64, message string) (model.SessionRecord, error) {
	if message == "" {
		return model.SessionRecord{}, fmt.Errorf("%w: message is required", apperr.ErrInvalid)
	}
	sess, err := s.session(id)
	if err != nil {
		return model.SessionRecord{}, err
	}
	if _, err := sess.Chat(ctx, message); err != nil {
		return model.SessionRecord{}, err
	}
	return sess.Record(), nil
}

func (s *Service) SetScore(id int64, score int) (model.SessionRecord, error) {
	sess, err := s.session(id)
	if err != nil {
		return model.SessionRecord{}, err
	}
	if err := sess.SetScore(score); err != nil {
		return model.SessionRecord{}, err
	}
	return sess.Record(), nil
}

// TotalScore sums the recorded self-evaluations; unscored questions count 0.
func (s *Service) TotalScore() (total int, max int) {
	s.mu.Lock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()
	for _, sess := range sessions {
		rec := sess.Record()
		if rec.Scored {
			total += rec.Score
		}
		max += 2
	}
	return total, max
}

// Reset discards topics, questions and conversations. The vector index is
// untouched; cleanup of ingested chunks is a separate operation.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.topics = nil
	s.nextTopicID = 1
	s.topicsLocked = false
	s.quiz = nil
	s.sessions = make(map[int64]*Session)
	s.touchLocked()
}

// ResetIfIdle resets the quiz when nothing touched it for at least ttl.
// The janitor calls this on a schedule so abandoned sessions do not pin
// conversation history forever.
func (s *Service) ResetIfIdle(ctx context.Context, ttl time.Duration) bool {
	s.mu.Lock()
	idle := time.Since(s.lastActivity)
	empty := len(s.topics) == 0 && len(s.quiz) == 0
	s.mu.Unlock()
	if empty || idle < ttl {
		return false
	}
	logutil.GetLogger(ctx).Info("resetting idle quiz session", zap.Duration("idle", idle))
	s.Reset()
	return true
}
