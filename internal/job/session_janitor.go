package job

import (
	"context"
	"time"

	"github.com/quizlearn/studyquiz/internal/quiz"
)

// SessionJanitorJob resets the in-memory quiz after a period of inactivity so
// abandoned sessions do not keep topics and conversation history alive.
type SessionJanitorJob struct {
	quiz *quiz.Service
	ttl  time.Duration
}

func NewSessionJanitorJob(svc *quiz.Service, ttl time.Duration) *SessionJanitorJob {
	return &SessionJanitorJob{quiz: svc, ttl: ttl}
}

func (j *SessionJanitorJob) Name() string {
	return "quiz_session_janitor"
}

func (j *SessionJanitorJob) Run(ctx context.Context) error {
	if j.quiz == nil {
		return nil
	}
	ttl := j.ttl
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	j.quiz.ResetIfIdle(ctx, ttl)
	return nil
}
