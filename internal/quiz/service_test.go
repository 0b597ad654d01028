package quiz

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperr "github.com/quizlearn/studyquiz/internal/pkg/errors"
)

func TestServiceTopicLifecycle(t *testing.T) {
	gen := &stubGenerator{responses: []string{"Cell biology\nGenetics"}}
	svc := NewService(gen, &stubIndex{})

	topics, err := svc.ExtractTopics(context.Background(), "study text", 2)
	require.NoError(t, err)
	require.Len(t, topics, 2)
	require.Equal(t, int64(1), topics[0].ID)
	require.Equal(t, int64(2), topics[1].ID)
	require.False(t, topics[0].Selected)

	manual, err := svc.AddTopic("Evolution")
	require.NoError(t, err)
	require.Equal(t, int64(3), manual.ID)
	require.True(t, manual.Selected)

	selected := true
	updated, err := svc.UpdateTopic(1, nil, &selected)
	require.NoError(t, err)
	require.True(t, updated.Selected)

	name := "Molecular genetics"
	updated, err = svc.UpdateTopic(2, &name, nil)
	require.NoError(t, err)
	require.Equal(t, "Molecular genetics", updated.Name)
	require.False(t, updated.Selected)

	_, err = svc.UpdateTopic(99, &name, nil)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	require.Len(t, svc.Topics(), 3)
}

func TestServiceAddTopicEmptyName(t *testing.T) {
	svc := NewService(&stubGenerator{}, &stubIndex{})
	_, err := svc.AddTopic("")
	require.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestServiceGenerateQuestionsLocksTopics(t *testing.T) {
	gen := &stubGenerator{responses: []string{
		"Cell biology ### What is a ribosome?\nEvolution ### Who wrote On the Origin of Species?",
	}}
	svc := NewService(gen, &stubIndex{})

	_, err := svc.AddTopic("Cell biology")
	require.NoError(t, err)
	_, err = svc.AddTopic("Evolution")
	require.NoError(t, err)

	questions, err := svc.GenerateQuestions(context.Background())
	require.NoError(t, err)
	require.Len(t, questions, 2)

	// the quiz is built once; topic edits and regeneration are refused
	_, err = svc.GenerateQuestions(context.Background())
	require.ErrorIs(t, err, apperr.ErrConflict)
	_, err = svc.AddTopic("Late topic")
	require.ErrorIs(t, err, apperr.ErrConflict)
	selected := false
	_, err = svc.UpdateTopic(1, nil, &selected)
	require.ErrorIs(t, err, apperr.ErrConflict)
}

func TestServiceGenerateQuestionsNoneSelected(t *testing.T) {
	gen := &stubGenerator{responses: []string{"Alpha\nBeta"}}
	svc := NewService(gen, &stubIndex{})
	_, err := svc.ExtractTopics(context.Background(), "text", 2)
	require.NoError(t, err)

	_, err = svc.GenerateQuestions(context.Background())
	require.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestServiceAnswerFeedbackScoreFlow(t *testing.T) {
	gen := &stubGenerator{
		responses: []string{
			"Topic A ### What is X?",
			"Nice work!",
		},
	}
	svc := NewService(gen, &stubIndex{})
	_, err := svc.AddTopic("Topic A")
	require.NoError(t, err)
	questions, err := svc.GenerateQuestions(context.Background())
	require.NoError(t, err)
	id := questions[0].ID

	_, err = svc.GenerateFeedback(context.Background(), id)
	require.ErrorIs(t, err, apperr.ErrConflict)

	rec, err := svc.SubmitAnswer(id, "X is a thing")
	require.NoError(t, err)
	require.Equal(t, "X is a thing", rec.Answer)

	rec, err = svc.GenerateFeedback(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, "Nice work!", rec.Feedback)

	_, err = svc.SetScore(id, 2)
	require.NoError(t, err)
	total, max := svc.TotalScore()
	require.Equal(t, 2, total)
	require.Equal(t, 2, max)

	_, err = svc.SubmitAnswer(999, "answer")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestServiceChatValidation(t *testing.T) {
	svc := NewService(&stubGenerator{}, &stubIndex{})
	_, err := svc.Chat(context.Background(), 1, "")
	require.ErrorIs(t, err, apperr.ErrInvalid)
	_, err = svc.Chat(context.Background(), 1, "hello")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestServiceReset(t *testing.T) {
	gen := &stubGenerator{responses: []string{"Topic A ### What is X?"}}
	svc := NewService(gen, &stubIndex{})
	_, err := svc.AddTopic("Topic A")
	require.NoError(t, err)
	_, err = svc.GenerateQuestions(context.Background())
	require.NoError(t, err)

	svc.Reset()
	require.Empty(t, svc.Topics())
	require.Empty(t, svc.Questions())

	// topic ids restart and the quiz can be built again
	topic, err := svc.AddTopic("Fresh topic")
	require.NoError(t, err)
	require.Equal(t, int64(1), topic.ID)
}

func TestServiceResetIfIdle(t *testing.T) {
	svc := NewService(&stubGenerator{}, &stubIndex{})
	_, err := svc.AddTopic("Topic A")
	require.NoError(t, err)

	require.False(t, svc.ResetIfIdle(context.Background(), time.Hour))

	svc.mu.Lock()
	svc.lastActivity = time.Now().Add(-2 * time.Hour)
	svc.mu.Unlock()
	require.True(t, svc.ResetIfIdle(context.Background(), time.Hour))
	require.Empty(t, svc.Topics())

	// nothing to reset on an empty service
	svc.mu.Lock()
	svc.lastActivity = time.Now().Add(-2 * time.Hour)
	svc.mu.Unlock()
	require.False(t, svc.ResetIfIdle(context.Background(), time.Hour))
}
