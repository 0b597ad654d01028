package handler

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	apperr "github.com/quizlearn/studyquiz/internal/pkg/errors"
	"github.com/quizlearn/studyquiz/internal/pkg/response"
	"github.com/quizlearn/studyquiz/internal/quiz"
)

type QuizHandler struct {
	quiz *quiz.Service
}

func NewQuizHandler(svc *quiz.Service) *QuizHandler {
	return &QuizHandler{quiz: svc}
}

type extractTopicsRequest struct {
	Text  string `json:"text"`
	Count int    `json:"count"`
}

type addTopicRequest struct {
	Name string `json:"name"`
}

type updateTopicRequest struct {
	Name     *string `json:"name"`
	Selected *bool   `json:"selected"`
}

type answerRequest struct {
	Answer string `json:"answer"`
}

type chatRequest struct {
	Message string `json:"message"`
}

type scoreRequest struct {
	Score int `json:"score"`
}

func (h *QuizHandler) ExtractTopics(c *gin.Context) {
	var req extractTopicsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, fmt.Errorf("%w: %w", apperr.ErrInvalid, err))
		return
	}
	topics, err := h.quiz.ExtractTopics(c.Request.Context(), req.Text, req.Count)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"topics": topics})
}

func (h *QuizHandler) AddTopic(c *gin.Context) {
	var req addTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, fmt.Errorf("%w: %w", apperr.ErrInvalid, err))
		return
	}
	topic, err := h.quiz.AddTopic(req.Name)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, topic)
}

func (h *QuizHandler) UpdateTopic(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		handleError(c, err)
		return
	}
	var req updateTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, fmt.Errorf("%w: %w", apperr.ErrInvalid, err))
		return
	}
	topic, err := h.quiz.UpdateTopic(id, req.Name, req.Selected)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, topic)
}

func (h *QuizHandler) ListTopics(c *gin.Context) {
	response.Success(c, gin.H{"topics": h.quiz.Topics()})
}

func (h *QuizHandler) GenerateQuestions(c *gin.Context) {
	questions, err := h.quiz.GenerateQuestions(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"questions": questions})
}

func (h *QuizHandler) ListQuestions(c *gin.Context) {
	response.Success(c, gin.H{"questions": h.quiz.Questions()})
}

func (h *QuizHandler) GetQuestion(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		handleError(c, err)
		return
	}
	record, err := h.quiz.Question(id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, record)
}

func (h *QuizHandler) SubmitAnswer(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		handleError(c, err)
		return
	}
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, fmt.Errorf("%w: %w", apperr.ErrInvalid, err))
		return
	}
	record, err := h.quiz.SubmitAnswer(id, req.Answer)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, record)
}

func (h *QuizHandler) GenerateFeedback(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		handleError(c, err)
		return
	}
	record, err := h.quiz.GenerateFeedback(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, record)
}

func (h *QuizHandler) Chat(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		handleError(c, err)
		return
	}
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, fmt.Errorf("%w: %w", apperr.ErrInvalid, err))
		return
	}
	record, err := h.quiz.Chat(c.Request.Context(), id, req.Message)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, record)
}

func (h *QuizHandler) SetScore(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		handleError(c, err)
		return
	}
	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, fmt.Errorf("%w: %w", apperr.ErrInvalid, err))
		return
	}
	record, err := h.quiz.SetScore(id, req.Score)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, record)
}

func (h *QuizHandler) Score(c *gin.Context) {
	total, max := h.quiz.TotalScore()
	response.Success(c, gin.H{"total": total, "max": max})
}

func (h *QuizHandler) Reset(c *gin.Context) {
	h.quiz.Reset()
	response.Success(c, gin.H{"reset": true})
}

func paramID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad id: %s", apperr.ErrInvalid, c.Param("id"))
	}
	return id, nil
}
