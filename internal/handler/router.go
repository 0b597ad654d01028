package handler

import (
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/quizlearn/studyquiz/internal/middleware"
)

type RouterDeps struct {
	Ingest *IngestHandler
	Quiz   *QuizHandler
	// CORSAllowlist limits browser origins; empty allows all.
	CORSAllowlist []string
	// GenerateWindow rate-limits the endpoints that call model APIs.
	GenerateWindow time.Duration
}

func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(deps.CORSAllowlist))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// Root routes keep the shapes the original web client expects.
	router.POST("/upload", deps.Ingest.Upload)
	router.GET("/search", deps.Ingest.Search)
	router.POST("/cleanup", deps.Ingest.Cleanup)

	generate := middleware.RateLimit(deps.GenerateWindow)

	api := router.Group("/api/v1")
	api.POST("/topics/extract", generate, deps.Quiz.ExtractTopics)
	api.POST("/topics", deps.Quiz.AddTopic)
	api.GET("/topics", deps.Quiz.ListTopics)
	api.PATCH("/topics/:id", deps.Quiz.UpdateTopic)

	api.POST("/questions", generate, deps.Quiz.GenerateQuestions)
	api.GET("/questions", deps.Quiz.ListQuestions)
	api.GET("/questions/:id", deps.Quiz.GetQuestion)
	api.POST("/questions/:id/answer", deps.Quiz.SubmitAnswer)
	api.POST("/questions/:id/feedback", generate, deps.Quiz.GenerateFeedback)
	api.POST("/questions/:id/chat", generate, deps.Quiz.Chat)
	api.POST("/questions/:id/score", deps.Quiz.SetScore)

	api.GET("/score", deps.Quiz.Score)
	api.POST("/reset", deps.Quiz.Reset)

	return router
}
