package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	apperr "github.com/quizlearn/studyquiz/internal/pkg/errors"
	"github.com/quizlearn/studyquiz/internal/pkg/response"
)

// generationFailureMessage is what the client shows when a model call fails.
// Raw provider errors stay in the logs.
const generationFailureMessage = "The AI service could not complete the request. Please try again."

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	requestID, _ := c.Get("request_id")
	logutil.GetLogger(c.Request.Context()).Error("request failed",
		zap.Any("request_id", requestID),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	switch {
	case errors.Is(err, apperr.ErrInvalid):
		response.Error(c, http.StatusBadRequest, "invalid", "invalid request")
	case errors.Is(err, apperr.ErrNotFound):
		response.Error(c, http.StatusNotFound, "not_found", "not found")
	case errors.Is(err, apperr.ErrConflict):
		response.Error(c, http.StatusConflict, "conflict", "conflict")
	case errors.Is(err, apperr.ErrGeneration):
		response.Error(c, http.StatusBadGateway, "generation_failed", generationFailureMessage)
	default:
		response.Error(c, http.StatusInternalServerError, "internal", "internal error")
	}
}
