package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/quizlearn/studyquiz/internal/ingest"
	"github.com/quizlearn/studyquiz/internal/vectorindex"
)

// IngestHandler serves the document routes. Response shapes on the root
// routes are fixed plain strings and bare JSON the web client string-matches
// on, so they bypass the response envelope.
type IngestHandler struct {
	ingest *ingest.Service
	index  vectorindex.Index
}

func NewIngestHandler(svc *ingest.Service, index vectorindex.Index) *IngestHandler {
	return &IngestHandler{ingest: svc, index: index}
}

type uploadRequest struct {
	Text   string `json:"text"`
	Format string `json:"format"`
}

type searchResult struct {
	PageContent string `json:"pageContent"`
}

// Upload chunks and indexes the posted text.
func (h *IngestHandler) Upload(c *gin.Context) {
	var req uploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, "Invalid request body")
		return
	}
	if _, err := h.ingest.Ingest(c.Request.Context(), req.Text, req.Format); err != nil {
		logutil.GetLogger(c.Request.Context()).Error("upload failed", zap.Error(err))
		c.String(http.StatusInternalServerError, "Internal server error")
		return
	}
	c.String(http.StatusOK, "Text uploaded successfully")
}

// Search runs a similarity query and returns the matching chunks. An empty
// index yields an empty array, never null.
func (h *IngestHandler) Search(c *gin.Context) {
	query := c.Query("text")
	chunks, err := h.index.Query(c.Request.Context(), query, 5)
	if err != nil {
		logutil.GetLogger(c.Request.Context()).Error("search failed", zap.Error(err))
		c.Status(http.StatusInternalServerError)
		return
	}
	results := make([]searchResult, 0, len(chunks))
	for _, chunk := range chunks {
		results = append(results, searchResult{PageContent: chunk.Text})
	}
	c.JSON(http.StatusOK, results)
}

// Cleanup wipes every indexed chunk in the namespace.
func (h *IngestHandler) Cleanup(c *gin.Context) {
	if err := h.index.Clear(c.Request.Context()); err != nil {
		logutil.GetLogger(c.Request.Context()).Error("cleanup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error during cleanup"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cleanup successful"})
}
