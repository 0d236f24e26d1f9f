// Package handler provides HTTP handlers for the website insight service.
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/webinsight/internal/model"
	"github.com/kart-io/webinsight/internal/webinsight/biz"
)

// DefaultQueryTimeout bounds a single question answering request.
const DefaultQueryTimeout = 60 * time.Second

// InsightHandler handles website analysis and query HTTP requests.
type InsightHandler struct {
	service      biz.Service
	queryTimeout time.Duration
}

// NewInsightHandler creates a new InsightHandler.
func NewInsightHandler(service biz.Service, queryTimeout time.Duration) *InsightHandler {
	if queryTimeout <= 0 {
		queryTimeout = DefaultQueryTimeout
	}
	return &InsightHandler{
		service:      service,
		queryTimeout: queryTimeout,
	}
}

// SuccessResponse is a standard success response.
type SuccessResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse is a standard error response.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// InsightsRequest represents a website analysis request.
type InsightsRequest struct {
	URL       string   `json:"url" binding:"required"`
	Questions []string `json:"questions"`
}

// Insights analyzes a website homepage and stores its insights.
func (h *InsightHandler) Insights(c *gin.Context) {
	var req InsightsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: 400, Message: err.Error()})
		return
	}

	result, err := h.service.Analyze(c.Request.Context(), req.URL, req.Questions)
	if err != nil {
		if errors.Is(err, biz.ErrInvalidURL) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Code: 400, Message: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: 500, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Code: 0, Message: "success", Data: result})
}

// QueryRequest represents a RAG query request.
type QueryRequest struct {
	URL                 string          `json:"url" binding:"required"`
	Query               string          `json:"query" binding:"required"`
	ConversationHistory []model.Message `json:"conversation_history"`
}

// Query answers a question about an analyzed website.
func (h *InsightHandler) Query(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: 400, Message: err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.queryTimeout)
	defer cancel()

	result, err := h.service.Query(ctx, req.URL, req.Query, req.ConversationHistory)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			c.JSON(http.StatusRequestTimeout, ErrorResponse{
				Code:    408,
				Message: "Query timeout: the request took too long to process. Please try again or simplify your question.",
			})
			return
		}
		if errors.Is(err, biz.ErrInvalidURL) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Code: 400, Message: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: 500, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Code: 0, Message: "success", Data: result})
}

// Health reports service liveness and statistics.
func (h *InsightHandler) Health(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: 500, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Code:    0,
		Message: "healthy",
		Data:    stats,
	})
}
