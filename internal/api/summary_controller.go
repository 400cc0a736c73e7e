package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"newsbrief/internal/domain"
)

const SummaryRoute = "/api/ai/summary"

type summaryController struct {
	summarizer Summarizer
	log        *slog.Logger
}

// RegisterSummaryRoutes registers the summary endpoint.
func RegisterSummaryRoutes(r *gin.Engine, summarizer Summarizer, log *slog.Logger) {
	ctrl := &summaryController{summarizer: summarizer, log: log}

	r.POST(SummaryRoute, ctrl.handleSummary)
}

// handleSummary responds with the JSON array of summary points.
func (ctrl *summaryController) handleSummary(c *gin.Context) {
	var req domain.SummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "Invalid request body", "error": err.Error()})
		return
	}

	points, err := ctrl.summarizer.Summarize(c.Request.Context(), req)

	switch {
	case err == nil:
		c.JSON(http.StatusOK, points)
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"msg": "URL is required"})
	case errors.Is(err, domain.ErrGenerationFailed):
		c.JSON(http.StatusBadGateway, gin.H{"msg": "Failed to generate summary", "error": err.Error()})
	default:
		ctrl.log.ErrorContext(c.Request.Context(), "Failed to summarize article",
			"error", err,
			"url", req.URL)

		c.JSON(http.StatusInternalServerError, gin.H{"msg": "Internal server error"})
	}
}
