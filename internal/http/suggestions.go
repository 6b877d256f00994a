package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/library/internal/catalog"
	"github.com/mrlokans/library/internal/entities"
)

type SuggestionsController struct {
	catalog *catalog.Service
	log     *zap.Logger
}

func NewSuggestionsController(catalog *catalog.Service, log *zap.Logger) *SuggestionsController {
	return &SuggestionsController{catalog: catalog, log: log}
}

// ReviewRequest approves or rejects a suggestion.
type ReviewRequest struct {
	Approve *bool  `json:"approve" binding:"required"`
	Notes   string `json:"notes,omitempty"`
}

// ListSuggestions handles GET /api/suggestions?status=
func (sc *SuggestionsController) ListSuggestions(c *gin.Context) {
	list, err := sc.catalog.ListSuggestions(c.Request.Context(), entities.SuggestionStatus(c.Query("status")))
	if err != nil {
		respondServiceError(c, sc.log, err, "list suggestions")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"suggestions": list,
		"count":       len(list),
	})
}

// SubmitSuggestion handles POST /api/suggestions
func (sc *SuggestionsController) SubmitSuggestion(c *gin.Context) {
	var req catalog.SuggestionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	suggestion, err := sc.catalog.SubmitSuggestion(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, sc.log, err, "submit suggestion")
		return
	}
	respondCreated(c, suggestion)
}

// ReviewSuggestion handles POST /api/suggestions/:id/review
func (sc *SuggestionsController) ReviewSuggestion(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	suggestion, err := sc.catalog.ReviewSuggestion(c.Request.Context(), id, *req.Approve, req.Notes)
	if err != nil {
		respondServiceError(c, sc.log, err, "review suggestion")
		return
	}
	c.JSON(http.StatusOK, suggestion)
}
