package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/soundprediction/recommender"
	"github.com/soundprediction/recommender/pkg/server/dto"
	"github.com/soundprediction/recommender/pkg/types"
)

// GenericFailureMessage is the only error text returned for upstream failures.
const GenericFailureMessage = "failed to compute recommendations"

// RecommendHandler handles recommendation requests
type RecommendHandler struct {
	recommender recommender.Recommender
	logger      *slog.Logger
}

// NewRecommendHandler creates a new recommend handler
func NewRecommendHandler(r recommender.Recommender, logger *slog.Logger) *RecommendHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecommendHandler{
		recommender: r,
		logger:      logger,
	}
}

// GraphRecommend handles GET /graph_recommend
func (h *RecommendHandler) GraphRecommend(c *gin.Context) {
	var req dto.GraphRecommendRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	names, err := h.recommender.GraphQuery(c.Request.Context(), req.SpecimenName)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewGraphRecommendResponse(names))
}

// SemanticRecommend handles GET /semantic_recommend
func (h *RecommendHandler) SemanticRecommend(c *gin.Context) {
	var req dto.SemanticRecommendRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	resp, err := h.recommender.SemanticQuery(c.Request.Context(), req.Query)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSemanticRecommendResponse(resp.Summary, resp.Results))
}

// writeError maps facade errors onto status codes. Upstream error text is
// logged, never sent.
func (h *RecommendHandler) writeError(c *gin.Context, err error) {
	if recommender.IsValidation(err) {
		msg := err.Error()
		var rerr *recommender.Error
		if errors.As(err, &rerr) {
			msg = rerr.Err.Error()
		}
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: msg})
		return
	}

	requestID, _ := c.Request.Context().Value(types.ContextKeyRequestID).(string)
	h.logger.ErrorContext(c.Request.Context(), "Recommendation request failed",
		"path", c.Request.URL.Path,
		"request_id", requestID,
		"error", err)
	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: GenericFailureMessage})
}
