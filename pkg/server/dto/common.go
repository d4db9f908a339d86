package dto

import (
	"errors"
	"strings"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// GraphRecommendRequest holds the query parameters of /graph_recommend
type GraphRecommendRequest struct {
	SpecimenName string `form:"specimen_name"`
}

// Validate performs validation on GraphRecommendRequest
func (r *GraphRecommendRequest) Validate() error {
	if strings.TrimSpace(r.SpecimenName) == "" {
		return errors.New("missing required query parameter: specimen_name")
	}
	return nil
}

// SemanticRecommendRequest holds the query parameters of /semantic_recommend
type SemanticRecommendRequest struct {
	Query string `form:"query"`
}

// Validate performs validation on SemanticRecommendRequest
func (r *SemanticRecommendRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return errors.New("missing required query parameter: query")
	}
	return nil
}
