package dto

import "github.com/soundprediction/recommender/pkg/types"

// GraphRecommendResponse is the body of a successful /graph_recommend call
type GraphRecommendResponse struct {
	Recommendations []string `json:"recommendations"`
}

// SemanticRecommendation is one enriched result
type SemanticRecommendation struct {
	Identifier    string `json:"identifier"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Justification string `json:"justification"`
}

// SemanticRecommendResponse is the body of a successful /semantic_recommend call
type SemanticRecommendResponse struct {
	GeneralMessage  string                   `json:"general_message"`
	Recommendations []SemanticRecommendation `json:"recommendations"`
}

// NewGraphRecommendResponse never encodes the list as null.
func NewGraphRecommendResponse(names []string) GraphRecommendResponse {
	if names == nil {
		names = []string{}
	}
	return GraphRecommendResponse{Recommendations: names}
}

// NewSemanticRecommendResponse converts facade results into the wire format.
func NewSemanticRecommendResponse(summary string, results []types.SemanticResult) SemanticRecommendResponse {
	recs := make([]SemanticRecommendation, 0, len(results))
	for _, r := range results {
		recs = append(recs, SemanticRecommendation{
			Identifier:    r.Identifier,
			Name:          r.Name,
			Description:   r.Description,
			Justification: r.Justification,
		})
	}
	return SemanticRecommendResponse{GeneralMessage: summary, Recommendations: recs}
}
