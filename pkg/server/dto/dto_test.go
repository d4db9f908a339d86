package dto

import (
	"encoding/json"
	"testing"

	"github.com/soundprediction/recommender/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestValidation(t *testing.T) {
	assert.Error(t, (&GraphRecommendRequest{}).Validate())
	assert.Error(t, (&GraphRecommendRequest{SpecimenName: " \t"}).Validate())
	assert.NoError(t, (&GraphRecommendRequest{SpecimenName: "Tyrannosaurus"}).Validate())

	assert.Error(t, (&SemanticRecommendRequest{}).Validate())
	assert.NoError(t, (&SemanticRecommendRequest{Query: "shark"}).Validate())
}

func TestGraphRecommendResponseNeverNull(t *testing.T) {
	body, err := json.Marshal(NewGraphRecommendResponse(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"recommendations": []}`, string(body))
}

func TestSemanticRecommendResponse(t *testing.T) {
	resp := NewSemanticRecommendResponse("Sharks!", []types.SemanticResult{{
		Identifier:    "FOS-001",
		Name:          "Megalodon",
		Content:       "not sent to clients",
		Description:   "A tooth.",
		Justification: "Sharks.",
	}})

	body, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"general_message": "Sharks!",
		"recommendations": [
			{"identifier": "FOS-001", "name": "Megalodon", "description": "A tooth.", "justification": "Sharks."}
		]
	}`, string(body))

	empty, err := json.Marshal(NewSemanticRecommendResponse("", nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"general_message": "", "recommendations": []}`, string(empty))
}
