package driver

import (
	"strings"
	"testing"
)

func TestRecommendationRelationshipTypes(t *testing.T) {
	if len(RecommendationRelationshipTypes) != 14 {
		t.Fatalf("expected 14 relationship types, got %d", len(RecommendationRelationshipTypes))
	}

	seen := make(map[string]bool)
	for _, relType := range RecommendationRelationshipTypes {
		if seen[relType] {
			t.Errorf("duplicate relationship type %s", relType)
		}
		seen[relType] = true

		if !IsRecommendationRelationship(relType) {
			t.Errorf("IsRecommendationRelationship(%s) = false", relType)
		}
	}

	for _, relType := range []string{"", "SIMILAR_TO", "from_era", "CURATED_BY"} {
		if IsRecommendationRelationship(relType) {
			t.Errorf("IsRecommendationRelationship(%q) = true, want false", relType)
		}
	}
}

func TestRecommendationQuery(t *testing.T) {
	query := RecommendationQuery()

	required := []string{
		"MATCH (a:Specimen)",
		"a.Specimen = $specimen_name",
		"type(r) IN $relationship_types",
		"collect(DISTINCT m)",
		"rec <> a",
		"count(DISTINCT m) AS score",
		"ORDER BY score DESC, recommended_name ASC",
		"LIMIT $limit",
	}
	for _, fragment := range required {
		if !strings.Contains(query, fragment) {
			t.Errorf("query missing %q", fragment)
		}
	}

	pattern := "[:" + strings.Join(RecommendationRelationshipTypes, "|") + "]"
	if !strings.Contains(query, pattern) {
		t.Errorf("query missing backward relationship pattern %s", pattern)
	}
}

func TestRecommendationParams(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		wantLimit int64
	}{
		{"explicit limit", 3, 3},
		{"zero uses default", 0, DefaultRecommendationLimit},
		{"negative uses default", -1, DefaultRecommendationLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := recommendationParams("Tyrannosaurus", tt.limit)

			if params["specimen_name"] != "Tyrannosaurus" {
				t.Errorf("specimen_name = %v", params["specimen_name"])
			}
			if params["limit"] != tt.wantLimit {
				t.Errorf("limit = %v, want %d", params["limit"], tt.wantLimit)
			}
			relTypes, ok := params["relationship_types"].([]any)
			if !ok {
				t.Fatalf("relationship_types has type %T", params["relationship_types"])
			}
			if len(relTypes) != len(RecommendationRelationshipTypes) {
				t.Errorf("got %d relationship types", len(relTypes))
			}
		})
	}
}
