package driver

import (
	"fmt"
	"strings"
)

// SpecimenLabel is the node label of catalog specimens.
const SpecimenLabel = "Specimen"

// SpecimenNameProperty holds the unique specimen name on Specimen nodes.
const SpecimenNameProperty = "Specimen"

// RecommendationRelationshipTypes lists the relationship types that connect a
// specimen to a shared attribute node. Any other relationship is ignored when
// computing recommendations.
var RecommendationRelationshipTypes = []string{
	"AT_GROWTH_STAGE",
	"BONE_IS",
	"DURING",
	"FROM_ERA",
	"KERATIN_ON",
	"LIVES_IN_HABITAT",
	"MADE_OF",
	"MUSEUM_ACQUISITION",
	"ORIGINATED",
	"PRESERVED",
	"TEETH_ARE",
	"TYPE_OF",
	"TYPE_OF_HIGH",
	"TYPE_OF_MID",
}

var allowedRelationshipTypes = func() map[string]struct{} {
	m := make(map[string]struct{}, len(RecommendationRelationshipTypes))
	for _, t := range RecommendationRelationshipTypes {
		m[t] = struct{}{}
	}
	return m
}()

// IsRecommendationRelationship reports whether relType is one of
// RecommendationRelationshipTypes.
func IsRecommendationRelationship(relType string) bool {
	_, ok := allowedRelationshipTypes[relType]
	return ok
}

// recommendationQuery is built once from the constant allow-list; only
// $specimen_name and $limit vary per call.
var recommendationQuery = buildRecommendationQuery()

// RecommendationQuery returns the Cypher query used by bolt drivers.
// Parameters: $specimen_name (string), $relationship_types (list) and $limit (integer).
func RecommendationQuery() string {
	return recommendationQuery
}

func buildRecommendationQuery() string {
	return fmt.Sprintf(`
MATCH (a:%[1]s)
WHERE a.%[2]s = $specimen_name
MATCH (a)-[r]->(m)
WHERE type(r) IN $relationship_types
WITH a, collect(DISTINCT m) AS attributes
UNWIND attributes AS m
MATCH (m)<-[:%[3]s]-(rec:%[1]s)
WHERE rec <> a
WITH rec, count(DISTINCT m) AS score
RETURN rec.%[2]s AS recommended_name, score
ORDER BY score DESC, recommended_name ASC
LIMIT $limit
`, SpecimenLabel, SpecimenNameProperty, strings.Join(RecommendationRelationshipTypes, "|"))
}

// recommendationParams builds the parameter map for RecommendationQuery.
func recommendationParams(specimenName string, limit int) map[string]any {
	relTypes := make([]any, len(RecommendationRelationshipTypes))
	for i, t := range RecommendationRelationshipTypes {
		relTypes[i] = t
	}
	return map[string]any{
		"specimen_name":      specimenName,
		"relationship_types": relTypes,
		"limit":              int64(normalizeLimit(limit)),
	}
}
