package types

import (
	"encoding/json"
	"testing"
)

func TestDocumentMetadataAccessors(t *testing.T) {
	tests := []struct {
		name         string
		doc          Document
		wantSpecimen string
		wantTitle    string
	}{
		{
			name: "string metadata",
			doc: Document{Metadata: map[string]any{
				MetadataSpecimenName: "Megalodon Tooth",
				MetadataTitle:        "Otodus megalodon tooth",
			}},
			wantSpecimen: "Megalodon Tooth",
			wantTitle:    "Otodus megalodon tooth",
		},
		{
			name:         "missing metadata",
			doc:          Document{},
			wantSpecimen: "",
			wantTitle:    "",
		},
		{
			name: "non-string value is formatted",
			doc: Document{Metadata: map[string]any{
				MetadataSpecimenName: 42,
				MetadataTitle:        nil,
			}},
			wantSpecimen: "42",
			wantTitle:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.doc.SpecimenName(); got != tt.wantSpecimen {
				t.Errorf("SpecimenName() = %q, want %q", got, tt.wantSpecimen)
			}
			if got := tt.doc.Title(); got != tt.wantTitle {
				t.Errorf("Title() = %q, want %q", got, tt.wantTitle)
			}
		})
	}
}

func TestSemanticResultJSONOmitsContent(t *testing.T) {
	result := SemanticResult{
		Identifier:    "Ammonite",
		Name:          "Pyritized ammonite",
		Content:       "raw body text",
		Description:   "A spiral shell.",
		Justification: "Matches the query for ancient sea life.",
	}

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	for _, key := range []string{"identifier", "name", "description", "justification"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("expected key %q in JSON", key)
		}
	}
	if _, ok := decoded["content"]; ok {
		t.Error("content should not be serialized")
	}
}
