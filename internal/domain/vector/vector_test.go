package vector

import (
	"testing"
	"time"

	"github.com/TechTorque-2025/Agent-Bot/internal/domain/chunk"
)

func TestFromChunk(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	c := chunk.Chunk{
		Text:  "Labor is covered for 12 months.",
		Index: 2,
		Total: 3,
		Metadata: chunk.Metadata{
			DocID: "abc", Title: "Warranty", DocType: "policy",
			Source: "handbook", ContentHash: "h", IngestedAt: at,
		},
	}

	rec := FromChunk(c, []float32{1, 2})
	if rec.ID != "abc_2" {
		t.Errorf("ID = %q, want abc_2", rec.ID)
	}
	want := map[string]string{
		FieldText:        "Labor is covered for 12 months.",
		FieldDocID:       "abc",
		FieldTitle:       "Warranty",
		FieldDocType:     "policy",
		FieldSource:      "handbook",
		FieldContentHash: "h",
		FieldIngestedAt:  "2025-03-01T10:00:00Z",
		FieldChunkIndex:  "2",
		FieldTotalChunks: "3",
	}
	for k, v := range want {
		if rec.Metadata[k] != v {
			t.Errorf("metadata[%s] = %q, want %q", k, rec.Metadata[k], v)
		}
	}
}

func TestFilter_Tags(t *testing.T) {
	if len(Filter{}.Tags()) != 0 {
		t.Error("zero filter must have no tags")
	}
	tags := Filter{DocType: "pricing"}.Tags()
	if len(tags) != 1 || tags[FieldDocType] != "pricing" {
		t.Errorf("unexpected tags: %v", tags)
	}
}
