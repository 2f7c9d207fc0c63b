// Package vector defines the records exchanged with the similarity index.
package vector

import (
	"strconv"
	"time"

	"github.com/TechTorque-2025/Agent-Bot/internal/domain/chunk"
)

// MaxUpsertBatch is the largest number of records sent to the index in one round-trip.
const MaxUpsertBatch = 100

// Metadata keys stored next to every vector.
const (
	FieldText        = "text"
	FieldDocID       = "doc_id"
	FieldTitle       = "title"
	FieldDocType     = "doc_type"
	FieldSource      = "source"
	FieldContentHash = "content_hash"
	FieldIngestedAt  = "ingested_at"
	FieldChunkIndex  = "chunk_index"
	FieldTotalChunks = "total_chunks"
)

// Record is a vector plus its metadata, addressed by "<doc_id>_<chunk_index>".
type Record struct {
	ID       string
	Vector   []float32
	Metadata map[string]string
}

// Match is a ranked hit returned by a query. Score is a cosine similarity.
type Match struct {
	ID       string
	Score    float64
	Metadata map[string]string
}

// Filter restricts a query to records whose tags match exactly. Empty fields are ignored.
type Filter struct {
	DocType string
	Source  string
}

// Tags returns the non-empty conditions keyed by metadata field.
func (f Filter) Tags() map[string]string {
	tags := make(map[string]string, 2)
	if f.DocType != "" {
		tags[FieldDocType] = f.DocType
	}
	if f.Source != "" {
		tags[FieldSource] = f.Source
	}
	return tags
}

// Stats summarizes the index for status reporting.
type Stats struct {
	Available    bool
	TotalVectors int
	Dimension    int
	IndexName    string
}

// RecordID builds the index identifier of a chunk.
func RecordID(docID string, chunkIndex int) string {
	return docID + "_" + strconv.Itoa(chunkIndex)
}

// FromChunk builds the index record for an embedded chunk.
func FromChunk(c chunk.Chunk, vec []float32) Record {
	return Record{
		ID:     RecordID(c.Metadata.DocID, c.Index),
		Vector: vec,
		Metadata: map[string]string{
			FieldText:        c.Text,
			FieldDocID:       c.Metadata.DocID,
			FieldTitle:       c.Metadata.Title,
			FieldDocType:     c.Metadata.DocType,
			FieldSource:      c.Metadata.Source,
			FieldContentHash: c.Metadata.ContentHash,
			FieldIngestedAt:  c.Metadata.IngestedAt.UTC().Format(time.RFC3339),
			FieldChunkIndex:  strconv.Itoa(c.Index),
			FieldTotalChunks: strconv.Itoa(c.Total),
		},
	}
}
