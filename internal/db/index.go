package db

import (
	"errors"
	"fmt"
	"regexp"
)

// FieldType is the RediSearch schema type of an indexed HASH field.
type FieldType string

// Schema field types.
const (
	FieldText    FieldType = "TEXT"
	FieldTag     FieldType = "TAG"
	FieldNumeric FieldType = "NUMERIC"
	FieldVector  FieldType = "VECTOR"
)

// DistanceCosine is the vector distance used by the knowledge base.
// FT.SEARCH returns 1 - cosine similarity for it.
const DistanceCosine = "COSINE"

// VectorOptions configures an HNSW vector field.
type VectorOptions struct {
	Dim         int
	Distance    string // defaults to DistanceCosine
	M           int    // 0 keeps the engine default
	EFConstruct int    // 0 keeps the engine default
}

// IndexField describes a single field in an FT index schema.
type IndexField struct {
	Name     string
	Type     FieldType
	Weight   float64 // TEXT only, 0 keeps the engine default
	Sortable bool
	Vector   *VectorOptions // VECTOR only
}

// IndexDefinition is an FT index over HASH keys sharing the given prefixes.
type IndexDefinition struct {
	Name     string
	Prefixes []string
	Fields   []IndexField
}

var identifierRe = regexp.MustCompile(`^[a-zA-Z0-9_:-]+$`)

// IsValidIdentifier reports whether s is usable as an index name.
func IsValidIdentifier(s string) bool {
	return identifierRe.MatchString(s)
}

// Validate checks that the index definition is well-formed.
func (idx *IndexDefinition) Validate() error {
	switch {
	case idx.Name == "":
		return errors.New("index name is required")
	case !IsValidIdentifier(idx.Name):
		return fmt.Errorf("index name %q contains invalid characters", idx.Name)
	case len(idx.Fields) == 0:
		return errors.New("at least one field is required")
	}

	seen := make(map[string]struct{}, len(idx.Fields))
	for i, f := range idx.Fields {
		if f.Name == "" {
			return fmt.Errorf("field name is required at index %d", i)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("duplicate field name: %s", f.Name)
		}
		seen[f.Name] = struct{}{}

		if err := f.validate(); err != nil {
			return fmt.Errorf("field %s: %w", f.Name, err)
		}
	}
	return nil
}

func (f IndexField) validate() error {
	switch f.Type {
	case FieldText, FieldTag, FieldNumeric:
	case FieldVector:
		if f.Vector == nil || f.Vector.Dim <= 0 {
			return errors.New("vector field requires positive DIM")
		}
	default:
		return fmt.Errorf("unknown field type %q", f.Type)
	}
	if f.Weight != 0 && f.Type != FieldText {
		return errors.New("weight only applies to TEXT fields")
	}
	if f.Sortable && f.Type == FieldVector {
		return errors.New("vector fields cannot be sortable")
	}
	return nil
}
