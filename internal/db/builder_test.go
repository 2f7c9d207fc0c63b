package db

import (
	"strings"
	"testing"
)

func TestIndexBuilder_KnowledgeBase(t *testing.T) {
	idx, err := NewIndex("techtorque-kb").
		Prefix("agentbot:kb:").
		Text("text").
		WeightedText("title", 2).
		Tag("doc_id", "doc_type", "source").
		SortableNumeric("chunk_index").
		VectorHNSW("vector", 384, 16, 200).
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if idx.Name != "techtorque-kb" {
		t.Errorf("name = %q, want techtorque-kb", idx.Name)
	}
	if len(idx.Prefixes) != 1 || idx.Prefixes[0] != "agentbot:kb:" {
		t.Errorf("prefixes = %v", idx.Prefixes)
	}
	if len(idx.Fields) != 7 {
		t.Fatalf("fields count = %d, want 7", len(idx.Fields))
	}
	if f := idx.Fields[1]; f.Type != FieldText || f.Weight != 2 {
		t.Errorf("title field = %+v", f)
	}
	if f := idx.Fields[2]; f.Name != "doc_id" || f.Type != FieldTag {
		t.Errorf("field[2] = %+v, want doc_id TAG", f)
	}
	if f := idx.Fields[5]; f.Type != FieldNumeric || !f.Sortable {
		t.Errorf("chunk_index field = %+v", f)
	}

	v := idx.Fields[6]
	if v.Type != FieldVector || v.Vector == nil {
		t.Fatalf("vector field = %+v", v)
	}
	if v.Vector.Dim != 384 || v.Vector.M != 16 || v.Vector.EFConstruct != 200 || v.Vector.Distance != DistanceCosine {
		t.Errorf("vector options = %+v", *v.Vector)
	}
}

func TestIndexBuilder_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		builder *IndexBuilder
		wantErr string
	}{
		{"empty name", NewIndex("").Tag("a"), "index name is required"},
		{"bad name", NewIndex("kb idx").Tag("a"), "invalid characters"},
		{"no fields", NewIndex("kb"), "at least one field"},
		{"zero dim", NewIndex("kb").VectorHNSW("vector", 0, 0, 0), "positive DIM"},
		{"duplicate", NewIndex("kb").Tag("a").Text("a"), "duplicate field name"},
		{"empty field", NewIndex("kb").Tag(""), "field name is required"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.builder.Build()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error = %q, want containing %q", err, tc.wantErr)
			}
		})
	}
}

func TestIndexDefinition_FieldOptionErrors(t *testing.T) {
	tests := []struct {
		name    string
		field   IndexField
		wantErr string
	}{
		{"weighted tag", IndexField{Name: "a", Type: FieldTag, Weight: 2}, "weight only applies to TEXT"},
		{"sortable vector", IndexField{Name: "v", Type: FieldVector, Sortable: true, Vector: &VectorOptions{Dim: 3}}, "cannot be sortable"},
		{"vector without options", IndexField{Name: "v", Type: FieldVector}, "positive DIM"},
		{"unknown type", IndexField{Name: "g", Type: "GEO"}, "unknown field type"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			def := IndexDefinition{Name: "kb", Fields: []IndexField{tc.field}}
			err := def.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("err = %v, want containing %q", err, tc.wantErr)
			}
		})
	}
}

func TestIsValidIdentifier(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"techtorque-kb", true},
		{"agentbot:kb", true},
		{"kb_2", true},
		{"", false},
		{"kb idx", false},
		{"kb/idx", false},
	}
	for _, tc := range tests {
		if got := IsValidIdentifier(tc.in); got != tc.want {
			t.Errorf("IsValidIdentifier(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestError_Unwrap(t *testing.T) {
	inner := ErrKeyNotFound
	err := &Error{Op: OpGet, Err: inner}
	if err.Error() != "GET: db: key not found" {
		t.Errorf("Error() = %q", err.Error())
	}
	if err.Unwrap() != inner {
		t.Error("Unwrap should return inner error")
	}
}
