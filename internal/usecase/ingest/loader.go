package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// KnowledgeExt is the file extension picked up by LoadDir and the watcher.
const KnowledgeExt = ".txt"

// docTypeRules maps file-name fragments to document types, first match wins.
var docTypeRules = []struct {
	fragments []string
	docType   string
}{
	{[]string{"service"}, "services"},
	{[]string{"appointment", "booking"}, "appointments"},
	{[]string{"pricing", "payment"}, "pricing"},
	{[]string{"warranty", "policy"}, "warranty"},
	{[]string{"company", "hours"}, "company_info"},
}

// InferDocType derives a document type from a file name.
func InferDocType(name string) string {
	stem := strings.ToLower(strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)))
	for _, r := range docTypeRules {
		for _, f := range r.fragments {
			if strings.Contains(stem, f) {
				return r.docType
			}
		}
	}
	return DefaultDocType
}

// LoadFile reads a knowledge file. The title is its first line, or the file
// name when the first line is blank. The document ID is derived from the file
// name, so re-ingesting a file overwrites its chunks.
func LoadFile(path string) (Document, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	content := string(data)
	name := filepath.Base(path)

	firstLine, _, _ := strings.Cut(content, "\n")
	title := strings.TrimSpace(firstLine)
	if title == "" {
		title = strings.TrimSuffix(name, filepath.Ext(name))
	}

	return Document{
		ID:      FileDocID(path),
		Title:   title,
		Content: content,
		DocType: InferDocType(name),
		Source:  name,
		Metadata: map[string]string{
			"filename":  name,
			"file_path": path,
		},
	}, nil
}

// FileDocID is the document ID of a knowledge file. It depends only on the
// file name, so it is stable across edits and can be computed after deletion.
func FileDocID(path string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("file:"+filepath.Base(path))).String()
}

// LoadDir reads every knowledge file in dir, sorted by name. Unreadable files are skipped and reported.
func LoadDir(dir string) ([]Document, []error, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == KnowledgeExt {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var (
		docs []Document
		errs []error
	)
	for _, n := range names {
		doc, err := LoadFile(filepath.Join(dir, n))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		docs = append(docs, doc)
	}
	return docs, errs, nil
}
