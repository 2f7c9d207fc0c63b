// Package chunk splits document text into bounded, paragraph-aligned chunks.
package chunk

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Default chunking parameters.
const (
	DefaultSize    = 500
	DefaultOverlap = 50
)

const (
	paragraphSep = "\n\n"
	sentenceSep  = " "
)

var (
	paragraphBoundary = regexp.MustCompile(`\n\s*\n`)
	sentenceBoundary  = regexp.MustCompile(`[.!?]\s+`)
)

// Metadata is inherited by every chunk of a document.
type Metadata struct {
	DocID       string
	Title       string
	DocType     string
	Source      string
	ContentHash string
	IngestedAt  time.Time
}

// Chunk is a bounded span of a document. Immutable once embedded.
type Chunk struct {
	Text     string
	Index    int
	Total    int
	Metadata Metadata
}

// Chunker packs paragraphs greedily into chunks of at most Size characters.
// Overlap is carried for configuration compatibility; adjacent chunks never overlap.
type Chunker struct {
	size    int
	overlap int
}

// New creates a Chunker. Non-positive size falls back to DefaultSize.
func New(size, overlap int) *Chunker {
	if size <= 0 {
		size = DefaultSize
	}
	if overlap < 0 {
		overlap = 0
	}
	return &Chunker{size: size, overlap: overlap}
}

// Size returns the maximum chunk length in characters.
func (c *Chunker) Size() int { return c.size }

// Overlap returns the configured overlap. It is not applied.
func (c *Chunker) Overlap() int { return c.overlap }

// Chunk splits text and stamps every piece with meta, its index and the total count.
func (c *Chunker) Chunk(text string, meta Metadata) []Chunk {
	texts := Split(text, c.size)
	if len(texts) == 0 {
		return nil
	}

	chunks := make([]Chunk, len(texts))
	for i, t := range texts {
		chunks[i] = Chunk{
			Text:     t,
			Index:    i,
			Total:    len(texts),
			Metadata: meta,
		}
	}
	return chunks
}

// Split breaks text into chunks no longer than maxSize characters.
//
// Paragraphs (blank-line separated) are joined with "\n\n" while they fit.
// A paragraph longer than maxSize is split into sentences which are joined
// with a single space; the trailing partial group stays open so the next
// paragraph may still join it. A single sentence longer than maxSize is
// emitted whole.
func Split(text string, maxSize int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if maxSize <= 0 {
		maxSize = DefaultSize
	}

	var (
		chunks  []string
		current string
	)

	for _, para := range paragraphBoundary.Split(text, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if length(current)+length(para)+len(paragraphSep) <= maxSize {
			current = join(current, para, paragraphSep)
			continue
		}

		if current != "" {
			chunks = append(chunks, current)
			current = ""
		}

		if length(para) <= maxSize {
			current = para
			continue
		}

		var packed []string
		packed, current = packSentences(splitSentences(para), maxSize)
		chunks = append(chunks, packed...)
	}

	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks
}

// packSentences greedily groups sentences and returns the closed groups plus the open tail.
func packSentences(sentences []string, maxSize int) (closed []string, tail string) {
	for _, s := range sentences {
		if length(tail)+length(s)+len(sentenceSep) <= maxSize {
			tail = join(tail, s, sentenceSep)
			continue
		}
		if tail != "" {
			closed = append(closed, tail)
		}
		tail = s
	}
	return closed, tail
}

// splitSentences cuts after '.', '!' or '?' when followed by whitespace.
func splitSentences(para string) []string {
	var (
		out  []string
		prev int
	)
	for _, loc := range sentenceBoundary.FindAllStringIndex(para, -1) {
		out = append(out, para[prev:loc[0]+1])
		prev = loc[1]
	}
	if prev < len(para) {
		out = append(out, para[prev:])
	}
	return out
}

func join(current, next, sep string) string {
	if current == "" {
		return next
	}
	return current + sep + next
}

func length(s string) int { return utf8.RuneCountInString(s) }
