package agent

import (
	"context"
	"regexp"
	"strings"
)

// Verdict is a scope classification.
type Verdict int

// Scope verdicts.
const (
	InScope Verdict = iota
	OutOfScope
)

func (v Verdict) String() string {
	if v == OutOfScope {
		return "out_of_scope"
	}
	return "in_scope"
}

// ScopeQuery is what a ScopeFilter sees of a turn.
type ScopeQuery struct {
	Text       string
	NumSources int
}

// ScopeFilter decides whether a question belongs to the service domain.
type ScopeFilter interface {
	Classify(ctx context.Context, q ScopeQuery) Verdict
}

// DefaultKeywords are the domain terms accepted by the heuristic filter.
var DefaultKeywords = []string{
	"car", "vehicle", "auto", "engine", "tire", "tyre", "brake", "oil", "repair",
	"service", "maintenance", "appointment", "mechanic", "transmission",
	"battery", "diagnostic", "warranty", "part", "labor", "labour", "wheel", "suspension",
	"schedule", "booking", "book", "status", "price", "cost", "estimate",
}

// DefaultGreetings are conversational openers that always pass the filter.
var DefaultGreetings = []string{
	"hi", "hello", "hey", "greetings", "good morning", "good afternoon",
	"good evening", "help", "thanks", "thank you", "bye", "goodbye",
}

// Heuristic is the keyword scope filter. A question is out of scope only
// when retrieval found nothing and it carries neither a domain keyword nor a greeting.
// Keywords match word prefixes ("brakes" matches "brake"); greetings match whole words.
type Heuristic struct {
	keywords  *regexp.Regexp
	greetings *regexp.Regexp
}

// NewHeuristic builds the filter. Empty lists fall back to the defaults.
func NewHeuristic(keywords, greetings []string) *Heuristic {
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	if len(greetings) == 0 {
		greetings = DefaultGreetings
	}
	return &Heuristic{
		keywords:  compileWords(keywords, false),
		greetings: compileWords(greetings, true),
	}
}

// Classify implements ScopeFilter.
func (h *Heuristic) Classify(_ context.Context, q ScopeQuery) Verdict {
	if q.NumSources > 0 {
		return InScope
	}
	if h.keywords.MatchString(q.Text) || h.greetings.MatchString(q.Text) {
		return InScope
	}
	return OutOfScope
}

// compileWords builds a case-insensitive alternation anchored at a word start,
// and also at a word end when whole is set.
func compileWords(words []string, whole bool) *regexp.Regexp {
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		// multi-word phrases tolerate any run of whitespace
		quoted = append(quoted, strings.Join(strings.Fields(regexp.QuoteMeta(w)), `\s+`))
	}
	if len(quoted) == 0 {
		return regexp.MustCompile(`[^\s\S]`)
	}
	pattern := `(?i)\b(?:` + strings.Join(quoted, "|") + `)`
	if whole {
		pattern += `\b`
	}
	return regexp.MustCompile(pattern)
}
