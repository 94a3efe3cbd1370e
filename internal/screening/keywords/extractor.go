// internal/screening/keywords/extractor.go
package keywords

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"resume-screener/internal/common/validation"
	"resume-screener/internal/screening/textnorm"
)

// TermCount pairs a term with its frequency in one document.
type TermCount struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// Extractor finds category vocabulary terms in documents. It is deliberately
// simple substring and frequency matching; its role is explanation, not
// scoring.
type Extractor struct {
	categories map[string][]string
}

func New(categories map[string][]string) *Extractor {
	return &Extractor{categories: categories}
}

// NewDefault returns an extractor with the built-in technical vocabulary.
func NewDefault() *Extractor {
	return New(DefaultCategories())
}

// DefaultCategories is the built-in technical vocabulary used when no
// categories file is configured.
func DefaultCategories() map[string][]string {
	return map[string][]string{
		"programming": {"python", "java", "javascript", "c++", "c#", "ruby", "go", "rust"},
		"databases":   {"mysql", "postgresql", "mongodb", "redis", "elasticsearch"},
		"frameworks":  {"django", "flask", "react", "angular", "vue", "spring", "express"},
		"cloud":       {"aws", "azure", "gcp", "docker", "kubernetes", "terraform"},
		"ml_ai":       {"tensorflow", "pytorch", "scikit-learn", "pandas", "numpy"},
	}
}

// LoadCategories reads and schema-validates a categories JSON file.
func LoadCategories(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read categories file %s: %w", path, err)
	}

	if err := validation.ValidateCategories(data); err != nil {
		return nil, fmt.Errorf("invalid categories file %s: %w", path, err)
	}

	var categories map[string][]string
	if err := json.Unmarshal(data, &categories); err != nil {
		return nil, fmt.Errorf("failed to parse categories file %s: %w", path, err)
	}
	return categories, nil
}

// Extract returns, per category, the vocabulary terms present in the text.
// Matching is case-insensitive substring over the whitespace-collapsed text.
// Categories with no hits are omitted; hits are sorted for stable output.
func (e *Extractor) Extract(text string) map[string][]string {
	haystack := strings.ToLower(strings.Join(strings.Fields(textnorm.CleanUnicode(text)), " "))
	if haystack == "" {
		return map[string][]string{}
	}

	out := make(map[string][]string, len(e.categories))
	for category, terms := range e.categories {
		var found []string
		for _, term := range terms {
			if strings.Contains(haystack, strings.ToLower(term)) {
				found = append(found, strings.ToLower(term))
			}
		}
		if len(found) > 0 {
			sort.Strings(found)
			out[category] = found
		}
	}
	return out
}

// TopTerms returns the n most frequent non-stopword tokens, ordered by
// count descending with alphabetical tie-break.
func (e *Extractor) TopTerms(text string, n int) []TermCount {
	counts := map[string]int{}
	for _, tok := range textnorm.Words(text) {
		if textnorm.IsStopword(tok) || len([]rune(tok)) < 2 {
			continue
		}
		counts[tok]++
	}

	terms := make([]TermCount, 0, len(counts))
	for term, c := range counts {
		terms = append(terms, TermCount{Term: term, Count: c})
	}
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].Count != terms[j].Count {
			return terms[i].Count > terms[j].Count
		}
		return terms[i].Term < terms[j].Term
	})

	if n > 0 && len(terms) > n {
		terms = terms[:n]
	}
	return terms
}

// TermSet returns the top-n terms as a plain set for overlap computation.
func (e *Extractor) TermSet(text string, n int) map[string]struct{} {
	top := e.TopTerms(text, n)
	set := make(map[string]struct{}, len(top))
	for _, tc := range top {
		set[tc.Term] = struct{}{}
	}
	return set
}
