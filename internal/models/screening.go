// internal/models/screening.go
package models

import "fmt"

// Method identifies a similarity estimation strategy.
type Method string

const (
	MethodLexical  Method = "lexical"
	MethodSemantic Method = "semantic"
	MethodCombined Method = "combined"
)

// Confidence is a qualitative label for how trustworthy a score is.
type Confidence string

const (
	ConfidenceVeryLow  Confidence = "very_low"
	ConfidenceLow      Confidence = "low"
	ConfidenceMedium   Confidence = "medium"
	ConfidenceHigh     Confidence = "high"
	ConfidenceVeryHigh Confidence = "very_high"
)

// Level maps a confidence label onto its ordinal scale (very_low=1 .. very_high=5).
func (c Confidence) Level() int {
	switch c {
	case ConfidenceVeryHigh:
		return 5
	case ConfidenceHigh:
		return 4
	case ConfidenceMedium:
		return 3
	case ConfidenceLow:
		return 2
	default:
		return 1
	}
}

// ConfidenceForScore bands a 0..100 score into a confidence label.
func ConfidenceForScore(score float64) Confidence {
	switch {
	case score >= 80:
		return ConfidenceVeryHigh
	case score >= 60:
		return ConfidenceHigh
	case score >= 40:
		return ConfidenceMedium
	case score >= 20:
		return ConfidenceLow
	default:
		return ConfidenceVeryLow
	}
}

// ConfidenceForLevel maps an averaged ordinal value back to a label.
func ConfidenceForLevel(level float64) Confidence {
	switch {
	case level >= 4.5:
		return ConfidenceVeryHigh
	case level >= 3.5:
		return ConfidenceHigh
	case level >= 2.5:
		return ConfidenceMedium
	case level >= 1.5:
		return ConfidenceLow
	default:
		return ConfidenceVeryLow
	}
}

// TermWeight reports how much a shared vocabulary term contributed on each side.
type TermWeight struct {
	Term         string  `json:"term"`
	JobWeight    float64 `json:"job_weight"`
	ResumeWeight float64 `json:"resume_weight"`
	Combined     float64 `json:"combined"`
}

// Diagnostic carries method-specific evidence for a score. Fields not
// relevant to a method stay at their zero values.
type Diagnostic struct {
	Error           string       `json:"error,omitempty"`
	ErrorCode       string       `json:"error_code,omitempty"`
	SharedTerms     []TermWeight `json:"shared_terms,omitempty"`
	JobOnlyTerms    []TermWeight `json:"job_only_terms,omitempty"`
	ResumeOnlyTerms []TermWeight `json:"resume_only_terms,omitempty"`
	VocabularySize  int          `json:"vocabulary_size,omitempty"`
	EmbeddingDim    int          `json:"embedding_dim,omitempty"`
	JobTruncated    bool         `json:"job_truncated,omitempty"`
	ResumeTruncated bool         `json:"resume_truncated,omitempty"`
}

// SimilarityResult is the outcome of a single-method comparison.
type SimilarityResult struct {
	Method     Method     `json:"method"`
	Score      float64    `json:"score"`
	Confidence Confidence `json:"confidence"`
	Diagnostic Diagnostic `json:"diagnostic"`
}

// Weights controls how method scores blend into the overall score.
type Weights struct {
	Lexical  float64 `json:"lexical"`
	Semantic float64 `json:"semantic"`
}

// DefaultWeights favors the semantic signal, matching observed screening quality.
func DefaultWeights() Weights {
	return Weights{Lexical: 0.4, Semantic: 0.6}
}

// Validate rejects weights that do not form a convex combination.
func (w Weights) Validate() error {
	if w.Lexical < 0 || w.Semantic < 0 {
		return fmt.Errorf("weights must be non-negative: lexical=%.4f semantic=%.4f", w.Lexical, w.Semantic)
	}
	sum := w.Lexical + w.Semantic
	if sum < 1.0-1e-6 || sum > 1.0+1e-6 {
		return fmt.Errorf("weights must sum to 1.0, got %.6f", sum)
	}
	return nil
}

// TextStats summarizes one document's surface shape.
type TextStats struct {
	Words         int     `json:"words"`
	Sentences     int     `json:"sentences"`
	Characters    int     `json:"characters"`
	UniqueWords   int     `json:"unique_words"`
	AvgWordLength float64 `json:"avg_word_length"`
	Readability   float64 `json:"readability"`
}

// KeywordBreakdown compares the top keyword sets of both documents.
type KeywordBreakdown struct {
	Overlap          []string            `json:"overlap"`
	JobOnly          []string            `json:"job_only"`
	ResumeOnly       []string            `json:"resume_only"`
	JaccardScore     float64             `json:"jaccard_score"`
	JobCategories    map[string][]string `json:"job_categories"`
	ResumeCategories map[string][]string `json:"resume_categories"`
}

// CombinedResult is the full outcome of comparing one resume against one job.
type CombinedResult struct {
	OverallScore      float64          `json:"overall_score"`
	OverallConfidence Confidence       `json:"overall_confidence"`
	Lexical           SimilarityResult `json:"lexical"`
	Semantic          SimilarityResult `json:"semantic"`
	Weights           Weights          `json:"weights"`
	Keywords          KeywordBreakdown `json:"keyword_breakdown"`
	Recommendations   []string         `json:"recommendations"`
	JobStats          TextStats        `json:"job_stats"`
	ResumeStats       TextStats        `json:"resume_stats"`
}
