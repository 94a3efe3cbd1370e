// internal/screening/lexical/estimator.go
package lexical

import (
	"context"
	"math"
	"sort"
	"time"

	apperrors "resume-screener/internal/common/errors"
	"resume-screener/internal/common/logger"
	"resume-screener/internal/common/metrics"
	"resume-screener/internal/models"
	"resume-screener/internal/screening/textnorm"
)

const (
	defaultMaxVocabulary  = 5000
	defaultTopSharedTerms = 20
	defaultTopUniqueTerms = 10
)

// Config holds the lexical model knobs.
type Config struct {
	MaxVocabulary  int
	TopSharedTerms int
	TopUniqueTerms int
}

// Estimator scores surface overlap with pairwise TF-IDF cosine similarity.
// The corpus is always exactly the two documents being compared, so IDF only
// separates shared vocabulary from one-sided vocabulary.
type Estimator struct {
	norm   *textnorm.Normalizer
	cfg    Config
	logger logger.Logger
}

func New(norm *textnorm.Normalizer, cfg Config, log logger.Logger) *Estimator {
	if cfg.MaxVocabulary <= 0 {
		cfg.MaxVocabulary = defaultMaxVocabulary
	}
	if cfg.TopSharedTerms <= 0 {
		cfg.TopSharedTerms = defaultTopSharedTerms
	}
	if cfg.TopUniqueTerms <= 0 {
		cfg.TopUniqueTerms = defaultTopUniqueTerms
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Estimator{norm: norm, cfg: cfg, logger: log}
}

// Compare scores one resume against one job description. Degenerate inputs
// produce a zero-score result with a diagnostic, never an error.
func (e *Estimator) Compare(ctx context.Context, jobText, resumeText string) models.SimilarityResult {
	start := time.Now()
	defer func() {
		metrics.ComparisonDuration.WithLabelValues(string(models.MethodLexical)).Observe(time.Since(start).Seconds())
	}()

	jobTokens := e.norm.LexicalTokens(jobText)
	resumeTokens := e.norm.LexicalTokens(resumeText)

	if len(jobTokens) == 0 || len(resumeTokens) == 0 {
		return e.insufficient("empty document after normalization")
	}

	jobCounts := termCounts(jobTokens)
	resumeCounts := termCounts(resumeTokens)

	vocab := buildVocabulary(jobCounts, resumeCounts, e.cfg.MaxVocabulary)

	shared := 0
	for _, term := range vocab {
		if jobCounts[term] > 0 && resumeCounts[term] > 0 {
			shared++
		}
	}
	if shared == 0 {
		return e.insufficient("no shared vocabulary between documents")
	}

	jobVec := tfidfVector(vocab, jobCounts, resumeCounts, true)
	resumeVec := tfidfVector(vocab, jobCounts, resumeCounts, false)

	score := cosine(jobVec, resumeVec) * 100
	if score < 0 {
		score = 0
	}

	diag := e.diagnostics(vocab, jobVec, resumeVec)
	diag.VocabularySize = len(vocab)

	result := models.SimilarityResult{
		Method:     models.MethodLexical,
		Score:      score,
		Confidence: models.ConfidenceForScore(score),
		Diagnostic: diag,
	}

	metrics.ComparisonsCompleted.WithLabelValues(string(models.MethodLexical)).Inc()
	e.logger.Debug("lexical comparison completed", map[string]interface{}{
		"score":       score,
		"vocabulary":  len(vocab),
		"sharedTerms": shared,
	})
	return result
}

func (e *Estimator) insufficient(details string) models.SimilarityResult {
	metrics.ComparisonsFailed.WithLabelValues(
		string(models.MethodLexical), string(apperrors.ErrCodeInsufficientInput)).Inc()
	e.logger.Debug("lexical comparison degenerate", map[string]interface{}{
		"reason": details,
	})
	return models.SimilarityResult{
		Method:     models.MethodLexical,
		Score:      0,
		Confidence: models.ConfidenceVeryLow,
		Diagnostic: models.Diagnostic{
			Error:     apperrors.MsgInsufficientText,
			ErrorCode: string(apperrors.ErrCodeInsufficientInput),
		},
	}
}

// termCounts counts unigrams and bigrams.
func termCounts(tokens []string) map[string]int {
	counts := make(map[string]int, len(tokens)*2)
	for i, tok := range tokens {
		counts[tok]++
		if i+1 < len(tokens) {
			counts[tok+" "+tokens[i+1]]++
		}
	}
	return counts
}

// buildVocabulary returns the union vocabulary sorted alphabetically. When
// the union exceeds the cap, the most frequent terms win; ties break
// alphabetically so identical inputs always produce identical vectors.
func buildVocabulary(a, b map[string]int, maxVocab int) []string {
	union := make(map[string]int, len(a)+len(b))
	for term, c := range a {
		union[term] += c
	}
	for term, c := range b {
		union[term] += c
	}

	terms := make([]string, 0, len(union))
	for term := range union {
		terms = append(terms, term)
	}

	if len(terms) > maxVocab {
		sort.Slice(terms, func(i, j int) bool {
			if union[terms[i]] != union[terms[j]] {
				return union[terms[i]] > union[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:maxVocab]
	}

	sort.Strings(terms)
	return terms
}

// tfidfVector builds an L2-normalized TF-IDF vector over the shared
// vocabulary. IDF uses the smoothed form ln((1+n)/(1+df))+1 with n=2.
func tfidfVector(vocab []string, jobCounts, resumeCounts map[string]int, forJob bool) []float64 {
	counts := resumeCounts
	if forJob {
		counts = jobCounts
	}

	total := 0
	for _, term := range vocab {
		total += counts[term]
	}
	if total == 0 {
		return make([]float64, len(vocab))
	}

	vec := make([]float64, len(vocab))
	for i, term := range vocab {
		c := counts[term]
		if c == 0 {
			continue
		}
		df := 0
		if jobCounts[term] > 0 {
			df++
		}
		if resumeCounts[term] > 0 {
			df++
		}
		tf := float64(c) / float64(total)
		idf := math.Log(3.0/float64(1+df)) + 1
		vec[i] = tf * idf
	}

	normalize(vec)
	return vec
}

func normalize(vec []float64) {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	if sum == 0 {
		return
	}
	inv := 1 / math.Sqrt(sum)
	for i := range vec {
		vec[i] *= inv
	}
}

func cosine(a, b []float64) float64 {
	var dot float64
	for i := range a {
		dot += a[i] * b[i]
	}
	return dot
}

// diagnostics reports the strongest shared terms and the strongest one-sided
// terms, sorted by weight descending with alphabetical tie-break.
func (e *Estimator) diagnostics(vocab []string, jobVec, resumeVec []float64) models.Diagnostic {
	var shared, jobOnly, resumeOnly []models.TermWeight
	for i, term := range vocab {
		jw, rw := jobVec[i], resumeVec[i]
		tw := models.TermWeight{Term: term, JobWeight: jw, ResumeWeight: rw, Combined: jw + rw}
		switch {
		case jw > 0 && rw > 0:
			shared = append(shared, tw)
		case jw > 0:
			jobOnly = append(jobOnly, tw)
		case rw > 0:
			resumeOnly = append(resumeOnly, tw)
		}
	}

	byWeight := func(s []models.TermWeight) func(i, j int) bool {
		return func(i, j int) bool {
			if s[i].Combined != s[j].Combined {
				return s[i].Combined > s[j].Combined
			}
			return s[i].Term < s[j].Term
		}
	}
	sort.Slice(shared, byWeight(shared))
	sort.Slice(jobOnly, byWeight(jobOnly))
	sort.Slice(resumeOnly, byWeight(resumeOnly))

	return models.Diagnostic{
		SharedTerms:     head(shared, e.cfg.TopSharedTerms),
		JobOnlyTerms:    head(jobOnly, e.cfg.TopUniqueTerms),
		ResumeOnlyTerms: head(resumeOnly, e.cfg.TopUniqueTerms),
	}
}

func head(s []models.TermWeight, n int) []models.TermWeight {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
