// internal/screening/aggregate/aggregator.go
package aggregate

import (
	"context"
	"fmt"
	"sort"
	"time"

	"resume-screener/internal/common/logger"
	"resume-screener/internal/common/metrics"
	"resume-screener/internal/models"
	"resume-screener/internal/screening/keywords"
	"resume-screener/internal/screening/textnorm"
)

// topKeywordSetSize is how many frequency-ranked terms per side feed the
// keyword overlap comparison.
const topKeywordSetSize = 50

// Estimator is the single-method comparison contract both estimators satisfy.
// Estimators absorb their own failures into the result; Compare never errors.
type Estimator interface {
	Compare(ctx context.Context, jobText, resumeText string) models.SimilarityResult
}

// Aggregator blends the lexical and semantic scores into one calibrated
// result with keyword evidence and guidance text.
type Aggregator struct {
	lexical  Estimator
	semantic Estimator
	keywords *keywords.Extractor
	logger   logger.Logger
}

func New(lexical, semantic Estimator, kw *keywords.Extractor, log logger.Logger) *Aggregator {
	if kw == nil {
		kw = keywords.NewDefault()
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Aggregator{lexical: lexical, semantic: semantic, keywords: kw, logger: log}
}

// Aggregate compares with the default 0.4/0.6 weighting.
func (a *Aggregator) Aggregate(ctx context.Context, jobText, resumeText string) (*models.CombinedResult, error) {
	return a.AggregateWeighted(ctx, jobText, resumeText, models.DefaultWeights())
}

// AggregateWeighted runs both estimators independently and combines their
// scores. A degraded semantic result still yields a usable combined result;
// the only error is an invalid weight configuration.
func (a *Aggregator) AggregateWeighted(ctx context.Context, jobText, resumeText string, w models.Weights) (*models.CombinedResult, error) {
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("invalid weights: %w", err)
	}

	start := time.Now()
	lex := a.lexical.Compare(ctx, jobText, resumeText)
	sem := a.semantic.Compare(ctx, jobText, resumeText)

	overall := w.Lexical*lex.Score + w.Semantic*sem.Score
	level := float64(lex.Confidence.Level()+sem.Confidence.Level()) / 2

	result := &models.CombinedResult{
		OverallScore:      overall,
		OverallConfidence: models.ConfidenceForLevel(level),
		Lexical:           lex,
		Semantic:          sem,
		Weights:           w,
		Keywords:          a.keywordBreakdown(jobText, resumeText),
		Recommendations:   recommendations(overall),
		JobStats:          textnorm.Stats(jobText),
		ResumeStats:       textnorm.Stats(resumeText),
	}

	metrics.ComparisonsCompleted.WithLabelValues(string(models.MethodCombined)).Inc()
	metrics.ComparisonDuration.WithLabelValues(string(models.MethodCombined)).Observe(time.Since(start).Seconds())
	a.logger.Debug("aggregated comparison", map[string]interface{}{
		"overallScore":  overall,
		"lexicalScore":  lex.Score,
		"semanticScore": sem.Score,
		"confidence":    string(result.OverallConfidence),
	})
	return result, nil
}

// keywordBreakdown compares the top frequency terms of both sides and runs
// the category extractor against each document independently.
func (a *Aggregator) keywordBreakdown(jobText, resumeText string) models.KeywordBreakdown {
	jobSet := a.keywords.TermSet(jobText, topKeywordSetSize)
	resumeSet := a.keywords.TermSet(resumeText, topKeywordSetSize)

	var overlap, jobOnly, resumeOnly []string
	for term := range jobSet {
		if _, ok := resumeSet[term]; ok {
			overlap = append(overlap, term)
		} else {
			jobOnly = append(jobOnly, term)
		}
	}
	for term := range resumeSet {
		if _, ok := jobSet[term]; !ok {
			resumeOnly = append(resumeOnly, term)
		}
	}
	sort.Strings(overlap)
	sort.Strings(jobOnly)
	sort.Strings(resumeOnly)

	union := len(jobSet) + len(resumeSet) - len(overlap)
	jaccard := 0.0
	if union > 0 {
		jaccard = float64(len(overlap)) / float64(union)
	}

	return models.KeywordBreakdown{
		Overlap:          overlap,
		JobOnly:          jobOnly,
		ResumeOnly:       resumeOnly,
		JaccardScore:     jaccard,
		JobCategories:    a.keywords.Extract(jobText),
		ResumeCategories: a.keywords.Extract(resumeText),
	}
}

// recommendations selects guidance strings by score band. Pure function of
// the overall score.
func recommendations(score float64) []string {
	switch {
	case score < 30:
		return []string{
			"Consider significant resume revisions to better match the job requirements",
			"Add more relevant keywords and skills from the job description",
			"Restructure experience descriptions to align with job expectations",
		}
	case score < 50:
		return []string{
			"Add missing technical skills mentioned in the job description",
			"Quantify achievements with specific metrics and numbers",
			"Include more industry-specific terminology",
		}
	case score < 70:
		return []string{
			"Fine-tune keyword usage to improve match score",
			"Highlight the most relevant experience more prominently",
			"Consider adding certifications or skills mentioned in the job posting",
		}
	default:
		return []string{
			"Strong match! Consider minor optimizations for even better alignment",
			"Ensure all key achievements are prominently featured",
			"Review formatting and presentation for maximum impact",
		}
	}
}
