// internal/screening/engine.go
package screening

import (
	"context"

	"resume-screener/internal/common/cache"
	"resume-screener/internal/common/config"
	"resume-screener/internal/common/logger"
	"resume-screener/internal/models"
	"resume-screener/internal/screening/aggregate"
	"resume-screener/internal/screening/batch"
	"resume-screener/internal/screening/keywords"
	"resume-screener/internal/screening/lexical"
	"resume-screener/internal/screening/semantic"
	"resume-screener/internal/screening/textnorm"
)

// Engine is the composition root of the similarity core. It owns the two
// estimators, the aggregator, the batch ranker, and the optional result
// cache, and exposes the three externally callable operations.
type Engine struct {
	aggregator *aggregate.Aggregator
	ranker     *batch.Ranker
	keywords   *keywords.Extractor
	cache      *cache.ResultCache
	weights    models.Weights
	logger     logger.Logger
}

// Option customizes engine construction.
type Option func(*Engine)

// WithResultCache enables read-through memoization of combined results.
func WithResultCache(c *cache.ResultCache) Option {
	return func(e *Engine) { e.cache = c }
}

// WithKeywordExtractor overrides the category extractor.
func WithKeywordExtractor(kw *keywords.Extractor) Option {
	return func(e *Engine) { e.keywords = kw }
}

// NewEngine wires the screening pipeline from config. The embedding backend
// is injected as a provider so tests can substitute a fake and production
// code can defer the expensive ONNX initialization to first use.
func NewEngine(cfg *config.Config, provider semantic.Provider, log logger.Logger, opts ...Option) (*Engine, error) {
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	weights := models.Weights{
		Lexical:  cfg.Scoring.LexicalWeight,
		Semantic: cfg.Scoring.SemanticWeight,
	}
	if weights.Lexical == 0 && weights.Semantic == 0 {
		weights = models.DefaultWeights()
	}
	if err := weights.Validate(); err != nil {
		return nil, err
	}

	engine := &Engine{
		weights: weights,
		logger:  log,
	}
	for _, opt := range opts {
		opt(engine)
	}

	if engine.keywords == nil {
		engine.keywords = loadExtractor(cfg.Keywords.CategoriesPath, log)
	}

	norm := textnorm.NewWithLimit(cfg.Embedder.MaxChars)
	lexEst := lexical.New(norm, lexical.Config{
		MaxVocabulary:  cfg.Scoring.MaxVocabulary,
		TopSharedTerms: cfg.Scoring.TopSharedTerms,
		TopUniqueTerms: cfg.Scoring.TopUniqueTerms,
	}, log)
	semEst := semantic.New(norm, provider, log)

	engine.aggregator = aggregate.New(lexEst, semEst, engine.keywords, log)
	engine.ranker = batch.New(engine.aggregator, batch.Config{MaxItems: cfg.Batch.MaxItems}, log)

	return engine, nil
}

// loadExtractor reads the configured categories file, falling back to the
// built-in vocabulary when the file is absent or invalid.
func loadExtractor(path string, log logger.Logger) *keywords.Extractor {
	if path == "" {
		return keywords.NewDefault()
	}
	categories, err := keywords.LoadCategories(path)
	if err != nil {
		log.WithError(err).Warn("falling back to built-in keyword categories", map[string]interface{}{
			"path": path,
		})
		return keywords.NewDefault()
	}
	return keywords.New(categories)
}

// CompareOne compares a single resume against a job description using the
// configured weights.
func (e *Engine) CompareOne(ctx context.Context, jobText, resumeText string) (*models.CombinedResult, error) {
	return e.CompareOneWeighted(ctx, jobText, resumeText, e.weights)
}

// CompareOneWeighted compares with explicit weights, consulting the result
// cache when one is configured. Cache failures degrade to a fresh compute.
func (e *Engine) CompareOneWeighted(ctx context.Context, jobText, resumeText string, w models.Weights) (*models.CombinedResult, error) {
	if e.cache != nil {
		key := cache.Key(jobText, resumeText, w)
		if cached, err := e.cache.Get(ctx, key); err == nil && cached != nil {
			return cached, nil
		} else if err != nil {
			e.logger.WithError(err).Debug("result cache lookup failed", nil)
		}

		result, err := e.aggregator.AggregateWeighted(ctx, jobText, resumeText, w)
		if err != nil {
			return nil, err
		}
		if err := e.cache.Set(ctx, key, result); err != nil {
			e.logger.WithError(err).Debug("result cache store failed", nil)
		}
		return result, nil
	}

	return e.aggregator.AggregateWeighted(ctx, jobText, resumeText, w)
}

// CompareBatch ranks many resumes against one job description. Batches over
// the configured cap are rejected before any work with ErrBatchTooLarge.
func (e *Engine) CompareBatch(ctx context.Context, jobText string, resumes []models.ResumeInput) (*models.BatchSummary, []models.BatchItem, error) {
	return e.ranker.Rank(ctx, jobText, resumes)
}

// ExtractKeywords runs standalone category extraction over one document.
func (e *Engine) ExtractKeywords(text string) map[string][]string {
	return e.keywords.Extract(text)
}

// TopTerms exposes frequency-ranked terms for generic keyword reporting.
func (e *Engine) TopTerms(text string, n int) []keywords.TermCount {
	return e.keywords.TopTerms(text, n)
}
