// internal/screening/semantic/estimator.go
package semantic

import (
	"context"
	"math"
	"sync"
	"time"

	apperrors "resume-screener/internal/common/errors"
	"resume-screener/internal/common/logger"
	"resume-screener/internal/common/metrics"
	"resume-screener/internal/models"
	"resume-screener/internal/screening/textnorm"
)

// Embedder turns text into a fixed-size sentence vector.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// Provider constructs the embedding backend on first use. Construction is
// expensive (ONNX session, tokenizer load), so it is deferred until the
// first semantic comparison and then shared.
type Provider func() (Embedder, error)

// Estimator scores meaning overlap with mean-pooled contextual embeddings.
// A missing or broken backend degrades to a zero-score result; it never
// surfaces as an error to the caller.
type Estimator struct {
	norm     *textnorm.Normalizer
	provider Provider
	logger   logger.Logger

	once    sync.Once
	backend Embedder
	initErr error
}

func New(norm *textnorm.Normalizer, provider Provider, log logger.Logger) *Estimator {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Estimator{norm: norm, provider: provider, logger: log}
}

// Compare scores one resume against one job description.
func (e *Estimator) Compare(ctx context.Context, jobText, resumeText string) models.SimilarityResult {
	start := time.Now()
	defer func() {
		metrics.ComparisonDuration.WithLabelValues(string(models.MethodSemantic)).Observe(time.Since(start).Seconds())
	}()

	job, jobTruncated := e.norm.Semantic(jobText)
	resume, resumeTruncated := e.norm.Semantic(resumeText)

	if job == "" || resume == "" {
		return e.failed(apperrors.ErrCodeInsufficientInput, apperrors.MsgInsufficientText, jobTruncated, resumeTruncated)
	}

	backend, err := e.getBackend()
	if err != nil {
		e.logger.WithError(err).Warn("semantic backend unavailable", nil)
		return e.failed(apperrors.ErrCodeBackendUnavailable, "semantic backend unavailable: "+err.Error(), jobTruncated, resumeTruncated)
	}

	jobVec, err := backend.EmbedText(ctx, job)
	if err != nil {
		e.logger.WithError(err).Warn("job embedding failed", nil)
		return e.failed(apperrors.ErrCodeBackendUnavailable, "embedding failed: "+err.Error(), jobTruncated, resumeTruncated)
	}
	resumeVec, err := backend.EmbedText(ctx, resume)
	if err != nil {
		e.logger.WithError(err).Warn("resume embedding failed", nil)
		return e.failed(apperrors.ErrCodeBackendUnavailable, "embedding failed: "+err.Error(), jobTruncated, resumeTruncated)
	}

	score := float64(cosine32(jobVec, resumeVec)) * 100
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	metrics.ComparisonsCompleted.WithLabelValues(string(models.MethodSemantic)).Inc()
	return models.SimilarityResult{
		Method:     models.MethodSemantic,
		Score:      score,
		Confidence: models.ConfidenceForScore(score),
		Diagnostic: models.Diagnostic{
			EmbeddingDim:    len(jobVec),
			JobTruncated:    jobTruncated,
			ResumeTruncated: resumeTruncated,
		},
	}
}

// getBackend initializes the embedding backend exactly once. A failed init
// is cached; callers keep receiving the same degraded result without
// re-triggering construction.
func (e *Estimator) getBackend() (Embedder, error) {
	e.once.Do(func() {
		if e.provider == nil {
			e.initErr = apperrors.NewBackendUnavailableError("no embedding backend configured")
			return
		}
		e.backend, e.initErr = e.provider()
	})
	return e.backend, e.initErr
}

func (e *Estimator) failed(code apperrors.ErrorCode, msg string, jobTruncated, resumeTruncated bool) models.SimilarityResult {
	metrics.ComparisonsFailed.WithLabelValues(string(models.MethodSemantic), string(code)).Inc()
	return models.SimilarityResult{
		Method:     models.MethodSemantic,
		Score:      0,
		Confidence: models.ConfidenceVeryLow,
		Diagnostic: models.Diagnostic{
			Error:           msg,
			ErrorCode:       string(code),
			JobTruncated:    jobTruncated,
			ResumeTruncated: resumeTruncated,
		},
	}
}

func cosine32(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float32
	for i := range a {
		af, bf := a[i], b[i]
		dot += af * bf
		na += af * af
		nb += bf * bf
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (float32(math.Sqrt(float64(na))) * float32(math.Sqrt(float64(nb))))
}
