package screening

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-screener/internal/common/cache"
	"resume-screener/internal/common/config"
	apperrors "resume-screener/internal/common/errors"
	"resume-screener/internal/common/logger"
	"resume-screener/internal/models"
	"resume-screener/internal/screening/semantic"
)

// countingEmbedder embeds every text to the same unit vector and counts calls.
type countingEmbedder struct {
	calls int64
}

func (c *countingEmbedder) EmbedText(_ context.Context, _ string) ([]float32, error) {
	atomic.AddInt64(&c.calls, 1)
	return []float32{0.6, 0.8}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Scoring: config.ScoringConfig{
			LexicalWeight:  0.4,
			SemanticWeight: 0.6,
		},
		Batch:    config.BatchConfig{MaxItems: 50},
		Embedder: config.EmbedderConfig{MaxChars: 2000},
	}
}

func newTestEngine(t *testing.T, embedder semantic.Embedder, opts ...Option) *Engine {
	t.Helper()
	engine, err := NewEngine(testConfig(), func() (semantic.Embedder, error) {
		return embedder, nil
	}, logger.NewTestLogger(t), opts...)
	require.NoError(t, err)
	return engine
}

func TestEngine_CompareOne(t *testing.T) {
	engine := newTestEngine(t, &countingEmbedder{})

	job := "Seeking a Python developer with AWS and Docker experience, 3+ years."
	resume := "Senior Python Engineer, 4 years building services on AWS using Docker and Kubernetes."

	result, err := engine.CompareOne(context.Background(), job, resume)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, result.OverallScore, 60.0)
	assert.Contains(t, result.Keywords.Overlap, "python")
	assert.InDelta(t,
		0.4*result.Lexical.Score+0.6*result.Semantic.Score,
		result.OverallScore, 1e-6)
}

func TestEngine_CompareOne_Determinism(t *testing.T) {
	engine := newTestEngine(t, &countingEmbedder{})
	job := "Go engineer with Kubernetes and PostgreSQL experience"
	resume := "Backend developer using Go, Docker and PostgreSQL"

	first, err := engine.CompareOne(context.Background(), job, resume)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		again, err := engine.CompareOne(context.Background(), job, resume)
		require.NoError(t, err)
		require.Equal(t, first.OverallScore, again.OverallScore)
	}
}

func TestEngine_InvalidWeightConfigRejected(t *testing.T) {
	cfg := testConfig()
	cfg.Scoring.LexicalWeight = 0.7
	cfg.Scoring.SemanticWeight = 0.7

	_, err := NewEngine(cfg, nil, logger.NewNoOpLogger())
	assert.Error(t, err)
}

func TestEngine_CompareBatch(t *testing.T) {
	engine := newTestEngine(t, &countingEmbedder{})
	job := "Python developer with AWS experience"

	resumes := []models.ResumeInput{
		{SourceID: "a", Text: "Python developer, AWS services"},
		{SourceID: "b", Text: "Carpenter specializing in oak furniture"},
		{SourceID: "c", Text: ""},
	}

	summary, items, err := engine.CompareBatch(context.Background(), job, resumes)
	require.NoError(t, err)

	require.Len(t, items, 3)
	assert.Equal(t, 3, summary.Total)
	// Degenerate text is absorbed as a zero-score success, not a failure.
	assert.Equal(t, 3, summary.Succeeded)
	assert.Equal(t, "a", summary.Ranked[0].SourceID)
}

func TestEngine_CompareBatch_CapRejected(t *testing.T) {
	embedder := &countingEmbedder{}
	engine := newTestEngine(t, embedder)

	oversized := make([]models.ResumeInput, 51)
	for i := range oversized {
		oversized[i] = models.ResumeInput{SourceID: fmt.Sprintf("r%d", i), Text: "text"}
	}

	_, _, err := engine.CompareBatch(context.Background(), "job", oversized)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrBatchTooLarge))
	assert.Zero(t, atomic.LoadInt64(&embedder.calls))
}

func TestEngine_ExtractKeywords(t *testing.T) {
	engine := newTestEngine(t, &countingEmbedder{})

	found := engine.ExtractKeywords("Senior Python Engineer using Docker on AWS")
	assert.Equal(t, []string{"python"}, found["programming"])
	assert.Equal(t, []string{"aws", "docker"}, found["cloud"])
}

func TestEngine_ResultCacheRoundTrip(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	resultCache := cache.NewResultCacheWithClient(client, time.Hour)

	embedder := &countingEmbedder{}
	engine := newTestEngine(t, embedder, WithResultCache(resultCache))

	job := "Python developer with AWS experience"
	resume := "Python engineer building on AWS"

	first, err := engine.CompareOne(context.Background(), job, resume)
	require.NoError(t, err)
	callsAfterFirst := atomic.LoadInt64(&embedder.calls)
	require.Greater(t, callsAfterFirst, int64(0))

	second, err := engine.CompareOne(context.Background(), job, resume)
	require.NoError(t, err)

	assert.Equal(t, first.OverallScore, second.OverallScore)
	assert.Equal(t, callsAfterFirst, atomic.LoadInt64(&embedder.calls),
		"second comparison must be served from the cache")
}
