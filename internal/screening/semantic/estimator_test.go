package semantic

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "resume-screener/internal/common/errors"
	"resume-screener/internal/common/logger"
	"resume-screener/internal/models"
	"resume-screener/internal/screening/textnorm"
)

// fakeEmbedder returns a fixed vector per known text and errors otherwise.
type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
	calls   int32
}

func (f *fakeEmbedder) EmbedText(_ context.Context, text string) ([]float32, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return nil, f.err
	}
	if vec, ok := f.vectors[text]; ok {
		return vec, nil
	}
	return []float32{1, 0, 0}, nil
}

func providerFor(e Embedder, err error) Provider {
	return func() (Embedder, error) {
		if err != nil {
			return nil, err
		}
		return e, nil
	}
}

func TestEstimator_Compare(t *testing.T) {
	tests := []struct {
		name           string
		jobText        string
		resumeText     string
		embedder       *fakeEmbedder
		providerErr    error
		wantNoBackend  bool
		validateOutput func(*testing.T, models.SimilarityResult)
	}{
		{
			name:       "identical vectors score 100",
			jobText:    "python developer",
			resumeText: "python engineer",
			embedder: &fakeEmbedder{vectors: map[string][]float32{
				"python developer": {0.6, 0.8, 0},
				"python engineer":  {0.6, 0.8, 0},
			}},
			validateOutput: func(t *testing.T, r models.SimilarityResult) {
				assert.InDelta(t, 100.0, r.Score, 1e-6)
				assert.Equal(t, models.ConfidenceVeryHigh, r.Confidence)
				assert.Equal(t, 3, r.Diagnostic.EmbeddingDim)
			},
		},
		{
			name:       "orthogonal vectors score 0",
			jobText:    "python developer",
			resumeText: "pastry chef",
			embedder: &fakeEmbedder{vectors: map[string][]float32{
				"python developer": {1, 0, 0},
				"pastry chef":      {0, 1, 0},
			}},
			validateOutput: func(t *testing.T, r models.SimilarityResult) {
				assert.Equal(t, 0.0, r.Score)
				assert.Equal(t, models.ConfidenceVeryLow, r.Confidence)
				assert.Empty(t, r.Diagnostic.Error)
			},
		},
		{
			name:        "backend init failure degrades to zero score",
			jobText:     "python developer",
			resumeText:  "python engineer",
			providerErr: errors.New("model file missing"),
			validateOutput: func(t *testing.T, r models.SimilarityResult) {
				assert.Equal(t, 0.0, r.Score)
				assert.Equal(t, models.ConfidenceVeryLow, r.Confidence)
				assert.Equal(t, string(apperrors.ErrCodeBackendUnavailable), r.Diagnostic.ErrorCode)
				assert.Contains(t, r.Diagnostic.Error, "model file missing")
			},
		},
		{
			name:       "inference failure degrades to zero score",
			jobText:    "python developer",
			resumeText: "python engineer",
			embedder:   &fakeEmbedder{err: errors.New("session crashed")},
			validateOutput: func(t *testing.T, r models.SimilarityResult) {
				assert.Equal(t, 0.0, r.Score)
				assert.Equal(t, string(apperrors.ErrCodeBackendUnavailable), r.Diagnostic.ErrorCode)
			},
		},
		{
			name:          "empty input short-circuits before the backend",
			jobText:       "   ",
			resumeText:    "python engineer",
			embedder:      &fakeEmbedder{},
			wantNoBackend: true,
			validateOutput: func(t *testing.T, r models.SimilarityResult) {
				assert.Equal(t, 0.0, r.Score)
				assert.Equal(t, apperrors.MsgInsufficientText, r.Diagnostic.Error)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est := New(textnorm.New(), providerFor(tt.embedder, tt.providerErr), logger.NewTestLogger(t))
			result := est.Compare(context.Background(), tt.jobText, tt.resumeText)
			require.Equal(t, models.MethodSemantic, result.Method)
			tt.validateOutput(t, result)

			if tt.wantNoBackend {
				assert.Zero(t, atomic.LoadInt32(&tt.embedder.calls))
			}
		})
	}
}

func TestEstimator_BackendInitializedOnce(t *testing.T) {
	constructions := int32(0)
	embedder := &fakeEmbedder{}
	provider := Provider(func() (Embedder, error) {
		atomic.AddInt32(&constructions, 1)
		return embedder, nil
	})

	est := New(textnorm.New(), provider, logger.NewNoOpLogger())
	for i := 0; i < 4; i++ {
		est.Compare(context.Background(), "job text", "resume text")
	}

	assert.Equal(t, int32(1), atomic.LoadInt32(&constructions))
}

func TestEstimator_FailedInitIsCached(t *testing.T) {
	constructions := int32(0)
	provider := Provider(func() (Embedder, error) {
		atomic.AddInt32(&constructions, 1)
		return nil, errors.New("no model")
	})

	est := New(textnorm.New(), provider, logger.NewNoOpLogger())
	for i := 0; i < 3; i++ {
		r := est.Compare(context.Background(), "job text", "resume text")
		assert.Equal(t, string(apperrors.ErrCodeBackendUnavailable), r.Diagnostic.ErrorCode)
	}

	assert.Equal(t, int32(1), atomic.LoadInt32(&constructions))
}

func TestEstimator_TruncationFlag(t *testing.T) {
	embedder := &fakeEmbedder{}
	est := New(textnorm.NewWithLimit(20), providerFor(embedder, nil), logger.NewNoOpLogger())

	long := strings.Repeat("python developer ", 10)
	result := est.Compare(context.Background(), long, "short resume")

	assert.True(t, result.Diagnostic.JobTruncated)
	assert.False(t, result.Diagnostic.ResumeTruncated)
}
