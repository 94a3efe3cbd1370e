package lexical

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "resume-screener/internal/common/errors"
	"resume-screener/internal/common/logger"
	"resume-screener/internal/models"
	"resume-screener/internal/screening/textnorm"
)

func newTestEstimator(t *testing.T) *Estimator {
	t.Helper()
	return New(textnorm.New(), Config{}, logger.NewTestLogger(t))
}

// longDoc is a non-trivial document of more than 50 words.
const longDoc = `Experienced backend engineer with eight years designing and operating
distributed systems in production. Built event-driven microservices in Go and Python,
deployed on AWS with Docker and Kubernetes, backed by PostgreSQL and Redis. Led the
migration of a monolithic billing platform to streaming pipelines, improving throughput
and reliability while reducing infrastructure cost across three product teams.`

func TestEstimator_Compare(t *testing.T) {
	tests := []struct {
		name           string
		jobText        string
		resumeText     string
		validateOutput func(*testing.T, models.SimilarityResult)
	}{
		{
			name:       "identity scores near ceiling",
			jobText:    longDoc,
			resumeText: longDoc,
			validateOutput: func(t *testing.T, r models.SimilarityResult) {
				assert.GreaterOrEqual(t, r.Score, 95.0)
				assert.Equal(t, models.ConfidenceVeryHigh, r.Confidence)
				assert.NotEmpty(t, r.Diagnostic.SharedTerms)
				assert.Empty(t, r.Diagnostic.JobOnlyTerms)
			},
		},
		{
			name:       "empty job text",
			jobText:    "",
			resumeText: "any text here",
			validateOutput: func(t *testing.T, r models.SimilarityResult) {
				assert.Equal(t, 0.0, r.Score)
				assert.Equal(t, models.ConfidenceVeryLow, r.Confidence)
				assert.Equal(t, apperrors.MsgInsufficientText, r.Diagnostic.Error)
			},
		},
		{
			name:       "empty resume text",
			jobText:    "any text here",
			resumeText: "   ",
			validateOutput: func(t *testing.T, r models.SimilarityResult) {
				assert.Equal(t, 0.0, r.Score)
				assert.Equal(t, models.ConfidenceVeryLow, r.Confidence)
				assert.Equal(t, apperrors.MsgInsufficientText, r.Diagnostic.Error)
			},
		},
		{
			name:       "stopwords only counts as empty",
			jobText:    "the and of with",
			resumeText: "python developer",
			validateOutput: func(t *testing.T, r models.SimilarityResult) {
				assert.Equal(t, 0.0, r.Score)
				assert.Equal(t, models.ConfidenceVeryLow, r.Confidence)
			},
		},
		{
			name:       "disjoint vocabularies",
			jobText:    "accountant ledger audit taxation",
			resumeText: "sculptor marble chisel gallery",
			validateOutput: func(t *testing.T, r models.SimilarityResult) {
				assert.Equal(t, 0.0, r.Score)
				assert.Equal(t, models.ConfidenceVeryLow, r.Confidence)
				assert.Equal(t, apperrors.MsgInsufficientText, r.Diagnostic.Error)
			},
		},
		{
			name:       "partial overlap lands between floor and ceiling",
			jobText:    "Python developer with AWS and Docker experience",
			resumeText: "Python engineer who deploys on AWS with Terraform",
			validateOutput: func(t *testing.T, r models.SimilarityResult) {
				assert.Greater(t, r.Score, 0.0)
				assert.Less(t, r.Score, 95.0)
				terms := make([]string, 0, len(r.Diagnostic.SharedTerms))
				for _, tw := range r.Diagnostic.SharedTerms {
					terms = append(terms, tw.Term)
				}
				assert.Contains(t, terms, "python")
				assert.Contains(t, terms, "aws")
				assert.NotEmpty(t, r.Diagnostic.JobOnlyTerms)
				assert.NotEmpty(t, r.Diagnostic.ResumeOnlyTerms)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est := newTestEstimator(t)
			result := est.Compare(context.Background(), tt.jobText, tt.resumeText)
			require.Equal(t, models.MethodLexical, result.Method)
			tt.validateOutput(t, result)
		})
	}
}

func TestEstimator_Determinism(t *testing.T) {
	est := newTestEstimator(t)
	job := longDoc
	resume := "Go engineer running Docker workloads on Kubernetes with PostgreSQL"

	first := est.Compare(context.Background(), job, resume)
	for i := 0; i < 5; i++ {
		again := est.Compare(context.Background(), job, resume)
		require.Equal(t, first.Score, again.Score, "score must be bit-identical across calls")
		require.Equal(t, first.Diagnostic.SharedTerms, again.Diagnostic.SharedTerms)
	}
}

func TestEstimator_MoreOverlapScoresHigher(t *testing.T) {
	est := newTestEstimator(t)
	job := "Python developer with AWS and Docker experience building backend services"

	weak := est.Compare(context.Background(), job, "Graphic designer working in print media")
	strong := est.Compare(context.Background(), job, "Python developer building backend services with Docker on AWS")

	assert.Greater(t, strong.Score, weak.Score)
}

func BenchmarkEstimator_Compare(b *testing.B) {
	est := New(textnorm.New(), Config{}, logger.NewNoOpLogger())
	resume := strings.Repeat(longDoc+" ", 4)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		est.Compare(context.Background(), longDoc, resume)
	}
}

func TestEstimator_VocabularyCap(t *testing.T) {
	est := New(textnorm.New(), Config{MaxVocabulary: 20}, logger.NewNoOpLogger())

	var sb strings.Builder
	words := []string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf", "hotel",
		"india", "juliet", "kilo", "lima", "mike", "november", "oscar", "papa"}
	for _, w := range words {
		sb.WriteString(w)
		sb.WriteString(" ")
	}

	result := est.Compare(context.Background(), sb.String(), sb.String())
	assert.LessOrEqual(t, result.Diagnostic.VocabularySize, 20)
	assert.GreaterOrEqual(t, result.Score, 95.0)
}
