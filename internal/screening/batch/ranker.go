// internal/screening/batch/ranker.go
package batch

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	apperrors "resume-screener/internal/common/errors"
	"resume-screener/internal/common/logger"
	"resume-screener/internal/common/metrics"
	"resume-screener/internal/models"
)

const defaultMaxItems = 50

// Aggregator is the single-pair comparison the ranker applies per resume.
type Aggregator interface {
	Aggregate(ctx context.Context, jobText, resumeText string) (*models.CombinedResult, error)
}

// Config holds batch limits.
type Config struct {
	MaxItems int
}

// Ranker applies the aggregator to every resume in a batch with per-item
// fault isolation, then ranks the successes.
type Ranker struct {
	agg    Aggregator
	cfg    Config
	logger logger.Logger
}

func New(agg Aggregator, cfg Config, log logger.Logger) *Ranker {
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = defaultMaxItems
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Ranker{agg: agg, cfg: cfg, logger: log}
}

// Rank processes every resume against the job text. Oversized batches are
// rejected before any item is processed. A failing item never aborts the
// batch; it is recorded and processing continues.
func (r *Ranker) Rank(ctx context.Context, jobText string, resumes []models.ResumeInput) (*models.BatchSummary, []models.BatchItem, error) {
	if len(resumes) > r.cfg.MaxItems {
		return nil, nil, fmt.Errorf("%w: %d items exceeds limit of %d",
			apperrors.ErrBatchTooLarge, len(resumes), r.cfg.MaxItems)
	}

	runID := uuid.NewString()
	log := r.logger.WithFields(map[string]interface{}{
		"runId": runID,
		"items": len(resumes),
	})
	log.Info("batch ranking started", nil)

	metrics.BatchesActive.Inc()
	defer metrics.BatchesActive.Dec()

	start := time.Now()
	items := make([]models.BatchItem, len(resumes))
	for i, resume := range resumes {
		items[i] = r.processItem(ctx, jobText, resume, i)
		metrics.BatchItemsProcessed.WithLabelValues(string(items[i].Status)).Inc()
	}

	summary := summarize(runID, items)
	summary.ElapsedMS = time.Since(start).Milliseconds()

	log.Info("batch ranking completed", map[string]interface{}{
		"succeeded": summary.Succeeded,
		"failed":    summary.Failed,
		"meanScore": summary.MeanScore,
		"elapsedMs": summary.ElapsedMS,
	})
	return summary, items, nil
}

// processItem runs one resume with a recover boundary so a panicking
// estimator internals path is recorded, not propagated.
func (r *Ranker) processItem(ctx context.Context, jobText string, resume models.ResumeInput, position int) (item models.BatchItem) {
	start := time.Now()
	item = models.BatchItem{
		SourceID: resume.SourceID,
		Position: position,
	}
	defer func() {
		item.ElapsedMS = time.Since(start).Milliseconds()
		if rec := recover(); rec != nil {
			item.Status = models.ItemStatusFailed
			item.Result = nil
			item.Error = apperrors.NewItemProcessingError(resume.SourceID, fmt.Errorf("panic: %v", rec)).Error()
			r.logger.Warn("batch item panicked", map[string]interface{}{
				"sourceId": resume.SourceID,
				"panic":    fmt.Sprintf("%v", rec),
			})
		}
	}()

	result, err := r.agg.Aggregate(ctx, jobText, resume.Text)
	if err != nil {
		item.Status = models.ItemStatusFailed
		item.Error = apperrors.NewItemProcessingError(resume.SourceID, err).Error()
		r.logger.WithError(err).Warn("batch item failed", map[string]interface{}{
			"sourceId": resume.SourceID,
		})
		return item
	}

	item.Status = models.ItemStatusSuccess
	item.Result = result
	return item
}

// summarize computes the run statistics and the ranked success list.
func summarize(runID string, items []models.BatchItem) *models.BatchSummary {
	summary := &models.BatchSummary{
		RunID: runID,
		Total: len(items),
		Histogram: []models.ScoreBucket{
			{Label: "0-19"},
			{Label: "20-39"},
			{Label: "40-59"},
			{Label: "60-79"},
			{Label: "80-100"},
		},
	}

	var scoreSum float64
	ranked := make([]models.BatchItem, 0, len(items))
	for _, item := range items {
		if item.Status != models.ItemStatusSuccess {
			summary.Failed++
			continue
		}
		summary.Succeeded++
		score := item.Result.OverallScore
		scoreSum += score
		if score > summary.TopScore {
			summary.TopScore = score
		}
		bucket := int(score / 20)
		if bucket > 4 {
			bucket = 4
		}
		if bucket < 0 {
			bucket = 0
		}
		summary.Histogram[bucket].Count++
		ranked = append(ranked, item)
	}

	if summary.Total > 0 {
		summary.SuccessRate = float64(summary.Succeeded) / float64(summary.Total)
	}
	if summary.Succeeded > 0 {
		summary.MeanScore = scoreSum / float64(summary.Succeeded)
	}

	// Stable sort keeps submission order for equal scores.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Result.OverallScore > ranked[j].Result.OverallScore
	})
	summary.Ranked = ranked

	return summary
}
