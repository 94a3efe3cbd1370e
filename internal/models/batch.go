// internal/models/batch.go
package models

// ItemStatus is the terminal state of one batch item.
type ItemStatus string

const (
	ItemStatusSuccess ItemStatus = "success"
	ItemStatusFailed  ItemStatus = "failed"
)

// ResumeInput is one resume submitted for batch ranking.
type ResumeInput struct {
	SourceID string `json:"source_id"`
	Text     string `json:"text"`
}

// BatchItem is the per-resume outcome, success or failure, never both.
type BatchItem struct {
	SourceID  string          `json:"source_id"`
	Position  int             `json:"position"` // submission order, 0-based
	Status    ItemStatus      `json:"status"`
	Result    *CombinedResult `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
	ElapsedMS int64           `json:"elapsed_ms"`
}

// ScoreBucket is one bar of the score distribution histogram.
type ScoreBucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// BatchSummary aggregates a whole ranking run.
type BatchSummary struct {
	RunID       string        `json:"run_id"`
	Total       int           `json:"total"`
	Succeeded   int           `json:"succeeded"`
	Failed      int           `json:"failed"`
	SuccessRate float64       `json:"success_rate"`
	MeanScore   float64       `json:"mean_score"` // over successes only
	TopScore    float64       `json:"top_score"`
	Histogram   []ScoreBucket `json:"histogram"`
	Ranked      []BatchItem   `json:"ranked"` // descending score, ties by submission order
	ElapsedMS   int64         `json:"elapsed_ms"`
}
