package output

import (
	"context"
	"fmt"

	"opswatch/internal/elastic"
	"opswatch/internal/model"
)

// LogSource fetches raw documents from the log store.
type LogSource interface {
	Search(ctx context.Context, req elastic.SearchRequest) ([]elastic.Hit, error)
}

// RecordNormalizer maps a raw document to the canonical record shape.
type RecordNormalizer interface {
	Normalize(hit elastic.Hit) model.LogRecord
}

// LogFlagger attaches a classification to a record.
type LogFlagger interface {
	Classify(rec model.LogRecord) model.Classification
}

// ClassificationObserver is notified of every classified record, including
// the ones filtered out as normal.
type ClassificationObserver interface {
	ObserveClassification(c model.Classification)
}

// PipelineOptions controls one pipeline run.
type PipelineOptions struct {
	Size              int
	Datasets          []string
	ExcludePathPrefix string
	// ShowAll keeps records classified as normal.
	ShowAll  bool
	Observer ClassificationObserver
}

// DefaultPipelineOptions returns the options used by the dashboard.
func DefaultPipelineOptions() PipelineOptions {
	return PipelineOptions{
		Size:              100,
		Datasets:          []string{"nginx.access", "system.auth"},
		ExcludePathPrefix: "/api/",
	}
}

// RunLogPipeline executes Fetch -> Normalize -> Classify -> Filter.
// Output order is the source order (newest first). The result is never
// nil on success.
func RunLogPipeline(
	ctx context.Context,
	src LogSource,
	norm RecordNormalizer,
	flg LogFlagger,
	opts PipelineOptions,
) ([]model.ClassifiedLog, error) {
	// 1. Fetch
	hits, err := src.Search(ctx, elastic.SearchRequest{
		Size:              opts.Size,
		Datasets:          opts.Datasets,
		ExcludePathPrefix: opts.ExcludePathPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch logs: %w", err)
	}

	out := make([]model.ClassifiedLog, 0, len(hits))
	for _, hit := range hits {
		// 2. Normalize
		rec := norm.Normalize(hit)

		// 3. Classify
		c := flg.Classify(rec)
		if opts.Observer != nil {
			opts.Observer.ObserveClassification(c)
		}

		// 4. Filter
		if !opts.ShowAll && c.AttackType == model.AttackNormal {
			continue
		}
		out = append(out, model.ClassifiedLog{LogRecord: rec, Classification: c})
	}
	return out, nil
}

// Summarize counts a classified batch by attack type and severity. Brute
// force covers both the HTTP 401 tier and privileged SSH failures; auth
// failures are all failed SSH logins.
func Summarize(logs []model.ClassifiedLog) model.LogSummary {
	sum := model.LogSummary{
		Total:        len(logs),
		ByAttackType: make(map[model.AttackType]int),
		BySeverity:   make(map[model.Severity]int),
	}
	for _, l := range logs {
		sum.ByAttackType[l.AttackType]++
		sum.BySeverity[l.Severity]++

		switch l.AttackType {
		case model.AttackPossibleBruteforce:
			sum.BruteForce++
		case model.AttackSSHRootBruteforce:
			sum.BruteForce++
			sum.AuthFailures++
		case model.AttackSSHFailedLogin:
			sum.AuthFailures++
		}
	}
	return sum
}
