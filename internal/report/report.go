// Package report periodically recomputes the analytics summary and exports it as gauges.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"civictracker/backend/internal/analysis"
	"civictracker/backend/internal/metrics"
	"civictracker/backend/internal/models"
	"civictracker/backend/internal/snapshot"

	"github.com/robfig/cron/v3"
)

const runTimeout = time.Minute

// SnapshotSource yields a fresh snapshot for each run.
type SnapshotSource interface {
	Refresh(ctx context.Context) (*snapshot.Snapshot, error)
}

// AuditSource lists every audit entry across all complaints.
type AuditSource interface {
	ListAllUpdates(ctx context.Context) ([]models.ComplaintUpdate, error)
}

type Job struct {
	source  SnapshotSource
	audit   AuditSource
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// NewJob builds the report job. audit may be nil, in which case the audit
// trail size is not reported.
func NewJob(source SnapshotSource, audit AuditSource, m *metrics.Metrics, logger *slog.Logger) *Job {
	return &Job{
		source:  source,
		audit:   audit,
		metrics: m,
		logger:  logger.With("component", "report"),
		now:     time.Now,
	}
}

// RunOnce refreshes the snapshot, summarizes it and publishes the gauges.
func (j *Job) RunOnce(ctx context.Context) (analysis.Summary, error) {
	snap, err := j.source.Refresh(ctx)
	if err != nil {
		return analysis.Summary{}, fmt.Errorf("refresh snapshot: %w", err)
	}

	summary := analysis.Summarize(snap.Complaints, j.now())

	if j.metrics != nil {
		for _, st := range models.Statuses {
			j.metrics.ComplaintsByStatus.WithLabelValues(string(st)).Set(float64(summary.CountByStatus[st]))
		}
		j.metrics.ComplaintsTotal.Set(float64(summary.TotalCount))
		j.metrics.AverageResolutionDays.Set(float64(summary.AverageResolutionDays))
	}

	attrs := []any{
		"total", summary.TotalCount,
		"pending", summary.CountByStatus[models.StatusPending],
		"completed", summary.CountByStatus[models.StatusCompleted],
		"average_resolution_days", summary.AverageResolutionDays,
	}
	if entries, ok := j.auditEntries(ctx); ok {
		attrs = append(attrs, "audit_entries", entries)
	}
	j.logger.Info("analytics report", attrs...)
	return summary, nil
}

// auditEntries counts the audit trail. A failed read only drops it from this run.
func (j *Job) auditEntries(ctx context.Context) (int, bool) {
	if j.audit == nil {
		return 0, false
	}
	updates, err := j.audit.ListAllUpdates(ctx)
	if err != nil {
		j.logger.Warn("audit trail read failed", "error", err)
		return 0, false
	}
	if j.metrics != nil {
		j.metrics.AuditEntriesTotal.Set(float64(len(updates)))
	}
	return len(updates), true
}

// Schedule registers the job on c using a standard cron spec or descriptor such as "@hourly".
func (j *Job) Schedule(c *cron.Cron, spec string) (cron.EntryID, error) {
	id, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		if _, err := j.RunOnce(ctx); err != nil {
			j.logger.Error("analytics report failed", "error", err)
		}
	})
	if err != nil {
		return 0, fmt.Errorf("schedule report %q: %w", spec, err)
	}
	return id, nil
}
