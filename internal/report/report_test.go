package report

import (
	"context"
	"testing"
	"time"

	"civictracker/backend/internal/logger"
	"civictracker/backend/internal/metrics"
	"civictracker/backend/internal/models"
	"civictracker/backend/internal/snapshot"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	snap  *snapshot.Snapshot
	err   error
	calls int
}

func (f *fakeSource) Refresh(context.Context) (*snapshot.Snapshot, error) {
	f.calls++
	return f.snap, f.err
}

type fakeAudit struct {
	updates []models.ComplaintUpdate
	err     error
}

func (f *fakeAudit) ListAllUpdates(context.Context) ([]models.ComplaintUpdate, error) {
	return f.updates, f.err
}

var now = time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

func TestRunOnce_PublishesGauges(t *testing.T) {
	src := &fakeSource{snap: &snapshot.Snapshot{Complaints: []models.Complaint{
		{ID: 1, Status: models.StatusCompleted, CreatedAt: now.Add(-48 * time.Hour)},
		{ID: 2, Status: models.StatusCompleted, CreatedAt: now.Add(-96 * time.Hour)},
		{ID: 3, Status: models.StatusPending, CreatedAt: now.Add(-time.Hour)},
	}}}
	m := metrics.New(prometheus.NewRegistry())
	job := NewJob(src, nil, m, logger.Discard())
	job.now = func() time.Time { return now }

	summary, err := job.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TotalCount)
	assert.Equal(t, 3, summary.AverageResolutionDays)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ComplaintsTotal))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.AverageResolutionDays))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ComplaintsByStatus.WithLabelValues("completed")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ComplaintsByStatus.WithLabelValues("rejected")))
}

func TestRunOnce_ExportsAuditTrailSize(t *testing.T) {
	src := &fakeSource{snap: &snapshot.Snapshot{Complaints: []models.Complaint{{ID: 1, Status: models.StatusInProcess}}}}
	audit := &fakeAudit{updates: []models.ComplaintUpdate{
		{ComplaintID: 1, Message: "Status updated to in_process"},
		{ComplaintID: 1, Message: "Status updated to pending"},
		{ComplaintID: 1, Message: "Status updated to in_process"},
	}}
	m := metrics.New(prometheus.NewRegistry())
	job := NewJob(src, audit, m, logger.Discard())

	_, err := job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.AuditEntriesTotal))
}

func TestRunOnce_AuditReadFailureKeepsSummary(t *testing.T) {
	src := &fakeSource{snap: &snapshot.Snapshot{Complaints: []models.Complaint{{ID: 1, Status: models.StatusPending}}}}
	m := metrics.New(prometheus.NewRegistry())
	m.AuditEntriesTotal.Set(7)
	job := NewJob(src, &fakeAudit{err: models.ErrStoreUnavailable}, m, logger.Discard())

	summary, err := job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalCount)
	assert.Equal(t, 7.0, testutil.ToFloat64(m.AuditEntriesTotal), "last good value is kept")
}

func TestRunOnce_RefreshError(t *testing.T) {
	src := &fakeSource{err: models.ErrStoreUnavailable}
	job := NewJob(src, nil, nil, logger.Discard())

	_, err := job.RunOnce(context.Background())
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)
}

func TestSchedule(t *testing.T) {
	job := NewJob(&fakeSource{snap: &snapshot.Snapshot{}}, nil, nil, logger.Discard())
	c := cron.New()

	id, err := job.Schedule(c, "@hourly")
	require.NoError(t, err)
	assert.NotZero(t, id)
	assert.Len(t, c.Entries(), 1)

	_, err = job.Schedule(c, "not a schedule")
	assert.Error(t, err)
}
