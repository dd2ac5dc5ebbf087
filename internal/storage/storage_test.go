package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"civictracker/backend/internal/logger"
	"civictracker/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps every query on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, AutoMigrate(db))
	return NewStorageService(db, time.Second, logger.Discard())
}

func seed(t *testing.T, s *Service, c models.Complaint) *models.Complaint {
	t.Helper()
	if c.ReporterID == "" {
		c.ReporterID = "citizen-1"
	}
	if c.Category == "" {
		c.Category = models.CategoryInfrastructure
	}
	if c.Department == "" {
		c.Department = models.DepartmentGeneral
	}
	if c.Status == "" {
		c.Status = models.StatusPending
	}
	if c.Location == "" {
		c.Location = "Main Street"
	}
	if c.Description == "" {
		c.Description = "Broken streetlight"
	}
	require.NoError(t, s.CreateComplaint(context.Background(), &c))
	require.NotZero(t, c.ID)
	return &c
}

func TestCreateAndGetComplaint(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	lat := 50.45
	created := seed(t, s, models.Complaint{Description: "Pothole", Latitude: &lat})

	got, err := s.GetComplaintByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pothole", got.Description)
	assert.Equal(t, models.StatusPending, got.Status)
	require.NotNil(t, got.Latitude)
	assert.InDelta(t, 50.45, *got.Latitude, 1e-9)
	assert.Nil(t, got.Longitude)
}

func TestGetComplaintByID_NotFound(t *testing.T) {
	s := newTestService(t)

	_, err := s.GetComplaintByID(context.Background(), 999)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.NotErrorIs(t, err, models.ErrStoreUnavailable)
}

func TestListComplaints_NewestFirstAndFilters(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	old := seed(t, s, models.Complaint{CreatedAt: base, Category: models.CategorySafety, ReporterID: "a"})
	mid := seed(t, s, models.Complaint{CreatedAt: base.Add(time.Hour), Status: models.StatusCompleted, ReporterID: "b"})
	newest := seed(t, s, models.Complaint{CreatedAt: base.Add(2 * time.Hour), Category: models.CategorySafety, ReporterID: "a"})

	all, err := s.ListComplaints(ctx, ComplaintQuery{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []uint{newest.ID, mid.ID, old.ID}, []uint{all[0].ID, all[1].ID, all[2].ID})

	safety, err := s.ListComplaints(ctx, ComplaintQuery{Category: models.CategorySafety})
	require.NoError(t, err)
	assert.Len(t, safety, 2)

	completed, err := s.ListComplaints(ctx, ComplaintQuery{Status: models.StatusCompleted})
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, mid.ID, completed[0].ID)

	mine, err := s.ListComplaints(ctx, ComplaintQuery{ReporterID: "b"})
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestListComplaints_EmptyIsNotNil(t *testing.T) {
	s := newTestService(t)

	list, err := s.ListComplaints(context.Background(), ComplaintQuery{})
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestUpdateStatus_WritesAudit(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	c := seed(t, s, models.Complaint{})

	audit := &models.ComplaintUpdate{Message: "Status updated to completed", CreatedAt: time.Now().UTC()}
	updated, err := s.UpdateStatus(ctx, c.ID, models.StatusCompleted, audit)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, updated.Status)
	assert.Equal(t, c.ID, audit.ComplaintID)
	assert.NotZero(t, audit.ID)

	updates, err := s.ListUpdates(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.Equal(t, "Status updated to completed", updates[0].Message)
}

func TestUpdateStatus_NotFoundWritesNothing(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	_, err := s.UpdateStatus(ctx, 42, models.StatusCompleted, &models.ComplaintUpdate{Message: "x", CreatedAt: time.Now()})
	assert.ErrorIs(t, err, models.ErrNotFound)

	all, err := s.ListAllUpdates(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestUpdateStatus_AuditFailureRollsBack(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	c := seed(t, s, models.Complaint{})

	err := s.DB.Callback().Create().Before("gorm:create").Register("test:fail_audit", func(tx *gorm.DB) {
		if tx.Statement.Table == "complaint_updates" {
			_ = tx.AddError(errors.New("disk full"))
		}
	})
	require.NoError(t, err)

	_, err = s.UpdateStatus(ctx, c.ID, models.StatusRejected, &models.ComplaintUpdate{Message: "x", CreatedAt: time.Now()})
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)

	got, err := s.GetComplaintByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status, "status must not change when the audit insert fails")
}

func TestUpdateDepartment_NoAudit(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	c := seed(t, s, models.Complaint{})

	updated, err := s.UpdateDepartment(ctx, c.ID, models.DepartmentSanitation)
	require.NoError(t, err)
	assert.Equal(t, models.DepartmentSanitation, updated.Department)
	assert.Equal(t, models.StatusPending, updated.Status)

	updates, err := s.ListUpdates(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, updates)

	_, err = s.UpdateDepartment(ctx, 777, models.DepartmentSanitation)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDeleteComplaint_RemovesAudit(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	c := seed(t, s, models.Complaint{})
	other := seed(t, s, models.Complaint{})

	_, err := s.UpdateStatus(ctx, c.ID, models.StatusAcknowledged, &models.ComplaintUpdate{Message: "a", CreatedAt: time.Now()})
	require.NoError(t, err)
	_, err = s.UpdateStatus(ctx, other.ID, models.StatusAcknowledged, &models.ComplaintUpdate{Message: "b", CreatedAt: time.Now()})
	require.NoError(t, err)

	require.NoError(t, s.DeleteComplaint(ctx, c.ID))

	_, err = s.GetComplaintByID(ctx, c.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	all, err := s.ListAllUpdates(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, other.ID, all[0].ComplaintID)

	assert.ErrorIs(t, s.DeleteComplaint(ctx, c.ID), models.ErrNotFound)
}

func TestClosedDatabase_StoreUnavailable(t *testing.T) {
	s := newTestService(t)
	sqlDB, err := s.DB.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = s.ListComplaints(context.Background(), ComplaintQuery{})
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)
	assert.ErrorIs(t, s.Ping(context.Background()), models.ErrStoreUnavailable)
}

func TestPing(t *testing.T) {
	s := newTestService(t)
	assert.NoError(t, s.Ping(context.Background()))
}
