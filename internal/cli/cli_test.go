package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"civictracker/backend/internal/complaint"
	"civictracker/backend/internal/logger"
	"civictracker/backend/internal/models"
	"civictracker/backend/internal/snapshot"
	"civictracker/backend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testNow = time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)

func setupStore(t *testing.T) *storage.Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, storage.AutoMigrate(db))

	store := storage.NewStorageService(db, time.Second, logger.Discard())

	prevOpen, prevNow, prevFormat := openDeps, now, formatFlag
	openDeps = func(context.Context) (*deps, error) {
		return &deps{
			manager:   complaint.NewManager(store, logger.Discard(), complaint.WithClock(func() time.Time { return testNow })),
			snapshots: snapshot.NewCache(store, nil, 0, nil, logger.Discard()),
			close:     func() {},
		}, nil
	}
	now = func() time.Time { return testNow }
	t.Cleanup(func() { openDeps, now, formatFlag = prevOpen, prevNow, prevFormat })
	return store
}

func seedComplaint(t *testing.T, store *storage.Service, status models.Status, createdAt time.Time) *models.Complaint {
	t.Helper()
	c := &models.Complaint{
		ReporterID:  "citizen-1",
		Category:    models.CategoryInfrastructure,
		Department:  models.DepartmentGeneral,
		Status:      status,
		Location:    "Main Street",
		Description: "Pothole on Main St",
		CreatedAt:   createdAt,
	}
	require.NoError(t, store.CreateComplaint(context.Background(), c))
	return c
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&out)
	RootCmd.SetArgs(args)
	err := RootCmd.Execute()
	return out.String(), err
}

func TestStatusAndHistory(t *testing.T) {
	store := setupStore(t)
	c := seedComplaint(t, store, models.StatusPending, testNow.Add(-time.Hour))

	out, err := run(t, "status", "1", "completed", "--format", "json")
	require.NoError(t, err)
	var updated models.Complaint
	require.NoError(t, json.Unmarshal([]byte(out), &updated))
	assert.Equal(t, models.StatusCompleted, updated.Status)

	out, err = run(t, "history", "1", "--format", "json")
	require.NoError(t, err)
	var history []models.ComplaintUpdate
	require.NoError(t, json.Unmarshal([]byte(out), &history))
	require.Len(t, history, 1)
	assert.Equal(t, c.ID, history[0].ComplaintID)
	assert.Equal(t, "Status updated to completed", history[0].Message)
}

func TestStatus_InvalidValue(t *testing.T) {
	setupStore(t)

	_, err := run(t, "status", "1", "closed")
	assert.ErrorIs(t, err, models.ErrInvalidStatus)

	_, err = run(t, "status", "x", "completed")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestDepartment(t *testing.T) {
	store := setupStore(t)
	seedComplaint(t, store, models.StatusPending, testNow)

	out, err := run(t, "department", "1", "sanitation", "--format", "text")
	require.NoError(t, err)
	assert.Equal(t, "complaint 1: status=pending department=sanitation\n", out)
}

func TestDelete(t *testing.T) {
	store := setupStore(t)
	seedComplaint(t, store, models.StatusPending, testNow)

	out, err := run(t, "delete", "1", "--format", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true,"id":1}`, out)

	_, err = run(t, "delete", "1")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestList(t *testing.T) {
	store := setupStore(t)
	seedComplaint(t, store, models.StatusPending, testNow.Add(-2*time.Hour))
	seedComplaint(t, store, models.StatusCompleted, testNow.Add(-time.Hour))

	out, err := run(t, "list", "--status", "completed", "--format", "json")
	require.NoError(t, err)
	var got []models.Complaint
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, uint(2), got[0].ID)

	out, err = run(t, "list", "--status", "all", "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "completed")
	assert.Contains(t, out, "pending")
}

func TestStats(t *testing.T) {
	store := setupStore(t)
	seedComplaint(t, store, models.StatusCompleted, testNow.Add(-72*time.Hour))
	seedComplaint(t, store, models.StatusPending, testNow)

	out, err := run(t, "stats", "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "total: 2")
	assert.Contains(t, out, "average resolution: 3 days")
}
