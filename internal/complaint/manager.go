// Package complaint is the lifecycle manager: the only writer of a complaint's
// status and department and the only creator of audit entries.
package complaint

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"civictracker/backend/internal/blob"
	"civictracker/backend/internal/config"
	"civictracker/backend/internal/metrics"
	"civictracker/backend/internal/models"
	"civictracker/backend/internal/storage"
)

// Invalidator drops cached snapshots after a write.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Notifier announces a completed write to connected dashboards.
type Notifier interface {
	Publish(ctx context.Context, event models.Event) error
}

// Manager applies validated lifecycle operations through the store.
type Manager struct {
	Storage storage.Storage

	uploader blob.Uploader
	cache    Invalidator
	notifier Notifier
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

type Option func(*Manager)

func WithUploader(u blob.Uploader) Option    { return func(m *Manager) { m.uploader = u } }
func WithInvalidator(i Invalidator) Option   { return func(m *Manager) { m.cache = i } }
func WithNotifier(n Notifier) Option         { return func(m *Manager) { m.notifier = n } }
func WithMetrics(mt *metrics.Metrics) Option { return func(m *Manager) { m.metrics = mt } }
func WithClock(now func() time.Time) Option  { return func(m *Manager) { m.now = now } }

// NewManager creates a lifecycle manager over s.
func NewManager(s storage.Storage, logger *slog.Logger, opts ...Option) *Manager {
	m := &Manager{
		Storage: s,
		logger:  logger.With("component", "complaint"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SubmitParams is the reporter's input for a new complaint.
type SubmitParams struct {
	ReporterID  string
	Category    string
	Description string
	Location    string
	// Department defaults to general when empty.
	Department string
	Latitude   *float64
	Longitude  *float64

	// Image is optional. ImageContentType defaults to image/jpeg.
	Image            io.Reader
	ImageContentType string
}

// TransitionStatus moves a complaint to newStatus and appends the audit entry
// "Status updated to <newStatus>". Any status may follow any other.
func (m *Manager) TransitionStatus(ctx context.Context, id uint, newStatus string) (*models.Complaint, error) {
	status, err := models.ParseStatus(newStatus)
	if err != nil {
		return nil, err
	}

	audit := &models.ComplaintUpdate{
		Message:   fmt.Sprintf(config.StatusUpdateMessageFormat, status),
		CreatedAt: m.now(),
	}
	updated, err := m.Storage.UpdateStatus(ctx, id, status, audit)
	if err != nil {
		m.storeFailed("update_status", err)
		return nil, err
	}

	if m.metrics != nil {
		m.metrics.TransitionsTotal.WithLabelValues(string(status)).Inc()
	}
	m.logger.Info("status changed", "complaint_id", id, "status", status)
	m.afterWrite(ctx, models.Event{
		Type:        models.EventStatusChanged,
		ComplaintID: id,
		Status:      status,
		Message:     audit.Message,
		CreatedAt:   audit.CreatedAt,
	})
	return updated, nil
}

// ReassignDepartment hands a complaint to another department.
// Unlike status changes this writes no audit entry.
func (m *Manager) ReassignDepartment(ctx context.Context, id uint, newDepartment string) (*models.Complaint, error) {
	department, err := models.ParseDepartment(newDepartment)
	if err != nil {
		return nil, err
	}

	updated, err := m.Storage.UpdateDepartment(ctx, id, department)
	if err != nil {
		m.storeFailed("update_department", err)
		return nil, err
	}

	if m.metrics != nil {
		m.metrics.ReassignmentsTotal.WithLabelValues(string(department)).Inc()
	}
	m.logger.Info("department changed", "complaint_id", id, "department", department)
	m.afterWrite(ctx, models.Event{
		Type:        models.EventDepartmentChanged,
		ComplaintID: id,
		Department:  department,
		CreatedAt:   m.now(),
	})
	return updated, nil
}

// Submit validates p, uploads the image if present and inserts a pending complaint.
// A failed upload aborts the submission before anything is inserted.
func (m *Manager) Submit(ctx context.Context, p SubmitParams) (*models.Complaint, error) {
	c, err := m.validate(p)
	if err != nil {
		m.submitted("invalid")
		return nil, err
	}

	if p.Image != nil {
		url, err := m.upload(ctx, p.Image, p.ImageContentType)
		if err != nil {
			if errors.Is(err, models.ErrValidation) {
				m.submitted("invalid")
			} else {
				m.submitted("upload_error")
			}
			return nil, err
		}
		c.ImageURL = url
	}

	if err := m.Storage.CreateComplaint(ctx, c); err != nil {
		m.storeFailed("create_complaint", err)
		m.submitted("store_error")
		if c.ImageURL != "" {
			m.logger.Warn("complaint not stored, image left orphaned", "image_url", c.ImageURL)
		}
		return nil, err
	}

	m.submitted("created")
	m.logger.Info("complaint submitted", "complaint_id", c.ID, "category", c.Category, "department", c.Department)
	m.afterWrite(ctx, models.Event{
		Type:        models.EventComplaintCreated,
		ComplaintID: c.ID,
		Status:      c.Status,
		Department:  c.Department,
		CreatedAt:   c.CreatedAt,
	})
	return c, nil
}

// Delete removes a complaint and its audit trail. No audit entry records the deletion.
func (m *Manager) Delete(ctx context.Context, id uint) error {
	if err := m.Storage.DeleteComplaint(ctx, id); err != nil {
		m.storeFailed("delete_complaint", err)
		return err
	}

	if m.metrics != nil {
		m.metrics.DeletionsTotal.Inc()
	}
	m.logger.Info("complaint deleted", "complaint_id", id)
	m.afterWrite(ctx, models.Event{
		Type:        models.EventComplaintDeleted,
		ComplaintID: id,
		CreatedAt:   m.now(),
	})
	return nil
}

// Get returns one complaint straight from the store.
func (m *Manager) Get(ctx context.Context, id uint) (*models.Complaint, error) {
	c, err := m.Storage.GetComplaintByID(ctx, id)
	if err != nil {
		m.storeFailed("get_complaint", err)
		return nil, err
	}
	return c, nil
}

// History returns the audit entries of a complaint, oldest first.
func (m *Manager) History(ctx context.Context, id uint) ([]models.ComplaintUpdate, error) {
	if _, err := m.Get(ctx, id); err != nil {
		return nil, err
	}
	updates, err := m.Storage.ListUpdates(ctx, id)
	if err != nil {
		m.storeFailed("list_updates", err)
		return nil, err
	}
	return updates, nil
}

func (m *Manager) validate(p SubmitParams) (*models.Complaint, error) {
	reporter := strings.TrimSpace(p.ReporterID)
	if reporter == "" {
		return nil, models.MissingField("reporter_id")
	}
	if strings.TrimSpace(p.Description) == "" {
		return nil, models.MissingField("description")
	}
	if strings.TrimSpace(p.Location) == "" {
		return nil, models.MissingField("location")
	}
	if strings.TrimSpace(p.Category) == "" {
		return nil, models.MissingField("category")
	}
	category, err := models.ParseCategory(p.Category)
	if err != nil {
		return nil, err
	}
	department := models.DepartmentGeneral
	if p.Department != "" {
		if department, err = models.ParseDepartment(p.Department); err != nil {
			return nil, err
		}
	}

	return &models.Complaint{
		ReporterID:  reporter,
		Category:    category,
		Department:  department,
		Status:      models.StatusPending,
		Location:    strings.TrimSpace(p.Location),
		Description: strings.TrimSpace(p.Description),
		Latitude:    p.Latitude,
		Longitude:   p.Longitude,
		CreatedAt:   m.now(),
	}, nil
}

func (m *Manager) upload(ctx context.Context, r io.Reader, contentType string) (string, error) {
	if m.uploader == nil {
		return "", fmt.Errorf("%w: no blob store configured", models.ErrUpload)
	}
	url, err := m.uploader.Upload(ctx, r, contentType)
	if err != nil {
		if errors.Is(err, models.ErrValidation) || errors.Is(err, models.ErrUpload) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", models.ErrUpload, err)
	}
	return url, nil
}

// afterWrite runs the post-commit side effects. They are best effort: the
// write already happened, so failures are logged and swallowed.
func (m *Manager) afterWrite(ctx context.Context, event models.Event) {
	ctx = context.WithoutCancel(ctx)

	if m.cache != nil {
		if err := m.cache.Invalidate(ctx); err != nil {
			m.logger.Warn("failed to invalidate snapshot", "complaint_id", event.ComplaintID, "error", err)
		}
	}
	if m.notifier != nil {
		if err := m.notifier.Publish(ctx, event); err != nil {
			m.logger.Warn("failed to publish event", "type", event.Type, "complaint_id", event.ComplaintID, "error", err)
		}
	}
}

func (m *Manager) storeFailed(op string, err error) {
	if m.metrics != nil && errors.Is(err, models.ErrStoreUnavailable) {
		m.metrics.StoreErrorsTotal.WithLabelValues(op).Inc()
	}
}

func (m *Manager) submitted(result string) {
	if m.metrics != nil {
		m.metrics.SubmissionsTotal.WithLabelValues(result).Inc()
	}
}
