package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"civictracker/backend/internal/config"
	"civictracker/backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ComplaintQuery narrows ListComplaints. Empty fields do not filter.
type ComplaintQuery struct {
	Category   models.Category
	Status     models.Status
	ReporterID string
}

// Storage is the complaint store adapter. Every method is a suspension point
// and may fail with models.ErrNotFound or models.ErrStoreUnavailable.
type Storage interface {
	ListComplaints(ctx context.Context, q ComplaintQuery) ([]models.Complaint, error)
	GetComplaintByID(ctx context.Context, id uint) (*models.Complaint, error)
	CreateComplaint(ctx context.Context, c *models.Complaint) error
	UpdateStatus(ctx context.Context, id uint, status models.Status, audit *models.ComplaintUpdate) (*models.Complaint, error)
	UpdateDepartment(ctx context.Context, id uint, department models.Department) (*models.Complaint, error)
	DeleteComplaint(ctx context.Context, id uint) error

	ListUpdates(ctx context.Context, complaintID uint) ([]models.ComplaintUpdate, error)
	ListAllUpdates(ctx context.Context) ([]models.ComplaintUpdate, error)

	Ping(ctx context.Context) error
}

type Service struct {
	DB      *gorm.DB
	timeout time.Duration
	logger  *slog.Logger
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, timeout time.Duration, logger *slog.Logger) *Service {
	if timeout <= 0 {
		timeout = config.DefaultStoreTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		DB:      db,
		timeout: timeout,
		logger:  logger.With("component", "storage"),
	}
}

// Open connects to PostgreSQL. gorm's own logger is silenced; failures are
// reported through the returned errors instead.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w: %w", models.ErrStoreUnavailable, err)
	}
	return db, nil
}

// AutoMigrate creates or updates the complaints and complaint_updates tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.Complaint{}, &models.ComplaintUpdate{})
}

func (s *Service) withTimeout(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	return s.DB.WithContext(ctx), cancel
}

// wrapErr maps driver errors onto the models error taxonomy.
func (s *Service) wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	s.logger.Error("store operation failed", "op", op, "error", err)
	return fmt.Errorf("%s: %w: %w", op, models.ErrStoreUnavailable, err)
}

// ListComplaints returns complaints newest first.
func (s *Service) ListComplaints(ctx context.Context, q ComplaintQuery) ([]models.Complaint, error) {
	db, cancel := s.withTimeout(ctx)
	defer cancel()

	if q.Category != "" {
		db = db.Where("category = ?", q.Category)
	}
	if q.Status != "" {
		db = db.Where("status = ?", q.Status)
	}
	if q.ReporterID != "" {
		db = db.Where("reporter_id = ?", q.ReporterID)
	}

	complaints := []models.Complaint{}
	if err := db.Order("created_at desc").Order("id desc").Find(&complaints).Error; err != nil {
		return nil, s.wrapErr("list complaints", err)
	}
	return complaints, nil
}

func (s *Service) GetComplaintByID(ctx context.Context, id uint) (*models.Complaint, error) {
	db, cancel := s.withTimeout(ctx)
	defer cancel()

	var c models.Complaint
	if err := db.First(&c, id).Error; err != nil {
		return nil, s.wrapErr("get complaint", err)
	}
	return &c, nil
}

// CreateComplaint inserts c and fills in its ID.
func (s *Service) CreateComplaint(ctx context.Context, c *models.Complaint) error {
	db, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := db.Create(c).Error; err != nil {
		return s.wrapErr("create complaint", err)
	}
	return nil
}

// UpdateStatus sets the status and appends the audit entry in one transaction.
// If either write fails neither is kept.
func (s *Service) UpdateStatus(ctx context.Context, id uint, status models.Status, audit *models.ComplaintUpdate) (*models.Complaint, error) {
	db, cancel := s.withTimeout(ctx)
	defer cancel()

	var c models.Complaint
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&c, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&c).Update("status", status).Error; err != nil {
			return err
		}
		if audit != nil {
			audit.ComplaintID = id
			if err := tx.Create(audit).Error; err != nil {
				return err
			}
		}
		return tx.First(&c, id).Error
	})
	if err != nil {
		return nil, s.wrapErr("update status", err)
	}
	return &c, nil
}

// UpdateDepartment sets the department. No audit entry is written.
func (s *Service) UpdateDepartment(ctx context.Context, id uint, department models.Department) (*models.Complaint, error) {
	db, cancel := s.withTimeout(ctx)
	defer cancel()

	var c models.Complaint
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&c, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&c).Update("department", department).Error; err != nil {
			return err
		}
		return tx.First(&c, id).Error
	})
	if err != nil {
		return nil, s.wrapErr("update department", err)
	}
	return &c, nil
}

// DeleteComplaint removes the complaint together with its audit entries.
func (s *Service) DeleteComplaint(ctx context.Context, id uint) error {
	db, cancel := s.withTimeout(ctx)
	defer cancel()

	err := db.Transaction(func(tx *gorm.DB) error {
		var c models.Complaint
		if err := tx.Select("id").First(&c, id).Error; err != nil {
			return err
		}
		if err := tx.Where("complaint_id = ?", id).Delete(&models.ComplaintUpdate{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Complaint{}, id).Error
	})
	return s.wrapErr("delete complaint", err)
}

// ListUpdates returns the audit trail of one complaint, oldest first.
func (s *Service) ListUpdates(ctx context.Context, complaintID uint) ([]models.ComplaintUpdate, error) {
	db, cancel := s.withTimeout(ctx)
	defer cancel()

	updates := []models.ComplaintUpdate{}
	err := db.Where("complaint_id = ?", complaintID).
		Order("created_at asc").Order("id asc").
		Find(&updates).Error
	if err != nil {
		return nil, s.wrapErr("list updates", err)
	}
	return updates, nil
}

func (s *Service) ListAllUpdates(ctx context.Context) ([]models.ComplaintUpdate, error) {
	db, cancel := s.withTimeout(ctx)
	defer cancel()

	updates := []models.ComplaintUpdate{}
	if err := db.Order("created_at asc").Order("id asc").Find(&updates).Error; err != nil {
		return nil, s.wrapErr("list all updates", err)
	}
	return updates, nil
}

// Ping checks that the database answers.
func (s *Service) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return s.wrapErr("ping", err)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.wrapErr("ping", sqlDB.PingContext(ctx))
}
