package models

import "time"

// Complaint is a citizen-reported issue tracked through its status lifecycle.
// Status and Department are only ever written by the lifecycle manager.
type Complaint struct {
	// ID is assigned by the store on insert and never changes.
	ID uint `gorm:"primaryKey" json:"id"`
	// ReporterID references the submitting citizen in the identity provider.
	ReporterID string `gorm:"type:text;not null;index" json:"reporter_id"`
	// Category is informational and does not constrain transitions.
	Category Category `gorm:"type:text;not null;index" json:"category"`
	// Department is the municipal unit currently responsible for the complaint.
	Department Department `gorm:"type:text;not null;default:general;index" json:"department"`
	// Status is the current lifecycle state.
	Status Status `gorm:"type:text;not null;default:pending;index" json:"status"`
	// Location is the free-text address given by the reporter.
	Location string `gorm:"type:text;not null" json:"location"`
	// Description is the reporter's account of the issue.
	Description string `gorm:"type:text;not null" json:"description"`
	// ImageURL is the public URL returned by the blob store, set once at creation.
	ImageURL string `gorm:"type:text" json:"image_url,omitempty"`
	// Latitude and Longitude place the map pin. The core never interprets them.
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	// CreatedAt is set at creation and never changes.
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	// UpdatedAt is refreshed by the store on every update.
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName keeps the table name stable regardless of gorm's pluralisation.
func (Complaint) TableName() string {
	return "complaints"
}

// ComplaintUpdate is an append-only audit entry describing one status transition.
type ComplaintUpdate struct {
	ID uint `gorm:"primaryKey" json:"id"`
	// ComplaintID references the complaint the entry describes.
	ComplaintID uint `gorm:"not null;index:idx_update_complaint" json:"complaint_id"`
	// Message is the human-readable description of the change.
	Message string `gorm:"type:text;not null" json:"message"`
	// CreatedAt is the time of the transition.
	CreatedAt time.Time `gorm:"not null;index:idx_update_complaint" json:"created_at"`
}

func (ComplaintUpdate) TableName() string {
	return "complaint_updates"
}
