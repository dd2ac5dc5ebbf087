package models

import "time"

// EventType names the kind of change carried by an Event.
type EventType string

const (
	EventComplaintCreated  EventType = "complaint_created"
	EventStatusChanged     EventType = "status_changed"
	EventDepartmentChanged EventType = "department_changed"
	EventComplaintDeleted  EventType = "complaint_deleted"
)

// Event is pushed to connected dashboards after a successful write.
// Dashboards treat it as the trigger to refresh their snapshot.
type Event struct {
	Type        EventType  `json:"type"`
	ComplaintID uint       `json:"complaint_id"`
	Status      Status     `json:"status,omitempty"`
	Department  Department `json:"department,omitempty"`
	Message     string     `json:"message,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
