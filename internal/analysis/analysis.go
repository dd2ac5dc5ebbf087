// Package analysis computes summary statistics over a complaint snapshot.
// Every function is pure: the same collection and evaluation time give the same result.
package analysis

import (
	"math"
	"time"

	"civictracker/backend/internal/models"
)

const day = 24 * time.Hour

// Summary is the dashboard view of a complaint collection.
type Summary struct {
	TotalCount            int                       `json:"total_count"`
	CountByStatus         map[models.Status]int     `json:"count_by_status"`
	CountByCategory       map[models.Category]int   `json:"count_by_category"`
	CountByDepartment     map[models.Department]int `json:"count_by_department"`
	AverageResolutionDays int                       `json:"average_resolution_days"`
	EvaluatedAt           time.Time                 `json:"evaluated_at"`
}

// Summarize computes every statistic for complaints as of now.
func Summarize(complaints []models.Complaint, now time.Time) Summary {
	return Summary{
		TotalCount:            TotalCount(complaints),
		CountByStatus:         CountByStatus(complaints),
		CountByCategory:       CountByCategory(complaints),
		CountByDepartment:     CountByDepartment(complaints),
		AverageResolutionDays: AverageResolutionDays(complaints, now),
		EvaluatedAt:           now,
	}
}

func TotalCount(complaints []models.Complaint) int {
	return len(complaints)
}

// CountByStatus maps each observed status to its count. Unobserved values are
// absent; indexing the map with them yields zero.
func CountByStatus(complaints []models.Complaint) map[models.Status]int {
	counts := make(map[models.Status]int)
	for _, c := range complaints {
		counts[c.Status]++
	}
	return counts
}

func CountByCategory(complaints []models.Complaint) map[models.Category]int {
	counts := make(map[models.Category]int)
	for _, c := range complaints {
		counts[c.Category]++
	}
	return counts
}

// CountByDepartment counts a complaint without a department as general.
func CountByDepartment(complaints []models.Complaint) map[models.Department]int {
	counts := make(map[models.Department]int)
	for _, c := range complaints {
		d := c.Department
		if d == "" {
			d = models.DepartmentGeneral
		}
		counts[d]++
	}
	return counts
}

// AverageResolutionDays is the rounded mean, over completed complaints, of the
// whole days (rounded up) between creation and now. It is 0 when nothing is completed.
//
// The interval ends at now rather than at the completing transition, so the
// value keeps growing for complaints that are already closed.
// TODO: switch to the completing transition's timestamp once product confirms the metric.
func AverageResolutionDays(complaints []models.Complaint, now time.Time) int {
	var total float64
	var n int
	for _, c := range complaints {
		if c.Status != models.StatusCompleted {
			continue
		}
		total += ResolutionDays(c.CreatedAt, now)
		n++
	}
	if n == 0 {
		return 0
	}
	return int(math.Round(total / float64(n)))
}

// ResolutionDays returns the absolute elapsed time between createdAt and now
// in whole days, rounded up.
func ResolutionDays(createdAt, now time.Time) float64 {
	elapsed := now.Sub(createdAt)
	if elapsed < 0 {
		elapsed = -elapsed
	}
	return math.Ceil(float64(elapsed) / float64(day))
}
