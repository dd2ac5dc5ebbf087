// Package query narrows a complaint snapshot for display.
package query

import (
	"strconv"
	"strings"

	"civictracker/backend/internal/models"
)

// Predicate selects complaints. Empty fields and the "all" sentinel are inactive;
// active fields combine with AND.
type Predicate struct {
	// SearchText matches case-insensitively against description, id and location.
	SearchText string `form:"search"`
	Status     string `form:"status"`
	Category   string `form:"category"`
	Department string `form:"department"`
}

// Filter returns the complaints matching p in their original order.
// The input is never modified and the result is never nil.
func Filter(complaints []models.Complaint, p Predicate) []models.Complaint {
	// Whitespace is part of the search text; only "" disables it.
	search := strings.ToLower(p.SearchText)
	out := make([]models.Complaint, 0, len(complaints))
	for _, c := range complaints {
		if search != "" && !matchesSearch(c, search) {
			continue
		}
		if active(p.Status) && string(c.Status) != p.Status {
			continue
		}
		if active(p.Category) && string(c.Category) != p.Category {
			continue
		}
		if active(p.Department) && string(c.Department) != p.Department {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Matches reports whether a single complaint satisfies p.
func (p Predicate) Matches(c models.Complaint) bool {
	return len(Filter([]models.Complaint{c}, p)) == 1
}

func active(v string) bool {
	return v != "" && v != models.FilterAll
}

func matchesSearch(c models.Complaint, lowered string) bool {
	return strings.Contains(strings.ToLower(c.Description), lowered) ||
		strings.Contains(strconv.FormatUint(uint64(c.ID), 10), lowered) ||
		strings.Contains(strings.ToLower(c.Location), lowered)
}
