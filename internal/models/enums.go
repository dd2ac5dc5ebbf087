package models

import "strings"

// Status is the lifecycle state of a complaint.
type Status string

const (
	StatusPending      Status = "pending"
	StatusAcknowledged Status = "acknowledged"
	StatusInProcess    Status = "in_process"
	StatusCompleted    Status = "completed"
	StatusRejected     Status = "rejected"
)

// Statuses lists every valid status in display order.
var Statuses = []Status{
	StatusPending,
	StatusAcknowledged,
	StatusInProcess,
	StatusCompleted,
	StatusRejected,
}

// Category classifies what kind of issue was reported.
type Category string

const (
	CategoryInfrastructure Category = "infrastructure"
	CategoryUtilities      Category = "utilities"
	CategoryPublicServices Category = "public_services"
	CategorySafety         Category = "safety"
	CategoryEnvironmental  Category = "environmental"
)

var Categories = []Category{
	CategoryInfrastructure,
	CategoryUtilities,
	CategoryPublicServices,
	CategorySafety,
	CategoryEnvironmental,
}

// Department is the municipal unit responsible for a complaint.
type Department string

const (
	DepartmentWaterSupply    Department = "water_supply"
	DepartmentElectricity    Department = "electricity"
	DepartmentRoadsTransport Department = "roads_transport"
	DepartmentSanitation     Department = "sanitation"
	DepartmentHealthcare     Department = "healthcare"
	DepartmentEducation      Department = "education"
	DepartmentSecurity       Department = "security"
	DepartmentEnvironment    Department = "environment"
	DepartmentGeneral        Department = "general"
)

var Departments = []Department{
	DepartmentWaterSupply,
	DepartmentElectricity,
	DepartmentRoadsTransport,
	DepartmentSanitation,
	DepartmentHealthcare,
	DepartmentEducation,
	DepartmentSecurity,
	DepartmentEnvironment,
	DepartmentGeneral,
}

// FilterAll is the sentinel value meaning "do not filter on this field".
const FilterAll = "all"

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

func (c Category) Valid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

func (d Department) Valid() bool {
	for _, v := range Departments {
		if d == v {
			return true
		}
	}
	return false
}

// ParseStatus returns the Status named by s or a *ValidationError.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", &ValidationError{Field: "status", Value: s, Kind: ErrInvalidStatus, Allowed: joinValues(Statuses)}
	}
	return st, nil
}

// ParseCategory returns the Category named by s or a *ValidationError.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", &ValidationError{Field: "category", Value: s, Kind: ErrInvalidCategory, Allowed: joinValues(Categories)}
	}
	return c, nil
}

// ParseDepartment returns the Department named by s or a *ValidationError.
func ParseDepartment(s string) (Department, error) {
	d := Department(s)
	if !d.Valid() {
		return "", &ValidationError{Field: "department", Value: s, Kind: ErrInvalidDepartment, Allowed: joinValues(Departments)}
	}
	return d, nil
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
