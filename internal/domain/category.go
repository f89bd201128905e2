// Package domain provides the domain layer for tracked student-portal data.
// It contains the three tracked collection types, value objects, and the
// time-relative urgency classification for homework deadlines.
package domain

import "fmt"

// Category identifies one of the three tracked resource kinds.
type Category string

const (
	CategoryHomework Category = "homework"
	CategorySchedule Category = "schedule"
	CategoryGrades   Category = "grades"
)

// Categories lists all tracked categories in canonical order.
var Categories = []Category{CategoryHomework, CategorySchedule, CategoryGrades}

// IsValid checks if the category is valid.
func (c Category) IsValid() bool {
	switch c {
	case CategoryHomework, CategorySchedule, CategoryGrades:
		return true
	default:
		return false
	}
}

// String returns the string representation of the category.
func (c Category) String() string {
	return string(c)
}

// ParseCategory parses a string into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.IsValid() {
		return "", fmt.Errorf("invalid category: %s", s)
	}
	return c, nil
}
