package formatter

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"studentdesk/internal/domain"
)

// VariableContext contains all data needed for template variable resolution.
type VariableContext struct {
	// Category is the changed collection.
	Category domain.Category
	// Title is the headline of the change, e.g. "New homework: Lab 1".
	Title string
	// Body carries the change details and may be empty.
	Body string
	// Student is the full name of the watched student.
	Student string
	// At is the moment the change was detected.
	At time.Time
}

// VariableResolver resolves template variables to their values.
type VariableResolver interface {
	Resolve(varName string, ctx VariableContext) (string, error)
}

type variableResolver struct{}

// NewVariableResolver creates a resolver for the supported variables.
func NewVariableResolver() VariableResolver {
	return &variableResolver{}
}

func (r *variableResolver) Resolve(varName string, ctx VariableContext) (string, error) {
	switch varName {
	case "category":
		return ctx.Category.String(), nil
	case "title":
		return ctx.Title, nil
	case "body":
		return ctx.Body, nil
	case "student":
		return ctx.Student, nil
	case "time":
		return ctx.At.Format("15:04:05"), nil
	case "date":
		return ctx.At.Format("2006-01-02"), nil
	default:
		return "", fmt.Errorf("unknown variable %q, available: %s", varName, strings.Join(AvailableVariables(), ", "))
	}
}

// AvailableVariables lists the supported variable names in sorted order.
func AvailableVariables() []string {
	names := []string{"category", "title", "body", "student", "time", "date"}
	sort.Strings(names)
	return names
}
