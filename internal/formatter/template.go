// Package formatter provides template parsing, variable resolution and
// preset management for formatting change lines with customizable
// templates.
package formatter

import (
	"regexp"
	"strings"
)

// TemplateEngine provides template parsing and variable substitution.
type TemplateEngine interface {
	// Parse returns a list of variables found in the template.
	Parse(template string) ([]string, error)

	// Substitute replaces variables in the template with values from the context.
	Substitute(template string, ctx VariableContext) (string, error)
}

type templateEngine struct {
	variablePattern *regexp.Regexp
}

// NewTemplateEngine creates a new template engine instance.
func NewTemplateEngine() TemplateEngine {
	return &templateEngine{
		variablePattern: regexp.MustCompile(`\{\{([a-z0-9-]+)\}\}`),
	}
}

// Parse identifies all variables in a template string using
// {{variable-name}} syntax. Returns the variable names without duplicates.
func (te *templateEngine) Parse(template string) ([]string, error) {
	if template == "" {
		return []string{}, nil
	}

	matches := te.variablePattern.FindAllStringSubmatch(template, -1)
	if matches == nil {
		return []string{}, nil
	}

	seen := make(map[string]bool)
	var variables []string
	for _, match := range matches {
		if len(match) > 1 && !seen[match[1]] {
			variables = append(variables, match[1])
			seen[match[1]] = true
		}
	}
	return variables, nil
}

// Substitute replaces all variables in the template with values from the
// context. Unknown variables produce an error listing the available ones.
func (te *templateEngine) Substitute(template string, ctx VariableContext) (string, error) {
	if template == "" {
		return "", nil
	}

	resolver := NewVariableResolver()
	result := template

	matches := te.variablePattern.FindAllStringSubmatch(template, -1)
	for _, match := range matches {
		if len(match) > 1 {
			value, err := resolver.Resolve(match[1], ctx)
			if err != nil {
				return "", err
			}
			result = strings.ReplaceAll(result, match[0], value)
		}
	}
	return result, nil
}
