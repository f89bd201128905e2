package formatter

// Presets are the named output formats accepted wherever a template is.
var presets = map[string]string{
	"default":  "[{{time}}] [{{category}}] {{title}}",
	"detailed": "[{{date}} {{time}}] [{{category}}] {{title}} {{body}}",
	"plain":    "{{title}}",
	"csv":      "{{date}},{{time}},{{category}},{{title}}",
}

// ResolvePreset returns the template for a preset name. The second return
// value reports whether the name is a known preset.
func ResolvePreset(name string) (string, bool) {
	tmpl, ok := presets[name]
	return tmpl, ok
}

// PresetNames lists the available preset names.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	return names
}

// Expand resolves a format argument: a preset name expands to its
// template, anything else is treated as a literal template and validated
// against the known variables.
func Expand(format string) (string, error) {
	if tmpl, ok := ResolvePreset(format); ok {
		return tmpl, nil
	}
	engine := NewTemplateEngine()
	vars, err := engine.Parse(format)
	if err != nil {
		return "", err
	}
	resolver := NewVariableResolver()
	for _, v := range vars {
		if _, err := resolver.Resolve(v, VariableContext{}); err != nil {
			return "", err
		}
	}
	return format, nil
}
