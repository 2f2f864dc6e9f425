package rules

import (
	"fmt"

	"github.com/tidyfs/tidyfs/pkg/models"
)

// presets maps preset names and their aliases to template strings.
var presets = map[string]string{
	"by-type":       "{category}/{filename}",
	"type":          "{category}/{filename}",
	"by-date":       "{year}/{month}/{filename}",
	"date":          "{year}/{month}/{filename}",
	"by-extension":  "{extension}/{filename}",
	"extension":     "{extension}/{filename}",
	"ext":           "{extension}/{filename}",
	"by-camera":     "{camera}/{filename}",
	"camera":        "{camera}/{filename}",
	"by-date-taken": "{taken.year}/{taken.month}/{filename}",
	"date-taken":    "{taken.year}/{taken.month}/{filename}",
	"photos":        "{taken.year}/{taken.month}/{filename}",
	"by-artist":     "{artist}/{filename}",
	"artist":        "{artist}/{filename}",
	"by-album":      "{artist}/{album}/{filename}",
	"album":         "{artist}/{album}/{filename}",
	"music":         "{artist}/{album}/{filename}",
}

// Preset returns the template string for a preset name or alias.
func Preset(name string) (string, bool) {
	tpl, ok := presets[name]
	return tpl, ok
}

// ForMode returns the parsed template for a built-in organize mode.
func ForMode(mode models.OrganizeMode) (*Template, error) {
	tpl, ok := Preset(string(mode))
	if !ok {
		return nil, fmt.Errorf("unknown organize mode: %s", mode)
	}
	return NewTemplate(tpl)
}

// Resolve interprets a template argument: a preset name or alias
// expands to its template, anything else parses as a template string.
func Resolve(arg string) (*Template, error) {
	if tpl, ok := Preset(arg); ok {
		return NewTemplate(tpl)
	}
	return NewTemplate(arg)
}
