// Package rules routes files to destination paths through custom rule
// sets and destination templates with {variable} placeholders.
package rules

import (
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/tidyfs/tidyfs/pkg/models"
)

// vocabulary lists every variable a template may reference. Templates
// referencing anything else fail at parse time.
var vocabulary = map[string]bool{
	"filename":    true,
	"name":        true,
	"ext":         true,
	"extension":   true,
	"category":    true,
	"type":        true,
	"size":        true,
	"size_kb":     true,
	"size_mb":     true,
	"year":        true,
	"month":       true,
	"day":         true,
	"date":        true,
	"now.year":    true,
	"now.month":   true,
	"now.day":     true,
	"now.date":    true,
	"camera":      true,
	"date_taken":  true,
	"taken.year":  true,
	"taken.month": true,
	"artist":      true,
	"album":       true,
}

// metadataVariables are the vocabulary entries fed by metadata providers.
var metadataVariables = map[string]bool{
	"camera":      true,
	"date_taken":  true,
	"taken.year":  true,
	"taken.month": true,
	"artist":      true,
	"album":       true,
}

// token is one parsed template element, either literal text or a
// variable reference.
type token struct {
	text  string
	isVar bool
}

// Template is a parsed destination pattern. A nil Template is invalid;
// construct through NewTemplate.
type Template struct {
	raw    string
	tokens []token
}

// NewTemplate parses and validates a template string. Unbalanced braces
// and variables outside the vocabulary are errors.
func NewTemplate(raw string) (*Template, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("empty template")
	}

	tokens, err := parseTemplate(raw)
	if err != nil {
		return nil, err
	}
	return &Template{raw: raw, tokens: tokens}, nil
}

func parseTemplate(raw string) ([]token, error) {
	var tokens []token
	rest := raw

	for len(rest) > 0 {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			if strings.IndexByte(rest, '}') >= 0 {
				return nil, fmt.Errorf("unbalanced braces in template %q", raw)
			}
			tokens = append(tokens, token{text: rest})
			break
		}

		if open > 0 {
			literal := rest[:open]
			if strings.IndexByte(literal, '}') >= 0 {
				return nil, fmt.Errorf("unbalanced braces in template %q", raw)
			}
			tokens = append(tokens, token{text: literal})
		}

		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			return nil, fmt.Errorf("unbalanced braces in template %q", raw)
		}

		name := rest[open+1 : open+end]
		if strings.IndexByte(name, '{') >= 0 {
			return nil, fmt.Errorf("unbalanced braces in template %q", raw)
		}
		if !vocabulary[name] {
			return nil, fmt.Errorf("unknown template variable {%s} in %q", name, raw)
		}

		tokens = append(tokens, token{text: name, isVar: true})
		rest = rest[open+end+1:]
	}

	return tokens, nil
}

// String returns the original template text.
func (t *Template) String() string { return t.raw }

// UsesMetadata reports whether the template references any
// metadata-provided variable.
func (t *Template) UsesMetadata() bool {
	for _, tok := range t.tokens {
		if tok.isVar && metadataVariables[tok.text] {
			return true
		}
	}
	return false
}

// Expand substitutes variables and normalizes the result to a safe
// relative path. Variables with no available value become "Unknown".
func (t *Template) Expand(desc *models.FileDescriptor, now time.Time) string {
	vars := variables(desc, now)

	var b strings.Builder
	for _, tok := range t.tokens {
		if !tok.isVar {
			b.WriteString(tok.text)
			continue
		}
		if value, ok := vars[tok.text]; ok {
			b.WriteString(value)
		} else {
			b.WriteString("Unknown")
		}
	}

	return CleanDestination(b.String())
}

// Destination renders the full relative destination path for a file.
// A template whose last segment names the file keeps that name (the
// extension is restored after {filename}); any other template acts as
// a directory and the file keeps its own name under it.
func (t *Template) Destination(desc *models.FileDescriptor, now time.Time) string {
	rendered := t.Expand(desc, now)

	last := t.raw
	if i := strings.LastIndexByte(last, '/'); i >= 0 {
		last = last[i+1:]
	}

	switch {
	case strings.Contains(last, "{name}"):
		return rendered
	case strings.Contains(last, "{filename}"):
		if desc.Extension != "" {
			return rendered + "." + desc.Extension
		}
		return rendered
	default:
		return path.Join(rendered, desc.Name)
	}
}

// variables builds the substitution table for one file. Metadata values
// are included only when present, so absent ones fall through to
// "Unknown".
func variables(desc *models.FileDescriptor, now time.Time) map[string]string {
	ext := desc.Extension
	if ext == "" {
		ext = "unknown"
	}

	vars := map[string]string{
		"filename":  desc.Stem(),
		"name":      desc.Name,
		"ext":       ext,
		"extension": ext,
		"size":      strconv.FormatInt(desc.Size, 10),
		"size_kb":   strconv.FormatInt(desc.Size/1024, 10),
		"size_mb":   strconv.FormatInt(desc.Size/(1024*1024), 10),
		"year":      desc.ModTime.Format("2006"),
		"month":     desc.ModTime.Format("01"),
		"day":       desc.ModTime.Format("02"),
		"date":      desc.ModTime.Format("2006-01-02"),
		"now.year":  now.Format("2006"),
		"now.month": now.Format("01"),
		"now.day":   now.Format("02"),
		"now.date":  now.Format("2006-01-02"),
	}

	if desc.Category != "" {
		vars["category"] = string(desc.Category)
		vars["type"] = string(desc.Category)
	}

	for key, value := range desc.Metadata {
		if metadataVariables[key] && value != "" {
			vars[key] = value
		}
	}

	return vars
}

// CleanDestination normalizes an expanded path to a safe relative form:
// separators unified, duplicate and leading/trailing slashes dropped,
// drive prefixes and dot segments removed.
func CleanDestination(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	if len(p) >= 2 && p[1] == ':' {
		p = p[2:]
	}

	var kept []string
	for _, segment := range strings.Split(p, "/") {
		switch segment {
		case "", ".", "..":
			continue
		}
		kept = append(kept, segment)
	}
	return strings.Join(kept, "/")
}
