package rules

import (
	"fmt"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/tidyfs/tidyfs/pkg/models"
)

// ruleFile is the on-disk shape of a custom rule file.
type ruleFile struct {
	Rules []models.Rule `toml:"rules"`
}

// compiledRule pairs a rule with its parsed destination template.
type compiledRule struct {
	rule     models.Rule
	template *Template
}

// Set is a validated, priority-ordered collection of custom rules.
type Set struct {
	rules []compiledRule
}

// NewSet validates and compiles rules, ordering them by priority
// descending with declaration order breaking ties.
func NewSet(rules []models.Rule) (*Set, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for i := range rules {
		r := rules[i]
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("invalid rule %d: %w", i+1, err)
		}
		if !doublestar.ValidatePattern(r.Pattern) {
			return nil, fmt.Errorf("rule %q: invalid pattern %q", r.Name, r.Pattern)
		}
		tpl, err := NewTemplate(r.Destination)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", r.Name, err)
		}
		compiled = append(compiled, compiledRule{rule: r, template: tpl})
	}

	sort.SliceStable(compiled, func(i, j int) bool {
		return compiled[i].rule.Priority > compiled[j].rule.Priority
	})

	return &Set{rules: compiled}, nil
}

// LoadSet reads and compiles a TOML rule file.
func LoadSet(path string) (*Set, error) {
	var file ruleFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("failed to load rules from %s: %w", path, err)
	}
	set, err := NewSet(file.Rules)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules from %s: %w", path, err)
	}
	return set, nil
}

// Len returns the number of rules in the set.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}

// Match returns the highest-priority rule whose pattern matches the
// file name, with its template.
func (s *Set) Match(name string) (*models.Rule, *Template, bool) {
	if s == nil {
		return nil, nil, false
	}
	for i := range s.rules {
		if ok, _ := doublestar.Match(s.rules[i].rule.Pattern, name); ok {
			return &s.rules[i].rule, s.rules[i].template, true
		}
	}
	return nil, nil, false
}

// UsesMetadata reports whether any rule destination references a
// metadata-provided variable.
func (s *Set) UsesMetadata() bool {
	if s == nil {
		return false
	}
	for i := range s.rules {
		if s.rules[i].template.UsesMetadata() {
			return true
		}
	}
	return false
}
