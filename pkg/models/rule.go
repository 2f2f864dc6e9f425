package models

// Rule routes files whose name matches a glob pattern to a destination
// template. Rules are unordered on disk; the engine evaluates them by
// priority descending, ties broken by declaration order.
type Rule struct {
	// Name identifies the rule in reports and logs
	Name string `toml:"name"`

	// Pattern is the glob matched against the file name
	Pattern string `toml:"pattern"`

	// Destination is the template expanded into a relative path
	Destination string `toml:"destination"`

	// Priority orders evaluation, higher first
	Priority int `toml:"priority"`

	// PostAction is an optional shell hook run after a successful
	// move or copy of a matched file
	PostAction string `toml:"post_action,omitempty"`
}

// Validate checks the rule has the required fields.
func (r *Rule) Validate() error {
	if r.Name == "" {
		return &ValidationError{Field: "name", Message: "rule name is required"}
	}
	if r.Pattern == "" {
		return &ValidationError{Field: "pattern", Message: "rule pattern is required"}
	}
	if r.Destination == "" {
		return &ValidationError{Field: "destination", Message: "rule destination is required"}
	}
	return nil
}
