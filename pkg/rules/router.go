package rules

import (
	"errors"
	"time"

	"github.com/tidyfs/tidyfs/pkg/models"
)

// ErrNoMatch is returned by Route when no custom rule matches and no
// fallback template is configured. Callers decide what an unrouted
// file means; the planner leaves it in place.
var ErrNoMatch = errors.New("no rule matches")

// Router resolves each file's destination: the custom rule set is
// consulted first, then the fallback template. The invocation time is
// captured once so a whole batch shares the same now.* values.
type Router struct {
	set      *Set
	fallback *Template
	now      time.Time
}

// NewRouter creates a router. The set may be nil when no custom rules
// are loaded, and the fallback may be nil to route through the set
// alone.
func NewRouter(set *Set, fallback *Template) *Router {
	return &Router{set: set, fallback: fallback, now: time.Now()}
}

// Route returns the relative destination for a file and the custom rule
// that produced it, nil when the fallback template decided. Without a
// match or a fallback the error is ErrNoMatch.
func (r *Router) Route(desc *models.FileDescriptor) (string, *models.Rule, error) {
	if rule, tpl, ok := r.set.Match(desc.Name); ok {
		return tpl.Destination(desc, r.now), rule, nil
	}
	if r.fallback == nil {
		return "", nil, ErrNoMatch
	}
	return r.fallback.Destination(desc, r.now), nil, nil
}

// NeedsMetadata reports whether routing this batch will read any
// metadata-provided variable, so extraction can be skipped otherwise.
func (r *Router) NeedsMetadata() bool {
	return (r.fallback != nil && r.fallback.UsesMetadata()) || r.set.UsesMetadata()
}
