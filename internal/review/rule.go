package review

import (
	"context"
	"sync/atomic"
)

// Rule is one named, leveled consistency check over a snapshot. Check must
// be side-effect-free with respect to the snapshot and must not mutate
// persistent state; when nothing is found it returns an empty slice. A rule
// that returns an error is treated as if it found nothing; the orchestrator
// logs the failure and moves on.
type Rule interface {
	Name() string
	Description() string
	Level() Level
	Type() IssueType
	// Priority orders rules within a level; lower runs first.
	Priority() int
	RequiresAI() bool
	Enabled() bool
	Check(ctx context.Context, snap *Snapshot) ([]*Issue, error)
}

// Descriptor is the external metadata view of a registered rule.
type Descriptor struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Level       Level     `json:"level"`
	Type        IssueType `json:"type"`
	Priority    int       `json:"priority"`
	RequiresAI  bool      `json:"requires_ai"`
	Enabled     bool      `json:"enabled"`
}

// BaseRule carries the descriptor fields shared by every rule
// implementation. Embed it and implement Check.
type BaseRule struct {
	name        string
	description string
	level       Level
	issueType   IssueType
	priority    int
	requiresAI  bool
	// disabled is read/written atomically; enabled may be toggled while
	// runs are in flight.
	disabled int32
}

// BaseRuleOption customizes a BaseRule at construction time.
type BaseRuleOption func(*BaseRule)

// WithPriority overrides the default priority of 100.
func WithPriority(priority int) BaseRuleOption {
	return func(b *BaseRule) {
		b.priority = priority
	}
}

// WithAI marks the rule as requiring the generation capability.
func WithAI() BaseRuleOption {
	return func(b *BaseRule) {
		b.requiresAI = true
	}
}

// NewBaseRule builds the shared descriptor state for a rule.
func NewBaseRule(name, description string, level Level, issueType IssueType, options ...BaseRuleOption) BaseRule {
	base := BaseRule{
		name:        name,
		description: description,
		level:       level,
		issueType:   issueType,
		priority:    100,
	}
	for _, option := range options {
		option(&base)
	}
	return base
}

func (b *BaseRule) Name() string        { return b.name }
func (b *BaseRule) Description() string { return b.description }
func (b *BaseRule) Level() Level        { return b.level }
func (b *BaseRule) Type() IssueType     { return b.issueType }
func (b *BaseRule) Priority() int       { return b.priority }
func (b *BaseRule) RequiresAI() bool    { return b.requiresAI }
func (b *BaseRule) Enabled() bool       { return atomic.LoadInt32(&b.disabled) == 0 }

// SetEnabled toggles the rule. Registration state is otherwise immutable.
func (b *BaseRule) SetEnabled(enabled bool) {
	var v int32
	if !enabled {
		v = 1
	}
	atomic.StoreInt32(&b.disabled, v)
}

// Describe returns the rule's descriptor with the given enabled state.
func Describe(r Rule) Descriptor {
	return Descriptor{
		Name:        r.Name(),
		Description: r.Description(),
		Level:       r.Level(),
		Type:        r.Type(),
		Priority:    r.Priority(),
		RequiresAI:  r.RequiresAI(),
		Enabled:     r.Enabled(),
	}
}
