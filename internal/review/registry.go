package review

import (
	"sort"
	"sync"
)

// Registry holds every registered rule keyed by level. Registration order
// does not matter: rules within a level always come back sorted ascending
// by priority.
type Registry struct {
	mu    sync.RWMutex
	rules map[Level][]Rule
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		rules: make(map[Level][]Rule),
	}
}

// Register adds a rule. Rules are registered once at process start.
func (r *Registry) Register(rule Rule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules[rule.Level()] = append(r.rules[rule.Level()], rule)
}

// All returns every registered rule, levels ordered by severity and rules
// within a level ordered by priority.
func (r *Registry) All() []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var all []Rule
	for _, level := range Levels() {
		all = append(all, sortedByPriority(r.rules[level])...)
	}
	return all
}

// ByLevel returns the rules registered at one level, ordered by priority.
func (r *Registry) ByLevel(level Level) []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedByPriority(r.rules[level])
}

// ByLevels returns the rules for the given levels, or every rule when no
// level is named, ordered by severity then priority.
func (r *Registry) ByLevels(levels ...Level) []Rule {
	if len(levels) == 0 {
		return r.All()
	}

	want := make(map[Level]bool, len(levels))
	for _, l := range levels {
		want[l] = true
	}

	var selected []Rule
	for _, level := range Levels() {
		if want[level] {
			selected = append(selected, r.ByLevel(level)...)
		}
	}
	return selected
}

// Describe returns descriptors for every registered rule.
func (r *Registry) Describe() []Descriptor {
	rules := r.All()
	descriptors := make([]Descriptor, 0, len(rules))
	for _, rule := range rules {
		descriptors = append(descriptors, Describe(rule))
	}
	return descriptors
}

func sortedByPriority(rules []Rule) []Rule {
	sorted := make([]Rule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority() < sorted[j].Priority()
	})
	return sorted
}
