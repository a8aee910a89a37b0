package rules

import (
	"github.com/HannJia/novel-ai-studio-sub000/internal/agent"
	"github.com/HannJia/novel-ai-studio-sub000/internal/review"
)

// Default returns the full built-in rule set. The rule list is fixed at
// process start; there is no dynamic discovery.
func Default(gen agent.Generator) []review.Rule {
	return []review.Rule{
		NewDeathConflict(),
		NewNameInconsistency(),
		NewTimelineConflict(),
		NewLocationConflict(),
		NewForgottenForeshadow(),
		NewPersonalityDeviation(gen),
		NewSettingConflict(gen),
	}
}

// NewRegistry builds a registry pre-loaded with the default rules.
func NewRegistry(gen agent.Generator) *review.Registry {
	registry := review.NewRegistry()
	for _, rule := range Default(gen) {
		registry.Register(rule)
	}
	return registry
}
