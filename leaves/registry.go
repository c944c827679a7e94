// Package leaves contains the commit labeling approaches.
package leaves

import (
	"github.com/cyraxred/labelshark/internal/core"
)

// All returns a fresh instance of every approach in the execution order.
func All() []core.Approach {
	return []core.Approach{
		&AdjustedSZZ{},
		&SZZ{},
		&IssueOnly{},
		&Validated{},
		&IssueClassifier{},
		&Refactoring{},
		&Documentation{},
		&TestChange{},
		&Ensemble{},
	}
}

// RegisterAll adds every approach to the registry.
func RegisterAll(registry *core.ApproachRegistry) error {
	for _, approach := range All() {
		if err := registry.Register(approach); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry creates the registry of all the known approaches.
func NewRegistry() *core.ApproachRegistry {
	registry := core.NewRegistry()
	registry.MustRegister(All()...)
	return registry
}
