package core

import (
	"github.com/cyraxred/labelshark/internal/model"
	"github.com/cyraxred/labelshark/internal/store"
	"github.com/pkg/errors"
)

// Keys of the facts which the entry point supplies to Approach.Configure().
const (
	// FactTrackers is []*model.Tracker: the issue trackers of the processed project, in the
	// configured order.
	FactTrackers = "Core.Trackers"
	// FactIssueStore is store.IssueStore.
	FactIssueStore = "Core.IssueStore"
	// FactChangeStore is store.ChangeStore.
	FactChangeStore = "Core.ChangeStore"
	// FactVCSSystem is *model.VCSSystem: the processed repository.
	FactVCSSystem = "Core.VCSSystem"
)

// TrackersFromFacts extracts the configured trackers. Missing trackers mean an empty list.
func TrackersFromFacts(facts map[string]interface{}) []*model.Tracker {
	trackers, _ := facts[FactTrackers].([]*model.Tracker)
	return trackers
}

// IssueStoreFromFacts extracts the issue store or fails.
func IssueStoreFromFacts(facts map[string]interface{}) (store.IssueStore, error) {
	issues, ok := facts[FactIssueStore].(store.IssueStore)
	if !ok || issues == nil {
		return nil, errors.Errorf("%s is not set", FactIssueStore)
	}
	return issues, nil
}

// ChangeStoreFromFacts extracts the change store or fails.
func ChangeStoreFromFacts(facts map[string]interface{}) (store.ChangeStore, error) {
	changes, ok := facts[FactChangeStore].(store.ChangeStore)
	if !ok || changes == nil {
		return nil, errors.Errorf("%s is not set", FactChangeStore)
	}
	return changes, nil
}

// StringFact returns the string fact or the fallback if it is absent or has a different type.
func StringFact(facts map[string]interface{}, key, fallback string) string {
	if val, exists := facts[key].(string); exists {
		return val
	}
	return fallback
}

// IntFact returns the integer fact or the fallback.
func IntFact(facts map[string]interface{}, key string, fallback int) int {
	if val, exists := facts[key].(int); exists {
		return val
	}
	return fallback
}

// BoolFact returns the boolean fact or the fallback.
func BoolFact(facts map[string]interface{}, key string, fallback bool) bool {
	if val, exists := facts[key].(bool); exists {
		return val
	}
	return fallback
}

// FloatFact returns the floating point fact or the fallback. float32 values from the
// command line are converted.
func FloatFact(facts map[string]interface{}, key string, fallback float64) float64 {
	switch val := facts[key].(type) {
	case float64:
		return val
	case float32:
		return float64(val)
	case int:
		return float64(val)
	}
	return fallback
}
