package leaves

import (
	"context"
	"regexp"

	"github.com/cyraxred/labelshark/internal/core"
	"github.com/cyraxred/labelshark/internal/model"
	"github.com/cyraxred/labelshark/internal/plumbing/direct"
	"github.com/cyraxred/labelshark/internal/plumbing/hunks"
	"github.com/cyraxred/labelshark/internal/store"
)

var javaTestFile = regexp.MustCompile(`^(?:.*(?:Test|test)|(?:Test|test).*)\.java`)

// TestChange labels the commits which change the code of Java tests. A file is a test
// if it is named like one or imports a test framework; comments and blank lines do not
// count as a change.
type TestChange struct {
	changes store.ChangeStore
}

const (
	// TestChangeName is the name of the TestChange approach.
	TestChangeName = "testchange"
	// LabelJavaCode is set when the code of a Java test changed.
	LabelJavaCode = "javacode"
)

// Name of this Approach. Uniquely identifies the type, prefixes the label names.
func (tc *TestChange) Name() string {
	return TestChangeName
}

// Description returns the text which explains what the approach is doing.
func (tc *TestChange) Description() string {
	return "Labels the commits which change the code of Java tests."
}

// ListConfigurationOptions returns the list of changeable public properties of this Approach.
func (tc *TestChange) ListConfigurationOptions() []core.ConfigurationOption {
	return []core.ConfigurationOption{}
}

// Configure sets the properties previously published by ListConfigurationOptions().
func (tc *TestChange) Configure(facts map[string]interface{}) error {
	changes, err := core.ChangeStoreFromFacts(facts)
	if err != nil {
		return err
	}
	tc.changes = changes
	return nil
}

// Label classifies the commit.
func (tc *TestChange) Label(ctx context.Context, commit *model.Commit) (model.Labels, error) {
	changed, err := tc.javaTestChange(ctx, commit)
	if err != nil {
		return nil, err
	}
	return model.Labels{{Name: LabelJavaCode, Value: changed}}, nil
}

func (tc *TestChange) javaTestChange(ctx context.Context, commit *model.Commit) (bool, error) {
	actions, err := tc.changes.FileActions(ctx, commit.ID, "")
	if err != nil {
		return false, err
	}
	states, err := tc.changes.CodeEntityStates(ctx, commit.ID, "file")
	if err != nil {
		return false, err
	}
	testImports := map[string]bool{}
	for _, state := range states {
		for _, imp := range state.Imports {
			if direct.IsTestImport(imp) {
				testImports[state.FileID] = true
				break
			}
		}
	}
	var ids []string
	for _, action := range actions {
		if javaTestFile.MatchString(action.Path) || testImports[action.FileID] {
			ids = append(ids, action.ID)
		}
	}
	if len(ids) == 0 {
		return false, nil
	}
	changed, err := tc.changes.Hunks(ctx, ids...)
	if err != nil {
		return false, err
	}
	for _, hunk := range changed {
		if hunks.IsLogicalChange(hunk.Content) {
			return true, nil
		}
	}
	return false, nil
}
