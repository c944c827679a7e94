package leaves

import (
	"context"

	"github.com/cyraxred/labelshark/internal/core"
	"github.com/cyraxred/labelshark/internal/model"
	"github.com/cyraxred/labelshark/internal/plumbing/direct"
	"github.com/cyraxred/labelshark/internal/store"
)

// Refactoring labels refactorings by the keywords of the commit message and, separately,
// by the refactorings which an external detector has recorded for the commit.
type Refactoring struct {
	changes store.ChangeStore
}

const (
	// RefactoringName is the name of the Refactoring approach.
	RefactoringName = "refactoring"
	// LabelKeyword is set when the message mentions a refactoring.
	LabelKeyword = "keyword"
	// LabelCodeBased is set when refactorings were detected in the code.
	LabelCodeBased = "codebased"
)

// Name of this Approach. Uniquely identifies the type, prefixes the label names.
func (ref *Refactoring) Name() string {
	return RefactoringName
}

// Description returns the text which explains what the approach is doing.
func (ref *Refactoring) Description() string {
	return "Labels refactorings by the message keywords and by the detected code refactorings."
}

// ListConfigurationOptions returns the list of changeable public properties of this Approach.
func (ref *Refactoring) ListConfigurationOptions() []core.ConfigurationOption {
	return []core.ConfigurationOption{}
}

// Configure sets the properties previously published by ListConfigurationOptions().
func (ref *Refactoring) Configure(facts map[string]interface{}) error {
	changes, err := core.ChangeStoreFromFacts(facts)
	if err != nil {
		return err
	}
	ref.changes = changes
	return nil
}

// Label classifies the commit.
func (ref *Refactoring) Label(ctx context.Context, commit *model.Commit) (model.Labels, error) {
	count, err := ref.changes.RefactoringCount(ctx, commit.ID)
	if err != nil {
		return nil, err
	}
	return model.Labels{
		{Name: LabelKeyword, Value: direct.RefactoringKeywords(commit.Message)},
		{Name: LabelCodeBased, Value: count > 0},
	}, nil
}
