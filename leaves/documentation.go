package leaves

import (
	"context"

	"github.com/cyraxred/labelshark/internal/core"
	"github.com/cyraxred/labelshark/internal/model"
	"github.com/cyraxred/labelshark/internal/plumbing/hunks"
	"github.com/cyraxred/labelshark/internal/store"
)

// Documentation labels the comment changes in the Java files of a commit. Only the diff
// against the first parent is inspected.
type Documentation struct {
	changes store.ChangeStore
}

const (
	// DocumentationName is the name of the Documentation approach.
	DocumentationName = "documentation"
	// LabelJavadoc is set when a block or Javadoc comment line changed.
	LabelJavadoc = "javadoc"
	// LabelJavaInline is set when a line with an inline comment changed.
	LabelJavaInline = "javainline"
	// LabelTechnicalDebtAdd is set when a TODO, XXX or FIXME comment was added.
	LabelTechnicalDebtAdd = "technicaldebt_add"
	// LabelTechnicalDebtRemove is set when a TODO, XXX or FIXME comment was removed.
	LabelTechnicalDebtRemove = "technicaldebt_remove"
)

// Name of this Approach. Uniquely identifies the type, prefixes the label names.
func (doc *Documentation) Name() string {
	return DocumentationName
}

// Description returns the text which explains what the approach is doing.
func (doc *Documentation) Description() string {
	return "Labels the changes of Javadoc, inline comments and technical debt markers in Java files."
}

// ListConfigurationOptions returns the list of changeable public properties of this Approach.
func (doc *Documentation) ListConfigurationOptions() []core.ConfigurationOption {
	return []core.ConfigurationOption{}
}

// Configure sets the properties previously published by ListConfigurationOptions().
func (doc *Documentation) Configure(facts map[string]interface{}) error {
	changes, err := core.ChangeStoreFromFacts(facts)
	if err != nil {
		return err
	}
	doc.changes = changes
	return nil
}

// Label classifies the commit.
func (doc *Documentation) Label(ctx context.Context, commit *model.Commit) (model.Labels, error) {
	parent := ""
	if len(commit.Parents) > 0 {
		parent = commit.Parents[0]
	}
	actions, err := doc.changes.FileActions(ctx, commit.ID, parent)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, action := range actions {
		if hunks.IsJava(action.Path) {
			ids = append(ids, action.ID)
		}
	}
	var changes hunks.CommentChanges
	if len(ids) > 0 {
		changed, err := doc.changes.Hunks(ctx, ids...)
		if err != nil {
			return nil, err
		}
		for _, hunk := range changed {
			changes = changes.Merge(hunks.AnalyzeJava(hunk.Content))
		}
	}
	return model.Labels{
		{Name: LabelJavadoc, Value: changes.Javadoc},
		{Name: LabelJavaInline, Value: changes.Inline},
		{Name: LabelTechnicalDebtAdd, Value: changes.DebtAdded},
		{Name: LabelTechnicalDebtRemove, Value: changes.DebtRemoved},
	}, nil
}
