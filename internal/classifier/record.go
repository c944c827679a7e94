// Package classifier trains the statistical commit and issue classifiers and fuses
// their votes.
package classifier

import (
	"strings"

	"github.com/pkg/errors"
)

// Category is a commit label category.
type Category string

const (
	// BugFix commits repair a defect.
	BugFix Category = "bugfix"
	// Refactoring commits restructure the code without changing the behavior.
	Refactoring Category = "refactoring"
	// Test commits change the tests.
	Test Category = "test"
	// Feature commits add functionality.
	Feature Category = "feature"
	// Documentation commits change the documentation.
	Documentation Category = "documentation"
	// Maintenance commits change the build, the versions or the formatting.
	Maintenance Category = "maintenance"
)

// Categories lists every category in the labeling order.
var Categories = []Category{BugFix, Refactoring, Test, Feature, Documentation, Maintenance}

// ParseCategory maps a label or a dataset column name to the category.
func ParseCategory(name string) (Category, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "maintainance" {
		return Maintenance, nil
	}
	for _, c := range Categories {
		if string(c) == name {
			return c, nil
		}
	}
	return "", errors.Errorf("unknown category %q", name)
}

// ListSeparator joins the paths and the issue types inside a Record.
const ListSeparator = "||"

// Record is the feature record of a commit.
type Record struct {
	Message string
	// Paths of the changed files joined with ListSeparator.
	Paths string
	// IssueType lists the types of the linked issues joined with ListSeparator,
	// empty if there are none.
	IssueType string
}

// NewRecord builds the Record from the parts.
func NewRecord(message string, paths, issueTypes []string) Record {
	return Record{
		Message:   message,
		Paths:     strings.Join(paths, ListSeparator),
		IssueType: strings.Join(issueTypes, ListSeparator),
	}
}

// PathList splits Paths.
func (r Record) PathList() []string {
	return splitList(r.Paths)
}

// IssueTypes splits IssueType.
func (r Record) IssueTypes() []string {
	return splitList(r.IssueType)
}

func (r Record) fields() []string {
	return []string{r.Message, r.Paths, r.IssueType}
}

func splitList(joined string) []string {
	if joined == "" {
		return nil
	}
	var result []string
	for _, item := range strings.Split(joined, ListSeparator) {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}
