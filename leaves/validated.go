package leaves

import (
	"context"

	"github.com/cyraxred/labelshark/internal/core"
	"github.com/cyraxred/labelshark/internal/model"
	"github.com/cyraxred/labelshark/internal/plumbing/issues"
)

// Validated labels bug fixes by the issues the commit is known to fix, preferring the
// manually validated issue types. The parent of a fixed sub-task counts as fixed too.
type Validated struct {
	lookup   *issueLookup
	resolver *issues.Resolver
}

// ValidatedName is the name of the Validated approach.
const ValidatedName = "validated"

// Name of this Approach. Uniquely identifies the type, prefixes the label names.
func (v *Validated) Name() string {
	return ValidatedName
}

// Description returns the text which explains what the approach is doing.
func (v *Validated) Description() string {
	return "Labels bug fixes by the fixed issues and their parents using the validated issue types."
}

// ListConfigurationOptions returns the list of changeable public properties of this Approach.
func (v *Validated) ListConfigurationOptions() []core.ConfigurationOption {
	return []core.ConfigurationOption{}
}

// Configure sets the properties previously published by ListConfigurationOptions().
func (v *Validated) Configure(facts map[string]interface{}) error {
	store, err := core.IssueStoreFromFacts(facts)
	if err != nil {
		return err
	}
	v.lookup = newIssueLookup(store, core.TrackersFromFacts(facts))
	v.resolver = issues.NewResolver(store, core.LoggerFromFacts(facts))
	return nil
}

// Label classifies the commit.
func (v *Validated) Label(ctx context.Context, commit *model.Commit) (model.Labels, error) {
	labels, _, err := v.LabelWithLinks(ctx, commit)
	return labels, err
}

// LabelWithLinks classifies the commit and reports the fixed issues and their parents.
func (v *Validated) LabelWithLinks(ctx context.Context, commit *model.Commit) (
	model.Labels, []string, error) {
	fixed, err := v.lookup.Issues(ctx, commit.FixedIssueIDs)
	if err != nil {
		return nil, nil, err
	}
	var checked []*model.Issue
	for _, issue := range fixed {
		checked = append(checked, issue)
		parent, err := v.lookup.Parent(ctx, issue)
		if err != nil {
			return nil, nil, err
		}
		if parent != nil {
			checked = append(checked, parent)
		}
	}
	bugfix := false
	for _, issue := range checked {
		if bugfix {
			break
		}
		family, err := v.lookup.Family(ctx, issue)
		if err != nil {
			return nil, nil, err
		}
		res, err := v.resolver.ResolveVerified(ctx, issue, family)
		if err != nil {
			return nil, nil, err
		}
		bugfix = res.BugFix
	}
	return model.Labels{{Name: LabelBugFix, Value: bugfix}}, dedupIDs(issueIDs(checked)), nil
}
