package leaves

import (
	"context"

	"github.com/cyraxred/labelshark/internal/core"
	"github.com/cyraxred/labelshark/internal/model"
	"github.com/cyraxred/labelshark/internal/plumbing/issues"
)

// IssueOnly labels bug fixes by the issues which were linked to the commit beforehand,
// the message is not parsed.
type IssueOnly struct {
	lookup   *issueLookup
	resolver *issues.Resolver
}

// IssueOnlyName is the name of the IssueOnly approach.
const IssueOnlyName = "issueonly"

// Name of this Approach. Uniquely identifies the type, prefixes the label names.
func (only *IssueOnly) Name() string {
	return IssueOnlyName
}

// Description returns the text which explains what the approach is doing.
func (only *IssueOnly) Description() string {
	return "Labels bug fixes by the linked issues which are resolved and fixed bugs."
}

// ListConfigurationOptions returns the list of changeable public properties of this Approach.
func (only *IssueOnly) ListConfigurationOptions() []core.ConfigurationOption {
	return []core.ConfigurationOption{}
}

// Configure sets the properties previously published by ListConfigurationOptions().
func (only *IssueOnly) Configure(facts map[string]interface{}) error {
	l := core.LoggerFromFacts(facts)
	store, err := core.IssueStoreFromFacts(facts)
	if err != nil {
		return err
	}
	only.lookup = newIssueLookup(store, core.TrackersFromFacts(facts))
	only.resolver = issues.NewResolver(store, l)
	return nil
}

// Label classifies the commit.
func (only *IssueOnly) Label(ctx context.Context, commit *model.Commit) (model.Labels, error) {
	labels, _, err := only.LabelWithLinks(ctx, commit)
	return labels, err
}

// LabelWithLinks classifies the commit and reports the linked issues which exist.
func (only *IssueOnly) LabelWithLinks(ctx context.Context, commit *model.Commit) (
	model.Labels, []string, error) {
	linked, err := only.lookup.Issues(ctx, commit.LinkedIssueIDs)
	if err != nil {
		return nil, nil, err
	}
	bugfix := false
	for _, issue := range linked {
		family, err := only.lookup.Family(ctx, issue)
		if err != nil {
			return nil, nil, err
		}
		res, err := only.resolver.Resolve(ctx, issue, family)
		if err != nil {
			return nil, nil, err
		}
		bugfix = bugfix || res.BugFix
	}
	return model.Labels{{Name: LabelBugFix, Value: bugfix}}, issueIDs(linked), nil
}
