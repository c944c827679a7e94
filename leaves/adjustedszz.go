package leaves

import (
	"context"

	"github.com/cyraxred/labelshark/internal/core"
	"github.com/cyraxred/labelshark/internal/model"
	"github.com/cyraxred/labelshark/internal/plumbing/issues"
)

// AdjustedSZZ labels bug fixes by the issue links in the commit message. Every tracker
// of the project extracts the identifiers with its own pattern; the first tracker which
// finds a resolved and fixed bug decides. When no issue is mentioned at all, the bug
// keywords of the message decide.
type AdjustedSZZ struct {
	// Trackers are the issue trackers of the project in the configured order.
	Trackers []*model.Tracker

	linker *issues.Linker
	l      core.Logger
}

const (
	// AdjustedSZZName is the name of the AdjustedSZZ approach and the prefix of its labels.
	AdjustedSZZName = "adjustedszz"
	// LabelBugFix is the label which marks the commits that fix a bug.
	LabelBugFix = "bugfix"
)

// Name of this Approach. Uniquely identifies the type, prefixes the label names.
func (szz *AdjustedSZZ) Name() string {
	return AdjustedSZZName
}

// Description returns the text which explains what the approach is doing.
func (szz *AdjustedSZZ) Description() string {
	return "Labels bug fixes by the issues mentioned in the commit message, " +
		"falls back to the bug keywords if no issue is mentioned."
}

// ListConfigurationOptions returns the list of changeable public properties of this Approach.
func (szz *AdjustedSZZ) ListConfigurationOptions() []core.ConfigurationOption {
	return []core.ConfigurationOption{}
}

// Configure sets the properties previously published by ListConfigurationOptions().
func (szz *AdjustedSZZ) Configure(facts map[string]interface{}) error {
	szz.l = core.LoggerFromFacts(facts)
	store, err := core.IssueStoreFromFacts(facts)
	if err != nil {
		return err
	}
	szz.Trackers = core.TrackersFromFacts(facts)
	if len(szz.Trackers) == 0 {
		szz.l.Warn("adjustedszz: no issue trackers, only the keywords will be used\n")
	}
	szz.linker = issues.NewLinker(store, szz.l)
	return nil
}

// Label classifies the commit.
func (szz *AdjustedSZZ) Label(ctx context.Context, commit *model.Commit) (model.Labels, error) {
	labels, _, err := szz.LabelWithLinks(ctx, commit)
	return labels, err
}

// LabelWithLinks classifies the commit and reports the issues found in its message.
func (szz *AdjustedSZZ) LabelWithLinks(ctx context.Context, commit *model.Commit) (
	model.Labels, []string, error) {
	result, err := szz.linker.Link(ctx, commit, szz.Trackers)
	if err != nil {
		return nil, nil, err
	}
	return model.Labels{{Name: LabelBugFix, Value: result.BugFix}}, result.IssueIDs, nil
}
