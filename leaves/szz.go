package leaves

import (
	"context"

	"github.com/cyraxred/labelshark/internal/core"
	"github.com/cyraxred/labelshark/internal/model"
)

// SZZ trusts the issues which the SZZ algorithm has already inferred for the commit.
type SZZ struct{}

// SZZName is the name of the SZZ approach.
const SZZName = "szz"

// Name of this Approach. Uniquely identifies the type, prefixes the label names.
func (szz *SZZ) Name() string {
	return SZZName
}

// Description returns the text which explains what the approach is doing.
func (szz *SZZ) Description() string {
	return "Labels bug fixes by the issues inferred by the SZZ algorithm."
}

// ListConfigurationOptions returns the list of changeable public properties of this Approach.
func (szz *SZZ) ListConfigurationOptions() []core.ConfigurationOption {
	return []core.ConfigurationOption{}
}

// Configure sets the properties previously published by ListConfigurationOptions().
func (szz *SZZ) Configure(facts map[string]interface{}) error {
	return nil
}

// Label classifies the commit.
func (szz *SZZ) Label(ctx context.Context, commit *model.Commit) (model.Labels, error) {
	labels, _, err := szz.LabelWithLinks(ctx, commit)
	return labels, err
}

// LabelWithLinks classifies the commit and reports the inferred issues.
func (szz *SZZ) LabelWithLinks(_ context.Context, commit *model.Commit) (model.Labels, []string, error) {
	return model.Labels{{Name: LabelBugFix, Value: len(commit.SZZIssueIDs) > 0}},
		append([]string(nil), commit.SZZIssueIDs...), nil
}
