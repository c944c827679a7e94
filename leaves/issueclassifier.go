package leaves

import (
	"context"
	"strings"

	"github.com/cyraxred/labelshark/internal/classifier"
	"github.com/cyraxred/labelshark/internal/core"
	"github.com/cyraxred/labelshark/internal/model"
	"github.com/cyraxred/labelshark/internal/plumbing/issues"
	"github.com/mitchellh/go-homedir"
)

// IssueClassifier works as IssueOnly, additionally every linked bug must look like a bug
// to two text models trained on the issue titles and descriptions. The parents of the
// linked issues are checked the same way.
type IssueClassifier struct {
	// DatasetPath is the CSV with the title, description and bug columns.
	DatasetPath string
	// Threshold is the minimum averaged bug probability of the two models.
	Threshold float64
	// Model is the kind of both text models, must estimate probabilities.
	Model classifier.ModelKind

	titles       *classifier.TextModel
	descriptions *classifier.TextModel
	lookup       *issueLookup
	resolver     *issues.Resolver
	l            core.Logger
}

const (
	// IssueClassifierName is the name of the IssueClassifier approach.
	IssueClassifierName = "issueclassifier"
	// ConfigIssueClassifierDataset is the name of the option to set IssueClassifier.DatasetPath.
	ConfigIssueClassifierDataset = "IssueClassifier.Dataset"
	// ConfigIssueClassifierThreshold is the name of the option to set IssueClassifier.Threshold.
	ConfigIssueClassifierThreshold = "IssueClassifier.Threshold"
	// ConfigIssueClassifierModel is the name of the option to set IssueClassifier.Model.
	ConfigIssueClassifierModel = "IssueClassifier.Model"
	// DefaultIssueDataset is the default location of the issue training data.
	DefaultIssueDataset = "classifier/issues.csv"
)

// Name of this Approach. Uniquely identifies the type, prefixes the label names.
func (ic *IssueClassifier) Name() string {
	return IssueClassifierName
}

// Description returns the text which explains what the approach is doing.
func (ic *IssueClassifier) Description() string {
	return "Labels bug fixes by the linked issues which are resolved and fixed bugs " +
		"and are predicted to be bugs from their title and description."
}

// ListConfigurationOptions returns the list of changeable public properties of this Approach.
func (ic *IssueClassifier) ListConfigurationOptions() []core.ConfigurationOption {
	options := [...]core.ConfigurationOption{{
		Name:        ConfigIssueClassifierDataset,
		Description: "CSV file with the labeled issues (title, description, bug) to train the text models.",
		Flag:        "issue-dataset",
		Type:        core.PathConfigurationOption,
		Default:     DefaultIssueDataset}, {
		Name:        ConfigIssueClassifierThreshold,
		Description: "Minimum averaged bug probability of the title and description models.",
		Flag:        "issue-threshold",
		Type:        core.FloatConfigurationOption,
		Default:     float32(0.5)}, {
		Name:        ConfigIssueClassifierModel,
		Description: "Kind of the text models: nb or lr.",
		Flag:        "issue-model",
		Type:        core.StringConfigurationOption,
		Default:     string(classifier.NaiveBayes)},
	}
	return options[:]
}

// Configure sets the properties previously published by ListConfigurationOptions().
// A missing or broken dataset makes the approach inert instead of failing.
func (ic *IssueClassifier) Configure(facts map[string]interface{}) error {
	ic.l = core.LoggerFromFacts(facts)
	ic.DatasetPath = core.StringFact(facts, ConfigIssueClassifierDataset, DefaultIssueDataset)
	ic.Threshold = core.FloatFact(facts, ConfigIssueClassifierThreshold, 0.5)
	ic.Model = classifier.ModelKind(core.StringFact(facts, ConfigIssueClassifierModel,
		string(classifier.NaiveBayes)))
	store, err := core.IssueStoreFromFacts(facts)
	if err != nil {
		return err
	}
	ic.lookup = newIssueLookup(store, core.TrackersFromFacts(facts), "title", "desc")
	ic.resolver = issues.NewResolver(store, ic.l)
	ic.titles, ic.descriptions = nil, nil
	if err = ic.train(); err != nil {
		ic.l.Warnf("approach %s is not working, could not train the issue models from %s: %v\n",
			IssueClassifierName, ic.DatasetPath, err)
	}
	return nil
}

func (ic *IssueClassifier) train() error {
	path, err := homedir.Expand(ic.DatasetPath)
	if err != nil {
		return err
	}
	dataset, err := classifier.LoadIssueDatasetFile(path)
	if err != nil {
		return err
	}
	titles, err := classifier.TrainTextModel(dataset.Titles, dataset.Labels, ic.Model, classifier.DefaultSeed)
	if err != nil {
		return err
	}
	descriptions, err := classifier.TrainTextModel(
		dataset.Descriptions, dataset.Labels, ic.Model, classifier.DefaultSeed)
	if err != nil {
		return err
	}
	ic.titles, ic.descriptions = titles, descriptions
	return nil
}

// Ready indicates whether the text models were trained.
func (ic *IssueClassifier) Ready() bool {
	return ic.titles != nil && ic.descriptions != nil
}

// LooksLikeBug averages the bug probabilities of the title and the description.
func (ic *IssueClassifier) LooksLikeBug(issue *model.Issue) bool {
	flatten := func(text string) string {
		return strings.Join(strings.Fields(text), " ")
	}
	proba := (ic.titles.Probability(flatten(issue.Title)) +
		ic.descriptions.Probability(flatten(issue.Description))) / 2
	return proba > ic.Threshold
}

// Label classifies the commit. Returns no labels if the models are not trained.
func (ic *IssueClassifier) Label(ctx context.Context, commit *model.Commit) (model.Labels, error) {
	labels, _, err := ic.LabelWithLinks(ctx, commit)
	return labels, err
}

// LabelWithLinks classifies the commit and reports the linked issues which exist.
func (ic *IssueClassifier) LabelWithLinks(ctx context.Context, commit *model.Commit) (
	model.Labels, []string, error) {
	if !ic.Ready() {
		return nil, nil, nil
	}
	linked, err := ic.lookup.Issues(ctx, commit.LinkedIssueIDs)
	if err != nil {
		return nil, nil, err
	}
	bugfix := false
	for _, issue := range linked {
		candidates := []*model.Issue{issue}
		parent, err := ic.lookup.Parent(ctx, issue)
		if err != nil {
			return nil, nil, err
		}
		if parent != nil {
			candidates = append(candidates, parent)
		}
		for _, candidate := range candidates {
			if bugfix {
				break
			}
			family, err := ic.lookup.Family(ctx, candidate)
			if err != nil {
				return nil, nil, err
			}
			res, err := ic.resolver.Resolve(ctx, candidate, family)
			if err != nil {
				return nil, nil, err
			}
			bugfix = res.BugFix && ic.LooksLikeBug(candidate)
		}
	}
	return model.Labels{{Name: LabelBugFix, Value: bugfix}}, issueIDs(linked), nil
}
