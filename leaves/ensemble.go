package leaves

import (
	"context"

	"github.com/cyraxred/labelshark/internal/classifier"
	"github.com/cyraxred/labelshark/internal/core"
	"github.com/cyraxred/labelshark/internal/model"
	"github.com/cyraxred/labelshark/internal/plumbing/direct"
	"github.com/cyraxred/labelshark/internal/plumbing/issues"
	"github.com/cyraxred/labelshark/internal/store"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
)

// Ensemble labels every commit category by the hard vote of the keyword rules and the
// trained models. The code evidence of refactorings, tests and documentation changes
// overrides a negative vote.
type Ensemble struct {
	// DatasetPath is the labeled commit dataset in CSV.
	DatasetPath string
	// Seed makes the resampling and the training reproducible.
	Seed int64
	// Trackers are used to find the types of the issues mentioned in the message.
	Trackers []*model.Tracker

	bank     *classifier.Bank
	evidence *direct.Evidence
	issues   store.IssueStore
	changes  store.ChangeStore
	l        core.Logger
}

const (
	// EnsembleName is the name of the Ensemble approach.
	EnsembleName = "ensemble"
	// ConfigEnsembleDataset is the name of the option to set Ensemble.DatasetPath.
	ConfigEnsembleDataset = "Ensemble.Dataset"
	// ConfigEnsembleSeed is the name of the option to set Ensemble.Seed.
	ConfigEnsembleSeed = "Ensemble.Seed"
	// DefaultEnsembleDataset is the default location of the commit training data.
	DefaultEnsembleDataset = "classifier/CCDataSet.csv"
)

// evidenceCategories are the categories which the code evidence can decide.
var evidenceCategories = map[classifier.Category]bool{
	classifier.Refactoring:   true,
	classifier.Test:          true,
	classifier.Documentation: true,
}

// Name of this Approach. Uniquely identifies the type, prefixes the label names.
func (ens *Ensemble) Name() string {
	return EnsembleName
}

// Description returns the text which explains what the approach is doing.
func (ens *Ensemble) Description() string {
	return "Labels bug fixes, refactorings, tests, features, documentation and maintenance " +
		"by the majority of the keyword rules and the trained models."
}

// ListConfigurationOptions returns the list of changeable public properties of this Approach.
func (ens *Ensemble) ListConfigurationOptions() []core.ConfigurationOption {
	options := [...]core.ConfigurationOption{{
		Name:        ConfigEnsembleDataset,
		Description: "CSV file with the labeled commits to train the ensemble. It is not shipped: " +
			"the ensemble fails to configure and aborts the run unless the file exists.",
		Flag:        "ensemble-dataset",
		Type:        core.PathConfigurationOption,
		Default:     DefaultEnsembleDataset}, {
		Name:        ConfigEnsembleSeed,
		Description: "Random seed of the resampling and the training.",
		Flag:        "ensemble-seed",
		Type:        core.IntConfigurationOption,
		Default:     classifier.DefaultSeed},
	}
	return options[:]
}

// Configure sets the properties previously published by ListConfigurationOptions() and
// trains the models. The ensemble cannot work without them, so the training failures
// are fatal.
func (ens *Ensemble) Configure(facts map[string]interface{}) error {
	ens.l = core.LoggerFromFacts(facts)
	ens.DatasetPath = core.StringFact(facts, ConfigEnsembleDataset, DefaultEnsembleDataset)
	ens.Seed = int64(core.IntFact(facts, ConfigEnsembleSeed, classifier.DefaultSeed))
	ens.Trackers = core.TrackersFromFacts(facts)
	var err error
	if ens.issues, err = core.IssueStoreFromFacts(facts); err != nil {
		return err
	}
	if ens.changes, err = core.ChangeStoreFromFacts(facts); err != nil {
		return err
	}
	ens.evidence = direct.NewEvidence(ens.changes, ens.l)
	path, err := homedir.Expand(ens.DatasetPath)
	if err != nil {
		return errors.Wrapf(core.ErrFatal, "ensemble dataset %s: %v", ens.DatasetPath, err)
	}
	dataset, err := classifier.LoadDatasetFile(path)
	if err != nil {
		return errors.Wrapf(core.ErrFatal, "loading the ensemble dataset %s: %v", path, err)
	}
	opts := classifier.DefaultBankOptions()
	opts.Seed = ens.Seed
	ens.bank, err = classifier.TrainBank(dataset, opts)
	if err != nil {
		return errors.Wrapf(core.ErrFatal, "training the ensemble on %s: %v", path, err)
	}
	ens.l.Infof("trained the ensemble on %d commits\n", dataset.Len())
	return nil
}

// Record builds the feature record of the commit: the message, the changed paths and the
// types of the issues mentioned in the message. Also returns the identities of the issues.
func (ens *Ensemble) Record(ctx context.Context, commit *model.Commit) (classifier.Record, []string, error) {
	actions, err := ens.changes.FileActions(ctx, commit.ID, "")
	if err != nil {
		return classifier.Record{}, nil, err
	}
	var paths []string
	seen := map[string]bool{}
	for _, action := range actions {
		if !seen[action.Path] {
			seen[action.Path] = true
			paths = append(paths, action.Path)
		}
	}
	var types, ids []string
	for _, tracker := range ens.Trackers {
		mentioned := issues.Extract(commit.Message, tracker.Family)
		if len(mentioned) == 0 {
			continue
		}
		found, err := ens.issues.Issues(ctx, store.IssueQuery{
			TrackerID: tracker.ID, ExternalIDs: mentioned, Fields: []string{"external_id", "issue_type"}})
		if err != nil {
			return classifier.Record{}, nil, errors.Wrapf(err, "looking up %v in %s", mentioned, tracker.URL)
		}
		for _, issue := range found {
			ids = append(ids, issue.ID)
			if issue.IssueType != "" {
				types = append(types, issue.IssueType)
			}
		}
	}
	return classifier.NewRecord(commit.Message, paths, types), dedupIDs(ids), nil
}

// keywordVoters are the categories whose keyword vote joins the trained votes. Feature is
// decided by its model alone.
var keywordVoters = map[classifier.Category]bool{
	classifier.BugFix:        true,
	classifier.Refactoring:   true,
	classifier.Test:          true,
	classifier.Documentation: true,
	classifier.Maintenance:   true,
}

// Votes collects the trained votes and the keyword vote of every category.
func (ens *Ensemble) Votes(record classifier.Record) map[classifier.Category][]int {
	keywords := direct.KeywordVotes(record)
	votes := ens.bank.AllVotes(record)
	for _, category := range classifier.Categories {
		if keywordVoters[category] {
			votes[category] = append(votes[category], keywords[category])
		}
	}
	return votes
}

// Label classifies the commit.
func (ens *Ensemble) Label(ctx context.Context, commit *model.Commit) (model.Labels, error) {
	labels, _, err := ens.LabelWithLinks(ctx, commit)
	return labels, err
}

// LabelWithLinks classifies the commit and reports the issues mentioned in the message.
func (ens *Ensemble) LabelWithLinks(ctx context.Context, commit *model.Commit) (
	model.Labels, []string, error) {
	record, ids, err := ens.Record(ctx, commit)
	if err != nil {
		return nil, nil, err
	}
	votes := ens.Votes(record)
	evidence := ens.evidence.Collect(ctx, commit)
	labels := make(model.Labels, 0, len(classifier.Categories))
	for _, category := range classifier.Categories {
		value := classifier.HardVote(votes[category])
		if evidenceCategories[category] {
			value = value || evidence[category]
		}
		labels = append(labels, model.Label{Name: string(category), Value: value})
	}
	return labels, ids, nil
}
