package classifier

import (
	"math/rand"

	"github.com/pkg/errors"
)

// DefaultCategoryModels maps each category to the models which vote for it.
var DefaultCategoryModels = map[Category][]ModelKind{
	BugFix:        {NaiveBayes, Perceptron, LinearSVM},
	Refactoring:   {NaiveBayes, LinearSVM},
	Test:          {LinearSVM, KNN},
	Feature:       {Perceptron},
	Documentation: {Perceptron, LogisticRegression},
	Maintenance:   {LinearSVM, KNN},
}

// DefaultSampleSizes is the number of rows drawn per label value when training each
// category. Documentation is trained on the whole dataset.
var DefaultSampleSizes = map[Category]int{
	BugFix:        285,
	Refactoring:   55,
	Test:          258,
	Feature:       71,
	Maintenance:   251,
	Documentation: 0,
}

// DefaultSeed seeds the sampling and the randomized models.
const DefaultSeed = 42

// BankOptions configure TrainBank.
type BankOptions struct {
	Models      map[Category][]ModelKind
	SampleSizes map[Category]int
	Seed        int64
}

// DefaultBankOptions returns the default models, sample sizes and seed.
func DefaultBankOptions() BankOptions {
	return BankOptions{
		Models:      DefaultCategoryModels,
		SampleSizes: DefaultSampleSizes,
		Seed:        DefaultSeed,
	}
}

type categoryModels struct {
	vectorizer *Vectorizer
	kinds      []ModelKind
	models     []Model
}

// Bank holds the trained models of every category.
type Bank struct {
	categories map[Category]*categoryModels
}

// TrainBank samples the dataset and trains the models of each category on their own
// vocabulary.
func TrainBank(dataset *Dataset, opts BankOptions) (*Bank, error) {
	if dataset == nil || dataset.Len() == 0 {
		return nil, errors.New("the training dataset is empty")
	}
	rng := rand.New(rand.NewSource(opts.Seed))
	bank := &Bank{categories: map[Category]*categoryModels{}}
	for _, category := range Categories {
		kinds := opts.Models[category]
		if len(kinds) == 0 {
			continue
		}
		labels := dataset.Labels[category]
		if len(labels) != dataset.Len() {
			return nil, errors.Errorf("%s: %d labels for %d records", category, len(labels), dataset.Len())
		}
		rows := BalancedSample(labels, opts.SampleSizes[category], rng)
		docs := make([][]string, len(rows))
		sampleLabels := make([]int, len(rows))
		for i, row := range rows {
			docs[i] = dataset.Records[row].fields()
			sampleLabels[i] = labels[row]
		}
		cm := &categoryModels{vectorizer: NewVectorizer(RecordFields...), kinds: kinds}
		samples := cm.vectorizer.FitTransform(docs)
		for _, kind := range kinds {
			model, err := trainModel(kind, samples, sampleLabels, cm.vectorizer.Size(), opts.Seed)
			if err != nil {
				return nil, errors.Wrapf(err, "%s/%s", category, kind)
			}
			cm.models = append(cm.models, model)
		}
		bank.categories[category] = cm
	}
	return bank, nil
}

func trainModel(kind ModelKind, samples []Vector, labels []int, size int, seed int64) (Model, error) {
	model, err := NewModel(kind, seed)
	if err != nil {
		return nil, err
	}
	if label, single := singleLabel(labels); single {
		return &constantModel{label: label}, nil
	}
	if err = model.Fit(samples, labels, size); err != nil {
		return nil, err
	}
	return model, nil
}

func singleLabel(labels []int) (int, bool) {
	for _, label := range labels[1:] {
		if label != labels[0] {
			return 0, false
		}
	}
	return labels[0], true
}

// Kinds returns the models which vote for the category.
func (b *Bank) Kinds(category Category) []ModelKind {
	if cm := b.categories[category]; cm != nil {
		return cm.kinds
	}
	return nil
}

// Votes returns the prediction of every model of the category.
func (b *Bank) Votes(category Category, record Record) []int {
	cm := b.categories[category]
	if cm == nil {
		return nil
	}
	sample := cm.vectorizer.Transform(record.fields())
	votes := make([]int, len(cm.models))
	for i, model := range cm.models {
		votes[i] = model.Predict(sample)
	}
	return votes
}

// AllVotes returns the votes of every trained category.
func (b *Bank) AllVotes(record Record) map[Category][]int {
	result := map[Category][]int{}
	for category := range b.categories {
		result[category] = b.Votes(category, record)
	}
	return result
}

// HardVote is true if there are strictly more ones than zeros among the votes.
func HardVote(votes []int) bool {
	ones, zeros := 0, 0
	for _, vote := range votes {
		if vote == 1 {
			ones++
		} else if vote == 0 {
			zeros++
		}
	}
	return ones > zeros
}
