package classifier

import (
	"math"
	"math/rand"
	"sort"
	"strconv"

	"github.com/jbrukh/bayesian"
	"github.com/pkg/errors"
)

// Model is a binary classifier over count vectors. The labels are 0 and 1.
type Model interface {
	// Fit trains the model. size is the number of features.
	Fit(samples []Vector, labels []int, size int) error
	// Predict returns the label of the sample.
	Predict(sample Vector) int
}

// ProbabilisticModel additionally estimates the probability of the positive label.
type ProbabilisticModel interface {
	Model
	PredictProba(sample Vector) float64
}

// ModelKind names a model implementation.
type ModelKind string

const (
	// NaiveBayes is the multinomial naive Bayes classifier of github.com/jbrukh/bayesian.
	NaiveBayes ModelKind = "nb"
	// LogisticRegression is the L2 regularized logistic regression fit by gradient descent.
	LogisticRegression ModelKind = "lr"
	// LinearSVM is the linear support vector machine fit by Pegasos.
	LinearSVM ModelKind = "svm"
	// Perceptron is the averaged perceptron.
	Perceptron ModelKind = "perceptron"
	// KNN is the k nearest neighbors classifier with the cosine similarity.
	KNN ModelKind = "knn"
)

// ErrUnknownModel is returned by NewModel for unsupported kinds.
var ErrUnknownModel = errors.New("unknown model kind")

// NewModel creates an untrained model of the given kind. seed drives the models which
// visit the samples in random order.
func NewModel(kind ModelKind, seed int64) (Model, error) {
	switch kind {
	case NaiveBayes:
		return &naiveBayes{}, nil
	case LogisticRegression:
		return &logisticRegression{epochs: 300, rate: 0.5, l2: 1e-4}, nil
	case LinearSVM:
		return &linearSVM{epochs: 30, lambda: 1e-3, seed: seed}, nil
	case Perceptron:
		return &perceptron{epochs: 20, seed: seed}, nil
	case KNN:
		return &knn{k: 5}, nil
	}
	return nil, errors.Wrapf(ErrUnknownModel, "%q", kind)
}

func checkSamples(samples []Vector, labels []int) error {
	if len(samples) == 0 {
		return errors.New("no training samples")
	}
	if len(samples) != len(labels) {
		return errors.Errorf("%d samples but %d labels", len(samples), len(labels))
	}
	for _, label := range labels {
		if label != 0 && label != 1 {
			return errors.Errorf("label %d is not binary", label)
		}
	}
	return nil
}

// sign maps the labels to -1 and +1.
func sign(label int) float64 {
	if label == 1 {
		return 1
	}
	return -1
}

func sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}

// naiveBayes is the multinomial naive Bayes over the feature indices. Every index becomes a
// word repeated as many times as it was counted.
type naiveBayes struct {
	classifier *bayesian.Classifier
	// absent marks the classes without training documents, they never win.
	absent [2]bool
}

var bayesClasses = [2]bayesian.Class{"0", "1"}

func bayesDocument(sample Vector) []string {
	document := make([]string, 0, len(sample.Indices))
	for k, index := range sample.Indices {
		word := strconv.Itoa(index)
		count := int(math.Round(sample.Values[k]))
		if count < 1 {
			count = 1
		}
		for n := 0; n < count; n++ {
			document = append(document, word)
		}
	}
	return document
}

func (nb *naiveBayes) Fit(samples []Vector, labels []int, _ int) error {
	if err := checkSamples(samples, labels); err != nil {
		return err
	}
	nb.classifier = bayesian.NewClassifier(bayesClasses[0], bayesClasses[1])
	nb.absent = [2]bool{true, true}
	for i, sample := range samples {
		nb.absent[labels[i]] = false
		nb.classifier.Learn(bayesDocument(sample), bayesClasses[labels[i]])
	}
	return nil
}

func (nb *naiveBayes) logOdds(sample Vector) float64 {
	switch {
	case nb.absent[1]:
		return math.Inf(-1)
	case nb.absent[0]:
		return math.Inf(1)
	}
	scores, _, _ := nb.classifier.LogScores(bayesDocument(sample))
	return scores[1] - scores[0]
}

func (nb *naiveBayes) Predict(sample Vector) int {
	if nb.logOdds(sample) > 0 {
		return 1
	}
	return 0
}

func (nb *naiveBayes) PredictProba(sample Vector) float64 {
	odds := nb.logOdds(sample)
	if math.IsNaN(odds) {
		return 0.5
	}
	return sigmoid(odds)
}

type logisticRegression struct {
	epochs  int
	rate    float64
	l2      float64
	weights []float64
	bias    float64
}

func (lr *logisticRegression) Fit(samples []Vector, labels []int, size int) error {
	if err := checkSamples(samples, labels); err != nil {
		return err
	}
	lr.weights = make([]float64, size)
	lr.bias = 0
	n := float64(len(samples))
	gradient := make([]float64, size)
	for epoch := 0; epoch < lr.epochs; epoch++ {
		for j := range gradient {
			gradient[j] = lr.l2 * lr.weights[j]
		}
		var biasGradient float64
		for i, sample := range samples {
			diff := sigmoid(sample.Dot(lr.weights)+lr.bias) - float64(labels[i])
			for k, index := range sample.Indices {
				gradient[index] += diff * sample.Values[k] / n
			}
			biasGradient += diff / n
		}
		for j := range lr.weights {
			lr.weights[j] -= lr.rate * gradient[j]
		}
		lr.bias -= lr.rate * biasGradient
	}
	return nil
}

func (lr *logisticRegression) PredictProba(sample Vector) float64 {
	return sigmoid(sample.Dot(lr.weights) + lr.bias)
}

func (lr *logisticRegression) Predict(sample Vector) int {
	if lr.PredictProba(sample) > 0.5 {
		return 1
	}
	return 0
}

// linearSVM keeps the bias as the last weight, so it is regularized like the rest.
type linearSVM struct {
	epochs  int
	lambda  float64
	seed    int64
	weights []float64
}

func (svm *linearSVM) margin(sample Vector) float64 {
	return sample.Dot(svm.weights) + svm.weights[len(svm.weights)-1]
}

func (svm *linearSVM) Fit(samples []Vector, labels []int, size int) error {
	if err := checkSamples(samples, labels); err != nil {
		return err
	}
	svm.weights = make([]float64, size+1)
	rng := rand.New(rand.NewSource(svm.seed))
	steps := svm.epochs * len(samples)
	for t := 1; t <= steps; t++ {
		i := rng.Intn(len(samples))
		eta := 1 / (svm.lambda * float64(t))
		y := sign(labels[i])
		violated := y*svm.margin(samples[i]) < 1
		shrink := 1 - eta*svm.lambda
		for j := range svm.weights {
			svm.weights[j] *= shrink
		}
		if violated {
			for k, index := range samples[i].Indices {
				svm.weights[index] += eta * y * samples[i].Values[k]
			}
			svm.weights[size] += eta * y
		}
	}
	return nil
}

func (svm *linearSVM) Predict(sample Vector) int {
	if svm.margin(sample) > 0 {
		return 1
	}
	return 0
}

type perceptron struct {
	epochs  int
	seed    int64
	weights []float64
	bias    float64
}

func (p *perceptron) Fit(samples []Vector, labels []int, size int) error {
	if err := checkSamples(samples, labels); err != nil {
		return err
	}
	weights := make([]float64, size)
	sums := make([]float64, size)
	var bias, biasSum float64
	counter := 1.0
	rng := rand.New(rand.NewSource(p.seed))
	for epoch := 0; epoch < p.epochs; epoch++ {
		for _, i := range rng.Perm(len(samples)) {
			y := sign(labels[i])
			if y*(samples[i].Dot(weights)+bias) <= 0 {
				for k, index := range samples[i].Indices {
					weights[index] += y * samples[i].Values[k]
					sums[index] += counter * y * samples[i].Values[k]
				}
				bias += y
				biasSum += counter * y
			}
			counter++
		}
	}
	p.weights = make([]float64, size)
	for j := range weights {
		p.weights[j] = weights[j] - sums[j]/counter
	}
	p.bias = bias - biasSum/counter
	return nil
}

func (p *perceptron) Predict(sample Vector) int {
	if sample.Dot(p.weights)+p.bias > 0 {
		return 1
	}
	return 0
}

type knn struct {
	k       int
	samples []Vector
	labels  []int
}

func (m *knn) Fit(samples []Vector, labels []int, _ int) error {
	if err := checkSamples(samples, labels); err != nil {
		return err
	}
	m.samples = append([]Vector(nil), samples...)
	m.labels = append([]int(nil), labels...)
	return nil
}

func (m *knn) Predict(sample Vector) int {
	type neighbor struct {
		index      int
		similarity float64
	}
	neighbors := make([]neighbor, len(m.samples))
	for i, other := range m.samples {
		neighbors[i] = neighbor{i, Cosine(sample, other)}
	}
	sort.SliceStable(neighbors, func(i, j int) bool {
		return neighbors[i].similarity > neighbors[j].similarity
	})
	k := m.k
	if k > len(neighbors) {
		k = len(neighbors)
	}
	votes := make([]int, k)
	for i := 0; i < k; i++ {
		votes[i] = m.labels[neighbors[i].index]
	}
	if HardVote(votes) {
		return 1
	}
	return 0
}

// constantModel answers with the only label seen in training.
type constantModel struct {
	label int
}

func (m *constantModel) Fit([]Vector, []int, int) error { return nil }

func (m *constantModel) Predict(Vector) int { return m.label }

func (m *constantModel) PredictProba(Vector) float64 { return float64(m.label) }
