package classifier

import (
	"github.com/pkg/errors"
)

// TextModel estimates the probability that a piece of free text belongs to the positive class.
type TextModel struct {
	vectorizer *Vectorizer
	model      ProbabilisticModel
}

// TrainTextModel fits a probabilistic model of the given kind on the texts.
func TrainTextModel(texts []string, labels []int, kind ModelKind, seed int64) (*TextModel, error) {
	if len(texts) == 0 {
		return nil, errors.New("no training texts")
	}
	model, err := NewModel(kind, seed)
	if err != nil {
		return nil, err
	}
	probabilistic, ok := model.(ProbabilisticModel)
	if !ok {
		return nil, errors.Errorf("%s does not estimate probabilities", kind)
	}
	docs := make([][]string, len(texts))
	for i, text := range texts {
		docs[i] = []string{text}
	}
	tm := &TextModel{vectorizer: NewVectorizer(Field{Name: "text", Tokenize: TextTokens})}
	samples := tm.vectorizer.FitTransform(docs)
	if len(labels) > 0 {
		if label, single := singleLabel(labels); single {
			tm.model = &constantModel{label: label}
			return tm, nil
		}
	}
	if err = probabilistic.Fit(samples, labels, tm.vectorizer.Size()); err != nil {
		return nil, err
	}
	tm.model = probabilistic
	return tm, nil
}

// Probability of the positive class.
func (tm *TextModel) Probability(text string) float64 {
	return tm.model.PredictProba(tm.vectorizer.Transform([]string{text}))
}
