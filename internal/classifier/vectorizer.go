package classifier

import (
	"math"
	"sort"
)

// Vector is a sparse feature vector with the indices in ascending order.
type Vector struct {
	Indices []int
	Values  []float64
}

// Dot multiplies the vector by the dense weights. Indices outside of the weights are ignored.
func (v Vector) Dot(weights []float64) float64 {
	var sum float64
	for i, index := range v.Indices {
		if index < len(weights) {
			sum += weights[index] * v.Values[i]
		}
	}
	return sum
}

// Norm is the Euclidean length of the vector.
func (v Vector) Norm() float64 {
	var sum float64
	for _, value := range v.Values {
		sum += value * value
	}
	return math.Sqrt(sum)
}

// Len returns the number of non-zero features.
func (v Vector) Len() int {
	return len(v.Indices)
}

// Cosine returns the cosine similarity of two vectors, 0 if either is empty.
func Cosine(a, b Vector) float64 {
	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return 0
	}
	var dot float64
	i, j := 0, 0
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] == b.Indices[j]:
			dot += a.Values[i] * b.Values[j]
			i++
			j++
		case a.Indices[i] < b.Indices[j]:
			i++
		default:
			j++
		}
	}
	return dot / (na * nb)
}

// Tokenizer splits a document field into terms.
type Tokenizer func(string) []string

// Field is a named document field with its tokenizer.
type Field struct {
	Name     string
	Tokenize Tokenizer
}

// RecordFields are the fields of Record in the order of Record.fields().
var RecordFields = []Field{
	{Name: "message", Tokenize: MessageTokens},
	{Name: "paths", Tokenize: PathTokens},
	{Name: "issue_type", Tokenize: TypeTokens},
}

// Vectorizer turns multi-field documents into term count vectors. Every field has its own
// vocabulary and the vectors of the fields are concatenated.
type Vectorizer struct {
	fields     []Field
	vocabulary []map[string]int
	size       int
}

// NewVectorizer creates a Vectorizer over the given fields.
func NewVectorizer(fields ...Field) *Vectorizer {
	return &Vectorizer{fields: fields}
}

// Fit builds the vocabularies. Each document lists its field values in the order of the fields.
func (v *Vectorizer) Fit(docs [][]string) {
	v.vocabulary = make([]map[string]int, len(v.fields))
	v.size = 0
	for f, field := range v.fields {
		terms := map[string]bool{}
		for _, doc := range docs {
			if f >= len(doc) {
				continue
			}
			for _, term := range field.Tokenize(doc[f]) {
				terms[term] = true
			}
		}
		sorted := make([]string, 0, len(terms))
		for term := range terms {
			sorted = append(sorted, term)
		}
		sort.Strings(sorted)
		v.vocabulary[f] = make(map[string]int, len(sorted))
		for _, term := range sorted {
			v.vocabulary[f][term] = v.size
			v.size++
		}
	}
}

// Size returns the total number of features.
func (v *Vectorizer) Size() int {
	return v.size
}

// Transform counts the known terms of the document. Unknown terms are skipped.
func (v *Vectorizer) Transform(doc []string) Vector {
	counts := map[int]float64{}
	for f, field := range v.fields {
		if f >= len(doc) || f >= len(v.vocabulary) {
			continue
		}
		for _, term := range field.Tokenize(doc[f]) {
			if index, exists := v.vocabulary[f][term]; exists {
				counts[index]++
			}
		}
	}
	vec := Vector{Indices: make([]int, 0, len(counts)), Values: make([]float64, 0, len(counts))}
	for index := range counts {
		vec.Indices = append(vec.Indices, index)
	}
	sort.Ints(vec.Indices)
	for _, index := range vec.Indices {
		vec.Values = append(vec.Values, counts[index])
	}
	return vec
}

// FitTransform fits the vocabularies and transforms every document.
func (v *Vectorizer) FitTransform(docs [][]string) []Vector {
	v.Fit(docs)
	result := make([]Vector, len(docs))
	for i, doc := range docs {
		result[i] = v.Transform(doc)
	}
	return result
}
