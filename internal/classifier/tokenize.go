package classifier

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/fatih/camelcase"
	"github.com/kljensen/snowball/english"
)

// messageNoise drops the stems of URLs, paths, qualified names, issue keys and numbers.
var messageNoise = regexp.MustCompile(`-|/|\.|http|^[0-9]+$`)

var pathSeparators = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// stopwords are the NLTK English stop words.
var stopwords = toSet(strings.Fields(`
i me my myself we our ours ourselves you you're you've you'll you'd your yours yourself
yourselves he him his himself she she's her hers herself it it's its itself they them their
theirs themselves what which who whom this that that'll these those am is are was were be
been being have has had having do does did doing a an the and but if or because as until
while of at by for with about against between into through during before after above below
to from up down in out on off over under again further then once here there when where why
how all any both each few more most other some such no nor not only own same so than too
very s t can will just don don't should should've now d ll m o re ve y ain aren aren't
couldn couldn't didn didn't doesn doesn't hadn hadn't hasn hasn't haven haven't isn isn't
ma mightn mightn't mustn mustn't needn needn't shan shan't shouldn shouldn't wasn wasn't
weren weren't won won't wouldn wouldn't`))

func toSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// Words splits the text on white space and trims the punctuation around every word.
// Tokens which consist of punctuation only disappear.
func Words(text string) []string {
	fields := strings.Fields(text)
	result := fields[:0]
	for _, field := range fields {
		word := strings.TrimFunc(field, func(r rune) bool {
			return unicode.IsPunct(r) || unicode.IsSymbol(r)
		})
		if word != "" {
			result = append(result, word)
		}
	}
	return result
}

// Stem lower-cases and stems every word of the text and joins the stems with spaces.
func Stem(text string) string {
	words := Words(text)
	for i, w := range words {
		words[i] = english.Stem(w, false)
	}
	return strings.Join(words, " ")
}

// MessageTokens returns the stems of the commit message without the stop words
// and the noise.
func MessageTokens(message string) []string {
	var result []string
	for _, w := range Words(message) {
		stem := english.Stem(w, false)
		if stopwords[stem] || messageNoise.MatchString(stem) {
			continue
		}
		result = append(result, stem)
	}
	return result
}

// PathTokens splits the paths into directories, file names and extensions, breaks
// the camel case identifiers apart and stems the pieces.
func PathTokens(paths string) []string {
	var result []string
	for _, p := range splitList(paths) {
		for _, part := range pathSeparators.Split(p, -1) {
			for _, piece := range camelcase.Split(part) {
				if piece = strings.TrimSpace(piece); piece == "" {
					continue
				}
				result = append(result, english.Stem(piece, true))
			}
		}
	}
	return result
}

// TypeTokens stems the words of the issue types.
func TypeTokens(types string) []string {
	var result []string
	for _, t := range splitList(types) {
		for _, w := range Words(t) {
			result = append(result, english.Stem(w, true))
		}
	}
	return result
}

// TextTokens tokenizes free text such as issue titles and descriptions.
func TextTokens(text string) []string {
	var result []string
	for _, w := range Words(text) {
		stem := english.Stem(w, false)
		if stopwords[stem] {
			continue
		}
		result = append(result, stem)
	}
	return result
}
