// Package hunks inspects the text of unified diff hunks: comments, string literals,
// technical debt markers and the languages of the changed files.
package hunks

import (
	"path"
	"regexp"
	"strings"

	"github.com/src-d/enry/v2"
)

var (
	javaString        = regexp.MustCompile(`"(?:[^"\\\n]|\\.)*"`)
	streamedComment   = regexp.MustCompile(`(?s)/\*.*?\*/`)
	lineComment       = regexp.MustCompile(`//[^\n]*`)
	multilineComment  = regexp.MustCompile(`^[-+]\s*(?:/\*|\*)`)
	inlineComment     = regexp.MustCompile(`^[-+].*//`)
	debtMarkerAdded   = regexp.MustCompile(`^\+.*//\s*(?:TODO|XXX|FIXME)`)
	debtMarkerRemoved = regexp.MustCompile(`^-.*//\s*(?:TODO|XXX|FIXME)`)
	docComment        = regexp.MustCompile(`(?m)"""|'''|/\*\*|^[-+]\s*\*`)
)

// documented lists the languages whose doc comments are recognized by HasDocComment.
var documented = map[string]bool{
	"C":           true,
	"C++":         true,
	"Java":        true,
	"Objective-C": true,
	"Python":      true,
}

// CommentChanges summarizes the comment lines touched by Java hunks.
type CommentChanges struct {
	// Javadoc is true if a block or documentation comment line was added or removed.
	Javadoc bool
	// Inline is true if a line with a // comment was added or removed.
	Inline bool
	// DebtAdded is true if a TODO, XXX or FIXME comment was added.
	DebtAdded bool
	// DebtRemoved is true if a TODO, XXX or FIXME comment was removed.
	DebtRemoved bool
}

// Merge ORs two summaries.
func (c CommentChanges) Merge(other CommentChanges) CommentChanges {
	return CommentChanges{
		Javadoc:     c.Javadoc || other.Javadoc,
		Inline:      c.Inline || other.Inline,
		DebtAdded:   c.DebtAdded || other.DebtAdded,
		DebtRemoved: c.DebtRemoved || other.DebtRemoved,
	}
}

// Any returns true if at least one kind of comment change was found.
func (c CommentChanges) Any() bool {
	return c.Javadoc || c.Inline || c.DebtAdded || c.DebtRemoved
}

// StripStrings replaces every double quoted string literal with "".
func StripStrings(content string) string {
	return javaString.ReplaceAllString(content, `""`)
}

// StripComments removes /* */ blocks and // comments. The string literals must be stripped
// beforehand, otherwise "http://" is taken for a comment.
func StripComments(content string) string {
	return lineComment.ReplaceAllString(streamedComment.ReplaceAllString(content, ""), "")
}

// AnalyzeJava classifies the comment lines of a Java hunk. Block comment lines are
// not considered for the inline and debt checks.
func AnalyzeJava(content string) CommentChanges {
	var result CommentChanges
	for _, line := range strings.Split(StripStrings(content), "\n") {
		if multilineComment.MatchString(line) {
			result.Javadoc = true
			continue
		}
		if inlineComment.MatchString(line) {
			result.Inline = true
		}
		if debtMarkerAdded.MatchString(line) {
			result.DebtAdded = true
		}
		if debtMarkerRemoved.MatchString(line) {
			result.DebtRemoved = true
		}
	}
	return result
}

// IsLogicalChange returns true if an added or removed line of the hunk still has code
// after the comments and the blanks are gone.
func IsLogicalChange(content string) bool {
	for _, line := range strings.Split(StripComments(StripStrings(content)), "\n") {
		if len(line) == 0 || (line[0] != '+' && line[0] != '-') {
			continue
		}
		if strings.TrimSpace(line[1:]) != "" {
			return true
		}
	}
	return false
}

// HasDocComment detects Python docstrings, /** openers and the continuation lines
// of block comments.
func HasDocComment(content string) bool {
	return docComment.MatchString(content)
}

// Languages returns the candidate languages of the file judging by its extension.
func Languages(name string) []string {
	return enry.GetLanguagesByExtension(path.Base(name), nil, nil)
}

// Language detects the language of the file from its name and contents.
func Language(name string, content []byte) string {
	return enry.GetLanguage(path.Base(name), content)
}

// IsJava returns true for the .java files.
func IsJava(name string) bool {
	return isOneOf(Languages(name), "Java")
}

// IsDocumentable returns true if HasDocComment understands the language of the file.
func IsDocumentable(name string) bool {
	for _, lang := range Languages(name) {
		if documented[lang] {
			return true
		}
	}
	return false
}

// IsVendor returns true for the third party files which are committed with the project.
func IsVendor(name string) bool {
	return enry.IsVendor(name)
}

func isOneOf(langs []string, lang string) bool {
	for _, l := range langs {
		if l == lang {
			return true
		}
	}
	return false
}
