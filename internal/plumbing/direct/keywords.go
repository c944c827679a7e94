// Package direct contains the rule based commit classifiers which need no training:
// keyword votes over the feature record and the code evidence detectors.
package direct

import (
	"regexp"
	"strings"

	"github.com/cyraxred/labelshark/internal/classifier"
)

var (
	bugfixMessage = regexp.MustCompile(`(?i)\b(?:bug|fix|error|fail|repair|fixup)\b`)

	refactoringMessage = regexp.MustCompile(`(?i)\b(?:refact|refactor|refactored|migrated|refactoring|` +
		`restructure|encapsulate|param|parameters|abstract|rename\s+(?:method|variable|class)|` +
		`(?:method|variable|class)\s+name|extract\s+(?:method|class|interface|code)|getter|setter|` +
		`checkstyle|pmd|typo.*(?:variable|method|class|code)|pull up|push down|` +
		`merge.*(?:method|funcation|class)|convention|simple|simplify|replace|nest|inline|` +
		`(?:remove|delete)\s+duplicate|split|wrapper|private|protect|delegate)\b`)
	moveMessage    = regexp.MustCompile(`(?i)\b(?:moved|move)\b`)
	moveExceptions = regexp.MustCompile(`(?i)icon|icons|version`)

	testMessage = regexp.MustCompile(`(?i)\b(?:test|tests|junit)\b`)
	testPaths   = regexp.MustCompile(`(?i)\b(?:test|tests)\b`)

	documentationMessage = regexp.MustCompile(`(?i)\b(?:doc|xdoc|xdocs|userguide|documentation|javadoc)\b`)
	documentationPaths   = regexp.MustCompile(
		`(?i)\b(?:doc|xdoc|xdocs|userguide|changes|documentation|readme|license)\b`)

	featureMessage = regexp.MustCompile(`(?i)\b(?:(?:add|added).*(?:class|method|png|logo)|new|feature|` +
		`import|^(?:no|not|never).*use|support|Synchronize)\b`)

	maintenanceMessage = regexp.MustCompile(`(?i)\b(?:clean|cleaning|cleanup|cleaned up|reordered|` +
		`(?:remove)?.*(?:unused|import|dead|whitespace|whitespaces|spaces|tabs)|` +
		`(?:update|upgrade|set)+.*version|format|cosmetic|organize)\b`)
	maintenancePaths = regexp.MustCompile(`(?i)\b(?:build|pom|properties|project|gitignore|cvsignore|` +
		`maven|travis|classpath|AndroidManifest)\b`)
)

// messageMatches tries the raw and the stemmed message.
func messageMatches(pattern *regexp.Regexp, message, stemmed string) bool {
	return pattern.MatchString(message) || pattern.MatchString(stemmed)
}

// movedSomething matches "move" unless an icon or a version moves later on the same line.
func movedSomething(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		for _, loc := range moveMessage.FindAllStringIndex(line, -1) {
			if !moveExceptions.MatchString(line[loc[1]:]) {
				return true
			}
		}
	}
	return false
}

func typeMentions(record classifier.Record, word string) bool {
	for _, t := range record.IssueTypes() {
		if strings.Contains(strings.ToLower(t), word) {
			return true
		}
	}
	return false
}

func vote(positive bool) int {
	if positive {
		return 1
	}
	return 0
}

// KeywordVotes returns the 0/1 keyword vote of every category. The linked issue types
// override the keywords: a bug forces the bugfix vote to 1, any other type forces it to 0,
// and a feature forces the feature vote to 1.
func KeywordVotes(record classifier.Record) map[classifier.Category]int {
	message := record.Message
	stemmed := classifier.Stem(message)

	bugfix := messageMatches(bugfixMessage, message, stemmed)
	if typeMentions(record, "bug") {
		bugfix = true
	} else if len(record.IssueTypes()) > 0 {
		bugfix = false
	}
	refactoring := messageMatches(refactoringMessage, message, stemmed) ||
		movedSomething(message) || movedSomething(stemmed)
	test := messageMatches(testMessage, message, stemmed) || testPaths.MatchString(record.Paths)
	documentation := messageMatches(documentationMessage, message, stemmed) ||
		documentationPaths.MatchString(record.Paths)
	feature := messageMatches(featureMessage, message, stemmed) || typeMentions(record, "feature")
	maintenance := messageMatches(maintenanceMessage, message, stemmed) ||
		maintenancePaths.MatchString(record.Paths)

	return map[classifier.Category]int{
		classifier.BugFix:        vote(bugfix),
		classifier.Refactoring:   vote(refactoring),
		classifier.Test:          vote(test),
		classifier.Documentation: vote(documentation),
		classifier.Feature:       vote(feature),
		classifier.Maintenance:   vote(maintenance),
	}
}

// RefactoringKeywords reports whether the message mentions a refactoring anywhere.
func RefactoringKeywords(message string) bool {
	lower := strings.ToLower(message)
	return refactoringMessage.MatchString(lower) || movedSomething(lower)
}
