package issues

import "regexp"

var bugKeywords = regexp.MustCompile(`(?im)(?:^|\b)(fix(?:e[sd])?|bugs?|defects?|patch|issues?)\b`)

// KeywordScore counts the bug related words in the text: fix, fixes, fixed, bug, bugs,
// defect, defects, patch, issue and issues.
func KeywordScore(text string) int {
	return len(bugKeywords.FindAllStringIndex(text, -1))
}
