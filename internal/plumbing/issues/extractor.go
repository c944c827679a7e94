// Package issues links commits to issue tracker records: it extracts the issue identifiers
// from commit messages, decides whether the linked issues are resolved and fixed bugs and
// falls back to bug keywords when no issue is linked.
package issues

import (
	"regexp"
	"sort"
	"strings"

	"github.com/cyraxred/labelshark/internal/model"
)

var (
	// jiraPattern matches keys like PROJ-123 which start a line or follow a separator.
	jiraPattern = regexp.MustCompile(`(?m)(?:^|[\s\[(:,;/])([A-Z][A-Z0-9_]+-[0-9]+)`)
	// bugzillaPattern matches "bug 12", "Issues #12", "bugzilla12" and show_bug.cgi URLs.
	bugzillaPattern = regexp.MustCompile(
		`(?im)(?:bug|issue|bugzilla)s*[#\s]*([0-9]+)|bugzilla/show_bug\.cgi\?id=([0-9]+)`)
	// githubPattern matches "bug 12", "issue #12", ".../issues/12" and a bare "#12".
	githubPattern = regexp.MustCompile(
		`(?im)(?:bug|issue)s*[#\s]*([0-9]+)|issues/([0-9]+)|(?:^|[\s(])#([0-9]+)`)
)

// Pattern returns the identifier pattern of the tracker family or nil for FamilyUnknown.
func Pattern(family model.TrackerFamily) *regexp.Regexp {
	switch family {
	case model.FamilyJira:
		return jiraPattern
	case model.FamilyBugzilla:
		return bugzillaPattern
	case model.FamilyGitHub:
		return githubPattern
	}
	return nil
}

// Extract returns the sorted set of the upper-cased issue identifiers which the message
// mentions according to the family's pattern. The identifiers are not validated.
func Extract(message string, family model.TrackerFamily) []string {
	pattern := Pattern(family)
	if pattern == nil {
		return nil
	}
	set := map[string]bool{}
	for _, match := range pattern.FindAllStringSubmatch(message, -1) {
		for _, group := range match[1:] {
			if group != "" {
				set[strings.ToUpper(group)] = true
				break
			}
		}
	}
	if len(set) == 0 {
		return nil
	}
	result := make([]string, 0, len(set))
	for id := range set {
		result = append(result, id)
	}
	sort.Strings(result)
	return result
}
