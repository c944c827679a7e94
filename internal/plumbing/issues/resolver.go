package issues

import (
	"context"
	"strings"

	"github.com/cyraxred/labelshark/internal/core"
	"github.com/cyraxred/labelshark/internal/model"
	"github.com/cyraxred/labelshark/internal/store"
	"github.com/pkg/errors"
)

// ResolutionFields are the issue fields which the resolution depends on.
var ResolutionFields = []string{
	"external_id", "issue_type", "issue_type_verified", "status", "resolution", "parent_issue_id",
}

// Resolution is the verdict about a single issue.
type Resolution struct {
	// BugFix is true if the issue is a bug which was resolved and fixed.
	BugFix bool
	// TypeKnown is false if the issue has no declared type.
	TypeKnown bool
}

// Resolver decides whether issues are resolved and fixed bugs. It keeps no state besides
// its collaborators, so the same issue always yields the same Resolution.
type Resolver struct {
	issues store.IssueStore
	l      core.Logger
}

// NewResolver creates a Resolver which reads the event histories from the store.
func NewResolver(issues store.IssueStore, l core.Logger) *Resolver {
	if l == nil {
		l = core.NewLogger()
	}
	return &Resolver{issues: issues, l: l}
}

func oneOf(value string, choices ...string) bool {
	for _, choice := range choices {
		if strings.EqualFold(value, choice) {
			return true
		}
	}
	return false
}

// Resolve applies the rules of the tracker family:
//
// Jira: the type is "bug", the issue is resolved (current status resolved/closed or any such
// status event) and fixed (resolved from the current status with a resolution other than
// duplicate, or any resolution event "fixed").
//
// Bugzilla: same as Jira, but the current resolution must literally be "fixed".
//
// GitHub: the issue is closed.
func (r *Resolver) Resolve(ctx context.Context, issue *model.Issue, family model.TrackerFamily) (
	Resolution, error) {
	switch family {
	case model.FamilyGitHub:
		return Resolution{
			BugFix:    strings.EqualFold(issue.Status, "closed"),
			TypeKnown: issue.IssueType != "",
		}, nil
	case model.FamilyJira, model.FamilyBugzilla:
		return r.resolveByHistory(ctx, issue, issue.IssueType, family)
	}
	r.l.Warnf("issue %s belongs to a tracker of unknown kind\n", issue.ExternalID)
	return Resolution{TypeKnown: issue.IssueType != ""}, nil
}

// ResolveVerified trusts the manually validated issue type when it is present: the issue is
// a bug fix if the verified type is "bug". Otherwise it falls back to Resolve().
func (r *Resolver) ResolveVerified(ctx context.Context, issue *model.Issue, family model.TrackerFamily) (
	Resolution, error) {
	if issue.IssueTypeVerified == "" {
		return r.Resolve(ctx, issue, family)
	}
	return Resolution{BugFix: strings.EqualFold(issue.IssueTypeVerified, "bug"), TypeKnown: true}, nil
}

func (r *Resolver) resolveByHistory(ctx context.Context, issue *model.Issue, issueType string,
	family model.TrackerFamily) (Resolution, error) {
	typeKnown := issueType != ""
	if !typeKnown {
		r.l.Warnf("issue %s (%s) has no type, treated as not a bug\n", issue.ExternalID, issue.ID)
	}
	isBug := strings.EqualFold(issueType, "bug")
	resolved, fixed := false, false
	if oneOf(issue.Status, "resolved", "closed") {
		resolved = true
		if family == model.FamilyBugzilla {
			fixed = strings.EqualFold(issue.Resolution, "fixed")
		} else {
			fixed = !oneOf(issue.Resolution, "duplicated", "duplicate")
		}
	}
	events, err := r.issues.Events(ctx, issue.ID)
	if err != nil {
		return Resolution{}, errors.Wrapf(err, "loading the history of %s", issue.ExternalID)
	}
	for _, event := range events {
		switch {
		case strings.EqualFold(event.Field, "status"):
			resolved = resolved || oneOf(event.NewValue, "resolved", "closed")
		case strings.EqualFold(event.Field, "resolution"):
			fixed = fixed || strings.EqualFold(event.NewValue, "fixed")
		}
	}
	return Resolution{BugFix: isBug && resolved && fixed, TypeKnown: typeKnown}, nil
}
