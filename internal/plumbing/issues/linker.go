package issues

import (
	"context"
	"sort"
	"strings"

	"github.com/cyraxred/labelshark/internal/core"
	"github.com/cyraxred/labelshark/internal/model"
	"github.com/cyraxred/labelshark/internal/store"
	"github.com/pkg/errors"
)

// TrackerScore is the outcome of matching a commit message against one tracker.
type TrackerScore struct {
	Tracker *model.Tracker
	// Mentioned are the identifiers extracted from the message.
	Mentioned []string
	// IssueIDs are the identities of the issues which exist in the tracker.
	IssueIDs []string
	// Score is the number of resolved and fixed bugs among them.
	Score int
}

// Found indicates whether at least one mentioned issue exists in the tracker.
func (ts TrackerScore) Found() bool {
	return len(ts.IssueIDs) > 0
}

// LinkResult is the bug fix verdict about a commit.
type LinkResult struct {
	// BugFix is the final label.
	BugFix bool
	// IssueIDs are the deduplicated identities of all the linked issues.
	IssueIDs []string
	// PerTracker follows the order of the trackers.
	PerTracker []TrackerScore
	// Decisive is the first tracker which found a bug fix, nil otherwise.
	Decisive *model.Tracker
	// Fallback is true if no issue was found and the keywords decided.
	Fallback bool
	// KeywordScore is the number of bug keywords, only computed for the fallback.
	KeywordScore int
}

// Linker decides whether a commit fixes a bug using the issue links in its message:
//
//  1. Every tracker extracts the identifiers with its pattern and resolves the issues.
//  2. If any issue was found, the commit is a bug fix iff the first tracker (in the given
//     order) which found issues with a positive score exists. Found issues which are
//     not bug fixes suppress the keyword fallback.
//  3. If no issue was found at all, including the identifiers which failed to resolve,
//     the commit is a bug fix iff the message contains bug keywords.
type Linker struct {
	issues   store.IssueStore
	resolver *Resolver
	l        core.Logger
}

// NewLinker creates a Linker over the issue store.
func NewLinker(issues store.IssueStore, l core.Logger) *Linker {
	if l == nil {
		l = core.NewLogger()
	}
	return &Linker{issues: issues, resolver: NewResolver(issues, l), l: l}
}

// Resolver returns the underlying Resolver.
func (linker *Linker) Resolver() *Resolver {
	return linker.resolver
}

// Link classifies the commit against the trackers.
func (linker *Linker) Link(ctx context.Context, commit *model.Commit, trackers []*model.Tracker) (
	LinkResult, error) {
	result := LinkResult{PerTracker: make([]TrackerScore, 0, len(trackers))}
	anyFound := false
	for _, tracker := range trackers {
		score, err := linker.scoreTracker(ctx, commit, tracker)
		if err != nil {
			return LinkResult{}, err
		}
		result.PerTracker = append(result.PerTracker, score)
		result.IssueIDs = append(result.IssueIDs, score.IssueIDs...)
		if !score.Found() {
			continue
		}
		anyFound = true
		if result.Decisive == nil && score.Score > 0 {
			result.Decisive = tracker
		}
	}
	result.IssueIDs = dedup(result.IssueIDs)
	if anyFound {
		result.BugFix = result.Decisive != nil
		return result, nil
	}
	result.Fallback = true
	result.KeywordScore = KeywordScore(commit.Message)
	result.BugFix = result.KeywordScore > 0
	return result, nil
}

func (linker *Linker) scoreTracker(ctx context.Context, commit *model.Commit, tracker *model.Tracker) (
	TrackerScore, error) {
	score := TrackerScore{Tracker: tracker, Mentioned: Extract(commit.Message, tracker.Family)}
	if len(score.Mentioned) == 0 {
		return score, nil
	}
	found, err := linker.issues.Issues(ctx, store.IssueQuery{
		TrackerID: tracker.ID, ExternalIDs: score.Mentioned, Fields: ResolutionFields})
	if err != nil {
		return score, errors.Wrapf(err, "looking up %v in %s", score.Mentioned, tracker.URL)
	}
	resolved := map[string]bool{}
	for _, issue := range found {
		resolved[strings.ToUpper(issue.ExternalID)] = true
		score.IssueIDs = append(score.IssueIDs, issue.ID)
		res, err := linker.resolver.Resolve(ctx, issue, tracker.Family)
		if err != nil {
			return score, err
		}
		if res.BugFix {
			score.Score++
		}
	}
	for _, id := range score.Mentioned {
		if !resolved[id] {
			linker.l.Warnf("issue %s mentioned by %s was not found in %s\n", id, commit.Hash, tracker.URL)
		}
	}
	return score, nil
}

func dedup(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	set := map[string]bool{}
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		if !set[id] {
			set[id] = true
			result = append(result, id)
		}
	}
	sort.Strings(result)
	return result
}
