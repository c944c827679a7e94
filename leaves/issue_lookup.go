package leaves

import (
	"context"
	"sort"
	"sync"

	"github.com/cyraxred/labelshark/internal/model"
	"github.com/cyraxred/labelshark/internal/plumbing/issues"
	"github.com/cyraxred/labelshark/internal/store"
	"github.com/pkg/errors"
)

// issueLookup loads the issues referenced by the precomputed commit links together with
// the families of their trackers.
type issueLookup struct {
	issues store.IssueStore
	fields []string

	mu       sync.Mutex
	families map[string]model.TrackerFamily
}

func newIssueLookup(issueStore store.IssueStore, trackers []*model.Tracker, fields ...string) *issueLookup {
	lookup := &issueLookup{
		issues:   issueStore,
		fields:   append(append([]string{}, issues.ResolutionFields...), fields...),
		families: map[string]model.TrackerFamily{},
	}
	for _, tracker := range trackers {
		lookup.families[tracker.ID] = tracker.Family
	}
	return lookup
}

// Family returns the family of the tracker which owns the issue. Trackers outside of the
// configured list are fetched once and cached.
func (lookup *issueLookup) Family(ctx context.Context, issue *model.Issue) (model.TrackerFamily, error) {
	lookup.mu.Lock()
	family, exists := lookup.families[issue.TrackerID]
	lookup.mu.Unlock()
	if exists {
		return family, nil
	}
	tracker, err := lookup.issues.Tracker(ctx, issue.TrackerID)
	if errors.Cause(err) == store.ErrNotFound {
		family = model.FamilyUnknown
	} else if err != nil {
		return model.FamilyUnknown, errors.Wrapf(err, "looking up the tracker of %s", issue.ID)
	} else {
		family = tracker.Family
	}
	lookup.mu.Lock()
	lookup.families[issue.TrackerID] = family
	lookup.mu.Unlock()
	return family, nil
}

// Issues loads the issues by their identities. Missing issues are skipped.
func (lookup *issueLookup) Issues(ctx context.Context, ids []string) ([]*model.Issue, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	found, err := lookup.issues.Issues(ctx, store.IssueQuery{IDs: ids, Fields: lookup.fields})
	return found, errors.Wrapf(err, "loading the issues %v", ids)
}

// Parent loads the parent issue or returns nil.
func (lookup *issueLookup) Parent(ctx context.Context, issue *model.Issue) (*model.Issue, error) {
	if issue.ParentIssueID == "" {
		return nil, nil
	}
	parents, err := lookup.Issues(ctx, []string{issue.ParentIssueID})
	if err != nil || len(parents) == 0 {
		return nil, err
	}
	return parents[0], nil
}

func issueIDs(found []*model.Issue) []string {
	if len(found) == 0 {
		return nil
	}
	ids := make([]string, len(found))
	for i, issue := range found {
		ids[i] = issue.ID
	}
	return ids
}

func dedupIDs(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := map[string]bool{}
	result := ids[:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			result = append(result, id)
		}
	}
	sort.Strings(result)
	return result
}
