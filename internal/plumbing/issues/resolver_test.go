package issues

import (
	"context"
	"testing"

	"github.com/cyraxred/labelshark/internal/model"
	"github.com/cyraxred/labelshark/internal/store"
	"github.com/cyraxred/labelshark/internal/test/fixtures"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadIssue(t *testing.T, m *store.Memory, id string) *model.Issue {
	found, err := m.Issues(context.Background(), store.IssueQuery{IDs: []string{id}})
	require.NoError(t, err)
	require.Len(t, found, 1)
	return found[0]
}

func TestResolveJira(t *testing.T) {
	m := fixtures.Store()
	r := NewResolver(m, fixtures.SilentLogger())
	ctx := context.Background()
	cases := []struct {
		issue  string
		bugfix bool
		known  bool
	}{
		{"i-lang-1", true, true},
		// resolved and fixed, but a feature
		{"i-lang-2", false, true},
		// reopened now, the history says closed and fixed
		{"i-lang-3", true, true},
		{"i-lang-4", false, true},
		{"i-lang-5", false, false},
		{"i-lang-6", false, true},
	}
	for _, c := range cases {
		res, err := r.Resolve(ctx, loadIssue(t, m, c.issue), model.FamilyJira)
		assert.NoError(t, err, c.issue)
		assert.Equal(t, c.bugfix, res.BugFix, c.issue)
		assert.Equal(t, c.known, res.TypeKnown, c.issue)
	}
}

func TestResolveJiraEmptyResolution(t *testing.T) {
	r := NewResolver(store.NewMemory(), fixtures.SilentLogger())
	res, err := r.Resolve(context.Background(), &model.Issue{
		ID: "x", ExternalID: "X-1", IssueType: "BUG", Status: "RESOLVED"}, model.FamilyJira)
	assert.NoError(t, err)
	assert.True(t, res.BugFix)
}

func TestResolveBugzilla(t *testing.T) {
	m := fixtures.Store()
	r := NewResolver(m, fixtures.SilentLogger())
	ctx := context.Background()
	res, err := r.Resolve(ctx, loadIssue(t, m, "i-bz-100"), model.FamilyBugzilla)
	assert.NoError(t, err)
	assert.True(t, res.BugFix)
	// Jira would accept INVALID as "not duplicated", Bugzilla requires FIXED
	issue := loadIssue(t, m, "i-bz-101")
	res, err = r.Resolve(ctx, issue, model.FamilyBugzilla)
	assert.NoError(t, err)
	assert.False(t, res.BugFix)
	res, err = r.Resolve(ctx, issue, model.FamilyJira)
	assert.NoError(t, err)
	assert.True(t, res.BugFix)

	m.AddEvent(model.Event{IssueID: "i-bz-101", Field: "resolution", NewValue: "FIXED"})
	res, err = r.Resolve(ctx, issue, model.FamilyBugzilla)
	assert.NoError(t, err)
	assert.True(t, res.BugFix)
}

func TestResolveGitHub(t *testing.T) {
	m := fixtures.Store()
	r := NewResolver(m, fixtures.SilentLogger())
	ctx := context.Background()
	res, err := r.Resolve(ctx, loadIssue(t, m, "i-gh-42"), model.FamilyGitHub)
	assert.NoError(t, err)
	assert.True(t, res.BugFix)
	res, err = r.Resolve(ctx, loadIssue(t, m, "i-gh-43"), model.FamilyGitHub)
	assert.NoError(t, err)
	assert.False(t, res.BugFix)
	assert.False(t, res.TypeKnown)
}

func TestResolveUnknownFamily(t *testing.T) {
	r := NewResolver(store.NewMemory(), fixtures.SilentLogger())
	res, err := r.Resolve(context.Background(), &model.Issue{IssueType: "Bug", Status: "closed"},
		model.FamilyUnknown)
	assert.NoError(t, err)
	assert.False(t, res.BugFix)
	assert.True(t, res.TypeKnown)
}

func TestResolveVerified(t *testing.T) {
	m := fixtures.Store()
	r := NewResolver(m, fixtures.SilentLogger())
	ctx := context.Background()
	res, err := r.ResolveVerified(ctx, loadIssue(t, m, "i-lang-6"), model.FamilyJira)
	assert.NoError(t, err)
	assert.True(t, res.BugFix)
	// no verified type: the regular rules apply
	res, err = r.ResolveVerified(ctx, loadIssue(t, m, "i-lang-1"), model.FamilyJira)
	assert.NoError(t, err)
	assert.True(t, res.BugFix)
	res, err = r.ResolveVerified(ctx, &model.Issue{IssueTypeVerified: "feature", IssueType: "Bug",
		Status: "closed", Resolution: "fixed"}, model.FamilyJira)
	assert.NoError(t, err)
	assert.False(t, res.BugFix)
}

func TestResolveIdempotent(t *testing.T) {
	m := fixtures.Store()
	r := NewResolver(m, fixtures.SilentLogger())
	ctx := context.Background()
	for _, id := range []string{"i-lang-1", "i-lang-2", "i-lang-3", "i-lang-4", "i-bz-100", "i-bz-101"} {
		issue := loadIssue(t, m, id)
		snapshot := *issue
		first, err := r.Resolve(ctx, issue, model.FamilyJira)
		assert.NoError(t, err)
		second, err := r.Resolve(ctx, issue, model.FamilyJira)
		assert.NoError(t, err)
		assert.Equal(t, first, second, id)
		assert.Equal(t, snapshot, *issue, id)
	}
}

type brokenEvents struct {
	*store.Memory
}

func (brokenEvents) Events(context.Context, string) ([]model.Event, error) {
	return nil, errors.New("connection refused")
}

func TestResolveStoreFailure(t *testing.T) {
	m := fixtures.Store()
	r := NewResolver(brokenEvents{m}, fixtures.SilentLogger())
	_, err := r.Resolve(context.Background(), loadIssue(t, m, "i-lang-1"), model.FamilyJira)
	assert.Error(t, err)
	// GitHub does not need the history
	_, err = r.Resolve(context.Background(), loadIssue(t, m, "i-gh-42"), model.FamilyGitHub)
	assert.NoError(t, err)
}
