package issues

import (
	"bytes"
	"context"
	"testing"

	"github.com/cyraxred/labelshark/internal/core"
	"github.com/cyraxred/labelshark/internal/model"
	"github.com/cyraxred/labelshark/internal/store"
	"github.com/cyraxred/labelshark/internal/test/fixtures"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkerFixture(t *testing.T) {
	m := fixtures.Store()
	trackers := fixtures.Trackers(m)
	require.Len(t, trackers, 3)
	linker := NewLinker(m, fixtures.SilentLogger())
	ctx := context.Background()
	cases := []struct {
		commit   string
		bugfix   bool
		fallback bool
		issues   []string
	}{
		{"c1", true, false, []string{"i-lang-1"}},
		// a feature request suppresses the keyword "fixes"
		{"c2", false, false, []string{"i-lang-2"}},
		// LANG-99 does not exist, the keywords decide
		{"c3", true, true, nil},
		{"c4", false, true, nil},
		{"c5", true, false, []string{"i-gh-42"}},
		{"c6", true, false, []string{"i-lang-3"}},
		{"c10", true, false, []string{"i-bz-100"}},
		{"c11", false, false, []string{"i-bz-101"}},
		// an issue without a type is not a bug, no fallback
		{"c13", false, false, []string{"i-lang-5"}},
	}
	for _, c := range cases {
		result, err := linker.Link(ctx, fixtures.Commit(m, c.commit), trackers)
		require.NoError(t, err, c.commit)
		assert.Equal(t, c.bugfix, result.BugFix, c.commit)
		assert.Equal(t, c.fallback, result.Fallback, c.commit)
		assert.Equal(t, c.issues, result.IssueIDs, c.commit)
		assert.Len(t, result.PerTracker, 3, c.commit)
	}
}

func TestLinkerDecisiveTracker(t *testing.T) {
	m := fixtures.Store()
	trackers := fixtures.Trackers(m)
	linker := NewLinker(m, fixtures.SilentLogger())
	ctx := context.Background()
	commit := &model.Commit{Hash: "x", Message: "LANG-2 and bug 100"}
	result, err := linker.Link(ctx, commit, trackers)
	require.NoError(t, err)
	assert.True(t, result.BugFix)
	assert.Equal(t, "t-bz", result.Decisive.ID)
	assert.True(t, result.PerTracker[0].Found())
	assert.Equal(t, 0, result.PerTracker[0].Score)
	assert.Equal(t, 1, result.PerTracker[1].Score)
	assert.Equal(t, []string{"100"}, result.PerTracker[2].Mentioned)
	assert.False(t, result.PerTracker[2].Found())
	assert.Equal(t, []string{"i-bz-100", "i-lang-2"}, result.IssueIDs)

	// the order of the trackers decides which one is reported
	reversed := []*model.Tracker{trackers[2], trackers[1], trackers[0]}
	result, err = linker.Link(ctx, &model.Commit{Message: "LANG-1 and bug 100"}, reversed)
	require.NoError(t, err)
	assert.Equal(t, "t-bz", result.Decisive.ID)
	result, err = linker.Link(ctx, &model.Commit{Message: "LANG-1 and bug 100"}, trackers)
	require.NoError(t, err)
	assert.Equal(t, "t-jira", result.Decisive.ID)

	// a found issue which is not a bug suppresses the keywords
	result, err = linker.Link(ctx, &model.Commit{Message: "LANG-2: fix the typo"}, trackers)
	require.NoError(t, err)
	assert.False(t, result.BugFix)
	assert.False(t, result.Fallback)
	assert.Nil(t, result.Decisive)
	// identifiers which fail to resolve do not
	result, err = linker.Link(ctx, &model.Commit{Message: "LANG-99: fix the crash"}, trackers)
	require.NoError(t, err)
	assert.True(t, result.BugFix)
	assert.True(t, result.Fallback)
	assert.Equal(t, []string{"LANG-99"}, result.PerTracker[0].Mentioned)
	assert.False(t, result.PerTracker[0].Found())
}

func TestLinkerNoTrackers(t *testing.T) {
	linker := NewLinker(store.NewMemory(), fixtures.SilentLogger())
	result, err := linker.Link(context.Background(), &model.Commit{Message: "Fix the bug"}, nil)
	require.NoError(t, err)
	assert.True(t, result.BugFix)
	assert.True(t, result.Fallback)
	assert.Equal(t, 2, result.KeywordScore)
}

func TestLinkerLookupMissIsLogged(t *testing.T) {
	m := fixtures.Store()
	l := core.NewLogger()
	var buffer bytes.Buffer
	l.W.SetOutput(&buffer)
	linker := NewLinker(m, l)
	_, err := linker.Link(context.Background(), fixtures.Commit(m, "c3"), fixtures.Trackers(m))
	require.NoError(t, err)
	assert.Contains(t, buffer.String(), "issue LANG-99 mentioned by 3333333333333333333333333333333333333333 was not found")
}

type brokenIssues struct {
	*store.Memory
}

func (brokenIssues) Issues(context.Context, store.IssueQuery) ([]*model.Issue, error) {
	return nil, errors.New("connection refused")
}

func TestLinkerStoreFailure(t *testing.T) {
	m := fixtures.Store()
	linker := NewLinker(brokenIssues{m}, fixtures.SilentLogger())
	_, err := linker.Link(context.Background(), fixtures.Commit(m, "c1"), fixtures.Trackers(m))
	assert.Error(t, err)
	// nothing to look up
	result, err := linker.Link(context.Background(), fixtures.Commit(m, "c4"), fixtures.Trackers(m))
	assert.NoError(t, err)
	assert.False(t, result.BugFix)
}
