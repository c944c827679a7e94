package leaves

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cyraxred/labelshark/internal/classifier"
	"github.com/cyraxred/labelshark/internal/core"
	"github.com/cyraxred/labelshark/internal/model"
	"github.com/cyraxred/labelshark/internal/store"
	"github.com/cyraxred/labelshark/internal/test/fixtures"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type labelCase struct {
	commit string
	bugfix bool
	links  []string
}

func checkBugFix(t *testing.T, linker core.IssueLinker, m *store.Memory, cases []labelCase) {
	for _, c := range cases {
		labels, links, err := linker.LabelWithLinks(context.Background(), fixtures.Commit(m, c.commit))
		require.NoError(t, err, c.commit)
		assert.Equal(t, model.Labels{{Name: LabelBugFix, Value: c.bugfix}}, labels, c.commit)
		assert.Equal(t, c.links, links, c.commit)
		plain, err := linker.Label(context.Background(), fixtures.Commit(m, c.commit))
		require.NoError(t, err)
		assert.Equal(t, labels, plain)
	}
}

func TestAdjustedSZZMeta(t *testing.T) {
	szz := &AdjustedSZZ{}
	assert.Equal(t, "adjustedszz", szz.Name())
	assert.Len(t, szz.ListConfigurationOptions(), 0)
	assert.True(t, len(szz.Description()) > 0)
	var _ core.IssueLinker = szz
}

func TestAdjustedSZZConfigure(t *testing.T) {
	m := fixtures.Store()
	szz := &AdjustedSZZ{}
	assert.Error(t, szz.Configure(map[string]interface{}{}))
	facts := fixtures.Facts(m)
	require.NoError(t, szz.Configure(facts))
	assert.Len(t, szz.Trackers, 3)
	assert.Equal(t, model.FamilyJira, szz.Trackers[0].Family)
}

func TestAdjustedSZZLabel(t *testing.T) {
	m := fixtures.Store()
	szz := &AdjustedSZZ{}
	require.NoError(t, szz.Configure(fixtures.Facts(m)))
	checkBugFix(t, szz, m, []labelCase{
		{"c1", true, []string{"i-lang-1"}},
		// a feature request suppresses the fix keyword
		{"c2", false, []string{"i-lang-2"}},
		{"c3", true, nil},
		{"c4", false, nil},
		{"c5", true, []string{"i-gh-42"}},
		{"c10", true, []string{"i-bz-100"}},
		{"c11", false, []string{"i-bz-101"}},
		{"c13", false, []string{"i-lang-5"}},
	})
}

func TestAdjustedSZZNoTrackers(t *testing.T) {
	m := fixtures.Store()
	facts := fixtures.Facts(m)
	delete(facts, core.FactTrackers)
	szz := &AdjustedSZZ{}
	require.NoError(t, szz.Configure(facts))
	checkBugFix(t, szz, m, []labelCase{
		{"c1", true, nil},
		{"c2", true, nil},
		{"c4", false, nil},
	})
}

func TestSZZ(t *testing.T) {
	m := fixtures.Store()
	szz := &SZZ{}
	assert.Equal(t, "szz", szz.Name())
	assert.True(t, len(szz.Description()) > 0)
	assert.NoError(t, szz.Configure(fixtures.Facts(m)))
	checkBugFix(t, szz, m, []labelCase{
		{"c12", true, []string{"i-lang-1"}},
		{"c1", false, nil},
	})
}

func TestIssueOnly(t *testing.T) {
	m := fixtures.Store()
	only := &IssueOnly{}
	assert.Equal(t, "issueonly", only.Name())
	assert.True(t, len(only.Description()) > 0)
	assert.Error(t, only.Configure(map[string]interface{}{}))
	require.NoError(t, only.Configure(fixtures.Facts(m)))
	checkBugFix(t, only, m, []labelCase{
		{"c12", true, []string{"i-lang-1"}},
		{"c13", false, []string{"i-lang-2"}},
		// the message mentions LANG-1 but nothing is linked
		{"c1", false, nil},
	})
}

func TestIssueOnlyUnknownTracker(t *testing.T) {
	m := fixtures.Store()
	m.AddTracker(model.NewTracker("t-other", "p2", "https://bz.example.com/bugzilla/"))
	m.AddIssue(&model.Issue{ID: "i-other", TrackerID: "t-other", ExternalID: "7", IssueType: "Bug",
		Status: "RESOLVED", Resolution: "FIXED"})
	m.AddCommit(&model.Commit{ID: "x", Hash: "x", LinkedIssueIDs: []string{"i-other"}})
	only := &IssueOnly{}
	require.NoError(t, only.Configure(fixtures.Facts(m)))
	labels, _, err := only.LabelWithLinks(context.Background(), fixtures.Commit(m, "x"))
	require.NoError(t, err)
	assert.True(t, labels[0].Value)
}

func TestValidated(t *testing.T) {
	m := fixtures.Store()
	v := &Validated{}
	assert.Equal(t, "validated", v.Name())
	assert.True(t, len(v.Description()) > 0)
	require.NoError(t, v.Configure(fixtures.Facts(m)))
	checkBugFix(t, v, m, []labelCase{
		// LANG-6 is an improvement which was validated as a bug
		{"c12", true, []string{"i-lang-6"}},
		// the sub-task LANG-7 counts through its parent
		{"c13", true, []string{"i-lang-6", "i-lang-7"}},
		{"c14", false, []string{"i-lang-2"}},
		{"c1", false, nil},
	})
}

type brokenIssues struct {
	*store.Memory
}

func (brokenIssues) Issues(context.Context, store.IssueQuery) ([]*model.Issue, error) {
	return nil, errors.New("connection refused")
}

func TestIssueApproachesFail(t *testing.T) {
	m := fixtures.Store()
	facts := fixtures.Facts(m)
	facts[core.FactIssueStore] = store.IssueStore(brokenIssues{m})
	cases := []struct {
		linker core.IssueLinker
		commit string
	}{
		{&AdjustedSZZ{}, "c1"},
		{&IssueOnly{}, "c12"},
		{&Validated{}, "c12"},
	}
	for _, c := range cases {
		require.NoError(t, c.linker.Configure(facts))
		_, _, err := c.linker.LabelWithLinks(context.Background(), fixtures.Commit(m, c.commit))
		assert.Error(t, err, c.linker.Name())
		_, err = c.linker.Label(context.Background(), fixtures.Commit(m, c.commit))
		assert.Error(t, err, c.linker.Name())
	}
}

func issueDatasetFile(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "issues.csv")
	require.NoError(t, os.WriteFile(path, []byte(fixtures.IssuesDataset), 0o644))
	return path
}

func TestIssueClassifierMeta(t *testing.T) {
	ic := &IssueClassifier{}
	assert.Equal(t, "issueclassifier", ic.Name())
	assert.True(t, len(ic.Description()) > 0)
	opts := ic.ListConfigurationOptions()
	require.Len(t, opts, 3)
	assert.Equal(t, ConfigIssueClassifierDataset, opts[0].Name)
	assert.Equal(t, "issue-dataset", opts[0].Flag)
	assert.Equal(t, core.PathConfigurationOption, opts[0].Type)
	assert.Equal(t, DefaultIssueDataset, opts[0].Default)
	assert.Equal(t, float32(0.5), opts[1].Default)
	assert.Equal(t, "nb", opts[2].Default)
}

func TestIssueClassifierConfigure(t *testing.T) {
	m := fixtures.Store()
	facts := fixtures.Facts(m)
	facts[ConfigIssueClassifierDataset] = issueDatasetFile(t)
	facts[ConfigIssueClassifierThreshold] = float32(0.6)
	ic := &IssueClassifier{}
	require.NoError(t, ic.Configure(facts))
	assert.True(t, ic.Ready())
	assert.InDelta(t, 0.6, ic.Threshold, 1e-6)
	assert.Equal(t, classifier.NaiveBayes, ic.Model)
	// the description is stored under "desc" in the issue documents
	assert.Subset(t, ic.lookup.fields, []string{"title", "desc"})
	assert.True(t, ic.LooksLikeBug(&model.Issue{
		Title: "Crash with an exception", Description: "the parser throws an exception"}))
	assert.False(t, ic.LooksLikeBug(&model.Issue{
		Title: "Add a new option", Description: "please add support for a builder"}))

	facts[ConfigIssueClassifierModel] = "svm"
	require.NoError(t, ic.Configure(facts))
	assert.False(t, ic.Ready())
}

func TestIssueClassifierLabel(t *testing.T) {
	m := fixtures.Store()
	facts := fixtures.Facts(m)
	facts[ConfigIssueClassifierDataset] = issueDatasetFile(t)
	ic := &IssueClassifier{}
	require.NoError(t, ic.Configure(facts))
	checkBugFix(t, ic, m, []labelCase{
		{"c12", true, []string{"i-lang-1"}},
		{"c13", false, []string{"i-lang-2"}},
		{"c1", false, nil},
	})
}

func TestIssueClassifierInert(t *testing.T) {
	m := fixtures.Store()
	facts := fixtures.Facts(m)
	facts[ConfigIssueClassifierDataset] = filepath.Join(t.TempDir(), "missing.csv")
	ic := &IssueClassifier{}
	require.NoError(t, ic.Configure(facts))
	assert.False(t, ic.Ready())
	labels, links, err := ic.LabelWithLinks(context.Background(), fixtures.Commit(m, "c12"))
	assert.NoError(t, err)
	assert.Nil(t, labels)
	assert.Nil(t, links)
}
