package leaves

import (
	"context"
	"testing"

	"github.com/cyraxred/labelshark/internal/core"
	"github.com/cyraxred/labelshark/internal/test/fixtures"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	registry := NewRegistry()
	assert.Equal(t, []string{
		"adjustedszz", "szz", "issueonly", "validated", "issueclassifier",
		"refactoring", "documentation", "testchange", "ensemble",
	}, registry.Names())
	assert.Error(t, RegisterAll(registry))
	fresh := core.NewRegistry()
	require.NoError(t, RegisterAll(fresh))
	assert.Equal(t, registry.Names(), fresh.Names())

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	facts := registry.AddFlags(flags)
	require.NoError(t, flags.Parse([]string{"--ensemble-seed", "7", "--issue-threshold", "0.7"}))
	resolved := facts.Resolve()
	assert.Equal(t, 7, resolved[ConfigEnsembleSeed])
	assert.Equal(t, float32(0.7), resolved[ConfigIssueClassifierThreshold])
	assert.Equal(t, DefaultEnsembleDataset, resolved[ConfigEnsembleDataset])
}

func TestDispatchAll(t *testing.T) {
	m := fixtures.Store()
	facts := fixtures.Facts(m)
	facts[ConfigEnsembleDataset] = commitDatasetFile(t)
	facts[ConfigIssueClassifierDataset] = issueDatasetFile(t)
	dispatcher := core.NewDispatcher(NewRegistry().Approaches()...)
	require.NoError(t, dispatcher.Configure(facts))
	assert.Len(t, dispatcher.Active(), 9)
	iter, err := m.Commits(context.Background(), "")
	require.NoError(t, err)
	total, _ := m.CountCommits(context.Background(), "")
	summary, err := dispatcher.Run(context.Background(), iter, total, m)
	require.NoError(t, err)
	assert.Equal(t, 14, summary.Commits)
	assert.Empty(t, summary.Failures)
	assert.Equal(t, 1, summary.Positives["szz_bugfix"])
	assert.Equal(t, 2, summary.Positives["validated_bugfix"])

	c1 := fixtures.Commit(m, "c1")
	assert.True(t, c1.Labels["adjustedszz_bugfix"])
	assert.False(t, c1.Labels["szz_bugfix"])
	assert.True(t, c1.Labels["ensemble_bugfix"])
	c8 := fixtures.Commit(m, "c8")
	assert.True(t, c8.Labels["refactoring_codebased"])
	assert.True(t, c8.Labels["ensemble_refactoring"])
	c9 := fixtures.Commit(m, "c9")
	assert.True(t, c9.Labels["documentation_javadoc"])
	c7 := fixtures.Commit(m, "c7")
	assert.True(t, c7.Labels["testchange_javacode"])
}

func TestDispatchFatalEnsemble(t *testing.T) {
	m := fixtures.Store()
	facts := fixtures.Facts(m)
	facts[ConfigEnsembleDataset] = "/nonexistent/CCDataSet.csv"
	dispatcher := core.NewDispatcher(NewRegistry().Approaches()...)
	assert.Error(t, dispatcher.Configure(facts))
}
