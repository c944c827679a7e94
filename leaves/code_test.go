package leaves

import (
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

func labelFixture(t *testing.T, approach core.Approach, m *store.Memory, commit string) map[string]bool {
	labels, err := approach.Label(context.Background(), fixtures.Commit(m, commit))
	require.NoError(t, err, commit)
	return labels.Map()
}

func TestRefactoring(t *testing.T) {
	m := fixtures.Store()
	ref := &Refactoring{}
	assert.Equal(t, "refactoring", ref.Name())
	assert.True(t, len(ref.Description()) > 0)
	assert.Len(t, ref.ListConfigurationOptions(), 0)
	assert.Error(t, ref.Configure(map[string]interface{}{}))
	require.NoError(t, ref.Configure(fixtures.Facts(m)))
	labels, err := ref.Label(context.Background(), fixtures.Commit(m, "c8"))
	require.NoError(t, err)
	assert.Equal(t, []string{LabelCodeBased, LabelKeyword}, labels.Names())
	assert.Equal(t, map[string]bool{LabelKeyword: true, LabelCodeBased: true}, labels.Map())
	assert.Equal(t, map[string]bool{LabelKeyword: false, LabelCodeBased: false}, labelFixture(t, ref, m, "c7"))
	assert.Equal(t, map[string]bool{LabelKeyword: false, LabelCodeBased: false}, labelFixture(t, ref, m, "c4"))
}

func TestDocumentation(t *testing.T) {
	m := fixtures.Store()
	doc := &Documentation{}
	assert.Equal(t, "documentation", doc.Name())
	assert.True(t, len(doc.Description()) > 0)
	assert.Len(t, doc.ListConfigurationOptions(), 0)
	require.NoError(t, doc.Configure(fixtures.Facts(m)))
	assert.Equal(t, map[string]bool{
		LabelJavadoc: true, LabelJavaInline: true, LabelTechnicalDebtAdd: true, LabelTechnicalDebtRemove: false,
	}, labelFixture(t, doc, m, "c9"))
	assert.Equal(t, map[string]bool{
		LabelJavadoc: false, LabelJavaInline: true, LabelTechnicalDebtAdd: false, LabelTechnicalDebtRemove: true,
	}, labelFixture(t, doc, m, "c14"))
	none := map[string]bool{
		LabelJavadoc: false, LabelJavaInline: false, LabelTechnicalDebtAdd: false, LabelTechnicalDebtRemove: false,
	}
	assert.Equal(t, none, labelFixture(t, doc, m, "c1"))
	assert.Equal(t, none, labelFixture(t, doc, m, "c4"))
	assert.Equal(t, none, labelFixture(t, doc, m, "c2"))
}

func TestDocumentationFirstParentOnly(t *testing.T) {
	m := store.NewMemory()
	m.AddCommit(&model.Commit{ID: "x", Hash: "x", Parents: []string{"p1", "p2"}})
	m.AddFileAction(model.FileAction{ID: "fa1", CommitID: "x", FileID: "f", Path: "A.java", ParentRevisionHash: "p1"})
	m.AddFileAction(model.FileAction{ID: "fa2", CommitID: "x", FileID: "f", Path: "A.java", ParentRevisionHash: "p2"})
	m.AddHunk(model.Hunk{ID: "h1", FileActionID: "fa1", Content: "+    int x = 1;"})
	m.AddHunk(model.Hunk{ID: "h2", FileActionID: "fa2", Content: "+    // TODO later"})
	doc := &Documentation{}
	require.NoError(t, doc.Configure(map[string]interface{}{core.FactChangeStore: store.ChangeStore(m)}))
	labels := labelFixture(t, doc, m, "x")
	assert.False(t, labels[LabelTechnicalDebtAdd])
	assert.False(t, labels[LabelJavaInline])
}

func TestTestChange(t *testing.T) {
	m := fixtures.Store()
	tc := &TestChange{}
	assert.Equal(t, "testchange", tc.Name())
	assert.True(t, len(tc.Description()) > 0)
	assert.Len(t, tc.ListConfigurationOptions(), 0)
	require.NoError(t, tc.Configure(fixtures.Facts(m)))
	assert.Equal(t, map[string]bool{LabelJavaCode: true}, labelFixture(t, tc, m, "c7"))
	assert.Equal(t, map[string]bool{LabelJavaCode: false}, labelFixture(t, tc, m, "c9"))
	assert.Equal(t, map[string]bool{LabelJavaCode: false}, labelFixture(t, tc, m, "c4"))
}

func TestTestChangeByImports(t *testing.T) {
	m := store.NewMemory()
	m.AddCommit(&model.Commit{ID: "x", Hash: "x"})
	m.AddFileAction(model.FileAction{ID: "fa", CommitID: "x", FileID: "f", Path: "src/main/java/Checks.java"})
	m.AddCodeEntityState(model.CodeEntityState{CommitID: "x", FileID: "f", LongName: "src/main/java/Checks.java",
		Type: "file", Imports: []string{"java.util.List", "org.mockito.Mockito"}})
	m.AddHunk(model.Hunk{ID: "h", FileActionID: "fa", Content: "+    /* setup */\n+\n     verify(x);"})
	tc := &TestChange{}
	require.NoError(t, tc.Configure(map[string]interface{}{core.FactChangeStore: store.ChangeStore(m)}))
	assert.False(t, labelFixture(t, tc, m, "x")[LabelJavaCode])
	m.AddHunk(model.Hunk{ID: "h2", FileActionID: "fa", Content: "-    verify(y);"})
	assert.True(t, labelFixture(t, tc, m, "x")[LabelJavaCode])
}

type brokenChanges struct {
	*store.Memory
}

func (brokenChanges) FileActions(context.Context, string, string) ([]model.FileAction, error) {
	return nil, errors.New("connection refused")
}

func (brokenChanges) RefactoringCount(context.Context, string) (int, error) {
	return 0, errors.New("connection refused")
}

func TestCodeApproachesFail(t *testing.T) {
	m := fixtures.Store()
	facts := fixtures.Facts(m)
	facts[core.FactChangeStore] = store.ChangeStore(brokenChanges{m})
	for _, approach := range []core.Approach{&Refactoring{}, &Documentation{}, &TestChange{}} {
		require.NoError(t, approach.Configure(facts))
		_, err := approach.Label(context.Background(), fixtures.Commit(m, "c8"))
		assert.Error(t, err, approach.Name())
	}
}
