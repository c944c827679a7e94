package direct

import (
	"bytes"
	"context"
	"testing"

	"github.com/cyraxred/labelshark/internal/classifier"
	"github.com/cyraxred/labelshark/internal/core"
	"github.com/cyraxred/labelshark/internal/model"
	"github.com/cyraxred/labelshark/internal/store"
	"github.com/cyraxred/labelshark/internal/test/fixtures"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func votes(message, paths, types string) map[classifier.Category]int {
	return KeywordVotes(classifier.Record{Message: message, Paths: paths, IssueType: types})
}

func TestKeywordVotesBugFix(t *testing.T) {
	assert.Equal(t, 1, votes("Fix NPE in join", "", "")[classifier.BugFix])
	// the stem matches where the raw word does not
	assert.Equal(t, 1, votes("Fixed NPE in join", "", "")[classifier.BugFix])
	assert.Equal(t, 0, votes("update build config", "", "")[classifier.BugFix])
	assert.Equal(t, 1, votes("update build config", "", "Bug")[classifier.BugFix])
	assert.Equal(t, 0, votes("fix the feature request", "", "New Feature")[classifier.BugFix])
	assert.Equal(t, 1, votes("whatever", "", "Improvement||bug")[classifier.BugFix])
}

func TestKeywordVotesRefactoring(t *testing.T) {
	assert.Equal(t, 1, votes("Refactoring the parser", "", "")[classifier.Refactoring])
	assert.Equal(t, 1, votes("rename method parse", "", "")[classifier.Refactoring])
	assert.Equal(t, 1, votes("move helpers to the utility class", "", "")[classifier.Refactoring])
	assert.Equal(t, 0, votes("move the icons", "", "")[classifier.Refactoring])
	assert.Equal(t, 0, votes("moved to version 3.9", "", "")[classifier.Refactoring])
	assert.Equal(t, 0, votes("Add tests for StringUtils", "", "")[classifier.Refactoring])
	assert.True(t, RefactoringKeywords("Minor cleanup, then Extract Method parseHeader"))
	assert.False(t, RefactoringKeywords("Move to version 2"))
}

func TestKeywordVotesPaths(t *testing.T) {
	assert.Equal(t, 1, votes("Add tests for StringUtils", "", "")[classifier.Test])
	assert.Equal(t, 1, votes("more checks", "src/test/java/FooTest.java", "")[classifier.Test])
	assert.Equal(t, 0, votes("more checks", "src/main/java/Foo.java", "")[classifier.Test])
	assert.Equal(t, 1, votes("update the javadoc", "", "")[classifier.Documentation])
	assert.Equal(t, 1, votes("typo", "README.md", "")[classifier.Documentation])
	assert.Equal(t, 0, votes("typo", "src/main/java/Foo.java", "")[classifier.Documentation])
	assert.Equal(t, 1, votes("bump", "pom.xml", "")[classifier.Maintenance])
	assert.Equal(t, 1, votes("remove unused imports", "", "")[classifier.Maintenance])
	assert.Equal(t, 1, votes("upgrade the junit version", "", "")[classifier.Maintenance])
	assert.Equal(t, 0, votes("Fix NPE", "src/main/java/Foo.java", "")[classifier.Maintenance])
}

func TestKeywordVotesFeature(t *testing.T) {
	assert.Equal(t, 1, votes("add support for records", "", "")[classifier.Feature])
	assert.Equal(t, 1, votes("added a method to reverse words", "", "")[classifier.Feature])
	assert.Equal(t, 1, votes("reverse words", "", "New Feature")[classifier.Feature])
	assert.Equal(t, 0, votes("Fix NPE in join", "", "Bug")[classifier.Feature])
	assert.Len(t, votes("", "", ""), len(classifier.Categories))
}

func TestClassifyTestFile(t *testing.T) {
	assert.Equal(t, compiledTest, classifyTestFile("src/Foo.java", []string{"org.junit.Test"}))
	assert.Equal(t, pythonTest, classifyTestFile("lib/foo.py", []string{"os", "unittest"}))
	assert.Equal(t, notTest, classifyTestFile("src/test/FooTest.java", []string{"java.util.List"}))
	assert.Equal(t, compiledTest, classifyTestFile("src/test/java/FooTest.java", nil))
	assert.Equal(t, pythonTest, classifyTestFile("tests/test_parser.py", nil))
	assert.Equal(t, otherTest, classifyTestFile("tests/parser_test.rb", nil))
	assert.Equal(t, notTest, classifyTestFile("src/main/FooTest.java", nil))
	assert.Equal(t, notTest, classifyTestFile("src/test/java/Helper.java", nil))
	// the root directory is matched by the file name itself
	assert.Equal(t, compiledTest, classifyTestFile("FooTest.java", nil))
	assert.Equal(t, pythonTest, classifyTestFile("test_setup.py", nil))
	assert.Equal(t, notTest, classifyTestFile("Foo.java", nil))
	assert.True(t, IsTestImport("static org.mockito.Mockito.when"))
	assert.False(t, IsTestImport("java.util.List"))
}

func TestEvidenceFixture(t *testing.T) {
	m := fixtures.Store()
	e := NewEvidence(m, fixtures.SilentLogger())
	ctx := context.Background()
	cases := []struct {
		commit                           string
		refactoring, test, documentation bool
	}{
		{"c1", false, false, false},
		{"c4", false, false, false},
		{"c7", false, true, false},
		// the Parser entity is new, its DLOC counts in full
		{"c8", true, false, true},
		{"c9", false, false, true},
		{"c14", false, false, false},
	}
	for _, c := range cases {
		commit := fixtures.Commit(m, c.commit)
		collected := e.Collect(ctx, commit)
		assert.Equal(t, c.refactoring, collected[classifier.Refactoring], c.commit)
		assert.Equal(t, c.test, collected[classifier.Test], c.commit)
		assert.Equal(t, c.documentation, collected[classifier.Documentation], c.commit)
	}
}

func TestEvidenceCommentOnlyTest(t *testing.T) {
	m := store.NewMemory()
	m.AddCommit(&model.Commit{ID: "x", Hash: "x"})
	m.AddFileAction(model.FileAction{ID: "fa", CommitID: "x", FileID: "f", Path: "src/test/java/FooTest.java"})
	m.AddHunk(model.Hunk{ID: "h", FileActionID: "fa", Content: "+    // explain\n+\n     assertTrue(x);"})
	e := NewEvidence(m, fixtures.SilentLogger())
	commit, _ := m.Commit("x")
	assert.False(t, e.Test(context.Background(), commit))
	m.AddHunk(model.Hunk{ID: "h2", FileActionID: "fa", Content: "+    assertFalse(y);"})
	assert.True(t, e.Test(context.Background(), commit))
}

func TestEvidenceRemovedEntity(t *testing.T) {
	m := store.NewMemory()
	m.AddCommit(&model.Commit{ID: "p", Hash: "p"})
	m.AddCommit(&model.Commit{ID: "x", Hash: "x", Parents: []string{"p", "unknown"}})
	m.AddFileAction(model.FileAction{ID: "fa", CommitID: "x", FileID: "f", Path: "A.java"})
	m.AddCodeEntityState(model.CodeEntityState{CommitID: "p", FileID: "f", LongName: "A.old",
		Type: "method", Metrics: map[string]float64{"DLOC": 3}})
	m.AddCodeEntityState(model.CodeEntityState{CommitID: "x", FileID: "f", LongName: "A",
		Type: "class", Metrics: map[string]float64{"DLOC": 0}})
	m.AddCodeEntityState(model.CodeEntityState{CommitID: "p", FileID: "f", LongName: "A",
		Type: "class", Metrics: map[string]float64{"DLOC": 0}})
	e := NewEvidence(m, fixtures.SilentLogger())
	commit, _ := m.Commit("x")
	assert.True(t, e.Documentation(context.Background(), commit))
}

type brokenChanges struct {
	*store.Memory
}

func (brokenChanges) RefactoringCount(context.Context, string) (int, error) {
	return 0, errors.New("connection refused")
}

func (brokenChanges) FileActions(context.Context, string, string) ([]model.FileAction, error) {
	return nil, errors.New("connection refused")
}

func TestEvidenceErrorsAreLogged(t *testing.T) {
	m := fixtures.Store()
	l := core.NewLogger()
	var buffer bytes.Buffer
	l.E.SetOutput(&buffer)
	e := NewEvidence(brokenChanges{m}, l)
	collected := e.Collect(context.Background(), fixtures.Commit(m, "c8"))
	assert.False(t, collected[classifier.Refactoring])
	assert.False(t, collected[classifier.Test])
	assert.False(t, collected[classifier.Documentation])
	assert.Contains(t, buffer.String(), "refactoring evidence of 8888888888888888888888888888888888888888")
	assert.Contains(t, buffer.String(), "connection refused")
}
