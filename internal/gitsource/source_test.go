package gitsource

import (
	"context"
	"strings"
	"testing"

	"github.com/cyraxred/labelshark/internal/core"
	"github.com/cyraxred/labelshark/internal/store"
	"github.com/cyraxred/labelshark/internal/test"
	"github.com/cyraxred/labelshark/leaves"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fooJava = `package foo;

public class Foo {
    public int one() {
        return 1;
    }
}
`

const fooTestJava = `package foo;

import org.junit.Test;

public class FooTest {
    @Test
    public void testOne() {
    }
}
`

const mainGo = `package main

import "fmt"

func main() {
	fmt.Println("hi")
}
`

type history struct {
	root, second, third, merge plumbing.Hash
}

func buildHistory(t *testing.T) (*test.RepositoryBuilder, history) {
	builder, err := test.NewRepository()
	require.NoError(t, err)
	var h history
	h.root, err = builder.Commit("Initial import", map[string]string{
		"src/main/java/Foo.java": fooJava,
		"cmd/main.go":            mainGo,
	})
	require.NoError(t, err)
	h.second, err = builder.Commit("Add tests", map[string]string{
		"src/test/java/FooTest.java": fooTestJava,
	})
	require.NoError(t, err)
	h.third, err = builder.Commit("Document Foo", map[string]string{
		"src/main/java/Foo.java": strings.Replace(fooJava, "public class Foo {",
			"/**\n * Foo returns numbers.\n */\npublic class Foo {", 1),
		"vendor/lib/lib.go": "package lib\n",
	})
	require.NoError(t, err)
	h.merge, err = builder.Merge("Merge the old root", h.root, map[string]string{
		"README.md": "# Foo\n",
	})
	require.NoError(t, err)
	return builder, h
}

func TestSourceCommits(t *testing.T) {
	builder, h := buildHistory(t)
	src, err := NewSource(builder.Repository, "vcs", false)
	require.NoError(t, err)
	assert.Equal(t, 4, src.Len())
	ctx := context.Background()
	count, err := src.CountCommits(ctx, "vcs")
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	count, err = src.CountCommits(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	vcs, err := src.VCSSystem(ctx, "https://github.com/acme/foo")
	require.NoError(t, err)
	assert.Equal(t, "vcs", vcs.ID)

	iter, err := src.Commits(ctx, "")
	require.NoError(t, err)
	var hashes []string
	for {
		commit, err := iter.Next(ctx)
		if err != nil {
			break
		}
		hashes = append(hashes, commit.Hash)
		assert.Equal(t, "vcs", commit.VCSSystemID)
	}
	assert.Equal(t, []string{h.root.String(), h.second.String(), h.third.String(), h.merge.String()}, hashes)

	merge, err := src.Commit(h.merge.String())
	require.NoError(t, err)
	assert.Equal(t, []string{h.third.String(), h.root.String()}, merge.Parents)
	assert.Equal(t, "Merge the old root", strings.TrimSpace(merge.Message))
	root, err := src.Commit(h.root.String())
	require.NoError(t, err)
	assert.Len(t, root.Parents, 0)
	_, err = src.Commit("deadbeef")
	assert.Equal(t, store.ErrNotFound, errors.Cause(err))
}

func TestSourceFirstParent(t *testing.T) {
	builder, _ := buildHistory(t)
	src, err := NewSource(builder.Repository, "vcs", true)
	require.NoError(t, err)
	assert.Equal(t, 4, src.Len())
}

func TestSourceFileActions(t *testing.T) {
	builder, h := buildHistory(t)
	src, err := NewSource(builder.Repository, "vcs", false)
	require.NoError(t, err)
	ctx := context.Background()

	actions, err := src.FileActions(ctx, h.root.String(), "")
	require.NoError(t, err)
	var paths []string
	for _, action := range actions {
		paths = append(paths, action.Path)
		assert.Equal(t, "", action.ParentRevisionHash)
	}
	assert.ElementsMatch(t, []string{"cmd/main.go", "src/main/java/Foo.java"}, paths)

	// the vendored file is skipped
	actions, err = src.FileActions(ctx, h.third.String(), "")
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, "src/main/java/Foo.java", actions[0].Path)
	assert.Equal(t, h.second.String(), actions[0].ParentRevisionHash)

	actions, err = src.FileActions(ctx, h.merge.String(), "")
	require.NoError(t, err)
	first, err := src.FileActions(ctx, h.merge.String(), h.third.String())
	require.NoError(t, err)
	second, err := src.FileActions(ctx, h.merge.String(), h.root.String())
	require.NoError(t, err)
	assert.Len(t, first, 1)
	assert.Equal(t, "README.md", first[0].Path)
	assert.True(t, len(second) > 1)
	assert.Len(t, actions, len(first)+len(second))

	_, err = src.FileActions(ctx, "deadbeef", "")
	assert.Equal(t, store.ErrNotFound, errors.Cause(err))
}

func TestSourceHunks(t *testing.T) {
	builder, h := buildHistory(t)
	src, err := NewSource(builder.Repository, "vcs", false)
	require.NoError(t, err)
	ctx := context.Background()
	actions, err := src.FileActions(ctx, h.third.String(), "")
	require.NoError(t, err)
	require.Len(t, actions, 1)
	changed, err := src.Hunks(ctx, actions[0].ID, "unknown")
	require.NoError(t, err)
	require.Len(t, changed, 1)
	assert.Equal(t, actions[0].ID, changed[0].FileActionID)
	assert.Equal(t, actions[0].ID+"#0", changed[0].ID)
	assert.Contains(t, changed[0].Content, "+/**\n+ * Foo returns numbers.\n+ */")
	assert.Contains(t, changed[0].Content, " package foo;")

	src.MaxFileSize = 10
	actions, err = src.FileActions(ctx, h.second.String(), "")
	require.NoError(t, err)
	changed, err = src.Hunks(ctx, actions[0].ID)
	require.NoError(t, err)
	assert.Len(t, changed, 0)
}

func TestBuildHunks(t *testing.T) {
	before := "a\nb\nc\nd\ne\nf\ng\nh\ni\nj\nk\nl\n"
	after := "a\nB\nc\nd\ne\nf\ng\nh\ni\nj\nK\nl\n"
	result := BuildHunks(before, after, 1)
	require.Len(t, result, 2)
	assert.Equal(t, " a\n-b\n+B\n c", result[0])
	assert.Equal(t, " j\n-k\n+K\n l", result[1])
	result = BuildHunks(before, after, 5)
	require.Len(t, result, 1)
	assert.True(t, strings.HasPrefix(result[0], " a\n-b\n+B\n"))
	assert.Len(t, BuildHunks(before, before, 3), 0)
	assert.Equal(t, []string{"+x"}, BuildHunks("", "x\n", 3))
}

func TestSourceCodeEntityStates(t *testing.T) {
	builder, h := buildHistory(t)
	src, err := NewSource(builder.Repository, "vcs", false)
	require.NoError(t, err)
	ctx := context.Background()
	states, err := src.CodeEntityStates(ctx, h.root.String())
	require.NoError(t, err)
	require.Len(t, states, 2)
	for _, state := range states {
		assert.Equal(t, "file", state.Type)
		assert.Equal(t, h.root.String(), state.CommitID)
		if state.FileID == "cmd/main.go" {
			assert.Equal(t, []string{"fmt"}, state.Imports)
		}
	}
	states, err = src.CodeEntityStates(ctx, h.root.String(), "class", "method")
	require.NoError(t, err)
	assert.Len(t, states, 0)
	count, err := src.RefactoringCount(ctx, h.root.String())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestSourceResolveAndLabels(t *testing.T) {
	builder, h := buildHistory(t)
	src, err := NewSource(builder.Repository, "vcs", false)
	require.NoError(t, err)
	ctx := context.Background()
	resolved, err := src.ResolveRevision(ctx, h.second.String())
	require.NoError(t, err)
	assert.Equal(t, h.second.String(), resolved)
	_, err = src.ResolveRevision(ctx, "deadbeef")
	assert.Equal(t, store.ErrNotFound, errors.Cause(err))

	require.NoError(t, src.UpsertLabels(ctx, h.root.String(), map[string]bool{"szz_bugfix": true}))
	require.NoError(t, src.UpsertLabels(ctx, h.root.String(), map[string]bool{"szz_bugfix": false, "x": true}))
	root, _ := src.Commit(h.root.String())
	assert.Equal(t, map[string]bool{"szz_bugfix": false, "x": true}, root.Labels)
	assert.Equal(t, store.ErrNotFound, errors.Cause(src.UpsertLabels(ctx, "deadbeef", nil)))
}

func TestSourceServesApproaches(t *testing.T) {
	builder, h := buildHistory(t)
	src, err := NewSource(builder.Repository, "vcs", false)
	require.NoError(t, err)
	ctx := context.Background()
	facts := map[string]interface{}{core.FactChangeStore: store.ChangeStore(src)}

	tc := &leaves.TestChange{}
	require.NoError(t, tc.Configure(facts))
	second, _ := src.Commit(h.second.String())
	labels, err := tc.Label(ctx, second)
	require.NoError(t, err)
	assert.True(t, labels.Map()[leaves.LabelJavaCode])

	doc := &leaves.Documentation{}
	require.NoError(t, doc.Configure(facts))
	third, _ := src.Commit(h.third.String())
	labels, err = doc.Label(ctx, third)
	require.NoError(t, err)
	assert.True(t, labels.Map()[leaves.LabelJavadoc])
	assert.False(t, labels.Map()[leaves.LabelJavaInline])
	root, _ := src.Commit(h.root.String())
	labels, err = doc.Label(ctx, root)
	require.NoError(t, err)
	assert.False(t, labels.Map()[leaves.LabelJavadoc])
}
