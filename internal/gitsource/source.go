package gitsource

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/cyraxred/labelshark/internal/model"
	"github.com/cyraxred/labelshark/internal/plumbing/hunks"
	"github.com/cyraxred/labelshark/internal/store"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"
	"github.com/pkg/errors"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/src-d/imports"
	_ "github.com/src-d/imports/languages/all" // register the supported languages
)

const (
	// DefaultMaxFileSize is the default value for Source.MaxFileSize.
	DefaultMaxFileSize = 1 << 20
	// DefaultContextLines is the default value for Source.ContextLines.
	DefaultContextLines = 3
)

// Source serves the commits of a repository oldest first together with their changes.
// The file actions, hunks and file imports are computed on demand and cached.
// It implements store.ChangeStore and store.LabelStore; the labels are kept in memory.
type Source struct {
	// MaxFileSize is the blob size threshold. Bigger files get no hunks and no imports.
	MaxFileSize int64
	// ContextLines is the number of unchanged lines around the changes in a hunk.
	ContextLines int

	repository *git.Repository
	vcs        *model.VCSSystem
	commits    []*model.Commit
	objects    map[string]*object.Commit

	mu      sync.Mutex
	changes map[string][]*fileChange
	actions map[string]*fileChange
}

type fileChange struct {
	action model.FileAction
	change *object.Change
	hunks  []model.Hunk
	diffed bool
}

// NewSource walks the history of HEAD. With firstParent only the first parents are followed.
func NewSource(repository *git.Repository, vcsID string, firstParent bool) (*Source, error) {
	head, err := repository.Head()
	if err != nil {
		return nil, errors.Wrap(err, "resolving HEAD")
	}
	var history []*object.Commit
	if firstParent {
		commit, err := repository.CommitObject(head.Hash())
		for err == nil {
			history = append(history, commit)
			if commit.NumParents() == 0 {
				break
			}
			commit, err = commit.Parent(0)
		}
		if err != nil {
			return nil, errors.Wrap(err, "walking the first parents")
		}
	} else {
		iter, err := repository.Log(&git.LogOptions{From: head.Hash(), Order: git.LogOrderCommitterTime})
		if err != nil {
			return nil, errors.Wrap(err, "walking the history")
		}
		err = iter.ForEach(func(commit *object.Commit) error {
			history = append(history, commit)
			return nil
		})
		if err != nil {
			return nil, errors.Wrap(err, "walking the history")
		}
	}
	source := &Source{
		MaxFileSize:  DefaultMaxFileSize,
		ContextLines: DefaultContextLines,
		repository:   repository,
		vcs:          &model.VCSSystem{ID: vcsID},
		objects:      map[string]*object.Commit{},
		changes:      map[string][]*fileChange{},
		actions:      map[string]*fileChange{},
	}
	for i := len(history) - 1; i >= 0; i-- {
		commit := history[i]
		hash := commit.Hash.String()
		parents := make([]string, len(commit.ParentHashes))
		for j, parent := range commit.ParentHashes {
			parents[j] = parent.String()
		}
		source.objects[hash] = commit
		source.commits = append(source.commits, &model.Commit{
			ID:          hash,
			VCSSystemID: vcsID,
			Hash:        hash,
			Message:     commit.Message,
			Parents:     parents,
			Labels:      map[string]bool{},
		})
	}
	return source, nil
}

// Len returns the number of commits.
func (src *Source) Len() int {
	return len(src.commits)
}

// SetProject binds the repository to a project and a URL so that the project's trackers apply.
func (src *Source) SetProject(projectID, url string) {
	src.vcs.ProjectID = projectID
	src.vcs.URL = url
}

// VCSSystem describes the walked repository. The URL is whatever the caller passed to Open.
func (src *Source) VCSSystem(_ context.Context, url string) (*model.VCSSystem, error) {
	if src.vcs.URL == "" {
		src.vcs.URL = url
	}
	return src.vcs, nil
}

// Commits iterates over the commits oldest first.
func (src *Source) Commits(_ context.Context, vcsSystemID string) (store.CommitIter, error) {
	if vcsSystemID != "" && vcsSystemID != src.vcs.ID {
		return store.NewSliceIter(nil), nil
	}
	return store.NewSliceIter(src.commits), nil
}

// CountCommits returns the number of commits.
func (src *Source) CountCommits(_ context.Context, vcsSystemID string) (int, error) {
	if vcsSystemID != "" && vcsSystemID != src.vcs.ID {
		return 0, nil
	}
	return len(src.commits), nil
}

// Commit returns the commit with the given hash.
func (src *Source) Commit(hash string) (*model.Commit, error) {
	for _, commit := range src.commits {
		if commit.Hash == hash {
			return commit, nil
		}
	}
	return nil, errors.Wrapf(store.ErrNotFound, "commit %s", hash)
}

// commitChanges diffs the commit against each parent, a root commit against the empty tree.
func (src *Source) commitChanges(commitID string) ([]*fileChange, error) {
	src.mu.Lock()
	defer src.mu.Unlock()
	if cached, exists := src.changes[commitID]; exists {
		return cached, nil
	}
	commit, exists := src.objects[commitID]
	if !exists {
		return nil, errors.Wrapf(store.ErrNotFound, "commit %s", commitID)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, err
	}
	var result []*fileChange
	appendChanges := func(parentHash string, parentTree *object.Tree) error {
		diffs, err := object.DiffTree(parentTree, tree)
		if err != nil {
			return err
		}
		for _, change := range diffs {
			name := change.To.Name
			if name == "" {
				name = change.From.Name
			}
			if hunks.IsVendor(name) {
				continue
			}
			fc := &fileChange{
				action: model.FileAction{
					ID:                 fmt.Sprintf("%s:%s:%s", commitID, parentHash, name),
					CommitID:           commitID,
					FileID:             name,
					Path:               name,
					ParentRevisionHash: parentHash,
				},
				change: change,
			}
			result = append(result, fc)
			src.actions[fc.action.ID] = fc
		}
		return nil
	}
	if commit.NumParents() == 0 {
		err = appendChanges("", &object.Tree{})
	}
	for i := 0; i < commit.NumParents() && err == nil; i++ {
		var parent *object.Commit
		if parent, err = commit.Parent(i); err != nil {
			break
		}
		var parentTree *object.Tree
		if parentTree, err = parent.Tree(); err != nil {
			break
		}
		err = appendChanges(parent.Hash.String(), parentTree)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "diffing %s", commitID)
	}
	src.changes[commitID] = result
	return result, nil
}

// FileActions lists the changed files of a commit, optionally against one parent only.
func (src *Source) FileActions(_ context.Context, commitID, parentRevision string) ([]model.FileAction, error) {
	changes, err := src.commitChanges(commitID)
	if err != nil {
		return nil, err
	}
	var result []model.FileAction
	for _, fc := range changes {
		if parentRevision != "" && fc.action.ParentRevisionHash != parentRevision {
			continue
		}
		result = append(result, fc.action)
	}
	return result, nil
}

// Hunks returns the line diff hunks of the file actions. Binary and oversized files have none.
func (src *Source) Hunks(_ context.Context, fileActionIDs ...string) ([]model.Hunk, error) {
	var result []model.Hunk
	for _, id := range fileActionIDs {
		src.mu.Lock()
		fc, exists := src.actions[id]
		src.mu.Unlock()
		if !exists {
			continue
		}
		fileHunks, err := src.diff(fc)
		if err != nil {
			return nil, errors.Wrapf(err, "diffing %s", fc.action.Path)
		}
		result = append(result, fileHunks...)
	}
	return result, nil
}

func (src *Source) contents(file *object.File) (string, bool, error) {
	if file == nil {
		return "", true, nil
	}
	if file.Size > src.MaxFileSize {
		return "", false, nil
	}
	binary, err := file.IsBinary()
	if err != nil || binary {
		return "", false, err
	}
	text, err := file.Contents()
	return text, err == nil, err
}

func (src *Source) diff(fc *fileChange) ([]model.Hunk, error) {
	src.mu.Lock()
	defer src.mu.Unlock()
	if fc.diffed {
		return fc.hunks, nil
	}
	from, to, err := fc.change.Files()
	if err != nil {
		return nil, err
	}
	before, okBefore, err := src.contents(from)
	if err != nil {
		return nil, err
	}
	after, okAfter, err := src.contents(to)
	if err != nil {
		return nil, err
	}
	fc.diffed = true
	if !okBefore || !okAfter {
		return nil, nil
	}
	for i, content := range BuildHunks(before, after, src.ContextLines) {
		fc.hunks = append(fc.hunks, model.Hunk{
			ID:           fmt.Sprintf("%s#%d", fc.action.ID, i),
			FileActionID: fc.action.ID,
			Content:      content,
		})
	}
	return fc.hunks, nil
}

type diffLine struct {
	op   byte
	text string
}

// BuildHunks renders the line diff of two texts as unified hunk bodies without headers:
// every line starts with '+', '-' or ' '. Hunks closer than 2*contextLines lines are merged.
func BuildHunks(before, after string, contextLines int) []string {
	dmp := diffmatchpatch.New()
	src, dst, lines := dmp.DiffLinesToRunes(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMainRunes(src, dst, false), lines)
	var all []diffLine
	for _, diff := range diffs {
		op := byte(' ')
		switch diff.Type {
		case diffmatchpatch.DiffInsert:
			op = '+'
		case diffmatchpatch.DiffDelete:
			op = '-'
		}
		for _, line := range strings.SplitAfter(diff.Text, "\n") {
			if line == "" {
				continue
			}
			all = append(all, diffLine{op: op, text: strings.TrimSuffix(line, "\n")})
		}
	}
	var result []string
	start, end := -1, -1
	flush := func() {
		rendered := make([]string, 0, end-start)
		for _, line := range all[start:end] {
			rendered = append(rendered, string(line.op)+line.text)
		}
		result = append(result, strings.Join(rendered, "\n"))
	}
	for i, line := range all {
		if line.op == ' ' {
			continue
		}
		lo := i - contextLines
		if lo < 0 {
			lo = 0
		}
		if start >= 0 && lo > end {
			flush()
			start = -1
		}
		if start < 0 {
			start = lo
		}
		end = i + contextLines + 1
		if end > len(all) {
			end = len(all)
		}
	}
	if start >= 0 {
		flush()
	}
	return result
}

// CodeEntityStates returns the "file" entities of the files added or modified by the commit
// with their imports. Other entity types are not known to a plain repository.
func (src *Source) CodeEntityStates(_ context.Context, commitID string, types ...string) (
	[]model.CodeEntityState, error) {
	if len(types) > 0 && !containsString(types, "file") {
		return nil, nil
	}
	changes, err := src.commitChanges(commitID)
	if err != nil {
		return nil, err
	}
	var result []model.CodeEntityState
	seen := map[string]bool{}
	for _, fc := range changes {
		action, err := fc.change.Action()
		if err != nil {
			return nil, err
		}
		if action == merkletrie.Delete || seen[fc.action.Path] {
			continue
		}
		seen[fc.action.Path] = true
		_, to, err := fc.change.Files()
		if err != nil {
			return nil, err
		}
		content, ok, err := src.contents(to)
		if err != nil {
			return nil, err
		}
		state := model.CodeEntityState{
			ID:       commitID + ":" + fc.action.Path,
			CommitID: commitID,
			FileID:   fc.action.FileID,
			LongName: fc.action.Path,
			Type:     "file",
		}
		if ok {
			if file, err := imports.Extract(fc.action.Path, []byte(content)); err == nil && file != nil {
				state.Imports = file.Imports
			}
		}
		result = append(result, state)
	}
	return result, nil
}

// RefactoringCount is always zero: no refactoring detector runs on a plain repository.
func (src *Source) RefactoringCount(context.Context, string) (int, error) {
	return 0, nil
}

// ResolveRevision maps the hash to itself if the commit belongs to the walked history.
func (src *Source) ResolveRevision(_ context.Context, hash string) (string, error) {
	if _, exists := src.objects[hash]; exists {
		return hash, nil
	}
	return "", errors.Wrapf(store.ErrNotFound, "revision %s", hash)
}

// UpsertLabels merges the labels into the commit.
func (src *Source) UpsertLabels(_ context.Context, commitID string, labels map[string]bool) error {
	src.mu.Lock()
	defer src.mu.Unlock()
	for _, commit := range src.commits {
		if commit.ID == commitID {
			for key, val := range labels {
				commit.Labels[key] = val
			}
			return nil
		}
	}
	return errors.Wrapf(store.ErrNotFound, "commit %s", commitID)
}

func containsString(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

var (
	_ store.CommitStore = (*Source)(nil)
	_ store.ChangeStore = (*Source)(nil)
	_ store.LabelStore  = (*Source)(nil)
)
