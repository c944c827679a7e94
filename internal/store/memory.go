package store

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/cyraxred/labelshark/internal/model"
	"github.com/pkg/errors"
)

// Memory is the Store which keeps everything in RAM. It is filled with the Add* methods
// or by LoadFixture().
type Memory struct {
	mu sync.RWMutex

	vcsSystems   []*model.VCSSystem
	trackers     []*model.Tracker
	commits      []*model.Commit
	commitByHash map[string]*model.Commit
	issues       []*model.Issue
	events       map[string][]model.Event
	files        map[string]model.File
	fileActions  []model.FileAction
	hunks        map[string][]model.Hunk
	entities     map[string][]model.CodeEntityState
	refactorings map[string]int
}

// NewMemory creates an empty Memory store.
func NewMemory() *Memory {
	return &Memory{
		commitByHash: map[string]*model.Commit{},
		events:       map[string][]model.Event{},
		files:        map[string]model.File{},
		hunks:        map[string][]model.Hunk{},
		entities:     map[string][]model.CodeEntityState{},
		refactorings: map[string]int{},
	}
}

// AddVCSSystem inserts a repository.
func (m *Memory) AddVCSSystem(vcs *model.VCSSystem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vcsSystems = append(m.vcsSystems, vcs)
}

// AddTracker inserts an issue tracker.
func (m *Memory) AddTracker(tracker *model.Tracker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trackers = append(m.trackers, tracker)
}

// AddCommit inserts a commit. Commits are iterated in the insertion order.
func (m *Memory) AddCommit(commit *model.Commit) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if commit.Labels == nil {
		commit.Labels = map[string]bool{}
	}
	m.commits = append(m.commits, commit)
	m.commitByHash[commit.Hash] = commit
}

// AddIssue inserts an issue.
func (m *Memory) AddIssue(issue *model.Issue) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.issues = append(m.issues, issue)
}

// AddEvent appends an event to the history of its issue.
func (m *Memory) AddEvent(event model.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[event.IssueID] = append(m.events[event.IssueID], event)
}

// AddFile inserts a file.
func (m *Memory) AddFile(file model.File) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[file.ID] = file
}

// AddFileAction inserts a file action. The path is taken from the file if it is empty.
func (m *Memory) AddFileAction(action model.FileAction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if action.Path == "" {
		action.Path = m.files[action.FileID].Path
	}
	m.fileActions = append(m.fileActions, action)
}

// AddHunk appends a hunk to its file action.
func (m *Memory) AddHunk(hunk model.Hunk) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hunks[hunk.FileActionID] = append(m.hunks[hunk.FileActionID], hunk)
}

// AddCodeEntityState inserts a code entity state.
func (m *Memory) AddCodeEntityState(state model.CodeEntityState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entities[state.CommitID] = append(m.entities[state.CommitID], state)
}

// AddRefactoring records a detected refactoring.
func (m *Memory) AddRefactoring(refactoring model.Refactoring) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refactorings[refactoring.CommitID]++
}

// VCSSystem returns the repository with the given URL.
func (m *Memory) VCSSystem(_ context.Context, url string) (*model.VCSSystem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, vcs := range m.vcsSystems {
		if vcs.URL == url {
			return vcs, nil
		}
	}
	return nil, errors.Wrapf(ErrNotFound, "vcs system %s", url)
}

// Commits iterates over the commits of the repository in the insertion order.
func (m *Memory) Commits(_ context.Context, vcsSystemID string) (CommitIter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var selected []*model.Commit
	for _, commit := range m.commits {
		if vcsSystemID == "" || commit.VCSSystemID == vcsSystemID {
			selected = append(selected, commit)
		}
	}
	return &sliceCommitIter{commits: selected}, nil
}

// CountCommits returns the number of commits of the repository.
func (m *Memory) CountCommits(ctx context.Context, vcsSystemID string) (int, error) {
	iter, _ := m.Commits(ctx, vcsSystemID)
	return len(iter.(*sliceCommitIter).commits), nil
}

// Commit returns the commit with the given identity, including the labels stored so far.
func (m *Memory) Commit(id string) (*model.Commit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, commit := range m.commits {
		if commit.ID == id {
			return commit, nil
		}
	}
	return nil, errors.Wrapf(ErrNotFound, "commit %s", id)
}

// Trackers lists the trackers of a project.
func (m *Memory) Trackers(_ context.Context, projectID string) ([]*model.Tracker, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*model.Tracker
	for _, tracker := range m.trackers {
		if tracker.ProjectID == projectID {
			result = append(result, tracker)
		}
	}
	return result, nil
}

// TrackerByURL returns the tracker with the given URL.
func (m *Memory) TrackerByURL(_ context.Context, url string) (*model.Tracker, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, tracker := range m.trackers {
		if tracker.URL == url {
			return tracker, nil
		}
	}
	return nil, errors.Wrapf(ErrNotFound, "tracker %s", url)
}

// Tracker returns the tracker with the given identity.
func (m *Memory) Tracker(_ context.Context, id string) (*model.Tracker, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, tracker := range m.trackers {
		if tracker.ID == id {
			return tracker, nil
		}
	}
	return nil, errors.Wrapf(ErrNotFound, "tracker %s", id)
}

// Issues returns the issues matching the query in the insertion order.
func (m *Memory) Issues(_ context.Context, query IssueQuery) ([]*model.Issue, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := map[string]bool{}
	for _, id := range query.IDs {
		ids[id] = true
	}
	externalIDs := map[string]bool{}
	for _, id := range query.ExternalIDs {
		externalIDs[strings.ToUpper(id)] = true
	}
	var result []*model.Issue
	for _, issue := range m.issues {
		if ids[issue.ID] ||
			(issue.TrackerID == query.TrackerID && externalIDs[strings.ToUpper(issue.ExternalID)]) {
			result = append(result, issue)
		}
	}
	return result, nil
}

// Events returns the history of an issue sorted by time, stable for equal timestamps.
func (m *Memory) Events(_ context.Context, issueID string) ([]model.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	events := append([]model.Event{}, m.events[issueID]...)
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].CreatedAt.Before(events[j].CreatedAt)
	})
	return events, nil
}

// FileActions lists the changed files of a commit.
func (m *Memory) FileActions(_ context.Context, commitID, parentRevision string) ([]model.FileAction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []model.FileAction
	for _, action := range m.fileActions {
		if action.CommitID != commitID {
			continue
		}
		if parentRevision != "" && action.ParentRevisionHash != parentRevision {
			continue
		}
		result = append(result, action)
	}
	return result, nil
}

// Hunks returns the diff hunks of the file actions.
func (m *Memory) Hunks(_ context.Context, fileActionIDs ...string) ([]model.Hunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []model.Hunk
	for _, id := range fileActionIDs {
		result = append(result, m.hunks[id]...)
	}
	return result, nil
}

// CodeEntityStates returns the code entities of a commit.
func (m *Memory) CodeEntityStates(_ context.Context, commitID string, types ...string) (
	[]model.CodeEntityState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []model.CodeEntityState
	for _, state := range m.entities[commitID] {
		if len(types) == 0 || containsString(types, state.Type) {
			result = append(result, state)
		}
	}
	return result, nil
}

// RefactoringCount returns the number of refactorings detected in the commit.
func (m *Memory) RefactoringCount(_ context.Context, commitID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.refactorings[commitID], nil
}

// ResolveRevision maps a revision hash to the commit identity.
func (m *Memory) ResolveRevision(_ context.Context, hash string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if commit, exists := m.commitByHash[hash]; exists {
		return commit.ID, nil
	}
	return "", errors.Wrapf(ErrNotFound, "revision %s", hash)
}

// UpsertLabels merges the labels into the commit's label set.
func (m *Memory) UpsertLabels(_ context.Context, commitID string, labels map[string]bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, commit := range m.commits {
		if commit.ID == commitID {
			for key, val := range labels {
				commit.Labels[key] = val
			}
			return nil
		}
	}
	return errors.Wrapf(ErrNotFound, "commit %s", commitID)
}

// Close does nothing.
func (m *Memory) Close(context.Context) error {
	return nil
}

type sliceCommitIter struct {
	commits []*model.Commit
	pos     int
}

func (iter *sliceCommitIter) Next(ctx context.Context) (*model.Commit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if iter.pos >= len(iter.commits) {
		return nil, io.EOF
	}
	commit := iter.commits[iter.pos]
	iter.pos++
	return commit, nil
}

func (iter *sliceCommitIter) Close() error {
	return nil
}

// NewSliceIter wraps a slice of commits into a CommitIter.
func NewSliceIter(commits []*model.Commit) CommitIter {
	return &sliceCommitIter{commits: commits}
}

func containsString(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
