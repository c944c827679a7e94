// Package store defines the query interface to the commit, issue and change records
// consumed by the labeling approaches, together with several implementations:
// an in-memory store (also loadable from YAML fixtures), a MongoDB store which reads the
// smartSHARK collections and a GitHub-backed issue source.
package store

import (
	"context"

	"github.com/cyraxred/labelshark/internal/model"
	"github.com/pkg/errors"
)

// ErrNotFound is returned when a single requested record does not exist.
var ErrNotFound = errors.New("not found")

// CommitIter iterates over commits in a stable order. Next returns io.EOF after the last commit.
type CommitIter interface {
	Next(ctx context.Context) (*model.Commit, error)
	Close() error
}

// CommitStore gives access to the version control data.
type CommitStore interface {
	// VCSSystem returns the repository with the given URL.
	VCSSystem(ctx context.Context, url string) (*model.VCSSystem, error)
	// Commits iterates over the commits of the repository.
	Commits(ctx context.Context, vcsSystemID string) (CommitIter, error)
	// CountCommits returns the number of commits of the repository.
	CountCommits(ctx context.Context, vcsSystemID string) (int, error)
}

// IssueQuery selects issues. Either TrackerID with ExternalIDs or IDs must be set.
// ExternalIDs are compared case-insensitively.
type IssueQuery struct {
	TrackerID   string
	ExternalIDs []string
	IDs         []string
	// Fields limits the loaded fields. Implementations may ignore it.
	Fields []string
}

// IssueStore gives access to the issue tracking data.
type IssueStore interface {
	// Trackers lists the trackers of a project.
	Trackers(ctx context.Context, projectID string) ([]*model.Tracker, error)
	// TrackerByURL returns the tracker with the given URL.
	TrackerByURL(ctx context.Context, url string) (*model.Tracker, error)
	// Tracker returns the tracker with the given identity.
	Tracker(ctx context.Context, id string) (*model.Tracker, error)
	// Issues returns the issues matching the query. Missing ones are silently skipped.
	Issues(ctx context.Context, query IssueQuery) ([]*model.Issue, error)
	// Events returns the ordered change history of an issue.
	Events(ctx context.Context, issueID string) ([]model.Event, error)
}

// ChangeStore gives access to the per-commit change data.
type ChangeStore interface {
	// FileActions lists the changed files of a commit. A non-empty parentRevision limits
	// the result to the changes against that parent.
	FileActions(ctx context.Context, commitID, parentRevision string) ([]model.FileAction, error)
	// Hunks returns the diff hunks of the file actions.
	Hunks(ctx context.Context, fileActionIDs ...string) ([]model.Hunk, error)
	// CodeEntityStates returns the code entities of a commit. Empty types select all.
	CodeEntityStates(ctx context.Context, commitID string, types ...string) ([]model.CodeEntityState, error)
	// RefactoringCount returns the number of refactorings detected in the commit.
	RefactoringCount(ctx context.Context, commitID string) (int, error)
	// ResolveRevision maps a revision hash to the commit identity.
	ResolveRevision(ctx context.Context, hash string) (string, error)
}

// LabelStore persists labels.
type LabelStore interface {
	// UpsertLabels merges the labels into the stored label set of the commit.
	// Labels which are not mentioned stay intact.
	UpsertLabels(ctx context.Context, commitID string, labels map[string]bool) error
}

// Store is the complete query interface.
type Store interface {
	CommitStore
	IssueStore
	ChangeStore
	LabelStore
	Close(ctx context.Context) error
}

// ProjectTrackers returns the trackers which belong to the project of the repository.
// If urls is empty or equals to ["all"], every tracker of the project is returned,
// otherwise the trackers are looked up by URL in the given order.
func ProjectTrackers(ctx context.Context, issues IssueStore, vcs *model.VCSSystem, urls []string) (
	[]*model.Tracker, error) {
	if len(urls) == 0 || (len(urls) == 1 && urls[0] == "all") {
		trackers, err := issues.Trackers(ctx, vcs.ProjectID)
		return trackers, errors.Wrapf(err, "listing the trackers of project %s", vcs.ProjectID)
	}
	trackers := make([]*model.Tracker, 0, len(urls))
	for _, url := range urls {
		tracker, err := issues.TrackerByURL(ctx, url)
		if err != nil {
			return nil, errors.Wrapf(err, "looking up tracker %s", url)
		}
		trackers = append(trackers, tracker)
	}
	return trackers, nil
}
