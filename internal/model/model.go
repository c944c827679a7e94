package model

import (
	"sort"
	"strings"
	"time"
)

// TrackerFamily is the kind of an issue tracking system. It decides which identifier
// patterns and which status vocabulary apply to the tracker's issues.
type TrackerFamily int

const (
	// FamilyUnknown is assigned to the trackers whose URL does not reveal the kind.
	FamilyUnknown TrackerFamily = iota
	// FamilyJira is an Atlassian Jira instance.
	FamilyJira
	// FamilyBugzilla is a Bugzilla instance.
	FamilyBugzilla
	// FamilyGitHub is the GitHub issue tracker of a repository.
	FamilyGitHub
)

// String returns the lower case name of the family.
func (family TrackerFamily) String() string {
	switch family {
	case FamilyJira:
		return "jira"
	case FamilyBugzilla:
		return "bugzilla"
	case FamilyGitHub:
		return "github"
	}
	return "unknown"
}

// ParseFamily classifies a tracker by its base URL. The check is a plain substring match
// and is performed once, when the tracker record is loaded.
func ParseFamily(url string) TrackerFamily {
	lower := strings.ToLower(url)
	switch {
	case strings.Contains(lower, "jira"):
		return FamilyJira
	case strings.Contains(lower, "bugzilla"):
		return FamilyBugzilla
	case strings.Contains(lower, "github"):
		return FamilyGitHub
	}
	return FamilyUnknown
}

// Tracker is an issue tracking system associated with a project.
type Tracker struct {
	ID        string
	ProjectID string
	URL       string
	Family    TrackerFamily
}

// NewTracker creates a Tracker and derives its Family from the URL.
func NewTracker(id, projectID, url string) *Tracker {
	return &Tracker{ID: id, ProjectID: projectID, URL: url, Family: ParseFamily(url)}
}

// VCSSystem is a version control repository of a project.
type VCSSystem struct {
	ID        string
	ProjectID string
	URL       string
}

// Commit is a single revision together with the precomputed issue links.
type Commit struct {
	ID          string
	VCSSystemID string
	Hash        string
	Message     string
	// Parents are the revision hashes of the parent commits, first parent first.
	Parents []string
	// LinkedIssueIDs are the issues mentioned by the commit.
	LinkedIssueIDs []string
	// FixedIssueIDs are the issues the commit is known to fix.
	FixedIssueIDs []string
	// SZZIssueIDs are the issues inferred by the SZZ algorithm.
	SZZIssueIDs []string
	// Labels are the labels stored so far.
	Labels map[string]bool
}

// Issue is a record of an issue tracker. Read only.
type Issue struct {
	ID                string
	TrackerID         string
	ExternalID        string
	Title             string
	Description       string
	IssueType         string
	IssueTypeVerified string
	Status            string
	Resolution        string
	ParentIssueID     string
}

// Event is a change of an issue field.
type Event struct {
	ID      string
	IssueID string
	// Field is the name of the changed field, e.g. "status" or "resolution".
	Field     string
	NewValue  string
	CreatedAt time.Time
}

// File is a path tracked by a repository.
type File struct {
	ID   string
	Path string
}

// FileAction is a change of a file in a commit relative to one of its parents.
type FileAction struct {
	ID                 string
	CommitID           string
	FileID             string
	Path               string
	ParentRevisionHash string
}

// Hunk is a contiguous diff fragment of a FileAction. Content lines start with '+' or '-'.
type Hunk struct {
	ID           string
	FileActionID string
	Content      string
}

// CodeEntityState is the static analysis snapshot of a code entity at a commit.
type CodeEntityState struct {
	ID       string
	CommitID string
	FileID   string
	LongName string
	// Type is the entity kind: "file", "class", "method", etc.
	Type    string
	Imports []string
	Metrics map[string]float64
}

// Refactoring is a refactoring detected in a commit by an external tool.
type Refactoring struct {
	ID       string
	CommitID string
	Type     string
}

// Label is a single boolean classification of a commit.
type Label struct {
	Name  string
	Value bool
}

// Labels is an ordered sequence of labels.
type Labels []Label

// Map converts the labels to a name -> value mapping. Later duplicates win.
func (labels Labels) Map() map[string]bool {
	result := make(map[string]bool, len(labels))
	for _, l := range labels {
		result[l.Name] = l.Value
	}
	return result
}

// Prefixed returns a copy of the labels with every name prefixed by `ns` and an underscore.
func (labels Labels) Prefixed(ns string) Labels {
	result := make(Labels, len(labels))
	for i, l := range labels {
		result[i] = Label{Name: ns + "_" + l.Name, Value: l.Value}
	}
	return result
}

// Names returns the sorted label names.
func (labels Labels) Names() []string {
	names := make([]string, len(labels))
	for i, l := range labels {
		names[i] = l.Name
	}
	sort.Strings(names)
	return names
}
