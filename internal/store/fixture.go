package store

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cyraxred/labelshark/internal/model"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type fixtureEvent struct {
	Field     string    `yaml:"field"`
	NewValue  string    `yaml:"new_value"`
	CreatedAt time.Time `yaml:"created_at"`
}

type fixtureIssue struct {
	ID           string         `yaml:"id"`
	Tracker      string         `yaml:"tracker"`
	ExternalID   string         `yaml:"external_id"`
	Title        string         `yaml:"title"`
	Description  string         `yaml:"description"`
	Type         string         `yaml:"type"`
	TypeVerified string         `yaml:"type_verified"`
	Status       string         `yaml:"status"`
	Resolution   string         `yaml:"resolution"`
	Parent       string         `yaml:"parent"`
	Events       []fixtureEvent `yaml:"events"`
}

type fixtureEntity struct {
	LongName string             `yaml:"long_name"`
	Type     string             `yaml:"type"`
	Metrics  map[string]float64 `yaml:"metrics"`
}

type fixtureFile struct {
	ID       string          `yaml:"id"`
	FileID   string          `yaml:"file_id"`
	Path     string          `yaml:"path"`
	Parent   string          `yaml:"parent"`
	Hunks    []string        `yaml:"hunks"`
	Imports  []string        `yaml:"imports"`
	Entities []fixtureEntity `yaml:"entities"`
}

type fixtureCommit struct {
	ID           string          `yaml:"id"`
	VCS          string          `yaml:"vcs"`
	Hash         string          `yaml:"hash"`
	Message      string          `yaml:"message"`
	Parents      []string        `yaml:"parents"`
	LinkedIssues []string        `yaml:"linked_issues"`
	FixedIssues  []string        `yaml:"fixed_issues"`
	SZZIssues    []string        `yaml:"szz_issues"`
	Labels       map[string]bool `yaml:"labels"`
	Refactorings int             `yaml:"refactorings"`
	Files        []fixtureFile   `yaml:"files"`
}

type fixtureDocument struct {
	VCSSystems []struct {
		ID        string `yaml:"id"`
		ProjectID string `yaml:"project_id"`
		URL       string `yaml:"url"`
	} `yaml:"vcs_systems"`
	Trackers []struct {
		ID        string `yaml:"id"`
		ProjectID string `yaml:"project_id"`
		URL       string `yaml:"url"`
	} `yaml:"trackers"`
	Issues  []fixtureIssue  `yaml:"issues"`
	Commits []fixtureCommit `yaml:"commits"`
}

// LoadFixtureFile reads the YAML fixture at the specified path into a new Memory store.
func LoadFixtureFile(path string) (*Memory, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening fixture %s", path)
	}
	defer file.Close()
	return LoadFixture(file)
}

// LoadFixture parses a YAML fixture into a new Memory store. Tracker families are derived
// from the tracker URLs, issue events and per-file hunks, imports and entities are nested
// under their owners.
func LoadFixture(reader io.Reader) (*Memory, error) {
	doc := fixtureDocument{}
	if err := yaml.NewDecoder(reader).Decode(&doc); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "parsing fixture")
	}
	m := NewMemory()
	for _, vcs := range doc.VCSSystems {
		m.AddVCSSystem(&model.VCSSystem{ID: vcs.ID, ProjectID: vcs.ProjectID, URL: vcs.URL})
	}
	for _, tracker := range doc.Trackers {
		m.AddTracker(model.NewTracker(tracker.ID, tracker.ProjectID, tracker.URL))
	}
	for _, fi := range doc.Issues {
		m.AddIssue(&model.Issue{
			ID:                fi.ID,
			TrackerID:         fi.Tracker,
			ExternalID:        fi.ExternalID,
			Title:             fi.Title,
			Description:       fi.Description,
			IssueType:         fi.Type,
			IssueTypeVerified: fi.TypeVerified,
			Status:            fi.Status,
			Resolution:        fi.Resolution,
			ParentIssueID:     fi.Parent,
		})
		for i, fe := range fi.Events {
			m.AddEvent(model.Event{
				ID:        fmt.Sprintf("%s:%d", fi.ID, i),
				IssueID:   fi.ID,
				Field:     fe.Field,
				NewValue:  fe.NewValue,
				CreatedAt: fe.CreatedAt,
			})
		}
	}
	for _, fc := range doc.Commits {
		m.AddCommit(&model.Commit{
			ID:             fc.ID,
			VCSSystemID:    fc.VCS,
			Hash:           fc.Hash,
			Message:        fc.Message,
			Parents:        fc.Parents,
			LinkedIssueIDs: fc.LinkedIssues,
			FixedIssueIDs:  fc.FixedIssues,
			SZZIssueIDs:    fc.SZZIssues,
			Labels:         fc.Labels,
		})
		for i := 0; i < fc.Refactorings; i++ {
			m.AddRefactoring(model.Refactoring{CommitID: fc.ID})
		}
		for i, ff := range fc.Files {
			if ff.ID == "" {
				ff.ID = fmt.Sprintf("%s:%d", fc.ID, i)
			}
			if ff.FileID == "" {
				ff.FileID = ff.Path
			}
			m.AddFile(model.File{ID: ff.FileID, Path: ff.Path})
			m.AddFileAction(model.FileAction{
				ID:                 ff.ID,
				CommitID:           fc.ID,
				FileID:             ff.FileID,
				Path:               ff.Path,
				ParentRevisionHash: ff.Parent,
			})
			for j, content := range ff.Hunks {
				m.AddHunk(model.Hunk{
					ID: fmt.Sprintf("%s:%d", ff.ID, j), FileActionID: ff.ID, Content: content})
			}
			if len(ff.Imports) > 0 {
				m.AddCodeEntityState(model.CodeEntityState{
					CommitID: fc.ID, FileID: ff.FileID, LongName: ff.Path, Type: "file",
					Imports: ff.Imports})
			}
			for _, fe := range ff.Entities {
				m.AddCodeEntityState(model.CodeEntityState{
					CommitID: fc.ID, FileID: ff.FileID, LongName: fe.LongName, Type: fe.Type,
					Metrics: fe.Metrics})
			}
		}
	}
	return m, nil
}
