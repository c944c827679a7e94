package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cyraxred/labelshark/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGitHubRepository(t *testing.T) {
	owner, repo, err := ParseGitHubRepository("https://api.github.com/repos/smartshark/labelSHARK/issues")
	assert.NoError(t, err)
	assert.Equal(t, "smartshark", owner)
	assert.Equal(t, "labelSHARK", repo)
	owner, repo, err = ParseGitHubRepository("https://github.com/apache/commons-lang.git")
	assert.NoError(t, err)
	assert.Equal(t, "apache", owner)
	assert.Equal(t, "commons-lang", repo)
	_, _, err = ParseGitHubRepository("https://github.com/")
	assert.Error(t, err)
}

func TestGitHubIssues(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/repos/owner/repo/issues/42":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"id": 1, "number": 42, "title": "NPE", "body": "crash", "state": "closed",
				"labels": []map[string]string{{"name": "enhancement"}, {"name": "type: bug"}},
			})
		case "/repos/owner/repo/issues/42/events":
			json.NewEncoder(w).Encode([]map[string]interface{}{
				{"id": 10, "event": "labeled", "created_at": "2020-01-01T00:00:00Z"},
				{"id": 11, "event": "closed", "created_at": "2020-01-02T00:00:00Z"},
				{"id": 12, "event": "reopened", "created_at": "2020-01-03T00:00:00Z"},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message": "Not Found"}`))
		}
	}))
	defer server.Close()

	inner := NewMemory()
	inner.AddTracker(model.NewTracker("t1", "p1", "https://api.github.com/repos/owner/repo/issues"))
	inner.AddTracker(model.NewTracker("t2", "p1", "https://issues.apache.org/jira"))
	inner.AddIssue(&model.Issue{ID: "i7", TrackerID: "t1", ExternalID: "7", Status: "open"})
	g := NewGitHubIssues(inner, "test-token", WithGitHubBaseURL(server.URL))
	ctx := context.Background()

	issues, err := g.Issues(ctx, IssueQuery{TrackerID: "t1", ExternalIDs: []string{"7", "42", "404"}})
	require.NoError(t, err)
	require.Len(t, issues, 2)
	assert.Equal(t, "i7", issues[0].ID)
	fetched := issues[1]
	assert.Equal(t, "42", fetched.ExternalID)
	assert.Equal(t, "closed", fetched.Status)
	assert.Equal(t, "type: bug", fetched.IssueType)
	assert.Equal(t, "t1", fetched.TrackerID)

	events, err := g.Events(ctx, fetched.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "closed", events[0].NewValue)
	assert.Equal(t, "open", events[1].NewValue)
	assert.Equal(t, "status", events[1].Field)

	// other families never reach the API
	issues, err = g.Issues(ctx, IssueQuery{TrackerID: "t2", ExternalIDs: []string{"LANG-1"}})
	assert.NoError(t, err)
	assert.Len(t, issues, 0)
	events, err = g.Events(ctx, "i7")
	assert.NoError(t, err)
	assert.Len(t, events, 0)
}
