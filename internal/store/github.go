package store

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/cyraxred/labelshark/internal/model"
	"github.com/google/go-github/v60/github"
	"github.com/pkg/errors"
)

const githubIssuePrefix = "github:"

// GitHubIssues decorates an IssueStore. Issues of GitHub trackers which the wrapped store
// does not know are fetched from the GitHub API together with their event history.
type GitHubIssues struct {
	IssueStore
	client *github.Client

	mu      sync.Mutex
	fetched map[string]githubIssueRef
}

type githubIssueRef struct {
	owner  string
	repo   string
	number int
}

// GitHubOption configures GitHubIssues.
type GitHubOption func(*GitHubIssues)

// WithGitHubBaseURL sets a custom API base URL (GitHub Enterprise or tests).
func WithGitHubBaseURL(base string) GitHubOption {
	return func(g *GitHubIssues) {
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		g.client.BaseURL, _ = g.client.BaseURL.Parse(base)
	}
}

// NewGitHubIssues wraps the store. An empty token means anonymous access.
func NewGitHubIssues(inner IssueStore, token string, opts ...GitHubOption) *GitHubIssues {
	httpClient := &http.Client{}
	if token != "" {
		httpClient.Transport = &tokenTransport{token: token}
	}
	g := &GitHubIssues{
		IssueStore: inner,
		client:     github.NewClient(httpClient),
		fetched:    map[string]githubIssueRef{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type tokenTransport struct {
	token string
}

func (t *tokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+t.token)
	return http.DefaultTransport.RoundTrip(req)
}

// ParseGitHubRepository extracts the owner and the repository name from a tracker URL,
// e.g. https://api.github.com/repos/owner/repo/issues or https://github.com/owner/repo.
func ParseGitHubRepository(trackerURL string) (owner, repo string, err error) {
	parsed, err := url.Parse(trackerURL)
	if err != nil {
		return "", "", errors.Wrapf(err, "parsing %s", trackerURL)
	}
	var parts []string
	for _, part := range strings.Split(parsed.Path, "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) > 0 && parts[0] == "repos" {
		parts = parts[1:]
	}
	if len(parts) < 2 {
		return "", "", errors.Errorf("%s does not name a GitHub repository", trackerURL)
	}
	return parts[0], strings.TrimSuffix(parts[1], ".git"), nil
}

// Issues returns the issues known to the wrapped store and fetches the rest from GitHub
// if the tracker belongs to the GitHub family. Issues which GitHub does not know are skipped.
func (g *GitHubIssues) Issues(ctx context.Context, query IssueQuery) ([]*model.Issue, error) {
	issues, err := g.IssueStore.Issues(ctx, query)
	if err != nil || query.TrackerID == "" || len(query.ExternalIDs) == 0 {
		return issues, err
	}
	tracker, err := g.IssueStore.Tracker(ctx, query.TrackerID)
	if err != nil {
		return nil, err
	}
	if tracker.Family != model.FamilyGitHub {
		return issues, nil
	}
	known := map[string]bool{}
	for _, issue := range issues {
		known[strings.ToUpper(issue.ExternalID)] = true
	}
	owner, repo, err := ParseGitHubRepository(tracker.URL)
	if err != nil {
		return nil, err
	}
	for _, external := range query.ExternalIDs {
		if known[strings.ToUpper(external)] {
			continue
		}
		number, convErr := strconv.Atoi(external)
		if convErr != nil {
			continue
		}
		issue, fetchErr := g.fetchIssue(ctx, tracker, owner, repo, number)
		if fetchErr != nil {
			return nil, fetchErr
		}
		if issue != nil {
			issues = append(issues, issue)
		}
	}
	return issues, nil
}

func (g *GitHubIssues) fetchIssue(ctx context.Context, tracker *model.Tracker, owner, repo string,
	number int) (*model.Issue, error) {
	gh, resp, err := g.client.Issues.Get(ctx, owner, repo, number)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "fetching issue %s/%s#%d", owner, repo, number)
	}
	id := fmt.Sprintf("%s%s/%s#%d", githubIssuePrefix, owner, repo, number)
	g.mu.Lock()
	g.fetched[id] = githubIssueRef{owner: owner, repo: repo, number: number}
	g.mu.Unlock()
	return &model.Issue{
		ID:          id,
		TrackerID:   tracker.ID,
		ExternalID:  strconv.Itoa(gh.GetNumber()),
		Title:       gh.GetTitle(),
		Description: gh.GetBody(),
		IssueType:   githubIssueType(gh.Labels),
		Status:      gh.GetState(),
	}, nil
}

// githubIssueType picks the first label which mentions a bug, otherwise the first label.
func githubIssueType(labels []*github.Label) string {
	for _, label := range labels {
		if strings.Contains(strings.ToLower(label.GetName()), "bug") {
			return label.GetName()
		}
	}
	if len(labels) > 0 {
		return labels[0].GetName()
	}
	return ""
}

// Events returns the history of an issue. For the issues fetched from GitHub the "closed"
// and "reopened" events are translated to status changes.
func (g *GitHubIssues) Events(ctx context.Context, issueID string) ([]model.Event, error) {
	g.mu.Lock()
	ref, exists := g.fetched[issueID]
	g.mu.Unlock()
	if !exists {
		return g.IssueStore.Events(ctx, issueID)
	}
	var events []model.Event
	opts := &github.ListOptions{PerPage: 100}
	for {
		page, resp, err := g.client.Issues.ListIssueEvents(ctx, ref.owner, ref.repo, ref.number, opts)
		if err != nil {
			return nil, errors.Wrapf(err, "listing events of %s", issueID)
		}
		for _, ev := range page {
			var status string
			switch ev.GetEvent() {
			case "closed":
				status = "closed"
			case "reopened":
				status = "open"
			default:
				continue
			}
			events = append(events, model.Event{
				ID:        strconv.FormatInt(ev.GetID(), 10),
				IssueID:   issueID,
				Field:     "status",
				NewValue:  status,
				CreatedAt: ev.GetCreatedAt().Time,
			})
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return events, nil
}
