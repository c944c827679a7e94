package main

import (
	"context"
	"fmt"
	"io"

	"github.com/cyraxred/labelshark/internal/config"
	"github.com/cyraxred/labelshark/internal/gitsource"
	"github.com/cyraxred/labelshark/internal/model"
	"github.com/cyraxred/labelshark/internal/store"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
)

// backend binds the store interfaces to the configured implementations.
type backend struct {
	commits store.CommitStore
	issues  store.IssueStore
	changes store.ChangeStore
	labels  store.LabelStore
	closers []func(context.Context) error
}

// Close releases the database connections.
func (b *backend) Close(ctx context.Context) error {
	var result error
	for _, closer := range b.closers {
		if err := closer(ctx); err != nil && result == nil {
			result = err
		}
	}
	return result
}

func (b *backend) projectTrackers(ctx context.Context, vcs *model.VCSSystem, urls []string) (
	[]*model.Tracker, error) {
	if vcs.ProjectID == "" {
		return nil, nil
	}
	return store.ProjectTrackers(ctx, b.issues, vcs, urls)
}

func openBackend(ctx context.Context, cfg *config.Config, quiet bool, status io.Writer) (*backend, error) {
	b := &backend{}
	switch cfg.Store.Backend {
	case config.BackendMongo:
		db, err := store.NewMongo(ctx, cfg.Store.Mongo.ConnectionURI(), cfg.Store.Mongo.Database)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, db.Close)
		b.commits, b.issues, b.changes, b.labels = db, db, db, db
	default:
		memory := store.NewMemory()
		if cfg.Store.Fixture != "" {
			path, err := homedir.Expand(cfg.Store.Fixture)
			if err != nil {
				return nil, err
			}
			if memory, err = store.LoadFixtureFile(path); err != nil {
				return nil, err
			}
		}
		b.commits, b.issues, b.changes, b.labels = memory, memory, memory, memory
	}
	if cfg.Repository.URI != "" {
		vcs := &model.VCSSystem{ID: cfg.VCSURL, URL: cfg.VCSURL}
		if known, err := b.commits.VCSSystem(ctx, cfg.VCSURL); err == nil {
			vcs = known
		}
		source, err := openSource(cfg, vcs, quiet, status)
		if err != nil {
			b.Close(ctx)
			return nil, err
		}
		b.commits, b.changes, b.labels = source, source, source
	}
	if cfg.GitHub.Token != "" || cfg.GitHub.BaseURL != "" {
		var opts []store.GitHubOption
		if cfg.GitHub.BaseURL != "" {
			opts = append(opts, store.WithGitHubBaseURL(cfg.GitHub.BaseURL))
		}
		b.issues = store.NewGitHubIssues(b.issues, cfg.GitHub.Token, opts...)
	}
	return b, nil
}

// openSource reads the commits of the repository. They belong to vcs, so the trackers of its
// project apply.
func openSource(cfg *config.Config, vcs *model.VCSSystem, quiet bool, status io.Writer) (
	*gitsource.Source, error) {
	var progress io.Writer
	if !quiet {
		fmt.Fprint(status, "connecting...\r")
		progress = status
	}
	repository, err := gitsource.Open(cfg.Repository.URI, cfg.Repository.Cache, cfg.Repository.SSHIdentity, progress)
	if !quiet {
		fmt.Fprint(status, "\033[2K\r")
	}
	if err != nil {
		return nil, err
	}
	if !quiet {
		fmt.Fprint(status, "git log...\r")
	}
	source, err := gitsource.NewSource(repository, vcs.ID, cfg.Repository.FirstParent)
	if err != nil {
		return nil, errors.Wrapf(err, "reading the history of %s", cfg.Repository.URI)
	}
	source.SetProject(vcs.ProjectID, vcs.URL)
	return source, nil
}
