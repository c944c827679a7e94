// Package test builds the Git repositories used by the tests.
package test

import (
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
)

// RepositoryBuilder creates an in-memory repository commit by commit.
type RepositoryBuilder struct {
	Repository *git.Repository

	fs       billy.Filesystem
	worktree *git.Worktree
	when     time.Time
}

// NewRepository initializes an empty in-memory repository with a worktree.
func NewRepository() (*RepositoryBuilder, error) {
	fs := memfs.New()
	repository, err := git.Init(memory.NewStorage(), fs)
	if err != nil {
		return nil, err
	}
	worktree, err := repository.Worktree()
	if err != nil {
		return nil, err
	}
	return &RepositoryBuilder{
		Repository: repository,
		fs:         fs,
		worktree:   worktree,
		when:       time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC),
	}, nil
}

// Commit writes the files and commits them. An empty content deletes the file.
func (b *RepositoryBuilder) Commit(message string, files map[string]string) (plumbing.Hash, error) {
	for name, content := range files {
		if content == "" {
			if _, err := b.worktree.Remove(name); err != nil {
				return plumbing.ZeroHash, err
			}
			continue
		}
		if err := util.WriteFile(b.fs, name, []byte(content), 0o644); err != nil {
			return plumbing.ZeroHash, err
		}
		if _, err := b.worktree.Add(name); err != nil {
			return plumbing.ZeroHash, err
		}
	}
	b.when = b.when.Add(time.Hour)
	return b.worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{Name: "Bob", Email: "bob@example.com", When: b.when},
	})
}

// Merge commits the files on top of HEAD with an additional parent, e.g. an older commit.
func (b *RepositoryBuilder) Merge(message string, other plumbing.Hash, files map[string]string) (
	plumbing.Hash, error) {
	for name, content := range files {
		if err := util.WriteFile(b.fs, name, []byte(content), 0o644); err != nil {
			return plumbing.ZeroHash, err
		}
		if _, err := b.worktree.Add(name); err != nil {
			return plumbing.ZeroHash, err
		}
	}
	head, err := b.Repository.Head()
	if err != nil {
		return plumbing.ZeroHash, err
	}
	b.when = b.when.Add(time.Hour)
	return b.worktree.Commit(message, &git.CommitOptions{
		Author:  &object.Signature{Name: "Bob", Email: "bob@example.com", When: b.when},
		Parents: []plumbing.Hash{head.Hash(), other},
	})
}
