// Package gitsource reads the commits and their changes straight from a Git repository.
// It serves the labeling approaches when the precomputed change records are not available.
package gitsource

import (
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	sivafs "github.com/cyraxred/go-billy-siva"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
	"github.com/go-git/go-git/v5/storage"
	"github.com/go-git/go-git/v5/storage/filesystem"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
)

var sshRemote = regexp.MustCompile(`^[A-Za-z]\w*@[A-Za-z0-9][\w.]*:`)

// IsRemote returns true if the URI must be cloned.
func IsRemote(uri string) bool {
	return strings.Contains(uri, "://") || sshRemote.MatchString(uri)
}

// LoadSSHIdentity reads the private key for the SSH remotes.
func LoadSSHIdentity(sshIdentity string) (*ssh.PublicKeys, error) {
	actual, err := homedir.Expand(sshIdentity)
	if err != nil {
		return nil, err
	}
	return ssh.NewPublicKeysFromFile("git", actual, "")
}

// ProgressWriter splits the output data by lines and outputs one on top of another using '\r'.
type ProgressWriter struct {
	Writer io.Writer
}

func (writer ProgressWriter) Write(p []byte) (n int, err error) {
	strp := strings.TrimSpace(string(p))
	if strings.HasSuffix(strp, "done.") || len(strp) == 0 {
		strp = "cloning..."
	} else {
		strp = strings.Replace(strp, "\n", "\033[2K\r", -1)
	}
	_, err = writer.Writer.Write([]byte("\033[2K\r"))
	if err != nil {
		return
	}
	_, err = writer.Writer.Write([]byte(strp))
	return len(p), err
}

// Open clones a remote repository (into cachePath if it is not empty, otherwise into memory),
// opens a .siva archive or a local repository. progress receives the clone status, may be nil.
func Open(uri string, cachePath string, sshIdentity string, progress io.Writer) (*git.Repository, error) {
	var repository *git.Repository
	var err error
	if IsRemote(uri) {
		var backend storage.Storer
		if cachePath != "" {
			if cachePath, err = homedir.Expand(cachePath); err != nil {
				return nil, err
			}
			if _, err = os.Stat(cachePath); !os.IsNotExist(err) {
				if err = os.RemoveAll(cachePath); err != nil {
					return nil, errors.Wrapf(err, "cleaning %s", cachePath)
				}
			}
			backend = filesystem.NewStorage(osfs.New(cachePath), cache.NewObjectLRUDefault())
		} else {
			backend = memory.NewStorage()
		}
		cloneOptions := &git.CloneOptions{URL: uri}
		if progress != nil {
			cloneOptions.Progress = ProgressWriter{Writer: progress}
		}
		if sshIdentity != "" {
			auth, err := LoadSSHIdentity(sshIdentity)
			if err != nil {
				return nil, errors.Wrapf(err, "loading the SSH identity %s", sshIdentity)
			}
			cloneOptions.Auth = auth
		}
		repository, err = git.Clone(backend, nil, cloneOptions)
	} else if stat, statErr := os.Stat(uri); statErr == nil && !stat.IsDir() {
		localFs := osfs.New(filepath.Dir(uri))
		tmpFs := memfs.New()
		fs, sivaErr := sivafs.NewFilesystem(localFs, filepath.Base(uri), tmpFs)
		if sivaErr != nil {
			return nil, errors.Wrapf(sivaErr, "unable to create a siva filesystem from %s", uri)
		}
		sivaStorage := filesystem.NewStorage(fs, cache.NewObjectLRUDefault())
		repository, err = git.Open(sivaStorage, tmpFs)
	} else {
		uri = strings.TrimSuffix(uri, string(os.PathSeparator))
		repository, err = git.PlainOpen(uri)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", uri)
	}
	return repository, nil
}
