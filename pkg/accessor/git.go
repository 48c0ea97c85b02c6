// SPDX-License-Identifier: MPL-2.0

package accessor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
	"github.com/go-git/go-git/v5/storage/memory"

	"github.com/invowk/need/pkg/modpath"
)

// Git reads module content from the tree of a single commit. The module
// root "/" is the repository root.
type Git struct {
	tree    *object.Tree
	commit  plumbing.Hash
	maxSize int64
}

// NewGit creates an accessor over the tree of rev in repo. rev accepts
// anything go-git can resolve: "HEAD", branch and tag names, or a hash.
func NewGit(repo *git.Repository, rev string) (*Git, error) {
	if rev == "" {
		rev = plumbing.HEAD.String()
	}

	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve revision %q: %w", rev, err)
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("failed to read commit %s: %w", hash, err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to read tree of %s: %w", hash, err)
	}

	return &Git{tree: tree, commit: *hash, maxSize: DefaultMaxSize}, nil
}

// CloneGit clones gitURL into memory and returns an accessor over ref.
// An empty ref uses the remote HEAD; otherwise ref is tried as a branch and
// then as a tag.
func CloneGit(ctx context.Context, gitURL, ref string) (*Git, error) {
	refNames := []plumbing.ReferenceName{""}
	if ref != "" {
		refNames = []plumbing.ReferenceName{
			plumbing.NewBranchReferenceName(ref),
			plumbing.NewTagReferenceName(ref),
		}
	}

	ep, err := transport.NewEndpoint(gitURL)
	if err != nil {
		return nil, fmt.Errorf("invalid git URL %q: %w", gitURL, err)
	}
	depth := 1
	if ep.Protocol == "file" {
		// The local transport cannot serve shallow clones.
		depth = 0
	}

	var lastErr error
	for _, refName := range refNames {
		repo, err := git.CloneContext(ctx, memory.NewStorage(), nil, &git.CloneOptions{
			URL:           gitURL,
			Auth:          gitAuth(ep),
			ReferenceName: refName,
			SingleBranch:  true,
			Depth:         depth,
			Tags:          git.NoTags,
		})
		if err != nil {
			lastErr = err
			continue
		}
		return NewGit(repo, plumbing.HEAD.String())
	}

	return nil, fmt.Errorf("failed to clone %s: %w", gitURL, lastErr)
}

// Commit returns the hash of the commit being read.
func (g *Git) Commit() string { return g.commit.String() }

// Fetch returns the blob stored at path.
func (g *Git) Fetch(ctx context.Context, path modpath.Path) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := strings.TrimPrefix(path.String(), modpath.Separator)
	entry, err := g.tree.FindEntry(name)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	if !entry.Mode.IsFile() {
		return "", fmt.Errorf("%s: %w", path, ErrIsDirectory)
	}

	f, err := g.tree.File(name)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	if f.Size > g.maxSize {
		return "", tooLarge(path.String(), f.Size, g.maxSize)
	}
	return f.Contents()
}

// gitAuth picks credentials for ep: an SSH key from ~/.ssh for SSH URLs,
// a token from the environment for HTTP(S) URLs, nothing for local paths.
func gitAuth(ep *transport.Endpoint) transport.AuthMethod {
	switch ep.Protocol {
	case "ssh":
		return sshAuth(ep.User)
	case "http", "https":
		return tokenAuth()
	default:
		return nil
	}
}

func sshAuth(user string) transport.AuthMethod {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	if user == "" {
		user = "git"
	}

	for _, key := range []string{"id_ed25519", "id_rsa", "id_ecdsa"} {
		keyPath := filepath.Join(homeDir, ".ssh", key)
		if _, err := os.Stat(keyPath); err != nil {
			continue
		}
		if auth, err := ssh.NewPublicKeysFromFile(user, keyPath, ""); err == nil {
			return auth
		}
	}
	return nil
}

func tokenAuth() transport.AuthMethod {
	for _, src := range []struct{ env, user string }{
		{"GITHUB_TOKEN", "x-access-token"},
		{"GITLAB_TOKEN", "gitlab-ci-token"},
		{"GIT_TOKEN", "git"},
	} {
		if token := os.Getenv(src.env); token != "" {
			return &http.BasicAuth{Username: src.user, Password: token}
		}
	}
	return nil
}
