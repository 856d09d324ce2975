// Package git provides adapters for interacting with local Git repositories.
// This package implements the domain.Repository interface using go-git/v5.
package git

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/MyCarrier-DevOps/release-stamp/internal/domain"
)

// Logger defines the logging interface for the git adapter.
// This interface enables dependency injection and testability.
type Logger interface {
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
}

// Locator implements domain.RepositoryLocator using go-git/v5.
type Locator struct {
	logger Logger
}

// NewLocator creates a Locator that logs through log.
func NewLocator(log Logger) *Locator {
	return &Locator{logger: log}
}

// Open returns the repository containing path, searching parent directories.
func (l *Locator) Open(_ context.Context, path string) (domain.Repository, error) {
	repo, err := NewGoGitRepository(path, l.logger)
	if err != nil {
		return nil, err
	}
	return repo, nil
}

// GoGitRepository implements domain.Repository using go-git/v5.
type GoGitRepository struct {
	repo   *git.Repository
	path   string
	logger Logger
}

// NewGoGitRepository opens the repository at or above path.
// Returns domain.ErrRepositoryNotFound if path is not inside a Git repository.
func NewGoGitRepository(path string, log Logger) (*GoGitRepository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", domain.ErrRepositoryNotFound, path)
		}
		return nil, fmt.Errorf("failed to open repository at %s: %w", path, err)
	}

	return &GoGitRepository{
		repo:   repo,
		path:   path,
		logger: log,
	}, nil
}

// Head returns the current HEAD. For a repository without commits the
// returned Head names the unborn branch and has an empty TipSHA.
func (r *GoGitRepository) Head(ctx context.Context) (*domain.Head, error) {
	head, err := r.repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return r.unbornHead(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}

	result := &domain.Head{
		TipSHA:     head.Hash().String(),
		IsDetached: !head.Name().IsBranch(),
	}

	if head.Name().IsBranch() {
		result.BranchName = head.Name().Short()
	} else {
		// HEAD is detached - warn but continue
		result.BranchName = domain.DetachedBranchName
		r.logger.Warn(ctx, "HEAD is detached; branch name unavailable", map[string]interface{}{
			"head_sha": result.TipSHA,
			"path":     r.path,
		})
	}

	return result, nil
}

// unbornHead describes HEAD of a repository that has no commits yet.
func (r *GoGitRepository) unbornHead(ctx context.Context) (*domain.Head, error) {
	ref, err := r.repo.Reference(plumbing.HEAD, false)
	if err != nil {
		return nil, fmt.Errorf("failed to read HEAD reference: %w", err)
	}

	r.logger.Debug(ctx, "HEAD has no commits", map[string]interface{}{
		"target": ref.Target().String(),
		"path":   r.path,
	})

	return &domain.Head{BranchName: ref.Target().Short()}, nil
}

// Tags returns every tag peeled to the commit it targets, sorted by tag name.
func (r *GoGitRepository) Tags(ctx context.Context) ([]domain.Tag, error) {
	iter, err := r.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer iter.Close()

	var tags []domain.Tag
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		// Check context for cancellation
		if err := ctx.Err(); err != nil {
			return err
		}

		target, err := r.peel(ref.Hash())
		if err != nil {
			return fmt.Errorf("failed to resolve tag %s: %w", ref.Name().Short(), err)
		}
		tags = append(tags, domain.Tag{
			Name:      ref.Name().Short(),
			TargetSHA: target.String(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(tags, func(i, j int) bool {
		return tags[i].Name < tags[j].Name
	})

	r.logger.Debug(ctx, "listed tags", map[string]interface{}{
		"tags_found": len(tags),
	})

	return tags, nil
}

// peel follows annotated tag objects until it reaches a non-tag object.
func (r *GoGitRepository) peel(hash plumbing.Hash) (plumbing.Hash, error) {
	for {
		tag, err := r.repo.TagObject(hash)
		if errors.Is(err, plumbing.ErrObjectNotFound) {
			return hash, nil
		}
		if err != nil {
			return plumbing.ZeroHash, err
		}
		hash = tag.Target
	}
}

// Status classifies the paths reported by the worktree status.
// A bare repository has no working tree and reports a clean status.
func (r *GoGitRepository) Status(ctx context.Context) (*domain.WorkingTreeStatus, error) {
	wt, err := r.repo.Worktree()
	if errors.Is(err, git.ErrIsBareRepository) {
		return &domain.WorkingTreeStatus{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open worktree: %w", err)
	}

	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to compute worktree status: %w", err)
	}

	tree, err := r.headTree()
	if err != nil {
		return nil, err
	}
	inHead := func(path string) bool {
		if tree == nil {
			return false
		}
		_, err := tree.File(path)
		return err == nil
	}

	paths := make([]string, 0, len(status))
	for path := range status {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	result := &domain.WorkingTreeStatus{}
	for _, path := range paths {
		classify(result, path, status[path], inHead)
	}

	r.logger.Debug(ctx, "computed worktree status", map[string]interface{}{
		"added":     len(result.Added),
		"missing":   len(result.Missing),
		"modified":  len(result.Modified),
		"removed":   len(result.Removed),
		"staged":    len(result.Staged),
		"renamed":   len(result.Renamed),
		"untracked": len(result.Untracked),
	})

	return result, nil
}

// headTree returns the tree of the HEAD commit, or nil when HEAD is unborn.
func (r *GoGitRepository) headTree() (*object.Tree, error) {
	ref, err := r.repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve HEAD: %w", err)
	}

	commit, err := r.repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to load HEAD commit %s: %w", ref.Hash(), err)
	}

	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to load HEAD tree: %w", err)
	}
	return tree, nil
}

// classify records path in the categories matching its index and worktree codes.
// go-git reports a path dropped from the index but kept on disk as untracked
// in both columns; inHead tells such a path apart from a new file.
func classify(result *domain.WorkingTreeStatus, path string, fs *git.FileStatus, inHead func(string) bool) {
	if fs.Staging == git.Untracked || fs.Worktree == git.Untracked {
		if fs.Staging == git.Untracked && inHead(path) {
			result.Removed = append(result.Removed, path)
		}
		result.Untracked = append(result.Untracked, path)
		return
	}

	switch fs.Staging {
	case git.Added:
		result.Added = append(result.Added, path)
	case git.Modified, git.Copied:
		result.Staged = append(result.Staged, path)
	case git.Deleted:
		result.Removed = append(result.Removed, path)
	case git.Renamed:
		result.Renamed = append(result.Renamed, path)
	}

	switch fs.Worktree {
	case git.Modified, git.UpdatedButUnmerged:
		result.Modified = append(result.Modified, path)
	case git.Deleted:
		result.Missing = append(result.Missing, path)
	}
}

// RepositoryName returns owner/repo derived from the origin remote URL.
// Returns domain.ErrNoRemoteOrigin if no origin remote is configured.
func (r *GoGitRepository) RepositoryName(_ context.Context) (string, error) {
	remote, err := r.repo.Remote("origin")
	if err != nil {
		return "", fmt.Errorf("%w: failed to get origin remote: %w", domain.ErrNoRemoteOrigin, err)
	}

	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", fmt.Errorf("%w: origin remote has no URLs configured", domain.ErrNoRemoteOrigin)
	}

	repoName, err := parseRepoFromURL(urls[0])
	if err != nil {
		return "", fmt.Errorf("%w: failed to parse URL: %w", domain.ErrInvalidRemoteURL, err)
	}
	return repoName, nil
}

// Close releases any resources held by the repository.
// For go-git, this is a no-op as the repository doesn't hold persistent resources.
func (r *GoGitRepository) Close() error {
	return nil
}

// Regular expressions for parsing Git remote URLs.
var (
	// httpsURLPattern matches HTTPS URLs like:
	// https://github.com/owner/repo.git
	// https://github.com/owner/repo
	httpsURLPattern = regexp.MustCompile(`^https?://[^/]+/([^/]+)/([^/]+?)(?:\.git)?$`)

	// sshURLPattern matches SSH URLs like:
	// git@github.com:owner/repo.git
	// ssh://git@github.com/owner/repo.git
	sshURLPattern = regexp.MustCompile(`^(?:ssh://)?git@[^:/]+[:/]([^/]+)/([^/]+?)(?:\.git)?$`)
)

// parseRepoFromURL extracts owner/repo from a Git remote URL.
// Supports both HTTPS and SSH formats:
//   - https://github.com/owner/repo.git -> owner/repo
//   - git@github.com:owner/repo.git -> owner/repo
//   - ssh://git@github.com/owner/repo.git -> owner/repo
func parseRepoFromURL(url string) (string, error) {
	url = strings.TrimSpace(url)

	if matches := httpsURLPattern.FindStringSubmatch(url); len(matches) == 3 {
		return matches[1] + "/" + matches[2], nil
	}

	if matches := sshURLPattern.FindStringSubmatch(url); len(matches) == 3 {
		return matches[1] + "/" + matches[2], nil
	}

	return "", fmt.Errorf("unrecognized URL format: %s", url)
}
