// Package usecases contains the application business logic.
// This package orchestrates domain entities and interfaces to fulfill use cases.
package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/MyCarrier-DevOps/release-stamp/internal/domain"
)

// Logger defines the logging interface required by the use cases.
// This abstracts the logger dependency to avoid coupling to a specific implementation.
type Logger interface {
	Info(ctx context.Context, msg string, fields map[string]interface{})
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
	Error(ctx context.Context, msg string, err error, fields map[string]interface{})
}

// SnapshotBuilder computes release-state snapshots of working trees.
type SnapshotBuilder struct {
	locator  domain.RepositoryLocator
	parser   domain.VersionParser
	identity domain.IdentitySource
	logger   Logger
}

// NewSnapshotBuilder creates a new SnapshotBuilder with the given dependencies.
func NewSnapshotBuilder(
	locator domain.RepositoryLocator,
	parser domain.VersionParser,
	identity domain.IdentitySource,
	log Logger,
) *SnapshotBuilder {
	return &SnapshotBuilder{
		locator:  locator,
		parser:   parser,
		identity: identity,
		logger:   log,
	}
}

// FromPath opens the repository containing path and snapshots it.
// A missing repository yields an unavailable snapshot, not an error.
// The repository handle is closed before FromPath returns.
func (b *SnapshotBuilder) FromPath(ctx context.Context, path string) (*domain.Snapshot, error) {
	repo, err := b.locator.Open(ctx, path)
	if err != nil {
		if errors.Is(err, domain.ErrRepositoryNotFound) {
			b.logger.Warn(ctx, "no git repository found", map[string]interface{}{
				"path": path,
			})
			return b.FromRepository(ctx, nil)
		}
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			b.logger.Warn(ctx, "failed to close git repository", map[string]interface{}{
				"error": closeErr.Error(),
				"path":  path,
			})
		}
	}()

	return b.FromRepository(ctx, repo)
}

// FromRepository snapshots repo. A nil repo or a repository without commits
// yields an unavailable snapshot. Errors are returned only when reading
// repository state fails.
func (b *SnapshotBuilder) FromRepository(ctx context.Context, repo domain.Repository) (*domain.Snapshot, error) {
	userName := ResolveUserName(b.identity.Identity())

	if repo == nil {
		return domain.NewUnavailableSnapshot(domain.NoRepositoryMessage, userName), nil
	}

	head, err := repo.Head(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read HEAD: %w", err)
	}
	if head == nil || !head.HasTip() {
		b.logger.Warn(ctx, "repository has no commits", nil)
		return domain.NewUnavailableSnapshot(domain.UninitializedRepositoryMessage, userName), nil
	}

	status, err := repo.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read working tree status: %w", err)
	}
	if status == nil {
		status = &domain.WorkingTreeStatus{}
	}

	tags, err := repo.Tags(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}

	releasedTag := ResolveReleaseTag(tags, head.TipSHA, b.parser)
	branchName := head.BranchName
	if releasedTag.IsValid() {
		branchName = releasedTag.BranchName
	}

	repoName, err := repo.RepositoryName(ctx)
	if err != nil {
		b.logger.Debug(ctx, "repository name unavailable", map[string]interface{}{
			"error": err.Error(),
		})
		repoName = ""
	}

	b.logger.Debug(ctx, "resolved release state", map[string]interface{}{
		"commit_sha":   head.TipSHA,
		"branch":       branchName,
		"is_detached":  head.IsDetached,
		"released_tag": releasedTag.Tag,
		"tags_scanned": len(tags),
	})

	return domain.NewSnapshot(domain.RepositoryState{
		CommitSHA:      head.TipSHA,
		IsDirty:        IsDirty(*status),
		ReleasedTag:    releasedTag,
		BranchName:     branchName,
		RepositoryName: repoName,
	}, userName), nil
}

// FromRelease builds a snapshot from an already parsed release version
// without touching any repository. commitSHA is recorded as given.
// Returns domain.ErrInvalidReleaseTag if tag is not valid.
func (b *SnapshotBuilder) FromRelease(tag domain.TagVersion, commitSHA string) (*domain.Snapshot, error) {
	if !tag.IsValid() {
		return nil, domain.ErrInvalidReleaseTag
	}
	return domain.NewSnapshot(domain.RepositoryState{
		CommitSHA:   commitSHA,
		ReleasedTag: tag,
		BranchName:  tag.BranchName,
	}, ResolveUserName(b.identity.Identity())), nil
}
