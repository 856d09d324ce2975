// Package domain defines the core business entities and interfaces for release-stamp.
// This package contains no external dependencies and represents the innermost layer
// of the CLEAN architecture.
package domain

import (
	"context"
	"errors"
)

// Domain errors for repository access and snapshot construction.
var (
	// ErrRepositoryNotFound indicates no Git repository exists at or above the given path.
	ErrRepositoryNotFound = errors.New("git repository not found at specified path")

	// ErrInvalidReleaseTag indicates a snapshot was requested from a version that is not valid.
	ErrInvalidReleaseTag = errors.New("release tag is not a valid version")

	// ErrNoRemoteOrigin indicates no 'origin' remote is configured in the repository.
	ErrNoRemoteOrigin = errors.New("no 'origin' remote configured; cannot determine repository name")

	// ErrInvalidRemoteURL indicates the remote URL could not be parsed to extract owner/repo.
	ErrInvalidRemoteURL = errors.New("could not parse repository name from remote URL")

	// ErrUnknownFormat indicates an unsupported output format was requested.
	ErrUnknownFormat = errors.New("unknown output format")
)

// Repository is a read-only handle on a local Git repository.
type Repository interface {
	// Head returns the current HEAD. A repository without commits returns
	// a Head whose TipSHA is empty and no error. A nil Head is treated the same way.
	Head(ctx context.Context) (*Head, error)

	// Tags returns every tag in enumeration order, peeled to commits.
	Tags(ctx context.Context) ([]Tag, error)

	// Status classifies working tree and index paths. A nil status is treated as clean.
	Status(ctx context.Context) (*WorkingTreeStatus, error)

	// RepositoryName returns owner/repo derived from the 'origin' remote.
	// Returns ErrNoRemoteOrigin if no origin remote is configured.
	RepositoryName(ctx context.Context) (string, error)

	// Close releases any resources held by the repository.
	Close() error
}

// RepositoryLocator opens the repository containing a path.
type RepositoryLocator interface {
	// Open returns the repository at or above path.
	// Returns ErrRepositoryNotFound if there is none.
	Open(ctx context.Context, path string) (Repository, error)
}

// VersionParser turns tag names into versions.
type VersionParser interface {
	// Parse returns the version denoted by name, or the invalid marker.
	Parse(name string) TagVersion
}

// IdentitySource provides the identity facts of the current process.
type IdentitySource interface {
	Identity() Identity
}

// SlipFinder queries the slip store to find slips by commit.
type SlipFinder interface {
	// FindByCommits searches for a slip matching any of the given commits.
	// Returns (nil, "", nil) if no matching slip is found.
	FindByCommits(ctx context.Context, repository string, commits []string) (*Slip, string, error)

	// Close releases any resources held by the finder.
	Close() error
}

// Slip represents a routing slip found in the store.
type Slip struct {
	// CorrelationID is the unique identifier for the slip.
	CorrelationID string
}

// OutputWriter writes a stamp to an output destination.
type OutputWriter interface {
	WriteStamp(stamp Stamp) error
}
