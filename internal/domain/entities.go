// Package domain defines the core business entities and interfaces for release-stamp.
package domain

// Repository error messages recorded in a Snapshot when no provenance is available.
const (
	// NoRepositoryMessage is recorded when no repository could be located.
	NoRepositoryMessage = "No repository."

	// UninitializedRepositoryMessage is recorded when HEAD has no tip commit.
	UninitializedRepositoryMessage = "Uninitialized repository."

	// DetachedBranchName is reported as the branch name when HEAD is detached.
	DetachedBranchName = "(no branch)"
)

// TagVersion is a release version parsed from a tag name.
// The zero value is the "not a release" marker.
type TagVersion struct {
	// Tag is the tag name the version was parsed from.
	Tag string

	// Version is the normalized version text without a leading "v".
	Version string

	Major uint64
	Minor uint64
	Patch uint64

	// Prerelease is the prerelease part of the version (empty for stable releases).
	Prerelease string

	// BranchName is the branch label derived from the version structure.
	BranchName string

	valid bool
}

// NewTagVersion returns a valid TagVersion. Parsers call this once the tag
// name has been accepted.
func NewTagVersion(tag, version string, major, minor, patch uint64, prerelease, branchName string) TagVersion {
	return TagVersion{
		Tag:        tag,
		Version:    version,
		Major:      major,
		Minor:      minor,
		Patch:      patch,
		Prerelease: prerelease,
		BranchName: branchName,
		valid:      true,
	}
}

// IsValid reports whether the version denotes a release.
func (v TagVersion) IsValid() bool {
	return v.valid
}

// IsPrerelease reports whether the version is a valid prerelease.
func (v TagVersion) IsPrerelease() bool {
	return v.valid && v.Prerelease != ""
}

// Head describes the current HEAD reference of a repository.
type Head struct {
	// BranchName is the short name of the checked-out branch,
	// or DetachedBranchName when HEAD is detached.
	BranchName string

	// TipSHA is the full commit SHA HEAD points at.
	// Empty when the repository has no commits yet.
	TipSHA string

	// IsDetached indicates HEAD does not point at a branch.
	IsDetached bool
}

// HasTip reports whether HEAD resolves to a commit.
func (h Head) HasTip() bool {
	return h.TipSHA != ""
}

// Tag is a tag reference peeled to the commit it targets.
type Tag struct {
	// Name is the short tag name (e.g. "v1.2.0").
	Name string

	// TargetSHA is the SHA of the commit the tag points at.
	TargetSHA string
}

// WorkingTreeStatus groups working tree and index paths by change category.
type WorkingTreeStatus struct {
	// Added holds paths newly added to the index.
	Added []string

	// Missing holds tracked paths deleted from the working tree but not the index.
	Missing []string

	// Modified holds paths modified in the working tree.
	Modified []string

	// Removed holds paths deleted in the index.
	Removed []string

	// Staged holds paths with modifications staged in the index.
	Staged []string

	// Renamed and Untracked are reported but do not make the tree dirty.
	Renamed   []string
	Untracked []string
}

// Identity holds the process identity facts used to attribute a snapshot.
type Identity struct {
	Domain string
	User   string
}

// RepositoryState is the repository-derived part of a Snapshot.
type RepositoryState struct {
	// CommitSHA is the head commit SHA. For snapshots built from an explicit
	// release it is whatever the caller supplied and may be empty.
	CommitSHA string

	IsDirty     bool
	ReleasedTag TagVersion
	BranchName  string

	// RepositoryName is owner/repo from the origin remote, empty if unknown.
	RepositoryName string
}

// Snapshot is the immutable release state of a working tree at one instant.
type Snapshot struct {
	repositoryError string
	state           *RepositoryState
	userName        string
}

// NewUnavailableSnapshot returns a Snapshot recording why no repository state is available.
func NewUnavailableSnapshot(reason, userName string) *Snapshot {
	return &Snapshot{repositoryError: reason, userName: userName}
}

// NewSnapshot returns a Snapshot holding the given repository state.
func NewSnapshot(state RepositoryState, userName string) *Snapshot {
	return &Snapshot{state: &state, userName: userName}
}

// RepositoryError returns the reason no repository state is available,
// or an empty string when it is.
func (s *Snapshot) RepositoryError() string {
	return s.repositoryError
}

// Available reports whether the snapshot carries repository state.
func (s *Snapshot) Available() bool {
	return s.state != nil
}

// IsDirty reports whether the working tree had uncommitted changes.
func (s *Snapshot) IsDirty() bool {
	return s.state != nil && s.state.IsDirty
}

// ReleasedTag returns the release version of the commit, or the invalid marker.
func (s *Snapshot) ReleasedTag() TagVersion {
	if s.state == nil {
		return TagVersion{}
	}
	return s.state.ReleasedTag
}

// BranchName returns the branch attributed to the build.
func (s *Snapshot) BranchName() string {
	if s.state == nil {
		return ""
	}
	return s.state.BranchName
}

// CommitSHA returns the commit SHA and whether one is present.
func (s *Snapshot) CommitSHA() (string, bool) {
	if s.state == nil || s.state.CommitSHA == "" {
		return "", false
	}
	return s.state.CommitSHA, true
}

// RepositoryName returns owner/repo from the origin remote, if known.
func (s *Snapshot) RepositoryName() string {
	if s.state == nil {
		return ""
	}
	return s.state.RepositoryName
}

// UserName returns the identity that produced the snapshot.
func (s *Snapshot) UserName() string {
	return s.userName
}

// Stamp is the flattened provenance record written by output writers.
type Stamp struct {
	RepositoryError string `json:"repository_error,omitempty" yaml:"repository_error,omitempty"`
	IsDirty         bool   `json:"is_dirty" yaml:"is_dirty"`
	Version         string `json:"version,omitempty" yaml:"version,omitempty"`
	ReleasedTag     string `json:"released_tag,omitempty" yaml:"released_tag,omitempty"`
	IsRelease       bool   `json:"is_release" yaml:"is_release"`
	BranchName      string `json:"branch_name,omitempty" yaml:"branch_name,omitempty"`
	CommitSHA       string `json:"commit_sha,omitempty" yaml:"commit_sha,omitempty"`
	Repository      string `json:"repository,omitempty" yaml:"repository,omitempty"`
	UserName        string `json:"user_name" yaml:"user_name"`
	CorrelationID   string `json:"correlation_id,omitempty" yaml:"correlation_id,omitempty"`
}

// Stamp flattens the snapshot into a Stamp.
func (s *Snapshot) Stamp() Stamp {
	tag := s.ReleasedTag()
	sha, _ := s.CommitSHA()
	return Stamp{
		RepositoryError: s.repositoryError,
		IsDirty:         s.IsDirty(),
		Version:         tag.Version,
		ReleasedTag:     tag.Tag,
		IsRelease:       tag.IsValid(),
		BranchName:      s.BranchName(),
		CommitSHA:       sha,
		Repository:      s.RepositoryName(),
		UserName:        s.userName,
	}
}
