package usecases

import (
	"context"

	"github.com/MyCarrier-DevOps/release-stamp/internal/domain"
)

// mockLogger implements the Logger interface for testing.
type mockLogger struct {
	warnings []string
}

func (m *mockLogger) Info(_ context.Context, _ string, _ map[string]interface{})  {}
func (m *mockLogger) Debug(_ context.Context, _ string, _ map[string]interface{}) {}
func (m *mockLogger) Warn(_ context.Context, msg string, _ map[string]interface{}) {
	m.warnings = append(m.warnings, msg)
}
func (m *mockLogger) Error(_ context.Context, _ string, _ error, _ map[string]interface{}) {}

// mockRepository implements domain.Repository for testing.
type mockRepository struct {
	head        *domain.Head
	headErr     error
	tags        []domain.Tag
	tagsErr     error
	status      *domain.WorkingTreeStatus
	nilStatus   bool
	statusErr   error
	repoName    string
	repoNameErr error
	closeErr    error
	closeCalled bool
}

func (m *mockRepository) Head(_ context.Context) (*domain.Head, error) {
	return m.head, m.headErr
}

func (m *mockRepository) Tags(_ context.Context) ([]domain.Tag, error) {
	return m.tags, m.tagsErr
}

func (m *mockRepository) Status(_ context.Context) (*domain.WorkingTreeStatus, error) {
	if m.statusErr != nil {
		return nil, m.statusErr
	}
	if m.nilStatus {
		return nil, nil
	}
	if m.status == nil {
		return &domain.WorkingTreeStatus{}, nil
	}
	return m.status, nil
}

func (m *mockRepository) RepositoryName(_ context.Context) (string, error) {
	return m.repoName, m.repoNameErr
}

func (m *mockRepository) Close() error {
	m.closeCalled = true
	return m.closeErr
}

// mockLocator implements domain.RepositoryLocator for testing.
type mockLocator struct {
	repo     *mockRepository
	err      error
	openPath string
}

func (m *mockLocator) Open(_ context.Context, path string) (domain.Repository, error) {
	m.openPath = path
	if m.err != nil {
		return nil, m.err
	}
	return m.repo, nil
}

// mapParser implements domain.VersionParser from a fixed table of tag names.
type mapParser map[string]domain.TagVersion

func (p mapParser) Parse(name string) domain.TagVersion {
	return p[name]
}

// fixedIdentity implements domain.IdentitySource for testing.
type fixedIdentity domain.Identity

func (f fixedIdentity) Identity() domain.Identity {
	return domain.Identity(f)
}

// mockSlipFinder implements domain.SlipFinder for testing.
type mockSlipFinder struct {
	slip       *domain.Slip
	findErr    error
	repository string
	commits    []string
	calls      int
}

func (m *mockSlipFinder) FindByCommits(_ context.Context, repository string, commits []string) (*domain.Slip, string, error) {
	m.calls++
	m.repository = repository
	m.commits = commits
	if m.findErr != nil {
		return nil, "", m.findErr
	}
	if m.slip == nil {
		return nil, "", nil
	}
	return m.slip, commits[0], nil
}

func (m *mockSlipFinder) Close() error {
	return nil
}

var (
	v120 = domain.NewTagVersion("v1.2.0", "1.2.0", 1, 2, 0, "", "release/v1.2")
	v130 = domain.NewTagVersion("v1.3.0-rc.1", "1.3.0-rc.1", 1, 3, 0, "rc.1", "release/v1.3-rc")

	testParser = mapParser{
		"v1.2.0":      v120,
		"v1.3.0-rc.1": v130,
	}
)
