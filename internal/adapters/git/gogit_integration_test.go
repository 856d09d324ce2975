package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MyCarrier-DevOps/release-stamp/internal/adapters/version"
	"github.com/MyCarrier-DevOps/release-stamp/internal/domain"
	"github.com/MyCarrier-DevOps/release-stamp/internal/usecases"
)

// testLogger is a minimal logger for testing that doesn't output anything.
type testLogger struct{}

func (l *testLogger) Info(_ context.Context, _ string, _ map[string]interface{})           {}
func (l *testLogger) Debug(_ context.Context, _ string, _ map[string]interface{})          {}
func (l *testLogger) Warn(_ context.Context, _ string, _ map[string]interface{})           {}
func (l *testLogger) Error(_ context.Context, _ string, _ error, _ map[string]interface{}) {}

// testIdentity is a fixed identity source.
type testIdentity struct{}

func (testIdentity) Identity() domain.Identity {
	return domain.Identity{User: "builder"}
}

// initRepo creates an empty repository on branch main in a temporary directory.
func initRepo(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	runGit(t, dir, "init")
	runGit(t, dir, "symbolic-ref", "HEAD", "refs/heads/main")
	runGit(t, dir, "config", "user.email", "test@example.com")
	runGit(t, dir, "config", "user.name", "Test User")
	runGit(t, dir, "config", "commit.gpgsign", "false")
	runGit(t, dir, "config", "tag.gpgsign", "false")
	return dir
}

// setupTestRepo creates a repository with one commit and an origin remote.
func setupTestRepo(t *testing.T) string {
	t.Helper()

	dir := initRepo(t)
	writeFile(t, dir, "test.txt", "initial content")
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-m", "Initial commit")
	runGit(t, dir, "remote", "add", "origin", "https://github.com/TestOrg/test-repo.git")
	return dir
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

// runGit executes a git command in the given directory.
func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v failed: %v\nOutput: %s", args, err, output)
	}
}

// getGitOutput runs a git command and returns its trimmed stdout.
func getGitOutput(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	output, err := cmd.Output()
	require.NoError(t, err, "git %v failed", args)
	return strings.TrimSpace(string(output))
}

func openTestRepo(t *testing.T, dir string) *GoGitRepository {
	t.Helper()
	repo, err := NewGoGitRepository(dir, &testLogger{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestNewGoGitRepository_Success(t *testing.T) {
	repoPath := setupTestRepo(t)

	repo, err := NewGoGitRepository(repoPath, &testLogger{})

	require.NoError(t, err)
	require.NotNil(t, repo)
	assert.Equal(t, repoPath, repo.path)
	require.NoError(t, repo.Close())
}

func TestNewGoGitRepository_Subdirectory(t *testing.T) {
	repoPath := setupTestRepo(t)
	sub := filepath.Join(repoPath, "nested", "dir")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	repo := openTestRepo(t, sub)
	head, err := repo.Head(context.Background())

	require.NoError(t, err)
	assert.Equal(t, getGitOutput(t, repoPath, "rev-parse", "HEAD"), head.TipSHA)
}

func TestNewGoGitRepository_NotARepository(t *testing.T) {
	tmpDir := t.TempDir()

	repo, err := NewGoGitRepository(tmpDir, &testLogger{})

	require.Error(t, err)
	assert.Nil(t, repo)
	assert.ErrorIs(t, err, domain.ErrRepositoryNotFound)
}

func TestLocator_Open_NotARepository(t *testing.T) {
	locator := NewLocator(&testLogger{})

	repo, err := locator.Open(context.Background(), t.TempDir())

	assert.Nil(t, repo)
	assert.ErrorIs(t, err, domain.ErrRepositoryNotFound)
}

func TestGoGitRepository_Head_Branch(t *testing.T) {
	repoPath := setupTestRepo(t)
	repo := openTestRepo(t, repoPath)

	head, err := repo.Head(context.Background())

	require.NoError(t, err)
	assert.Len(t, head.TipSHA, 40)
	assert.Equal(t, "main", head.BranchName)
	assert.False(t, head.IsDetached)
	assert.True(t, head.HasTip())
}

func TestGoGitRepository_Head_Detached(t *testing.T) {
	repoPath := setupTestRepo(t)
	writeFile(t, repoPath, "test.txt", "modified content")
	runGit(t, repoPath, "commit", "-am", "Second commit")
	firstCommit := getGitOutput(t, repoPath, "rev-parse", "HEAD~1")
	runGit(t, repoPath, "checkout", firstCommit)

	repo := openTestRepo(t, repoPath)
	head, err := repo.Head(context.Background())

	require.NoError(t, err)
	assert.True(t, head.IsDetached)
	assert.Equal(t, domain.DetachedBranchName, head.BranchName)
	assert.Equal(t, firstCommit, head.TipSHA)
}

func TestGoGitRepository_Head_Unborn(t *testing.T) {
	repoPath := initRepo(t)
	repo := openTestRepo(t, repoPath)

	head, err := repo.Head(context.Background())

	require.NoError(t, err)
	assert.False(t, head.HasTip())
	assert.Equal(t, "main", head.BranchName)
}

func TestGoGitRepository_Tags(t *testing.T) {
	repoPath := setupTestRepo(t)
	first := getGitOutput(t, repoPath, "rev-parse", "HEAD")
	runGit(t, repoPath, "tag", "v1.0.0")
	writeFile(t, repoPath, "test.txt", "second")
	runGit(t, repoPath, "commit", "-am", "Second commit")
	second := getGitOutput(t, repoPath, "rev-parse", "HEAD")
	runGit(t, repoPath, "tag", "-a", "v1.1.0", "-m", "Release 1.1.0")
	runGit(t, repoPath, "tag", "-a", "alpha-build", "-m", "not a version")

	repo := openTestRepo(t, repoPath)
	tags, err := repo.Tags(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []domain.Tag{
		{Name: "alpha-build", TargetSHA: second},
		{Name: "v1.0.0", TargetSHA: first},
		{Name: "v1.1.0", TargetSHA: second},
	}, tags)
}

func TestGoGitRepository_Tags_ContextCancellation(t *testing.T) {
	repoPath := setupTestRepo(t)
	runGit(t, repoPath, "tag", "v1.0.0")
	repo := openTestRepo(t, repoPath)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tags, err := repo.Tags(ctx)

	require.Error(t, err)
	assert.Nil(t, tags)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGoGitRepository_Status_Clean(t *testing.T) {
	repoPath := setupTestRepo(t)
	repo := openTestRepo(t, repoPath)

	status, err := repo.Status(context.Background())

	require.NoError(t, err)
	assert.False(t, usecases.IsDirty(*status))
}

func TestGoGitRepository_Status_Categories(t *testing.T) {
	repoPath := setupTestRepo(t)
	writeFile(t, repoPath, "staged.txt", "v1")
	writeFile(t, repoPath, "removed.txt", "v1")
	writeFile(t, repoPath, "missing.txt", "v1")
	runGit(t, repoPath, "add", ".")
	runGit(t, repoPath, "commit", "-m", "More files")

	writeFile(t, repoPath, "test.txt", "changed in worktree")
	writeFile(t, repoPath, "staged.txt", "v2")
	runGit(t, repoPath, "add", "staged.txt")
	writeFile(t, repoPath, "added.txt", "new")
	runGit(t, repoPath, "add", "added.txt")
	runGit(t, repoPath, "rm", "-q", "removed.txt")
	require.NoError(t, os.Remove(filepath.Join(repoPath, "missing.txt")))
	writeFile(t, repoPath, "untracked.txt", "scratch")

	repo := openTestRepo(t, repoPath)
	status, err := repo.Status(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"added.txt"}, status.Added)
	assert.Equal(t, []string{"staged.txt"}, status.Staged)
	assert.Equal(t, []string{"removed.txt"}, status.Removed)
	assert.Equal(t, []string{"missing.txt"}, status.Missing)
	assert.Equal(t, []string{"test.txt"}, status.Modified)
	assert.Equal(t, []string{"untracked.txt"}, status.Untracked)
	assert.True(t, usecases.IsDirty(*status))
}

func TestGoGitRepository_Status_RemovedFromIndexKeptOnDisk(t *testing.T) {
	repoPath := setupTestRepo(t)
	writeFile(t, repoPath, "kept.txt", "v1")
	runGit(t, repoPath, "add", "kept.txt")
	runGit(t, repoPath, "commit", "-m", "Add kept file")
	runGit(t, repoPath, "rm", "-q", "--cached", "kept.txt")

	repo := openTestRepo(t, repoPath)
	status, err := repo.Status(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"kept.txt"}, status.Removed)
	assert.Equal(t, []string{"kept.txt"}, status.Untracked)
	assert.True(t, usecases.IsDirty(*status))
}

func TestGoGitRepository_Status_UntrackedOnlyIsClean(t *testing.T) {
	repoPath := setupTestRepo(t)
	writeFile(t, repoPath, "scratch.txt", "scratch")
	repo := openTestRepo(t, repoPath)

	status, err := repo.Status(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"scratch.txt"}, status.Untracked)
	assert.False(t, usecases.IsDirty(*status))
}

func TestGoGitRepository_RepositoryName(t *testing.T) {
	repoPath := setupTestRepo(t)
	repo := openTestRepo(t, repoPath)

	name, err := repo.RepositoryName(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "TestOrg/test-repo", name)
}

func TestGoGitRepository_RepositoryName_NoOrigin(t *testing.T) {
	repoPath := initRepo(t)
	repo := openTestRepo(t, repoPath)

	name, err := repo.RepositoryName(context.Background())

	require.Error(t, err)
	assert.Empty(t, name)
	assert.ErrorIs(t, err, domain.ErrNoRemoteOrigin)
}

func newIntegrationBuilder() *usecases.SnapshotBuilder {
	return usecases.NewSnapshotBuilder(
		NewLocator(&testLogger{}),
		version.NewParser(),
		testIdentity{},
		&testLogger{},
	)
}

func TestSnapshot_TaggedCleanHead(t *testing.T) {
	repoPath := setupTestRepo(t)
	runGit(t, repoPath, "tag", "v1.2.0")
	head := getGitOutput(t, repoPath, "rev-parse", "HEAD")

	snapshot, err := newIntegrationBuilder().FromPath(context.Background(), repoPath)

	require.NoError(t, err)
	sha, ok := snapshot.CommitSHA()
	assert.True(t, ok)
	assert.Equal(t, head, sha)
	assert.False(t, snapshot.IsDirty())
	assert.True(t, snapshot.ReleasedTag().IsValid())
	assert.Equal(t, "1.2.0", snapshot.ReleasedTag().Version)
	assert.Equal(t, "release/v1.2", snapshot.BranchName())
	assert.Equal(t, "TestOrg/test-repo", snapshot.RepositoryName())
	assert.Equal(t, "builder", snapshot.UserName())
}

func TestSnapshot_UntaggedDirtyFeatureBranch(t *testing.T) {
	repoPath := setupTestRepo(t)
	runGit(t, repoPath, "tag", "v1.2.0")
	runGit(t, repoPath, "checkout", "-q", "-b", "feature/x")
	writeFile(t, repoPath, "test.txt", "feature work")
	runGit(t, repoPath, "commit", "-am", "Feature commit")
	writeFile(t, repoPath, "test.txt", "uncommitted")

	snapshot, err := newIntegrationBuilder().FromPath(context.Background(), repoPath)

	require.NoError(t, err)
	assert.Empty(t, snapshot.RepositoryError())
	assert.True(t, snapshot.IsDirty())
	assert.False(t, snapshot.ReleasedTag().IsValid())
	assert.Equal(t, "feature/x", snapshot.BranchName())
}

func TestSnapshot_UninitializedRepository(t *testing.T) {
	repoPath := initRepo(t)

	snapshot, err := newIntegrationBuilder().FromPath(context.Background(), repoPath)

	require.NoError(t, err)
	assert.Equal(t, domain.UninitializedRepositoryMessage, snapshot.RepositoryError())
	_, ok := snapshot.CommitSHA()
	assert.False(t, ok)
}

func TestSnapshot_NoRepository(t *testing.T) {
	snapshot, err := newIntegrationBuilder().FromPath(context.Background(), t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, domain.NoRepositoryMessage, snapshot.RepositoryError())
	assert.Equal(t, "builder", snapshot.UserName())
}
