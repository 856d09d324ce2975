package usecases

import (
	"context"
	"fmt"

	"github.com/MyCarrier-DevOps/release-stamp/internal/domain"
)

// SlipAnnotator looks up the routing slip recorded for a snapshot's commit.
type SlipAnnotator struct {
	finder domain.SlipFinder
	logger Logger
}

// NewSlipAnnotator creates a new SlipAnnotator backed by finder.
func NewSlipAnnotator(finder domain.SlipFinder, log Logger) *SlipAnnotator {
	return &SlipAnnotator{finder: finder, logger: log}
}

// CorrelationID returns the correlation ID of the slip for the snapshot commit.
// It returns an empty string when the snapshot has no commit or repository
// name, or when no slip exists for the commit.
func (a *SlipAnnotator) CorrelationID(ctx context.Context, snapshot *domain.Snapshot) (string, error) {
	sha, ok := snapshot.CommitSHA()
	if !ok {
		a.logger.Warn(ctx, "skipping slip lookup: snapshot has no commit", map[string]interface{}{
			"repository_error": snapshot.RepositoryError(),
		})
		return "", nil
	}

	repository := snapshot.RepositoryName()
	if repository == "" {
		a.logger.Warn(ctx, "skipping slip lookup: repository name unknown", map[string]interface{}{
			"commit_sha": sha,
		})
		return "", nil
	}

	slip, _, err := a.finder.FindByCommits(ctx, repository, []string{sha})
	if err != nil {
		return "", fmt.Errorf("failed to find slip by commit: %w", err)
	}
	if slip == nil {
		a.logger.Info(ctx, "no slip recorded for commit", map[string]interface{}{
			"repository": repository,
			"commit_sha": sha,
		})
		return "", nil
	}

	a.logger.Debug(ctx, "found slip for commit", map[string]interface{}{
		"repository":     repository,
		"commit_sha":     sha,
		"correlation_id": slip.CorrelationID,
	})
	return slip.CorrelationID, nil
}
