package usecases

import "github.com/MyCarrier-DevOps/release-stamp/internal/domain"

// IsDirty reports whether the working tree has uncommitted changes.
// Only added, missing, modified, removed and staged paths count;
// renamed and untracked paths are ignored.
func IsDirty(status domain.WorkingTreeStatus) bool {
	return len(status.Added) > 0 ||
		len(status.Missing) > 0 ||
		len(status.Modified) > 0 ||
		len(status.Removed) > 0 ||
		len(status.Staged) > 0
}
