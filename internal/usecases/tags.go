package usecases

import "github.com/MyCarrier-DevOps/release-stamp/internal/domain"

// ResolveReleaseTag returns the version of the first tag, in the given order,
// that targets commitSHA and parses into a valid version.
// Tags with unparseable names are skipped. When nothing matches the invalid
// marker is returned.
func ResolveReleaseTag(tags []domain.Tag, commitSHA string, parser domain.VersionParser) domain.TagVersion {
	for _, tag := range tags {
		if tag.TargetSHA != commitSHA {
			continue
		}
		if v := parser.Parse(tag.Name); v.IsValid() {
			return v
		}
	}
	return domain.TagVersion{}
}
