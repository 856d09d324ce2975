// Package version parses release tag names into domain versions.
package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/MyCarrier-DevOps/release-stamp/internal/domain"
)

// ReleaseBranchPrefix prefixes every branch name derived from a release version.
const ReleaseBranchPrefix = "release/"

// Parser implements domain.VersionParser using strict semantic versions.
// A single leading "v" or "V" is accepted; build metadata is kept in
// the normalized version but does not affect the branch name.
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse returns the version denoted by name, or the invalid marker when
// name is not a semantic version.
func (p *Parser) Parse(name string) domain.TagVersion {
	raw := name
	if strings.HasPrefix(raw, "v") || strings.HasPrefix(raw, "V") {
		raw = raw[1:]
	}

	v, err := semver.StrictNewVersion(raw)
	if err != nil {
		return domain.TagVersion{}
	}

	return domain.NewTagVersion(
		name,
		v.String(),
		v.Major(),
		v.Minor(),
		v.Patch(),
		v.Prerelease(),
		BranchName(v),
	)
}

// BranchName derives the release branch label of v: "release/vX.Y" for
// stable versions and "release/vX.Y-<label>" for prereleases, where label is
// the first dot-separated prerelease identifier.
func BranchName(v *semver.Version) string {
	branch := fmt.Sprintf("%sv%d.%d", ReleaseBranchPrefix, v.Major(), v.Minor())
	if pre := v.Prerelease(); pre != "" {
		label, _, _ := strings.Cut(pre, ".")
		branch += "-" + label
	}
	return branch
}
