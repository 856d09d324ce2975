package usecases

import (
	"strings"

	"github.com/MyCarrier-DevOps/release-stamp/internal/domain"
)

// ResolveUserName formats the identity that produced a snapshot as
// "<domain>\<user>", or the bare user when no domain is known.
func ResolveUserName(id domain.Identity) string {
	if strings.TrimSpace(id.Domain) == "" {
		return id.User
	}
	return id.Domain + `\` + id.User
}
