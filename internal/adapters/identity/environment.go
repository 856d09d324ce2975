// Package identity reads the process identity used to attribute snapshots.
package identity

import (
	"os"
	"os/user"
	"strings"

	"github.com/MyCarrier-DevOps/release-stamp/internal/domain"
)

// Environment variable names consulted for identity facts.
const (
	EnvUserDomain = "USERDOMAIN"
	EnvUser       = "USER"
	EnvUserName   = "USERNAME"
)

// UnknownUser is reported when no user identity can be determined.
const UnknownUser = "unknown"

// Environment implements domain.IdentitySource from the process environment
// and the operating system account database.
type Environment struct {
	getenv      func(string) string
	currentUser func() (*user.User, error)
}

// NewEnvironment creates an Environment backed by os.Getenv and user.Current.
func NewEnvironment() *Environment {
	return &Environment{getenv: os.Getenv, currentUser: user.Current}
}

// Identity returns the domain and user of the current process. The user is
// never empty. Account names of the form DOMAIN\user supply the domain when
// USERDOMAIN is unset.
func (e *Environment) Identity() domain.Identity {
	id := domain.Identity{
		Domain: strings.TrimSpace(e.getenv(EnvUserDomain)),
	}

	if u, err := e.currentUser(); err == nil && u.Username != "" {
		id.User = u.Username
	} else if name := e.getenv(EnvUser); name != "" {
		id.User = name
	} else if name := e.getenv(EnvUserName); name != "" {
		id.User = name
	}

	if accountDomain, name, ok := strings.Cut(id.User, `\`); ok {
		id.User = name
		if id.Domain == "" {
			id.Domain = accountDomain
		}
	}

	if id.User == "" {
		id.User = UnknownUser
	}
	return id
}
