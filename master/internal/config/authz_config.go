package config

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/exp/maps"
)

var (
	knownAuthZTypes  = map[string]bool{}
	authZConfigMutex sync.Mutex
)

// Authz string ids.
const (
	// StaticAuthZType resolves group membership from the config file.
	StaticAuthZType = "static"
	// PostgresAuthZType resolves group membership from the project_groups table.
	PostgresAuthZType = "postgres"
)

// AuthZConfig configures the authorization oracle consulted for group scopes.
type AuthZConfig struct {
	Type         string  `json:"type"`
	FallbackType *string `json:"fallback"`
	// Groups maps a group name to the projects that belong to it, for the static oracle.
	Groups map[string][]string `json:"groups"`
}

// DefaultAuthZConfig returns default authz config.
func DefaultAuthZConfig() *AuthZConfig {
	return &AuthZConfig{
		Type:   StaticAuthZType,
		Groups: map[string][]string{},
	}
}

// RegisterAuthZType records an oracle implementation name so that configs naming it validate.
func RegisterAuthZType(authZType string) {
	authZConfigMutex.Lock()
	defer authZConfigMutex.Unlock()
	knownAuthZTypes[authZType] = true
}

// Validate the authz config.
func (c AuthZConfig) Validate() []error {
	authZConfigMutex.Lock()
	known := maps.Keys(knownAuthZTypes)
	authZConfigMutex.Unlock()
	if len(known) == 0 {
		// Nothing registered yet; implementations register from their init functions.
		return nil
	}
	sort.Strings(known)
	okTypes := strings.Join(known, ", ")

	var errs []error
	errorTmpl := "%q is not a known authz type, must be one of: %s"
	if !contains(known, c.Type) {
		errs = append(errs, fmt.Errorf(errorTmpl, c.Type, okTypes))
	}
	if c.FallbackType != nil && !contains(known, *c.FallbackType) {
		errs = append(errs, fmt.Errorf(errorTmpl, *c.FallbackType, okTypes))
	}
	return errs
}

func contains(xs []string, x string) bool {
	for _, y := range xs {
		if y == x {
			return true
		}
	}
	return false
}
