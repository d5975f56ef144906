package authz

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"golang.org/x/exp/maps"

	"github.com/computeplane/computeplane/master/internal/config"
)

// AuthZProviderType is a per-module registry for authz implementations.
type AuthZProviderType[T any] struct {
	mu       sync.Mutex
	registry map[string]T
}

// Register adds new implementation.
func (p *AuthZProviderType[T]) Register(authZType string, impl T) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.registry == nil {
		p.registry = make(map[string]T)
	}
	config.RegisterAuthZType(authZType)
	if _, ok := p.registry[authZType]; ok {
		panic(fmt.Errorf("can't do double register of type %s for: %s", authZType, p.string()))
	}
	p.registry[authZType] = impl
}

func (p *AuthZProviderType[T]) string() string {
	return reflect.TypeOf((*T)(nil)).Elem().String()
}

// Get returns the implementation selected by the config, falling back to the fallback type.
func (p *AuthZProviderType[T]) Get(authZConfig config.AuthZConfig) (T, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var zero T
	if len(p.registry) == 0 {
		return zero, fmt.Errorf("empty registry for: %s", p.string())
	}
	if res, ok := p.registry[authZConfig.Type]; ok {
		return res, nil
	}

	okTypes := maps.Keys(p.registry)
	sort.Strings(okTypes)
	if authZConfig.FallbackType == nil {
		return zero, fmt.Errorf("failed to find authz type %s in %s for: %s",
			authZConfig.Type, strings.Join(okTypes, ", "), p.string())
	}
	if res, ok := p.registry[*authZConfig.FallbackType]; ok {
		return res, nil
	}
	return zero, fmt.Errorf("failed to find authz types %s, %s in %s for: %s",
		authZConfig.Type, *authZConfig.FallbackType, strings.Join(okTypes, ", "), p.string())
}
