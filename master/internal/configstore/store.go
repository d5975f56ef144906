// Package configstore persists compute-spec, hardware and constraint configurations and retrieves
// the ones available to a project.
package configstore

import (
	"context"
	"encoding/json"
	"reflect"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/computeplane/computeplane/master/internal/api"
	"github.com/computeplane/computeplane/master/internal/scope"
	"github.com/computeplane/computeplane/master/pkg/check"
	"github.com/computeplane/computeplane/master/pkg/logger"
	"github.com/computeplane/computeplane/master/pkg/model"
)

// ErrInUse is returned when deleting a configuration that another configuration references.
var ErrInUse = errors.New("config is in use")

// Reader is the read capability the job template resolver needs for one configuration kind.
type Reader[T model.ComputeConfig] interface {
	Get(ctx context.Context, id int) (T, error)
	Exists(ctx context.Context, id int) (bool, error)
	ListAvailable(ctx context.Context, user model.User, project string) ([]T, error)
}

// Repository is the persistence backend of a Store. Get, Replace and Remove return an error
// wrapping api.ErrNotFound for unknown ids. List returns configs in id order.
type Repository[T model.ComputeConfig] interface {
	Get(ctx context.Context, id int) (T, error)
	Exists(ctx context.Context, id int) (bool, error)
	List(ctx context.Context) ([]T, error)
	Insert(ctx context.Context, cfg T) (T, error)
	Replace(ctx context.Context, cfg T) (T, error)
	Remove(ctx context.Context, id int) error
}

// Store validates writes to a repository and filters reads by scope.
type Store[T model.ComputeConfig] struct {
	repo     Repository[T]
	resolver *scope.Resolver
	kind     model.ConfigKind
	syslog   *log.Entry
}

// NewStore wraps a repository.
func NewStore[T model.ComputeConfig](repo Repository[T], resolver *scope.Resolver) *Store[T] {
	kind := newConfig[T]().Kind()
	logCtx := logger.Context{"component": "configstore"}.With("kind", kind)
	return &Store[T]{
		repo:     repo,
		resolver: resolver,
		kind:     kind,
		syslog:   log.WithFields(logCtx.Fields()),
	}
}

// Kind is the configuration kind held by the store.
func (s *Store[T]) Kind() model.ConfigKind {
	return s.kind
}

// Get returns the config with the given id.
func (s *Store[T]) Get(ctx context.Context, id int) (T, error) {
	return s.repo.Get(ctx, id)
}

// Exists reports whether a config with the given id is stored.
func (s *Store[T]) Exists(ctx context.Context, id int) (bool, error) {
	return s.repo.Exists(ctx, id)
}

// List returns every stored config in id order.
func (s *Store[T]) List(ctx context.Context) ([]T, error) {
	return s.repo.List(ctx)
}

// ListAvailable returns the configs available to the project, in id order.
func (s *Store[T]) ListAvailable(
	ctx context.Context, user model.User, project string,
) ([]T, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	available := make([]T, 0, len(all))
	for _, cfg := range all {
		if s.resolver.IsAvailable(ctx, cfg, user, project) {
			available = append(available, cfg)
		}
	}
	return available, nil
}

// Create validates and stores a new config. Any id on the input is ignored.
func (s *Store[T]) Create(ctx context.Context, cfg T) (T, error) {
	var zero T
	if err := s.validate(cfg); err != nil {
		return zero, err
	}
	cfg.SetConfigID(0)
	created, err := s.repo.Insert(ctx, cfg)
	if err != nil {
		return zero, errors.Wrapf(err, "creating %s config", s.kind)
	}
	s.syslog.WithField("id", created.ConfigID()).Info("created config")
	return created, nil
}

// Update validates and fully replaces a stored config.
func (s *Store[T]) Update(ctx context.Context, cfg T) (T, error) {
	var zero T
	if err := s.validate(cfg); err != nil {
		return zero, err
	}
	updated, err := s.repo.Replace(ctx, cfg)
	if err != nil {
		return zero, errors.Wrapf(err, "updating %s config %d", s.kind, cfg.ConfigID())
	}
	s.syslog.WithField("id", updated.ConfigID()).Info("updated config")
	return updated, nil
}

// Delete removes a config.
func (s *Store[T]) Delete(ctx context.Context, id int) error {
	if err := s.repo.Remove(ctx, id); err != nil {
		return errors.Wrapf(err, "deleting %s config %d", s.kind, id)
	}
	s.syslog.WithField("id", id).Info("deleted config")
	return nil
}

func (s *Store[T]) validate(cfg T) error {
	if isNil(cfg) {
		return api.AsValidationError("%s config must be provided", s.kind)
	}
	if err := check.Validate(cfg); err != nil {
		return api.AsValidationError("invalid %s config: %s", s.kind, err)
	}
	return nil
}

// newConfig allocates the value a pointer config type points at.
func newConfig[T model.ComputeConfig]() T {
	var zero T
	return reflect.New(reflect.TypeOf(zero).Elem()).Interface().(T)
}

func isNil[T model.ComputeConfig](cfg T) bool {
	v := reflect.ValueOf(cfg)
	return !v.IsValid() || (v.Kind() == reflect.Ptr && v.IsNil())
}

func encode[T model.ComputeConfig](cfg T) ([]byte, error) {
	bs, err := json.Marshal(cfg)
	return bs, errors.Wrapf(err, "encoding %s config", cfg.Kind())
}

func decode[T model.ComputeConfig](bs []byte) (T, error) {
	cfg := newConfig[T]()
	if err := json.Unmarshal(bs, cfg); err != nil {
		var zero T
		return zero, errors.Wrapf(err, "decoding %s config", cfg.Kind())
	}
	return cfg, nil
}

// clone returns a deep copy so that callers never share memory with stored values.
func clone[T model.ComputeConfig](cfg T) (T, error) {
	bs, err := encode(cfg)
	if err != nil {
		var zero T
		return zero, err
	}
	return decode[T](bs)
}
