package es

import (
	"errors"
	"maps"
	"sync"

	"github.com/plus3/impstack/scene"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

var (
	ErrNoModelRegistry = errors.New("no model registry configured")
	ErrModelNotFound   = errors.New("model not found")
)

// ModelRegistry maps model ids to scene nodes.
type ModelRegistry interface {
	// Register links a model id to an asset path and returns the path.
	Register(id, path string) string
	// Resolve returns the node of the model. Repeated calls for the same id
	// return the same node; callers clone it before attaching.
	Resolve(model Model) (*scene.Node, error)
}

// Loader loads the node stored at an asset path.
type Loader func(path string) (*scene.Node, error)

// PathResolver finds a path for models missing from the registry.
type PathResolver func(model Model) (string, bool)

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithPathResolver sets the fallback used for ids without a registered path.
func WithPathResolver(resolver PathResolver) RegistryOption {
	return func(r *Registry) {
		r.resolver = resolver
	}
}

// WithPaths registers every id/path pair.
func WithPaths(paths map[string]string) RegistryOption {
	return func(r *Registry) {
		maps.Copy(r.paths, paths)
	}
}

// WithRegistryLogger sets the logger for load traces.
func WithRegistryLogger(logger zerolog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

// Registry is a ModelRegistry backed by a path table and a Loader. Each model
// is loaded at most once, even when resolved concurrently.
type Registry struct {
	loader   Loader
	resolver PathResolver
	logger   zerolog.Logger

	mu    sync.RWMutex
	paths map[string]string
	cache map[string]*scene.Node
	loads int

	group singleflight.Group
}

// NewRegistry creates a Registry that loads models with loader.
func NewRegistry(loader Loader, opts ...RegistryOption) *Registry {
	r := &Registry{
		loader: loader,
		logger: zerolog.Nop(),
		paths:  make(map[string]string),
		cache:  make(map[string]*scene.Node),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register links id to path. Re-registering an id with a new path drops its
// cached node.
func (r *Registry) Register(id, path string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.paths[id]; ok && old != path {
		delete(r.cache, id)
	}
	r.paths[id] = path
	r.logger.Trace().Str("model", id).Str("path", path).Msg("registering model")
	return path
}

// Path returns the path registered for id.
func (r *Registry) Path(id string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	path, ok := r.paths[id]
	return path, ok
}

// Loads returns how many times the loader has been called.
func (r *Registry) Loads() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loads
}

// Resolve returns the cached prototype for the model, loading it on first use.
// Load errors are not cached.
func (r *Registry) Resolve(model Model) (*scene.Node, error) {
	r.mu.RLock()
	node, ok := r.cache[model.Id]
	r.mu.RUnlock()
	if ok {
		return node, nil
	}

	v, err, _ := r.group.Do(model.Id, func() (any, error) {
		return r.load(model)
	})
	if err != nil {
		return nil, err
	}
	return v.(*scene.Node), nil
}

func (r *Registry) load(model Model) (*scene.Node, error) {
	r.mu.RLock()
	node, cached := r.cache[model.Id]
	path, registered := r.paths[model.Id]
	r.mu.RUnlock()
	if cached {
		return node, nil
	}

	if !registered {
		if r.resolver == nil {
			return nil, eris.Wrapf(ErrModelNotFound, "%s", model)
		}
		if path, registered = r.resolver(model); !registered {
			return nil, eris.Wrapf(ErrModelNotFound, "%s", model)
		}
		r.Register(model.Id, path)
	}

	r.logger.Trace().Str("model", model.Id).Str("path", path).Msg("loading model")
	node, err := r.loader(path)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.loads++
	if err != nil {
		return nil, eris.Wrapf(err, "load %s", model)
	}
	if node == nil {
		return nil, eris.Wrapf(ErrModelNotFound, "%s: loader returned no node for %s", model, path)
	}
	r.cache[model.Id] = node
	return node, nil
}
