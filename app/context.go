package app

import (
	"os"
	"sync"

	"github.com/plus3/impstack/config"
	"github.com/plus3/impstack/ecs"
	"github.com/plus3/impstack/event"
	"github.com/plus3/impstack/log"
	"github.com/plus3/impstack/scene"
	"github.com/rs/zerolog"
)

// Context carries the collaborators shared by app states. It is created once
// per application and passed to every state on Initialize.
type Context struct {
	Config  config.Config
	Logger  zerolog.Logger
	Storage *ecs.Storage
	Events  *event.Bus
	// Root is the scene graph root; Gui holds overlay nodes.
	Root   *scene.Node
	Gui    *scene.Node
	States *StateManager

	logger    *zerolog.Logger
	registry  *ecs.ComponentRegistry
	closeOnce sync.Once
}

type Option func(*Context)

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Context) {
		c.logger = &logger
	}
}

// WithStorage uses an existing store instead of creating one.
func WithStorage(storage *ecs.Storage) Option {
	return func(c *Context) {
		c.Storage = storage
	}
}

// WithRegistry creates the store from the given component registry.
func WithRegistry(registry *ecs.ComponentRegistry) Option {
	return func(c *Context) {
		c.registry = registry
	}
}

func WithRoot(root *scene.Node) Option {
	return func(c *Context) {
		c.Root = root
	}
}

func New(cfg config.Config, opts ...Option) *Context {
	c := &Context{Config: cfg}
	for _, opt := range opts {
		opt(c)
	}

	if c.logger != nil {
		c.Logger = *c.logger
	} else {
		c.Logger = log.New(cfg.Log, os.Stderr)
	}
	if c.Storage == nil {
		if c.registry == nil {
			c.registry = ecs.NewComponentRegistry()
		}
		c.Storage = ecs.NewStorage(c.registry)
	}
	if c.Root == nil {
		c.Root = scene.NewNode("root")
	}
	c.Gui = scene.NewNode("gui")
	c.Events = event.NewBus(event.WithLogger(c.Logger))
	c.States = newStateManager(c)
	return c
}

// Update runs one frame of the attached states.
func (c *Context) Update(tpf float64) error {
	return c.States.Update(tpf)
}

// Close detaches all states in reverse attach order, then closes the store.
func (c *Context) Close() {
	c.closeOnce.Do(func() {
		c.States.Close()
		log.Storage(c.Logger, zerolog.DebugLevel, c.Storage.CollectStats())
		c.Storage.Close()
	})
}
