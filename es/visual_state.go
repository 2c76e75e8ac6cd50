package es

import (
	"github.com/plus3/impstack/app"
	"github.com/plus3/impstack/ecs"
	"github.com/plus3/impstack/event"
	"github.com/plus3/impstack/log"
	"github.com/plus3/impstack/scene"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// ModelAttached is published when an entity's node joins the scene graph.
type ModelAttached struct {
	Id   ecs.EntityId
	Node *scene.Node
}

// ModelDetached is published when an entity's node leaves the scene graph.
type ModelDetached struct {
	Id   ecs.EntityId
	Node *scene.Node
}

// VisualOption configures a VisualState.
type VisualOption func(*VisualState)

// WithModelRegistry sets the registry models are resolved from. It is required.
func WithModelRegistry(registry ModelRegistry) VisualOption {
	return func(v *VisualState) {
		v.registry = registry
	}
}

// WithSceneGraph sets the node models are attached to. Defaults to the context root.
func WithSceneGraph(node *scene.Node) VisualOption {
	return func(v *VisualState) {
		v.sceneGraph = node
	}
}

// WithAttachPerTick bounds how many queued nodes are attached per Update.
func WithAttachPerTick(n int) VisualOption {
	return func(v *VisualState) {
		v.attachPerTick = n
	}
}

// VisualState keeps one scene node per entity with a Model and a Position.
// New nodes are queued and attached to the scene graph a few per Update,
// oldest first, to bound the cost of graph changes in a single frame.
type VisualState struct {
	registry      ModelRegistry
	sceneGraph    *scene.Node
	attachPerTick int

	storage *ecs.Storage
	events  *event.Bus
	logger  zerolog.Logger
	models  *ecs.EntityContainer[*scene.Node]
	queue   attachQueue
}

var _ app.State = (*VisualState)(nil)

// NewVisualState creates a VisualState. Attach it to a StateManager to start it.
func NewVisualState(opts ...VisualOption) *VisualState {
	v := &VisualState{}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *VisualState) Initialize(ctx *app.Context) error {
	if v.registry == nil {
		return eris.Wrap(ErrNoModelRegistry, "initialize visual state")
	}
	if v.sceneGraph == nil {
		v.sceneGraph = ctx.Root
	}
	if v.attachPerTick <= 0 {
		v.attachPerTick = max(1, ctx.Config.Visual.AttachPerTick)
	}
	v.storage = ctx.Storage
	v.events = ctx.Events
	v.logger = ctx.Logger.With().Str("state", "VisualState").Logger()
	return nil
}

// OnEnable creates a node for every entity that already has a Model and a Position.
func (v *VisualState) OnEnable() error {
	v.models = ecs.NewEntityContainer[*scene.Node](v.storage, visualCallbacks{v},
		ecs.TypeOf[Model](), ecs.TypeOf[Position]())
	if err := v.models.Start(); err != nil {
		v.models.Stop()
		v.queue.clear()
		return eris.Wrap(err, "start model container")
	}
	return nil
}

// Update syncs nodes with the entities, then attaches queued nodes. Nodes
// already queued are attached even when some entity's model failed to load.
func (v *VisualState) Update(tpf float64) error {
	_, err := v.models.Update()

	for attached := 0; attached < v.attachPerTick; {
		item, ok := v.queue.pop()
		if !ok {
			break
		}
		if item.id != 0 {
			if current, ok := v.models.Get(item.id); !ok || current != item.node {
				log.EntityId(v.logger.Trace(), item.id).Msg("dropping node of removed entity")
				continue
			}
		}
		v.sceneGraph.AttachChild(item.node)
		attached++
		v.logger.Trace().Str("node", item.node.Path()).Msg("attached")
		if item.id != 0 {
			v.events.Publish(ModelAttached{Id: item.id, Node: item.node})
		}
	}
	return err
}

// OnDisable detaches every model node and drops the queue.
func (v *VisualState) OnDisable() {
	v.models.Stop()
	v.queue.clear()
}

func (v *VisualState) Cleanup() {}

// Attach queues a node that is not owned by an entity.
func (v *VisualState) Attach(node *scene.Node) {
	v.queue.push(pendingAttach{node: node})
}

// Model returns the node created for the entity, attached or still queued.
func (v *VisualState) Model(id ecs.EntityId) (*scene.Node, bool) {
	if v.models == nil {
		return nil, false
	}
	return v.models.Get(id)
}

// Models returns the number of entities with a node.
func (v *VisualState) Models() int {
	if v.models == nil {
		return 0
	}
	return v.models.Len()
}

// Pending returns the number of nodes waiting to be attached.
func (v *VisualState) Pending() int {
	return v.queue.len()
}

// SceneGraph returns the node models are attached to.
func (v *VisualState) SceneGraph() *scene.Node {
	return v.sceneGraph
}

// ModelRegistry returns the configured registry.
func (v *VisualState) ModelRegistry() ModelRegistry {
	return v.registry
}

type visualCallbacks struct {
	v *VisualState
}

func place(node *scene.Node, e ecs.Entity) {
	pos := ecs.MustComponent[Position](e)
	node.SetLocalTranslation(pos.Location)
	node.SetLocalRotation(pos.Rotation)
}

func (c visualCallbacks) Add(e ecs.Entity) (*scene.Node, error) {
	model := ecs.MustComponent[Model](e)
	proto, err := c.v.registry.Resolve(model)
	if err != nil {
		return nil, err
	}

	node := proto.Clone()
	place(node, e)
	c.v.queue.push(pendingAttach{id: e.Id(), node: node})
	log.Entity(c.v.logger.Trace(), e).Str("model", model.Id).Msg("queued model")
	return node, nil
}

func (c visualCallbacks) Update(node *scene.Node, e ecs.Entity) error {
	place(node, e)
	return nil
}

func (c visualCallbacks) Remove(node *scene.Node, e ecs.Entity) {
	if node.RemoveFromParent() {
		log.EntityId(c.v.logger.Trace(), e.Id()).Str("node", node.Name).Msg("detached")
		c.v.events.Publish(ModelDetached{Id: e.Id(), Node: node})
	}
}
