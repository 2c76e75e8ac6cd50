package main

import (
	"fmt"
	"math/rand"
	"os"
	"reflect"
	"time"

	"github.com/plus3/impstack/ecs"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

type position struct{ X, Y float64 }
type velocity struct{ DX, DY float64 }
type health struct{ HP int }
type label struct{ Name string }

func registerComponents(registry *ecs.ComponentRegistry) {
	ecs.RegisterComponent[position](registry)
	ecs.RegisterComponent[velocity](registry)
	ecs.RegisterComponent[health](registry)
	ecs.RegisterComponent[label](registry)
}

// Workload controls how much churn the stress run produces.
type Workload struct {
	Duration   time.Duration `yaml:"duration"`
	Entities   int           `yaml:"entities"`
	OpsPerTick int           `yaml:"ops_per_tick"`
	Seed       int64         `yaml:"seed"`
	// Weights pick between spawn, mutate, remove component and remove entity.
	Weights struct {
		Spawn           int `yaml:"spawn"`
		Mutate          int `yaml:"mutate"`
		RemoveComponent int `yaml:"remove_component"`
		RemoveEntity    int `yaml:"remove_entity"`
	} `yaml:"weights"`
}

func defaultWorkload() Workload {
	w := Workload{
		Duration:   10 * time.Second,
		Entities:   10000,
		OpsPerTick: 200,
		Seed:       1,
	}
	w.Weights.Spawn = 3
	w.Weights.Mutate = 6
	w.Weights.RemoveComponent = 1
	w.Weights.RemoveEntity = 2
	return w
}

func loadWorkload(path string) (Workload, error) {
	w := defaultWorkload()
	if path == "" {
		return w, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return w, eris.Wrapf(err, "read workload %s", path)
	}
	if err := yaml.Unmarshal(data, &w); err != nil {
		return w, eris.Wrapf(err, "parse workload %s", path)
	}
	return w, w.validate()
}

func (w Workload) validate() error {
	if w.Duration <= 0 || w.Entities < 0 || w.OpsPerTick < 0 {
		return eris.Errorf("invalid workload: duration %s, entities %d, ops %d", w.Duration, w.Entities, w.OpsPerTick)
	}
	total := w.Weights.Spawn + w.Weights.Mutate + w.Weights.RemoveComponent + w.Weights.RemoveEntity
	if total <= 0 {
		return eris.New("invalid workload: operation weights sum to zero")
	}
	return nil
}

func randomComponent(rng *rand.Rand) any {
	switch rng.Intn(4) {
	case 0:
		return position{X: rng.Float64() * 100, Y: rng.Float64() * 100}
	case 1:
		return velocity{DX: rng.NormFloat64(), DY: rng.NormFloat64()}
	case 2:
		return health{HP: rng.Intn(100)}
	default:
		return label{Name: fmt.Sprintf("e%d", rng.Intn(1000))}
	}
}

func randomComponents(rng *rand.Rand) []any {
	n := rng.Intn(4) + 1
	components := make([]any, 0, n)
	for range n {
		components = append(components, randomComponent(rng))
	}
	return components
}

var componentTypes = []reflect.Type{
	ecs.TypeOf[position](),
	ecs.TypeOf[velocity](),
	ecs.TypeOf[health](),
	ecs.TypeOf[label](),
}

// ChurnSystem spawns, mutates and removes random entities through the
// frame's commands.
type ChurnSystem struct {
	workload Workload
	rng      *rand.Rand

	Spawned, Mutated, ComponentsRemoved, EntitiesRemoved int64
}

func NewChurnSystem(workload Workload, rng *rand.Rand) *ChurnSystem {
	return &ChurnSystem{workload: workload, rng: rng}
}

func (s *ChurnSystem) Execute(frame *ecs.UpdateFrame) {
	ids := frame.Storage.Entities()
	weights := s.workload.Weights
	total := weights.Spawn + weights.Mutate + weights.RemoveComponent + weights.RemoveEntity

	for range s.workload.OpsPerTick {
		pick := s.rng.Intn(total)
		if pick < weights.Spawn || len(ids) == 0 {
			frame.Commands.Spawn(randomComponents(s.rng)...)
			s.Spawned++
			continue
		}
		pick -= weights.Spawn
		id := ids[s.rng.Intn(len(ids))]

		switch {
		case pick < weights.Mutate:
			frame.Commands.SetComponents(id, randomComponent(s.rng))
			s.Mutated++
		case pick < weights.Mutate+weights.RemoveComponent:
			frame.Commands.RemoveComponent(id, componentTypes[s.rng.Intn(len(componentTypes))])
			s.ComponentsRemoved++
		default:
			frame.Commands.RemoveEntity(id)
			s.EntitiesRemoved++
		}
	}
}

// proxy is the object a watched container keeps per entity.
type proxy struct {
	id       ecs.EntityId
	versions map[reflect.Type]uint64
	updates  int
	detached bool
}

// tracker counts container callbacks and remembers the component versions
// each proxy last saw.
type tracker struct {
	types                 []reflect.Type
	live                  int
	adds, updates, removes int64
}

func (t *tracker) snapshot(p *proxy, e ecs.Entity) {
	for _, ct := range t.types {
		p.versions[ct] = e.Version(ct)
	}
}

func (t *tracker) Add(e ecs.Entity) (*proxy, error) {
	p := &proxy{id: e.Id(), versions: make(map[reflect.Type]uint64, len(t.types))}
	t.snapshot(p, e)
	t.live++
	t.adds++
	return p, nil
}

func (t *tracker) Update(p *proxy, e ecs.Entity) error {
	if p.detached {
		return eris.Errorf("update of detached proxy %s", p.id)
	}
	t.snapshot(p, e)
	p.updates++
	t.updates++
	return nil
}

func (t *tracker) Remove(p *proxy, _ ecs.Entity) {
	if !p.detached {
		p.detached = true
		t.live--
	}
	t.removes++
}

// watched is one container under test.
type watched struct {
	name      string
	container *ecs.EntityContainer[*proxy]
	tracker   *tracker
}

func newWatched(storage *ecs.Storage, name string, types ...reflect.Type) *watched {
	t := &tracker{types: types}
	return &watched{
		name:      name,
		container: ecs.NewEntityContainer[*proxy](storage, t, types...),
		tracker:   t,
	}
}

// Violation describes a broken container invariant.
type Violation struct {
	Container string
	Entity    ecs.EntityId
	Reason    string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s: %s", v.Container, v.Entity, v.Reason)
}

// check verifies the container maps exactly the set members, each to a live
// proxy that has seen the members' current component versions.
func (w *watched) check() []Violation {
	var violations []Violation
	set := w.container.Entities()

	if w.container.Len() != set.Len() {
		violations = append(violations, Violation{
			Container: w.name,
			Reason:    fmt.Sprintf("container maps %d objects, set has %d members", w.container.Len(), set.Len()),
		})
	}
	if w.tracker.live != w.container.Len() {
		violations = append(violations, Violation{
			Container: w.name,
			Reason:    fmt.Sprintf("%d live proxies for %d mapped objects", w.tracker.live, w.container.Len()),
		})
	}

	for _, e := range set.Entities() {
		p, ok := w.container.Get(e.Id())
		switch {
		case !ok:
			violations = append(violations, Violation{w.name, e.Id(), "member has no object"})
			continue
		case p.id != e.Id():
			violations = append(violations, Violation{w.name, e.Id(), fmt.Sprintf("mapped to proxy of %s", p.id)})
			continue
		case p.detached:
			violations = append(violations, Violation{w.name, e.Id(), "mapped to detached proxy"})
			continue
		}
		for _, ct := range w.tracker.types {
			if p.versions[ct] != e.Version(ct) {
				violations = append(violations, Violation{w.name, e.Id(), fmt.Sprintf("stale %s", ct)})
			}
		}
	}

	for id, p := range w.container.Objects() {
		if !set.Contains(id) {
			violations = append(violations, Violation{w.name, p.id, "object for non-member"})
		}
	}
	return violations
}
