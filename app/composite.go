package app

import (
	"slices"

	"github.com/rotisserie/eris"
)

// CompositeState groups child states under one lifecycle. Children are
// initialized and enabled in order, disabled and cleaned up in reverse.
type CompositeState struct {
	children    []State
	ctx         *Context
	initialized int
	enabled     int
	active      bool
}

func NewCompositeState(children ...State) *CompositeState {
	return &CompositeState{children: slices.Clone(children)}
}

func (c *CompositeState) Children() []State {
	return slices.Clone(c.children)
}

// Add appends a child, bringing it up to the composite's current lifecycle
// stage. A child that fails to come up is not added.
func (c *CompositeState) Add(child State) error {
	if c.ctx == nil {
		c.children = append(c.children, child)
		return nil
	}

	if err := child.Initialize(c.ctx); err != nil {
		return eris.Wrapf(err, "initialize %s", stateName(child))
	}
	if c.active {
		if err := child.OnEnable(); err != nil {
			child.Cleanup()
			return eris.Wrapf(err, "enable %s", stateName(child))
		}
		c.enabled++
	}
	c.children = append(c.children, child)
	c.initialized++
	return nil
}

// Remove takes a child down and drops it. It reports whether the child was present.
func (c *CompositeState) Remove(child State) bool {
	i := slices.Index(c.children, child)
	if i < 0 {
		return false
	}
	if i < c.enabled {
		child.OnDisable()
		c.enabled--
	}
	if i < c.initialized {
		child.Cleanup()
		c.initialized--
	}
	c.children = slices.Delete(c.children, i, i+1)
	return true
}

func (c *CompositeState) Initialize(ctx *Context) error {
	c.ctx = ctx
	for _, child := range c.children {
		if err := child.Initialize(ctx); err != nil {
			c.cleanupFrom(c.initialized)
			c.ctx = nil
			return eris.Wrapf(err, "initialize %s", stateName(child))
		}
		ctx.Logger.Debug().Int("index", c.initialized).Str("state", stateName(child)).Msg("child initialized")
		c.initialized++
	}
	return nil
}

func (c *CompositeState) OnEnable() error {
	for _, child := range c.children[:c.initialized] {
		if err := child.OnEnable(); err != nil {
			c.OnDisable()
			return eris.Wrapf(err, "enable %s", stateName(child))
		}
		c.enabled++
	}
	c.active = true
	return nil
}

func (c *CompositeState) Update(tpf float64) error {
	for _, child := range c.children[:c.enabled] {
		if err := child.Update(tpf); err != nil {
			return eris.Wrapf(err, "update %s", stateName(child))
		}
	}
	return nil
}

func (c *CompositeState) OnDisable() {
	c.active = false
	for ; c.enabled > 0; c.enabled-- {
		c.children[c.enabled-1].OnDisable()
	}
}

func (c *CompositeState) Cleanup() {
	c.cleanupFrom(c.initialized)
	c.ctx = nil
}

func (c *CompositeState) cleanupFrom(n int) {
	for i := n - 1; i >= 0; i-- {
		c.children[i].Cleanup()
	}
	c.initialized = 0
}
