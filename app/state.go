// Package app holds the application context and the lifecycle of app states
// driven once per frame.
package app

import (
	"fmt"
	"reflect"
)

// State is a unit of application behavior with an explicit lifecycle:
// Initialize once when attached, OnEnable/OnDisable any number of times,
// Update every frame while enabled, Cleanup once when detached.
type State interface {
	Initialize(ctx *Context) error
	OnEnable() error
	Update(tpf float64) error
	OnDisable()
	Cleanup()
}

// Named is implemented by states that provide their own name for logs.
type Named interface {
	Name() string
}

func stateName(state State) string {
	if named, ok := state.(Named); ok {
		return named.Name()
	}
	t := reflect.TypeOf(state)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Name() == "" {
		return fmt.Sprintf("%T", state)
	}
	return t.Name()
}

// BaseState provides no-op lifecycle methods for embedding.
type BaseState struct{}

func (BaseState) Initialize(*Context) error { return nil }
func (BaseState) OnEnable() error           { return nil }
func (BaseState) Update(float64) error      { return nil }
func (BaseState) OnDisable()                {}
func (BaseState) Cleanup()                  {}
