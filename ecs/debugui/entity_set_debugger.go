package debugui

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/impstack/ecs"
)

// EntitySetDebugger builds an entity set from the selected component types
// and shows its members and the changes seen by each poll.
type EntitySetDebugger struct {
	selected map[reflect.Type]bool
	set      *ecs.EntitySet

	polls                   int
	added, changed, removed int
}

func NewEntitySetDebugger() *EntitySetDebugger {
	return &EntitySetDebugger{selected: make(map[reflect.Type]bool)}
}

func (d *EntitySetDebugger) Render(storage *ecs.Storage) {
	if !imgui.BeginV("Entity Set Debugger", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	imgui.Text("Select Component Types:")
	imgui.Separator()

	if imgui.Button("Clear All") {
		d.Select(storage)
	}

	types := storage.Registry().Types()
	for _, t := range types {
		selected := d.selected[t]
		if imgui.Checkbox(t.String(), &selected) {
			d.toggle(storage, t, selected)
		}
	}

	imgui.Separator()

	if d.set == nil {
		imgui.Text("No component types selected")
		imgui.End()
		return
	}

	d.Poll()

	imgui.Text(fmt.Sprintf("Matching Entities: %d", d.set.Len()))
	imgui.Text(fmt.Sprintf("Polls: %d  Added: %d  Changed: %d  Removed: %d", d.polls, d.added, d.changed, d.removed))

	if imgui.TreeNodeStr("Members") {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsScrollY
		if imgui.BeginTableV("EntitySetTable", 2, tableFlags, imgui.NewVec2(0, 300), 0) {
			imgui.TableSetupColumn("Entity")
			imgui.TableSetupColumn("Components")
			imgui.TableHeadersRow()

			for _, e := range d.set.Entities() {
				imgui.TableNextRow()
				imgui.TableSetColumnIndex(0)
				imgui.Text(e.Id().String())
				imgui.TableSetColumnIndex(1)
				imgui.Text(e.String())
			}

			imgui.EndTable()
		}
		imgui.TreePop()
	}

	imgui.End()
}

func (d *EntitySetDebugger) toggle(storage *ecs.Storage, t reflect.Type, on bool) {
	if on {
		d.selected[t] = true
	} else {
		delete(d.selected, t)
	}
	types := make([]reflect.Type, 0, len(d.selected))
	for selected := range d.selected {
		types = append(types, selected)
	}
	d.Select(storage, types...)
}

// Select replaces the watched set with one over types. No types clears it.
func (d *EntitySetDebugger) Select(storage *ecs.Storage, types ...reflect.Type) {
	if d.set != nil {
		d.set.Release()
		d.set = nil
	}
	d.selected = make(map[reflect.Type]bool, len(types))
	for _, t := range types {
		d.selected[t] = true
	}
	d.polls, d.added, d.changed, d.removed = 0, 0, 0, 0

	if len(types) > 0 {
		d.set = storage.GetEntities(types...)
	}
}

// Poll applies pending changes to the watched set and accumulates the counts.
func (d *EntitySetDebugger) Poll() {
	if d.set == nil || !d.set.ApplyChanges() {
		return
	}
	d.polls++
	d.added += len(d.set.Added())
	d.changed += len(d.set.Changed())
	d.removed += len(d.set.Removed())
}

// Selected returns the component types of the watched set.
func (d *EntitySetDebugger) Selected() []reflect.Type {
	if d.set == nil {
		return nil
	}
	return slices.Clone(d.set.Types())
}

// Set returns the watched entity set, or nil.
func (d *EntitySetDebugger) Set() *ecs.EntitySet {
	return d.set
}

// Counts returns the accumulated added, changed and removed totals.
func (d *EntitySetDebugger) Counts() (added, changed, removed int) {
	return d.added, d.changed, d.removed
}
