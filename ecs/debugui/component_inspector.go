package debugui

import (
	"fmt"
	"reflect"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/impstack/ecs"
	"github.com/rotisserie/eris"
)

// ComponentInspector shows and edits the components of one entity. Edits
// write a new component value through the store, so entity sets observe them
// as changes.
type ComponentInspector struct {
	selectedEntityId ecs.EntityId
	lastError        error
}

func NewComponentInspector() *ComponentInspector {
	return &ComponentInspector{}
}

func (ci *ComponentInspector) Render(storage *ecs.Storage, selectedEntityId ecs.EntityId) {
	if !imgui.BeginV("Component Inspector", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	if ci.selectedEntityId != selectedEntityId {
		ci.lastError = nil
	}
	ci.selectedEntityId = selectedEntityId

	if ci.selectedEntityId == 0 {
		imgui.Text("No entity selected")
		imgui.End()
		return
	}

	if !storage.Exists(ci.selectedEntityId) {
		imgui.Text(fmt.Sprintf("%s not found", ci.selectedEntityId))
		imgui.End()
		return
	}

	imgui.Text(ci.selectedEntityId.String())
	if ci.lastError != nil {
		imgui.TextWrapped(ci.lastError.Error())
	}
	imgui.Separator()

	for _, compType := range storage.ComponentTypes(ci.selectedEntityId) {
		component, ok := storage.GetComponent(ci.selectedEntityId, compType)
		if !ok {
			continue
		}

		if imgui.TreeNodeStr(compType.String()) {
			ci.renderComponent(storage, compType, reflect.ValueOf(component))
			imgui.TreePop()
		}
	}

	imgui.End()
}

func (ci *ComponentInspector) renderComponent(storage *ecs.Storage, compType reflect.Type, val reflect.Value) {
	if val.Kind() != reflect.Struct {
		ci.renderField(storage, compType, compType.Name(), nil, val, FieldInfo{Type: val.Type()})
		return
	}
	for _, field := range componentFields.get(compType) {
		ci.renderField(storage, compType, field.Name, []int{field.Index}, val.Field(field.Index), field)
	}
}

func (ci *ComponentInspector) renderField(storage *ecs.Storage, compType reflect.Type, name string, path []int, val reflect.Value, field FieldInfo) {
	if !val.IsValid() {
		imgui.Text(fmt.Sprintf("%s: <invalid>", name))
		return
	}

	if field.IsPointer {
		if val.IsNil() {
			imgui.Text(fmt.Sprintf("%s: nil", name))
		} else {
			imgui.Text(fmt.Sprintf("%s: %v", name, val.Elem().Interface()))
		}
		return
	}

	edit := func(v any) {
		ci.lastError = SetComponentField(storage, ci.selectedEntityId, compType, path, v)
	}

	switch val.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v := int32(val.Int())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputInt(fmt.Sprintf("##%s%v", name, path), &v) {
			edit(int64(v))
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v := int32(val.Uint())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputInt(fmt.Sprintf("##%s%v", name, path), &v) && v >= 0 {
			edit(uint64(v))
		}

	case reflect.Float32, reflect.Float64:
		v := float32(val.Float())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputFloat(fmt.Sprintf("##%s%v", name, path), &v) {
			edit(float64(v))
		}

	case reflect.Bool:
		v := val.Bool()
		if imgui.Checkbox(fmt.Sprintf("%s##%v", name, path), &v) {
			edit(v)
		}

	case reflect.String:
		v := val.String()
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(200)
		if imgui.InputTextWithHint(fmt.Sprintf("##%s%v", name, path), "", &v, imgui.InputTextFlagsNone, nil) {
			edit(v)
		}

	case reflect.Struct:
		if imgui.TreeNodeStr(name) {
			for _, nf := range componentFields.get(val.Type()) {
				nested := append(append([]int(nil), path...), nf.Index)
				ci.renderField(storage, compType, nf.Name, nested, val.Field(nf.Index), nf)
			}
			imgui.TreePop()
		}

	case reflect.Slice:
		imgui.Text(fmt.Sprintf("%s: [%d items]", name, val.Len()))

	case reflect.Map:
		imgui.Text(fmt.Sprintf("%s: map[%d items]", name, val.Len()))

	default:
		if val.CanInterface() {
			imgui.Text(fmt.Sprintf("%s: %v", name, val.Interface()))
		}
	}
}

// SetComponentField replaces the component of compType on the entity with a
// copy whose field at path (field indexes from the outermost struct) holds
// value. An empty path replaces the whole value.
func SetComponentField(storage *ecs.Storage, id ecs.EntityId, compType reflect.Type, path []int, value any) error {
	component, ok := storage.GetComponent(id, compType)
	if !ok {
		return eris.Wrapf(ecs.ErrEntityNotFound, "%s has no %s", id, compType)
	}

	updated := reflect.New(compType).Elem()
	updated.Set(reflect.ValueOf(component))

	target := updated
	for _, i := range path {
		if target.Kind() != reflect.Struct || i < 0 || i >= target.NumField() {
			return eris.Errorf("invalid field path %v for %s", path, compType)
		}
		target = target.Field(i)
	}
	if !target.CanSet() {
		return eris.Errorf("field %v of %s is not settable", path, compType)
	}

	v := reflect.ValueOf(value)
	if !v.IsValid() || !v.Type().ConvertibleTo(target.Type()) {
		return eris.Errorf("cannot assign %T to %s", value, target.Type())
	}
	target.Set(v.Convert(target.Type()))

	return storage.SetComponent(id, updated.Interface())
}
