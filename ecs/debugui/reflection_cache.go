package debugui

import (
	"reflect"
	"sync"
)

// FieldInfo describes one exported field of a component struct. Type is the
// pointed-to type for pointer fields.
type FieldInfo struct {
	Name      string
	Type      reflect.Type
	Index     int
	IsPointer bool
}

// fieldCache memoizes the exported fields of component types.
type fieldCache struct {
	fields sync.Map // reflect.Type -> []FieldInfo
}

func (c *fieldCache) get(t reflect.Type) []FieldInfo {
	if cached, ok := c.fields.Load(t); ok {
		return cached.([]FieldInfo)
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	fields := make([]FieldInfo, 0, t.NumField())
	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		info := FieldInfo{Name: field.Name, Type: field.Type, Index: i}
		if field.Type.Kind() == reflect.Ptr {
			info.Type = field.Type.Elem()
			info.IsPointer = true
		}
		fields = append(fields, info)
	}

	actual, _ := c.fields.LoadOrStore(t, fields)
	return actual.([]FieldInfo)
}

// Fields returns the exported fields of t, or nil if t is not a struct.
func Fields(t reflect.Type) []FieldInfo {
	return componentFields.get(t)
}

var componentFields fieldCache
