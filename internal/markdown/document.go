package markdown

import (
	"fmt"
	"reflect"
)

// CloneDocument deep copies a nested document. Every nested mapping, whatever
// its Go key and value types (map[any]any from yaml, map[string]string from a
// Go caller), becomes a map[string]any with keys formatted by fmt.Sprint.
// Slices keep their type and are copied element by element. A nil input
// yields an empty document.
func CloneDocument(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for key, value := range doc {
		out[key] = cloneValue(value)
	}
	return out
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case nil:
		return nil
	case map[string]any:
		return CloneDocument(typed)
	case map[any]any:
		return CloneDocument(normaliseKeys(typed))
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = cloneValue(item)
		}
		return out
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Map:
		if rv.IsNil() {
			return value
		}
		return CloneDocument(normaliseMap(rv))
	case reflect.Slice:
		return cloneTyped(rv).Interface()
	default:
		return value
	}
}

// cloneTyped copies slices and maps without changing their type.
func cloneTyped(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return v
		}
		cloned := reflect.ValueOf(cloneValue(v.Interface()))
		if !cloned.Type().AssignableTo(v.Type()) {
			return v
		}
		out := reflect.New(v.Type()).Elem()
		out.Set(cloned)
		return out
	case reflect.Map:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), cloneTyped(iter.Value()))
		}
		return out
	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := range v.Len() {
			out.Index(i).Set(cloneTyped(v.Index(i)))
		}
		return out
	default:
		return v
	}
}

// ToDocument returns a deep copy of value when it is a mapping. Mappings
// with non-string keys are normalised on the way.
func ToDocument(value any) (map[string]any, bool) {
	doc, ok := asDocument(value)
	if !ok {
		return nil, false
	}
	return CloneDocument(doc), true
}

func asDocument(value any) (map[string]any, bool) {
	switch typed := value.(type) {
	case nil:
		return nil, false
	case map[string]any:
		return typed, true
	case map[any]any:
		return normaliseKeys(typed), true
	}
	if rv := reflect.ValueOf(value); rv.Kind() == reflect.Map && !rv.IsNil() {
		return normaliseMap(rv), true
	}
	return nil, false
}

func normaliseKeys(in map[any]any) map[string]any {
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[fmt.Sprint(key)] = value
	}
	return out
}

func normaliseMap(rv reflect.Value) map[string]any {
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[fmt.Sprint(iter.Key().Interface())] = iter.Value().Interface()
	}
	return out
}
