package postgres

import (
	"reflect"
	"sync"
)

// column maps a "db" tag to the field's index path, which runs through
// embedded structs such as entity.Catalog.
type column struct {
	name  string
	index []int
}

// plans caches one []column per struct type.
var plans sync.Map

func columnPlan(t reflect.Type) []column {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if cached, ok := plans.Load(t); ok {
		return cached.([]column)
	}

	var cols []column
	if t.Kind() == reflect.Struct {
		cols = appendColumns(nil, t, nil)
	}
	plans.Store(t, cols)
	return cols
}

func appendColumns(cols []column, t reflect.Type, prefix []int) []column {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		path := append(append([]int(nil), prefix...), i)

		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			cols = appendColumns(cols, f.Type, path)
			continue
		}

		tag := f.Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		cols = append(cols, column{name: tag, index: path})
	}
	return cols
}

// ExtractDBColumns lists the "db" columns of T in field order, embedded
// structs first where they are declared first. Repositories call it once
// to build their SELECT list.
func ExtractDBColumns[T any]() []string {
	plan := columnPlan(reflect.TypeFor[T]())
	names := make([]string, len(plan))
	for i, c := range plan {
		names[i] = c.name
	}
	return names
}

// StructToMap returns the column values of a struct (or pointer to one)
// keyed by "db" tag. It returns nil for anything else.
func StructToMap(v any) map[string]any {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	plan := columnPlan(rv.Type())
	res := make(map[string]any, len(plan))
	for _, c := range plan {
		res[c.name] = rv.FieldByIndex(c.index).Interface()
	}
	return res
}
