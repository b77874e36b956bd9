package namespace

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/google/uuid"

	"github.com/dshills/modscope-mcp/pkg/types"
)

// Documented is implemented by values that carry their own documentation.
type Documented interface {
	Doc() string
}

// Sourced is implemented by values that can produce their own source text.
type Sourced interface {
	Source() string
}

// FromValue builds a namespace handle over a live Go value via reflection:
// maps with string keys become modules, structs become classes with their
// exported methods and fields as members, funcs become functions, and
// everything else a variable. Reflection calls are guarded against panics,
// which surface as ordinary errors.
func FromValue(name string, v any) Handle {
	return &reflected{name: name, value: reflect.ValueOf(v), id: uuid.NewString()}
}

type reflected struct {
	name  string
	value reflect.Value
	id    string
}

// safely runs fn, converting a panic into an error. Member values are
// arbitrary caller code and their hooks are treated as throwable.
func safely(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("member hook panicked: %v", r)
		}
	}()
	return fn()
}

func (r *reflected) Name() (string, error) {
	return r.name, nil
}

func (r *reflected) Kind() (types.ComponentKind, error) {
	var kind types.ComponentKind
	err := safely(func() error {
		kind = classify(r.value)
		return nil
	})
	return kind, err
}

func classify(v reflect.Value) types.ComponentKind {
	if !v.IsValid() {
		return types.KindVariable
	}
	t := v.Type()
	switch t.Kind() {
	case reflect.Map:
		if t.Key().Kind() == reflect.String {
			return types.KindModule
		}
		return types.KindVariable
	case reflect.Func:
		return types.KindFunction
	case reflect.Struct:
		return types.KindClass
	case reflect.Ptr:
		if t.Elem().Kind() == reflect.Struct {
			return types.KindClass
		}
		return types.KindVariable
	default:
		return types.KindVariable
	}
}

func (r *reflected) Doc() (string, error) {
	var doc string
	err := safely(func() error {
		if !r.value.IsValid() || !r.value.CanInterface() {
			return nil
		}
		if d, ok := r.value.Interface().(Documented); ok {
			doc = d.Doc()
		}
		return nil
	})
	return doc, err
}

func (r *reflected) Source() (string, error) {
	var src string
	err := safely(func() error {
		if !r.value.IsValid() || !r.value.CanInterface() {
			return nil
		}
		if s, ok := r.value.Interface().(Sourced); ok {
			src = s.Source()
		}
		return nil
	})
	return src, err
}

func (r *reflected) Members() ([]Handle, error) {
	var members []Handle
	err := safely(func() error {
		kind := classify(r.value)
		switch kind {
		case types.KindModule:
			members = r.mapMembers()
			return nil
		case types.KindClass:
			members = r.structMembers()
			return nil
		default:
			return ErrNotNamespace
		}
	})
	return members, err
}

func (r *reflected) mapMembers() []Handle {
	keys := make([]string, 0, r.value.Len())
	for _, k := range r.value.MapKeys() {
		keys = append(keys, k.String())
	}
	sort.Strings(keys)

	members := make([]Handle, 0, len(keys))
	for _, key := range keys {
		elem := r.value.MapIndex(reflect.ValueOf(key))
		if elem.Kind() == reflect.Interface {
			elem = elem.Elem()
		}
		members = append(members, &reflected{name: key, value: elem, id: uuid.NewString()})
	}
	return members
}

func (r *reflected) structMembers() []Handle {
	var members []Handle

	t := r.value.Type()
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		if !m.IsExported() {
			continue
		}
		members = append(members, &reflected{name: m.Name, value: r.value.Method(i), id: uuid.NewString()})
	}

	elem := r.value
	if elem.Kind() == reflect.Ptr {
		if elem.IsNil() {
			return members
		}
		elem = elem.Elem()
	}
	et := elem.Type()
	for i := 0; i < et.NumField(); i++ {
		f := et.Field(i)
		if !f.IsExported() {
			continue
		}
		members = append(members, &reflected{name: f.Name, value: elem.Field(i), id: uuid.NewString()})
	}
	return members
}

func (r *reflected) Identity() (string, error) {
	var id string
	err := safely(func() error {
		// Maps and pointers have a stable address within one process; that
		// is what lets the walker notice a self-referential namespace.
		switch r.value.Kind() {
		case reflect.Map, reflect.Ptr:
			id = fmt.Sprintf("0x%x", r.value.Pointer())
		default:
			id = r.id
		}
		return nil
	})
	return id, err
}
