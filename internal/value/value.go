// Package value defines the closed set of values that flow between the session,
// the execution engines and the presenter.
package value

import (
	"fmt"
	"reflect"
	"sort"
)

// Value is one of Null, Bool, Int, Float, String, List, Map, Object or Resource.
// The set is sealed so that formatting and comparison can switch exhaustively.
type Value interface {
	isValue()
}

// Null is the explicit absence of a value inside the language (null, undefined).
type Null struct{}

// Bool is a boolean value.
type Bool bool

// Int is an integral number.
type Int int64

// Float is a floating point number.
type Float float64

// String is a text value.
type String string

// List is an ordered collection.
type List []Value

// Map is a keyed collection. Keys keeps insertion order so presentation is stable.
type Map struct {
	Keys   []string
	Values map[string]Value
}

// Object is an opaque handle to an engine object that is neither a list nor a
// plain keyed collection (functions, class instances, dates).
type Object struct {
	// Class is the engine-reported class or constructor name
	Class string

	// Fields holds own enumerable properties when the engine exposes them
	Fields *Map

	// Source is the textual form the engine can rebuild the object from (functions)
	Source string

	// Handle is an engine-private reference; engines must only reuse handles
	// they know to be safe across runtimes
	Handle any
}

// Resource is an opaque handle to a host resource (a Go value wrapped by the engine).
type Resource struct {
	// Kind describes the host type
	Kind string

	// Handle is the host value itself
	Handle any
}

func (Null) isValue()      {}
func (Bool) isValue()      {}
func (Int) isValue()       {}
func (Float) isValue()     {}
func (String) isValue()    {}
func (List) isValue()      {}
func (*Map) isValue()      {}
func (*Object) isValue()   {}
func (*Resource) isValue() {}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{Values: make(map[string]Value)}
}

// Set stores v under key, appending key to the order if it is new.
func (m *Map) Set(key string, v Value) {
	if m.Values == nil {
		m.Values = make(map[string]Value)
	}
	if _, ok := m.Values[key]; !ok {
		m.Keys = append(m.Keys, key)
	}
	m.Values[key] = v
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (Value, bool) {
	v, ok := m.Values[key]
	return v, ok
}

// Len returns the number of entries.
func (m *Map) Len() int {
	return len(m.Keys)
}

// TypeName returns a short lowercase name for the variant of v.
func TypeName(v Value) string {
	switch v.(type) {
	case nil, Null:
		return "null"
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "string"
	case List:
		return "list"
	case *Map:
		return "map"
	case *Object:
		return "object"
	case *Resource:
		return "resource"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// Equal reports whether a and b hold the same value. Map comparison ignores key
// order; Object and Resource compare their class, source, fields and handles.
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case Null:
		_, ok := b.(Null)
		return ok
	case Bool:
		y, ok := b.(Bool)
		return ok && x == y
	case Int:
		y, ok := b.(Int)
		return ok && x == y
	case Float:
		y, ok := b.(Float)
		return ok && x == y
	case String:
		y, ok := b.(String)
		return ok && x == y
	case List:
		y, ok := b.(List)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case *Map:
		y, ok := b.(*Map)
		return ok && mapsEqual(x, y)
	case *Object:
		y, ok := b.(*Object)
		if !ok {
			return false
		}
		if x == nil || y == nil {
			return x == y
		}
		return x.Class == y.Class &&
			x.Source == y.Source &&
			mapsEqual(x.Fields, y.Fields) &&
			handlesEqual(x.Handle, y.Handle)
	case *Resource:
		y, ok := b.(*Resource)
		if !ok {
			return false
		}
		if x == nil || y == nil {
			return x == y
		}
		return x.Kind == y.Kind && handlesEqual(x.Handle, y.Handle)
	default:
		return false
	}
}

func mapsEqual(x, y *Map) bool {
	if x == nil || y == nil {
		return x == y
	}
	if len(x.Values) != len(y.Values) {
		return false
	}
	for k, xv := range x.Values {
		yv, ok := y.Values[k]
		if !ok || !Equal(xv, yv) {
			return false
		}
	}
	return true
}

func handlesEqual(x, y any) bool {
	if x == nil || y == nil {
		return x == y
	}
	tx := reflect.TypeOf(x)
	if tx != reflect.TypeOf(y) {
		return false
	}
	if tx.Comparable() {
		return x == y
	}
	return reflect.DeepEqual(x, y)
}

// Bindings maps variable names to their values.
type Bindings map[string]Value

// Clone returns a shallow copy of b. Values are treated as immutable.
func (b Bindings) Clone() Bindings {
	out := make(Bindings, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// Names returns the bound names in sorted order.
func (b Bindings) Names() []string {
	names := make([]string, 0, len(b))
	for k := range b {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
