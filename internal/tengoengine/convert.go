package tengoengine

import (
	"sort"
	"time"

	"github.com/d5/tengo/v2"

	"github.com/itsmostafa/prayog/internal/value"
)

// fromTengo converts a Tengo object to a session value. Maps come back with
// sorted keys since Tengo maps have no order.
func fromTengo(obj tengo.Object) value.Value {
	switch v := obj.(type) {
	case nil, *tengo.Undefined:
		return value.Null{}
	case *tengo.Bool:
		return value.Bool(!v.IsFalsy())
	case *tengo.Int:
		return value.Int(v.Value)
	case *tengo.Float:
		return value.Float(v.Value)
	case *tengo.String:
		return value.String(v.Value)
	case *tengo.Char:
		return value.String(string(v.Value))
	case *tengo.Array:
		return fromArray(v.Value)
	case *tengo.ImmutableArray:
		return fromArray(v.Value)
	case *tengo.Map:
		return fromMap(v.Value)
	case *tengo.ImmutableMap:
		return fromMap(v.Value)
	case *tengo.Bytes:
		return &value.Resource{Kind: v.TypeName(), Handle: v.Value}
	case *tengo.Time:
		return &value.Resource{Kind: v.TypeName(), Handle: v.Value}
	case *tengo.Error:
		fields := value.NewMap()
		fields.Set("value", fromTengo(v.Value))
		return &value.Object{Class: v.TypeName(), Fields: fields, Handle: v}
	default:
		return &value.Object{Class: obj.TypeName(), Source: obj.String(), Handle: obj}
	}
}

func fromArray(items []tengo.Object) value.List {
	out := make(value.List, len(items))
	for i, item := range items {
		out[i] = fromTengo(item)
	}
	return out
}

func fromMap(m map[string]tengo.Object) *value.Map {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := value.NewMap()
	for _, k := range keys {
		out.Set(k, fromTengo(m[k]))
	}
	return out
}

// toTengo rebuilds a session value for a new script. Compiled functions are
// tied to the program that defined them and come back undefined.
func toTengo(v value.Value) tengo.Object {
	switch x := v.(type) {
	case nil, value.Null:
		return tengo.UndefinedValue
	case value.Bool:
		if x {
			return tengo.TrueValue
		}
		return tengo.FalseValue
	case value.Int:
		return &tengo.Int{Value: int64(x)}
	case value.Float:
		return &tengo.Float{Value: float64(x)}
	case value.String:
		return &tengo.String{Value: string(x)}
	case value.List:
		items := make([]tengo.Object, len(x))
		for i, item := range x {
			items[i] = toTengo(item)
		}
		return &tengo.Array{Value: items}
	case *value.Map:
		return toMap(x)
	case *value.Object:
		switch h := x.Handle.(type) {
		case *tengo.CompiledFunction:
			return tengo.UndefinedValue
		case tengo.Object:
			return h
		}
		if x.Fields != nil {
			return toMap(x.Fields)
		}
		return tengo.UndefinedValue
	case *value.Resource:
		switch h := x.Handle.(type) {
		case []byte:
			return &tengo.Bytes{Value: h}
		case time.Time:
			return &tengo.Time{Value: h}
		}
		obj, err := tengo.FromInterface(x.Handle)
		if err != nil {
			return tengo.UndefinedValue
		}
		return obj
	default:
		return tengo.UndefinedValue
	}
}

func toMap(m *value.Map) *tengo.Map {
	out := &tengo.Map{Value: make(map[string]tengo.Object, m.Len())}
	for _, k := range m.Keys {
		out.Value[k] = toTengo(m.Values[k])
	}
	return out
}
