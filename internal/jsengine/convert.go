package jsengine

import (
	"context"
	"fmt"
	"reflect"
	"strconv"

	"github.com/dop251/goja"

	"github.com/itsmostafa/prayog/internal/value"
)

const (
	functionClass = "Function"
	circularClass = "Circular"
	arrayClass    = "Array"
	dateClass     = "Date"
	regexpClass   = "RegExp"
	mapClass      = "Map"
	setClass      = "Set"
)

// maxDenseLength is the longest array converted element by element. Longer
// arrays with holes keep only their present elements.
const maxDenseLength = 1 << 16

var plainObjectType = reflect.TypeOf(map[string]any{})

// Handles of builtin objects. They hold plain data so a later runtime can
// rebuild the object.
type (
	dateState struct {
		Millis float64
	}
	regexpState struct {
		Source string
		Flags  string
	}
	collectionState struct {
		Entries value.List
	}
	sparseArrayState struct {
		Length int64
	}
)

// realm holds the builtin constructors of one runtime, captured before any
// user code runs.
type realm struct {
	vm        *goja.Runtime
	date      goja.Value
	regexp    goja.Value
	mapCtor   goja.Value
	setCtor   goja.Value
	getTime   goja.Callable
	arrayFrom goja.Callable
}

func newRealm(vm *goja.Runtime) *realm {
	r := &realm{
		vm:      vm,
		date:    vm.Get(dateClass),
		regexp:  vm.Get(regexpClass),
		mapCtor: vm.Get(mapClass),
		setCtor: vm.Get(setClass),
	}
	if proto, ok := r.date.(*goja.Object).Get("prototype").(*goja.Object); ok {
		r.getTime, _ = goja.AssertFunction(proto.Get("getTime"))
	}
	r.arrayFrom, _ = goja.AssertFunction(vm.Get(arrayClass).(*goja.Object).Get("from"))
	return r
}

// converter turns goja values into session values. It tracks the objects on
// the current path so cyclic structures terminate, and stops walking once ctx
// is done.
type converter struct {
	realm *realm
	ctx   context.Context
	seen  map[*goja.Object]bool
	err   error
}

func newConverter(ctx context.Context, r *realm) *converter {
	return &converter{realm: r, ctx: ctx, seen: make(map[*goja.Object]bool)}
}

// stopped reports whether conversion must end early.
func (c *converter) stopped() bool {
	if c.err == nil {
		c.err = c.ctx.Err()
	}
	return c.err != nil
}

func (c *converter) fromJS(v goja.Value) value.Value {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return value.Null{}
	}

	obj, ok := v.(*goja.Object)
	if !ok {
		switch x := v.Export().(type) {
		case bool:
			return value.Bool(x)
		case int64:
			return value.Int(x)
		case float64:
			return value.Float(x)
		case string:
			return value.String(x)
		default:
			return value.String(v.String())
		}
	}

	if c.seen[obj] {
		return &value.Object{Class: circularClass}
	}
	c.seen[obj] = true
	defer delete(c.seen, obj)

	if _, isFn := goja.AssertFunction(obj); isFn {
		return &value.Object{Class: functionClass, Source: obj.String()}
	}

	switch class := obj.ClassName(); class {
	case arrayClass:
		return c.array(obj)
	case dateClass:
		return c.date(obj)
	case regexpClass:
		return &value.Object{
			Class:  regexpClass,
			Source: obj.String(),
			Handle: regexpState{Source: stringProp(obj, "source"), Flags: stringProp(obj, "flags")},
		}
	case mapClass, setClass:
		return c.collection(obj, class)
	case "Object":
		if obj.ExportType() != plainObjectType {
			// A Go value wrapped by the runtime
			handle := obj.Export()
			return &value.Resource{Kind: fmt.Sprintf("%T", handle), Handle: handle}
		}
		fields := c.fields(obj, obj.Keys())
		if name := constructorName(obj); name != "" && name != "Object" {
			return &value.Object{Class: name, Fields: fields}
		}
		return fields
	default:
		o := &value.Object{Class: class, Source: obj.String()}
		if fields := c.fields(obj, obj.Keys()); fields.Len() > 0 {
			o.Fields = fields
		}
		return o
	}
}

// array converts short arrays to a List. Long arrays with holes become an
// Array object holding only the present elements.
func (c *converter) array(obj *goja.Object) value.Value {
	n := obj.Get("length").ToInteger()
	var keys []string
	if n > maxDenseLength {
		keys = obj.Keys()
		if int64(len(keys)) != n {
			return &value.Object{
				Class:  arrayClass,
				Fields: c.fields(obj, keys),
				Handle: sparseArrayState{Length: n},
			}
		}
	}
	items := make(value.List, 0, n)
	for i := int64(0); i < n; i++ {
		if c.stopped() {
			break
		}
		items = append(items, c.fromJS(obj.Get(strconv.FormatInt(i, 10))))
	}
	return items
}

func (c *converter) date(obj *goja.Object) value.Value {
	o := &value.Object{Class: dateClass, Source: obj.String()}
	if c.realm.getTime == nil {
		return o
	}
	ms, err := c.realm.getTime(obj)
	if err != nil {
		c.err = err
		return o
	}
	o.Handle = dateState{Millis: ms.ToFloat()}
	return o
}

// collection converts a Map or Set through Array.from, which yields [key,
// value] pairs for a Map and the members of a Set.
func (c *converter) collection(obj *goja.Object, class string) value.Value {
	o := &value.Object{Class: class, Source: obj.String()}
	if c.realm.arrayFrom == nil {
		return o
	}
	entries, err := c.realm.arrayFrom(goja.Undefined(), obj)
	if err != nil {
		c.err = err
		return o
	}
	list, _ := c.fromJS(entries).(value.List)
	o.Handle = collectionState{Entries: list}
	return o
}

func (c *converter) fields(obj *goja.Object, keys []string) *value.Map {
	m := value.NewMap()
	for _, k := range keys {
		if c.stopped() {
			break
		}
		m.Set(k, c.fromJS(obj.Get(k)))
	}
	return m
}

func stringProp(obj *goja.Object, name string) string {
	v := obj.Get(name)
	if v == nil || goja.IsUndefined(v) {
		return ""
	}
	return v.String()
}

func constructorName(obj *goja.Object) string {
	ctor, ok := obj.Get("constructor").(*goja.Object)
	if !ok {
		return ""
	}
	name := ctor.Get("name")
	if name == nil || goja.IsUndefined(name) {
		return ""
	}
	return name.String()
}

// toJS rebuilds a session value inside the realm's runtime. Functions are
// recompiled from their source and builtin objects are reconstructed from
// their handles. It returns nil when v cannot be rebuilt.
func (r *realm) toJS(v value.Value) goja.Value {
	vm := r.vm
	switch x := v.(type) {
	case nil, value.Null:
		return goja.Null()
	case value.Bool:
		return vm.ToValue(bool(x))
	case value.Int:
		return vm.ToValue(int64(x))
	case value.Float:
		return vm.ToValue(float64(x))
	case value.String:
		return vm.ToValue(string(x))
	case value.List:
		items := make([]any, len(x))
		for i, item := range x {
			items[i] = r.nested(item)
		}
		return vm.NewArray(items...)
	case *value.Map:
		return r.objectFromMap(x)
	case *value.Object:
		return r.object(x)
	case *value.Resource:
		return vm.ToValue(x.Handle)
	default:
		return nil
	}
}

// nested rebuilds a value inside a container, where anything that cannot be
// rebuilt reads as undefined.
func (r *realm) nested(v value.Value) goja.Value {
	if jv := r.toJS(v); jv != nil {
		return jv
	}
	return goja.Undefined()
}

func (r *realm) object(o *value.Object) goja.Value {
	vm := r.vm
	switch h := o.Handle.(type) {
	case dateState:
		return r.construct(r.date, vm.ToValue(h.Millis))
	case regexpState:
		return r.construct(r.regexp, vm.ToValue(h.Source), vm.ToValue(h.Flags))
	case collectionState:
		ctor := r.mapCtor
		if o.Class == setClass {
			ctor = r.setCtor
		}
		return r.construct(ctor, r.toJS(h.Entries))
	case sparseArrayState:
		arr := vm.NewArray()
		if o.Fields != nil {
			for _, k := range o.Fields.Keys {
				_ = arr.Set(k, r.nested(o.Fields.Values[k]))
			}
		}
		_ = arr.Set("length", h.Length)
		return arr
	}

	if o.Class == functionClass {
		if o.Source == "" {
			return nil
		}
		fn, err := vm.RunString("(" + o.Source + "\n)")
		if err != nil {
			return nil
		}
		return fn
	}
	if o.Fields == nil {
		return nil
	}
	obj := r.objectFromMap(o.Fields)
	if ctor, ok := vm.Get(o.Class).(*goja.Object); ok {
		if proto, ok := ctor.Get("prototype").(*goja.Object); ok {
			_ = obj.SetPrototype(proto)
		}
	}
	return obj
}

func (r *realm) construct(ctor goja.Value, args ...goja.Value) goja.Value {
	obj, err := r.vm.New(ctor, args...)
	if err != nil {
		return nil
	}
	return obj
}

func (r *realm) objectFromMap(m *value.Map) *goja.Object {
	obj := r.vm.NewObject()
	if m == nil {
		return obj
	}
	for _, k := range m.Keys {
		_ = obj.Set(k, r.nested(m.Values[k]))
	}
	return obj
}
