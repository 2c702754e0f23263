package addendum

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"
)

var instanceType = reflect.TypeOf((*Instance)(nil))

// structBinding binds annotation properties onto the exported fields of a Go
// struct type.
type structBinding struct {
	typ    reflect.Type
	fields map[string][]int // property name -> field index path
	order  []string
}

func newStructBinding[T any]() (*structBinding, error) {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("annotation type must be a struct, got %s", typ.Kind())
	}

	b := &structBinding{typ: typ, fields: make(map[string][]int)}
	for _, field := range reflect.VisibleFields(typ) {
		if !field.IsExported() || field.Anonymous {
			continue
		}
		name, ok := propertyName(field)
		if !ok {
			continue
		}
		if _, dup := b.fields[name]; dup {
			return nil, fmt.Errorf("property '%s' is declared by more than one field", name)
		}
		b.fields[name] = field.Index
		b.order = append(b.order, name)
	}
	return b, nil
}

func propertyName(field reflect.StructField) (string, bool) {
	tag := field.Tag.Get("annotation")
	if tag == "-" {
		return "", false
	}
	if name, _, _ := strings.Cut(tag, ","); name != "" {
		return name, true
	}
	if field.Name == "Value" {
		return ValueProperty, true
	}
	return lowerFirst(field.Name), true
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

// properties returns declared property names other than the value slot
func (b *structBinding) properties() []string {
	out := make([]string, 0, len(b.order))
	for _, name := range b.order {
		if name != ValueProperty {
			out = append(out, name)
		}
	}
	return out
}

func (b *structBinding) newObject() reflect.Value {
	return reflect.New(b.typ)
}

// assign stores v into the field bound to prop. Properties without a backing
// field (the implicit value slot) are kept only in the instance's value map.
func (b *structBinding) assign(obj reflect.Value, prop string, v interface{}) error {
	index, ok := b.fields[prop]
	if !ok {
		return nil
	}
	field := obj.Elem().FieldByIndex(index)
	converted, err := convertValue(v, field.Type())
	if err != nil {
		return err
	}
	field.Set(converted)
	return nil
}

// convertValue converts a bound annotation value to the Go type t
func convertValue(v interface{}, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(t), nil
	}

	if inst, ok := v.(*Instance); ok {
		return convertInstance(inst, t)
	}

	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}

	switch {
	case t.Kind() == reflect.String && rv.Kind() == reflect.String,
		t.Kind() == reflect.Bool && rv.Kind() == reflect.Bool:
		return rv.Convert(t), nil
	case isInteger(t.Kind()) && isInteger(rv.Kind()):
		if overflowsInt(rv, t) {
			return reflect.Value{}, fmt.Errorf("value %v overflows %s", v, t)
		}
		return rv.Convert(t), nil
	case isFloat(t.Kind()) && (isInteger(rv.Kind()) || isFloat(rv.Kind())):
		return rv.Convert(t), nil
	case isInteger(t.Kind()) && isFloat(rv.Kind()):
		f := rv.Float()
		if f != float64(int64(f)) {
			return reflect.Value{}, fmt.Errorf("value %v is not an integer", v)
		}
		iv := reflect.ValueOf(int64(f))
		if overflowsInt(iv, t) {
			return reflect.Value{}, fmt.Errorf("value %v overflows %s", v, t)
		}
		return iv.Convert(t), nil
	case t.Kind() == reflect.Slice:
		return convertSlice(v, t)
	}

	return reflect.Value{}, fmt.Errorf("cannot use %T as %s", v, t)
}

func convertInstance(inst *Instance, t reflect.Type) (reflect.Value, error) {
	rv := reflect.ValueOf(inst)
	if instanceType.AssignableTo(t) {
		return rv, nil
	}
	if inst.object.IsValid() {
		if inst.object.Type().AssignableTo(t) {
			return inst.object, nil
		}
		if inst.object.Elem().Type().AssignableTo(t) {
			return inst.object.Elem(), nil
		}
	}
	if t.Kind() == reflect.Slice {
		return convertSlice(inst, t)
	}
	return reflect.Value{}, fmt.Errorf("cannot use @%s as %s", inst.TypeName(), t)
}

// convertSlice converts a list value, or wraps a single value, into a slice
func convertSlice(v interface{}, t reflect.Type) (reflect.Value, error) {
	items, ok := v.([]interface{})
	if !ok {
		items = []interface{}{v}
	}
	out := reflect.MakeSlice(t, 0, len(items))
	for i, item := range items {
		converted, err := convertValue(item, t.Elem())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("element %d: %w", i, err)
		}
		out = reflect.Append(out, converted)
	}
	return out, nil
}

func isInteger(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func overflowsInt(rv reflect.Value, t reflect.Type) bool {
	zero := reflect.Zero(t)
	switch t.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		switch rv.Kind() {
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return zero.OverflowUint(rv.Uint())
		}
		return rv.Int() < 0 || zero.OverflowUint(uint64(rv.Int()))
	default:
		switch rv.Kind() {
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return rv.Uint() > 1<<63-1 || zero.OverflowInt(int64(rv.Uint()))
		}
		return zero.OverflowInt(rv.Int())
	}
}
