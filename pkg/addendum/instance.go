package addendum

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Instance is one constructed annotation. Instances are built fresh on every
// collection build and owned by the collection that built them.
type Instance struct {
	typ    *Type
	target Target
	values map[string]interface{}
	keys   []string
	object reflect.Value // pointer to the backing struct for typed annotations
}

func newInstance(typ *Type, target Target) *Instance {
	inst := &Instance{
		typ:    typ,
		target: target,
		values: make(map[string]interface{}),
	}
	if typ.binding != nil {
		inst.object = typ.binding.newObject()
	}
	return inst
}

// Type returns the annotation type
func (i *Instance) Type() *Type { return i.typ }

// TypeName returns the fully qualified annotation type name
func (i *Instance) TypeName() string { return i.typ.name }

// Target returns the site the instance was constructed for
func (i *Instance) Target() Target { return i.target }

// Value returns the reserved value property
func (i *Instance) Value() interface{} { return i.values[ValueProperty] }

// Property returns a bound property value
func (i *Instance) Property(name string) (interface{}, bool) {
	v, ok := i.values[name]
	return v, ok
}

// HasProperty checks if a property was bound
func (i *Instance) HasProperty(name string) bool {
	_, ok := i.values[name]
	return ok
}

// Keys returns bound property names in binding order
func (i *Instance) Keys() []string {
	out := make([]string, len(i.keys))
	copy(out, i.keys)
	return out
}

// Properties returns a copy of all bound values
func (i *Instance) Properties() map[string]interface{} {
	out := make(map[string]interface{}, len(i.values))
	for k, v := range i.values {
		out[k] = v
	}
	return out
}

// Object returns the backing struct pointer of a typed annotation, or nil
func (i *Instance) Object() interface{} {
	if !i.object.IsValid() {
		return nil
	}
	return i.object.Interface()
}

func (i *Instance) String() string {
	var b strings.Builder
	b.WriteString("@")
	b.WriteString(i.typ.name)
	b.WriteString("(")
	for n, key := range i.keys {
		if n > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%v", key, i.values[key])
	}
	b.WriteString(")")
	return b.String()
}

func (i *Instance) set(prop string, v interface{}) error {
	if i.object.IsValid() {
		if err := i.typ.binding.assign(i.object, prop, v); err != nil {
			return &InvalidValueError{Type: i.typ.name, Property: prop, Err: err}
		}
	}
	if _, exists := i.values[prop]; !exists {
		i.keys = append(i.keys, prop)
	}
	i.values[prop] = v
	return nil
}

// As returns the struct backing a typed annotation instance
func As[T any](inst *Instance) (*T, bool) {
	if inst == nil || !inst.object.IsValid() {
		return nil, false
	}
	obj, ok := inst.object.Interface().(*T)
	return obj, ok
}

// GetString returns a string property value with optional default
func (i *Instance) GetString(name string, defaultValue ...string) string {
	if value, exists := i.values[name]; exists && value != nil {
		if converted, err := ConvertToString(value); err == nil {
			return converted
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

// GetBool returns a boolean property value with optional default
func (i *Instance) GetBool(name string, defaultValue ...bool) bool {
	if value, exists := i.values[name]; exists {
		if converted, err := ConvertToBool(value); err == nil {
			return converted
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return false
}

// GetInt returns an integer property value with optional default
func (i *Instance) GetInt(name string, defaultValue ...int) int {
	if value, exists := i.values[name]; exists {
		if converted, err := ConvertToInt(value); err == nil {
			return converted
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return 0
}

// GetStringSlice returns a string slice property value with optional default
func (i *Instance) GetStringSlice(name string, defaultValue ...[]string) []string {
	if value, exists := i.values[name]; exists {
		if converted, err := ConvertToStringSlice(value); err == nil {
			return converted
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return nil
}

// GetInstance returns a nested annotation property value
func (i *Instance) GetInstance(name string) (*Instance, bool) {
	nested, ok := i.values[name].(*Instance)
	return nested, ok
}

// ConvertToString converts any value to a string
func ConvertToString(value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case Ident:
		return string(v), nil
	case *Instance:
		return "", fmt.Errorf("cannot convert annotation %s to string", v.TypeName())
	}
	return fmt.Sprintf("%v", value), nil
}

// ConvertToBool converts various types to boolean
func ConvertToBool(value interface{}) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		return parseBoolString(v)
	case Ident:
		return parseBoolString(string(v))
	case int64:
		return v != 0, nil
	case float64:
		return v != 0, nil
	default:
		return false, fmt.Errorf("cannot convert %T to bool", value)
	}
}

// ConvertToInt converts various types to integer
func ConvertToInt(value interface{}) (int, error) {
	switch v := value.(type) {
	case int64:
		return int(v), nil
	case int:
		return v, nil
	case float64:
		return int(v), nil
	case string:
		return strconv.Atoi(strings.TrimSpace(v))
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("cannot convert %T to int", value)
	}
}

// ConvertToStringSlice converts a list or a single value to a string slice
func ConvertToStringSlice(value interface{}) ([]string, error) {
	switch v := value.(type) {
	case []string:
		return v, nil
	case []interface{}:
		result := make([]string, 0, len(v))
		for _, item := range v {
			s, err := ConvertToString(item)
			if err != nil {
				return nil, err
			}
			result = append(result, s)
		}
		return result, nil
	case nil:
		return nil, nil
	default:
		s, err := ConvertToString(v)
		if err != nil {
			return nil, err
		}
		return []string{s}, nil
	}
}

func parseBoolString(s string) (bool, error) {
	switch s {
	case "true", "True", "TRUE", "1", "yes", "Yes", "YES", "on", "On", "ON":
		return true, nil
	case "false", "False", "FALSE", "0", "no", "No", "NO", "off", "Off", "OFF":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s", s)
	}
}
