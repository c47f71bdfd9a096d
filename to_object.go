package pathobj

import (
	"fmt"
	"reflect"
)

// ToObject returns a plain copy of data made of map[string]any, []any and
// leaf values. See Object.ToObject.
func ToObject(data any) (any, error) {
	return toPlain(data)
}

// containerID identifies a container by the memory it refers to. Slices also
// record their length, since two slices of one array are different
// containers.
type containerID struct {
	ptr uintptr
	len int
}

// unwrapper converts a nested structure into plain data. ancestors holds the
// containers currently being converted, from the root down.
type unwrapper struct {
	ancestors map[containerID]struct{}
	trail     []Step
}

func toPlain(data any) (any, error) {
	u := &unwrapper{ancestors: make(map[containerID]struct{})}
	return u.convert(data)
}

func (u *unwrapper) convert(v any) (any, error) {
	if o, ok := v.(*Object); ok {
		if o == nil {
			return nil, nil
		}
		done, err := u.enter(reflect.ValueOf(o))
		if err != nil {
			return nil, err
		}
		defer done()
		return u.convert(o.data)
	}

	switch kindOf(v) {
	case mappingNode:
		return u.convertMapping(v)
	case sequenceNode:
		return u.convertSequence(v)
	default:
		return v, nil
	}
}

func (u *unwrapper) convertMapping(v any) (any, error) {
	rv := reflect.ValueOf(v)
	if rv.Len() == 0 {
		return map[string]any{}, nil
	}

	done, err := u.enter(rv)
	if err != nil {
		return nil, err
	}
	defer done()

	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		key := mapKeyString(iter.Key())

		u.trail = append(u.trail, Key(key))
		value, err := u.convert(iter.Value().Interface())
		u.trail = u.trail[:len(u.trail)-1]
		if err != nil {
			return nil, err
		}
		out[key] = value
	}
	return out, nil
}

func (u *unwrapper) convertSequence(v any) (any, error) {
	rv := reflect.ValueOf(v)
	if rv.Len() == 0 {
		return []any{}, nil
	}

	done, err := u.enter(rv)
	if err != nil {
		return nil, err
	}
	defer done()

	out := make([]any, rv.Len())
	for i := range out {
		u.trail = append(u.trail, Index(i))
		value, err := u.convert(rv.Index(i).Interface())
		u.trail = u.trail[:len(u.trail)-1]
		if err != nil {
			return nil, err
		}
		out[i] = value
	}
	return out, nil
}

// enter marks rv as an ancestor of everything converted until done is
// called. Meeting an ancestor again is a cycle.
func (u *unwrapper) enter(rv reflect.Value) (func(), error) {
	id := containerID{ptr: rv.Pointer()}
	if rv.Kind() == reflect.Slice {
		id.len = rv.Len()
	}

	if _, seen := u.ancestors[id]; seen {
		return nil, newPathError(OpToObject, Path{steps: u.trail}.String(),
			fmt.Errorf("%w: %s refers to one of its ancestors", ErrCyclicStructure, rv.Type()))
	}

	u.ancestors[id] = struct{}{}
	return func() { delete(u.ancestors, id) }, nil
}

// mapKeyString renders a map key. Non string keys, which some YAML decoders
// produce, use their fmt representation.
func mapKeyString(k reflect.Value) string {
	if k.Kind() == reflect.Interface {
		k = k.Elem()
	}
	if !k.IsValid() {
		return fmt.Sprint(nil)
	}
	if k.Kind() == reflect.String {
		return k.String()
	}
	return fmt.Sprint(k.Interface())
}
