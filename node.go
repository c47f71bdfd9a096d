package pathobj

import (
	"fmt"
	"reflect"
)

///////////////////////////////////////////////////////////////////////////////
// Node classification
///////////////////////////////////////////////////////////////////////////////

// nodeKind is the runtime variant of a value inside a container.
type nodeKind uint8

const (
	scalarNode nodeKind = iota
	mappingNode
	sequenceNode
)

func (k nodeKind) String() string {
	switch k {
	case mappingNode:
		return "mapping"
	case sequenceNode:
		return "sequence"
	default:
		return "scalar"
	}
}

// kindOf classifies v.
//
// map[string]any, map[any]any and []any are handled directly. Other maps
// with string keys and other slices are handled through reflection. Opaque
// leaves (see isOpaqueType) and []byte are scalars.
func kindOf(v any) nodeKind {
	switch v := v.(type) {
	case nil:
		return scalarNode
	case map[string]any, map[any]any:
		return mappingNode
	case []any:
		return sequenceNode
	case *Object:
		if v == nil {
			return scalarNode
		}
		return kindOf(v.data)
	}

	typ := reflect.TypeOf(v)
	if isOpaqueType(typ) {
		return scalarNode
	}

	switch typ.Kind() {
	case reflect.Map:
		if typ.Key().Kind() == reflect.String {
			return mappingNode
		}
	case reflect.Slice:
		if typ != ByteSliceType {
			return sequenceNode
		}
	}
	return scalarNode
}

// unwrap returns the container held by nested Objects.
func unwrap(v any) any {
	for {
		o, ok := v.(*Object)
		if !ok || o == nil {
			return v
		}
		v = o.data
	}
}

// isOpaqueType checks if a type should be treated as a leaf even when it is
// structurally a container. Opaque types include time.Time, uuid.UUID and
// anything implementing encoding.TextMarshaler.
func isOpaqueType(t reflect.Type) bool {
	// List of types that should be treated as primitives
	specialTypes := []reflect.Type{TimeType, UUIDType}

	for _, specialType := range specialTypes {
		if t == specialType {
			return true
		}
	}
	return t.Implements(textMarshalerType)
}

///////////////////////////////////////////////////////////////////////////////
// Lookups
///////////////////////////////////////////////////////////////////////////////

// lookupResult is the outcome of resolving a single step.
type lookupResult uint8

const (
	lookupFound      lookupResult = iota
	lookupMissing                 // mapping has no such key
	lookupOutOfRange              // sequence index >= length
	lookupMismatch                // node is a scalar, or the step cannot address this kind of node
)

// lookup resolves step against node without modifying it.
func lookup(node any, step Step) (any, lookupResult) {
	switch n := node.(type) {
	case *Object:
		return lookup(n.data, step)
	case map[string]any:
		v, ok := n[step.Key]
		if !ok {
			return nil, lookupMissing
		}
		return v, lookupFound
	case map[any]any:
		k, ok := anyKey(n, step.Key)
		if !ok {
			return nil, lookupMissing
		}
		return n[k], lookupFound
	case []any:
		i, ok := step.seqIndex()
		if !ok {
			return nil, lookupMismatch
		}
		if i >= len(n) {
			return nil, lookupOutOfRange
		}
		return n[i], lookupFound
	}

	switch kindOf(node) {
	case mappingNode:
		rv := reflect.ValueOf(node)
		v := rv.MapIndex(reflect.ValueOf(step.Key).Convert(rv.Type().Key()))
		if !v.IsValid() {
			return nil, lookupMissing
		}
		return v.Interface(), lookupFound
	case sequenceNode:
		i, ok := step.seqIndex()
		if !ok {
			return nil, lookupMismatch
		}
		rv := reflect.ValueOf(node)
		if i >= rv.Len() {
			return nil, lookupOutOfRange
		}
		return rv.Index(i).Interface(), lookupFound
	default:
		return nil, lookupMismatch
	}
}

// length returns the number of entries of a container node, 0 for scalars.
func length(node any) int {
	switch n := node.(type) {
	case *Object:
		return length(n.data)
	case map[string]any:
		return len(n)
	case map[any]any:
		return len(n)
	case []any:
		return len(n)
	}
	if kindOf(node) == scalarNode {
		return 0
	}
	return reflect.ValueOf(node).Len()
}

///////////////////////////////////////////////////////////////////////////////
// Mutations
///////////////////////////////////////////////////////////////////////////////

// store assigns value under step in node and returns the node to keep in
// the parent. Sequences may be reallocated by an append, so callers always
// write the returned node back.
//
// For sequences an index equal to the length appends and a larger index
// fails with ErrIndexOutOfRange.
func store(node any, step Step, value any) (any, error) {
	switch n := node.(type) {
	case *Object:
		data, err := store(n.data, step, value)
		if err != nil {
			return nil, err
		}
		n.data = data
		return n, nil
	case map[string]any:
		if n == nil {
			n = make(map[string]any, 1)
		}
		n[step.Key] = value
		return n, nil
	case map[any]any:
		if n == nil {
			n = make(map[any]any, 1)
		}
		k, ok := anyKey(n, step.Key)
		if !ok {
			k = step.Key
		}
		n[k] = value
		return n, nil
	case []any:
		i, ok := step.seqIndex()
		if !ok {
			return nil, fmt.Errorf("%w: key %q cannot index a sequence", ErrPathConflict, step.Key)
		}
		switch {
		case i < len(n):
			n[i] = value
			return n, nil
		case i == len(n):
			return append(n, value), nil
		default:
			return nil, fmt.Errorf("%w: index %d, length %d", ErrIndexOutOfRange, i, len(n))
		}
	}

	switch kindOf(node) {
	case mappingNode:
		rv := reflect.ValueOf(node)
		val, err := assignable(value, rv.Type().Elem())
		if err != nil {
			return nil, err
		}
		if rv.IsNil() {
			rv = reflect.MakeMapWithSize(rv.Type(), 1)
		}
		rv.SetMapIndex(reflect.ValueOf(step.Key).Convert(rv.Type().Key()), val)
		return rv.Interface(), nil
	case sequenceNode:
		i, ok := step.seqIndex()
		if !ok {
			return nil, fmt.Errorf("%w: key %q cannot index a sequence", ErrPathConflict, step.Key)
		}
		rv := reflect.ValueOf(node)
		val, err := assignable(value, rv.Type().Elem())
		if err != nil {
			return nil, err
		}
		switch {
		case i < rv.Len():
			rv.Index(i).Set(val)
			return node, nil
		case i == rv.Len():
			return reflect.Append(rv, val).Interface(), nil
		default:
			return nil, fmt.Errorf("%w: index %d, length %d", ErrIndexOutOfRange, i, rv.Len())
		}
	default:
		return nil, fmt.Errorf("%w: cannot assign %s into %T", ErrPathConflict, step, node)
	}
}

// remove deletes step from node and returns the node to keep in the parent.
// Removing from a sequence shifts the following elements down.
func remove(node any, step Step) (any, lookupResult) {
	switch n := node.(type) {
	case *Object:
		data, res := remove(n.data, step)
		if res != lookupFound {
			return n, res
		}
		n.data = data
		return n, lookupFound
	case map[string]any:
		if _, ok := n[step.Key]; !ok {
			return n, lookupMissing
		}
		delete(n, step.Key)
		return n, lookupFound
	case map[any]any:
		k, ok := anyKey(n, step.Key)
		if !ok {
			return n, lookupMissing
		}
		delete(n, k)
		return n, lookupFound
	case []any:
		i, ok := step.seqIndex()
		if !ok {
			return n, lookupMismatch
		}
		if i >= len(n) {
			return n, lookupOutOfRange
		}
		copy(n[i:], n[i+1:])
		n[len(n)-1] = nil
		return n[:len(n)-1], lookupFound
	}

	switch kindOf(node) {
	case mappingNode:
		rv := reflect.ValueOf(node)
		key := reflect.ValueOf(step.Key).Convert(rv.Type().Key())
		if !rv.MapIndex(key).IsValid() {
			return node, lookupMissing
		}
		rv.SetMapIndex(key, reflect.Value{})
		return node, lookupFound
	case sequenceNode:
		i, ok := step.seqIndex()
		if !ok {
			return node, lookupMismatch
		}
		rv := reflect.ValueOf(node)
		if i >= rv.Len() {
			return node, lookupOutOfRange
		}
		return reflect.AppendSlice(rv.Slice(0, i), rv.Slice(i+1, rv.Len())).Interface(), lookupFound
	default:
		return node, lookupMismatch
	}
}

// anyKey finds the key of m addressed by key. A string key is preferred;
// otherwise a key whose fmt form equals key is used, which is how Keys and
// ToObject render non string keys.
func anyKey(m map[any]any, key string) (any, bool) {
	if _, ok := m[key]; ok {
		return key, true
	}
	for k := range m {
		if _, isString := k.(string); !isString && fmt.Sprint(k) == key {
			return k, true
		}
	}
	return nil, false
}

// vivifyFor returns a new empty container to place under step in node so
// that next can be resolved in it. Typed containers get a container of their
// element type when that type is itself a map or slice.
func vivifyFor(node any, next Step) any {
	switch node.(type) {
	case *Object, map[string]any, map[any]any, []any:
		return next.vivify()
	}

	elem := reflect.TypeOf(node).Elem()
	switch elem.Kind() {
	case reflect.Map:
		if elem.Key().Kind() == reflect.String {
			return reflect.MakeMap(elem).Interface()
		}
	case reflect.Slice:
		return reflect.MakeSlice(elem, 0, 0).Interface()
	}
	return next.vivify()
}

// assignable converts value into something that can be stored in a
// container whose elements are of type elem.
func assignable(value any, elem reflect.Type) (reflect.Value, error) {
	if value == nil {
		switch elem.Kind() {
		case reflect.Interface, reflect.Map, reflect.Slice, reflect.Pointer:
			return reflect.Zero(elem), nil
		default:
			return reflect.Value{}, fmt.Errorf("%w: cannot store nil as %s", ErrPathConflict, elem)
		}
	}

	val := reflect.ValueOf(value)
	if !val.Type().AssignableTo(elem) {
		return reflect.Value{}, fmt.Errorf("%w: cannot store %T as %s", ErrPathConflict, value, elem)
	}
	return val, nil
}
