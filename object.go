package pathobj

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"strconv"
)

///////////////////////////////////////////////////////////////////////////////
// Object
///////////////////////////////////////////////////////////////////////////////

// Object wraps a nested container of mappings and sequences and gives
// path addressed access to it.
//
// The container is not copied: Set and Delete mutate it in place. Because
// appending to or deleting from a sequence can reallocate it, Data returns
// the current root, which is what callers holding a sequence root must use
// after a write.
//
// An Object does no locking. Concurrent use of the same container must be
// serialized by the caller.
type Object struct {
	data           any
	raiseOnMissing bool
	defaultFactory func() any
	logger         *slog.Logger
	cache          *PathCache

	// Set for objects returned by Sub. Sequence roots are written back to
	// parent at path at after every mutation.
	parent *Object
	at     Path
}

// ObjectOpts configures an Object. The zero value raises on missing values
// and uses the package path cache.
type ObjectOpts struct {
	// IgnoreMissing makes Get return the default value and Delete do
	// nothing when a key or index does not exist.
	IgnoreMissing bool
	// DefaultFactory produces the value Get returns for missing paths when
	// IgnoreMissing is set. It is called once per miss. Nil yields nil.
	DefaultFactory func() any
	// Logger receives debug records about auto-created containers and
	// defaulted reads. Nil discards them.
	Logger *slog.Logger
	// Cache memoizes parsed paths. Nil uses the package cache.
	Cache *PathCache
}

// New wraps data. A nil data starts from an empty mapping. Wrapping another
// *Object shares its container and inherits its configuration; opts are
// ignored in that case.
func New(data any, opts ObjectOpts) *Object {
	if parent, ok := data.(*Object); ok && parent != nil {
		return &Object{
			data:           parent,
			raiseOnMissing: parent.raiseOnMissing,
			defaultFactory: parent.defaultFactory,
			logger:         parent.logger,
			cache:          parent.cache,
		}
	}

	if data == nil {
		data = map[string]any{}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	cache := opts.Cache
	if cache == nil {
		cache = _gPathCache
	}

	return &Object{
		data:           data,
		raiseOnMissing: !opts.IgnoreMissing,
		defaultFactory: opts.DefaultFactory,
		logger:         logger,
		cache:          cache,
	}
}

// Get returns the value at path.
//
// The value is returned as stored, mutable containers are not copied. When
// the path does not resolve, Get fails with a *PathError wrapping
// ErrKeyNotFound, or returns a value from the default factory when the
// Object ignores missing values. A default is never stored.
func (o *Object) Get(path string) (any, error) {
	p, err := o.cache.Parse(path)
	if err != nil {
		return nil, err
	}
	return o.get(p)
}

// GetPath is Get for a parsed path.
func (o *Object) GetPath(p Path) (any, error) {
	if err := p.check(OpGet); err != nil {
		return nil, err
	}
	return o.get(p)
}

// Set stores value at path, creating missing intermediate containers.
//
// A missing intermediate becomes a sequence when the next step is a numeric
// bracket index and a mapping otherwise. Descending through a scalar fails
// with ErrPathConflict. In a sequence, an index equal to its length appends
// and a larger index fails with ErrIndexOutOfRange.
//
// Set returns the Object so calls can be chained.
func (o *Object) Set(path string, value any) (*Object, error) {
	p, err := o.cache.Parse(path)
	if err != nil {
		return o, err
	}
	return o, o.SetPath(p, value)
}

// SetPath is Set for a parsed path.
func (o *Object) SetPath(p Path, value any) error {
	if err := p.check(OpSet); err != nil {
		return err
	}
	if err := o.set(p, value); err != nil {
		return err
	}
	return o.syncParent()
}

// Delete removes the value at path. Sequence elements after a removed index
// shift down. Missing keys fail with ErrKeyNotFound unless the Object
// ignores missing values; descending through a scalar always fails with
// ErrPathConflict.
func (o *Object) Delete(path string) error {
	p, err := o.cache.Parse(path)
	if err != nil {
		return err
	}
	return o.DeletePath(p)
}

// DeletePath is Delete for a parsed path.
func (o *Object) DeletePath(p Path) error {
	if err := p.check(OpDelete); err != nil {
		return err
	}
	if err := o.del(p); err != nil {
		return err
	}
	return o.syncParent()
}

// Has reports whether path resolves, regardless of the missing policy.
// Malformed paths do not resolve.
func (o *Object) Has(path string) bool {
	p, err := o.cache.Parse(path)
	if err != nil {
		return false
	}
	return o.resolves(p)
}

func (o *Object) resolves(p Path) bool {
	current := o.data
	for _, step := range p.steps {
		next, res := lookup(current, step)
		if res != lookupFound {
			return false
		}
		current = next
	}
	return true
}

// Sub returns an Object over the container at path, sharing the
// configuration of o. Writes through the returned Object are visible in o.
// A value that is not a container is an ErrPathConflict. When o ignores
// missing values and path does not resolve, the default value is wrapped
// instead and is not attached to o.
func (o *Object) Sub(path string) (*Object, error) {
	p, err := o.cache.Parse(path)
	if err != nil {
		return nil, err
	}

	value, err := o.get(p)
	if err != nil {
		return nil, err
	}
	if kindOf(value) == scalarNode {
		return nil, newStepError(OpGet, p, len(p.steps)-1, fmt.Errorf("%w: %T is not a container", ErrPathConflict, value))
	}

	sub := &Object{
		data:           value,
		raiseOnMissing: o.raiseOnMissing,
		defaultFactory: o.defaultFactory,
		logger:         o.logger,
		cache:          o.cache,
	}
	if o.resolves(p) {
		sub.parent, sub.at = o, p
	}
	return sub, nil
}

// syncParent writes the root of a Sub object back into its parent, as a
// sequence may have been reallocated and a nil map replaced.
func (o *Object) syncParent() error {
	if o.parent == nil {
		return nil
	}
	return o.parent.SetPath(o.at, o.data)
}

// Data returns the wrapped container. For an Object wrapping another
// Object this is the innermost container.
func (o *Object) Data() any {
	return unwrap(o.data)
}

// Len returns the number of top level entries.
func (o *Object) Len() int {
	return length(o.data)
}

// Keys returns the top level keys in sorted order, or the indices of a
// sequence root as decimal strings.
func (o *Object) Keys() []string {
	root := unwrap(o.data)

	switch kindOf(root) {
	case sequenceNode:
		keys := make([]string, length(root))
		for i := range keys {
			keys[i] = strconv.Itoa(i)
		}
		return keys
	case mappingNode:
		var keys []string
		switch m := root.(type) {
		case map[string]any:
			keys = make([]string, 0, len(m))
			for k := range m {
				keys = append(keys, k)
			}
		case map[any]any:
			keys = make([]string, 0, len(m))
			for k := range m {
				keys = append(keys, fmt.Sprint(k))
			}
		default:
			for _, k := range reflect.ValueOf(root).MapKeys() {
				keys = append(keys, k.String())
			}
		}
		sort.Strings(keys)
		return keys
	default:
		return nil
	}
}

// ToObject returns a plain copy of the container made of map[string]any,
// []any and leaf values, with nested Objects unwrapped. It fails with
// ErrCyclicStructure if a container contains one of its ancestors.
func (o *Object) ToObject() (any, error) {
	return toPlain(o.data)
}

// Equal reports whether o holds the same data as other, which may be an
// *Object or a plain container.
func (o *Object) Equal(other any) bool {
	mine, err := toPlain(o.data)
	if err != nil {
		return false
	}
	theirs, err := toPlain(other)
	if err != nil {
		return false
	}
	return reflect.DeepEqual(mine, theirs)
}

// String implements fmt.Stringer.
func (o *Object) String() string {
	plain, err := toPlain(o.data)
	if err != nil {
		return fmt.Sprintf("pathobj.Object(%v)", err)
	}
	return fmt.Sprint(plain)
}

// MarshalJSON implements json.Marshaler.
func (o *Object) MarshalJSON() ([]byte, error) {
	plain, err := toPlain(o.data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(plain)
}

// UnmarshalJSON implements json.Unmarshaler. It replaces the container and
// keeps the configuration. A zero Object gets the defaults of New.
func (o *Object) UnmarshalJSON(b []byte) error {
	data, err := decodeJSON(b)
	if err != nil {
		return err
	}
	if o.logger == nil {
		*o = *New(data, ObjectOpts{})
		return nil
	}
	o.data = data
	return nil
}
