// Package pathobj provides path addressed access to nested, JSON-like data
// built from mappings, sequences and scalars.
//
// A path is a string such as `users[0].name` or `config["log.level"]`. It
// is split into steps: dotted segments are keys, and bracket groups are
// either numeric indices (`[0]`) or quoted keys (`["a.b"]`, `['x']`). Bare
// bracket content that is not made of digits is a string key. See
// ParsePath for the full grammar.
//
// The main type is Object, which wraps an existing container without
// copying it:
//   - Get reads the value at a path. Missing keys raise ErrKeyNotFound, or
//     return a value from a default factory when the Object is created with
//     IgnoreMissing.
//   - Set writes a value, creating missing mappings and sequences on the
//     way. A numeric bracket step creates a sequence, any other step a
//     mapping. Writing to a sequence at its length appends.
//   - Delete removes a value. Sequence elements after it shift down.
//   - ToObject returns a plain copy with nested Objects unwrapped, and
//     detects cycles.
//
// Containers may be map[string]any, map[any]any, []any, or any other map
// with string keys or slice, which are accessed through reflection.
// time.Time, uuid.UUID, []byte and types implementing
// encoding.TextMarshaler are leaves.
//
// Package level Get, Set and Delete work on bare containers. FromJSON,
// FromYAML and FromTOML decode documents into Objects, and RawGet, RawSet and
// RawDelete work on encoded JSON directly.
//
// Parsed paths are cached in a PathCache shared by all Objects unless one is
// given in ObjectOpts. Objects themselves do no locking.
package pathobj
