package pathobj

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Raw access works on encoded JSON without decoding the whole document.
// Paths use the same grammar as Object paths and are translated to gjson
// paths one escaped component at a time, so keys holding '.', '*', '?' or
// '@' are addressed literally.

// RawGet returns the decoded value at path in the JSON document doc. It
// resolves exactly what Object.Get resolves on the decoded document.
func RawGet(doc []byte, path string) (any, error) {
	p, err := _gPathCache.Parse(path)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(doc) {
		return nil, newPathError(OpRawGet, path, fmt.Errorf("%w: malformed JSON", ErrInvalidDocument))
	}

	result, i, res := rawWalk(gjson.ParseBytes(doc), p, false)
	if res != lookupFound {
		return nil, newStepError(OpRawGet, p, i, rawMissingCause(res, p.steps[i]))
	}
	return result.Value(), nil
}

// RawSet returns a copy of doc with value stored at path. An empty doc is
// treated as an empty object. Like Object.Set, an array index may address
// the append position but not beyond, and scalars are never replaced by
// containers on the way down.
func RawSet(doc []byte, path string, value any) ([]byte, error) {
	p, err := _gPathCache.Parse(path)
	if err != nil {
		return nil, err
	}
	if len(doc) > 0 && !gjson.ValidBytes(doc) {
		return nil, newPathError(OpRawSet, path, fmt.Errorf("%w: malformed JSON", ErrInvalidDocument))
	}

	if len(doc) > 0 {
		_, i, res := rawWalk(gjson.ParseBytes(doc), p, true)
		switch res {
		case lookupMismatch:
			return nil, newStepError(OpRawSet, p, i, rawConflict(p.steps[i]))
		case lookupOutOfRange:
			idx, _ := p.steps[i].seqIndex()
			return nil, newStepError(OpRawSet, p, i, fmt.Errorf("%w: index %d", ErrIndexOutOfRange, idx))
		}
	}

	plain, err := toPlain(value)
	if err != nil {
		return nil, newPathError(OpRawSet, path, err)
	}
	out, err := sjson.SetBytes(doc, rawPath(p.steps), plain)
	if err != nil {
		return nil, newPathError(OpRawSet, path, fmt.Errorf("%w: %w", ErrPathConflict, err))
	}
	return out, nil
}

// RawDelete returns a copy of doc with the value at path removed.
func RawDelete(doc []byte, path string) ([]byte, error) {
	p, err := _gPathCache.Parse(path)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(doc) {
		return nil, newPathError(OpRawDelete, path, fmt.Errorf("%w: malformed JSON", ErrInvalidDocument))
	}

	_, i, res := rawWalk(gjson.ParseBytes(doc), p, false)
	switch res {
	case lookupFound:
	case lookupMismatch:
		return nil, newStepError(OpRawDelete, p, i, rawConflict(p.steps[i]))
	default:
		return nil, newStepError(OpRawDelete, p, i, rawMissingCause(res, p.steps[i]))
	}

	out, err := sjson.DeleteBytes(doc, rawPath(p.steps))
	if err != nil {
		return nil, newPathError(OpRawDelete, path, fmt.Errorf("%w: %w", ErrPathConflict, err))
	}
	return out, nil
}

// rawWalk resolves p step by step from root with the same rules as lookup:
// arrays are only indexed by steps that index sequences, objects are
// addressed by the step's text, and scalars resolve nothing. It returns the
// value found, or the failing step and why it failed. With appendOK an
// index equal to an array's length is reported as missing, not out of
// range.
func rawWalk(root gjson.Result, p Path, appendOK bool) (gjson.Result, int, lookupResult) {
	current := root
	for i, step := range p.steps {
		switch {
		case current.IsArray():
			idx, ok := step.seqIndex()
			if !ok {
				return gjson.Result{}, i, lookupMismatch
			}
			elems := current.Array()
			switch {
			case idx < len(elems):
				current = elems[idx]
			case idx == len(elems) && appendOK:
				return gjson.Result{}, i, lookupMissing
			default:
				return gjson.Result{}, i, lookupOutOfRange
			}
		case current.IsObject():
			next := current.Get(gjson.Escape(step.Key))
			if !next.Exists() {
				return gjson.Result{}, i, lookupMissing
			}
			current = next
		default:
			return gjson.Result{}, i, lookupMismatch
		}
	}
	return current, len(p.steps), lookupFound
}

func rawMissingCause(res lookupResult, step Step) error {
	switch res {
	case lookupOutOfRange:
		idx, _ := step.seqIndex()
		return fmt.Errorf("%w: %w: index %d", ErrKeyNotFound, ErrIndexOutOfRange, idx)
	case lookupMismatch:
		return fmt.Errorf("%w: cannot resolve %s", ErrKeyNotFound, step)
	default:
		return fmt.Errorf("%w: %q", ErrKeyNotFound, step.Key)
	}
}

func rawConflict(step Step) error {
	return fmt.Errorf("%w: cannot resolve %s", ErrPathConflict, step)
}

// rawPath renders steps as a gjson/sjson path.
func rawPath(steps []Step) string {
	parts := make([]string, len(steps))
	for i, step := range steps {
		parts[i] = gjson.Escape(step.Key)
	}
	return strings.Join(parts, ".")
}
