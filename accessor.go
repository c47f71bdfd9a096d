package pathobj

import (
	"fmt"
	"log/slog"
)

///////////////////////////////////////////////////////////////////////////////
// Get
///////////////////////////////////////////////////////////////////////////////

// get walks every step of p from the root. Any failure to resolve a step is
// a missing value and is handled by the Object's missing policy.
func (o *Object) get(p Path) (any, error) {
	current := o.data
	for i, step := range p.steps {
		next, res := lookup(current, step)
		if res != lookupFound {
			return o.missing(OpGet, p, i, missingCause(res, current, step))
		}
		current = next
	}
	return current, nil
}

// missing applies the missing policy: a *PathError when raising, otherwise
// a fresh value from the default factory.
func (o *Object) missing(op string, p Path, i int, cause error) (any, error) {
	if o.raiseOnMissing {
		return nil, newStepError(op, p, i, cause)
	}

	o.logger.Debug("missing value, using default",
		slog.String("op", op),
		slog.String("path", p.text()),
		slog.Int("step", i),
	)

	if o.defaultFactory == nil {
		return nil, nil
	}
	return o.defaultFactory(), nil
}

func missingCause(res lookupResult, node any, step Step) error {
	switch res {
	case lookupOutOfRange:
		i, _ := step.seqIndex()
		return fmt.Errorf("%w: %w: index %d, length %d", ErrKeyNotFound, ErrIndexOutOfRange, i, length(node))
	case lookupMismatch:
		return fmt.Errorf("%w: cannot resolve %s in %s", ErrKeyNotFound, step, kindOf(node))
	default:
		return fmt.Errorf("%w: %q", ErrKeyNotFound, step.Key)
	}
}

///////////////////////////////////////////////////////////////////////////////
// Set
///////////////////////////////////////////////////////////////////////////////

func (o *Object) set(p Path, value any) error {
	root, err := o.setStep(o.data, p, 0, value)
	if err != nil {
		return err
	}
	o.data = root
	return nil
}

// setStep assigns value at p.steps[i:] below node and returns node as it
// must be stored back in its parent.
func (o *Object) setStep(node any, p Path, i int, value any) (any, error) {
	step := p.steps[i]

	if i == len(p.steps)-1 {
		before := length(node)
		updated, err := store(node, step, value)
		if err != nil {
			return nil, newStepError(OpSet, p, i, err)
		}
		if idx, ok := step.seqIndex(); ok && idx == before && kindOf(node) == sequenceNode {
			o.logger.Debug("appended to sequence",
				slog.String("op", OpSet),
				slog.String("path", p.text()),
				slog.Int("length", before+1),
			)
		}
		return updated, nil
	}

	child, res := lookup(node, step)
	switch res {
	case lookupFound:
		if kindOf(child) == scalarNode {
			return nil, newStepError(OpSet, p, i+1, fmt.Errorf("%w: cannot descend into %T", ErrPathConflict, child))
		}
	case lookupMissing, lookupOutOfRange:
		// An out of range index is fine here only when it is the append
		// position; store reports anything further out.
		child = vivifyFor(node, p.steps[i+1])
		o.logger.Debug("created intermediate container",
			slog.String("op", OpSet),
			slog.String("path", p.text()),
			slog.Int("step", i),
			slog.String("kind", kindOf(child).String()),
		)
	default:
		return nil, newStepError(OpSet, p, i, fmt.Errorf("%w: cannot resolve %s in %s", ErrPathConflict, step, kindOf(node)))
	}

	updatedChild, err := o.setStep(child, p, i+1, value)
	if err != nil {
		return nil, err
	}

	updated, err := store(node, step, updatedChild)
	if err != nil {
		return nil, newStepError(OpSet, p, i, err)
	}
	return updated, nil
}

///////////////////////////////////////////////////////////////////////////////
// Delete
///////////////////////////////////////////////////////////////////////////////

func (o *Object) del(p Path) error {
	root, err := o.deleteStep(o.data, p, 0)
	if err != nil {
		return err
	}
	o.data = root
	return nil
}

// deleteStep removes p.steps[i:] below node and returns node as it must be
// stored back in its parent. Nothing is created on the way down.
func (o *Object) deleteStep(node any, p Path, i int) (any, error) {
	step := p.steps[i]

	if kindOf(node) == scalarNode {
		return nil, newStepError(OpDelete, p, i, fmt.Errorf("%w: cannot descend into %T", ErrPathConflict, node))
	}

	if i == len(p.steps)-1 {
		updated, res := remove(node, step)
		switch res {
		case lookupFound:
			o.logger.Debug("deleted value",
				slog.String("op", OpDelete),
				slog.String("path", p.text()),
			)
			return updated, nil
		case lookupMismatch:
			return nil, newStepError(OpDelete, p, i, fmt.Errorf("%w: cannot resolve %s in %s", ErrPathConflict, step, kindOf(node)))
		default:
			return node, o.deleteMissing(p, i, missingCause(res, node, step))
		}
	}

	child, res := lookup(node, step)
	switch res {
	case lookupFound:
	case lookupMismatch:
		return nil, newStepError(OpDelete, p, i, fmt.Errorf("%w: cannot resolve %s in %s", ErrPathConflict, step, kindOf(node)))
	default:
		return node, o.deleteMissing(p, i, missingCause(res, node, step))
	}

	updatedChild, err := o.deleteStep(child, p, i+1)
	if err != nil {
		return nil, err
	}

	if kindOf(updatedChild) != sequenceNode {
		// Mappings are modified in place.
		return node, nil
	}
	updated, err := store(node, step, updatedChild)
	if err != nil {
		return nil, newStepError(OpDelete, p, i, err)
	}
	return updated, nil
}

// deleteMissing applies the missing policy to deletes: a *PathError when
// raising, otherwise a silent no-op.
func (o *Object) deleteMissing(p Path, i int, cause error) error {
	if o.raiseOnMissing {
		return newStepError(OpDelete, p, i, cause)
	}
	o.logger.Debug("nothing to delete",
		slog.String("op", OpDelete),
		slog.String("path", p.text()),
		slog.Int("step", i),
	)
	return nil
}
