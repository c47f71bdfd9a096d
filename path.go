package pathobj

import (
	"fmt"
	"strconv"
	"strings"
)

// StepKind tags a Step as a dotted key or a bracketed access.
type StepKind uint8

const (
	KeyStep   StepKind = iota // name from a dot separated segment
	IndexStep                 // content of a [...] group
)

func (k StepKind) String() string {
	switch k {
	case KeyStep:
		return "key"
	case IndexStep:
		return "index"
	default:
		return fmt.Sprintf("StepKind(%d)", uint8(k))
	}
}

// Step is a single navigation unit of a Path.
//
// Key always holds the textual key. For an IndexStep whose bracket content
// was a bare run of digits, Numeric is set and Index holds its value; such a
// step indexes sequences, and addresses mappings by its text.
type Step struct {
	Kind    StepKind
	Key     string
	Index   int
	Numeric bool
}

// Key returns a step addressing name. Names that cannot be written as a bare
// segment become quoted bracket steps, which is what ParsePath produces for
// them.
func Key(name string) Step {
	if !isBareKey(name) {
		return Step{Kind: IndexStep, Key: name}
	}
	return Step{Kind: KeyStep, Key: name}
}

// Index returns a numeric bracket step. Paths holding a negative index are
// rejected with ErrMalformedPath.
func Index(i int) Step {
	return Step{Kind: IndexStep, Key: strconv.Itoa(i), Index: i, Numeric: true}
}

// String renders the step as a standalone path fragment.
func (s Step) String() string {
	if s.Kind == KeyStep {
		return s.Key
	}
	if s.Numeric {
		return "[" + s.Key + "]"
	}
	return "[" + quoteKey(s.Key) + "]"
}

// seqIndex reports the sequence index addressed by the step. Numeric index
// steps and key steps made only of digits both index sequences.
func (s Step) seqIndex() (int, bool) {
	if s.Numeric {
		return s.Index, s.Index >= 0
	}
	if s.Kind == KeyStep && isDigits(s.Key) {
		i, err := strconv.Atoi(s.Key)
		return i, err == nil
	}
	return 0, false
}

// vivify returns the empty container auto-created in front of s.
func (s Step) vivify() any {
	if s.Numeric {
		return []any{}
	}
	return map[string]any{}
}

// Path is an immutable, non-empty sequence of steps.
type Path struct {
	steps []Step
	raw   string // text the path was parsed from, if any
}

// PathOf builds a Path from a list of keys. Strings become key steps and
// ints become numeric index steps; a Step is used as is.
func PathOf(keys ...any) (Path, error) {
	if len(keys) == 0 {
		return Path{}, newPathError(OpParse, "", fmt.Errorf("%w: no keys", ErrMalformedPath))
	}

	steps := make([]Step, 0, len(keys))
	for _, k := range keys {
		switch k := k.(type) {
		case string:
			steps = append(steps, Key(k))
		case int:
			if k < 0 {
				return Path{}, newPathError(OpParse, Path{steps: steps}.String(), fmt.Errorf("%w: negative index %d", ErrMalformedPath, k))
			}
			steps = append(steps, Index(k))
		case Step:
			if err := k.validate(); err != nil {
				return Path{}, newPathError(OpParse, Path{steps: steps}.String(), err)
			}
			steps = append(steps, k)
		default:
			return Path{}, newPathError(OpParse, Path{steps: steps}.String(), fmt.Errorf("%w: unsupported key type %T", ErrMalformedPath, k))
		}
	}

	return Path{steps: steps}, nil
}

// validate checks a hand built step. Steps produced by ParsePath, Key and
// Index with a non negative argument are always valid.
func (s Step) validate() error {
	switch {
	case s.Kind != KeyStep && s.Kind != IndexStep:
		return fmt.Errorf("%w: unknown step kind %s", ErrMalformedPath, s.Kind)
	case s.Numeric && s.Index < 0:
		return fmt.Errorf("%w: negative index %d", ErrMalformedPath, s.Index)
	case s.Numeric && s.Kind != IndexStep:
		return fmt.Errorf("%w: numeric %s step", ErrMalformedPath, s.Kind)
	}
	return nil
}

// check reports the first invalid step of p, for operations taking a Path
// that may not come from ParsePath.
func (p Path) check(op string) error {
	if p.IsZero() {
		return newPathError(op, "", fmt.Errorf("%w: empty path", ErrMalformedPath))
	}
	for i, s := range p.steps {
		if err := s.validate(); err != nil {
			return newStepError(op, p, i, err)
		}
	}
	return nil
}

// Len returns the number of steps.
func (p Path) Len() int {
	return len(p.steps)
}

// Step returns the i'th step.
func (p Path) Step(i int) Step {
	return p.steps[i]
}

// Steps returns a copy of the steps.
func (p Path) Steps() []Step {
	return append([]Step(nil), p.steps...)
}

// Last returns the final step.
func (p Path) Last() Step {
	return p.steps[len(p.steps)-1]
}

// IsZero reports whether p is the zero Path, which has no steps.
func (p Path) IsZero() bool {
	return len(p.steps) == 0
}

// Equal reports whether both paths have the same steps.
func (p Path) Equal(other Path) bool {
	if len(p.steps) != len(other.steps) {
		return false
	}
	for i := range p.steps {
		if p.steps[i] != other.steps[i] {
			return false
		}
	}
	return true
}

// String renders p in canonical path syntax. The result parses back to an
// equal Path.
func (p Path) String() string {
	var b strings.Builder
	for i, s := range p.steps {
		if s.Kind == KeyStep && i > 0 {
			b.WriteByte(PathSeparator)
		}
		b.WriteString(s.String())
	}
	return b.String()
}

// text is the caller's spelling of the path when there is one.
func (p Path) text() string {
	if p.raw != "" {
		return p.raw
	}
	return p.String()
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isBareKey(s string) bool {
	return s != "" && !strings.ContainsAny(s, ".[]")
}

func quoteKey(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte(DoubleQuote)
	for i := 0; i < len(s); i++ {
		if s[i] == DoubleQuote || s[i] == EscapeChar {
			b.WriteByte(EscapeChar)
		}
		b.WriteByte(s[i])
	}
	b.WriteByte(DoubleQuote)
	return b.String()
}
