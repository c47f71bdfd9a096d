package pathobj

import (
	"fmt"
	"strconv"
	"strings"
)

// This file contains the tokenizer for path strings. It turns a path into an
// ordered list of Steps and supports the following grammar:
//
// Path grammar:
//     <path>
// path:
//     <segment> ['.' <segment>]^*
// segment:
//     <identifier> [<bracket>]^* | [<bracket>]^+
// identifier:
//     any run of bytes other than '.', '[' and ']'
// bracket:
//     '[' <quoted> ']' | '[' <token> ']'
// quoted:
//     '"' <chars> '"' | "'" <chars> "'"   // '\' escapes the next byte
// token:
//     <digits> (numeric index) | <chars> (string key), surrounding spaces trimmed

// ParsePath converts a path string into a Path.
//
// Failures are reported as a *PathError wrapping ErrMalformedPath.
func ParsePath(path string) (Path, error) {
	steps, err := tokenize(path)
	if err != nil {
		return Path{}, newPathError(OpParse, path, err)
	}
	return Path{steps: steps, raw: path}, nil
}

// MustParsePath is like ParsePath but panics if the path is malformed.
func MustParsePath(path string) Path {
	p, err := ParsePath(path)
	if err != nil {
		panic(err)
	}
	return p
}

func tokenize(path string) ([]Step, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrMalformedPath)
	}
	if path[0] == PathSeparator {
		return nil, fmt.Errorf("%w: path starts with %q", ErrMalformedPath, PathSeparator)
	}

	steps := make([]Step, 0, strings.Count(path, ".")+1)

	i := 0
	for i < len(path) {
		// Start of a segment
		switch path[i] {
		case PathSeparator:
			return nil, fmt.Errorf("%w: empty segment at offset %d", ErrMalformedPath, i)
		case BracketClose:
			return nil, fmt.Errorf("%w: unexpected %q at offset %d", ErrMalformedPath, BracketClose, i)
		case BracketOpen:
			// Bracket-only segment, handled below
		default:
			start := i
			for i < len(path) && path[i] != PathSeparator && path[i] != BracketOpen && path[i] != BracketClose {
				i++
			}
			if i < len(path) && path[i] == BracketClose {
				return nil, fmt.Errorf("%w: unexpected %q at offset %d", ErrMalformedPath, BracketClose, i)
			}
			steps = append(steps, Step{Kind: KeyStep, Key: path[start:i]})
		}

		// Any number of bracket groups may follow
		for i < len(path) && path[i] == BracketOpen {
			step, next, err := scanBracket(path, i)
			if err != nil {
				return nil, err
			}
			steps = append(steps, step)
			i = next
		}

		if i >= len(path) {
			break
		}

		switch path[i] {
		case PathSeparator:
			i++
			if i == len(path) {
				return nil, fmt.Errorf("%w: empty segment at offset %d", ErrMalformedPath, i)
			}
		default:
			return nil, fmt.Errorf("%w: unexpected %q after %q at offset %d", ErrMalformedPath, path[i], BracketClose, i)
		}
	}

	return steps, nil
}

// scanBracket scans the bracket group opening at path[open] and returns the
// step and the offset just past the closing bracket.
func scanBracket(path string, open int) (Step, int, error) {
	i := skipSpaces(path, open+1)
	if i >= len(path) {
		return Step{}, 0, fmt.Errorf("%w: unclosed %q at offset %d", ErrMalformedPath, BracketOpen, open)
	}

	if c := path[i]; c == SingleQuote || c == DoubleQuote {
		key, next, err := scanQuoted(path, i, c)
		if err != nil {
			return Step{}, 0, err
		}
		i = skipSpaces(path, next)
		if i >= len(path) {
			return Step{}, 0, fmt.Errorf("%w: unclosed %q at offset %d", ErrMalformedPath, BracketOpen, open)
		}
		if path[i] != BracketClose {
			return Step{}, 0, fmt.Errorf("%w: unexpected %q after quoted key at offset %d", ErrMalformedPath, path[i], i)
		}
		return Step{Kind: IndexStep, Key: key}, i + 1, nil
	}

	end := strings.IndexByte(path[i:], BracketClose)
	if end == -1 {
		return Step{}, 0, fmt.Errorf("%w: unclosed %q at offset %d", ErrMalformedPath, BracketOpen, open)
	}
	end += i

	token := strings.TrimSpace(path[i:end])
	if token == "" {
		return Step{}, 0, fmt.Errorf("%w: empty brackets at offset %d", ErrMalformedPath, open)
	}
	if j := strings.IndexByte(token, BracketOpen); j != -1 {
		return Step{}, 0, fmt.Errorf("%w: unexpected %q inside brackets at offset %d", ErrMalformedPath, BracketOpen, open)
	}

	return bracketStep(token), end + 1, nil
}

// scanQuoted reads the quoted string starting at path[start] and returns its
// unescaped content and the offset just past the closing quote.
func scanQuoted(path string, start int, quote byte) (string, int, error) {
	var builder strings.Builder
	escaped := false

	for i := start + 1; i < len(path); i++ {
		c := path[i]

		if escaped {
			builder.WriteByte(c)
			escaped = false
			continue
		}

		switch c {
		case EscapeChar:
			escaped = true
		case quote:
			return builder.String(), i + 1, nil
		default:
			builder.WriteByte(c)
		}
	}

	return "", 0, fmt.Errorf("%w: unterminated quoted key at offset %d", ErrMalformedPath, start)
}

// bracketStep interprets unquoted bracket content. A run of digits is a
// numeric index, anything else is a string key.
func bracketStep(token string) Step {
	if isDigits(token) {
		if n, err := strconv.Atoi(token); err == nil {
			return Step{Kind: IndexStep, Key: token, Index: n, Numeric: true}
		}
	}
	return Step{Kind: IndexStep, Key: token}
}

func skipSpaces(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return i
}
