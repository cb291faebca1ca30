// Package depexpr parses and resolves dependency expressions.
//
// An expression is a comma-separated token list, case-insensitive, with
// tokens trimmed:
//
//	after, <ref>, <offsetDays>   start offsetDays working days after the target's end
//	sameas, <ref>                start on the target's start
//
// <ref> is an absolute row number (5) or a count of chart-task rows
// relative to the referring row (+1, -2).
package depexpr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrEmpty means the expression is blank; the dependency is removed.
	ErrEmpty = errors.New("empty dependency expression")
	// ErrMalformed means the reference could not be read; the dependency
	// is cleared.
	ErrMalformed = errors.New("malformed dependency expression")
	// ErrUnsupported means the keyword is neither "after" nor "sameas".
	ErrUnsupported = errors.New("unsupported dependency keyword")
)

// Keyword selects the relation between a task and its target.
type Keyword string

const (
	After  Keyword = "after"
	SameAs Keyword = "sameas"
)

// DefaultOffset applies when an "after" offset is missing or not positive.
const DefaultOffset = 1

// Ref addresses the target row.
type Ref struct {
	// Value is the absolute row number, or the signed chart-task count
	// when Relative is set.
	Value    int
	Relative bool
}

func (r Ref) String() string {
	if r.Relative && r.Value > 0 {
		return "+" + strconv.Itoa(r.Value)
	}
	return strconv.Itoa(r.Value)
}

// Expression is a parsed dependency expression.
type Expression struct {
	Keyword Keyword
	Ref     Ref
	// Offset is always positive for After and zero for SameAs.
	Offset int
}

// Parse reads a dependency expression.
func Parse(text string) (Expression, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Expression{}, ErrEmpty
	}
	tokens := strings.Split(text, ",")
	for i := range tokens {
		tokens[i] = strings.ToLower(strings.TrimSpace(tokens[i]))
	}

	var e Expression
	switch Keyword(tokens[0]) {
	case After:
		e.Keyword = After
		e.Offset = DefaultOffset
		if len(tokens) > 2 {
			if n, err := strconv.Atoi(tokens[2]); err == nil && n > 0 {
				e.Offset = n
			}
		}
	case SameAs:
		e.Keyword = SameAs
	default:
		return Expression{}, fmt.Errorf("%w: %q", ErrUnsupported, tokens[0])
	}

	if len(tokens) < 2 {
		return Expression{}, fmt.Errorf("%w: missing reference", ErrMalformed)
	}
	ref, err := parseRef(tokens[1])
	if err != nil {
		return Expression{}, err
	}
	e.Ref = ref
	return e, nil
}

func parseRef(tok string) (Ref, error) {
	if tok == "" {
		return Ref{}, fmt.Errorf("%w: missing reference", ErrMalformed)
	}
	relative := tok[0] == '+' || tok[0] == '-'
	n, err := strconv.Atoi(tok)
	if err != nil {
		return Ref{}, fmt.Errorf("%w: reference %q", ErrMalformed, tok)
	}
	if relative {
		if n == 0 {
			return Ref{}, fmt.Errorf("%w: relative reference %q points at itself", ErrMalformed, tok)
		}
		return Ref{Value: n, Relative: true}, nil
	}
	if n < 1 {
		return Ref{}, fmt.Errorf("%w: row number %d", ErrMalformed, n)
	}
	return Ref{Value: n}, nil
}

// String renders e with its reference as written.
func (e Expression) String() string {
	return e.render(e.Ref.String())
}

// Format renders e in canonical absolute form against the target's
// current row number.
func (e Expression) Format(targetNo int) string {
	return e.render(strconv.Itoa(targetNo))
}

func (e Expression) render(ref string) string {
	if e.Keyword == SameAs {
		return string(SameAs) + "," + ref
	}
	return string(After) + "," + ref + "," + strconv.Itoa(e.Offset)
}
