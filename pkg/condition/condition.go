// Package condition compiles rule-condition text into predicates over a
// character's state.
//
// A condition is one or more terms joined by "|":
//
//	AGE>=18
//	INT<5|STR<5
//	EVT?[10001,10002]
//	AEVT![10010]
//	MNY?[0,1]
//
// "?[...]" on a numeric attribute tests whether the value equals one of the
// listed integers; on a set attribute (TLT, EVT, AVT) it tests whether any
// listed id is present. "![...]" negates either test. AEVT is an alias of AVT.
// There is no AND operator and no grouping.
package condition

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/jwebster45206/life-engine/pkg/attr"
)

// ErrMalformedCondition is matched by every compilation error.
var ErrMalformedCondition = errors.New("malformed condition")

// Error describes why a condition could not be compiled.
type Error struct {
	Condition string
	Offset    int
	Reason    string
}

func newError(src string, offset int, reason string) *Error {
	return &Error{Condition: src, Offset: offset, Reason: reason}
}

func (e *Error) Error() string {
	return fmt.Sprintf("malformed condition %q at offset %d: %s", e.Condition, e.Offset, e.Reason)
}

func (e *Error) Is(target error) bool {
	return target == ErrMalformedCondition
}

// View is the read-only state a predicate is evaluated against.
// It avoids an import cycle with the state package.
type View interface {
	Int(key attr.Key) int
	Contains(key attr.Key, id int) bool
}

// Predicate reports whether a condition holds for a state.
type Predicate func(View) bool

// Always is the predicate used for rules without a condition.
func Always(View) bool { return true }

// Compile parses text into a predicate.
func Compile(text string) (Predicate, error) {
	if strings.TrimSpace(text) == "" {
		return nil, newError(text, 0, "empty condition")
	}
	toks, err := lex(text)
	if err != nil {
		return nil, err
	}
	p := &parser{src: text, toks: toks}
	return p.parse()
}

// MustCompile is like Compile but panics on error. Intended for tests and
// package-level tables.
func MustCompile(text string) Predicate {
	pred, err := Compile(text)
	if err != nil {
		panic(err)
	}
	return pred
}

type parser struct {
	src  string
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) errorf(t token, format string, args ...any) *Error {
	return newError(p.src, t.pos, fmt.Sprintf(format, args...))
}

func (p *parser) parse() (Predicate, error) {
	var terms []Predicate
	for {
		term, err := p.term()
		if err != nil {
			return nil, err
		}
		terms = append(terms, term)

		t := p.next()
		switch t.kind {
		case tokOr:
			continue
		case tokEOF:
			return anyOf(terms), nil
		default:
			return nil, p.errorf(t, "unexpected %s %q after term", t.kind, t.text)
		}
	}
}

func (p *parser) term() (Predicate, error) {
	t := p.next()
	if t.kind != tokKey {
		return nil, p.errorf(t, "expected attribute key, found %s", t.kind)
	}
	key, kind := attr.Lookup(t.text)
	switch kind {
	case attr.KindNumeric, attr.KindSet:
	case attr.KindUnknown:
		return nil, p.errorf(t, "unknown attribute %q", t.text)
	default:
		return nil, p.errorf(t, "%s attribute %q cannot be used in a condition", kind, t.text)
	}

	op := p.next()
	switch op.kind {
	case tokOp:
		if kind != attr.KindNumeric {
			return nil, p.errorf(op, "operator %q needs a numeric attribute, %q is a set", op.text, t.text)
		}
		v := p.next()
		if v.kind != tokInt {
			return nil, p.errorf(v, "expected integer after %q, found %s", op.text, v.kind)
		}
		return compare(key, op.text, v.num), nil
	case tokIn, tokNotIn:
		values, err := p.list(op)
		if err != nil {
			return nil, err
		}
		var pred Predicate
		if kind == attr.KindSet {
			pred = intersects(key, values)
		} else {
			pred = oneOf(key, values)
		}
		if op.kind == tokNotIn {
			return negate(pred), nil
		}
		return pred, nil
	default:
		return nil, p.errorf(op, "expected operator after %q, found %s", t.text, op.kind)
	}
}

func (p *parser) list(op token) ([]int, error) {
	open := p.next()
	if open.kind != tokLBrack {
		return nil, p.errorf(open, "expected '[' after %q", op.text)
	}
	if p.peek().kind == tokRBrack {
		return nil, p.errorf(p.peek(), "empty list")
	}
	var values []int
	for {
		v := p.next()
		if v.kind != tokInt {
			if v.kind == tokEOF {
				return nil, p.errorf(open, "unbalanced '['")
			}
			return nil, p.errorf(v, "expected integer in list, found %s", v.kind)
		}
		values = append(values, v.num)

		sep := p.next()
		switch sep.kind {
		case tokComma:
			continue
		case tokRBrack:
			return values, nil
		case tokEOF:
			return nil, p.errorf(open, "unbalanced '['")
		default:
			return nil, p.errorf(sep, "expected ',' or ']' in list, found %s", sep.kind)
		}
	}
}

func compare(key attr.Key, op string, v int) Predicate {
	switch op {
	case "==":
		return func(s View) bool { return s.Int(key) == v }
	case "!=":
		return func(s View) bool { return s.Int(key) != v }
	case "<":
		return func(s View) bool { return s.Int(key) < v }
	case "<=":
		return func(s View) bool { return s.Int(key) <= v }
	case ">":
		return func(s View) bool { return s.Int(key) > v }
	default: // ">="
		return func(s View) bool { return s.Int(key) >= v }
	}
}

func oneOf(key attr.Key, values []int) Predicate {
	return func(s View) bool {
		return slices.Contains(values, s.Int(key))
	}
}

func intersects(key attr.Key, ids []int) Predicate {
	return func(s View) bool {
		for _, id := range ids {
			if s.Contains(key, id) {
				return true
			}
		}
		return false
	}
}

func negate(p Predicate) Predicate {
	return func(s View) bool { return !p(s) }
}

func anyOf(terms []Predicate) Predicate {
	if len(terms) == 1 {
		return terms[0]
	}
	return func(s View) bool {
		for _, term := range terms {
			if term(s) {
				return true
			}
		}
		return false
	}
}
