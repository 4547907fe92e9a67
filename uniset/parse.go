package uniset

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrUnterminatedClass is returned when a bracket expression has no
// closing ']'.
var ErrUnterminatedClass = errors.New("uniset: missing closing ']'")

// ErrInvalidRange is returned when a '-' range has its endpoints reversed
// or dangling (e.g. "[z-a]").
var ErrInvalidRange = errors.New("uniset: invalid range in character class")

// Parse parses a bracket expression starting at src[0] == '[' and returns
// the resulting set plus the remainder of src after the closing ']'.
//
// This is scoped to bracket-expression syntax only, one rung below the
// pattern-atom parser in package compiler: it knows nothing about
// quantifiers, groups, or anchors.
func Parse(src string) (*RuneSet, string, error) {
	if len(src) == 0 || src[0] != '[' {
		return nil, src, fmt.Errorf("uniset: expected '[' at start of class")
	}
	i := 1
	negate := false
	if i < len(src) && src[i] == '^' {
		negate = true
		i++
	}

	set := NewRuneSet()
	first := true
	for i < len(src) {
		if src[i] == ']' && !first {
			i++
			result := set
			if negate {
				result = set.Complement()
			}
			return result, src[i:], nil
		}
		first = false

		lo, width, err := parseClassAtom(src[i:])
		if err != nil {
			return nil, src, err
		}
		i += width

		if lo.isClass {
			set = set.Union(lo.class)
			continue
		}

		// Check for a range: atom '-' atom, but not if '-' is the last
		// char before ']'.
		if i < len(src) && src[i] == '-' && i+1 < len(src) && src[i+1] != ']' {
			hi, hwidth, err := parseClassAtom(src[i+1:])
			if err != nil {
				return nil, src, err
			}
			if hi.isClass {
				return nil, src, ErrInvalidRange
			}
			if hi.r < lo.r {
				return nil, src, ErrInvalidRange
			}
			set.AddRange(lo.r, hi.r)
			i += 1 + hwidth
			continue
		}

		set.AddChar(lo.r)
	}
	return nil, src, ErrUnterminatedClass
}

type classAtom struct {
	r       rune
	isClass bool
	class   *RuneSet
}

// parseClassAtom parses one element of a bracket expression: a literal
// rune, an escape, or a nested \d/\w/\s-style class. Returns the atom and
// how many bytes of src it consumed.
func parseClassAtom(src string) (classAtom, int, error) {
	if len(src) == 0 {
		return classAtom{}, 0, ErrUnterminatedClass
	}
	if src[0] != '\\' {
		r, width := decodeRune(src)
		return classAtom{r: r}, width, nil
	}
	if len(src) < 2 {
		return classAtom{}, 0, fmt.Errorf("uniset: dangling escape")
	}
	switch src[1] {
	case 'd':
		return classAtom{isClass: true, class: Builtin(Digit)}, 2, nil
	case 'D':
		return classAtom{isClass: true, class: Builtin(NotDigit)}, 2, nil
	case 'w':
		return classAtom{isClass: true, class: Builtin(Word)}, 2, nil
	case 'W':
		return classAtom{isClass: true, class: Builtin(NotWord)}, 2, nil
	case 's':
		return classAtom{isClass: true, class: Builtin(Space)}, 2, nil
	case 'S':
		return classAtom{isClass: true, class: Builtin(NotSpace)}, 2, nil
	case 'n':
		return classAtom{r: '\n'}, 2, nil
	case 't':
		return classAtom{r: '\t'}, 2, nil
	case 'r':
		return classAtom{r: '\r'}, 2, nil
	case 'f':
		return classAtom{r: '\f'}, 2, nil
	case 'v':
		return classAtom{r: '\v'}, 2, nil
	case '0':
		return classAtom{r: 0}, 2, nil
	case 'u':
		return parseHexEscape(src[2:], 4, 2)
	case 'x':
		if len(src) > 2 && src[2] == '{' {
			end := strings.IndexByte(src[2:], '}')
			if end < 0 {
				return classAtom{}, 0, fmt.Errorf("uniset: unterminated \\x{...}")
			}
			hex := src[3 : 2+end]
			r, err := parseHexDigits(hex)
			if err != nil {
				return classAtom{}, 0, err
			}
			return classAtom{r: r}, 3 + end, nil
		}
		return parseHexEscape(src[2:], 2, 2)
	default:
		r, width := decodeRune(src[1:])
		return classAtom{r: r}, 1 + width, nil
	}
}

func parseHexEscape(rest string, n, prefixLen int) (classAtom, int, error) {
	if len(rest) < n {
		return classAtom{}, 0, fmt.Errorf("uniset: short hex escape")
	}
	r, err := parseHexDigits(rest[:n])
	if err != nil {
		return classAtom{}, 0, err
	}
	return classAtom{r: r}, prefixLen + n, nil
}

func parseHexDigits(s string) (rune, error) {
	var v rune
	for _, c := range s {
		v <<= 4
		switch {
		case c >= '0' && c <= '9':
			v |= rune(c - '0')
		case c >= 'a' && c <= 'f':
			v |= rune(c-'a') + 10
		case c >= 'A' && c <= 'F':
			v |= rune(c-'A') + 10
		default:
			return 0, fmt.Errorf("uniset: invalid hex digit %q", c)
		}
	}
	return v, nil
}

// decodeRune decodes the first UTF-8 rune of s along with its width.
func decodeRune(s string) (rune, int) {
	r, w := utf8.DecodeRuneInString(s)
	return r, w
}
