// Package pattern defines the immutable Compiled Pattern record produced
// by package compiler and consumed by package vm.
package pattern

import (
	"fmt"
	"strings"

	"github.com/tarcv/uregex/internal/literal"
	"github.com/tarcv/uregex/opcode"
	"github.com/tarcv/uregex/uniset"
)

// StartKind is the start-optimisation hint kind computed by the
// compiler's start-optimisation pass.
type StartKind uint8

const (
	NoInfo StartKind = iota
	StartChar
	StartSet
	StartOfText
	LineStart
	StartString
	StartMultiLiteral
)

func (k StartKind) String() string {
	switch k {
	case NoInfo:
		return "NO_INFO"
	case StartChar:
		return "CHAR"
	case StartSet:
		return "SET"
	case StartOfText:
		return "START_OF_TEXT"
	case LineStart:
		return "LINE_START"
	case StartString:
		return "STRING"
	case StartMultiLiteral:
		return "MULTI_LITERAL"
	default:
		return "UNKNOWN"
	}
}

// StartInfo is the start-optimisation payload.
type StartInfo struct {
	Kind StartKind

	// InitialChar is valid when Kind == StartChar.
	InitialChar rune

	// InitialChars is valid when Kind == StartSet.
	InitialChars *uniset.RuneSet

	// InitialStringIdx/InitialStringLen index into Compiled.Literals
	// when Kind == StartString.
	InitialStringIdx int
	InitialStringLen int

	// MultiLiteral is valid when Kind == StartMultiLiteral: an
	// Aho-Corasick automaton over the branches of a leading alternation
	// of fixed strings (e.g. `cat|dog|bird`), built at compile time.
	MultiLiteral *literal.Prefilter
}

// Compiled is the immutable record produced by compiling a pattern.
// Once constructed it is never mutated, so it may be shared freely across
// goroutines, each constructing its own vm.Machine.
type Compiled struct {
	// Source is the original pattern text, for Matcher.String()/the
	// round-trip testable property.
	Source string
	FlagBits Flags

	// Code is the opcode stream. Index 0 is the entry point; the stream
	// is terminated by an END opcode.
	Code []opcode.Word

	// Literals is a single flat UTF-16 buffer holding every literal
	// substring referenced by STRING/STRING_I opcodes as (offset,
	// length) pairs.
	Literals []uint16

	// Sets holds every user-defined set referenced by a SETREF opcode.
	// Slot 0 is reserved nil.
	Sets []*uniset.RuneSet

	// GroupMap[i] is the frame-slot offset for capture group i; group 0,
	// the whole match, is GroupMap[0].
	GroupMap []int

	// NamedCaptureMap maps a named group to its group number.
	NamedCaptureMap map[string]int

	// FrameSize is the number of slots in one backtrack-stack frame.
	FrameSize int

	// DataSize is the number of matcher-data slots (outside the
	// backtrack stack) needed by this pattern.
	DataSize int

	Start StartInfo

	// MinMatchLen is a conservative lower bound on the code-unit length
	// of any accepted match.
	MinMatchLen int

	// LookbehindMax is the largest bounded lookbehind length (in code
	// units) found anywhere in the pattern. The VM does not read it: each
	// LB_CONT carries its own min and max scan bounds.
	LookbehindMax int
}

// NumCaptures returns the number of capture groups, including group 0.
func (c *Compiled) NumCaptures() int { return len(c.GroupMap) }

// GroupNumber resolves a named capture to its group number. The second
// return value is false if name is not a known group.
func (c *Compiled) GroupNumber(name string) (int, bool) {
	n, ok := c.NamedCaptureMap[name]
	return n, ok
}

// LiteralString decodes the literal-pool substring at (idx, length) back
// into a Go string.
func (c *Compiled) LiteralString(idx, length int) string {
	units := c.Literals[idx : idx+length]
	// Literals are stored as UTF-16 code units; decode surrogate pairs.
	var sb strings.Builder
	for i := 0; i < len(units); i++ {
		u := units[i]
		if u >= 0xD800 && u <= 0xDBFF && i+1 < len(units) {
			lo := units[i+1]
			if lo >= 0xDC00 && lo <= 0xDFFF {
				r := (rune(u-0xD800)<<10 | rune(lo-0xDC00)) + 0x10000
				sb.WriteRune(r)
				i++
				continue
			}
		}
		sb.WriteRune(rune(u))
	}
	return sb.String()
}

// Disassemble renders the opcode stream as one mnemonic-plus-operand line
// per instruction, for debugging and compiler tests.
func (c *Compiled) Disassemble() string {
	var sb strings.Builder
	i := 0
	for i < len(c.Code) {
		w := c.Code[i]
		t := w.Type()
		fmt.Fprintf(&sb, "%04d  %-14s %d\n", i, t.String(), w.Operand())
		arity := opcode.Arity(t)
		for k := 1; k < arity && i+k < len(c.Code); k++ {
			fmt.Fprintf(&sb, "%04d    .operand     %d\n", i+k, c.Code[i+k].Operand())
		}
		i += arity
	}
	return sb.String()
}
