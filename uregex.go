// Package uregex provides an ICU-style Unicode regular-expression engine:
// a compiled bytecode program (package compiler/pattern) executed by a
// backtracking virtual machine (package vm).
//
// Unlike RE2-style engines, uregex supports backreferences, lookaround,
// and possessive/atomic constructs, at the cost of the linear-time
// guarantee those engines provide; the match-time step budget in
// vm.Config bounds runaway backtracking instead.
//
// Basic usage:
//
//	re, err := uregex.Compile(`(\d+)-(\d+)`, 0)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	m := re.Matcher("age=42-99;")
//	if m.Find() {
//	    fmt.Println(m.Group(1), m.Group(2)) // "42" "99"
//	}
package uregex

import (
	"github.com/tarcv/uregex/compiler"
	"github.com/tarcv/uregex/pattern"
	"github.com/tarcv/uregex/uerrors"
	"github.com/tarcv/uregex/vm"
)

// Flags is re-exported so callers don't need to import package pattern
// for the common case of passing compile-time flags.
type Flags = pattern.Flags

const (
	UnixLines             = pattern.UnixLines
	CaseInsensitive       = pattern.CaseInsensitive
	Comments              = pattern.Comments
	Multiline             = pattern.Multiline
	Literal               = pattern.Literal
	DotAll                = pattern.DotAll
	CanonEq               = pattern.CanonEq
	UWord                 = pattern.UWord
	ErrorOnUnknownEscapes = pattern.ErrorOnUnknownEscapes
)

// Pattern is a compiled regular expression, safe to share across
// goroutines; each goroutine must create its own Matcher.
type Pattern struct {
	compiled *pattern.Compiled
	vmCfg    vm.Config
}

// Compile parses and compiles source under flags using the package's
// default resource limits.
//
// Example:
//
//	re, err := uregex.Compile(`\d{3}-\d{4}`, 0)
func Compile(source string, flags Flags) (*Pattern, error) {
	return CompileWithConfig(source, flags, compiler.DefaultConfig(), vm.DefaultConfig())
}

// MustCompile is like Compile but panics on error, for pattern literals
// known to be valid.
//
// Example:
//
//	var email = uregex.MustCompile(`[a-z]+@[a-z]+\.[a-z]+`, uregex.CaseInsensitive)
func MustCompile(source string, flags Flags) *Pattern {
	p, err := Compile(source, flags)
	if err != nil {
		panic("uregex: Compile(" + source + "): " + err.Error())
	}
	return p
}

// CompileWithConfig compiles source with explicit compile-time and
// run-time resource limits.
func CompileWithConfig(source string, flags Flags, ccfg compiler.Config, vcfg vm.Config) (*Pattern, error) {
	c, err := compiler.Compile(source, flags, ccfg)
	if err != nil {
		return nil, err
	}
	return &Pattern{compiled: c, vmCfg: vcfg}, nil
}

// String returns the source text the pattern was compiled from.
func (p *Pattern) String() string { return p.compiled.Source }

// NumSubexp returns the number of capture groups, group 0 (the whole
// match) included.
func (p *Pattern) NumSubexp() int { return p.compiled.NumCaptures() }

// GroupNumber resolves a named capture group to its index.
func (p *Pattern) GroupNumber(name string) (int, bool) { return p.compiled.GroupNumber(name) }

// Matcher binds this pattern to input text, for repeated matching
// against it via Reset. A Matcher is not safe for concurrent use.
func (p *Pattern) Matcher(input string) *Matcher {
	m := &Matcher{pattern: p, machine: vm.NewMachine(p.compiled, p.vmCfg)}
	m.Reset(input)
	return m
}

// Matcher executes one Pattern against one piece of input text,
// remembering the most recent match's captures.
type Matcher struct {
	pattern *Pattern
	machine *vm.Machine
	caps    []int64
	matched bool
}

// Reset rebinds the Matcher to new input text and clears any prior
// match state.
func (m *Matcher) Reset(input string) {
	m.machine.Reset(input)
	m.caps = nil
	m.matched = false
}

// Region narrows the search/match region to [start, end), in UTF-16
// code units.
func (m *Matcher) Region(start, end int) {
	m.machine.SetRegion(start, end)
}

// Matches reports whether the entire region matches the pattern. A
// branch that reaches the end of the program without consuming the
// whole region is rejected, forcing the VM to backtrack into any
// alternative or longer repetition that would.
func (m *Matcher) Matches() bool {
	start, end := m.machine.Region()
	caps, ok, err := m.machine.MatchEntireRegion(start, end)
	m.matched = ok && err == nil
	if m.matched {
		m.caps = caps
	}
	return m.matched
}

// LookingAt reports whether the pattern matches starting exactly at the
// region's start (but not necessarily consuming all of it).
func (m *Matcher) LookingAt() bool {
	start, _ := m.machine.Region()
	caps, ok, err := m.machine.Find(start)
	m.matched = ok && err == nil && int(caps[m.pattern.compiled.GroupMap[0]]) == start
	if m.matched {
		m.caps = caps
	}
	return m.matched
}

// Find searches the region for the next match, starting after the end
// of the previous one (or at the region's start, for the first call
// since Reset). It returns false once no further match exists.
func (m *Matcher) Find() bool {
	start, _ := m.machine.Region()
	if m.matched && len(m.caps) >= 4 {
		prevEnd := int(m.caps[3])
		if int(m.caps[3]) > int(m.caps[2]) {
			start = prevEnd
		} else {
			start = prevEnd + 1
		}
	}
	caps, ok, err := m.machine.Find(start)
	m.matched = ok && err == nil
	if m.matched {
		m.caps = caps
	} else {
		m.caps = nil
	}
	return m.matched
}

// FindAll returns every non-overlapping match's capture frame in the
// current region.
func (m *Matcher) FindAll() ([][]int64, error) {
	return m.machine.FindAll()
}

// Group returns the text captured by group i (0 = whole match), or ""
// if the group took no part in the most recent match. It panics with a
// *uerrors.StateError if called before a successful match, or if i
// names no capture group this pattern has.
func (m *Matcher) Group(i int) string {
	s, e, ok := m.span(i)
	if !ok {
		return ""
	}
	return m.sliceInput(s, e)
}

// GroupName returns the text captured by the named group. It panics
// with a *uerrors.StateError if called before a successful match, or if
// name is not a capture group this pattern declares.
func (m *Matcher) GroupName(name string) string {
	n, ok := m.pattern.GroupNumber(name)
	if !ok {
		panic(&uerrors.StateError{
			Kind:    uerrors.InvalidCaptureGroupName,
			Message: "no capture group named " + name,
		})
	}
	return m.Group(n)
}

// Start returns the code-unit offset where group i's match began, or -1
// if the group is unset. It panics with a
// *uerrors.StateError under the same conditions as Group.
func (m *Matcher) Start(i int) int {
	s, _, ok := m.span(i)
	if !ok {
		return -1
	}
	return s
}

// End returns the code-unit offset where group i's match ended, or -1
// if the group is unset. It panics with a
// *uerrors.StateError under the same conditions as Group.
func (m *Matcher) End(i int) int {
	_, e, ok := m.span(i)
	if !ok {
		return -1
	}
	return e
}

// span resolves group i's capture to an offset pair. ok is false only
// when the group took no part in a match that did otherwise succeed:
// that's a legitimate result, not an error. Calling before any
// successful match, or with a group number this pattern doesn't have,
// is a programmer error and panics instead.
func (m *Matcher) span(i int) (start, end int, ok bool) {
	if !m.matched {
		panic(&uerrors.StateError{
			Kind:    uerrors.InvalidState,
			Message: "no successful match to report on",
		})
	}
	if i < 0 || i >= len(m.pattern.compiled.GroupMap) {
		panic(&uerrors.StateError{
			Kind:    uerrors.InvalidState,
			Message: "no such capture group",
		})
	}
	slot := m.pattern.compiled.GroupMap[i]
	s, e := m.caps[slot], m.caps[slot+1]
	if s < 0 || e < 0 {
		return 0, 0, false
	}
	return int(s), int(e), true
}

// sliceInput decodes the UTF-16 code-unit span [s, e) of the matcher's
// current input back into a string.
func (m *Matcher) sliceInput(s, e int) string {
	return m.machine.Slice(s, e)
}
