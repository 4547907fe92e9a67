// Package vm implements the backtracking virtual machine that executes a
// pattern.Compiled program against input text.
//
// Machine mirrors ICU's RegexMatcher in spirit: a single mutable register
// set (current input position, program counter, capture slots) plus a
// stack64.Stack64 of saved register snapshots pushed by STATE_SAVE and
// restored by BACKTRACK. Matcher-data slots outside the backtrack stack
// hold counted-loop counters, lookaround save areas, and STO_SP/
// STO_INP_LOC scratch.
package vm

import (
	"unicode/utf16"

	"github.com/tarcv/uregex/pattern"
	"github.com/tarcv/uregex/stack64"
)

// Config bounds one Machine's resource use: its match-time step budget
// and the size of its backtrack stack.
type Config struct {
	// MaxSteps caps the number of dispatch-loop iterations for a single
	// Find call; 0 means unbounded. Exceeding it raises
	// uerrors.RuntimeError{Kind: uerrors.TimeOut}.
	MaxSteps int64

	// InitialStackCapacity/MaxStackCapacity size each attempt's backtrack
	// Stack64.
	InitialStackCapacity uint64
	MaxStackCapacity     uint64
}

// DefaultConfig returns sensible runtime limits.
func DefaultConfig() Config {
	return Config{
		MaxSteps:             50_000_000,
		InitialStackCapacity: 128,
		MaxStackCapacity:     1 << 20,
	}
}

// Machine runs one pattern.Compiled program against one input string. It
// is not safe for concurrent use; each goroutine needs its own Machine
// sharing a single, immutable pattern.Compiled.
type Machine struct {
	pat   *pattern.Compiled
	cfg   Config
	input []uint16
	data  []int64
	steps int64

	regionStart, regionEnd int

	// searchAnchor is the position \G matches against: the start of the
	// current find attempt, continuing from the end of the previous
	// match. Find and MatchEntireRegion set it once per call.
	searchAnchor int
}

// SetSearchAnchor pins the position \G (BACKSLASH_G) requires the match
// to start at for the current attempt.
func (m *Machine) SetSearchAnchor(pos int) { m.searchAnchor = pos }

// NewMachine creates a Machine bound to pat.
func NewMachine(pat *pattern.Compiled, cfg Config) *Machine {
	return &Machine{pat: pat, cfg: cfg, data: make([]int64, pat.DataSize)}
}

// Reset rebinds the Machine to new input text, as code units, and resets
// the search region to the whole input.
func (m *Machine) Reset(text string) {
	m.input = utf16.Encode([]rune(text))
	m.regionStart = 0
	m.regionEnd = len(m.input)
	m.searchAnchor = 0
	m.steps = 0
	for i := range m.data {
		m.data[i] = 0
	}
}

// SetRegion narrows the search/match region to [start, end), in code
// units.
func (m *Machine) SetRegion(start, end int) {
	if start < 0 {
		start = 0
	}
	if end > len(m.input) {
		end = len(m.input)
	}
	m.regionStart, m.regionEnd = start, end
}

// InputLen returns the input length in UTF-16 code units.
func (m *Machine) InputLen() int { return len(m.input) }

// Slice decodes the UTF-16 code-unit range [start, end) of the current
// input back into a string, for the Façade's Group/Split/Replace
// helpers.
func (m *Machine) Slice(start, end int) string {
	if start < 0 || end > len(m.input) || start > end {
		return ""
	}
	return string(utf16.Decode(m.input[start:end]))
}

// Region returns the current search region bounds.
func (m *Machine) Region() (int, int) { return m.regionStart, m.regionEnd }

// runeAt decodes the code point starting at code-unit index pos, honoring
// surrogate pairs; width is 0 at end of input.
func runeAt(units []uint16, pos int) (r rune, width int) {
	if pos < 0 || pos >= len(units) {
		return 0, 0
	}
	u := units[pos]
	if u >= 0xD800 && u <= 0xDBFF && pos+1 < len(units) {
		lo := units[pos+1]
		if lo >= 0xDC00 && lo <= 0xDFFF {
			return (rune(u-0xD800)<<10 | rune(lo-0xDC00)) + 0x10000, 2
		}
	}
	return rune(u), 1
}

// runeBefore decodes the code point ending at code-unit index pos.
func runeBefore(units []uint16, pos int) (r rune, width int) {
	if pos <= 0 || pos > len(units) {
		return 0, 0
	}
	u := units[pos-1]
	if u >= 0xDC00 && u <= 0xDFFF && pos-2 >= 0 {
		hi := units[pos-2]
		if hi >= 0xD800 && hi <= 0xDBFF {
			return (rune(hi-0xD800)<<10 | rune(u-0xDC00)) + 0x10000, 2
		}
	}
	return rune(u), 1
}

// newStack builds a backtrack stack sized per m.cfg.
func (m *Machine) newStack() *stack64.Stack64 {
	s := stack64.NewWithCapacity(int(m.cfg.InitialStackCapacity))
	if m.cfg.MaxStackCapacity > 0 {
		s.SetMaxCapacity(int(m.cfg.MaxStackCapacity))
	}
	return s
}
