package vm_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tarcv/uregex/compiler"
	"github.com/tarcv/uregex/pattern"
	"github.com/tarcv/uregex/vm"
)

func mustMachine(t *testing.T, src string, flags pattern.Flags) (*pattern.Compiled, *vm.Machine) {
	t.Helper()
	pat, err := compiler.Compile(src, flags, compiler.DefaultConfig())
	require.NoError(t, err)
	return pat, vm.NewMachine(pat, vm.DefaultConfig())
}

func groupText(pat *pattern.Compiled, m *vm.Machine, caps []int64, n int) string {
	slot := pat.GroupMap[n]
	s, e := caps[slot], caps[slot+1]
	if s < 0 || e < 0 {
		return ""
	}
	return m.Slice(int(s), int(e))
}

func TestFindPlainLiteral(t *testing.T) {
	pat, m := mustMachine(t, "abc", 0)
	m.Reset("xyzabcdef")
	caps, ok, err := m.Find(0)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "abc", groupText(pat, m, caps, 0))
	require.Equal(t, 3, int(caps[pat.GroupMap[0]]))
	require.Equal(t, 6, int(caps[pat.GroupMap[0]+1]))
}

func TestFindCaptureGroups(t *testing.T) {
	pat, m := mustMachine(t, `(\d+)-(\d+)`, 0)
	m.Reset("age=42-99;")
	caps, ok, err := m.Find(0)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "42-99", groupText(pat, m, caps, 0))
	require.Equal(t, "42", groupText(pat, m, caps, 1))
	require.Equal(t, "99", groupText(pat, m, caps, 2))
}

func TestFindCaseInsensitive(t *testing.T) {
	pat, m := mustMachine(t, "HELLO", pattern.CaseInsensitive)
	m.Reset("say HeLLo now")
	caps, ok, err := m.Find(0)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "HeLLo", groupText(pat, m, caps, 0))
}

func TestMultilineAnchors(t *testing.T) {
	pat, m := mustMachine(t, `^foo`, pattern.Multiline)
	m.Reset("bar\nfoo\nbaz")
	caps, ok, err := m.Find(0)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 4, int(caps[pat.GroupMap[0]]))
	require.Equal(t, 7, int(caps[pat.GroupMap[0]+1]))
}

func TestLazyCountedQuantifier(t *testing.T) {
	pat, m := mustMachine(t, `a{2,4}?b`, 0)
	m.Reset("aaaab")
	caps, ok, err := m.Find(0)
	require.NoError(t, err)
	require.True(t, ok)
	// The attempt at position 0 succeeds: lazy {2,4} first takes two a's,
	// finds no b, and extends one a at a time until b follows, so the
	// leftmost match is the whole input.
	require.Equal(t, "aaaab", groupText(pat, m, caps, 0))
}

func TestGreedyCountedQuantifier(t *testing.T) {
	pat, m := mustMachine(t, `a{2,4}b`, 0)
	m.Reset("aaaab")
	caps, ok, err := m.Find(0)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "aaaab", groupText(pat, m, caps, 0))
}

func TestLookbehindPositive(t *testing.T) {
	pat, m := mustMachine(t, `(?<=\d)px`, 0)
	m.Reset("12px")
	caps, ok, err := m.Find(0)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "px", groupText(pat, m, caps, 0))
	require.Equal(t, 2, int(caps[pat.GroupMap[0]]))
}

func TestLookbehindNegative(t *testing.T) {
	_, m := mustMachine(t, `(?<!\d)px`, 0)
	m.Reset("12px")
	_, ok, err := m.Find(0)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLookaheadPositive(t *testing.T) {
	pat, m := mustMachine(t, `foo(?=bar)`, 0)
	m.Reset("foobar")
	caps, ok, err := m.Find(0)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "foo", groupText(pat, m, caps, 0))
}

func TestLookaheadNegative(t *testing.T) {
	_, m := mustMachine(t, `foo(?!bar)`, 0)
	m.Reset("foobar")
	_, ok, err := m.Find(0)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestBackreference(t *testing.T) {
	pat, m := mustMachine(t, `(.)\1`, 0)
	m.Reset("xx")
	caps, ok, err := m.Find(0)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "xx", groupText(pat, m, caps, 0))

	m.Reset("xy")
	_, ok, err = m.Find(0)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCaseInsensitiveBackreference(t *testing.T) {
	pat, m := mustMachine(t, `(\w+)-\1`, pattern.CaseInsensitive)
	m.Reset("ABC-abc")
	caps, ok, err := m.Find(0)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "ABC-abc", groupText(pat, m, caps, 0))
}

func TestAtomicGroupPreventsBacktracking(t *testing.T) {
	// (?>a+)a never matches since the atomic group consumes every 'a',
	// leaving nothing for the trailing literal 'a'.
	_, m := mustMachine(t, `(?>a+)a`, 0)
	m.Reset("aaa")
	_, ok, err := m.Find(0)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPossessiveQuantifierPreventsBacktracking(t *testing.T) {
	_, m := mustMachine(t, `a++a`, 0)
	m.Reset("aaa")
	_, ok, err := m.Find(0)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestWordBoundary(t *testing.T) {
	pat, m := mustMachine(t, `\bcat\b`, 0)
	m.Reset("concatenate cat scatter")
	caps, ok, err := m.Find(0)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "cat", groupText(pat, m, caps, 0))
	require.Equal(t, 12, int(caps[pat.GroupMap[0]]))
}

func TestAlternation(t *testing.T) {
	pat, m := mustMachine(t, `cat|dog|bird`, 0)
	m.Reset("I have a dog")
	caps, ok, err := m.Find(0)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "dog", groupText(pat, m, caps, 0))
}

func TestFindAllNonOverlapping(t *testing.T) {
	_, m := mustMachine(t, `\d+`, 0)
	m.Reset("1 22 333")
	matches, err := m.FindAll()
	require.NoError(t, err)
	require.Len(t, matches, 3)
}

func TestFindAllHandlesZeroWidthMatches(t *testing.T) {
	_, m := mustMachine(t, `a*`, 0)
	m.Reset("baab")
	matches, err := m.FindAll()
	require.NoError(t, err)
	require.NotEmpty(t, matches)
}

func TestRegionLimitsSearch(t *testing.T) {
	pat, m := mustMachine(t, `needle`, 0)
	m.Reset("needle in a needle stack")
	m.SetRegion(7, len("needle in a needle stack"))
	caps, ok, err := m.Find(7)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 12, int(caps[pat.GroupMap[0]]))
}

func TestDisassembleDoesNotPanic(t *testing.T) {
	pat, _ := mustMachine(t, `(a|b)+c{2,3}(?=d)`, 0)
	require.NotPanics(t, func() { _ = pat.Disassemble() })
}
