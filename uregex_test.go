package uregex_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tarcv/uregex"
	"github.com/tarcv/uregex/uerrors"
)

func TestFindPlainLiteral(t *testing.T) {
	re, err := uregex.Compile("abc", 0)
	require.NoError(t, err)
	m := re.Matcher("xyzabcdef")
	require.True(t, m.Find())
	require.Equal(t, "abc", m.Group(0))
	require.Equal(t, 3, m.Start(0))
	require.Equal(t, 6, m.End(0))
}

func TestCaptureGroups(t *testing.T) {
	re, err := uregex.Compile(`(\d+)-(\d+)`, 0)
	require.NoError(t, err)
	m := re.Matcher("age=42-99;")
	require.True(t, m.Find())
	require.Equal(t, "42", m.Group(1))
	require.Equal(t, "99", m.Group(2))
}

func TestCaseInsensitiveFlag(t *testing.T) {
	re, err := uregex.Compile("HELLO", uregex.CaseInsensitive)
	require.NoError(t, err)
	m := re.Matcher("HeLLo")
	require.True(t, m.Matches())
}

func TestMultilineAnchor(t *testing.T) {
	re, err := uregex.Compile(`^foo`, uregex.Multiline)
	require.NoError(t, err)
	m := re.Matcher("bar\nfoo")
	require.True(t, m.Find())
	require.Equal(t, "foo", m.Group(0))
}

func TestLazyCountedQuantifier(t *testing.T) {
	re, err := uregex.Compile(`a{2,4}?b`, 0)
	require.NoError(t, err)
	m := re.Matcher("aaaab")
	require.True(t, m.Find())
	require.Equal(t, "aaaab", m.Group(0))
}

func TestLookbehindScenario(t *testing.T) {
	re, err := uregex.Compile(`(?<=\d)px`, 0)
	require.NoError(t, err)
	m := re.Matcher("12px")
	require.True(t, m.Find())
	require.Equal(t, "px", m.Group(0))
}

func TestUnboundedLookbehindIsCompileError(t *testing.T) {
	_, err := uregex.Compile(`(?<=.*)x`, 0)
	require.Error(t, err)
	var se *uerrors.SyntaxError
	require.ErrorAs(t, err, &se)
	require.Equal(t, uerrors.LookBehindLimit, se.Kind)
}

func TestMismatchedParenIsCompileError(t *testing.T) {
	_, err := uregex.Compile(`(`, 0)
	require.Error(t, err)
}

func TestUnknownPropertyIsCompileError(t *testing.T) {
	_, err := uregex.Compile(`\p{Nonsense}`, 0)
	require.Error(t, err)
	var se *uerrors.SyntaxError
	require.ErrorAs(t, err, &se)
	require.Equal(t, uerrors.PropertySyntax, se.Kind)
}

func TestBackreferenceScenario(t *testing.T) {
	re, err := uregex.Compile(`(.)\1`, 0)
	require.NoError(t, err)

	m := re.Matcher("xx")
	require.True(t, m.Find())

	m.Reset("xy")
	require.False(t, m.Find())
}

func TestMustCompilePanics(t *testing.T) {
	require.Panics(t, func() {
		uregex.MustCompile(`(`, 0)
	})
}

func TestReplaceAll(t *testing.T) {
	re, err := uregex.Compile(`(\w+)@(\w+)`, 0)
	require.NoError(t, err)
	got := re.ReplaceAll("alice@example bob@example", "$2:$1")
	require.Equal(t, "example:alice example:bob", got)
}

func TestReplaceFirst(t *testing.T) {
	re, err := uregex.Compile(`\d+`, 0)
	require.NoError(t, err)
	got := re.ReplaceFirst("1 22 333", "X")
	require.Equal(t, "X 22 333", got)
}

func TestReplaceAllNamedGroup(t *testing.T) {
	re, err := uregex.Compile(`(?<year>\d{4})-(?<month>\d{2})`, 0)
	require.NoError(t, err)
	got := re.ReplaceAll("2024-06", "${month}/${year}")
	require.Equal(t, "06/2024", got)
}

func TestMatchesBacktracksIntoLongerAlternative(t *testing.T) {
	re, err := uregex.Compile(`a|aa`, 0)
	require.NoError(t, err)
	m := re.Matcher("aa")
	require.True(t, m.Matches())
	require.Equal(t, "aa", m.Group(0))
}

func TestMatchesRejectsPartialRegion(t *testing.T) {
	re, err := uregex.Compile(`a|aa`, 0)
	require.NoError(t, err)
	m := re.Matcher("aaa")
	require.False(t, m.Matches())
}

func TestTightStarLoopOverSet(t *testing.T) {
	re, err := uregex.Compile(`a+b`, 0)
	require.NoError(t, err)
	m := re.Matcher("xaaaaby")
	require.True(t, m.Find())
	require.Equal(t, "aaaab", m.Group(0))
}

func TestTightStarLoopOverDot(t *testing.T) {
	re, err := uregex.Compile(`.*z`, 0)
	require.NoError(t, err)
	m := re.Matcher("abcz")
	require.True(t, m.Find())
	require.Equal(t, "abcz", m.Group(0))
}

func TestGroupBeforeMatchPanics(t *testing.T) {
	re, err := uregex.Compile(`abc`, 0)
	require.NoError(t, err)
	m := re.Matcher("xyz")
	require.Panics(t, func() {
		m.Group(0)
	})
}

func TestGroupNameUnknownPanics(t *testing.T) {
	re, err := uregex.Compile(`(?<year>\d{4})`, 0)
	require.NoError(t, err)
	m := re.Matcher("2024")
	require.True(t, m.Find())

	require.PanicsWithValue(t, &uerrors.StateError{
		Kind:    uerrors.InvalidCaptureGroupName,
		Message: "no capture group named nonsense",
	}, func() {
		m.GroupName("nonsense")
	})
}

func TestSplitIncludesDelimiterCaptureGroups(t *testing.T) {
	re, err := uregex.Compile(`(\s*,\s*)`, 0)
	require.NoError(t, err)
	got := re.Split("a, b,c", -1)
	require.Equal(t, []string{"a", ", ", "b", ",", "c"}, got)
}

func TestSplit(t *testing.T) {
	re, err := uregex.Compile(`\s*,\s*`, 0)
	require.NoError(t, err)
	got := re.Split("a, b,c ,  d", -1)
	require.Equal(t, []string{"a", "b", "c", "d"}, got)
}

func TestSplitWithLimit(t *testing.T) {
	re, err := uregex.Compile(`,`, 0)
	require.NoError(t, err)
	got := re.Split("a,b,c,d", 2)
	require.Equal(t, []string{"a", "b,c,d"}, got)
}

func TestFindAllOnMatcher(t *testing.T) {
	re, err := uregex.Compile(`\d+`, 0)
	require.NoError(t, err)
	m := re.Matcher("1 22 333")
	matches, err := m.FindAll()
	require.NoError(t, err)
	require.Len(t, matches, 3)
}

func TestRegionNarrowsSearch(t *testing.T) {
	re, err := uregex.Compile(`needle`, 0)
	require.NoError(t, err)
	input := "needle in a needle stack"
	m := re.Matcher(input)
	m.Region(7, len(input))
	require.True(t, m.Find())
	require.Equal(t, 12, m.Start(0))
}

func TestLookingAt(t *testing.T) {
	re, err := uregex.Compile(`foo`, 0)
	require.NoError(t, err)
	m := re.Matcher("foobar")
	require.True(t, m.LookingAt())

	m2 := re.Matcher("barfoo")
	require.False(t, m2.LookingAt())
}

func TestGroupNumberLookup(t *testing.T) {
	re, err := uregex.Compile(`(?<year>\d{4})`, 0)
	require.NoError(t, err)
	n, ok := re.GroupNumber("year")
	require.True(t, ok)
	require.Equal(t, 1, n)
	_, ok = re.GroupNumber("nope")
	require.False(t, ok)
}
