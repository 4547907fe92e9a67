package uniset

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRuneSetUnionIntersectComplement(t *testing.T) {
	a := NewRuneSet()
	a.AddRange('a', 'm')
	b := NewRuneSet()
	b.AddRange('g', 'z')

	u := a.Union(b)
	require.True(t, u.Contains('a'))
	require.True(t, u.Contains('z'))
	require.False(t, u.Contains('0'))

	i := a.Intersect(b)
	require.True(t, i.Contains('g'))
	require.True(t, i.Contains('m'))
	require.False(t, i.Contains('a'))
	require.False(t, i.Contains('z'))

	notA := a.Complement()
	require.False(t, notA.Contains('a'))
	require.False(t, notA.Contains('m'))
	require.True(t, notA.Contains('z'))
}

func TestParseSimpleClass(t *testing.T) {
	set, rest, err := Parse("[a-z0-9_]rest")
	require.NoError(t, err)
	require.Equal(t, "rest", rest)
	require.True(t, set.Contains('a'))
	require.True(t, set.Contains('5'))
	require.True(t, set.Contains('_'))
	require.False(t, set.Contains('A'))
}

func TestParseNegatedClass(t *testing.T) {
	set, rest, err := Parse("[^a-z]x")
	require.NoError(t, err)
	require.Equal(t, "x", rest)
	require.False(t, set.Contains('m'))
	require.True(t, set.Contains('M'))
}

func TestParseNestedEscapeClasses(t *testing.T) {
	set, _, err := Parse("[\\d\\s]")
	require.NoError(t, err)
	require.True(t, set.Contains('5'))
	require.True(t, set.Contains(' '))
	require.False(t, set.Contains('a'))
}

func TestParseUnterminatedClassErrors(t *testing.T) {
	_, _, err := Parse("[abc")
	require.ErrorIs(t, err, ErrUnterminatedClass)
}

func TestParseInvalidRangeErrors(t *testing.T) {
	_, _, err := Parse("[z-a]")
	require.ErrorIs(t, err, ErrInvalidRange)
}

func TestFoldCaseIncludesSelf(t *testing.T) {
	folds := FoldCase('a')
	require.Contains(t, folds, rune('a'))
	require.Contains(t, folds, rune('A'))
}

func TestBuiltinWordIsSharedByReference(t *testing.T) {
	a := Builtin(Word)
	b := Builtin(Word)
	require.Same(t, a, b)
	require.True(t, a.Contains('_'))
	require.True(t, a.Contains('9'))
	require.False(t, a.Contains(' '))
}
