package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tarcv/uregex/opcode"
	"github.com/tarcv/uregex/pattern"
	"github.com/tarcv/uregex/uerrors"
)

func TestCompileSimpleLiteral(t *testing.T) {
	c, err := Compile("abc", 0, DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, 1, c.NumCaptures())
	require.Equal(t, pattern.StartString, c.Start.Kind)
	require.Equal(t, 3, c.MinMatchLen)
}

func TestCompileCaptureGroups(t *testing.T) {
	c, err := Compile(`(\d+)-(\d+)`, 0, DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, 3, c.NumCaptures()) // group 0 + two explicit groups
	require.Len(t, c.GroupMap, 3)
}

func TestCompileNamedCaptureGroup(t *testing.T) {
	c, err := Compile(`(?<year>\d{4})-(?<month>\d{2})`, 0, DefaultConfig())
	require.NoError(t, err)
	n, ok := c.GroupNumber("year")
	require.True(t, ok)
	require.Equal(t, 1, n)
	n, ok = c.GroupNumber("month")
	require.True(t, ok)
	require.Equal(t, 2, n)
}

func TestCompileUnknownFlagRejected(t *testing.T) {
	_, err := Compile("abc", pattern.Flags(1<<30), DefaultConfig())
	require.Error(t, err)
	var se *uerrors.SyntaxError
	require.ErrorAs(t, err, &se)
	require.Equal(t, uerrors.InvalidFlag, se.Kind)
}

func TestCompileUnboundedLookbehindRejected(t *testing.T) {
	_, err := Compile(`(?<=.*)x`, 0, DefaultConfig())
	require.Error(t, err)
	var se *uerrors.SyntaxError
	require.ErrorAs(t, err, &se)
	require.Equal(t, uerrors.LookBehindLimit, se.Kind)
}

func TestCompileLookbehindOverConfiguredLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxLookbehindLength = 2
	_, err := Compile(`(?<=abc)x`, 0, cfg)
	require.Error(t, err)
	var se *uerrors.SyntaxError
	require.ErrorAs(t, err, &se)
	require.Equal(t, uerrors.LookBehindLimit, se.Kind)
}

func TestCompileUnknownBackreferenceRejected(t *testing.T) {
	_, err := Compile(`(a)\2`, 0, DefaultConfig())
	require.Error(t, err)
	var se *uerrors.SyntaxError
	require.ErrorAs(t, err, &se)
	require.Equal(t, uerrors.InvalidBackRef, se.Kind)
}

func TestCompileUnknownNamedBackreferenceRejected(t *testing.T) {
	_, err := Compile(`(?<a>x)\k<b>`, 0, DefaultConfig())
	require.Error(t, err)
	var se *uerrors.SyntaxError
	require.ErrorAs(t, err, &se)
	require.Equal(t, uerrors.InvalidBackRef, se.Kind)
}

func TestCompileKnownNamedBackreferenceAccepted(t *testing.T) {
	_, err := Compile(`(?<a>x)\k<a>`, 0, DefaultConfig())
	require.NoError(t, err)
}

func TestCompileMismatchedParenRejected(t *testing.T) {
	_, err := Compile("(abc", 0, DefaultConfig())
	require.Error(t, err)
}

func TestCompileTooManyCaptureGroups(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxCaptureGroups = 1
	_, err := Compile(`(a)(b)`, 0, cfg)
	require.Error(t, err)
	var se *uerrors.SyntaxError
	require.ErrorAs(t, err, &se)
	require.Equal(t, uerrors.PatternTooBig, se.Kind)
}

func TestCompileCaseInsensitiveLeadingCharUsesStartSet(t *testing.T) {
	c, err := Compile("hello", pattern.CaseInsensitive, DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, pattern.StartSet, c.Start.Kind)
}

func TestCompileAnchoredStartOfText(t *testing.T) {
	c, err := Compile(`^foo`, 0, DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, pattern.StartOfText, c.Start.Kind)
}

func TestCompileLiteralAlternationUsesMultiLiteralStart(t *testing.T) {
	c, err := Compile(`cat|dog|bird`, 0, DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, pattern.StartMultiLiteral, c.Start.Kind)
	require.NotNil(t, c.Start.MultiLiteral)
}

func TestCompileMultilineAnchorUsesLineStart(t *testing.T) {
	c, err := Compile(`^foo`, pattern.Multiline, DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, pattern.LineStart, c.Start.Kind)
}

func TestCompileEndsWithEndOpcode(t *testing.T) {
	c, err := Compile("a", 0, DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, opcode.END, c.Code[len(c.Code)-1].Type())
}

func TestConfigValidateRejectsNonsense(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxCaptureGroups = 0
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.MaxStackCapacity = 1
	cfg.InitialStackCapacity = 2
	require.Error(t, cfg.Validate())
}

func TestMustCompilePanicsOnError(t *testing.T) {
	require.Panics(t, func() {
		MustCompile("(abc", 0, DefaultConfig())
	})
}
