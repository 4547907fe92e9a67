package pattern

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tarcv/uregex/opcode"
)

func TestNumCapturesCountsGroupZero(t *testing.T) {
	c := &Compiled{GroupMap: []int{0, 2, 4}}
	require.Equal(t, 3, c.NumCaptures())
}

func TestGroupNumberLookup(t *testing.T) {
	c := &Compiled{NamedCaptureMap: map[string]int{"year": 1}}
	n, ok := c.GroupNumber("year")
	require.True(t, ok)
	require.Equal(t, 1, n)

	_, ok = c.GroupNumber("nope")
	require.False(t, ok)
}

func TestLiteralStringDecodesSurrogatePair(t *testing.T) {
	c := &Compiled{Literals: []uint16{'a', 'b', 0xD83D, 0xDE00}}
	require.Equal(t, "ab\U0001F600", c.LiteralString(0, 4))
}

func TestDisassembleRendersEveryInstruction(t *testing.T) {
	c := &Compiled{Code: []opcode.Word{
		opcode.Pack(opcode.ONECHAR, 'a'),
		opcode.Pack(opcode.END, 0),
	}}
	out := c.Disassemble()
	require.Contains(t, out, "ONECHAR")
	require.Contains(t, out, "END")
}

func TestStartKindStringCoversEveryKind(t *testing.T) {
	kinds := []StartKind{NoInfo, StartChar, StartSet, StartOfText, LineStart, StartString, StartMultiLiteral}
	for _, k := range kinds {
		require.NotEqual(t, "UNKNOWN", k.String())
	}
}
