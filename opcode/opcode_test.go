package opcode

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPackUnpackRoundTrip(t *testing.T) {
	cases := []struct {
		typ     Type
		operand int32
	}{
		{ONECHAR, 0},
		{JMP, 1234},
		{JMP, -1},
		{JMP, -8388608}, // min 24-bit signed value
		{STATE_SAVE, 8388607},
	}
	for _, c := range cases {
		w := Pack(c.typ, c.operand)
		require.Equal(t, c.typ, w.Type())
		require.Equal(t, c.operand, w.Operand())
	}
}

func TestUnsignedOperandAndInvertedFlag(t *testing.T) {
	w := Pack(SETREF, int32(5|InvertedSetFlag))
	require.Equal(t, uint32(5|InvertedSetFlag), w.UnsignedOperand())
}

func TestStringMnemonics(t *testing.T) {
	require.Equal(t, "JMP", JMP.String())
	require.Equal(t, "BACKREF_I", BACKREF_I.String())
}

func TestArityMultiSlotOpcodes(t *testing.T) {
	require.Equal(t, 1, Arity(ONECHAR))
	require.Equal(t, 4, Arity(CTR_INIT))
	require.Equal(t, 3, Arity(LB_CONT))
}
