package vm

import (
	"github.com/tarcv/uregex/opcode"
)

// findLookbehindEnd scans forward from bodyStart (the instruction right
// after an LB_CONT/LBN_CONT's operand slots) and returns the index of the
// LB_END/LBN_END that closes it, accounting for nested lookbehinds by
// tracking LB_START/END depth the same way balanced-parenthesis scanning
// would.
func findLookbehindEnd(code []opcode.Word, bodyStart int) int {
	depth := 1
	i := bodyStart
	for i < len(code) {
		t := code[i].Type()
		switch t {
		case opcode.LB_START:
			depth++
		case opcode.LB_END, opcode.LBN_END:
			depth--
			if depth == 0 {
				return i
			}
		}
		i += opcode.Arity(t)
	}
	return len(code)
}

// runSegment runs a nested match attempt over [startPC, stopPC), starting
// at input position startPos, inheriting capture state from caps. It
// succeeds only if execution reaches stopPC with the input position
// exactly at requireEnd, the LB_CONT contract: require the inner match
// to end exactly at that position. On success it returns the nested
// register frame so the caller can merge any captures the lookbehind
// body set.
func (m *Machine) runSegment(startPC, stopPC, startPos, requireEnd int, caps []int64) ([]int64, error) {
	frameSize := m.pat.FrameSize
	cur := make([]int64, frameSize)
	copy(cur, caps)
	cur[0] = int64(startPos)
	cur[1] = int64(startPC)
	return m.dispatch(cur, stopPC, requireEnd)
}
