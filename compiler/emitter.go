package compiler

import (
	"unicode/utf16"

	"github.com/tarcv/uregex/opcode"
	"github.com/tarcv/uregex/uniset"
)

// emitter accumulates the opcode stream and side tables (literal pool,
// set table, matcher-data slots) while the AST is walked: the
// compile-time half of the growable-sink idea Stack64 carries at
// runtime for backtrack frames, producing the final []opcode.Word
// handed to pattern.Compiled.
type emitter struct {
	code     []opcode.Word
	sets     []*uniset.RuneSet
	literals []uint16
	dataSize int
}

func newEmitter() *emitter {
	return &emitter{sets: []*uniset.RuneSet{nil}} // slot 0 reserved nil
}

func (e *emitter) here() int { return len(e.code) }

// emit appends one opcode word and returns its index.
func (e *emitter) emit(t opcode.Type, operand int32) int {
	idx := len(e.code)
	e.code = append(e.code, opcode.Pack(t, operand))
	return idx
}

// emitReloc emits a jump-family instruction whose operand is an absolute
// code address. The compiler always backpatches these the moment the
// target is known (see compileAlt, compileStar, compileCounted), so no
// bulk relocation pass is ever required for code rearranged after the
// fact.
func (e *emitter) emitReloc(t opcode.Type, operand int32) int {
	return e.emit(t, operand)
}

// emitRelocSlot appends an extra address-valued slot (for multi-word
// opcodes like CTR_INIT's loopEnd) using the same type tag as the
// instruction it belongs to, so Disassemble can still render it.
func (e *emitter) emitRelocSlot(t opcode.Type, operand int32) int {
	return e.emit(t, operand)
}

// emitSlot appends a non-address extra operand slot.
func (e *emitter) emitSlot(t opcode.Type, operand int32) int {
	return e.emit(t, operand)
}

// patch overwrites the operand of an already-emitted slot, preserving
// its type tag.
func (e *emitter) patch(idx int, operand int32) {
	t := e.code[idx].Type()
	e.code[idx] = opcode.Pack(t, operand)
}

// addSet registers a user set and returns its table index.
func (e *emitter) addSet(s *uniset.RuneSet) int {
	e.sets = append(e.sets, s)
	return len(e.sets) - 1
}

// addLiteral appends s to the literal pool (encoded as UTF-16) and
// returns its (offset, length) pair.
func (e *emitter) addLiteral(s string) (idx, length int) {
	units := utf16.Encode([]rune(s))
	idx = len(e.literals)
	e.literals = append(e.literals, units...)
	return idx, len(units)
}

// allocData reserves n matcher-data slots and returns the base index.
func (e *emitter) allocData(n int) int {
	base := e.dataSize
	e.dataSize += n
	return base
}
