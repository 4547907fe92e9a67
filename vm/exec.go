package vm

import (
	"github.com/tarcv/uregex/opcode"
	"github.com/tarcv/uregex/uerrors"
	"github.com/tarcv/uregex/uniset"
)

// dispatch runs the opcode stream starting from cur's program counter
// until it either reaches opcode.END (unconditional success), reaches
// stopPC with the input position exactly at requireEnd (success, used by
// nested lookbehind attempts - see lookaround.go), or exhausts the
// backtrack stack (failure, returns nil, nil).
func (m *Machine) dispatch(cur []int64, stopPC, requireEnd int) ([]int64, error) {
	frameSize := m.pat.FrameSize
	code := m.pat.Code
	units := m.input
	stack := m.newStack()

	backtrack := func() bool {
		if stack.Size() < frameSize {
			return false
		}
		fv := stack.PopFrame(frameSize)
		for i := 0; i < frameSize; i++ {
			v, err := fv.Get(i)
			if err != nil {
				return false
			}
			cur[i] = int64(v)
		}
		return true
	}

	pushAlt := func(targetPC int) error {
		fv, err := stack.ReserveBlock(frameSize)
		if err != nil {
			return err
		}
		for i := 0; i < frameSize; i++ {
			_ = fv.Set(i, uint64(cur[i]))
		}
		_ = fv.Set(1, uint64(targetPC))
		return nil
	}

	for {
		m.steps++
		if m.cfg.MaxSteps > 0 && m.steps > m.cfg.MaxSteps {
			return nil, &uerrors.RuntimeError{Kind: uerrors.TimeOut, Message: "match exceeded step budget"}
		}

		pc := int(cur[1])
		if stopPC >= 0 && pc == stopPC {
			if int(cur[0]) == requireEnd {
				return cur, nil
			}
			if !backtrack() {
				return nil, nil
			}
			continue
		}
		if pc < 0 || pc >= len(code) {
			return nil, &uerrors.RuntimeError{Kind: uerrors.InternalError, Message: "program counter out of range"}
		}

		w := code[pc]
		t := w.Type()
		operand := int(w.Operand())
		fail := func() bool { return backtrack() }

		switch t {
		case opcode.END:
			return cur, nil

		case opcode.FAIL, opcode.BACKTRACK:
			if !backtrack() {
				return nil, nil
			}

		case opcode.NOP:
			cur[1] = int64(pc + 1)

		case opcode.JMP:
			cur[1] = int64(operand)

		case opcode.JMPX:
			slot := operand
			target := int(code[pc+1].Operand())
			if cur[0] != m.data[slot] {
				cur[1] = int64(target)
			} else {
				cur[1] = int64(pc + 2)
			}

		case opcode.STATE_SAVE:
			if err := pushAlt(operand); err != nil {
				return nil, err
			}
			cur[1] = int64(pc + 1)

		case opcode.JMP_SAV:
			if err := pushAlt(pc + 1); err != nil {
				return nil, err
			}
			cur[1] = int64(operand)

		case opcode.JMP_SAV_X:
			if err := pushAlt(pc + 1); err != nil {
				return nil, err
			}
			cur[1] = int64(operand)

		case opcode.ONECHAR:
			r, width := runeAt(units, int(cur[0]))
			if width == 0 || r != rune(operand) {
				if !fail() {
					return nil, nil
				}
				continue
			}
			cur[0] += int64(width)
			cur[1] = int64(pc + 1)

		case opcode.ONECHAR_I:
			r, width := runeAt(units, int(cur[0]))
			if width == 0 || !uniset.FoldEquivalent(r, rune(operand)) {
				if !fail() {
					return nil, nil
				}
				continue
			}
			cur[0] += int64(width)
			cur[1] = int64(pc + 1)

		case opcode.STRING:
			length := int(code[pc+1].Operand())
			lit := m.pat.Literals[operand : operand+length]
			if int(cur[0])+length > len(units) || !unitsEqual(units[int(cur[0]):int(cur[0])+length], lit) {
				if !fail() {
					return nil, nil
				}
				continue
			}
			cur[0] += int64(length)
			cur[1] = int64(pc + 2)

		case opcode.STRING_I:
			length := int(code[pc+1].Operand())
			want := decodeRunes(m.pat.Literals[operand : operand+length])
			w2, ok := foldMatchRunes(units, int(cur[0]), want)
			if !ok {
				if !fail() {
					return nil, nil
				}
				continue
			}
			cur[0] += int64(w2)
			cur[1] = int64(pc + 2)

		case opcode.DOTANY, opcode.DOTANY_ALL, opcode.DOTANY_UNIX:
			r, width := runeAt(units, int(cur[0]))
			blocked := false
			switch t {
			case opcode.DOTANY:
				blocked = isLineTerminator(r)
			case opcode.DOTANY_UNIX:
				blocked = r == '\n'
			}
			if width == 0 || blocked {
				if !fail() {
					return nil, nil
				}
				continue
			}
			cur[0] += int64(width)
			cur[1] = int64(pc + 1)

		case opcode.SETREF:
			raw := int(w.UnsignedOperand())
			idx := raw &^ opcode.InvertedSetFlag
			inverted := raw&opcode.InvertedSetFlag != 0
			r, width := runeAt(units, int(cur[0]))
			ok := width != 0 && m.pat.Sets[idx].Contains(r)
			if inverted {
				ok = width != 0 && !ok
			}
			if !ok {
				if !fail() {
					return nil, nil
				}
				continue
			}
			cur[0] += int64(width)
			cur[1] = int64(pc + 1)

		case opcode.STATIC_SETREF, opcode.STAT_SETREF_N:
			r, width := runeAt(units, int(cur[0]))
			ok := width != 0 && uniset.Builtin(uniset.BuiltinKind(operand)).Contains(r)
			if t == opcode.STAT_SETREF_N {
				ok = width != 0 && !ok
			}
			if !ok {
				if !fail() {
					return nil, nil
				}
				continue
			}
			cur[0] += int64(width)
			cur[1] = int64(pc + 1)

		case opcode.BACKSLASH_D:
			r, width := runeAt(units, int(cur[0]))
			if width == 0 || !uniset.Builtin(uniset.Digit).Contains(r) {
				if !fail() {
					return nil, nil
				}
				continue
			}
			cur[0] += int64(width)
			cur[1] = int64(pc + 1)

		case opcode.BACKSLASH_H:
			r, width := runeAt(units, int(cur[0]))
			ok := width != 0 && isHorizSpace(r)
			if operand == 1 {
				ok = width != 0 && !isHorizSpace(r)
			}
			if !ok {
				if !fail() {
					return nil, nil
				}
				continue
			}
			cur[0] += int64(width)
			cur[1] = int64(pc + 1)

		case opcode.BACKSLASH_V:
			r, width := runeAt(units, int(cur[0]))
			if width == 0 || !isVertSpace(r) {
				if !fail() {
					return nil, nil
				}
				continue
			}
			cur[0] += int64(width)
			cur[1] = int64(pc + 1)

		case opcode.BACKSLASH_R:
			width := matchLineBreak(units, int(cur[0]))
			if width == 0 {
				if !fail() {
					return nil, nil
				}
				continue
			}
			cur[0] += int64(width)
			cur[1] = int64(pc + 1)

		case opcode.BACKSLASH_X:
			width := matchGraphemeCluster(units, int(cur[0]))
			if width == 0 {
				if !fail() {
					return nil, nil
				}
				continue
			}
			cur[0] += int64(width)
			cur[1] = int64(pc + 1)

		case opcode.BACKSLASH_B, opcode.BACKSLASH_BU:
			before, _ := runeBefore(units, int(cur[0]))
			after, aw := runeAt(units, int(cur[0]))
			beforeIsWord := int(cur[0]) > 0 && uniset.Builtin(uniset.Word).Contains(before)
			afterIsWord := aw != 0 && uniset.Builtin(uniset.Word).Contains(after)
			atBoundary := beforeIsWord != afterIsWord
			if operand == 1 {
				atBoundary = !atBoundary
			}
			if !atBoundary {
				if !fail() {
					return nil, nil
				}
				continue
			}
			cur[1] = int64(pc + 1)

		case opcode.BACKSLASH_G:
			if int(cur[0]) != m.searchAnchor {
				if !fail() {
					return nil, nil
				}
				continue
			}
			cur[1] = int64(pc + 1)

		case opcode.BACKSLASH_Z:
			if int(cur[0]) != len(units) {
				if !fail() {
					return nil, nil
				}
				continue
			}
			cur[1] = int64(pc + 1)

		case opcode.CARET:
			if int(cur[0]) != m.regionStart {
				if !fail() {
					return nil, nil
				}
				continue
			}
			cur[1] = int64(pc + 1)

		case opcode.CARET_M, opcode.CARET_M_UNIX:
			pos := int(cur[0])
			ok := pos == m.regionStart
			if !ok && pos > 0 {
				before, _ := runeBefore(units, pos)
				if t == opcode.CARET_M_UNIX {
					ok = before == '\n'
				} else {
					ok = isLineTerminator(before)
				}
			}
			if !ok {
				if !fail() {
					return nil, nil
				}
				continue
			}
			cur[1] = int64(pc + 1)

		case opcode.DOLLAR:
			pos := int(cur[0])
			ok := pos == len(units)
			if !ok && pos == len(units)-1 && units[pos] == '\n' {
				ok = true
			} else if !ok && pos == len(units)-2 && units[pos] == '\r' && units[pos+1] == '\n' {
				ok = true
			}
			if !ok {
				if !fail() {
					return nil, nil
				}
				continue
			}
			cur[1] = int64(pc + 1)

		case opcode.DOLLAR_D:
			if int(cur[0]) != len(units) {
				if !fail() {
					return nil, nil
				}
				continue
			}
			cur[1] = int64(pc + 1)

		case opcode.DOLLAR_M:
			pos := int(cur[0])
			r, width := runeAt(units, pos)
			ok := pos == len(units) || (width != 0 && isLineTerminator(r))
			if !ok {
				if !fail() {
					return nil, nil
				}
				continue
			}
			cur[1] = int64(pc + 1)

		case opcode.DOLLAR_MD:
			pos := int(cur[0])
			ok := pos == len(units) || (pos < len(units) && units[pos] == '\n')
			if !ok {
				if !fail() {
					return nil, nil
				}
				continue
			}
			cur[1] = int64(pc + 1)

		case opcode.START_CAPTURE:
			cur[operand] = cur[0]
			cur[1] = int64(pc + 1)

		case opcode.END_CAPTURE:
			cur[operand+1] = cur[0]
			cur[1] = int64(pc + 1)

		case opcode.CTR_INIT, opcode.CTR_INIT_NG:
			slot := operand
			loopEnd := int(code[pc+1].Operand())
			min := int(code[pc+2].Operand())
			bodyStart := pc + 4
			m.data[slot] = 0
			m.data[slot+1] = cur[0]
			if min == 0 {
				if t == opcode.CTR_INIT {
					if err := pushAlt(loopEnd); err != nil {
						return nil, err
					}
					cur[1] = int64(bodyStart)
				} else {
					if err := pushAlt(bodyStart); err != nil {
						return nil, err
					}
					cur[1] = int64(loopEnd)
				}
			} else {
				cur[1] = int64(bodyStart)
			}

		case opcode.CTR_LOOP, opcode.CTR_LOOP_NG:
			initIdx := operand
			slot := int(code[initIdx].Operand())
			loopEnd := int(code[initIdx+1].Operand())
			min := int(code[initIdx+2].Operand())
			max := int(code[initIdx+3].Operand())
			bodyStart := initIdx + 4
			m.data[slot]++
			cnt := m.data[slot]
			switch {
			case cnt < int64(min):
				m.data[slot+1] = cur[0]
				cur[1] = int64(bodyStart)
			case max != -1 && cnt >= int64(max):
				cur[1] = int64(loopEnd)
			case cur[0] == m.data[slot+1]:
				// zero-width iteration with no progress: stop rather
				// than loop forever on an unbounded optional repeat.
				cur[1] = int64(loopEnd)
			default:
				m.data[slot+1] = cur[0]
				if t == opcode.CTR_LOOP {
					if err := pushAlt(loopEnd); err != nil {
						return nil, err
					}
					cur[1] = int64(bodyStart)
				} else {
					if err := pushAlt(bodyStart); err != nil {
						return nil, err
					}
					cur[1] = int64(loopEnd)
				}
			}

		case opcode.STO_SP:
			m.data[operand] = int64(stack.Size())
			cur[1] = int64(pc + 1)

		case opcode.LD_SP:
			target := int(m.data[operand])
			if stack.Size() > target {
				stack.PopFrame(stack.Size() - target)
			}
			cur[1] = int64(pc + 1)

		case opcode.STO_INP_LOC:
			m.data[operand] = cur[0]
			cur[1] = int64(pc + 1)

		case opcode.BACKREF, opcode.BACKREF_I:
			slot := operand
			gs, ge := cur[slot], cur[slot+1]
			if gs < 0 || ge < 0 {
				cur[1] = int64(pc + 1) // unset group: matches empty
				continue
			}
			want := units[gs:ge]
			if t == opcode.BACKREF {
				n := len(want)
				if int(cur[0])+n > len(units) || !unitsEqual(units[int(cur[0]):int(cur[0])+n], want) {
					if !fail() {
						return nil, nil
					}
					continue
				}
				cur[0] += int64(n)
			} else {
				w2, ok := foldMatchRunes(units, int(cur[0]), decodeRunes(want))
				if !ok {
					if !fail() {
						return nil, nil
					}
					continue
				}
				cur[0] += int64(w2)
			}
			cur[1] = int64(pc + 1)

		case opcode.LA_START:
			m.data[operand] = cur[0]
			m.data[operand+1] = int64(stack.Size())
			cur[1] = int64(pc + 1)

		case opcode.LA_END:
			cur[0] = m.data[operand]
			target := int(m.data[operand+1])
			if stack.Size() > target {
				stack.PopFrame(stack.Size() - target)
			}
			cur[1] = int64(pc + 1)

		case opcode.LB_START:
			cur[1] = int64(pc + 1)

		case opcode.LB_CONT:
			min := int(code[pc+1].Operand())
			max := int(code[pc+2].Operand())
			bodyStart := pc + 3
			bodyEnd := findLookbehindEnd(code, bodyStart)
			matched := false
			for l := max; l >= min && !matched; l-- {
				startPos := int(cur[0]) - l
				if startPos < 0 {
					continue
				}
				res, err := m.runSegment(bodyStart, bodyEnd, startPos, int(cur[0]), cur)
				if err != nil {
					return nil, err
				}
				if res != nil {
					copy(cur[2:], res[2:])
					matched = true
				}
			}
			if !matched {
				if !fail() {
					return nil, nil
				}
				continue
			}
			cur[1] = int64(bodyEnd + 1)

		case opcode.LB_END:
			cur[1] = int64(pc + 1)

		case opcode.LBN_CONT:
			min := int(code[pc+1].Operand())
			max := int(code[pc+2].Operand())
			bodyStart := pc + 3
			bodyEnd := findLookbehindEnd(code, bodyStart)
			matched := false
			for l := max; l >= min && !matched; l-- {
				startPos := int(cur[0]) - l
				if startPos < 0 {
					continue
				}
				res, err := m.runSegment(bodyStart, bodyEnd, startPos, int(cur[0]), cur)
				if err != nil {
					return nil, err
				}
				if res != nil {
					matched = true
				}
			}
			if matched {
				if !fail() {
					return nil, nil
				}
				continue
			}
			branch := int(code[bodyEnd+1].Operand())
			cur[1] = int64(branch)

		case opcode.LBN_END:
			cur[1] = int64(pc + 1)

		case opcode.LOOP_SR_I:
			raw := int(w.UnsignedOperand())
			setIdx := raw &^ opcode.InvertedSetFlag
			inverted := raw&opcode.InvertedSetFlag != 0
			posSlot := int(code[pc+1].Operand())
			set := m.pat.Sets[setIdx]
			start := int(cur[0])
			pos := start
			for {
				r, width := runeAt(units, pos)
				if width == 0 {
					break
				}
				ok := set.Contains(r)
				if inverted {
					ok = !ok
				}
				if !ok {
					break
				}
				pos += width
			}
			m.data[posSlot] = int64(start)
			cur[0] = int64(pos)
			loopCPC := pc + 2
			if pos > start {
				if err := pushAlt(loopCPC); err != nil {
					return nil, err
				}
			}
			cur[1] = int64(loopCPC + 1)

		case opcode.LOOP_DOT_I:
			mode := operand
			posSlot := int(code[pc+1].Operand())
			start := int(cur[0])
			pos := start
			for {
				r, width := runeAt(units, pos)
				if width == 0 {
					break
				}
				var blocked bool
				switch {
				case mode&1 != 0: // DOTALL: nothing blocks
					blocked = false
				case mode&2 != 0: // UNIX_LINES: only \n blocks
					blocked = r == '\n'
				default:
					blocked = isLineTerminator(r)
				}
				if blocked {
					break
				}
				pos += width
			}
			m.data[posSlot] = int64(start)
			cur[0] = int64(pos)
			loopCPC := pc + 2
			if pos > start {
				if err := pushAlt(loopCPC); err != nil {
					return nil, err
				}
			}
			cur[1] = int64(loopCPC + 1)

		case opcode.LOOP_C:
			posSlot := operand
			start := int(m.data[posSlot])
			pos := int(cur[0])
			if pos <= start {
				if !fail() {
					return nil, nil
				}
				continue
			}
			_, width := runeBefore(units, pos)
			if width == 0 {
				width = 1
			}
			newPos := pos - width
			cur[0] = int64(newPos)
			if newPos > start {
				if err := pushAlt(pc); err != nil {
					return nil, err
				}
			}
			cur[1] = int64(pc + 1)

		default:
			return nil, &uerrors.RuntimeError{Kind: uerrors.InternalError, Message: "unimplemented opcode " + t.String()}
		}
	}
}

func unitsEqual(a, b []uint16) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
