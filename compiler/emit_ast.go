package compiler

import (
	"github.com/tarcv/uregex/opcode"
	"github.com/tarcv/uregex/pattern"
	"github.com/tarcv/uregex/uniset"
)

// astCompiler walks the AST built by parser.go and feeds emitter: a
// recursive tree-walk that emits instructions in source order (a node's
// opening instructions before its children's), backpatching forward jumps
// once branch lengths are known.
type astCompiler struct {
	e           *emitter
	flags       pattern.Flags
	groupNames  []string
	namedGroups map[string]int
}

func (c *astCompiler) ci() bool { return c.flags.Has(pattern.CaseInsensitive) }

// compileNode emits code for n and returns nothing; control flow between
// sibling nodes is purely sequential except where noted (alternation,
// quantifiers, lookaround).
func (c *astCompiler) compileNode(n node) {
	switch v := n.(type) {
	case nChar:
		c.compileChar(v.r)
	case nConcat:
		c.compileConcat(v.subs)
	case nAlt:
		c.compileAlt(v.subs)
	case nClass:
		c.compileClass(v.set)
	case nAny:
		c.compileAny()
	case nAnchor:
		c.compileAnchor(v.kind)
	case nSpecial:
		c.compileSpecial(v.kind)
	case nBuiltinClass:
		c.compileBuiltinClass(v.kind)
	case nGroup:
		c.compileGroup(v)
	case nQuant:
		c.compileQuant(v)
	case nBackref:
		c.compileBackref(v)
	case nLook:
		c.compileLook(v)
	default:
		panic("compiler: unhandled node type")
	}
}

func (c *astCompiler) compileChar(r rune) {
	if c.ci() {
		set := uniset.NewRuneSet()
		set.AddChar(r)
		for _, f := range uniset.FoldCase(r) {
			set.AddChar(f)
		}
		c.compileClass(set)
		return
	}
	c.e.emit(opcode.ONECHAR, int32(r))
}

// compileConcat merges consecutive plain-character runs into a single
// STRING/STRING_I opcode pair backed by literal-pool packing; everything
// else is emitted in sequence.
func (c *astCompiler) compileConcat(subs []node) {
	i := 0
	for i < len(subs) {
		ch, ok := subs[i].(nChar)
		if !ok {
			c.compileNode(subs[i])
			i++
			continue
		}
		j := i
		var run []rune
		for j < len(subs) {
			cj, ok := subs[j].(nChar)
			if !ok {
				break
			}
			run = append(run, cj.r)
			j++
		}
		if len(run) == 1 {
			c.compileChar(run[0])
		} else {
			idx, length := c.e.addLiteral(string(run))
			t := opcode.STRING
			if c.ci() {
				t = opcode.STRING_I
			}
			c.e.emit(t, int32(idx))
			c.e.emit(opcode.STRING_LEN, int32(length))
		}
		i = j
	}
}

// compileAlt emits a chain of STATE_SAVE/JMP splits: branch k is tried
// first, falling through; the pushed alternative tries branch k+1 on
// backtrack. Alternation compiles to one STATE_SAVE per extra branch.
func (c *astCompiler) compileAlt(subs []node) {
	var endJumps []int
	for i, sub := range subs {
		last := i == len(subs)-1
		var saveIdx int
		if !last {
			saveIdx = c.e.emitReloc(opcode.STATE_SAVE, 0)
		}
		c.compileNode(sub)
		if !last {
			endJumps = append(endJumps, c.e.emitReloc(opcode.JMP, 0))
			c.e.patch(saveIdx, int32(c.e.here()))
		}
	}
	end := c.e.here()
	for _, idx := range endJumps {
		c.e.patch(idx, int32(end))
	}
}

func (c *astCompiler) compileClass(set *uniset.RuneSet) {
	idx := c.e.addSet(set)
	c.e.emit(opcode.SETREF, int32(idx))
}

func (c *astCompiler) compileAny() {
	switch {
	case c.flags.Has(pattern.DotAll):
		c.e.emit(opcode.DOTANY_ALL, 0)
	case c.flags.Has(pattern.UnixLines):
		c.e.emit(opcode.DOTANY_UNIX, 0)
	default:
		c.e.emit(opcode.DOTANY, 0)
	}
}

func (c *astCompiler) compileAnchor(k anchorKind) {
	switch k {
	case anchorBOL:
		switch {
		case c.flags.Has(pattern.Multiline) && c.flags.Has(pattern.UnixLines):
			c.e.emit(opcode.CARET_M_UNIX, 0)
		case c.flags.Has(pattern.Multiline):
			c.e.emit(opcode.CARET_M, 0)
		default:
			c.e.emit(opcode.CARET, 0)
		}
	case anchorEOL:
		switch {
		case c.flags.Has(pattern.Multiline) && c.flags.Has(pattern.UnixLines):
			c.e.emit(opcode.DOLLAR_MD, 0)
		case c.flags.Has(pattern.Multiline):
			c.e.emit(opcode.DOLLAR_M, 0)
		case c.flags.Has(pattern.UnixLines):
			c.e.emit(opcode.DOLLAR_D, 0)
		default:
			c.e.emit(opcode.DOLLAR, 0)
		}
	case anchorBOS:
		c.e.emit(opcode.CARET, 0) // \A: always absolute start, ignores MULTILINE
	case anchorEOS:
		c.e.emit(opcode.BACKSLASH_Z, 0)
	case anchorEOSNewline:
		c.e.emit(opcode.DOLLAR, 0) // \Z: end-of-input or before a trailing terminator, never multiline
	case anchorWordB:
		if c.flags.Has(pattern.UWord) {
			c.e.emit(opcode.BACKSLASH_BU, 0)
		} else {
			c.e.emit(opcode.BACKSLASH_B, 0)
		}
	case anchorNotWordB:
		if c.flags.Has(pattern.UWord) {
			c.e.emit(opcode.BACKSLASH_BU, 1)
		} else {
			c.e.emit(opcode.BACKSLASH_B, 1)
		}
	case anchorContinue:
		c.e.emit(opcode.BACKSLASH_G, 0)
	}
}

func (c *astCompiler) compileSpecial(k specialKind) {
	switch k {
	case specialHorizSpace:
		c.e.emit(opcode.BACKSLASH_H, 0)
	case specialNotHorizSpace:
		c.e.emit(opcode.BACKSLASH_H, 1)
	case specialVertSpace:
		c.e.emit(opcode.BACKSLASH_V, 0)
	case specialLineBreak:
		c.e.emit(opcode.BACKSLASH_R, 0)
	case specialGrapheme:
		c.e.emit(opcode.BACKSLASH_X, 0)
	}
}

func (c *astCompiler) compileBuiltinClass(k builtinClassKind) {
	switch k {
	case bcDigit:
		c.e.emit(opcode.BACKSLASH_D, 0)
	case bcNotDigit:
		c.e.emit(opcode.STAT_SETREF_N, int32(uniset.Digit))
	case bcWord:
		c.e.emit(opcode.STATIC_SETREF, int32(uniset.Word))
	case bcNotWord:
		c.e.emit(opcode.STAT_SETREF_N, int32(uniset.Word))
	case bcSpace:
		c.e.emit(opcode.STATIC_SETREF, int32(uniset.Space))
	case bcNotSpace:
		c.e.emit(opcode.STAT_SETREF_N, int32(uniset.Space))
	}
}

func (c *astCompiler) compileGroup(g nGroup) {
	var spData int
	if g.atomic {
		spData = c.e.allocData(1)
		c.e.emit(opcode.STO_SP, int32(spData))
	}
	if g.capturing {
		slot := 2 + 2*g.groupNum
		c.e.emit(opcode.START_CAPTURE, int32(slot))
		c.compileNode(g.sub)
		c.e.emit(opcode.END_CAPTURE, int32(slot))
	} else {
		c.compileNode(g.sub)
	}
	if g.atomic {
		c.e.emit(opcode.LD_SP, int32(spData))
	}
}

func (c *astCompiler) compileBackref(b nBackref) {
	num := b.num
	if b.name != "" {
		num = c.namedGroups[b.name]
	}
	slot := 2 + 2*num
	if c.ci() {
		c.e.emit(opcode.BACKREF_I, int32(slot))
	} else {
		c.e.emit(opcode.BACKREF, int32(slot))
	}
}

// compileQuant covers the engine's quantifier idioms: star and plus
// compile to the tight LOOP_SR_I/LOOP_DOT_I loop where compileTightStar
// accepts the body, else to the STATE_SAVE/JMPX loop shape, using JMPX and
// STO_INP_LOC as the zero-length-iteration guard; optional compiles to a
// single STATE_SAVE split; any other {m,n} shape uses the generic
// CTR_INIT/CTR_LOOP counted loop.
func (c *astCompiler) compileQuant(q nQuant) {
	var spData int
	if q.possessive {
		spData = c.e.allocData(1)
		c.e.emit(opcode.STO_SP, int32(spData))
	}

	switch {
	case q.min == 0 && q.max == -1:
		c.compileStar(q.sub, q.greedy)
	case q.min == 1 && q.max == -1:
		c.compileNode(q.sub)
		c.compileStar(q.sub, q.greedy)
	case q.min == 0 && q.max == 1:
		c.compileOptional(q.sub, q.greedy)
	default:
		c.compileCounted(q.sub, q.min, q.max, q.greedy)
	}

	if q.possessive {
		c.e.emit(opcode.LD_SP, int32(spData))
	}
}

func (c *astCompiler) compileOptional(sub node, greedy bool) {
	if greedy {
		saveIdx := c.e.emitReloc(opcode.STATE_SAVE, 0)
		c.compileNode(sub)
		c.e.patch(saveIdx, int32(c.e.here()))
		return
	}
	saveIdx := c.e.emitReloc(opcode.STATE_SAVE, 0)
	skipJmp := c.e.emitReloc(opcode.JMP, 0)
	c.e.patch(saveIdx, int32(c.e.here()))
	c.compileNode(sub)
	c.e.patch(skipJmp, int32(c.e.here()))
}

// compileTightStar emits the LOOP_SR_I/LOOP_DOT_I + LOOP_C tight-loop
// form for a greedy star whose body is a single set, dot, or plain
// character: the loop consumes the maximal run in one pass instead of
// pushing a STATE_SAVE frame per repetition, backing off one unit at a
// time through LOOP_C only if something after the loop needs it. It
// reports false (compiling nothing) when sub doesn't fit this shape, so
// the caller falls back to the generic STATE_SAVE/JMPX loop.
func (c *astCompiler) compileTightStar(sub node) bool {
	var setIdx int
	switch v := sub.(type) {
	case nAny:
		mode := int32(0)
		switch {
		case c.flags.Has(pattern.DotAll):
			mode = 1
		case c.flags.Has(pattern.UnixLines):
			mode = 2
		}
		posSlot := c.e.allocData(1)
		c.e.emitReloc(opcode.LOOP_DOT_I, mode)
		c.e.emitSlot(opcode.LOOP_DOT_I, int32(posSlot))
		c.e.emit(opcode.LOOP_C, int32(posSlot))
		return true
	case nClass:
		setIdx = c.e.addSet(v.set)
	case nChar:
		set := uniset.NewRuneSet()
		set.AddChar(v.r)
		if c.ci() {
			for _, f := range uniset.FoldCase(v.r) {
				set.AddChar(f)
			}
		}
		setIdx = c.e.addSet(set)
	default:
		return false
	}
	posSlot := c.e.allocData(1)
	c.e.emitReloc(opcode.LOOP_SR_I, int32(setIdx))
	c.e.emitSlot(opcode.LOOP_SR_I, int32(posSlot))
	c.e.emit(opcode.LOOP_C, int32(posSlot))
	return true
}

func (c *astCompiler) compileStar(sub node, greedy bool) {
	if greedy && c.compileTightStar(sub) {
		return
	}
	posSlot := c.e.allocData(1)
	if greedy {
		loopStart := c.e.here()
		saveIdx := c.e.emitReloc(opcode.STATE_SAVE, 0)
		c.e.emit(opcode.STO_INP_LOC, int32(posSlot))
		c.compileNode(sub)
		c.e.emit(opcode.JMPX, int32(posSlot))
		c.e.emitSlot(opcode.JMPX, int32(loopStart))
		c.e.patch(saveIdx, int32(c.e.here()))
		return
	}
	loopStart := c.e.here()
	saveIdx := c.e.emitReloc(opcode.STATE_SAVE, 0)
	skip := c.e.emitReloc(opcode.JMP, 0)
	c.e.patch(saveIdx, int32(c.e.here()))
	c.e.emit(opcode.STO_INP_LOC, int32(posSlot))
	c.compileNode(sub)
	c.e.emit(opcode.JMPX, int32(posSlot))
	c.e.emitSlot(opcode.JMPX, int32(loopStart))
	c.e.patch(skip, int32(c.e.here()))
}

func (c *astCompiler) compileCounted(sub node, min, max int, greedy bool) {
	// Two data slots: [0] the iteration counter, [1] the input position at
	// the last iteration start, used by CTR_LOOP as a zero-width-progress
	// guard so an unbounded {m,} can't loop forever on an empty-match body.
	dataSlot := c.e.allocData(2)
	t := opcode.CTR_INIT
	loopT := opcode.CTR_LOOP
	if !greedy {
		t = opcode.CTR_INIT_NG
		loopT = opcode.CTR_LOOP_NG
	}
	initIdx := c.e.emitReloc(t, int32(dataSlot))
	loopEndIdx := c.e.emitRelocSlot(t, 0)
	c.e.emitSlot(t, int32(min))
	c.e.emitSlot(t, int32(max))
	c.compileNode(sub)
	c.e.emitReloc(loopT, int32(initIdx))
	c.e.patch(loopEndIdx, int32(c.e.here()))
}

// compileLook implements positive/negative lookaround using the
// LA_START/LA_END and LB_START/LB_CONT/LB_END, LBN_CONT/LBN_END
// opcode families.
func (c *astCompiler) compileLook(l nLook) {
	if l.ahead {
		c.compileLookahead(l.sub, l.negative)
		return
	}
	c.compileLookbehind(l.sub, l.negative)
}

func (c *astCompiler) compileLookahead(sub node, negative bool) {
	data := c.e.allocData(2) // [0]=saved input idx, [1]=saved backtrack-stack size
	c.e.emit(opcode.LA_START, int32(data))
	if !negative {
		c.compileNode(sub)
		c.e.emit(opcode.LA_END, int32(data))
		return
	}
	// Negative lookahead: the STATE_SAVE below is the path taken when sub
	// cannot match; once sub is exhausted it is popped, landing at the
	// position captured by LA_START (each frame carries its own input idx).
	// If sub does match, LA_END cuts the backtrack stack back to the size
	// LA_START recorded, discarding that STATE_SAVE and every alternative
	// inside sub, so the FAIL that follows fails the whole lookahead.
	onFail := c.e.emitReloc(opcode.STATE_SAVE, 0)
	c.compileNode(sub)
	c.e.emit(opcode.LA_END, int32(data))
	c.e.emit(opcode.FAIL, 0)
	c.e.patch(onFail, int32(c.e.here()))
}

func (c *astCompiler) compileLookbehind(sub node, negative bool) {
	min, max := minMaxMatchLen(sub)
	if max < 0 {
		// Unbounded lookbehind is rejected by validate.go before emission
		// is reached in practice; compileLookbehind still needs a finite
		// bound to scan, so callers must have already validated this.
		max = min
	}
	data := c.e.allocData(1)
	c.e.emit(opcode.LB_START, int32(max))
	if !negative {
		idx := c.e.emitReloc(opcode.LB_CONT, int32(data))
		c.e.emitSlot(opcode.LB_CONT, int32(min))
		c.e.emitSlot(opcode.LB_CONT, int32(max))
		_ = idx
		c.compileNode(sub)
		c.e.emit(opcode.LB_END, int32(data))
		return
	}
	idx := c.e.emitReloc(opcode.LBN_CONT, int32(data))
	c.e.emitSlot(opcode.LBN_CONT, int32(min))
	c.e.emitSlot(opcode.LBN_CONT, int32(max))
	_ = idx
	c.compileNode(sub)
	branchIdx := c.e.emitReloc(opcode.LBN_END, int32(data))
	c.e.emitRelocSlot(opcode.LBN_END, 0)
	c.e.patch(branchIdx+1, int32(c.e.here()))
}
