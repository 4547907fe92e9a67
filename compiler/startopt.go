package compiler

import (
	"github.com/tarcv/uregex/internal/literal"
	"github.com/tarcv/uregex/pattern"
	"github.com/tarcv/uregex/uniset"
)

// computeStartInfo is a cheap static pass that lets vm.Machine's find
// loop skip positions that cannot possibly start a match, without
// touching the backtracking engine itself. Only the unambiguous,
// easy-to-prove cases are recognised; anything else degrades gracefully
// to pattern.NoInfo.
func computeStartInfo(root node, flags pattern.Flags, e *emitter) pattern.StartInfo {
	first := firstNode(root, flags.Has(pattern.CaseInsensitive))
	switch v := first.(type) {
	case nAnchor:
		if v.kind == anchorBOS {
			return pattern.StartInfo{Kind: pattern.StartOfText}
		}
		if v.kind == anchorBOL && !flags.Has(pattern.Multiline) {
			return pattern.StartInfo{Kind: pattern.StartOfText}
		}
		if v.kind == anchorBOL && flags.Has(pattern.Multiline) {
			return pattern.StartInfo{Kind: pattern.LineStart}
		}
	case nChar:
		if !flags.Has(pattern.CaseInsensitive) {
			return pattern.StartInfo{Kind: pattern.StartChar, InitialChar: v.r}
		}
		set := uniset.NewRuneSet()
		set.AddChar(v.r)
		for _, f := range uniset.FoldCase(v.r) {
			set.AddChar(f)
		}
		return pattern.StartInfo{Kind: pattern.StartSet, InitialChars: set}
	case nClass:
		return pattern.StartInfo{Kind: pattern.StartSet, InitialChars: v.set}
	case nBuiltinClass:
		return pattern.StartInfo{Kind: pattern.StartSet, InitialChars: builtinClassSet(v.kind)}
	case nLiteralRun:
		idx, length := e.addLiteral(v.s)
		return pattern.StartInfo{Kind: pattern.StartString, InitialStringIdx: idx, InitialStringLen: length}
	case nAlt:
		if !flags.Has(pattern.CaseInsensitive) {
			if lits, ok := literalAlternatives(v.subs); ok && len(lits) >= 2 {
				if pf, err := literal.Build(lits); err == nil {
					return pattern.StartInfo{Kind: pattern.StartMultiLiteral, MultiLiteral: pf}
				}
			}
		}
	}
	return pattern.StartInfo{Kind: pattern.NoInfo}
}

// literalAlternatives reports whether every branch of an alternation is a
// non-empty fixed literal string, the shape meta/compile.go's
// buildStrategyEngines recognises as "large literal alternation" and hands
// to an Aho-Corasick automaton instead of the NFA/backtracker.
func literalAlternatives(subs []node) ([]string, bool) {
	out := make([]string, 0, len(subs))
	for _, s := range subs {
		lit, ok := literalTextOf(s)
		if !ok || lit == "" {
			return nil, false
		}
		out = append(out, lit)
	}
	return out, true
}

func literalTextOf(n node) (string, bool) {
	switch v := n.(type) {
	case nChar:
		return string(v.r), true
	case nGroup:
		if !v.capturing {
			return literalTextOf(v.sub)
		}
	case nConcat:
		var sb []rune
		for _, s := range v.subs {
			ch, ok := s.(nChar)
			if !ok {
				return "", false
			}
			sb = append(sb, ch.r)
		}
		return string(sb), true
	}
	return "", false
}

// nLiteralRun is a synthetic node used only inside firstNode's analysis;
// it is never produced by the parser.
type nLiteralRun struct{ s string }

func (nLiteralRun) isNode() {}

// firstNode descends into the leftmost mandatory-first leaf of n, the
// way ICU's matchStart analysis walks a compiled tree: concatenation
// descends into its first element, a capturing/non-capturing group
// descends into its body, and a quantifier with min>=1 descends into its
// body (min==0 makes the element optional, so no useful start info can
// be derived from it). Alternation, backreferences, and lookaround all
// stop the walk since no single deterministic first atom exists.
func firstNode(n node, ci bool) node {
	for {
		switch v := n.(type) {
		case nConcat:
			if len(v.subs) == 0 {
				return nil
			}
			if !ci {
				if run, ok := leadingLiteralRun(v.subs); ok {
					return run
				}
			}
			n = v.subs[0]
		case nGroup:
			n = v.sub
		case nQuant:
			if v.min == 0 {
				return nil
			}
			n = v.sub
		default:
			return n
		}
	}
}

func leadingLiteralRun(subs []node) (node, bool) {
	var run []rune
	for _, s := range subs {
		ch, ok := s.(nChar)
		if !ok {
			break
		}
		run = append(run, ch.r)
	}
	if len(run) >= 2 {
		return nLiteralRun{string(run)}, true
	}
	return nil, false
}

func builtinClassSet(k builtinClassKind) *uniset.RuneSet {
	switch k {
	case bcDigit:
		return uniset.Builtin(uniset.Digit)
	case bcNotDigit:
		return uniset.Builtin(uniset.NotDigit)
	case bcWord:
		return uniset.Builtin(uniset.Word)
	case bcNotWord:
		return uniset.Builtin(uniset.NotWord)
	case bcSpace:
		return uniset.Builtin(uniset.Space)
	case bcNotSpace:
		return uniset.Builtin(uniset.NotSpace)
	}
	return uniset.NewRuneSet()
}
