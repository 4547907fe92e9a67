package vm

import "github.com/tarcv/uregex/uniset"

// foldMatchRunes reports whether the rune sequence decoded from units
// starting at pos case-fold-matches every rune in want, returning the
// total code-unit width consumed on success. Used by STRING_I and
// BACKREF_I, which (unlike ONECHAR_I/SETREF) must compare multiple code
// points taken from the literal pool or a previously captured group.
func foldMatchRunes(units []uint16, pos int, want []rune) (width int, ok bool) {
	p := pos
	for _, wr := range want {
		r, w := runeAt(units, p)
		if w == 0 || !uniset.FoldEquivalent(r, wr) {
			return 0, false
		}
		p += w
	}
	return p - pos, true
}

// decodeRunes turns a UTF-16 code-unit slice back into runes, used to
// build the "want" sequence for a backreference's captured text.
func decodeRunes(units []uint16) []rune {
	var out []rune
	for i := 0; i < len(units); {
		r, w := runeAt(units, i)
		if w == 0 {
			break
		}
		out = append(out, r)
		i += w
	}
	return out
}
