package vm

import (
	"unicode"

	"github.com/tarcv/uregex/uniset"
)

// isHorizSpace implements \h: tab plus every Unicode space separator.
func isHorizSpace(r rune) bool {
	return r == 0x09 || unicode.Is(unicode.Zs, r)
}

// isVertSpace implements \v: every code point the \R line-break class
// also recognises individually.
func isVertSpace(r rune) bool {
	switch r {
	case '\n', '\r', 0x0B, 0x0C, 0x85, 0x2028, 0x2029:
		return true
	}
	return false
}

// isLineTerminator reports whether r alone is a line terminator, for
// CARET_M/DOLLAR_M (full Unicode line-break set).
func isLineTerminator(r rune) bool {
	switch r {
	case '\n', '\r', 0x85, 0x2028, 0x2029:
		return true
	}
	return false
}

// matchLineBreak implements \R: a CRLF pair, or any single line
// terminator, returning the code-unit width consumed (0 if none matches).
func matchLineBreak(units []uint16, pos int) int {
	r, w := runeAt(units, pos)
	if w == 0 {
		return 0
	}
	if r == '\r' {
		if r2, w2 := runeAt(units, pos+w); w2 != 0 && r2 == '\n' {
			return w + w2
		}
	}
	if isLineTerminator(r) {
		return w
	}
	return 0
}

// matchGraphemeCluster implements \X: one extended grapheme cluster per
// UAX #29, simplified to the Hangul-syllable and Extend rules built on
// uniset's Grapheme* builtins.
func matchGraphemeCluster(units []uint16, pos int) int {
	r, w := runeAt(units, pos)
	if w == 0 {
		return 0
	}
	if uniset.Builtin(uniset.GraphemeControl).Contains(r) {
		return w
	}
	total := w
	p := pos + w

	switch {
	case uniset.Builtin(uniset.GraphemeL).Contains(r):
		p = consumeGraphemeClass(units, p, uniset.GraphemeL, &total)
		if r2, w2 := runeAt(units, p); w2 != 0 &&
			(uniset.Builtin(uniset.GraphemeV).Contains(r2) ||
				uniset.Builtin(uniset.GraphemeLV).Contains(r2) ||
				uniset.Builtin(uniset.GraphemeLVT).Contains(r2)) {
			total += w2
			p += w2
			p = consumeGraphemeClass(units, p, uniset.GraphemeV, &total)
			p = consumeGraphemeClass(units, p, uniset.GraphemeT, &total)
		}
	case uniset.Builtin(uniset.GraphemeLV).Contains(r), uniset.Builtin(uniset.GraphemeV).Contains(r):
		p = consumeGraphemeClass(units, p, uniset.GraphemeV, &total)
		p = consumeGraphemeClass(units, p, uniset.GraphemeT, &total)
	case uniset.Builtin(uniset.GraphemeLVT).Contains(r), uniset.Builtin(uniset.GraphemeT).Contains(r):
		p = consumeGraphemeClass(units, p, uniset.GraphemeT, &total)
	}

	for {
		r2, w2 := runeAt(units, p)
		if w2 == 0 || !uniset.Builtin(uniset.GraphemeExtend).Contains(r2) {
			break
		}
		total += w2
		p += w2
	}
	return total
}

func consumeGraphemeClass(units []uint16, p int, kind uniset.BuiltinKind, total *int) int {
	for {
		r, w := runeAt(units, p)
		if w == 0 || !uniset.Builtin(kind).Contains(r) {
			return p
		}
		*total += w
		p += w
	}
}
