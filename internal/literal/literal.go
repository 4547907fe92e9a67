// Package literal wraps github.com/coregx/ahocorasick into the multi-literal
// start-skip prefilter used when a pattern's mandatory first atom is an
// alternation of fixed strings (e.g. `cat|dog|bird`), dispatching to an
// Aho-Corasick automaton for large literal alternations.
//
// The automaton operates on UTF-8 bytes; uregex addresses text in UTF-16
// code units throughout, so Prefilter carries the byte<->code-unit offset
// table needed to translate a match back into the VM's coordinate space.
package literal

import (
	"sort"
	"unicode/utf8"

	"github.com/coregx/ahocorasick"
)

// Prefilter finds the next occurrence of any of a fixed set of literal
// strings in UTF-16-addressed input text.
type Prefilter struct {
	auto *ahocorasick.Automaton
}

// Build compiles patterns (the compiler passes each wholly literal,
// non-empty alternation branch) into an automaton.
func Build(patterns []string) (*Prefilter, error) {
	builder := ahocorasick.NewBuilder()
	for _, p := range patterns {
		builder.AddPattern([]byte(p))
	}
	auto, err := builder.Build()
	if err != nil {
		return nil, err
	}
	return &Prefilter{auto: auto}, nil
}

// Find returns the code-unit offset of the next match at or after `from`
// in units (a UTF-16 buffer), or -1 if none of the patterns occur.
func (p *Prefilter) Find(units []uint16, from int) int {
	text, offsets := toUTF8(units)
	byteFrom := offsets[from]
	m := p.auto.Find(text, byteFrom)
	if m == nil {
		return -1
	}
	return unitOffset(offsets, m.Start)
}

// toUTF8 re-encodes units as UTF-8 bytes, returning offsets such that
// offsets[i] is the byte offset at which code-unit i begins (offsets has
// len(units)+1 entries, the last being len(text)).
func toUTF8(units []uint16) (text []byte, offsets []int) {
	offsets = make([]int, len(units)+1)
	var buf [utf8.UTFMax]byte
	for i := 0; i < len(units); {
		r, width := decodeAt(units, i)
		n := utf8.EncodeRune(buf[:], r)
		text = append(text, buf[:n]...)
		for w := 0; w < width; w++ {
			offsets[i+w] = len(text) - n
		}
		i += width
	}
	offsets[len(units)] = len(text)
	return text, offsets
}

func decodeAt(units []uint16, i int) (rune, int) {
	u := units[i]
	if u >= 0xD800 && u <= 0xDBFF && i+1 < len(units) {
		lo := units[i+1]
		if lo >= 0xDC00 && lo <= 0xDFFF {
			return (rune(u-0xD800)<<10 | rune(lo-0xDC00)) + 0x10000, 2
		}
	}
	return rune(u), 1
}

// unitOffset inverts toUTF8's offsets table, returning the code-unit index
// i such that offsets[i] == byteOff.
func unitOffset(offsets []int, byteOff int) int {
	return sort.SearchInts(offsets, byteOff)
}
