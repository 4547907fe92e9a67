// Package litscan implements the single-literal start-skip scan used when
// a pattern's mandatory first atom is one fixed string (the StartString
// case): dispatch to the fastest available search shape based on what
// the CPU offers, falling back to a portable scan everywhere else.
//
// uregex addresses text in UTF-16 code units, not bytes, so this package
// works in units rather than wrapping simd's byte-oriented routines
// directly; the CPU feature check instead picks between a skip-table
// (Boyer-Moore-Horspool) search, worthwhile once a haystack is long enough
// to amortise building the table, and a plain scan for short ones.
package litscan

import "golang.org/x/sys/cpu"

// wideSearch reports whether the host has the kind of wide load/compare
// support (SSE4.2 or AVX2 on amd64) that makes the Horspool skip table's
// extra bookkeeping pay for itself; on hosts without it we still get a
// correct, if less skip-happy, linear scan.
var wideSearch = cpu.X86.HasSSE42 || cpu.X86.HasAVX2

// horspoolMinLen is the literal length below which Horspool's skip table
// overhead isn't worth it regardless of wideSearch.
const horspoolMinLen = 4

// Index returns the offset of the first occurrence of needle in
// haystack[from:], or -1 if absent.
func Index(haystack, needle []uint16, from int) int {
	if len(needle) == 0 {
		return from
	}
	if wideSearch && len(needle) >= horspoolMinLen {
		return horspoolSearch(haystack, needle, from)
	}
	return naiveSearch(haystack, needle, from)
}

func naiveSearch(haystack, needle []uint16, from int) int {
	limit := len(haystack) - len(needle)
	for p := from; p <= limit; p++ {
		if unitsEqual(haystack[p:p+len(needle)], needle) {
			return p
		}
	}
	return -1
}

// horspoolSearch implements Boyer-Moore-Horspool: a skip table keyed on the
// last unit of the current window lets the scan jump ahead by
// more than one position on a mismatch.
func horspoolSearch(haystack, needle []uint16, from int) int {
	n := len(needle)
	skip := make(map[uint16]int, n)
	for i := 0; i < n-1; i++ {
		skip[needle[i]] = n - 1 - i
	}

	p := from
	limit := len(haystack) - n
	for p <= limit {
		if unitsEqual(haystack[p:p+n], needle) {
			return p
		}
		d, ok := skip[haystack[p+n-1]]
		if !ok {
			d = n
		}
		p += d
	}
	return -1
}

func unitsEqual(a, b []uint16) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
