package vm

import (
	"github.com/tarcv/uregex/internal/litscan"
	"github.com/tarcv/uregex/pattern"
)

// Find attempts a match starting no earlier than from, honoring the
// pattern's start-optimisation hint to skip candidate positions that
// provably cannot begin a match. It returns the
// frame-slot capture array (group i occupies result[pat.GroupMap[i]],
// result[pat.GroupMap[i]+1]) and true on success, or (nil, false, nil) if
// no match exists in [from, regionEnd). \G (BACKSLASH_G) anchors every
// attempt of this call to from, not to whichever candidate position the
// start-skip landed on.
func (m *Machine) Find(from int) ([]int64, bool, error) {
	m.SetSearchAnchor(from)
	m.steps = 0
	pos := from
	if pos < m.regionStart {
		pos = m.regionStart
	}

	for {
		pos = m.skipToCandidate(pos)
		if pos < 0 || pos+m.pat.MinMatchLen > m.regionEnd {
			return nil, false, nil
		}

		cur := make([]int64, m.pat.FrameSize)
		cur[0] = int64(pos)
		cur[1] = 0
		for i := 2; i < len(cur); i++ {
			cur[i] = -1
		}

		res, err := m.dispatch(cur, -1, -1)
		if err != nil {
			return nil, false, err
		}
		if res != nil {
			return res, true, nil
		}
		pos++
	}
}

// MatchEntireRegion attempts a match starting at exactly start that
// consumes every code unit up to end. Unlike Find, it doesn't accept the
// first path that reaches END: it runs with stopPC pinned at the
// pattern's final END instruction and requireEnd pinned at end, the same
// dispatch mechanism runSegment uses for lookbehind, so a branch that
// reaches END short of end is rejected and the VM backtracks into
// whatever alternative or longer repetition comes next, rather than
// reporting a too-short match.
func (m *Machine) MatchEntireRegion(start, end int) ([]int64, bool, error) {
	m.SetSearchAnchor(start)
	cur := make([]int64, m.pat.FrameSize)
	cur[0] = int64(start)
	cur[1] = 0
	for i := 2; i < len(cur); i++ {
		cur[i] = -1
	}
	stopPC := len(m.pat.Code) - 1
	res, err := m.dispatch(cur, stopPC, end)
	if err != nil {
		return nil, false, err
	}
	if res == nil {
		return nil, false, nil
	}
	return res, true, nil
}

// FindAll returns every non-overlapping match in the region, advancing
// past zero-width matches by one code unit (and one UTF-16 surrogate
// pair's worth, if that's where the match landed) to guarantee progress.
func (m *Machine) FindAll() ([][]int64, error) {
	var out [][]int64
	pos := m.regionStart
	for pos <= m.regionEnd {
		res, ok, err := m.Find(pos)
		if err != nil {
			return out, err
		}
		if !ok {
			break
		}
		out = append(out, res)
		start, end := int(res[2]), int(res[3])
		if end > start {
			pos = end
		} else {
			_, w := runeAt(m.input, end)
			if w == 0 {
				w = 1
			}
			pos = end + w
		}
	}
	return out, nil
}

// skipToCandidate returns the first position >= pos that the start
// hint says could possibly begin a match, or -1 if none remains.
func (m *Machine) skipToCandidate(pos int) int {
	start := m.pat.Start
	switch start.Kind {
	case pattern.StartOfText:
		if pos <= m.regionStart {
			return m.regionStart
		}
		return -1

	case pattern.LineStart:
		for p := pos; p <= m.regionEnd; p++ {
			if p == m.regionStart {
				return p
			}
			if before, _ := runeBefore(m.input, p); isLineTerminator(before) {
				return p
			}
		}
		return -1

	case pattern.StartChar:
		for p := pos; p < m.regionEnd; {
			r, w := runeAt(m.input, p)
			if w == 0 {
				break
			}
			if r == start.InitialChar {
				return p
			}
			p += w
		}
		return -1

	case pattern.StartSet:
		for p := pos; p < m.regionEnd; {
			r, w := runeAt(m.input, p)
			if w == 0 {
				break
			}
			if start.InitialChars.Contains(r) {
				return p
			}
			p += w
		}
		return -1

	case pattern.StartString:
		lit := m.pat.Literals[start.InitialStringIdx : start.InitialStringIdx+start.InitialStringLen]
		found := litscan.Index(m.input[:m.regionEnd], lit, pos)
		if found < 0 {
			return -1
		}
		return found

	case pattern.StartMultiLiteral:
		found := start.MultiLiteral.Find(m.input[:m.regionEnd], pos)
		if found < 0 {
			return -1
		}
		return found

	default:
		if pos > m.regionEnd {
			return -1
		}
		return pos
	}
}
