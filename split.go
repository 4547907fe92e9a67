package uregex

// Split slices src into substrings separated by the pattern's matches,
// returning the substrings between those matches. If the delimiter
// pattern has capture groups, their text is spliced into the result
// between the fields they separated (a group that took no part in the
// match contributes an empty string). If n > 0, it returns at most n
// fields (the last one unsplit, and no delimiter captures from the
// split that would have produced it); n == 0 returns nil; n < 0 returns
// every field and delimiter capture.
func (p *Pattern) Split(src string, n int) []string {
	if n == 0 {
		return nil
	}
	m := p.Matcher(src)
	numGroups := p.NumSubexp() - 1
	var out []string
	last := 0
	fields := 0
	for m.Find() {
		if n > 0 && fields >= n-1 {
			break
		}
		start, end := m.Start(0), m.End(0)
		if start == 0 && end == 0 && last == 0 {
			// a zero-width match at the very start produces no leading
			// empty segment, matching stdlib regexp.Split's behavior.
			continue
		}
		out = append(out, m.sliceInput(last, start))
		fields++
		for g := 1; g <= numGroups; g++ {
			out = append(out, m.Group(g))
		}
		last = end
	}
	out = append(out, m.sliceInput(last, m.machine.InputLen()))
	return out
}
