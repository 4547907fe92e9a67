package uregex

import (
	"strconv"
	"strings"
)

// ReplaceAll returns a copy of src with every non-overlapping match
// replaced by repl. repl may reference capture groups the way stdlib
// regexp.Expand does: $1, $name, ${name}, $0 for the whole match, and
// $$ for a literal dollar sign.
func (p *Pattern) ReplaceAll(src, repl string) string {
	return p.replace(src, repl, -1)
}

// ReplaceFirst replaces only the first match of the pattern in src.
func (p *Pattern) ReplaceFirst(src, repl string) string {
	return p.replace(src, repl, 1)
}

func (p *Pattern) replace(src, repl string, limit int) string {
	m := p.Matcher(src)
	var sb strings.Builder
	last := 0
	count := 0
	for (limit < 0 || count < limit) && m.Find() {
		start, end := m.Start(0), m.End(0)
		sb.WriteString(m.sliceInput(last, start))
		expandTemplate(&sb, m, repl)
		last = end
		count++
	}
	sb.WriteString(m.sliceInput(last, m.machine.InputLen()))
	return sb.String()
}

// expandTemplate writes repl to sb, substituting $n/$name/${name}
// capture-group references against m's current match.
func expandTemplate(sb *strings.Builder, m *Matcher, repl string) {
	for i := 0; i < len(repl); i++ {
		if repl[i] != '$' || i+1 >= len(repl) {
			sb.WriteByte(repl[i])
			continue
		}
		if repl[i+1] == '$' {
			sb.WriteByte('$')
			i++
			continue
		}
		name, width := parseGroupRef(repl[i+1:])
		if width == 0 {
			sb.WriteByte(repl[i])
			continue
		}
		i += width
		if n, err := strconv.Atoi(name); err == nil {
			sb.WriteString(m.Group(n))
		} else {
			sb.WriteString(m.GroupName(name))
		}
	}
}

// parseGroupRef extracts a $n or ${name}/$name reference starting right
// after the '$', returning the name/number text and how many bytes of
// repl (after the '$') it consumed.
func parseGroupRef(s string) (name string, width int) {
	if s[0] == '{' {
		end := strings.IndexByte(s, '}')
		if end < 0 {
			return "", 0
		}
		return s[1:end], end + 1
	}
	i := 0
	for i < len(s) && (isDigit(s[i]) || isNameByte(s[i])) {
		i++
	}
	if i == 0 {
		return "", 0
	}
	return s[:i], i
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isNameByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
