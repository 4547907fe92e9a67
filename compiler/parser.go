package compiler

import (
	"strconv"
	"unicode/utf8"

	"github.com/tarcv/uregex/pattern"
	"github.com/tarcv/uregex/uerrors"
	"github.com/tarcv/uregex/uniset"
)

// maxRepeat bounds {m,n} interval values to a documented integer range.
const maxRepeat = 100000

// parser turns pattern source text into an AST.
type parser struct {
	src          string
	pos          int // byte offset into src
	flags        pattern.Flags
	groupCount   int
	namedGroups  map[string]int
	groupNames   []string // index by group number
}

func newParser(src string, flags pattern.Flags) *parser {
	return &parser{src: src, flags: flags, namedGroups: map[string]int{}, groupNames: []string{""}}
}

// parse parses the whole pattern, returning the AST root.
func (p *parser) parse() (node, error) {
	if p.flags.Has(pattern.Literal) {
		var subs []node
		for _, r := range p.src {
			subs = append(subs, nChar{r})
		}
		return nConcat{subs}, nil
	}

	n, err := p.parseAlternation()
	if err != nil {
		return nil, err
	}
	p.skipComments()
	if p.pos < len(p.src) {
		return nil, p.errorAt(uerrors.MismatchedParen, p.pos, "unexpected ')'")
	}
	return n, nil
}

func (p *parser) parseAlternation() (node, error) {
	first, err := p.parseConcat()
	if err != nil {
		return nil, err
	}
	subs := []node{first}
	for p.peekByte() == '|' {
		p.pos++
		n, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		subs = append(subs, n)
	}
	if len(subs) == 1 {
		return subs[0], nil
	}
	return nAlt{subs}, nil
}

func (p *parser) parseConcat() (node, error) {
	var subs []node
	for {
		p.skipComments()
		b := p.peekByte()
		if b == 0 || b == '|' || b == ')' {
			break
		}
		n, err := p.parseQuantified()
		if err != nil {
			return nil, err
		}
		subs = append(subs, n)
	}
	if len(subs) == 0 {
		return nConcat{nil}, nil
	}
	if len(subs) == 1 {
		return subs[0], nil
	}
	return nConcat{subs}, nil
}

func (p *parser) parseQuantified() (node, error) {
	atom, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	p.skipComments()
	min, max, ok, err := p.tryParseQuantifierBounds()
	if err != nil {
		return nil, err
	}
	if !ok {
		return atom, nil
	}
	if max != -1 && max < min {
		return nil, p.errorAt(uerrors.MaxLtMin, p.pos, "quantifier max less than min")
	}
	if min > maxRepeat || (max != -1 && max > maxRepeat) {
		return nil, p.errorAt(uerrors.NumberTooBig, p.pos, "quantifier bound too large")
	}
	greedy := true
	possessive := false
	switch p.peekByte() {
	case '?':
		greedy = false
		p.pos++
	case '+':
		possessive = true
		p.pos++
	}
	return nQuant{sub: atom, min: min, max: max, greedy: greedy, possessive: possessive}, nil
}

// tryParseQuantifierBounds consumes *, +, ?, or {m,n} if present.
func (p *parser) tryParseQuantifierBounds() (min, max int, ok bool, err error) {
	switch p.peekByte() {
	case '*':
		p.pos++
		return 0, -1, true, nil
	case '+':
		p.pos++
		return 1, -1, true, nil
	case '?':
		p.pos++
		return 0, 1, true, nil
	case '{':
		return p.tryParseInterval()
	}
	return 0, 0, false, nil
}

func (p *parser) tryParseInterval() (min, max int, ok bool, err error) {
	start := p.pos
	i := p.pos + 1
	digits1 := i
	for i < len(p.src) && isDigit(p.src[i]) {
		i++
	}
	if i == digits1 {
		// "{" not followed by a digit: treat as a literal brace, not an
		// interval (no bounds parsed).
		return 0, 0, false, nil
	}
	minVal, _ := strconv.Atoi(p.src[digits1:i])
	maxVal := minVal
	if i < len(p.src) && p.src[i] == ',' {
		i++
		digits2 := i
		for i < len(p.src) && isDigit(p.src[i]) {
			i++
		}
		if i == digits2 {
			maxVal = -1
		} else {
			maxVal, _ = strconv.Atoi(p.src[digits2:i])
		}
	}
	if i >= len(p.src) || p.src[i] != '}' {
		return 0, 0, false, nil
	}
	p.pos = i + 1
	_ = start
	return minVal, maxVal, true, nil
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func (p *parser) parseAtom() (node, error) {
	b := p.peekByte()
	switch b {
	case '(':
		return p.parseGroup()
	case '[':
		set, rest, err := uniset.Parse(p.src[p.pos:])
		if err != nil {
			if err == uniset.ErrUnterminatedClass {
				return nil, p.errorAt(uerrors.MissingCloseBracket, p.pos, "missing ']'")
			}
			if err == uniset.ErrInvalidRange {
				return nil, p.errorAt(uerrors.InvalidRange, p.pos, err.Error())
			}
			return nil, p.errorAt(uerrors.RuleSyntax, p.pos, err.Error())
		}
		consumed := len(p.src[p.pos:]) - len(rest)
		p.pos += consumed
		return nClass{set}, nil
	case '.':
		p.pos++
		return nAny{}, nil
	case '^':
		p.pos++
		return nAnchor{anchorBOL}, nil
	case '$':
		p.pos++
		return nAnchor{anchorEOL}, nil
	case '\\':
		return p.parseEscape()
	case 0:
		return nil, p.errorAt(uerrors.RuleSyntax, p.pos, "unexpected end of pattern")
	default:
		r, w := utf8.DecodeRuneInString(p.src[p.pos:])
		p.pos += w
		return nChar{r}, nil
	}
}

func (p *parser) parseGroup() (node, error) {
	start := p.pos
	p.pos++ // consume '('
	if p.peekByte() == '?' {
		p.pos++
		switch p.peekByte() {
		case ':':
			p.pos++
			sub, err := p.parseAlternation()
			if err != nil {
				return nil, err
			}
			if err := p.expectByte(')', start); err != nil {
				return nil, err
			}
			return nGroup{sub: sub, capturing: false}, nil
		case '>':
			p.pos++
			sub, err := p.parseAlternation()
			if err != nil {
				return nil, err
			}
			if err := p.expectByte(')', start); err != nil {
				return nil, err
			}
			return nGroup{sub: sub, capturing: false, atomic: true}, nil
		case '=':
			p.pos++
			sub, err := p.parseAlternation()
			if err != nil {
				return nil, err
			}
			if err := p.expectByte(')', start); err != nil {
				return nil, err
			}
			return nLook{sub: sub, ahead: true, negative: false}, nil
		case '!':
			p.pos++
			sub, err := p.parseAlternation()
			if err != nil {
				return nil, err
			}
			if err := p.expectByte(')', start); err != nil {
				return nil, err
			}
			return nLook{sub: sub, ahead: true, negative: true}, nil
		case '<':
			p.pos++
			switch p.peekByte() {
			case '=':
				p.pos++
				sub, err := p.parseAlternation()
				if err != nil {
					return nil, err
				}
				if err := p.expectByte(')', start); err != nil {
					return nil, err
				}
				return nLook{sub: sub, ahead: false, negative: false}, nil
			case '!':
				p.pos++
				sub, err := p.parseAlternation()
				if err != nil {
					return nil, err
				}
				if err := p.expectByte(')', start); err != nil {
					return nil, err
				}
				return nLook{sub: sub, ahead: false, negative: true}, nil
			default:
				name, err := p.parseGroupName('>')
				if err != nil {
					return nil, err
				}
				return p.finishNamedCapture(name, start)
			}
		case 'P':
			p.pos++
			if p.peekByte() != '<' {
				return nil, p.errorAt(uerrors.RuleSyntax, start, "expected '<' after (?P")
			}
			p.pos++
			name, err := p.parseGroupName('>')
			if err != nil {
				return nil, err
			}
			return p.finishNamedCapture(name, start)
		default:
			return nil, p.errorAt(uerrors.RuleSyntax, start, "unsupported group syntax")
		}
	}

	p.groupCount++
	num := p.groupCount
	p.groupNames = append(p.groupNames, "")
	sub, err := p.parseAlternation()
	if err != nil {
		return nil, err
	}
	if err := p.expectByte(')', start); err != nil {
		return nil, err
	}
	return nGroup{sub: sub, capturing: true, groupNum: num}, nil
}

func (p *parser) finishNamedCapture(name string, start int) (node, error) {
	p.groupCount++
	num := p.groupCount
	p.groupNames = append(p.groupNames, name)
	if _, dup := p.namedGroups[name]; dup {
		return nil, p.errorAt(uerrors.InvalidCaptureGroupName, start, "duplicate named group "+name)
	}
	p.namedGroups[name] = num
	sub, err := p.parseAlternation()
	if err != nil {
		return nil, err
	}
	if err := p.expectByte(')', start); err != nil {
		return nil, err
	}
	return nGroup{sub: sub, capturing: true, groupNum: num, name: name}, nil
}

func (p *parser) parseGroupName(closeByte byte) (string, error) {
	start := p.pos
	i := p.pos
	for i < len(p.src) && p.src[i] != closeByte {
		i++
	}
	if i >= len(p.src) {
		return "", p.errorAt(uerrors.InvalidCaptureGroupName, start, "unterminated group name")
	}
	name := p.src[p.pos:i]
	if name == "" {
		return "", p.errorAt(uerrors.InvalidCaptureGroupName, start, "empty group name")
	}
	p.pos = i + 1
	return name, nil
}

func (p *parser) expectByte(b byte, groupStart int) error {
	if p.peekByte() != b {
		return p.errorAt(uerrors.MismatchedParen, groupStart, "missing closing ')'")
	}
	p.pos++
	return nil
}

func (p *parser) peekByte() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

// skipComments skips whitespace and '#'-comments when pattern.Comments
// is set, and is a no-op otherwise.
func (p *parser) skipComments() {
	if !p.flags.Has(pattern.Comments) {
		return
	}
	for p.pos < len(p.src) {
		b := p.src[p.pos]
		switch {
		case b == ' ' || b == '\t' || b == '\n' || b == '\r':
			p.pos++
		case b == '#':
			for p.pos < len(p.src) && p.src[p.pos] != '\n' {
				p.pos++
			}
		default:
			return
		}
	}
}

func (p *parser) errorAt(kind uerrors.Kind, offset int, msg string) error {
	line := 1
	lineStart := 0
	for i := 0; i < offset && i < len(p.src); i++ {
		if p.src[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	pre := offset - lineStart
	preStart := offset - 16
	if preStart < lineStart {
		preStart = lineStart
	}
	postEnd := offset + 16
	if postEnd > len(p.src) {
		postEnd = len(p.src)
	}
	preCtx := ""
	if preStart < offset && preStart >= 0 && offset <= len(p.src) {
		preCtx = p.src[preStart:offset]
	}
	postCtx := ""
	if offset < postEnd {
		postCtx = p.src[offset:postEnd]
	}
	_ = pre
	return &uerrors.SyntaxError{
		Kind:        kind,
		Pattern:     p.src,
		Line:        line,
		Offset:      offset - lineStart,
		PreContext:  preCtx,
		PostContext: postCtx,
		Message:     msg,
	}
}
