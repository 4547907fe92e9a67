package compiler

import (
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/tarcv/uregex/pattern"
	"github.com/tarcv/uregex/uerrors"
	"github.com/tarcv/uregex/uniset"
)

// propertyTables is the small \p{Name}/\P{Name} property table this
// engine supports; an unknown name raises REGEX_PROPERTY_SYNTAX, e.g.
// `\p{Nonsense}`.
var propertyTables = map[string]*unicode.RangeTable{
	"L":     unicode.L,
	"Lu":    unicode.Lu,
	"Ll":    unicode.Ll,
	"N":     unicode.N,
	"Nd":    unicode.Nd,
	"Alpha": unicode.L,
	"Alnum": nil, // handled specially: L union N
	"Digit": unicode.Nd,
	"Space": unicode.White_Space,
	"Punct": unicode.P,
	"Upper": unicode.Upper,
	"Lower": unicode.Lower,
}

func (p *parser) parseEscape() (node, error) {
	start := p.pos
	p.pos++ // consume '\'
	if p.pos >= len(p.src) {
		return nil, p.errorAt(uerrors.BadEscapeSequence, start, "dangling escape at end of pattern")
	}
	b := p.src[p.pos]
	switch b {
	case 'd':
		p.pos++
		return nBuiltinClass{bcDigit}, nil
	case 'D':
		p.pos++
		return nBuiltinClass{bcNotDigit}, nil
	case 'w':
		p.pos++
		return nBuiltinClass{bcWord}, nil
	case 'W':
		p.pos++
		return nBuiltinClass{bcNotWord}, nil
	case 's':
		p.pos++
		return nBuiltinClass{bcSpace}, nil
	case 'S':
		p.pos++
		return nBuiltinClass{bcNotSpace}, nil
	case 'h':
		p.pos++
		return nSpecial{specialHorizSpace}, nil
	case 'H':
		p.pos++
		return nSpecial{specialNotHorizSpace}, nil
	case 'v':
		p.pos++
		return nSpecial{specialVertSpace}, nil
	case 'R':
		p.pos++
		return nSpecial{specialLineBreak}, nil
	case 'X':
		p.pos++
		return nSpecial{specialGrapheme}, nil
	case 'b':
		p.pos++
		return nAnchor{anchorWordB}, nil
	case 'B':
		p.pos++
		return nAnchor{anchorNotWordB}, nil
	case 'A':
		p.pos++
		return nAnchor{anchorBOS}, nil
	case 'z':
		p.pos++
		return nAnchor{anchorEOS}, nil
	case 'Z':
		p.pos++
		return nAnchor{anchorEOSNewline}, nil
	case 'G':
		p.pos++
		return nAnchor{anchorContinue}, nil
	case 'n':
		p.pos++
		return nChar{'\n'}, nil
	case 't':
		p.pos++
		return nChar{'\t'}, nil
	case 'r':
		p.pos++
		return nChar{'\r'}, nil
	case 'f':
		p.pos++
		return nChar{'\f'}, nil
	case 'a':
		p.pos++
		return nChar{0x07}, nil
	case 'e':
		p.pos++
		return nChar{0x1B}, nil
	case '0':
		p.pos++
		return nChar{0}, nil
	case 'x':
		return p.parseHexCharEscape(start)
	case 'u':
		p.pos++
		return p.parseFixedHex(4, start)
	case 'p', 'P':
		return p.parseUnicodeProperty(start, b == 'P')
	case 'k':
		return p.parseNamedBackref(start)
	case 'Q':
		return p.parseLiteralQuote()
	default:
		if b >= '1' && b <= '9' {
			return p.parseNumericBackref()
		}
		if isRegexMeta(b) {
			p.pos++
			return nChar{rune(b)}, nil
		}
		if p.flags.Has(pattern.ErrorOnUnknownEscapes) {
			return nil, p.errorAt(uerrors.BadEscapeSequence, start, "unknown escape sequence \\"+string(b))
		}
		r, w := utf8.DecodeRuneInString(p.src[p.pos:])
		p.pos += w
		return nChar{r}, nil
	}
}

func isRegexMeta(b byte) bool {
	switch b {
	case '.', '*', '+', '?', '(', ')', '[', ']', '{', '}', '|', '^', '$', '\\', '/':
		return true
	}
	return false
}

func (p *parser) parseHexCharEscape(start int) (node, error) {
	p.pos++ // consume 'x'
	if p.pos < len(p.src) && p.src[p.pos] == '{' {
		end := p.pos + 1
		for end < len(p.src) && p.src[end] != '}' {
			end++
		}
		if end >= len(p.src) {
			return nil, p.errorAt(uerrors.BadEscapeSequence, start, "unterminated \\x{...}")
		}
		v, err := strconv.ParseInt(p.src[p.pos+1:end], 16, 32)
		if err != nil {
			return nil, p.errorAt(uerrors.BadEscapeSequence, start, "invalid hex escape")
		}
		p.pos = end + 1
		return nChar{rune(v)}, nil
	}
	return p.parseFixedHex(2, start)
}

func (p *parser) parseFixedHex(n, start int) (node, error) {
	if p.pos+n > len(p.src) {
		return nil, p.errorAt(uerrors.BadEscapeSequence, start, "short hex escape")
	}
	v, err := strconv.ParseInt(p.src[p.pos:p.pos+n], 16, 32)
	if err != nil {
		return nil, p.errorAt(uerrors.BadEscapeSequence, start, "invalid hex escape")
	}
	p.pos += n
	return nChar{rune(v)}, nil
}

func (p *parser) parseUnicodeProperty(start int, negate bool) (node, error) {
	p.pos++ // consume 'p'/'P'
	if p.pos >= len(p.src) || p.src[p.pos] != '{' {
		return nil, p.errorAt(uerrors.PropertySyntax, start, "expected '{' after \\p")
	}
	end := p.pos + 1
	for end < len(p.src) && p.src[end] != '}' {
		end++
	}
	if end >= len(p.src) {
		return nil, p.errorAt(uerrors.PropertySyntax, start, "unterminated \\p{...}")
	}
	name := p.src[p.pos+1 : end]
	p.pos = end + 1

	var set *uniset.RuneSet
	switch name {
	case "Alnum":
		set = uniset.FromRangeTable(unicode.L).Union(uniset.FromRangeTable(unicode.N))
	default:
		tab, ok := propertyTables[name]
		if !ok || tab == nil {
			return nil, p.errorAt(uerrors.PropertySyntax, start, "unknown Unicode property "+name)
		}
		set = uniset.FromRangeTable(tab)
	}
	if negate {
		set = set.Complement()
	}
	return nClass{set}, nil
}

func (p *parser) parseNamedBackref(start int) (node, error) {
	p.pos++ // consume 'k'
	if p.pos >= len(p.src) || (p.src[p.pos] != '<' && p.src[p.pos] != '{') {
		return nil, p.errorAt(uerrors.InvalidBackRef, start, "expected '<' after \\k")
	}
	closeByte := byte('>')
	if p.src[p.pos] == '{' {
		closeByte = '}'
	}
	p.pos++
	name, err := p.parseGroupName(closeByte)
	if err != nil {
		return nil, err
	}
	return nBackref{name: name}, nil
}

func (p *parser) parseNumericBackref() (node, error) {
	start := p.pos
	end := p.pos
	for end < len(p.src) && isDigit(p.src[end]) {
		end++
	}
	num, _ := strconv.Atoi(p.src[start:end])
	p.pos = end
	return nBackref{num: num}, nil
}

// parseLiteralQuote handles \Q...\E, treating every character in between
// as a literal, including metacharacters.
func (p *parser) parseLiteralQuote() (node, error) {
	p.pos++ // consume 'Q'
	var subs []node
	for p.pos < len(p.src) {
		if p.pos+1 < len(p.src) && p.src[p.pos] == '\\' && p.src[p.pos+1] == 'E' {
			p.pos += 2
			return nConcat{subs}, nil
		}
		r, w := utf8.DecodeRuneInString(p.src[p.pos:])
		subs = append(subs, nChar{r})
		p.pos += w
	}
	return nConcat{subs}, nil
}
