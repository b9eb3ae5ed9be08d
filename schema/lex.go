package schema

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// tokenKind enumerates the lexical classes of the schema document grammar.
// The lexer is hand-rolled rather than built on a GraphQL library: the
// schema document is a narrow, fixed GraphQL subset (spec §6) and the
// engine's own byte-offset error reporting (spec §4.2, carried here for
// schema-load errors too) is the point of writing it, not an afterthought
// bolted onto a borrowed parser.
type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokInt
	tokFloat
	tokString
	tokPunct // one of : ! ( ) { } [ ] = & | ,
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

type lexer struct {
	src  string
	pos  int
	toks []token
}

// ParseError is a schema document lexical or syntactic error, carrying the
// byte offset it was found at (spec §7 schema-load errors).
type ParseError struct {
	Offset  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("schema: %s (at byte %d)", e.Message, e.Offset)
}

func lex(src string) ([]token, error) {
	l := &lexer{src: src}
	for {
		l.skipTrivia()
		if l.pos >= len(l.src) {
			l.toks = append(l.toks, token{kind: tokEOF, pos: l.pos})
			return l.toks, nil
		}
		start := l.pos
		c := l.src[l.pos]
		switch {
		case isIdentStart(c):
			for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
				l.pos++
			}
			l.toks = append(l.toks, token{kind: tokIdent, text: l.src[start:l.pos], pos: start})
		case c >= '0' && c <= '9' || (c == '-' && l.pos+1 < len(l.src) && isDigit(l.src[l.pos+1])):
			l.pos++
			isFloat := false
			for l.pos < len(l.src) && (isDigit(l.src[l.pos]) || l.src[l.pos] == '.') {
				if l.src[l.pos] == '.' {
					isFloat = true
				}
				l.pos++
			}
			kind := tokInt
			if isFloat {
				kind = tokFloat
			}
			l.toks = append(l.toks, token{kind: kind, text: l.src[start:l.pos], pos: start})
		case c == '"':
			s, err := l.lexString()
			if err != nil {
				return nil, err
			}
			l.toks = append(l.toks, token{kind: tokString, text: s, pos: start})
		case strings.ContainsRune(":!(){}[]=&|,", rune(c)):
			l.pos++
			l.toks = append(l.toks, token{kind: tokPunct, text: string(c), pos: start})
		default:
			r, _ := utf8.DecodeRuneInString(l.src[l.pos:])
			return nil, &ParseError{Offset: l.pos, Message: fmt.Sprintf("unexpected character %q", r)}
		}
	}
}

func (l *lexer) lexString() (string, error) {
	// Triple-quoted block description or single-quoted description. Both are
	// trivia per spec §6 ("preserved but not semantically significant"); we
	// lex them as opaque string tokens and the parser discards them.
	if strings.HasPrefix(l.src[l.pos:], `"""`) {
		start := l.pos
		l.pos += 3
		end := strings.Index(l.src[l.pos:], `"""`)
		if end < 0 {
			return "", &ParseError{Offset: start, Message: "unterminated block string"}
		}
		s := l.src[l.pos : l.pos+end]
		l.pos += end + 3
		return s, nil
	}
	start := l.pos
	l.pos++ // opening quote
	var b strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '"' {
			l.pos++
			return b.String(), nil
		}
		if c == '\\' && l.pos+1 < len(l.src) {
			b.WriteByte(l.src[l.pos+1])
			l.pos += 2
			continue
		}
		b.WriteByte(c)
		l.pos++
	}
	return "", &ParseError{Offset: start, Message: "unterminated string"}
}

func (l *lexer) skipTrivia() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == ',' && false {
			l.pos++
			continue
		}
		if c == '#' {
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
			continue
		}
		break
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '@'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
