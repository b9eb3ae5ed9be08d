package ast

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokInt
	tokFloat
	tokString
	tokVar    // $name
	tokTagRef // %name
	tokPunct  // one of : ( ) { } @ , [ ] ... ! =
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// SyntaxError is a query document lexical or syntactic error, carrying the
// byte offset it was found at (spec §4.2, §7).
type SyntaxError struct {
	Offset  int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("query: %s (at byte %d)", e.Message, e.Offset)
}

type lexer struct {
	src string
	pos int
}

func lex(src string) ([]token, error) {
	l := &lexer{src: src}
	var toks []token
	for {
		l.skipTrivia()
		if l.pos >= len(l.src) {
			toks = append(toks, token{kind: tokEOF, pos: l.pos})
			return toks, nil
		}
		start := l.pos
		c := l.src[l.pos]
		switch {
		case c == '.' && strings.HasPrefix(l.src[l.pos:], "..."):
			l.pos += 3
			toks = append(toks, token{kind: tokPunct, text: "...", pos: start})
		case isIdentStart(c):
			for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
				l.pos++
			}
			toks = append(toks, token{kind: tokIdent, text: l.src[start:l.pos], pos: start})
		case c == '$' || c == '%':
			kind := tokVar
			if c == '%' {
				kind = tokTagRef
			}
			l.pos++
			nameStart := l.pos
			for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
				l.pos++
			}
			if l.pos == nameStart {
				return nil, &SyntaxError{Offset: start, Message: "expected a name after '" + string(c) + "'"}
			}
			toks = append(toks, token{kind: kind, text: l.src[nameStart:l.pos], pos: start})
		case c == '-' || isDigit(c):
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
			toks = append(toks, token{kind: kind, text: l.src[start:l.pos], pos: start})
		case c == '"':
			s, err := l.lexString()
			if err != nil {
				return nil, err
			}
			toks = append(toks, token{kind: tokString, text: s, pos: start})
		case strings.ContainsRune(":(){}@,[]!=", rune(c)):
			l.pos++
			toks = append(toks, token{kind: tokPunct, text: string(c), pos: start})
		default:
			r, _ := utf8.DecodeRuneInString(l.src[l.pos:])
			return nil, &SyntaxError{Offset: l.pos, Message: fmt.Sprintf("unexpected character %q", r)}
		}
	}
}

func (l *lexer) lexString() (string, error) {
	start := l.pos
	l.pos++
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
	return "", &SyntaxError{Offset: start, Message: "unterminated string"}
}

func (l *lexer) skipTrivia() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
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
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func parseIntText(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) }
func parseFloatText(s string) (float64, error) { return strconv.ParseFloat(s, 64) }
