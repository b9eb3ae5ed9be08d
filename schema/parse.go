package schema

import (
	"strconv"
)

// typeRefNode is an unresolved type reference as it appears in the schema
// text (a named type, optionally wrapped in list/non-null markers). Parsing
// never needs to know whether a name refers to a scalar, object,
// interface, or union; that resolution happens once every definition has
// been read, in load.go.
type typeRefNode struct {
	name    string
	of      *typeRefNode
	list    bool
	nonNull bool
}

type argDefNode struct {
	name       string
	typ        *typeRefNode
	hasDefault bool
	def        interface{}
	pos        int
}

type fieldDefNode struct {
	name string
	args []argDefNode
	typ  *typeRefNode
	pos  int
}

type objectDefNode struct {
	name       string
	implements []string
	fields     []fieldDefNode
	pos        int
}

type interfaceDefNode struct {
	name   string
	fields []fieldDefNode
	pos    int
}

type unionDefNode struct {
	name    string
	members []string
	pos     int
}

type docNode struct {
	objects    []objectDefNode
	interfaces []interfaceDefNode
	unions     []unionDefNode
}

type parser struct {
	toks []token
	i    int
}

func parseDocument(src string) (*docNode, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	doc := &docNode{}
	for !p.at(tokEOF) {
		p.maybeString()
		kw, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		switch kw.text {
		case "type":
			o, err := p.parseObject(kw.pos)
			if err != nil {
				return nil, err
			}
			doc.objects = append(doc.objects, *o)
		case "interface":
			iface, err := p.parseInterface(kw.pos)
			if err != nil {
				return nil, err
			}
			doc.interfaces = append(doc.interfaces, *iface)
		case "union":
			u, err := p.parseUnion(kw.pos)
			if err != nil {
				return nil, err
			}
			doc.unions = append(doc.unions, *u)
		case "directive":
			// Directive declarations are trivia here: their semantics are
			// fixed by the engine (schema/directives.go), so we only need
			// to skip past the declaration syntactically.
			if err := p.skipDirectiveDecl(); err != nil {
				return nil, err
			}
		default:
			return nil, &ParseError{Offset: kw.pos, Message: "expected 'type', 'interface', 'union', or 'directive', got '" + kw.text + "'"}
		}
	}
	return doc, nil
}

func (p *parser) cur() token { return p.toks[p.i] }

func (p *parser) at(k tokenKind) bool { return p.cur().kind == k }

func (p *parser) atPunct(s string) bool { return p.cur().kind == tokPunct && p.cur().text == s }

func (p *parser) advance() token {
	t := p.cur()
	if p.i < len(p.toks)-1 {
		p.i++
	}
	return t
}

func (p *parser) expectIdent() (token, error) {
	if !p.at(tokIdent) {
		return token{}, &ParseError{Offset: p.cur().pos, Message: "expected identifier"}
	}
	return p.advance(), nil
}

func (p *parser) expectPunct(s string) error {
	if !p.atPunct(s) {
		return &ParseError{Offset: p.cur().pos, Message: "expected '" + s + "'"}
	}
	p.advance()
	return nil
}

// maybeString consumes and discards an optional leading description string
// (block or single quoted); descriptions are trivia per spec §6.
func (p *parser) maybeString() {
	if p.at(tokString) {
		p.advance()
	}
}

func (p *parser) parseObject(pos int) (*objectDefNode, error) {
	p.maybeString()
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	o := &objectDefNode{name: name.text, pos: pos}
	if p.at(tokIdent) && p.cur().text == "implements" {
		p.advance()
		for {
			ifaceName, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			o.implements = append(o.implements, ifaceName.text)
			if p.atPunct("&") {
				p.advance()
				continue
			}
			break
		}
	}
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	for !p.atPunct("}") {
		f, err := p.parseField()
		if err != nil {
			return nil, err
		}
		o.fields = append(o.fields, *f)
	}
	p.advance() // consume '}'
	return o, nil
}

func (p *parser) parseInterface(pos int) (*interfaceDefNode, error) {
	p.maybeString()
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	iface := &interfaceDefNode{name: name.text, pos: pos}
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	for !p.atPunct("}") {
		f, err := p.parseField()
		if err != nil {
			return nil, err
		}
		iface.fields = append(iface.fields, *f)
	}
	p.advance()
	return iface, nil
}

func (p *parser) parseUnion(pos int) (*unionDefNode, error) {
	p.maybeString()
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	u := &unionDefNode{name: name.text, pos: pos}
	if err := p.expectPunct("="); err != nil {
		return nil, err
	}
	for {
		member, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		u.members = append(u.members, member.text)
		if p.atPunct("|") {
			p.advance()
			continue
		}
		break
	}
	return u, nil
}

func (p *parser) parseField() (*fieldDefNode, error) {
	p.maybeString()
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	f := &fieldDefNode{name: name.text, pos: name.pos}
	if p.atPunct("(") {
		p.advance()
		for !p.atPunct(")") {
			arg, err := p.parseArgDef()
			if err != nil {
				return nil, err
			}
			f.args = append(f.args, *arg)
			if p.atPunct(",") {
				p.advance()
			}
		}
		p.advance() // consume ')'
	}
	if err := p.expectPunct(":"); err != nil {
		return nil, err
	}
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	f.typ = typ
	return f, nil
}

func (p *parser) parseArgDef() (*argDefNode, error) {
	p.maybeString()
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(":"); err != nil {
		return nil, err
	}
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	a := &argDefNode{name: name.text, typ: typ, pos: name.pos}
	if p.atPunct("=") {
		p.advance()
		lit, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		a.hasDefault = true
		a.def = lit
	}
	return a, nil
}

func (p *parser) parseType() (*typeRefNode, error) {
	var t *typeRefNode
	if p.atPunct("[") {
		p.advance()
		inner, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct("]"); err != nil {
			return nil, err
		}
		t = &typeRefNode{list: true, of: inner}
	} else {
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		t = &typeRefNode{name: name.text}
	}
	if p.atPunct("!") {
		p.advance()
		t = &typeRefNode{nonNull: true, of: t}
	}
	return t, nil
}

// parseLiteral parses an argument default value: int, float, string,
// boolean, or list literal. It returns a Go-native value (int64, float64,
// string, bool, or []interface{}) that load.go's literal coercion turns
// into a value.Value once the parameter's declared type is known.
func (p *parser) parseLiteral() (interface{}, error) {
	switch {
	case p.at(tokInt):
		t := p.advance()
		n, err := strconv.ParseInt(t.text, 10, 64)
		if err != nil {
			return nil, &ParseError{Offset: t.pos, Message: "invalid integer literal"}
		}
		return n, nil
	case p.at(tokFloat):
		t := p.advance()
		f, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, &ParseError{Offset: t.pos, Message: "invalid float literal"}
		}
		return f, nil
	case p.at(tokString):
		t := p.advance()
		return t.text, nil
	case p.at(tokIdent):
		t := p.advance()
		switch t.text {
		case "true":
			return true, nil
		case "false":
			return false, nil
		case "null":
			return nil, nil
		default:
			return t.text, nil // bare word: enum member default
		}
	case p.atPunct("["):
		p.advance()
		var list []interface{}
		for !p.atPunct("]") {
			v, err := p.parseLiteral()
			if err != nil {
				return nil, err
			}
			list = append(list, v)
			if p.atPunct(",") {
				p.advance()
			}
		}
		p.advance()
		return list, nil
	default:
		return nil, &ParseError{Offset: p.cur().pos, Message: "expected a default value literal"}
	}
}

// skipDirectiveDecl consumes a `directive @name(args) on LOCATIONS` clause
// without interpreting it; see parseDocument's "directive" case.
func (p *parser) skipDirectiveDecl() error {
	if _, err := p.expectIdent(); err != nil { // @name, lexed as an ident since '@' is an ident-start rune
		return err
	}
	if p.atPunct("(") {
		depth := 0
		for {
			if p.atPunct("(") {
				depth++
			} else if p.atPunct(")") {
				depth--
			}
			p.advance()
			if depth == 0 {
				break
			}
			if p.at(tokEOF) {
				return &ParseError{Offset: p.cur().pos, Message: "unterminated directive argument list"}
			}
		}
	}
	if p.at(tokIdent) && p.cur().text == "repeatable" {
		p.advance()
	}
	if p.at(tokIdent) && p.cur().text == "on" {
		p.advance()
		for p.at(tokIdent) {
			p.advance()
			if p.atPunct("|") {
				p.advance()
				continue
			}
			break
		}
	}
	return nil
}
