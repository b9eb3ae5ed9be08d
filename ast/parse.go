package ast

import "fmt"

// parser is a recursive-descent reader over a pre-lexed token stream,
// mirroring package schema's parser (schema/parse.go) but over query
// syntax: selection sets, aliased fields, directive applications, and
// literal/variable/tag-reference argument values.
type parser struct {
	toks []token
	pos  int
}

// Parse lexes and parses a query document (spec §4.2, §6): a single
// top-level selection set with no surrounding `query { ... }` wrapper,
// matching the bare-root-selection form the spec's examples use.
func Parse(src string) (*Document, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	ss, err := p.parseSelectionSet()
	if err != nil {
		return nil, err
	}
	if p.cur().kind != tokEOF {
		return nil, p.errorf("unexpected trailing input after root selection set")
	}
	return &Document{Root: ss}, nil
}

func (p *parser) cur() token { return p.toks[p.pos] }

func (p *parser) advance() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return &SyntaxError{Offset: p.cur().pos, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) expectPunct(s string) (token, error) {
	t := p.cur()
	if t.kind != tokPunct || t.text != s {
		return token{}, p.errorf("expected %q, got %q", s, t.text)
	}
	return p.advance(), nil
}

func (p *parser) isPunct(s string) bool {
	return p.cur().kind == tokPunct && p.cur().text == s
}

func (p *parser) expectIdent() (token, error) {
	t := p.cur()
	if t.kind != tokIdent {
		return token{}, p.errorf("expected a name, got %q", t.text)
	}
	return p.advance(), nil
}

func (p *parser) parseSelectionSet() (*SelectionSet, error) {
	open, err := p.expectPunct("{")
	if err != nil {
		return nil, err
	}
	ss := &SelectionSet{}
	for !p.isPunct("}") {
		sel, err := p.parseSelection()
		if err != nil {
			return nil, err
		}
		ss.Selections = append(ss.Selections, sel)
	}
	if _, err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	if len(ss.Selections) == 0 {
		return nil, &SyntaxError{Offset: open.pos, Message: "empty selection set"}
	}
	return ss, nil
}

func (p *parser) parseSelection() (Selection, error) {
	if p.isPunct("...") {
		return p.parseInlineCoercion()
	}
	return p.parseField()
}

func (p *parser) parseInlineCoercion() (*InlineCoercion, error) {
	start := p.cur().pos
	if _, err := p.expectPunct("..."); err != nil {
		return nil, err
	}
	onTok, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if onTok.text != "on" {
		return nil, p.errorf("expected 'on' after '...', got %q", onTok.text)
	}
	typeName, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	ss, err := p.parseSelectionSet()
	if err != nil {
		return nil, err
	}
	return &InlineCoercion{TypeName: typeName.text, SelectionSet: ss, Pos: start}, nil
}

func (p *parser) parseField() (*Field, error) {
	start := p.cur().pos
	first, err := p.expectIdent()
	if err != nil {
		return nil, err
	}

	f := &Field{Name: first.text, Pos: start}

	if p.isPunct(":") {
		p.advance()
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		f.Alias = first.text
		f.Name = name.text
	}

	if p.isPunct("(") {
		args, err := p.parseArgumentList()
		if err != nil {
			return nil, err
		}
		f.Arguments = args
	}

	for p.isPunct("@") {
		d, err := p.parseDirective()
		if err != nil {
			return nil, err
		}
		f.Directives = append(f.Directives, d)
	}

	if p.isPunct("{") {
		ss, err := p.parseSelectionSet()
		if err != nil {
			return nil, err
		}
		f.SelectionSet = ss
	}

	return f, nil
}

func (p *parser) parseDirective() (Directive, error) {
	start := p.cur().pos
	if _, err := p.expectPunct("@"); err != nil {
		return Directive{}, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return Directive{}, err
	}
	d := Directive{Name: name.text, Pos: start}
	if p.isPunct("(") {
		args, err := p.parseArgumentList()
		if err != nil {
			return Directive{}, err
		}
		d.Arguments = args
	}
	return d, nil
}

func (p *parser) parseArgumentList() ([]Argument, error) {
	if _, err := p.expectPunct("("); err != nil {
		return nil, err
	}
	var args []Argument
	for !p.isPunct(")") {
		a, err := p.parseArgument()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if p.isPunct(",") {
			p.advance()
		}
	}
	if _, err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return nil, p.errorf("empty argument list")
	}
	return args, nil
}

func (p *parser) parseArgument() (Argument, error) {
	start := p.cur().pos
	name, err := p.expectIdent()
	if err != nil {
		return Argument{}, err
	}
	if _, err := p.expectPunct(":"); err != nil {
		return Argument{}, err
	}
	lit, err := p.parseLiteral()
	if err != nil {
		return Argument{}, err
	}
	return Argument{Name: name.text, Value: lit, Pos: start}, nil
}

func (p *parser) parseLiteral() (Literal, error) {
	t := p.cur()
	switch {
	case t.kind == tokInt:
		p.advance()
		n, err := parseIntText(t.text)
		if err != nil {
			return Literal{}, p.errorf("invalid integer literal %q", t.text)
		}
		return Literal{Kind: LitInt, I: n, Pos: t.pos}, nil
	case t.kind == tokFloat:
		p.advance()
		n, err := parseFloatText(t.text)
		if err != nil {
			return Literal{}, p.errorf("invalid float literal %q", t.text)
		}
		return Literal{Kind: LitFloat, F: n, Pos: t.pos}, nil
	case t.kind == tokString:
		p.advance()
		return Literal{Kind: LitString, S: t.text, Pos: t.pos}, nil
	case t.kind == tokVar:
		p.advance()
		return Literal{Kind: LitVar, S: t.text, Pos: t.pos}, nil
	case t.kind == tokTagRef:
		p.advance()
		return Literal{Kind: LitTagRef, S: t.text, Pos: t.pos}, nil
	case t.kind == tokIdent:
		p.advance()
		switch t.text {
		case "true":
			return Literal{Kind: LitBool, B: true, Pos: t.pos}, nil
		case "false":
			return Literal{Kind: LitBool, B: false, Pos: t.pos}, nil
		case "null":
			return Literal{Kind: LitNull, Pos: t.pos}, nil
		default:
			return Literal{Kind: LitEnum, S: t.text, Pos: t.pos}, nil
		}
	case t.kind == tokPunct && t.text == "[":
		return p.parseListLiteral()
	default:
		return Literal{}, p.errorf("expected a value, got %q", t.text)
	}
}

func (p *parser) parseListLiteral() (Literal, error) {
	start := p.cur().pos
	if _, err := p.expectPunct("["); err != nil {
		return Literal{}, err
	}
	var items []Literal
	for !p.isPunct("]") {
		item, err := p.parseLiteral()
		if err != nil {
			return Literal{}, err
		}
		items = append(items, item)
		if p.isPunct(",") {
			p.advance()
		}
	}
	if _, err := p.expectPunct("]"); err != nil {
		return Literal{}, err
	}
	return Literal{Kind: LitList, List: items, Pos: start}, nil
}
