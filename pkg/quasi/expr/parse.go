package expr

import (
	"errors"
	"fmt"
)

// node is a parsed expression.
type node interface {
	eval(e *Evaluator) (any, error)
}

type (
	literal struct{ val any }

	ident struct{ name string }

	call struct {
		name string
		args []node
		pos  int
	}

	negate struct{ x node }

	not struct{ x node }

	logical struct {
		op   string
		l, r node
	}

	comparison struct {
		op   string
		l, r node
	}
)

// comparisonOps are the built-in binary operators.
var comparisonOps = map[string]bool{
	"==": true, "!=": true, "<": true, ">": true, "<=": true, ">=": true, "contains": true,
}

type parser struct {
	toks      []token
	i         int
	customOps map[string]BinaryOp
}

// parse builds the expression tree for src.
func parse(src string, customOps map[string]BinaryOp) (node, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	if len(toks) == 1 {
		return nil, syntaxError(0, "empty expression")
	}
	p := &parser{toks: toks, customOps: customOps}
	n, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, syntaxError(t.pos, "unexpected %s", t)
	}
	return n, nil
}

func (p *parser) peek() token { return p.toks[p.i] }

func (p *parser) next() token {
	t := p.toks[p.i]
	if t.kind != tokEOF {
		p.i++
	}
	return t
}

func (p *parser) isWord(w string) bool {
	t := p.peek()
	return t.kind == tokIdent && t.text == w
}

func (p *parser) parseOr() (node, error) {
	l, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.isWord("or") {
		p.next()
		r, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		l = &logical{op: "or", l: l, r: r}
	}
	return l, nil
}

func (p *parser) parseAnd() (node, error) {
	l, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.isWord("and") {
		p.next()
		r, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		l = &logical{op: "and", l: l, r: r}
	}
	return l, nil
}

func (p *parser) parseNot() (node, error) {
	if t := p.peek(); p.isWord("not") || (t.kind == tokOp && t.text == "!") {
		p.next()
		x, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &not{x: x}, nil
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() (node, error) {
	l, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	t := p.peek()
	op := ""
	switch {
	case t.kind == tokOp && comparisonOps[t.text]:
		op = t.text
	case t.kind == tokIdent && t.text == "contains":
		op = t.text
	case t.kind == tokIdent && p.customOps[t.text] != nil:
		op = t.text
	}
	if op == "" {
		return l, nil
	}
	p.next()
	r, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	return &comparison{op: op, l: l, r: r}, nil
}

func (p *parser) parsePrimary() (node, error) {
	t := p.next()
	switch t.kind {
	case tokString, tokNumber:
		return &literal{val: t.val}, nil

	case tokLParen:
		x, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if c := p.next(); c.kind != tokRParen {
			return nil, syntaxError(c.pos, "expected ) but found %s", c)
		}
		return x, nil

	case tokOp:
		if t.text == "-" {
			x, err := p.parsePrimary()
			if err != nil {
				return nil, err
			}
			return &negate{x: x}, nil
		}

	case tokIdent:
		switch t.text {
		case "true":
			return &literal{val: true}, nil
		case "false":
			return &literal{val: false}, nil
		case "null", "nil":
			return &literal{val: nil}, nil
		case "and", "or", "not", "contains":
			return nil, syntaxError(t.pos, "unexpected %s", t)
		}
		if p.peek().kind == tokLParen {
			p.next()
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			return &call{name: t.text, args: args, pos: t.pos}, nil
		}
		return &ident{name: t.text}, nil
	}
	return nil, syntaxError(t.pos, "unexpected %s", t)
}

// parseArgs reads a call's arguments after the opening parenthesis.
func (p *parser) parseArgs() ([]node, error) {
	var args []node
	if p.peek().kind == tokRParen {
		p.next()
		return args, nil
	}
	for {
		a, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		args = append(args, a)

		switch t := p.next(); t.kind {
		case tokComma:
		case tokRParen:
			return args, nil
		default:
			return nil, syntaxError(t.pos, "expected , or ) but found %s", t)
		}
	}
}

func (n *literal) eval(*Evaluator) (any, error) { return n.val, nil }

func (n *ident) eval(e *Evaluator) (any, error) {
	if v, ok := lookup(e.vars, n.name); ok {
		return v, nil
	}
	switch e.missing {
	case MissingEmpty:
		return "", nil
	case MissingKeep:
		return n.name, nil
	default:
		return nil, &UndefinedVariableError{Names: []string{n.name}}
	}
}

func (n *call) eval(e *Evaluator) (any, error) {
	fn, ok := e.funcs.Get(n.name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFunction, n.name)
	}
	args := make([]any, len(n.args))
	for i, a := range n.args {
		v, err := a.eval(e)
		// default tolerates an undefined first argument.
		var undef *UndefinedVariableError
		if n.name == "default" && i == 0 && errors.As(err, &undef) {
			v, err = nil, nil
		}
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	v, err := fn(args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", n.name, err)
	}
	return v, nil
}

func (n *negate) eval(e *Evaluator) (any, error) {
	v, err := n.x.eval(e)
	if err != nil {
		return nil, err
	}
	switch x := v.(type) {
	case int64:
		return -x, nil
	case int:
		return -int64(x), nil
	default:
		return -ToFloat64(v), nil
	}
}

func (n *not) eval(e *Evaluator) (any, error) {
	v, err := n.x.eval(e)
	if err != nil {
		return nil, err
	}
	return !IsTruthy(v), nil
}

func (n *logical) eval(e *Evaluator) (any, error) {
	l, err := n.l.eval(e)
	if err != nil {
		return nil, err
	}
	switch {
	case n.op == "and" && !IsTruthy(l):
		return false, nil
	case n.op == "or" && IsTruthy(l):
		return true, nil
	}
	r, err := n.r.eval(e)
	if err != nil {
		return nil, err
	}
	return IsTruthy(r), nil
}

func (n *comparison) eval(e *Evaluator) (any, error) {
	l, err := n.l.eval(e)
	if err != nil {
		return nil, err
	}
	r, err := n.r.eval(e)
	if err != nil {
		return nil, err
	}
	if fn, ok := e.customOps[n.op]; ok && !comparisonOps[n.op] {
		return fn(l, r), nil
	}
	return Compare(l, r, n.op)
}
