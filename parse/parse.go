// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parse

import (
	"fmt"
	"runtime"
	"strconv"

	"github.com/fiji-flo/gotemplate/errs"
)

// Parse parses text into a Set: the root template under name, plus any
// define'd or block-desugared sub-templates. allowDynamicName gates the
// optional {{template (pipeline)}} form.
func Parse(name, text, leftDelim, rightDelim string, allowDynamicName bool) (Set, error) {
	set := Set{}
	p := &parser{
		name:             name,
		set:              set,
		vars:             []string{"$"},
		allowDynamicName: allowDynamicName,
	}
	root, err := p.parse(text, leftDelim, rightDelim)
	if err != nil {
		return nil, err
	}
	if err := set.add(name, root); err != nil {
		return nil, err
	}
	return set, nil
}

type parser struct {
	name             string
	set              Set
	lex              *lexer
	token            [2]item
	peekCount        int
	vars             []string
	insideRange      int
	allowDynamicName bool
}

func (p *parser) next() item {
	if p.peekCount > 0 {
		p.peekCount--
	} else {
		p.token[0] = p.lex.nextItem()
	}
	return p.token[p.peekCount]
}

func (p *parser) backup() { p.peekCount++ }

func (p *parser) backup2(t1 item) {
	p.token[1] = t1
	p.peekCount = 2
}

func (p *parser) peek() item {
	if p.peekCount > 0 {
		return p.token[p.peekCount-1]
	}
	p.peekCount = 1
	p.token[0] = p.lex.nextItem()
	return p.token[0]
}

// parseError is used internally to unwind the recursive descent via
// panic; recover converts it back to a plain error at the top.
type parseError struct{ err error }

func (p *parser) errorf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	panic(parseError{&errs.ParseError{Template: p.name, Line: p.lex.lineNumber(), Msg: msg}})
}

func (p *parser) error(err error) { p.errorf("%s", err) }

func (p *parser) recover(errp *error) {
	if e := recover(); e != nil {
		if _, ok := e.(runtime.Error); ok {
			panic(e)
		}
		if pe, ok := e.(parseError); ok {
			*errp = pe.err
			return
		}
		panic(e)
	}
}

func (p *parser) expect(expected itemType, context string) item {
	token := p.next()
	if token.typ != expected {
		p.unexpected(token, context)
	}
	return token
}

func (p *parser) expectOneOf(e1, e2 itemType, context string) item {
	token := p.next()
	if token.typ != e1 && token.typ != e2 {
		p.unexpected(token, context)
	}
	return token
}

func (p *parser) unexpected(token item, context string) {
	if token.typ == itemError {
		panic(parseError{&errs.LexError{Offset: token.pos, Msg: token.val}})
	}
	p.errorf("unexpected %q in %s", token.val, context)
}

func (p *parser) hasVar(name string) bool {
	for _, v := range p.vars {
		if v == name {
			return true
		}
	}
	return false
}

func (p *parser) popVars(n int) { p.vars = p.vars[:n] }

// parse is the top-level parser for one source text: it parses the root
// list, recursing into parseDefinition whenever it hits a top-level
// {{define}}.
func (p *parser) parse(text, leftDelim, rightDelim string) (root *ListNode, err error) {
	defer p.recover(&err)
	p.lex = lex(p.name, text, leftDelim, rightDelim)
	root = newList(0)
	for p.peek().typ != itemEOF {
		if p.peek().typ == itemLeftDelim {
			save := p.next()
			if p.peek().typ == itemDefine {
				p.next()
				p.parseDefinition()
				continue
			}
			p.backup2(save)
		}
		n := p.textOrAction()
		switch n.Type() {
		case nodeEnd, nodeElse:
			p.errorf("unexpected %s", n)
		}
		root.append(n)
	}
	return root, nil
}

// parseDefinition parses a {{define "name"}} ... {{end}} and installs it
// in the Set. define is only legal at the outermost list of a parse.
func (p *parser) parseDefinition() {
	const context = "define clause"
	token := p.expectOneOf(itemString, itemRawString, context)
	name, err := strconv.Unquote(token.val)
	if err != nil {
		p.error(err)
	}
	p.expect(itemRightDelim, context)
	list := p.parseBody(context)
	if err := p.set.add(name, list); err != nil {
		p.error(err)
	}
}

// parseBody parses an itemList in a fresh variable/range scope, used for
// define and block bodies: each named sub-template starts over with only
// "$" visible and an empty range-nesting count.
func (p *parser) parseBody(context string) *ListNode {
	savedVars := p.vars
	savedRange := p.insideRange
	p.vars = []string{"$"}
	p.insideRange = 0
	list, next := p.itemList()
	if next.Type() != nodeEnd {
		p.errorf("unexpected %s in %s", next, context)
	}
	p.vars = savedVars
	p.insideRange = savedRange
	return list
}

// itemList parses (Text | Action)* terminating at {{end}} or {{else}},
// which are returned separately rather than appended.
func (p *parser) itemList() (list *ListNode, next Node) {
	list = newList(Pos(p.peek().pos))
	for {
		if p.peek().typ == itemEOF {
			p.errorf("unexpected EOF")
		}
		n := p.textOrAction()
		switch n.Type() {
		case nodeEnd, nodeElse:
			return list, n
		}
		list.append(n)
	}
}

func (p *parser) textOrAction() Node {
	switch token := p.next(); token.typ {
	case itemText:
		return newText(Pos(token.pos), token.val)
	case itemLeftDelim:
		return p.action()
	default:
		p.unexpected(token, "input")
		return nil
	}
}

// action parses the body of a {{...}} construct; the left delim is past.
func (p *parser) action() Node {
	switch token := p.next(); token.typ {
	case itemElse:
		return p.elseControl()
	case itemEnd:
		return p.endControl()
	case itemIf:
		return p.ifControl()
	case itemRange:
		return p.rangeControl()
	case itemWith:
		return p.withControl()
	case itemTemplate:
		return p.templateControl()
	case itemBlock:
		return p.blockControl()
	case itemDefine:
		p.errorf("define not allowed in this context")
	case itemBreak:
		return p.breakControl(token)
	case itemContinue:
		return p.continueControl(token)
	}
	p.backup()
	pos := Pos(p.peek().pos)
	line := p.lex.lineNumber()
	return newAction(pos, line, p.pipeline("command", false, itemRightDelim))
}

func (p *parser) breakControl(token item) Node {
	if p.insideRange == 0 {
		p.errorf("{{break}} outside {{range}}")
	}
	p.expect(itemRightDelim, "break")
	return newBreak(Pos(token.pos))
}

func (p *parser) continueControl(token item) Node {
	if p.insideRange == 0 {
		p.errorf("{{continue}} outside {{range}}")
	}
	p.expect(itemRightDelim, "continue")
	return newContinue(Pos(token.pos))
}

// pipeline parses: (decl)? command ('|' command)*
// isRange indicates range context, where up to two declared variables are
// allowed (element, or index+element). end is the token that terminates the
// pipeline: itemRightDelim for an action's pipeline, itemRightParen for a
// parenthesized sub-pipeline nested inside one.
func (p *parser) pipeline(context string, isRange bool, end itemType) (pipe *PipeNode) {
	pos := Pos(p.peek().pos)
	line := p.lex.lineNumber()
	var decl []*VariableNode
	isAssign := false

	declareVar := func(tok item, newScope bool) *VariableNode {
		vn := newVariable(Pos(tok.pos), tok.val)
		if len(vn.Ident) != 1 {
			p.errorf("illegal variable in declaration: %s", tok.val)
		}
		if newScope {
			p.vars = append(p.vars, tok.val)
		} else if !p.hasVar(vn.Ident[0]) {
			p.errorf("undefined variable %q", vn.Ident[0])
		}
		return vn
	}

	if v := p.peek(); v.typ == itemVariable {
		p.next()
		switch next := p.peek(); next.typ {
		case itemColonEquals:
			p.next()
			decl = append(decl, declareVar(v, true))
		case itemAssign:
			p.next()
			decl = append(decl, declareVar(v, false))
			isAssign = true
		case itemComma:
			if !isRange {
				p.errorf("too many declarations in %s", context)
			}
			p.next()
			v2 := p.expect(itemVariable, context)
			p.expect(itemColonEquals, context)
			decl = append(decl, declareVar(v, true), declareVar(v2, true))
		default:
			// Not a declaration after all; it's a value reference.
			p.backup2(v)
		}
	}
	pipe = newPipeline(pos, line, decl)
	pipe.IsAssign = isAssign
	for {
		switch token := p.next(); token.typ {
		case end:
			p.checkPipeline(pipe, context)
			return
		case itemBool, itemCharConstant, itemComplex, itemDot, itemField, itemIdentifier,
			itemNumber, itemNil, itemRawString, itemString, itemVariable, itemLeftParen:
			p.backup()
			pipe.append(p.command())
		default:
			p.unexpected(token, context)
		}
	}
}

func (p *parser) checkPipeline(pipe *PipeNode, context string) {
	if len(pipe.Cmds) == 0 {
		p.errorf("missing value for %s", context)
	}
	// Only the first command of a pipeline can start with a bare literal;
	// later stages must name something callable.
	for i, c := range pipe.Cmds[1:] {
		switch c.Args[0].Type() {
		case NodeBool, NodeNil, NodeNumber, NodeString:
			p.errorf("non executable command in pipeline stage %d", i+2)
		}
	}
}

// command parses a single pipeline stage: a sequence of operands, the
// first of which classifies the command's form.
func (p *parser) command() *CommandNode {
	cmd := newCommand(Pos(p.peek().pos))
	for {
		operand := p.operand()
		if operand != nil {
			cmd.append(operand)
		}
		switch token := p.next(); token.typ {
		case itemRightDelim, itemRightParen:
			p.backup()
		case itemPipe:
			// consumed here; the pipeline loop picks up the next command
		default:
			p.backup()
			if operand == nil {
				p.unexpected(p.peek(), "operand")
			}
			continue
		}
		break
	}
	if len(cmd.Args) == 0 {
		p.errorf("empty command")
	}
	return cmd
}

// operand parses a single operand, then folds any following field chain
// onto it.
func (p *parser) operand() Node {
	base := p.term()
	if base == nil {
		return nil
	}
	if p.peek().typ == itemField {
		chain := newChain(Pos(base.Position()), base, splitChain(p.next().val[1:]))
		return chain
	}
	return base
}

// term parses one base operand: literal, variable, field, dot, identifier,
// or a parenthesised sub-pipeline.
func (p *parser) term() Node {
	switch token := p.next(); token.typ {
	case itemIdentifier:
		return NewIdentifier(Pos(token.pos), token.val)
	case itemDot:
		return newDot(Pos(token.pos))
	case itemNil:
		return newNil(Pos(token.pos))
	case itemVariable:
		return p.useVar(token)
	case itemField:
		return newField(Pos(token.pos), token.val)
	case itemBool:
		return newBool(Pos(token.pos), token.val == "true")
	case itemCharConstant, itemComplex, itemNumber:
		n, err := newNumber(Pos(token.pos), token.val, token.typ)
		if err != nil {
			p.error(err)
		}
		return n
	case itemLeftParen:
		return p.pipeline("parenthesized pipeline", false, itemRightParen)
	case itemString, itemRawString:
		s, err := strconv.Unquote(token.val)
		if err != nil {
			p.error(err)
		}
		return newString(Pos(token.pos), token.val, s)
	}
	p.backup()
	return nil
}

// useVar validates $name is a bound variable and returns a VariableNode;
// the root context binding "$" is always available.
func (p *parser) useVar(token item) Node {
	v := newVariable(Pos(token.pos), token.val)
	if !p.hasVar(v.Ident[0]) {
		p.errorf("undefined variable %q", v.Ident[0])
	}
	return v
}

// parseControl parses the shared shape of if/range/with: pipeline, body
// list, and an optional else clause. "{{else if ...}}" is accepted as
// sugar for "{{else}}{{if ...}}...{{end}}{{end}}".
func (p *parser) parseControl(context string, isRange bool) (line int, pipe *PipeNode, list, elseList *ListNode) {
	line = p.lex.lineNumber()
	savedVars := len(p.vars)
	pipe = p.pipeline(context, isRange, itemRightDelim)
	if isRange {
		p.insideRange++
	}
	var next Node
	list, next = p.itemList()
	if isRange {
		p.insideRange--
	}
	switch next.Type() {
	case nodeEnd:
	case nodeElse:
		if p.peek().typ == itemIf {
			p.next() // consume the pending "if" left by elseControl.
			elseList = newList(Pos(next.Position()))
			elseList.append(p.ifControl())
			break
		}
		elseList, next = p.itemList()
		if next.Type() != nodeEnd {
			p.errorf("expected end; found %s", next)
		}
	}
	p.popVars(savedVars)
	return line, pipe, list, elseList
}

func (p *parser) ifControl() Node {
	pos := Pos(p.peek().pos)
	line, pipe, list, elseList := p.parseControl("if", false)
	return newIf(pos, line, pipe, list, elseList)
}

func (p *parser) rangeControl() Node {
	pos := Pos(p.peek().pos)
	line, pipe, list, elseList := p.parseControl("range", true)
	return newRange(pos, line, pipe, list, elseList)
}

func (p *parser) withControl() Node {
	pos := Pos(p.peek().pos)
	line, pipe, list, elseList := p.parseControl("with", false)
	return newWith(pos, line, pipe, list, elseList)
}

func (p *parser) endControl() Node {
	pos := Pos(p.peek().pos)
	p.expect(itemRightDelim, "end")
	return newEnd(pos)
}

// elseControl parses "else": the left delim and "else" keyword are past.
// If "if" follows immediately (still pending, not consumed: "{{else if
// pipeline}}" is one action), it leaves the "if" token for parseControl to
// pick up and returns a bare else marker; otherwise it consumes the right
// delim itself.
func (p *parser) elseControl() Node {
	pos := Pos(p.peek().pos)
	line := p.lex.lineNumber()
	if p.peek().typ == itemIf {
		return newElse(pos, line)
	}
	p.expect(itemRightDelim, "else")
	return newElse(pos, line)
}

func (p *parser) templateControl() Node {
	pos := Pos(p.peek().pos)
	line := p.lex.lineNumber()
	var name string
	var namePipe *PipeNode
	switch token := p.next(); token.typ {
	case itemString, itemRawString:
		s, err := strconv.Unquote(token.val)
		if err != nil {
			p.error(err)
		}
		name = s
	case itemLeftParen:
		if !p.allowDynamicName {
			p.errorf("dynamic template name not enabled")
		}
		// token (the left paren) is already consumed; parse the
		// parenthesized pipeline the same way term() does, stopping at
		// its matching right paren rather than the action's right delim.
		namePipe = p.pipeline("template name", false, itemRightParen)
	default:
		p.unexpected(token, "template invocation")
	}
	var pipe *PipeNode
	if p.peek().typ != itemRightDelim {
		pipe = p.pipeline("template", false, itemRightDelim)
	} else {
		p.next()
	}
	return newTemplate(pos, line, name, namePipe, pipe)
}

func (p *parser) blockControl() Node {
	pos := Pos(p.peek().pos)
	line := p.lex.lineNumber()
	token := p.expectOneOf(itemString, itemRawString, "block")
	name, err := strconv.Unquote(token.val)
	if err != nil {
		p.error(err)
	}
	var pipe *PipeNode
	if p.peek().typ != itemRightDelim {
		pipe = p.pipeline("block", false, itemRightDelim)
	} else {
		p.next()
	}
	list := p.parseBody("block clause")
	if err := p.set.add(name, list); err != nil {
		p.error(err)
	}
	return newBlock(pos, line, name, pipe, list)
}
