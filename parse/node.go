// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package parse builds parse trees for templates: the lexer tokenizes
// action-bearing text, and the parser builds a forest of named Trees
// (root plus any define'd sub-templates), each an action-node tree ready
// for the evaluator to walk.
package parse

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/fiji-flo/gotemplate/value"
)

// Node is the interface satisfied by every element of a parse tree.
type Node interface {
	Type() NodeType
	String() string
	Position() int
	Copy() Node
}

// NodeType identifies the type of a parse tree node.
type NodeType int

func (t NodeType) Type() NodeType { return t }

const (
	NodeText NodeType = iota
	NodeAction
	NodeBool
	NodeCommand
	NodeDot
	NodeNil
	NodeField
	NodeIdentifier
	NodeIf
	NodeList
	NodeNumber
	NodePipe
	NodeRange
	NodeString
	NodeTemplate
	NodeBlock
	NodeVariable
	NodeWith
	NodeBreak
	NodeContinue
	NodeDefine
	NodeChain
	nodeEnd
	nodeElse
)

// Pos is the byte position of a node in the source text.
type Pos int

// ListNode holds a sequence of nodes.
type ListNode struct {
	NodeType
	Pos
	Nodes []Node
}

func newList(pos Pos) *ListNode { return &ListNode{NodeType: NodeList, Pos: pos} }

func (l *ListNode) append(n Node) { l.Nodes = append(l.Nodes, n) }

func (l *ListNode) Position() int { return int(l.Pos) }

func (l *ListNode) String() string {
	var b bytes.Buffer
	for _, n := range l.Nodes {
		fmt.Fprint(&b, n)
	}
	return b.String()
}

func (l *ListNode) CopyList() *ListNode {
	if l == nil {
		return nil
	}
	n := newList(l.Pos)
	for _, elem := range l.Nodes {
		n.append(elem.Copy())
	}
	return n
}

func (l *ListNode) Copy() Node { return l.CopyList() }

// TextNode holds plain text, already trim-marker processed.
type TextNode struct {
	NodeType
	Pos
	Text []byte
}

func newText(pos Pos, text string) *TextNode {
	return &TextNode{NodeType: NodeText, Pos: pos, Text: []byte(text)}
}

func (t *TextNode) Position() int { return int(t.Pos) }
func (t *TextNode) String() string { return string(t.Text) }
func (t *TextNode) Copy() Node {
	return &TextNode{NodeType: NodeText, Pos: t.Pos, Text: append([]byte{}, t.Text...)}
}

// PipeNode holds a pipeline, possibly with a leading variable declaration.
type PipeNode struct {
	NodeType
	Pos
	Line     int
	Decl     []*VariableNode
	IsAssign bool
	Cmds     []*CommandNode
}

func newPipeline(pos Pos, line int, decl []*VariableNode) *PipeNode {
	return &PipeNode{NodeType: NodePipe, Pos: pos, Line: line, Decl: decl}
}

func (p *PipeNode) append(cmd *CommandNode) { p.Cmds = append(p.Cmds, cmd) }

func (p *PipeNode) Position() int { return int(p.Pos) }

func (p *PipeNode) String() string {
	var b bytes.Buffer
	if len(p.Decl) > 0 {
		for i, v := range p.Decl {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprint(&b, v)
		}
		if p.IsAssign {
			b.WriteString(" = ")
		} else {
			b.WriteString(" := ")
		}
	}
	for i, c := range p.Cmds {
		if i > 0 {
			b.WriteString(" | ")
		}
		fmt.Fprint(&b, c)
	}
	return b.String()
}

func (p *PipeNode) CopyPipe() *PipeNode {
	if p == nil {
		return nil
	}
	var decl []*VariableNode
	for _, d := range p.Decl {
		decl = append(decl, d.Copy().(*VariableNode))
	}
	n := newPipeline(p.Pos, p.Line, decl)
	n.IsAssign = p.IsAssign
	for _, c := range p.Cmds {
		n.append(c.Copy().(*CommandNode))
	}
	return n
}

func (p *PipeNode) Copy() Node { return p.CopyPipe() }

// CommandNode holds a command (a unit of a pipeline): its first argument
// classifies the command's form (function, method, variable, field chain,
// sub-pipeline, or literal); the rest are leading arguments.
type CommandNode struct {
	NodeType
	Pos
	Args []Node
}

func newCommand(pos Pos) *CommandNode { return &CommandNode{NodeType: NodeCommand, Pos: pos} }

func (c *CommandNode) append(arg Node) { c.Args = append(c.Args, arg) }

func (c *CommandNode) Position() int { return int(c.Pos) }

func (c *CommandNode) String() string {
	var b bytes.Buffer
	for i, a := range c.Args {
		if i > 0 {
			b.WriteString(" ")
		}
		if arg, ok := a.(*PipeNode); ok {
			fmt.Fprintf(&b, "(%s)", arg)
			continue
		}
		fmt.Fprint(&b, a)
	}
	return b.String()
}

func (c *CommandNode) Copy() Node {
	n := newCommand(c.Pos)
	for _, a := range c.Args {
		n.append(a.Copy())
	}
	return n
}

// IdentifierNode holds a function or method name.
type IdentifierNode struct {
	NodeType
	Pos
	Ident string
}

func NewIdentifier(pos Pos, ident string) *IdentifierNode {
	return &IdentifierNode{NodeType: NodeIdentifier, Pos: pos, Ident: ident}
}

func (i *IdentifierNode) Position() int { return int(i.Pos) }
func (i *IdentifierNode) String() string { return i.Ident }
func (i *IdentifierNode) Copy() Node { return NewIdentifier(i.Pos, i.Ident) }

// VariableNode holds a variable reference; Ident[0] is its name including
// the leading '$'. A field chain after a variable, as in $x.Field, is
// parsed as a ChainNode wrapping the VariableNode.
type VariableNode struct {
	NodeType
	Pos
	Ident []string
}

func newVariable(pos Pos, ident string) *VariableNode {
	return &VariableNode{NodeType: NodeVariable, Pos: pos, Ident: splitChain(ident)}
}

func (v *VariableNode) Position() int { return int(v.Pos) }

func (v *VariableNode) String() string {
	var b bytes.Buffer
	for i, id := range v.Ident {
		if i > 0 {
			b.WriteString(".")
		}
		b.WriteString(id)
	}
	return b.String()
}

func (v *VariableNode) Copy() Node {
	return &VariableNode{NodeType: NodeVariable, Pos: v.Pos, Ident: append([]string{}, v.Ident...)}
}

// DotNode is the current context value at a lexical point ("." alone).
type DotNode struct {
	NodeType
	Pos
}

func newDot(pos Pos) *DotNode { return &DotNode{NodeType: NodeDot, Pos: pos} }

func (d *DotNode) Position() int { return int(d.Pos) }
func (d *DotNode) String() string { return "." }
func (d *DotNode) Copy() Node { return newDot(d.Pos) }

// NilNode is the untyped nil literal.
type NilNode struct {
	NodeType
	Pos
}

func newNil(pos Pos) *NilNode { return &NilNode{NodeType: NodeNil, Pos: pos} }

func (n *NilNode) Position() int { return int(n.Pos) }
func (n *NilNode) String() string { return "nil" }
func (n *NilNode) Copy() Node { return newNil(n.Pos) }

// FieldNode holds a field chain starting with a leading '.', as in
// .Field.SubField.
type FieldNode struct {
	NodeType
	Pos
	Ident []string
}

func newField(pos Pos, ident string) *FieldNode {
	return &FieldNode{NodeType: NodeField, Pos: pos, Ident: splitChain(ident[1:])}
}

func (f *FieldNode) Position() int { return int(f.Pos) }

func (f *FieldNode) String() string {
	var b bytes.Buffer
	for _, id := range f.Ident {
		b.WriteString(".")
		b.WriteString(id)
	}
	return b.String()
}

func (f *FieldNode) Copy() Node {
	return &FieldNode{NodeType: NodeField, Pos: f.Pos, Ident: append([]string{}, f.Ident...)}
}

func splitChain(s string) []string {
	var parts []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == '.' {
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return parts
}

// BoolNode holds a boolean literal.
type BoolNode struct {
	NodeType
	Pos
	True bool
}

func newBool(pos Pos, v bool) *BoolNode { return &BoolNode{NodeType: NodeBool, Pos: pos, True: v} }

func (b *BoolNode) Position() int { return int(b.Pos) }
func (b *BoolNode) String() string {
	if b.True {
		return "true"
	}
	return "false"
}
func (b *BoolNode) Copy() Node { return newBool(b.Pos, b.True) }

// NumberNode holds a numeric literal. Exactly one of the three
// representations backs the node's Value, matching value.Number's
// i64/u64/f64 tri-representation.
type NumberNode struct {
	NodeType
	Pos
	IsInt, IsUint, IsFloat, IsComplex bool
	Int64                             int64
	Uint64                            uint64
	Float64                           float64
	Text                              string
}

func newNumber(pos Pos, text string, typ itemType) (*NumberNode, error) {
	n := &NumberNode{NodeType: NodeNumber, Pos: pos, Text: text}
	if typ == itemComplex {
		// Complex numbers parse syntactically but are unimplemented
		// downstream; keep the raw text.
		n.IsComplex = true
		return n, nil
	}
	if typ == itemCharConstant {
		r, _, tail, err := strconv.UnquoteChar(text[1:], text[0])
		if err != nil {
			return nil, fmt.Errorf("bad character constant %q: %s", text, err)
		}
		if tail != "'" {
			return nil, fmt.Errorf("malformed character constant: %s", text)
		}
		n.IsInt = true
		n.Int64 = int64(r)
		return n, nil
	}
	if i, err := strconv.ParseInt(text, 0, 64); err == nil {
		n.IsInt = true
		n.Int64 = i
		return n, nil
	}
	if u, err := strconv.ParseUint(text, 0, 64); err == nil {
		n.IsUint = true
		n.Uint64 = u
		return n, nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, fmt.Errorf("bad number syntax: %q", text)
	}
	n.IsFloat = true
	n.Float64 = f
	return n, nil
}

func (n *NumberNode) Position() int { return int(n.Pos) }
func (n *NumberNode) String() string { return n.Text }
func (n *NumberNode) Copy() Node {
	nn := *n
	return &nn
}

// AsValue converts the literal to value.Value.
func (n *NumberNode) AsValue() value.Value {
	switch {
	case n.IsInt:
		return value.NewInt(n.Int64)
	case n.IsUint:
		return value.NewUint(n.Uint64)
	default:
		return value.NewFloat(n.Float64)
	}
}

// StringNode holds a string literal, already unquoted.
type StringNode struct {
	NodeType
	Pos
	Quoted string
	Text   string
}

func newString(pos Pos, orig, text string) *StringNode {
	return &StringNode{NodeType: NodeString, Pos: pos, Quoted: orig, Text: text}
}

func (s *StringNode) Position() int { return int(s.Pos) }
func (s *StringNode) String() string { return s.Quoted }
func (s *StringNode) Copy() Node { return newString(s.Pos, s.Quoted, s.Text) }

// endNode and elseNode are control markers returned by itemList; they are
// never part of a final tree.
type endNode struct {
	NodeType
	Pos
}

func newEnd(pos Pos) *endNode { return &endNode{NodeType: nodeEnd, Pos: pos} }
func (e *endNode) Position() int { return int(e.Pos) }
func (e *endNode) String() string { return "{{end}}" }
func (e *endNode) Copy() Node { return newEnd(e.Pos) }

type elseNode struct {
	NodeType
	Pos
	Line int
}

func newElse(pos Pos, line int) *elseNode {
	return &elseNode{NodeType: nodeElse, Pos: pos, Line: line}
}
func (e *elseNode) Position() int { return int(e.Pos) }
func (e *elseNode) String() string { return "{{else}}" }
func (e *elseNode) Copy() Node { return newElse(e.Pos, e.Line) }

// BranchNode is the common shape of if/range/with: a pipeline, a body
// list, and an optional else list.
type BranchNode struct {
	NodeType
	Pos
	Line     int
	Pipe     *PipeNode
	List     *ListNode
	ElseList *ListNode
}

func (b *BranchNode) Position() int { return int(b.Pos) }

func (b *BranchNode) String() string {
	name := map[NodeType]string{NodeIf: "if", NodeRange: "range", NodeWith: "with"}[b.NodeType]
	if b.ElseList != nil {
		return fmt.Sprintf("{{%s %s}}%s{{else}}%s{{end}}", name, b.Pipe, b.List, b.ElseList)
	}
	return fmt.Sprintf("{{%s %s}}%s{{end}}", name, b.Pipe, b.List)
}

// IfNode represents an {{if}} action.
type IfNode struct{ BranchNode }

func newIf(pos Pos, line int, pipe *PipeNode, list, elseList *ListNode) *IfNode {
	return &IfNode{BranchNode{NodeType: NodeIf, Pos: pos, Line: line, Pipe: pipe, List: list, ElseList: elseList}}
}

func (i *IfNode) Copy() Node {
	return newIf(i.Pos, i.Line, i.Pipe.CopyPipe(), i.List.CopyList(), i.ElseList.CopyList())
}

// RangeNode represents a {{range}} action.
type RangeNode struct{ BranchNode }

func newRange(pos Pos, line int, pipe *PipeNode, list, elseList *ListNode) *RangeNode {
	return &RangeNode{BranchNode{NodeType: NodeRange, Pos: pos, Line: line, Pipe: pipe, List: list, ElseList: elseList}}
}

func (r *RangeNode) Copy() Node {
	return newRange(r.Pos, r.Line, r.Pipe.CopyPipe(), r.List.CopyList(), r.ElseList.CopyList())
}

// WithNode represents a {{with}} action.
type WithNode struct{ BranchNode }

func newWith(pos Pos, line int, pipe *PipeNode, list, elseList *ListNode) *WithNode {
	return &WithNode{BranchNode{NodeType: NodeWith, Pos: pos, Line: line, Pipe: pipe, List: list, ElseList: elseList}}
}

func (w *WithNode) Copy() Node {
	return newWith(w.Pos, w.Line, w.Pipe.CopyPipe(), w.List.CopyList(), w.ElseList.CopyList())
}

// TemplateNode represents a {{template}} action: a literal name or, when
// AllowDynamicTemplateName is set, a dynamic name pipeline.
type TemplateNode struct {
	NodeType
	Pos
	Line     int
	Name     string
	NamePipe *PipeNode
	Pipe     *PipeNode
}

func newTemplate(pos Pos, line int, name string, namePipe, pipe *PipeNode) *TemplateNode {
	return &TemplateNode{NodeType: NodeTemplate, Pos: pos, Line: line, Name: name, NamePipe: namePipe, Pipe: pipe}
}

func (t *TemplateNode) Position() int { return int(t.Pos) }
func (t *TemplateNode) String() string {
	if t.Pipe == nil {
		return fmt.Sprintf("{{template %q}}", t.Name)
	}
	return fmt.Sprintf("{{template %q %s}}", t.Name, t.Pipe)
}
func (t *TemplateNode) Copy() Node {
	return newTemplate(t.Pos, t.Line, t.Name, t.NamePipe.CopyPipe(), t.Pipe.CopyPipe())
}

// DefineNode holds a {{define}} body; parse-time only, it is moved into
// the Tree Set and never appears in a final rendered tree.
type DefineNode struct {
	NodeType
	Pos
	Line int
	Name string
	List *ListNode
}

func newDefine(pos Pos, line int, name string, list *ListNode) *DefineNode {
	return &DefineNode{NodeType: NodeDefine, Pos: pos, Line: line, Name: name, List: list}
}

func (d *DefineNode) Position() int { return int(d.Pos) }
func (d *DefineNode) String() string { return fmt.Sprintf("{{define %q}}%s{{end}}", d.Name, d.List) }
func (d *DefineNode) Copy() Node {
	return newDefine(d.Pos, d.Line, d.Name, d.List.CopyList())
}

// BlockNode is sugar for a DefineNode plus, at its lexical position, a
// TemplateNode call.
type BlockNode struct {
	TemplateNode
	Define *DefineNode
}

func newBlock(pos Pos, line int, name string, pipe *PipeNode, list *ListNode) *BlockNode {
	return &BlockNode{
		TemplateNode: TemplateNode{NodeType: NodeBlock, Pos: pos, Line: line, Name: name, Pipe: pipe},
		Define:       newDefine(pos, line, name, list),
	}
}

func (b *BlockNode) Copy() Node {
	return &BlockNode{
		TemplateNode: TemplateNode{NodeType: NodeBlock, Pos: b.Pos, Line: b.Line, Name: b.Name, Pipe: b.Pipe.CopyPipe()},
		Define:       b.Define.Copy().(*DefineNode),
	}
}

// BreakNode and ContinueNode are {{break}}/{{continue}} actions, valid
// only lexically inside a range body.
type BreakNode struct {
	NodeType
	Pos
}

func newBreak(pos Pos) *BreakNode { return &BreakNode{NodeType: NodeBreak, Pos: pos} }
func (b *BreakNode) Position() int { return int(b.Pos) }
func (b *BreakNode) String() string { return "{{break}}" }
func (b *BreakNode) Copy() Node { return newBreak(b.Pos) }

type ContinueNode struct {
	NodeType
	Pos
}

func newContinue(pos Pos) *ContinueNode { return &ContinueNode{NodeType: NodeContinue, Pos: pos} }
func (c *ContinueNode) Position() int { return int(c.Pos) }
func (c *ContinueNode) String() string { return "{{continue}}" }
func (c *ContinueNode) Copy() Node { return newContinue(c.Pos) }

// ChainNode applies a field chain to a preceding operand, as in $x.Field
// or (pipeline).Field.
type ChainNode struct {
	NodeType
	Pos
	Node  Node
	Field []string
}

func newChain(pos Pos, node Node, field []string) *ChainNode {
	return &ChainNode{NodeType: NodeChain, Pos: pos, Node: node, Field: field}
}

func (c *ChainNode) Position() int { return int(c.Pos) }

func (c *ChainNode) String() string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "%s", c.Node)
	for _, f := range c.Field {
		b.WriteString(".")
		b.WriteString(f)
	}
	return b.String()
}

func (c *ChainNode) Copy() Node {
	return newChain(c.Pos, c.Node.Copy(), append([]string{}, c.Field...))
}

// ActionNode is a bare pipeline action: {{pipeline}}.
type ActionNode struct {
	NodeType
	Pos
	Line int
	Pipe *PipeNode
}

func newAction(pos Pos, line int, pipe *PipeNode) *ActionNode {
	return &ActionNode{NodeType: NodeAction, Pos: pos, Line: line, Pipe: pipe}
}

func (a *ActionNode) Position() int { return int(a.Pos) }
func (a *ActionNode) String() string { return fmt.Sprintf("{{%s}}", a.Pipe) }
func (a *ActionNode) Copy() Node { return newAction(a.Pos, a.Line, a.Pipe.CopyPipe()) }
