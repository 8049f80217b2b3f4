package gotemplate

import (
	"fmt"
	"strings"

	"github.com/fiji-flo/gotemplate/errs"
	"github.com/fiji-flo/gotemplate/internal/control"
	"github.com/fiji-flo/gotemplate/parse"
	"github.com/fiji-flo/gotemplate/value"
)

// state carries everything one Render call threads through the tree walk:
// the compiled tree set, the merged function table, the variable stack,
// the output buffer and the template-call recursion depth.
type state struct {
	set      parse.Set
	funcs    map[string]value.Func
	vars     []variable
	out      *strings.Builder
	depth    int
	maxDepth int
	strict   bool
	name     string
}

type variable struct {
	name string
	val  value.Value
}

func (s *state) mark() int { return len(s.vars) }

func (s *state) pop(mark int) { s.vars = s.vars[:mark] }

func (s *state) push(name string, val value.Value) {
	s.vars = append(s.vars, variable{name: name, val: val})
}

// setVar implements "=": it mutates the nearest existing binding. The
// parser already rejected "=" against an undeclared variable; if no
// binding is found here all the same, a fresh one is pushed.
func (s *state) setVar(name string, val value.Value) {
	for i := len(s.vars) - 1; i >= 0; i-- {
		if s.vars[i].name == name {
			s.vars[i].val = val
			return
		}
	}
	s.push(name, val)
}

func (s *state) varValue(name string) (value.Value, bool) {
	for i := len(s.vars) - 1; i >= 0; i-- {
		if s.vars[i].name == name {
			return s.vars[i].val, true
		}
	}
	return value.Nil, false
}

func (s *state) errorf(format string, args ...interface{}) error {
	return &errs.EvalError{Template: s.name, Msg: fmt.Sprintf(format, args...)}
}

// walk dispatches a single node, threading the current dot value and
// returning any pending break/continue signal.
func (s *state) walk(dot value.Value, node parse.Node) (control.Signal, error) {
	switch n := node.(type) {
	case *parse.ListNode:
		return s.walkList(dot, n)
	case *parse.TextNode:
		s.out.Write(n.Text)
		return control.None, nil
	case *parse.ActionNode:
		return s.walkAction(dot, n)
	case *parse.IfNode:
		return s.walkIf(dot, n)
	case *parse.RangeNode:
		return s.walkRange(dot, n)
	case *parse.WithNode:
		return s.walkWith(dot, n)
	case *parse.TemplateNode:
		return s.walkTemplate(dot, n)
	case *parse.BlockNode:
		return s.walkTemplate(dot, &n.TemplateNode)
	case *parse.BreakNode:
		return control.Break, nil
	case *parse.ContinueNode:
		return control.Continue, nil
	default:
		return control.None, s.errorf("unexpected node type %T", node)
	}
}

func (s *state) walkList(dot value.Value, list *parse.ListNode) (control.Signal, error) {
	if list == nil {
		return control.None, nil
	}
	for _, n := range list.Nodes {
		sig, err := s.walk(dot, n)
		if err != nil || sig != control.None {
			return sig, err
		}
	}
	return control.None, nil
}

// walkAction evaluates a bare pipeline action and, unless it consisted
// solely of a declaration/assignment, formats and appends its result.
func (s *state) walkAction(dot value.Value, n *parse.ActionNode) (control.Signal, error) {
	val, err := s.evalPipeline(dot, n.Pipe, true)
	if err != nil {
		return control.None, err
	}
	if len(n.Pipe.Decl) == 0 {
		s.out.WriteString(value.Format(val))
	}
	return control.None, nil
}

func (s *state) walkIf(dot value.Value, n *parse.IfNode) (control.Signal, error) {
	mark := s.mark()
	defer s.pop(mark)
	val, err := s.evalPipeline(dot, n.Pipe, true)
	if err != nil {
		return control.None, err
	}
	if value.Truthy(val) {
		return s.walkList(dot, n.List)
	}
	return s.walkList(dot, n.ElseList)
}

func (s *state) walkWith(dot value.Value, n *parse.WithNode) (control.Signal, error) {
	mark := s.mark()
	defer s.pop(mark)
	val, err := s.evalPipeline(dot, n.Pipe, true)
	if err != nil {
		return control.None, err
	}
	if value.Truthy(val) {
		return s.walkList(val, n.List)
	}
	return s.walkList(dot, n.ElseList)
}

// walkRange evaluates the ranged value; for each element it binds the
// declared loop variable(s) (one: element, two: index+element), executes
// the body in its own per-iteration scope, and honors break/continue. An
// empty or Nil range runs the else branch.
func (s *state) walkRange(dot value.Value, n *parse.RangeNode) (control.Signal, error) {
	mark := s.mark()
	defer s.pop(mark)
	val, err := s.evalPipeline(dot, n.Pipe, false)
	if err != nil {
		return control.None, err
	}

	empty := true
	var bodyErr error
	err = value.Range(val, func(key, elem value.Value) bool {
		empty = false
		iterMark := s.mark()
		switch len(n.Pipe.Decl) {
		case 1:
			s.push(n.Pipe.Decl[0].Ident[0], elem)
		case 2:
			s.push(n.Pipe.Decl[0].Ident[0], key)
			s.push(n.Pipe.Decl[1].Ident[0], elem)
		}
		var sig control.Signal
		sig, bodyErr = s.walkList(elem, n.List)
		s.pop(iterMark)
		if bodyErr != nil {
			return false
		}
		return sig != control.Break
	})
	if err != nil {
		return control.None, err
	}
	if bodyErr != nil {
		return control.None, bodyErr
	}
	if empty {
		return s.walkList(dot, n.ElseList)
	}
	return control.None, nil
}

// walkTemplate resolves a literal or dynamic template name, looks it up
// in the tree set, and recursively evaluates it with a fresh variable
// stack (only "$" visible) and an incremented call depth.
func (s *state) walkTemplate(dot value.Value, n *parse.TemplateNode) (control.Signal, error) {
	name := n.Name
	if n.NamePipe != nil {
		nv, err := s.evalPipeline(dot, n.NamePipe, true)
		if err != nil {
			return control.None, err
		}
		sv, ok := nv.String()
		if !ok {
			return control.None, s.errorf("template name pipeline did not produce a string")
		}
		name = sv
	}
	tree, ok := s.set[name]
	if !ok {
		return control.None, &errs.UndefinedError{Kind: "template", Name: name}
	}

	arg := value.Nil
	if n.Pipe != nil {
		v, err := s.evalPipeline(dot, n.Pipe, true)
		if err != nil {
			return control.None, err
		}
		arg = v
	}

	s.depth++
	if s.depth > s.maxDepth {
		s.depth--
		return control.None, &errs.DepthExceeded{Limit: s.maxDepth}
	}

	savedVars, savedName := s.vars, s.name
	s.vars = []variable{{name: "$", val: arg}}
	s.name = name
	sig, err := s.walkList(arg, tree.Root)
	s.vars, s.name = savedVars, savedName
	s.depth--
	return sig, err
}

// evalPipeline runs each command left to right, feeding each command's
// result into the next as its trailing argument, then applies any leading
// declaration/assignment to the final value when declare is true. Range
// calls with declare=false: the loop variables it names are bound
// per-iteration by walkRange, not to the pipeline's own result.
func (s *state) evalPipeline(dot value.Value, pipe *parse.PipeNode, declare bool) (value.Value, error) {
	if pipe == nil {
		return value.Nil, nil
	}
	var val value.Value
	for i, cmd := range pipe.Cmds {
		v, err := s.evalCommand(dot, cmd, val, i > 0)
		if err != nil {
			return value.Nil, err
		}
		val = v
	}
	if declare && len(pipe.Decl) == 1 {
		if pipe.IsAssign {
			s.setVar(pipe.Decl[0].Ident[0], val)
		} else {
			s.push(pipe.Decl[0].Ident[0], val)
		}
	}
	return val, nil
}

// evalCommand evaluates one pipeline stage. The first argument classifies
// the command's form: a plain identifier names a
// function to call; a field/chain may be a plain access or, given trailing
// arguments or an upstream value, a method-style call; anything else is a
// simple operand that must itself be a Function if an upstream value is
// being piped into it.
func (s *state) evalCommand(dot value.Value, cmd *parse.CommandNode, prev value.Value, hasPrev bool) (value.Value, error) {
	first := cmd.Args[0]
	extra := cmd.Args[1:]

	switch n := first.(type) {
	case *parse.IdentifierNode:
		return s.evalCall(dot, n.Ident, extra, prev, hasPrev)
	case *parse.FieldNode:
		return s.evalFieldChain(dot, dot, n.Ident, extra, prev, hasPrev)
	case *parse.ChainNode:
		base, err := s.evalArg(dot, n.Node)
		if err != nil {
			return value.Nil, err
		}
		return s.evalFieldChain(dot, base, n.Field, extra, prev, hasPrev)
	default:
		val, err := s.evalArg(dot, first)
		if err != nil {
			return value.Nil, err
		}
		return s.finishOperand(val, extra, prev, hasPrev)
	}
}

// finishOperand handles a command whose first argument is not itself a
// name to call: it is an error to give it further literal arguments, and
// it may only receive a piped-in value if it is itself a Function.
func (s *state) finishOperand(val value.Value, extra []parse.Node, prev value.Value, hasPrev bool) (value.Value, error) {
	if len(extra) > 0 {
		return value.Nil, s.errorf("can't give argument to non-function %s", value.Format(val))
	}
	if hasPrev {
		fn, ok := val.Function()
		if !ok {
			return value.Nil, s.errorf("can't pipe into non-function %s", value.Format(val))
		}
		return fn([]value.Value{prev})
	}
	return val, nil
}

// evalFieldChain walks a dotted field chain off recv. Every segment but
// the last auto-invokes a Function-valued Object field with the receiver
// as its sole argument (the "method on receiver" rule); a Function stored
// in a Map is returned as is. The last segment does
// the same UNLESS it has trailing command arguments or an upstream piped
// value, in which case it is resolved raw and invoked with those
// arguments instead (a method-style call).
func (s *state) evalFieldChain(dot, recv value.Value, names []string, extra []parse.Node, prev value.Value, hasPrev bool) (value.Value, error) {
	cur := recv
	for i, name := range names {
		last := i == len(names)-1
		if last && (len(extra) > 0 || hasPrev) {
			raw, err := value.RawField(cur, name, s.strict)
			if err != nil {
				return value.Nil, err
			}
			fn, ok := raw.Function()
			if !ok {
				return value.Nil, &errs.ArgumentError{Func: name, Msg: "not a function"}
			}
			args, err := s.evalArgs(dot, extra, prev, hasPrev)
			if err != nil {
				return value.Nil, err
			}
			return fn(args)
		}
		v, err := value.Field(cur, name, s.strict)
		if err != nil {
			return value.Nil, err
		}
		cur = v
	}
	return cur, nil
}

func (s *state) evalCall(dot value.Value, name string, extra []parse.Node, prev value.Value, hasPrev bool) (value.Value, error) {
	fn, ok := s.funcs[name]
	if !ok {
		return value.Nil, &errs.UndefinedError{Kind: "function", Name: name}
	}
	args, err := s.evalArgs(dot, extra, prev, hasPrev)
	if err != nil {
		return value.Nil, err
	}
	v, err := fn(args)
	if err != nil {
		if fe, ok := err.(*value.FuncErr); ok {
			return value.Nil, &errs.ArgumentError{Func: name, Msg: fe.Msg}
		}
		// Keep typed kinds reachable through errors.As.
		return value.Nil, errs.Wrap(err, "calling %s", name)
	}
	return v, nil
}

func (s *state) evalArgs(dot value.Value, nodes []parse.Node, prev value.Value, hasPrev bool) ([]value.Value, error) {
	args := make([]value.Value, 0, len(nodes)+1)
	for _, n := range nodes {
		v, err := s.evalArg(dot, n)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	if hasPrev {
		args = append(args, prev)
	}
	return args, nil
}

// evalArg evaluates a single operand node to a Value, with no call
// semantics of its own (those live in evalCommand/evalFieldChain).
func (s *state) evalArg(dot value.Value, node parse.Node) (value.Value, error) {
	switch n := node.(type) {
	case *parse.DotNode:
		return dot, nil
	case *parse.NilNode:
		return value.Nil, nil
	case *parse.BoolNode:
		return value.NewBool(n.True), nil
	case *parse.NumberNode:
		if n.IsComplex {
			return value.Nil, &errs.Unimplemented{Feature: "complex numbers"}
		}
		return n.AsValue(), nil
	case *parse.StringNode:
		return value.NewString(n.Text), nil
	case *parse.VariableNode:
		v, ok := s.varValue(n.Ident[0])
		if !ok {
			return value.Nil, &errs.UndefinedError{Kind: "variable", Name: n.Ident[0]}
		}
		return v, nil
	case *parse.IdentifierNode:
		fn, ok := s.funcs[n.Ident]
		if !ok {
			return value.Nil, &errs.UndefinedError{Kind: "function", Name: n.Ident}
		}
		return value.NewFunction(fn), nil
	case *parse.FieldNode:
		return s.evalFieldChain(dot, dot, n.Ident, nil, value.Nil, false)
	case *parse.ChainNode:
		base, err := s.evalArg(dot, n.Node)
		if err != nil {
			return value.Nil, err
		}
		return s.evalFieldChain(dot, base, n.Field, nil, value.Nil, false)
	case *parse.PipeNode:
		return s.evalPipeline(dot, n, true)
	default:
		return value.Nil, s.errorf("can't evaluate operand %s", node)
	}
}
