// Package errs defines the typed error kinds the lexer, parser and
// evaluator produce, wrapped with golang.org/x/xerrors so callers can
// errors.As/Is down to a concrete kind while still getting a single
// "template: name:line: msg" formatted message.
package errs

import (
	"fmt"

	"golang.org/x/xerrors"
)

// LexError reports a lexer failure at a byte offset.
type LexError struct {
	Offset int
	Msg    string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("template: lex error at offset %d: %s", e.Offset, e.Msg)
}

// ParseError reports a parser failure with line and offending token.
type ParseError struct {
	Template string
	Line     int
	Token    string
	Msg      string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("template: %s:%d: %s", e.Template, e.Line, e.Msg)
}

// EvalError reports a runtime evaluation failure.
type EvalError struct {
	Template string
	Msg      string
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("template: %s: %s", e.Template, e.Msg)
}

// TypeError reports a value of the wrong kind reaching an operation.
type TypeError struct {
	Msg string
}

func (e *TypeError) Error() string { return "template: " + e.Msg }

// UndefinedError reports an unknown function, variable, or template name.
type UndefinedError struct {
	Kind string // "function", "variable", "template"
	Name string
}

func (e *UndefinedError) Error() string {
	return fmt.Sprintf("template: undefined %s %q", e.Kind, e.Name)
}

// ArgumentError reports a builtin function called with the wrong argument
// shape (arity or type).
type ArgumentError struct {
	Func string
	Msg  string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("template: wrong arguments for %s: %s", e.Func, e.Msg)
}

// PrintfError reports a printf verb/argument mismatch that could not even
// be rendered as a "%!verb(type=value)" marker.
type PrintfError struct {
	Msg string
}

func (e *PrintfError) Error() string { return "template: printf: " + e.Msg }

// DepthExceeded reports a template/block call chain exceeding the
// configured recursion limit.
type DepthExceeded struct {
	Limit int
}

func (e *DepthExceeded) Error() string {
	return fmt.Sprintf("template: exceeded maximum template call depth (%d)", e.Limit)
}

// Unimplemented reports use of a syntactically valid but semantically
// unsupported feature: the html/js builtins and complex numbers.
type Unimplemented struct {
	Feature string
}

func (e *Unimplemented) Error() string {
	return fmt.Sprintf("template: %s is not implemented", e.Feature)
}

// Wrap annotates err with a message and a stack frame via xerrors; the
// chain keeps the concrete kinds above reachable through errors.As.
func Wrap(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return xerrors.Errorf(format+": %w", append(args, err)...)
}
