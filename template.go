package gotemplate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fiji-flo/gotemplate/errs"
	"github.com/fiji-flo/gotemplate/funcs"
	"github.com/fiji-flo/gotemplate/parse"
	"github.com/fiji-flo/gotemplate/value"
)

// defaultMaxDepth bounds template/block call recursion when a Set has not
// been given an explicit MaxDepth.
const defaultMaxDepth = 100000

// Set stores a collection of parsed templates that share a function table
// and execution delimiters.
//
// To create a new set call Parse (or other Parse* functions):
//
//	set, err := gotemplate.Parse(`{{define "hello"}}Hello, World.{{end}}`)
//	if err != nil {
//	        // do something with the parsing error...
//	}
//
// To add more templates to the set call Set.Parse (or any Set.Parse* methods):
//
//	set, err = set.Parse(`{{define "bye"}}Good bye, World.{{end}}`)
//
// To render the root template against a context value call Set.Render; to
// render one of its associated templates by name, call Set.RenderNamed.
type Set struct {
	tree parse.Set

	leftDelim, rightDelim string
	funcs                 map[string]value.Func

	allowDynamicName bool
	strictMapKeys    bool
	maxDepth         int
}

func (s *Set) init() {
	if s.tree == nil {
		s.tree = parse.Set{}
	}
	if s.funcs == nil {
		s.funcs = funcs.Builtins()
	}
	if s.maxDepth == 0 {
		s.maxDepth = defaultMaxDepth
	}
}

// Delims sets the action delimiters to the specified strings, to be used in
// subsequent calls to Parse. An empty delimiter stands for the corresponding
// default: "{{" or "}}". The return value is s, so calls can be chained.
func (s *Set) Delims(left, right string) *Set {
	s.leftDelim = left
	s.rightDelim = right
	return s
}

// Funcs merges fm into s's function table, overwriting any existing entry
// with the same name — including builtins. The return value is s, so
// calls can be chained.
func (s *Set) Funcs(fm map[string]value.Func) *Set {
	s.init()
	for name, fn := range fm {
		s.funcs[name] = fn
	}
	return s
}

// MaxDepth sets the maximum {{template}}/{{block}} call depth before
// rendering fails with a DepthExceeded error. The return
// value is s, so calls can be chained.
func (s *Set) MaxDepth(n int) *Set {
	s.init()
	s.maxDepth = n
	return s
}

// StrictMapKeys controls whether a field access (.Key) naming a missing
// Map/Object key is an error (true) or evaluates to Nil (false, the
// default). The index builtin is not affected: it always yields Nil for a
// missing key. The return value is s, so calls can be chained.
func (s *Set) StrictMapKeys(strict bool) *Set {
	s.strictMapKeys = strict
	return s
}

// AllowDynamicTemplateName enables the {{template (pipeline) .}} form,
// where the template name is itself computed by a pipeline rather than
// written as a string literal. Disabled by default.
func (s *Set) AllowDynamicTemplateName(allow bool) *Set {
	s.allowDynamicName = allow
	return s
}

// TemplateNames reports the names of every template currently in s,
// including the "source" root template once something has been parsed.
func (s *Set) TemplateNames() []string {
	s.init()
	names := make([]string, 0, len(s.tree))
	for name := range s.tree {
		names = append(names, name)
	}
	return names
}

// Clone returns a duplicate of s, including all associated templates. The
// namespace of associated templates is copied, so further calls to Parse
// on the clone add templates to the clone but not to the original.
func (s *Set) Clone() (*Set, error) {
	s.init()
	ns := &Set{
		leftDelim:        s.leftDelim,
		rightDelim:       s.rightDelim,
		allowDynamicName: s.allowDynamicName,
		strictMapKeys:    s.strictMapKeys,
		maxDepth:         s.maxDepth,
	}
	ns.init()
	for name, fn := range s.funcs {
		ns.funcs[name] = fn
	}
	for name, tree := range s.tree {
		ns.tree[name] = tree
	}
	return ns, nil
}

// Parsing ---------------------------------------------------------------

// parse parses text and adds the resulting templates to s. name is the key
// the root template is stored under (replacing any template of that name
// already in s) and the template name parse errors report.
func (s *Set) parse(text, name string) (*Set, error) {
	s.init()
	left, right := s.leftDelim, s.rightDelim
	if left == "" {
		left = "{{"
	}
	if right == "" {
		right = "}}"
	}
	tree, err := parse.Parse(name, text, left, right, s.allowDynamicName)
	if err != nil {
		return nil, err
	}
	for k, v := range tree {
		s.tree[k] = v
	}
	return s, nil
}

// Parse parses text, naming the resulting root template "source", and adds
// it (plus any define'd or block-desugared templates it contains) to s. If
// an error occurs, parsing stops and the returned Set is nil; otherwise it
// is s.
func (s *Set) Parse(text string) (*Set, error) {
	return s.parse(text, "source")
}

// ParseFiles parses the named files, one template set per file keyed by
// its base filename, and adds them to s. There must be at least one file.
func (s *Set) ParseFiles(filenames ...string) (*Set, error) {
	if len(filenames) == 0 {
		return nil, fmt.Errorf("gotemplate: no files named in call to ParseFiles")
	}
	for _, filename := range filenames {
		b, err := os.ReadFile(filename)
		if err != nil {
			return nil, errs.Wrap(err, "gotemplate: reading %s", filename)
		}
		name := filepath.Base(filename)
		if _, err := s.parse(string(b), name); err != nil {
			return nil, errs.Wrap(err, "gotemplate: parsing %s", filename)
		}
	}
	return s, nil
}

// ParseGlob parses the templates in the files matched by pattern (per
// filepath.Glob) and adds them to s. The pattern must match at least one
// file.
func (s *Set) ParseGlob(pattern string) (*Set, error) {
	filenames, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	if len(filenames) == 0 {
		return nil, fmt.Errorf("gotemplate: pattern matches no files: %#q", pattern)
	}
	return s.ParseFiles(filenames...)
}

// Rendering ---------------------------------------------------------------

// Render executes the set's "source" root template against ctx, a Value
// produced either directly or via value.FromAny, and returns the rendered
// text.
func (s *Set) Render(ctx value.Value) (string, error) {
	return s.RenderNamed("source", ctx)
}

// RenderNamed executes the named template against ctx and returns the
// rendered text.
func (s *Set) RenderNamed(name string, ctx value.Value) (string, error) {
	s.init()
	tree, ok := s.tree[name]
	if !ok {
		return "", fmt.Errorf("gotemplate: no such template %q", name)
	}
	st := &state{
		set:      s.tree,
		funcs:    s.funcs,
		vars:     []variable{{name: "$", val: ctx}},
		out:      &strings.Builder{},
		maxDepth: s.maxDepth,
		strict:   s.strictMapKeys,
		name:     name,
	}
	if _, err := st.walkList(ctx, tree.Root); err != nil {
		return "", errs.Wrap(err, "gotemplate: rendering %q", name)
	}
	return st.out.String(), nil
}

// Convenience parsing wrappers -----------------------------------------------

// Must is a helper that wraps a call to a function returning (*Set, error)
// and panics if the error is non-nil. It is intended for use in variable
// initializations such as
//
//	var set = gotemplate.Must(gotemplate.Parse("text"))
func Must(s *Set, err error) *Set {
	if err != nil {
		panic(err)
	}
	return s
}

// Parse creates a new Set with the template definitions from text. If an
// error occurs, parsing stops and the returned Set is nil.
func Parse(text string) (*Set, error) {
	return new(Set).Parse(text)
}

// Render is the one-shot helper: it parses text as a throwaway Set and
// renders it against ctx, which may be a value.Value or any host value
// value.FromAny can convert.
func Render(text string, ctx interface{}) (string, error) {
	set, err := Parse(text)
	if err != nil {
		return "", err
	}
	return set.Render(value.FromAny(ctx))
}

// ParseFiles creates a new Set with the template definitions from the
// named files. There must be at least one file.
func ParseFiles(filenames ...string) (*Set, error) {
	return new(Set).ParseFiles(filenames...)
}

// ParseGlob creates a new Set with the template definitions from the files
// identified by pattern.
func ParseGlob(pattern string) (*Set, error) {
	return new(Set).ParseGlob(pattern)
}
