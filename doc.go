/*
Package gotemplate implements a text/template-dialect engine driven by a
small explicit Value type instead of reflect-inspected interface{}.

Templates are stored in a collection of related templates, called a Set.
Templates that call each other with {{template}} or {{block}} must belong
to the same set. To create a new set, call Parse:

	set, err := gotemplate.Parse(`{{define "hello"}}Hello, World.{{end}}`)
	if err != nil {
		// do something with the parsing error...
	}

This adds every template defined with {{define "name"}}...{{end}} to the
set, plus the root template "source"; the example above adds "hello" and
an empty "source". Duplicate template names within one Parse call are an
error. To add more templates, call Parse again on the set already created:

	set, err = set.Parse(`{{define "bye"}}Good bye, World.{{end}}`)

Now the set holds "hello", "bye" and "source". A later Parse call replaces
any template of the same name already in the set, "source" included. Render executes the "source" root template
(the one parsed directly, outside any {{define}}); RenderNamed executes
one of the set's associated templates by name:

	out, err := set.RenderNamed("hello", value.Nil)
	if err != nil {
		// do something with the execution error...
	}

A Go value reaching the template — the context passed to Render, a field
read off a struct, a slice element — must already be a value.Value, or be
converted with value.FromAny. The engine never reaches for reflection on
its own: the reflect-based bridge in value.FromAny exists for a host
application's convenience, not because the evaluator requires it.

Unlike text/template, there is no implicit "." root outside of a defined
template body: a bare Parse call with no {{define}} still produces a
"source" template usable directly through Render.

Contextual HTML/JS escaping, present in html/template, is out of scope
here: the html and js builtin functions exist syntactically but fail at
evaluation with an Unimplemented error.
*/
package gotemplate
