package deckgen

import "fmt"

// directiveKind identifies the directive elements resolved during the walk.
// Dispatch is a closed switch: a tag either is one of these or is ordinary
// content.
type directiveKind int

const (
	directiveNone directiveKind = iota
	directiveGet
	directiveMod
	directiveSet
	directiveAppend
	directivePrepend
	directiveEval
)

// directiveKindOf maps an element or attribute tag to its directive kind.
func directiveKindOf(tag string) directiveKind {
	switch tag {
	case "get":
		return directiveGet
	case "mod":
		return directiveMod
	case "set":
		return directiveSet
	case "append":
		return directiveAppend
	case "prepend":
		return directivePrepend
	case "eval":
		return directiveEval
	default:
		return directiveNone
	}
}

// resolveVariable handles a get, mod or set directive. The variable name
// comes from the directive's var attribute; the value, for mod and set, is
// the directive's joined text. The directive's own scope has already been
// popped, so "innermost" here is the scope of the enclosing element:
//
//	set  defines the name there, shadowing outer definitions
//	mod  overwrites the nearest enclosing definition in place
//	get  reads the nearest enclosing definition and substitutes its value
//
// set and mod remove the directive from the tree; get replaces it with the
// resolved value at the same position.
func (p *Preprocessor) resolveVariable(kind directiveKind, e *Entry) error {
	tag := e.Tag
	names := e.ChildTexts("var")
	if len(names) == 0 {
		return NewVariableError(tag, "", "missing var name", p.file, e.Line)
	}
	if len(names) > 1 {
		return NewVariableError(tag, "",
			fmt.Sprintf("var name given %d times, want exactly one", len(names)), p.file, e.Line)
	}
	name := names[0]
	if name == "" {
		return NewVariableError(tag, "", "var name cannot be empty", p.file, e.Line)
	}

	switch kind {
	case directiveGet:
		val, ok := p.scopes.Lookup(name)
		if !ok {
			return NewVariableError(tag, name, "undefined variable", p.file, e.Line)
		}
		e.ToValue(val)
	case directiveMod:
		if !p.scopes.Modify(name, e.Text()) {
			return NewVariableError(tag, name, "undefined variable", p.file, e.Line)
		}
		e.Delete()
	case directiveSet:
		p.scopes.Set(name, e.Text())
		e.Delete()
	}
	return nil
}

// resolveInsert handles an append or prepend directive, in either element
// form (<append>name</append>) or attribute form (<row append="name">). The
// directive's joined text names the variable, which must be defined when the
// directive completes. A prepend takes effect immediately at the front of
// the parent's children; an append is deferred until the parent finishes so
// the value always lands after every other child.
func (p *Preprocessor) resolveInsert(kind directiveKind, e *Entry) error {
	name := e.Text()
	val, ok := p.scopes.Lookup(name)
	if !ok {
		return NewVariableError(e.Tag, name, "undefined variable", p.file, e.Line)
	}

	parent := e.Parent()
	e.Delete()
	if kind == directivePrepend {
		parent.PrependValue(val)
	} else {
		p.pending[parent] = append(p.pending[parent], val)
	}
	return nil
}

// flushAppends applies the deferred append values for a finished element,
// before its own directive (if any) reads the child values.
func (p *Preprocessor) flushAppends(e *Entry) {
	vals, ok := p.pending[e]
	if !ok {
		return
	}
	delete(p.pending, e)
	for _, v := range vals {
		e.AddValue(v)
	}
}
