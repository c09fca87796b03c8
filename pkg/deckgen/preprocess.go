package deckgen

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Preprocessor builds the fully resolved content tree for one presentation
// definition document. It walks the XML depth-first exactly once: entering
// an element pushes a variable scope and materializes its attributes as
// child Entries, leaving an element pops the scope and resolves the
// element's directive. After the walk the tree contains only content; every
// directive has been substituted or removed.
type Preprocessor struct {
	file    string
	scopes  *ScopeStack
	pending map[*Entry][]string
}

// NewPreprocessor creates a Preprocessor for a definition document. The file
// name is only used in error positions.
func NewPreprocessor(file string) *Preprocessor {
	return &Preprocessor{file: file}
}

// Process parses and resolves the document, returning the root presentation
// Entry. The returned tree is frozen: nothing in this package mutates it
// afterwards.
func (p *Preprocessor) Process(r io.Reader) (*Entry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition: %w", err)
	}

	Debug("preprocessing definition %s (%d bytes)", p.file, len(data))

	p.scopes = &ScopeStack{}
	p.scopes.Push()
	p.pending = make(map[*Entry][]string)

	index := newLineIndex(data)
	dec := xml.NewDecoder(bytes.NewReader(data))

	root := &Entry{}
	current := root
	for {
		offset := dec.InputOffset()
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			line, _ := index.pos(offset)
			return nil, NewStructureError(fmt.Sprintf("invalid XML: %v", err), p.file, line)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			line, col := index.pos(offset)
			entry := &Entry{Tag: t.Name.Local, Line: line, Column: col}
			current.AddEntry(entry)
			p.scopes.Push()
			for _, attr := range t.Attr {
				if isNamespaceAttr(attr) {
					continue
				}
				if err := p.walkAttribute(entry, attr); err != nil {
					return nil, err
				}
			}
			current = entry

		case xml.EndElement:
			finished := current
			current = finished.Parent()
			if err := p.finishEntry(finished); err != nil {
				return nil, err
			}

		case xml.CharData:
			if text := strings.TrimSpace(string(t)); text != "" {
				current.AddValue(text)
			}
		}
	}

	p.scopes.Pop()
	return p.checkRoot(root)
}

// walkAttribute materializes one XML attribute as a child Entry and runs it
// through the same enter/leave cycle as an element, so attribute-form
// directives like append="name" resolve exactly like their element forms.
func (p *Preprocessor) walkAttribute(parent *Entry, attr xml.Attr) error {
	entry := &Entry{
		Tag:         attr.Name.Local,
		Line:        parent.Line,
		Column:      parent.Column,
		IsAttribute: true,
	}
	parent.AddEntry(entry)
	p.scopes.Push()
	if attr.Value != "" {
		entry.AddValue(attr.Value)
	}
	return p.finishEntry(entry)
}

// finishEntry runs the post-visit of one element: pop its scope, flush any
// deferred appends into its child list, then dispatch on its directive kind.
// Non-directive elements get their structural checks here instead.
func (p *Preprocessor) finishEntry(e *Entry) error {
	p.scopes.Pop()
	p.flushAppends(e)

	switch kind := directiveKindOf(e.Tag); kind {
	case directiveGet, directiveMod, directiveSet:
		return p.resolveVariable(kind, e)
	case directiveAppend, directivePrepend:
		return p.resolveInsert(kind, e)
	case directiveEval:
		return p.resolveEval(e)
	default:
		return p.checkStructure(e)
	}
}

// checkStructure enforces the element relationships of a definition
// document as each element completes.
func (p *Preprocessor) checkStructure(e *Entry) error {
	switch e.Tag {
	case "presentation":
		if !isSyntheticRoot(e.Parent()) {
			return NewStructureError("presentation must be the root element", p.file, e.Line)
		}
		if len(e.Children()) == 0 {
			return NewStructureError("presentation must have at least one slide element", p.file, e.Line)
		}
		for _, n := range e.Children() {
			child, ok := n.(*Entry)
			if !ok {
				return NewStructureError("presentation can only have slide elements as children", p.file, e.Line)
			}
			if child.Tag != "slide" {
				return NewStructureError(
					fmt.Sprintf("presentation can only have slide elements as children, found %q", child.Tag),
					p.file, child.Line)
			}
		}
	case "slide":
		if parent := e.Parent(); parent == nil || parent.Tag != "presentation" {
			return NewStructureError("slide element must have a presentation element as parent", p.file, e.Line)
		}
	case "placeholder":
		if parent := e.Parent(); parent == nil || parent.Tag != "slide" {
			return NewStructureError("placeholder element must have a slide element as parent", p.file, e.Line)
		}
		names := e.ChildTexts("name")
		if len(names) == 0 {
			return NewStructureError("placeholder must have a name attribute", p.file, e.Line)
		}
		if len(names) > 1 {
			return NewStructureError("placeholder may only have one name attribute", p.file, e.Line)
		}
		// The placeholder is known by its name from here on.
		e.Tag = names[0]
		e.RemoveChildren("name")
	}
	return nil
}

// checkRoot validates the document root after the walk: exactly one content
// element, the presentation, may remain.
func (p *Preprocessor) checkRoot(root *Entry) (*Entry, error) {
	entries := root.ChildEntries("")
	if len(entries) != 1 || len(entries) != len(root.Children()) {
		return nil, NewStructureError(
			fmt.Sprintf("document must resolve to exactly one presentation element, found %d nodes", len(root.Children())),
			p.file, 0)
	}
	pres := entries[0]
	if pres.Tag != "presentation" {
		return nil, NewStructureError(
			fmt.Sprintf("root element must be presentation, found %q", pres.Tag), p.file, pres.Line)
	}
	return pres, nil
}

func isSyntheticRoot(e *Entry) bool {
	return e != nil && e.Parent() == nil && e.Tag == ""
}

func isNamespaceAttr(attr xml.Attr) bool {
	return attr.Name.Space == "xmlns" || (attr.Name.Space == "" && attr.Name.Local == "xmlns")
}

// lineIndex maps byte offsets in the source document to 1-based line and
// column positions.
type lineIndex struct {
	starts []int64
}

func newLineIndex(data []byte) *lineIndex {
	starts := []int64{0}
	for i, b := range data {
		if b == '\n' {
			starts = append(starts, int64(i)+1)
		}
	}
	return &lineIndex{starts: starts}
}

func (ix *lineIndex) pos(offset int64) (line, col int) {
	i := sort.Search(len(ix.starts), func(i int) bool {
		return ix.starts[i] > offset
	}) - 1
	return i + 1, int(offset-ix.starts[i]) + 1
}
