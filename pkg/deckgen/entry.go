package deckgen

import "strings"

// Node is either an *Entry (an element or attribute) or a *Value (a text
// fragment). The content tree built from a presentation definition is an
// ordered tree of Nodes.
type Node interface {
	// Parent returns the Entry that owns this node, or nil for the root.
	Parent() *Entry

	node()
}

// Entry is an element node in the content tree. XML elements become Entries,
// and so do XML attributes: each attribute is materialized as a child Entry
// with IsAttribute set and a single Value child holding the attribute value.
// Attribute Entries precede all other children, in source order.
type Entry struct {
	// Tag is the element name (or the attribute name for attribute Entries).
	Tag string

	// Line and Column locate the start of the element in the source
	// document, 1-based. Attribute Entries inherit the element's position.
	Line   int
	Column int

	// IsAttribute marks Entries synthesized from XML attributes.
	IsAttribute bool

	parent   *Entry
	children []Node
}

// Value is a leaf node holding a text fragment: element text, tail text
// following a child element, or an attribute value.
type Value struct {
	// Content is the raw text.
	Content string

	owner *Entry
}

func (e *Entry) node() {}
func (v *Value) node() {}

// Parent returns the Entry containing e, or nil for the root.
func (e *Entry) Parent() *Entry { return e.parent }

// Parent returns the Entry owning v.
func (v *Value) Parent() *Entry { return v.owner }

// Children returns the ordered child list. Callers must treat the returned
// slice as read-only.
func (e *Entry) Children() []Node { return e.children }

// AddEntry appends child to e's child list and sets its parent reference.
func (e *Entry) AddEntry(child *Entry) {
	child.parent = e
	e.children = append(e.children, child)
}

// AddValue appends a new Value with the given content and returns it.
func (e *Entry) AddValue(content string) *Value {
	v := &Value{Content: content, owner: e}
	e.children = append(e.children, v)
	return v
}

// Values returns the contents of e's direct Value children, in order.
func (e *Entry) Values() []string {
	var vals []string
	for _, n := range e.children {
		if v, ok := n.(*Value); ok {
			vals = append(vals, v.Content)
		}
	}
	return vals
}

// Text returns e's direct Value children joined into a single string.
func (e *Entry) Text() string {
	return strings.Join(e.Values(), "")
}

// ChildEntries returns e's direct child Entries with the given tag; an empty
// tag matches every child Entry.
func (e *Entry) ChildEntries(tag string) []*Entry {
	var entries []*Entry
	for _, n := range e.children {
		if c, ok := n.(*Entry); ok && (tag == "" || c.Tag == tag) {
			entries = append(entries, c)
		}
	}
	return entries
}

// ChildTexts returns, for each direct child Entry with the given tag, that
// child's joined text. Directive handling uses this to read attribute values
// such as var="name".
func (e *Entry) ChildTexts(tag string) []string {
	var texts []string
	for _, c := range e.ChildEntries(tag) {
		texts = append(texts, c.Text())
	}
	return texts
}

// Delete removes e from its parent's child list. The parent reference is
// cleared; deleting the root is a no-op.
func (e *Entry) Delete() {
	if e.parent == nil {
		return
	}
	e.parent.removeNode(e)
	e.parent = nil
}

// RemoveChildren deletes every direct child Entry with the given tag.
func (e *Entry) RemoveChildren(tag string) {
	kept := e.children[:0]
	for _, n := range e.children {
		if c, ok := n.(*Entry); ok && c.Tag == tag {
			c.parent = nil
			continue
		}
		kept = append(kept, n)
	}
	e.children = kept
}

// ToValue replaces e, at its position in the parent's child list, with a new
// Value holding content. It returns the replacement, or nil when e has no
// parent.
func (e *Entry) ToValue(content string) *Value {
	if e.parent == nil {
		return nil
	}
	v := &Value{Content: content, owner: e.parent}
	for i, n := range e.parent.children {
		if n == Node(e) {
			e.parent.children[i] = v
			e.parent = nil
			return v
		}
	}
	return nil
}

// PrependValue inserts a new Value as the first child of e.
func (e *Entry) PrependValue(content string) *Value {
	v := &Value{Content: content, owner: e}
	e.children = append([]Node{v}, e.children...)
	return v
}

func (e *Entry) removeNode(n Node) {
	for i, c := range e.children {
		if c == n {
			e.children = append(e.children[:i], e.children[i+1:]...)
			return
		}
	}
}
