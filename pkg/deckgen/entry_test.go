package deckgen

import (
	"reflect"
	"testing"
)

func TestEntryChildren(t *testing.T) {
	root := &Entry{Tag: "slide"}
	title := &Entry{Tag: "title"}
	root.AddEntry(title)
	root.AddValue("hello")
	body := &Entry{Tag: "body"}
	root.AddEntry(body)
	root.AddValue("world")

	if len(root.Children()) != 4 {
		t.Fatalf("Children() length = %d, want 4", len(root.Children()))
	}
	if title.Parent() != root || body.Parent() != root {
		t.Error("child entries should point back at their parent")
	}

	if got := root.Values(); !reflect.DeepEqual(got, []string{"hello", "world"}) {
		t.Errorf("Values() = %v, want [hello world]", got)
	}
	if got := root.Text(); got != "helloworld" {
		t.Errorf("Text() = %q, want %q", got, "helloworld")
	}
}

func TestEntryChildEntries(t *testing.T) {
	root := &Entry{Tag: "slide"}
	root.AddEntry(&Entry{Tag: "row"})
	root.AddValue("text")
	root.AddEntry(&Entry{Tag: "import"})
	root.AddEntry(&Entry{Tag: "row"})

	if got := len(root.ChildEntries("row")); got != 2 {
		t.Errorf("ChildEntries(row) length = %d, want 2", got)
	}
	if got := len(root.ChildEntries("import")); got != 1 {
		t.Errorf("ChildEntries(import) length = %d, want 1", got)
	}
	// Empty tag matches every child Entry but no Values
	if got := len(root.ChildEntries("")); got != 3 {
		t.Errorf("ChildEntries(\"\") length = %d, want 3", got)
	}
	if got := root.ChildEntries("missing"); got != nil {
		t.Errorf("ChildEntries(missing) = %v, want nil", got)
	}
}

func TestEntryChildTexts(t *testing.T) {
	root := &Entry{Tag: "import"}
	first := &Entry{Tag: "row"}
	first.AddValue("1-3")
	root.AddEntry(first)
	second := &Entry{Tag: "row"}
	second.AddValue("7")
	root.AddEntry(second)

	if got := root.ChildTexts("row"); !reflect.DeepEqual(got, []string{"1-3", "7"}) {
		t.Errorf("ChildTexts(row) = %v, want [1-3 7]", got)
	}
	if got := root.ChildTexts("col"); got != nil {
		t.Errorf("ChildTexts(col) = %v, want nil", got)
	}
}

func TestEntryDelete(t *testing.T) {
	root := &Entry{Tag: "slide"}
	child := &Entry{Tag: "set"}
	root.AddEntry(child)
	root.AddValue("kept")

	child.Delete()

	if len(root.Children()) != 1 {
		t.Fatalf("Children() length after delete = %d, want 1", len(root.Children()))
	}
	if child.Parent() != nil {
		t.Error("deleted entry should have no parent")
	}

	// Deleting the root is a no-op
	root.Delete()
	if len(root.Children()) != 1 {
		t.Error("deleting the root should not change its children")
	}
}

func TestEntryRemoveChildren(t *testing.T) {
	ph := &Entry{Tag: "placeholder"}
	name := &Entry{Tag: "name", IsAttribute: true}
	name.AddValue("title")
	ph.AddEntry(name)
	ph.AddValue("content")
	ph.AddEntry(&Entry{Tag: "name"})

	ph.RemoveChildren("name")

	if len(ph.Children()) != 1 {
		t.Fatalf("Children() length = %d, want 1", len(ph.Children()))
	}
	if got := ph.Text(); got != "content" {
		t.Errorf("Text() after RemoveChildren = %q, want %q", got, "content")
	}
}

func TestEntryToValue(t *testing.T) {
	parent := &Entry{Tag: "title"}
	parent.AddValue("before")
	get := &Entry{Tag: "get"}
	parent.AddEntry(get)
	parent.AddValue("after")

	v := get.ToValue("resolved")
	if v == nil {
		t.Fatal("ToValue returned nil for a parented entry")
	}

	// The replacement keeps the directive's position
	if got := parent.Values(); !reflect.DeepEqual(got, []string{"before", "resolved", "after"}) {
		t.Errorf("Values() = %v, want [before resolved after]", got)
	}
	if len(parent.ChildEntries("")) != 0 {
		t.Error("replaced entry should no longer appear among children")
	}
	if get.Parent() != nil {
		t.Error("replaced entry should have no parent")
	}

	// Root entries cannot be replaced
	if (&Entry{Tag: "root"}).ToValue("x") != nil {
		t.Error("ToValue on a parentless entry should return nil")
	}
}

func TestEntryPrependValue(t *testing.T) {
	e := &Entry{Tag: "title"}
	e.AddValue("world")
	e.PrependValue("hello ")

	if got := e.Text(); got != "hello world" {
		t.Errorf("Text() = %q, want %q", got, "hello world")
	}
}
