package deckgen

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// placeholderKinds are the content kinds a placeholder can carry.
var placeholderKinds = map[string]bool{
	"text":  true,
	"image": true,
	"table": true,
}

// Deck is the fully resolved build plan for one presentation: every slide
// with its layout index and the content of each named placeholder. A Deck is
// immutable once built, so it can be rendered any number of times.
type Deck struct {
	Slides []*SlidePlan

	labels map[string]int
	diags  *Diagnostics
}

// SlidePlan is the plan for one slide.
type SlidePlan struct {
	// Layout is the layout name from the definition; LayoutIndex is its
	// position in the rendering template.
	Layout      string
	LayoutIndex int

	// Label is the slide's reference label, empty when unlabeled.
	Label string

	// Items holds the resolved placeholder contents in definition order.
	Items []SlideItem
}

// SlideByLabel returns the index of the slide carrying a label.
func (d *Deck) SlideByLabel(label string) (int, bool) {
	i, ok := d.labels[label]
	return i, ok
}

// Diagnostics returns the non-fatal findings collected while building the
// deck.
func (d *Deck) Diagnostics() *Diagnostics { return d.diags }

// Render plays the deck against a renderer, slide by slide.
func (d *Deck) Render(r Renderer) error {
	for i, plan := range d.Slides {
		slide, err := r.AddSlide(plan.LayoutIndex)
		if err != nil {
			return fmt.Errorf("failed to add slide %d: %w", i+1, err)
		}
		for _, item := range plan.Items {
			if err := item.render(slide); err != nil {
				return fmt.Errorf("failed to render slide %d placeholder %d: %w", i+1, item.Placeholder(), err)
			}
		}
	}
	return nil
}

// deckBuilder turns a resolved presentation tree into a Deck.
type deckBuilder struct {
	file      string
	tm        *TemplateMap
	open      SheetOpener
	sourceDir string
	now       func() time.Time
	dateFmt   string
	strict    bool
	diags     *Diagnostics
}

// build runs the two passes over the presentation element: the first
// creates every slide plan and collects reference labels, the second
// resolves placeholder contents. Labels must all exist before contents are
// built so slides can reference each other regardless of order.
func (b *deckBuilder) build(pres *Entry) (*Deck, error) {
	deck := &Deck{labels: make(map[string]int), diags: b.diags}

	for i, slide := range pres.ChildEntries("slide") {
		plan, err := b.initSlide(slide, i, deck.labels)
		if err != nil {
			return nil, err
		}
		deck.Slides = append(deck.Slides, plan)
	}

	for i, slide := range pres.ChildEntries("slide") {
		if err := b.fillSlide(deck.Slides[i], slide); err != nil {
			return nil, err
		}
	}

	Debug("built deck with %d slides from %s", len(deck.Slides), b.file)
	return deck, nil
}

// initSlide resolves a slide's layout and label.
func (b *deckBuilder) initSlide(slide *Entry, index int, labels map[string]int) (*SlidePlan, error) {
	layouts := slide.ChildTexts("layout")
	if len(layouts) == 0 {
		return nil, NewStructureError("slide must have a layout attribute", b.file, slide.Line)
	}
	if len(layouts) > 1 {
		return nil, NewStructureError("slide may only have one layout attribute", b.file, slide.Line)
	}
	layoutIndex, ok := b.tm.Layout(layouts[0])
	if !ok {
		return nil, NewStructureError(
			fmt.Sprintf("layout %q not found in template map %s", layouts[0], b.tm.File()), b.file, slide.Line)
	}

	plan := &SlidePlan{Layout: layouts[0], LayoutIndex: layoutIndex}

	switch labelVals := slide.ChildTexts("label"); len(labelVals) {
	case 0:
	case 1:
		if prev, dup := labels[labelVals[0]]; dup {
			return nil, NewStructureError(
				fmt.Sprintf("duplicate slide label %q, already used by slide %d", labelVals[0], prev+1),
				b.file, slide.Line)
		}
		labels[labelVals[0]] = index
		plan.Label = labelVals[0]
	default:
		return nil, NewStructureError("slide may only have one label attribute", b.file, slide.Line)
	}
	return plan, nil
}

// fillSlide resolves every placeholder of one slide into plan items.
func (b *deckBuilder) fillSlide(plan *SlidePlan, slide *Entry) error {
	for _, n := range slide.Children() {
		ph, ok := n.(*Entry)
		if !ok {
			return NewStructureError("slide may only contain placeholder elements", b.file, slide.Line)
		}
		if ph.IsAttribute && (ph.Tag == "layout" || ph.Tag == "label") {
			continue
		}

		index, ok := b.tm.Placeholder(plan.Layout, ph.Tag)
		if !ok {
			return NewStructureError(
				fmt.Sprintf("placeholder %q not found in layout %q of template map", ph.Tag, plan.Layout),
				b.file, ph.Line)
		}

		kind, content, err := b.placeholderKind(ph)
		if err != nil {
			return err
		}

		item, err := b.buildItem(kind, index, content)
		if err != nil {
			return err
		}
		plan.Items = append(plan.Items, item)
	}
	return nil
}

// placeholderKind determines a placeholder's content kind: a type attribute
// wins, else a single nested type element both names the kind and holds the
// content, else the placeholder is plain text.
func (b *deckBuilder) placeholderKind(ph *Entry) (string, *Entry, error) {
	typeVals := ph.ChildTexts("type")
	if len(typeVals) > 1 {
		return "", nil, NewStructureError("placeholder may only have one type attribute", b.file, ph.Line)
	}
	if len(typeVals) == 1 {
		kind := typeVals[0]
		if !placeholderKinds[kind] {
			return "", nil, NewStructureError(
				fmt.Sprintf("placeholder type %q is not valid", kind), b.file, ph.Line)
		}
		return kind, ph, nil
	}

	kind := ""
	content := ph
	for _, sub := range ph.ChildEntries("") {
		if !placeholderKinds[sub.Tag] {
			continue
		}
		if kind != "" {
			return "", nil, NewStructureError("placeholder may only have one type", b.file, ph.Line)
		}
		kind = sub.Tag
		content = sub
	}
	if kind == "" {
		kind = "text"
	}
	return kind, content, nil
}

// buildItem resolves one placeholder's content into a renderable item.
func (b *deckBuilder) buildItem(kind string, index int, content *Entry) (SlideItem, error) {
	switch kind {
	case "text":
		text, err := b.renderText(content)
		if err != nil {
			return nil, err
		}
		return &TextItem{Index: index, Text: text}, nil
	case "image":
		return b.buildImage(index, content)
	case "table":
		tbl, err := assembleTable(content, b.file, b.resolveImport)
		if err != nil {
			return nil, err
		}
		return &TableItem{Index: index, Table: tbl}, nil
	default:
		return nil, fmt.Errorf("unknown placeholder kind %q", kind)
	}
}

// renderText flattens a text placeholder: literal values in order, date
// elements as the formatted current date, import blocks as their joined
// grid.
func (b *deckBuilder) renderText(content *Entry) (string, error) {
	text := ""
	for _, n := range content.Children() {
		if v, ok := n.(*Value); ok {
			text += v.Content
			continue
		}
		sub := n.(*Entry)
		if sub.IsAttribute && sub.Tag == "type" {
			continue
		}
		switch sub.Tag {
		case "date":
			text += b.now().Format(b.dateFmt)
		case "import":
			spec, err := parseImportSpec(sub, b.file)
			if err != nil {
				return "", err
			}
			grid, err := b.resolveTextImport(spec)
			if err != nil {
				return "", err
			}
			text += grid.JoinedString()
		default:
			return "", NewStructureError(
				fmt.Sprintf("invalid %q entry in text placeholder", sub.Tag), b.file, sub.Line)
		}
	}
	return text, nil
}

// buildImage reads an image placeholder's path and verifies it points at an
// existing file. A missing image keeps the run alive: the placeholder text
// names the missing path and a diagnostic is recorded.
func (b *deckBuilder) buildImage(index int, content *Entry) (SlideItem, error) {
	path := ""
	for _, n := range content.Children() {
		if v, ok := n.(*Value); ok {
			path += v.Content
			continue
		}
		sub := n.(*Entry)
		if sub.IsAttribute && sub.Tag == "type" {
			continue
		}
		return nil, NewStructureError(
			fmt.Sprintf("invalid %q entry in image placeholder", sub.Tag), b.file, sub.Line)
	}

	if _, err := os.Stat(path); err != nil {
		b.diags.Add(b.file, fmt.Sprintf("invalid image path %q", path))
		return &TextItem{Index: index, Text: "Image Not Found: " + path}, nil
	}
	return &ImageItem{Index: index, Path: path}, nil
}

// resolveImport loads the sheet behind an import block and runs it with
// table semantics: the no-filter default is a single cell.
func (b *deckBuilder) resolveImport(spec *importSpec) (*ImportGrid, error) {
	return b.runSheetImport(spec, false)
}

// resolveTextImport runs an import with text semantics: the no-override
// default is the full filtered extent.
func (b *deckBuilder) resolveTextImport(spec *importSpec) (*ImportGrid, error) {
	return b.runSheetImport(spec, true)
}

func (b *deckBuilder) runSheetImport(spec *importSpec, naturalDefault bool) (*ImportGrid, error) {
	path := spec.path
	if !filepath.IsAbs(path) && b.sourceDir != "" {
		path = filepath.Join(b.sourceDir, path)
	}
	sheet, err := b.open(path, spec.sheet)
	if err != nil {
		return nil, WithContext(fmt.Sprintf("import at %s:%d", spec.file, spec.line), err)
	}
	return runImport(spec, sheet, b.diags, b.strict, naturalDefault)
}
