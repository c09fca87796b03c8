package deckgen

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Renderer produces the actual presentation from a resolved Deck. The core
// engine never writes a slide file format itself; a renderer backed by a
// presentation library receives the content placeholder by placeholder.
type Renderer interface {
	// AddSlide creates the next slide from the rendering template's layout
	// at layoutIndex. Slides are added in deck order.
	AddSlide(layoutIndex int) (Slide, error)

	// Save writes the finished presentation to path.
	Save(path string) error
}

// Slide receives the resolved content for one slide.
type Slide interface {
	// SetText fills the placeholder at index with plain text.
	SetText(index int, text string) error

	// PlaceImage draws the image at path scaled to fit and centered within
	// the placeholder's bounds, replacing the placeholder.
	PlaceImage(index int, path string) error

	// PlaceTable draws the table within the placeholder's bounds, replacing
	// the placeholder. Gap cells are left undrawn.
	PlaceTable(index int, tbl *TableContent) error
}

// SlideItem is one placeholder's resolved content, ready to hand to a
// renderer.
type SlideItem interface {
	// Placeholder returns the template placeholder index the content
	// targets.
	Placeholder() int

	render(s Slide) error
}

// TextItem fills a placeholder with plain text.
type TextItem struct {
	Index int
	Text  string
}

func (t *TextItem) Placeholder() int { return t.Index }

func (t *TextItem) render(s Slide) error { return s.SetText(t.Index, t.Text) }

// ImageItem places an image by file path.
type ImageItem struct {
	Index int
	Path  string
}

func (i *ImageItem) Placeholder() int { return i.Index }

func (i *ImageItem) render(s Slide) error { return s.PlaceImage(i.Index, i.Path) }

// TableItem places an assembled table.
type TableItem struct {
	Index int
	Table *TableContent
}

func (t *TableItem) Placeholder() int { return t.Index }

func (t *TableItem) render(s Slide) error { return s.PlaceTable(t.Index, t.Table) }

// TextRenderer renders a deck as a plain-text outline, one line per
// placeholder. It is the dry-run collaborator used by the command line tool
// and by tests; Save writes to Output when set, otherwise to the path it is
// given.
type TextRenderer struct {
	Output io.Writer

	sb     strings.Builder
	slides int
}

// AddSlide starts a new slide section in the outline.
func (r *TextRenderer) AddSlide(layoutIndex int) (Slide, error) {
	r.slides++
	fmt.Fprintf(&r.sb, "slide %d (layout %d)\n", r.slides, layoutIndex)
	return &textSlide{r: r}, nil
}

// Save writes the outline.
func (r *TextRenderer) Save(path string) error {
	if r.Output != nil {
		_, err := io.WriteString(r.Output, r.sb.String())
		return err
	}
	return os.WriteFile(path, []byte(r.sb.String()), 0644)
}

type textSlide struct {
	r *TextRenderer
}

func (s *textSlide) SetText(index int, text string) error {
	fmt.Fprintf(&s.r.sb, "  [%d] text: %s\n", index, strings.ReplaceAll(text, "\n", " / "))
	return nil
}

func (s *textSlide) PlaceImage(index int, path string) error {
	fmt.Fprintf(&s.r.sb, "  [%d] image: %s\n", index, path)
	return nil
}

func (s *textSlide) PlaceTable(index int, tbl *TableContent) error {
	fmt.Fprintf(&s.r.sb, "  [%d] table %dx%d:\n", index, tbl.Rows(), tbl.Cols())
	for row := 1; row <= tbl.Rows(); row++ {
		cells := make([]string, 0, tbl.Cols())
		for col := 1; col <= tbl.Cols(); col++ {
			text, _ := tbl.Cell(row, col)
			cells = append(cells, text)
		}
		fmt.Fprintf(&s.r.sb, "      | %s |\n", strings.Join(cells, " | "))
	}
	return nil
}
