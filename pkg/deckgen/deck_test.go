package deckgen

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func testBuilder(tm *TemplateMap, open SheetOpener) *deckBuilder {
	if open == nil {
		open = func(path, sheet string) (*SheetData, error) {
			return nil, fmt.Errorf("unexpected sheet access: %s", path)
		}
	}
	return &deckBuilder{
		file:    "deck.xml",
		tm:      tm,
		open:    open,
		now:     func() time.Time { return time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC) },
		dateFmt: "January 02, 2006",
		diags:   &Diagnostics{},
	}
}

func buildTestDeck(t *testing.T, doc string, open SheetOpener) (*Deck, error) {
	t.Helper()
	tm, err := ParseTemplateMap("template.xml", strings.NewReader(sampleTemplateMap))
	if err != nil {
		t.Fatalf("ParseTemplateMap failed: %v", err)
	}
	return testBuilder(tm, open).build(mustProcess(t, doc))
}

func mustBuildDeck(t *testing.T, doc string, open SheetOpener) *Deck {
	t.Helper()
	deck, err := buildTestDeck(t, doc, open)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	return deck
}

func TestBuildDeckBasics(t *testing.T) {
	deck := mustBuildDeck(t, `<presentation>
  <slide layout="Title Slide">
    <placeholder name="title">Quarterly Review</placeholder>
    <placeholder name="subtitle">Motor Division</placeholder>
  </slide>
  <slide layout="Title and Content">
    <placeholder name="title">Agenda</placeholder>
  </slide>
</presentation>`, nil)

	if len(deck.Slides) != 2 {
		t.Fatalf("slides = %d, want 2", len(deck.Slides))
	}

	first := deck.Slides[0]
	if first.Layout != "Title Slide" || first.LayoutIndex != 0 {
		t.Errorf("slide 1 layout = %q/%d, want Title Slide/0", first.Layout, first.LayoutIndex)
	}
	if len(first.Items) != 2 {
		t.Fatalf("slide 1 items = %d, want 2", len(first.Items))
	}
	title := first.Items[0].(*TextItem)
	if title.Index != 0 || title.Text != "Quarterly Review" {
		t.Errorf("title item = %d/%q", title.Index, title.Text)
	}
	subtitle := first.Items[1].(*TextItem)
	if subtitle.Index != 1 || subtitle.Text != "Motor Division" {
		t.Errorf("subtitle item = %d/%q", subtitle.Index, subtitle.Text)
	}

	if second := deck.Slides[1]; second.LayoutIndex != 1 {
		t.Errorf("slide 2 layout index = %d, want 1", second.LayoutIndex)
	}
}

func TestBuildDeckLabels(t *testing.T) {
	deck := mustBuildDeck(t, `<presentation>
  <slide layout="Title Slide" label="opening">
    <placeholder name="title">Hello</placeholder>
  </slide>
  <slide layout="Title Slide">
    <placeholder name="title">Unlabeled</placeholder>
  </slide>
</presentation>`, nil)

	if i, ok := deck.SlideByLabel("opening"); !ok || i != 0 {
		t.Errorf("SlideByLabel(opening) = (%d, %v), want (0, true)", i, ok)
	}
	if _, ok := deck.SlideByLabel("closing"); ok {
		t.Error("SlideByLabel should miss unknown labels")
	}
	if deck.Slides[0].Label != "opening" || deck.Slides[1].Label != "" {
		t.Errorf("labels = %q/%q", deck.Slides[0].Label, deck.Slides[1].Label)
	}

	_, err := buildTestDeck(t, `<presentation>
  <slide layout="Title Slide" label="summary"><placeholder name="title">a</placeholder></slide>
  <slide layout="Title Slide" label="summary"><placeholder name="title">b</placeholder></slide>
</presentation>`, nil)
	if !IsStructureError(err) || !strings.Contains(err.Error(), `duplicate slide label "summary", already used by slide 1`) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestBuildDeckLayoutErrors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantMsg string
	}{
		{
			name:    "missing layout",
			doc:     `<presentation><slide><placeholder name="title">a</placeholder></slide></presentation>`,
			wantMsg: "slide must have a layout attribute",
		},
		{
			name:    "unknown layout",
			doc:     `<presentation><slide layout="Missing"><placeholder name="title">a</placeholder></slide></presentation>`,
			wantMsg: `layout "Missing" not found in template map template.xml`,
		},
		{
			name:    "two layouts",
			doc:     `<presentation><slide layout="Title Slide"><layout>Other</layout><placeholder name="title">a</placeholder></slide></presentation>`,
			wantMsg: "slide may only have one layout attribute",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildTestDeck(t, tt.doc, nil)
			if !IsStructureError(err) {
				t.Fatalf("expected structure error, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %v, want it to contain %q", err, tt.wantMsg)
			}
		})
	}
}

func TestBuildDeckPlaceholderNotFound(t *testing.T) {
	_, err := buildTestDeck(t, `<presentation>
  <slide layout="Title Slide">
    <placeholder name="chart">x</placeholder>
  </slide>
</presentation>`, nil)
	if !IsStructureError(err) ||
		!strings.Contains(err.Error(), `placeholder "chart" not found in layout "Title Slide" of template map`) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestBuildDeckTypeResolution(t *testing.T) {
	t.Run("type attribute", func(t *testing.T) {
		deck := mustBuildDeck(t, `<presentation>
  <slide layout="Title and Content">
    <placeholder name="body" type="table">
      <row><cell>a</cell></row>
    </placeholder>
  </slide>
</presentation>`, nil)
		if _, ok := deck.Slides[0].Items[0].(*TableItem); !ok {
			t.Errorf("item = %T, want *TableItem", deck.Slides[0].Items[0])
		}
	})

	t.Run("nested type element", func(t *testing.T) {
		deck := mustBuildDeck(t, `<presentation>
  <slide layout="Title and Content">
    <placeholder name="body">
      <table><row><cell>a</cell></row></table>
    </placeholder>
  </slide>
</presentation>`, nil)
		item, ok := deck.Slides[0].Items[0].(*TableItem)
		if !ok {
			t.Fatalf("item = %T, want *TableItem", deck.Slides[0].Items[0])
		}
		if v, _ := item.Table.Cell(1, 1); v != "a" {
			t.Errorf("table cell = %q, want a", v)
		}
	})

	t.Run("default is text", func(t *testing.T) {
		deck := mustBuildDeck(t, `<presentation>
  <slide layout="Title Slide">
    <placeholder name="title">plain</placeholder>
  </slide>
</presentation>`, nil)
		item, ok := deck.Slides[0].Items[0].(*TextItem)
		if !ok || item.Text != "plain" {
			t.Errorf("item = %#v, want text item", deck.Slides[0].Items[0])
		}
	})

	t.Run("invalid type", func(t *testing.T) {
		_, err := buildTestDeck(t, `<presentation>
  <slide layout="Title and Content">
    <placeholder name="body" type="chart">x</placeholder>
  </slide>
</presentation>`, nil)
		if !IsStructureError(err) || !strings.Contains(err.Error(), `placeholder type "chart" is not valid`) {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("two nested types", func(t *testing.T) {
		_, err := buildTestDeck(t, `<presentation>
  <slide layout="Title and Content">
    <placeholder name="body"><table></table><image>x.png</image></placeholder>
  </slide>
</presentation>`, nil)
		if !IsStructureError(err) || !strings.Contains(err.Error(), "placeholder may only have one type") {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestBuildDeckDate(t *testing.T) {
	deck := mustBuildDeck(t, `<presentation>
  <slide layout="Title Slide">
    <placeholder name="title">Review</placeholder>
    <placeholder name="subtitle"><date/></placeholder>
  </slide>
</presentation>`, nil)

	subtitle := deck.Slides[0].Items[1].(*TextItem)
	if subtitle.Text != "March 14, 2026" {
		t.Errorf("date text = %q, want March 14, 2026", subtitle.Text)
	}
}

func TestBuildDeckImage(t *testing.T) {
	t.Run("existing image", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logo.png")
		if err := os.WriteFile(path, []byte("png"), 0o644); err != nil {
			t.Fatal(err)
		}
		deck := mustBuildDeck(t, fmt.Sprintf(`<presentation>
  <slide layout="Title and Content">
    <placeholder name="body" type="image">%s</placeholder>
  </slide>
</presentation>`, path), nil)

		item, ok := deck.Slides[0].Items[0].(*ImageItem)
		if !ok {
			t.Fatalf("item = %T, want *ImageItem", deck.Slides[0].Items[0])
		}
		if item.Path != path {
			t.Errorf("path = %q, want %q", item.Path, path)
		}
	})

	t.Run("missing image degrades to text", func(t *testing.T) {
		deck := mustBuildDeck(t, `<presentation>
  <slide layout="Title and Content">
    <placeholder name="body" type="image">missing.png</placeholder>
  </slide>
</presentation>`, nil)

		item, ok := deck.Slides[0].Items[0].(*TextItem)
		if !ok {
			t.Fatalf("item = %T, want *TextItem fallback", deck.Slides[0].Items[0])
		}
		if item.Text != "Image Not Found: missing.png" {
			t.Errorf("fallback text = %q", item.Text)
		}
		msgs := deck.Diagnostics().ForFile("deck.xml")
		if len(msgs) != 1 || !strings.Contains(msgs[0], `invalid image path "missing.png"`) {
			t.Errorf("diagnostics = %v", msgs)
		}
	})

	t.Run("invalid content", func(t *testing.T) {
		_, err := buildTestDeck(t, `<presentation>
  <slide layout="Title and Content">
    <placeholder name="body" type="image"><b>x</b></placeholder>
  </slide>
</presentation>`, nil)
		if !IsStructureError(err) || !strings.Contains(err.Error(), `invalid "b" entry in image placeholder`) {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestBuildDeckTextImport(t *testing.T) {
	var gotPath string
	open := func(path, sheet string) (*SheetData, error) {
		gotPath = path
		return NewSheetData(path, [][]string{{"EMEA", "87"}, {"APAC", "92"}}), nil
	}

	tm, err := ParseTemplateMap("template.xml", strings.NewReader(sampleTemplateMap))
	if err != nil {
		t.Fatal(err)
	}
	b := testBuilder(tm, open)
	b.sourceDir = filepath.Join("testdata", "q2")

	deck, err := b.build(mustProcess(t, `<presentation>
  <slide layout="Title and Content">
    <placeholder name="body"><import>scores.csv</import></placeholder>
  </slide>
</presentation>`))
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	// Text imports take the full extent and join it for display
	item := deck.Slides[0].Items[0].(*TextItem)
	if want := "EMEA, 87\nAPAC, 92"; item.Text != want {
		t.Errorf("text = %q, want %q", item.Text, want)
	}

	// Relative sources resolve against the definition's directory
	if want := filepath.Join("testdata", "q2", "scores.csv"); gotPath != want {
		t.Errorf("opened %q, want %q", gotPath, want)
	}
}

func TestBuildDeckTableImport(t *testing.T) {
	open := func(path, sheet string) (*SheetData, error) {
		return NewSheetData(path, [][]string{{"EMEA", "87"}, {"APAC", "92"}}), nil
	}

	deck := mustBuildDeck(t, `<presentation>
  <slide layout="Title and Content">
    <placeholder name="body" type="table">
      <row><cell>Region</cell><cell>Score</cell></row>
      <import><row_key>EMEA</row_key>scores.csv</import>
    </placeholder>
  </slide>
</presentation>`, open)

	item := deck.Slides[0].Items[0].(*TableItem)
	want := [][]string{
		{"Region", "Score"},
		{"EMEA", "87"},
	}
	if got := tableStrings(item.Table); !reflect.DeepEqual(got, want) {
		t.Errorf("table = %v, want %v", got, want)
	}
}

func TestBuildDeckSlideContent(t *testing.T) {
	// A directive that leaves loose content directly in a slide is caught
	_, err := buildTestDeck(t, `<presentation>
  <slide layout="Title Slide">
    <set var="x">v</set>
    <get var="x"/>
  </slide>
</presentation>`, nil)
	if !IsStructureError(err) || !strings.Contains(err.Error(), "slide may only contain placeholder elements") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestBuildDeckRepeatable(t *testing.T) {
	tm, err := ParseTemplateMap("template.xml", strings.NewReader(sampleTemplateMap))
	if err != nil {
		t.Fatal(err)
	}
	pres := mustProcess(t, `<presentation>
  <slide layout="Title Slide">
    <placeholder name="title">Same</placeholder>
  </slide>
</presentation>`)

	// Building twice from one frozen tree gives the same deck
	first, err := testBuilder(tm, nil).build(pres)
	if err != nil {
		t.Fatal(err)
	}
	second, err := testBuilder(tm, nil).build(pres)
	if err != nil {
		t.Fatal(err)
	}
	a := first.Slides[0].Items[0].(*TextItem)
	b := second.Slides[0].Items[0].(*TextItem)
	if a.Text != b.Text || a.Index != b.Index {
		t.Errorf("builds differ: %+v vs %+v", a, b)
	}
}
