package deckgen

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestEngineDefaults(t *testing.T) {
	e := New()
	if e.Config() == nil {
		t.Fatal("New() should carry a configuration")
	}
	if e.Config().CacheMaxSize != 100 {
		t.Errorf("CacheMaxSize = %d, want 100", e.Config().CacheMaxSize)
	}

	custom := DefaultConfig()
	custom.StrictMode = true
	e = NewWithConfig(custom)
	if !e.Config().StrictMode {
		t.Error("NewWithConfig should keep the given configuration")
	}

	e.SetConfig(DefaultConfig())
	if e.Config().StrictMode {
		t.Error("SetConfig should replace the configuration")
	}
	if err := e.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestEngineBuild(t *testing.T) {
	tm, err := ParseTemplateMap("template.xml", strings.NewReader(sampleTemplateMap))
	if err != nil {
		t.Fatal(err)
	}

	open := func(path, sheet string) (*SheetData, error) {
		return NewSheetData(path, [][]string{{"EMEA", "87"}}), nil
	}
	e := NewWithOptions(
		WithConfig(DefaultConfig()),
		WithSheetOpener(open),
		WithClock(func() time.Time { return time.Date(2026, time.June, 1, 8, 0, 0, 0, time.UTC) }),
	)

	deck, err := e.Build(strings.NewReader(`<presentation>
  <slide layout="Title Slide">
    <placeholder name="title">Memo</placeholder>
    <placeholder name="subtitle"><date/></placeholder>
  </slide>
</presentation>`), "memo.xml", tm)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	subtitle := deck.Slides[0].Items[1].(*TextItem)
	if subtitle.Text != "June 01, 2026" {
		t.Errorf("date = %q, want June 01, 2026", subtitle.Text)
	}
}

func TestEngineBuildFile(t *testing.T) {
	dir := t.TempDir()

	definition := filepath.Join(dir, "report.xml")
	if err := os.WriteFile(definition, []byte(`<presentation>
  <set var="quarter">Q2 Review</set>
  <slide layout="Title Slide">
    <placeholder name="title"><get var="quarter"/></placeholder>
    <placeholder name="subtitle"><date/></placeholder>
  </slide>
  <slide layout="Title and Content">
    <placeholder name="title">Scores</placeholder>
    <placeholder name="body" type="table">
      <row><cell>Region</cell><cell>Score</cell></row>
      <import><row_key regex="true">EMEA|APAC</row_key>scores.csv</import>
    </placeholder>
  </slide>
</presentation>`), 0o644); err != nil {
		t.Fatal(err)
	}

	mapPath := filepath.Join(dir, "template.xml")
	if err := os.WriteFile(mapPath, []byte(sampleTemplateMap), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(dir, "scores.csv"),
		[]byte("Region,Score\nEMEA,87\nAPAC,92\nAMER,78\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	e := NewWithOptions(
		WithConfig(DefaultConfig()),
		WithClock(func() time.Time { return time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC) }),
	)
	deck, err := e.BuildFile(definition, mapPath)
	if err != nil {
		t.Fatalf("BuildFile failed: %v", err)
	}
	if deck.Diagnostics().Len() != 0 {
		t.Errorf("unexpected diagnostics:\n%s", deck.Diagnostics())
	}

	var buf bytes.Buffer
	r := &TextRenderer{Output: &buf}
	if err := deck.Render(r); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if err := r.Save(""); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{
		"slide 1 (layout 0)",
		"Q2 Review",
		"March 14, 2026",
		"slide 2 (layout 1)",
		"table 3x2",
		"| Region | Score |",
		"| EMEA | 87 |",
		"| APAC | 92 |",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("outline missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "AMER") {
		t.Errorf("filtered row leaked into the outline:\n%s", out)
	}
}

func TestEngineBuildFileErrors(t *testing.T) {
	dir := t.TempDir()
	e := NewWithConfig(DefaultConfig())

	_, err := e.BuildFile(filepath.Join(dir, "absent.xml"), filepath.Join(dir, "template.xml"))
	if err == nil || !strings.Contains(err.Error(), "failed to open definition file") {
		t.Errorf("unexpected error: %v", err)
	}

	definition := filepath.Join(dir, "report.xml")
	if err := os.WriteFile(definition, []byte(`<presentation/>`), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = e.BuildFile(definition, filepath.Join(dir, "absent.xml"))
	if err == nil || !strings.Contains(err.Error(), "failed to open template map") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestEngineTemplateMapCaching(t *testing.T) {
	dir := t.TempDir()
	path := writeTemplateMap(t, dir, "template.xml", "Title Slide")

	e := NewWithConfig(DefaultConfig())
	first, err := e.LoadTemplateMap(path)
	if err != nil {
		t.Fatal(err)
	}
	second, err := e.LoadTemplateMap(path)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("cached loads should return the same map")
	}

	e.ClearCache()
	third, err := e.LoadTemplateMap(path)
	if err != nil {
		t.Fatal(err)
	}
	if first == third {
		t.Error("ClearCache should force a reload")
	}

	// Disabled cache always reloads
	cfg := DefaultConfig()
	cfg.CacheMaxSize = 0
	e = NewWithConfig(cfg)
	first, _ = e.LoadTemplateMap(path)
	second, _ = e.LoadTemplateMap(path)
	if first == second {
		t.Error("disabled cache should not share maps")
	}
}

func TestEngineSourceDirOverride(t *testing.T) {
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	if err := os.Mkdir(dataDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dataDir, "scores.csv"), []byte("EMEA,87\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	definition := filepath.Join(dir, "report.xml")
	if err := os.WriteFile(definition, []byte(`<presentation>
  <slide layout="Title Slide">
    <placeholder name="title"><import>scores.csv</import></placeholder>
  </slide>
</presentation>`), 0o644); err != nil {
		t.Fatal(err)
	}
	mapPath := writeTemplateMap(t, dir, "template.xml", "Title Slide")

	// The definition sits in dir, but imports resolve against dataDir
	e := NewWithOptions(WithConfig(DefaultConfig()), WithSourceDir(dataDir))
	deck, err := e.BuildFile(definition, mapPath)
	if err != nil {
		t.Fatalf("BuildFile failed: %v", err)
	}

	item := deck.Slides[0].Items[0].(*TextItem)
	if item.Text != "EMEA, 87" {
		t.Errorf("imported text = %q, want EMEA, 87", item.Text)
	}
}

func TestPackageLevelBuild(t *testing.T) {
	tm, err := ParseTemplateMap("template.xml", strings.NewReader(sampleTemplateMap))
	if err != nil {
		t.Fatal(err)
	}

	deck, err := Build(strings.NewReader(`<presentation>
  <slide layout="Title Slide">
    <placeholder name="title">Default engine</placeholder>
  </slide>
</presentation>`), "memo.xml", tm)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if got := deck.Slides[0].Items[0].(*TextItem).Text; got != "Default engine" {
		t.Errorf("title = %q", got)
	}
}

func TestSetCacheConfig(t *testing.T) {
	original := GetGlobalConfig()
	defer SetGlobalConfig(original)

	SetCacheConfig(7, 3*time.Minute)

	cfg := GetGlobalConfig()
	if cfg.CacheMaxSize != 7 || cfg.CacheTTL != 3*time.Minute {
		t.Errorf("global cache config = %d/%v, want 7/3m", cfg.CacheMaxSize, cfg.CacheTTL)
	}
}
