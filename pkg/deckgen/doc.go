// Package deckgen builds slide decks from XML definitions.
//
// Go-deckgen turns a declarative definition file into a deck plan: a sequence
// of slides whose placeholders are filled with text, images and tables. Data
// can be pulled from CSV and XLSX sources at build time, so recurring decks
// (status reports, review meetings, score summaries) regenerate from fresh
// numbers without touching the definition.
//
// # Quick Start
//
// The simplest way to use go-deckgen is through the package-level functions:
//
//	deck, err := deckgen.BuildFile("report.xml", "template.xml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	renderer := &deckgen.TextRenderer{Output: os.Stdout}
//	if err := deck.Render(renderer); err != nil {
//	    log.Fatal(err)
//	}
//	if err := renderer.Save(""); err != nil {
//	    log.Fatal(err)
//	}
//
//	if deck.Diagnostics().Len() > 0 {
//	    fmt.Fprint(os.Stderr, deck.Diagnostics())
//	}
//
// # Definition Syntax
//
// A definition is an XML document with a single presentation element holding
// slides. Each slide names a layout from the template map; its child elements
// name placeholders of that layout:
//
//	<presentation>
//	  <slide layout="Title and Content">
//	    <title>Quarterly Report</title>
//	    <body>Revenue grew in every region.</body>
//	  </slide>
//	</presentation>
//
// Placeholders hold text by default. A type attribute (or nested type
// element) switches them to image or table content:
//
//	<picture type="image">figures/growth.png</picture>
//
//	<summary type="table">
//	  <row><cell>Region</cell><cell>Revenue</cell></row>
//	  <import row_key="EMEA">figures.csv</import>
//	</summary>
//
// Directives:
//
//	<set var="region">EMEA</set>   - Define a variable in the enclosing scope
//	<get var="region"/>            - Substitute the variable's value in place
//	<mod var="region">APAC</mod>   - Overwrite the variable where it was defined
//	<append>region</append>        - Add the value after the parent's content
//	<prepend>region</prepend>      - Add the value before the parent's content
//	<eval var="next">row + 1</eval> - Evaluate an expression over visible variables
//
// Variables are scoped to the element that sets them: a set inside one slide
// is invisible to its siblings, while a set at the presentation level is
// visible everywhere. Append and prepend also come in attribute form, so
// <cell prepend="currency">480</cell> decorates the cell's own text.
//
// # Imports
//
// Import elements copy cells from a CSV or XLSX source. Rows and columns can
// be selected by position or by content:
//
//	<import>scores.csv</import>                          - Single cell
//	<import row="2,4-6" col="a:c">scores.csv</import>    - Explicit ranges
//	<import row_key="Totals" col="2:12:2">scores.xlsx</import>
//	<import sheet="Raw"><row_key regex="true" scan="a:3">^Q[1-4]</row_key>scores.xlsx</import>
//
// Range specs count from 1 and accept spreadsheet-style column letters, so
// "a:c" and "1-3" select the same columns. A three-part spec adds a step.
// Key filters (row_key, col_key) keep the rows or columns whose cells match
// a pattern, with optional regular expression matching and a scan range
// restricting which cells are examined.
//
// # Architecture
//
// The build pipeline has three stages:
//
//   - Preprocessing: the definition is parsed into a content tree while
//     directives resolve against a scope stack (Preprocessor, Entry, ScopeStack)
//   - Deck assembly: slides and placeholders are checked against the template
//     map and turned into slide plans (Deck, SlidePlan, TemplateMap)
//   - Rendering: a Renderer walks the plans and produces output; the package
//     ships a text renderer for previews and debugging
//
// The main package also provides configuration, template map caching, leveled
// logging and typed errors.
//
// # Advanced Usage
//
// Engine options:
//
//	engine := deckgen.NewWithOptions(
//	    deckgen.WithClock(func() time.Time { return fixed }),
//	    deckgen.WithSourceDir("data"),
//	)
//	deck, err := engine.BuildFile("report.xml", "template.xml")
//
// Configuration:
//
//	config := &deckgen.Config{
//	    CacheMaxSize: 100,
//	    DateFormat:   "2006-01-02",
//	    StrictMode:   true,
//	}
//	engine := deckgen.NewWithConfig(deckgen.NewConfigWithDefaults(config))
//
// Configuration can also come from DECKGEN_* environment variables; see
// ConfigFromEnvironment.
//
// # Error Handling
//
// The package defines error types for specific failure cases:
//
//   - StructureError: definition elements in the wrong place
//   - VariableError: directive and scoping failures
//   - RangeSpecError: malformed row and column selections
//   - KeyFilterError: key filters that match nothing or fail to compile
//   - BoundsError: imports addressing cells outside the source
//   - TemplateMapError: unusable template map files
//   - EvaluationError: eval expressions that fail to compile or run
//
// Check error types using the Is helpers or errors.As():
//
//	if deckgen.IsBoundsError(err) {
//	    // the definition addresses cells the source does not have
//	}
//
// Recoverable findings (an import whose natural size differs from the
// requested one, an image file that does not exist) do not fail the build.
// They are collected as Diagnostics on the deck, grouped by source file, and
// StrictMode promotes them to hard errors.
//
// # Thread Safety
//
// An Engine and its template map cache are safe for concurrent use; decks
// can be built from multiple goroutines. A Deck itself is immutable after
// building, but a Renderer instance is not, so give each concurrent Render
// its own renderer.
//
// # Limitations
//
// Rendering backends are pluggable through the Renderer interface. The
// package ships a text renderer; producing an actual presentation file means
// implementing Renderer against a presentation library. Sheet sources are
// read whole, so very large workbooks cost memory proportional to their size.
//
// # See Also
//
// For more examples and detailed documentation:
//   - examples/simple: minimal definition, template map and CSV import
//   - examples/advanced: worksheet imports, directives and key filters
package deckgen
