// Command deckgen builds a slide deck from an xml definition file.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/benjaminschreck/go-deckgen/pkg/deckgen"
)

const version = "0.1.0"

func main() {
	var (
		output  = flag.String("o", "", "output file (default: definition name with .txt, \"-\" for stdout)")
		tmplDir = flag.String("t", "", "template directory, containing the template map as <dirname>.xml or template.xml")
		mapFile = flag.String("x", "", "template map xml file (overrides location from -t)")
		strict  = flag.Bool("strict", false, "treat import size mismatches as errors")
		verbose = flag.Bool("v", false, "verbose output")
		showVer = flag.Bool("version", false, "show version information")
	)
	flag.Usage = usage
	flag.Parse()

	if *showVer {
		fmt.Println("go-deckgen version " + version)
		return
	}

	if flag.NArg() != 1 {
		usage()
		os.Exit(1)
	}
	input := flag.Arg(0)

	config := deckgen.GetGlobalConfig()
	if *verbose {
		config.LogLevel = "debug"
	}
	if *strict {
		config.StrictMode = true
	}
	deckgen.SetGlobalConfig(config)

	mapPath, err := findTemplateMap(*tmplDir, *mapFile)
	if err != nil {
		fail(err)
	}

	out := *output
	if out == "" {
		out = defaultOutput(input)
	}

	deckgen.Debug("input path %s", input)
	deckgen.Debug("template map path %s", mapPath)
	deckgen.Debug("output path %s", out)

	deck, err := deckgen.BuildFile(input, mapPath)
	if err != nil {
		fail(err)
	}

	renderer := &deckgen.TextRenderer{}
	if out == "-" {
		renderer.Output = os.Stdout
	}
	if err := deck.Render(renderer); err != nil {
		fail(err)
	}
	if err := renderer.Save(out); err != nil {
		fail(err)
	}

	if diags := deck.Diagnostics(); diags.Len() > 0 {
		fmt.Fprint(os.Stderr, diags)
	}
}

// findTemplateMap resolves the template map path from the override flag or
// the template directory, trying <dirname>.xml before template.xml.
func findTemplateMap(dir, override string) (string, error) {
	if override != "" {
		return override, nil
	}
	if dir == "" {
		return "", fmt.Errorf("no template map specified: use -t or -x")
	}
	names := []string{filepath.Base(filepath.Clean(dir)), "template"}
	for _, name := range names {
		candidate := filepath.Join(dir, name+".xml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no template map found in %s", dir)
}

// defaultOutput is the definition file's name with a .txt suffix, placed in
// the working directory.
func defaultOutput(input string) string {
	base := filepath.Base(input)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".txt"
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintln(out, "Usage: deckgen [options] <definition.xml>")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Builds a slide deck from an xml definition file and a template map,")
	fmt.Fprintln(out, "writing a text outline of the resulting slides.")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Options:")
	flag.PrintDefaults()
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
