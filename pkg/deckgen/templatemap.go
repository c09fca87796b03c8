package deckgen

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// TemplateMap translates the layout and placeholder names used in a
// definition document into the numeric indexes of the rendering template.
// It is parsed from a small XML document:
//
//	<template>
//	    <layout name="title" index="0">
//	        <placeholder name="heading" index="0"/>
//	        <placeholder name="subtitle" index="1"/>
//	    </layout>
//	</template>
type TemplateMap struct {
	file    string
	layouts map[string]*layoutMap
}

type layoutMap struct {
	name         string
	index        int
	placeholders map[string]int
}

// LoadTemplateMap reads and parses the template map at path.
func LoadTemplateMap(path string) (*TemplateMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open template map: %w", err)
	}
	defer f.Close()
	return ParseTemplateMap(path, f)
}

// ParseTemplateMap parses a template map document. The file name is used in
// error positions.
func ParseTemplateMap(file string, r io.Reader) (*TemplateMap, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read template map: %w", err)
	}

	index := newLineIndex(data)
	dec := xml.NewDecoder(bytes.NewReader(data))

	tm := &TemplateMap{file: file, layouts: make(map[string]*layoutMap)}
	var current *layoutMap
	depth := 0
	for {
		offset := dec.InputOffset()
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		line, _ := index.pos(offset)
		if err != nil {
			return nil, NewTemplateMapError(fmt.Sprintf("invalid XML: %v", err), file, line)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch depth {
			case 0:
				if t.Name.Local != "template" {
					return nil, NewTemplateMapError(
						fmt.Sprintf("root element must be template, found %q", t.Name.Local), file, line)
				}
			case 1:
				if t.Name.Local != "layout" {
					return nil, NewTemplateMapError(
						fmt.Sprintf("template may only contain layout elements, found %q", t.Name.Local), file, line)
				}
				layout, err := parseLayoutMap(t, file, line)
				if err != nil {
					return nil, err
				}
				if _, exists := tm.layouts[layout.name]; exists {
					return nil, NewTemplateMapError(
						fmt.Sprintf("duplicate layout %q", layout.name), file, line)
				}
				tm.layouts[layout.name] = layout
				current = layout
			case 2:
				if t.Name.Local != "placeholder" {
					return nil, NewTemplateMapError(
						fmt.Sprintf("layout may only contain placeholder elements, found %q", t.Name.Local), file, line)
				}
				if err := current.addPlaceholder(t, file, line); err != nil {
					return nil, err
				}
			default:
				return nil, NewTemplateMapError(
					fmt.Sprintf("unexpected nested element %q", t.Name.Local), file, line)
			}
			depth++

		case xml.EndElement:
			depth--

		case xml.CharData:
			if strings.TrimSpace(string(t)) != "" {
				return nil, NewTemplateMapError("template map elements cannot contain text", file, line)
			}
		}
	}

	if len(tm.layouts) == 0 {
		return nil, NewTemplateMapError("template must define at least one layout", file, 0)
	}
	return tm, nil
}

func parseLayoutMap(t xml.StartElement, file string, line int) (*layoutMap, error) {
	name, index, err := nameIndexAttrs(t, "layout", file, line)
	if err != nil {
		return nil, err
	}
	return &layoutMap{name: name, index: index, placeholders: make(map[string]int)}, nil
}

func (l *layoutMap) addPlaceholder(t xml.StartElement, file string, line int) error {
	name, index, err := nameIndexAttrs(t, "placeholder", file, line)
	if err != nil {
		return err
	}
	if _, exists := l.placeholders[name]; exists {
		return NewTemplateMapError(
			fmt.Sprintf("duplicate placeholder %q in layout %q", name, l.name), file, line)
	}
	l.placeholders[name] = index
	return nil
}

// nameIndexAttrs extracts the required name and non-negative integer index
// attributes of a layout or placeholder element.
func nameIndexAttrs(t xml.StartElement, kind, file string, line int) (string, int, error) {
	var name, indexStr string
	for _, attr := range t.Attr {
		switch attr.Name.Local {
		case "name":
			name = attr.Value
		case "index":
			indexStr = attr.Value
		}
	}
	if name == "" {
		return "", 0, NewTemplateMapError(fmt.Sprintf("%s missing name attribute", kind), file, line)
	}
	if indexStr == "" {
		return "", 0, NewTemplateMapError(fmt.Sprintf("%s %q missing index attribute", kind, name), file, line)
	}
	index, err := strconv.Atoi(indexStr)
	if err != nil || index < 0 {
		return "", 0, NewTemplateMapError(
			fmt.Sprintf("%s %q has invalid index %q", kind, name, indexStr), file, line)
	}
	return name, index, nil
}

// Layout returns the template index of a layout name.
func (t *TemplateMap) Layout(name string) (int, bool) {
	l, ok := t.layouts[name]
	if !ok {
		return 0, false
	}
	return l.index, true
}

// Placeholder returns the index of a placeholder name within a layout.
func (t *TemplateMap) Placeholder(layout, name string) (int, bool) {
	l, ok := t.layouts[layout]
	if !ok {
		return 0, false
	}
	idx, ok := l.placeholders[name]
	return idx, ok
}

// Layouts lists the defined layout names, sorted.
func (t *TemplateMap) Layouts() []string {
	names := make([]string, 0, len(t.layouts))
	for n := range t.layouts {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// File returns the path the map was parsed from.
func (t *TemplateMap) File() string { return t.file }
