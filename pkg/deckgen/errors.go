package deckgen

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// StructureError reports a definition document that violates the required
// element structure (root container, slide nesting, placeholder naming).
type StructureError struct {
	Message string
	File    string
	Line    int
}

func (e *StructureError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("structure error at %s:%d: %s", e.File, e.Line, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("structure error in %s: %s", e.File, e.Message)
	}
	return fmt.Sprintf("structure error: %s", e.Message)
}

// NewStructureError creates a new structure error.
func NewStructureError(message, file string, line int) error {
	return &StructureError{Message: message, File: file, Line: line}
}

// VariableError reports a directive that failed to resolve: an undefined
// variable, or a malformed var attribute.
type VariableError struct {
	Directive string
	Name      string
	Message   string
	File      string
	Line      int
}

func (e *VariableError) Error() string {
	msg := fmt.Sprintf("variable error in '%s' directive", e.Directive)
	if e.Name != "" {
		msg += fmt.Sprintf(" for '%s'", e.Name)
	}
	msg += ": " + e.Message
	if e.Line > 0 {
		msg += fmt.Sprintf(" (%s:%d)", e.File, e.Line)
	}
	return msg
}

// NewVariableError creates a new variable error.
func NewVariableError(directive, name, message, file string, line int) error {
	return &VariableError{Directive: directive, Name: name, Message: message, File: file, Line: line}
}

// RangeSpecError reports a malformed range spec such as "a2" or "1-2-3-4".
type RangeSpecError struct {
	Spec    string
	Token   string
	Message string
}

func (e *RangeSpecError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("range spec error in %q near %q: %s", e.Spec, e.Token, e.Message)
	}
	return fmt.Sprintf("range spec error in %q: %s", e.Spec, e.Message)
}

// NewRangeSpecError creates a new range spec error.
func NewRangeSpecError(spec, token, message string) error {
	return &RangeSpecError{Spec: spec, Token: token, Message: message}
}

// KeyFilterError reports a key filter that matched nothing, or a filter with
// an invalid pattern. Dimension is "row key" or "column key".
type KeyFilterError struct {
	Dimension string
	Pattern   string
	Message   string
	File      string
	Line      int
}

func (e *KeyFilterError) Error() string {
	msg := fmt.Sprintf("%s filter %q: %s", e.Dimension, e.Pattern, e.Message)
	if e.Line > 0 {
		msg += fmt.Sprintf(" (%s:%d)", e.File, e.Line)
	}
	return msg
}

// NewKeyFilterError creates a new key filter error.
func NewKeyFilterError(dimension, pattern, message, file string, line int) error {
	return &KeyFilterError{Dimension: dimension, Pattern: pattern, Message: message, File: file, Line: line}
}

// BoundsError reports an import that addressed a cell outside the actual
// bounds of its source sheet.
type BoundsError struct {
	File    string
	Row     int
	Col     int
	NumRows int
	NumCols int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("bounds error in '%s': cell (%d,%d) outside %dx%d sheet",
		e.File, e.Row, e.Col, e.NumRows, e.NumCols)
}

// NewBoundsError creates a new bounds error.
func NewBoundsError(file string, row, col, numRows, numCols int) error {
	return &BoundsError{File: file, Row: row, Col: col, NumRows: numRows, NumCols: numCols}
}

// TemplateMapError reports an invalid template map document.
type TemplateMapError struct {
	Message string
	File    string
	Line    int
}

func (e *TemplateMapError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("template map error at %s:%d: %s", e.File, e.Line, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("template map error in %s: %s", e.File, e.Message)
	}
	return fmt.Sprintf("template map error: %s", e.Message)
}

// NewTemplateMapError creates a new template map error.
func NewTemplateMapError(message, file string, line int) error {
	return &TemplateMapError{Message: message, File: file, Line: line}
}

// EvaluationError reports a failure while compiling or running an eval
// directive's expression.
type EvaluationError struct {
	Expression string
	Cause      error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluation error for expression '%s': %v", e.Expression, e.Cause)
}

func (e *EvaluationError) Unwrap() error {
	return e.Cause
}

// NewEvaluationError creates a new evaluation error.
func NewEvaluationError(expression string, cause error) error {
	return &EvaluationError{Expression: expression, Cause: cause}
}

// ContextError wraps an error with additional context about where it
// occurred.
type ContextError struct {
	Context string
	Err     error
}

func (e *ContextError) Error() string {
	return fmt.Sprintf("%s: %v", e.Context, e.Err)
}

func (e *ContextError) Unwrap() error {
	return e.Err
}

// WithContext wraps an error with a context string. Returns nil when err is
// nil.
func WithContext(context string, err error) error {
	if err == nil {
		return nil
	}
	return &ContextError{Context: context, Err: err}
}

// Diagnostics collects non-fatal findings (import size mismatches, invalid
// image paths) grouped by the source file they concern. A run with
// diagnostics still succeeds; the report is surfaced once at the end.
type Diagnostics struct {
	byFile map[string][]string
}

// Add records a diagnostic message against a source file.
func (d *Diagnostics) Add(file, message string) {
	if d.byFile == nil {
		d.byFile = make(map[string][]string)
	}
	d.byFile[file] = append(d.byFile[file], message)
}

// Len returns the total number of recorded diagnostics.
func (d *Diagnostics) Len() int {
	n := 0
	for _, msgs := range d.byFile {
		n += len(msgs)
	}
	return n
}

// Files returns the source files with diagnostics, sorted.
func (d *Diagnostics) Files() []string {
	files := make([]string, 0, len(d.byFile))
	for f := range d.byFile {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// ForFile returns the diagnostics recorded against one file, in order.
func (d *Diagnostics) ForFile(file string) []string {
	return d.byFile[file]
}

// String renders the grouped report, one file heading per source file.
func (d *Diagnostics) String() string {
	if d.Len() == 0 {
		return ""
	}
	var sb strings.Builder
	for _, f := range d.Files() {
		fmt.Fprintf(&sb, "%s:\n", f)
		for _, msg := range d.byFile[f] {
			fmt.Fprintf(&sb, "  - %s\n", msg)
		}
	}
	return sb.String()
}

// IsStructureError checks if an error is a StructureError.
func IsStructureError(err error) bool {
	var e *StructureError
	return errors.As(err, &e)
}

// IsVariableError checks if an error is a VariableError.
func IsVariableError(err error) bool {
	var e *VariableError
	return errors.As(err, &e)
}

// IsRangeSpecError checks if an error is a RangeSpecError.
func IsRangeSpecError(err error) bool {
	var e *RangeSpecError
	return errors.As(err, &e)
}

// IsKeyFilterError checks if an error is a KeyFilterError.
func IsKeyFilterError(err error) bool {
	var e *KeyFilterError
	return errors.As(err, &e)
}

// IsBoundsError checks if an error is a BoundsError.
func IsBoundsError(err error) bool {
	var e *BoundsError
	return errors.As(err, &e)
}

// IsTemplateMapError checks if an error is a TemplateMapError.
func IsTemplateMapError(err error) bool {
	var e *TemplateMapError
	return errors.As(err, &e)
}

// IsEvaluationError checks if an error is an EvaluationError.
func IsEvaluationError(err error) bool {
	var e *EvaluationError
	return errors.As(err, &e)
}
