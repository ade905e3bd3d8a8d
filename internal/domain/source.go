package domain

import (
	"path/filepath"
	"strings"
)

// Line is a 0-based line index into a source file.
type Line int

// NoLine marks an anchor that was not found.
const NoLine Line = -1

// Found reports whether the anchor points at a real line.
func (l Line) Found() bool {
	return l >= 0
}

// Dialect identifies which source language a file is written in
type Dialect int

const (
	// CSharp is the high-level dialect (.cs)
	CSharp Dialect = iota
	// IL is the low-level intermediate-language dialect (.il)
	IL
)

// String returns the short dialect tag used in generated names
func (d Dialect) String() string {
	if d == IL {
		return "il"
	}
	return "cs"
}

// MarshalText implements encoding.TextMarshaler
func (d Dialect) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Dialect) UnmarshalText(text []byte) error {
	if string(text) == "il" {
		*d = IL
	} else {
		*d = CSharp
	}
	return nil
}

// DialectOf returns the dialect for a source or project file path
func DialectOf(path string) Dialect {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".il", ".ilproj":
		return IL
	default:
		return CSharp
	}
}

// SourceInfo holds the structural facts extracted from a project's entry-point source file
type SourceInfo struct {
	TestClassName       string   `json:"test_class_name"`
	TestClassNamespace  string   `json:"test_class_namespace"`
	TestClassBases      []string `json:"test_class_bases,omitempty"`
	TestClassSourceFile string   `json:"test_class_source_file"`

	TestClassLine         Line `json:"test_class_line"`
	FirstMainMethodLine   Line `json:"first_main_method_line"`
	MainTokenMethodLine   Line `json:"main_token_method_line"`
	LastMainMethodLine    Line `json:"last_main_method_line"`
	LastHeaderCommentLine Line `json:"last_header_comment_line"`
	LastUsingLine         Line `json:"last_using_line"`
	NamespaceLine         Line `json:"namespace_line"`

	MainMethodName   string `json:"main_method_name"`
	HasFactAttribute bool   `json:"has_fact_attribute"`
	HasExit          bool   `json:"has_exit"`
}

// NewSourceInfo returns a fact record with every anchor unset
func NewSourceInfo() SourceInfo {
	return SourceInfo{
		TestClassLine:         NoLine,
		FirstMainMethodLine:   NoLine,
		MainTokenMethodLine:   NoLine,
		LastMainMethodLine:    NoLine,
		LastHeaderCommentLine: NoLine,
		LastUsingLine:         NoLine,
		NamespaceLine:         NoLine,
	}
}

// HasEntryPoint reports whether an entry-point method was located
func (s *SourceInfo) HasEntryPoint() bool {
	return s.FirstMainMethodLine.Found() && s.MainMethodName != ""
}

// BareClassName returns the test class name without its namespace prefix
func (s *SourceInfo) BareClassName() string {
	if s.TestClassNamespace != "" {
		if rest, ok := strings.CutPrefix(s.TestClassName, s.TestClassNamespace+"."); ok {
			return rest
		}
	}
	return s.TestClassName
}
