// Package rewrite applies the mechanical edits that turn standalone test
// programs into test-framework methods: marker insertion, visibility
// promotion, namespace and class renames, and descriptor cleanup.
package rewrite

import (
	"slices"

	"iltransform/internal/domain"
	"iltransform/internal/textio"
)

// Document is a source file being edited together with the anchors that
// point into it. Every insertion shifts the anchors at or below it, so the
// facts stay valid across edits.
type Document struct {
	file     *textio.File
	original string
	info     domain.SourceInfo
	changed  bool
}

// NewDocument wraps a loaded file. The facts are copied so the project's
// record is only updated when the caller decides to.
func NewDocument(file *textio.File, info domain.SourceInfo) *Document {
	info.TestClassBases = slices.Clone(info.TestClassBases)
	return &Document{
		file:     file,
		original: file.String(),
		info:     info,
	}
}

// Path returns the file path
func (d *Document) Path() string {
	return d.file.Path
}

// File returns the underlying file with the current lines
func (d *Document) File() *textio.File {
	return d.file
}

// Original returns the file content as it was loaded
func (d *Document) Original() string {
	return d.original
}

// Info returns the facts of the document, kept in sync with its lines
func (d *Document) Info() *domain.SourceInfo {
	return &d.info
}

// Dialect returns the dialect of the file
func (d *Document) Dialect() domain.Dialect {
	return domain.DialectOf(d.file.Path)
}

// Changed reports whether any edit was applied
func (d *Document) Changed() bool {
	return d.changed
}

// Len returns the number of lines
func (d *Document) Len() int {
	return len(d.file.Lines)
}

// Line returns line i
func (d *Document) Line(i int) string {
	return d.file.Lines[i]
}

// Lines returns the current lines; callers must not modify the slice
func (d *Document) Lines() []string {
	return d.file.Lines
}

// Set replaces line i
func (d *Document) Set(i int, text string) {
	if d.file.Lines[i] == text {
		return
	}
	d.file.Lines[i] = text
	d.changed = true
}

// Insert places lines before index at and shifts the anchors that follow
func (d *Document) Insert(at int, lines ...string) {
	if len(lines) == 0 {
		return
	}
	d.file.Lines = slices.Insert(d.file.Lines, at, lines...)
	for _, anchor := range d.anchors() {
		if anchor.Found() && int(*anchor) >= at {
			*anchor += domain.Line(len(lines))
		}
	}
	d.changed = true
}

// Append adds lines at the end of the file
func (d *Document) Append(lines ...string) {
	d.Insert(len(d.file.Lines), lines...)
}

func (d *Document) anchors() []*domain.Line {
	return []*domain.Line{
		&d.info.TestClassLine,
		&d.info.FirstMainMethodLine,
		&d.info.MainTokenMethodLine,
		&d.info.LastMainMethodLine,
		&d.info.LastHeaderCommentLine,
		&d.info.LastUsingLine,
		&d.info.NamespaceLine,
	}
}
