// Package textio reads and writes whole text files as line lists while
// preserving the file's line-ending convention.
package textio

import (
	"fmt"
	"os"
	"strings"
)

// File is a text file loaded into memory
type File struct {
	Path  string
	Lines []string
	// EOL is "\r\n" when the file used CRLF endings, otherwise "\n"
	EOL string
	// TrailingNewline records whether the last line was terminated
	TrailingNewline bool
	// BOM records a leading UTF-8 byte order mark, kept out of Lines
	BOM bool
}

// ByteOrderMark is the UTF-8 encoding of U+FEFF
const ByteOrderMark = "\ufeff"

// Read loads path and splits it into lines
func Read(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(path, string(data)), nil
}

// Parse splits content into a File without touching the disk
func Parse(path, content string) *File {
	f := &File{Path: path, EOL: "\n"}
	if rest, ok := strings.CutPrefix(content, ByteOrderMark); ok {
		f.BOM = true
		content = rest
	}
	if strings.Contains(content, "\r\n") {
		f.EOL = "\r\n"
		content = strings.ReplaceAll(content, "\r\n", "\n")
	}
	if content == "" {
		return f
	}
	if strings.HasSuffix(content, "\n") {
		f.TrailingNewline = true
		content = content[:len(content)-1]
	}
	f.Lines = strings.Split(content, "\n")
	return f
}

// String joins the lines back using the original line endings and byte order mark
func (f *File) String() string {
	var s string
	if len(f.Lines) > 0 {
		s = strings.Join(f.Lines, f.EOL)
		if f.TrailingNewline {
			s += f.EOL
		}
	}
	if f.BOM {
		s = ByteOrderMark + s
	}
	return s
}

// Write stores the file at its path
func (f *File) Write() error {
	return f.WriteTo(f.Path)
}

// WriteTo stores the file at path
func (f *File) WriteTo(path string) error {
	info, err := os.Stat(path)
	mode := os.FileMode(0644)
	if err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(path, []byte(f.String()), mode); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Indent returns the leading whitespace of line
func Indent(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}

// IndentWidth returns the visual width of the leading whitespace, counting tabs as four columns
func IndentWidth(line string) int {
	width := 0
	for _, c := range line {
		switch c {
		case ' ':
			width++
		case '\t':
			width += 4
		default:
			return width
		}
	}
	return width
}

// IsBlank reports whether line holds only whitespace
func IsBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}
