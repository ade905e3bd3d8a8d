package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DebugOptimize is the (debug-info, optimization) configuration pair a project builds under
type DebugOptimize struct {
	Debug    string `json:"debug"`
	Optimize string `json:"optimize"`
}

// Less orders configuration pairs lexicographically on (Debug, Optimize)
func (d DebugOptimize) Less(other DebugOptimize) bool {
	if d.Debug != other.Debug {
		return d.Debug < other.Debug
	}
	return d.Optimize < other.Optimize
}

func (d DebugOptimize) String() string {
	debug, optimize := d.Debug, d.Optimize
	if debug == "" {
		debug = "-"
	}
	if optimize == "" {
		optimize = "-"
	}
	return fmt.Sprintf("%s/%s", debug, optimize)
}

// Project is one scanned project descriptor plus the facts of its entry-point source
type Project struct {
	AbsolutePath      string            `json:"absolute_path"`
	RelativePath      string            `json:"relative_path"`
	Properties        map[string]string `json:"properties"`
	ItemGroups        map[string]bool   `json:"item_groups"`
	CompileFiles      []string          `json:"compile_files"`
	ProjectReferences []string          `json:"project_references,omitempty"`

	DebugOptimize    DebugOptimize `json:"debug_optimize"`
	OutputType       string        `json:"output_type"`
	IsolationReasons []string      `json:"isolation_reasons,omitempty"`

	Source SourceInfo `json:"source"`

	// Set while planning rewrites
	Alias                     string `json:"alias,omitempty"`
	DeduplicatedClassName     string `json:"deduplicated_class_name,omitempty"`
	DeduplicatedNamespaceName string `json:"deduplicated_namespace_name,omitempty"`
	NewAbsolutePath           string `json:"new_absolute_path,omitempty"`
	NewTestClassSourceFile    string `json:"new_test_class_source_file,omitempty"`
}

// NewProject creates an empty project for the descriptor at path
func NewProject(absPath, relPath string) *Project {
	return &Project{
		AbsolutePath: absPath,
		RelativePath: relPath,
		Properties:   make(map[string]string),
		ItemGroups:   make(map[string]bool),
		Source:       NewSourceInfo(),
	}
}

// Name returns the descriptor file name without extension
func (p *Project) Name() string {
	base := filepath.Base(p.AbsolutePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Dir returns the directory containing the descriptor
func (p *Project) Dir() string {
	return filepath.Dir(p.AbsolutePath)
}

// Dialect returns the dialect of the entry-point source, falling back to the descriptor kind
func (p *Project) Dialect() Dialect {
	if p.Source.TestClassSourceFile != "" {
		return DialectOf(p.Source.TestClassSourceFile)
	}
	return DialectOf(p.AbsolutePath)
}

// Property returns a declared property value, or "" when it is not declared
func (p *Project) Property(name string) string {
	return p.Properties[name]
}

// HasItemGroup reports whether an item of the given element name was declared
func (p *Project) HasItemGroup(name string) bool {
	return p.ItemGroups[name]
}

// RequiresProcessIsolation reports whether the project must run in its own process
func (p *Project) RequiresProcessIsolation() bool {
	return len(p.IsolationReasons) > 0
}

// DisplayName returns the alias when assigned, otherwise the relative path
func (p *Project) DisplayName() string {
	if p.Alias != "" {
		return p.Alias
	}
	return p.RelativePath
}
