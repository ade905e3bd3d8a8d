package discovery

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"iltransform/internal/domain"
	"iltransform/internal/textio"
)

// xmlDescriptor is the subset of a project descriptor the tool reads.
// Element names inside the groups are open-ended, so they are captured with ",any".
type xmlDescriptor struct {
	PropertyGroups []xmlGroup `xml:"PropertyGroup"`
	ItemGroups     []xmlGroup `xml:"ItemGroup"`
}

type xmlGroup struct {
	Elements []xmlElement `xml:",any"`
}

type xmlElement struct {
	XMLName xml.Name
	Include string `xml:"Include,attr"`
	Value   string `xml:",chardata"`
}

// $(Name) property references
var macroPattern = regexp.MustCompile(`\$\(([A-Za-z_][\w.]*)\)`)

// Parser turns project descriptors into domain projects
type Parser struct {
	root string
}

// NewParser creates a new Parser; relative paths are computed against root
func NewParser(root string) *Parser {
	return &Parser{root: root}
}

// Parse reads the descriptor at path. Malformed XML is returned as an error
// and is meant to end the run.
func (p *Parser) Parse(path string) (*domain.Project, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("error resolving %s: %w", path, err)
	}
	content, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("error reading descriptor %s: %w", path, err)
	}

	content = bytes.TrimPrefix(content, []byte(textio.ByteOrderMark))

	var doc xmlDescriptor
	if err := xml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("malformed descriptor %s: %w", path, err)
	}

	relPath := absPath
	if p.root != "" {
		if root, err := filepath.Abs(p.root); err == nil {
			if rel, err := filepath.Rel(root, absPath); err == nil {
				relPath = filepath.ToSlash(rel)
			}
		}
	}

	project := domain.NewProject(absPath, relPath)
	macros := builtinMacros(project)

	for _, group := range doc.PropertyGroups {
		for _, el := range group.Elements {
			value := expandMacros(strings.TrimSpace(el.Value), macros, project.Properties)
			project.Properties[el.XMLName.Local] = value
		}
	}

	for _, group := range doc.ItemGroups {
		for _, el := range group.Elements {
			name := el.XMLName.Local
			project.ItemGroups[name] = true
			switch name {
			case "Compile":
				files, err := expandIncludes(project.Dir(), expandMacros(el.Include, macros, project.Properties))
				if err != nil {
					return nil, fmt.Errorf("error expanding compile items of %s: %w", path, err)
				}
				project.CompileFiles = append(project.CompileFiles, files...)
			case "ProjectReference":
				for _, ref := range splitItems(expandMacros(el.Include, macros, project.Properties)) {
					project.ProjectReferences = append(project.ProjectReferences, resolveItem(project.Dir(), ref))
				}
			}
		}
	}

	if len(project.CompileFiles) == 0 {
		project.CompileFiles = defaultSources(project)
	}

	project.DebugOptimize = domain.DebugOptimize{
		Debug:    strings.ToLower(project.Property("DebugType")),
		Optimize: normalizeBool(project.Property("Optimize")),
	}
	project.OutputType = strings.ToLower(project.Property("OutputType"))
	if project.OutputType == "" {
		project.OutputType = "library"
	}
	project.IsolationReasons = IsolationReasons(project)

	return project, nil
}

func builtinMacros(project *domain.Project) map[string]string {
	dir := project.Dir()
	return map[string]string{
		"MSBuildProjectName":       project.Name(),
		"MSBuildThisFileName":      project.Name(),
		"MSBuildProjectDirectory":  dir,
		"MSBuildThisFileDirectory": dir + string(filepath.Separator),
		"MSBuildProjectFile":       filepath.Base(project.AbsolutePath),
		"MSBuildThisFile":          filepath.Base(project.AbsolutePath),
		"MSBuildProjectFullPath":   project.AbsolutePath,
		"MSBuildThisFileFullPath":  project.AbsolutePath,
		"MSBuildProjectExtension":  filepath.Ext(project.AbsolutePath),
		"MSBuildThisFileExtension": filepath.Ext(project.AbsolutePath),
	}
}

// expandMacros substitutes built-in macros and properties declared so far.
// Unknown references expand to "" like MSBuild does.
func expandMacros(s string, builtin, props map[string]string) string {
	if !strings.Contains(s, "$(") {
		return s
	}
	return macroPattern.ReplaceAllStringFunc(s, func(ref string) string {
		name := macroPattern.FindStringSubmatch(ref)[1]
		if v, ok := builtin[name]; ok {
			return v
		}
		return props[name]
	})
}

func splitItems(include string) []string {
	var items []string
	for _, item := range strings.Split(include, ";") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func resolveItem(dir, item string) string {
	item = strings.ReplaceAll(item, `\`, "/")
	if !filepath.IsAbs(item) {
		item = filepath.Join(dir, item)
	}
	return filepath.Clean(item)
}

// expandIncludes resolves a Compile Include value to file paths; wildcard
// items are globbed relative to the descriptor directory.
func expandIncludes(dir, include string) ([]string, error) {
	var files []string
	for _, item := range splitItems(include) {
		path := resolveItem(dir, item)
		if !strings.ContainsAny(item, "*?") {
			files = append(files, path)
			continue
		}
		matches, err := doublestar.FilepathGlob(path, doublestar.WithFilesOnly())
		if err != nil {
			return nil, err
		}
		sort.Strings(matches)
		files = append(files, matches...)
	}
	return files, nil
}

// defaultSources falls back to a source named after the descriptor when no
// Compile item is declared
func defaultSources(project *domain.Project) []string {
	for _, ext := range []string{".cs", ".il"} {
		candidate := filepath.Join(project.Dir(), project.Name()+ext)
		if _, err := os.Stat(candidate); err == nil {
			return []string{candidate}
		}
	}
	return nil
}

func normalizeBool(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return "true"
	case "false":
		return "false"
	default:
		return ""
	}
}
