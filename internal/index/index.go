// Package index aggregates source facts across the scanned corpus to find
// colliding type names and to plan the names that disambiguate them.
package index

import (
	"path/filepath"
	"sort"
	"strings"

	"iltransform/internal/diag"
	"iltransform/internal/domain"
)

// Group is the set of projects sharing one namespace#type key under one configuration
type Group struct {
	Key      string
	Config   domain.DebugOptimize
	Projects []*domain.Project
	// Common is set when the type name is in the known common name set
	Common bool
}

// Flagged reports whether the group needs disambiguation
func (g *Group) Flagged() bool {
	return len(g.Projects) > 1 || g.Common
}

// Index is the corpus-wide view of every project with an entry point
type Index struct {
	// ByClass maps a bare type name to the projects declaring it
	ByClass map[string][]*domain.Project
	// ByNamespaceType maps namespace#type to configuration to projects
	ByNamespaceType map[string]map[domain.DebugOptimize][]*domain.Project
	// SharedFiles maps a compiled source path to the projects listing it, when more than one does
	SharedFiles map[string][]*domain.Project

	known       map[string]bool
	fileFolders map[string]map[string]bool
	log         diag.Logger
}

// Key returns the namespace#type key of a project
func Key(p *domain.Project) string {
	return p.Source.TestClassNamespace + "#" + p.Source.BareClassName()
}

// Build indexes every project that has both a type name and an entry-point method
func Build(projects []*domain.Project, knownCommonNames []string, log diag.Logger) *Index {
	ix := &Index{
		ByClass:         make(map[string][]*domain.Project),
		ByNamespaceType: make(map[string]map[domain.DebugOptimize][]*domain.Project),
		SharedFiles:     make(map[string][]*domain.Project),
		known:           make(map[string]bool),
		fileFolders:     make(map[string]map[string]bool),
		log:             log,
	}
	for _, name := range knownCommonNames {
		ix.known[name] = true
	}

	users := make(map[string][]*domain.Project)
	for _, p := range projects {
		for _, file := range p.CompileFiles {
			users[file] = append(users[file], p)
		}

		if p.Source.TestClassName == "" || p.Source.MainMethodName == "" {
			continue
		}
		bare := p.Source.BareClassName()
		ix.ByClass[bare] = append(ix.ByClass[bare], p)

		key := Key(p)
		configs := ix.ByNamespaceType[key]
		if configs == nil {
			configs = make(map[domain.DebugOptimize][]*domain.Project)
			ix.ByNamespaceType[key] = configs
		}
		configs[p.DebugOptimize] = append(configs[p.DebugOptimize], p)

		src := p.Source.TestClassSourceFile
		fileName := filepath.Base(src)
		if ix.fileFolders[fileName] == nil {
			ix.fileFolders[fileName] = make(map[string]bool)
		}
		ix.fileFolders[fileName][filepath.Dir(src)] = true
	}

	for file, ps := range users {
		if len(ps) > 1 {
			ix.SharedFiles[file] = ps
		}
	}
	return ix
}

// IsCommonName reports whether name is in the known common name set
func (ix *Index) IsCommonName(name string) bool {
	return ix.known[name]
}

// Groups returns every (namespace#type, configuration) group in a stable order
func (ix *Index) Groups() []*Group {
	var groups []*Group
	for key, configs := range ix.ByNamespaceType {
		bare := key[strings.IndexByte(key, '#')+1:]
		for config, ps := range configs {
			groups = append(groups, &Group{
				Key:      key,
				Config:   config,
				Projects: ps,
				Common:   ix.known[bare],
			})
		}
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Key != groups[j].Key {
			return groups[i].Key < groups[j].Key
		}
		return groups[i].Config.Less(groups[j].Config)
	})
	return groups
}

// DuplicateGroups returns the groups that need disambiguation
func (ix *Index) DuplicateGroups() []*Group {
	var flagged []*Group
	for _, g := range ix.Groups() {
		if g.Flagged() {
			flagged = append(flagged, g)
		}
	}
	return flagged
}

// DuplicateClassNames returns the bare type names declared by more than one project, sorted
func (ix *Index) DuplicateClassNames() []string {
	var names []string
	for name, ps := range ix.ByClass {
		if len(ps) > 1 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// DeduplicatedName computes the replacement namespace for one project of a
// flagged group. A namespace that already ends with the project's suffix is
// returned unchanged, so names produced by an earlier run stay put.
func (ix *Index) DeduplicatedName(g *Group, p *domain.Project) string {
	src := p.Source.TestClassSourceFile
	fileName := filepath.Base(src)
	suffix := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	if len(ix.fileFolders[fileName]) > 1 {
		suffix += "_" + filepath.Base(filepath.Dir(src))
	}
	if mixedDialects(g.Projects) {
		suffix += "_" + p.Dialect().String()
	}

	ns := p.Source.TestClassNamespace
	if ns == "" {
		return SanitizeIdentifier("Test_" + suffix)
	}
	if strings.HasSuffix(ns, "_"+SanitizeIdentifier(suffix)) {
		return ns
	}
	return SanitizeIdentifier(ns + "_" + suffix)
}

func mixedDialects(ps []*domain.Project) bool {
	for _, p := range ps[1:] {
		if p.Dialect() != ps[0].Dialect() {
			return true
		}
	}
	return false
}

// AssignDeduplicatedNames records the deduplicated namespace of every project
// in a flagged group. When classToDeduplicate is set only that bare type name
// is considered, and its declaring projects also get a new class name.
func (ix *Index) AssignDeduplicatedNames(classToDeduplicate string) int {
	assigned := 0
	taken := make(map[string]*domain.Project)
	for _, g := range ix.DuplicateGroups() {
		for _, p := range g.Projects {
			bare := p.Source.BareClassName()
			if classToDeduplicate != "" && bare != classToDeduplicate {
				continue
			}
			name := ix.DeduplicatedName(g, p)
			if name == p.Source.TestClassNamespace {
				continue
			}
			if other, ok := taken[name+"#"+bare]; ok && other.Source.TestClassSourceFile != p.Source.TestClassSourceFile {
				ix.log.Warn("deduplicated name collides",
					diag.F("name", name), diag.F("project", p.RelativePath), diag.F("other", other.RelativePath))
			}
			taken[name+"#"+bare] = p
			p.DeduplicatedNamespaceName = name
			assigned++
		}
	}

	if classToDeduplicate != "" {
		for _, p := range ix.ByClass[classToDeduplicate] {
			fileName := filepath.Base(p.Source.TestClassSourceFile)
			p.DeduplicatedClassName = SanitizeIdentifier(classToDeduplicate + "_" + strings.TrimSuffix(fileName, filepath.Ext(fileName)))
		}
	}
	return assigned
}

// AssignAliases gives every project a short display name: its descriptor
// name when unique in the corpus, otherwise its relative directory path.
func AssignAliases(projects []*domain.Project) {
	byName := make(map[string]int)
	for _, p := range projects {
		byName[p.Name()]++
	}
	for _, p := range projects {
		if byName[p.Name()] == 1 {
			p.Alias = p.Name()
			continue
		}
		dir := filepath.ToSlash(filepath.Dir(p.RelativePath))
		if dir == "." {
			p.Alias = p.Name()
			continue
		}
		p.Alias = strings.ReplaceAll(dir, "/", "_") + "_" + p.Name()
	}
}
