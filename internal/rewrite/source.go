package rewrite

import (
	"fmt"
	"path/filepath"
	"strings"

	"iltransform/internal/config"
	"iltransform/internal/diag"
	"iltransform/internal/domain"
	"iltransform/internal/index"
	"iltransform/internal/lexer"
	"iltransform/internal/textio"
)

// Rewriter applies the configured edits to projects and their sources
type Rewriter struct {
	opts config.RewriteOptions
	ctx  *Context
	log  diag.Logger
}

// New creates a Rewriter sharing ctx across all projects of a run
func New(opts config.RewriteOptions, ctx *Context, log diag.Logger) *Rewriter {
	return &Rewriter{opts: opts, ctx: ctx, log: log}
}

// Summary counts what a run did
type Summary struct {
	Sources     int
	Descriptors int
	Skipped     int
	Moved       int
	Conflicts   int
}

// Run rewrites every project in order. Analysis must be complete for all
// projects before Run is called. With ClassToDeduplicate set only the
// projects declaring that class are touched.
func (r *Rewriter) Run(projects []*domain.Project) (Summary, error) {
	var s Summary
	if r.opts.ClassToDeduplicate != "" {
		projects = declaringClass(projects, r.opts.ClassToDeduplicate)
		r.log.Debug("rewrite restricted to one class",
			diag.F("class", r.opts.ClassToDeduplicate), diag.F("projects", len(projects)))
	}
	if r.opts.MatchSourceToProject {
		r.PlanRenames(projects)
	}
	for _, p := range projects {
		changed, moved, err := r.RewriteSource(p)
		if err != nil {
			return s, err
		}
		switch {
		case changed:
			s.Sources++
		case !p.Source.HasEntryPoint():
			s.Skipped++
		}
		if moved {
			s.Moved++
		}

		changed, err = r.RewriteProject(p)
		if err != nil {
			return s, err
		}
		if changed {
			s.Descriptors++
		}
	}
	s.Conflicts = r.ctx.Conflicts()
	return s, nil
}

func declaringClass(projects []*domain.Project, class string) []*domain.Project {
	var out []*domain.Project
	for _, p := range projects {
		if p.Source.BareClassName() == class {
			out = append(out, p)
		}
	}
	return out
}

// PlanRenames claims a new name for every entry-point source whose base name
// differs from its descriptor, then records the winning target on every
// project that compiles the file. Descriptors stay where they are, so their
// new path is the current one.
func (r *Rewriter) PlanRenames(projects []*domain.Project) {
	for _, p := range projects {
		if !p.Source.HasEntryPoint() {
			continue
		}
		src := p.Source.TestClassSourceFile
		target := filepath.Join(filepath.Dir(src), p.Name()+filepath.Ext(src))
		if target == src {
			continue
		}
		r.ctx.Claim(src, target, p.RelativePath)
	}
	for _, p := range projects {
		p.NewAbsolutePath = p.AbsolutePath
		if target, ok := r.ctx.Target(p.Source.TestClassSourceFile); ok {
			p.NewTestClassSourceFile = target
		}
	}
}

// RewriteSource edits the entry-point source of p and performs its planned
// move. A physical file is rewritten and moved at most once per run, by the
// first project that reaches it.
func (r *Rewriter) RewriteSource(p *domain.Project) (changed, moved bool, err error) {
	if !p.Source.HasEntryPoint() {
		return false, false, nil
	}
	path := p.Source.TestClassSourceFile
	if !r.ctx.MarkRewritten(path) {
		r.log.Debug("source already rewritten", diag.F("file", path), diag.F("project", p.RelativePath))
		return false, false, nil
	}

	if p.Source.TestClassName != "" || r.opts.AddFactAttributes {
		file, err := textio.Read(path)
		if err != nil {
			r.log.Warn("cannot rewrite source", diag.F("file", path), diag.F("error", err))
			return false, false, nil
		}
		doc := NewDocument(file, p.Source)
		r.apply(doc, p)

		if doc.Changed() {
			if err := r.ctx.Commit(doc.File(), doc.Original()); err != nil {
				return false, false, fmt.Errorf("failed to write %s: %w", path, err)
			}
			p.Source = *doc.Info()
			changed = true
		}
	}

	if target, ok := r.ctx.Target(path); ok {
		if err := r.ctx.Move(path, target); err != nil {
			r.log.Warn("cannot rename source", diag.F("file", path), diag.F("error", err))
			p.NewTestClassSourceFile = ""
			return changed, false, nil
		}
		return changed, true, nil
	}
	return changed, false, nil
}

// apply runs the edits in their fixed order; each one is a no-op when its
// result is already present
func (r *Rewriter) apply(doc *Document, p *domain.Project) {
	info := doc.Info()
	il := doc.Dialect() == domain.IL
	log := r.log.WithFields(diag.F("file", doc.Path()))

	if r.opts.AddFactAttributes {
		var added bool
		if il {
			added = addILFact(doc)
		} else {
			added = addCSharpFact(doc)
		}
		if added {
			log.Debug("test attribute added")
		}
	}

	if r.opts.AddFactAttributes || r.opts.DeduplicateClassNames {
		if il {
			promoteIL(doc, r.opts.AddFactAttributes)
		} else {
			promoteCSharp(doc, r.opts.AddFactAttributes)
		}
	}

	if !info.TestClassLine.Found() && (r.opts.AddFactAttributes || p.DeduplicatedNamespaceName != "") {
		name := index.SanitizeIdentifier(fileBase(doc.Path()))
		var ok bool
		if il {
			ok = synthesizeILType(doc, name)
		} else {
			ok = synthesizeCSharpType(doc, name)
		}
		if !ok {
			log.Warn("cannot find the end of the entry method", diag.F("line", int(info.LastMainMethodLine)+1))
		}
	}

	if ns := p.DeduplicatedNamespaceName; ns != "" && info.TestClassName != "" {
		classifier := NewClassifier(doc.Path(), r.log)
		if info.TestClassNamespace == "" {
			wrapNamespace(doc, classifier, ns)
		} else if info.TestClassNamespace != ns {
			renameNamespace(doc, classifier, ns)
		}
	}

	if r.opts.AddFactAttributes && !il {
		addXunitUsing(doc)
	}

	if p.DeduplicatedClassName != "" && info.TestClassName != "" {
		renameClass(doc, p.DeduplicatedClassName)
	}

	if r.opts.CleanupModuleAssembly && il {
		target := doc.Path()
		if p.NewTestClassSourceFile != "" {
			target = p.NewTestClassSourceFile
		}
		cleanupModuleAssembly(doc, target)
	}
}

// wrapNamespace puts everything from the namespace anchor to the end of the
// file into a new namespace block and qualifies the type uses inside it
func wrapNamespace(doc *Document, classifier *Classifier, ns string) {
	info := doc.Info()
	anchor := info.NamespaceLine
	if !anchor.Found() || anchor > info.TestClassLine {
		anchor = info.TestClassLine
	}
	if !anchor.Found() {
		return
	}
	at := int(anchor)
	last := lastNonBlank(doc.Lines())

	keyword := "namespace "
	if doc.Dialect() == domain.IL {
		keyword = ".namespace "
	}
	doc.Insert(last+1, "}")
	doc.Insert(at, keyword+ns, "{")

	// C# bodies move one level in; IL keeps its column layout
	unit := ""
	if doc.Dialect() == domain.CSharp {
		unit = indentUnit(doc.Lines())
	}
	bare := info.BareClassName()
	for i := at + 2; i < doc.Len(); i++ {
		line := doc.Line(i)
		if out, ok := classifier.Rename(line, i, TypeUse, bare, ns+"."+bare); ok {
			line = out
		}
		if i < last+3 && !textio.IsBlank(line) && !strings.HasPrefix(line, "#") {
			line = unit + line
		}
		doc.Set(i, line)
	}
	info.NamespaceLine = domain.Line(at)
	info.TestClassNamespace = ns
	info.TestClassName = ns + "." + bare
}

// indentUnit returns the file's indentation step: a tab when the first
// indented line starts with one, otherwise four spaces
func indentUnit(lines []string) string {
	for _, line := range lines {
		if textio.IsBlank(line) {
			continue
		}
		switch line[0] {
		case '\t':
			return "\t"
		case ' ':
			return "    "
		}
	}
	return "    "
}

// renameNamespace replaces the namespace at its genuine use sites
func renameNamespace(doc *Document, classifier *Classifier, ns string) {
	info := doc.Info()
	old := info.TestClassNamespace
	bare := info.BareClassName()
	for i := 0; i < doc.Len(); i++ {
		if out, ok := classifier.Rename(doc.Line(i), i, NamespaceUse, old, ns); ok {
			doc.Set(i, out)
		}
	}
	info.TestClassNamespace = ns
	info.TestClassName = ns + "." + bare
}

// renameClass renames the test class at every identifier boundary
func renameClass(doc *Document, name string) {
	info := doc.Info()
	bare := info.BareClassName()
	if bare == name {
		return
	}
	for i := 0; i < doc.Len(); i++ {
		doc.Set(i, lexer.ReplaceIdentifiers(doc.Line(i), bare, name))
	}
	info.TestClassName = strings.TrimSuffix(info.TestClassName, bare) + name
}

func fileBase(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
