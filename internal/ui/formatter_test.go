package ui

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iltransform/internal/diag"
	"iltransform/internal/domain"
	"iltransform/internal/index"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

var debug = domain.DebugOptimize{Debug: "full", Optimize: "false"}

func corpus(t *testing.T) []*domain.Project {
	t.Helper()
	dir := t.TempDir()
	var projects []*domain.Project
	for _, name := range []string{"a", "b"} {
		src := filepath.Join(dir, name, "test.cs")
		require.NoError(t, os.MkdirAll(filepath.Dir(src), 0o755))
		require.NoError(t, os.WriteFile(src, []byte("class Program { static int Main() => 100; }\n"), 0o644))

		p := domain.NewProject(filepath.Join(dir, name, name+".csproj"), name+"/"+name+".csproj")
		p.DebugOptimize = debug
		p.OutputType = "exe"
		p.CompileFiles = []string{src}
		p.Source.TestClassSourceFile = src
		p.Source.TestClassName = "Program"
		p.Source.MainMethodName = "Main"
		p.Source.FirstMainMethodLine = 0
		projects = append(projects, p)
	}

	c := domain.NewProject(filepath.Join(dir, "c", "c.ilproj"), "c/c.ilproj")
	c.OutputType = "library"
	c.IsolationReasons = []string{"PreCommands"}
	return append(projects, c)
}

func TestComputeStats(t *testing.T) {
	projects := corpus(t)
	projects[0].Source.HasFactAttribute = true
	ix := index.Build(projects, nil, diag.Discard())

	s := ComputeStats(projects, ix)
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 2, s.WithEntryPoint)
	assert.Equal(t, 1, s.WithFact)
	assert.Equal(t, 1, s.RequireIsolation)
	assert.Equal(t, 1, s.DuplicateNames)
	assert.Equal(t, 1, s.DuplicateGroups)
	assert.Equal(t, map[string]int{"cs": 2, "il": 1}, s.ByDialect)
	assert.Equal(t, map[string]int{"exe": 2, "library": 1}, s.ByOutputType)
	assert.Equal(t, map[string]int{"PreCommands": 1}, s.ByIsolationReason)
	assert.Equal(t, []string{"c/c.ilproj"}, s.WithoutEntryPoints)

	var out bytes.Buffer
	NewFormatter(&out).PrintStats(s)
	text := out.String()
	assert.Contains(t, text, "Test Corpus Statistics")
	assert.Contains(t, text, "│ With entry point                │ 2")
	assert.Contains(t, text, "├── cs")
	assert.Contains(t, text, "└── il")
	assert.Contains(t, text, "full/false")
}

func TestPrintDupes(t *testing.T) {
	projects := corpus(t)
	ix := index.Build(projects, nil, diag.Discard())

	var out bytes.Buffer
	NewFormatter(&out).PrintDupes(ix, index.NewContentCache(0, diag.Discard()))
	text := out.String()

	assert.Contains(t, text, "Found 1 duplicate class name(s):")
	assert.Contains(t, text, "└── Program (2)")
	assert.Contains(t, text, "#Program [full/false]")
	assert.Contains(t, text, "a/a.csproj -> Test_test_a\n")
	assert.Contains(t, text, "b/b.csproj -> Test_test_b [identical to a/a.csproj]\n")
}

func TestPrintDupes_None(t *testing.T) {
	ix := index.Build(corpus(t)[:1], nil, diag.Discard())
	var out bytes.Buffer
	NewFormatter(&out).PrintDupes(ix, nil)
	assert.Contains(t, out.String(), "No duplicate test classes found")
}

func TestFormatProjectDetails(t *testing.T) {
	projects := corpus(t)
	p := projects[0]
	p.Source.TestClassLine = 2
	p.Source.LastMainMethodLine = 4
	p.DeduplicatedNamespaceName = "Test_test_a"

	details := formatProjectDetails(p)
	assert.Contains(t, details, "Program (line 3)")
	assert.Contains(t, details, "Main (lines 1-5)")
	assert.Contains(t, details, "Planned renames")
	assert.Contains(t, details, "Test_test_a")
	assert.Contains(t, listItemText(0, p), "[red]")

	none := formatProjectDetails(projects[2])
	assert.Contains(t, none, "No entry point found in 0 compiled file(s)")
	assert.Contains(t, none, "PreCommands")
	assert.Contains(t, listItemText(2, projects[2]), "[gray]")

	assert.Equal(t, []*domain.Project{p}, filterProjects(projects, true))
	assert.Len(t, filterProjects(projects, false), 3)
}
