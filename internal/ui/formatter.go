package ui

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/fatih/color"

	"iltransform/internal/domain"
	"iltransform/internal/index"
)

// Formatter formats and displays reports
type Formatter struct {
	out io.Writer
}

// NewFormatter creates a new Formatter writing to out (stdout when nil)
func NewFormatter(out io.Writer) *Formatter {
	if out == nil {
		out = os.Stdout
	}
	return &Formatter{out: out}
}

// Stats holds the corpus counters shown by the stats report
type Stats struct {
	Total              int
	WithEntryPoint     int
	WithFact           int
	WithExit           int
	RequireIsolation   int
	SharedFiles        int
	DuplicateNames     int
	DuplicateGroups    int
	ByDialect          map[string]int
	ByConfig           map[domain.DebugOptimize]int
	ByOutputType       map[string]int
	ByIsolationReason  map[string]int
	WithoutEntryPoints []string
}

// ComputeStats counts the facts of the scanned projects; ix may be nil
func ComputeStats(projects []*domain.Project, ix *index.Index) *Stats {
	s := &Stats{
		Total:             len(projects),
		ByDialect:         make(map[string]int),
		ByConfig:          make(map[domain.DebugOptimize]int),
		ByOutputType:      make(map[string]int),
		ByIsolationReason: make(map[string]int),
	}
	for _, p := range projects {
		s.ByDialect[p.Dialect().String()]++
		s.ByConfig[p.DebugOptimize]++
		s.ByOutputType[p.OutputType]++
		for _, reason := range p.IsolationReasons {
			s.ByIsolationReason[reason]++
		}
		if p.RequiresProcessIsolation() {
			s.RequireIsolation++
		}
		if !p.Source.HasEntryPoint() {
			s.WithoutEntryPoints = append(s.WithoutEntryPoints, p.RelativePath)
			continue
		}
		s.WithEntryPoint++
		if p.Source.HasFactAttribute {
			s.WithFact++
		}
		if p.Source.HasExit {
			s.WithExit++
		}
	}
	if ix != nil {
		s.SharedFiles = len(ix.SharedFiles)
		s.DuplicateNames = len(ix.DuplicateClassNames())
		s.DuplicateGroups = len(ix.DuplicateGroups())
	}
	return s
}

func (f *Formatter) row(label string, value any, c *color.Color) {
	fmt.Fprintf(f.out, "│ %-31s │ %s │\n", label, c.Sprintf("%-27v", value))
}

func (f *Formatter) separator() {
	fmt.Fprintln(f.out, "├─────────────────────────────────┼─────────────────────────────┤")
}

// PrintStats displays the corpus statistics table followed by the breakdowns
func (f *Formatter) PrintStats(s *Stats) {
	white := color.New(color.FgWhite)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed)

	fmt.Fprintln(f.out)
	fmt.Fprintln(f.out, color.CyanString("╔═══════════════════════════════════════════════════════════════╗"))
	fmt.Fprintln(f.out, color.CyanString("║                      Test Corpus Statistics                   ║"))
	fmt.Fprintln(f.out, color.CyanString("╚═══════════════════════════════════════════════════════════════╝"))
	fmt.Fprintln(f.out, "┌─────────────────────────────────┬─────────────────────────────┐")

	f.row("Projects", s.Total, white)
	f.separator()
	f.row("With entry point", s.WithEntryPoint, green)
	f.separator()
	f.row("Without entry point", len(s.WithoutEntryPoints), yellow)
	f.separator()
	f.row("With test attribute", s.WithFact, green)
	f.separator()
	f.row("Calling process exit", s.WithExit, yellow)
	f.separator()
	f.row("Requiring process isolation", s.RequireIsolation, yellow)
	f.separator()
	f.row("Shared compiled files", s.SharedFiles, white)
	f.separator()
	f.row("Duplicate class names", s.DuplicateNames, red)
	f.separator()
	f.row("Groups to deduplicate", s.DuplicateGroups, red)
	fmt.Fprintln(f.out, "└─────────────────────────────────┴─────────────────────────────┘")

	f.printCounts("By dialect", s.ByDialect)
	f.printCounts("By output type", s.ByOutputType)
	f.printCounts("Isolation reasons", s.ByIsolationReason)

	configs := make([]domain.DebugOptimize, 0, len(s.ByConfig))
	for c := range s.ByConfig {
		configs = append(configs, c)
	}
	sort.Slice(configs, func(i, j int) bool { return configs[i].Less(configs[j]) })
	fmt.Fprintln(f.out)
	fmt.Fprintln(f.out, color.CyanString("By debug/optimize"))
	for i, c := range configs {
		fmt.Fprintf(f.out, "%s%-20s %d\n", branch(i, len(configs)), c, s.ByConfig[c])
	}
}

func (f *Formatter) printCounts(title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintln(f.out)
	fmt.Fprintln(f.out, color.CyanString(title))
	for i, k := range keys {
		fmt.Fprintf(f.out, "%s%-20s %d\n", branch(i, len(keys)), k, counts[k])
	}
}

func branch(i, n int) string {
	if i == n-1 {
		return "└── "
	}
	return "├── "
}

// PrintDupes lists the duplicate class names and every group that needs
// disambiguation with the name each member would get. Members whose sources
// match an earlier member of the same group are marked identical.
func (f *Formatter) PrintDupes(ix *index.Index, cache *index.ContentCache) {
	names := ix.DuplicateClassNames()
	groups := ix.DuplicateGroups()
	if len(names) == 0 && len(groups) == 0 {
		fmt.Fprintln(f.out, color.GreenString("✓ No duplicate test classes found!"))
		return
	}

	fmt.Fprintln(f.out, color.GreenString("Found %d duplicate class name(s):", len(names)))
	fmt.Fprintln(f.out)
	for i, name := range names {
		ps := ix.ByClass[name]
		fmt.Fprintln(f.out, color.CyanString("%s%s (%d)", branch(i, len(names)), name, len(ps)))
		for j, p := range ps {
			prefix := "│   "
			if i == len(names)-1 {
				prefix = "    "
			}
			fmt.Fprintf(f.out, "%s%s%s\n", prefix, branch(j, len(ps)), p.DisplayName())
		}
	}

	fmt.Fprintln(f.out)
	fmt.Fprintln(f.out, color.GreenString("Found %d group(s) to deduplicate:", len(groups)))
	fmt.Fprintln(f.out)
	for i, g := range groups {
		header := fmt.Sprintf("%s%s [%s]", branch(i, len(groups)), g.Key, g.Config)
		if g.Common {
			header += color.YellowString(" (common name)")
		}
		fmt.Fprintln(f.out, color.CyanString("%s", header))

		prefix := "│   "
		if i == len(groups)-1 {
			prefix = "    "
		}
		for j, p := range g.Projects {
			line := fmt.Sprintf("%s%s%s -> %s", prefix, branch(j, len(g.Projects)), p.DisplayName(),
				color.YellowString(ix.DeduplicatedName(g, p)))
			if cache != nil {
				for _, earlier := range g.Projects[:j] {
					if cache.HasSameContent(earlier, p) {
						line += " " + color.RedString("[identical to %s]", earlier.DisplayName())
						break
					}
				}
			}
			fmt.Fprintln(f.out, line)
		}
	}
}
