package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"iltransform/internal/domain"
)

// ProjectViewer browses the projects of a snapshot in an interactive TUI
type ProjectViewer struct{}

// NewProjectViewer creates a new ProjectViewer
func NewProjectViewer() *ProjectViewer {
	return &ProjectViewer{}
}

// flagged reports whether a rewrite would rename anything in p
func flagged(p *domain.Project) bool {
	return p.DeduplicatedNamespaceName != "" || p.DeduplicatedClassName != "" || p.NewTestClassSourceFile != ""
}

// View displays the projects of the snapshot. Projects the rewrite would
// rename are highlighted; D toggles showing only those.
func (pv *ProjectViewer) View(snapshot *domain.Snapshot) error {
	if len(snapshot.Projects) == 0 {
		color.Yellow("No projects in the last scan.")
		return nil
	}

	app := tview.NewApplication()
	onlyFlagged := false
	var shown []*domain.Project

	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)
	list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan).
		SetSecondaryTextColor(tview.Styles.SecondaryTextColor)

	statsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false).
		SetWordWrap(false)

	detailsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)

	detailsContainer := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(detailsView, 0, 1, false).
		AddItem(tview.NewBox(), 2, 0, false)

	rightSide := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(statsView, 3, 0, false).
		AddItem(detailsContainer, 0, 1, false)

	flex := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(list, 0, 1, true).
		AddItem(rightSide, 0, 2, false)

	headerView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true)

	updateHeader := func() {
		mode := "all"
		if onlyFlagged {
			mode = "to rewrite"
		}
		headerView.SetText(fmt.Sprintf(" Projects (%d shown, %s) | Use ↑↓ to navigate, [yellow]D[white] to toggle projects to rewrite, → to view details, ← to go back, Ctrl+C to exit ",
			len(shown), mode))
	}

	updateDetails := func() {
		index := list.GetCurrentItem()
		if index < 0 || index >= len(shown) {
			statsView.SetText("")
			detailsView.SetText("")
			return
		}
		statsView.SetText(formatProjectStats(shown[index]))
		detailsView.SetText(formatProjectDetails(shown[index]))
	}

	fill := func() {
		list.Clear()
		shown = filterProjects(snapshot.Projects, onlyFlagged)
		for i, p := range shown {
			list.AddItem(listItemText(i, p), "", 0, nil)
		}
		updateHeader()
		updateDetails()
	}

	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyUp, tcell.KeyDown:
			return event
		case tcell.KeyEnter, tcell.KeyRight:
			app.SetFocus(detailsView)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		case tcell.KeyRune:
			if event.Rune() == 'd' || event.Rune() == 'D' {
				onlyFlagged = !onlyFlagged
				fill()
				return nil
			}
		}
		return event
	})

	detailsView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyEsc:
			app.SetFocus(list)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		}
		return event
	})

	list.SetChangedFunc(func(index int, mainText string, secondaryText string, shortcut rune) {
		updateDetails()
	})

	fill()

	mainLayout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerView, 1, 0, false).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(flex, 0, 1, true)

	if err := app.SetRoot(mainLayout, true).SetFocus(list).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func filterProjects(projects []*domain.Project, onlyFlagged bool) []*domain.Project {
	if !onlyFlagged {
		return projects
	}
	var out []*domain.Project
	for _, p := range projects {
		if flagged(p) {
			out = append(out, p)
		}
	}
	return out
}

// listItemText formats a list entry using tview color tags
func listItemText(index int, p *domain.Project) string {
	switch {
	case flagged(p):
		return fmt.Sprintf("[yellow]%d.[red] %s[white]", index+1, p.DisplayName())
	case !p.Source.HasEntryPoint():
		return fmt.Sprintf("[yellow]%d.[gray] %s[white]", index+1, p.DisplayName())
	default:
		return fmt.Sprintf("[yellow]%d.[white] %s", index+1, p.DisplayName())
	}
}

func formatProjectStats(p *domain.Project) string {
	class := p.Source.TestClassName
	if class == "" {
		class = "no test class"
	}
	return fmt.Sprintf("[cyan]path:[white] [yellow]%s[white]::[yellow]%s[white]\n", p.RelativePath, class)
}

func lineText(l domain.Line) string {
	if !l.Found() {
		return "-"
	}
	return fmt.Sprint(int(l) + 1)
}

// formatProjectDetails formats the facts of a project for display using tview color tags
func formatProjectDetails(p *domain.Project) string {
	var builder strings.Builder
	w := tabwriter.NewWriter(&builder, 0, 0, 2, ' ', 0)
	s := p.Source

	fmt.Fprintf(w, "[cyan]Descriptor:[white]\t%s\n", p.RelativePath)
	fmt.Fprintf(w, "[cyan]Configuration:[white]\t%s\n", p.DebugOptimize)
	fmt.Fprintf(w, "[cyan]Output type:[white]\t%s\n", p.OutputType)
	if len(p.IsolationReasons) > 0 {
		fmt.Fprintf(w, "[yellow]Isolation:[white]\t%s\n", strings.Join(p.IsolationReasons, ", "))
	}
	fmt.Fprintf(w, "\n")

	if !s.HasEntryPoint() {
		fmt.Fprintf(w, "[gray]No entry point found in %d compiled file(s)[white]\n", len(p.CompileFiles))
		w.Flush()
		return builder.String()
	}

	fmt.Fprintf(w, "[cyan]Source:[white]\t%s\n", filepath.Base(s.TestClassSourceFile))
	fmt.Fprintf(w, "[cyan]Class:[white]\t%s (line %s)\n", s.TestClassName, lineText(s.TestClassLine))
	if len(s.TestClassBases) > 0 {
		fmt.Fprintf(w, "[cyan]Bases:[white]\t%s\n", strings.Join(s.TestClassBases, ", "))
	}
	fmt.Fprintf(w, "[cyan]Entry point:[white]\t%s (lines %s-%s)\n", s.MainMethodName,
		lineText(s.FirstMainMethodLine), lineText(s.LastMainMethodLine))
	fmt.Fprintf(w, "[cyan]Test attribute:[white]\t%t\n", s.HasFactAttribute)
	fmt.Fprintf(w, "[cyan]Exit call:[white]\t%t\n", s.HasExit)

	if flagged(p) {
		fmt.Fprintf(w, "\n[yellow]Planned renames:[white]\n")
		if p.DeduplicatedNamespaceName != "" {
			fmt.Fprintf(w, "  namespace\t%s\n", p.DeduplicatedNamespaceName)
		}
		if p.DeduplicatedClassName != "" {
			fmt.Fprintf(w, "  class\t%s\n", p.DeduplicatedClassName)
		}
		if p.NewTestClassSourceFile != "" {
			fmt.Fprintf(w, "  source\t%s\n", filepath.Base(p.NewTestClassSourceFile))
		}
	}

	w.Flush()
	return builder.String()
}
