package rewrite

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"iltransform/internal/diag"
	"iltransform/internal/domain"
	"iltransform/internal/textio"
)

const isolationProperty = "<RequiresProcessIsolation>true</RequiresProcessIsolation>"

var (
	propertyGroupOpen  = regexp.MustCompile(`^\s*<PropertyGroup(?:\s[^>]*)?>\s*$`)
	propertyGroupClose = regexp.MustCompile(`^\s*</PropertyGroup>\s*$`)
	outputTypeExe      = regexp.MustCompile(`(?i)^\s*<OutputType>\s*Exe\s*</OutputType>\s*$`)
	includeAttr        = regexp.MustCompile(`(Include\s*=\s*")([^"]*)(")`)
)

// RewriteProject applies the descriptor edits for p
func (r *Rewriter) RewriteProject(p *domain.Project) (bool, error) {
	if !r.ctx.MarkRewritten(p.AbsolutePath) {
		return false, nil
	}
	file, err := textio.Read(p.AbsolutePath)
	if err != nil {
		return false, err
	}
	original := file.String()
	log := r.log.WithFields(diag.F("file", p.RelativePath))

	if r.opts.AddProcessIsolation && p.RequiresProcessIsolation() {
		if added, ok := addIsolationMarker(file); !ok {
			log.Warn("no property group for the isolation marker")
		} else if added {
			log.Debug("isolation marker added", diag.F("reasons", strings.Join(p.IsolationReasons, ",")))
		}
	}
	if r.opts.AddFactAttributes && p.Source.HasEntryPoint() {
		removeExeOutputType(file)
	}
	if target, ok := r.ctx.MovedTo(p.Source.TestClassSourceFile); ok {
		renameCompileInclude(file, p.Source.TestClassSourceFile, target)
	} else {
		p.NewTestClassSourceFile = ""
	}

	if file.String() == original {
		return false, nil
	}
	if err := r.ctx.Commit(file, original); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", p.AbsolutePath, err)
	}
	return true, nil
}

// addIsolationMarker inserts the isolation property as the first child of
// the first property group. ok is false when there is no property group.
func addIsolationMarker(file *textio.File) (added, ok bool) {
	for _, line := range file.Lines {
		if strings.Contains(line, "<RequiresProcessIsolation>") {
			return false, true
		}
	}
	for i, line := range file.Lines {
		if !propertyGroupOpen.MatchString(line) {
			continue
		}
		indent := textio.Indent(line) + "  "
		if i+1 < len(file.Lines) {
			next := file.Lines[i+1]
			if !textio.IsBlank(next) && !propertyGroupClose.MatchString(next) {
				indent = textio.Indent(next)
			}
		}
		file.Lines = append(file.Lines[:i+1], append([]string{indent + isolationProperty}, file.Lines[i+1:]...)...)
		return true, true
	}
	return false, false
}

// removeExeOutputType drops OutputType=Exe lines and the property groups they leave empty
func removeExeOutputType(file *textio.File) bool {
	var kept []string
	removed := false
	for _, line := range file.Lines {
		if outputTypeExe.MatchString(line) {
			removed = true
			continue
		}
		kept = append(kept, line)
	}
	if !removed {
		return false
	}

	var out []string
	for i := 0; i < len(kept); i++ {
		if propertyGroupOpen.MatchString(kept[i]) && i+1 < len(kept) && propertyGroupClose.MatchString(kept[i+1]) {
			i++
			continue
		}
		out = append(out, kept[i])
	}
	file.Lines = out
	return true
}

// renameCompileInclude points Include items naming the old source file at the new one
func renameCompileInclude(file *textio.File, oldPath, newPath string) bool {
	oldName, newName := filepath.Base(oldPath), filepath.Base(newPath)
	changed := false
	for i, line := range file.Lines {
		if !strings.Contains(line, oldName) {
			continue
		}
		out := includeAttr.ReplaceAllStringFunc(line, func(attr string) string {
			m := includeAttr.FindStringSubmatch(attr)
			items := strings.Split(m[2], ";")
			for k, item := range items {
				sep := strings.LastIndexAny(item, `/\`)
				if item[sep+1:] == oldName {
					items[k] = item[:sep+1] + newName
				}
			}
			return m[1] + strings.Join(items, ";") + m[3]
		})
		if out != line {
			file.Lines[i] = out
			changed = true
		}
	}
	return changed
}
