package rewrite

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/pmezard/go-difflib/difflib"

	"iltransform/internal/diag"
	"iltransform/internal/textio"
)

// Context is the state shared by every project of one rewrite run: the set
// of physical files already rewritten and the rename claims on shared files.
// All methods are safe for concurrent use.
type Context struct {
	dryRun bool
	diff   io.Writer
	log    diag.Logger

	mu        sync.Mutex
	rewritten map[string]bool
	claims    map[string]string
	targets   map[string]string
	moved     map[string]string
	written   int
	conflicts int
}

// NewContext creates a run context. In dry-run mode nothing is written and
// unified diffs are printed to diff instead.
func NewContext(dryRun bool, diff io.Writer, log diag.Logger) *Context {
	if diff == nil {
		diff = os.Stdout
	}
	return &Context{
		dryRun:    dryRun,
		diff:      diff,
		log:       log,
		rewritten: make(map[string]bool),
		claims:    make(map[string]string),
		targets:   make(map[string]string),
		moved:     make(map[string]string),
	}
}

// MarkRewritten records path as rewritten and reports whether this call was
// the first to do so. Check and insert happen under one lock.
func (c *Context) MarkRewritten(path string) bool {
	key := filepath.Clean(path)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rewritten[key] {
		return false
	}
	c.rewritten[key] = true
	return true
}

// Claim requests that path be renamed to target. The first claim on a path
// wins; a later claim for a different target, or for a target another file
// already claimed, is logged and refused.
func (c *Context) Claim(path, target, requester string) bool {
	key := filepath.Clean(path)
	target = filepath.Clean(target)
	c.mu.Lock()
	defer c.mu.Unlock()
	if prev, ok := c.claims[key]; ok {
		if prev == target {
			return true
		}
		c.conflicts++
		c.log.Warn("conflicting rename of shared file ignored",
			diag.F("file", path), diag.F("kept", prev), diag.F("requested", target), diag.F("project", requester))
		return false
	}
	if owner, ok := c.targets[target]; ok {
		c.conflicts++
		c.log.Warn("rename target already claimed",
			diag.F("file", path), diag.F("target", target), diag.F("owner", owner), diag.F("project", requester))
		return false
	}
	c.claims[key] = target
	c.targets[target] = key
	return true
}

// Target returns the claimed new path of a file
func (c *Context) Target(path string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	target, ok := c.claims[filepath.Clean(path)]
	return target, ok
}

// Commit writes the file, or prints its diff against original in dry-run mode
func (c *Context) Commit(f *textio.File, original string) error {
	updated := f.String()
	if updated == original {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.written++

	if c.dryRun {
		diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(original),
			B:        difflib.SplitLines(updated),
			FromFile: f.Path,
			ToFile:   f.Path,
			Context:  3,
		})
		if err != nil {
			return fmt.Errorf("diff %s: %w", f.Path, err)
		}
		_, err = io.WriteString(c.diff, diff)
		return err
	}
	return f.Write()
}

// Move renames a file on disk, or reports the move in dry-run mode. Only a
// successful move is recorded for MovedTo.
func (c *Context) Move(from, to string) error {
	if c.dryRun {
		c.mu.Lock()
		defer c.mu.Unlock()
		if _, err := fmt.Fprintf(c.diff, "rename %s => %s\n", from, to); err != nil {
			return err
		}
		c.moved[filepath.Clean(from)] = filepath.Clean(to)
		return nil
	}
	if _, err := os.Stat(to); err == nil {
		return fmt.Errorf("rename %s: %s already exists", from, to)
	}
	if err := os.Rename(from, to); err != nil {
		return fmt.Errorf("rename %s: %w", from, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.moved[filepath.Clean(from)] = filepath.Clean(to)
	return nil
}

// MovedTo returns where path was moved during this run
func (c *Context) MovedTo(path string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	target, ok := c.moved[filepath.Clean(path)]
	return target, ok
}

// Written returns how many files were changed (or would be, in dry-run mode)
func (c *Context) Written() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.written
}

// Conflicts returns how many rename claims were refused
func (c *Context) Conflicts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conflicts
}
