package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// descriptorExtensions are the project descriptor kinds picked up by a scan
var descriptorExtensions = map[string]bool{
	".csproj": true,
	".ilproj": true,
}

// Scanner scans for project descriptors in a directory
type Scanner struct {
	skipDirs map[string]bool
}

// NewScanner creates a new Scanner with the given directories to skip
func NewScanner(skipDirs []string) *Scanner {
	skipMap := make(map[string]bool)
	for _, dir := range skipDirs {
		skipMap[dir] = true
	}
	return &Scanner{skipDirs: skipMap}
}

// Scan finds all project descriptors under root, sorted by path
func (s *Scanner) Scan(root string) ([]string, error) {
	var descriptors []string

	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("test path does not exist: %s", root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("test path is not a directory: %s", root)
	}

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			name := d.Name()
			// Skip hidden directories (starting with .)
			if path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if s.skipDirs[name] {
				return filepath.SkipDir
			}
			return nil
		}

		if descriptorExtensions[strings.ToLower(filepath.Ext(d.Name()))] {
			descriptors = append(descriptors, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(descriptors)
	return descriptors, nil
}
