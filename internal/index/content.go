package index

import (
	"os"
	"path/filepath"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"

	"iltransform/internal/diag"
	"iltransform/internal/domain"
)

// DefaultContentCacheSize bounds how many source files are kept in memory
const DefaultContentCacheSize = 4096

// ContentCache memoizes source file contents for repeated comparisons
type ContentCache struct {
	files *lru.Cache[string, string]
	log   diag.Logger
}

// NewContentCache creates a cache holding at most size files
func NewContentCache(size int, log diag.Logger) *ContentCache {
	if size <= 0 {
		size = DefaultContentCacheSize
	}
	files, _ := lru.New[string, string](size)
	return &ContentCache{files: files, log: log}
}

// Read returns the content of path, from the cache when possible
func (c *ContentCache) Read(path string) (string, error) {
	if content, ok := c.files.Get(path); ok {
		return content, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	content := string(data)
	c.files.Add(path, content)
	return content, nil
}

// HasSameContent reports whether two projects build the same thing: the same
// compiled sources byte for byte, the same ordered project references and the
// same DefineConstants. Unreadable files are logged and compare unequal.
func (c *ContentCache) HasSameContent(a, b *domain.Project) bool {
	if a.Property("DefineConstants") != b.Property("DefineConstants") {
		return false
	}
	if !slices.EqualFunc(a.ProjectReferences, b.ProjectReferences, func(x, y string) bool {
		return filepath.Clean(x) == filepath.Clean(y)
	}) {
		return false
	}
	if len(a.CompileFiles) != len(b.CompileFiles) {
		return false
	}
	for i := range a.CompileFiles {
		fa, fb := a.CompileFiles[i], b.CompileFiles[i]
		if fa == fb {
			continue
		}
		ca, err := c.Read(fa)
		if err != nil {
			c.log.Warn("cannot compare", diag.F("file", fa), diag.F("error", err))
			return false
		}
		cb, err := c.Read(fb)
		if err != nil {
			c.log.Warn("cannot compare", diag.F("file", fb), diag.F("error", err))
			return false
		}
		if ca != cb {
			return false
		}
	}
	return true
}
