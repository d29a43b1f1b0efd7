package catalog

import (
	"fmt"
	"path"
	"strings"

	"github.com/sdejongh/aisync/pkg/models"
)

// Filter returns a catalog holding the mappings matched by at least one
// include pattern (every mapping when include is empty) and by no exclude
// pattern. Order is preserved. Patterns support:
//   - Simple glob patterns on the last element: *.json, AGENTS.md
//   - Directory patterns: .claude/ selects everything below .claude
//   - Path patterns: .gemini/*, Cline/Rules/
//   - Any depth: **/settings.json
func (c *Catalog) Filter(include, exclude []string) (*Catalog, error) {
	for _, p := range append(append([]string{}, include...), exclude...) {
		if _, err := path.Match(strings.TrimSuffix(strings.TrimPrefix(p, "**/"), "/"), ""); err != nil {
			return nil, &models.ValidationError{Field: "pattern", Message: fmt.Sprintf("invalid pattern %q: %v", p, err)}
		}
	}

	var kept []models.FileMapping
	for _, m := range c.mappings {
		if len(include) > 0 && !matchAny(m.RelativePath, include) {
			continue
		}
		if matchAny(m.RelativePath, exclude) {
			continue
		}
		kept = append(kept, m)
	}
	return &Catalog{mappings: kept}, nil
}

func matchAny(relativePath string, patterns []string) bool {
	for _, p := range patterns {
		if matchPattern(relativePath, p) {
			return true
		}
	}
	return false
}

// matchPattern checks one mapping path against one pattern
func matchPattern(relativePath, pattern string) bool {
	if pattern == "" {
		return false
	}
	// Directory mappings end with "/" in the catalog; compare without it
	p := strings.TrimSuffix(relativePath, "/")
	baseName := path.Base(p)

	// Directory pattern: the directory itself or anything below it
	if strings.HasSuffix(pattern, "/") {
		dir := strings.TrimSuffix(pattern, "/")
		return p == dir ||
			strings.HasPrefix(p, dir+"/") ||
			strings.HasSuffix(p, "/"+dir) ||
			strings.Contains(p, "/"+dir+"/") ||
			matchGlob(dir, p)
	}

	// **/pattern matches at any depth
	if suffix, ok := strings.CutPrefix(pattern, "**/"); ok {
		if matchGlob(suffix, baseName) || p == suffix || strings.HasSuffix(p, "/"+suffix) {
			return true
		}
		return matchGlob(suffix, p)
	}

	if strings.Contains(pattern, "/") {
		return matchGlob(pattern, p)
	}
	return matchGlob(pattern, baseName)
}

func matchGlob(pattern, name string) bool {
	matched, _ := path.Match(pattern, name)
	return matched
}
