package reversal

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
)

// Manifest lists the files a recursive copy installs, so the planner can
// remove exactly those files instead of the whole destination tree.
type Manifest interface {
	// Files returns the paths under source, relative to it, using
	// backslashes. Directories are listed with a trailing backslash.
	Files(source string) ([]string, error)
}

// DirManifest lists files by walking source directories on the build
// machine, relative to Base.
type DirManifest struct {
	Base string
}

// Files implements Manifest.
func (m DirManifest) Files(source string) ([]string, error) {
	root := source
	if !filepath.IsAbs(root) && m.Base != "" {
		root = filepath.Join(m.Base, root)
	}
	var out []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == root {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = strings.ReplaceAll(filepath.ToSlash(rel), "/", `\`)
		if d.IsDir() {
			rel += `\`
		}
		out = append(out, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", root, err)
	}
	slices.Sort(out)
	return out, nil
}

// StaticManifest maps a source to a fixed file list.
type StaticManifest map[string][]string

// Files implements Manifest.
func (m StaticManifest) Files(source string) ([]string, error) {
	files, ok := m[source]
	if !ok {
		return nil, fmt.Errorf("no manifest for %s", source)
	}
	return slices.Clone(files), nil
}
