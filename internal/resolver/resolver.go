// Package resolver maps a module identifier to an on-disk entry file.
package resolver

import (
	"os"
	"path/filepath"
	"strings"

	"hype/internal/errs"
	"hype/internal/manifest"
)

const modulesDirName = "hype_modules"

// Result is what the resolver hands back to the loader.
type Result struct {
	// BuiltinName is set (and Filename empty) when id resolved to a built-in.
	BuiltinName string
	// Filename is the absolute, normalized entry-file path for a non-builtin
	// resolution. This is also the canonical cache key.
	Filename string
}

// IsBuiltin reports whether name is among the known built-in module names.
type IsBuiltin func(name string) bool

// Resolver resolves module identifiers against the filesystem.
type Resolver struct {
	isBuiltin IsBuiltin
	homeDir   string // overridable for tests; defaults to os.UserHomeDir()
}

func New(isBuiltin IsBuiltin) *Resolver {
	home, _ := os.UserHomeDir()
	return &Resolver{isBuiltin: isBuiltin, homeDir: home}
}

// WithHomeDir overrides $HOME, for tests.
func (r *Resolver) WithHomeDir(dir string) *Resolver {
	clone := *r
	clone.homeDir = dir
	return &clone
}

// Resolve maps id to a built-in name or an absolute entry-file path,
// checking built-ins, relative/absolute paths, ancestor hype_modules
// directories (nearest first), and finally $HOME/.hype/modules.
// from is the absolute directory of the requiring module.
func (r *Resolver) Resolve(id, from string) (Result, error) {
	if strings.IndexByte(id, 0) >= 0 {
		return Result{}, errs.New(errs.InvalidPath, "module id %q contains a null byte", id)
	}

	if r.isBuiltin != nil && r.isBuiltin(id) && !looksLikePath(id) {
		return Result{BuiltinName: id}, nil
	}

	var probed []string

	if looksLikePath(id) {
		base := id
		if !filepath.IsAbs(id) {
			base = filepath.Join(from, id)
		}
		base = lexicalClean(base)
		if f, ok := tryEntryCandidates(base, &probed); ok {
			return Result{Filename: f}, nil
		}
		return Result{}, notFound(id, probed)
	}

	// Package lookup: walk upward from `from`, current level before ancestors.
	dir := from
	for {
		candidateDir := filepath.Join(dir, modulesDirName, id)
		manifestPath := filepath.Join(candidateDir, "hype.json")
		probed = append(probed, manifestPath)
		if data, err := os.ReadFile(manifestPath); err == nil {
			if f, err := entryFromManifest(candidateDir, data); err == nil {
				if resolved, ok := resolveIfExists(f, &probed); ok {
					return Result{Filename: resolved}, nil
				}
			}
		} else if fi, statErr := os.Stat(candidateDir); statErr == nil && fi.IsDir() {
			// Directory exists without a manifest: fall back to index.lua.
			idx := filepath.Join(candidateDir, manifest.DefaultMain)
			probed = append(probed, idx)
			if resolved, ok := resolveIfExists(idx, &probed); ok {
				return Result{Filename: resolved}, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	// Home lookup.
	if r.homeDir != "" {
		candidateDir := filepath.Join(r.homeDir, ".hype", "modules", id)
		manifestPath := filepath.Join(candidateDir, "hype.json")
		probed = append(probed, manifestPath)
		if data, err := os.ReadFile(manifestPath); err == nil {
			if f, err := entryFromManifest(candidateDir, data); err == nil {
				if resolved, ok := resolveIfExists(f, &probed); ok {
					return Result{Filename: resolved}, nil
				}
			}
		} else if fi, statErr := os.Stat(candidateDir); statErr == nil && fi.IsDir() {
			idx := filepath.Join(candidateDir, manifest.DefaultMain)
			if resolved, ok := resolveIfExists(idx, &probed); ok {
				return Result{Filename: resolved}, nil
			}
		}
	}

	if r.isBuiltin != nil && r.isBuiltin(id) {
		return Result{BuiltinName: id}, nil
	}

	return Result{}, notFound(id, probed)
}

func looksLikePath(id string) bool {
	return strings.HasPrefix(id, "./") || strings.HasPrefix(id, "../") || strings.HasPrefix(id, "/")
}

// tryEntryCandidates implements step 2's "try P; P.lua; P/<main>" sequence.
func tryEntryCandidates(base string, probed *[]string) (string, bool) {
	*probed = append(*probed, base)
	if fi, err := os.Stat(base); err == nil && !fi.IsDir() {
		return base, true
	}

	withExt := base + ".lua"
	*probed = append(*probed, withExt)
	if fi, err := os.Stat(withExt); err == nil && !fi.IsDir() {
		return withExt, true
	}

	mainFile := filepath.Join(base, manifest.DefaultMain)
	manifestPath := filepath.Join(base, "hype.json")
	*probed = append(*probed, manifestPath)
	if data, err := os.ReadFile(manifestPath); err == nil {
		if f, err := entryFromManifest(base, data); err == nil {
			mainFile = f
		}
	}
	*probed = append(*probed, mainFile)
	if fi, err := os.Stat(mainFile); err == nil && !fi.IsDir() {
		return mainFile, true
	}

	return "", false
}

func entryFromManifest(dir string, data []byte) (string, error) {
	m, err := manifest.Parse(data)
	if err != nil {
		return "", err
	}
	main := m.Main
	if main == "" {
		main = manifest.DefaultMain
	}
	return filepath.Join(dir, main), nil
}

func resolveIfExists(path string, probed *[]string) (string, bool) {
	*probed = append(*probed, path)
	if fi, err := os.Stat(path); err == nil && !fi.IsDir() {
		return lexicalClean(path), true
	}
	return "", false
}

func notFound(id string, probed []string) error {
	return errs.New(errs.ModuleNotFound, "cannot find module %q\nSearched:\n  %s", id, strings.Join(probed, "\n  "))
}

// lexicalClean normalizes . and .. segments without following symlinks.
func lexicalClean(p string) string {
	return filepath.Clean(p)
}
