package forest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/funvibe/tycheck/internal/ast"
	"github.com/funvibe/tycheck/internal/config"
	"github.com/funvibe/tycheck/internal/typesystem"
	"golang.org/x/mod/module"
)

// sourceExtension returns the recognized module file extension of name, or "".
func sourceExtension(name string) string {
	for _, ext := range config.SourceFileExtensions {
		if strings.HasSuffix(name, ext) {
			return ext
		}
	}
	return ""
}

// ParseModulePath parses a dotted module path such as `A.B`. Every segment must be an
// identifier and the path must also be usable as a file path.
func ParseModulePath(dotted string) (typesystem.ModuleReference, error) {
	return moduleReferenceOf(strings.Split(dotted, "."), dotted)
}

func moduleReferenceOf(parts []string, display string) (typesystem.ModuleReference, error) {
	for _, part := range parts {
		if !IsIdentifier(part) || part == config.RootModuleName {
			return typesystem.ModuleReference{}, fmt.Errorf("invalid module path %q: bad segment %q", display, part)
		}
	}
	if err := module.CheckFilePath(strings.Join(parts, "/")); err != nil {
		return typesystem.ModuleReference{}, fmt.Errorf("invalid module path %q: %w", display, err)
	}
	return typesystem.NewModuleReference(parts...), nil
}

// ModuleReferenceOf maps a module file path, relative to the source root, to its module:
// `A/B.ty.yaml` is module `A.B`.
func ModuleReferenceOf(relPath string) (typesystem.ModuleReference, error) {
	relPath = filepath.ToSlash(relPath)
	ext := sourceExtension(relPath)
	if ext == "" {
		return typesystem.ModuleReference{}, fmt.Errorf("%s: not a module file", relPath)
	}
	return moduleReferenceOf(strings.Split(strings.TrimSuffix(relPath, ext), "/"), relPath)
}

// DecodeFile decodes the module file at path, which must lie under root.
func DecodeFile(root, path string, data []byte) (*ast.Module, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	ref, err := ModuleReferenceOf(rel)
	if err != nil {
		return nil, err
	}
	return DecodeModule(ref, data)
}

// LoadForest decodes every module file under the configured source root. Hidden
// directories and excluded files are skipped. The first I/O or decoding error aborts.
func LoadForest(cfg *config.Config) (ast.Forest, error) {
	root := cfg.SourceRoot()
	forest := make(ast.Forest)
	origins := make(map[typesystem.ModuleReference]string)

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if path != root && strings.HasPrefix(entry.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if sourceExtension(entry.Name()) == "" {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if cfg.IsExcluded(rel) {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", rel, err)
		}
		module, err := DecodeFile(root, path, data)
		if err != nil {
			return fmt.Errorf("%s: %w", rel, err)
		}
		if other, exists := origins[module.Reference]; exists {
			return fmt.Errorf("module %s is defined by both %s and %s", module.Reference, other, rel)
		}
		origins[module.Reference] = rel
		forest[module.Reference] = module
		return nil
	})
	if err != nil {
		return nil, err
	}
	return forest, nil
}
