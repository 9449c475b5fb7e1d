package typesystem

import (
	"strings"

	"github.com/funvibe/tycheck/internal/config"
)

// ModuleReference identifies a module by its path segments. It is comparable and can be
// used directly as a map key.
type ModuleReference struct {
	path string
}

// Root holds the builtin classes. Its segment is not a valid identifier, so no import
// can refer to it.
var Root = ModuleReference{path: config.RootModuleName}

func NewModuleReference(parts ...string) ModuleReference {
	return ModuleReference{path: strings.Join(parts, ".")}
}

// ParseModuleReference splits a dotted module path.
func ParseModuleReference(dotted string) ModuleReference {
	return ModuleReference{path: dotted}
}

func (m ModuleReference) Parts() []string {
	if m.path == "" {
		return nil
	}
	return strings.Split(m.path, ".")
}

func (m ModuleReference) String() string { return m.path }

func (m ModuleReference) IsRoot() bool { return m == Root }

// Compare orders module references by their dotted path.
func (m ModuleReference) Compare(other ModuleReference) int {
	return strings.Compare(m.path, other.path)
}

// FileName is the file name used when rendering diagnostics, e.g. "A/B.ty".
func (m ModuleReference) FileName() string {
	return strings.Join(m.Parts(), "/") + config.DiagnosticFileExt
}
