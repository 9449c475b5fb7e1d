package config

// Version is reported by `tycheck version`.
const Version = "0.3.0"

const SourceFileExt = ".ty.yaml"

// SourceFileExtensions are all recognized module tree file extensions
var SourceFileExtensions = []string{".ty.yaml", ".ty.yml", ".ty.json"}

// DiagnosticFileExt is appended to a module reference when rendering diagnostics.
const DiagnosticFileExt = ".ty"

// ConfigFileName is looked up in the working directory and its parents.
const ConfigFileName = "tycheck.yaml"

// IsTestMode makes undecided types render with their index.
var IsTestMode = false

// RootModuleName is the single segment of the builtin module reference.
// It can never be produced by an import because it is not a valid identifier.
const RootModuleName = "__root__"

// Built-in class and function names
const (
	BuiltinsClassName     = "Builtins"
	StringToIntFuncName   = "stringToInt"
	IntToStringFuncName   = "intToString"
	PrintlnFuncName       = "println"
	PanicFuncName         = "panic"
	PanicTypeParameter    = "T"
	ThisName              = "this"
	UnitVariableName      = "_"
	UndecidedTypeRendered = "__UNDECIDED__"
)

// Primitive type names
const (
	UnitTypeName   = "unit"
	BoolTypeName   = "bool"
	IntTypeName    = "int"
	StringTypeName = "string"
)
