// Package errors provides centralized error code definitions for BUSY.
// All error codes follow a consistent taxonomy grouped by pipeline phase,
// so a diagnostic's code alone identifies which stage raised it.
package errors

// Error code constants organized by phase.
const (
	// ============================================================================
	// Path errors (PTH###)
	// ============================================================================

	// PTH001 indicates a path construct this implementation does not support (~, UNC).
	PTH001 = "PTH001"

	// PTH002 indicates a malformed path (forbidden character, stray '.'/'..', trailing '/').
	PTH002 = "PTH002"

	// PTH003 indicates a destination buffer too small for a denormalized/joined path.
	PTH003 = "PTH003"

	// PTH004 indicates a vacuous path operation (e.g. make_relative with no common root).
	PTH004 = "PTH004"

	// ============================================================================
	// Lexical errors (LEX###)
	// ============================================================================

	// LEX001 indicates an unterminated string or quoted-path literal.
	LEX001 = "LEX001"

	// LEX002 indicates an unterminated block comment.
	LEX002 = "LEX002"

	// LEX003 indicates invalid UTF-8 in the source buffer.
	LEX003 = "LEX003"

	// LEX004 indicates a forbidden character inside a path literal.
	LEX004 = "LEX004"

	// LEX005 indicates an empty quoted path literal.
	LEX005 = "LEX005"

	// LEX006 indicates an identifier-concatenation '&' not flanked by identifiers.
	LEX006 = "LEX006"

	// LEX007 indicates the nested lexer-stack depth limit (20) was exceeded.
	LEX007 = "LEX007"

	// LEX008 indicates an unterminated macro argument list.
	LEX008 = "LEX008"

	// ============================================================================
	// Semantic errors (SEM###)
	// ============================================================================

	// SEM001 indicates a name already defined in the enclosing scope.
	SEM001 = "SEM001"

	// SEM002 indicates reference to an undefined identifier.
	SEM002 = "SEM002"

	// SEM003 indicates an operand of the wrong type for an operator or assignment.
	SEM003 = "SEM003"

	// SEM004 indicates access to a declaration whose visibility forbids the reference.
	SEM004 = "SEM004"

	// SEM005 indicates a list-of-list type, which is disallowed.
	SEM005 = "SEM005"

	// SEM006 indicates a class field typed as another class, which is disallowed.
	SEM006 = "SEM006"

	// SEM007 indicates a submodule include that recurses into an ancestor directory.
	SEM007 = "SEM007"

	// SEM008 indicates a parameter-table value incompatible with the declared type.
	SEM008 = "SEM008"

	// SEM009 indicates an external parameter supplied but never consulted by any
	// `param` declaration during the top-level parse.
	SEM009 = "SEM009"

	// SEM010 indicates assignment to a read-only ('let' or externally-visible 'param') variable.
	SEM010 = "SEM010"

	// SEM011 indicates a call to a built-in procedure with the wrong argument count or types.
	SEM011 = "SEM011"

	// ============================================================================
	// Resource / IO errors (RES###)
	// ============================================================================

	// RES001 indicates a submodule directory has no BUSY file and no 'else' fallback.
	RES001 = "RES001"

	// RES002 indicates a file could not be opened or read.
	RES002 = "RES002"

	// RES003 indicates a copy operation failed.
	RES003 = "RES003"

	// ============================================================================
	// Backend errors (BAK###)
	// ============================================================================

	// BAK001 indicates the backend cancelled the walk by returning non-zero from begin_op.
	BAK001 = "BAK001"

	// BAK002 indicates a user-requested error() builtin call.
	BAK002 = "BAK002"
)

// ErrorInfo provides structured information about an error code.
type ErrorInfo struct {
	Code        string
	Phase       string
	Category    string
	Description string
}

// Registry maps error codes to their information.
var Registry = map[string]ErrorInfo{
	PTH001: {PTH001, "path", "unsupported", "Path construct not supported"},
	PTH002: {PTH002, "path", "format", "Malformed path"},
	PTH003: {PTH003, "path", "space", "Destination too small"},
	PTH004: {PTH004, "path", "nop", "Vacuous path operation"},

	LEX001: {LEX001, "lexer", "syntax", "Unterminated string or quoted path"},
	LEX002: {LEX002, "lexer", "syntax", "Unterminated comment"},
	LEX003: {LEX003, "lexer", "encoding", "Invalid UTF-8"},
	LEX004: {LEX004, "lexer", "path", "Forbidden character in path"},
	LEX005: {LEX005, "lexer", "path", "Empty quoted path"},
	LEX006: {LEX006, "lexer", "macro", "Dangling identifier-concat operator"},
	LEX007: {LEX007, "lexer", "macro", "Lexer stack depth exceeded"},
	LEX008: {LEX008, "lexer", "macro", "Unterminated macro argument list"},

	SEM001: {SEM001, "semantic", "scope", "Name already defined"},
	SEM002: {SEM002, "semantic", "scope", "Undefined identifier"},
	SEM003: {SEM003, "semantic", "type", "Operand type mismatch"},
	SEM004: {SEM004, "semantic", "visibility", "Inaccessible declaration"},
	SEM005: {SEM005, "semantic", "type", "List of list disallowed"},
	SEM006: {SEM006, "semantic", "type", "Class-typed field disallowed"},
	SEM007: {SEM007, "semantic", "module", "Recursive submodule include"},
	SEM008: {SEM008, "semantic", "param", "Parameter value type mismatch"},
	SEM009: {SEM009, "semantic", "param", "Unused external parameter"},
	SEM010: {SEM010, "semantic", "assign", "Assignment to read-only variable"},
	SEM011: {SEM011, "semantic", "builtin", "Invalid built-in procedure call"},

	RES001: {RES001, "resource", "module", "Missing BUSY file"},
	RES002: {RES002, "resource", "io", "File could not be read"},
	RES003: {RES003, "resource", "io", "Copy failed"},

	BAK001: {BAK001, "backend", "cancel", "Backend cancelled the walk"},
	BAK002: {BAK002, "backend", "user", "User-requested error()"},
}

// Info returns the structured information for an error code.
func Info(code string) (ErrorInfo, bool) {
	info, ok := Registry[code]
	return info, ok
}

// IsPathError reports whether code belongs to the path phase.
func IsPathError(code string) bool { return phaseIs(code, "path") }

// IsLexError reports whether code belongs to the lexer phase.
func IsLexError(code string) bool { return phaseIs(code, "lexer") }

// IsSemanticError reports whether code belongs to the semantic (parse/evaluate) phase.
func IsSemanticError(code string) bool { return phaseIs(code, "semantic") }

// IsResourceError reports whether code belongs to the resource/IO phase.
func IsResourceError(code string) bool { return phaseIs(code, "resource") }

// IsBackendError reports whether code belongs to the backend phase.
func IsBackendError(code string) bool { return phaseIs(code, "backend") }

func phaseIs(code, phase string) bool {
	info, ok := Info(code)
	return ok && info.Phase == phase
}
