// Package ast extracts a forest of named, located code nodes from source
// text using tree-sitter grammars.
package ast

// Node is one structural element of source code, with children populated
// for nodes whose body contains further structure.
type Node struct {
	Name          string
	QualifiedName string
	Kind          string // class, function, interface, type_alias, import
	StartLine     int
	EndLine       int
	Signature     string
	Docstring     string
	BodyHash      string
	Children      []*Node
}

// Ref is a raw cross-reference collected alongside a node, resolved to a
// stored CodeRef row once the tree is persisted.
type Ref struct {
	TargetName string
	Kind       string
	Line       int
}

// extensionLanguage maps a file extension to a tree-sitter language tag.
// Every extension is registered for discovery even when no extractor
// exists for its language yet.
var extensionLanguage = map[string]string{
	".py":    "python",
	".ts":    "typescript",
	".tsx":   "typescript",
	".js":    "javascript",
	".jsx":   "javascript",
	".rs":    "rust",
	".go":    "go",
	".java":  "java",
	".rb":    "ruby",
	".c":     "c",
	".h":     "c",
	".cpp":   "cpp",
	".hpp":   "cpp",
	".cs":    "c_sharp",
	".swift": "swift",
	".kt":    "kotlin",
	".lua":   "lua",
	".sh":    "bash",
	".bash":  "bash",
}

// DetectLanguage returns the tree-sitter language tag for ext, or "" if the
// extension is not in the recognized set at all.
func DetectLanguage(ext string) string {
	return extensionLanguage[ext]
}

// SupportedExtensions lists every extension the code indexer should walk,
// a superset of the languages that have a full extractor.
func SupportedExtensions() map[string]bool {
	out := make(map[string]bool, len(extensionLanguage))
	for ext := range extensionLanguage {
		out[ext] = true
	}
	return out
}

// fullyExtracted is the set of languages with a real extractor. Any other
// recognized language produces an empty node list, not an error.
var fullyExtracted = map[string]bool{
	"python":     true,
	"typescript": true,
	"javascript": true,
}

// HasExtractor reports whether language has a full extraction routine.
func HasExtractor(language string) bool {
	return fullyExtracted[language]
}
