package ast

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Extractor parses source into a forest of Node values, returning an empty
// forest (never an error) for languages without a registered grammar or
// for source tree-sitter cannot parse.
type Extractor struct {
	parser *sitter.Parser
}

// NewExtractor creates a reusable extractor. It is not safe for concurrent
// use from multiple goroutines — one per code-indexer invocation.
func NewExtractor() *Extractor {
	return &Extractor{parser: sitter.NewParser()}
}

// Close releases the underlying tree-sitter parser.
func (e *Extractor) Close() {
	e.parser.Close()
}

// Extract parses source for the given tree-sitter language tag and returns
// the top-level forest plus any refs collected (imports, mainly). Unknown
// tree shapes, missing grammars, or parser failures all degrade to an
// empty forest rather than surfacing an error — the caller still records
// the file as indexed.
func (e *Extractor) Extract(ctx context.Context, source []byte, language string) ([]*Node, []Ref) {
	if len(source) == 0 || !HasExtractor(language) {
		return nil, nil
	}

	tsLang := tsLanguageFor(language)
	if tsLang == nil {
		return nil, nil
	}
	e.parser.SetLanguage(tsLang)

	tree, err := e.parser.ParseCtx(ctx, nil, source)
	if err != nil || tree == nil {
		return nil, nil
	}
	root := tree.RootNode()
	if root == nil {
		return nil, nil
	}

	switch language {
	case "python":
		return extractPython(root, source, "")
	case "typescript", "javascript":
		return extractTSJS(root, source, "")
	default:
		return nil, nil
	}
}

func tsLanguageFor(language string) *sitter.Language {
	switch language {
	case "python":
		return python.GetLanguage()
	case "typescript":
		return typescript.GetLanguage()
	case "javascript":
		return javascript.GetLanguage()
	default:
		return nil
	}
}

// bodyHash is the first 16 hex chars of SHA-256 over a node's byte span.
func bodyHash(source []byte, startByte, endByte uint32) string {
	sum := sha256.Sum256(source[startByte:endByte])
	return hex.EncodeToString(sum[:])[:16]
}

func nodeText(n *sitter.Node, source []byte) string {
	if n == nil {
		return ""
	}
	return string(source[n.StartByte():n.EndByte()])
}

func findChildByType(n *sitter.Node, typ string) *sitter.Node {
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.Type() == typ {
			return c
		}
	}
	return nil
}

// extractName pulls the defining identifier out of a declaration node,
// trying the tree-sitter node kinds that carry a name across the grammars
// this package supports.
func extractName(n *sitter.Node, source []byte) string {
	for _, typ := range []string{"identifier", "property_identifier", "type_identifier"} {
		if id := findChildByType(n, typ); id != nil {
			return nodeText(id, source)
		}
	}
	return ""
}

// extractSignature returns the first meaningful declaration line, stripped
// of a trailing ":" or "{".
func extractSignature(n *sitter.Node, source []byte) string {
	text := nodeText(n, source)
	prefixes := []string{"def ", "async def ", "class ", "function ",
		"interface ", "type ", "export ", "const "}
	for _, line := range strings.Split(text, "\n") {
		stripped := strings.TrimSpace(line)
		for _, p := range prefixes {
			if strings.HasPrefix(stripped, p) {
				return strings.TrimSpace(strings.TrimSuffix(strings.TrimSuffix(stripped, "{"), ":"))
			}
		}
	}
	lines := strings.Split(text, "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSuffix(strings.TrimSpace(lines[0]), "{"), ":"))
}

// qualify builds a dot-separated qualified name.
func qualify(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

func startLine(n *sitter.Node) int { return int(n.StartPoint().Row) + 1 }
func endLine(n *sitter.Node) int   { return int(n.EndPoint().Row) + 1 }
