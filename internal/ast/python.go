package ast

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// extractPythonDocstring returns the first string literal in a def/class
// body, quotes stripped and whitespace trimmed.
func extractPythonDocstring(n *sitter.Node, source []byte) string {
	body := findChildByType(n, "block")
	if body == nil {
		return ""
	}
	for i := 0; i < int(body.ChildCount()); i++ {
		child := body.Child(i)
		switch child.Type() {
		case "expression_statement":
			if child.ChildCount() > 0 {
				str := child.Child(0)
				if str.Type() == "string" {
					return extractStringContent(str, source)
				}
			}
			return ""
		case "string":
			return extractStringContent(child, source)
		case "comment":
			continue
		default:
			return ""
		}
	}
	return ""
}

func extractStringContent(n *sitter.Node, source []byte) string {
	if content := findChildByType(n, "string_content"); content != nil {
		return strings.TrimSpace(nodeText(content, source))
	}
	raw := nodeText(n, source)
	for _, q := range []string{`"""`, `'''`} {
		if strings.HasPrefix(raw, q) && strings.HasSuffix(raw, q) && len(raw) >= 2*len(q) {
			return strings.TrimSpace(raw[len(q) : len(raw)-len(q)])
		}
	}
	for _, q := range []string{`"`, `'`} {
		if strings.HasPrefix(raw, q) && strings.HasSuffix(raw, q) && len(raw) >= 2 {
			return strings.TrimSpace(raw[1 : len(raw)-1])
		}
	}
	return raw
}

// extractPython walks a Python module/block node and returns top-level
// functions, classes (recursing into bodies), and import statements.
func extractPython(treeNode *sitter.Node, source []byte, prefix string) ([]*Node, []Ref) {
	var nodes []*Node
	var refs []Ref

	for i := 0; i < int(treeNode.ChildCount()); i++ {
		child := treeNode.Child(i)

		switch child.Type() {
		case "function_definition", "decorated_definition":
			actual := child
			if child.Type() == "decorated_definition" {
				for j := 0; j < int(child.ChildCount()); j++ {
					sub := child.Child(j)
					if sub.Type() == "function_definition" || sub.Type() == "class_definition" {
						actual = sub
						break
					}
				}
			}

			if actual.Type() == "class_definition" {
				name := extractName(actual, source)
				qname := qualify(prefix, name)
				children, childRefs := extractClassBody(actual, source, qname)
				nodes = append(nodes, &Node{
					Name: name, QualifiedName: qname, Kind: "class",
					StartLine: startLine(child), EndLine: endLine(child),
					Signature: extractSignature(child, source),
					Docstring: extractPythonDocstring(actual, source),
					BodyHash:  bodyHash(source, child.StartByte(), child.EndByte()),
					Children:  children,
				})
				refs = append(refs, childRefs...)
				continue
			}

			name := extractName(actual, source)
			if name == "" {
				continue
			}
			qname := qualify(prefix, name)
			nodes = append(nodes, &Node{
				Name: name, QualifiedName: qname, Kind: "function",
				StartLine: startLine(child), EndLine: endLine(child),
				Signature: extractSignature(child, source),
				Docstring: extractPythonDocstring(actual, source),
				BodyHash:  bodyHash(source, child.StartByte(), child.EndByte()),
			})

		case "class_definition":
			name := extractName(child, source)
			if name == "" {
				continue
			}
			qname := qualify(prefix, name)
			children, childRefs := extractClassBody(child, source, qname)
			nodes = append(nodes, &Node{
				Name: name, QualifiedName: qname, Kind: "class",
				StartLine: startLine(child), EndLine: endLine(child),
				Signature: extractSignature(child, source),
				Docstring: extractPythonDocstring(child, source),
				BodyHash:  bodyHash(source, child.StartByte(), child.EndByte()),
				Children:  children,
			})
			refs = append(refs, childRefs...)

		case "import_statement", "import_from_statement":
			text := strings.TrimSpace(nodeText(child, source))
			nodes = append(nodes, &Node{
				Name: text, QualifiedName: text, Kind: "import",
				StartLine: startLine(child), EndLine: endLine(child),
				Signature: text,
				BodyHash:  bodyHash(source, child.StartByte(), child.EndByte()),
			})
			refs = append(refs, Ref{TargetName: text, Kind: "import", Line: startLine(child)})
		}
	}
	return nodes, refs
}

func extractClassBody(classNode *sitter.Node, source []byte, qname string) ([]*Node, []Ref) {
	body := findChildByType(classNode, "block")
	if body == nil {
		return nil, nil
	}
	return extractPython(body, source, qname)
}
