package ast

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// extractTSJS walks a TypeScript/JavaScript program node (the two share a
// grammar shape for the constructs this package extracts) and returns
// function declarations, classes, interfaces, type aliases, imports, and
// arrow-function const/let/var bindings.
func extractTSJS(treeNode *sitter.Node, source []byte, prefix string) ([]*Node, []Ref) {
	var nodes []*Node
	var refs []Ref

	for i := 0; i < int(treeNode.ChildCount()); i++ {
		child := treeNode.Child(i)

		if child.Type() == "export_statement" {
			innerNodes, innerRefs := extractTSJS(child, source, prefix)
			nodes = append(nodes, innerNodes...)
			refs = append(refs, innerRefs...)
			continue
		}

		switch child.Type() {
		case "function_declaration":
			name := extractName(child, source)
			if name == "" {
				continue
			}
			qname := qualify(prefix, name)
			nodes = append(nodes, &Node{
				Name: name, QualifiedName: qname, Kind: "function",
				StartLine: startLine(child), EndLine: endLine(child),
				Signature: extractSignature(child, source),
				BodyHash:  bodyHash(source, child.StartByte(), child.EndByte()),
			})

		case "class_declaration":
			name := classOrInterfaceName(child, source)
			if name == "" {
				continue
			}
			qname := qualify(prefix, name)
			var children []*Node
			if body := findChildByType(child, "class_body"); body != nil {
				children = extractClassMembers(body, source, qname)
			}
			nodes = append(nodes, &Node{
				Name: name, QualifiedName: qname, Kind: "class",
				StartLine: startLine(child), EndLine: endLine(child),
				Signature: extractSignature(child, source),
				BodyHash:  bodyHash(source, child.StartByte(), child.EndByte()),
				Children:  children,
			})

		case "interface_declaration":
			name := classOrInterfaceName(child, source)
			if name == "" {
				continue
			}
			qname := qualify(prefix, name)
			nodes = append(nodes, &Node{
				Name: name, QualifiedName: qname, Kind: "interface",
				StartLine: startLine(child), EndLine: endLine(child),
				Signature: extractSignature(child, source),
				BodyHash:  bodyHash(source, child.StartByte(), child.EndByte()),
			})

		case "type_alias_declaration":
			name := classOrInterfaceName(child, source)
			if name == "" {
				continue
			}
			qname := qualify(prefix, name)
			nodes = append(nodes, &Node{
				Name: name, QualifiedName: qname, Kind: "type_alias",
				StartLine: startLine(child), EndLine: endLine(child),
				Signature: extractSignature(child, source),
				BodyHash:  bodyHash(source, child.StartByte(), child.EndByte()),
			})

		case "import_statement":
			text := strings.TrimSpace(nodeText(child, source))
			nodes = append(nodes, &Node{
				Name: text, QualifiedName: text, Kind: "import",
				StartLine: startLine(child), EndLine: endLine(child),
				Signature: text,
				BodyHash:  bodyHash(source, child.StartByte(), child.EndByte()),
			})
			refs = append(refs, Ref{TargetName: text, Kind: "import", Line: startLine(child)})

		case "lexical_declaration", "variable_declaration":
			nodes = append(nodes, extractArrowConstBindings(child, source, prefix)...)
		}
	}
	return nodes, refs
}

func classOrInterfaceName(n *sitter.Node, source []byte) string {
	if name := extractName(n, source); name != "" {
		return name
	}
	if ti := findChildByType(n, "type_identifier"); ti != nil {
		return nodeText(ti, source)
	}
	return ""
}

// extractArrowConstBindings picks out top-level const/let/var declarators
// whose initializer is an arrow function.
func extractArrowConstBindings(declNode *sitter.Node, source []byte, prefix string) []*Node {
	var out []*Node
	for i := 0; i < int(declNode.ChildCount()); i++ {
		decl := declNode.Child(i)
		if decl.Type() != "variable_declarator" {
			continue
		}
		nameNode := findChildByType(decl, "identifier")
		if nameNode == nil {
			continue
		}
		if findChildByType(decl, "arrow_function") == nil {
			continue
		}
		name := nodeText(nameNode, source)
		qname := qualify(prefix, name)
		out = append(out, &Node{
			Name: name, QualifiedName: qname, Kind: "function",
			StartLine: startLine(declNode), EndLine: endLine(declNode),
			Signature: extractSignature(declNode, source),
			BodyHash:  bodyHash(source, declNode.StartByte(), declNode.EndByte()),
		})
	}
	return out
}

// extractClassMembers pulls methods and fields out of a class body.
func extractClassMembers(body *sitter.Node, source []byte, prefix string) []*Node {
	var out []*Node
	for i := 0; i < int(body.ChildCount()); i++ {
		child := body.Child(i)
		if child.Type() != "method_definition" && child.Type() != "public_field_definition" {
			continue
		}
		name := extractName(child, source)
		if name == "" {
			if pi := findChildByType(child, "property_identifier"); pi != nil {
				name = nodeText(pi, source)
			}
		}
		if name == "" {
			continue
		}
		qname := qualify(prefix, name)
		text := nodeText(child, source)
		sig := text
		if idx := strings.IndexByte(text, '\n'); idx >= 0 {
			sig = text[:idx]
		}
		out = append(out, &Node{
			Name: name, QualifiedName: qname, Kind: "function",
			StartLine: startLine(child), EndLine: endLine(child),
			Signature: strings.TrimSpace(sig),
			BodyHash:  bodyHash(source, child.StartByte(), child.EndByte()),
		})
	}
	return out
}
