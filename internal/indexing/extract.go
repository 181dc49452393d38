package indexing

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/perfradar/radar/internal/parser"
	"github.com/perfradar/radar/internal/types"
)

// unknownClass is the sentinel class name for declarations outside any
// recognizable type (e.g. files the grammar could only partially parse).
const unknownClass = "Unknown"

// extractFile walks one parsed file and records its declarations into
// the given index. Declarations are attributed to the nearest enclosing
// type; the first top-level type names the file's declaring class.
func extractFile(idx *SymbolIndex, root *tree_sitter.Node, content []byte, filePath string) {
	parser.Walk(root, func(n *tree_sitter.Node) bool {
		switch n.Kind() {
		case "class_declaration", "interface_declaration", "enum_declaration", "record_declaration":
			extractType(idx, n, content, filePath)
		case "method_declaration":
			extractMethod(idx, n, content, filePath)
		case "field_declaration":
			extractField(idx, n, content, filePath)
		}
		return true
	})
}

func extractType(idx *SymbolIndex, node *tree_sitter.Node, content []byte, filePath string) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := parser.NodeText(nameNode, content)

	annotations := typeAnnotations(node, content)
	layer := types.LayerUnknown
	for _, a := range annotations {
		if l := types.LayerFromAnnotation(a); l != types.LayerUnknown {
			layer = l
			break
		}
	}

	idx.AddClass(types.TypeRecord{
		Name:        name,
		FilePath:    filePath,
		Line:        parser.Line(node),
		Layer:       layer,
		Annotations: annotations,
	})
}

// typeAnnotations collects annotation names attached to a declaration
// through its modifiers node, without the leading @.
func typeAnnotations(node *tree_sitter.Node, content []byte) []string {
	var annotations []string
	parser.EachChild(node, func(child *tree_sitter.Node) {
		if child.Kind() != "modifiers" {
			return
		}
		parser.EachChild(child, func(mod *tree_sitter.Node) {
			switch mod.Kind() {
			case "marker_annotation", "annotation":
				if nameNode := mod.ChildByFieldName("name"); nameNode != nil {
					annotations = append(annotations, parser.NodeText(nameNode, content))
				}
			}
		})
	})
	return annotations
}

func extractMethod(idx *SymbolIndex, node *tree_sitter.Node, content []byte, filePath string) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}

	synchronized := false
	parser.EachChild(node, func(child *tree_sitter.Node) {
		if child.Kind() == "modifiers" && strings.Contains(parser.NodeText(child, content), "synchronized") {
			synchronized = true
		}
	})

	idx.AddMethod(types.MethodRecord{
		Name:         parser.NodeText(nameNode, content),
		ClassName:    enclosingClassName(node, content),
		FilePath:     filePath,
		Line:         parser.Line(node),
		Synchronized: synchronized,
	})
}

func extractField(idx *SymbolIndex, node *tree_sitter.Node, content []byte, filePath string) {
	typeNode := node.ChildByFieldName("type")
	if typeNode == nil {
		return
	}
	typeName := baseTypeName(parser.NodeText(typeNode, content))
	className := enclosingClassName(node, content)

	parser.EachChild(node, func(child *tree_sitter.Node) {
		if child.Kind() != "variable_declarator" {
			return
		}
		nameNode := child.ChildByFieldName("name")
		if nameNode == nil {
			return
		}
		idx.AddField(types.FieldRecord{
			Name:      parser.NodeText(nameNode, content),
			TypeName:  typeName,
			ClassName: className,
			FilePath:  filePath,
			Line:      parser.Line(child),
		})
	})
}

// enclosingClassName finds the nearest enclosing type declaration name.
func enclosingClassName(node *tree_sitter.Node, content []byte) string {
	for cur := node.Parent(); cur != nil; cur = cur.Parent() {
		switch cur.Kind() {
		case "class_declaration", "interface_declaration", "enum_declaration", "record_declaration":
			if nameNode := cur.ChildByFieldName("name"); nameNode != nil {
				return parser.NodeText(nameNode, content)
			}
		}
	}
	return unknownClass
}

// baseTypeName strips generics from a declared type: "List<Order>"
// resolves to "List", "OrderRepository" stays as-is.
func baseTypeName(declared string) string {
	if idx := strings.IndexByte(declared, '<'); idx > 0 {
		return strings.TrimSpace(declared[:idx])
	}
	return strings.TrimSpace(declared)
}
