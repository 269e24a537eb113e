package parser

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Method is a function defined directly in a class body.
type Method struct {
	Name      string
	Line      int
	EndLine   int
	Content   string
	Docstring string
}

// Class is a module-level class definition with its direct methods.
// Classes nested inside other classes or functions are not extracted.
type Class struct {
	Name      string
	Line      int
	EndLine   int
	Content   string
	Docstring string
	Methods   []Method
}

// Function is a module-level function definition. Functions whose syntactic
// parent is a class body (methods) or another function never appear here.
type Function struct {
	Name      string
	Line      int
	EndLine   int
	Content   string
	Docstring string
}

// FileResult holds everything extracted from one source file.
type FileResult struct {
	Path      string
	Classes   []Class
	Functions []Function
}

// Parser extracts classes, methods, and top-level functions from Python
// sources using tree-sitter.
type Parser struct{}

// New creates a Parser.
func New() *Parser { return &Parser{} }

// ParseFile parses a single source file. The walk starts from the module
// node's direct children and descends exactly one level into class bodies,
// so the enclosing scope of every definition is always known: a function is
// top-level only when its parent is the module itself.
//
// A file that fails to parse returns an error; callers treat that as
// non-fatal and let the file contribute nothing.
func (p *Parser) ParseFile(ctx context.Context, path string, src []byte) (*FileResult, error) {
	tsParser := sitter.NewParser()
	tsParser.SetLanguage(python.GetLanguage())

	tree, err := tsParser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, fmt.Errorf("parse %s: syntax error", path)
	}

	lines := strings.Split(string(src), "\n")
	result := &FileResult{Path: path}

	for i := 0; i < int(root.NamedChildCount()); i++ {
		node := unwrapDecorated(root.NamedChild(i))
		switch node.Type() {
		case "class_definition":
			result.Classes = append(result.Classes, parseClass(node, src, lines))
		case "function_definition":
			result.Functions = append(result.Functions, Function{
				Name:      nameOf(node, src),
				Line:      startLine(node),
				EndLine:   endLine(node),
				Content:   lineRange(lines, startLine(node), endLine(node)),
				Docstring: docstringOf(node, src),
			})
		}
	}

	return result, nil
}

func parseClass(node *sitter.Node, src []byte, lines []string) Class {
	cls := Class{
		Name:      nameOf(node, src),
		Line:      startLine(node),
		EndLine:   endLine(node),
		Content:   lineRange(lines, startLine(node), endLine(node)),
		Docstring: docstringOf(node, src),
	}

	body := node.ChildByFieldName("body")
	if body == nil {
		return cls
	}

	// Direct children of the class body only; deeper nesting is out of scope.
	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := unwrapDecorated(body.NamedChild(i))
		if child.Type() != "function_definition" {
			continue
		}
		cls.Methods = append(cls.Methods, Method{
			Name:      nameOf(child, src),
			Line:      startLine(child),
			EndLine:   endLine(child),
			Content:   lineRange(lines, startLine(child), endLine(child)),
			Docstring: docstringOf(child, src),
		})
	}

	return cls
}

// unwrapDecorated resolves a decorated_definition wrapper to the inner
// definition, so spans and names come from the def/class itself.
func unwrapDecorated(node *sitter.Node) *sitter.Node {
	if node.Type() == "decorated_definition" {
		if def := node.ChildByFieldName("definition"); def != nil {
			return def
		}
	}
	return node
}

func nameOf(node *sitter.Node, src []byte) string {
	if n := node.ChildByFieldName("name"); n != nil {
		return n.Content(src)
	}
	return ""
}

// startLine and endLine are 1-based, inclusive.
func startLine(node *sitter.Node) int { return int(node.StartPoint().Row) + 1 }
func endLine(node *sitter.Node) int   { return int(node.EndPoint().Row) + 1 }

// lineRange returns the verbatim source text from startLine through endLine.
func lineRange(lines []string, start, end int) string {
	s := start - 1
	if s < 0 {
		s = 0
	}
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[s:end], "\n")
}
