// Package parser is the entry point for reading Klog text: it matches the
// grammar, builds the AST and constructs domain records from it.
package parser

import (
	stderrors "errors"
	"strings"

	"github.com/Tiliavir/klg/internal/ast"
	"github.com/Tiliavir/klg/internal/grammar"
	"github.com/Tiliavir/klg/internal/klog"
)

// ParseAST matches source against rule and builds its AST. An empty rule means
// grammar.RuleFile; blank input for the file rule gives an empty *ast.FileNode.
func ParseAST(source string, rule grammar.Rule) (ast.Node, error) {
	if rule == "" {
		rule = grammar.RuleFile
	}
	if rule == grammar.RuleFile && strings.TrimSpace(source) == "" {
		return &ast.FileNode{Type: ast.TypeFile, Records: []*ast.RecordNode{}}, nil
	}

	tree, err := grammar.Match(source, rule)
	if err != nil {
		return nil, syntaxError(err)
	}
	return ast.Build(tree)
}

// Parse reads a whole file into records, in source order.
func Parse(source string) ([]*klog.Record, error) {
	node, err := ParseAST(source, grammar.RuleFile)
	if err != nil {
		return nil, err
	}
	return RecordsFromAST(node.(*ast.FileNode))
}

func syntaxError(err error) error {
	var me *grammar.MatchError
	if !stderrors.As(err, &me) {
		return err
	}
	return &klog.Error{
		Kind:    klog.ErrSyntax,
		Message: "expected " + me.Expected + ", found " + me.Found,
		Line:    me.Pos.Line,
		Column:  me.Pos.Column,
		Cause:   me,
	}
}
