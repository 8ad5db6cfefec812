// Package ctxfirst checks that context.Context is the first parameter.
package ctxfirst

import (
	"go/ast"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// Analyzer reports functions that take a context.Context anywhere but first.
var Analyzer = &analysis.Analyzer{
	Name:     "ctxfirst",
	Doc:      "checks that context.Context is the first parameter of a function",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

func run(pass *analysis.Pass) (interface{}, error) {
	inspect := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	nodeFilter := []ast.Node{
		(*ast.FuncDecl)(nil),
	}

	inspect.Preorder(nodeFilter, func(n ast.Node) {
		fn := n.(*ast.FuncDecl)
		if fn.Type.Params == nil {
			return
		}

		// Parameter position, counting every name in grouped declarations.
		pos := 0
		for _, field := range fn.Type.Params.List {
			width := len(field.Names)
			if width == 0 {
				width = 1
			}
			if isContextContext(field.Type) && pos > 0 {
				pass.Reportf(field.Pos(),
					"context.Context should be the first parameter of %s",
					fn.Name.Name)
			}
			pos += width
		}
	})

	return nil, nil
}

func isContextContext(expr ast.Expr) bool {
	sel, ok := expr.(*ast.SelectorExpr)
	if !ok {
		return false
	}
	ident, ok := sel.X.(*ast.Ident)
	if !ok {
		return false
	}
	return ident.Name == "context" && sel.Sel.Name == "Context"
}
