// Package slogkey checks structured logging attribute key style.
package slogkey

import (
	"go/ast"
	"go/token"
	"regexp"
	"strconv"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// Analyzer reports slog attribute keys that are not lowercase snake_case.
var Analyzer = &analysis.Analyzer{
	Name:     "slogkey",
	Doc:      "checks that slog attribute keys are lowercase snake_case",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

var logFuncs = map[string]bool{
	"Debug": true,
	"Info":  true,
	"Warn":  true,
	"Error": true,
}

var keyPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

func run(pass *analysis.Pass) (interface{}, error) {
	inspect := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	nodeFilter := []ast.Node{
		(*ast.CallExpr)(nil),
	}

	inspect.Preorder(nodeFilter, func(n ast.Node) {
		call := n.(*ast.CallExpr)

		sel, ok := call.Fun.(*ast.SelectorExpr)
		if !ok || !logFuncs[sel.Sel.Name] {
			return
		}
		ident, ok := sel.X.(*ast.Ident)
		if !ok {
			return
		}
		switch ident.Name {
		case "slog", "log", "logger":
		default:
			return
		}
		if len(call.Args) < 2 {
			return
		}

		// Walk the key/value tail the way slog does: a string literal is a
		// key and consumes its value; anything else (an Attr) stands alone.
		args := call.Args[1:]
		for i := 0; i < len(args); {
			lit, ok := args[i].(*ast.BasicLit)
			if !ok || lit.Kind != token.STRING {
				i++
				continue
			}
			key, err := strconv.Unquote(lit.Value)
			if err == nil && !keyPattern.MatchString(key) {
				pass.Reportf(lit.Pos(),
					"slog key %q is not lowercase snake_case", key)
			}
			i += 2
		}
	})

	return nil, nil
}
