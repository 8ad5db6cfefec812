// Package errfmt checks fmt.Errorf message style.
package errfmt

import (
	"go/ast"
	"go/token"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// Analyzer reports fmt.Errorf messages that are capitalized or end with punctuation.
var Analyzer = &analysis.Analyzer{
	Name:     "errfmt",
	Doc:      "checks that fmt.Errorf messages are lowercase and unpunctuated",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

func run(pass *analysis.Pass) (interface{}, error) {
	inspect := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	nodeFilter := []ast.Node{
		(*ast.CallExpr)(nil),
	}

	inspect.Preorder(nodeFilter, func(n ast.Node) {
		call := n.(*ast.CallExpr)

		sel, ok := call.Fun.(*ast.SelectorExpr)
		if !ok {
			return
		}
		ident, ok := sel.X.(*ast.Ident)
		if !ok || ident.Name != "fmt" || sel.Sel.Name != "Errorf" {
			return
		}
		if len(call.Args) == 0 {
			return
		}
		lit, ok := call.Args[0].(*ast.BasicLit)
		if !ok || lit.Kind != token.STRING {
			return
		}
		format, err := strconv.Unquote(lit.Value)
		if err != nil || format == "" {
			return
		}

		first, _ := utf8.DecodeRuneInString(format)
		if unicode.IsUpper(first) {
			pass.Reportf(lit.Pos(),
				"error message starts with an uppercase letter - error strings are lowercase")
		}
		if strings.HasSuffix(format, ".") || strings.HasSuffix(format, "!") {
			pass.Reportf(lit.Pos(),
				"error message ends with punctuation - error strings are unpunctuated")
		}
	})

	return nil, nil
}
