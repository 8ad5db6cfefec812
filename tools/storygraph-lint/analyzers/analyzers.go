// Package analyzers provides all custom static analyzers for storygraph.
package analyzers

import (
	"golang.org/x/tools/go/analysis"

	"github.com/ersonp/storygraph/tools/storygraph-lint/analyzers/ctxfirst"
	"github.com/ersonp/storygraph/tools/storygraph-lint/analyzers/errfmt"
	"github.com/ersonp/storygraph/tools/storygraph-lint/analyzers/slogkey"
)

// All returns all analyzers to run.
func All() []*analysis.Analyzer {
	return []*analysis.Analyzer{
		ctxfirst.Analyzer,
		errfmt.Analyzer,
		slogkey.Analyzer,
	}
}
