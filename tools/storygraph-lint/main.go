// storygraph-lint is a custom static analyzer for storygraph code conventions.
package main

import (
	"golang.org/x/tools/go/analysis/multichecker"

	"github.com/ersonp/storygraph/tools/storygraph-lint/analyzers"
)

func main() {
	multichecker.Main(analyzers.All()...)
}
