package nostdlog

import (
	"go/ast"
	"go/types"
	"path/filepath"
	"strings"

	"golang.org/x/tools/go/analysis"
)

// Analyzer reports calls to the standard log package and to fmt.Print,
// fmt.Printf and fmt.Println outside package main. Library packages of
// the project log through internal/logger.
var Analyzer = &analysis.Analyzer{
	Name: "nostdlog",
	Doc:  "prohibits the standard log package and fmt.Print* outside package main",
	Run:  run,
}

var fmtPrinters = map[string]bool{
	"Print":   true,
	"Printf":  true,
	"Println": true,
}

func run(pass *analysis.Pass) (interface{}, error) {
	if pass.Pkg.Name() == "main" {
		return nil, nil
	}

	for _, file := range pass.Files {
		filename := pass.Fset.File(file.Pos()).Name()
		if isGoBuildCacheFile(filename) || strings.HasSuffix(filename, "_test.go") {
			continue
		}

		ast.Inspect(file, func(n ast.Node) bool {
			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}

			sel, ok := call.Fun.(*ast.SelectorExpr)
			if !ok {
				return true
			}

			ident, ok := sel.X.(*ast.Ident)
			if !ok {
				return true
			}

			pkgName, ok := pass.TypesInfo.Uses[ident].(*types.PkgName)
			if !ok {
				return true
			}

			switch pkgName.Imported().Path() {
			case "log":
				pass.Reportf(call.Pos(), "use internal/logger instead of log.%s", sel.Sel.Name)
			case "fmt":
				if fmtPrinters[sel.Sel.Name] {
					pass.Reportf(call.Pos(), "use internal/logger instead of fmt.%s", sel.Sel.Name)
				}
			}

			return true
		})
	}
	return nil, nil
}

func isGoBuildCacheFile(path string) bool {
	path = filepath.ToSlash(path)
	return strings.Contains(path, "/go-build/")
}
