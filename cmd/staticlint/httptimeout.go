package main

import (
	"go/ast"
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// unboundedHTTP члены net/http, которые работают через клиент без таймаута
var unboundedHTTP = map[string]bool{
	"Get":           true,
	"Head":          true,
	"Post":          true,
	"PostForm":      true,
	"DefaultClient": true,
}

// HTTPTimeoutAnalyzer запрещает исходящие запросы через http.DefaultClient
// и его обёртки вне тестов. Загрузка изображений и запросы к классификатору
// должны быть ограничены по времени.
var HTTPTimeoutAnalyzer = &analysis.Analyzer{
	Name:     "httptimeout",
	Doc:      "prohibits http.Get, http.Head, http.Post, http.PostForm and http.DefaultClient outside tests",
	Run:      runHTTPTimeoutCheck,
	Requires: []*analysis.Analyzer{inspect.Analyzer},
}

func runHTTPTimeoutCheck(pass *analysis.Pass) (any, error) {
	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	insp.Preorder([]ast.Node{(*ast.SelectorExpr)(nil)}, func(node ast.Node) {
		sel := node.(*ast.SelectorExpr)
		if !unboundedHTTP[sel.Sel.Name] {
			return
		}
		if strings.HasSuffix(pass.Fset.Position(sel.Pos()).Filename, "_test.go") {
			return
		}
		if isPackageMember(pass, sel, "net/http", sel.Sel.Name) {
			pass.Reportf(sel.Pos(), "http.%s has no timeout, use a client with a bounded context", sel.Sel.Name)
		}
	})

	return nil, nil
}

// isPackageMember сообщает, обращается ли sel к члену name пакета pkgPath
func isPackageMember(pass *analysis.Pass, sel *ast.SelectorExpr, pkgPath, name string) bool {
	if sel.Sel.Name != name {
		return false
	}
	ident, ok := sel.X.(*ast.Ident)
	if !ok {
		return false
	}
	pkgName, ok := pass.TypesInfo.Uses[ident].(*types.PkgName)
	return ok && pkgName.Imported().Path() == pkgPath
}
