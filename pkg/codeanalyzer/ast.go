package codeanalyzer

import (
	"go/ast"
	"go/parser"
	"go/token"

	"github.com/scanforge/engine/pkg/findings"
)

// riskyImports are standard-library packages whose mere presence in a
// module under analysis is worth flagging: each grants the kind of
// unsafe-memory, reflection, or dynamic-loading capability that has no
// legitimate place in typical application code being scanned for security
// posture.
var riskyImports = map[string]string{
	"unsafe":       "unsafe memory access bypasses Go's type and memory safety guarantees",
	"plugin":       "dynamic plugin loading can execute arbitrary code from an untrusted .so file",
	"net/http/cgi": "CGI execution shells out to external programs per request",
}

// dangerousBuiltins are call expressions that, independent of import
// analysis, indicate a specific dangerous pattern: unsafe pointer
// conversion, shell-backed process execution, or reflection-based memory
// aliasing.
var dangerousBuiltins = map[string]string{
	"unsafe.Pointer": "unsafe pointer cast",
	"reflect.NewAt":  "reflection-based memory aliasing",
	"plugin.Open":    "dynamic code loading via plugin",
	"exec.Command":   "external process execution",
}

// astFindings parses text as Go source and reports risky imports and
// dangerous call expressions found in its syntax tree. Parse failure is not
// an error condition: most scanned text is not a complete, well-formed Go
// file (it may be a fragment, or another language entirely), so a parse
// error simply yields no AST-based findings, falling back to the regex pass
// alone.
func astFindings(text, source string) []findings.Finding {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, source, text, parser.ParseComments)
	if err != nil {
		return nil
	}

	var out []findings.Finding
	for _, imp := range file.Imports {
		path := importPath(imp)
		reason, risky := riskyImports[path]
		if !risky {
			continue
		}
		pos := fset.Position(imp.Pos())
		loc := findings.Location{FilePath: source, Line: pos.Line}
		out = append(out, findings.Finding{
			ID:          findings.NewID("codeanalyzer", "risky_import", loc, path),
			Domain:      findings.DomainCodeSecurity,
			Type:        "risky_import",
			Severity:    findings.SeverityHigh,
			Title:       "Risky import: " + path,
			Description: reason,
			Location:    loc,
			Evidence:    path,
			Confidence:  0.9,
			References:  findings.References{CWE: []string{"CWE-676"}},
			Tags:        []string{"ast", "import"},
		})
	}

	ast.Inspect(file, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		name := callExprName(call)
		reason, dangerous := dangerousBuiltins[name]
		if !dangerous {
			return true
		}
		pos := fset.Position(call.Pos())
		loc := findings.Location{FilePath: source, Line: pos.Line}
		out = append(out, findings.Finding{
			ID:          findings.NewID("codeanalyzer", "dangerous_builtin", loc, name),
			Domain:      findings.DomainCodeSecurity,
			Type:        "dangerous_builtin",
			Severity:    findings.SeverityCritical,
			Title:       "Dangerous call: " + name,
			Description: reason,
			Location:    loc,
			Evidence:    name,
			Confidence:  0.85,
			References:  findings.References{CWE: []string{"CWE-676"}},
			Tags:        []string{"ast", "builtin"},
		})
		return true
	})

	return out
}

func importPath(imp *ast.ImportSpec) string {
	if imp.Path == nil {
		return ""
	}
	v := imp.Path.Value
	if len(v) >= 2 {
		return v[1 : len(v)-1]
	}
	return v
}

func callExprName(call *ast.CallExpr) string {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok {
		return ""
	}
	ident, ok := sel.X.(*ast.Ident)
	if !ok {
		return ""
	}
	return ident.Name + "." + sel.Sel.Name
}
