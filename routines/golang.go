package routines

import (
	"context"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"reflect"
	"slices"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// importable packages, by the name routines refer to them with
var goImports = map[string]string{
	"bytes":    "bytes",
	"errors":   "errors",
	"fmt":      "fmt",
	"json":     "encoding/json",
	"base64":   "encoding/base64",
	"maps":     "maps",
	"math":     "math",
	"rand":     "math/rand",
	"regexp":   "regexp",
	"slices":   "slices",
	"sort":     "sort",
	"strconv":  "strconv",
	"strings":  "strings",
	"time":     "time",
	"unicode":  "unicode",
	"utf8":     "unicode/utf8",
	"routines": "vague/routines",
}

type GoLoader struct{}

var _ Loader = GoLoader{}

func (GoLoader) Load(env *Env, source string, entry string) (Routine, error) {
	if !strings.HasPrefix(strings.TrimLeft(source, " \t\r\n"), "func ") {
		return nil, malformed(entry, "source does not start with a function declaration")
	}

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, entry+".go", "package main\n\n"+source, parser.SkipObjectResolution)
	if err != nil {
		return nil, bindFailure(entry, err)
	}
	if len(file.Decls) != 1 {
		return nil, malformed(entry, "expected exactly one top-level declaration, got %d", len(file.Decls))
	}
	decl, ok := file.Decls[0].(*ast.FuncDecl)
	if !ok || decl.Recv != nil {
		return nil, malformed(entry, "top-level declaration is not a function")
	}
	if decl.Name.Name != entry {
		return nil, malformed(entry, "function is named %s", decl.Name.Name)
	}
	if decl.Type.TypeParams != nil {
		return nil, malformed(entry, "function must not be generic")
	}
	if n := decl.Type.Params.NumFields(); n != 1 {
		return nil, malformed(entry, "function must take exactly one argument, got %d", n)
	}

	var b strings.Builder
	b.WriteString("package main\n\n")
	for _, path := range referencedImports(file) {
		fmt.Fprintf(&b, "import %q\n", path)
	}
	b.WriteString("\n")
	b.WriteString(source)

	i := interp.New(interp.Options{
		Stdout: env.Output(),
		Stderr: env.Output(),
	})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, bindFailure(entry, err)
	}
	if err := i.Use(hostExports(env)); err != nil {
		return nil, bindFailure(entry, err)
	}
	if _, err := evalGo(i, b.String()); err != nil {
		return nil, bindFailure(entry, err)
	}
	value, err := evalGo(i, entry)
	if err != nil {
		return nil, bindFailure(entry, err)
	}

	var fn func(Mapping) (any, error)
	switch f := value.Interface().(type) {
	case func(map[string]any) (any, error):
		fn = f
	case func(map[string]any) any:
		fn = func(m Mapping) (any, error) {
			return f(m), nil
		}
	default:
		return nil, malformed(entry, "function has type %T, expected func(map[string]any) (any, error)", f)
	}

	return &goRoutine{
		name: entry,
		fn:   fn,
	}, nil
}

// evalGo converts interpreter panics into errors.
func evalGo(i *interp.Interpreter, src string) (ret reflect.Value, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("interpreter panic: %v", p)
		}
	}()
	return i.Eval(src)
}

func referencedImports(file *ast.File) []string {
	declared := make(map[string]bool)
	ast.Inspect(file, func(node ast.Node) bool {
		switch node := node.(type) {
		case *ast.Field:
			for _, name := range node.Names {
				declared[name.Name] = true
			}
		case *ast.AssignStmt:
			if node.Tok == token.DEFINE {
				for _, lhs := range node.Lhs {
					if ident, ok := lhs.(*ast.Ident); ok {
						declared[ident.Name] = true
					}
				}
			}
		case *ast.ValueSpec:
			for _, name := range node.Names {
				declared[name.Name] = true
			}
		}
		return true
	})

	set := make(map[string]bool)
	ast.Inspect(file, func(node ast.Node) bool {
		sel, ok := node.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		ident, ok := sel.X.(*ast.Ident)
		if !ok || declared[ident.Name] {
			return true
		}
		if path, ok := goImports[ident.Name]; ok {
			set[path] = true
		}
		return true
	})

	var ret []string
	for path := range set {
		ret = append(ret, path)
	}
	slices.Sort(ret)
	return ret
}

func hostExports(env *Env) interp.Exports {
	call := func(name string, mapping map[string]any) (any, error) {
		routine, ok := env.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("no such routine: %s", name)
		}
		// interpreted Go code has no access to the caller's context
		return routine.Invoke(context.Background(), mapping)
	}
	global := func(name string) any {
		v, _ := env.Global(name)
		return v
	}
	return interp.Exports{
		"vague/routines/routines": {
			"Call":   reflect.ValueOf(call),
			"Global": reflect.ValueOf(global),
		},
	}
}

type goRoutine struct {
	name string
	fn   func(Mapping) (any, error)
}

var _ Routine = new(goRoutine)

func (g *goRoutine) Name() string {
	return g.name
}

func (g *goRoutine) Invoke(ctx context.Context, mapping Mapping) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type result struct {
		value any
		err   error
	}
	resultChan := make(chan result, 1)
	arg := copyMapping(mapping)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				resultChan <- result{err: fmt.Errorf("routine %s panicked: %v", g.name, p)}
			}
		}()
		value, err := g.fn(arg)
		resultChan <- result{value: value, err: err}
	}()

	select {
	case r := <-resultChan:
		return r.value, r.err
	case <-ctx.Done():
		// the interpreted call cannot be interrupted; it is abandoned and finishes on its own
		return nil, ctx.Err()
	}
}
