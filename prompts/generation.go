package prompts

import (
	"strings"
	"text/template"
)

const System = `You are an intelligent code assistant. Generate a function based on the instructions.`

const starlarkRules = `Generate a Starlark function based on the following instructions. It should take only one argument,
context, and return a result. The context argument will be a dict containing the variables the caller
passed in. Use the context to access variables of the caller. You can also refer to the globals by name.

Note: load statements are not available. The json, math and time modules are predeclared.
Write exactly one def statement and nothing else at the top level.`

const goRules = `Generate a Go function based on the following instructions. It should take only one argument,
context map[string]any, and return (any, error). The context argument will contain the variables the caller
passed in. Use the context to access variables of the caller. Globals and previously generated functions
are reachable through routines.Global(name) and routines.Call(name, map[string]any{...}).

Note: do not write a package clause or import statements, standard library imports are added automatically.
Write exactly one func declaration and nothing else.`

var generationTemplate = template.Must(template.New("generation").Parse(`
{{.Rules}}
--begin instructions--
{{.Instructions}}
--end instructions--

The instructions might be referring to the following locals: {{.Locals}}
The instructions might be referring to the following globals: {{.Globals}}

Return a JSON document, with the {{.Keyword}} statement as the attribute "function_code" and the name of the function as the attribute "function_name".
`))

// Generation renders the user prompt asking for one routine in dialect.
func Generation(dialect string, instructions string, locals []string, globals []string) (string, error) {
	data := struct {
		Rules        string
		Instructions string
		Locals       string
		Globals      string
		Keyword      string
	}{
		Rules:        starlarkRules,
		Instructions: instructions,
		Locals:       nameList(locals),
		Globals:      nameList(globals),
		Keyword:      "def",
	}
	if dialect == "go" {
		data.Rules = goRules
		data.Keyword = "func"
	}
	buf := new(strings.Builder)
	if err := generationTemplate.Execute(buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func nameList(names []string) string {
	quoted := make([]string, 0, len(names))
	for _, name := range names {
		quoted = append(quoted, "'"+name+"'")
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
