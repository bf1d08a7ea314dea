package routes

import (
	"bytes"
	"strconv"
	"strings"
	"text/template"

	"github.com/toyz/modelcore/internal/errors"
)

const generatedHeader = "// Code generated by modelcore. DO NOT EDIT."

const routesTemplate = generatedHeader + `
// Sources: {{join .Sources ", "}}

package {{.Package}}

import (
	"net/http"
{{range .Imports}}
	{{.Alias}} {{quote .Path}}
{{- end}}
)
{{if not .Static}}
// Controllers holds the controller instances the routes dispatch to
type Controllers struct {
{{- range .Controllers}}
	{{.Field}} *{{.Alias}}.{{.Type}}
{{- end}}
}
{{end}}
// Routes returns every route in source order
func Routes({{.ControllersParam}}) []router.Route {
	return []router.Route{
{{- range .Routes}}
		{
			Method: {{quote .Method}},
			Path: {{quote .Path}},
			Action: {{quote .Action}},
{{- if .Modifiers}}
			Modifiers: []string{ {{- quoteList .Modifiers -}} },
{{- end}}
			Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
{{- range .Bindings}}
				{{.Var}}, err := {{.Expr}}
				if err != nil {
					router.WriteError(w, err)
					return
				}
{{- end}}
				{{.Call}}(w, r{{range .Args}}, {{.}}{{end}})
			}),
		},
{{- end}}
	}
}

// Table validates Routes into a router table
func Table({{.ControllersParam}}) (*router.Table, error) {
	return router.NewTable(Routes({{.ControllersArg}})...)
}
{{if .ServeMux}}
// Mux mounts Table on a new ServeMux
func Mux({{.ControllersParam}}) (*http.ServeMux, error) {
	table, err := Table({{.ControllersArg}})
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	router.MountServeMux(mux, table)
	return mux, nil
}
{{end}}`

const reverseTemplate = generatedHeader + `
// Sources: {{join .Sources ", "}}

package {{.Package}}

import (
{{- range .Imports}}
	{{.Alias}} {{quote .Path}}
{{- end}}
)
{{range .Groups}}{{$group := .}}
type {{.TypeName}} struct{}

// {{.VarName}} builds URLs for {{.Describe}}
var {{.VarName}} {{.TypeName}}
{{range .Calls}}
// {{.Name}} reverses {{.Method}} {{.Path}}
func ({{$group.TypeName}}) {{.Name}}({{range $i, $a := .Args}}{{if $i}}, {{end}}{{$a.Var}} {{$a.Type}}{{end}}) router.Call {
	values := map[string]any{
{{- range .Args}}{{if not .Default}}
		{{quote .Key}}: {{.Var}},
{{- end}}{{end}}
	}
{{- range .Args}}{{if .Default}}
	if {{.Var}} != {{.Default}} {
		values[{{quote .Key}}] = {{.Var}}
	}
{{- end}}{{end}}
	return router.MustReverse({{quote .Method}}, {{quote .Path}}, values)
}
{{end}}{{end}}`

var templateFuncs = template.FuncMap{
	"join":  strings.Join,
	"quote": strconv.Quote,
	"quoteList": func(items []string) string {
		quoted := make([]string, len(items))
		for i, item := range items {
			quoted[i] = strconv.Quote(item)
		}
		return strings.Join(quoted, ", ")
	},
}

var templates = template.Must(template.New("routes").Funcs(templateFuncs).Parse(routesTemplate))

func init() {
	template.Must(templates.New("reverse").Parse(reverseTemplate))
}

// executeTemplate renders the named template
func executeTemplate(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, errors.WrapTemplateError(name, "execute", err)
	}
	return buf.Bytes(), nil
}
