package codegen

import (
	"io"
	"text/template"
)

type TemplateData struct {
	CommandLine       string
	PackageName       string
	StartRule         string
	StartRuleTypeName string
	Idents            IdentsWriter
	Grammar           *GoNode
	Types             []NodeType
}

var fileTemplate = template.Must(template.New("file").Parse(
	`// Code generated by "descent {{.CommandLine}}". DO NOT EDIT.

package {{.PackageName}}

import "github.com/arr-ai/descent/parser"

{{.Idents}}

// Grammar builds the grammar. Rules naming a transform take it from transforms; a
// missing transform leaves matches unchanged.
func Grammar(transforms map[string]parser.Transform) (*parser.Grammar, error) {
	return parser.NewGrammar({{.Grammar}})
}
{{range .Types}}
{{.}}{{end}}
{{- if .StartRule}}

// Parse parses all of source from {{.StartRule}}.
func Parse(g *parser.Grammar, source string) ({{.StartRuleTypeName}}, error) {
	node, err := g.Parse(source, {{printf "%q" .StartRule}}, true)
	return {{.StartRuleTypeName}}{node}, err
}
{{- end}}
`))

// Write renders a Go source file for data. The output is not gofmt-ed.
func Write(w io.Writer, data TemplateData) error {
	return fileTemplate.Execute(w, data)
}
