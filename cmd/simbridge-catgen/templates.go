package main

import (
	"fmt"
	"strings"
	"text/template"
)

// dataTypes maps catalog types to native data types and cell constructors.
var dataTypes = map[string]struct {
	Native string
	Cell   string
	GoType string
}{
	"float":  {"native.DataTypeFloat64", "property.NewFloat", "float64"},
	"bool":   {"native.DataTypeInt32", "property.NewBool", "bool"},
	"int":    {"native.DataTypeInt64", "property.NewInt", "int64"},
	"string": {"native.DataTypeString256", "property.NewString", "string"},
}

var funcMap = template.FuncMap{
	"concat":     func(a, b string) string { return a + b },
	"quote":      func(s string) string { return fmt.Sprintf("%q", s) },
	"nativeType": func(t string) string { return dataTypes[t].Native },
	"eventConst": eventConst,
	"decimals":   decimals,
}

var templates = template.Must(template.New("").Funcs(funcMap).Parse(
	headerTmpl + idsTmpl + catalogTmpl,
))

func renderTemplate(b *strings.Builder, name string, data any) {
	if err := templates.ExecuteTemplate(b, name, data); err != nil {
		panic(fmt.Sprintf("template %s: %v", name, err))
	}
}

const headerTmpl = `{{define "header"}}// Code generated by simbridge-catgen. DO NOT EDIT.

package {{.Package}}

import (
	"github.com/simbridge/simbridge-go/pkg/native"
	"github.com/simbridge/simbridge-go/pkg/property"
)
{{end}}`

const idsTmpl = `{{define "ids"}}
// Notification group ids.
const (
{{- range .Groups}}
	Group{{.Name}} native.GroupID = {{.ID}}
{{- end}}
)

// Field ids.
const (
{{- range .Groups}}
{{- $g := .}}
{{- range .Properties}}
	Field{{$g.Name}}{{.Key}} native.FieldID = {{.Field}}
{{- end}}
{{- end}}
)
{{- if .Events}}

// Client event ids.
const (
{{- range .Events}}
	{{eventConst .Name}} native.EventID = {{.ID}}
{{- end}}
)
{{- end}}
{{end}}`

const catalogTmpl = `{{define "catalog"}}
{{- range .Groups}}
{{- $g := .}}

// {{.Name}}Catalog lists the fields of the {{.Name}} group.
{{- if .Description}}
// {{.Description}}
{{- end}}
var {{.Name}}Catalog = []property.Descriptor{
{{- range .Properties}}
	{
		Key:      {{quote .Key}},
		Field:    Field{{$g.Name}}{{.Key}},
		Request:  native.RequestID(Group{{$g.Name}}),
		Group:    Group{{$g.Name}},
		Name:     {{quote .Native}},
		{{- if .Unit}}
		Unit:     {{quote .Unit}},
		{{- end}}
		Type:     {{nativeType .Type}},
		Decimals: {{decimals .}},
		{{- if .Writable}}
		Writable: true,
		{{- end}}
		{{- if .Event}}
		Event:    &property.EventBinding{ID: {{eventConst .Event}}, Name: {{quote .Event}}},
		{{- end}}
	},
{{- end}}
}
{{- end}}
{{end}}`

// eventConst converts "TOGGLE_MASTER_BATTERY" to "EventToggleMasterBattery".
func eventConst(name string) string {
	var b strings.Builder
	b.WriteString("Event")
	for _, part := range strings.Split(strings.ToLower(name), "_") {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}

func decimals(p RawPropertyDef) string {
	if p.Type != "float" || p.Decimals == nil {
		return "property.NoRounding"
	}
	return fmt.Sprintf("%d", *p.Decimals)
}
