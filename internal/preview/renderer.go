// Package preview turns component source text into a best-effort HTML mock.
// It never executes or parses the source: the component name and the props
// interface are found by pattern matching and the name picks a template.
package preview

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"strings"
)

//go:embed templates/*.html
var templateFiles embed.FS

// ErrNoComponentExport is returned when the source has no exported function.
var ErrNoComponentExport = errors.New("could not find component export")

// Preview is a rendered mock of a component.
type Preview struct {
	ComponentName string        `json:"componentName"`
	Kind          Kind          `json:"kind"`
	Props         MockProps     `json:"props"`
	HTML          template.HTML `json:"html"`
}

// Renderer applies an ordered rule list to component source.
type Renderer struct {
	rules []Rule
	tmpl  *template.Template
}

// NewRenderer creates a Renderer. With no rules it uses DefaultRules.
func NewRenderer(rules ...Rule) (*Renderer, error) {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	tmpl, err := template.ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing preview templates: %w", err)
	}
	all := append([]Rule{FallbackRule}, rules...)
	for _, r := range all {
		if tmpl.Lookup(r.Template) == nil {
			return nil, fmt.Errorf("rule %q references unknown template %q", r.Kind, r.Template)
		}
	}
	return &Renderer{rules: all[1:], tmpl: tmpl}, nil
}

type templateData struct {
	Name      string
	LowerName string
	Props     MockProps
}

// Render extracts the component name and props from code and renders the
// matching template.
func (r *Renderer) Render(code string) (*Preview, error) {
	name := ExtractComponentName(code)
	if name == "" {
		return nil, ErrNoComponentExport
	}
	props := InferProps(name, ExtractPropsBody(code))
	rule := Classify(r.rules, name)

	var buf bytes.Buffer
	data := templateData{Name: name, LowerName: strings.ToLower(name), Props: props}
	if err := r.tmpl.ExecuteTemplate(&buf, rule.Template, data); err != nil {
		return nil, fmt.Errorf("rendering %s template: %w", rule.Kind, err)
	}

	return &Preview{
		ComponentName: name,
		Kind:          rule.Kind,
		Props:         props,
		HTML:          template.HTML(buf.String()),
	}, nil
}

// RenderState always returns displayable HTML: the framed preview, or the
// error state carrying the failure message. The error is returned as well so
// callers can count or log it.
func (r *Renderer) RenderState(code string) (template.HTML, error) {
	p, renderErr := r.Render(code)

	var buf bytes.Buffer
	var err error
	if renderErr != nil {
		err = r.tmpl.ExecuteTemplate(&buf, "error", renderErr.Error())
	} else {
		err = r.tmpl.ExecuteTemplate(&buf, "frame", p)
	}
	if err != nil {
		return "", fmt.Errorf("rendering preview frame: %w", err)
	}
	return template.HTML(buf.String()), renderErr
}
