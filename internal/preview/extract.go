package preview

import (
	"regexp"
	"strings"
)

var (
	exportPattern = regexp.MustCompile(`export function (\w+)`)
	propsPattern  = regexp.MustCompile(`interface (\w+)Props\s*\{([^}]+)\}`)
)

// ExtractComponentName returns the name of the first exported function in
// code, or "" if there is none.
func ExtractComponentName(code string) string {
	m := exportPattern.FindStringSubmatch(code)
	if m == nil {
		return ""
	}
	return m[1]
}

// ExtractPropsBody returns the body of the first `interface XProps { ... }`
// declaration in code, or "" if there is none.
func ExtractPropsBody(code string) string {
	m := propsPattern.FindStringSubmatch(code)
	if m == nil {
		return ""
	}
	return m[2]
}

// MockProps holds placeholder values for the props a component declares.
// Empty fields were not declared.
type MockProps struct {
	Children string `json:"children,omitempty"`
	Title    string `json:"title,omitempty"`
	Label    string `json:"label,omitempty"`
	Text     string `json:"text,omitempty"`
	// OnClick is the action label a click would report.
	OnClick string `json:"onClick,omitempty"`
}

// InferProps fills placeholder values for each well-known prop whose name
// occurs anywhere in the props interface body.
func InferProps(name, body string) MockProps {
	var p MockProps
	if body == "" {
		return p
	}
	if strings.Contains(body, "children") {
		p.Children = name + " Preview"
	}
	if strings.Contains(body, "title") {
		p.Title = "Sample Title"
	}
	if strings.Contains(body, "label") {
		p.Label = "Sample Label"
	}
	if strings.Contains(body, "text") {
		p.Text = "Sample Text"
	}
	if strings.Contains(body, "onClick") {
		p.OnClick = name + " clicked"
	}
	return p
}
