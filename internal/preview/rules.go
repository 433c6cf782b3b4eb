package preview

import "strings"

// Kind names the mock template a component is rendered with.
type Kind string

const (
	KindButton  Kind = "button"
	KindCard    Kind = "card"
	KindInput   Kind = "input"
	KindModal   Kind = "modal"
	KindBadge   Kind = "badge"
	KindDefault Kind = "default"
)

// Rule maps component names containing any of Keywords to a template.
type Rule struct {
	Kind     Kind
	Keywords []string
	// Template is the name of a template defined in the renderer's set.
	Template string
}

// Match reports whether the lowercased component name contains one of the
// rule's keywords.
func (r Rule) Match(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range r.Keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// DefaultRules returns the built-in rules in priority order.
func DefaultRules() []Rule {
	return []Rule{
		{Kind: KindButton, Keywords: []string{"button"}, Template: "button"},
		{Kind: KindCard, Keywords: []string{"card"}, Template: "card"},
		{Kind: KindInput, Keywords: []string{"input"}, Template: "input"},
		{Kind: KindModal, Keywords: []string{"modal", "dialog"}, Template: "modal"},
		{Kind: KindBadge, Keywords: []string{"badge", "tag"}, Template: "badge"},
	}
}

// FallbackRule is used when no rule matches.
var FallbackRule = Rule{Kind: KindDefault, Template: "default"}

// Classify returns the first rule in rules that matches name, or FallbackRule.
func Classify(rules []Rule, name string) Rule {
	for _, r := range rules {
		if r.Match(name) {
			return r
		}
	}
	return FallbackRule
}
