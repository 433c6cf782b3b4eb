// Package tokens categorises design tokens and turns them into a Tailwind
// theme configuration.
package tokens

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"complib/internal/model"
)

// Type is the kind of value a token carries.
type Type string

const (
	TypeColor        Type = "color"
	TypeSpacing      Type = "spacing"
	TypeFontSize     Type = "fontSize"
	TypeFontFamily   Type = "fontFamily"
	TypeFontWeight   Type = "fontWeight"
	TypeLineHeight   Type = "lineHeight"
	TypeBorderRadius Type = "borderRadius"
	TypeBoxShadow    Type = "boxShadow"
)

// Theme categories, in the order they appear in generated configuration.
const (
	CategoryColors       = "colors"
	CategorySpacing      = "spacing"
	CategoryFontSize     = "fontSize"
	CategoryFontFamily   = "fontFamily"
	CategoryFontWeight   = "fontWeight"
	CategoryLineHeight   = "lineHeight"
	CategoryBorderRadius = "borderRadius"
	CategoryBoxShadow    = "boxShadow"
)

// Categories lists every known category in output order.
var Categories = []string{
	CategoryColors,
	CategorySpacing,
	CategoryFontSize,
	CategoryFontFamily,
	CategoryFontWeight,
	CategoryLineHeight,
	CategoryBorderRadius,
	CategoryBoxShadow,
}

// Token is a named design value. Value is a string, a number or a list of
// strings (font stacks), or anything else YAML/JSON can express.
type Token struct {
	Name     string `json:"name" yaml:"name"`
	Value    any    `json:"value" yaml:"value"`
	Type     Type   `json:"type,omitempty" yaml:"type,omitempty"`
	Category string `json:"category,omitempty" yaml:"category,omitempty"`
}

// Classification is the result of Categorize.
type Classification struct {
	Category  string
	TokenName string
	Type      Type
}

var (
	colorPrefix  = regexp.MustCompile(`^(primary|secondary|accent|neutral|gray|red|green|blue|yellow)`)
	nonAlnumChar = regexp.MustCompile(`[^a-z0-9]`)
)

type rule struct {
	match    func(name string) bool
	category string
	typ      Type
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Evaluated in order; the first match wins.
var rules = []rule{
	{func(n string) bool { return strings.Contains(n, "color") || colorPrefix.MatchString(n) }, CategoryColors, TypeColor},
	{func(n string) bool { return containsAny(n, "space", "gap", "margin", "padding") }, CategorySpacing, TypeSpacing},
	{func(n string) bool { return strings.Contains(n, "font") && strings.Contains(n, "size") }, CategoryFontSize, TypeFontSize},
	{func(n string) bool { return strings.Contains(n, "font") && strings.Contains(n, "family") }, CategoryFontFamily, TypeFontFamily},
	{func(n string) bool { return strings.Contains(n, "font") && strings.Contains(n, "weight") }, CategoryFontWeight, TypeFontWeight},
	{func(n string) bool { return strings.Contains(n, "line") && strings.Contains(n, "height") }, CategoryLineHeight, TypeLineHeight},
	{func(n string) bool { return strings.Contains(n, "radius") }, CategoryBorderRadius, TypeBorderRadius},
	{func(n string) bool { return strings.Contains(n, "shadow") }, CategoryBoxShadow, TypeBoxShadow},
}

// TokenName lowercases name and replaces every character outside [a-z0-9]
// with '-'.
func TokenName(name string) string {
	return nonAlnumChar.ReplaceAllString(strings.ToLower(name), "-")
}

// Categorize buckets a variable name by keyword. Names matching nothing are
// treated as spacing.
func Categorize(name string) Classification {
	lower := strings.ToLower(name)
	c := Classification{Category: CategorySpacing, TokenName: TokenName(name), Type: TypeSpacing}
	for _, r := range rules {
		if r.match(lower) {
			c.Category = r.category
			c.Type = r.typ
			break
		}
	}
	return c
}

// TypeForCategory returns the token type stored under category.
func TypeForCategory(category string) (Type, bool) {
	switch category {
	case CategoryColors:
		return TypeColor, true
	case CategorySpacing, CategoryFontSize, CategoryFontFamily, CategoryFontWeight,
		CategoryLineHeight, CategoryBorderRadius, CategoryBoxShadow:
		return Type(category), true
	}
	return "", false
}

// Color is a Figma RGBA color with channels in 0..1. A nil A means opaque.
type Color struct {
	R float64  `json:"r"`
	G float64  `json:"g"`
	B float64  `json:"b"`
	A *float64 `json:"a,omitempty"`
}

// CSS formats c as rgb(r, g, b), or rgba(r, g, b, a) when not opaque.
func (c Color) CSS() string {
	r := int(math.Round(c.R * 255))
	g := int(math.Round(c.G * 255))
	b := int(math.Round(c.B * 255))
	if c.A == nil || *c.A == 1 {
		return fmt.Sprintf("rgb(%d, %d, %d)", r, g, b)
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, strconv.FormatFloat(*c.A, 'f', -1, 64))
}

// ConvertColor converts a raw Figma color value to CSS. JSON strings pass
// through unchanged; objects with r/g/b channels are formatted with CSS.
func ConvertColor(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return "", fmt.Errorf("decoding color: %w", err)
	}
	if _, ok := probe["r"]; !ok {
		return "", fmt.Errorf("color value has no r channel: %s", raw)
	}
	var c Color
	if err := json.Unmarshal(raw, &c); err != nil {
		return "", fmt.Errorf("decoding color: %w", err)
	}
	return c.CSS(), nil
}

// FromFigmaVariables converts each variable's default-mode value into a
// token categorised by the variable's name. Variables whose collection is
// unknown, whose default-mode value is missing, booleans and aliases to
// other variables are skipped. Order follows variables.
func FromFigmaVariables(collections []model.FigmaVariableCollection, variables []model.FigmaVariable) ([]Token, error) {
	defaultMode := make(map[string]string, len(collections))
	for _, c := range collections {
		defaultMode[c.ID] = c.DefaultModeID
	}

	var out []Token
	for _, v := range variables {
		modeID, ok := defaultMode[v.VariableCollectionID]
		if !ok {
			continue
		}
		raw, ok := v.ValuesByMode[modeID]
		if !ok || isAlias(raw) {
			continue
		}

		var value any
		switch v.ResolvedType {
		case "COLOR":
			css, err := ConvertColor(raw)
			if err != nil {
				return nil, fmt.Errorf("variable %s: %w", v.Name, err)
			}
			value = css
		case "FLOAT":
			var f float64
			if err := json.Unmarshal(raw, &f); err != nil {
				return nil, fmt.Errorf("variable %s: decoding float: %w", v.Name, err)
			}
			value = f
		case "STRING":
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return nil, fmt.Errorf("variable %s: decoding string: %w", v.Name, err)
			}
			value = s
		default:
			continue
		}

		c := Categorize(v.Name)
		out = append(out, Token{Name: c.TokenName, Value: value, Type: c.Type, Category: c.Category})
	}
	return out, nil
}

func isAlias(raw json.RawMessage) bool {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return false
	}
	return probe.Type == "VARIABLE_ALIAS"
}
