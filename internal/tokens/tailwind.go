package tokens

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// DefaultConfigPath is where WriteConfig output is expected to live.
const DefaultConfigPath = "tailwind.config.js"

// DefaultContent is the Tailwind content glob list for a Vite React project.
var DefaultContent = []string{"./index.html", "./src/**/*.{js,ts,jsx,tsx}"}

// Entry is one named value inside a theme category.
type Entry struct {
	Name  string
	Value any
}

// Group holds a category's entries in insertion order.
type Group struct {
	Category string
	Entries  []Entry
}

// Config is a Tailwind configuration whose theme.extend section is built
// from tokens. Groups always holds every category of Categories, in order.
type Config struct {
	Content []string
	Groups  []Group
}

// GenerateConfig buckets tokens into theme.extend categories. Tokens with
// an unknown category are dropped. A repeated name within a category keeps
// its first position and its last value.
func GenerateConfig(toks []Token) *Config {
	cfg := &Config{
		Content: append([]string(nil), DefaultContent...),
		Groups:  make([]Group, len(Categories)),
	}
	index := make(map[string]int, len(Categories))
	for i, c := range Categories {
		cfg.Groups[i].Category = c
		index[c] = i
	}

	for _, t := range toks {
		gi, ok := index[t.Category]
		if !ok {
			continue
		}
		g := &cfg.Groups[gi]
		replaced := false
		for i := range g.Entries {
			if g.Entries[i].Name == t.Name {
				g.Entries[i].Value = t.Value
				replaced = true
				break
			}
		}
		if !replaced {
			g.Entries = append(g.Entries, Entry{Name: t.Name, Value: t.Value})
		}
	}
	return cfg
}

// Lookup returns the value stored under theme.extend.<category>.<name>.
func (c *Config) Lookup(category, name string) (any, bool) {
	for _, g := range c.Groups {
		if g.Category != category {
			continue
		}
		for _, e := range g.Entries {
			if e.Name == name {
				return e.Value, true
			}
		}
	}
	return nil, false
}

// JSON renders the configuration as indented JSON, keeping category and
// entry order.
func (c *Config) JSON() ([]byte, error) {
	var buf bytes.Buffer
	content, err := json.Marshal(c.Content)
	if err != nil {
		return nil, err
	}
	buf.WriteString(`{"content":`)
	buf.Write(content)
	buf.WriteString(`,"theme":{"extend":{`)
	for gi, g := range c.Groups {
		if gi > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, "%q:{", g.Category)
		for ei, e := range g.Entries {
			if ei > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(e.Name)
			if err != nil {
				return nil, err
			}
			val, err := json.Marshal(jsonSafe(e.Value))
			if err != nil {
				return nil, fmt.Errorf("encoding %s.%s: %w", g.Category, e.Name, err)
			}
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(val)
		}
		buf.WriteByte('}')
	}
	buf.WriteString(`}},"plugins":[]}`)

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return nil, fmt.Errorf("indenting config: %w", err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// jsonSafe converts map[any]any, produced by yaml.v3 for mappings with
// non-string keys, into map[string]any.
func jsonSafe(v any) any {
	switch x := v.(type) {
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, val := range x {
			m[fmt.Sprint(k)] = jsonSafe(val)
		}
		return m
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, val := range x {
			m[k] = jsonSafe(val)
		}
		return m
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = jsonSafe(val)
		}
		return out
	}
	return v
}

// JS renders the configuration as a tailwind.config.js ES module.
func (c *Config) JS() (string, error) {
	var b strings.Builder
	b.WriteString("/** @type {import('tailwindcss').Config} */\n")
	b.WriteString("export default {\n")
	b.WriteString("  content: [\n")
	for _, glob := range c.Content {
		fmt.Fprintf(&b, "    %s,\n", jsString(glob))
	}
	b.WriteString("  ],\n")
	b.WriteString("  theme: {\n")
	b.WriteString("    extend: {\n")
	for _, g := range c.Groups {
		if len(g.Entries) == 0 {
			fmt.Fprintf(&b, "      %s: {},\n", jsKey(g.Category))
			continue
		}
		fmt.Fprintf(&b, "      %s: {\n", jsKey(g.Category))
		for _, e := range g.Entries {
			val, err := jsValue(e.Value)
			if err != nil {
				return "", fmt.Errorf("encoding %s.%s: %w", g.Category, e.Name, err)
			}
			fmt.Fprintf(&b, "        %s: %s,\n", jsKey(e.Name), val)
		}
		b.WriteString("      },\n")
	}
	b.WriteString("    },\n")
	b.WriteString("  },\n")
	b.WriteString("  plugins: [],\n")
	b.WriteString("}\n")
	return b.String(), nil
}

var jsIdent = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

func jsKey(k string) string {
	if jsIdent.MatchString(k) {
		return k
	}
	return jsString(k)
}

var jsEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\r", `\r`)

func jsString(s string) string {
	return "'" + jsEscaper.Replace(s) + "'"
}

func jsValue(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "null", nil
	case string:
		return jsString(x), nil
	case bool:
		return strconv.FormatBool(x), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case []string:
		items := make([]any, len(x))
		for i, s := range x {
			items[i] = s
		}
		return jsValue(items)
	case []any:
		parts := make([]string, len(x))
		for i, item := range x {
			s, err := jsValue(item)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return "[" + strings.Join(parts, ", ") + "]", nil
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			s, err := jsValue(x[k])
			if err != nil {
				return "", err
			}
			parts[i] = jsKey(k) + ": " + s
		}
		return "{ " + strings.Join(parts, ", ") + " }", nil
	case map[any]any:
		return jsValue(jsonSafe(x))
	}
	return "", fmt.Errorf("unsupported token value type %T", v)
}

// WriteConfig writes cfg as a JS module to path, creating parent
// directories as needed.
func WriteConfig(path string, cfg *Config) error {
	js, err := cfg.JS()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(js), 0644); err != nil {
		return fmt.Errorf("writing tailwind config: %w", err)
	}
	return nil
}
