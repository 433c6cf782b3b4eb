package tokens

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultTokensYAML []byte

// DefaultTokens returns the built-in design system token set.
func DefaultTokens() ([]Token, error) {
	var toks []Token
	if err := yaml.Unmarshal(defaultTokensYAML, &toks); err != nil {
		return nil, fmt.Errorf("parsing default tokens: %w", err)
	}
	return normalize(toks), nil
}

// LoadFile reads a token list from a .yaml, .yml or .json file. Tokens
// without a category are categorised by name.
func LoadFile(path string) ([]Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tokens file: %w", err)
	}

	var toks []Token
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &toks)
	case ".json":
		err = json.Unmarshal(data, &toks)
	default:
		return nil, fmt.Errorf("unsupported tokens file extension %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing tokens file %s: %w", path, err)
	}

	for i, t := range toks {
		if t.Name == "" {
			return nil, fmt.Errorf("token %d in %s has no name", i, path)
		}
	}
	return normalize(toks), nil
}

func normalize(toks []Token) []Token {
	for i := range toks {
		t := &toks[i]
		if t.Category == "" {
			c := Categorize(t.Name)
			t.Name = c.TokenName
			t.Category = c.Category
			t.Type = c.Type
			continue
		}
		if t.Type == "" {
			if typ, ok := TypeForCategory(t.Category); ok {
				t.Type = typ
			}
		}
	}
	return toks
}
