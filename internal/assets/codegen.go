package assets

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"complib/internal/model"
)

// ManifestVersion is the version field written by Manifest.
const ManifestVersion = "1.0.0"

var (
	nonAlnum   = regexp.MustCompile(`[^a-z0-9]`)
	dashRun    = regexp.MustCompile(`-+`)
	identifier = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)
)

// OptimizeName turns a Figma layer name into a lowercase dash-separated
// identifier with no leading or trailing dashes.
func OptimizeName(figmaName string) string {
	s := nonAlnum.ReplaceAllString(strings.ToLower(figmaName), "-")
	s = dashRun.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

func importName(i int) string { return fmt.Sprintf("asset%d", i) }

// GenerateImports returns one ES import per asset, named asset0, asset1, ...
func GenerateImports(assets []model.AssetFile) string {
	lines := make([]string, len(assets))
	for i, a := range assets {
		lines[i] = fmt.Sprintf("import %s from '%s';", importName(i), filepath.ToSlash(a.LocalPath))
	}
	return strings.Join(lines, "\n")
}

// GenerateExports returns an `assets` object mapping each asset's optimized
// base name to its import. A repeated key keeps its first position and the
// last import.
func GenerateExports(assets []model.AssetFile) string {
	var keys []string
	values := make(map[string]string, len(assets))
	for i, a := range assets {
		key := OptimizeName(strings.TrimSuffix(a.Name, filepath.Ext(a.Name)))
		if _, seen := values[key]; !seen {
			keys = append(keys, key)
		}
		values[key] = importName(i)
	}

	if len(keys) == 0 {
		return "export const assets = {};"
	}
	var b strings.Builder
	b.WriteString("export const assets = {\n")
	for _, k := range keys {
		prop := k
		if !identifier.MatchString(k) {
			prop = "'" + k + "'"
		}
		fmt.Fprintf(&b, "  %s: %s,\n", prop, values[k])
	}
	b.WriteString("};")
	return b.String()
}

type manifestAsset struct {
	Name       string            `json:"name"`
	Type       model.AssetType   `json:"type"`
	Size       int64             `json:"size"`
	Dimensions *model.Dimensions `json:"dimensions,omitempty"`
	LocalPath  string            `json:"localPath"`
}

type manifest struct {
	Version     string          `json:"version"`
	GeneratedAt time.Time       `json:"generatedAt"`
	Assets      []manifestAsset `json:"assets"`
}

// Manifest describes assets as indented JSON.
func Manifest(assets []model.AssetFile, now time.Time) ([]byte, error) {
	m := manifest{Version: ManifestVersion, GeneratedAt: now.UTC(), Assets: make([]manifestAsset, len(assets))}
	for i, a := range assets {
		m.Assets[i] = manifestAsset{
			Name:       a.Name,
			Type:       a.Type,
			Size:       a.Size,
			Dimensions: a.Dimensions,
			LocalPath:  filepath.ToSlash(a.LocalPath),
		}
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding asset manifest: %w", err)
	}
	return data, nil
}
