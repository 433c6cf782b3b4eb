// Package assets downloads exported design assets and generates the code
// that imports them.
package assets

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"time"

	fastshot "github.com/opus-domini/fast-shot"
	"golang.org/x/sync/errgroup"

	"complib/internal/library"
	"complib/internal/model"
)

// DefaultExtension is used when a URL path has no extension.
const DefaultExtension = "png"

// maxParallel bounds DownloadAll.
const maxParallel = 4

// Manager stores downloaded assets under <dir>/<type>s/<name>.
type Manager struct {
	dir     string
	logger  library.Logger
	timeout time.Duration
}

func NewManager(dir string, logger library.Logger) *Manager {
	return &Manager{dir: dir, logger: logger, timeout: time.Minute}
}

// Dir returns the root directory assets are written to.
func (m *Manager) Dir() string { return m.dir }

func fetch(ctx context.Context, rawURL string, timeout time.Duration) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing asset url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported asset url scheme %q", u.Scheme)
	}

	client := fastshot.NewClient(u.Scheme + "://" + u.Host).
		Config().SetTimeout(timeout).
		Config().SetFollowRedirects(true).
		Build()

	resp, err := client.GET(u.RequestURI()).Context().Set(ctx).Send()
	if err != nil {
		return nil, fmt.Errorf("downloading asset: %w", err)
	}
	defer resp.Body().Close()

	if resp.Status().IsError() {
		return nil, fmt.Errorf("failed to download asset: status %d", resp.Status().Code())
	}
	body, err := resp.Body().AsString()
	if err != nil {
		return nil, fmt.Errorf("reading asset body: %w", err)
	}
	return []byte(body), nil
}

// Download fetches rawURL and stores it as name. Image and icon assets get
// their pixel dimensions when the format is PNG, JPEG or GIF.
func (m *Manager) Download(ctx context.Context, rawURL, name string, typ model.AssetType) (*model.AssetFile, error) {
	if !typ.Valid() {
		return nil, fmt.Errorf("invalid asset type %q", typ)
	}
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return nil, fmt.Errorf("invalid asset name %q", name)
	}

	data, err := fetch(ctx, rawURL, m.timeout)
	if err != nil {
		m.logger.Error("asset download failed", "url", rawURL, "error", err)
		return nil, err
	}

	dir := filepath.Join(m.dir, string(typ)+"s")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating asset directory: %w", err)
	}
	localPath := filepath.Join(dir, name)
	if err := os.WriteFile(localPath, data, 0644); err != nil {
		return nil, fmt.Errorf("writing asset: %w", err)
	}

	asset := &model.AssetFile{
		Name:      name,
		Type:      typ,
		URL:       rawURL,
		LocalPath: localPath,
		Size:      int64(len(data)),
	}
	if typ == model.AssetImage || typ == model.AssetIcon {
		if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
			asset.Dimensions = &model.Dimensions{Width: cfg.Width, Height: cfg.Height}
		}
	}

	m.logger.Debug("downloaded asset", "name", name, "size", asset.Size)
	return asset, nil
}

// DownloadAll downloads every url concurrently, naming each file
// <nodeID>.<ext>. The first failure cancels the rest. The result is sorted
// by name.
func (m *Manager) DownloadAll(ctx context.Context, urls map[string]string, typ model.AssetType) ([]model.AssetFile, error) {
	nodeIDs := make([]string, 0, len(urls))
	for id := range urls {
		nodeIDs = append(nodeIDs, id)
	}
	sort.Strings(nodeIDs)

	out := make([]model.AssetFile, len(nodeIDs))
	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(maxParallel)
	for i, id := range nodeIDs {
		eg.Go(func() error {
			u := urls[id]
			a, err := m.Download(egctx, u, id+"."+Extension(u), typ)
			if err != nil {
				return fmt.Errorf("asset %s: %w", id, err)
			}
			out[i] = *a
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Extension returns the extension of the URL path without the dot, or
// DefaultExtension.
func Extension(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return DefaultExtension
	}
	ext := path.Ext(u.Path)
	if len(ext) < 2 {
		return DefaultExtension
	}
	return ext[1:]
}
