package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"complib/internal/assets"
	"complib/internal/config"
	"complib/internal/encryption"
	"complib/internal/figma"
	"complib/internal/github"
	"complib/internal/library"
	"complib/internal/model"
	"complib/internal/preview"
	"complib/internal/server"
	"complib/internal/store"
	"complib/internal/tokens"
)

// ErrComponentNotFound is returned for operations on an unknown component id.
var ErrComponentNotFound = errors.New("component not found")

// App is the application layer between the CLI and the library.
// It constructs all dependencies from config, exposes high-level operations,
// and closes the store and log file on Close.
type App struct {
	cfg      *config.Config
	store    library.Store
	lib      *library.Library
	renderer *preview.Renderer
	sealer   library.Sealer
	logger   *slog.Logger
	log      library.Logger
	clock    library.Clock
	op       *Operation
	logFile  *os.File
}

// NewApp creates a fully wired App from the given config.
// operation identifies the CLI command being run (e.g. "ListComponents", "Publish").
// The caller must call Close when done.
func NewApp(cfg *config.Config, operation string) (*App, error) {
	return newApp(cfg, operation, os.Stderr)
}

func newApp(cfg *config.Config, operation string, stderr io.Writer) (*App, error) {
	level, err := ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	clock := library.RealClock{}
	op := NewOperation(operation, clock.Now())
	logger, logFile, err := newLogger(cfg.LogDir, op.ID, level, stderr)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	s, err := store.NewStoreFromConfig(cfg.Store)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating store: %w", err)
	}
	if err := s.ValidateSetup(); err != nil {
		s.Close()
		logFile.Close()
		return nil, fmt.Errorf("store is not ready: %w", err)
	}

	sealer, err := encryption.NewSealerFromConfig(cfg.Sealing)
	if err != nil {
		s.Close()
		logFile.Close()
		return nil, fmt.Errorf("creating sealer: %w", err)
	}

	renderer, err := preview.NewRenderer()
	if err != nil {
		s.Close()
		logFile.Close()
		return nil, err
	}

	log := &slogAdapter{l: logger}
	logger.Debug("operation started", "operation", op.Name, "store", cfg.Store.Type)

	return &App{
		cfg:      cfg,
		store:    s,
		lib:      library.New(s, log, clock, library.UUIDGenerator{}),
		renderer: renderer,
		sealer:   sealer,
		logger:   logger,
		log:      log,
		clock:    clock,
		op:       op,
		logFile:  logFile,
	}, nil
}

// Config returns the config the App was built from.
func (a *App) Config() *config.Config { return a.cfg }

// Fail marks the current operation as failed so Close logs it as such.
func (a *App) Fail(err error) { a.op.Fail(err) }

// ListComponents returns the components matching f.
func (a *App) ListComponents(f library.Filter) ([]*model.GeneratedComponent, error) {
	return a.lib.SearchComponents(f)
}

// GetComponent returns the component with the given id or ErrComponentNotFound.
func (a *App) GetComponent(id string) (*model.GeneratedComponent, error) {
	c, err := a.lib.GetComponent(id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: %s", ErrComponentNotFound, id)
	}
	return c, nil
}

// AddComponentFromFile reads component source from path and adds it to the
// library. When nc.Name is empty the exported function name is used.
func (a *App) AddComponentFromFile(path string, nc library.NewComponent) (*model.GeneratedComponent, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading component source: %w", err)
	}
	nc.Code = string(code)
	if nc.Name == "" {
		nc.Name = preview.ExtractComponentName(nc.Code)
	}
	if nc.Source == "" {
		nc.Source = "cli"
	}
	return a.lib.AddComponent(nc)
}

// DeleteComponent removes a component and records the deletion. It reports
// whether anything was removed; unknown ids are not an error.
func (a *App) DeleteComponent(id string) (bool, error) {
	c, err := a.lib.GetComponent(id)
	if err != nil || c == nil {
		return false, err
	}
	if err := a.lib.DeleteAndRecord(id, library.ActionDeleted, nil); err != nil {
		return false, err
	}
	return true, nil
}

// DownloadComponent writes the component source to dir/<Name>.tsx and
// records the download. It returns the written path.
func (a *App) DownloadComponent(id, dir string) (string, error) {
	c, err := a.GetComponent(id)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(dir, c.Metadata.Name+".tsx")
	if err := os.WriteFile(path, []byte(c.Code), 0644); err != nil {
		return "", fmt.Errorf("writing component source: %w", err)
	}
	if err := a.lib.RecordHistory(library.ActionDownloaded, id, nil); err != nil {
		return "", err
	}
	return path, nil
}

// Preview renders the component's mock preview.
func (a *App) Preview(id string) (*preview.Preview, error) {
	c, err := a.GetComponent(id)
	if err != nil {
		return nil, err
	}
	return a.renderer.Render(c.Code)
}

// PreviewHTML returns the framed preview, or the error state when the
// source can't be rendered.
func (a *App) PreviewHTML(id string) (template.HTML, error) {
	c, err := a.GetComponent(id)
	if err != nil {
		return "", err
	}
	html, renderErr := a.renderer.RenderState(c.Code)
	if renderErr != nil {
		a.logger.Warn("preview failed", "component", id, "error", renderErr)
	}
	if html == "" {
		return "", renderErr
	}
	return html, nil
}

// History returns the action log, newest first.
func (a *App) History() ([]model.HistoryEntry, error) {
	return a.lib.History()
}

// ProjectConfig returns the stored project settings, or nil if none were saved.
func (a *App) ProjectConfig() (*model.ProjectConfig, error) {
	return a.lib.GetConfig()
}

// SaveProjectConfig validates and stores the project settings.
func (a *App) SaveProjectConfig(pc *model.ProjectConfig) error {
	if pc.Framework != "" && !pc.Framework.Valid() {
		return fmt.Errorf("invalid framework %q", pc.Framework)
	}
	if pc.Styling != "" && !pc.Styling.Valid() {
		return fmt.Errorf("invalid styling %q", pc.Styling)
	}
	return a.lib.SaveConfig(pc)
}

// Seed adds the built-in sample components that are not in the library yet.
func (a *App) Seed() (int, error) {
	samples, err := library.SampleComponents(a.clock.Now())
	if err != nil {
		return 0, err
	}
	return a.lib.Seed(samples)
}

// Export writes the library snapshot to w, sealed to the configured key
// when seal is true.
func (a *App) Export(w io.Writer, seal bool) error {
	data, err := a.lib.ExportAll()
	if err != nil {
		return err
	}
	if !seal {
		_, err := w.Write(data)
		return err
	}
	if !a.sealer.IsConfigured() {
		return encryption.ErrNotConfigured
	}
	return a.sealer.Seal(bytes.NewReader(data), w)
}

// Import replaces the library sections present in data. Sealed input is
// opened with the passphrase returned by passphrase, which is only called
// when needed.
func (a *App) Import(data []byte, passphrase func() (string, error)) error {
	if a.sealer.Sealed(data) {
		p, err := passphrase()
		if err != nil {
			return fmt.Errorf("reading passphrase: %w", err)
		}
		opener, err := a.sealer.Unlock(p)
		if err != nil {
			return err
		}
		var opened bytes.Buffer
		if err := opener.Open(bytes.NewReader(data), &opened); err != nil {
			return err
		}
		data = opened.Bytes()
	}
	return a.lib.ImportAll(data)
}

// SealingConfigured reports whether sealing keys exist.
func (a *App) SealingConfigured() bool {
	return a.sealer.IsConfigured()
}

// SetupKeys generates the sealing key pair protected by passphrase.
func (a *App) SetupKeys(passphrase string) error {
	if err := a.sealer.Setup(passphrase); err != nil {
		return fmt.Errorf("setting up sealing keys: %w", err)
	}
	a.logger.Info("sealing keys generated", "public_key", a.cfg.Sealing.PublicKeyPath)
	return nil
}

// githubTarget resolves owner, repo and branch from the [github] config,
// falling back to the stored project settings.
func (a *App) githubTarget() (model.GitHubTarget, error) {
	t := model.GitHubTarget{Owner: a.cfg.GitHub.Owner, Repo: a.cfg.GitHub.Repo, Branch: a.cfg.GitHub.Branch}
	if t.Owner == "" || t.Repo == "" {
		pc, err := a.lib.GetConfig()
		if err != nil {
			return t, err
		}
		if pc != nil {
			if t.Owner == "" {
				t.Owner = pc.GitHub.Owner
			}
			if t.Repo == "" {
				t.Repo = pc.GitHub.Repo
			}
			if t.Branch == "" {
				t.Branch = pc.GitHub.Branch
			}
		}
	}
	if t.Owner == "" || t.Repo == "" {
		return t, errors.New("github owner and repo are not configured")
	}
	if t.Branch == "" {
		t.Branch = github.DefaultBranch
	}
	return t, nil
}

// CreateRepo creates a repository for the authenticated user and returns its URL.
func (a *App) CreateRepo(ctx context.Context, name, description string, private bool) (string, error) {
	gc, err := github.NewClientFromConfig(a.cfg.GitHub, a.log)
	if err != nil {
		return "", err
	}
	return gc.CreateRepository(ctx, name, description, private)
}

// Publish writes the component's files to the configured repository and
// records the publish.
func (a *App) Publish(ctx context.Context, id string) (*github.PublishResult, error) {
	c, err := a.GetComponent(id)
	if err != nil {
		return nil, err
	}
	target, err := a.githubTarget()
	if err != nil {
		return nil, err
	}
	gc, err := github.NewClientFromConfig(a.cfg.GitHub, a.log)
	if err != nil {
		return nil, err
	}

	res, err := gc.PublishComponent(ctx, target.Owner, target.Repo, c, target.Branch)
	if err != nil {
		return res, fmt.Errorf("publishing %s: %w", c.Metadata.Name, err)
	}
	details := map[string]any{
		"repo":   target.Owner + "/" + target.Repo,
		"branch": target.Branch,
		"files":  len(res.Files),
	}
	if err := a.lib.RecordHistory(library.ActionPublished, id, details); err != nil {
		return res, err
	}
	return res, nil
}

// figmaFileID returns fileID, or the configured file when it is empty.
func (a *App) figmaFileID(fileID string) (string, error) {
	if fileID != "" {
		return fileID, nil
	}
	if a.cfg.Figma.FileID != "" {
		return a.cfg.Figma.FileID, nil
	}
	pc, err := a.lib.GetConfig()
	if err != nil {
		return "", err
	}
	if pc != nil && pc.Figma.FileID != "" {
		return pc.Figma.FileID, nil
	}
	return "", errors.New("no figma file id given or configured")
}

func (a *App) figmaClient() (*figma.Client, error) {
	cfg := a.cfg.Figma
	if cfg.AccessToken == "" {
		pc, err := a.lib.GetConfig()
		if err != nil {
			return nil, err
		}
		if pc != nil {
			cfg.AccessToken = pc.Figma.AccessToken
		}
	}
	return figma.NewClientFromConfig(cfg, a.log)
}

// FigmaNodes fetches the given nodes of a Figma file.
func (a *App) FigmaNodes(ctx context.Context, fileID string, nodeIDs []string) ([]model.FigmaNode, error) {
	fileID, err := a.figmaFileID(fileID)
	if err != nil {
		return nil, err
	}
	fc, err := a.figmaClient()
	if err != nil {
		return nil, err
	}
	return fc.GetFileNodes(ctx, fileID, nodeIDs)
}

// FigmaImages returns export URLs keyed by node id.
func (a *App) FigmaImages(ctx context.Context, fileID string, nodeIDs []string, format figma.ImageFormat) (map[string]string, error) {
	fileID, err := a.figmaFileID(fileID)
	if err != nil {
		return nil, err
	}
	fc, err := a.figmaClient()
	if err != nil {
		return nil, err
	}
	return fc.ExportImages(ctx, fileID, nodeIDs, format)
}

// AssetsRequest describes a Figma asset download.
type AssetsRequest struct {
	FileID  string
	NodeIDs []string
	Format  figma.ImageFormat
	Type    model.AssetType
	// ComponentID, when set, attaches the downloaded assets to that component.
	ComponentID string
}

// AssetsResult lists downloaded assets and the generated index files.
type AssetsResult struct {
	Assets       []model.AssetFile
	IndexPath    string
	ManifestPath string
}

// FigmaAssets exports the nodes as images, downloads them into the asset
// dir, and writes index.ts and manifest.json next to them.
func (a *App) FigmaAssets(ctx context.Context, req AssetsRequest) (*AssetsResult, error) {
	if req.Type == "" {
		req.Type = model.AssetImage
	}
	if !req.Type.Valid() {
		return nil, fmt.Errorf("invalid asset type %q", req.Type)
	}
	var comp *model.GeneratedComponent
	if req.ComponentID != "" {
		c, err := a.GetComponent(req.ComponentID)
		if err != nil {
			return nil, err
		}
		comp = c
	}

	urls, err := a.FigmaImages(ctx, req.FileID, req.NodeIDs, req.Format)
	if err != nil {
		return nil, err
	}

	mgr := assets.NewManager(a.cfg.Assets.Dir, a.log)
	downloaded, err := mgr.DownloadAll(ctx, urls, req.Type)
	if err != nil {
		return nil, err
	}

	res, err := writeAssetIndex(mgr.Dir(), downloaded, a.clock)
	if err != nil {
		return nil, err
	}

	if comp != nil {
		comp.Assets = append(comp.Assets, downloaded...)
		comp.Metadata.UpdatedAt = a.clock.Now()
		if err := a.lib.SaveComponent(comp); err != nil {
			return nil, fmt.Errorf("attaching assets to %s: %w", comp.Metadata.ID, err)
		}
	}
	a.logger.Info("assets downloaded", "count", len(downloaded), "dir", mgr.Dir())
	return res, nil
}

// writeAssetIndex writes index.ts importing each asset relative to dir, and
// manifest.json.
func writeAssetIndex(dir string, downloaded []model.AssetFile, clock library.Clock) (*AssetsResult, error) {
	rel := make([]model.AssetFile, len(downloaded))
	for i, f := range downloaded {
		rel[i] = f
		p, err := filepath.Rel(dir, f.LocalPath)
		if err != nil {
			return nil, fmt.Errorf("resolving asset path: %w", err)
		}
		rel[i].LocalPath = "./" + filepath.ToSlash(p)
	}

	index := assets.GenerateExports(rel) + "\n"
	if imports := assets.GenerateImports(rel); imports != "" {
		index = imports + "\n\n" + index
	}
	res := &AssetsResult{
		Assets:       downloaded,
		IndexPath:    filepath.Join(dir, "index.ts"),
		ManifestPath: filepath.Join(dir, "manifest.json"),
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating asset directory: %w", err)
	}
	if err := os.WriteFile(res.IndexPath, []byte(index), 0644); err != nil {
		return nil, fmt.Errorf("writing asset index: %w", err)
	}

	manifest, err := assets.Manifest(downloaded, clock.Now())
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(res.ManifestPath, manifest, 0644); err != nil {
		return nil, fmt.Errorf("writing asset manifest: %w", err)
	}
	return res, nil
}

// TokenSource selects where GenerateTokens reads design tokens from.
// Precedence: FromFigma, Path, the configured source_path, built-in defaults.
type TokenSource struct {
	Path      string
	FromFigma bool
	FileID    string
	// Output overrides the configured output path.
	Output string
}

// GenerateTokens builds the Tailwind config from the selected tokens and
// writes it. It returns the config and the path written.
func (a *App) GenerateTokens(ctx context.Context, src TokenSource) (*tokens.Config, string, error) {
	toks, err := a.loadTokens(ctx, src)
	if err != nil {
		return nil, "", err
	}

	out := src.Output
	if out == "" {
		out = a.cfg.Tokens.OutputPath
	}
	if out == "" {
		out = tokens.DefaultConfigPath
	}

	cfg := tokens.GenerateConfig(toks)
	if strings.EqualFold(filepath.Ext(out), ".json") {
		data, err := cfg.JSON()
		if err != nil {
			return nil, "", err
		}
		if err := os.WriteFile(out, data, 0644); err != nil {
			return nil, "", fmt.Errorf("writing tailwind config: %w", err)
		}
	} else if err := tokens.WriteConfig(out, cfg); err != nil {
		return nil, "", err
	}
	a.logger.Info("tailwind config generated", "tokens", len(toks), "path", out)
	return cfg, out, nil
}

func (a *App) loadTokens(ctx context.Context, src TokenSource) ([]tokens.Token, error) {
	switch {
	case src.FromFigma:
		fileID, err := a.figmaFileID(src.FileID)
		if err != nil {
			return nil, err
		}
		fc, err := a.figmaClient()
		if err != nil {
			return nil, err
		}
		collections, variables, err := fc.GetLocalVariables(ctx, fileID)
		if err != nil {
			return nil, err
		}
		return tokens.FromFigmaVariables(collections, variables)
	case src.Path != "":
		return tokens.LoadFile(src.Path)
	case a.cfg.Tokens.SourcePath != "":
		return tokens.LoadFile(a.cfg.Tokens.SourcePath)
	default:
		return tokens.DefaultTokens()
	}
}

// Serve runs the library browser until ctx is cancelled.
func (a *App) Serve(ctx context.Context, addr string) error {
	if addr == "" {
		addr = a.cfg.Server.Addr
	}
	srv := server.New(server.Config{
		Addr:     addr,
		Library:  a.lib,
		Renderer: a.renderer,
		Logger:   a.logger,
	})
	return srv.Serve(ctx)
}

// Close logs the operation outcome and closes the store and log file.
func (a *App) Close() error {
	var firstErr error

	elapsed := a.clock.Now().Sub(a.op.StartedAt)
	if a.op.Failed() {
		a.logger.Error("operation failed", "operation", a.op.Name, "duration", elapsed, "error", a.op.Err)
	} else {
		a.logger.Debug("operation finished", "operation", a.op.Name, "duration", elapsed)
	}

	if err := a.store.Close(); err != nil {
		firstErr = fmt.Errorf("closing store: %w", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}
