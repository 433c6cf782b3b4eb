// Package github publishes components to GitHub repositories.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"

	gh "github.com/google/go-github/v60/github"

	"complib/internal/config"
	"complib/internal/library"
	"complib/internal/model"
)

// DefaultBranch is used when no branch is given.
const DefaultBranch = "main"

// ErrMissingToken is returned when a client is configured without a token.
var ErrMissingToken = errors.New("github token is not configured")

// APIError is a non-2xx response from GitHub.
type APIError struct {
	StatusCode int
	Status     string
	Err        error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("GitHub API error: %s", e.Status)
}

func (e *APIError) Unwrap() error { return e.Err }

// Client wraps a go-github client authenticated with a personal token.
type Client struct {
	gh     *gh.Client
	logger library.Logger
}

// NewClient creates a Client. An empty baseURL talks to api.github.com.
func NewClient(baseURL, token string, logger library.Logger) (*Client, error) {
	c := gh.NewClient(nil).WithAuthToken(token)
	if baseURL != "" {
		u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parsing github base url: %w", err)
		}
		c.BaseURL = u
	}
	return &Client{gh: c, logger: logger}, nil
}

// NewClientFromConfig creates a Client from the [github] config section.
func NewClientFromConfig(cfg config.GitHubConfig, logger library.Logger) (*Client, error) {
	if cfg.Token == "" {
		return nil, ErrMissingToken
	}
	return NewClient(cfg.BaseURL, cfg.Token, logger)
}

func apiError(resp *gh.Response, err error) error {
	if resp != nil && resp.Response != nil {
		return &APIError{StatusCode: resp.StatusCode, Status: http.StatusText(resp.StatusCode), Err: err}
	}
	return err
}

// CreateRepository creates an auto-initialised repository owned by the
// authenticated user and returns its HTML URL.
func (c *Client) CreateRepository(ctx context.Context, name, description string, private bool) (string, error) {
	repo := &gh.Repository{
		Name:     gh.String(name),
		Private:  gh.Bool(private),
		AutoInit: gh.Bool(true),
	}
	if description != "" {
		repo.Description = gh.String(description)
	}

	created, resp, err := c.gh.Repositories.Create(ctx, "", repo)
	if err != nil {
		c.logger.Error("creating github repository failed", "name", name, "error", err)
		return "", fmt.Errorf("creating repository %s: %w", name, apiError(resp, err))
	}
	c.logger.Info("created github repository", "name", name, "url", created.GetHTMLURL())
	return created.GetHTMLURL(), nil
}

// CreateFile commits a new file at filePath on branch.
func (c *Client) CreateFile(ctx context.Context, owner, repo, filePath string, content []byte, message, branch string) error {
	if branch == "" {
		branch = DefaultBranch
	}
	opts := &gh.RepositoryContentFileOptions{
		Message: gh.String(message),
		Content: content,
		Branch:  gh.String(branch),
	}
	_, resp, err := c.gh.Repositories.CreateFile(ctx, owner, repo, filePath, opts)
	if err != nil {
		c.logger.Error("creating github file failed", "repo", owner+"/"+repo, "path", filePath, "error", err)
		return fmt.Errorf("creating %s in %s/%s: %w", filePath, owner, repo, apiError(resp, err))
	}
	c.logger.Debug("created github file", "repo", owner+"/"+repo, "path", filePath)
	return nil
}

// PublishResult lists the repository paths written by PublishComponent.
type PublishResult struct {
	Dir           string
	Files         []string
	SkippedAssets []string
}

// PublishComponent writes a component directory under src/components/<Name>:
// index.tsx, metadata.json, the story and test files when present, and each
// asset whose local file can be read. Files are written one at a time and
// the first failure stops the publish.
func (c *Client) PublishComponent(ctx context.Context, owner, repo string, comp *model.GeneratedComponent, branch string) (*PublishResult, error) {
	name := comp.Metadata.Name
	res := &PublishResult{Dir: path.Join("src", "components", name)}

	write := func(file string, content []byte, message string) error {
		p := path.Join(res.Dir, file)
		if err := c.CreateFile(ctx, owner, repo, p, content, message, branch); err != nil {
			return err
		}
		res.Files = append(res.Files, p)
		return nil
	}

	if err := write("index.tsx", []byte(comp.Code), "Add "+name+" component"); err != nil {
		return res, err
	}

	meta, err := json.MarshalIndent(comp.Metadata, "", "  ")
	if err != nil {
		return res, fmt.Errorf("encoding metadata: %w", err)
	}
	if err := write("metadata.json", meta, "Add "+name+" metadata"); err != nil {
		return res, err
	}

	if comp.Storybook != "" {
		if err := write(name+".stories.tsx", []byte(comp.Storybook), "Add "+name+" Storybook story"); err != nil {
			return res, err
		}
	}
	if comp.Tests != "" {
		if err := write(name+".test.tsx", []byte(comp.Tests), "Add "+name+" tests"); err != nil {
			return res, err
		}
	}

	for _, a := range comp.Assets {
		data, err := os.ReadFile(a.LocalPath)
		if err != nil {
			c.logger.Warn("skipping unreadable asset", "component", comp.Metadata.ID, "asset", a.Name, "error", err)
			res.SkippedAssets = append(res.SkippedAssets, a.Name)
			continue
		}
		if err := write(path.Join("assets", a.Name), data, "Add "+name+" asset "+a.Name); err != nil {
			return res, err
		}
	}

	c.logger.Info("published component", "component", comp.Metadata.ID, "repo", owner+"/"+repo, "files", len(res.Files))
	return res, nil
}
