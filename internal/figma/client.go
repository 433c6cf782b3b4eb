// Package figma is a thin client for the Figma REST API: file nodes, image
// exports and local variables.
package figma

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	fastshot "github.com/opus-domini/fast-shot"

	"complib/internal/config"
	"complib/internal/library"
	"complib/internal/model"
)

const DefaultBaseURL = "https://api.figma.com"

// ImageFormat is the file type requested from the image export endpoint.
type ImageFormat string

const (
	FormatPNG ImageFormat = "png"
	FormatJPG ImageFormat = "jpg"
	FormatSVG ImageFormat = "svg"
)

func (f ImageFormat) Valid() bool {
	switch f {
	case FormatPNG, FormatJPG, FormatSVG:
		return true
	}
	return false
}

// ErrMissingToken is returned when a client is configured without a token.
var ErrMissingToken = errors.New("figma access token is not configured")

// APIError is a non-2xx response from Figma.
type APIError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Figma API error: %s", e.Status)
}

// Client talks to the Figma REST API. It holds no per-call state and never
// retries.
type Client struct {
	http   fastshot.ClientHttpMethods
	logger library.Logger
}

// NewClient creates a Client for baseURL authenticated with token.
func NewClient(baseURL, token string, logger library.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := fastshot.NewClient(strings.TrimRight(baseURL, "/"))
	return &Client{
		http: c.Config().SetTimeout(time.Minute).
			Header().Add("X-Figma-Token", token).
			Header().Add("Accept", "application/json").
			Build(),
		logger: logger,
	}
}

// NewClientFromConfig creates a Client from the [figma] config section.
func NewClientFromConfig(cfg config.FigmaConfig, logger library.Logger) (*Client, error) {
	if cfg.AccessToken == "" {
		return nil, ErrMissingToken
	}
	return NewClient(cfg.BaseURL, cfg.AccessToken, logger), nil
}

func (c *Client) get(ctx context.Context, path string, params map[string]string, out any) error {
	req := c.http.GET(path).Context().Set(ctx)
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		req = req.Query().AddParam(k, params[k])
	}

	resp, err := req.Send()
	if err != nil {
		c.logger.Error("figma request failed", "path", path, "error", err)
		return fmt.Errorf("figma request %s: %w", path, err)
	}
	defer resp.Body().Close()

	if resp.Status().IsError() {
		code := resp.Status().Code()
		body, _ := resp.Body().AsString()
		apiErr := &APIError{StatusCode: code, Status: statusText(code), Body: body}
		c.logger.Error("figma API error", "path", path, "status", code)
		return apiErr
	}

	if err := resp.Body().AsJSON(out); err != nil {
		return fmt.Errorf("decoding figma response for %s: %w", path, err)
	}
	return nil
}

// statusText returns the standard text for code, or the bare number for
// codes without one.
func statusText(code int) string {
	if text := http.StatusText(code); text != "" {
		return text
	}
	return strconv.Itoa(code)
}

// rawNode mirrors the wire shape, where visible and locked are optional.
type rawNode struct {
	model.FigmaNode
	Visible  *bool     `json:"visible"`
	Locked   *bool     `json:"locked"`
	Children []rawNode `json:"children"`
}

func (n rawNode) toModel() model.FigmaNode {
	out := n.FigmaNode
	out.Visible = n.Visible == nil || *n.Visible
	out.Locked = n.Locked != nil && *n.Locked
	out.Children = nil
	for _, child := range n.Children {
		out.Children = append(out.Children, child.toModel())
	}
	return out
}

// GetFileNodes fetches the document subtree of each requested node. With no
// node IDs Figma decides what to return. Nodes Figma could not resolve are
// skipped. The result is sorted by node ID.
func (c *Client) GetFileNodes(ctx context.Context, fileID string, nodeIDs []string) ([]model.FigmaNode, error) {
	var params map[string]string
	if len(nodeIDs) > 0 {
		params = map[string]string{"ids": strings.Join(nodeIDs, ",")}
	}

	var body struct {
		Nodes map[string]*struct {
			Document rawNode `json:"document"`
		} `json:"nodes"`
	}
	if err := c.get(ctx, "/v1/files/"+fileID+"/nodes", params, &body); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(body.Nodes))
	for id, n := range body.Nodes {
		if n != nil {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	nodes := make([]model.FigmaNode, 0, len(ids))
	for _, id := range ids {
		nodes = append(nodes, body.Nodes[id].Document.toModel())
	}
	c.logger.Debug("fetched figma nodes", "file", fileID, "count", len(nodes))
	return nodes, nil
}

// ExportImages asks Figma to render nodes at 2x scale and returns a map of
// node ID to image URL. Nodes that failed to render are left out.
func (c *Client) ExportImages(ctx context.Context, fileID string, nodeIDs []string, format ImageFormat) (map[string]string, error) {
	if format == "" {
		format = FormatPNG
	}
	if !format.Valid() {
		return nil, fmt.Errorf("unsupported image format %q", format)
	}
	params := map[string]string{
		"ids":    strings.Join(nodeIDs, ","),
		"format": string(format),
		"scale":  "2",
	}

	var body struct {
		Err    *string            `json:"err"`
		Images map[string]*string `json:"images"`
	}
	if err := c.get(ctx, "/v1/images/"+fileID, params, &body); err != nil {
		return nil, err
	}
	if body.Err != nil && *body.Err != "" {
		return nil, fmt.Errorf("figma image export: %s", *body.Err)
	}

	images := make(map[string]string, len(body.Images))
	for id, url := range body.Images {
		if url != nil {
			images[id] = *url
		}
	}
	return images, nil
}

// GetLocalVariables fetches the variable collections and variables defined
// in a file. Collections are sorted by ID and variables by name.
func (c *Client) GetLocalVariables(ctx context.Context, fileID string) ([]model.FigmaVariableCollection, []model.FigmaVariable, error) {
	var body struct {
		Meta struct {
			Variables           map[string]model.FigmaVariable           `json:"variables"`
			VariableCollections map[string]model.FigmaVariableCollection `json:"variableCollections"`
		} `json:"meta"`
	}
	if err := c.get(ctx, "/v1/files/"+fileID+"/variables/local", nil, &body); err != nil {
		return nil, nil, err
	}

	collections := make([]model.FigmaVariableCollection, 0, len(body.Meta.VariableCollections))
	for _, vc := range body.Meta.VariableCollections {
		collections = append(collections, vc)
	}
	sort.Slice(collections, func(i, j int) bool { return collections[i].ID < collections[j].ID })

	variables := make([]model.FigmaVariable, 0, len(body.Meta.Variables))
	for _, v := range body.Meta.Variables {
		variables = append(variables, v)
	}
	sort.Slice(variables, func(i, j int) bool { return variables[i].Name < variables[j].Name })

	return collections, variables, nil
}
