package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Framework is the UI framework a component targets.
type Framework string

const (
	FrameworkReact   Framework = "react"
	FrameworkVue     Framework = "vue"
	FrameworkAngular Framework = "angular"
)

func (f Framework) Valid() bool {
	switch f {
	case FrameworkReact, FrameworkVue, FrameworkAngular:
		return true
	}
	return false
}

// Status is the lifecycle state of a component.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusReview     Status = "review"
	StatusApproved   Status = "approved"
	StatusDeprecated Status = "deprecated"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusReview, StatusApproved, StatusDeprecated:
		return true
	}
	return false
}

// Styling is the styling approach configured for a project.
type Styling string

const (
	StylingTailwind         Styling = "tailwind"
	StylingStyledComponents Styling = "styled-components"
	StylingCSSModules       Styling = "css-modules"
	StylingSCSS             Styling = "scss"
)

func (s Styling) Valid() bool {
	switch s {
	case StylingTailwind, StylingStyledComponents, StylingCSSModules, StylingSCSS:
		return true
	}
	return false
}

// AssetType classifies a file attached to a component.
type AssetType string

const (
	AssetImage AssetType = "image"
	AssetIcon  AssetType = "icon"
	AssetFont  AssetType = "font"
	AssetOther AssetType = "other"
)

func (t AssetType) Valid() bool {
	switch t {
	case AssetImage, AssetIcon, AssetFont, AssetOther:
		return true
	}
	return false
}

// ComponentMetadata describes a stored component. ID is unique within the
// library and never changes once assigned.
type ComponentMetadata struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	FigmaURL    string    `json:"figmaUrl,omitempty"`
	FigmaNodeID string    `json:"figmaNodeId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Version     string    `json:"version"`
	Author      string    `json:"author"`
	Tags        []string  `json:"tags"`
	Framework   Framework `json:"framework"`
	Status      Status    `json:"status"`
}

// Dimensions is the pixel size of an image asset.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// AssetFile is a binary file (image, icon, font) attached to a component.
type AssetFile struct {
	Name       string      `json:"name"`
	Type       AssetType   `json:"type"`
	URL        string      `json:"url"`
	LocalPath  string      `json:"localPath"`
	Size       int64       `json:"size"`
	Dimensions *Dimensions `json:"dimensions,omitempty"`
}

// GeneratedComponent is a component's source text plus everything needed to
// publish it.
type GeneratedComponent struct {
	Metadata     ComponentMetadata `json:"metadata"`
	Code         string            `json:"code"`
	Assets       []AssetFile       `json:"assets"`
	Dependencies []string          `json:"dependencies"`
	Storybook    string            `json:"storybook,omitempty"`
	Tests        string            `json:"tests,omitempty"`
}

// Clone returns a deep copy so callers can't mutate stored state.
func (c *GeneratedComponent) Clone() *GeneratedComponent {
	if c == nil {
		return nil
	}
	out := *c
	out.Metadata.Tags = append([]string(nil), c.Metadata.Tags...)
	out.Dependencies = append([]string(nil), c.Dependencies...)
	if c.Assets != nil {
		out.Assets = make([]AssetFile, len(c.Assets))
		for i, a := range c.Assets {
			out.Assets[i] = a
			if a.Dimensions != nil {
				d := *a.Dimensions
				out.Assets[i].Dimensions = &d
			}
		}
	}
	return &out
}

// HistoryID is a timestamp-derived history entry id, the Unix time in
// milliseconds as a decimal string. It decodes from a JSON string or number.
type HistoryID string

func (id *HistoryID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = HistoryID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("history id must be a string or number: %w", err)
	}
	*id = HistoryID(n.String())
	return nil
}

// Int returns the numeric value of id, or false when it is not an integer.
func (id HistoryID) Int() (int64, bool) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	return n, err == nil
}

// HistoryEntry records one user-visible action. Details is free-form JSON.
type HistoryEntry struct {
	ID          HistoryID       `json:"id"`
	Action      string          `json:"action"`
	ComponentID string          `json:"componentId"`
	Timestamp   time.Time       `json:"timestamp"`
	Details     json.RawMessage `json:"details,omitempty"`
}

// GitHubTarget names the repository components are published to.
type GitHubTarget struct {
	Owner  string `json:"owner"`
	Repo   string `json:"repo"`
	Branch string `json:"branch"`
}

// FigmaSource names the Figma file components are derived from.
type FigmaSource struct {
	FileID      string `json:"fileId,omitempty"`
	AccessToken string `json:"accessToken,omitempty"`
}

// ProjectConfig is the singleton project settings record.
type ProjectConfig struct {
	Name      string       `json:"name"`
	Framework Framework    `json:"framework"`
	Styling   Styling      `json:"styling"`
	GitHub    GitHubTarget `json:"github"`
	Figma     FigmaSource  `json:"figma"`
}

// BoundingBox is a node's absolute position and size on the Figma canvas.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// FigmaNode is a node of a Figma document tree.
type FigmaNode struct {
	ID                  string            `json:"id"`
	Name                string            `json:"name"`
	Type                string            `json:"type"`
	Visible             bool              `json:"visible"`
	Locked              bool              `json:"locked"`
	AbsoluteBoundingBox *BoundingBox      `json:"absoluteBoundingBox,omitempty"`
	Fills               []json.RawMessage `json:"fills,omitempty"`
	Strokes             []json.RawMessage `json:"strokes,omitempty"`
	StrokeWeight        *float64          `json:"strokeWeight,omitempty"`
	CornerRadius        *float64          `json:"cornerRadius,omitempty"`
	Children            []FigmaNode       `json:"children,omitempty"`
}

// FigmaVariableCollection groups variables that share a set of modes.
type FigmaVariableCollection struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Modes         []FigmaMode `json:"modes"`
	DefaultModeID string      `json:"defaultModeId"`
	VariableIDs   []string    `json:"variableIds"`
}

type FigmaMode struct {
	ModeID string `json:"modeId"`
	Name   string `json:"name"`
}

// FigmaVariable is a named design value with one raw value per mode.
// ResolvedType is one of BOOLEAN, FLOAT, STRING or COLOR.
type FigmaVariable struct {
	ID                   string                     `json:"id"`
	Name                 string                     `json:"name"`
	Key                  string                     `json:"key"`
	VariableCollectionID string                     `json:"variableCollectionId"`
	ResolvedType         string                     `json:"resolvedType"`
	ValuesByMode         map[string]json.RawMessage `json:"valuesByMode"`
}
