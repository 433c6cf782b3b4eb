package library

import (
	"fmt"
	"regexp"
	"strings"

	"complib/internal/model"
)

// Defaults applied by AddComponent when the caller leaves a field empty.
const (
	DefaultAuthor  = "complib"
	DefaultVersion = "1.0.0"
)

var (
	defaultTags         = []string{"custom"}
	defaultDependencies = []string{"react"}
	whitespace          = regexp.MustCompile(`\s+`)
)

// NewComponent holds the caller-supplied fields for AddComponent.
type NewComponent struct {
	Name         string
	Description  string
	Code         string
	Tags         []string
	Dependencies []string
	FigmaURL     string
	FigmaNodeID  string
	Author       string
	Source       string
}

// AddComponent builds a component from nc, saves it and records a
// "created" history entry. The new component is returned.
func (l *Library) AddComponent(nc NewComponent) (*model.GeneratedComponent, error) {
	if strings.TrimSpace(nc.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidComponent)
	}
	if strings.TrimSpace(nc.Code) == "" {
		return nil, fmt.Errorf("%w: code is required", ErrInvalidComponent)
	}

	now := l.clock.Now()
	c := &model.GeneratedComponent{
		Metadata: model.ComponentMetadata{
			ID:          Slug(nc.Name) + "-" + l.idgen.New(),
			Name:        nc.Name,
			Description: nc.Description,
			FigmaURL:    nc.FigmaURL,
			FigmaNodeID: nc.FigmaNodeID,
			CreatedAt:   now,
			UpdatedAt:   now,
			Version:     DefaultVersion,
			Author:      orDefault(nc.Author, DefaultAuthor),
			Tags:        orDefaultList(nc.Tags, defaultTags),
			Framework:   model.FrameworkReact,
			Status:      model.StatusApproved,
		},
		Code:         nc.Code,
		Assets:       []model.AssetFile{},
		Dependencies: orDefaultList(nc.Dependencies, defaultDependencies),
	}

	details := map[string]string{
		"source":        orDefault(nc.Source, DefaultAuthor),
		"componentName": nc.Name,
	}
	if err := l.SaveAndRecord(c, ActionCreated, details); err != nil {
		return nil, fmt.Errorf("adding component %s: %w", nc.Name, err)
	}
	return c.Clone(), nil
}

// Slug lowercases name and replaces runs of whitespace with a dash.
func Slug(name string) string {
	return whitespace.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}

// ComponentTemplate returns starter source for a new component called name.
func ComponentTemplate(name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "import React from 'react';\nimport { cn } from '@/lib/utils';\n\n")
	fmt.Fprintf(&b, "interface %sProps {\n  className?: string;\n  children?: React.ReactNode;\n}\n\n", name)
	fmt.Fprintf(&b, "export function %s({\n  className,\n  children,\n  ...props\n}: %sProps) {\n", name, name)
	b.WriteString("  return (\n")
	b.WriteString("    <div className={cn(\"\", className)} {...props}>\n")
	b.WriteString("      {children}\n")
	b.WriteString("    </div>\n")
	b.WriteString("  );\n}\n\n")
	fmt.Fprintf(&b, "export default %s;\n", name)
	return b.String()
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func orDefaultList(v, def []string) []string {
	if len(v) == 0 {
		return append([]string(nil), def...)
	}
	return append([]string(nil), v...)
}
