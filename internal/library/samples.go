package library

import (
	"embed"
	"fmt"
	"time"

	"complib/internal/model"
)

//go:embed samples/*.tsx
var sampleSources embed.FS

// Sample describes a built-in component together with the history details
// recorded when it is seeded.
type Sample struct {
	Component *model.GeneratedComponent
	Source    string
	Details   map[string]any
}

type builtinSample struct {
	id, name, description, figmaURL, version, author string
	tags, deps                                       []string
	status                                           model.Status
	source                                           string
	details                                          map[string]any
}

var builtinSamples = []builtinSample{
	{
		id:          "sample-button-1",
		name:        "PrimaryButton",
		description: "A primary button component with hover effects and customizable styling.",
		figmaURL:    "https://www.figma.com/file/example",
		version:     "1.0.0",
		author:      "Designer",
		tags:        []string{"button", "primary", "interactive"},
		deps:        []string{"react", "clsx"},
		status:      model.StatusApproved,
		source:      "samples",
	},
	{
		id:          "sample-card-1",
		name:        "ProductCard",
		description: "A product card component displaying product information with image, title, and price.",
		version:     "1.2.0",
		author:      "Designer",
		tags:        []string{"card", "product", "ecommerce"},
		deps:        []string{"react", "clsx"},
		status:      model.StatusApproved,
		source:      "samples",
	},
	{
		id:          "sample-input-1",
		name:        "TextInput",
		description: "A styled text input component with label and error state support.",
		version:     "1.0.0",
		author:      "Designer",
		tags:        []string{"input", "form", "text"},
		deps:        []string{"react", "clsx"},
		status:      model.StatusReview,
		source:      "samples",
	},
	{
		id:          "sample-badge-1",
		name:        "StatusBadge",
		description: "A badge component for displaying status information with different color variants.",
		version:     "1.0.0",
		author:      "Designer",
		tags:        []string{"badge", "status", "indicator"},
		deps:        []string{"react", "clsx"},
		status:      model.StatusDraft,
		source:      "samples",
	},
	{
		id:          "primary-medium-button-figma",
		name:        "PrimaryMediumButton",
		description: "Primary Medium Button from the Figma design system with interactive states and variants.",
		figmaURL:    "https://www.figma.com/design/FtPOHfg0X15gaSdlOpeeFF/Design-System?node-id=185-852",
		version:     "1.0.0",
		author:      "Figma Design System",
		tags:        []string{"button", "primary", "medium", "interactive", "states", "figma"},
		deps:        []string{"react", "clsx", "lucide-react"},
		status:      model.StatusApproved,
		source:      "Figma Design System",
		details: map[string]any{
			"nodeId":   "185:852",
			"states":   []string{"default", "hover", "active", "disabled", "loading"},
			"variants": []string{"default", "destructive", "outline", "ghost"},
		},
	},
}

// SampleComponents returns the built-in sample components stamped with now.
func SampleComponents(now time.Time) ([]Sample, error) {
	out := make([]Sample, 0, len(builtinSamples))
	for _, s := range builtinSamples {
		code, err := sampleSources.ReadFile("samples/" + s.name + ".tsx")
		if err != nil {
			return nil, fmt.Errorf("reading sample %s: %w", s.name, err)
		}
		details := map[string]any{"source": s.source, "componentName": s.name}
		for k, v := range s.details {
			details[k] = v
		}
		out = append(out, Sample{
			Component: &model.GeneratedComponent{
				Metadata: model.ComponentMetadata{
					ID:          s.id,
					Name:        s.name,
					Description: s.description,
					FigmaURL:    s.figmaURL,
					CreatedAt:   now,
					UpdatedAt:   now,
					Version:     s.version,
					Author:      s.author,
					Tags:        append([]string(nil), s.tags...),
					Framework:   model.FrameworkReact,
					Status:      s.status,
				},
				Code:         string(code),
				Assets:       []model.AssetFile{},
				Dependencies: append([]string(nil), s.deps...),
			},
			Source:  s.source,
			Details: details,
		})
	}
	return out, nil
}

// Seed stores each sample whose ID is not in the library yet and records a
// "created" history entry for it. It returns the number of samples added.
func (l *Library) Seed(samples []Sample) (int, error) {
	added := 0
	for _, s := range samples {
		existing, err := l.GetComponent(s.Component.Metadata.ID)
		if err != nil {
			return added, err
		}
		if existing != nil {
			continue
		}
		if err := l.SaveAndRecord(s.Component, ActionCreated, s.Details); err != nil {
			return added, fmt.Errorf("seeding %s: %w", s.Component.Metadata.Name, err)
		}
		added++
	}
	if added > 0 {
		l.logger.Info("library seeded", "added", added)
	}
	return added, nil
}
