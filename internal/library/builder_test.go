package library_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"complib/internal/library"
	"complib/internal/model"
	"complib/internal/testutil"
)

func TestLibrary_AddComponent(t *testing.T) {
	t.Run("applies defaults and records history", func(t *testing.T) {
		lib, _, clock := testutil.NewTestLibrary()

		c, err := lib.AddComponent(library.NewComponent{
			Name:        "Hero Banner",
			Description: "Large page header",
			Code:        "export function HeroBanner() {}",
		})
		if err != nil {
			t.Fatalf("AddComponent() error = %v", err)
		}

		if c.Metadata.ID != "hero-banner-id1" {
			t.Errorf("ID = %q, want %q", c.Metadata.ID, "hero-banner-id1")
		}
		if c.Metadata.Version != library.DefaultVersion {
			t.Errorf("Version = %q, want %q", c.Metadata.Version, library.DefaultVersion)
		}
		if c.Metadata.Author != library.DefaultAuthor {
			t.Errorf("Author = %q, want %q", c.Metadata.Author, library.DefaultAuthor)
		}
		if c.Metadata.Status != model.StatusApproved {
			t.Errorf("Status = %q, want %q", c.Metadata.Status, model.StatusApproved)
		}
		if c.Metadata.Framework != model.FrameworkReact {
			t.Errorf("Framework = %q, want %q", c.Metadata.Framework, model.FrameworkReact)
		}
		if !c.Metadata.CreatedAt.Equal(clock.Now()) {
			t.Errorf("CreatedAt = %v, want %v", c.Metadata.CreatedAt, clock.Now())
		}
		if len(c.Dependencies) != 1 || c.Dependencies[0] != "react" {
			t.Errorf("Dependencies = %v, want [react]", c.Dependencies)
		}

		stored, _ := lib.GetComponent(c.Metadata.ID)
		if stored == nil {
			t.Fatal("component not stored")
		}

		history, _ := lib.History()
		if len(history) != 1 {
			t.Fatalf("len(History()) = %d, want 1", len(history))
		}
		if history[0].Action != "created" || history[0].ComponentID != c.Metadata.ID {
			t.Errorf("History()[0] = %+v, want created entry for %s", history[0], c.Metadata.ID)
		}
		var details map[string]string
		if err := json.Unmarshal(history[0].Details, &details); err != nil {
			t.Fatalf("decoding details: %v", err)
		}
		if details["componentName"] != "Hero Banner" {
			t.Errorf("details[componentName] = %q, want %q", details["componentName"], "Hero Banner")
		}
	})

	t.Run("keeps caller values", func(t *testing.T) {
		lib, _, _ := testutil.NewTestLibrary()

		c, err := lib.AddComponent(library.NewComponent{
			Name:         "Toast",
			Code:         "export function Toast() {}",
			Author:       "ana",
			Tags:         []string{"feedback"},
			Dependencies: []string{"react", "framer-motion"},
		})
		if err != nil {
			t.Fatalf("AddComponent() error = %v", err)
		}
		if c.Metadata.Author != "ana" {
			t.Errorf("Author = %q, want %q", c.Metadata.Author, "ana")
		}
		if len(c.Metadata.Tags) != 1 || c.Metadata.Tags[0] != "feedback" {
			t.Errorf("Tags = %v, want [feedback]", c.Metadata.Tags)
		}
		if len(c.Dependencies) != 2 {
			t.Errorf("Dependencies = %v, want 2 entries", c.Dependencies)
		}
	})

	t.Run("requires name and code", func(t *testing.T) {
		lib, _, _ := testutil.NewTestLibrary()

		for _, nc := range []library.NewComponent{
			{Code: "export function X() {}"},
			{Name: "X"},
		} {
			if _, err := lib.AddComponent(nc); !errors.Is(err, library.ErrInvalidComponent) {
				t.Errorf("AddComponent(%+v) error = %v, want ErrInvalidComponent", nc, err)
			}
		}
	})
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Button", "button"},
		{"Hero Banner", "hero-banner"},
		{"  Nav   Bar  ", "nav-bar"},
	}
	for _, tt := range tests {
		if got := library.Slug(tt.in); got != tt.want {
			t.Errorf("Slug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestComponentTemplate(t *testing.T) {
	got := library.ComponentTemplate("Avatar")

	for _, want := range []string{
		"interface AvatarProps {",
		"export function Avatar(",
		"}: AvatarProps) {",
		"export default Avatar;",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("ComponentTemplate() missing %q:\n%s", want, got)
		}
	}
}
