package library_test

import (
	"errors"
	"testing"

	"complib/internal/library"
	"complib/internal/model"
	"complib/internal/testutil"
)

func TestLibrary_SaveComponent(t *testing.T) {
	t.Run("get returns last saved value", func(t *testing.T) {
		lib, _, _ := testutil.NewTestLibrary()

		c := testutil.NewComponent("btn-1", "SubmitButton")
		if err := lib.SaveComponent(c); err != nil {
			t.Fatalf("SaveComponent() error = %v", err)
		}

		c.Metadata.Version = "2.0.0"
		c.Code = "export function SubmitButton() {}"
		if err := lib.SaveComponent(c); err != nil {
			t.Fatalf("SaveComponent() error = %v", err)
		}

		got, err := lib.GetComponent("btn-1")
		if err != nil {
			t.Fatalf("GetComponent() error = %v", err)
		}
		if got == nil {
			t.Fatal("GetComponent() = nil, want component")
		}
		if got.Metadata.Version != "2.0.0" {
			t.Errorf("Version = %q, want %q", got.Metadata.Version, "2.0.0")
		}
		if got.Code != c.Code {
			t.Errorf("Code = %q, want %q", got.Code, c.Code)
		}
	})

	t.Run("replacement keeps position", func(t *testing.T) {
		lib, _, _ := testutil.NewTestLibrary()

		for _, id := range []string{"a", "b", "c"} {
			if err := lib.SaveComponent(testutil.NewComponent(id, "Thing")); err != nil {
				t.Fatalf("SaveComponent(%s) error = %v", id, err)
			}
		}

		updated := testutil.NewComponent("b", "Renamed")
		if err := lib.SaveComponent(updated); err != nil {
			t.Fatalf("SaveComponent() error = %v", err)
		}

		list, err := lib.ListComponents()
		if err != nil {
			t.Fatalf("ListComponents() error = %v", err)
		}
		if len(list) != 3 {
			t.Fatalf("len(ListComponents()) = %d, want 3", len(list))
		}
		wantIDs := []string{"a", "b", "c"}
		for i, c := range list {
			if c.Metadata.ID != wantIDs[i] {
				t.Errorf("list[%d].ID = %q, want %q", i, c.Metadata.ID, wantIDs[i])
			}
		}
		if list[1].Metadata.Name != "Renamed" {
			t.Errorf("list[1].Name = %q, want %q", list[1].Metadata.Name, "Renamed")
		}
	})

	t.Run("missing id is rejected", func(t *testing.T) {
		lib, _, _ := testutil.NewTestLibrary()

		err := lib.SaveComponent(testutil.NewComponent("", "NoID"))
		if !errors.Is(err, library.ErrMissingID) {
			t.Errorf("SaveComponent() error = %v, want ErrMissingID", err)
		}
	})

	t.Run("stored value is a copy", func(t *testing.T) {
		lib, _, _ := testutil.NewTestLibrary()

		c := testutil.NewComponent("x", "Thing")
		if err := lib.SaveComponent(c); err != nil {
			t.Fatalf("SaveComponent() error = %v", err)
		}
		c.Metadata.Tags[0] = "mutated"

		got, _ := lib.GetComponent("x")
		if got.Metadata.Tags[0] != "test" {
			t.Errorf("Tags[0] = %q, want %q", got.Metadata.Tags[0], "test")
		}
	})
}

func TestLibrary_GetComponent_Unknown(t *testing.T) {
	lib, _, _ := testutil.NewTestLibrary()

	got, err := lib.GetComponent("nope")
	if err != nil {
		t.Fatalf("GetComponent() error = %v", err)
	}
	if got != nil {
		t.Errorf("GetComponent() = %+v, want nil", got)
	}
}

func TestLibrary_DeleteComponent(t *testing.T) {
	t.Run("removes match", func(t *testing.T) {
		lib, _, _ := testutil.NewTestLibrary()
		_ = lib.SaveComponent(testutil.NewComponent("a", "A"))
		_ = lib.SaveComponent(testutil.NewComponent("b", "B"))

		if err := lib.DeleteComponent("a"); err != nil {
			t.Fatalf("DeleteComponent() error = %v", err)
		}

		list, _ := lib.ListComponents()
		if len(list) != 1 || list[0].Metadata.ID != "b" {
			t.Errorf("ListComponents() after delete = %v, want only b", ids(list))
		}
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		lib, s, _ := testutil.NewTestLibrary()
		_ = lib.SaveComponent(testutil.NewComponent("a", "A"))
		before, _ := s.Get(library.KeyComponents)

		if err := lib.DeleteComponent("missing"); err != nil {
			t.Fatalf("DeleteComponent() error = %v", err)
		}

		after, _ := s.Get(library.KeyComponents)
		if string(before) != string(after) {
			t.Errorf("store changed by deleting unknown id:\nbefore %s\nafter  %s", before, after)
		}
	})
}

func TestLibrary_DeleteAndRecord(t *testing.T) {
	lib, _, _ := testutil.NewTestLibrary()
	_ = lib.SaveComponent(testutil.NewComponent("a", "A"))

	if err := lib.DeleteAndRecord("a", "Deleted component", map[string]string{"name": "A"}); err != nil {
		t.Fatalf("DeleteAndRecord() error = %v", err)
	}
	if err := lib.DeleteAndRecord("a", "Deleted component", nil); err != nil {
		t.Fatalf("DeleteAndRecord() second call error = %v", err)
	}

	history, _ := lib.History()
	if len(history) != 1 {
		t.Fatalf("len(History()) = %d, want 1", len(history))
	}
	if history[0].Action != "Deleted component" || history[0].ComponentID != "a" {
		t.Errorf("History()[0] = %+v, want Deleted component for a", history[0])
	}
}

// plainStore hides PutMany so the Library falls back to sequential writes.
type plainStore struct {
	library.Store
}

func TestLibrary_SaveAndRecord_WithoutBatchSupport(t *testing.T) {
	s := plainStore{Store: testutil.NewTestStore()}
	lib := library.New(s, library.NewNopLogger(), testutil.FixedClock(), &testutil.SequentialIDs{})

	if err := lib.SaveAndRecord(testutil.NewComponent("a", "A"), "created", nil); err != nil {
		t.Fatalf("SaveAndRecord() error = %v", err)
	}

	got, _ := lib.GetComponent("a")
	if got == nil {
		t.Error("component not saved")
	}
	history, _ := lib.History()
	if len(history) != 1 {
		t.Errorf("len(History()) = %d, want 1", len(history))
	}
}

func TestLibrary_Config(t *testing.T) {
	lib, _, _ := testutil.NewTestLibrary()

	got, err := lib.GetConfig()
	if err != nil {
		t.Fatalf("GetConfig() error = %v", err)
	}
	if got != nil {
		t.Fatalf("GetConfig() before save = %+v, want nil", got)
	}

	first := &model.ProjectConfig{Name: "one", Framework: model.FrameworkReact, Styling: model.StylingTailwind}
	second := &model.ProjectConfig{
		Name:      "two",
		Framework: model.FrameworkVue,
		Styling:   model.StylingSCSS,
		GitHub:    model.GitHubTarget{Owner: "acme", Repo: "ui", Branch: "main"},
	}
	if err := lib.SaveConfig(first); err != nil {
		t.Fatalf("SaveConfig() error = %v", err)
	}
	if err := lib.SaveConfig(second); err != nil {
		t.Fatalf("SaveConfig() error = %v", err)
	}

	got, err = lib.GetConfig()
	if err != nil {
		t.Fatalf("GetConfig() error = %v", err)
	}
	if got.Name != "two" || got.Styling != model.StylingSCSS || got.GitHub.Repo != "ui" {
		t.Errorf("GetConfig() = %+v, want second config", got)
	}
}

func ids(list []*model.GeneratedComponent) []string {
	out := make([]string, len(list))
	for i, c := range list {
		out[i] = c.Metadata.ID
	}
	return out
}
