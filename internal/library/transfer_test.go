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

func populatedLibrary(t *testing.T) *library.Library {
	t.Helper()
	lib, _, _ := testutil.NewTestLibrary()

	for _, c := range []*model.GeneratedComponent{
		testutil.NewComponent("a", "SubmitButton"),
		testutil.NewComponent("b", "ProfileCard"),
	} {
		if err := lib.SaveAndRecord(c, "created", map[string]string{"source": "test"}); err != nil {
			t.Fatalf("SaveAndRecord() error = %v", err)
		}
	}
	cfg := &model.ProjectConfig{Name: "ui-kit", Framework: model.FrameworkReact, Styling: model.StylingTailwind}
	if err := lib.SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig() error = %v", err)
	}
	return lib
}

func TestLibrary_ExportAll(t *testing.T) {
	lib := populatedLibrary(t)

	data, err := lib.ExportAll()
	if err != nil {
		t.Fatalf("ExportAll() error = %v", err)
	}

	if !strings.Contains(string(data), "\n  \"components\": [") {
		t.Errorf("ExportAll() not indented with two spaces:\n%s", data)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	for _, key := range []string{"components", "config", "history", "exportedAt"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("export missing %q field", key)
		}
	}
}

func TestLibrary_ExportAll_Empty(t *testing.T) {
	lib, _, _ := testutil.NewTestLibrary()

	data, err := lib.ExportAll()
	if err != nil {
		t.Fatalf("ExportAll() error = %v", err)
	}

	var snap library.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if snap.Components == nil || len(snap.Components) != 0 {
		t.Errorf("Components = %v, want empty list", snap.Components)
	}
	if snap.Config != nil {
		t.Errorf("Config = %+v, want null", snap.Config)
	}
}

func TestLibrary_ExportImport_RoundTrip(t *testing.T) {
	src := populatedLibrary(t)
	data, err := src.ExportAll()
	if err != nil {
		t.Fatalf("ExportAll() error = %v", err)
	}

	dst, _, _ := testutil.NewTestLibrary()
	if err := dst.ImportAll(data); err != nil {
		t.Fatalf("ImportAll() error = %v", err)
	}

	wantComponents, _ := src.ListComponents()
	gotComponents, _ := dst.ListComponents()
	if len(gotComponents) != len(wantComponents) {
		t.Fatalf("len(components) = %d, want %d", len(gotComponents), len(wantComponents))
	}
	for i := range wantComponents {
		if gotComponents[i].Metadata.ID != wantComponents[i].Metadata.ID || gotComponents[i].Code != wantComponents[i].Code {
			t.Errorf("components[%d] = %+v, want %+v", i, gotComponents[i].Metadata, wantComponents[i].Metadata)
		}
	}

	wantCfg, _ := src.GetConfig()
	gotCfg, _ := dst.GetConfig()
	if gotCfg == nil || *gotCfg != *wantCfg {
		t.Errorf("config = %+v, want %+v", gotCfg, wantCfg)
	}

	wantHistory, _ := src.History()
	gotHistory, _ := dst.History()
	if len(gotHistory) != len(wantHistory) {
		t.Fatalf("len(history) = %d, want %d", len(gotHistory), len(wantHistory))
	}
	for i := range wantHistory {
		if gotHistory[i].ID != wantHistory[i].ID || gotHistory[i].Action != wantHistory[i].Action {
			t.Errorf("history[%d] = %+v, want %+v", i, gotHistory[i], wantHistory[i])
		}
	}
}

func TestLibrary_ImportAll_Partial(t *testing.T) {
	lib := populatedLibrary(t)
	historyBefore, _ := lib.History()

	payload := `{"components": [{"metadata": {"id": "z", "name": "Imported"}, "code": "export function Imported() {}"}]}`
	if err := lib.ImportAll([]byte(payload)); err != nil {
		t.Fatalf("ImportAll() error = %v", err)
	}

	list, _ := lib.ListComponents()
	if len(list) != 1 || list[0].Metadata.ID != "z" {
		t.Errorf("components = %v, want only z", ids(list))
	}

	cfg, _ := lib.GetConfig()
	if cfg == nil || cfg.Name != "ui-kit" {
		t.Errorf("config = %+v, want untouched ui-kit config", cfg)
	}
	historyAfter, _ := lib.History()
	if len(historyAfter) != len(historyBefore) {
		t.Errorf("len(history) = %d, want untouched %d", len(historyAfter), len(historyBefore))
	}
}

func TestLibrary_ImportAll_NullSectionsAreAbsent(t *testing.T) {
	lib := populatedLibrary(t)

	if err := lib.ImportAll([]byte(`{"components": null, "config": null, "history": []}`)); err != nil {
		t.Fatalf("ImportAll() error = %v", err)
	}

	list, _ := lib.ListComponents()
	if len(list) != 2 {
		t.Errorf("len(components) = %d, want untouched 2", len(list))
	}
	history, _ := lib.History()
	if len(history) != 0 {
		t.Errorf("len(history) = %d, want 0 after importing empty history", len(history))
	}
}

func TestLibrary_ImportAll_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "not json", payload: "this is not json"},
		{name: "truncated", payload: `{"components": [`},
		{name: "top-level array", payload: `[1, 2, 3]`},
		{name: "top-level null", payload: `null`},
		{name: "components not a list", payload: `{"components": {"id": "a"}}`},
		{name: "component without id", payload: `{"components": [{"metadata": {"name": "x"}}]}`},
		{name: "bad history with good components", payload: `{"components": [], "history": "yesterday"}`},
		{name: "config wrong type", payload: `{"config": [1]}`},
		{name: "duplicate component ids", payload: `{"components": [{"metadata": {"id": "x", "name": "One"}}, {"metadata": {"id": "x", "name": "Two"}}]}`},
		{name: "history id not a string or number", payload: `{"history": [{"id": true, "action": "created"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lib := populatedLibrary(t)
			before, err := lib.ExportAll()
			if err != nil {
				t.Fatalf("ExportAll() error = %v", err)
			}

			err = lib.ImportAll([]byte(tt.payload))
			if !errors.Is(err, library.ErrInvalidImportFormat) {
				t.Fatalf("ImportAll() error = %v, want ErrInvalidImportFormat", err)
			}

			after, err := lib.ExportAll()
			if err != nil {
				t.Fatalf("ExportAll() error = %v", err)
			}
			if string(before) != string(after) {
				t.Errorf("store changed by failed import")
			}
		})
	}
}

func TestLibrary_ImportAll_BrowserExport(t *testing.T) {
	lib, _, _ := testutil.NewTestLibrary()

	payload := `{
  "components": [],
  "config": null,
  "history": [
    {"id": "1700000000000", "action": "created", "componentId": "x", "timestamp": "2023-11-14T22:13:20.000Z", "details": {"source": "figma", "componentName": "X"}},
    {"id": 1699999999000, "action": "Deleted component", "componentId": "y", "timestamp": "2023-11-14T22:13:19.000Z", "details": null}
  ],
  "exportedAt": "2023-11-14T22:13:21.000Z"
}`
	if err := lib.ImportAll([]byte(payload)); err != nil {
		t.Fatalf("ImportAll() error = %v", err)
	}

	history, err := lib.History()
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("len(History()) = %d, want 2", len(history))
	}
	if history[0].ID != "1700000000000" {
		t.Errorf("History()[0].ID = %q, want %q", history[0].ID, "1700000000000")
	}
	if history[1].ID != "1699999999000" {
		t.Errorf("History()[1].ID = %q, want %q", history[1].ID, "1699999999000")
	}

	if err := lib.RecordHistory(library.ActionDownloaded, "x", nil); err != nil {
		t.Fatalf("RecordHistory() error = %v", err)
	}
	history, _ = lib.History()
	newest, ok := history[0].ID.Int()
	if !ok {
		t.Fatalf("History()[0].ID = %q, want a numeric id", history[0].ID)
	}
	if newest <= 1700000000000 {
		t.Errorf("History()[0].ID = %d, want greater than the imported ids", newest)
	}

	data, err := lib.ExportAll()
	if err != nil {
		t.Fatalf("ExportAll() error = %v", err)
	}
	if !strings.Contains(string(data), `"id": "1700000000000"`) {
		t.Errorf("ExportAll() does not write history ids as strings:\n%s", data)
	}
}
