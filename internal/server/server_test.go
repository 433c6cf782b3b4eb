package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"complib/internal/library"
	"complib/internal/model"
	"complib/internal/preview"
	"complib/internal/testutil"
)

type fixture struct {
	lib *library.Library
	srv *Server
	ts  *httptest.Server
}

func setup(t *testing.T) *fixture {
	t.Helper()

	lib, _, _ := testutil.NewTestLibrary()
	renderer, err := preview.NewRenderer()
	require.NoError(t, err)

	button := testutil.NewComponent("button-1", "SubmitButton")
	card := testutil.NewComponent("card-1", "ProfileCard")
	card.Metadata.Status = model.StatusApproved
	card.Metadata.Tags = []string{"layout"}
	broken := testutil.NewComponent("broken-1", "Broken")
	broken.Code = "const broken = 1;\n"
	for _, c := range []*model.GeneratedComponent{button, card, broken} {
		require.NoError(t, lib.SaveComponent(c))
	}

	srv := New(Config{Library: lib, Renderer: renderer})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return &fixture{lib: lib, srv: srv, ts: ts}
}

func (f *fixture) do(t *testing.T, method, path string, body io.Reader) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(method, f.ts.URL+path, body)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(data)
}

func decodeIDs(t *testing.T, body string) []string {
	t.Helper()
	var list []*model.GeneratedComponent
	require.NoError(t, json.Unmarshal([]byte(body), &list))
	ids := make([]string, len(list))
	for i, c := range list {
		ids[i] = c.Metadata.ID
	}
	return ids
}

func TestListComponents(t *testing.T) {
	f := setup(t)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "all", query: "", want: []string{"button-1", "card-1", "broken-1"}},
		{name: "query by name", query: "?q=submit", want: []string{"button-1"}},
		{name: "query by tag", query: "?q=LAYOUT", want: []string{"card-1"}},
		{name: "status", query: "?status=approved", want: []string{"card-1"}},
		{name: "status all", query: "?status=all", want: []string{"button-1", "card-1", "broken-1"}},
		{name: "no match", query: "?q=zzz", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := f.do(t, http.MethodGet, "/api/components"+tt.query, nil)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, tt.want, decodeIDs(t, body))
		})
	}

	t.Run("invalid status", func(t *testing.T) {
		resp, body := f.do(t, http.MethodGet, "/api/components?status=shipped", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, body, "invalid status")
	})
}

func TestGetComponent(t *testing.T) {
	f := setup(t)

	resp, body := f.do(t, http.MethodGet, "/api/components/card-1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var c model.GeneratedComponent
	require.NoError(t, json.Unmarshal([]byte(body), &c))
	assert.Equal(t, "ProfileCard", c.Metadata.Name)

	resp, body = f.do(t, http.MethodGet, "/api/components/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "component not found")
}

func TestPreviewComponent(t *testing.T) {
	f := setup(t)

	resp, body := f.do(t, http.MethodGet, "/api/components/button-1/preview", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, body, `data-kind="button"`)

	resp, body = f.do(t, http.MethodGet, "/api/components/broken-1/preview", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Preview Error")

	_, metrics := f.do(t, http.MethodGet, "/metrics", nil)
	assert.Contains(t, metrics, `complib_preview_renders_total{result="error"} 1`)
	assert.Contains(t, metrics, `complib_preview_renders_total{result="ok"} 1`)
	assert.Contains(t, metrics, `route="/api/components/{id}/preview"`)
}

func TestComponentCode(t *testing.T) {
	f := setup(t)

	resp, body := f.do(t, http.MethodGet, "/api/components/button-1/code", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "export function SubmitButton")
}

func TestDownloadComponent(t *testing.T) {
	f := setup(t)

	resp, body := f.do(t, http.MethodGet, "/api/components/button-1/download", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `attachment; filename="SubmitButton.tsx"`, resp.Header.Get("Content-Disposition"))
	assert.Contains(t, body, "export function SubmitButton")

	history, err := f.lib.History()
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, library.ActionDownloaded, history[0].Action)
	assert.Equal(t, "button-1", history[0].ComponentID)
}

func TestDeleteComponent(t *testing.T) {
	f := setup(t)

	resp, _ := f.do(t, http.MethodDelete, "/api/components/button-1", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = f.do(t, http.MethodGet, "/api/components/button-1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = f.do(t, http.MethodDelete, "/api/components/button-1", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	_, body := f.do(t, http.MethodGet, "/api/history", nil)
	var history []model.HistoryEntry
	require.NoError(t, json.Unmarshal([]byte(body), &history))
	require.Len(t, history, 1, "deleting an unknown id records nothing")
	assert.Equal(t, library.ActionDeleted, history[0].Action)
}

func TestHistory_Empty(t *testing.T) {
	f := setup(t)

	_, body := f.do(t, http.MethodGet, "/api/history", nil)
	assert.JSONEq(t, "[]", body)
}

func TestExportImport(t *testing.T) {
	f := setup(t)

	resp, exported := f.do(t, http.MethodGet, "/api/export", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ExportFileName)
	assert.Contains(t, exported, `"exportedAt"`)

	resp, body := f.do(t, http.MethodPost, "/api/import", strings.NewReader("{not json"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "invalid import data format")

	resp, _ = f.do(t, http.MethodPost, "/api/import", strings.NewReader(`{"components":[]}`))
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	_, body = f.do(t, http.MethodGet, "/api/components", nil)
	assert.Empty(t, decodeIDs(t, body))

	resp, _ = f.do(t, http.MethodPost, "/api/import", strings.NewReader(exported))
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	_, body = f.do(t, http.MethodGet, "/api/components", nil)
	assert.Equal(t, []string{"button-1", "card-1", "broken-1"}, decodeIDs(t, body))
}

func TestHealthz(t *testing.T) {
	f := setup(t)

	resp, body := f.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok\n", body)
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	lib, _, _ := testutil.NewTestLibrary()
	renderer, err := preview.NewRenderer()
	require.NoError(t, err)
	srv := New(Config{Library: lib, Renderer: renderer})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}
