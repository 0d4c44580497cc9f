package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeStaticFixture(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestApplicationStaticDirectory(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeStaticFixture(t, root, "index.html", "<html></html>")
	writeStaticFixture(t, root, "assets/app.css", "body{}")
	writeStaticFixture(t, root, "data.bin", "\x00\x01\x02")

	lg, _ := newTestLogger()
	a := New(lg)
	require.NoError(t, a.Static("/public", root))

	tests := []struct {
		name        string
		path        string
		wantStatus  int
		wantBody    string
		contentType string
	}{
		{
			name:        "html_by_extension",
			path:        "/public/index.html",
			wantStatus:  200,
			wantBody:    "<html></html>",
			contentType: "text/html",
		},
		{
			name:        "nested_css",
			path:        "/public/assets/app.css",
			wantStatus:  200,
			wantBody:    "body{}",
			contentType: "text/css",
		},
		{name: "missing_file", path: "/public/nope.txt", wantStatus: 404},
		{name: "directory_is_404", path: "/public/assets", wantStatus: 404},
		{name: "bare_prefix_on_directory_root", path: "/public", wantStatus: 404},
		{name: "traversal_blocked", path: "/public/../secret", wantStatus: 404},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resp := a.Dispatch(newTestRequest("GET", tt.path))
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantStatus != 200 {
				return
			}
			assert.Equal(t, tt.wantBody, string(resp.Body))
			assert.Equal(t, tt.contentType, resp.ContentType)
		})
	}
}

func TestApplicationStaticSingleFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeStaticFixture(t, root, "favicon.txt", "icon")
	file := filepath.Join(root, "favicon.txt")

	lg, _ := newTestLogger()
	a := New(lg)
	require.NoError(t, a.Static("/favicon", file))

	resp := a.Dispatch(newTestRequest("GET", "/favicon"))
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "icon", string(resp.Body))
}

func TestApplicationStaticRegistersHead(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeStaticFixture(t, root, "a.txt", "a")

	lg, _ := newTestLogger()
	a := New(lg)
	require.NoError(t, a.Static("/public", root))

	resp := a.Dispatch(newTestRequest("HEAD", "/public/a.txt"))
	assert.Equal(t, 200, resp.StatusCode)
}

func TestDetectContentType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path string
		data []byte
		want string
	}{
		{name: "json_by_extension", path: "x.json", data: []byte("{}"), want: "application/json"},
		{name: "svg_by_extension", path: "x.svg", data: []byte("<svg/>"), want: "image/svg+xml"},
		{name: "empty_unknown", path: "x.bin", data: nil, want: "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, detectContentType(tt.path, tt.data))
		})
	}
}
