package contenttype

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	fs := afero.NewMemMapFs()
	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

	files := map[string][]byte{
		"/site/index.html":    []byte("<!doctype html><html></html>"),
		"/site/css/site.css":  []byte("body{}"),
		"/site/app.js.map":    []byte(`{"version":3}`),
		"/site/font.woff2":    []byte("wOF2"),
		"/site/LICENSE":       []byte("Permission is hereby granted, free of charge"),
		"/site/logo":          png,
		"/site/blob.unknownx": {0x00, 0x01, 0x02, 0x03, 0xff},
		"/site/empty":         {},
	}
	for name, data := range files {
		require.NoError(t, afero.WriteFile(fs, name, data, 0644))
	}

	tests := []struct {
		path       string
		wantPrefix string
	}{
		{"/site/index.html", "text/html"},
		{"/site/css/site.css", "text/css"},
		{"/site/app.js.map", "application/json"},
		{"/site/font.woff2", "font/woff2"},
		{"/site/LICENSE", "text/plain"},
		{"/site/logo", "image/png"},
		{"/site/blob.unknownx", "application/octet-stream"},
		{"/site/empty", "application/octet-stream"},
		{"/site/missing", "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := Detect(fs, tt.path)
			assert.True(t, strings.HasPrefix(got, tt.wantPrefix), "Detect(%s) = %s, want prefix %s", tt.path, got, tt.wantPrefix)
		})
	}
}

func TestFromExtension(t *testing.T) {
	assert.Equal(t, "", FromExtension("README"))
	assert.Equal(t, "font/woff", FromExtension("a/B.WOFF"))
	assert.True(t, strings.HasPrefix(FromExtension("x.json"), "application/json"))
}
