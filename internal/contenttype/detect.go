// Package contenttype picks the Content-Type sent with each upload.
package contenttype

import (
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/dl-alexandre/nxraw/internal/utils"
	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"
)

// sniffLen matches the window net/http and mimetype inspect
const sniffLen = 512

// webTypes covers extensions static sites ship that system mime tables
// often lack or disagree on
var webTypes = map[string]string{
	".map":         "application/json",
	".webmanifest": "application/manifest+json",
	".woff":        "font/woff",
	".woff2":       "font/woff2",
	".ttf":         "font/ttf",
	".otf":         "font/otf",
	".eot":         "application/vnd.ms-fontobject",
	".ico":         "image/vnd.microsoft.icon",
	".md":          "text/markdown; charset=utf-8",
	".txt":         "text/plain; charset=utf-8",
	".yaml":        "application/yaml",
	".yml":         "application/yaml",
	".toml":        "application/toml",
	".tgz":         "application/gzip",
	".gz":          "application/gzip",
}

// Detect returns the content type for the file at path. The extension
// decides when it is known; otherwise up to 512 bytes are sniffed. Empty
// or unreadable files get application/octet-stream.
func Detect(fs afero.Fs, path string) string {
	if byExt := FromExtension(path); byExt != "" {
		return byExt
	}

	f, err := fs.Open(path)
	if err != nil {
		return utils.DefaultContentType
	}
	defer f.Close()

	buf := make([]byte, sniffLen)
	n, _ := io.ReadFull(f, buf)
	if n == 0 {
		return utils.DefaultContentType
	}
	if mt := mimetype.Detect(buf[:n]); mt != nil {
		return mt.String()
	}
	return utils.DefaultContentType
}

// FromExtension looks the extension up in the built-in web table and then
// the system mime table. It returns "" when neither knows it.
func FromExtension(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return ""
	}
	if t, ok := webTypes[ext]; ok {
		return t
	}
	return mime.TypeByExtension(ext)
}
