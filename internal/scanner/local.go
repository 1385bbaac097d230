package scanner

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dl-alexandre/nxraw/internal/exclude"
	"github.com/spf13/afero"
)

// LocalFile is one regular file to publish
type LocalFile struct {
	// RelativePath is relative to the scan root, with forward slashes
	RelativePath string `json:"path"`
	AbsPath      string `json:"-"`
	Size         int64  `json:"size"`
}

// ScanLocal lists every regular file under root in lexical path order.
// Symlinks are followed: a link to a regular file is published under the
// link's own path, and a link to a directory is walked as if it were one,
// unless it points back at a directory already being walked. Dangling
// links, special files and paths the matcher excludes are skipped.
func ScanLocal(ctx context.Context, fs afero.Fs, root string, matcher *exclude.Matcher) ([]LocalFile, error) {
	info, err := fs.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("input directory %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input directory %s: not a directory", root)
	}

	w := &walker{ctx: ctx, fs: fs, matcher: matcher}
	start := realPath(fs, root)
	if err := w.walk(start, "", []string{start}); err != nil {
		return nil, err
	}

	// Walk visits "a/" before "a.txt"; order by the full path instead.
	sort.Slice(w.files, func(i, j int) bool {
		return w.files[i].RelativePath < w.files[j].RelativePath
	})
	return w.files, nil
}

type walker struct {
	ctx     context.Context
	fs      afero.Fs
	matcher *exclude.Matcher
	files   []LocalFile
}

// walk lists dir, whose entries are published under prefix. chain holds
// the resolved directories entered through links on the way here.
func (w *walker) walk(dir, prefix string, chain []string) error {
	return afero.Walk(w.fs, dir, func(current string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if w.ctx.Err() != nil {
			return w.ctx.Err()
		}

		rel, err := filepath.Rel(dir, current)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = path.Join(prefix, filepath.ToSlash(rel))

		if info.Mode()&os.ModeSymlink != 0 {
			return w.followLink(current, rel, chain)
		}

		if w.matcher.IsExcluded(rel, info.IsDir()) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if !info.Mode().IsRegular() {
			return nil
		}
		w.add(rel, current, info.Size())
		return nil
	})
}

func (w *walker) followLink(link, rel string, chain []string) error {
	target, err := w.fs.Stat(link)
	if err != nil {
		// dangling
		return nil
	}
	if w.matcher.IsExcluded(rel, target.IsDir()) {
		return nil
	}

	switch {
	case target.Mode().IsRegular():
		w.add(rel, link, target.Size())
		return nil
	case target.IsDir():
		resolved := realPath(w.fs, link)
		parent := realPath(w.fs, filepath.Dir(link))
		for _, seen := range append(chain, parent) {
			if within(seen, resolved) {
				return nil
			}
		}
		return w.walk(resolved, rel, append(chain[:len(chain):len(chain)], resolved))
	default:
		return nil
	}
}

func (w *walker) add(rel, abs string, size int64) {
	w.files = append(w.files, LocalFile{
		RelativePath: rel,
		AbsPath:      abs,
		Size:         size,
	})
}

// realPath resolves links on the OS filesystem. Other filesystems have no
// links, so their paths are already real.
func realPath(fs afero.Fs, p string) string {
	if _, ok := fs.(*afero.OsFs); !ok {
		return filepath.Clean(p)
	}
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		p = resolved
	}
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	return filepath.Clean(p)
}

// within reports whether p is dir or lies below it
func within(p, dir string) bool {
	if p == dir {
		return true
	}
	return strings.HasPrefix(p, strings.TrimSuffix(dir, string(filepath.Separator))+string(filepath.Separator))
}

// TotalSize sums the size of files
func TotalSize(files []LocalFile) int64 {
	var total int64
	for _, f := range files {
		total += f.Size
	}
	return total
}
