package compute

import (
	"fmt"
	"io/fs"
	"os"
)

// Loader fetches kernel source text by path.
type Loader interface {
	Load(path string) (string, error)
}

// FSLoader reads kernel sources from a file system, such as an embed.FS
// holding the defaults or os.DirFS for a live-editable directory.
type FSLoader struct {
	FS fs.FS
}

// Load reads path from the underlying file system.
func (l FSLoader) Load(path string) (string, error) {
	if l.FS == nil {
		return "", fmt.Errorf("compute: no kernel file system for %s", path)
	}
	b, err := fs.ReadFile(l.FS, path)
	if err != nil {
		return "", fmt.Errorf("compute: load kernel %s: %w", path, err)
	}
	return string(b), nil
}

// Overlay tries each loader in order and returns the first hit. It lets a
// directory override shadow embedded defaults file by file.
type Overlay []Loader

// Load returns the first successful load, or the last error.
func (o Overlay) Load(path string) (string, error) {
	err := fmt.Errorf("compute: no loader for %s", path)
	for _, l := range o {
		if l == nil {
			continue
		}
		text, lerr := l.Load(path)
		if lerr == nil {
			return text, nil
		}
		err = lerr
	}
	return "", err
}

// DirLoader returns a loader for dir placed in front of fallback. An empty dir
// yields fallback unchanged.
func DirLoader(dir string, fallback Loader) Loader {
	if dir == "" {
		return fallback
	}
	return Overlay{FSLoader{FS: os.DirFS(dir)}, fallback}
}
