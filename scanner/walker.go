package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
)

// CheckRoot verifies that root exists and is a directory.
func CheckRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return &TraversalError{Root: root, Err: err}
	}
	if !info.IsDir() {
		return &TraversalError{Root: root, Err: errNotDir}
	}
	return nil
}

// Walk calls fn for every regular file under root whose name ends with ext
// (case-insensitive). Unreadable subdirectories are skipped. The walk runs on
// a single worker so the caller sees one producer; symlinks are not followed.
//
// An error returned by fn stops the walk and is returned as is.
func Walk(root, ext string, fn func(path string) error) error {
	if err := CheckRoot(root); err != nil {
		return err
	}
	cleanRoot := filepath.Clean(root)

	conf := fastwalk.Config{Follow: false, NumWorkers: 1}
	walkFn := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if filepath.Clean(path) == cleanRoot {
				return &TraversalError{Root: root, Err: err}
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if !hasExt(d.Name(), ext) {
			return nil
		}
		return fn(path)
	}
	return fastwalk.Walk(&conf, root, walkFn)
}

// Paths collects the result of Walk.
func Paths(root, ext string) ([]string, error) {
	var (
		mu    sync.Mutex
		paths []string
	)
	err := Walk(root, ext, func(path string) error {
		mu.Lock()
		paths = append(paths, path)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

func hasExt(name, ext string) bool {
	if len(name) < len(ext) {
		return false
	}
	return strings.EqualFold(name[len(name)-len(ext):], ext)
}
