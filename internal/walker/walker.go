package walker

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrPathNotFound reports a codebase root that does not exist.
var ErrPathNotFound = errors.New("path not found")

// FileInfo holds metadata about a discovered source file.
type FileInfo struct {
	Path    string
	RelPath string
	Size    int64
}

// maxFileSize is the largest file we'll consider (1 MB).
const maxFileSize = 1 << 20

// cacheDirs are directory names that never contain indexable source.
var cacheDirs = map[string]bool{
	"__pycache__":  true,
	"node_modules": true,
	"venv":         true,
	"dist":         true,
	"build":        true,
}

// sourceExts are the file extensions (without dot) the parser understands.
var sourceExts = map[string]bool{
	"py":  true,
	"pyi": true,
}

// Walk traverses the directory tree rooted at root and sends discovered
// source files on the returned channel in lexical order. Hidden entries,
// cache directories, and symlinks are skipped.
func Walk(root string) (<-chan FileInfo, <-chan error) {
	files := make(chan FileInfo, 64)
	errs := make(chan error, 1)

	go func() {
		defer close(files)
		defer close(errs)

		absRoot, err := filepath.Abs(root)
		if err != nil {
			errs <- err
			return
		}
		if _, err := os.Stat(absRoot); err != nil {
			if os.IsNotExist(err) {
				errs <- fmt.Errorf("%w: %s", ErrPathNotFound, root)
			} else {
				errs <- err
			}
			return
		}

		err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil // skip unreadable entries, keep walking
			}

			name := d.Name()

			if d.IsDir() {
				if path == absRoot {
					return nil
				}
				if strings.HasPrefix(name, ".") || cacheDirs[name] {
					return filepath.SkipDir
				}
				return nil
			}

			// Skip symlinks and hidden files.
			if d.Type()&fs.ModeSymlink != 0 || strings.HasPrefix(name, ".") {
				return nil
			}

			ext := strings.TrimPrefix(filepath.Ext(path), ".")
			if !sourceExts[ext] {
				return nil
			}

			info, err := d.Info()
			if err != nil {
				return nil
			}
			if info.Size() > maxFileSize || info.Size() == 0 {
				return nil
			}

			relPath, _ := filepath.Rel(absRoot, path)
			files <- FileInfo{
				Path:    path,
				RelPath: filepath.ToSlash(relPath),
				Size:    info.Size(),
			}
			return nil
		})
		if err != nil {
			errs <- err
		}
	}()

	return files, errs
}
