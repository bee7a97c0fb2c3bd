package iconcache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"dirdirector/internal/fsutil"
	"dirdirector/internal/models"
)

// ErrNotIcon is returned when importing a file without the icon extension
var ErrNotIcon = errors.New("not an .ico file")

// FindIdentical looks for a cached icon with the same content as path
func (s *Store) FindIdentical(path string) (string, bool, error) {
	want, err := s.hashes.GetOrCompute(path)
	if err != nil {
		return "", false, err
	}

	absSrc, _ := filepath.Abs(path)
	var found string
	errFound := errors.New("found")
	err = filepath.WalkDir(s.baseDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == s.baseDir {
				return err
			}
			return nil
		}
		if d.IsDir() || !models.IsIconFile(p) {
			return nil
		}
		if abs, _ := filepath.Abs(p); abs == absSrc {
			return nil
		}
		hash, err := s.hashes.GetOrCompute(p)
		if err != nil {
			return nil
		}
		if hash == want {
			found = p
			return errFound
		}
		return nil
	})

	debugLog("compared %s against %d hashed icons", path, s.hashes.Size())
	switch {
	case errors.Is(err, errFound):
		return found, true, nil
	case errors.Is(err, fs.ErrNotExist):
		return "", false, nil
	case err != nil:
		return "", false, err
	}
	return "", false, nil
}

// Import brings an external .ico into the cache root. If a byte-identical
// icon is already cached its path is returned and created is false.
func (s *Store) Import(src string) (path string, created bool, err error) {
	if !models.IsIconFile(src) {
		return "", false, fmt.Errorf("%s: %w", src, ErrNotIcon)
	}

	existing, ok, err := s.FindIdentical(src)
	if err != nil {
		return "", false, err
	}
	if ok {
		debugLog("%s already cached as %s", src, existing)
		return existing, false, nil
	}

	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return "", false, fmt.Errorf("failed to create cache directory: %w", err)
	}
	dst, err := fsutil.UniquePath(filepath.Join(s.baseDir, filepath.Base(src)))
	if err != nil {
		return "", false, err
	}
	if err := fsutil.CopyFile(src, dst); err != nil {
		return "", false, err
	}

	debugLog("imported %s as %s", src, dst)
	return dst, true, nil
}
