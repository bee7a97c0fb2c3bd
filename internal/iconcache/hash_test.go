package iconcache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestHashCache_GetOrCompute(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.ico")
	writeIcon(t, path, "one")
	c := NewHashCache()

	h1, err := c.GetOrCompute(path)
	if err != nil {
		t.Fatalf("GetOrCompute failed: %v", err)
	}
	h2, _ := c.GetOrCompute(path)
	if h1 != h2 {
		t.Errorf("Expected the same hash twice, got %s and %s", h1, h2)
	}
	if c.Size() != 1 {
		t.Errorf("Expected 1 cached entry, got %d", c.Size())
	}

	// A changed file is hashed again
	os.WriteFile(path, []byte("two, longer"), 0644)
	later := time.Now().Add(time.Minute)
	os.Chtimes(path, later, later)
	h3, _ := c.GetOrCompute(path)
	if h3 == h1 {
		t.Error("Expected a new hash after the file changed")
	}

	c.Clear()
	if c.Size() != 0 {
		t.Errorf("Expected an empty cache after Clear, got %d", c.Size())
	}
}

func TestHashCache_MissingFile(t *testing.T) {
	c := NewHashCache()
	if _, err := c.GetOrCompute(filepath.Join(t.TempDir(), "missing.ico")); err == nil {
		t.Error("Expected error for a missing file")
	}
	if c.Size() != 0 {
		t.Errorf("Failures should not be cached, got %d", c.Size())
	}
}

func TestStore_ForgetHashes(t *testing.T) {
	base, s := newCache(t)
	src := filepath.Join(t.TempDir(), "copy.ico")
	writeIcon(t, src, "star")

	if _, found, _ := s.FindIdentical(src); !found {
		t.Fatal("Expected Star.ico to match")
	}
	if s.hashes.Size() == 0 {
		t.Fatal("Expected hashes to be remembered")
	}

	s.ForgetHashes()
	if s.hashes.Size() != 0 {
		t.Errorf("Expected no hashes after ForgetHashes, got %d", s.hashes.Size())
	}
	if found, ok, _ := s.FindIdentical(src); !ok || found != filepath.Join(base, "Star.ico") {
		t.Errorf("Lookup should still work after forgetting, got %s", found)
	}
}

func TestStore_IsExcluded(t *testing.T) {
	base, s := newCache(t)
	star := filepath.Join(base, "Star.ico")
	s.SetExcluded([]string{star})

	if !s.IsExcluded(star) || s.IsExcluded(filepath.Join(base, "Drive.ico")) {
		t.Error("Only Star.ico should be excluded")
	}
	s.Rebuild()
	if _, ok := s.Lookup(star); ok {
		t.Error("Excluded icon should not be indexed")
	}
}
