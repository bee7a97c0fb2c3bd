package output

import (
	"io"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"dirdirector/internal/models"
)

// Index is the exported form of the cache listing
type Index struct {
	Cache     string       `yaml:"cache"`
	Favorites []IndexIcon  `yaml:"favorites"`
	Groups    []IndexGroup `yaml:"groups"`
}

// IndexGroup is one group in the export
type IndexGroup struct {
	Name  string      `yaml:"name"`
	Icons []IndexIcon `yaml:"icons"`
}

// IndexIcon is one icon in the export; Path is relative to the cache
type IndexIcon struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// NewIndex converts groups and favorites for export
func NewIndex(cacheDir string, groups []models.IconGroup, favorites []models.IconEntry) Index {
	idx := Index{Cache: cacheDir, Favorites: []IndexIcon{}, Groups: []IndexGroup{}}
	for _, f := range favorites {
		if !f.IsAction() {
			idx.Favorites = append(idx.Favorites, indexIcon(cacheDir, f))
		}
	}
	for _, g := range groups {
		ig := IndexGroup{Name: g.Name}
		for _, icon := range g.Icons {
			ig.Icons = append(ig.Icons, indexIcon(cacheDir, icon))
		}
		idx.Groups = append(idx.Groups, ig)
	}
	return idx
}

func indexIcon(cacheDir string, e models.IconEntry) IndexIcon {
	rel, err := filepath.Rel(cacheDir, e.Path)
	if err != nil {
		rel = e.Path
	}
	return IndexIcon{Name: e.Name, Path: filepath.ToSlash(rel)}
}

// WriteYAML writes the index as YAML
func WriteYAML(w io.Writer, idx Index) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(idx); err != nil {
		return err
	}
	return enc.Close()
}
