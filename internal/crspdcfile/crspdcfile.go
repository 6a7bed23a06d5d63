// Package crspdcfile persists the named edge correspondences between the
// shapes of two label documents.
package crspdcfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/example/pairlabel/internal/shape"
)

// Suffix is the extension of correspondence files.
const Suffix = ".crspdc.json"

// ErrFormat is returned for malformed correspondence documents.
var ErrFormat = errors.New("invalid correspondence file")

// File is the decoded correspondence document.
type File struct {
	// ByID maps a shape id to its correspondence name to edge index entries.
	ByID map[string]map[string]int `json:"crspdcById"`
	// ByName lists every correspondence name in creation order.
	ByName    []string  `json:"crspdcByName"`
	ImagePath [2]string `json:"imagePath"`
}

// IsCorrespondenceFile reports whether path carries the correspondence suffix.
func IsCorrespondenceFile(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), Suffix)
}

// PathFromNames derives the correspondence file for a pair of images. The
// result does not depend on the order of paths.
func PathFromNames(paths [2]string) string {
	type entry struct{ base, path string }
	es := make([]entry, 0, 2)
	for _, p := range paths {
		b := filepath.Base(p)
		es = append(es, entry{base: strings.TrimSuffix(b, filepath.Ext(b)), path: p})
	}
	sort.Slice(es, func(i, j int) bool {
		if es[i].base != es[j].base {
			return es[i].base < es[j].base
		}
		return es[i].path < es[j].path
	})
	return filepath.Join(filepath.Dir(es[0].path), es[0].base+"_"+es[1].base+Suffix)
}

// Build collects the non-empty correspondence maps of both shape lists.
func Build(names []string, shapes [2][]*shape.Shape, imagePaths [2]string) *File {
	f := &File{
		ByID:      make(map[string]map[string]int),
		ByName:    append([]string{}, names...),
		ImagePath: imagePaths,
	}
	for _, list := range shapes {
		for _, s := range list {
			if len(s.Correspondence) == 0 {
				continue
			}
			m := make(map[string]int, len(s.Correspondence))
			for k, v := range s.Correspondence {
				m[k] = v
			}
			f.ByID[s.ID] = m
		}
	}
	return f
}

// Save writes the correspondence document for the pair and returns its path.
func Save(names []string, shapes [2][]*shape.Shape, imagePaths [2]string) (string, error) {
	path := PathFromNames(imagePaths)
	if err := Write(path, Build(names, shapes, imagePaths)); err != nil {
		return "", err
	}
	return path, nil
}

// Write encodes f to path.
func Write(path string, f *File) error {
	b, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encode correspondence file: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write correspondence file: %w", err)
	}
	return nil
}

// Load reads a correspondence document. Every field must be present.
func Load(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw struct {
		ByID      *map[string]map[string]int `json:"crspdcById"`
		ByName    *[]string                  `json:"crspdcByName"`
		ImagePath *[2]string                 `json:"imagePath"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("load %s: %w: %w", path, ErrFormat, err)
	}
	if raw.ByID == nil || raw.ByName == nil || raw.ImagePath == nil {
		return nil, fmt.Errorf("load %s: missing field: %w", path, ErrFormat)
	}
	f := &File{ByID: *raw.ByID, ByName: *raw.ByName, ImagePath: *raw.ImagePath}
	if f.ByID == nil {
		f.ByID = make(map[string]map[string]int)
	}
	return f, nil
}
