package project

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/piwi3910/SomaCube/internal/model"
	"github.com/piwi3910/SomaCube/internal/yass"
)

// FigureExt is the extension of figure files in a local library.
const FigureExt = ".soma"

// DefaultFigureDir returns ~/.somacube/figures.
func DefaultFigureDir() string {
	return filepath.Join(DefaultConfigDir(), "figures")
}

// SaveFigure stores g as puzzle JSON under dir/<id>.soma.
func SaveFigure(dir, id string, g *model.GridModel) error {
	if err := validFigureID(id); err != nil {
		return err
	}
	data, err := yass.EncodePuzzle(g)
	if err != nil {
		return fmt.Errorf("failed to encode figure %s: %w", id, err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, id+FigureExt), data, 0644)
}

// LoadFigure reads dir/<id>.soma.
func LoadFigure(dir, id string) (*model.GridModel, error) {
	if err := validFigureID(id); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, id+FigureExt))
	if err != nil {
		return nil, err
	}
	g, err := yass.DecodePuzzle(data)
	if err != nil {
		return nil, fmt.Errorf("figure %s: %w", id, err)
	}
	return g, nil
}

// ListFigures returns the ids of every figure in dir, sorted. A missing
// directory is an empty library.
func ListFigures(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}
	ids := []string{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), FigureExt) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), FigureExt))
	}
	sort.Strings(ids)
	return ids, nil
}

func validFigureID(id string) error {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return fmt.Errorf("invalid figure id %q", id)
	}
	return nil
}
