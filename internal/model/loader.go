package model

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/heart-risk-predictor/internal/domain"
)

// ErrNoModelFound is returned by LoadFirst when no candidate path exists.
var ErrNoModelFound = errors.New("no model file found")

// Loaded is a decoded model together with where it came from.
type Loaded struct {
	Model    any
	Kind     string
	Path     string
	LoadedAt time.Time
}

// Load reads and decodes the model at path. Every failure is a
// *domain.ModelLoadError.
func Load(path string) (*Loaded, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.NewModelLoadError(path, err)
	}
	defer f.Close()

	m, kind, err := Decode(f)
	if err != nil {
		return nil, domain.NewModelLoadError(path, err)
	}

	return &Loaded{Model: m, Kind: kind, Path: path, LoadedAt: time.Now().UTC()}, nil
}

// LoadFirst tries each candidate in priority order and returns the first
// model that loads. Paths that do not exist are skipped; the returned error
// joins the failures of the ones that did.
func LoadFirst(paths []string) (*Loaded, error) {
	var failures []error
	for _, path := range paths {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}

		loaded, err := Load(path)
		if err != nil {
			failures = append(failures, err)
			continue
		}
		return loaded, nil
	}

	if len(failures) == 0 {
		return nil, fmt.Errorf("%w among %v", ErrNoModelFound, paths)
	}
	return nil, errors.Join(failures...)
}
