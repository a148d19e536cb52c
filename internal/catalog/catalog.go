// Package catalog provides the read-only workout catalog that sessions are
// started from.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/meltforce/pulsefit/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var builtinYAML []byte

// ErrNotFound is returned by Get for an unknown workout ID.
var ErrNotFound = errors.New("workout not found")

type file struct {
	Workouts []models.Workout `yaml:"workouts"`
}

// Catalog is an ordered, immutable set of workouts. The first workout is the
// fallback used when a lookup misses.
type Catalog struct {
	workouts []models.Workout
	byID     map[string]int
}

// Builtin returns the embedded default catalog.
func Builtin() *Catalog {
	c, err := Parse(builtinYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// Load reads a catalog from a YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog and validates every workout in it.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	return New(f.Workouts)
}

// New builds a catalog from workouts. IDs must be unique and every workout
// must be playable.
func New(workouts []models.Workout) (*Catalog, error) {
	if len(workouts) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}
	c := &Catalog{
		workouts: make([]models.Workout, 0, len(workouts)),
		byID:     make(map[string]int, len(workouts)),
	}
	for _, w := range workouts {
		if err := w.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byID[w.ID]; dup {
			return nil, fmt.Errorf("duplicate workout id %q", w.ID)
		}
		c.byID[w.ID] = len(c.workouts)
		c.workouts = append(c.workouts, w)
	}
	return c, nil
}

// List returns all workouts in catalog order.
func (c *Catalog) List() []models.Workout {
	out := make([]models.Workout, len(c.workouts))
	copy(out, c.workouts)
	return out
}

// ByCategory returns workouts in the given category. An empty category
// returns everything.
func (c *Catalog) ByCategory(cat models.Category) []models.Workout {
	if cat == "" {
		return c.List()
	}
	var out []models.Workout
	for _, w := range c.workouts {
		if w.Category == cat {
			out = append(out, w)
		}
	}
	return out
}

// Get returns the workout with the given ID.
func (c *Catalog) Get(id string) (models.Workout, error) {
	i, ok := c.byID[id]
	if !ok {
		return models.Workout{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return c.workouts[i], nil
}

// GetOrDefault returns the workout with the given ID, or the first workout
// in the catalog when there is none.
func (c *Catalog) GetOrDefault(id string) models.Workout {
	if w, err := c.Get(id); err == nil {
		return w
	}
	return c.workouts[0]
}
