// ABOUTME: Embedded cable database of tabulated ratings, voltage drop and prices
// ABOUTME: Parses cables.yaml and answers rating and smallest-size lookups

package cabledb

import (
	_ "embed"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/sparkcalc/sparkcalc/backend/models"
)

//go:embed cables.yaml
var embeddedCables []byte

// Size is one conductor size of a cable
type Size struct {
	SizeMm2   float64            `yaml:"size_mm2" json:"size_mm2"`
	Ratings   map[string]float64 `yaml:"ratings" json:"ratings"` // keyed by method code, e.g. "C"
	MVPerAM   float64            `yaml:"mv_per_a_m" json:"mv_per_a_m"`
	PricePerM float64            `yaml:"price_per_m" json:"price_per_m"`
}

// Cable is a cable construction with its available sizes in ascending order
type Cable struct {
	Key             string           `yaml:"key" json:"key"`
	Name            string           `yaml:"name" json:"name"`
	CableType       models.CableType `yaml:"cable_type" json:"cable_type"`
	Applications    []string         `yaml:"applications" json:"applications,omitempty"`
	Limitations     []string         `yaml:"limitations" json:"limitations,omitempty"`
	Recommendations []string         `yaml:"recommendations" json:"recommendations,omitempty"`
	Sizes           []Size           `yaml:"sizes" json:"sizes"`
}

// Size returns the entry for a conductor size
func (c Cable) Size(sizeMm2 float64) (Size, bool) {
	for _, s := range c.Sizes {
		if s.SizeMm2 == sizeMm2 {
			return s, true
		}
	}
	return Size{}, false
}

// Rating returns the tabulated rating for a size and method; ok is false when not tabulated
func (c Cable) Rating(sizeMm2 float64, method models.InstallationMethod) (float64, bool) {
	s, ok := c.Size(sizeMm2)
	if !ok {
		return 0, false
	}
	r := s.Ratings[method.Code()]
	return r, r > 0
}

// SupportsMethod reports whether any size is tabulated for the method
func (c Cable) SupportsMethod(method models.InstallationMethod) bool {
	for _, s := range c.Sizes {
		if s.Ratings[method.Code()] > 0 {
			return true
		}
	}
	return false
}

// SmallestSize returns the first size whose tabulated rating × factor reaches
// requiredAmps for the method
func (c Cable) SmallestSize(method models.InstallationMethod, requiredAmps, factor float64) (Size, bool) {
	code := method.Code()
	for _, s := range c.Sizes {
		r := s.Ratings[code]
		if r > 0 && r*factor >= requiredAmps {
			return s, true
		}
	}
	return Size{}, false
}

// DB is an immutable set of cables keyed by Cable.Key
type DB struct {
	cables map[string]Cable
	order  []string
}

type document struct {
	Cables []Cable `yaml:"cables"`
}

// Load parses the embedded cable database
func Load() (*DB, error) {
	return Parse(embeddedCables)
}

// MustLoad is Load for callers that treat a broken embedded database as a build defect
func MustLoad() *DB {
	db, err := Load()
	if err != nil {
		panic(err)
	}
	return db
}

// Parse builds a DB from YAML
func Parse(data []byte) (*DB, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing cable database YAML: %w", err)
	}

	db := &DB{cables: make(map[string]Cable, len(doc.Cables))}
	for _, c := range doc.Cables {
		if c.Key == "" {
			return nil, fmt.Errorf("cable database entry %q has no key", c.Name)
		}
		if _, dup := db.cables[c.Key]; dup {
			return nil, fmt.Errorf("duplicate cable key %q", c.Key)
		}
		if !c.CableType.Valid() {
			return nil, fmt.Errorf("cable %q has unknown cable type %q", c.Key, c.CableType)
		}
		for i := 1; i < len(c.Sizes); i++ {
			if c.Sizes[i].SizeMm2 <= c.Sizes[i-1].SizeMm2 {
				return nil, fmt.Errorf("cable %q sizes must be ascending", c.Key)
			}
		}
		db.cables[c.Key] = c
		db.order = append(db.order, c.Key)
	}
	return db, nil
}

// Cable looks up a cable by key
func (db *DB) Cable(key string) (Cable, bool) {
	c, ok := db.cables[key]
	return c, ok
}

// Cables returns every cable in file order
func (db *DB) Cables() []Cable {
	out := make([]Cable, 0, len(db.order))
	for _, k := range db.order {
		out = append(out, db.cables[k])
	}
	return out
}

// ByMethod returns the cables tabulated for an installation method, in file order
func (db *DB) ByMethod(method models.InstallationMethod) []Cable {
	out := []Cable{}
	for _, c := range db.Cables() {
		if c.SupportsMethod(method) {
			out = append(out, c)
		}
	}
	return out
}

// ByCurrentRating returns the cables with at least one size rated for minAmps
// under the method
func (db *DB) ByCurrentRating(minAmps float64, method models.InstallationMethod) []Cable {
	out := []Cable{}
	for _, c := range db.Cables() {
		if _, ok := c.SmallestSize(method, minAmps, 1.0); ok {
			out = append(out, c)
		}
	}
	return out
}

// Alternative is a cheaper cable offered in the same conductor size
type Alternative struct {
	Cable      string          `json:"cable"`
	Name       string          `json:"name"`
	SizeMm2    float64         `json:"size_mm2"`
	PricePerM  decimal.Decimal `json:"price_per_m"`
	SavingPerM decimal.Decimal `json:"saving_per_m"`
}

// Alternatives lists cables cheaper than key at the same size whose price per
// metre is within maxBudget, largest saving first. ok is false when key has no
// such size.
func (db *DB) Alternatives(key string, sizeMm2, maxBudget float64) ([]Alternative, bool) {
	base, ok := db.cables[key]
	if !ok {
		return nil, false
	}
	baseSize, ok := base.Size(sizeMm2)
	if !ok {
		return nil, false
	}
	basePrice := decimal.NewFromFloat(baseSize.PricePerM)
	budget := decimal.NewFromFloat(maxBudget)

	out := []Alternative{}
	for _, c := range db.Cables() {
		s, ok := c.Size(sizeMm2)
		if !ok || c.Key == key {
			continue
		}
		price := decimal.NewFromFloat(s.PricePerM)
		if price.GreaterThan(budget) || !price.LessThan(basePrice) {
			continue
		}
		out = append(out, Alternative{
			Cable:      c.Key,
			Name:       c.Name,
			SizeMm2:    sizeMm2,
			PricePerM:  price,
			SavingPerM: basePrice.Sub(price),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SavingPerM.GreaterThan(out[j].SavingPerM)
	})
	return out, true
}
