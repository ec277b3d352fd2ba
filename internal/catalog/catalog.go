// Package catalog holds the scheme table and the category mapping.
// A Catalog is built once at startup and is read-only afterwards, so it is
// safe for concurrent use without locking.
package catalog

import (
	"fmt"

	"github.com/ppiankov/schemeqa/internal/model"
)

// Catalog maps scheme names to their records and categories to scheme names
type Catalog struct {
	records map[string]model.SchemeRecord
	order   []string
	index   model.CategoryIndex
}

// New builds a catalog from records and a category index.
// Duplicate scheme names are rejected.
func New(records []model.SchemeRecord, index model.CategoryIndex) (*Catalog, error) {
	c := &Catalog{
		records: make(map[string]model.SchemeRecord, len(records)),
		order:   make([]string, 0, len(records)),
		index:   index.Clone(),
	}

	for _, rec := range records {
		if rec.Name == "" {
			return nil, &LoadError{Err: ErrEmptyKey}
		}
		if _, exists := c.records[rec.Name]; exists {
			return nil, &LoadError{Err: fmt.Errorf("%w: %q", ErrDuplicateKey, rec.Name)}
		}
		c.records[rec.Name] = rec
		c.order = append(c.order, rec.Name)
	}

	for _, cat := range c.index {
		if cat.Name == "" {
			return nil, &LoadError{Err: ErrEmptyCategoryName}
		}
	}

	return c, nil
}

// Lookup returns the record for a scheme name
func (c *Catalog) Lookup(name string) (model.SchemeRecord, bool) {
	rec, ok := c.records[name]
	return rec, ok
}

// Categories returns a copy of the category index
func (c *Catalog) Categories() model.CategoryIndex {
	return c.index.Clone()
}

// Schemes returns all records in source order
func (c *Catalog) Schemes() []model.SchemeRecord {
	out := make([]model.SchemeRecord, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.records[name])
	}
	return out
}

// Len returns the number of schemes
func (c *Catalog) Len() int {
	return len(c.order)
}

// Dangling lists scheme names referenced by a category but missing from the table.
// Such names are tolerated: the resolver drops them at query time.
func (c *Catalog) Dangling() []string {
	var missing []string
	seen := make(map[string]bool)
	for _, cat := range c.index {
		for _, name := range cat.Schemes {
			if _, ok := c.records[name]; ok || seen[name] {
				continue
			}
			seen[name] = true
			missing = append(missing, name)
		}
	}
	return missing
}
