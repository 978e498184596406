// Package catalog maps storefront product names to the category entry point
// that lists them.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/themizzi/cartverify/internal/models"
)

// ErrCategoryNotFound is returned when no category is mapped for a product
var ErrCategoryNotFound = errors.New("category mapping not found")

// Entry pairs a product name with its category entry key
type Entry struct {
	Name     string `toml:"name"`
	Category string `toml:"category"`
}

// Catalog is an immutable, case-insensitive product name to category lookup
type Catalog struct {
	byName map[string]Entry
}

// Default returns the mapping for the Advantage Online Shopping demo catalog
func Default() *Catalog {
	c, _ := New([]Entry{
		{Name: "HP ZBook 17 G2 Mobile Workstation", Category: "laptopsImg"},
		{Name: "HP Z8000 Bluetooth Mouse", Category: "miceImg"},
		{Name: "HP Elite x2 1011 G1 Tablet", Category: "tabletsImg"},
	})
	return c
}

// New builds a catalog from entries. Names are matched case-insensitively, so
// two entries differing only in case are a conflict.
func New(entries []Entry) (*Catalog, error) {
	c := &Catalog{byName: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		name := strings.TrimSpace(e.Name)
		category := strings.TrimSpace(e.Category)
		if name == "" || category == "" {
			return nil, fmt.Errorf("catalog entry %q: name and category are required", e.Name)
		}

		key := canonical(name)
		if existing, ok := c.byName[key]; ok && existing.Category != category {
			return nil, fmt.Errorf("catalog entry %q: mapped to both %s and %s", name, existing.Category, category)
		}
		c.byName[key] = Entry{Name: name, Category: category}
	}
	return c, nil
}

// Lookup returns the category key mapped to the product name
func (c *Catalog) Lookup(name string) (string, error) {
	if c != nil {
		if e, ok := c.byName[canonical(name)]; ok {
			return e.Category, nil
		}
	}
	return "", fmt.Errorf("%w for product %s", ErrCategoryNotFound, name)
}

// Resolve returns the category key to use for a product: its own category if
// set, otherwise the mapped one
func (c *Catalog) Resolve(p models.ExpectedProduct) (string, error) {
	if category := strings.TrimSpace(p.Category); category != "" {
		return category, nil
	}
	return c.Lookup(p.Name)
}

// Entries returns all entries sorted by category then name
func (c *Catalog) Entries() []Entry {
	if c == nil {
		return nil
	}
	entries := make([]Entry, 0, len(c.byName))
	for _, e := range c.byName {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Category != entries[j].Category {
			return entries[i].Category < entries[j].Category
		}
		return entries[i].Name < entries[j].Name
	})
	return entries
}

// Len returns the number of mapped products
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.byName)
}

func canonical(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
