package schema

import "strings"

// keySeparator joins category and subcategory in registry keys.
const keySeparator = "|"

// Key returns the registry key for a category and subcategory.
func Key(category, subcategory string) string {
	return category + keySeparator + subcategory
}

// Entry is one registered category/subcategory pair.
type Entry struct {
	Category    string
	Subcategory string
	Schema      CategorySchema
}

// Key returns the entry's registry key.
func (e Entry) Key() string { return Key(e.Category, e.Subcategory) }

// Registry resolves category/subcategory pairs to schemas. Entries keep
// their registration order, which decides category-only lookups. A Registry
// is never modified after NewRegistry returns.
type Registry struct {
	entries  []Entry
	index    map[string]int
	fallback CategorySchema
}

// NewRegistry builds a registry over entries. Registering a key twice keeps
// the first position and the last schema.
func NewRegistry(fallback CategorySchema, entries ...Entry) *Registry {
	r := &Registry{
		index:    make(map[string]int, len(entries)),
		fallback: fallback,
	}
	for _, e := range entries {
		k := e.Key()
		if i, ok := r.index[k]; ok {
			r.entries[i].Schema = e.Schema
			continue
		}
		r.index[k] = len(r.entries)
		r.entries = append(r.entries, e)
	}
	return r
}

// Lookup returns the schema for a category and subcategory. It never fails:
//
//  1. With both set, an exact match wins.
//  2. With category set, the first registered entry under that category wins.
//  3. Otherwise the fallback schema is returned.
func (r *Registry) Lookup(category, subcategory string) CategorySchema {
	if category != "" && subcategory != "" {
		if i, ok := r.index[Key(category, subcategory)]; ok {
			return r.entries[i].Schema
		}
	}
	if category != "" {
		prefix := category + keySeparator
		for _, e := range r.entries {
			if strings.HasPrefix(e.Key(), prefix) {
				return e.Schema
			}
		}
	}
	return r.fallback
}

// Default returns the fallback schema.
func (r *Registry) Default() CategorySchema { return r.fallback }

// Entries returns the registered entries in registration order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// CategoryNames returns each registered category once, in order of first
// registration.
func (r *Registry) CategoryNames() []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range r.entries {
		if !seen[e.Category] {
			seen[e.Category] = true
			out = append(out, e.Category)
		}
	}
	return out
}

// Subcategories returns the registered subcategories of category in order.
func (r *Registry) Subcategories(category string) []string {
	var out []string
	for _, e := range r.entries {
		if e.Category == category {
			out = append(out, e.Subcategory)
		}
	}
	return out
}

// Default is the schema for categories with no registered entry.
var Default CategorySchema = newDefaultSchema()

// Categories is the built-in registry of listing categories. Every housing
// subcategory shares one schema.
var Categories = builtinRegistry()

func builtinRegistry() *Registry {
	housing := newHousingSchema()
	return NewRegistry(Default,
		Entry{"Vehicles", "Cars", newCarSchema()},
		Entry{"Vehicles", "Boats", newBoatSchema()},
		Entry{"Housing", "Single Family Homes", housing},
		Entry{"Housing", "Condos", housing},
		Entry{"Housing", "Townhouses", housing},
		Entry{"Housing", "Multi-Family", housing},
		Entry{"Housing", "Land", housing},
		Entry{"Electronics", "Phones & Tablets", newPhoneSchema()},
		Entry{"Home & Garden", "Furniture", newFurnitureSchema()},
		Entry{"Collectibles", "Art", newArtSchema()},
		Entry{"Other", "Services", newDiningSchema()},
	)
}

// GetCategorySchema looks up a schema in Categories.
func GetCategorySchema(category, subcategory string) CategorySchema {
	return Categories.Lookup(category, subcategory)
}
