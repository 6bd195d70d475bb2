package schema

import "slices"

// Attributes holds a ref's category-specific values keyed by
// AttributeField.Key.
type Attributes map[string]any

// LinkedData is a JSON-LD object.
type LinkedData map[string]any

// CategorySchema is the attribute definition and Schema.org mapping for one
// listing category.
type CategorySchema interface {
	// SchemaOrgType is the Schema.org type of the category's records.
	SchemaOrgType() string

	// AdditionalType refines SchemaOrgType; empty when the schema has none.
	AdditionalType() string

	// Traits returns the schema's capability tags.
	Traits() []Trait

	// ConditionOptions returns the valid condition values in display order.
	// An empty list means condition does not apply to the category.
	ConditionOptions() []string

	// Attributes returns the category's form fields in display order.
	Attributes() []AttributeField

	// BuildLinkedData maps attrs onto a partial Schema.org record. It reads
	// only the keys listed in Attributes, never mutates attrs, and returns
	// the same output for the same input.
	BuildLinkedData(attrs Attributes) LinkedData
}

// descriptor carries the static metadata shared by every schema
// implementation. Accessors hand out copies so registered schemas cannot be
// mutated through them.
type descriptor struct {
	schemaOrgType    string
	additionalType   string
	traits           []Trait
	conditionOptions []string
	attributes       []AttributeField
}

func (d *descriptor) SchemaOrgType() string  { return d.schemaOrgType }
func (d *descriptor) AdditionalType() string { return d.additionalType }
func (d *descriptor) Traits() []Trait        { return slices.Clone(d.traits) }

func (d *descriptor) ConditionOptions() []string {
	out := slices.Clone(d.conditionOptions)
	if out == nil {
		out = []string{}
	}
	return out
}

func (d *descriptor) Attributes() []AttributeField {
	out := make([]AttributeField, len(d.attributes))
	for i, f := range d.attributes {
		f.Options = slices.Clone(f.Options)
		out[i] = f
	}
	return out
}

// base starts a record with the schema's type discriminators.
func (d *descriptor) base() LinkedData {
	ld := LinkedData{"@type": d.schemaOrgType}
	if d.additionalType != "" {
		ld["additionalType"] = d.additionalType
	}
	return ld
}

// HasTrait reports whether s declares trait t.
func HasTrait(s CategorySchema, t Trait) bool {
	return slices.Contains(s.Traits(), t)
}

// Field returns the attribute with the given key.
func Field(s CategorySchema, key string) (AttributeField, bool) {
	for _, f := range s.Attributes() {
		if f.Key == key {
			return f, true
		}
	}
	return AttributeField{}, false
}

// AcceptsCondition reports whether condition is valid for s. The empty
// condition is always accepted, and so is any condition when the schema
// declares no options.
func AcceptsCondition(s CategorySchema, condition string) bool {
	opts := s.ConditionOptions()
	if condition == "" || len(opts) == 0 {
		return true
	}
	return slices.Contains(opts, condition)
}
