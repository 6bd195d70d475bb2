package schema

// FieldType is the input kind of an attribute.
type FieldType string

// Attribute field types.
const (
	FieldText    FieldType = "text"
	FieldNumber  FieldType = "number"
	FieldSelect  FieldType = "select"
	FieldBoolean FieldType = "boolean"
)

// AttributeField describes one category-specific attribute of a ref.
type AttributeField struct {
	Key         string    `json:"key"` // Unique within a schema.
	Label       string    `json:"label"`
	Type        FieldType `json:"type"`
	Placeholder string    `json:"placeholder,omitempty"`
	Options     []string  `json:"options,omitempty"`   // Allowed values for select fields, in display order.
	SchemaOrg   string    `json:"schemaOrg,omitempty"` // Schema.org property the value maps to.
	Summary     bool      `json:"summary,omitempty"`   // Shown in compact views.
	Unit        string    `json:"unit,omitempty"`
}

// HasOption reports whether v is one of the field's options.
func (f AttributeField) HasOption(v string) bool {
	for _, o := range f.Options {
		if o == v {
			return true
		}
	}
	return false
}

// Trait is a descriptive capability tag on a category schema. Traits are
// metadata only; nothing in this package enforces them.
type Trait string

// Known traits.
const (
	TraitPriceable     Trait = "Priceable"
	TraitConditional   Trait = "Conditional"
	TraitValueable     Trait = "Valueable"
	TraitSerialized    Trait = "Serialized"
	TraitLocationBound Trait = "LocationBound"
	TraitConsumable    Trait = "Consumable"
	TraitTimeBounded   Trait = "TimeBounded"
)
