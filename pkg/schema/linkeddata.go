package schema

import (
	"time"

	"github.com/mesh-intelligence/reffo/pkg/types"
)

// JSON-LD vocabularies.
const (
	VocabSchemaOrg = "https://schema.org/"
	VocabReffo     = "https://reffo.ai/ns/"
)

// ConditionKey is the linked-data key that carries a listing's condition.
// Schema.org has no standard condition vocabulary, so it lives in the
// reffo namespace.
const ConditionKey = "reffo:condition"

// BaseFields are the listing fields layered on every linked-data record.
// Empty strings are omitted. Price is included whenever it is non-nil, so a
// price of zero is kept.
type BaseFields struct {
	Name          string
	Description   string
	Price         *float64
	Currency      string // Defaults to USD.
	Condition     string
	Image         string
	SKU           string
	CreatedAt     string
	UpdatedAt     string
	OfferStatus   string
	SellerID      string
	OfferLocation string
}

// BuildLinkedData assembles the JSON-LD record for a listing: the category
// mapping of attrs from the resolved schema, then the @context and the
// base fields. Base fields replace any same-named key the category mapping
// produced. The result is a fresh map owned by the caller.
func (r *Registry) BuildLinkedData(category, subcategory string, attrs Attributes, base BaseFields) LinkedData {
	ld := r.Lookup(category, subcategory).BuildLinkedData(attrs)
	if ld == nil {
		ld = LinkedData{}
	}
	ld["@context"] = LinkedData{"@vocab": VocabSchemaOrg, "reffo": VocabReffo}

	setNonEmpty(ld, "name", base.Name)
	setNonEmpty(ld, "description", base.Description)
	setNonEmpty(ld, "image", base.Image)
	setNonEmpty(ld, "sku", base.SKU)
	setNonEmpty(ld, "dateCreated", base.CreatedAt)
	setNonEmpty(ld, "dateModified", base.UpdatedAt)
	setNonEmpty(ld, ConditionKey, base.Condition)

	if base.Price != nil {
		currency := base.Currency
		if currency == "" {
			currency = types.DefaultCurrency
		}
		offer := LinkedData{"@type": "Offer", "price": *base.Price, "priceCurrency": currency}
		setNonEmpty(offer, "availability", base.OfferStatus)
		if base.SellerID != "" {
			offer["seller"] = LinkedData{"@type": "Organization", "@id": base.SellerID}
		}
		setNonEmpty(offer, "availableAtOrFrom", base.OfferLocation)
		ld["offers"] = offer
	}
	return ld
}

// BuildLinkedData assembles a listing record using the Categories registry.
func BuildLinkedData(category, subcategory string, attrs Attributes, base BaseFields) LinkedData {
	return Categories.BuildLinkedData(category, subcategory, attrs, base)
}

// RefBaseFields collects the base fields of a ref and, when offer is not
// nil, its offer. Timestamps are written as RFC 3339.
func RefBaseFields(ref *types.Ref, offer *types.Offer) BaseFields {
	b := BaseFields{
		Name:        ref.Name,
		Description: ref.Description,
		Condition:   ref.Condition,
		Image:       ref.Image,
		SKU:         ref.SKU,
		CreatedAt:   timestamp(ref.CreatedAt),
		UpdatedAt:   timestamp(ref.UpdatedAt),
	}
	if offer != nil {
		price := offer.Price
		b.Price = &price
		b.Currency = offer.PriceCurrency
		b.OfferStatus = offer.Status
		b.SellerID = offer.SellerID
		b.OfferLocation = offer.Location
	}
	return b
}

// RefLinkedData builds the JSON-LD record for a stored ref and its offer.
func RefLinkedData(ref *types.Ref, offer *types.Offer) LinkedData {
	return BuildLinkedData(ref.Category, ref.Subcategory, ref.Attributes, RefBaseFields(ref, offer))
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func setNonEmpty(ld LinkedData, key, v string) {
	if v != "" {
		ld[key] = v
	}
}
