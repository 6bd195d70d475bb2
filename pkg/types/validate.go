package types

import (
	"math"
	"strings"
)

// isAmount reports whether v is a finite, non-negative price or distance.
func isAmount(v float64) bool {
	return v >= 0 && !math.IsInf(v, 1)
}

func isOptionalAmount(v *float64) bool { return v == nil || isAmount(*v) }

// validate rejects non-finite coordinates.
func (l Location) validate() error {
	for _, c := range []*float64{l.Lat, l.Lng} {
		if c != nil && (math.IsNaN(*c) || math.IsInf(*c, 0)) {
			return ErrInvalidData
		}
	}
	return nil
}

// Validate checks the ref's own fields. Category-dependent checks, such as
// whether Condition is allowed, belong to the caller that knows the schema.
func (r *Ref) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrInvalidName
	}
	if !IsValidListingStatus(r.ListingStatus) {
		return ErrInvalidStatus
	}
	if r.Quantity < 0 {
		return ErrInvalidQuantity
	}
	if r.SellingScope != "" && !IsValidSellingScope(r.SellingScope) {
		return ErrInvalidScope
	}
	if !isOptionalAmount(r.SellingRadiusMiles) {
		return ErrInvalidScope
	}
	if !isOptionalAmount(r.RentalDeposit) {
		return ErrInvalidPrice
	}
	if r.RentalDurationUnit != "" && !IsValidDurationUnit(r.RentalDurationUnit) {
		return ErrInvalidData
	}
	return r.Location.validate()
}

// Validate checks the offer's fields.
func (o *Offer) Validate() error {
	if o.RefID == "" {
		return ErrInvalidID
	}
	if !isAmount(o.Price) {
		return ErrInvalidPrice
	}
	if !IsValidOfferStatus(o.Status) {
		return ErrInvalidStatus
	}
	if o.PriceCurrency != "" && !isCurrencyCode(o.PriceCurrency) {
		return ErrInvalidCurrency
	}
	return nil
}

// Validate checks the negotiation's fields.
func (n *Negotiation) Validate() error {
	if n.RefID == "" {
		return ErrInvalidID
	}
	if !isAmount(n.Price) || !isOptionalAmount(n.CounterPrice) {
		return ErrInvalidPrice
	}
	if !IsValidNegotiationStatus(n.Status) {
		return ErrInvalidStatus
	}
	if !IsValidRole(n.Role) {
		return ErrInvalidRole
	}
	if n.CounteredBy != "" && !IsValidRole(n.CounteredBy) {
		return ErrInvalidRole
	}
	return nil
}

// Validate checks the media record's fields.
func (m *RefMedia) Validate() error {
	if m.RefID == "" {
		return ErrInvalidID
	}
	if !IsValidMediaType(m.MediaType) {
		return ErrInvalidMediaType
	}
	if m.FilePath == "" || m.FileSize < 0 {
		return ErrInvalidData
	}
	return nil
}

// Validate checks the beacon settings.
func (s *BeaconSettings) Validate() error {
	if !IsValidSellingScope(s.DefaultSellingScope) {
		return ErrInvalidScope
	}
	if !isAmount(s.DefaultSellingRadiusMiles) {
		return ErrInvalidScope
	}
	return s.Location.validate()
}
