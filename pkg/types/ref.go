package types

import "time"

// Listing statuses. A ref is private until its owner lists it.
const (
	ListingPrivate         = "private"
	ListingForSale         = "for_sale"
	ListingWillingToSell   = "willing_to_sell"
	ListingForRent         = "for_rent"
	ListingArchivedSold    = "archived_sold"
	ListingArchivedDeleted = "archived_deleted"
)

var validListingStatuses = map[string]bool{
	ListingPrivate:         true,
	ListingForSale:         true,
	ListingWillingToSell:   true,
	ListingForRent:         true,
	ListingArchivedSold:    true,
	ListingArchivedDeleted: true,
}

// Selling scopes control how far a listing is announced.
const (
	ScopeGlobal   = "global"
	ScopeNational = "national"
	ScopeRange    = "range"
)

var validSellingScopes = map[string]bool{
	ScopeGlobal:   true,
	ScopeNational: true,
	ScopeRange:    true,
}

// Rental duration units.
const (
	DurationHours  = "hours"
	DurationDays   = "days"
	DurationWeeks  = "weeks"
	DurationMonths = "months"
)

var validDurationUnits = map[string]bool{
	DurationHours:  true,
	DurationDays:   true,
	DurationWeeks:  true,
	DurationMonths: true,
}

// IsValidListingStatus reports whether s is a recognized listing status.
func IsValidListingStatus(s string) bool { return validListingStatuses[s] }

// IsValidSellingScope reports whether s is a recognized selling scope.
func IsValidSellingScope(s string) bool { return validSellingScopes[s] }

// IsValidDurationUnit reports whether s is a recognized rental duration unit.
func IsValidDurationUnit(s string) bool { return validDurationUnits[s] }

// Location is a postal location with optional coordinates. The street
// address is kept locally and never announced to peers.
type Location struct {
	Lat     *float64 `json:"locationLat,omitempty"`
	Lng     *float64 `json:"locationLng,omitempty"`
	Address string   `json:"locationAddress,omitempty"`
	City    string   `json:"locationCity,omitempty"`
	State   string   `json:"locationState,omitempty"`
	Zip     string   `json:"locationZip,omitempty"`
	Country string   `json:"locationCountry,omitempty"`
}

// Point returns the coordinates and true when both latitude and longitude
// are set.
func (l Location) Point() (Point, bool) {
	if l.Lat == nil || l.Lng == nil {
		return Point{}, false
	}
	return Point{Lat: *l.Lat, Lng: *l.Lng}, true
}

// Ref is a listing or catalog entry owned by a beacon.
type Ref struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
	Image       string `json:"image,omitempty"`
	SKU         string `json:"sku,omitempty"`

	ListingStatus string `json:"listingStatus"`
	Quantity      int    `json:"quantity"`

	// ReffoSynced reports whether the ref is mirrored to reffo.ai, in which
	// case ReffoRefID holds the remote ID.
	ReffoSynced bool   `json:"reffoSynced"`
	ReffoRefID  string `json:"reffoRefId,omitempty"`

	Location

	SellingScope       string   `json:"sellingScope,omitempty"`
	SellingRadiusMiles *float64 `json:"sellingRadiusMiles,omitempty"` // Used when SellingScope is "range".

	// Attributes holds category-specific values keyed by AttributeField.Key.
	Attributes map[string]any `json:"attributes,omitempty"`
	Condition  string         `json:"condition,omitempty"`

	RentalTerms        string   `json:"rentalTerms,omitempty"`
	RentalDeposit      *float64 `json:"rentalDeposit,omitempty"`
	RentalDuration     *int     `json:"rentalDuration,omitempty"`
	RentalDurationUnit string   `json:"rentalDurationUnit,omitempty"`

	BeaconID  string    `json:"beaconId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SetListingStatus sets the listing status.
// Returns ErrInvalidStatus if the status is not recognized. Idempotent.
func (r *Ref) SetListingStatus(status string) error {
	if !validListingStatuses[status] {
		return ErrInvalidStatus
	}
	r.ListingStatus = status
	r.UpdatedAt = time.Now()
	return nil
}

// IsListed reports whether the ref is visible to peers.
func (r *Ref) IsListed() bool {
	switch r.ListingStatus {
	case ListingForSale, ListingWillingToSell, ListingForRent:
		return true
	}
	return false
}

// Announce returns the public projection of the ref sent to peers.
// Coordinates are blurred and the street address is dropped.
func (r *Ref) Announce() AnnouncedRef {
	a := AnnouncedRef{
		ID:                 r.ID,
		Name:               r.Name,
		Category:           r.Category,
		Subcategory:        r.Subcategory,
		ListingStatus:      r.ListingStatus,
		City:               r.City,
		State:              r.State,
		Zip:                r.Zip,
		Country:            r.Country,
		SellingScope:       r.SellingScope,
		SellingRadiusMiles: r.SellingRadiusMiles,
	}
	if p, ok := r.Point(); ok {
		b := BlurLocation(p.Lat, p.Lng)
		a.Lat, a.Lng = &b.Lat, &b.Lng
	}
	return a
}

// RefCreate holds the caller-supplied fields for a new ref. The store
// assigns the ID, owning beacon, timestamps, and sync state.
type RefCreate struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
	Image       string `json:"image,omitempty"`
	SKU         string `json:"sku,omitempty"`

	ListingStatus string `json:"listingStatus,omitempty"` // Defaults to private.
	Quantity      *int   `json:"quantity,omitempty"`      // Defaults to 1.

	Location

	SellingScope       string   `json:"sellingScope,omitempty"`
	SellingRadiusMiles *float64 `json:"sellingRadiusMiles,omitempty"`

	Attributes map[string]any `json:"attributes,omitempty"`
	Condition  string         `json:"condition,omitempty"`

	RentalTerms        string   `json:"rentalTerms,omitempty"`
	RentalDeposit      *float64 `json:"rentalDeposit,omitempty"`
	RentalDuration     *int     `json:"rentalDuration,omitempty"`
	RentalDurationUnit string   `json:"rentalDurationUnit,omitempty"`
}

// Ref builds an unsaved Ref with create defaults applied.
func (c RefCreate) Ref() *Ref {
	r := &Ref{
		Name:               c.Name,
		Description:        c.Description,
		Category:           c.Category,
		Subcategory:        c.Subcategory,
		Image:              c.Image,
		SKU:                c.SKU,
		ListingStatus:      c.ListingStatus,
		Quantity:           1,
		Location:           c.Location,
		SellingScope:       c.SellingScope,
		SellingRadiusMiles: c.SellingRadiusMiles,
		Attributes:         c.Attributes,
		Condition:          c.Condition,
		RentalTerms:        c.RentalTerms,
		RentalDeposit:      c.RentalDeposit,
		RentalDuration:     c.RentalDuration,
		RentalDurationUnit: c.RentalDurationUnit,
	}
	if r.ListingStatus == "" {
		r.ListingStatus = ListingPrivate
	}
	if c.Quantity != nil {
		r.Quantity = *c.Quantity
	}
	return r
}

// RefUpdate is a partial update; nil fields are left unchanged.
type RefUpdate struct {
	Name          *string `json:"name,omitempty"`
	Description   *string `json:"description,omitempty"`
	Category      *string `json:"category,omitempty"`
	Subcategory   *string `json:"subcategory,omitempty"`
	Image         *string `json:"image,omitempty"`
	SKU           *string `json:"sku,omitempty"`
	ListingStatus *string `json:"listingStatus,omitempty"`
	Quantity      *int    `json:"quantity,omitempty"`

	Lat     *float64 `json:"locationLat,omitempty"`
	Lng     *float64 `json:"locationLng,omitempty"`
	Address *string  `json:"locationAddress,omitempty"`
	City    *string  `json:"locationCity,omitempty"`
	State   *string  `json:"locationState,omitempty"`
	Zip     *string  `json:"locationZip,omitempty"`
	Country *string  `json:"locationCountry,omitempty"`

	SellingScope       *string  `json:"sellingScope,omitempty"`
	SellingRadiusMiles *float64 `json:"sellingRadiusMiles,omitempty"`

	// Attributes are merged key by key; a nil value removes the key.
	Attributes map[string]any `json:"attributes,omitempty"`
	Condition  *string        `json:"condition,omitempty"`

	RentalTerms        *string  `json:"rentalTerms,omitempty"`
	RentalDeposit      *float64 `json:"rentalDeposit,omitempty"`
	RentalDuration     *int     `json:"rentalDuration,omitempty"`
	RentalDurationUnit *string  `json:"rentalDurationUnit,omitempty"`
}

// Apply copies the set fields of u onto r and bumps UpdatedAt.
func (u RefUpdate) Apply(r *Ref) {
	setString(&r.Name, u.Name)
	setString(&r.Description, u.Description)
	setString(&r.Category, u.Category)
	setString(&r.Subcategory, u.Subcategory)
	setString(&r.Image, u.Image)
	setString(&r.SKU, u.SKU)
	setString(&r.ListingStatus, u.ListingStatus)
	if u.Quantity != nil {
		r.Quantity = *u.Quantity
	}

	if u.Lat != nil {
		r.Lat = u.Lat
	}
	if u.Lng != nil {
		r.Lng = u.Lng
	}
	setString(&r.Address, u.Address)
	setString(&r.City, u.City)
	setString(&r.State, u.State)
	setString(&r.Zip, u.Zip)
	setString(&r.Country, u.Country)

	setString(&r.SellingScope, u.SellingScope)
	if u.SellingRadiusMiles != nil {
		r.SellingRadiusMiles = u.SellingRadiusMiles
	}

	if len(u.Attributes) > 0 {
		if r.Attributes == nil {
			r.Attributes = make(map[string]any, len(u.Attributes))
		}
		for k, v := range u.Attributes {
			if v == nil {
				delete(r.Attributes, k)
				continue
			}
			r.Attributes[k] = v
		}
	}
	setString(&r.Condition, u.Condition)

	setString(&r.RentalTerms, u.RentalTerms)
	if u.RentalDeposit != nil {
		r.RentalDeposit = u.RentalDeposit
	}
	if u.RentalDuration != nil {
		r.RentalDuration = u.RentalDuration
	}
	setString(&r.RentalDurationUnit, u.RentalDurationUnit)

	r.UpdatedAt = time.Now()
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
