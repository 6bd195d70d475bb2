package types

import "time"

// Offer statuses.
const (
	OfferActive    = "active"
	OfferSold      = "sold"
	OfferWithdrawn = "withdrawn"
)

var validOfferStatuses = map[string]bool{
	OfferActive:    true,
	OfferSold:      true,
	OfferWithdrawn: true,
}

// IsValidOfferStatus reports whether s is a recognized offer status.
func IsValidOfferStatus(s string) bool { return validOfferStatuses[s] }

// Offer holds the sale terms attached to a ref.
type Offer struct {
	ID            string    `json:"id"`
	RefID         string    `json:"refId"`
	Price         float64   `json:"price"`
	PriceCurrency string    `json:"priceCurrency"` // ISO 4217.
	Status        string    `json:"status"`
	SellerID      string    `json:"sellerId"` // Beacon ID of the seller.
	Location      string    `json:"location,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Withdraw takes an active offer off the market.
// Returns ErrInvalidTransition unless the offer is active.
func (o *Offer) Withdraw() error {
	if o.Status != OfferActive {
		return ErrInvalidTransition
	}
	o.Status = OfferWithdrawn
	o.UpdatedAt = time.Now()
	return nil
}

// MarkSold closes an active offer as sold. Sold is terminal.
// Returns ErrInvalidTransition unless the offer is active.
func (o *Offer) MarkSold() error {
	if o.Status != OfferActive {
		return ErrInvalidTransition
	}
	o.Status = OfferSold
	o.UpdatedAt = time.Now()
	return nil
}

// OfferCreate holds the caller-supplied fields for a new offer.
type OfferCreate struct {
	RefID         string  `json:"refId"`
	Price         float64 `json:"price"`
	PriceCurrency string  `json:"priceCurrency,omitempty"` // Defaults to the store currency.
	Status        string  `json:"status,omitempty"`        // Defaults to active.
	Location      string  `json:"location,omitempty"`
}

// Offer builds an unsaved Offer with create defaults applied. The store
// fills SellerID and an empty currency.
func (c OfferCreate) Offer() *Offer {
	o := &Offer{
		RefID:         c.RefID,
		Price:         c.Price,
		PriceCurrency: c.PriceCurrency,
		Status:        c.Status,
		Location:      c.Location,
	}
	if o.Status == "" {
		o.Status = OfferActive
	}
	return o
}

// OfferUpdate is a partial update; the ref an offer belongs to never changes.
type OfferUpdate struct {
	Price         *float64 `json:"price,omitempty"`
	PriceCurrency *string  `json:"priceCurrency,omitempty"`
	Status        *string  `json:"status,omitempty"`
	Location      *string  `json:"location,omitempty"`
}

// Apply copies the set fields of u onto o and bumps UpdatedAt.
func (u OfferUpdate) Apply(o *Offer) {
	if u.Price != nil {
		o.Price = *u.Price
	}
	setString(&o.PriceCurrency, u.PriceCurrency)
	setString(&o.Status, u.Status)
	setString(&o.Location, u.Location)
	o.UpdatedAt = time.Now()
}
