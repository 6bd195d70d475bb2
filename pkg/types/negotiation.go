package types

import "time"

// Negotiation statuses. A negotiation opens as pending, may bounce between
// parties as countered, and closes as accepted, rejected, withdrawn, or sold.
const (
	NegotiationPending   = "pending"
	NegotiationAccepted  = "accepted"
	NegotiationRejected  = "rejected"
	NegotiationCountered = "countered"
	NegotiationWithdrawn = "withdrawn"
	NegotiationSold      = "sold"
)

var validNegotiationStatuses = map[string]bool{
	NegotiationPending:   true,
	NegotiationAccepted:  true,
	NegotiationRejected:  true,
	NegotiationCountered: true,
	NegotiationWithdrawn: true,
	NegotiationSold:      true,
}

// Negotiation roles, from the local beacon's point of view.
const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
)

// IsValidNegotiationStatus reports whether s is a recognized status.
func IsValidNegotiationStatus(s string) bool { return validNegotiationStatuses[s] }

// IsValidRole reports whether s is a recognized negotiation role.
func IsValidRole(s string) bool { return s == RoleBuyer || s == RoleSeller }

// Negotiation is one buyer/seller exchange over a ref. Both beacons keep a
// copy under the same ID; Role says which side this copy belongs to.
type Negotiation struct {
	ID              string    `json:"id"`
	RefID           string    `json:"refId"`
	RefName         string    `json:"refName"`
	BuyerBeaconID   string    `json:"buyerBeaconId"`
	SellerBeaconID  string    `json:"sellerBeaconId"`
	Price           float64   `json:"price"`
	PriceCurrency   string    `json:"priceCurrency"`
	Message         string    `json:"message"`
	Status          string    `json:"status"`
	Role            string    `json:"role"`
	CounterPrice    *float64  `json:"counterPrice,omitempty"`
	CounteredBy     string    `json:"counteredBy,omitempty"` // Role that made CounterPrice.
	ResponseMessage string    `json:"responseMessage,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// IsOpen reports whether the negotiation still awaits a response.
func (n *Negotiation) IsOpen() bool {
	return n.Status == NegotiationPending || n.Status == NegotiationCountered
}

// Responder returns the role whose move it is on an open negotiation. The
// seller answers the buyer's proposal; a counter is answered by the side
// that did not make it.
func (n *Negotiation) Responder() string {
	if n.Status == NegotiationCountered && n.CounteredBy != RoleBuyer {
		return RoleBuyer
	}
	return RoleSeller
}

// Counterparty returns the role and beacon ID of the other side, as seen
// from this copy.
func (n *Negotiation) Counterparty() (role, beaconID string) {
	if n.Role == RoleSeller {
		return RoleBuyer, n.BuyerBeaconID
	}
	return RoleSeller, n.SellerBeaconID
}

// Accept closes an open negotiation as accepted on behalf of by. Accepting
// a counter makes the counter price the agreed Price.
// Returns ErrInvalidTransition if the negotiation is not open and
// ErrWrongParty if it is not by's move.
func (n *Negotiation) Accept(by, message string) error {
	agreed := n.Price
	if n.Status == NegotiationCountered && n.CounterPrice != nil {
		agreed = *n.CounterPrice
	}
	if err := n.respond(by, NegotiationAccepted, nil, message); err != nil {
		return err
	}
	n.Price = agreed
	return nil
}

// Reject closes an open negotiation as rejected on behalf of by.
func (n *Negotiation) Reject(by, message string) error {
	return n.respond(by, NegotiationRejected, nil, message)
}

// Counter answers an open negotiation with a different price.
// Returns ErrInvalidPrice for a negative or non-finite price.
func (n *Negotiation) Counter(by string, price float64, message string) error {
	if !isAmount(price) {
		return ErrInvalidPrice
	}
	return n.respond(by, NegotiationCountered, &price, message)
}

// Withdraw abandons the negotiation. Either side may withdraw while it is
// open or accepted.
func (n *Negotiation) Withdraw() error {
	if !n.IsOpen() && n.Status != NegotiationAccepted {
		return ErrInvalidTransition
	}
	n.Status = NegotiationWithdrawn
	n.UpdatedAt = time.Now()
	return nil
}

// MarkSold completes an accepted negotiation. Only the seller may mark a
// negotiation sold, and sold is terminal.
func (n *Negotiation) MarkSold(by string) error {
	if n.Status != NegotiationAccepted {
		return ErrInvalidTransition
	}
	if by != RoleSeller {
		return ErrWrongParty
	}
	n.Status = NegotiationSold
	n.UpdatedAt = time.Now()
	return nil
}

func (n *Negotiation) respond(by, status string, counter *float64, message string) error {
	if !IsValidRole(by) {
		return ErrInvalidRole
	}
	if !n.IsOpen() {
		return ErrInvalidTransition
	}
	if by != n.Responder() {
		return ErrWrongParty
	}
	n.Status = status
	n.CounterPrice = counter
	n.CounteredBy = ""
	if counter != nil {
		n.CounteredBy = by
	}
	n.ResponseMessage = message
	n.UpdatedAt = time.Now()
	return nil
}

// ApplyResponse records a response sent by beacon from. The sender must be
// the counterparty named in this copy, and the move is checked as theirs.
func (n *Negotiation) ApplyResponse(from string, p ProposalResponsePayload) error {
	by, counterparty := n.Counterparty()
	if from == "" || from != counterparty {
		return ErrNotCounterparty
	}
	switch p.Status {
	case NegotiationAccepted:
		return n.Accept(by, p.ResponseMessage)
	case NegotiationRejected:
		return n.Reject(by, p.ResponseMessage)
	case NegotiationCountered:
		if p.CounterPrice == nil {
			return ErrInvalidPrice
		}
		return n.Counter(by, *p.CounterPrice, p.ResponseMessage)
	case NegotiationWithdrawn:
		return n.Withdraw()
	case NegotiationSold:
		return n.MarkSold(by)
	default:
		return ErrInvalidStatus
	}
}

// Proposal returns the payload that opens this negotiation on the seller.
func (n *Negotiation) Proposal() ProposalPayload {
	return ProposalPayload{
		NegotiationID: n.ID,
		RefID:         n.RefID,
		RefName:       n.RefName,
		Price:         n.Price,
		PriceCurrency: n.PriceCurrency,
		Message:       n.Message,
	}
}

// Response returns the payload that reports the current status to the
// other party.
func (n *Negotiation) Response() ProposalResponsePayload {
	return ProposalResponsePayload{
		NegotiationID:   n.ID,
		Status:          n.Status,
		CounterPrice:    n.CounterPrice,
		ResponseMessage: n.ResponseMessage,
	}
}

// NegotiationCreate holds the fields for a new negotiation. The ID is
// supplied by the buyer so both sides share it; empty means generate.
type NegotiationCreate struct {
	ID             string  `json:"id"`
	RefID          string  `json:"refId"`
	RefName        string  `json:"refName"`
	BuyerBeaconID  string  `json:"buyerBeaconId"`
	SellerBeaconID string  `json:"sellerBeaconId"`
	Price          float64 `json:"price"`
	PriceCurrency  string  `json:"priceCurrency"`
	Message        string  `json:"message"`
	Role           string  `json:"role"`
	Status         string  `json:"status,omitempty"` // Defaults to pending.
}

// Negotiation builds an unsaved Negotiation with create defaults applied.
func (c NegotiationCreate) Negotiation() *Negotiation {
	n := &Negotiation{
		ID:             c.ID,
		RefID:          c.RefID,
		RefName:        c.RefName,
		BuyerBeaconID:  c.BuyerBeaconID,
		SellerBeaconID: c.SellerBeaconID,
		Price:          c.Price,
		PriceCurrency:  c.PriceCurrency,
		Message:        c.Message,
		Role:           c.Role,
		Status:         c.Status,
	}
	if n.Status == "" {
		n.Status = NegotiationPending
	}
	return n
}

// NegotiationFromProposal builds the seller-side create record for a
// proposal received from buyer.
func NegotiationFromProposal(p ProposalPayload, buyer, seller string) NegotiationCreate {
	return NegotiationCreate{
		ID:             p.NegotiationID,
		RefID:          p.RefID,
		RefName:        p.RefName,
		BuyerBeaconID:  buyer,
		SellerBeaconID: seller,
		Price:          p.Price,
		PriceCurrency:  p.PriceCurrency,
		Message:        p.Message,
		Role:           RoleSeller,
	}
}
