package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Peer message types. Every message carries its type, the sending beacon,
// and a payload whose shape is fixed by the type.
const (
	MessageQuery            = "query"
	MessageResponse         = "response"
	MessageAnnounce         = "announce"
	MessageProposal         = "proposal"
	MessageProposalResponse = "proposal_response"
)

// Peer message errors.
var (
	ErrUnknownMessageType = errors.New("unknown peer message type")
	ErrInvalidMessage     = errors.New("invalid peer message")
)

// PeerMessage is the envelope exchanged between beacons.
type PeerMessage struct {
	Type     string          `json:"type"`
	BeaconID string          `json:"beaconId"`
	Payload  json.RawMessage `json:"payload"`
}

// NewPeerMessage encodes payload into a message of the given type.
func NewPeerMessage(msgType, beaconID string, payload any) (*PeerMessage, error) {
	if !isMessageType(msgType) {
		return nil, ErrUnknownMessageType
	}
	if beaconID == "" {
		return nil, fmt.Errorf("%w: empty beacon ID", ErrInvalidMessage)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding %s payload: %w", msgType, err)
	}
	return &PeerMessage{Type: msgType, BeaconID: beaconID, Payload: raw}, nil
}

// ParsePeerMessage decodes and checks a message envelope. The payload is
// left raw; call DecodePayload for the typed value.
func ParsePeerMessage(data []byte) (*PeerMessage, error) {
	var m PeerMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if !isMessageType(m.Type) {
		return nil, ErrUnknownMessageType
	}
	if m.BeaconID == "" {
		return nil, fmt.Errorf("%w: empty beacon ID", ErrInvalidMessage)
	}
	return &m, nil
}

// DecodePayload returns the typed payload: QueryPayload for query,
// AnnouncePayload for announce and response, ProposalPayload for proposal,
// and ProposalResponsePayload for proposal_response.
func (m *PeerMessage) DecodePayload() (any, error) {
	var (
		v   any
		err error
	)
	switch m.Type {
	case MessageQuery:
		var p QueryPayload
		err = m.decode(&p)
		v = p
	case MessageAnnounce, MessageResponse:
		var p AnnouncePayload
		err = m.decode(&p)
		v = p
	case MessageProposal:
		var p ProposalPayload
		err = m.decode(&p)
		v = p
	case MessageProposalResponse:
		var p ProposalResponsePayload
		err = m.decode(&p)
		v = p
	default:
		return nil, ErrUnknownMessageType
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (m *PeerMessage) decode(dst any) error {
	if len(m.Payload) == 0 {
		return fmt.Errorf("%w: empty %s payload", ErrInvalidMessage, m.Type)
	}
	if err := json.Unmarshal(m.Payload, dst); err != nil {
		return fmt.Errorf("%w: decoding %s payload: %v", ErrInvalidMessage, m.Type, err)
	}
	return nil
}

func isMessageType(t string) bool {
	switch t {
	case MessageQuery, MessageResponse, MessageAnnounce, MessageProposal, MessageProposalResponse:
		return true
	}
	return false
}

// ProposalPayload opens a negotiation on the seller's beacon.
type ProposalPayload struct {
	NegotiationID string  `json:"negotiationId"`
	RefID         string  `json:"refId"`
	RefName       string  `json:"refName"`
	Price         float64 `json:"price"`
	PriceCurrency string  `json:"priceCurrency"`
	Message       string  `json:"message"`
}

// ProposalResponsePayload reports a negotiation's new status to the other
// party.
type ProposalResponsePayload struct {
	NegotiationID   string   `json:"negotiationId"`
	Status          string   `json:"status"`
	CounterPrice    *float64 `json:"counterPrice,omitempty"`
	ResponseMessage string   `json:"responseMessage,omitempty"`
}

// QueryPayload asks peers for listed refs. Empty fields do not filter.
type QueryPayload struct {
	Category    string   `json:"category,omitempty"`
	Subcategory string   `json:"subcategory,omitempty"`
	Search      string   `json:"search,omitempty"`
	MaxPrice    *float64 `json:"maxPrice,omitempty"`
	Currency    string   `json:"currency,omitempty"`
	Lat         *float64 `json:"lat,omitempty"`
	Lng         *float64 `json:"lng,omitempty"`
	RadiusMiles *float64 `json:"radiusMiles,omitempty"`
}

// AnnouncedRef is the public projection of a Ref.
type AnnouncedRef struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Category           string   `json:"category"`
	Subcategory        string   `json:"subcategory"`
	ListingStatus      string   `json:"listingStatus"`
	Lat                *float64 `json:"locationLat,omitempty"`
	Lng                *float64 `json:"locationLng,omitempty"`
	City               string   `json:"locationCity,omitempty"`
	State              string   `json:"locationState,omitempty"`
	Zip                string   `json:"locationZip,omitempty"`
	Country            string   `json:"locationCountry,omitempty"`
	SellingScope       string   `json:"sellingScope,omitempty"`
	SellingRadiusMiles *float64 `json:"sellingRadiusMiles,omitempty"`
}

// AnnouncedOffer is the public projection of an Offer.
type AnnouncedOffer struct {
	ID            string  `json:"id"`
	RefID         string  `json:"refId"`
	Price         float64 `json:"price"`
	PriceCurrency string  `json:"priceCurrency"`
	Status        string  `json:"status"`
}

// Announce returns the public projection of the offer sent to peers.
func (o *Offer) Announce() AnnouncedOffer {
	return AnnouncedOffer{
		ID:            o.ID,
		RefID:         o.RefID,
		Price:         o.Price,
		PriceCurrency: o.PriceCurrency,
		Status:        o.Status,
	}
}

// AnnouncePayload publishes a beacon's listed refs and their offers. It is
// also the payload of a query response.
type AnnouncePayload struct {
	Refs   []AnnouncedRef   `json:"refs"`
	Offers []AnnouncedOffer `json:"offers"`
}

// Filter returns the refs matching q and the offers belonging to them.
func (p AnnouncePayload) Filter(q QueryPayload) AnnouncePayload {
	out := AnnouncePayload{Refs: []AnnouncedRef{}, Offers: []AnnouncedOffer{}}
	for _, r := range p.Refs {
		if !q.Matches(r, p.Offers) {
			continue
		}
		out.Refs = append(out.Refs, r)
		for _, o := range p.Offers {
			if o.RefID == r.ID {
				out.Offers = append(out.Offers, o)
			}
		}
	}
	return out
}

// Matches reports whether ref satisfies the query. Price filters consider
// only the ref's active offers; a ref without one never matches a price
// filter. A range-scoped ref matches a located query only when the querier
// is within the ref's selling radius.
func (q QueryPayload) Matches(ref AnnouncedRef, offers []AnnouncedOffer) bool {
	if q.Category != "" && q.Category != ref.Category {
		return false
	}
	if q.Subcategory != "" && q.Subcategory != ref.Subcategory {
		return false
	}
	if q.Search != "" && !strings.Contains(strings.ToLower(ref.Name), strings.ToLower(q.Search)) {
		return false
	}
	if q.MaxPrice != nil && !q.priceMatches(ref.ID, offers) {
		return false
	}
	if q.Lat != nil && q.Lng != nil {
		if !q.distanceMatches(ref) {
			return false
		}
	}
	return true
}

func (q QueryPayload) priceMatches(refID string, offers []AnnouncedOffer) bool {
	for _, o := range offers {
		if o.RefID != refID || o.Status != OfferActive {
			continue
		}
		if q.Currency != "" && o.PriceCurrency != q.Currency {
			continue
		}
		if o.Price <= *q.MaxPrice {
			return true
		}
	}
	return false
}

func (q QueryPayload) distanceMatches(ref AnnouncedRef) bool {
	if ref.Lat == nil || ref.Lng == nil {
		// Unlocated refs only match queries without a radius.
		return q.RadiusMiles == nil
	}
	d := HaversineDistanceMiles(*q.Lat, *q.Lng, *ref.Lat, *ref.Lng)
	if q.RadiusMiles != nil && d > *q.RadiusMiles {
		return false
	}
	if ref.SellingScope == ScopeRange && ref.SellingRadiusMiles != nil && d > *ref.SellingRadiusMiles {
		return false
	}
	return true
}
