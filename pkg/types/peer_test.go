package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeerMessageRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		msgType string
		payload any
	}{
		{"query", MessageQuery, QueryPayload{Category: "Vehicles", MaxPrice: ptr(5000.0)}},
		{"announce", MessageAnnounce, AnnouncePayload{Refs: []AnnouncedRef{{ID: "r1", Name: "Car"}}, Offers: []AnnouncedOffer{}}},
		{"response", MessageResponse, AnnouncePayload{Refs: []AnnouncedRef{}, Offers: []AnnouncedOffer{}}},
		{"proposal", MessageProposal, ProposalPayload{NegotiationID: "n1", RefID: "r1", Price: 10, PriceCurrency: "USD"}},
		{"proposal response", MessageProposalResponse, ProposalResponsePayload{NegotiationID: "n1", Status: NegotiationCountered, CounterPrice: ptr(9.0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := NewPeerMessage(tt.msgType, "beacon-1", tt.payload)
			require.NoError(t, err)

			data, err := json.Marshal(msg)
			require.NoError(t, err)

			parsed, err := ParsePeerMessage(data)
			require.NoError(t, err)
			assert.Equal(t, tt.msgType, parsed.Type)
			assert.Equal(t, "beacon-1", parsed.BeaconID)

			got, err := parsed.DecodePayload()
			require.NoError(t, err)
			assert.Equal(t, tt.payload, got)
		})
	}
}

func TestPeerMessageWireShape(t *testing.T) {
	msg, err := NewPeerMessage(MessageProposal, "b1", ProposalPayload{NegotiationID: "n1"})
	require.NoError(t, err)

	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "proposal", raw["type"])
	assert.Equal(t, "b1", raw["beaconId"])
	assert.Equal(t, "n1", raw["payload"].(map[string]any)["negotiationId"])
}

func TestPeerMessageErrors(t *testing.T) {
	_, err := NewPeerMessage("gossip", "b1", nil)
	assert.ErrorIs(t, err, ErrUnknownMessageType)

	_, err = NewPeerMessage(MessageQuery, "", QueryPayload{})
	assert.ErrorIs(t, err, ErrInvalidMessage)

	_, err = ParsePeerMessage([]byte(`{"type":`))
	assert.ErrorIs(t, err, ErrInvalidMessage)

	_, err = ParsePeerMessage([]byte(`{"type":"gossip","beaconId":"b1","payload":{}}`))
	assert.ErrorIs(t, err, ErrUnknownMessageType)

	_, err = ParsePeerMessage([]byte(`{"type":"query","payload":{}}`))
	assert.ErrorIs(t, err, ErrInvalidMessage)

	msg, err := ParsePeerMessage([]byte(`{"type":"proposal","beaconId":"b1"}`))
	require.NoError(t, err)
	_, err = msg.DecodePayload()
	assert.ErrorIs(t, err, ErrInvalidMessage)

	msg, err = ParsePeerMessage([]byte(`{"type":"proposal","beaconId":"b1","payload":[1,2]}`))
	require.NoError(t, err)
	_, err = msg.DecodePayload()
	assert.ErrorIs(t, err, ErrInvalidMessage)
}

func TestQueryMatches(t *testing.T) {
	sf := AnnouncedRef{
		ID: "r1", Name: "Blue Sofa", Category: "Home & Garden", Subcategory: "Furniture",
		Lat: ptr(37.77), Lng: ptr(-122.42),
	}
	ranged := AnnouncedRef{
		ID: "r2", Name: "Canoe", Category: "Vehicles", Subcategory: "Boats",
		Lat: ptr(37.77), Lng: ptr(-122.42), SellingScope: ScopeRange, SellingRadiusMiles: ptr(5.0),
	}
	unlocated := AnnouncedRef{ID: "r3", Name: "Print", Category: "Collectibles"}
	offers := []AnnouncedOffer{
		{ID: "o1", RefID: "r1", Price: 300, PriceCurrency: "USD", Status: OfferActive},
		{ID: "o2", RefID: "r1", Price: 100, PriceCurrency: "USD", Status: OfferWithdrawn},
		{ID: "o3", RefID: "r2", Price: 800, PriceCurrency: "EUR", Status: OfferActive},
	}
	oakland := QueryPayload{Lat: ptr(37.80), Lng: ptr(-122.27)}

	tests := []struct {
		name  string
		query QueryPayload
		ref   AnnouncedRef
		want  bool
	}{
		{"empty query matches", QueryPayload{}, sf, true},
		{"category mismatch", QueryPayload{Category: "Vehicles"}, sf, false},
		{"subcategory match", QueryPayload{Category: "Home & Garden", Subcategory: "Furniture"}, sf, true},
		{"search is case insensitive", QueryPayload{Search: "sOFa"}, sf, true},
		{"search miss", QueryPayload{Search: "chair"}, sf, false},
		{"max price uses active offers", QueryPayload{MaxPrice: ptr(200.0)}, sf, false},
		{"max price satisfied", QueryPayload{MaxPrice: ptr(300.0)}, sf, true},
		{"max price with currency", QueryPayload{MaxPrice: ptr(1000.0), Currency: "USD"}, ranged, false},
		{"max price without offers", QueryPayload{MaxPrice: ptr(1e9)}, unlocated, false},
		{"radius includes", QueryPayload{Lat: oakland.Lat, Lng: oakland.Lng, RadiusMiles: ptr(20.0)}, sf, true},
		{"radius excludes", QueryPayload{Lat: oakland.Lat, Lng: oakland.Lng, RadiusMiles: ptr(2.0)}, sf, false},
		{"selling radius excludes distant querier", QueryPayload{Lat: ptr(38.58), Lng: ptr(-121.49)}, ranged, false},
		{"selling radius includes nearby querier", QueryPayload{Lat: ptr(37.78), Lng: ptr(-122.41)}, ranged, true},
		{"selling radius excludes querier across the bay", oakland, ranged, false},
		{"unlocated ref with radius", QueryPayload{Lat: oakland.Lat, Lng: oakland.Lng, RadiusMiles: ptr(50.0)}, unlocated, false},
		{"unlocated ref without radius", oakland, unlocated, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.query.Matches(tt.ref, offers))
		})
	}
}

func TestAnnouncePayloadFilter(t *testing.T) {
	p := AnnouncePayload{
		Refs: []AnnouncedRef{
			{ID: "r1", Name: "Sofa", Category: "Home & Garden"},
			{ID: "r2", Name: "Car", Category: "Vehicles"},
		},
		Offers: []AnnouncedOffer{
			{ID: "o1", RefID: "r1", Status: OfferActive},
			{ID: "o2", RefID: "r2", Status: OfferActive},
		},
	}

	got := p.Filter(QueryPayload{Category: "Vehicles"})
	require.Len(t, got.Refs, 1)
	assert.Equal(t, "r2", got.Refs[0].ID)
	require.Len(t, got.Offers, 1)
	assert.Equal(t, "o2", got.Offers[0].ID)

	none := p.Filter(QueryPayload{Category: "Toys"})
	assert.NotNil(t, none.Refs)
	assert.NotNil(t, none.Offers)
	assert.Empty(t, none.Refs)
}
