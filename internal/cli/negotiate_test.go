package cli

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/reffo/pkg/types"
)

// deliver checks that a command printed a peer message of the given type
// and saves it to a file for the other beacon.
func deliver(t *testing.T, res cmdResult, msgType string) string {
	t.Helper()
	msg := parseJSON[types.PeerMessage](t, res.Stdout)
	require.Equal(t, msgType, msg.Type)
	return writeTemp(t, "message.json", res.Stdout)
}

func beaconID(env *testEnv) string {
	return mustRunJSON[statusResult](env, "status").ID
}

func TestNegotiationBetweenBeacons(t *testing.T) {
	seller := newTestEnv(t)
	buyer := newTestEnv(t)
	sellerID := beaconID(seller)
	buyerID := beaconID(buyer)
	require.NotEqual(t, sellerID, buyerID)

	ref := mustRunJSON[types.Ref](seller, "ref", "add", "--name", "Canoe", "--status", types.ListingForSale)

	proposal := buyer.mustRun("negotiate", "propose", ref.ID, "--seller", sellerID,
		"--price", "400", "--message", "Cash today?")
	msgFile := deliver(t, proposal, types.MessageProposal)

	mine := mustRunJSON[[]types.Negotiation](buyer, "negotiate", "list")
	require.Len(t, mine, 1)
	id := mine[0].ID
	assert.Equal(t, types.RoleBuyer, mine[0].Role)
	assert.Equal(t, buyerID, mine[0].BuyerBeaconID)
	assert.Equal(t, types.NegotiationPending, mine[0].Status)
	assert.Equal(t, types.DefaultCurrency, mine[0].PriceCurrency)

	got := mustRunJSON[types.Negotiation](seller, "negotiate", "receive", msgFile)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, types.RoleSeller, got.Role)
	assert.Equal(t, buyerID, got.BuyerBeaconID)
	assert.Equal(t, sellerID, got.SellerBeaconID)
	assert.Equal(t, "Canoe", got.RefName, "ref name is filled from the local ref")
	assert.Equal(t, "Cash today?", got.Message)

	res := seller.run("negotiate", "receive", msgFile)
	require.Error(t, res.Err, "a proposal is stored once")

	counter := seller.mustRun("negotiate", "respond", id, "--counter", "450", "--message", "Firm")
	msgFile = deliver(t, counter, types.MessageProposalResponse)

	got = mustRunJSON[types.Negotiation](buyer, "negotiate", "receive", msgFile)
	assert.Equal(t, types.NegotiationCountered, got.Status)
	require.NotNil(t, got.CounterPrice)
	assert.Equal(t, 450.0, *got.CounterPrice)
	assert.Equal(t, "Firm", got.ResponseMessage)

	accept := buyer.mustRun("negotiate", "respond", id, "--accept")
	msgFile = deliver(t, accept, types.MessageProposalResponse)

	got = mustRunJSON[types.Negotiation](seller, "negotiate", "receive", msgFile)
	assert.Equal(t, types.NegotiationAccepted, got.Status)
	assert.Equal(t, 450.0, got.Price)
	assert.Nil(t, got.CounterPrice)

	sold := seller.mustRun("negotiate", "respond", id, "--sold")
	msgFile = deliver(t, sold, types.MessageProposalResponse)
	got = mustRunJSON[types.Negotiation](buyer, "negotiate", "receive", msgFile)
	assert.Equal(t, types.NegotiationSold, got.Status)
	assert.Equal(t, 450.0, got.Price)

	res = buyer.run("negotiate", "respond", id, "--withdraw")
	assert.ErrorIs(t, res.Err, types.ErrInvalidTransition)
	assert.Equal(t, exitUserError, res.ExitCode)
}

func TestNegotiationRejectsWrongParty(t *testing.T) {
	seller := newTestEnv(t)
	buyer := newTestEnv(t)
	sellerID := beaconID(seller)
	ref := mustRunJSON[types.Ref](seller, "ref", "add", "--name", "Piano", "--status", types.ListingForSale)

	proposal := buyer.mustRun("negotiate", "propose", ref.ID, "--seller", sellerID, "--price", "800")
	seller.mustRun("negotiate", "receive", deliver(t, proposal, types.MessageProposal))
	id := mustRunJSON[[]types.Negotiation](buyer, "negotiate", "list")[0].ID

	status := func(env *testEnv) string {
		t.Helper()
		list := mustRunJSON[[]types.Negotiation](env, "negotiate", "list")
		require.Len(t, list, 1)
		return list[0].Status
	}

	forged := writeTemp(t, "forged.json", fmt.Sprintf(
		`{"type":"proposal_response","beaconId":"stranger-beacon","payload":{"negotiationId":%q,"status":"withdrawn"}}`, id))
	res := seller.run("negotiate", "receive", forged)
	assert.ErrorIs(t, res.Err, types.ErrNotCounterparty)
	assert.Equal(t, exitUserError, res.ExitCode)
	assert.Equal(t, types.NegotiationPending, status(seller))

	res = buyer.run("negotiate", "respond", id, "--accept")
	assert.ErrorIs(t, res.Err, types.ErrWrongParty, "the buyer cannot accept its own proposal")

	counter := seller.mustRun("negotiate", "respond", id, "--counter", "900")
	res = seller.run("negotiate", "respond", id, "--accept")
	assert.ErrorIs(t, res.Err, types.ErrWrongParty, "the seller cannot accept its own counter")
	assert.Equal(t, exitUserError, res.ExitCode)
	assert.Equal(t, types.NegotiationCountered, status(seller))

	buyer.mustRun("negotiate", "receive", deliver(t, counter, types.MessageProposalResponse))
	recounter := buyer.mustRun("negotiate", "respond", id, "--counter", "850")
	got := mustRunJSON[types.Negotiation](seller, "negotiate", "receive", deliver(t, recounter, types.MessageProposalResponse))
	assert.Equal(t, types.RoleBuyer, got.CounteredBy)

	accept := seller.mustRun("negotiate", "respond", id, "--accept")
	got = mustRunJSON[types.Negotiation](buyer, "negotiate", "receive", deliver(t, accept, types.MessageProposalResponse))
	assert.Equal(t, types.NegotiationAccepted, got.Status)
	assert.Equal(t, 850.0, got.Price)

	res = buyer.run("negotiate", "respond", id, "--sold")
	assert.ErrorIs(t, res.Err, types.ErrWrongParty, "only the seller marks a sale")
	assert.Equal(t, types.NegotiationAccepted, status(buyer))
}

func TestNegotiateList(t *testing.T) {
	seller := newTestEnv(t)
	buyer := newTestEnv(t)
	sellerID := beaconID(seller)
	ref := mustRunJSON[types.Ref](seller, "ref", "add", "--name", "Kayak", "--status", types.ListingForSale)

	for _, price := range []string{"100", "120"} {
		msgFile := deliver(t, buyer.mustRun("negotiate", "propose", ref.ID, "--seller", sellerID, "--price", price), types.MessageProposal)
		seller.mustRun("negotiate", "receive", msgFile)
	}
	mine := mustRunJSON[[]types.Negotiation](seller, "negotiate", "list")
	require.Len(t, mine, 2)
	seller.mustRun("negotiate", "respond", mine[0].ID, "--reject")

	assert.Len(t, mustRunJSON[[]types.Negotiation](seller, "negotiate", "list", "--role", types.RoleSeller), 2)
	assert.Empty(t, mustRunJSON[[]types.Negotiation](seller, "negotiate", "list", "--role", types.RoleBuyer))
	assert.Len(t, mustRunJSON[[]types.Negotiation](seller, "negotiate", "list", "--status", types.NegotiationPending), 1)
	assert.Len(t, mustRunJSON[[]types.Negotiation](seller, "negotiate", "list",
		"--status", types.NegotiationPending, "--status", types.NegotiationRejected), 2)
	assert.Len(t, mustRunJSON[[]types.Negotiation](seller, "negotiate", "list", "--ref", ref.ID), 2)

	res := seller.run("negotiate", "list", "--role", "broker")
	require.Error(t, res.Err)
}

func TestNegotiateErrors(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		args []string
	}{
		{"propose without seller", []string{"negotiate", "propose", "ref-1", "--price", "10"}},
		{"propose without price", []string{"negotiate", "propose", "ref-1", "--seller", "s"}},
		{"propose negative price", []string{"negotiate", "propose", "ref-1", "--seller", "s", "--price", "-5"}},
		{"respond without action", []string{"negotiate", "respond", "n-1"}},
		{"respond with two actions", []string{"negotiate", "respond", "n-1", "--accept", "--reject"}},
		{"respond to unknown", []string{"negotiate", "respond", "n-1", "--accept"}},
		{"propose infinite price", []string{"negotiate", "propose", "ref-1", "--seller", "s", "--price", "Inf"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := env.run(tt.args...)
			require.Error(t, res.Err)
			assert.Equal(t, exitUserError, res.ExitCode)
		})
	}

	query := writeTemp(t, "query.json", `{"type":"query","beaconId":"peer","payload":{}}`)
	res := env.run("negotiate", "receive", query)
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "cannot receive")

	proposal := writeTemp(t, "proposal.json", `{"type":"proposal","beaconId":"peer","payload":{"negotiationId":"n-9","refId":"missing","price":5}}`)
	res = env.run("negotiate", "receive", proposal)
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), `ref "missing" not found`)

	res = env.runWithInput(`{"type":"gossip","beaconId":"peer","payload":{}}`, "negotiate", "receive", "-")
	assert.ErrorIs(t, res.Err, types.ErrUnknownMessageType)
}
