package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/reffo/pkg/types"
)

func newRefAnnounceCmd(a *app) *cobra.Command {
	var queryFile string
	cmd := &cobra.Command{
		Use:   "announce [id...]",
		Short: "Print the peer announce message for listed refs",
		Long: `announce builds the message this beacon publishes to peers: the public
projection of its listed refs (blurred coordinates, no street address) and
their active offers. With ids only those refs are included; each must be
listed.

With --query the command answers a peer's query message instead, read from
a file or "-" for stdin, and prints the response message.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var query *types.QueryPayload
			if queryFile != "" {
				q, err := readQuery(cmd, queryFile)
				if err != nil {
					return err
				}
				query = &q
			}
			return a.withStore(func(st types.BeaconStore) error {
				payload, err := buildAnnounce(st, args)
				if err != nil {
					return err
				}
				msgType := types.MessageAnnounce
				if query != nil {
					payload = payload.Filter(*query)
					msgType = types.MessageResponse
				}
				msg, err := types.NewPeerMessage(msgType, st.BeaconID(), payload)
				if err != nil {
					return sysError(err)
				}
				return writeJSON(a.out(cmd), msg)
			})
		},
	}
	cmd.Flags().StringVar(&queryFile, "query", "", `peer query message to answer ("-" for stdin)`)
	return cmd
}

// buildAnnounce collects the listed refs, or the given ones, and their
// active offers.
func buildAnnounce(st types.BeaconStore, ids []string) (types.AnnouncePayload, error) {
	payload := types.AnnouncePayload{Refs: []types.AnnouncedRef{}, Offers: []types.AnnouncedOffer{}}

	var refs []*types.Ref
	if len(ids) == 0 {
		all, err := fetchAs[*types.Ref](st, types.TableRefs, types.Filter{
			"listing_status": []string{types.ListingForSale, types.ListingWillingToSell, types.ListingForRent},
		})
		if err != nil {
			return payload, err
		}
		refs = all
	} else {
		for _, id := range ids {
			r, err := getRef(st, id)
			if err != nil {
				return payload, err
			}
			if !r.IsListed() {
				return payload, fmt.Errorf("ref %q is %s, not listed", id, r.ListingStatus)
			}
			refs = append(refs, r)
		}
	}

	for _, r := range refs {
		payload.Refs = append(payload.Refs, r.Announce())
		offers, err := refOffers(st, r.ID, types.OfferActive)
		if err != nil {
			return payload, err
		}
		for _, o := range offers {
			payload.Offers = append(payload.Offers, o.Announce())
		}
	}
	return payload, nil
}

// readQuery reads a query peer message from path, or stdin for "-".
func readQuery(cmd *cobra.Command, path string) (types.QueryPayload, error) {
	msg, err := readPeerMessage(cmd, path)
	if err != nil {
		return types.QueryPayload{}, err
	}
	if msg.Type != types.MessageQuery {
		return types.QueryPayload{}, fmt.Errorf("expected a %s message, got %s", types.MessageQuery, msg.Type)
	}
	p, err := msg.DecodePayload()
	if err != nil {
		return types.QueryPayload{}, err
	}
	return p.(types.QueryPayload), nil
}

func readPeerMessage(cmd *cobra.Command, path string) (*types.PeerMessage, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read peer message: %w", err)
	}
	return types.ParsePeerMessage(data)
}
