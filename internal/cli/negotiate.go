package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/reffo/internal/logger"
	"github.com/mesh-intelligence/reffo/pkg/types"
)

func newNegotiateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "negotiate",
		Short: "Propose, answer, and track negotiations",
		Long: `Negotiations are stored on both beacons under the same ID. The propose and
respond commands print the peer message to deliver to the other party;
receive applies a message that arrived from it.`,
	}
	cmd.AddCommand(
		newNegotiateProposeCmd(a),
		newNegotiateRespondCmd(a),
		newNegotiateReceiveCmd(a),
		newNegotiateListCmd(a),
	)
	return cmd
}

func newNegotiateProposeCmd(a *app) *cobra.Command {
	var c types.NegotiationCreate
	cmd := &cobra.Command{
		Use:   "propose <ref-id>",
		Short: "Open a negotiation on another beacon's ref",
		Long: `Propose records a buyer-side negotiation and prints the proposal message
for the seller's beacon.

Example:
  reffo negotiate propose 0190f2a0-... --seller 0190e111-... --price 17000 \
    --ref-name "2019 Honda Civic" --message "Cash today?"`,
		Args:    cobra.ExactArgs(1),
		PreRunE: finiteFlags("price"),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.RefID = args[0]
			c.Role = types.RoleBuyer
			return a.withStore(func(st types.BeaconStore) error {
				c.BuyerBeaconID = st.BeaconID()
				n := c.Negotiation()
				negotiations, err := getTable(st, types.TableNegotiations)
				if err != nil {
					return err
				}
				if _, err := negotiations.Set("", n); err != nil {
					return fmt.Errorf("create negotiation: %w", err)
				}
				logger.L().Info("negotiation.proposed", "id", n.ID, "ref_id", n.RefID, "price", n.Price)
				return writeMessage(a, cmd, types.MessageProposal, st.BeaconID(), n.Proposal())
			})
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&c.SellerBeaconID, "seller", "", "seller beacon ID (required)")
	fl.Float64Var(&c.Price, "price", 0, "proposed price (required)")
	fl.StringVar(&c.PriceCurrency, "currency", "", "ISO 4217 currency code (default: configured currency)")
	fl.StringVar(&c.RefName, "ref-name", "", "name of the ref, for display")
	fl.StringVar(&c.Message, "message", "", "message to the seller")
	_ = cmd.MarkFlagRequired("seller")
	_ = cmd.MarkFlagRequired("price")
	return cmd
}

func newNegotiateRespondCmd(a *app) *cobra.Command {
	var (
		accept, reject, withdraw, sold bool
		counter                        float64
		message                        string
	)
	cmd := &cobra.Command{
		Use:   "respond <negotiation-id>",
		Short: "Accept, reject, counter, withdraw, or complete a negotiation",
		Long: `Respond changes the negotiation's status and prints the proposal_response
message for the other party. Give exactly one of --accept, --reject,
--counter, --withdraw, or --sold.

Example:
  reffo negotiate respond 0190f2a0-... --counter 17500 --message "Meet halfway?"`,
		Args:    cobra.ExactArgs(1),
		PreRunE: finiteFlags("counter"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(st types.BeaconStore) error {
				n, negotiations, err := getNegotiation(st, args[0])
				if err != nil {
					return err
				}
				switch {
				case accept:
					err = n.Accept(n.Role, message)
				case reject:
					err = n.Reject(n.Role, message)
				case cmd.Flags().Changed("counter"):
					err = n.Counter(n.Role, counter, message)
				case withdraw:
					err = n.Withdraw()
				case sold:
					err = n.MarkSold(n.Role)
				}
				if err != nil {
					return fmt.Errorf("negotiation %s is %s: %w", n.ID, n.Status, err)
				}
				if _, err := negotiations.Set(n.ID, n); err != nil {
					return fmt.Errorf("save negotiation: %w", err)
				}
				logger.L().Info("negotiation.responded", "id", n.ID, "status", n.Status)
				return writeMessage(a, cmd, types.MessageProposalResponse, st.BeaconID(), n.Response())
			})
		},
	}
	fl := cmd.Flags()
	fl.BoolVar(&accept, "accept", false, "accept the current price")
	fl.BoolVar(&reject, "reject", false, "reject the proposal")
	fl.Float64Var(&counter, "counter", 0, "counter with a different price")
	fl.BoolVar(&withdraw, "withdraw", false, "withdraw from the negotiation")
	fl.BoolVar(&sold, "sold", false, "complete an accepted negotiation")
	fl.StringVar(&message, "message", "", "message to the other party")
	cmd.MarkFlagsMutuallyExclusive("accept", "reject", "counter", "withdraw", "sold")
	cmd.MarkFlagsOneRequired("accept", "reject", "counter", "withdraw", "sold")
	return cmd
}

func newNegotiateReceiveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "receive <message-file|->",
		Short: "Apply a proposal or proposal_response message from a peer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := readPeerMessage(cmd, args[0])
			if err != nil {
				return err
			}
			payload, err := msg.DecodePayload()
			if err != nil {
				return err
			}
			return a.withStore(func(st types.BeaconStore) error {
				var n *types.Negotiation
				switch p := payload.(type) {
				case types.ProposalPayload:
					n, err = receiveProposal(st, msg.BeaconID, p)
				case types.ProposalResponsePayload:
					n, err = receiveResponse(st, msg.BeaconID, p)
				default:
					return fmt.Errorf("cannot receive a %s message", msg.Type)
				}
				if err != nil {
					return err
				}
				logger.L().Info("negotiation.received", "id", n.ID, "from", msg.BeaconID, "type", msg.Type, "status", n.Status)
				return a.render(cmd, n, func(w io.Writer) { printNegotiation(w, n) })
			})
		},
	}
}

// receiveProposal stores the seller side of a proposal for one of this
// beacon's refs.
func receiveProposal(st types.BeaconStore, buyer string, p types.ProposalPayload) (*types.Negotiation, error) {
	ref, err := getRef(st, p.RefID)
	if err != nil {
		return nil, err
	}
	negotiations, err := getTable(st, types.TableNegotiations)
	if err != nil {
		return nil, err
	}
	if _, err := negotiations.Get(p.NegotiationID); err == nil {
		return nil, fmt.Errorf("negotiation %q already exists", p.NegotiationID)
	} else if !errors.Is(err, types.ErrNotFound) && !errors.Is(err, types.ErrInvalidID) {
		return nil, sysError(err)
	}

	c := types.NegotiationFromProposal(p, buyer, st.BeaconID())
	if c.RefName == "" {
		c.RefName = ref.Name
	}
	n := c.Negotiation()
	if _, err := negotiations.Set(c.ID, n); err != nil {
		return nil, fmt.Errorf("store proposal: %w", err)
	}
	return n, nil
}

func receiveResponse(st types.BeaconStore, from string, p types.ProposalResponsePayload) (*types.Negotiation, error) {
	n, negotiations, err := getNegotiation(st, p.NegotiationID)
	if err != nil {
		return nil, err
	}
	if err := n.ApplyResponse(from, p); err != nil {
		if errors.Is(err, types.ErrNotCounterparty) {
			return nil, fmt.Errorf("negotiation %s: message from %s: %w", n.ID, from, err)
		}
		return nil, fmt.Errorf("negotiation %s is %s: %w", n.ID, n.Status, err)
	}
	if _, err := negotiations.Set(n.ID, n); err != nil {
		return nil, fmt.Errorf("save negotiation: %w", err)
	}
	return n, nil
}

func newNegotiateListCmd(a *app) *cobra.Command {
	var refID, role string
	var statuses []string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List negotiations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if role != "" && !types.IsValidRole(role) {
				return fmt.Errorf("invalid role %q: must be buyer or seller", role)
			}
			for _, s := range statuses {
				if !types.IsValidNegotiationStatus(s) {
					return fmt.Errorf("invalid negotiation status %q", s)
				}
			}
			filter := types.Filter{}
			setIfNotEmpty(filter, "ref_id", refID)
			setIfNotEmpty(filter, "role", role)
			if len(statuses) > 0 {
				filter["status"] = statuses
			}
			return a.withStore(func(st types.BeaconStore) error {
				ns, err := fetchAs[*types.Negotiation](st, types.TableNegotiations, filter)
				if err != nil {
					return err
				}
				return a.render(cmd, ns, func(w io.Writer) {
					for _, n := range ns {
						printNegotiation(w, n)
					}
				})
			})
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&refID, "ref", "", "filter by ref ID")
	fl.StringVar(&role, "role", "", "filter by role: buyer or seller")
	fl.StringArrayVar(&statuses, "status", nil, "filter by status (repeatable)")
	return cmd
}

func printNegotiation(w io.Writer, n *types.Negotiation) {
	line := fmt.Sprintf("%s  %-6s %-9s %s", n.ID, n.Role, n.Status, formatPrice(n.Price, n.PriceCurrency))
	if n.CounterPrice != nil {
		line += " countered " + formatPrice(*n.CounterPrice, n.PriceCurrency)
	}
	if n.RefName != "" {
		line += "  " + n.RefName
	}
	fmt.Fprintln(w, line)
}

func getNegotiation(st types.BeaconStore, id string) (*types.Negotiation, types.Table, error) {
	negotiations, err := getTable(st, types.TableNegotiations)
	if err != nil {
		return nil, nil, err
	}
	v, err := negotiations.Get(id)
	if err != nil {
		return nil, nil, notFound("negotiation", id, err)
	}
	return v.(*types.Negotiation), negotiations, nil
}

// writeMessage prints payload wrapped in a peer message from beaconID.
func writeMessage(a *app, cmd *cobra.Command, msgType, beaconID string, payload any) error {
	msg, err := types.NewPeerMessage(msgType, beaconID, payload)
	if err != nil {
		return sysError(err)
	}
	return writeJSON(a.out(cmd), msg)
}
