package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/reffo/internal/logger"
	"github.com/mesh-intelligence/reffo/pkg/types"
)

func newOfferCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "offer",
		Short: "Manage offers on refs",
	}
	cmd.AddCommand(newOfferAddCmd(a), newOfferListCmd(a))
	cmd.AddCommand(newOfferTransitionCmd(a, "withdraw", "Withdraw an active offer", (*types.Offer).Withdraw))
	cmd.AddCommand(newOfferTransitionCmd(a, "sell", "Mark an active offer as sold", (*types.Offer).MarkSold))
	return cmd
}

func newOfferAddCmd(a *app) *cobra.Command {
	var c types.OfferCreate
	cmd := &cobra.Command{
		Use:   "add <ref-id>",
		Short: "Put a ref on offer at a price",
		Long: `Add creates an active offer on a ref. The currency defaults to the
configured currency, then USD.

Example:
  reffo offer add 0190f2a0-... --price 18500`,
		Args:    cobra.ExactArgs(1),
		PreRunE: finiteFlags("price"),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.RefID = args[0]
			return a.withStore(func(st types.BeaconStore) error {
				offers, err := getTable(st, types.TableOffers)
				if err != nil {
					return err
				}
				o := c.Offer()
				id, err := offers.Set("", o)
				if err != nil {
					return notFound("ref", c.RefID, fmt.Errorf("create offer: %w", err))
				}
				logger.L().Info("offer.created", "id", id, "ref_id", o.RefID, "price", o.Price)
				return a.render(cmd, o, func(w io.Writer) {
					fmt.Fprintf(w, "Created offer: %s (%s)\n", id, formatPrice(o.Price, o.PriceCurrency))
				})
			})
		},
	}
	fl := cmd.Flags()
	fl.Float64Var(&c.Price, "price", 0, "price (required)")
	fl.StringVar(&c.PriceCurrency, "currency", "", "ISO 4217 currency code")
	fl.StringVar(&c.Location, "location", "", "where the item can be collected")
	_ = cmd.MarkFlagRequired("price")
	return cmd
}

func newOfferListCmd(a *app) *cobra.Command {
	var refID, status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List offers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := types.Filter{}
			setIfNotEmpty(filter, "ref_id", refID)
			setIfNotEmpty(filter, "status", status)
			return a.withStore(func(st types.BeaconStore) error {
				offers, err := fetchAs[*types.Offer](st, types.TableOffers, filter)
				if err != nil {
					return err
				}
				return a.render(cmd, offers, func(w io.Writer) {
					for _, o := range offers {
						fmt.Fprintf(w, "%s  %-9s %s  ref %s\n", o.ID, o.Status, formatPrice(o.Price, o.PriceCurrency), o.RefID)
					}
				})
			})
		},
	}
	cmd.Flags().StringVar(&refID, "ref", "", "filter by ref ID")
	cmd.Flags().StringVar(&status, "status", "", "filter by status: active, sold, withdrawn")
	return cmd
}

// newOfferTransitionCmd builds a command that applies one state method to
// an offer and saves it.
func newOfferTransitionCmd(a *app, use, short string, transition func(*types.Offer) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <offer-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(st types.BeaconStore) error {
				offers, err := getTable(st, types.TableOffers)
				if err != nil {
					return err
				}
				v, err := offers.Get(args[0])
				if err != nil {
					return notFound("offer", args[0], err)
				}
				o := v.(*types.Offer)
				if err := transition(o); err != nil {
					return fmt.Errorf("offer %s is %s: %w", o.ID, o.Status, err)
				}
				if _, err := offers.Set(o.ID, o); err != nil {
					return fmt.Errorf("save offer: %w", err)
				}
				logger.L().Info("offer.transitioned", "id", o.ID, "status", o.Status)
				return a.render(cmd, o, func(w io.Writer) {
					fmt.Fprintf(w, "Offer %s is now %s\n", o.ID, o.Status)
				})
			})
		},
	}
}
