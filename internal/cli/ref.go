package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mesh-intelligence/reffo/internal/logger"
	"github.com/mesh-intelligence/reffo/pkg/schema"
	"github.com/mesh-intelligence/reffo/pkg/types"
)

func newRefCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ref",
		Short: "Manage refs (listings and catalog entries)",
	}
	cmd.AddCommand(
		newRefAddCmd(a),
		newRefGetCmd(a),
		newRefListCmd(a),
		newRefUpdateCmd(a),
		newRefDeleteCmd(a),
		newRefJSONLDCmd(a),
		newRefAnnounceCmd(a),
	)
	return cmd
}

// refFlags holds the editable ref fields shared by add and update.
type refFlags struct {
	name, description, category, subcategory string
	image, sku, status                       string
	quantity                                 int
	lat, lng                                 float64
	address, city, state, zip, country       string
	scope                                    string
	radius                                   float64
	attrs                                    []string
	condition                                string
	rentalTerms                              string
	rentalDeposit                            float64
	rentalDuration                           int
	rentalDurationUnit                       string
}

func (f *refFlags) register(fl *pflag.FlagSet) {
	fl.StringVar(&f.name, "name", "", "name")
	fl.StringVar(&f.description, "description", "", "description")
	fl.StringVar(&f.category, "category", "", "category, e.g. Vehicles")
	fl.StringVar(&f.subcategory, "subcategory", "", "subcategory, e.g. Cars")
	fl.StringVar(&f.image, "image", "", "image URL")
	fl.StringVar(&f.sku, "sku", "", "stock keeping unit")
	fl.StringVar(&f.status, "status", "", "listing status: private, for_sale, willing_to_sell, for_rent, archived_sold, archived_deleted")
	fl.IntVar(&f.quantity, "quantity", 1, "quantity")
	fl.Float64Var(&f.lat, "lat", 0, "latitude")
	fl.Float64Var(&f.lng, "lng", 0, "longitude")
	fl.StringVar(&f.address, "address", "", "street address (never announced)")
	fl.StringVar(&f.city, "city", "", "city")
	fl.StringVar(&f.state, "state", "", "state or region")
	fl.StringVar(&f.zip, "zip", "", "postal code")
	fl.StringVar(&f.country, "country", "", "country")
	fl.StringVar(&f.scope, "scope", "", "selling scope: global, national, range (default: beacon setting)")
	fl.Float64Var(&f.radius, "radius", 0, "selling radius in miles for range scope (default: beacon setting)")
	fl.StringArrayVar(&f.attrs, "attr", nil, "category attribute as key=value (repeatable; empty value removes on update)")
	fl.StringVar(&f.condition, "condition", "", "condition, one of the category's condition options")
	fl.StringVar(&f.rentalTerms, "rental-terms", "", "rental terms")
	fl.Float64Var(&f.rentalDeposit, "rental-deposit", 0, "rental deposit")
	fl.IntVar(&f.rentalDuration, "rental-duration", 0, "rental duration")
	fl.StringVar(&f.rentalDurationUnit, "rental-duration-unit", "", "rental duration unit: hours, days, weeks, months")
}

// update builds a RefUpdate from the flags the user set.
func (f *refFlags) update(fl *pflag.FlagSet, s schema.CategorySchema) (types.RefUpdate, error) {
	var u types.RefUpdate
	str := func(name string, v string) *string {
		if fl.Changed(name) {
			return &v
		}
		return nil
	}
	u.Name = str("name", f.name)
	u.Description = str("description", f.description)
	u.Category = str("category", f.category)
	u.Subcategory = str("subcategory", f.subcategory)
	u.Image = str("image", f.image)
	u.SKU = str("sku", f.sku)
	u.ListingStatus = str("status", f.status)
	u.Address = str("address", f.address)
	u.City = str("city", f.city)
	u.State = str("state", f.state)
	u.Zip = str("zip", f.zip)
	u.Country = str("country", f.country)
	u.SellingScope = str("scope", f.scope)
	u.Condition = str("condition", f.condition)
	u.RentalTerms = str("rental-terms", f.rentalTerms)
	u.RentalDurationUnit = str("rental-duration-unit", f.rentalDurationUnit)

	if fl.Changed("quantity") {
		u.Quantity = &f.quantity
	}
	if fl.Changed("lat") != fl.Changed("lng") {
		return u, fmt.Errorf("--lat and --lng must be given together")
	}
	if fl.Changed("lat") {
		u.Lat, u.Lng = &f.lat, &f.lng
	}
	if fl.Changed("radius") {
		u.SellingRadiusMiles = &f.radius
	}
	if fl.Changed("rental-deposit") {
		u.RentalDeposit = &f.rentalDeposit
	}
	if fl.Changed("rental-duration") {
		u.RentalDuration = &f.rentalDuration
	}

	attrs, err := parseAttributes(s, f.attrs)
	if err != nil {
		return u, err
	}
	u.Attributes = attrs
	return u, nil
}

func newRefAddCmd(a *app) *cobra.Command {
	var f refFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a new ref",
		Long: `Add creates a ref owned by this beacon. Refs start private unless --status
is given. Attribute values are typed by the category schema.

Example:
  reffo ref add --name "2019 Honda Civic" --category Vehicles --subcategory Cars \
    --attr year=2019 --attr make=Honda --attr transmission=automatic \
    --condition good --lat 37.7749 --lng -122.4194 --status for_sale`,
		Args:    cobra.NoArgs,
		PreRunE: finiteFlags("lat", "lng", "radius", "rental-deposit"),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := schema.GetCategorySchema(f.category, f.subcategory)
			u, err := f.update(cmd.Flags(), s)
			if err != nil {
				return err
			}
			ref := &types.Ref{Quantity: 1}
			u.Attributes = dropNil(u.Attributes)
			u.Apply(ref)

			return a.withStore(func(st types.BeaconStore) error {
				if ref.SellingScope == "" {
					settings, err := beaconSettings(st)
					if err != nil {
						return err
					}
					ref.SellingScope = settings.DefaultSellingScope
					if ref.SellingScope == types.ScopeRange && ref.SellingRadiusMiles == nil {
						r := settings.DefaultSellingRadiusMiles
						ref.SellingRadiusMiles = &r
					}
				}
				refs, err := getTable(st, types.TableRefs)
				if err != nil {
					return err
				}
				id, err := refs.Set("", ref)
				if err != nil {
					return fmt.Errorf("create ref: %w", err)
				}
				logger.L().Info("ref.created", "id", id, "category", ref.Category)
				return a.render(cmd, ref, func(w io.Writer) {
					fmt.Fprintf(w, "Created ref: %s\n", id)
				})
			})
		},
	}
	f.register(cmd.Flags())
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

// refDetail is the JSON shape printed by ref get.
type refDetail struct {
	Ref     *types.Ref           `json:"ref"`
	Offers  []*types.Offer       `json:"offers"`
	Media   []*types.RefMedia    `json:"media"`
	Summary []schema.SummaryItem `json:"summary"`
}

func newRefGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a ref with its offers and media",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(st types.BeaconStore) error {
				ref, err := getRef(st, args[0])
				if err != nil {
					return err
				}
				offers, err := refOffers(st, ref.ID, "")
				if err != nil {
					return err
				}
				media, err := fetchAs[*types.RefMedia](st, types.TableMedia, types.Filter{"ref_id": ref.ID})
				if err != nil {
					return err
				}
				d := refDetail{
					Ref:     ref,
					Offers:  offers,
					Media:   media,
					Summary: schema.Summary(schema.GetCategorySchema(ref.Category, ref.Subcategory), ref.Attributes),
				}
				return a.render(cmd, d, func(w io.Writer) { printRefDetail(w, d) })
			})
		},
	}
}

func printRefDetail(w io.Writer, d refDetail) {
	r := d.Ref
	fmt.Fprintf(w, "%s\n", r.Name)
	fmt.Fprintf(w, "  id:        %s\n", r.ID)
	if r.Category != "" {
		fmt.Fprintf(w, "  category:  %s\n", schema.Key(r.Category, r.Subcategory))
	}
	fmt.Fprintf(w, "  status:    %s\n", r.ListingStatus)
	fmt.Fprintf(w, "  quantity:  %d\n", r.Quantity)
	if r.Condition != "" {
		fmt.Fprintf(w, "  condition: %s\n", r.Condition)
	}
	if loc := locationLine(r.Location); loc != "" {
		fmt.Fprintf(w, "  location:  %s\n", loc)
	}
	for _, s := range d.Summary {
		fmt.Fprintf(w, "  %s\n", s)
	}
	for _, o := range d.Offers {
		fmt.Fprintf(w, "  offer %s: %s (%s)\n", o.ID, formatPrice(o.Price, o.PriceCurrency), o.Status)
	}
	for _, m := range d.Media {
		fmt.Fprintf(w, "  %s %s\n", m.MediaType, m.FilePath)
	}
}

func locationLine(l types.Location) string {
	var parts []string
	for _, s := range []string{l.City, l.State, l.Zip, l.Country} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	line := strings.Join(parts, ", ")
	if p, ok := l.Point(); ok {
		line = strings.TrimSpace(fmt.Sprintf("%s (%.4f, %.4f)", line, p.Lat, p.Lng))
	}
	return line
}

func newRefListCmd(a *app) *cobra.Command {
	var (
		category, subcategory, search string
		statuses                      []string
		near                          string
		radius                        float64
		limit, offset                 int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List refs with optional filters",
		Long: `List prints refs newest first. With --near the results are limited to
refs within --radius miles and ordered by distance.

Example:
  reffo ref list --category Vehicles --status for_sale
  reffo ref list --near 37.77,-122.42 --radius 10`,
		Args:    cobra.NoArgs,
		PreRunE: finiteFlags("radius"),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := types.Filter{}
			setIfNotEmpty(filter, "category", category)
			setIfNotEmpty(filter, "subcategory", subcategory)
			setIfNotEmpty(filter, "search", search)
			if len(statuses) > 0 {
				filter["listing_status"] = statuses
			}
			if near != "" {
				p, err := parsePoint(near)
				if err != nil {
					return err
				}
				filter["near"] = p
				filter["radius_miles"] = radius
			}
			if limit > 0 {
				filter["limit"] = limit
			}
			if offset > 0 {
				filter["offset"] = offset
			}

			return a.withStore(func(st types.BeaconStore) error {
				refs, err := fetchAs[*types.Ref](st, types.TableRefs, filter)
				if err != nil {
					return err
				}
				return a.render(cmd, refs, func(w io.Writer) {
					for _, r := range refs {
						printRefLine(w, r)
					}
				})
			})
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&category, "category", "", "filter by category")
	fl.StringVar(&subcategory, "subcategory", "", "filter by subcategory")
	fl.StringVar(&search, "search", "", "filter by name substring")
	fl.StringArrayVar(&statuses, "status", nil, "filter by listing status (repeatable)")
	fl.StringVar(&near, "near", "", "center point as lat,lng")
	fl.Float64Var(&radius, "radius", 25, "search radius in miles, used with --near")
	fl.IntVar(&limit, "limit", 0, "maximum number of refs")
	fl.IntVar(&offset, "offset", 0, "number of refs to skip")
	return cmd
}

func printRefLine(w io.Writer, r *types.Ref) {
	var summary []string
	for _, s := range schema.Summary(schema.GetCategorySchema(r.Category, r.Subcategory), r.Attributes) {
		summary = append(summary, s.String())
	}
	line := fmt.Sprintf("%s  %-16s %s", r.ID, r.ListingStatus, r.Name)
	if len(summary) > 0 {
		line += "  [" + strings.Join(summary, "; ") + "]"
	}
	fmt.Fprintln(w, line)
}

func newRefUpdateCmd(a *app) *cobra.Command {
	var f refFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update fields of a ref",
		Long: `Update changes only the flags given. Attributes are merged; --attr key=
removes a key.

Example:
  reffo ref update 0190f2a0-... --status for_sale --attr mileage=43000`,
		Args:    cobra.ExactArgs(1),
		PreRunE: finiteFlags("lat", "lng", "radius", "rental-deposit"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(st types.BeaconStore) error {
				ref, err := getRef(st, args[0])
				if err != nil {
					return err
				}
				category, subcategory := ref.Category, ref.Subcategory
				if cmd.Flags().Changed("category") {
					category = f.category
				}
				if cmd.Flags().Changed("subcategory") {
					subcategory = f.subcategory
				}
				u, err := f.update(cmd.Flags(), schema.GetCategorySchema(category, subcategory))
				if err != nil {
					return err
				}
				u.Apply(ref)

				refs, err := getTable(st, types.TableRefs)
				if err != nil {
					return err
				}
				if _, err := refs.Set(ref.ID, ref); err != nil {
					return fmt.Errorf("update ref: %w", err)
				}
				return a.render(cmd, ref, func(w io.Writer) {
					fmt.Fprintf(w, "Updated ref: %s\n", ref.ID)
				})
			})
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func newRefDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a ref with its offers and media",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(st types.BeaconStore) error {
				refs, err := getTable(st, types.TableRefs)
				if err != nil {
					return err
				}
				if err := refs.Delete(args[0]); err != nil {
					return notFound("ref", args[0], err)
				}
				logger.L().Info("ref.deleted", "id", args[0])
				return a.render(cmd, map[string]string{"deleted": args[0]}, func(w io.Writer) {
					fmt.Fprintf(w, "Deleted ref: %s\n", args[0])
				})
			})
		},
	}
}

func newRefJSONLDCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "jsonld <id>",
		Short: "Export a ref as Schema.org linked data",
		Long: `jsonld prints the ref as a Schema.org JSON-LD document. The newest active
offer, if any, supplies the offer node.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(st types.BeaconStore) error {
				ref, err := getRef(st, args[0])
				if err != nil {
					return err
				}
				offers, err := refOffers(st, ref.ID, types.OfferActive)
				if err != nil {
					return err
				}
				var offer *types.Offer
				if len(offers) > 0 {
					offer = offers[0]
				}
				return writeJSON(a.out(cmd), schema.RefLinkedData(ref, offer))
			})
		},
	}
}

// getRef loads one ref, mapping a missing ID to a user error.
func getRef(st types.BeaconStore, id string) (*types.Ref, error) {
	refs, err := getTable(st, types.TableRefs)
	if err != nil {
		return nil, err
	}
	v, err := refs.Get(id)
	if err != nil {
		return nil, notFound("ref", id, err)
	}
	return v.(*types.Ref), nil
}

// refOffers returns the offers of a ref, newest first, optionally limited to
// one status.
func refOffers(st types.BeaconStore, refID, status string) ([]*types.Offer, error) {
	filter := types.Filter{"ref_id": refID}
	if status != "" {
		filter["status"] = status
	}
	return fetchAs[*types.Offer](st, types.TableOffers, filter)
}

// fetchAs runs Fetch on a table and asserts each result to T.
func fetchAs[T any](st types.BeaconStore, table string, filter types.Filter) ([]T, error) {
	t, err := getTable(st, table)
	if err != nil {
		return nil, err
	}
	rows, err := t.Fetch(filter)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		v, ok := r.(T)
		if !ok {
			return nil, sysError(fmt.Errorf("list %s: unexpected entity type %T", table, r))
		}
		out = append(out, v)
	}
	return out, nil
}

func setIfNotEmpty(f types.Filter, key, v string) {
	if v != "" {
		f[key] = v
	}
}
