package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/reffo/pkg/schema"
)

type jsonldFlags struct {
	category    string
	subcategory string
	attrs       []string
	base        schema.BaseFields
	price       float64
}

func newJSONLDCmd(a *app) *cobra.Command {
	var f jsonldFlags
	cmd := &cobra.Command{
		Use:   "jsonld",
		Short: "Build Schema.org linked data from flags",
		Long: `jsonld assembles a Schema.org JSON-LD document for a category and a set
of attributes without touching the store. An offer node is added when
--price is given, including --price 0.

Example:
  reffo jsonld --category Vehicles --subcategory Cars \
    --attr year=2019 --attr make=Honda --attr mileage=42000 \
    --name "2019 Honda Civic" --price 18500 --condition good`,
		Args:    cobra.NoArgs,
		PreRunE: finiteFlags("price"),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := schema.GetCategorySchema(f.category, f.subcategory)
			attrs, err := parseAttributes(s, f.attrs)
			if err != nil {
				return err
			}
			base := f.base
			if cmd.Flags().Changed("price") {
				base.Price = &f.price
			}
			ld := schema.BuildLinkedData(f.category, f.subcategory, dropNil(attrs), base)
			return writeJSON(a.out(cmd), ld)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.category, "category", "", "listing category")
	fl.StringVar(&f.subcategory, "subcategory", "", "listing subcategory")
	fl.StringArrayVar(&f.attrs, "attr", nil, "attribute as key=value (repeatable)")
	fl.StringVar(&f.base.Name, "name", "", "name")
	fl.StringVar(&f.base.Description, "description", "", "description")
	fl.Float64Var(&f.price, "price", 0, "offer price")
	fl.StringVar(&f.base.Currency, "currency", "", "offer currency (default USD)")
	fl.StringVar(&f.base.Condition, "condition", "", "condition")
	fl.StringVar(&f.base.Image, "image", "", "image URL")
	fl.StringVar(&f.base.SKU, "sku", "", "stock keeping unit")
	fl.StringVar(&f.base.OfferStatus, "offer-status", "", "offer availability")
	fl.StringVar(&f.base.SellerID, "seller", "", "seller beacon ID")
	fl.StringVar(&f.base.OfferLocation, "offer-location", "", "where the offer is available")
	return cmd
}
