package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/reffo/pkg/schema"
)

// categoryView is the JSON shape of one category schema.
type categoryView struct {
	Category         string                  `json:"category"`
	Subcategory      string                  `json:"subcategory,omitempty"`
	SchemaOrgType    string                  `json:"schemaOrgType"`
	AdditionalType   string                  `json:"additionalType,omitempty"`
	Traits           []schema.Trait          `json:"traits"`
	ConditionOptions []string                `json:"conditionOptions"`
	Attributes       []schema.AttributeField `json:"attributes"`
}

func newCategoryView(category, subcategory string, s schema.CategorySchema) categoryView {
	return categoryView{
		Category:         category,
		Subcategory:      subcategory,
		SchemaOrgType:    s.SchemaOrgType(),
		AdditionalType:   s.AdditionalType(),
		Traits:           s.Traits(),
		ConditionOptions: s.ConditionOptions(),
		Attributes:       s.Attributes(),
	}
}

func newCategoriesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List and inspect category schemas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.listCategories(cmd)
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List registered categories and subcategories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.listCategories(cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show <category> [subcategory]",
		Short: "Show the schema a category resolves to",
		Long: `Show prints the attribute fields, condition options, and Schema.org type
of the schema that a category and subcategory resolve to. Without a
subcategory the first registered subcategory of the category is used;
unknown categories fall back to the default schema.

Example:
  reffo categories show Vehicles Cars
  reffo categories show Housing`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sub := ""
			if len(args) == 2 {
				sub = args[1]
			}
			view := newCategoryView(args[0], sub, schema.GetCategorySchema(args[0], sub))
			return a.render(cmd, view, func(w io.Writer) { printCategory(w, view) })
		},
	})
	return cmd
}

func (a *app) listCategories(cmd *cobra.Command) error {
	entries := schema.Categories.Entries()
	views := make([]categoryView, len(entries))
	for i, e := range entries {
		views[i] = newCategoryView(e.Category, e.Subcategory, e.Schema)
	}
	return a.render(cmd, views, func(w io.Writer) {
		for _, c := range schema.Categories.CategoryNames() {
			fmt.Fprintln(w, c)
			for _, sub := range schema.Categories.Subcategories(c) {
				s := schema.GetCategorySchema(c, sub)
				fmt.Fprintf(w, "  %-22s %s\n", sub, s.SchemaOrgType())
			}
		}
	})
}

func printCategory(w io.Writer, v categoryView) {
	fmt.Fprintf(w, "%s\n", schema.Key(v.Category, v.Subcategory))
	typ := v.SchemaOrgType
	if v.AdditionalType != "" {
		typ += " (" + v.AdditionalType + ")"
	}
	fmt.Fprintf(w, "  type:       %s\n", typ)
	if len(v.ConditionOptions) > 0 {
		fmt.Fprintf(w, "  conditions: %s\n", strings.Join(v.ConditionOptions, ", "))
	}
	fmt.Fprintln(w, "  attributes:")
	for _, f := range v.Attributes {
		line := fmt.Sprintf("    %-18s %-8s %s", f.Key, f.Type, f.Label)
		if f.Unit != "" {
			line += " [" + f.Unit + "]"
		}
		if len(f.Options) > 0 {
			line += " {" + strings.Join(f.Options, "|") + "}"
		}
		fmt.Fprintln(w, line)
	}
}
