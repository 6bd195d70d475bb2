package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/reffo/pkg/types"
)

func newGeoCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "geo",
		Short: "Location helpers",
	}
	cmd.AddCommand(newGeoDistanceCmd(a), newGeoBlurCmd(a))
	return cmd
}

type distanceResult struct {
	From  types.Point `json:"from"`
	To    types.Point `json:"to"`
	Miles float64     `json:"miles"`
}

func newGeoDistanceCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "distance <lat1> <lng1> <lat2> <lng2>",
		Short: "Great-circle distance in miles between two points",
		Long: `Distance prints the haversine distance in miles. Put "--" before the
coordinates when any of them is negative.

Example:
  reffo geo distance -- 37.7749 -122.4194 34.0522 -118.2437`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := pointArgs(args[0], args[1])
			if err != nil {
				return err
			}
			to, err := pointArgs(args[2], args[3])
			if err != nil {
				return err
			}
			res := distanceResult{From: from, To: to, Miles: from.DistanceMiles(to)}
			return a.render(cmd, res, func(w io.Writer) {
				fmt.Fprintf(w, "%.2f miles\n", res.Miles)
			})
		},
	}
}

func newGeoBlurCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "blur <lat> <lng>",
		Short: "Round coordinates to the precision announced to peers",
		Long: `Blur rounds each coordinate to two decimal places.

Example:
  reffo geo blur -- 37.77493 -122.41942`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := pointArgs(args[0], args[1])
			if err != nil {
				return err
			}
			b := types.BlurLocation(p.Lat, p.Lng)
			return a.render(cmd, b, func(w io.Writer) {
				fmt.Fprintf(w, "%.2f,%.2f\n", b.Lat, b.Lng)
			})
		},
	}
}

func pointArgs(lat, lng string) (types.Point, error) {
	var (
		p   types.Point
		err error
	)
	if p.Lat, err = parseFloatArg("latitude", lat); err != nil {
		return p, err
	}
	if p.Lng, err = parseFloatArg("longitude", lng); err != nil {
		return p, err
	}
	return p, nil
}

// parsePoint parses "lat,lng".
func parsePoint(s string) (types.Point, error) {
	lat, lng, ok := strings.Cut(s, ",")
	if !ok {
		return types.Point{}, fmt.Errorf("invalid point %q: want lat,lng", s)
	}
	return pointArgs(strings.TrimSpace(lat), strings.TrimSpace(lng))
}
