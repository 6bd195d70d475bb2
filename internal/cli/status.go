package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/reffo/internal/logger"
	"github.com/mesh-intelligence/reffo/pkg/reffo"
	"github.com/mesh-intelligence/reffo/pkg/types"
)

type statusResult struct {
	types.BeaconInfo
	Settings types.BeaconSettings `json:"settings"`
	LogFile  string               `json:"logFile"`
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show beacon information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(s types.BeaconStore) error {
				info, err := s.Info(reffo.Version)
				if err != nil {
					return sysError(fmt.Errorf("beacon info: %w", err))
				}
				settings, err := beaconSettings(s)
				if err != nil {
					return err
				}
				res := statusResult{BeaconInfo: info, Settings: *settings, LogFile: logger.Path()}
				return a.render(cmd, res, func(w io.Writer) {
					fmt.Fprintf(w, "beacon:  %s\n", info.ID)
					fmt.Fprintf(w, "version: %s\n", info.Version)
					fmt.Fprintf(w, "refs:    %d\n", info.RefCount)
					fmt.Fprintf(w, "offers:  %d active\n", info.OfferCount)
					fmt.Fprintf(w, "scope:   %s (%g mi)\n", settings.DefaultSellingScope, settings.DefaultSellingRadiusMiles)
					fmt.Fprintf(w, "dht:     %s\n", dhtState(info.DHT))
					fmt.Fprintf(w, "log:     %s\n", res.LogFile)
				})
			})
		},
	}
}

func dhtState(d types.DHTStatus) string {
	if !d.Connected {
		return "disconnected"
	}
	return fmt.Sprintf("connected (%d peers)", d.Peers)
}
