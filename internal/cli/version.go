package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/reffo/pkg/reffo"
)

const modulePath = "github.com/mesh-intelligence/reffo"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the reffo version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "reffo v%s\nmodule: %s\n", reffo.Version, modulePath)
			return nil
		},
	}
}
