package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/reffo/pkg/types"
)

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return sysError(fmt.Errorf("marshal output: %w", err))
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// render prints v as JSON in --json mode and calls human otherwise.
func (a *app) render(cmd *cobra.Command, v any, human func(w io.Writer)) error {
	if a.flags.jsonMode {
		return writeJSON(a.out(cmd), v)
	}
	human(a.out(cmd))
	return nil
}

// isNotFound returns true if the error wraps ErrNotFound.
func isNotFound(err error) bool {
	return errors.Is(err, types.ErrNotFound)
}

// notFound rewrites ErrNotFound into a message naming the entity.
func notFound(kind, id string, err error) error {
	if isNotFound(err) {
		return fmt.Errorf("%s %q not found", kind, id)
	}
	return err
}

func formatPrice(price float64, currency string) string {
	return strconv.FormatFloat(price, 'f', 2, 64) + " " + currency
}

func parseFloatArg(name, s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: not a number", name, s)
	}
	if !isFinite(f) {
		return 0, fmt.Errorf("invalid %s %q: must be a finite number", name, s)
	}
	return f, nil
}

func isFinite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// finiteFlags returns a PreRunE that rejects NaN and infinite values in
// the named float flags.
func finiteFlags(names ...string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		for _, name := range names {
			if !cmd.Flags().Changed(name) {
				continue
			}
			v, err := cmd.Flags().GetFloat64(name)
			if err != nil {
				return err
			}
			if !isFinite(v) {
				return fmt.Errorf("invalid --%s %v: must be a finite number", name, v)
			}
		}
		return nil
	}
}
