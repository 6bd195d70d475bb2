// Package reffo holds build information for the reffo beacon.
package reffo

// Version is the reffo release. Overridden at build time with
// -ldflags "-X github.com/mesh-intelligence/reffo/pkg/reffo.Version=...".
var Version = "0.1.0"
