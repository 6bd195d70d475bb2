// Package main provides the reffo CLI.
package main

import "github.com/mesh-intelligence/reffo/internal/cli"

func main() {
	cli.Execute()
}
