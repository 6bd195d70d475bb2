//go:build mage

package main

import (
	"flag"
	"strconv"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const coverProfile = "coverage.out"

// Test groups the test targets.
type Test mg.Namespace

// All runs every test in the module.
func (Test) All() error {
	return sh.RunV(binGo, "test", "./...")
}

// Short runs the tests in -short mode.
func (Test) Short() error {
	return sh.RunV(binGo, "test", "-short", "./...")
}

// Run runs the tests matching --run in --pkg, repeated --count times.
func (Test) Run() error {
	fs := flag.NewFlagSet("test:run", flag.ContinueOnError)
	run := fs.String("run", "", "test name pattern")
	pkg := fs.String("pkg", "./...", "package pattern")
	count := fs.Int("count", 1, "run each test this many times")
	verbose := fs.Bool("v", false, "verbose output")
	parseTargetFlags(fs)

	args := []string{"test", "-count", strconv.Itoa(*count)}
	if *verbose {
		args = append(args, "-v")
	}
	if *run != "" {
		args = append(args, "-run", *run)
	}
	args = append(args, *pkg)
	return sh.RunV(binGo, args...)
}

// Cover runs all tests with a coverage profile and prints the per-function
// summary.
func (Test) Cover() error {
	if err := sh.RunV(binGo, "test", "-coverprofile", coverProfile, "./..."); err != nil {
		return err
	}
	return sh.RunV(binGo, "tool", "cover", "-func", coverProfile)
}
