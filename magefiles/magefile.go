//go:build mage

// Package main provides build targets for the reffo project using Mage.
//
// Usage:
//
//	mage build          Compile the reffo binary to bin/
//	mage test:all       Run all tests
//	mage test:short     Run tests in -short mode
//	mage test:run       Run matching tests (--run, --pkg, --count)
//	mage test:cover     Run all tests with a coverage profile
//	mage smoke          Build and drive the binary in a scratch beacon
//	mage lint           Run golangci-lint
//	mage clean          Remove build artifacts
//	mage install        Install reffo to GOPATH/bin
//	mage stats          Print Go LOC and documentation word counts
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binLint    = "golangci-lint"
	binaryName = "reffo"
	binaryDir  = "bin"
	cmdDir     = "./cmd/reffo"
)

// Build compiles the reffo binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV(binGo, "build", "-v", "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Lint runs golangci-lint.
func Lint() error {
	return sh.RunV(binLint, "run", "./...")
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	if err := os.Remove(coverProfile); err != nil && !os.IsNotExist(err) {
		return err
	}
	return sh.RunV(binGo, "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}
