//go:build mage

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

// Smoke builds the binary and runs a short session against a scratch
// beacon: init, add a ref, put it on offer, and announce it.
func Smoke() error {
	mg.Deps(Build)

	dir, err := os.MkdirTemp("", "reffo-smoke-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	bin, err := filepath.Abs(filepath.Join(binaryDir, binaryName))
	if err != nil {
		return err
	}
	run := func(args ...string) ([]byte, error) {
		all := append([]string{
			"--config-dir", filepath.Join(dir, "config"),
			"--data-dir", filepath.Join(dir, "data"),
			"--json",
		}, args...)
		var stdout, stderr bytes.Buffer
		cmd := exec.Command(bin, all...)
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
		if err := cmd.Run(); err != nil {
			return nil, fmt.Errorf("reffo %v: %w\n%s", args, err, stderr.String())
		}
		return stdout.Bytes(), nil
	}

	if _, err := run("init"); err != nil {
		return err
	}
	out, err := run("ref", "add", "--name", "Smoke test bike", "--status", "for_sale",
		"--category", "Other", "--lat", "37.7749", "--lng", "-122.4194")
	if err != nil {
		return err
	}
	var ref struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(out, &ref); err != nil {
		return fmt.Errorf("decode ref: %w", err)
	}
	if _, err := run("offer", "add", ref.ID, "--price", "120"); err != nil {
		return err
	}
	out, err = run("ref", "announce")
	if err != nil {
		return err
	}
	if !bytes.Contains(out, []byte(ref.ID)) {
		return fmt.Errorf("announce does not include ref %s:\n%s", ref.ID, out)
	}
	fmt.Println("smoke: ok")
	return nil
}
