//go:build mage

package main

import (
	"fmt"
	"runtime"

	semver "github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"
)

const (
	GO_VERSION_CONSTRAINT            = ">= 1.18.0"
	KIND_VERSION_CONSTRAINT          = ">= 0.14.0"
	KUBECTL_VERSION_CONSTRAINT       = ">= 1.24.0"
	GOLANGCI_LINT_VERSION_CONSTRAINT = ">= 1.50.0"
)

func binaryWithExt(name string) string {
	if runtime.GOOS == "windows" {
		return fmt.Sprintf("%s.exe", name)
	}
	return name
}

// versionCheck parses version and checks it against constraint.
func versionCheck(version string, constraint string, tool string) error {
	parsed, err := semver.NewVersion(version)
	if err != nil {
		return errors.Errorf("error parsing %s version %q: %v", tool, version, err)
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return errors.Errorf("error parsing constraint: %v", err)
	}
	if !c.Check(parsed) {
		return errors.Errorf("found %s version %v but it failed constraint %v", tool, parsed, c)
	}
	return nil
}
