//go:build mage

package main

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
	"github.com/pkg/errors"
)

const buildPackage = "github.com/G-Research/resetbench/internal/resetbench/build"

var resetbenchBinary = filepath.Join("bin", binaryWithExt("resetbench"))

// Builds the resetbench binary into ./bin, stamped with version information.
func Build() error {
	mg.Deps(goCheck)
	ldflags, err := buildLdflags()
	if err != nil {
		return err
	}
	timeTaken := time.Now()
	if err := goRun("build", "-ldflags", ldflags, "-o", resetbenchBinary, "./cmd/resetbench"); err != nil {
		return err
	}
	fmt.Println("Time to build resetbench:", time.Since(timeTaken))
	return nil
}

func buildLdflags() (string, error) {
	commit, err := sh.Output("git", "rev-parse", "--short", "HEAD")
	if err != nil {
		commit = "UNKNOWN"
	}
	version, err := sh.Output("git", "describe", "--tags", "--always")
	if err != nil {
		version = "UNKNOWN"
	}
	values := map[string]string{
		"ReleaseVersion": version,
		"GitCommit":      commit,
		"GoVersion":      runtime.Version(),
		"BuildTime":      time.Now().UTC().Format(time.RFC3339),
	}
	var flags []string
	for name, value := range values {
		if strings.ContainsAny(value, " \t\n") {
			return "", errors.Errorf("build value %s=%q contains whitespace", name, value)
		}
		flags = append(flags, fmt.Sprintf("-X %s.%s=%s", buildPackage, name, value))
	}
	return strings.Join(flags, " "), nil
}

func runBinary(args ...string) error {
	return sh.RunV(resetbenchBinary, args...)
}

func goRun(args ...string) error {
	return sh.Run("go", args...)
}

func goOutput(args ...string) (string, error) {
	return sh.Output("go", args...)
}

func goCheck() error {
	output, err := goOutput("version")
	if err != nil {
		return errors.Errorf("error running go version: %v", err)
	}
	fields := strings.Fields(output)
	if len(fields) < 3 {
		return errors.Errorf("unexpected go version output: %s", output)
	}
	return versionCheck(strings.TrimPrefix(fields[2], "go"), GO_VERSION_CONSTRAINT, "go")
}
