//go:build mage

package main

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/jstemmer/go-junit-report/v2/junit"
	"github.com/jstemmer/go-junit-report/v2/parser/gotest"
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

var Gotestsum string

var LocalBin = filepath.Join(os.Getenv("PWD"), "/bin")

func makeLocalBin() error {
	if _, err := os.Stat(LocalBin); os.IsNotExist(err) {
		err = os.MkdirAll(LocalBin, os.ModePerm)
		if err != nil {
			return err
		}
	}
	return nil
}

// Gotestsum downloads gotestsum locally if necessary
func gotestsum() error {
	mg.Deps(makeLocalBin)
	Gotestsum = filepath.Join(LocalBin, "/gotestsum")

	if _, err := os.Stat(Gotestsum); os.IsNotExist(err) {
		fmt.Println(Gotestsum)
		cmd := exec.Command("go", "install", "gotest.tools/gotestsum@v1.8.2")
		cmd.Env = append(os.Environ(), "GOBIN="+LocalBin)
		return cmd.Run()
	}
	return nil
}

// Tests is a mage target that runs the tests and generates coverage reports.
func Tests() error {
	mg.Deps(gotestsum)
	if err := os.MkdirAll("test_reports", os.ModePerm); err != nil {
		return err
	}

	if err := runtest("internal_coverage.xml", "internal.txt", "./internal/..."); err != nil {
		return err
	}
	if err := runtest("cmd_coverage.xml", "cmd.txt", "./cmd/..."); err != nil {
		return err
	}
	for _, name := range []string{"internal", "cmd"} {
		if err := junitReport(filepath.Join("test_reports", name+".txt"), filepath.Join("test_reports", name+"_junit.xml")); err != nil {
			return err
		}
	}
	return nil
}

func runtest(coverageFileName, outputFileName string, directories ...string) error {
	args := []string{"--format", "standard-verbose", "--", "-v"}
	if coverageFileName != "" {
		args = append(args, "-coverprofile", filepath.Join("test_reports", coverageFileName))
	}
	args = append(args, directories...)

	cmd := exec.Command(Gotestsum, args...)

	file, err := os.Create(filepath.Join("test_reports", outputFileName))
	if err != nil {
		return err
	}
	defer file.Close()

	cmd.Stdout = io.MultiWriter(os.Stdout, file)
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// junitReport converts the verbose go test output in inputPath into a JUnit XML report.
func junitReport(inputPath, outputPath string) error {
	input, err := os.Open(inputPath)
	if err != nil {
		return err
	}
	defer input.Close()

	report, err := gotest.NewParser().Parse(input)
	if err != nil {
		return err
	}
	hostname, _ := os.Hostname()
	content, err := xml.MarshalIndent(junit.CreateFromReport(report, hostname), "", "\t")
	if err != nil {
		return err
	}
	return os.WriteFile(outputPath, append([]byte(xml.Header), content...), 0o644)
}

// Linting Check
func CheckLint() error {
	mg.Deps(golangciLintCheck)
	output, err := sh.Output(binaryWithExt("golangci-lint"), "run", "--timeout", "10m")
	fmt.Println(output)
	return err
}

func golangciLintCheck() error {
	output, err := sh.Output(binaryWithExt("golangci-lint"), "--version")
	if err != nil {
		return fmt.Errorf("error running version cmd: %v", err)
	}
	var version string
	if _, err := fmt.Sscanf(output, "golangci-lint has version %s", &version); err != nil {
		return fmt.Errorf("unexpected version cmd output: %s", output)
	}
	return versionCheck(version, GOLANGCI_LINT_VERSION_CONSTRAINT, "golangci-lint")
}
