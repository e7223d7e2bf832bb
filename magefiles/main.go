//go:build mage

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/magefile/mage/mg"
	"github.com/pkg/errors"
)

// Check dependent tools are present and the correct version.
func CheckDeps() error {
	checks := []struct {
		name  string
		check func() error
	}{
		{"go", goCheck},
		{"kind", kindCheck},
		{"kubectl", kubectlCheck},
	}
	failures := false
	for _, check := range checks {
		fmt.Printf("Checking %s... ", check.name)
		if err := check.check(); err != nil {
			fmt.Printf("FAILED\nReason: %v\n", err)
			failures = true
		} else {
			fmt.Println("PASSED")
		}
	}
	if failures {
		return errors.New("check(s) failed.")
	}
	return nil
}

// Removes build output, test reports and benchmark results.
func Clean() {
	fmt.Println("Cleaning...")
	for _, path := range []string{"bin", "test_reports", "resetbench-results", ".kube"} {
		os.RemoveAll(path)
	}
}

// Setup Kind with a node labelled as a GPU node and wait for it to be ready.
func Kind() {
	timeTaken := time.Now()
	mg.Deps(kindCheck, kubectlCheck)
	mg.Deps(kindSetup)
	fmt.Println("Time to setup kind:", time.Since(timeTaken))
}

// Teardown Kind Cluster
func KindTeardown() {
	mg.Deps(kindCheck)
	mg.Deps(kindTeardown)
}

// Runs a short benchmark against the Kind cluster using the example job template.
func LocalRun() error {
	mg.Deps(Build, Kind)
	return runBinary(
		"run",
		"--kubeconfig", kindKubeconfig,
		"--template", "deployment/reset-job.yaml",
		"--threshold", "0",
		"--targetRuns", "3",
		"--pollInterval", "2s",
		"--printCleanup",
	)
}
