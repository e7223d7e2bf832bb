//go:build mage

package main

import (
	"encoding/json"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
	"github.com/pkg/errors"
)

const (
	KIND_NAME      = "resetbench"
	kindKubeconfig = ".kube/config"
	gpuNodeLabel   = "nvidia.com/gpu.present=true"
)

func kindBinary() string {
	return binaryWithExt("kind")
}

func kubectlBinary() string {
	return binaryWithExt("kubectl")
}

func kindOutput(args ...string) (string, error) {
	return sh.Output(kindBinary(), args...)
}

func kindRun(args ...string) error {
	return sh.Run(kindBinary(), args...)
}

func kubectlRun(args ...string) error {
	return sh.Run(kubectlBinary(), append([]string{"--kubeconfig", kindKubeconfig}, args...)...)
}

func kindCheck() error {
	output, err := kindOutput("version")
	if err != nil {
		return errors.Errorf("error running version cmd: %v", err)
	}
	fields := strings.Fields(output)
	if len(fields) < 2 {
		return errors.Errorf("unexpected version cmd output: %s", output)
	}
	return versionCheck(strings.TrimPrefix(fields[1], "v"), KIND_VERSION_CONSTRAINT, "kind")
}

func kubectlCheck() error {
	output, err := sh.Output(kubectlBinary(), "version", "--client", "-o", "json")
	if err != nil {
		return errors.Errorf("error running version cmd: %v", err)
	}
	version := struct {
		ClientVersion struct {
			GitVersion string `json:"gitVersion"`
		} `json:"clientVersion"`
	}{}
	if err := json.Unmarshal([]byte(output), &version); err != nil {
		return errors.Errorf("unexpected version cmd output: %s", output)
	}
	return versionCheck(strings.TrimPrefix(version.ClientVersion.GitVersion, "v"), KUBECTL_VERSION_CONSTRAINT, "kubectl")
}

func kindInitCluster() error {
	out, err := kindOutput("get", "clusters")
	if err != nil {
		return err
	}
	if strings.Contains(out, KIND_NAME) {
		return nil
	}
	return kindRun("create", "cluster", "--name", KIND_NAME, "--kubeconfig", kindKubeconfig, "--wait", "3m")
}

// kindSetup labels every node of the cluster as a GPU node so that the default node selector matches.
func kindSetup() error {
	mg.Deps(kindInitCluster)
	if err := kubectlRun("label", "nodes", "--all", "--overwrite", gpuNodeLabel); err != nil {
		return err
	}
	return kubectlRun("wait", "--for=condition=Ready", "nodes", "--all", "--timeout=3m")
}

func kindTeardown() error {
	return kindRun("delete", "cluster", "--name", KIND_NAME)
}
