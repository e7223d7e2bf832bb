package main

import (
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/G-Research/resetbench/cmd/resetbench/cmd"
	"github.com/G-Research/resetbench/internal/common"
	"github.com/G-Research/resetbench/internal/common/benchmarkerrors"
)

// Config is handled by cmd/params.go
func main() {
	common.ConfigureCommandLineLogging()
	err := cmd.RootCmd().Execute()
	if err != nil {
		log.Error(err)
		os.Exit(benchmarkerrors.ExitCodeFromError(err))
	}
}
