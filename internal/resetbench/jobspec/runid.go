package jobspec

import (
	"strconv"

	"k8s.io/utils/clock"
)

// GeneratedRunIdLength is the length of the ids returned by NewRunId until the year 2059.
const GeneratedRunIdLength = 8

// NewRunId returns a token identifying this invocation: the current Unix time in milliseconds, in base 36.
// Tokens increase with time and are short enough to leave room for node names in job names.
func NewRunId(clk clock.PassiveClock) string {
	return strconv.FormatInt(clk.Now().UnixMilli(), 36)
}
