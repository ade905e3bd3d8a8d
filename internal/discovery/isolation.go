package discovery

import (
	"strings"

	"iltransform/internal/domain"
)

// Isolation reasons reported for a project
const (
	ReasonPreCommands          = "PreCommands"
	ReasonExecutionArguments   = "ExecutionArguments"
	ReasonEnvironmentVariables = "EnvironmentVariables"
	ReasonIncompatibility      = "Incompatibility"
	ReasonExit                 = "Exit"
)

// IsolationReasons lists why a project must run in its own process.
// The Exit reason depends on source facts, so call it again after analysis.
func IsolationReasons(p *domain.Project) []string {
	var reasons []string
	if p.Property("CLRTestBatchPreCommands") != "" || p.Property("CLRTestBashPreCommands") != "" {
		reasons = append(reasons, ReasonPreCommands)
	}
	if p.Property("CLRTestExecutionArguments") != "" {
		reasons = append(reasons, ReasonExecutionArguments)
	}
	if p.HasItemGroup("CLRTestEnvironmentVariable") {
		reasons = append(reasons, ReasonEnvironmentVariables)
	}
	if isTrue(p.Property("GCStressIncompatible")) || isTrue(p.Property("UnloadabilityIncompatible")) {
		reasons = append(reasons, ReasonIncompatibility)
	}
	if p.Source.HasExit {
		reasons = append(reasons, ReasonExit)
	}
	return reasons
}

func isTrue(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "true")
}
