// Package deps reports whether the external binaries labelprint shells out to
// can be found on PATH.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"labelprint/internal/config"
)

// Requirement names an external command and whether startup depends on it.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status is a Requirement plus the result of looking it up.
type Status struct {
	Requirement
	Available bool
	// Detail is the resolved path when available, otherwise the reason it is not.
	Detail string
}

// Requirements lists the binaries the configuration needs. The spooler is
// only required when local network printing is enabled.
func Requirements(cfg *config.Config) []Requirement {
	if cfg == nil {
		return nil
	}
	return []Requirement{{
		Name:        "lpr",
		Command:     cfg.SpoolerBinary(),
		Description: "Submits labels to the local print queue",
		Optional:    !cfg.EnableNetworkPrint,
	}}
}

// CheckBinaries looks up every requirement on PATH.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, len(requirements))
	for i, req := range requirements {
		req.Command = strings.TrimSpace(req.Command)
		req.Description = strings.TrimSpace(req.Description)
		results[i] = lookup(req)
	}
	return results
}

func lookup(req Requirement) Status {
	status := Status{Requirement: req}
	if req.Command == "" {
		status.Detail = "command not configured"
		return status
	}
	path, err := exec.LookPath(req.Command)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", req.Command)
		return status
	}
	status.Available = true
	status.Detail = path
	return status
}
