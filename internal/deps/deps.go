// Package deps verifies the external programs the pipeline shells out to
// before any model loading starts.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"casper/internal/config"
)

// Requirement defines an external dependency the pipeline relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements lists the external programs for the given configuration. The
// Python interpreter hosts the faster-whisper worker and is mandatory;
// nvidia-smi only matters when CUDA inference is requested.
func Requirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "Python",
			Command:     cfg.PythonBinary(),
			Description: "interpreter running the faster-whisper worker",
		},
		{
			Name:        "nvidia-smi",
			Command:     "nvidia-smi",
			Description: "NVIDIA driver utility for CUDA inference",
			Optional:    true,
		},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// FirstMissing returns the first required dependency that is unavailable,
// nil when everything mandatory resolves.
func FirstMissing(statuses []Status) *Status {
	for i := range statuses {
		if !statuses[i].Optional && !statuses[i].Available {
			return &statuses[i]
		}
	}
	return nil
}
