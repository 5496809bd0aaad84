// Package deps resolves the external tools aaxconv shells out to and reports
// their availability.
//
// ffmpeg and ffprobe are required; a missing one stops the run before any
// file is touched. mediainfo, mp4art, and mp4chaps are optional and only
// disable the feature that needs them.
package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement defines an external dependency aaxconv relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	// SearchPath, when set, is the only directory consulted for Command.
	SearchPath string
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Path        string
	Detail      string
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
		if dir := strings.TrimSpace(req.SearchPath); dir != "" {
			path, ok := lookInDir(dir, cmd)
			if !ok {
				status.Detail = fmt.Sprintf("binary %q not found in %s", cmd, dir)
				results = append(results, status)
				continue
			}
			status.Available = true
			status.Path = path
			results = append(results, status)
			continue
		}
		path, err := exec.LookPath(cmd)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		status.Path = path
		results = append(results, status)
	}
	return results
}
