// Package deps reports on the external programs VibeShuffle shells out to.
package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement is an external program the player may need.
type Requirement struct {
	Name     string
	Command  string
	Optional bool
	// Hint is appended to the detail when the program is missing.
	Hint string
}

// Status reports where a requirement resolved, if anywhere.
type Status struct {
	Name      string
	Command   string
	Path      string
	Optional  bool
	Available bool
	Detail    string
}

// CheckBinaries resolves each requirement on PATH. Commands containing a
// path separator are checked as given.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{Name: req.Name, Command: cmd, Optional: req.Optional}
		switch resolved, err := lookup(cmd); {
		case cmd == "":
			status.Detail = "command not configured"
		case err != nil:
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			if req.Hint != "" {
				status.Detail += " (" + req.Hint + ")"
			}
		default:
			status.Available = true
			status.Path = resolved
		}
		results = append(results, status)
	}
	return results
}

func lookup(cmd string) (string, error) {
	if cmd == "" {
		return "", exec.ErrNotFound
	}
	return exec.LookPath(cmd)
}
