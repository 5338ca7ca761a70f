package deps

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// ResolveCompanion locates name for use alongside primary. FFmpeg builds ship
// ffplay and ffprobe in the same directory, so a binary sitting next to the
// resolved primary wins over whatever PATH finds first. The bare name is
// returned when nothing is found so the eventual exec error names it.
func ResolveCompanion(primary, name string) string {
	name = strings.TrimSpace(name)
	if primary = strings.TrimSpace(primary); primary != "" {
		if resolved, err := exec.LookPath(primary); err == nil {
			candidate := filepath.Join(filepath.Dir(resolved), executableName(name))
			if info, statErr := os.Stat(candidate); statErr == nil && isExecutable(info) {
				return candidate
			}
		}
	}
	if resolved, err := exec.LookPath(name); err == nil {
		return resolved
	}
	return name
}

func executableName(base string) string {
	if runtime.GOOS == "windows" && !strings.HasSuffix(base, ".exe") {
		return base + ".exe"
	}
	return base
}

func isExecutable(info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
