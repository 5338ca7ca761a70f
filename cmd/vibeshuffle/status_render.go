package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"vibeshuffle/internal/preflight"
)

type statusKind int

const (
	statusOK statusKind = iota
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

const (
	checkLabelWidth = 20
	checkIndent     = "  "
)

// checkKind maps a preflight result onto a status. Optional failures only warn.
func checkKind(r preflight.Result) statusKind {
	switch {
	case r.Passed:
		return statusOK
	case r.Optional:
		return statusWarn
	default:
		return statusError
	}
}

func renderCheck(r preflight.Result, colorize bool) string {
	kind := checkKind(r)
	statusText := fmt.Sprintf("[%s]", statusKindLabel(kind))
	if r.Detail != "" {
		statusText += " " + r.Detail
	}
	line := fmt.Sprintf("%s%-*s %s", checkIndent, checkLabelWidth, r.Name+":", statusText)
	if colorize {
		return statusKindColor(kind) + line + ansiReset
	}
	return line
}

// renderCheckSummary is the footer under the doctor report, coloured by the
// worst result.
func renderCheckSummary(results []preflight.Result, colorize bool) string {
	var ok, warn, failed int
	worst := statusOK
	for _, r := range results {
		kind := checkKind(r)
		switch kind {
		case statusOK:
			ok++
		case statusWarn:
			warn++
		default:
			failed++
		}
		if kind > worst {
			worst = kind
		}
	}
	line := fmt.Sprintf("%d ok, %d warnings, %d failed", ok, warn, failed)
	switch worst {
	case statusOK:
		line += "; ready to play"
	case statusWarn:
		line += "; playback works with reduced features"
	default:
		line += "; fix the failed checks before running vibeshuffle play"
	}
	if colorize {
		return statusKindColor(worst) + line + ansiReset
	}
	return line
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	default:
		return "ERROR"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	default:
		return ansiRed
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
