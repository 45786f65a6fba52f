package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// tone classifies a status line for labelling and color.
type tone int

const (
	toneInfo tone = iota
	toneOK
	toneWarn
)

const (
	ansiReset  = "\x1b[0m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

var toneLabels = map[tone]string{
	toneInfo: "INFO",
	toneOK:   "OK",
	toneWarn: "WARN",
}

var toneColors = map[tone]string{
	toneInfo: ansiBlue,
	toneOK:   ansiGreen,
	toneWarn: ansiYellow,
}

const statusLabelWidth = 20

// statusLine formats one "label: [TONE] message" row of the status report.
func statusLine(label string, tn tone, message string, color bool) string {
	badge := "[" + toneLabels[tn] + "]"
	if message != "" {
		badge += " " + message
	}
	line := fmt.Sprintf("  %-*s %s", statusLabelWidth, label+":", badge)
	if color {
		return toneColors[tn] + line + ansiReset
	}
	return line
}

// sectionHeader returns the banner and underline for one report section.
func sectionHeader(title string, color bool) []string {
	banner := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(banner))
	if color {
		banner = ansiBlue + banner + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{banner, rule}
}

// colorEnabled reports whether w is an interactive terminal.
func colorEnabled(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
