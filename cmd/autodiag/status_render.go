package main

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

const (
	ansiReset  = "\x1b[0m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

// renderVerdictLine summarizes how the diagnosis was produced above the
// result table.
func renderVerdictLine(aiPowered bool, colorize bool) string {
	line := "Diagnosis (keyword fallback)"
	color := ansiYellow
	if aiPowered {
		line = "Diagnosis (AI reasoning)"
		color = ansiGreen
	}
	if colorize {
		return color + line + ansiReset
	}
	return line
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
