package util

import (
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// fdWriter is satisfied by os.Stdout and anything else exposing a raw
// file descriptor. Buffers, pipes wrapped in bufio, and other
// non-file writers do not implement it and are never treated as
// terminals.
type fdWriter interface {
	Fd() uintptr
}

// IsTerminalWriter reports whether w is connected to an interactive
// terminal.
func IsTerminalWriter(w io.Writer) bool {
	f, ok := w.(fdWriter)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd())
}

// IsTerminal reports whether stdout is an interactive terminal.
func IsTerminal() bool {
	return IsTerminalWriter(os.Stdout)
}

// colorOverride inspects the environment for an explicit color
// preference, checked in precedence order (NO_COLOR, then
// FORCE_COLOR, then this binary's own PACPROXY_FORCE_COLORS). ok is
// false when none of them are set and the caller should fall back to
// TTY detection.
//
// references:
//   - https://no-color.org/
func colorOverride() (want, ok bool) {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false, true
	}
	if v, set := os.LookupEnv("FORCE_COLOR"); set {
		return v != "0", true
	}
	if v, set := os.LookupEnv("PACPROXY_FORCE_COLORS"); set {
		return strings.EqualFold(v, "true"), true
	}
	return false, false
}

// ShouldUseColors decides whether styled terminal output should be
// used: an explicit environment override wins outright, otherwise it
// falls back to whether stdout is a TTY.
func ShouldUseColors() bool {
	if want, ok := colorOverride(); ok {
		return want
	}
	return IsTerminal()
}
