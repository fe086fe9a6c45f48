package main

import (
	"os"
	"slices"
)

// init runs before lipgloss or Bubble Tea touch the terminal.
//
// Terminal background detection writes OSC/DSR queries to stdout. In a real
// terminal they are invisible, but when ct's plain output is captured by a
// PTY recorder the replies end up mixed into the data. Commands that never
// open the viewer set CI=1, which makes termenv skip the probing.
func init() {
	if os.Getenv("CI") != "" {
		return
	}
	if !shouldSuppressTTYQueries(os.Args[1:], os.Getenv("CT_TEST_MODE") != "") {
		return
	}
	_ = os.Setenv("CI", "1")
}

var plainCommands = []string{"print", "export", "stats", "snapshots", "recipes", "version"}

func shouldSuppressTTYQueries(args []string, envTest bool) bool {
	if envTest {
		return true
	}
	if slices.Contains(args, "--wizard") {
		return false
	}
	for _, arg := range args {
		switch arg {
		case "--version", "--help", "-h":
			return true
		}
		if slices.Contains(plainCommands, arg) {
			return true
		}
	}
	return false
}
