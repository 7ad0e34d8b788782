package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Confirm prompts for a y/N answer on a terminal. In non-interactive
// environments it declines immediately, so scripted use never blocks.
// Empty input and EOF both default to "no".
func Confirm(out io.Writer, in io.Reader, question string) bool {
	if f, ok := in.(*os.File); ok && !isTerminal(f) {
		return false
	}

	fmt.Fprintf(out, "%s [y/N] ", question)

	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
