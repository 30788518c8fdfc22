package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Confirm prompts on stdout and reads the answer from stdin.
func Confirm(prompt string) bool {
	return ConfirmFrom(os.Stdin, os.Stdout, prompt)
}

// ConfirmFrom asks a yes/no question on out and reads one line from in.
// Anything but y or yes is a no, including EOF.
func ConfirmFrom(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", StyleWarning.Render(prompt))
	line, _ := bufio.NewReader(in).ReadString('\n')
	line = strings.TrimSpace(strings.ToLower(line))
	return line == "y" || line == "yes"
}

// ConfirmCall renders a pending transaction and asks before signing it.
func ConfirmCall(in io.Reader, out io.Writer, title string, pairs [][2]string) bool {
	fmt.Fprintln(out, KeyValueBlock(title, pairs))
	return ConfirmFrom(in, out, "Sign and send?")
}
