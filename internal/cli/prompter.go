package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// terminalPrompter runs the blocking prompts on the terminal: alerts print a
// line, confirmations wait for a y/n answer.
type terminalPrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newTerminalPrompter(in io.Reader, out io.Writer) *terminalPrompter {
	return &terminalPrompter{in: bufio.NewReader(in), out: out}
}

func (p *terminalPrompter) Confirm(message string) bool {
	fmt.Fprintf(p.out, "%s [y/N] ", message)
	line, err := p.in.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func (p *terminalPrompter) Alert(message string) {
	fmt.Fprintf(p.out, "! %s\n", message)
}
