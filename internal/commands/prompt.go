package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter asks for a secret and returns it without the trailing newline.
type Prompter func(prompt string) (string, error)

// terminalPrompt reads without echo from a terminal and falls back to a
// plain line read when stdin is piped.
func terminalPrompt(errOut io.Writer) Prompter {
	return func(prompt string) (string, error) {
		fmt.Fprint(errOut, prompt)
		fd := int(os.Stdin.Fd())
		if term.IsTerminal(fd) {
			secret, err := term.ReadPassword(fd)
			fmt.Fprintln(errOut)
			return strings.TrimSpace(string(secret)), err
		}
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
}
