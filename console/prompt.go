package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/riadafridishibly/xmldedup/scanner"
)

const (
	promptText  = "Enter the directory path to search for XML files: "
	invalidText = " Invalid directory. Please enter a valid folder path.\n"
	ackText     = "\nPress Enter to close..."
)

// PromptRoot returns the first candidate that names an existing directory.
// initial is tried first when non-empty; after that the user is asked until
// a valid answer arrives. io.EOF is returned if input runs out.
func (c *Console) PromptRoot(initial string) (string, error) {
	if initial = strings.TrimSpace(initial); initial != "" {
		if scanner.CheckRoot(initial) == nil {
			return initial, nil
		}
		c.printf("%s", invalidText)
	}

	for {
		c.printf("%s", promptText)
		line, err := c.in.ReadString('\n')
		answer := strings.TrimSpace(line)
		if answer != "" && scanner.CheckRoot(answer) == nil {
			return answer, nil
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				c.printf("\n")
				return "", io.EOF
			}
			return "", fmt.Errorf("read answer: %w", err)
		}
		c.printf("%s", invalidText)
	}
}

// WaitForAck blocks until a line (or EOF) is read. It returns immediately when
// interactive is false.
func (c *Console) WaitForAck(interactive bool) {
	if !interactive {
		return
	}
	c.printf("%s", ackText)
	_, _ = c.in.ReadString('\n')
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func newReader(r io.Reader) *bufio.Reader {
	if br, ok := r.(*bufio.Reader); ok {
		return br
	}
	return bufio.NewReader(r)
}
