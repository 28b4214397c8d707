// Package prompter implements the interactive module selection menu.
package prompter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
)

// CliPrompter implements ports.Prompter for CLI environments.
type CliPrompter struct {
	in  *bufio.Reader
	raw io.Reader
	out io.Writer
}

// NewCliPrompter creates a new CliPrompter.
func NewCliPrompter(in io.Reader, out io.Writer) *CliPrompter {
	return &CliPrompter{in: bufio.NewReader(in), raw: in, out: out}
}

// IsInteractive checks if the input is a terminal.
func (p *CliPrompter) IsInteractive() bool {
	if f, ok := p.raw.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// SelectModule prints a numbered menu and reads one line holding a 1-based
// choice. It returns the zero-based index.
func (p *CliPrompter) SelectModule(candidates []string) (int, error) {
	if len(candidates) == 0 {
		return 0, fmt.Errorf("no modules to choose from")
	}

	_, _ = fmt.Fprintf(p.out, "\n\nWhich WASM file would you like to load?\n")
	for i, path := range candidates {
		_, _ = fmt.Fprintf(p.out, "%d) %s\n", i+1, path)
	}

	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		if err == io.EOF {
			return 0, fmt.Errorf("no selection made: %w", err)
		}
		return 0, err
	}

	choice, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0, fmt.Errorf("invalid selection %q: %w", strings.TrimSpace(line), err)
	}
	if choice < 1 || choice > len(candidates) {
		return 0, fmt.Errorf("selection %d out of range 1-%d", choice, len(candidates))
	}
	return choice - 1, nil
}

// Progress prints a setup step.
func (p *CliPrompter) Progress(msg string) {
	_, _ = fmt.Fprintln(p.out, msg)
}
