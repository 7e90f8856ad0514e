package credentials

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// TerminalPrompter reads a secret from In. When In is a terminal the input
// is not echoed; otherwise a single line is read.
type TerminalPrompter struct {
	In  *os.File
	Out io.Writer
}

// NewTerminalPrompter prompts on stderr and reads stdin.
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{In: os.Stdin, Out: os.Stderr}
}

// Prompt prints label and returns the entered text, trimmed.
func (p *TerminalPrompter) Prompt(label string) (string, error) {
	fmt.Fprint(p.Out, label)

	fd := int(p.In.Fd())
	if term.IsTerminal(fd) {
		secret, err := term.ReadPassword(fd)
		fmt.Fprintln(p.Out)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(secret)), nil
	}

	return readLine(p.In)
}

// ReaderPrompter reads answers line by line from any reader.
type ReaderPrompter struct {
	r   *bufio.Reader
	Out io.Writer
}

// NewReaderPrompter returns a Prompter over r; prompts go to out (may be nil).
func NewReaderPrompter(r io.Reader, out io.Writer) *ReaderPrompter {
	return &ReaderPrompter{r: bufio.NewReader(r), Out: out}
}

// Prompt prints label and returns the next line.
func (p *ReaderPrompter) Prompt(label string) (string, error) {
	if p.Out != nil {
		fmt.Fprint(p.Out, label)
	}
	return readBufferedLine(p.r)
}

func readLine(r io.Reader) (string, error) {
	return readBufferedLine(bufio.NewReader(r))
}

func readBufferedLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", errors.New("no input received")
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}
