package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// stdinIsTerminal reports whether r is an interactive terminal. Tests replace
// it to drive the prompts from a buffer.
var stdinIsTerminal = func(r io.Reader) bool {
	file, ok := r.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

type prompter struct {
	reader *bufio.Reader
	out    io.Writer
	tty    bool
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{reader: bufio.NewReader(in), out: out, tty: stdinIsTerminal(in)}
}

type promptAnswer struct {
	line string
	err  error
}

// ask prints label and returns the trimmed line the user typed. Blank answers
// are rejected. Cancelling ctx abandons the pending read.
func (p *prompter) ask(ctx context.Context, label string) (string, error) {
	if !p.tty {
		return "", errors.New("stdin is not a terminal")
	}
	fmt.Fprint(p.out, label)

	answers := make(chan promptAnswer, 1)
	go func() {
		line, err := p.reader.ReadString('\n')
		answers <- promptAnswer{line: line, err: err}
	}()

	var got promptAnswer
	select {
	case <-ctx.Done():
		fmt.Fprintln(p.out)
		return "", ctx.Err()
	case got = <-answers:
	}
	if got.err != nil && !(errors.Is(got.err, io.EOF) && got.line != "") {
		return "", fmt.Errorf("read answer: %w", got.err)
	}
	answer := strings.TrimSpace(got.line)
	if answer == "" {
		return "", errors.New("no value entered")
	}
	return answer, nil
}
