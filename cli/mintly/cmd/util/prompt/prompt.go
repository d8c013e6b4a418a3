package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/mintly-cc/mintly/cli/mintly/cmd/types"
)

// Prompter asks questions from the user, one line per answer.
type Prompter struct {
	stdin io.Reader
	in    *bufio.Reader
	out   types.ConsoleWrapper
}

func New(stdin io.Reader, out types.ConsoleWrapper) *Prompter {
	return &Prompter{
		stdin: stdin,
		in:    bufio.NewReader(stdin),
		out:   out,
	}
}

// Line prints the message and returns the (trimmed) line entered by the user.
func (p *Prompter) Line(msg string) (string, error) {
	p.out.Print(msg)
	line, err := p.in.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) || line == "" {
			return "", fmt.Errorf("reading input: %w", err)
		}
	}
	return strings.TrimSpace(line), nil
}

// WithDefault returns "def" when user enters empty line.
func (p *Prompter) WithDefault(msg, def string) (string, error) {
	if def != "" {
		msg = fmt.Sprintf("%s [%s]", msg, def)
	}
	s, err := p.Line(msg + ": ")
	if err != nil {
		return "", err
	}
	if s == "" {
		return def, nil
	}
	return s, nil
}

// Validated repeats the question until the answer passes validation.
func (p *Prompter) Validated(msg, def string, validate func(string) error) (string, error) {
	for {
		s, err := p.WithDefault(msg, def)
		if err != nil {
			return "", err
		}
		if err := validate(s); err != nil {
			p.out.Println("Invalid value: " + err.Error())
			continue
		}
		return s, nil
	}
}

/*
Secret reads value without echoing it when input is a terminal. Otherwise (input
is redirected) it's read as a regular line.
*/
func (p *Prompter) Secret(msg string) (string, error) {
	f, ok := p.stdin.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return p.Line(msg)
	}
	p.out.Print(msg)
	b, err := term.ReadPassword(int(f.Fd()))
	if err != nil {
		return "", fmt.Errorf("reading secret: %w", err)
	}
	p.out.Println("") // line break after reading secret
	return strings.TrimSpace(string(b)), nil
}

func (p *Prompter) Confirm(msg string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	for {
		s, err := p.Line(fmt.Sprintf("%s [%s]: ", msg, hint))
		if err != nil {
			return false, err
		}
		switch strings.ToLower(s) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		p.out.Println("Please answer 'y' or 'n'.")
	}
}

// Choice lists the options and returns index of the selected one.
func (p *Prompter) Choice(msg string, options []string, def int) (int, error) {
	p.out.Println(msg)
	for i, o := range options {
		p.out.Println(fmt.Sprintf("  %d) %s", i+1, o))
	}
	for {
		s, err := p.WithDefault("Select", strconv.Itoa(def+1))
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > len(options) {
			p.out.Println(fmt.Sprintf("Please enter a number between 1 and %d.", len(options)))
			continue
		}
		return n - 1, nil
	}
}
