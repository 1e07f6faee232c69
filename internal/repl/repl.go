// Package repl implements the interactive calculator loop.
package repl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/tevino/abool/v2"

	"github.com/zephyrtronium/calc"
	"github.com/zephyrtronium/calc/internal/history"
)

// DefaultMaxLength is the default limit on the length of an expression in
// runes.
const DefaultMaxLength = 1000

// Prompt is printed before reading each line.
const Prompt = "calc> "

var (
	banner = strings.Repeat("=", 60)
	rule   = strings.Repeat("-", 60)
)

// REPL reads lines, evaluates them as expressions or commands, and writes the
// results. Interrupts may arrive concurrently with Run; all other methods must
// be called from one goroutine.
type REPL struct {
	in   *LineReader
	out  io.Writer
	mu   sync.Mutex
	hist *history.History
	sigs <-chan os.Signal

	places int
	maxLen int
	colour *bool

	running *abool.AtomicBool

	title, prompt, result, fail *color.Color
}

// Option is an option used when creating a REPL.
type Option func(*REPL)

// History sets the history that records successful evaluations.
func History(h *history.History) Option {
	return func(r *REPL) {
		r.hist = h
	}
}

// Places sets the number of decimal places shown for results that are not
// integers.
func Places(n int) Option {
	return func(r *REPL) {
		r.places = n
	}
}

// MaxLength sets the longest expression, in runes, that will be evaluated.
func MaxLength(n int) Option {
	return func(r *REPL) {
		r.maxLen = n
	}
}

// Colour forces output colouring on or off. By default, output is coloured
// only when writing to a terminal on standard output.
func Colour(on bool) Option {
	return func(r *REPL) {
		r.colour = &on
	}
}

// Interrupts sets a channel of signals which remind the user how to leave
// rather than stopping the loop.
func Interrupts(c <-chan os.Signal) Option {
	return func(r *REPL) {
		r.sigs = c
	}
}

// New creates a REPL reading from in and writing to out.
func New(in io.Reader, out io.Writer, opts ...Option) *REPL {
	r := REPL{
		out:     out,
		places:  calc.DefaultPlaces,
		maxLen:  DefaultMaxLength,
		running: abool.NewBool(false),
		title:   color.New(color.Bold),
		prompt:  color.New(color.FgCyan),
		result:  color.New(color.FgGreen),
		fail:    color.New(color.FgRed),
	}
	for _, opt := range opts {
		opt(&r)
	}
	if r.hist == nil {
		r.hist = history.New(history.DefaultMax)
	}
	if r.maxLen <= 0 {
		r.maxLen = DefaultMaxLength
	}
	on := out == io.Writer(os.Stdout) && !color.NoColor
	if r.colour != nil {
		on = *r.colour
	}
	for _, c := range []*color.Color{r.title, r.prompt, r.result, r.fail} {
		if on {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	// Keep enough of each line to hold any expression within the limit.
	r.in = NewLineReader(in, max(MaxLineBytes, r.maxLen*utf8.UTFMax))
	return &r
}

// Run prints the banner and processes lines until the input ends or the user
// asks to exit. The returned error is non-nil only if reading the input fails.
func (r *REPL) Run() error {
	r.running.Set()
	defer r.running.UnSet()
	done := make(chan struct{})
	defer close(done)
	if r.sigs != nil {
		go r.interrupts(done)
	}

	r.welcome()
	for r.running.IsSet() {
		r.write(r.prompt, Prompt)
		l, err := r.in.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				r.write(nil, "\nGoodbye!\n")
				return nil
			}
			return err
		}
		if l.Truncated {
			r.tooLong(l.Runes)
			continue
		}
		r.Exec(l.Text)
	}
	return nil
}

// Exec processes one line of input.
func (r *REPL) Exec(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	switch strings.ToLower(line) {
	case "help":
		r.help()
	case "history":
		r.history()
	case "clear":
		r.hist.Clear()
		r.write(nil, "History cleared.\n")
	case "exit", "quit":
		r.write(nil, "Goodbye!\n")
		r.running.UnSet()
	default:
		r.eval(line)
	}
}

// History returns the history the REPL records to.
func (r *REPL) History() *history.History {
	return r.hist
}

func (r *REPL) eval(expr string) {
	if n := utf8.RuneCountInString(expr); n > r.maxLen {
		r.tooLong(n)
		return
	}
	v, err := calc.EvalString(expr)
	if err != nil {
		var ie calc.InputError
		if errors.As(err, &ie) {
			r.write(r.fail, "Error: "+err.Error()+"\n")
		} else {
			r.write(r.fail, "Unexpected error: "+err.Error()+"\n")
		}
		return
	}
	r.write(r.result, "= "+calc.Format(v, r.places)+"\n")
	r.hist.Add(expr, v)
}

func (r *REPL) tooLong(n int) {
	r.write(r.fail, fmt.Sprintf("Error: Expression too long (%d characters). Maximum allowed: %d\n", n, r.maxLen))
}

func (r *REPL) welcome() {
	var b strings.Builder
	b.WriteString(banner + "\n")
	b.WriteString("Calculator\n")
	b.WriteString(banner + "\n")
	b.WriteString("Type 'help' for available commands\n")
	b.WriteString("Enter mathematical expressions to calculate\n")
	b.WriteString(banner + "\n")
	r.write(r.title, b.String())
}

const helpText = `
Available Commands:
  help     - Show this help message
  history  - Display calculation history
  clear    - Clear calculation history
  exit     - Exit the calculator
  quit     - Exit the calculator

Supported Operations:
  +   - Addition
  -   - Subtraction
  *   - Multiplication
  /   - Division
  %   - Modulo
  **  - Power (exponentiation)
  ()  - Parentheses for grouping

Examples:
  2 + 3
  10 * (5 - 2)
  2 ** 8
  -5 + 3
  (-2) * 3

`

func (r *REPL) help() {
	r.write(nil, helpText)
}

func (r *REPL) history() {
	if r.hist.Empty() {
		r.write(nil, "No history available.\n")
		return
	}
	var b strings.Builder
	b.WriteString("\nCalculation History:\n")
	b.WriteString(rule + "\n")
	for _, e := range r.hist.All() {
		b.WriteString(e.Format(r.places))
		b.WriteByte('\n')
	}
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Total entries: %d\n\n", r.hist.Len())
	r.write(nil, b.String())
}

func (r *REPL) interrupts(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-r.sigs:
			if !r.running.IsSet() {
				return
			}
			r.write(nil, "\nUse 'exit' or 'quit' to leave the calculator.\n")
			r.write(r.prompt, Prompt)
		}
	}
}

// write writes s to the output, coloured with c if it is not nil.
func (r *REPL) write(c *color.Color, s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c == nil {
		io.WriteString(r.out, s)
		return
	}
	c.Fprint(r.out, s)
}
