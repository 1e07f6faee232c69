package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"unicode/utf8"

	"git.sr.ht/~sircmpwn/getopt"

	"github.com/zephyrtronium/calc"
	"github.com/zephyrtronium/calc/internal/history"
	"github.com/zephyrtronium/calc/internal/repl"
	"github.com/zephyrtronium/calc/internal/server"
)

const usage = `usage: calc [options] [expression ...]

With no expressions and no -f or -l, calc starts an interactive session.

options:
  -f file  evaluate each line of file ('-' for stdin)
  -p n     decimal places in results (default 10)
  -e       print the postfix form of each expression before its result
  -H n     number of history entries kept in interactive mode (default 100)
  -L n     maximum expression length (default 1000)
  -l addr  serve /eval and /stats over HTTP on addr
  -C       disable coloured output
  -h       show this help
`

var errUsage = errors.New("usage requested")

type config struct {
	inname  string
	listen  string
	places  int
	histMax int
	maxLen  int
	echo    bool
	noColor bool
}

// readFlags parses argv, including the program name, and returns the
// configuration and the remaining arguments.
func readFlags(argv []string) (config, []string, error) {
	cfg := config{
		places:  calc.DefaultPlaces,
		histMax: history.DefaultMax,
		maxLen:  repl.DefaultMaxLength,
	}
	opts, optind, err := getopt.Getopts(argv, "f:p:eH:L:l:Ch")
	if err != nil {
		return cfg, nil, err
	}
	atoi := func(opt rune, s string) (int, error) {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid -%c value %q", opt, s)
		}
		return n, nil
	}
	for _, optV := range opts {
		opt := optV.Option
		optarg := optV.Value
		switch opt {
		case 'f':
			cfg.inname = optarg
		case 'p':
			if cfg.places, err = atoi(opt, optarg); err != nil {
				return cfg, nil, err
			}
		case 'e':
			cfg.echo = true
		case 'H':
			if cfg.histMax, err = atoi(opt, optarg); err != nil {
				return cfg, nil, err
			}
		case 'L':
			if cfg.maxLen, err = atoi(opt, optarg); err != nil {
				return cfg, nil, err
			}
		case 'l':
			cfg.listen = optarg
		case 'C':
			cfg.noColor = true
		default: // case 'h':
			return cfg, nil, errUsage
		}
	}
	return cfg, argv[optind:], nil
}

func main() {
	log.SetFlags(0)
	cfg, args, err := readFlags(os.Args)
	if err != nil {
		if err == errUsage {
			fmt.Print(usage)
			return
		}
		log.Fatalf("%v\n%s", err, usage)
	}

	switch {
	case cfg.listen != "":
		serve(cfg)
	case cfg.inname != "" || len(args) > 0:
		var ins []io.Reader
		f, err := infile(cfg.inname)
		if err != nil {
			log.Fatal(err)
		}
		if f != nil {
			defer f.Close()
			ins = append(ins, f)
		}
		for _, arg := range args {
			ins = append(ins, strings.NewReader(arg))
		}
		failed, err := batch(os.Stdout, ins, cfg)
		if err != nil {
			log.Fatal(err)
		}
		if failed > 0 {
			os.Exit(1)
		}
	default:
		interactive(cfg)
	}
}

func infile(inname string) (io.ReadCloser, error) {
	switch inname {
	case "":
		return nil, nil
	case "-":
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(inname)
	if err != nil {
		return nil, fmt.Errorf("couldn't open input: %w", err)
	}
	return f, nil
}

// batch evaluates each non-blank line of each input and writes one result or
// error per expression to w. It returns the number of expressions that failed.
func batch(w io.Writer, ins []io.Reader, cfg config) (int, error) {
	failed := 0
	for _, in := range ins {
		lr := repl.NewLineReader(in, max(repl.MaxLineBytes, cfg.maxLen*utf8.UTFMax))
		for {
			l, err := lr.Next()
			if err != nil {
				if errors.Is(err, io.EOF) {
					break
				}
				return failed, fmt.Errorf("couldn't read input: %w", err)
			}
			if l.Truncated {
				err = tooLong(l.Runes, cfg.maxLen)
			} else if line := strings.TrimSpace(l.Text); line != "" {
				err = evalLine(w, line, cfg)
			}
			if err != nil {
				fmt.Fprintln(w, "error:", err)
				failed++
			}
		}
	}
	return failed, nil
}

func tooLong(n, limit int) error {
	if limit <= 0 {
		return fmt.Errorf("expression too long (%d characters)", n)
	}
	return fmt.Errorf("expression too long (%d characters), maximum allowed: %d", n, limit)
}

func evalLine(w io.Writer, line string, cfg config) error {
	if n := utf8.RuneCountInString(line); cfg.maxLen > 0 && n > cfg.maxLen {
		return tooLong(n, cfg.maxLen)
	}
	toks, err := calc.Tokenize(line)
	if err != nil {
		return err
	}
	p, err := calc.Postfix(toks)
	if err != nil {
		return err
	}
	if cfg.echo {
		s := make([]string, len(p))
		for i, tok := range p {
			s[i] = tok.Text
		}
		fmt.Fprintf(w, "%s : ", strings.Join(s, " "))
	}
	r, err := calc.EvalPostfix(p)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, calc.Format(r, cfg.places))
	return nil
}

func interactive(cfg config) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	defer signal.Stop(sigs)
	opts := []repl.Option{
		repl.History(history.New(cfg.histMax)),
		repl.Places(cfg.places),
		repl.MaxLength(cfg.maxLen),
		repl.Interrupts(sigs),
	}
	if cfg.noColor {
		opts = append(opts, repl.Colour(false))
	}
	if err := repl.New(os.Stdin, os.Stdout, opts...).Run(); err != nil {
		log.Fatal(err)
	}
}

func serve(cfg config) {
	s := server.New(server.Places(cfg.places), server.MaxLength(cfg.maxLen))
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	go func() {
		<-sigs
		if err := s.Shutdown(); err != nil {
			log.Printf("error shutting down: %v", err)
		}
	}()
	if err := s.ListenAndServe(cfg.listen); err != nil {
		log.Fatalf("error in ListenAndServe: %v", err)
	}
}
