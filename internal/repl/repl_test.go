package repl_test

import (
	"bytes"
	"io"
	"os"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zephyrtronium/calc/internal/history"
	"github.com/zephyrtronium/calc/internal/repl"
)

var epoch = time.Date(2024, time.March, 9, 14, 30, 0, 0, time.UTC)

func fixed() time.Time { return epoch }

// session runs a REPL over the given input and returns its output without the
// welcome banner.
func session(t *testing.T, input string, opts ...repl.Option) string {
	t.Helper()
	var out bytes.Buffer
	opts = append([]repl.Option{repl.Colour(false), repl.History(history.New(0, history.Clock(fixed)))}, opts...)
	r := repl.New(strings.NewReader(input), &out, opts...)
	require.NoError(t, r.Run())
	s := out.String()
	i := strings.Index(s, repl.Prompt)
	require.GreaterOrEqual(t, i, 0, "no prompt in output %q", s)
	return s[i:]
}

func TestWelcome(t *testing.T) {
	var out bytes.Buffer
	r := repl.New(strings.NewReader(""), &out, repl.Colour(false))
	require.NoError(t, r.Run())
	s := out.String()
	require.True(t, strings.HasPrefix(s, strings.Repeat("=", 60)+"\n"))
	require.Contains(t, s, "Type 'help' for available commands\n")
	require.True(t, strings.HasSuffix(s, repl.Prompt+"\nGoodbye!\n"))
}

func TestExpressions(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"add", "2 + 3", "= 5"},
		{"prec", "2 + 3 * 4", "= 14"},
		{"paren", "10 * (5 - 2)", "= 30"},
		{"div", "10 / 3", "= 3.3333333333"},
		{"half", "7 / 2", "= 3.5"},
		{"pow", "2 ** 8", "= 256"},
		{"neg", "-5 + 3", "= -2"},
		{"neg-paren", "(-2) * 3", "= -6"},
		{"mod", "-7 % 3", "= -1"},
		{"decimal", "0.1 + 0.2", "= 0.3"},
		{"div-zero", "5 / 0", "Error: 3: division by zero"},
		{"mod-zero", "5 % 0", "Error: 3: modulo by zero"},
		{"paren-mismatch", "(2 + 3", `Error: 1: mismatched parentheses "("`},
		{"bad-char", "2 $ 3", `Error: 3: unexpected character "$"`},
		{"op-end", "2 +", "Error: "},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := session(t, c.in+"\n")
			require.True(t, strings.HasPrefix(got, repl.Prompt+c.want), "output %q does not start with %q", got, c.want)
		})
	}
}

func TestBlankLines(t *testing.T) {
	got := session(t, "\n   \n\t\n")
	require.Equal(t, strings.Repeat(repl.Prompt, 4)+"\nGoodbye!\n", got)
}

func TestExit(t *testing.T) {
	for _, cmd := range []string{"exit", "quit", "EXIT", "Quit", "  exit  "} {
		t.Run(cmd, func(t *testing.T) {
			got := session(t, cmd+"\n2 + 2\n")
			require.Equal(t, repl.Prompt+"Goodbye!\n", got)
		})
	}
}

func TestHistory(t *testing.T) {
	got := session(t, "history\n2 + 3\n1 / 3\n5 / 0\nhistory\nclear\nhistory\nexit\n")
	want := repl.Prompt + "No history available.\n" +
		repl.Prompt + "= 5\n" +
		repl.Prompt + "= 0.3333333333\n" +
		repl.Prompt + "Error: 3: division by zero\n" +
		repl.Prompt + "\nCalculation History:\n" +
		strings.Repeat("-", 60) + "\n" +
		"[2024-03-09 14:30:00] 2 + 3 = 5\n" +
		"[2024-03-09 14:30:00] 1 / 3 = 0.3333333333\n" +
		strings.Repeat("-", 60) + "\n" +
		"Total entries: 2\n\n" +
		repl.Prompt + "History cleared.\n" +
		repl.Prompt + "No history available.\n" +
		repl.Prompt + "Goodbye!\n"
	require.Equal(t, want, got)
}

func TestHistoryLimit(t *testing.T) {
	h := history.New(2, history.Clock(fixed))
	session(t, "1\n2\n3\n", repl.History(h))
	all := h.All()
	require.Len(t, all, 2)
	require.Equal(t, "2", all[0].Expr)
	require.Equal(t, "3", all[1].Expr)
}

func TestHelp(t *testing.T) {
	got := session(t, "HELP\n")
	for _, s := range []string{"Available Commands:", "history  - Display calculation history", "**  - Power (exponentiation)", "(-2) * 3"} {
		require.Contains(t, got, s)
	}
}

func TestTooLong(t *testing.T) {
	expr := strings.Repeat("1+", 10) + "1"
	got := session(t, expr+"\n", repl.MaxLength(20))
	require.True(t, strings.HasPrefix(got, repl.Prompt+"Error: Expression too long (21 characters). Maximum allowed: 20\n"), "got %q", got)

	h := history.New(0)
	session(t, strings.Repeat("1+", 600)+"1\n", repl.History(h))
	require.True(t, h.Empty())
}

func TestHugeLine(t *testing.T) {
	n := 2 * repl.MaxLineBytes
	h := history.New(0)
	got := session(t, strings.Repeat("1", n)+"\n1 + 1\nhistory\n", repl.History(h))
	want := repl.Prompt + "Error: Expression too long (2097152 characters). Maximum allowed: 1000\n" +
		repl.Prompt + "= 2\n"
	require.True(t, strings.HasPrefix(got, want), "got %.200q", got)
	require.Equal(t, 1, h.Len())
	require.Equal(t, "1 + 1", h.All()[0].Expr)
}

func TestPlaces(t *testing.T) {
	got := session(t, "2 / 3\n", repl.Places(3))
	require.True(t, strings.HasPrefix(got, repl.Prompt+"= 0.667\n"), "got %q", got)
}

func TestColour(t *testing.T) {
	var out bytes.Buffer
	r := repl.New(strings.NewReader("1 + 1\n"), &out, repl.Colour(true))
	require.NoError(t, r.Run())
	require.Contains(t, out.String(), "\x1b[")

	out.Reset()
	r = repl.New(strings.NewReader("1 + 1\n"), &out, repl.Colour(false))
	require.NoError(t, r.Run())
	require.NotContains(t, out.String(), "\x1b[")
}

func TestExec(t *testing.T) {
	var out bytes.Buffer
	r := repl.New(strings.NewReader(""), &out, repl.Colour(false))
	r.Exec("6 * 7")
	require.Equal(t, "= 42\n", out.String())
	require.Equal(t, 1, r.History().Len())
}

// syncBuffer is a bytes.Buffer safe for concurrent use.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestInterrupt(t *testing.T) {
	pr, pw := io.Pipe()
	var out syncBuffer
	sigs := make(chan os.Signal, 1)
	r := repl.New(pr, &out, repl.Colour(false), repl.Interrupts(sigs))
	errs := make(chan error, 1)
	go func() { errs <- r.Run() }()

	require.Eventually(t, func() bool { return strings.Contains(out.String(), repl.Prompt) }, time.Second, time.Millisecond)
	sigs <- syscall.SIGINT
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "\nUse 'exit' or 'quit' to leave the calculator.\n"+repl.Prompt)
	}, time.Second, time.Millisecond)

	_, err := io.WriteString(pw, "2 ** 10\nexit\n")
	require.NoError(t, err)
	require.NoError(t, <-errs)
	pw.Close()
	require.Contains(t, out.String(), "= 1024\n")
	require.True(t, strings.HasSuffix(out.String(), "Goodbye!\n"))
}
