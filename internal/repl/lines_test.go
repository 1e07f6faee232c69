package repl_test

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zephyrtronium/calc/internal/repl"
)

func TestLineReader(t *testing.T) {
	in := "1 + 1\r\n" + strings.Repeat("9", 5000) + "\n\n" + "é × 2\n" + "last"
	lr := repl.NewLineReader(strings.NewReader(in), 100)

	l, err := lr.Next()
	require.NoError(t, err)
	require.Equal(t, repl.Line{Text: "1 + 1", Runes: 5}, l)

	l, err = lr.Next()
	require.NoError(t, err)
	require.True(t, l.Truncated)
	require.Equal(t, 5000, l.Runes)
	require.Equal(t, strings.Repeat("9", 100), l.Text)

	l, err = lr.Next()
	require.NoError(t, err)
	require.Equal(t, repl.Line{}, l)

	l, err = lr.Next()
	require.NoError(t, err)
	require.Equal(t, repl.Line{Text: "é × 2", Runes: 5}, l)

	l, err = lr.Next()
	require.NoError(t, err)
	require.Equal(t, repl.Line{Text: "last", Runes: 4}, l)

	_, err = lr.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestLineReaderDefault(t *testing.T) {
	long := strings.Repeat("1", 2*repl.MaxLineBytes)
	lr := repl.NewLineReader(strings.NewReader(long+"\n2\n"), 0)
	l, err := lr.Next()
	require.NoError(t, err)
	require.True(t, l.Truncated)
	require.Equal(t, 2*repl.MaxLineBytes, l.Runes)
	require.Len(t, l.Text, repl.MaxLineBytes)

	l, err = lr.Next()
	require.NoError(t, err)
	require.Equal(t, "2", l.Text)
}
