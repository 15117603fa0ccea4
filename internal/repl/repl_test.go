package repl

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func newTestREPL() *REPL {
	r := New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	r.AddCommand("echo", func(args []string, w io.Writer) error {
		_, err := io.WriteString(w, strings.Join(args, " ")+"\n")
		return err
	}, "echo args")
	r.AddCommand("fail", func([]string, io.Writer) error { return errBoom }, "always fails")
	r.AddCommand("panic", func([]string, io.Writer) error { panic(errBoom) }, "always panics")
	r.AddCommand("", func([]string, io.Writer) error { return nil }, "ignored")
	r.AddLineCommand("say", func(rest string, w io.Writer) error {
		_, err := io.WriteString(w, "["+rest+"]\n")
		return err
	}, "print the line as typed")
	return r
}

func TestExecute(t *testing.T) {
	r := newTestREPL()
	var out bytes.Buffer

	require.NoError(t, r.Execute("  echo  a   b ", &out))
	assert.Equal(t, "a b\n", out.String())

	require.NoError(t, r.Execute("   ", &out))

	out.Reset()
	require.NoError(t, r.Execute("  say  a  \"b   c\"\t ", &out))
	require.NoError(t, r.Execute("say", &out))
	assert.Equal(t, "[a  \"b   c\"]\n[]\n", out.String())

	err := r.Execute("nope", &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid command: nope")

	require.ErrorIs(t, r.Execute("fail", &out), errBoom)

	err = r.Execute("panic now", &out)
	require.ErrorIs(t, err, errBoom)
	assert.Contains(t, err.Error(), "panic")
}

func TestHelpString(t *testing.T) {
	r := newTestREPL()
	var out bytes.Buffer
	require.NoError(t, r.Execute("help", &out))

	assert.Equal(t, "Commands\n\techo: echo args\n\tfail: always fails\n\tpanic: always panics\n\tsay: print the line as typed\n", out.String())
	assert.Equal(t, out.String(), r.HelpString())
}
