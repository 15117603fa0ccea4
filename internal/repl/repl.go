// Package repl is a small line-oriented command loop on top of readline.
package repl

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pkg/errors"
)

// Handler runs one command. args excludes the trigger word.
type Handler func(args []string, w io.Writer) error

// LineHandler runs one command on the raw text after the trigger word,
// with surrounding space trimmed.
type LineHandler func(rest string, w io.Writer) error

type command struct {
	handler Handler
	line    LineHandler
	help    string
}

// REPL dispatches input lines to registered commands by their first word.
type REPL struct {
	commands map[string]command
	log      *slog.Logger
}

// New returns a REPL with no commands that logs to log.
func New(log *slog.Logger) *REPL {
	return &REPL{
		commands: make(map[string]command),
		log:      log,
	}
}

// AddCommand registers handler under trigger, along with its help string.
func (r *REPL) AddCommand(trigger string, handler Handler, help string) {
	if trigger == "" || handler == nil {
		return
	}
	r.commands[trigger] = command{handler: handler, help: help}
}

// AddLineCommand is like AddCommand, but handler sees the rest of the
// line as typed instead of split into words.
func (r *REPL) AddLineCommand(trigger string, handler LineHandler, help string) {
	if trigger == "" || handler == nil {
		return
	}
	r.commands[trigger] = command{line: handler, help: help}
}

func (r *REPL) triggers() []string {
	out := make([]string, 0, len(r.commands))
	for k := range r.commands {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// HelpString returns the usage of every command, sorted by trigger.
func (r *REPL) HelpString() string {
	var sb strings.Builder
	sb.WriteString("Commands\n")
	for _, k := range r.triggers() {
		fmt.Fprintf(&sb, "\t%s: %s\n", k, r.commands[k].help)
	}
	return sb.String()
}

// Execute runs one input line. Blank lines are ignored. A handler that
// panics has the panic returned as an error so the loop keeps going.
func (r *REPL) Execute(line string, w io.Writer) (err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	trigger := fields[0]
	if trigger == "help" {
		_, err = io.WriteString(w, r.HelpString())
		return err
	}
	cmd, ok := r.commands[trigger]
	if !ok {
		return errors.Errorf("invalid command: %s", trigger)
	}

	defer func() {
		if p := recover(); p != nil {
			if perr, ok := p.(error); ok {
				err = errors.WithMessage(perr, trigger)
			} else {
				err = errors.Errorf("%s: %v", trigger, p)
			}
		}
	}()

	r.log.Debug("execute", "command", trigger, "args", fields[1:])
	if cmd.line != nil {
		rest := strings.TrimSpace(line)[len(trigger):]
		return cmd.line(strings.TrimSpace(rest), w)
	}
	return cmd.handler(fields[1:], w)
}

// Config controls the interactive loop.
type Config struct {
	Prompt      string
	HistoryFile string
	Stdin       io.ReadCloser
	Stdout      io.Writer
}

// Run reads commands until EOF or an interrupt on an empty line.
func (r *REPL) Run(cfg Config) error {
	if cfg.Prompt == "" {
		cfg.Prompt = "> "
	}

	items := make([]readline.PrefixCompleterInterface, 0, len(r.commands)+1)
	items = append(items, readline.PcItem("help"))
	for _, k := range r.triggers() {
		items = append(items, readline.PcItem(k))
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          cfg.Prompt,
		HistoryFile:     cfg.HistoryFile,
		AutoComplete:    readline.NewPrefixCompleter(items...),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		Stdin:           cfg.Stdin,
		Stdout:          cfg.Stdout,
	})
	if err != nil {
		return errors.Wrap(err, "readline")
	}
	defer rl.Close()

	out := rl.Stdout()
	for {
		line, err := rl.Readline()
		switch {
		case err == readline.ErrInterrupt:
			if line == "" {
				return nil
			}
			continue
		case err == io.EOF:
			return nil
		case err != nil:
			return errors.Wrap(err, "readline")
		}

		if strings.TrimSpace(line) == "exit" {
			return nil
		}
		if err := r.Execute(line, out); err != nil {
			r.log.Warn("command failed", "line", line, "error", err)
			fmt.Fprintf(out, "Error: %v\n", err)
		}
	}
}
