package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/yndnr/lingvo-go/internal/telemetry/logger"
)

// ErrUnknownCommand is returned by an Executor that does not recognize the
// first word; the shell then lists matching commands.
var ErrUnknownCommand = errors.New("unknown command")

// Executor runs one parsed command line.
type Executor func(ctx context.Context, args []string) error

// Config configures a REPL.
type Config struct {
	Input  io.Reader
	Output io.Writer
	// Prompt is evaluated before every line so it can reflect the session.
	Prompt    func() string
	Execute   Executor
	Completer *Completer
	History   *History
	Logger    logger.Logger
}

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	input     io.Reader
	output    io.Writer
	prompt    func() string
	execute   Executor
	completer *Completer
	history   *History
	log       logger.Logger
}

// New creates a new REPL instance.
func New(cfg Config) *REPL {
	r := &REPL{
		input:     cfg.Input,
		output:    cfg.Output,
		prompt:    cfg.Prompt,
		execute:   cfg.Execute,
		completer: cfg.Completer,
		history:   cfg.History,
		log:       cfg.Logger,
	}
	if r.prompt == nil {
		r.prompt = func() string { return "lingvo> " }
	}
	if r.completer == nil {
		r.completer = NewCompleter()
	}
	if r.history == nil {
		r.history = NewHistory("", 0)
	}
	if r.log == nil {
		r.log = logger.Discard()
	}
	return r
}

// Run reads lines until exit, EOF or ctx cancellation. Command errors are
// printed and the loop continues.
func (r *REPL) Run(ctx context.Context) error {
	if err := r.history.Load(); err != nil {
		r.log.Warn("failed to load history", "error", err)
	}
	defer func() {
		if err := r.history.Save(); err != nil {
			r.log.Warn("failed to save history", "error", err)
		}
	}()

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		reader := bufio.NewReader(r.input)
		for {
			line, err := reader.ReadString('\n')
			if line != "" || err == nil {
				select {
				case lines <- line:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				readErr <- err
				return
			}
		}
	}()

	for {
		fmt.Fprint(r.output, r.prompt())

		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(r.output)
			return nil
		case err := <-readErr:
			fmt.Fprintln(r.output)
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		case line = <-lines:
		}

		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		r.history.Add(line)

		args, err := Split(line)
		if err != nil {
			fmt.Fprintf(r.output, "Error: %v\n", err)
			continue
		}

		switch args[0] {
		case "exit", "quit":
			return nil
		case "history":
			for i, entry := range r.history.Entries() {
				fmt.Fprintf(r.output, "%4d  %s\n", i+1, entry)
			}
			continue
		case "help":
			if len(args) > 1 {
				r.suggest(strings.Join(args[1:], " "))
				continue
			}
		}

		if err := r.execute(ctx, args); err != nil {
			fmt.Fprintf(r.output, "Error: %v\n", err)
			if errors.Is(err, ErrUnknownCommand) {
				r.suggest(args[0])
			}
		}
	}
}

func (r *REPL) suggest(prefix string) {
	matches := r.completer.Complete(prefix)
	if len(matches) == 0 {
		return
	}
	fmt.Fprintln(r.output, "Commands:")
	for _, m := range matches {
		fmt.Fprintf(r.output, "  %s\n", m)
	}
}
