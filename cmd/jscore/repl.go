package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"unicode"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/example/jscore/interpreter"
	"github.com/example/jscore/runtime"
)

const replHelp = `Commands:
  .help    show this message
  .clear   discard all bindings and start a fresh realm
  .exit    leave the REPL (or press Ctrl+D)
`

var replKeywords = []string{
	"break", "case", "catch", "class", "const", "continue", "debugger",
	"default", "delete", "do", "else", "false", "finally", "for",
	"function", "if", "in", "instanceof", "let", "new", "null", "return",
	"switch", "this", "throw", "true", "try", "typeof", "undefined", "var",
	"void", "while",
}

func newReplCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive session",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return a.repl()
		},
	}
}

// repl reads statements until EOF or .exit. Input that ends mid-statement
// is buffered and continued on the next line.
func (a *app) repl() error {
	interp := a.newInterpreter()
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(completer(interp))

	if a.cfg.HistoryFile != "" {
		if f, err := os.Open(a.cfg.HistoryFile); err == nil {
			_, _ = line.ReadHistory(f)
			f.Close()
		}
		defer a.saveHistory(line)
	}

	fmt.Fprintf(a.stdout, "jscore %s\nType .help for commands.\n", version)

	var buf strings.Builder
	for {
		prompt := "> "
		if buf.Len() > 0 {
			prompt = "... "
		}
		input, err := line.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			buf.Reset()
			continue
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(a.stdout)
			return nil
		}
		if err != nil {
			return err
		}

		if buf.Len() == 0 {
			switch strings.TrimSpace(input) {
			case "":
				continue
			case ".exit":
				return nil
			case ".help":
				fmt.Fprint(a.stdout, replHelp)
				continue
			case ".clear":
				interp = a.newInterpreter()
				line.SetCompleter(completer(interp))
				continue
			}
		} else {
			buf.WriteByte('\n')
		}
		buf.WriteString(input)

		src := buf.String()
		if incomplete(src) {
			continue
		}
		buf.Reset()
		line.AppendHistory(src)

		v, err := a.evalLine(interp, src)
		if err != nil {
			a.report(err)
			continue
		}
		fmt.Fprintln(a.stdout, runtime.Inspect(v))
	}
}

// evalLine runs one entry. Ctrl+C interrupts the entry, not the session.
func (a *app) evalLine(interp *interpreter.Interpreter, src string) (*runtime.Value, error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return interp.EvalFile(ctx, "<repl>", src)
}

func (a *app) saveHistory(line *liner.State) {
	f, err := os.Create(a.cfg.HistoryFile)
	if err != nil {
		a.log.Warn("cannot write history", "file", a.cfg.HistoryFile, "err", err)
		return
	}
	defer f.Close()
	if _, err := line.WriteHistory(f); err != nil {
		a.log.Warn("cannot write history", "file", a.cfg.HistoryFile, "err", err)
	}
}

// incomplete reports whether src fails to parse only because it ends early.
func incomplete(src string) bool {
	_, err := interpreter.Parse("<repl>", src)
	var se *interpreter.SyntaxError
	return errors.As(err, &se) && strings.Contains(se.Message, "end of input")
}

// completer offers global names and keywords for the identifier under the
// cursor.
func completer(interp *interpreter.Interpreter) liner.Completer {
	return func(line string) []string {
		start := len(line)
		for start > 0 {
			r := rune(line[start-1])
			if r != '_' && r != '$' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				break
			}
			start--
		}
		prefix := line[start:]
		if prefix == "" {
			return nil
		}
		seen := map[string]bool{}
		var out []string
		add := func(name string) {
			if strings.HasPrefix(name, prefix) && !seen[name] {
				seen[name] = true
				out = append(out, line[:start]+name)
			}
		}
		for k := range interp.Realm().GlobalObject.OwnKeys() {
			if !k.IsSymbol() {
				add(k.Name())
			}
		}
		for _, kw := range replKeywords {
			add(kw)
		}
		sort.Strings(out)
		return out
	}
}
