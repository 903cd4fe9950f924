package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"

	"nilan/interpreter"
	"nilan/lexer"
	"nilan/parser"
)

// replCmd implements the "repl" command: an interactive tree-walking
// session with readline-backed history and multi-line input.
type replCmd struct {
	debug bool
}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "Start a tree-walking REPL session" }
func (*replCmd) Usage() string {
	return `repl:
  Start an interactive REPL session backed by the tree-walking interpreter.
`
}
func (r *replCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&r.debug, "debug", false, "log scanner/resolver diagnostics to stderr")
}

func (r *replCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	fmt.Println("\nWelcome to Nilan!")

	rl, err := readline.New(">>> ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 Failed to start REPL: %v\n", err)
		return subcommands.ExitFailure
	}
	defer rl.Close()

	logger := newLogger(r.debug)
	interp := interpreter.Make()

	var buffer strings.Builder
	for {
		if buffer.Len() == 0 {
			rl.SetPrompt(">>> ")
		} else {
			rl.SetPrompt("... ")
		}

		line, err := rl.Readline()
		if err == io.EOF {
			return subcommands.ExitSuccess
		}
		if err == readline.ErrInterrupt {
			buffer.Reset()
			continue
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "💥 %s\n", err)
			return subcommands.ExitFailure
		}

		if strings.TrimSpace(line) == "exit" && buffer.Len() == 0 {
			return subcommands.ExitSuccess
		}

		if buffer.Len() > 0 {
			buffer.WriteString("\n")
		}
		buffer.WriteString(line)
		source := buffer.String()

		tokens, scanErr := lexer.New(source).Scan()
		if scanErr != nil {
			fmt.Println(scanErr)
			buffer.Reset()
			continue
		}

		if !isInputReady(tokens) {
			continue
		}

		_, parseErrs := parser.Make(tokens).Parse()
		if len(parseErrs) > 0 {
			if allParseErrorsAtEOF(parseErrs, tokens[len(tokens)-1]) {
				continue
			}
			reportErrors(parseErrs)
			buffer.Reset()
			continue
		}

		if errs := runTreeWalking(source, interp, logger); len(errs) > 0 {
			reportErrors(errs)
		}
		buffer.Reset()
	}
}
