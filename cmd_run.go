package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"nilan/compiler"
	"nilan/interpreter"
	"nilan/lexer"
	"nilan/vm"
)

// runCmd implements the "run" command: execute a source file with
// either backend, selected by --runner.
type runCmd struct {
	runner      string
	disassemble bool
	debug       bool
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "Execute Nilan code from a source file" }
func (*runCmd) Usage() string {
	return `run <file> [--runner tree-walking|vm]:
  Execute Nilan code with the chosen backend.
`
}
func (r *runCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&r.runner, "runner", "tree-walking", "backend to execute with: tree-walking or vm")
	f.BoolVar(&r.disassemble, "disassemble", false, "print the compiled chunk's disassembly before running it (vm runner only)")
	f.BoolVar(&r.debug, "debug", false, "log backend diagnostics to stderr")
}

func (r *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 File not provided\n")
		return subcommands.ExitUsageError
	}
	// Flags may also follow the file name, as in "run <file> --runner vm".
	if err := f.Parse(args[1:]); err != nil {
		return subcommands.ExitUsageError
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 Failed to read file: %v\n", err)
		return subcommands.ExitFailure
	}

	switch r.runner {
	case "tree-walking":
		logger := newLogger(r.debug)
		interp := interpreter.Make()
		if errs := runTreeWalking(string(data), interp, logger); len(errs) > 0 {
			reportErrors(errs)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess

	case "vm":
		return r.runCompiled(args[0], string(data))

	default:
		fmt.Fprintf(os.Stderr, "💥 Unknown runner %q: expected tree-walking or vm\n", r.runner)
		return subcommands.ExitUsageError
	}
}

// runCompiled lexes, compiles, and executes source on the stack VM.
func (r *runCmd) runCompiled(fileName, source string) subcommands.ExitStatus {
	tokens, err := lexer.New(source).Scan()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	chunk, err := compiler.New(tokens).Compile()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if r.disassemble {
		fmt.Print(chunk.Disassemble(fileName))
	}

	logger := newLogger(r.debug)
	logger.WithField("instructions", chunk.Len()).Debug("compiled chunk")

	machine := vm.New()
	machine.SetDebug(r.debug)
	value, err := machine.Run(chunk)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	fmt.Println(stringifyValue(value))
	return subcommands.ExitSuccess
}
