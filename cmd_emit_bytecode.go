package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"nilan/compiler"
	"nilan/lexer"

	"github.com/google/subcommands"
)

// emitBytecodeCmd implements "emit": compile a source file's expression
// and write its disassembly to a ".dnic" file next to it, for diagnostic
// inspection of what the Pratt compiler produced.
type emitBytecodeCmd struct {
	stdout bool
}

func (*emitBytecodeCmd) Name() string { return "emit" }
func (*emitBytecodeCmd) Synopsis() string {
	return "Emit the bytecode disassembly for a source file"
}
func (*emitBytecodeCmd) Usage() string {
	return `nilan emit <file>`
}

func (cmd *emitBytecodeCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&cmd.stdout, "stdout", false, "print the disassembly to stdout instead of writing a .dnic file")
}

func (cmd *emitBytecodeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 File not provided\n")
		return subcommands.ExitUsageError
	}
	nilanFile := args[0]

	data, err := os.ReadFile(nilanFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 Failed to read file:\n\t%v\n", err)
		return subcommands.ExitFailure
	}

	tokens, err := lexer.New(string(data)).Scan()
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 Lexing error: %v\n", err)
		return subcommands.ExitFailure
	}

	c := compiler.New(tokens)
	chunk, err := c.Compile()
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 Compilation error:\n\t%v\n", err)
		return subcommands.ExitFailure
	}

	if cmd.stdout {
		fmt.Print(chunk.Disassemble(nilanFile))
		return subcommands.ExitSuccess
	}

	fileName := strings.TrimSuffix(nilanFile, ".nilan")
	if err := c.DumpBytecode(fileName); err != nil {
		fmt.Fprintf(os.Stderr, "💥 Dump bytecode error:\n\t%v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
