package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"nilan/compiler"
	"nilan/lexer"
	"nilan/parser"
	"nilan/token"
	"nilan/vm"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"
)

// replCompiledCmd implements "replc": a REPL backed by the bytecode
// compiler and stack VM. Each accepted line is one expression; its value
// is printed the way println would render it.
type replCompiledCmd struct {
	disassemble bool
	debug       bool
}

func (*replCompiledCmd) Name() string     { return "replc" }
func (*replCompiledCmd) Synopsis() string { return "Start a VM-backed REPL session" }
func (*replCompiledCmd) Usage() string {
	return `replc:
  Start an interactive REPL session backed by the bytecode compiler and VM.
`
}

func (cmd *replCompiledCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&cmd.disassemble, "disassemble", false, "print the compiled chunk's disassembly before running it")
	f.BoolVar(&cmd.debug, "debug", false, "log VM stack traces to stderr")
}

func (cmd *replCompiledCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	fmt.Println("\nWelcome to the Nilan programming language (VM backend)!")

	rl, err := readline.New(">>> ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 Failed to start REPL: %v\n", err)
		return subcommands.ExitFailure
	}
	defer rl.Close()

	logger := newLogger(cmd.debug)
	machine := vm.New()
	machine.SetDebug(cmd.debug)

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

		chunk, compileErr := compiler.New(tokens).Compile()
		if compileErr != nil {
			if isCompileErrorAtEOF(compileErr, tokens[len(tokens)-1]) {
				continue
			}
			fmt.Fprintln(os.Stderr, compileErr)
			buffer.Reset()
			continue
		}
		logger.WithField("instructions", chunk.Len()).Debug("compiled chunk")

		if cmd.disassemble {
			fmt.Print(chunk.Disassemble("repl"))
		}

		value, runErr := machine.Run(chunk)
		if runErr != nil {
			fmt.Fprintln(os.Stderr, runErr)
			buffer.Reset()
			continue
		}
		fmt.Println(stringifyValue(value))
		buffer.Reset()
	}
}

// isInputReady checks if the input is ready to be parsed and executed. It
// checks for balanced braces, and also checks if the last non-EOF token
// is an operator or a keyword that expects more input.
func isInputReady(tokens []token.Token) bool {
	braceBalance := 0
	for _, tok := range tokens {
		switch tok.TokenType {
		case token.LCUR:
			braceBalance++
		case token.RCUR:
			braceBalance--
		}
	}
	if braceBalance > 0 {
		return false
	}

	last := lastNonEOF(tokens)
	if last == nil {
		return true
	}

	switch last.TokenType {
	case token.ASSIGN,
		token.ADD,
		token.SUB,
		token.MULT,
		token.DIV,
		token.BANG,
		token.EQUAL_EQUAL,
		token.NOT_EQUAL,
		token.LESS,
		token.LESS_EQUAL,
		token.LARGER,
		token.LARGER_EQUAL,
		token.COMMA,
		token.LPA,
		token.LCUR,
		token.IF,
		token.ELSE,
		token.WHILE,
		token.FUNC,
		token.VAR,
		token.AND,
		token.OR:
		return false
	}

	return true
}

// lastNonEOF returns the last non-EOF token, or nil if every token is EOF.
func lastNonEOF(tokens []token.Token) *token.Token {
	for i := len(tokens) - 1; i >= 0; i-- {
		if tokens[i].TokenType != token.EOF {
			return &tokens[i]
		}
	}
	return nil
}

// allParseErrorsAtEOF reports whether every parse error is a syntax error
// positioned at the EOF token, meaning the user likely has not finished
// typing their statement yet.
func allParseErrorsAtEOF(parseErrs []error, eof token.Token) bool {
	if len(parseErrs) == 0 {
		return false
	}
	for _, parseErr := range parseErrs {
		syntaxErr, ok := parseErr.(parser.SyntaxError)
		if !ok || syntaxErr.Line != eof.Line {
			return false
		}
	}
	return true
}

// isCompileErrorAtEOF reports whether a Pratt-compiler SyntaxError was
// raised at the line of the final (EOF) token, meaning the REPL should
// keep prompting for continuation lines rather than report a failure.
func isCompileErrorAtEOF(err error, eof token.Token) bool {
	syntaxErr, ok := err.(compiler.SyntaxError)
	if !ok {
		return false
	}
	return syntaxErr.Line == eof.Line
}
