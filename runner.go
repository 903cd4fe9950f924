package main

import (
	"fmt"
	"os"

	"nilan/interpreter"
	"nilan/lexer"
	"nilan/parser"
	"nilan/resolver"

	"github.com/sirupsen/logrus"
)

// runTreeWalking scans, parses, resolves and interprets source against a
// TreeWalkInterpreter that lives across calls (so a REPL session keeps its
// globals between lines). Diagnostics go to logger at Debug level; parse
// and static errors are printed to stderr via the caller's reporting.
func runTreeWalking(source string, interp *interpreter.TreeWalkInterpreter, logger *logrus.Logger) []error {
	tokens, err := lexer.New(source).Scan()
	if err != nil {
		return []error{err}
	}
	logger.WithField("tokens", len(tokens)).Debug("scanned source")

	statements, parseErrors := parser.Make(tokens).Parse()
	if len(parseErrors) > 0 {
		return parseErrors
	}

	locals, staticErrors := resolver.New().Resolve(statements)
	if len(staticErrors) > 0 {
		return staticErrors
	}
	logger.WithField("locals", len(locals)).Debug("resolved scopes")

	interp.SetLocals(locals)
	interp.Interpret(statements)
	return nil
}

// reportErrors prints each error on its own line to stderr.
func reportErrors(errs []error) {
	for _, e := range errs {
		fmt.Fprintln(os.Stderr, e)
	}
}

// stringifyValue renders a VM result the same way println formats a
// tree-walking value: Number via Go's default float formatting, String
// verbatim, Bool as "true"/"false", Nil as "nil".
func stringifyValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "nil"
	case bool:
		if v {
			return "true"
		}
		return "false"
	case string:
		return v
	case float64:
		return fmt.Sprintf("%g", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
