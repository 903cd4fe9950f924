package compiler

import "fmt"

type SemanticError struct {
	Message string
}

func (e SemanticError) Error() string {
	return fmt.Sprintf("💥 SemanticError: %s", e.Message)
}

type DeveloperError struct {
	Message string
}

func (e DeveloperError) Error() string {
	return fmt.Sprintf("🤖 DeveloperError: %s", e.Message)
}

// SyntaxError is raised by the Pratt compiler when a token stream
// cannot be compiled: a missing prefix rule, an unexpected token where
// an infix operator was expected, or an unmatched delimiter.
type SyntaxError struct {
	Message string
	Line    int32
}

func (e SyntaxError) Error() string {
	return fmt.Sprintf("💥 SyntaxError line %d: %s", e.Line, e.Message)
}
