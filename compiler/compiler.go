// This package contains the bytecode compiler for Nilan. A Pratt parser is used to compile expressions directly
// to a Chunk; each token maps to a particular infix and prefix parsing rule with its presedence level.
package compiler

import (
	"nilan/token"
	"os"
)

// Precedence levels for the grammar's rules, ordered from lowest to highest.
// Highest rules will be parsed and compiled before lower presedence rules.
const (
	PREC_NONE = iota // LOWEST PRESEDENCE
	PREC_ASSIGNMENT
	PREC_EQUALITY // ==, !=, <, <=, >, >=
	PREC_TERM     // +,-
	PREC_FACTOR   // /,*
	PREC_UNARY    // !, -, // HIGHEST PRESEDENCE
)

type ParseFunc func(*Compiler)

// Defines the parsing behavior for a specific token type.
// It contains optional prefix and infix parsing functions, and the precedence level of the token.
type parseRule struct {
	prefix     ParseFunc
	infix      ParseFunc
	precedence int
}

// Compiler compiles a stream of `Token`s directly to a `Chunk` of
// bytecode to be executed by the VM. It covers expressions only:
// statement-level compilation (declarations, control flow) is out of
// scope for this component and for the VM it feeds (see package vm).
type Compiler struct {
	chunk        *Chunk
	readPosition int32

	totalTokens  int32
	tokens       []token.Token
	currentTok   token.Token
	nextTok      token.Token
	parsingRules map[token.TokenType]parseRule

	err error
}

// New creates a `Compiler` instance and returns a pointer to it.
func New(tokens []token.Token) *Compiler {
	c := &Compiler{
		chunk:       NewChunk(),
		totalTokens: int32(len(tokens)),
		tokens:      tokens,

		parsingRules: map[token.TokenType]parseRule{
			token.ADD:          {prefix: nil, infix: (*Compiler).binary, precedence: PREC_TERM},
			token.SUB:          {prefix: (*Compiler).unary, infix: (*Compiler).binary, precedence: PREC_TERM},
			token.DIV:          {prefix: nil, infix: (*Compiler).binary, precedence: PREC_FACTOR},
			token.MULT:         {prefix: nil, infix: (*Compiler).binary, precedence: PREC_FACTOR},
			token.NUMBER:       {prefix: (*Compiler).number, infix: nil, precedence: PREC_NONE},
			token.STRING:       {prefix: (*Compiler).string_, infix: nil, precedence: PREC_NONE},
			token.TRUE:         {prefix: (*Compiler).literal, infix: nil, precedence: PREC_NONE},
			token.FALSE:        {prefix: (*Compiler).literal, infix: nil, precedence: PREC_NONE},
			token.NIL:          {prefix: (*Compiler).literal, infix: nil, precedence: PREC_NONE},
			token.BANG:         {prefix: (*Compiler).unary, infix: nil, precedence: PREC_NONE},
			token.LPA:          {prefix: (*Compiler).grouping, infix: nil, precedence: PREC_NONE},
			token.EQUAL_EQUAL:  {prefix: nil, infix: (*Compiler).binary, precedence: PREC_EQUALITY},
			token.NOT_EQUAL:    {prefix: nil, infix: (*Compiler).binary, precedence: PREC_EQUALITY},
			token.LESS:         {prefix: nil, infix: (*Compiler).binary, precedence: PREC_EQUALITY},
			token.LESS_EQUAL:   {prefix: nil, infix: (*Compiler).binary, precedence: PREC_EQUALITY},
			token.LARGER:       {prefix: nil, infix: (*Compiler).binary, precedence: PREC_EQUALITY},
			token.LARGER_EQUAL: {prefix: nil, infix: (*Compiler).binary, precedence: PREC_EQUALITY},
		},
	}
	return c
}

// Compiles a stream of `Token`s into a `Chunk` containing exactly one
// compiled expression, terminated with OP_RETURN.
func (c *Compiler) Compile() (chunk *Chunk, err error) {
	defer func() {
		if r := recover(); r != nil {
			if c.err == nil {
				c.err = SemanticError{Message: "unrecoverable compiler error"}
			}
			err = c.err
		}
	}()

	c.parsePresedence(PREC_ASSIGNMENT)
	if c.err != nil {
		return c.chunk, c.err
	}
	c.chunk.Write(OpReturn, c.currentTok.Line)
	return c.chunk, nil
}

// DumpBytecode writes the compiled chunk's disassembly to a file.
func (c *Compiler) DumpBytecode(filePath string) error {
	if filePath == "" {
		filePath = "bytecode.dnic"
	} else {
		filePath = filePath + ".dnic"
	}
	fDescriptor, err := os.Create(filePath)
	if err != nil {
		return SemanticError{Message: "error creating nilan bytecode file: " + err.Error()}
	}
	defer fDescriptor.Close()
	_, writeErr := fDescriptor.WriteString(c.chunk.Disassemble(filePath))
	return writeErr
}

// Disassemble returns the human-readable instruction listing for the
// compiled chunk.
func (c *Compiler) Disassemble(name string) string {
	return c.chunk.Disassemble(name)
}

// Retrieves the parsing rule associated with the given token type.
func (c *Compiler) getParseRule(tokenType token.TokenType) parseRule {
	rule, ok := c.parsingRules[tokenType]
	if !ok {
		return parseRule{prefix: nil, infix: nil}
	}
	return rule
}

// Parses expressions with the provided precedence level.
// It advances the token stream, applies the parse rule, and continues while
// the next token precedence is higher or equal.
func (c *Compiler) parsePresedence(presedence int) {
	c.advance()

	rule := c.getParseRule(c.currentTok.TokenType)
	if rule.prefix == nil {
		c.fail(SyntaxError{Message: "expected expression", Line: c.currentTok.Line})
		return
	}

	rule.prefix(c)

	for c.getParseRule(c.nextTok.TokenType).precedence >= presedence && !c.isFinished() {
		c.advance()
		rule := c.getParseRule(c.currentTok.TokenType)
		if rule.infix == nil {
			c.fail(SyntaxError{Message: "invalid syntax", Line: c.currentTok.Line})
			return
		}
		rule.infix(c)
	}
}

// Handles parenthesized expressions.
func (c *Compiler) grouping() {
	c.parsePresedence(PREC_ASSIGNMENT)
	c.consume(token.RPA, "invalid syntax. Perhaps you forgot ')'?")
}

// Parses and emits code for binary operators (arithmetic and comparison).
// Comparisons the VM does not implement directly (<=, >=, !=) are
// synthesized from Less/Greater/Equal plus Not.
func (c *Compiler) binary() {
	operator := c.currentTok
	rule := c.getParseRule(operator.TokenType)
	// +1 because each binary operator's right-hand presedence is one
	// level higher than its own
	c.parsePresedence(rule.precedence + 1) // compile right hand expression (operand) first
	switch operator.TokenType {
	case token.SUB:
		c.chunk.Write(OpSubtract, operator.Line)
	case token.ADD:
		c.chunk.Write(OpAdd, operator.Line)
	case token.MULT:
		c.chunk.Write(OpMultiply, operator.Line)
	case token.DIV:
		c.chunk.Write(OpDivide, operator.Line)
	case token.EQUAL_EQUAL:
		c.chunk.Write(OpEqual, operator.Line)
	case token.NOT_EQUAL:
		c.chunk.Write(OpEqual, operator.Line)
		c.chunk.Write(OpNot, operator.Line)
	case token.LESS:
		c.chunk.Write(OpLess, operator.Line)
	case token.LESS_EQUAL:
		c.chunk.Write(OpGreater, operator.Line)
		c.chunk.Write(OpNot, operator.Line)
	case token.LARGER:
		c.chunk.Write(OpGreater, operator.Line)
	case token.LARGER_EQUAL:
		c.chunk.Write(OpLess, operator.Line)
		c.chunk.Write(OpNot, operator.Line)
	}
}

// Parses and emits code for unary operators (!,-). Fixes the ancestor's
// stub, which emitted nothing for "!": Bang now emits OP_NOT.
func (c *Compiler) unary() {
	operator := c.currentTok
	c.parsePresedence(PREC_UNARY) // compile right hand expression (operand) first
	switch operator.TokenType {
	case token.SUB:
		c.chunk.Write(OpNegate, operator.Line)
	case token.BANG:
		c.chunk.Write(OpNot, operator.Line)
	}
}

// parses numeric literals and emits their bytecode representation.
func (c *Compiler) number() {
	tok := c.currentTok
	index := c.chunk.AddConstant(tok.Literal)
	c.chunk.WriteOperand(OpConstant, index, tok.Line)
}

// parses string literals and emits their bytecode representation.
func (c *Compiler) string_() {
	tok := c.currentTok
	index := c.chunk.AddConstant(tok.Literal)
	c.chunk.WriteOperand(OpConstant, index, tok.Line)
}

// parses true/false/nil and emits the corresponding nullary opcode.
func (c *Compiler) literal() {
	switch c.currentTok.TokenType {
	case token.TRUE:
		c.chunk.Write(OpTrue, c.currentTok.Line)
	case token.FALSE:
		c.chunk.Write(OpFalse, c.currentTok.Line)
	case token.NIL:
		c.chunk.Write(OpNil, c.currentTok.Line)
	}
}

// isFinished returns true if the compiler has reached the end of token stream (EOF).
func (c *Compiler) isFinished() bool {
	return c.currentTok.TokenType == token.EOF
}

// advance moves the compiler to the next token in the input stream.
// It updates currentTok and nextTok accordingly.
func (c *Compiler) advance() {
	if c.isFinished() {
		return
	}
	c.currentTok = c.tokens[c.readPosition]
	c.readPosition++
	if c.readPosition < c.totalTokens {
		c.nextTok = c.tokens[c.readPosition]
	}
}

// advances the compiler to the next token if the next token's type
// matches the provided `tokenType`. If it does not, a compile error is recorded.
func (c *Compiler) consume(tokenType token.TokenType, errorMsg string) {
	if c.nextTok.TokenType == tokenType {
		c.advance()
		return
	}
	c.fail(SyntaxError{Message: errorMsg, Line: c.nextTok.Line})
}

func (c *Compiler) fail(err error) {
	if c.err == nil {
		c.err = err
	}
	panic(err)
}
