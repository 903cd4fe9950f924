// Recursive descent parser
// https://en.wikipedia.org/wiki/Recursive_descent_parser

//	A Recursive descent parser is a top-down parser because it starts from the top
//
// grammar rule and works its way down in to the nested sub-experessions before reaching
// the leaves of the syntax tree (terminal rules)
package parser

import (
	"fmt"
	"nilan/ast"
	"nilan/token"
)

var comparisonTokenTypes = []token.TokenType{
	token.LARGER,
	token.LARGER_EQUAL,
	token.LESS,
	token.LESS_EQUAL,
}

var equalityTokenTypes = []token.TokenType{
	token.NOT_EQUAL,
	token.EQUAL_EQUAL,
}

var termTokenTypes = []token.TokenType{
	token.SUB,
	token.ADD,
}

var factorExpressionTypes = []token.TokenType{
	token.MULT,
	token.DIV,
}

var unaryExpressionTypes = []token.TokenType{
	token.BANG,
	token.SUB,
}

// token.ReservedNotImplemented is checked wherever a declaration or a primary
// expression begins, so that "for", "class", "return", "this", "super" and
// the bare "print" keyword are recognised and rejected with a clear message
// instead of silently falling through to "unexpected token".
func reservedNotImplementedError(tok token.Token) error {
	return CreateSyntaxError(ReservedKeywordNotImplemented, tok.Line, tok.Column,
		fmt.Sprintf("'%s' is reserved but not implemented", tok.Lexeme))
}

type Parser struct {
	tokens   []token.Token
	position int

	// nextId is a per-parser-instance monotone counter used to tag every
	// Variable and Assign node with a stable id, the key into the resolver's
	// Locals map. Scoping the counter to the Parser (rather than a package
	// global) keeps two independent parses, e.g. successive REPL entries,
	// from colliding or leaking state into each other.
	nextId int
}

// NOTE: The parsers position is always one unit ahead of the
// current token

// Initializes and returns a new Parser instance.
//
// Parameters:
//   - tokens: []token.Token
//     The tokens created by the lexer.
//
// Returns:
//   - *Parser: A pointer to a newly created Parser instance.
func Make(tokens []token.Token) *Parser {
	return &Parser{
		tokens:   tokens,
		position: 0,
	}
}

// newId returns the next fresh, monotone AST node id for this parser.
func (parser *Parser) newId() int {
	id := parser.nextId
	parser.nextId++
	return id
}

// Print prints the AST as prettified JSON to standard output.
func (parser *Parser) Print(statements []ast.Stmt) {
	_, err := PrintASTJSON(statements)
	if err != nil {
		fmt.Println("error producing AST JSON:", err)
	}
}

// PrintToFile writes the AST for the provided statements to a .json file at the given path.
func (parser *Parser) PrintToFile(statements []ast.Stmt, path string) error {
	return WriteASTJSONToFile(statements, path)
}

// Peeks the token at the parser's current position,
// without advancing the parser's position.
// Returns:
//   - token.Token: The token at the parser's current position
func (parser *Parser) peek() token.Token {
	return parser.tokens[parser.position]
}

// Retrieves the token at the parser's previous position
// (position -1)
//
// Returns:
//   - token.Token: The token at the previous position
func (parser *Parser) previous() token.Token {
	return parser.tokens[parser.position-1]
}

// Increments the parser's position by one unit and
// consumes the current token
//
// Returns:
//   - token.Token: The token at the previous position
func (parser *Parser) advance() token.Token {
	if !parser.isFinished() {
		parser.position++
	}
	return parser.previous()
}

// Determines of the parser has finished scanning all the tokens.
//
// Returns:
//   - bool: true if the parser has finished scanning, false otherwise
func (parser *Parser) isFinished() bool {
	tok := parser.peek()
	return tok.TokenType == token.EOF
}

// Determines if the provided tokenType matches the TokenType
// at the parser's current position
//
// Returns
//   - bool: true if the TokenType matches, false otherwise
func (parser *Parser) checkType(tokeType token.TokenType) bool {
	if parser.isFinished() {
		return false
	}
	tok := parser.peek()
	return tok.TokenType == tokeType
}

// Determines if the TokenType at the current
// position matches any of the provided tokenTypes. If a match is
// found the parser increments its position and consumes the
// current token
//
// Returns
//   - bool: true if a match was found, false otherwise
func (parser *Parser) isMatch(tokenTypes []token.TokenType) bool {
	for i := range tokenTypes {
		tokenType := tokenTypes[i]

		if parser.checkType(tokenType) {
			parser.advance()
			return true
		}
	}
	return false
}

// Parse parses the entire token stream into a slice of Stmt (statement) nodes,
// continuing until the end of input. Errors during parsing are collected
// but parsing continues to find additional errors where possible, resuming
// at the next declaration boundary via synchronize.
//
// Returns:
//   - []Stmt: the parsed statements, or an empty slice if any error occurred.
//   - []error: all errors that occurred during parsing.
func (parser *Parser) Parse() ([]ast.Stmt, []error) {
	statements := []ast.Stmt{}
	errors := []error{}

	for {
		if parser.isFinished() {
			break
		}
		statement, err := parser.declaration()
		if err != nil {
			errors = append(errors, err)
			parser.synchronize()
			continue
		}
		statements = append(statements, statement)
	}

	if len(errors) > 0 {
		return []ast.Stmt{}, errors
	}
	return statements, errors
}

// synchronize discards tokens until it finds a likely statement boundary:
// the token just consumed was a ';', or the upcoming token starts a new
// declaration ("fun" or "var"). Parsing resumes from there.
func (parser *Parser) synchronize() {
	parser.advance()
	for !parser.isFinished() {
		if parser.previous().TokenType == token.SEMICOLON {
			return
		}
		switch parser.peek().TokenType {
		case token.FUNC, token.VAR:
			return
		}
		parser.advance()
	}
}

// declaration parses a declaration: a variable declaration, a function
// declaration, or (falling through) any other statement.
//
// Returns the parsed statement (Stmt) or an error if parsing fails.
func (parser *Parser) declaration() (ast.Stmt, error) {
	if tok := parser.peek(); token.ReservedNotImplemented[tok.TokenType] {
		parser.advance()
		return nil, reservedNotImplementedError(tok)
	}
	if parser.isMatch([]token.TokenType{token.VAR}) {
		return parser.variableDeclaration()
	}
	if parser.isMatch([]token.TokenType{token.FUNC}) {
		return parser.functionDeclaration()
	}
	return parser.statement()
}

// variableDeclaration parses a variable declaration statement.
// It expects an identifier token for the variable name followed by a
// mandatory '=' and an initializer expression: there is no implicit nil.
// Returns:
//   - ast.VarStmt: A VarStmt AST node representing the variable declaration.
//   - error: A SyntaxError if parsing fails or if the variable has not been initialised.
func (parser *Parser) variableDeclaration() (ast.Stmt, error) {
	tok, consumeError := parser.consume(token.IDENTIFIER, VariableDeclarationMissingIdentifier, "Expected variable name")
	if consumeError != nil {
		return nil, consumeError
	}

	if _, err := parser.consume(token.ASSIGN, VariableDeclarationMissingAssignment, "Variable declarations require an initializer"); err != nil {
		return nil, err
	}

	initialiser, err := parser.expression()
	if err != nil {
		return nil, err
	}

	if _, err := parser.consume(token.SEMICOLON, MissingSemicolon, "Expected ';' after variable declaration"); err != nil {
		return nil, err
	}

	return ast.VarStmt{
		Name:        tok,
		Initializer: initialiser,
	}, nil
}

// functionDeclaration parses "fun" IDENT "(" params? ")" block.
func (parser *Parser) functionDeclaration() (ast.Stmt, error) {
	name, err := parser.consume(token.IDENTIFIER, MissingFunctionDeclarationIdentifier, "Expected a function name")
	if err != nil {
		return nil, err
	}

	if _, err := parser.consume(token.LPA, MissingParametersDeclarationOpeningParen, "Expected '(' after function name"); err != nil {
		return nil, err
	}

	params := []token.Token{}
	if !parser.checkType(token.RPA) {
		for {
			param, err := parser.consume(token.IDENTIFIER, ExpectedParameterIdentifier, "Expected a parameter name")
			if err != nil {
				return nil, err
			}
			params = append(params, param)
			if !parser.isMatch([]token.TokenType{token.COMMA}) {
				break
			}
		}
	}

	if _, err := parser.consume(token.RPA, MissingRightParen, "Expected ')' after parameters"); err != nil {
		return nil, err
	}

	if _, err := parser.consume(token.LCUR, MissingBodyOpeningBrace, "Expected '{' before function body"); err != nil {
		return nil, err
	}

	body, err := parser.block()
	if err != nil {
		return nil, err
	}

	return ast.FunDeclaration{Name: name, Params: params, Body: body}, nil
}

// statement parses a single statement: a block, a while loop, an if
// statement, or (falling through) an expression statement.
//
// Returns:
//   - Stmt: the parsed statement node.
//   - error: if parsing fails, otherwise nil.
func (parser *Parser) statement() (ast.Stmt, error) {

	if parser.isMatch([]token.TokenType{token.LCUR}) {
		statements, err := parser.block()
		if err != nil {
			return nil, err
		}
		return ast.BlockStmt{Statements: statements}, nil
	}

	if parser.isMatch([]token.TokenType{token.IF}) {
		return parser.ifStatement()
	}

	if parser.isMatch([]token.TokenType{token.WHILE}) {
		return parser.whileStatement()
	}

	return parser.expressionStatement()
}

// blockBody parses a "{" ... "}" body required after while/if/fun, assuming
// the opening "{" has already been matched (or reported as missing by the
// caller). It returns an ast.BlockStmt.
func (parser *Parser) blockBody() (ast.Stmt, error) {
	statements, err := parser.block()
	if err != nil {
		return nil, err
	}
	return ast.BlockStmt{Statements: statements}, nil
}

// whileStatement parses "while" "(" expression ")" block.
func (parser *Parser) whileStatement() (ast.Stmt, error) {

	if _, err := parser.consume(token.LPA, MissingWhileConditionLeftParen, "Expected '(' after 'while'"); err != nil {
		return nil, err
	}

	condition, err := parser.expression()
	if err != nil {
		return nil, err
	}

	if _, err := parser.consume(token.RPA, MissingRightParen, "Expected ')' after while condition"); err != nil {
		return nil, err
	}

	if _, err := parser.consume(token.LCUR, WhileBodyNotEnclosedInBlock, "'while' body must be a block"); err != nil {
		return nil, err
	}

	body, err := parser.blockBody()
	if err != nil {
		return nil, err
	}

	return ast.WhileStmt{
		Condition: condition,
		Body:      body,
	}, nil
}

// ifStatement parses "if" "(" expression ")" block ("else" block)?.
func (parser *Parser) ifStatement() (ast.Stmt, error) {

	if _, err := parser.consume(token.LPA, MissingIfConditionLeftParen, "Expected '(' after 'if'"); err != nil {
		return nil, err
	}

	condition, err := parser.expression()
	if err != nil {
		return nil, err
	}

	if _, err := parser.consume(token.RPA, MissingRightParen, "Expected ')' after if condition"); err != nil {
		return nil, err
	}

	if _, err := parser.consume(token.LCUR, IfBodyNotEnclosedInBlock, "'if' body must be a block"); err != nil {
		return nil, err
	}

	thenStmt, err := parser.blockBody()
	if err != nil {
		return nil, err
	}

	var elseStmt ast.Stmt
	if parser.isMatch([]token.TokenType{token.ELSE}) {
		if _, err := parser.consume(token.LCUR, ElseBodyNotEnclosedInBlock, "'else' body must be a block"); err != nil {
			return nil, err
		}
		elseStmt, err = parser.blockBody()
		if err != nil {
			return nil, err
		}
	}

	return ast.IfStmt{
		Condition: condition,
		Then:      thenStmt,
		Else:      elseStmt,
	}, nil
}

// expressionStatement parses a statement consisting of a single expression
// terminated by ';'.
//
// Returns:
//   - Stmt: an ExpressionStmt wrapping the parsed expression.
//   - error: if the expression cannot be parsed.
func (parser *Parser) expressionStatement() (ast.Stmt, error) {
	expression, err := parser.expression()
	if err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.SEMICOLON, MissingSemicolon, "Expected ';' after expression"); err != nil {
		return nil, err
	}
	return ast.ExpressionStmt{Expression: expression}, nil
}

// block parses a block statement consisting of a list of
// statement AST nodes.
// Returns:
//   - [] Stmt: A list of parsed declarations or statements
//   - error: If the block statement cant be parsed.
func (parser *Parser) block() ([]ast.Stmt, error) {
	statements := []ast.Stmt{}

	for !parser.checkType(token.RCUR) && !parser.isFinished() {
		stmt, err := parser.declaration()
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)
	}

	if _, err := parser.consume(token.RCUR, MissingRightBrace, "Expected '}' after block"); err != nil {
		return nil, err
	}
	return statements, nil
}

// expression is the entry point for parsing expressions. It begins at
// the comma rule, which encompasses all lower-precedence rules.
//
// Returns:
//   - Expression: the parsed expression AST node.
//   - error: if parsing fails.
func (parser *Parser) expression() (ast.Expression, error) {
	return parser.comma()
}

// comma parses the sequence operator: "a, b" evaluates both and returns b.
func (parser *Parser) comma() (ast.Expression, error) {
	expr, err := parser.assignment()
	if err != nil {
		return nil, err
	}
	for parser.isMatch([]token.TokenType{token.COMMA}) {
		operator := parser.previous()
		right, err := parser.assignment()
		if err != nil {
			return nil, err
		}
		expr = ast.Binary{Left: expr, Operator: operator, Right: right}
	}
	return expr, nil
}

// assignment parses an assignment expression from the token stream.
//
// Steps:
//  1. First, parse the left-hand side (LHS) via logic_or.
//     This ensures proper precedence, so assignment has lower precedence
//     than the logical/ternary/arithmetic operators.
//  2. If the next token is an '=' (ASSIGN), then:
//     - Recursively call `assignment` to parse the right-hand side (RHS).
//     - Check if the LHS is a valid assignment target:
//     * If it's a Variable, produce an Assign AST node with the variable name
//     and the parsed RHS expression.
//     * Otherwise, produce a syntax error, since only variables can be assigned.
//  3. If no '=' follows, just return the previously parsed expression
//     as the result.
//
// Returns:
//   - Expression: Either an Assign node (for valid assignment expressions) or
//     the underlying expression if no assignment is found.
//   - error: Parsing errors such as invalid assignment targets or failed parsing of sub-expressions.
//
// Example:
// Input:  x = 10
// AST:    Assign{Name: x, Value: Literal(10)}
func (parser *Parser) assignment() (ast.Expression, error) {
	expression, err := parser.or()
	if err != nil {
		return nil, err
	}
	if parser.isMatch([]token.TokenType{token.ASSIGN}) {
		equalsToken := parser.previous()
		value, err := parser.assignment()
		if err != nil {
			return nil, err
		}
		switch v := expression.(type) {
		case ast.Variable:
			return ast.Assign{Name: v.Name, Value: value, Id: parser.newId()}, nil

		default:
			return nil, CreateSyntaxError(LValueMustBeAnIdentifier, equalsToken.Line, equalsToken.Column, "Invalid assignment target")
		}
	}

	return expression, nil
}

// or parses a logical OR expression from the token stream.
// It first parses an AND expression on the left side, then consumes
// any sequence of OR operators, building a left-associative AST of logical expressions.
// Returns:
//   - ast.Expression: The constructed ast.Expression node
//   - error: An error if parsing fails.
func (parser *Parser) or() (ast.Expression, error) {
	expr, err := parser.and()
	if err != nil {
		return nil, err
	}

	for parser.isMatch([]token.TokenType{token.OR}) {
		op := parser.previous()
		rightExpr, err := parser.and()
		if err != nil {
			return nil, err
		}
		expr = ast.Logical{
			Left:     expr,
			Operator: op,
			Right:    rightExpr,
		}
	}

	return expr, nil
}

// and parses a logical AND expression from the token stream.
// It first parses a ternary expression on the left side,
// then consumes any sequence of AND operators, building a left-associative
// abstract syntax tree (AST) of logical expressions.
// Returns:
//   - ast.Expression: The constructed ast.Expression node
//   - error: An error if parsing fails.
func (parser *Parser) and() (ast.Expression, error) {
	expr, err := parser.ternary()
	if err != nil {
		return nil, err
	}

	for parser.isMatch([]token.TokenType{token.AND}) {
		op := parser.previous()
		rightExpr, err := parser.ternary()
		if err != nil {
			return nil, err
		}

		expr = ast.Logical{
			Left:     expr,
			Operator: op,
			Right:    rightExpr,
		}
	}
	return expr, nil
}

// ternary parses "cond ? then : else", where else is itself a ternary,
// making the operator right-associative in its else branch.
func (parser *Parser) ternary() (ast.Expression, error) {
	condition, err := parser.equality()
	if err != nil {
		return nil, err
	}

	if parser.isMatch([]token.TokenType{token.QUESTION}) {
		thenExpr, err := parser.equality()
		if err != nil {
			return nil, err
		}
		if _, err := parser.consume(token.COLON, MissingColonInTernary, "Expected ':' in ternary expression"); err != nil {
			return nil, err
		}
		elseExpr, err := parser.ternary()
		if err != nil {
			return nil, err
		}
		return ast.Ternary{Condition: condition, Then: thenExpr, Else: elseExpr}, nil
	}

	return condition, nil
}

// equality parses equality expressions using operators "==" and "!=".
//
// Returns:
//   - Expression: a Binary node (or sub-expression) representing equality comparison.
//   - error: if parsing fails.
func (parser *Parser) equality() (ast.Expression, error) {
	exp, err := parser.comparison()
	if err != nil {
		return nil, err
	}
	for parser.isMatch(equalityTokenTypes) {
		operator := parser.previous()
		right, err := parser.comparison()
		if err != nil {
			return nil, err
		}
		exp = ast.Binary{
			Left:     exp,
			Operator: operator,
			Right:    right,
		}
	}
	return exp, nil
}

// comparison parses comparison expressions using operators "<", "<=", ">", ">=".
//
// Returns:
//   - Expression: a Binary node (or sub-expression) representing a comparison.
//   - error: if parsing fails.
func (parser *Parser) comparison() (ast.Expression, error) {
	exp, err := parser.term()
	if err != nil {
		return nil, err
	}
	for parser.isMatch(comparisonTokenTypes) {
		operator := parser.previous()
		right, err := parser.term()
		if err != nil {
			return nil, err
		}
		exp = ast.Binary{
			Left:     exp,
			Operator: operator,
			Right:    right,
		}
	}
	return exp, nil
}

// term parses addition and subtraction expressions using operators "+" and "-".
//
// Returns:
//   - Expression: a Binary node (or sub-expression) representing addition or subtraction.
//   - error: if parsing fails.
func (parser *Parser) term() (ast.Expression, error) {
	exp, err := parser.factor()
	if err != nil {
		return nil, err
	}
	for parser.isMatch(termTokenTypes) {
		operator := parser.previous()
		right, err := parser.factor()
		if err != nil {
			return nil, err
		}
		exp = ast.Binary{
			Left:     exp,
			Operator: operator,
			Right:    right,
		}
	}
	return exp, nil
}

// factor parses multiplication and division expressions using operators "*" and "/".
//
// Returns:
//   - Expression: a Binary node (or sub-expression) representing multiplication or division.
//   - error: if parsing fails.
func (parser *Parser) factor() (ast.Expression, error) {
	exp, err := parser.unary()
	if err != nil {
		return nil, err
	}
	for parser.isMatch(factorExpressionTypes) {
		operator := parser.previous()
		right, err := parser.unary()
		if err != nil {
			return nil, err
		}
		exp = ast.Binary{
			Left:     exp,
			Operator: operator,
			Right:    right,
		}
	}
	return exp, nil
}

// unary parses unary prefix expressions using operators "!" or "-".
// Examples: "!true", "-x". Otherwise defers to call().
//
// Returns:
//   - Expression: a Unary node if a unary operator was found, otherwise defers to call().
//   - error: if parsing fails.
func (parser *Parser) unary() (ast.Expression, error) {
	if parser.isMatch(unaryExpressionTypes) {
		operator := parser.previous()
		right, err := parser.unary()
		if err != nil {
			return nil, err
		}
		return ast.Unary{
			Operator: operator,
			Right:    right,
		}, nil
	}
	return parser.call()
}

// call parses primary ("(" arguments? ")")*, so that calls chain:
// "f()(x)" parses as two successive Call nodes on the same receiver.
func (parser *Parser) call() (ast.Expression, error) {
	expr, err := parser.primary()
	if err != nil {
		return nil, err
	}

	for parser.isMatch([]token.TokenType{token.LPA}) {
		expr, err = parser.finishCall(expr)
		if err != nil {
			return nil, err
		}
	}

	return expr, nil
}

// finishCall parses the argument list and closing paren of a call whose
// opening "(" has already been consumed.
func (parser *Parser) finishCall(callee ast.Expression) (ast.Expression, error) {
	args := []ast.Expression{}
	if !parser.checkType(token.RPA) {
		for {
			arg, err := parser.assignment()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !parser.isMatch([]token.TokenType{token.COMMA}) {
				break
			}
		}
	}

	paren, err := parser.consume(token.RPA, MissingRightParen, "Expected ')' after arguments")
	if err != nil {
		return nil, err
	}

	return ast.Call{Callee: callee, Paren: paren, Arguments: args}, nil
}

// primary parses the most basic forms of expressions:
//   - Literals: true, false, nil, strings, numbers, identifiers
//   - Grouping: (expression)
//
// If no valid token matches, returns a syntax error.
//
// Returns:
//   - Expression: a Literal, Variable, or Grouping expression.
//   - error: if no valid primary expression can be parsed.
func (parser *Parser) primary() (ast.Expression, error) {
	if tok := parser.peek(); token.ReservedNotImplemented[tok.TokenType] {
		parser.advance()
		return nil, reservedNotImplementedError(tok)
	}

	if parser.isMatch([]token.TokenType{token.FALSE}) {
		return ast.Literal{Value: false}, nil
	}
	if parser.isMatch([]token.TokenType{token.NIL}) {
		return ast.Literal{Value: nil}, nil
	}
	if parser.isMatch([]token.TokenType{token.TRUE}) {
		return ast.Literal{Value: true}, nil
	}

	if parser.isMatch([]token.TokenType{token.NUMBER, token.STRING}) {
		return ast.Literal{Value: parser.previous().Literal}, nil
	}

	if parser.isMatch([]token.TokenType{token.IDENTIFIER}) {
		return ast.Variable{Name: parser.previous(), Id: parser.newId()}, nil
	}

	if parser.isMatch([]token.TokenType{token.LPA}) {
		expr, err := parser.expression()
		if err != nil {
			return nil, err
		}
		_, consumeErr := parser.consume(token.RPA, MissingRightParen, fmt.Sprintf("expression is missing '%s'", token.RPA))
		if consumeErr != nil {
			return nil, consumeErr
		}
		return ast.Grouping{Expression: expr}, nil
	}

	currentToken := parser.peek()
	return nil, CreateSyntaxError(UnexpectedTokenInExpression, currentToken.Line, currentToken.Column, "Unrecognised expression.")
}

// Consumes the current token by advancing the parsers current position by
// one unit if the `tokenType` matches the token type of the parsers current
// position.
//
//	Returns:
//	- A SyntaxError if the provided `tokenType` does not match the `TokenType`
//		at the parsers current position
func (parser *Parser) consume(tokenType token.TokenType, kind SyntaxErrorKind, errorMessage string) (token.Token, error) {
	if parser.checkType(tokenType) {
		return parser.advance(), nil
	}
	currentToken := parser.peek()
	return token.CreateToken(token.EOF, 0, 0), CreateSyntaxError(kind, currentToken.Line, currentToken.Column, errorMessage)
}
