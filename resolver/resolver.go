// Package resolver performs a static lexical-scope pass between parsing
// and evaluation: for every variable reference and assignment in the
// program it computes how many environment frames, at runtime, separate
// the point of use from the frame that defines the name. The tree-walking
// evaluator trusts this map rather than searching dynamically, so that a
// closure keeps seeing the binding it captured even after inner blocks
// holding same-named shadows have been popped.
package resolver

import (
	"fmt"
	"nilan/ast"
	"nilan/token"
)

// bindingState distinguishes a name that has been declared (reserved, not
// yet safe to read) from one that has been fully defined (initializer has
// run). Referencing a DECLARED name inside its own initializer is a
// static error: `var a = a;` can never have meant to read an outer `a`.
type bindingState bool

const (
	declared bindingState = false
	defined  bindingState = true
)

// StaticErrorKind names the specific resolution failure.
type StaticErrorKind string

const (
	UseBeforeInitialization    StaticErrorKind = "UseBeforeInitialization"
	UndefinedIdentifierReference StaticErrorKind = "UndefinedIdentifierReference"
)

// StaticError is raised by the resolver before any statement executes.
type StaticError struct {
	Kind   StaticErrorKind
	Name   string
	Line   int32
	Column int
}

func (e StaticError) Error() string {
	return fmt.Sprintf("💥 Nilan Static error [%s]:\nline:%d, column:%d - '%s'", e.Kind, e.Line, e.Column, e.Name)
}

// Resolver walks a parsed program and produces Locals: id -> distance.
type Resolver struct {
	scopes []map[string]bindingState
	locals map[int]int
	errors []error
}

// nativeNames is the sentinel bottom scope: native functions are always
// reachable, at whatever distance separates the reference from the
// outermost scope.
var nativeNames = []string{"clock", "println"}

// New creates a Resolver with its sentinel natives scope already pushed.
func New() *Resolver {
	r := &Resolver{
		locals: make(map[int]int),
	}
	natives := make(map[string]bindingState, len(nativeNames))
	for _, name := range nativeNames {
		natives[name] = defined
	}
	r.scopes = append(r.scopes, natives)
	return r
}

// Resolve walks the whole program inside one top-level scope (pushed above
// the natives sentinel), so that every identifier reference anywhere in the
// program, global or local, is resolved the same way via Locals.
//
// Returns the completed Locals map and any static errors found; execution
// should be skipped if errors is non-empty.
func (r *Resolver) Resolve(statements []ast.Stmt) (map[int]int, []error) {
	r.beginScope()
	r.resolveStatements(statements)
	r.endScope()
	return r.locals, r.errors
}

func (r *Resolver) beginScope() {
	r.scopes = append(r.scopes, make(map[string]bindingState))
}

func (r *Resolver) endScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

func (r *Resolver) declare(name token.Token) {
	scope := r.scopes[len(r.scopes)-1]
	scope[name.Lexeme] = declared
}

func (r *Resolver) define(name token.Token) {
	scope := r.scopes[len(r.scopes)-1]
	scope[name.Lexeme] = defined
}

func (r *Resolver) resolveStatements(statements []ast.Stmt) {
	for _, stmt := range statements {
		stmt.Accept(r)
	}
}

func (r *Resolver) resolveExpr(expr ast.Expression) {
	if expr == nil {
		return
	}
	expr.Accept(r)
}

// resolveLocal scans the scope stack from innermost to outermost looking
// for name, recording id -> distance on the first hit. A miss is an
// UndefinedIdentifierReference static error.
func (r *Resolver) resolveLocal(name token.Token, id int) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name.Lexeme]; ok {
			r.locals[id] = len(r.scopes) - 1 - i
			return
		}
	}
	r.errors = append(r.errors, StaticError{
		Kind:   UndefinedIdentifierReference,
		Name:   name.Lexeme,
		Line:   name.Line,
		Column: name.Column,
	})
}

// Statements

func (r *Resolver) VisitExpressionStmt(stmt ast.ExpressionStmt) any {
	r.resolveExpr(stmt.Expression)
	return nil
}

func (r *Resolver) VisitVarStmt(stmt ast.VarStmt) any {
	r.declare(stmt.Name)
	r.resolveExpr(stmt.Initializer)
	r.define(stmt.Name)
	return nil
}

func (r *Resolver) VisitBlockStmt(stmt ast.BlockStmt) any {
	r.beginScope()
	r.resolveStatements(stmt.Statements)
	r.endScope()
	return nil
}

func (r *Resolver) VisitIfStmt(stmt ast.IfStmt) any {
	r.resolveExpr(stmt.Condition)
	stmt.Then.Accept(r)
	if stmt.Else != nil {
		stmt.Else.Accept(r)
	}
	return nil
}

func (r *Resolver) VisitWhileStmt(stmt ast.WhileStmt) any {
	r.resolveExpr(stmt.Condition)
	stmt.Body.Accept(r)
	return nil
}

func (r *Resolver) VisitFunDeclaration(stmt ast.FunDeclaration) any {
	r.declare(stmt.Name)
	r.define(stmt.Name)

	r.beginScope()
	for _, param := range stmt.Params {
		r.declare(param)
		r.define(param)
	}
	r.resolveStatements(stmt.Body)
	r.endScope()
	return nil
}

// Expressions

func (r *Resolver) VisitBinary(expr ast.Binary) any {
	r.resolveExpr(expr.Left)
	r.resolveExpr(expr.Right)
	return nil
}

func (r *Resolver) VisitUnary(expr ast.Unary) any {
	r.resolveExpr(expr.Right)
	return nil
}

func (r *Resolver) VisitLiteral(expr ast.Literal) any {
	return nil
}

func (r *Resolver) VisitGrouping(expr ast.Grouping) any {
	r.resolveExpr(expr.Expression)
	return nil
}

func (r *Resolver) VisitVariableExpression(expr ast.Variable) any {
	innermost := r.scopes[len(r.scopes)-1]
	if state, ok := innermost[expr.Name.Lexeme]; ok && state == declared {
		r.errors = append(r.errors, StaticError{
			Kind:   UseBeforeInitialization,
			Name:   expr.Name.Lexeme,
			Line:   expr.Name.Line,
			Column: expr.Name.Column,
		})
		return nil
	}
	r.resolveLocal(expr.Name, expr.Id)
	return nil
}

func (r *Resolver) VisitAssignExpression(expr ast.Assign) any {
	r.resolveExpr(expr.Value)
	r.resolveLocal(expr.Name, expr.Id)
	return nil
}

func (r *Resolver) VisitLogicalExpression(expr ast.Logical) any {
	r.resolveExpr(expr.Left)
	r.resolveExpr(expr.Right)
	return nil
}

func (r *Resolver) VisitTernary(expr ast.Ternary) any {
	r.resolveExpr(expr.Condition)
	r.resolveExpr(expr.Then)
	r.resolveExpr(expr.Else)
	return nil
}

func (r *Resolver) VisitCall(expr ast.Call) any {
	r.resolveExpr(expr.Callee)
	for _, arg := range expr.Arguments {
		r.resolveExpr(arg)
	}
	return nil
}
