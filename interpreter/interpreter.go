package interpreter

import (
	"fmt"
	"nilan/ast"
	"nilan/token"
)

// TreeWalkInterpreter executes parsed statements and evaluates expressions
// against a chain of lexical Environment frames. Variable lookups walk the
// frame distances precomputed by the resolver rather than searching
// dynamically, so closures keep observing the binding they captured.
type TreeWalkInterpreter struct {
	globals     *Environment
	environment *Environment
	locals      map[int]int
}

// Make creates a Tree-Walk Interpreter with its native-function frame and
// a root frame nested beneath it, ready to execute top-level declarations.
func Make() *TreeWalkInterpreter {
	globals := MakeEnvironment()
	registerNatives(globals)
	return &TreeWalkInterpreter{
		globals:     globals,
		environment: MakeNestedEnvironment(globals),
		locals:      make(map[int]int),
	}
}

// SetLocals installs the distance map produced by the resolver. Must be
// called (even with an empty map) before Interpret for variable references
// to resolve correctly.
func (i *TreeWalkInterpreter) SetLocals(locals map[int]int) {
	i.locals = locals
}

// Interpret executes a list of statements.
// It recovers from panics to print runtime errors without crashing.
func (i *TreeWalkInterpreter) Interpret(statements []ast.Stmt) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Println(r)
		}
	}()
	i.executeStatements(statements)
}

// executeStatements executes each statement by invoking its Accept method.
func (i *TreeWalkInterpreter) executeStatements(statements []ast.Stmt) {
	for _, s := range statements {
		s.Accept(i)
	}
}

// executeStmt executes a single statement node via the visitor pattern.
func (i *TreeWalkInterpreter) executeStmt(stmt ast.Stmt) {
	stmt.Accept(i)
}

// VisitBlockStmt executes all statements in the given ast.BlockStmt within
// a new frame nested under the current one, restoring the previous frame
// afterward regardless of how the block exits (normal return or panic).
func (i *TreeWalkInterpreter) VisitBlockStmt(blockStmt ast.BlockStmt) any {
	previous := i.environment
	i.environment = MakeNestedEnvironment(i.environment)
	defer func() { i.environment = previous }()

	i.executeStatements(blockStmt.Statements)
	return nil
}

// VisitExpressionStmt evaluates the expression and discards the result.
func (i *TreeWalkInterpreter) VisitExpressionStmt(exprStatement ast.ExpressionStmt) any {
	i.evaluate(exprStatement.Expression)
	return nil
}

// VisitIfStmt evaluates the condition and executes the matching branch.
func (i *TreeWalkInterpreter) VisitIfStmt(stmt ast.IfStmt) any {
	if i.isTrue(i.evaluate(stmt.Condition)) {
		i.executeStmt(stmt.Then)
	} else if stmt.Else != nil {
		i.executeStmt(stmt.Else)
	}
	return nil
}

// VisitWhileStmt repeatedly executes the body while the condition is
// truthy. The body is executed directly (a block body creates its own
// nested frame via VisitBlockStmt).
func (i *TreeWalkInterpreter) VisitWhileStmt(stmt ast.WhileStmt) any {
	for i.isTrue(i.evaluate(stmt.Condition)) {
		i.executeStmt(stmt.Body)
	}
	return nil
}

// VisitVarStmt evaluates the mandatory initializer and binds the name in
// the current frame.
func (i *TreeWalkInterpreter) VisitVarStmt(varStmt ast.VarStmt) any {
	value := i.evaluate(varStmt.Initializer)
	i.environment.define(varStmt.Name.Lexeme, value)
	return nil
}

// VisitFunDeclaration constructs a closure over the current frame and
// binds it under the declared name, allowing recursive calls:
// the name is bound before the body is ever evaluated.
func (i *TreeWalkInterpreter) VisitFunDeclaration(stmt ast.FunDeclaration) any {
	function := UserFunction{Declaration: stmt, Closure: i.environment}
	i.environment.define(stmt.Name.Lexeme, function)
	return nil
}

// VisitAssignExpression evaluates the right-hand side and writes it into
// the frame the resolver determined holds the binding.
func (i *TreeWalkInterpreter) VisitAssignExpression(assign ast.Assign) any {
	value := i.evaluate(assign.Value)
	if distance, ok := i.locals[assign.Id]; ok {
		i.environment.assignAt(distance, assign.Name, value)
		return value
	}
	if err := i.globals.assign(assign.Name, value); err != nil {
		panic(err)
	}
	return value
}

// VisitBinary evaluates a binary expression node.
//
// Panics on invalid operands or unsupported operators.
func (i *TreeWalkInterpreter) VisitBinary(binary ast.Binary) any {
	leftResult := i.evaluate(binary.Left)
	rightResult := i.evaluate(binary.Right)
	operator := binary.Operator.TokenType

	switch operator {
	case token.COMMA:
		return rightResult

	case token.MULT:
		l, r := i.numericOperands(binary.Operator, leftResult, rightResult)
		return l * r

	case token.DIV:
		l, r := i.numericOperands(binary.Operator, leftResult, rightResult)
		return l / r

	case token.SUB:
		l, r := i.numericOperands(binary.Operator, leftResult, rightResult)
		return l - r

	case token.ADD:
		leftString, leftIsString := leftResult.(string)
		rightString, rightIsString := rightResult.(string)
		if leftIsString && rightIsString {
			return leftString + rightString
		}
		l, r := i.numericOperands(binary.Operator, leftResult, rightResult)
		return l + r

	case token.EQUAL_EQUAL:
		return i.valuesEqual(binary.Operator, leftResult, rightResult)

	case token.NOT_EQUAL:
		return !i.valuesEqual(binary.Operator, leftResult, rightResult)

	case token.LARGER:
		l, r := i.numericOperands(binary.Operator, leftResult, rightResult)
		return l > r

	case token.LARGER_EQUAL:
		l, r := i.numericOperands(binary.Operator, leftResult, rightResult)
		return l >= r

	case token.LESS:
		l, r := i.numericOperands(binary.Operator, leftResult, rightResult)
		return l < r

	case token.LESS_EQUAL:
		l, r := i.numericOperands(binary.Operator, leftResult, rightResult)
		return l <= r

	default:
		message := fmt.Sprintf("operator '%s' not supported", operator)
		panic(CreateRuntimeError(binary.Operator.Line, binary.Operator.Column, message))
	}
}

// valuesEqual compares two values only within matching concrete types.
// A cross-type comparison is a runtime TypeError in the tree-walker
// (unlike the VM's value-level Equal opcode, which has no unwinding path).
func (i *TreeWalkInterpreter) valuesEqual(operator token.Token, left, right any) bool {
	switch l := left.(type) {
	case float64:
		r, ok := right.(float64)
		if !ok {
			panic(TypeError{Expected: "Number", Given: kindOf(right), Line: operator.Line, Column: operator.Column})
		}
		return l == r
	case string:
		r, ok := right.(string)
		if !ok {
			panic(TypeError{Expected: "String", Given: kindOf(right), Line: operator.Line, Column: operator.Column})
		}
		return l == r
	case bool:
		r, ok := right.(bool)
		if !ok {
			panic(TypeError{Expected: "Bool", Given: kindOf(right), Line: operator.Line, Column: operator.Column})
		}
		return l == r
	case nil:
		if right != nil {
			panic(TypeError{Expected: "Nil", Given: kindOf(right), Line: operator.Line, Column: operator.Column})
		}
		return true
	default:
		panic(TypeError{Expected: "comparable value", Given: kindOf(left), Line: operator.Line, Column: operator.Column})
	}
}

func kindOf(value any) string {
	switch value.(type) {
	case nil:
		return "Nil"
	case bool:
		return "Bool"
	case float64:
		return "Number"
	case string:
		return "String"
	case Callable:
		return "Function"
	default:
		return fmt.Sprintf("%T", value)
	}
}

// numericOperands requires both operands to be Number, panicking with a
// TypeError otherwise.
func (i *TreeWalkInterpreter) numericOperands(operator token.Token, left, right any) (float64, float64) {
	l, lok := left.(float64)
	r, rok := right.(float64)
	if !lok {
		panic(TypeError{Expected: "Number", Given: kindOf(left), Line: operator.Line, Column: operator.Column})
	}
	if !rok {
		panic(TypeError{Expected: "Number", Given: kindOf(right), Line: operator.Line, Column: operator.Column})
	}
	return l, r
}

// VisitUnary evaluates a unary expression node.
//
// Panics on invalid operand types or unsupported operators.
func (i *TreeWalkInterpreter) VisitUnary(unary ast.Unary) any {
	rightResult := i.evaluate(unary.Right)
	operator := unary.Operator.TokenType
	switch operator {
	case token.SUB:
		r, ok := rightResult.(float64)
		if !ok {
			panic(TypeError{Expected: "Number", Given: kindOf(rightResult), Line: unary.Operator.Line, Column: unary.Operator.Column})
		}
		return -r
	case token.BANG:
		b, ok := rightResult.(bool)
		if !ok {
			panic(TypeError{Expected: "Bool", Given: kindOf(rightResult), Line: unary.Operator.Line, Column: unary.Operator.Column})
		}
		return !b
	default:
		message := fmt.Sprintf("operator '%s' not supported for unary operations", operator)
		panic(CreateRuntimeError(unary.Operator.Line, unary.Operator.Column, message))
	}
}

// VisitLogicalExpression implements short-circuiting "and"/"or":
// unevaluated operands must never run their side effects.
func (i *TreeWalkInterpreter) VisitLogicalExpression(expr ast.Logical) any {
	left := i.evaluate(expr.Left)

	if expr.Operator.TokenType == token.OR {
		if i.isTrue(left) {
			return left
		}
		right := i.evaluate(expr.Right)
		if i.isTrue(right) {
			return right
		}
		return false
	}

	// AND
	if !i.isTrue(left) {
		return false
	}
	right := i.evaluate(expr.Right)
	if i.isTrue(right) {
		return right
	}
	return false
}

// VisitTernary evaluates only the selected branch.
func (i *TreeWalkInterpreter) VisitTernary(expr ast.Ternary) any {
	if i.isTrue(i.evaluate(expr.Condition)) {
		return i.evaluate(expr.Then)
	}
	return i.evaluate(expr.Else)
}

// VisitCall evaluates the callee and arguments, checks arity, and invokes
// the Callable.
func (i *TreeWalkInterpreter) VisitCall(expr ast.Call) any {
	callee := i.evaluate(expr.Callee)

	args := make([]any, 0, len(expr.Arguments))
	for _, a := range expr.Arguments {
		args = append(args, i.evaluate(a))
	}

	fn, ok := callee.(Callable)
	if !ok {
		panic(NotCallable{Given: kindOf(callee), Line: expr.Paren.Line, Column: expr.Paren.Column})
	}

	if fn.Arity() >= 0 && len(args) != fn.Arity() {
		panic(ArityMismatch{Expected: fn.Arity(), Given: len(args), Line: expr.Paren.Line, Column: expr.Paren.Column})
	}

	result, err := fn.Call(i, args)
	if err != nil {
		panic(err)
	}
	return result
}

// isTrue determines the "truthiness" of the given object: Nil and Bool(false)
// are falsy, everything else (including 0 and "") is truthy.
func (i *TreeWalkInterpreter) isTrue(object any) bool {
	if object == nil {
		return false
	}
	if value, isBool := object.(bool); isBool {
		return value
	}
	return true
}

// VisitVariableExpression resolves a variable reference via the frame
// distance the resolver computed, falling back to a dynamic global lookup
// for ids the resolver left unmapped.
func (i *TreeWalkInterpreter) VisitVariableExpression(expression ast.Variable) any {
	if distance, ok := i.locals[expression.Id]; ok {
		return i.environment.getAt(distance, expression.Name.Lexeme)
	}
	value, err := i.globals.get(expression.Name)
	if err != nil {
		panic(err)
	}
	return value
}

// VisitLiteral returns the value of a Literal node.
func (i *TreeWalkInterpreter) VisitLiteral(literal ast.Literal) any {
	return literal.Value
}

// VisitGrouping evaluates a Grouping expression by evaluating its inner expression.
func (i *TreeWalkInterpreter) VisitGrouping(grouping ast.Grouping) any {
	return i.evaluate(grouping.Expression)
}

// evaluate evaluates any expression node by invoking its Accept method
// with the Interpreter visitor.
func (i *TreeWalkInterpreter) evaluate(expression ast.Expression) any {
	return expression.Accept(i)
}
