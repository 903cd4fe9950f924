package interpreter

import "nilan/ast"

// Callable is the shared interface for anything that can appear on the
// left of a Call expression: a host-provided native, or a user function
// owning its parameter list, body, and the frame it closed over.
type Callable interface {
	Arity() int
	Call(interp *TreeWalkInterpreter, args []any) (any, error)
	String() string
}

// NativeFunction wraps a host-provided Go function as a Callable.
type NativeFunction struct {
	Name  string
	Arty  int
	Apply func(args []any) (any, error)
}

func (n NativeFunction) Arity() int { return n.Arty }

func (n NativeFunction) Call(interp *TreeWalkInterpreter, args []any) (any, error) {
	return n.Apply(args)
}

func (n NativeFunction) String() string { return "function" }

// UserFunction is a closure: a function declaration bundled with the
// frame active at the point it was declared. Every call builds a fresh
// child frame off Closure, so recursive/reentrant calls never clobber
// each other's locals.
type UserFunction struct {
	Declaration ast.FunDeclaration
	Closure     *Environment
}

func (f UserFunction) Arity() int {
	return len(f.Declaration.Params)
}

// Call binds each argument to its parameter in a new frame parented on
// the closure's captured frame, then executes the body there. There is
// no Return statement in this language's core grammar (see non-goals),
// so a call's own value is always nil; callers observe effects through
// println or through variables mutated in the captured frame.
func (f UserFunction) Call(interp *TreeWalkInterpreter, args []any) (any, error) {
	frame := MakeNestedEnvironment(f.Closure)
	for i, param := range f.Declaration.Params {
		frame.define(param.Lexeme, args[i])
	}

	previous := interp.environment
	interp.environment = frame
	defer func() { interp.environment = previous }()

	interp.executeStatements(f.Declaration.Body)
	return nil, nil
}

func (f UserFunction) String() string {
	return "function"
}
