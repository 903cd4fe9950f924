package vm

import (
	"fmt"
	"nilan/compiler"
	"os"
)

// Stack is the VM's operand stack: every opcode pops its operands from
// here and pushes its result back, so Value (any, boxed the same way as
// the tree-walking evaluator) is the only type it ever holds.
type Stack []Value

// Value is the runtime representation the VM's stack holds: a float64,
// string, bool, or nil, matching the tree-walking evaluator's value
// domain so the two backends agree on what a Nilan value is.
type Value = any

// IsEmpty reports whether the stack has nothing left to pop.
func (s *Stack) IsEmpty() bool {
	return len(*s) == 0
}

// Push appends a value to the top of the stack.
func (s *Stack) Push(value Value) {
	*s = append(*s, value)
}

// Pop removes and returns the top element of the stack.
func (s *Stack) Pop() (Value, bool) {
	if s.IsEmpty() {
		return nil, false
	}
	index := len(*s) - 1
	element := (*s)[index]
	*s = (*s)[:index]
	return element, true
}

// Peek returns the top element without removing it.
func (s *Stack) Peek() (Value, bool) {
	if s.IsEmpty() {
		return nil, false
	}
	index := len(*s) - 1
	return (*s)[index], true
}

// VM is a stack machine that executes a compiled Chunk. It has no
// locals, no globals, and no jumps: it runs exactly one compiled
// expression per Run call, scoped to what package compiler emits.
type VM struct {
	stack Stack
	debug bool
}

// New creates a VM instance. When debug is set, Run logs the stack
// trace to stderr before each instruction.
func New() *VM {
	return &VM{}
}

// SetDebug toggles per-instruction stack tracing.
func (vm *VM) SetDebug(debug bool) {
	vm.debug = debug
}

// Run executes chunk's instructions in order and returns the value left
// on the stack by OpReturn. Any operand-type or stack-discipline
// violation is reported as an error rather than panicking: bytecode
// produced by package compiler is trusted, but Run does not assume it.
func (vm *VM) Run(chunk *compiler.Chunk) (any, error) {
	for ip := 0; ip < chunk.Len(); ip++ {
		op := chunk.Code[ip]
		line := chunk.Lines[ip]

		if vm.debug {
			fmt.Fprintf(os.Stderr, "%04d %s %v\n", ip, op, vm.stack)
		}

		switch op {
		case compiler.OpReturn:
			value, ok := vm.stack.Pop()
			if !ok {
				return nil, EmptyStack{Op: op.String()}
			}
			return value, nil

		case compiler.OpConstant:
			vm.stack.Push(chunk.Constants[chunk.Operands[ip]])

		case compiler.OpTrue:
			vm.stack.Push(true)

		case compiler.OpFalse:
			vm.stack.Push(false)

		case compiler.OpNil:
			vm.stack.Push(nil)

		case compiler.OpNot:
			value, ok := vm.stack.Pop()
			if !ok {
				return nil, EmptyStack{Op: op.String()}
			}
			vm.stack.Push(!isTruthy(value))

		case compiler.OpNegate:
			value, err := vm.popNumber(op, line)
			if err != nil {
				return nil, err
			}
			vm.stack.Push(-value)

		case compiler.OpEqual:
			right, left, ok := vm.popPair()
			if !ok {
				return nil, EmptyStack{Op: op.String()}
			}
			vm.stack.Push(valuesEqual(left, right))

		case compiler.OpGreater:
			right, left, err := vm.popNumberPair(op, line)
			if err != nil {
				return nil, err
			}
			vm.stack.Push(left > right)

		case compiler.OpLess:
			right, left, err := vm.popNumberPair(op, line)
			if err != nil {
				return nil, err
			}
			vm.stack.Push(left < right)

		case compiler.OpAdd:
			right, left, ok := vm.popPair()
			if !ok {
				return nil, EmptyStack{Op: op.String()}
			}
			leftStr, leftIsStr := left.(string)
			rightStr, rightIsStr := right.(string)
			if leftIsStr && rightIsStr {
				vm.stack.Push(leftStr + rightStr)
				break
			}
			l, lok := left.(float64)
			r, rok := right.(float64)
			if !lok {
				return nil, ExpectedNumber{Given: kindOf(left), Line: line}
			}
			if !rok {
				return nil, ExpectedNumber{Given: kindOf(right), Line: line}
			}
			vm.stack.Push(l + r)

		case compiler.OpSubtract:
			right, left, err := vm.popNumberPair(op, line)
			if err != nil {
				return nil, err
			}
			vm.stack.Push(left - right)

		case compiler.OpMultiply:
			right, left, err := vm.popNumberPair(op, line)
			if err != nil {
				return nil, err
			}
			vm.stack.Push(left * right)

		case compiler.OpDivide:
			right, left, err := vm.popNumberPair(op, line)
			if err != nil {
				return nil, err
			}
			vm.stack.Push(left / right)

		default:
			return nil, RuntimeError{Message: fmt.Sprintf("unknown opcode %v", op)}
		}
	}

	return nil, RuntimeError{Message: "chunk did not terminate with OP_RETURN"}
}

// popPair pops the two most recently pushed values, returning them as
// (right, left) to match the evaluation order the compiler emitted them
// in (left then right, right popped first).
func (vm *VM) popPair() (right, left any, ok bool) {
	right, ok = vm.stack.Pop()
	if !ok {
		return nil, nil, false
	}
	left, ok = vm.stack.Pop()
	if !ok {
		return nil, nil, false
	}
	return right, left, true
}

func (vm *VM) popNumber(op compiler.Opcode, line int32) (float64, error) {
	value, ok := vm.stack.Pop()
	if !ok {
		return 0, EmptyStack{Op: op.String()}
	}
	n, ok := value.(float64)
	if !ok {
		return 0, ExpectedNumber{Given: kindOf(value), Line: line}
	}
	return n, nil
}

func (vm *VM) popNumberPair(op compiler.Opcode, line int32) (right, left float64, err error) {
	rightValue, leftValue, ok := vm.popPair()
	if !ok {
		return 0, 0, EmptyStack{Op: op.String()}
	}
	r, rok := rightValue.(float64)
	l, lok := leftValue.(float64)
	if !lok {
		return 0, 0, ExpectedNumber{Given: kindOf(leftValue), Line: line}
	}
	if !rok {
		return 0, 0, ExpectedNumber{Given: kindOf(rightValue), Line: line}
	}
	return r, l, nil
}

// isTruthy matches the tree-walking evaluator's rule: Nil and
// Bool(false) are falsy, everything else is truthy.
func isTruthy(value any) bool {
	if value == nil {
		return false
	}
	if b, ok := value.(bool); ok {
		return b
	}
	return true
}

// valuesEqual is a total comparison across all value kinds: unlike the
// tree-walker's valuesEqual, a cross-type comparison is simply false
// rather than a TypeError. The VM's Equal opcode has no unwinding path
// to report a runtime error mid-expression.
func valuesEqual(left, right any) bool {
	if left == nil || right == nil {
		return left == right
	}
	switch l := left.(type) {
	case float64:
		r, ok := right.(float64)
		return ok && l == r
	case string:
		r, ok := right.(string)
		return ok && l == r
	case bool:
		r, ok := right.(bool)
		return ok && l == r
	default:
		return false
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
	default:
		return fmt.Sprintf("%T", value)
	}
}
