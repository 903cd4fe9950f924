// Package compiler implements the second, bytecode-producing front end:
// a single-pass Pratt parser that walks a token stream directly into a
// Chunk of opcodes, without ever building an intermediate syntax tree.
package compiler

import "fmt"

// Opcode is a single stack-machine instruction tag. The VM's dispatch
// loop executes a Chunk's Code in order; there are no jump opcodes in
// this set; expressions compile to a straight-line sequence.
type Opcode byte

const (
	OpReturn Opcode = iota
	OpConstant
	OpTrue
	OpFalse
	OpNil
	OpNot
	OpNegate
	OpEqual
	OpGreater
	OpLess
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
)

var opcodeNames = map[Opcode]string{
	OpReturn:   "OP_RETURN",
	OpConstant: "OP_CONSTANT",
	OpTrue:     "OP_TRUE",
	OpFalse:    "OP_FALSE",
	OpNil:      "OP_NIL",
	OpNot:      "OP_NOT",
	OpNegate:   "OP_NEGATE",
	OpEqual:    "OP_EQUAL",
	OpGreater:  "OP_GREATER",
	OpLess:     "OP_LESS",
	OpAdd:      "OP_ADD",
	OpSubtract: "OP_SUBTRACT",
	OpMultiply: "OP_MULTIPLY",
	OpDivide:   "OP_DIVIDE",
}

func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("OP_UNKNOWN(%d)", byte(op))
}

// Chunk is a compiled code unit: three equal-length per-instruction
// slices (Code, Operands, Lines) plus a separate constant pool indexed by
// OpConstant's operand. This is a plain tagged-opcode model rather than a
// byte-packed instruction stream, so that disassembly and per-instruction
// line lookup never need to decode variable-width encodings.
type Chunk struct {
	Code      []Opcode
	Operands  []int
	Lines     []int32
	Constants []any
}

// NewChunk returns an empty Chunk ready to be written to.
func NewChunk() *Chunk {
	return &Chunk{}
}

// Write appends a nullary instruction (operand 0 is meaningless for any
// opcode but OpConstant).
func (c *Chunk) Write(op Opcode, line int32) {
	c.Code = append(c.Code, op)
	c.Operands = append(c.Operands, 0)
	c.Lines = append(c.Lines, line)
}

// WriteOperand appends an instruction carrying an explicit operand, used
// only by OpConstant to index into Constants.
func (c *Chunk) WriteOperand(op Opcode, operand int, line int32) {
	c.Code = append(c.Code, op)
	c.Operands = append(c.Operands, operand)
	c.Lines = append(c.Lines, line)
}

// AddConstant appends value to the constant pool and returns its index.
func (c *Chunk) AddConstant(value any) int {
	c.Constants = append(c.Constants, value)
	return len(c.Constants) - 1
}

// Len returns the number of instructions in the chunk.
func (c *Chunk) Len() int {
	return len(c.Code)
}

// Disassemble renders the chunk as a human-readable instruction listing,
// one line per instruction, annotating OpConstant with the constant value
// it pushes.
func (c *Chunk) Disassemble(name string) string {
	out := fmt.Sprintf("== %s ==\n", name)
	for i, op := range c.Code {
		out += fmt.Sprintf("%04d line:%d %s", i, c.Lines[i], op)
		if op == OpConstant {
			out += fmt.Sprintf(" %d '%v'", c.Operands[i], c.Constants[c.Operands[i]])
		}
		out += "\n"
	}
	return out
}
