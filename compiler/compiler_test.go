package compiler

import (
	"nilan/lexer"
	"testing"
)

func compile(t *testing.T, source string) *Chunk {
	t.Helper()
	tokens, err := lexer.New(source).Scan()
	if err != nil {
		t.Fatalf("lexer error: %v", err)
	}
	chunk, err := New(tokens).Compile()
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	return chunk
}

func TestCompileArithmeticPrecedence(t *testing.T) {
	chunk := compile(t, "1 + 2 * 3")

	want := []Opcode{OpConstant, OpConstant, OpConstant, OpMultiply, OpAdd, OpReturn}
	if chunk.Len() != len(want) {
		t.Fatalf("got %d instructions, want %d: %v", chunk.Len(), len(want), chunk.Code)
	}
	for i, op := range want {
		if chunk.Code[i] != op {
			t.Errorf("instruction %d: got %v, want %v", i, chunk.Code[i], op)
		}
	}
}

func TestCompileGrouping(t *testing.T) {
	chunk := compile(t, "(1 + 2) * 3")

	want := []Opcode{OpConstant, OpConstant, OpAdd, OpConstant, OpMultiply, OpReturn}
	if chunk.Len() != len(want) {
		t.Fatalf("got %d instructions, want %d: %v", chunk.Len(), len(want), chunk.Code)
	}
	for i, op := range want {
		if chunk.Code[i] != op {
			t.Errorf("instruction %d: got %v, want %v", i, chunk.Code[i], op)
		}
	}
}

func TestCompileSynthesizedComparisons(t *testing.T) {
	tests := []struct {
		source string
		want   []Opcode
	}{
		{"1 <= 2", []Opcode{OpConstant, OpConstant, OpGreater, OpNot, OpReturn}},
		{"1 >= 2", []Opcode{OpConstant, OpConstant, OpLess, OpNot, OpReturn}},
		{"1 != 2", []Opcode{OpConstant, OpConstant, OpEqual, OpNot, OpReturn}},
	}

	for _, tt := range tests {
		chunk := compile(t, tt.source)
		if chunk.Len() != len(tt.want) {
			t.Fatalf("%q: got %d instructions, want %d: %v", tt.source, chunk.Len(), len(tt.want), chunk.Code)
		}
		for i, op := range tt.want {
			if chunk.Code[i] != op {
				t.Errorf("%q: instruction %d: got %v, want %v", tt.source, i, chunk.Code[i], op)
			}
		}
	}
}

func TestCompileUnary(t *testing.T) {
	chunk := compile(t, "!true")
	want := []Opcode{OpTrue, OpNot, OpReturn}
	if chunk.Len() != len(want) {
		t.Fatalf("got %d instructions, want %d: %v", chunk.Len(), len(want), chunk.Code)
	}
	for i, op := range want {
		if chunk.Code[i] != op {
			t.Errorf("instruction %d: got %v, want %v", i, chunk.Code[i], op)
		}
	}
}

func TestCompileMissingClosingParen(t *testing.T) {
	tokens, err := lexer.New("(1 + 2").Scan()
	if err != nil {
		t.Fatalf("lexer error: %v", err)
	}
	if _, err := New(tokens).Compile(); err == nil {
		t.Error("expected a compile error for an unterminated group")
	}
}
