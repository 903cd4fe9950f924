package vm

import (
	"nilan/compiler"
	"nilan/lexer"
	"testing"
)

func compileExpression(t *testing.T, source string) *compiler.Chunk {
	t.Helper()
	tokens, err := lexer.New(source).Scan()
	if err != nil {
		t.Fatalf("lexer error: %v", err)
	}
	chunk, err := compiler.New(tokens).Compile()
	if err != nil {
		t.Fatalf("compiler error: %v", err)
	}
	return chunk
}

func TestRunArithmetic(t *testing.T) {
	tests := []struct {
		source   string
		expected any
	}{
		{"1 + 2", float64(3)},
		{"2 * 3 + 1", float64(7)},
		{"2 * (3 + 1)", float64(8)},
		{"10 / 2 - 1", float64(4)},
		{"-5 + 2", float64(-3)},
		{"\"foo\" + \"bar\"", "foobar"},
	}

	for _, tt := range tests {
		chunk := compileExpression(t, tt.source)
		value, err := New().Run(chunk)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tt.source, err)
		}
		if value != tt.expected {
			t.Errorf("%q: got %v, want %v", tt.source, value, tt.expected)
		}
	}
}

func TestRunComparisonsAndEquality(t *testing.T) {
	tests := []struct {
		source   string
		expected bool
	}{
		{"1 < 2", true},
		{"2 <= 2", true},
		{"3 > 2", true},
		{"3 >= 4", false},
		{"1 == 1", true},
		{"1 != 2", true},
		{"1 == \"1\"", false},
		{"!false", true},
		{"!nil", true},
		{"!0", false},
	}

	for _, tt := range tests {
		chunk := compileExpression(t, tt.source)
		value, err := New().Run(chunk)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tt.source, err)
		}
		if value != tt.expected {
			t.Errorf("%q: got %v, want %v", tt.source, value, tt.expected)
		}
	}
}

func TestRunLiterals(t *testing.T) {
	tests := []struct {
		source   string
		expected any
	}{
		{"true", true},
		{"false", false},
		{"nil", nil},
		{"\"hi\"", "hi"},
	}

	for _, tt := range tests {
		chunk := compileExpression(t, tt.source)
		value, err := New().Run(chunk)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tt.source, err)
		}
		if value != tt.expected {
			t.Errorf("%q: got %v, want %v", tt.source, value, tt.expected)
		}
	}
}

func TestRunTypeErrors(t *testing.T) {
	tests := []string{
		"1 + true",
		"\"a\" - 1",
		"-\"a\"",
	}

	for _, source := range tests {
		chunk := compileExpression(t, source)
		if _, err := New().Run(chunk); err == nil {
			t.Errorf("%q: expected a runtime error, got none", source)
		}
	}
}
