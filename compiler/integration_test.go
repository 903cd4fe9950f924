package compiler_test

import (
	"nilan/compiler"
	"nilan/lexer"
	"nilan/vm"
	"testing"
)

// TestFullPipeline exercises the complete expression pipeline: source
// text -> tokens -> compiled Chunk -> VM result.
func TestFullPipeline(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		expected any
	}{
		{name: "addition", source: "5 + 1", expected: float64(6)},
		{name: "multiplication", source: "5 * 3", expected: float64(15)},
		{name: "negation", source: "-5", expected: float64(-5)},
		{name: "precedence", source: "5 * 3 + 2", expected: float64(17)},
		{name: "grouping", source: "(5 + 1) * 2", expected: float64(12)},
		{name: "string concatenation", source: "\"a\" + \"b\"", expected: "ab"},
		{name: "comparison", source: "5 < 10", expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := lexer.New(tt.source).Scan()
			if err != nil {
				t.Fatalf("lexing failed: %v", err)
			}

			chunk, err := compiler.New(tokens).Compile()
			if err != nil {
				t.Fatalf("compilation failed: %v", err)
			}

			value, err := vm.New().Run(chunk)
			if err != nil {
				t.Fatalf("vm execution failed: %v", err)
			}
			if value != tt.expected {
				t.Errorf("got %v, want %v", value, tt.expected)
			}
		})
	}
}
