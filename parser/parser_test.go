package parser

import (
	"testing"

	"nilan/ast"
	"nilan/lexer"
)

func TestParseDeterminism(t *testing.T) {
	sources := []string{
		`var a = 1 + 2 * 3;`,
		`fun add(a, b) { a + b; } add(1, 2);`,
		`if (true) { println(1); } else { println(2); }`,
		`var x = 0; while (x < 3) { x = x + 1; }`,
		`println(true ? 1 : 2 ? 3 : 4);`,
	}

	for _, source := range sources {
		t.Run(source, func(t *testing.T) {
			tokensA, err := lexer.New(source).Scan()
			if err != nil {
				t.Fatalf("scan error: %v", err)
			}
			stmtsA, errsA := Make(tokensA).Parse()
			if len(errsA) > 0 {
				t.Fatalf("parse errors: %v", errsA)
			}

			tokensB, err := lexer.New(source).Scan()
			if err != nil {
				t.Fatalf("scan error: %v", err)
			}
			stmtsB, errsB := Make(tokensB).Parse()
			if len(errsB) > 0 {
				t.Fatalf("parse errors: %v", errsB)
			}

			jsonA, err := PrintASTJSON(stmtsA)
			if err != nil {
				t.Fatalf("print error: %v", err)
			}
			jsonB, err := PrintASTJSON(stmtsB)
			if err != nil {
				t.Fatalf("print error: %v", err)
			}
			if jsonA != jsonB {
				t.Fatalf("parsing %q twice produced different ASTs:\n%s\nvs\n%s", source, jsonA, jsonB)
			}
		})
	}
}

func TestParseReportsSyntaxErrorKind(t *testing.T) {
	tests := []struct {
		name   string
		source string
		kind   SyntaxErrorKind
	}{
		{"missing semicolon", `var a = 1`, MissingSemicolon},
		{"missing right paren", `(1 + 2;`, MissingRightParen},
		{"missing ternary colon", `true ? 1 2;`, MissingColonInTernary},
		{"invalid assignment target", `1 = 2;`, LValueMustBeAnIdentifier},
		{"missing while paren", `while x < 3 { }`, MissingWhileConditionLeftParen},
		{"missing if paren", `if true { }`, MissingIfConditionLeftParen},
		{"reserved keyword", `print 1;`, ReservedKeywordNotImplemented},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := lexer.New(tt.source).Scan()
			if err != nil {
				t.Fatalf("scan error: %v", err)
			}
			_, errs := Make(tokens).Parse()
			if len(errs) == 0 {
				t.Fatalf("expected a syntax error for %q", tt.source)
			}
			syntaxErr, ok := errs[0].(SyntaxError)
			if !ok {
				t.Fatalf("expected SyntaxError, got %T: %v", errs[0], errs[0])
			}
			if syntaxErr.Kind != tt.kind {
				t.Fatalf("expected kind %s, got %s", tt.kind, syntaxErr.Kind)
			}
		})
	}
}

func TestParseIdAssignedToEveryVariableReference(t *testing.T) {
	source := `var a = 1; a = a + 1;`
	tokens, err := lexer.New(source).Scan()
	if err != nil {
		t.Fatalf("scan error: %v", err)
	}
	stmts, errs := Make(tokens).Parse()
	if len(errs) > 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(stmts))
	}
	exprStmt, ok := stmts[1].(ast.ExpressionStmt)
	if !ok {
		t.Fatalf("expected an ExpressionStmt, got %T", stmts[1])
	}
	assign, ok := exprStmt.Expression.(ast.Assign)
	if !ok {
		t.Fatalf("expected an Assign expression, got %T", exprStmt.Expression)
	}
	binary, ok := assign.Value.(ast.Binary)
	if !ok {
		t.Fatalf("expected a Binary value, got %T", assign.Value)
	}
	variable, ok := binary.Left.(ast.Variable)
	if !ok {
		t.Fatalf("expected a Variable operand, got %T", binary.Left)
	}
	if assign.Id == variable.Id {
		t.Fatalf("expected distinct ids for the assignment and the variable reference, both got %d", assign.Id)
	}
}
