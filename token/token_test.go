package token

import (
	"testing"
)

func TestCreateToken(t *testing.T) {
	tests := []struct {
		name      string
		tokenType TokenType
		line      int32
		column    int
		want      Token
	}{
		{
			name:      "Create ASSIGN token",
			tokenType: ASSIGN,
			line:      1,
			column:    3,
			want:      Token{TokenType: ASSIGN, Lexeme: "=", Line: 1, Column: 3},
		},
		{
			name:      "Create LPA token",
			tokenType: LPA,
			line:      2,
			column:    0,
			want:      Token{TokenType: LPA, Lexeme: "(", Line: 2, Column: 0},
		},
		{
			name:      "Create QUESTION token",
			tokenType: QUESTION,
			line:      5,
			column:    7,
			want:      Token{TokenType: QUESTION, Lexeme: "?", Line: 5, Column: 7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CreateToken(tt.tokenType, tt.line, tt.column)
			if got != tt.want {
				t.Errorf("CreateToken() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCreateLiteralToken(t *testing.T) {
	tests := []struct {
		name    string
		literal any
		lexeme  string
		want    Token
	}{
		{
			name:    "Create NUMBER token",
			literal: 42.0,
			lexeme:  "42",
			want:    Token{TokenType: NUMBER, Lexeme: "42", Literal: 42.0, Line: 3, Column: 10},
		},
		{
			name:    "Create STRING token",
			literal: "hi",
			lexeme:  "hi",
			want:    Token{TokenType: STRING, Lexeme: "hi", Literal: "hi", Line: 3, Column: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CreateLiteralToken(tt.want.TokenType, tt.literal, tt.lexeme, 3, 10)
			if got != tt.want {
				t.Errorf("CreateLiteralToken() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKeyWordsCoverReservedSet(t *testing.T) {
	for _, kw := range []string{"fun", "or", "and", "while", "for", "var", "return", "if", "else", "true", "false", "nil", "class", "this", "super", "print"} {
		if _, ok := KeyWords[kw]; !ok {
			t.Errorf("KeyWords missing entry for %q", kw)
		}
	}
}

func TestReservedNotImplementedMatchesNonGoals(t *testing.T) {
	for _, tt := range []TokenType{RETURN, FOR, CLASS, THIS, SUPER, PRINT} {
		if !ReservedNotImplemented[tt] {
			t.Errorf("expected %s to be marked reserved-not-implemented", tt)
		}
	}
	if ReservedNotImplemented[IF] || ReservedNotImplemented[WHILE] || ReservedNotImplemented[FUNC] {
		t.Errorf("implemented keywords must not be marked reserved-not-implemented")
	}
}
