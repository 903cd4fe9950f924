package resolver

import (
	"testing"

	"nilan/lexer"
	"nilan/parser"
)

func resolve(t *testing.T, source string) (map[int]int, []error) {
	t.Helper()
	tokens, err := lexer.New(source).Scan()
	if err != nil {
		t.Fatalf("scan error: %v", err)
	}
	statements, parseErrs := parser.Make(tokens).Parse()
	if len(parseErrs) > 0 {
		t.Fatalf("parse errors: %v", parseErrs)
	}
	return New().Resolve(statements)
}

func TestResolveGlobalAndLocal(t *testing.T) {
	_, errs := resolve(t, `var a = 1; { var b = a + 1; println(b); }`)
	if len(errs) != 0 {
		t.Fatalf("expected no static errors, got %v", errs)
	}
}

func TestResolveUseBeforeInitialization(t *testing.T) {
	_, errs := resolve(t, `var a = 1; { var a = a; }`)
	if len(errs) != 1 {
		t.Fatalf("expected exactly one static error, got %v", errs)
	}
	staticErr, ok := errs[0].(StaticError)
	if !ok {
		t.Fatalf("expected StaticError, got %T", errs[0])
	}
	if staticErr.Kind != UseBeforeInitialization {
		t.Fatalf("expected UseBeforeInitialization, got %s", staticErr.Kind)
	}
}

func TestResolveUndefinedIdentifier(t *testing.T) {
	_, errs := resolve(t, `println(unknown);`)
	if len(errs) != 1 {
		t.Fatalf("expected exactly one static error, got %v", errs)
	}
	staticErr, ok := errs[0].(StaticError)
	if !ok {
		t.Fatalf("expected StaticError, got %T", errs[0])
	}
	if staticErr.Kind != UndefinedIdentifierReference {
		t.Fatalf("expected UndefinedIdentifierReference, got %s", staticErr.Kind)
	}
}

func TestResolveClosureCapturesOuterLocal(t *testing.T) {
	locals, errs := resolve(t, `
		fun make() {
			var c = 0;
			fun inc() { c = c + 1; c; }
			inc;
		}
	`)
	if len(errs) != 0 {
		t.Fatalf("expected no static errors, got %v", errs)
	}
	if len(locals) == 0 {
		t.Fatalf("expected locals to be populated for the closure's references to c")
	}
}

func TestResolveNativesAlwaysReachable(t *testing.T) {
	_, errs := resolve(t, `println(clock());`)
	if len(errs) != 0 {
		t.Fatalf("expected natives to resolve without error, got %v", errs)
	}
}
