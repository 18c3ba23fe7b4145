package rhema

import "testing"

func TestEnvLookup(t *testing.T) {
	root := NewEnv(nil)
	root.Define("x", IntVal(1))
	child := NewEnv(root)
	child.Define("y", IntVal(2))

	if v, err := child.Lookup("x"); err != nil || v.String() != "1" {
		t.Fatalf("Lookup x via parent: %v %v", v, err)
	}
	if v, err := child.Lookup("y"); err != nil || v.String() != "2" {
		t.Fatalf("Lookup y: %v %v", v, err)
	}
	if _, err := root.Lookup("y"); err == nil {
		t.Fatal("child binding visible from parent")
	}
	if _, err := child.Lookup("z"); err == nil {
		t.Fatal("expected unbound error")
	}
}

func TestEnvShadowing(t *testing.T) {
	root := NewEnv(nil)
	root.Define("x", IntVal(1))
	child := root.Extend("x", IntVal(2))

	if v, _ := child.Lookup("x"); v.String() != "2" {
		t.Fatalf("inner binding should win, got %s", v)
	}
	if v, _ := root.Lookup("x"); v.String() != "1" {
		t.Fatalf("outer binding disturbed, got %s", v)
	}
}

func TestEnvExtendDoesNotMutate(t *testing.T) {
	root := NewEnv(nil)
	a := root.Extend("x", IntVal(1))
	b := root.Extend("x", IntVal(2))
	if v, _ := a.Lookup("x"); v.String() != "1" {
		t.Fatalf("sibling extension leaked: %s", v)
	}
	if v, _ := b.Lookup("x"); v.String() != "2" {
		t.Fatalf("sibling extension leaked: %s", v)
	}
	if _, err := root.Lookup("x"); err == nil {
		t.Fatal("Extend mutated the receiver")
	}
}

func TestEnvMutate(t *testing.T) {
	root := NewEnv(nil)
	root.Define("x", IntVal(1))
	inner := NewEnv(NewEnv(root))

	if err := inner.Mutate("x", IntVal(9)); err != nil {
		t.Fatalf("Mutate: %v", err)
	}
	if v, _ := root.Lookup("x"); v.String() != "9" {
		t.Fatalf("Mutate did not reach the owning frame, got %s", v)
	}
	if err := inner.Mutate("missing", IntVal(1)); err == nil {
		t.Fatal("Mutate created a binding for an unbound name")
	}
}

func TestEnvDeepChain(t *testing.T) {
	// lookups walk iteratively, so very long chains are fine
	root := NewEnv(nil)
	root.Define("deep", SymbolVal("found"))
	env := root
	for i := 0; i < 100000; i++ {
		env = env.Extend("pad", Nil)
	}
	v, err := env.Lookup("deep")
	if err != nil || !v.IsSymbol("found") {
		t.Fatalf("deep lookup failed: %v %v", v, err)
	}
}
