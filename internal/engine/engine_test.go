package engine

import (
	"fmt"
	"testing"
)

func TestSplitQualified(t *testing.T) {
	tests := []struct {
		name      string
		wantMod   string
		wantRest  string
		qualified bool
	}{
		{"str:trim", "str", "trim", true},
		{"plain", "", "plain", false},
		{"a:b:c", "a", "b:c", true},
		{":x", "", "x", true},
	}
	for _, tt := range tests {
		mod, rest, ok := SplitQualified(tt.name)
		if ok != tt.qualified || mod != tt.wantMod || rest != tt.wantRest {
			t.Errorf("SplitQualified(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tt.name, mod, rest, ok, tt.wantMod, tt.wantRest, tt.qualified)
		}
	}
}

func TestResolveQualified(t *testing.T) {
	e := New()
	e.AddModule(NewModule("m").AddFunc("f", func(rt Runtime) error { return nil }))

	if _, ok := e.ResolveQualified("m:f"); !ok {
		t.Errorf("m:f should resolve")
	}
	if _, ok := e.ResolveQualified("m:missing"); ok {
		t.Errorf("m:missing should not resolve")
	}
	if _, ok := e.ResolveQualified("other:f"); ok {
		t.Errorf("an unregistered module should not resolve")
	}
	if _, ok := e.ResolveQualified("f"); ok {
		t.Errorf("an unqualified name should not resolve")
	}
}

func TestLoader(t *testing.T) {
	loads := 0
	e := New()
	e.SetLoader(func(name string) (*Module, error) {
		if name != "demo" {
			return nil, fmt.Errorf("unknown module %q", name)
		}
		loads++
		return NewModule(name).AddFunc("f", func(rt Runtime) error { return nil }), nil
	})

	if err := e.Load("demo"); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if _, ok := e.Module("demo"); !ok {
		t.Fatalf("loaded module not registered")
	}

	// a second load of the same name is a no-op
	if err := e.Load("demo"); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if loads != 1 {
		t.Errorf("loader ran %d times, want 1", loads)
	}

	if err := e.Load("nope"); err == nil {
		t.Errorf("loading an unknown module should fail")
	}
}

func TestLoadWithoutLoader(t *testing.T) {
	e := New()
	if err := e.Load("anything"); err == nil {
		t.Errorf("load without a configured loader should fail")
	}
}
