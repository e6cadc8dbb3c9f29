package rhythm

import (
	"errors"
	"testing"
)

func TestNewGridPatternValidation(t *testing.T) {
	if _, err := NewGridPattern("x", 0, nil); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("slots=0: err = %v, want ErrInvalidParameter", err)
	}
	if _, err := NewGridPattern("x", 4, []bool{true, false}); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("accent length mismatch: err = %v, want ErrInvalidParameter", err)
	}
	p, err := NewGridPattern("x", 4, []bool{true, false, false, false})
	if err != nil {
		t.Fatalf("valid grid rejected: %v", err)
	}
	if p.Modulus() != 4 {
		t.Errorf("Modulus() = %d, want 4", p.Modulus())
	}
}

func TestNewGridPatternCopiesAccents(t *testing.T) {
	accents := []bool{true, false}
	p, err := NewGridPattern("x", 2, accents)
	if err != nil {
		t.Fatal(err)
	}
	accents[0] = false
	if !p.Accents[0] {
		t.Error("pattern shares caller's accents slice")
	}
}

func TestNewPolyPatternValidation(t *testing.T) {
	if _, err := NewPolyPattern("x", 0, 3); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("countA=0: err = %v, want ErrInvalidParameter", err)
	}
	if _, err := NewPolyPattern("x", 3, -1); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("countB=-1: err = %v, want ErrInvalidParameter", err)
	}
	p, err := NewPolyPattern("x", 2, 3)
	if err != nil {
		t.Fatalf("valid poly rejected: %v", err)
	}
	if p.Modulus() != 6 {
		t.Errorf("Modulus() = %d, want 6", p.Modulus())
	}
}

func TestGridStepTriggers(t *testing.T) {
	p, _ := Lookup("basic")
	for step := 0; step < 8; step++ {
		trs := p.stepTriggers(step)
		if len(trs) != 1 {
			t.Fatalf("step %d: %d triggers, want 1", step, len(trs))
		}
		if step%4 == 0 {
			if trs[0].kind != KindAccent || trs[0].velocity != 1.0 {
				t.Errorf("step %d: got %v vel %v, want accent 1.0", step, trs[0].kind, trs[0].velocity)
			}
		} else {
			if trs[0].kind != KindNormal || trs[0].velocity != 0.7 {
				t.Errorf("step %d: got %v vel %v, want normal 0.7", step, trs[0].kind, trs[0].velocity)
			}
		}
	}
}

func TestPolyStepTriggers(t *testing.T) {
	p, err := NewPolyPattern("2 over 3", 2, 3)
	if err != nil {
		t.Fatal(err)
	}
	want := map[int][]EventKind{
		0: {KindGridA, KindGridB},
		1: nil,
		2: {KindGridB},
		3: {KindGridA},
		4: {KindGridB},
		5: nil,
	}
	for tick := 0; tick < 6; tick++ {
		trs := p.stepTriggers(tick)
		var kinds []EventKind
		for _, tr := range trs {
			kinds = append(kinds, tr.kind)
		}
		if len(kinds) != len(want[tick]) {
			t.Fatalf("tick %d: kinds %v, want %v", tick, kinds, want[tick])
		}
		for i := range kinds {
			if kinds[i] != want[tick][i] {
				t.Errorf("tick %d: kinds %v, want %v", tick, kinds, want[tick])
			}
		}
	}
}

func TestLookup(t *testing.T) {
	if _, err := Lookup("no-such-pattern"); !errors.Is(err, ErrPatternNotFound) {
		t.Errorf("unknown key: err = %v, want ErrPatternNotFound", err)
	}
	for _, key := range Keys() {
		if _, err := Lookup(key); err != nil {
			t.Errorf("catalog key %q failed lookup: %v", key, err)
		}
	}
}

func TestCatalogKeysStable(t *testing.T) {
	a := Keys()
	b := Keys()
	if len(a) == 0 {
		t.Fatal("empty catalog")
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("Keys() order unstable: %v vs %v", a, b)
		}
	}
	// Returned slice is a copy.
	a[0] = "mutated"
	if Keys()[0] == "mutated" {
		t.Error("Keys() exposes internal slice")
	}
}
