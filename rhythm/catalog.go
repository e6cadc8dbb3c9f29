package rhythm

import "fmt"

// The catalog of shipped patterns. Built once at init and never mutated;
// adding a pattern is a data change here, not a runtime registration.

var catalogOrder []string
var catalog = map[string]Pattern{}

func register(key string, p Pattern, err error) {
	if err != nil {
		panic("bad built-in pattern " + key + ": " + err.Error())
	}
	catalog[key] = p
	catalogOrder = append(catalogOrder, key)
}

func grid(v ...int) []bool {
	out := make([]bool, len(v))
	for i, b := range v {
		out[i] = b != 0
	}
	return out
}

func init() {
	p, err := NewGridPattern("Basic", 4, grid(1, 0, 0, 0))
	register("basic", p, err)

	p, err = NewGridPattern("Backbeat", 8, grid(0, 0, 1, 0, 0, 0, 1, 0))
	register("backbeat", p, err)

	p, err = NewGridPattern("Offbeats", 8, grid(0, 1, 0, 1, 0, 1, 0, 1))
	register("offbeat", p, err)

	p, err = NewGridPattern("Son Clave", 16, grid(1, 0, 0, 1, 0, 0, 1, 0, 0, 0, 1, 0, 1, 0, 0, 0))
	register("son-clave", p, err)

	p, err = NewPolyPattern("3 over 2", 3, 2)
	register("poly-3-2", p, err)

	p, err = NewPolyPattern("4 over 3", 4, 3)
	register("poly-4-3", p, err)

	p, err = NewPolyPattern("5 over 4", 5, 4)
	register("poly-5-4", p, err)
}

// Lookup returns the pattern registered under key.
func Lookup(key string) (Pattern, error) {
	p, ok := catalog[key]
	if !ok {
		return Pattern{}, fmt.Errorf("%w: %q", ErrPatternNotFound, key)
	}
	return p, nil
}

// Keys returns the catalog keys in registration order, for populating UI
// choices. The returned slice is a copy.
func Keys() []string {
	out := make([]string, len(catalogOrder))
	copy(out, catalogOrder)
	return out
}
