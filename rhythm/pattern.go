package rhythm

import "fmt"

// EventKind classifies a trigger event for the renderer. Renderers map kinds
// to timbres (click pitches, percussion notes).
type EventKind int

const (
	KindAccent EventKind = iota
	KindNormal
	KindGridA
	KindGridB
)

func (k EventKind) String() string {
	switch k {
	case KindAccent:
		return "accent"
	case KindNormal:
		return "normal"
	case KindGridA:
		return "gridA"
	case KindGridB:
		return "gridB"
	}
	return "unknown"
}

// PatternKind selects the variant of a Pattern.
type PatternKind int

const (
	PatternGrid PatternKind = iota
	PatternPoly
)

// PolyGrid is one voice of a polyrhythm: Count evenly spaced hits per bar,
// rendered with the given event kind.
type PolyGrid struct {
	Count int
	Kind  EventKind
}

// Pattern is a closed variant: either an accented grid (Kind == PatternGrid,
// Slots/Accents populated) or a two-voice polyrhythm (Kind == PatternPoly,
// GridA/GridB populated). Patterns are immutable once constructed.
type Pattern struct {
	Name string
	Kind PatternKind

	// Grid
	Slots   int
	Accents []bool

	// Poly
	GridA PolyGrid
	GridB PolyGrid
}

// NewGridPattern builds a grid pattern, enforcing that accents has exactly
// one entry per slot.
func NewGridPattern(name string, slots int, accents []bool) (Pattern, error) {
	if slots < 1 {
		return Pattern{}, fmt.Errorf("%w: slots per bar %d < 1", ErrInvalidParameter, slots)
	}
	if len(accents) != slots {
		return Pattern{}, fmt.Errorf("%w: %d accents for %d slots", ErrInvalidParameter, len(accents), slots)
	}
	acc := make([]bool, len(accents))
	copy(acc, accents)
	return Pattern{Name: name, Kind: PatternGrid, Slots: slots, Accents: acc}, nil
}

// NewPolyPattern builds a two-voice polyrhythm pattern.
func NewPolyPattern(name string, countA, countB int) (Pattern, error) {
	if countA < 1 || countB < 1 {
		return Pattern{}, fmt.Errorf("%w: poly counts %d:%d", ErrInvalidParameter, countA, countB)
	}
	return Pattern{
		Name:  name,
		Kind:  PatternPoly,
		GridA: PolyGrid{Count: countA, Kind: KindGridA},
		GridB: PolyGrid{Count: countB, Kind: KindGridB},
	}, nil
}

// Modulus is the number of scheduler steps in one bar: the slot count for a
// grid, lcm of the two counts for a polyrhythm.
func (p Pattern) Modulus() int {
	if p.Kind == PatternPoly {
		return lcm(p.GridA.Count, p.GridB.Count)
	}
	return p.Slots
}

// StepDuration is the seconds between consecutive scheduler steps at the
// given tempo and signature.
func (p Pattern) StepDuration(bpm float64, sig TimeSignature) float64 {
	if p.Kind == PatternPoly {
		return PolyTickDuration(bpm, sig, p.GridA.Count, p.GridB.Count)
	}
	return GridSlotDuration(bpm, sig, p.Slots)
}

// trigger is one dispatchable event at a step.
type trigger struct {
	kind     EventKind
	velocity float64
}

// stepTriggers computes the events due at a step: exactly one for a grid,
// zero to two for a polyrhythm (both voices may land on the same tick).
func (p Pattern) stepTriggers(step int) []trigger {
	if p.Kind == PatternGrid {
		if IsAccentSlot(p.Accents, step) {
			return []trigger{{KindAccent, 1.0}}
		}
		return []trigger{{KindNormal, 0.7}}
	}

	var out []trigger
	mod := p.Modulus()
	if IsGridTick(step, mod, p.GridA.Count) {
		out = append(out, trigger{p.GridA.Kind, 1.0})
	}
	if IsGridTick(step, mod, p.GridB.Count) {
		out = append(out, trigger{p.GridB.Kind, 1.0})
	}
	return out
}
