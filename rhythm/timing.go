package rhythm

import "fmt"

// Pure timing math. Validation happens at the setter/constructor boundaries,
// not here - callers pass values that were already accepted.

// TimeSignature is a displayed signature. Only the numerator participates in
// duration math (beats per bar); the denominator is carried for the UI.
type TimeSignature struct {
	Numerator   int `json:"numerator"`
	Denominator int `json:"denominator"`
}

func (s TimeSignature) String() string {
	return fmt.Sprintf("%d/%d", s.Numerator, s.Denominator)
}

// GridSlotDuration returns the length in seconds of one grid slot:
// a bar spans sig.Numerator beats at 60/bpm seconds each, divided evenly
// into slotsPerBar slots.
func GridSlotDuration(bpm float64, sig TimeSignature, slotsPerBar int) float64 {
	return (float64(sig.Numerator) / float64(slotsPerBar)) * (60.0 / bpm)
}

// PolyTickDuration returns the length in seconds of one polyrhythm tick.
// The bar is subdivided into lcm(countA, countB) ticks so that both grids
// land exactly on tick boundaries.
func PolyTickDuration(bpm float64, sig TimeSignature, countA, countB int) float64 {
	bar := float64(sig.Numerator) * 60.0 / bpm
	return bar / float64(lcm(countA, countB))
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func lcm(a, b int) int {
	return a / gcd(a, b) * b
}

// IsAccentSlot reports whether a grid step is accented. The step wraps at the
// slot count so callers may pass a running step counter.
func IsAccentSlot(accents []bool, step int) bool {
	return accents[step%len(accents)]
}

// IsGridTick reports whether a polyrhythm tick belongs to a grid of the given
// count inside a bar of lcmTicks ticks. Tick 0 belongs to every grid - the
// shared downbeat - including non-coprime count pairs.
func IsGridTick(tick, lcmTicks, count int) bool {
	return tick%(lcmTicks/count) == 0
}
