package rhythm

import (
	"fmt"
	"sync"
	"time"

	"go-rhythm/debug"
)

// Renderer is the sound backend the transport dispatches to. Schedule is
// fire-and-forget from the transport's point of view: errors are logged and
// that single event is dropped, the transport keeps running.
type Renderer interface {
	Schedule(at float64, kind EventKind, velocity float64) error
}

// Clock is a monotonic time source on the same timebase as the Renderer's
// scheduling timestamps. It must not be a wall clock subject to UI jitter.
type Clock interface {
	Now() (float64, error)
}

// Scheduling constants. The poll wakes every pollInterval and schedules
// everything due within scheduleAhead; leadIn gives the renderer slack on
// the very first event after (re)priming.
const (
	leadIn        = 0.05
	scheduleAhead = 0.1
	pollInterval  = 25 * time.Millisecond

	// Catch-up guard after host suspension: never emit more than
	// maxCatchUpEvents per poll, and once the cursor lags the clock by more
	// than stallThreshold seconds, clamp it forward and drop the backlog.
	maxCatchUpEvents = 64
	stallThreshold   = 1.0
)

// Tempo bounds enforced by SetTempo (clamped, not rejected).
const (
	MinTempo = 20
	MaxTempo = 400
)

// scheduleState is the playback cursor. Owned exclusively by the Transport
// and only touched under its mutex; while playing, nextEventTime advances by
// exactly one step duration per step and never decreases.
type scheduleState struct {
	step          int
	nextEventTime float64
	playing       bool
}

// Transport is the playback state machine: Stopped or Playing, a periodic
// lookahead poll while Playing, and validated parameter setters that reprime
// the cursor mid-playback.
type Transport struct {
	renderer Renderer
	clock    Clock

	mu         sync.Mutex
	tempo      float64
	sig        TimeSignature
	patternKey string
	pattern    Pattern
	st         scheduleState
	gen        int // bumped on every Start/Stop; stale polls check it before touching state
	stopChan   chan struct{}
}

// NewTransport creates a stopped transport with the given collaborators and
// defaults of 120 bpm, 4/4, pattern "basic".
func NewTransport(r Renderer, c Clock) *Transport {
	pat, _ := Lookup("basic")
	return &Transport{
		renderer:   r,
		clock:      c,
		tempo:      120,
		sig:        TimeSignature{Numerator: 4, Denominator: 4},
		patternKey: "basic",
		pattern:    pat,
	}
}

// Start transitions Stopped -> Playing. It reads the audio clock once to
// prime the cursor; if the clock cannot be read the transport stays Stopped.
func (t *Transport) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.st.playing {
		return nil
	}

	now, err := t.clock.Now()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrClockUnavailable, err)
	}

	t.gen++
	t.st = scheduleState{step: 0, nextEventTime: now + leadIn, playing: true}
	t.stopChan = make(chan struct{})

	go t.pollLoop(t.gen, t.stopChan)

	debug.Log("transport", "start bpm=%.1f sig=%s pattern=%s", t.tempo, t.sig, t.patternKey)
	return nil
}

// Stop transitions Playing -> Stopped. No event is dispatched after Stop
// returns: dispatch only happens under the mutex with a matching generation,
// and Stop bumps the generation while holding it.
func (t *Transport) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.st.playing {
		return
	}
	t.st.playing = false
	t.gen++
	close(t.stopChan)
	debug.Log("transport", "stop")
}

// SetTempo clamps bpm to [MinTempo, MaxTempo] and reprimes if playing.
func (t *Transport) SetTempo(bpm float64) {
	if bpm < MinTempo {
		bpm = MinTempo
	}
	if bpm > MaxTempo {
		bpm = MaxTempo
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.tempo = bpm
	t.reprimeLocked()
}

// SetTimeSignature validates and stores a new signature, repriming if
// playing. Prior state is untouched on rejection.
func (t *Transport) SetTimeSignature(sig TimeSignature) error {
	if sig.Numerator < 1 || sig.Denominator < 1 {
		return fmt.Errorf("%w: time signature %d/%d", ErrInvalidParameter, sig.Numerator, sig.Denominator)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.sig = sig
	t.reprimeLocked()
	return nil
}

// SetPattern looks up a catalog pattern and makes it current, repriming if
// playing. Unknown keys are rejected and the prior pattern kept.
func (t *Transport) SetPattern(key string) error {
	pat, err := Lookup(key)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.patternKey = key
	t.pattern = pat
	t.reprimeLocked()
	return nil
}

// reprimeLocked resets the cursor to step 0 and the next event to just past
// now. Parameter changes intentionally discard the current bar's phase.
// Caller holds t.mu.
func (t *Transport) reprimeLocked() {
	if !t.st.playing {
		return
	}
	now, err := t.clock.Now()
	if err != nil {
		// Keep the old cursor; the next poll will carry on from it.
		debug.Log("transport", "reprime clock read failed: %v", err)
		return
	}
	t.st.step = 0
	t.st.nextEventTime = now + leadIn
	debug.Log("transport", "reprime bpm=%.1f sig=%s pattern=%s", t.tempo, t.sig, t.patternKey)
}

// CurrentStep is a read-only observable for visualization (step highlighting
// at animation-frame cadence). Zero when stopped.
func (t *Transport) CurrentStep() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.st.step
}

// Playing reports the transport state.
func (t *Transport) Playing() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.st.playing
}

// Tempo returns the current tempo in bpm.
func (t *Transport) Tempo() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tempo
}

// TimeSignature returns the current signature.
func (t *Transport) TimeSignature() TimeSignature {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sig
}

// Pattern returns the current catalog key and pattern.
func (t *Transport) Pattern() (string, Pattern) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.patternKey, t.pattern
}

// pollLoop drives the lookahead poll at a fixed cadence. Ticks are delivered
// on one goroutine, so a slow poll body delays the next tick instead of
// overlapping it; the ticker drops intermediate ticks.
func (t *Transport) pollLoop(gen int, stop chan struct{}) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			t.pollOnce(gen)
		}
	}
}

// pollOnce schedules every event due within the lookahead window and
// advances the cursor. Separate from pollLoop so tests can drive it
// deterministically.
func (t *Transport) pollOnce(gen int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if gen != t.gen || !t.st.playing {
		return
	}

	now, err := t.clock.Now()
	if err != nil {
		debug.Log("transport", "poll clock read failed: %v", err)
		return
	}

	// Host was suspended: drop the backlog instead of bursting it.
	if now-t.st.nextEventTime > stallThreshold {
		debug.Log("transport", "clock stall %.2fs, clamping forward", now-t.st.nextEventTime)
		t.st.nextEventTime = now + leadIn
	}

	stepDur := t.pattern.StepDuration(t.tempo, t.sig)
	mod := t.pattern.Modulus()

	for n := 0; t.st.nextEventTime < now+scheduleAhead && n < maxCatchUpEvents; n++ {
		for _, tr := range t.pattern.stepTriggers(t.st.step) {
			if err := t.renderer.Schedule(t.st.nextEventTime, tr.kind, tr.velocity); err != nil {
				// A dropped beat beats a stalled transport.
				debug.Log("transport", "dispatch failed step=%d kind=%s: %v", t.st.step, tr.kind, err)
			} else {
				debug.LogEvery(32, "transport", "dispatch t=%.3f step=%d kind=%s", t.st.nextEventTime, t.st.step, tr.kind)
			}
		}
		t.st.nextEventTime += stepDur
		t.st.step = (t.st.step + 1) % mod
	}
}
