package audio

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"go-rhythm/rhythm"
)

const (
	defaultSampleRate = 44100
	clickSeconds      = 0.03 // decaying sine burst length
	envelopeRate      = 120  // exponential decay rate, fades a burst well inside clickSeconds
)

// clickFreq maps an event kind to a click pitch. Accents sit an octave above
// normal clicks; the two polyrhythm voices get distinct pitches in between.
func clickFreq(kind rhythm.EventKind) float64 {
	switch kind {
	case rhythm.KindAccent:
		return 1760
	case rhythm.KindGridA:
		return 1320
	case rhythm.KindGridB:
		return 990
	}
	return 880
}

// click is one scheduled burst, positioned on the engine's sample clock.
type click struct {
	start int64
	freq  float64
	amp   float64
}

// engine mixes scheduled clicks into an endless stream. It doubles as the
// audio clock: now is simply the number of samples streamed so far, which is
// monotonic and immune to UI-thread jitter.
type engine struct {
	sr beep.SampleRate

	mu     sync.Mutex
	pos    int64
	clicks []click
}

func (e *engine) now() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return float64(e.pos) / float64(e.sr)
}

func (e *engine) schedule(at float64, kind rhythm.EventKind, velocity float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := int64(at * float64(e.sr))
	if start < e.pos {
		return fmt.Errorf("click at %.3fs is already %.3fs in the past",
			at, float64(e.pos-start)/float64(e.sr))
	}
	e.clicks = append(e.clicks, click{start: start, freq: clickFreq(kind), amp: velocity})
	return nil
}

func (e *engine) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		samples[i] = [2]float64{}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	burst := int64(clickSeconds * float64(e.sr))
	end := e.pos + int64(len(samples))

	kept := e.clicks[:0]
	for _, c := range e.clicks {
		if c.start+burst <= e.pos {
			continue
		}
		from := c.start
		if from < e.pos {
			from = e.pos
		}
		for s := from; s < end && s < c.start+burst; s++ {
			t := float64(s-c.start) / float64(e.sr)
			v := c.amp * math.Exp(-envelopeRate*t) * math.Sin(2*math.Pi*c.freq*t)
			samples[s-e.pos][0] += v
			samples[s-e.pos][1] += v
		}
		if c.start+burst > end {
			kept = append(kept, c)
		}
	}
	e.clicks = kept
	e.pos = end
	return len(samples), true
}

func (e *engine) Err() error { return nil }

// Renderer plays click tones through the default speaker. It implements both
// rhythm.Renderer and rhythm.Clock, the clock being the stream's sample
// position - the same timebase Schedule positions clicks on.
type Renderer struct {
	eng *engine
}

// NewRenderer opens the speaker and starts the click stream.
func NewRenderer() (*Renderer, error) {
	sr := beep.SampleRate(defaultSampleRate)
	if err := speaker.Init(sr, sr.N(20*time.Millisecond)); err != nil {
		return nil, fmt.Errorf("opening speaker: %w", err)
	}
	eng := &engine{sr: sr}
	speaker.Play(eng)
	return &Renderer{eng: eng}, nil
}

// Schedule queues a click at the given time on the audio clock. Clicks whose
// time has already passed are rejected, not played late.
func (r *Renderer) Schedule(at float64, kind rhythm.EventKind, velocity float64) error {
	return r.eng.schedule(at, kind, velocity)
}

// Now returns seconds of audio streamed so far.
func (r *Renderer) Now() (float64, error) {
	return r.eng.now(), nil
}

// Close tears down the speaker.
func (r *Renderer) Close() {
	speaker.Close()
}
