package audio

import (
	"math"
	"testing"

	"github.com/gopxl/beep"

	"go-rhythm/rhythm"
)

// Tests drive the engine's Stream directly; no speaker is opened.

func newTestEngine() *engine {
	return &engine{sr: beep.SampleRate(1000)} // 1kHz keeps sample math readable
}

func stream(e *engine, n int) [][2]float64 {
	buf := make([][2]float64, n)
	got, ok := e.Stream(buf)
	if got != n || !ok {
		panic("engine stream short read")
	}
	return buf
}

func peak(buf [][2]float64) float64 {
	var p float64
	for _, s := range buf {
		if a := math.Abs(s[0]); a > p {
			p = a
		}
	}
	return p
}

func TestClockFollowsStreamedSamples(t *testing.T) {
	e := newTestEngine()
	if now := e.now(); now != 0 {
		t.Fatalf("fresh engine clock = %v, want 0", now)
	}
	stream(e, 500)
	if now := e.now(); math.Abs(now-0.5) > 1e-9 {
		t.Errorf("after 500 samples at 1kHz clock = %v, want 0.5", now)
	}
}

func TestClickAudibleOnlyAroundItsTime(t *testing.T) {
	e := newTestEngine()
	if err := e.schedule(0.5, rhythm.KindNormal, 1.0); err != nil {
		t.Fatal(err)
	}

	before := stream(e, 500) // samples 0..499
	if p := peak(before); p != 0 {
		t.Errorf("audio before the click, peak %v", p)
	}
	during := stream(e, 100) // samples 500..599, click runs 30ms = 30 samples
	if p := peak(during); p == 0 {
		t.Error("silence where the click should sound")
	}
	after := stream(e, 500)
	if p := peak(after); p != 0 {
		t.Errorf("audio after the burst ended, peak %v", p)
	}
}

func TestClickSpanningBufferBoundary(t *testing.T) {
	e := newTestEngine()
	if err := e.schedule(0.49, rhythm.KindNormal, 1.0); err != nil {
		t.Fatal(err)
	}
	first := stream(e, 500) // click starts at sample 490
	second := stream(e, 500)
	if peak(first) == 0 {
		t.Error("click head missing from first buffer")
	}
	if peak(second) == 0 {
		t.Error("click tail missing from second buffer")
	}
}

func TestCoincidentClicksMix(t *testing.T) {
	e := newTestEngine()
	if err := e.schedule(0.0, rhythm.KindGridA, 1.0); err != nil {
		t.Fatal(err)
	}
	if err := e.schedule(0.0, rhythm.KindGridB, 1.0); err != nil {
		t.Fatal(err)
	}
	buf := stream(e, 50)
	if peak(buf) == 0 {
		t.Fatal("coincident downbeat produced silence")
	}

	// Both voices must be gone from the queue once played out.
	stream(e, 100)
	e.mu.Lock()
	left := len(e.clicks)
	e.mu.Unlock()
	if left != 0 {
		t.Errorf("%d clicks retained after playing out", left)
	}
}

func TestLateScheduleRejected(t *testing.T) {
	e := newTestEngine()
	stream(e, 1000) // clock is now at 1.0s
	if err := e.schedule(0.5, rhythm.KindAccent, 1.0); err == nil {
		t.Fatal("click in the past accepted")
	}
	// The future is still fine.
	if err := e.schedule(1.5, rhythm.KindAccent, 1.0); err != nil {
		t.Fatalf("future click rejected: %v", err)
	}
}

func TestVelocityScalesAmplitude(t *testing.T) {
	loud := newTestEngine()
	quiet := newTestEngine()
	if err := loud.schedule(0, rhythm.KindNormal, 1.0); err != nil {
		t.Fatal(err)
	}
	if err := quiet.schedule(0, rhythm.KindNormal, 0.5); err != nil {
		t.Fatal(err)
	}
	pl := peak(stream(loud, 50))
	pq := peak(stream(quiet, 50))
	if pq >= pl {
		t.Errorf("velocity 0.5 peak %v not below velocity 1.0 peak %v", pq, pl)
	}
}
