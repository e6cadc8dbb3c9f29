package midiout

import (
	"bytes"
	"sync"
	"testing"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"

	"go-rhythm/rhythm"
)

type captureSender struct {
	mu   sync.Mutex
	msgs []gomidi.Message
}

func (c *captureSender) send(m gomidi.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, m)
	return nil
}

func (c *captureSender) all() []gomidi.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]gomidi.Message, len(c.msgs))
	copy(out, c.msgs)
	return out
}

func newTestRenderer(c *captureSender) *Renderer {
	return &Renderer{portName: "test", send: c.send, epoch: time.Now()}
}

func TestNoteFor(t *testing.T) {
	cases := map[rhythm.EventKind]uint8{
		rhythm.KindAccent: 76,
		rhythm.KindNormal: 77,
		rhythm.KindGridA:  56,
		rhythm.KindGridB:  75,
	}
	for kind, want := range cases {
		if got := noteFor(kind); got != want {
			t.Errorf("noteFor(%s) = %d, want %d", kind, got, want)
		}
	}
}

func TestScheduleDueEventFiresImmediately(t *testing.T) {
	rec := &captureSender{}
	r := newTestRenderer(rec)

	if err := r.Schedule(0, rhythm.KindAccent, 1.0); err != nil {
		t.Fatal(err)
	}

	msgs := rec.all()
	if len(msgs) != 2 {
		t.Fatalf("%d messages sent, want note on + note off", len(msgs))
	}
	wantOn := gomidi.NoteOn(percussionChannel, 76, 127)
	if !bytes.Equal(msgs[0], wantOn) {
		t.Errorf("first message % X, want % X", []byte(msgs[0]), []byte(wantOn))
	}
	wantOff := gomidi.NoteOff(percussionChannel, 76)
	if !bytes.Equal(msgs[1], wantOff) {
		t.Errorf("second message % X, want % X", []byte(msgs[1]), []byte(wantOff))
	}
}

func TestScheduleFutureEventWaits(t *testing.T) {
	rec := &captureSender{}
	r := newTestRenderer(rec)

	if err := r.Schedule(0.05, rhythm.KindNormal, 0.7); err != nil {
		t.Fatal(err)
	}
	if n := len(rec.all()); n != 0 {
		t.Fatalf("%d messages sent before the event was due", n)
	}

	time.Sleep(150 * time.Millisecond)
	if n := len(rec.all()); n != 2 {
		t.Fatalf("%d messages after the event was due, want 2", n)
	}
}

func TestVelocityClamped(t *testing.T) {
	rec := &captureSender{}
	r := newTestRenderer(rec)

	if err := r.Schedule(0, rhythm.KindNormal, 2.5); err != nil {
		t.Fatal(err)
	}
	wantOn := gomidi.NoteOn(percussionChannel, 77, 127)
	if msgs := rec.all(); !bytes.Equal(msgs[0], wantOn) {
		t.Errorf("velocity not clamped: % X", []byte(msgs[0]))
	}
}
