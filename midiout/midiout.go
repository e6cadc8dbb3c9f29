// Package midiout renders trigger events as General MIDI percussion on an
// external MIDI output port.
package midiout

import (
	"fmt"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"go-rhythm/debug"
	"go-rhythm/rhythm"
)

// GM percussion lives on MIDI channel 10 (0-indexed 9).
const percussionChannel = 9

// noteFor maps event kinds to GM percussion notes.
func noteFor(kind rhythm.EventKind) uint8 {
	switch kind {
	case rhythm.KindAccent:
		return 76 // hi wood block
	case rhythm.KindGridA:
		return 56 // cowbell
	case rhythm.KindGridB:
		return 75 // claves
	}
	return 77 // low wood block
}

// Renderer sends scheduled events as note on/off pairs on one out port. Its
// audio clock is monotonic seconds since Open; Schedule arms a timer per
// event, which is plenty for the transport's ~50ms lead-in.
type Renderer struct {
	portName string
	epoch    time.Time

	mu   sync.Mutex // timers fire concurrently; serialize port writes
	send func(gomidi.Message) error
}

// Ports lists the available MIDI output port names.
func Ports() []string {
	var out []string
	for _, p := range gomidi.GetOutPorts() {
		out = append(out, p.String())
	}
	return out
}

// Open connects to the named out port, or the first available one when name
// is empty.
func Open(name string) (*Renderer, error) {
	outs := gomidi.GetOutPorts()
	if len(outs) == 0 {
		return nil, fmt.Errorf("no MIDI output ports available")
	}

	var port drivers.Out
	if name == "" {
		port = outs[0]
	} else {
		for _, p := range outs {
			if p.String() == name {
				port = p
				break
			}
		}
	}
	if port == nil {
		return nil, fmt.Errorf("MIDI output port %q not found", name)
	}

	send, err := gomidi.SendTo(port)
	if err != nil {
		return nil, fmt.Errorf("opening MIDI port %q: %w", port.String(), err)
	}

	debug.Log("midiout", "opened port %s", port.String())
	return &Renderer{portName: port.String(), send: send, epoch: time.Now()}, nil
}

// PortName returns the connected port's name.
func (r *Renderer) PortName() string {
	return r.portName
}

// Now returns seconds since the renderer was opened.
func (r *Renderer) Now() (float64, error) {
	return time.Since(r.epoch).Seconds(), nil
}

// Schedule arms a note on/off pair for the given time on the renderer's
// clock. Events already due fire immediately.
func (r *Renderer) Schedule(at float64, kind rhythm.EventKind, velocity float64) error {
	if velocity < 0 {
		velocity = 0
	}
	if velocity > 1 {
		velocity = 1
	}
	note := noteFor(kind)
	vel := uint8(velocity * 127)

	fire := func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if err := r.send(gomidi.NoteOn(percussionChannel, note, vel)); err != nil {
			debug.Log("midiout", "note on failed note=%d: %v", note, err)
			return
		}
		if err := r.send(gomidi.NoteOff(percussionChannel, note)); err != nil {
			debug.Log("midiout", "note off failed note=%d: %v", note, err)
		}
	}

	delay := time.Duration((at - time.Since(r.epoch).Seconds()) * float64(time.Second))
	if delay <= 0 {
		fire()
	} else {
		time.AfterFunc(delay, fire)
	}
	return nil
}

// Close shuts the MIDI driver down.
func (r *Renderer) Close() {
	gomidi.CloseDriver()
}
