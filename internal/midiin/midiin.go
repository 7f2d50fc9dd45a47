// Package midiin adapts a system MIDI input port into the engine's blocking
// event feed. Raw byte decoding belongs to the gomidi driver; only typed
// note and control-change messages come out of here.
package midiin

import (
	"errors"
	"fmt"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // registers the rtmidi driver

	"github.com/sinitsinmike/2040/internal/engine"
)

// Stream is an open MIDI input implementing engine.Source. Messages arrive
// on the driver's callback goroutine and are buffered; Receive blocks until
// the next event or until Stop closes the feed.
type Stream struct {
	port drivers.In
	stop func()
	ch   chan engine.Event
}

// Ports lists the names of the available MIDI input ports.
func Ports() []string {
	ins := midi.GetInPorts()
	names := make([]string, 0, len(ins))
	for _, in := range ins {
		names = append(names, in.String())
	}
	return names
}

// Open connects to the named input port, or to the first available port
// when name is empty.
func Open(name string) (*Stream, error) {
	var in drivers.In
	if name == "" {
		ins := midi.GetInPorts()
		if len(ins) == 0 {
			return nil, errors.New("midiin: no MIDI input ports available")
		}
		in = ins[0]
	} else {
		found, err := midi.FindInPort(name)
		if err != nil {
			return nil, fmt.Errorf("midiin: %w", err)
		}
		in = found
	}

	s := &Stream{port: in, ch: make(chan engine.Event, 64)}
	stop, err := midi.ListenTo(in, s.onMessage)
	if err != nil {
		return nil, fmt.Errorf("midiin: listen to %s: %w", in, err)
	}
	s.stop = stop
	return s, nil
}

// Name returns the port name.
func (s *Stream) Name() string { return s.port.String() }

// Receive implements engine.Source.
func (s *Stream) Receive() (engine.Event, bool) {
	ev, ok := <-s.ch
	return ev, ok
}

// Stop ends listening, closes the port and closes the event feed. Must not
// be called twice.
func (s *Stream) Stop() {
	if s.stop != nil {
		s.stop()
		s.stop = nil
	}
	_ = s.port.Close()
	close(s.ch)
}

// onMessage converts a driver message to a typed event. Velocity-zero
// note-ons pass through as note-ons; the engine applies the MIDI rule that
// they mean release. Aftertouch, pitch bend, sysex and the rest are not
// part of this instrument and are dropped.
func (s *Stream) onMessage(msg midi.Message, _ int32) {
	var ch, key, vel, cc, val uint8
	switch {
	case msg.GetNoteOn(&ch, &key, &vel):
		s.send(engine.Event{Kind: engine.KindNoteOn, Note: int(key), Velocity: int(vel)})
	case msg.GetNoteOff(&ch, &key, &vel):
		s.send(engine.Event{Kind: engine.KindNoteOff, Note: int(key), Velocity: int(vel)})
	case msg.GetControlChange(&ch, &cc, &val):
		s.send(engine.Event{Kind: engine.KindControlChange, Controller: int(cc), Value: int(val)})
	}
}

func (s *Stream) send(ev engine.Event) {
	select {
	case s.ch <- ev:
	default:
		// Buffer full; drop rather than stall the driver callback.
	}
}
