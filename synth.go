// Package midisynth is a MIDI-driven polyphonic wavetable synth. Incoming
// note and control-change events are turned into stacks of detuned
// oscillator voices with velocity-shaped envelopes and mod-wheel vibrato,
// rendered live through the system audio output.
package midisynth

import (
	"errors"
	"sync"

	intaudio "github.com/sinitsinmike/2040/internal/audio"
	intengine "github.com/sinitsinmike/2040/internal/engine"
	intmidi "github.com/sinitsinmike/2040/internal/midiin"
	intrender "github.com/sinitsinmike/2040/internal/render"
	intvoice "github.com/sinitsinmike/2040/internal/voice"
	intwave "github.com/sinitsinmike/2040/internal/waveform"
)

// EventKind tags the event variants the synth understands.
type EventKind int

const (
	EventNoteOn EventKind = iota
	EventNoteOff
	EventControlChange
)

// Event is one already-parsed MIDI message. Note/Velocity apply to note
// events, Controller/Value to control changes; all values 0-127.
type Event struct {
	Kind       EventKind
	Note       int
	Velocity   int
	Controller int
	Value      int
}

// NoteEvent reports note activity from Watch().
type NoteEvent struct {
	On     bool // true on press, false on release
	Note   int
	Voices int // oscillators in the stack (press only)
}

type Option func(*synthConfig)

type synthConfig struct {
	detune      float64
	masterGain  float64
	audioOutput bool
}

func defaultSynthConfig() synthConfig {
	return synthConfig{
		detune:      intengine.DefaultDetune,
		masterGain:  intrender.DefaultMasterGain,
		audioOutput: true,
	}
}

// WithDetune sets the fractional frequency spread between stacked
// oscillators. Default 0.01.
func WithDetune(amount float64) Option {
	return func(cfg *synthConfig) {
		cfg.detune = amount
	}
}

// WithMasterGain sets the pre-volume output gain.
func WithMasterGain(gain float64) Option {
	return func(cfg *synthConfig) {
		cfg.masterGain = gain
	}
}

// WithoutAudio builds a headless synth: no audio device is opened and
// samples are pulled via Render. Used for offline rendering and tests.
func WithoutAudio() Option {
	return func(cfg *synthConfig) {
		cfg.audioOutput = false
	}
}

// Synth wires the voice engine, the renderer and the audio backend. Events
// are processed one at a time: either feed them through Handle or open a
// MIDI port with OpenMIDI, not both at once.
type Synth struct {
	mu         sync.Mutex
	sampleRate int
	engine     *intengine.Engine
	renderer   *intrender.Renderer
	audio      *intaudio.Player
	midi       *intmidi.Stream
	baseGain   float64
	volume     float64
	dispatchMu sync.Mutex
	eventCh    chan NoteEvent
	eventChMu  sync.Mutex
}

// noteTap sits between the engine and the renderer: it forwards every
// handoff and reports note activity to Watch subscribers.
type noteTap struct {
	sink  intengine.Sink
	synth *Synth
}

func (t *noteTap) Press(n *intvoice.Note) {
	t.sink.Press(n)
	t.synth.sendEvent(NoteEvent{On: true, Note: n.Number, Voices: len(n.Voices)})
}

func (t *noteTap) Release(n *intvoice.Note) {
	t.sink.Release(n)
	t.synth.sendEvent(NoteEvent{On: false, Note: n.Number})
}

// New builds a synth at the given sample rate and, unless WithoutAudio is
// given, starts streaming to the system audio output immediately.
func New(sampleRate int, opts ...Option) (*Synth, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	cfg := defaultSynthConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	renderer := intrender.New(sampleRate)
	s := &Synth{
		sampleRate: sampleRate,
		renderer:   renderer,
		baseGain:   cfg.masterGain,
		volume:     1,
	}
	s.engine = intengine.New(intwave.NewBank(), &noteTap{sink: renderer, synth: s})
	s.engine.SetDetune(cfg.detune)
	renderer.SetMasterGain(cfg.masterGain)

	if cfg.audioOutput {
		backend, err := intaudio.NewPlayer(sampleRate, renderer)
		if err != nil {
			return nil, err
		}
		s.audio = backend
		s.audio.Play()
	}
	return s, nil
}

// Handle dispatches one event to the engine. Unknown kinds and controllers
// are absorbed silently; no event can fail.
func (s *Synth) Handle(ev Event) {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()
	s.engine.Dispatch(intengine.Event{
		Kind:       intengine.Kind(ev.Kind),
		Note:       ev.Note,
		Velocity:   ev.Velocity,
		Controller: ev.Controller,
		Value:      ev.Value,
	})
}

// MIDIPorts lists the names of the available MIDI input ports.
func MIDIPorts() []string {
	return intmidi.Ports()
}

// OpenMIDI connects the synth to a MIDI input port (empty name = first
// available) and starts the receive-dispatch loop in a goroutine. The loop
// processes each event to completion before receiving the next and ends
// when Close stops the stream.
func (s *Synth) OpenMIDI(port string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.midi != nil {
		return errors.New("MIDI input already open")
	}
	stream, err := intmidi.Open(port)
	if err != nil {
		return err
	}
	s.midi = stream
	go func() {
		for {
			ev, ok := stream.Receive()
			if !ok {
				return
			}
			s.dispatchMu.Lock()
			s.engine.Dispatch(ev)
			s.dispatchMu.Unlock()
		}
	}()
	return nil
}

// MIDIPortName returns the name of the open MIDI port, or "".
func (s *Synth) MIDIPortName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.midi == nil {
		return ""
	}
	return s.midi.Name()
}

// Watch returns a buffered channel of note press/release activity. Events
// are dropped, not blocked on, when the receiver falls behind. Only the
// most recent Watch channel receives events.
func (s *Synth) Watch() <-chan NoteEvent {
	ch := make(chan NoteEvent, 64)
	s.eventChMu.Lock()
	s.eventCh = ch
	s.eventChMu.Unlock()
	return ch
}

func (s *Synth) sendEvent(ev NoteEvent) {
	s.eventChMu.Lock()
	ch := s.eventCh
	s.eventChMu.Unlock()
	if ch != nil {
		select {
		case ch <- ev:
		default:
			// Receiver behind; drop rather than stall the dispatch loop.
		}
	}
}

// SetMasterVolume sets the runtime volume scalar. 1.0 is default. Applied
// atomically; audible on the next rendered buffer.
func (s *Synth) SetMasterVolume(volume float64) {
	if volume < 0 {
		volume = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volume = volume
	s.renderer.SetMasterGain(s.baseGain * s.volume)
}

func (s *Synth) MasterVolume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

// ActiveVoiceCount returns the number of oscillators currently sounding,
// release tails included.
func (s *Synth) ActiveVoiceCount() int {
	return s.renderer.ActiveVoiceCount()
}

// Render pulls interleaved stereo samples from the renderer. Only for
// headless synths; a synth with audio output is pulled by the device.
func (s *Synth) Render(dst []float32) {
	s.renderer.Process(dst)
}

// Close stops the MIDI stream and the audio output.
func (s *Synth) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.midi != nil {
		s.midi.Stop()
		s.midi = nil
	}
	if s.audio != nil {
		err := s.audio.Stop()
		s.audio = nil
		return err
	}
	return nil
}
