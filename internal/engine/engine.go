package engine

import (
	"math"
	"math/rand"

	"github.com/sinitsinmike/2040/internal/envelope"
	"github.com/sinitsinmike/2040/internal/voice"
	"github.com/sinitsinmike/2040/internal/waveform"
)

// MaxOscillators caps the per-note oscillator stack.
const MaxOscillators = 5

// DefaultDetune is the fractional frequency spread between stacked
// oscillators.
const DefaultDetune = 0.01

// jitterMax bounds the random per-voice frequency offset that keeps stacked
// oscillators (and equal intervals on different keys) from phase-locking.
const jitterMax = 0.001

// Vibrato scaling from the mod wheel position (0..1). The same constants
// apply at allocation time and when the wheel moves under held notes.
const (
	vibratoDepthScale = 1.0
	vibratoRateScale  = 20.0 // Hz at full wheel
)

// Sink receives note handoffs from the engine. Press is called once per
// note-on with a fully built Note. Release is the note-off notification:
// the sink keeps the voices alive through their release fade on its own
// schedule while the engine forgets them immediately.
type Sink interface {
	Press(*voice.Note)
	Release(*voice.Note)
}

// Engine is the voice allocator and modulation state of the synth. All
// methods must be called from a single goroutine, the dispatcher loop; the
// only engine state crossing into the renderer's thread is the per-voice
// vibrato pair, which Voice stores atomically.
type Engine struct {
	bank *waveform.Bank
	sink Sink

	// active maps MIDI note number to the one Note sounding for that key.
	active map[int]*voice.Note

	waveIndex int
	oscCount  int
	detune    float64
	modValue  float64
}

// New builds an engine with one oscillator per note and the default detune.
func New(bank *waveform.Bank, sink Sink) *Engine {
	return &Engine{
		bank:     bank,
		sink:     sink,
		active:   make(map[int]*voice.Note),
		oscCount: 1,
		detune:   DefaultDetune,
	}
}

// NoteOn builds the oscillator stack for a note and hands it to the sink.
// The current modulation state is snapshotted: oscillator count, waveform
// and detune are baked into the new voices and later control changes leave
// them alone (vibrato excepted). Re-triggering a held key releases the
// previous stack first, so the table never holds two Notes for one key.
func (e *Engine) NoteOn(note, velocity int) *voice.Note {
	table, _ := e.bank.Table(e.bank.Clamp(e.waveIndex))
	env := envelope.FromVelocity(velocity)
	base := MIDIToHz(note)

	voices := make([]*voice.Voice, e.oscCount)
	depth := vibratoDepthScale * e.modValue
	rate := vibratoRateScale * e.modValue
	for i := range voices {
		// Detune spreads the stack upward; jitter keeps the spread ratios
		// from aligning in phase across notes.
		freq := base * (1 + e.detune*float64(i) + rand.Float64()*jitterMax)
		voices[i] = voice.New(freq, table, env, depth, rate)
	}
	n := &voice.Note{Number: note, Voices: voices}

	if prev, ok := e.active[note]; ok {
		e.sink.Release(prev)
	}
	e.active[note] = n
	e.sink.Press(n)
	return n
}

// NoteOff releases a held note. A note-off with no matching note is a
// no-op, so duplicate or stray releases never disturb the engine.
func (e *Engine) NoteOff(note int) {
	n, ok := e.active[note]
	if !ok {
		return
	}
	delete(e.active, note)
	e.sink.Release(n)
}

// SetModulation stores the mod wheel position (0..1) and pushes the derived
// vibrato pair into every live voice. This is the one retroactive control;
// everything else applies from the next note-on.
func (e *Engine) SetModulation(value float64) {
	if value < 0 {
		value = 0
	} else if value > 1 {
		value = 1
	}
	e.modValue = value
	depth := vibratoDepthScale * value
	rate := vibratoRateScale * value
	for _, n := range e.active {
		for _, v := range n.Voices {
			v.SetVibrato(depth, rate)
		}
	}
}

// SetOscillatorCount maps a 7-bit controller value onto 1..MaxOscillators.
// Prospective only: held notes keep the stack they were born with.
func (e *Engine) SetOscillatorCount(raw int) {
	count := int(math.Round(1 + float64(clamp7(raw))/127*MaxOscillators))
	if count < 1 {
		count = 1
	}
	if count > MaxOscillators {
		count = MaxOscillators
	}
	e.oscCount = count
}

// SetWaveformIndex maps a 7-bit controller value onto the bank. Prospective
// only.
func (e *Engine) SetWaveformIndex(raw int) {
	idx := int(math.Round(float64(clamp7(raw)) / 127 * float64(e.bank.Len()-1)))
	e.waveIndex = e.bank.Clamp(idx)
}

// SetDetune sets the fractional spread between stacked oscillators for
// future note-ons.
func (e *Engine) SetDetune(amount float64) {
	if amount < 0 {
		amount = 0
	}
	e.detune = amount
}

// Modulation returns the current mod wheel position (0..1).
func (e *Engine) Modulation() float64 { return e.modValue }

// OscillatorCount returns the stack size the next note-on will use.
func (e *Engine) OscillatorCount() int { return e.oscCount }

// WaveformIndex returns the bank index the next note-on will use.
func (e *Engine) WaveformIndex() int { return e.waveIndex }

// ActiveNoteCount reports how many keys currently have a tracked note.
func (e *Engine) ActiveNoteCount() int { return len(e.active) }

// ActiveNote returns the tracked note for a key, or nil.
func (e *Engine) ActiveNote(note int) *voice.Note { return e.active[note] }

// Dispatch routes one event. A note-on with velocity zero is a release, per
// MIDI convention, and takes the same path as a note-off. Unknown
// controllers and kinds fall through without effect: a live instrument
// absorbs bad input rather than failing on it.
func (e *Engine) Dispatch(ev Event) {
	switch ev.Kind {
	case KindNoteOn:
		if ev.Velocity <= 0 {
			e.NoteOff(clamp7(ev.Note))
			return
		}
		e.NoteOn(clamp7(ev.Note), clamp7(ev.Velocity))
	case KindNoteOff:
		e.NoteOff(clamp7(ev.Note))
	case KindControlChange:
		switch ev.Controller {
		case ccModWheel:
			e.SetModulation(float64(clamp7(ev.Value)) / 127)
		case ccOscillatorCount:
			e.SetOscillatorCount(ev.Value)
		case ccWaveformSelect:
			e.SetWaveformIndex(ev.Value)
		}
	}
}

// Run is the dispatcher loop: receive one event, process it to completion,
// repeat until the source closes. Nothing here blocks except the receive
// itself.
func (e *Engine) Run(src Source) {
	for {
		ev, ok := src.Receive()
		if !ok {
			return
		}
		e.Dispatch(ev)
	}
}

// MIDIToHz converts a MIDI note number to its equal-tempered frequency,
// A4 = 440 Hz.
func MIDIToHz(note int) float64 {
	return 440 * math.Pow(2, float64(note-69)/12)
}

func clamp7(v int) int {
	if v < 0 {
		return 0
	}
	if v > 127 {
		return 127
	}
	return v
}
