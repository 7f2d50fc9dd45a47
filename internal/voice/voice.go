package voice

import (
	"math"
	"sync/atomic"

	"github.com/sinitsinmike/2040/internal/envelope"
)

// Voice is one oscillator of a sounding note. Frequency, waveform and
// envelope are fixed at creation. The vibrato pair is the only live-mutable
// state and the only state shared between the control loop (single writer)
// and the audio renderer (reader): each scalar is stored as atomic float64
// bits so the renderer never observes a torn value. Depth and rate are not
// updated as a unit — one frame may see old depth with new rate, which is
// at worst audible, not incorrect.
type Voice struct {
	Frequency float64        // Hz, includes detune and jitter
	Waveform  []float64      // shared read-only table from the bank
	Env       *envelope.Spec // shared by all voices of the note

	vibratoDepth uint64 // float64 bits
	vibratoRate  uint64 // float64 bits
}

// New builds a voice with its initial vibrato pair.
func New(frequency float64, table []float64, env *envelope.Spec, vibratoDepth, vibratoRate float64) *Voice {
	v := &Voice{Frequency: frequency, Waveform: table, Env: env}
	v.SetVibrato(vibratoDepth, vibratoRate)
	return v
}

// SetVibrato stores the vibrato pair. Control loop only.
func (v *Voice) SetVibrato(depth, rate float64) {
	atomic.StoreUint64(&v.vibratoDepth, math.Float64bits(depth))
	atomic.StoreUint64(&v.vibratoRate, math.Float64bits(rate))
}

// VibratoDepth returns the current vibrato depth (0..1).
func (v *Voice) VibratoDepth() float64 {
	return math.Float64frombits(atomic.LoadUint64(&v.vibratoDepth))
}

// VibratoRate returns the current vibrato rate in Hz.
func (v *Voice) VibratoRate() float64 {
	return math.Float64frombits(atomic.LoadUint64(&v.vibratoRate))
}

// Note is the group of voices created together by one note-on. The engine's
// active table owns a Note until note-off or re-trigger hands it to the
// renderer for its release fade.
type Note struct {
	Number int
	Voices []*Voice
}
