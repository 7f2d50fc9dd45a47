package render

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/sinitsinmike/2040/internal/envelope"
	"github.com/sinitsinmike/2040/internal/voice"
)

const twoPi = math.Pi * 2

// DefaultMasterGain leaves headroom for a five-oscillator stack.
const DefaultMasterGain = 0.2

// vibratoSpan is the peak fractional pitch swing at full vibrato depth.
const vibratoSpan = 0.05

// oscState is the renderer-side state for one engine voice: table position
// and vibrato phase. Frequency, waveform and vibrato values are read from
// the shared Voice on every frame.
type oscState struct {
	src          *voice.Voice
	phase        float64 // table position [0, len)
	vibratoPhase float64 // [0, 1)
}

// notePlayback tracks one pressed note. All oscillators of a note share a
// single running envelope, mirroring the single envelope spec they were
// allocated with.
type notePlayback struct {
	note *voice.Note
	env  *envelope.State
	oscs []*oscState
}

// Renderer mixes the notes the engine presses into output sample buffers.
// It is the engine's Sink on the control side and the audio SampleSource on
// the playback side. A released note keeps sounding here until its release
// tail decays to silence, then is dropped; the engine stopped tracking it
// the moment it was released.
type Renderer struct {
	sampleRate float64
	masterGain uint64 // float64 bits, atomic

	mu    sync.Mutex
	notes []*notePlayback
}

// New builds a renderer for the given sample rate.
func New(sampleRate int) *Renderer {
	return &Renderer{
		sampleRate: float64(sampleRate),
		masterGain: math.Float64bits(DefaultMasterGain),
	}
}

// Press starts rendering a note. Called from the dispatcher goroutine; only
// appends under a short lock.
func (r *Renderer) Press(n *voice.Note) {
	p := &notePlayback{
		note: n,
		env:  envelope.NewState(envSpec(n)),
		oscs: make([]*oscState, len(n.Voices)),
	}
	for i, v := range n.Voices {
		p.oscs[i] = &oscState{src: v}
	}
	r.mu.Lock()
	r.notes = append(r.notes, p)
	r.mu.Unlock()
}

// Release begins the fade for a note. Safe to call for a note the renderer
// no longer holds.
func (r *Renderer) Release(n *voice.Note) {
	r.mu.Lock()
	for _, p := range r.notes {
		if p.note == n {
			p.env.Release()
		}
	}
	r.mu.Unlock()
}

// Process renders len(dst)/2 frames of interleaved stereo, the mono mix
// duplicated on both channels. Runs on the audio thread.
func (r *Renderer) Process(dst []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	gain := r.masterGainValue()
	for frame := 0; frame+1 < len(dst); frame += 2 {
		var mix float64
		for _, p := range r.notes {
			lvl := p.env.Advance(r.sampleRate)
			if lvl == 0 {
				continue
			}
			for _, o := range p.oscs {
				mix += lvl * r.advanceOsc(o)
			}
		}
		s := float32(clamp(mix*gain, -1, 1))
		dst[frame] = s
		dst[frame+1] = s
	}
	r.dropFinished()
}

// ActiveVoiceCount returns the number of oscillators still sounding,
// release tails included.
func (r *Renderer) ActiveVoiceCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, p := range r.notes {
		if p.env.Stage() != envelope.StageOff {
			n += len(p.oscs)
		}
	}
	return n
}

// SetMasterGain sets the master gain atomically.
func (r *Renderer) SetMasterGain(gain float64) {
	if gain < 0 {
		gain = 0
	}
	atomic.StoreUint64(&r.masterGain, math.Float64bits(gain))
}

// MasterGain returns the current master gain.
func (r *Renderer) MasterGain() float64 {
	return r.masterGainValue()
}

// advanceOsc produces one sample from an oscillator and moves its table and
// vibrato phase forward. Vibrato depth and rate come from the shared Voice,
// so mod wheel moves are heard on the very next frame.
func (r *Renderer) advanceOsc(o *oscState) float64 {
	table := o.src.Waveform
	if len(table) == 0 {
		return 0
	}
	tableLen := float64(len(table))

	// Linear interpolation between adjacent table samples.
	idx := math.Floor(o.phase)
	frac := o.phase - idx
	i0 := int(idx) % len(table)
	i1 := (i0 + 1) % len(table)
	sig := table[i0]*(1-frac) + table[i1]*frac

	freq := o.src.Frequency
	depth := o.src.VibratoDepth()
	rate := o.src.VibratoRate()
	if depth != 0 && rate != 0 {
		freq *= 1 + vibratoSpan*depth*math.Sin(twoPi*o.vibratoPhase)
		o.vibratoPhase += rate / r.sampleRate
		for o.vibratoPhase >= 1 {
			o.vibratoPhase--
		}
	}

	o.phase += freq * tableLen / r.sampleRate
	for o.phase >= tableLen {
		o.phase -= tableLen
	}
	return sig
}

// dropFinished removes notes whose release tail has fully decayed. Caller
// holds r.mu.
func (r *Renderer) dropFinished() {
	kept := r.notes[:0]
	for _, p := range r.notes {
		if p.env.Stage() != envelope.StageOff {
			kept = append(kept, p)
		}
	}
	for i := len(kept); i < len(r.notes); i++ {
		r.notes[i] = nil
	}
	r.notes = kept
}

func (r *Renderer) masterGainValue() float64 {
	return math.Float64frombits(atomic.LoadUint64(&r.masterGain))
}

// envSpec returns the note's shared envelope spec, falling back to a silent
// default for a note with no voices.
func envSpec(n *voice.Note) *envelope.Spec {
	if len(n.Voices) > 0 {
		return n.Voices[0].Env
	}
	return &envelope.Spec{}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
