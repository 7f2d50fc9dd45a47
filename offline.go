package midisynth

import (
	"encoding/binary"
	"math"
	"sort"
)

// TimedEvent schedules an Event at an absolute frame offset from the start
// of an offline render.
type TimedEvent struct {
	Frame int
	Event Event
}

// RenderSamples plays a timed event list through a headless synth and
// returns seconds worth of interleaved stereo float32 samples. Events
// beyond the end of the render are dispatched but inaudible.
func RenderSamples(events []TimedEvent, sampleRate int, seconds float64, opts ...Option) ([]float32, error) {
	s, err := New(sampleRate, append([]Option{WithoutAudio()}, opts...)...)
	if err != nil {
		return nil, err
	}
	sorted := make([]TimedEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Frame < sorted[j].Frame })

	frames := int(float64(sampleRate) * seconds)
	out := make([]float32, frames*2)
	pos := 0
	for _, te := range sorted {
		f := te.Frame
		if f < pos {
			f = pos
		}
		if f > frames {
			f = frames
		}
		if f > pos {
			s.Render(out[pos*2 : f*2])
			pos = f
		}
		s.Handle(te.Event)
	}
	if pos < frames {
		s.Render(out[pos*2:])
	}
	return out, nil
}

// EncodeWAVFloat32LE wraps interleaved float32 samples in a WAV container
// (format 3, IEEE float).
func EncodeWAVFloat32LE(samples []float32, sampleRate int, channels int) []byte {
	dataSize := len(samples) * 4
	byteRate := sampleRate * channels * 4
	blockAlign := channels * 4
	chunkSize := 36 + dataSize
	out := make([]byte, 44+dataSize)
	copy(out[0:], []byte("RIFF"))
	binary.LittleEndian.PutUint32(out[4:], uint32(chunkSize))
	copy(out[8:], []byte("WAVE"))
	copy(out[12:], []byte("fmt "))
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 3)
	binary.LittleEndian.PutUint16(out[22:], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:], 32)
	copy(out[36:], []byte("data"))
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[44+i*4:], math.Float32bits(s))
	}
	return out
}
